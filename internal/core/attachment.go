package core

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/valter-silva-au/ptt-tracker/pkg/models"
)

// AttachmentFromFile describes the file at path as a topic attachment. The
// file is referenced by its absolute path, not copied.
func AttachmentFromFile(path string, now time.Time) (models.Attachment, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return models.Attachment{}, fmt.Errorf("resolving attachment %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return models.Attachment{}, fmt.Errorf("reading attachment: %w", err)
	}
	if info.IsDir() {
		return models.Attachment{}, fmt.Errorf("attachment %s is a directory", path)
	}

	contentType := mime.TypeByExtension(filepath.Ext(abs))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return models.Attachment{
		ID:         uuid.NewString(),
		Name:       filepath.Base(abs),
		Size:       info.Size(),
		Type:       contentType,
		UploadDate: now,
		URL:        "file://" + filepath.ToSlash(abs),
	}, nil
}

// normalizeAttachments fills in missing IDs and upload dates.
func normalizeAttachments(in []models.Attachment, at time.Time) []models.Attachment {
	if len(in) == 0 {
		return nil
	}
	out := make([]models.Attachment, len(in))
	for i, a := range in {
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		if a.UploadDate.IsZero() {
			a.UploadDate = at
		}
		out[i] = a
	}
	return out
}
