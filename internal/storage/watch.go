package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch signals on the returned channel whenever the file at path, or a
// sibling sharing its name as a prefix (SQLite -wal and -shm files), is
// written, created, renamed or removed. The directory is watched rather than
// the file so atomic replace-by-rename is observed. Signals coalesce: at most
// one is pending at a time. Watcher errors are logged and watching goes on.
// The channel closes when ctx is done.
func Watch(ctx context.Context, path string, logger *zap.Logger) (<-chan struct{}, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watching %s: %w", path, err)
	}
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}

	changes := make(chan struct{}, 1)
	go func() {
		defer watcher.Close()
		forwardEvents(ctx, watcher.Events, watcher.Errors, changes, path, logger)
	}()
	return changes, nil
}

// forwardEvents relays store events to changes until ctx is done or either
// source closes, then closes changes.
func forwardEvents(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error,
	changes chan<- struct{}, path string, logger *zap.Logger) {
	defer close(changes)
	base := filepath.Base(path)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if !isStoreEvent(event, base) {
				continue
			}
			select {
			case changes <- struct{}{}:
			default:
			}
		case err, ok := <-errs:
			if !ok {
				return
			}
			logger.Warn("watching topic store", zap.String("path", path), zap.Error(err))
		}
	}
}

func isStoreEvent(event fsnotify.Event, base string) bool {
	name := filepath.Base(event.Name)
	if !strings.HasPrefix(name, base) || strings.HasSuffix(name, ".tmp") {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0
}
