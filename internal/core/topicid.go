package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// TopicIDGenerator defines the interface for generating unique, sequential topic IDs.
type TopicIDGenerator interface {
	GenerateTopicID() (string, error)
}

// fileTopicIDGenerator implements TopicIDGenerator by persisting a counter
// in a .topic_counter file on disk.
type fileTopicIDGenerator struct {
	mu       sync.Mutex
	basePath string
	padWidth int
}

// NewTopicIDGenerator creates a new TopicIDGenerator that stores its counter
// in a .topic_counter file within basePath. padWidth controls the zero-padding
// of the ID; 5 yields 00001.
func NewTopicIDGenerator(basePath string, padWidth int) TopicIDGenerator {
	return &fileTopicIDGenerator{
		basePath: basePath,
		padWidth: padWidth,
	}
}

// GenerateTopicID reads the current counter, increments it, writes it back,
// and returns the zero-padded ID. A missing counter file starts at 1.
func (g *fileTopicIDGenerator) GenerateTopicID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := os.MkdirAll(g.basePath, 0o750); err != nil {
		return "", fmt.Errorf("creating base path for topic counter: %w", err)
	}

	counterPath := filepath.Join(g.basePath, ".topic_counter")
	var counter int
	err := withFileLock(counterPath+".lock", func() error {
		data, err := os.ReadFile(counterPath)
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("reading topic counter file: %w", err)
		}
		if err == nil {
			trimmed := strings.TrimSpace(string(data))
			counter, err = strconv.Atoi(trimmed)
			if err != nil {
				return fmt.Errorf("parsing topic counter %q: %w", trimmed, err)
			}
		}

		counter++
		if err := os.WriteFile(counterPath, []byte(strconv.Itoa(counter)), 0o600); err != nil {
			return fmt.Errorf("writing topic counter file: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	if g.padWidth > 0 {
		return fmt.Sprintf("%0*d", g.padWidth, counter), nil
	}
	return strconv.Itoa(counter), nil
}
