package core

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/valter-silva-au/ptt-tracker/pkg/models"
)

// InitConfig holds the parameters for initializing a tracker workspace.
type InitConfig struct {
	BasePath string
	Driver   string
	Owner    string
}

// InitResult holds a summary of what was created vs. skipped.
type InitResult struct {
	Created []string
	Skipped []string
}

// ProjectInitializer defines the interface for laying out a tracker
// workspace: configuration, ID counter and an empty topic store.
type ProjectInitializer interface {
	Init(config InitConfig) (*InitResult, error)
}

type projectInitializer struct {
	configTemplate *template.Template
}

const pttConfigTemplate = `# PTT tracker configuration.
storage:
  driver: {{ .Driver }}
topic_id:
  pad_width: 5
defaults:
  owner: "{{ .Owner }}"
analytics:
  stability_weeks: 13
alerts:
  stagnant_days: 60
  max_exposure: 150
  max_active_topics: 50
notifications:
  enabled: false
  slack:
    webhook_url: ""
log:
  level: info
exporter:
  addr: ":9464"
`

const workspaceGitignore = `.ptt_events.jsonl
topics.db-wal
topics.db-shm
.topic_counter.lock
`

// NewProjectInitializer creates a new ProjectInitializer.
func NewProjectInitializer() ProjectInitializer {
	return &projectInitializer{
		configTemplate: template.Must(template.New(ConfigFileName).Parse(pttConfigTemplate)),
	}
}

// Init creates the workspace files. It is safe to run on an existing
// workspace: files that already exist are skipped and not overwritten.
func (pi *projectInitializer) Init(config InitConfig) (*InitResult, error) {
	result := &InitResult{}

	if config.Driver == "" {
		config.Driver = models.StorageYAML
	}
	switch config.Driver {
	case models.StorageYAML, models.StorageSQLite:
	default:
		return nil, fmt.Errorf("initializing workspace: unknown storage driver %q", config.Driver)
	}

	created, err := ensureDir(config.BasePath)
	if err != nil {
		return nil, fmt.Errorf("initializing workspace: creating directory %s: %w", config.BasePath, err)
	}
	if created {
		result.Created = append(result.Created, config.BasePath)
	} else {
		result.Skipped = append(result.Skipped, config.BasePath)
	}

	configPath := filepath.Join(config.BasePath, ConfigFileName)
	if err := writeFileIfNotExists(configPath, func() ([]byte, error) {
		var buf bytes.Buffer
		if err := pi.configTemplate.Execute(&buf, config); err != nil {
			return nil, fmt.Errorf("rendering %s: %w", ConfigFileName, err)
		}
		return buf.Bytes(), nil
	}, result); err != nil {
		return nil, err
	}

	counterPath := filepath.Join(config.BasePath, ".topic_counter")
	if err := writeFileIfNotExists(counterPath, staticContent("0"), result); err != nil {
		return nil, err
	}

	gitignorePath := filepath.Join(config.BasePath, ".gitignore")
	if err := writeFileIfNotExists(gitignorePath, staticContent(workspaceGitignore), result); err != nil {
		return nil, err
	}

	// The SQLite store creates its own file on first open.
	if config.Driver == models.StorageYAML {
		topicsPath := filepath.Join(config.BasePath, "topics.yaml")
		if err := writeFileIfNotExists(topicsPath, staticContent("version: \"1.0\"\ntopics: {}\n"), result); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// ensureDir creates a directory if it does not exist. Returns true if created.
func ensureDir(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	if err := os.MkdirAll(path, 0o750); err != nil {
		return false, err
	}
	return true, nil
}

func staticContent(s string) func() ([]byte, error) {
	return func() ([]byte, error) { return []byte(s), nil }
}

// writeFileIfNotExists writes content from contentFn if the file does not exist.
// It records created/skipped in the result.
func writeFileIfNotExists(path string, contentFn func() ([]byte, error), result *InitResult) error {
	if _, err := os.Stat(path); err == nil {
		result.Skipped = append(result.Skipped, path)
		return nil
	}
	content, err := contentFn()
	if err != nil {
		return fmt.Errorf("initializing workspace: generating content for %s: %w", path, err)
	}
	if err := os.WriteFile(path, content, 0o600); err != nil {
		return fmt.Errorf("initializing workspace: writing %s: %w", path, err)
	}
	result.Created = append(result.Created, path)
	return nil
}
