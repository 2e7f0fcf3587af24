package core

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/valter-silva-au/ptt-tracker/pkg/models"
)

// --- Helper ---

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// --- LoadGlobalConfig tests ---

func TestLoadGlobalConfig_Defaults_WhenNoFile(t *testing.T) {
	dir := t.TempDir()
	cm := NewConfigurationManager(dir)

	cfg, err := cm.LoadGlobalConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.StorageDriver != models.StorageYAML {
		t.Errorf("StorageDriver = %q, want %q", cfg.StorageDriver, models.StorageYAML)
	}
	if cfg.TopicIDPadWidth != 5 {
		t.Errorf("TopicIDPadWidth = %d, want 5", cfg.TopicIDPadWidth)
	}
	if cfg.StabilityWeeks != 13 {
		t.Errorf("StabilityWeeks = %d, want 13", cfg.StabilityWeeks)
	}
	if cfg.Alerts.StagnantDays != 60 {
		t.Errorf("Alerts.StagnantDays = %d, want 60", cfg.Alerts.StagnantDays)
	}
	if cfg.Alerts.MaxExposure != 150 {
		t.Errorf("Alerts.MaxExposure = %d, want 150", cfg.Alerts.MaxExposure)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.ExporterAddr != ":9464" {
		t.Errorf("ExporterAddr = %q, want :9464", cfg.ExporterAddr)
	}
	if cfg.Notifications.Enabled {
		t.Error("Notifications.Enabled = true, want false")
	}
}

func TestLoadGlobalConfig_ReadsPttconfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".pttconfig", `
storage:
  driver: SQLite
topic_id:
  pad_width: 6
defaults:
  owner: "Dr. A. Smith"
analytics:
  stability_weeks: 26
alerts:
  stagnant_days: 30
  max_exposure: 200
  max_active_topics: 80
notifications:
  enabled: true
  slack:
    webhook_url: "https://hooks.slack.com/services/T000/B000/XXXX"
log:
  level: debug
exporter:
  addr: "127.0.0.1:9100"
`)

	cm := NewConfigurationManager(dir)
	cfg, err := cm.LoadGlobalConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.StorageDriver != models.StorageSQLite {
		t.Errorf("StorageDriver = %q, want %q", cfg.StorageDriver, models.StorageSQLite)
	}
	if cfg.TopicIDPadWidth != 6 {
		t.Errorf("TopicIDPadWidth = %d, want 6", cfg.TopicIDPadWidth)
	}
	if cfg.DefaultOwner != "Dr. A. Smith" {
		t.Errorf("DefaultOwner = %q, want %q", cfg.DefaultOwner, "Dr. A. Smith")
	}
	if cfg.StabilityWeeks != 26 {
		t.Errorf("StabilityWeeks = %d, want 26", cfg.StabilityWeeks)
	}
	if cfg.Alerts.StagnantDays != 30 || cfg.Alerts.MaxExposure != 200 || cfg.Alerts.MaxActiveTopics != 80 {
		t.Errorf("Alerts = %+v", cfg.Alerts)
	}
	if !cfg.Notifications.Enabled || !strings.HasPrefix(cfg.Notifications.Slack.WebhookURL, "https://hooks.slack.com/") {
		t.Errorf("Notifications = %+v", cfg.Notifications)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.ExporterAddr != "127.0.0.1:9100" {
		t.Errorf("ExporterAddr = %q", cfg.ExporterAddr)
	}

	if err := cm.ValidateConfig(cfg); err != nil {
		t.Errorf("expected loaded config to be valid: %v", err)
	}
}

func TestLoadGlobalConfig_PartialConfig_FillsDefaults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".pttconfig", `
alerts:
  stagnant_days: 45
`)

	cm := NewConfigurationManager(dir)
	cfg, err := cm.LoadGlobalConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Alerts.StagnantDays != 45 {
		t.Errorf("Alerts.StagnantDays = %d, want 45", cfg.Alerts.StagnantDays)
	}
	if cfg.Alerts.MaxActiveTopics != 50 {
		t.Errorf("Alerts.MaxActiveTopics = %d, want default 50", cfg.Alerts.MaxActiveTopics)
	}
	if cfg.StorageDriver != models.StorageYAML {
		t.Errorf("StorageDriver = %q, want default %q", cfg.StorageDriver, models.StorageYAML)
	}
}

func TestLoadGlobalConfig_InvalidYAML_ReturnsError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".pttconfig", `
alerts:
  stagnant_days: [invalid yaml
  broken: {
`)

	cm := NewConfigurationManager(dir)
	if _, err := cm.LoadGlobalConfig(); err == nil {
		t.Fatal("expected error for invalid YAML, got nil")
	}
}

// --- ValidateConfig tests ---

func TestValidateConfig_Defaults(t *testing.T) {
	cm := NewConfigurationManager(t.TempDir())
	if err := cm.ValidateConfig(DefaultGlobalConfig()); err != nil {
		t.Errorf("expected defaults to be valid: %v", err)
	}
}

func TestValidateConfig_Nil(t *testing.T) {
	cm := NewConfigurationManager(t.TempDir())
	if err := cm.ValidateConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
}

func TestValidateConfig_ReportsEveryProblem(t *testing.T) {
	cm := NewConfigurationManager(t.TempDir())
	cfg := DefaultGlobalConfig()
	cfg.StorageDriver = "postgres"
	cfg.TopicIDPadWidth = 0
	cfg.StabilityWeeks = 0
	cfg.Alerts.StagnantDays = 0
	cfg.LogLevel = "loud"
	cfg.Notifications.Enabled = true

	err := cm.ValidateConfig(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	for _, want := range []string{
		"config validation failed",
		"storage.driver",
		"topic_id.pad_width",
		"analytics.stability_weeks",
		"alerts.stagnant_days",
		"log.level",
		"notifications.slack.webhook_url is required",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q does not mention %q", msg, want)
		}
	}
}

func TestValidateConfig_WebhookMustBeHTTPS(t *testing.T) {
	cm := NewConfigurationManager(t.TempDir())
	cfg := DefaultGlobalConfig()
	cfg.Notifications.Enabled = true
	cfg.Notifications.Slack.WebhookURL = "http://hooks.example.com/x"

	err := cm.ValidateConfig(cfg)
	if err == nil || !strings.Contains(err.Error(), "must be an https URL") {
		t.Errorf("expected https error, got %v", err)
	}
}
