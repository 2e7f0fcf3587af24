// Package core contains the business logic for the PTT tracker: topic
// lifecycle management, configuration, the insight engine that binds the
// analytics to a clock, and the sample data set.
package core

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"
	"github.com/valter-silva-au/ptt-tracker/internal/analytics"
	"github.com/valter-silva-au/ptt-tracker/pkg/models"
	"go.uber.org/zap/zapcore"
)

// ConfigFileName is the name of the global configuration file.
const ConfigFileName = ".pttconfig"

// ConfigurationManager defines the interface for loading and validating the
// global .pttconfig file.
type ConfigurationManager interface {
	LoadGlobalConfig() (*models.GlobalConfig, error)
	ValidateConfig(cfg *models.GlobalConfig) error
}

// viperConfigManager implements ConfigurationManager using Viper for
// reading YAML configuration files.
type viperConfigManager struct {
	// basePath is the root directory where .pttconfig resides.
	basePath string
}

// NewConfigurationManager creates a new ConfigurationManager that reads
// configuration files relative to basePath.
func NewConfigurationManager(basePath string) ConfigurationManager {
	return &viperConfigManager{basePath: basePath}
}

// DefaultGlobalConfig returns a GlobalConfig populated with sensible defaults.
func DefaultGlobalConfig() *models.GlobalConfig {
	return &models.GlobalConfig{
		StorageDriver:   models.StorageYAML,
		TopicIDPadWidth: 5,
		DefaultOwner:    "",
		StabilityWeeks:  analytics.DefaultStabilityWeeks,
		LogLevel:        "info",
		ExporterAddr:    ":9464",
		Alerts: models.AlertConfig{
			StagnantDays:    60,
			MaxExposure:     150,
			MaxActiveTopics: 50,
		},
	}
}

// LoadGlobalConfig reads the .pttconfig file from the base path using Viper.
// If the file does not exist, defaults are returned.
func (cm *viperConfigManager) LoadGlobalConfig() (*models.GlobalConfig, error) {
	cfg := DefaultGlobalConfig()

	v := viper.New()
	v.SetConfigName(ConfigFileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(cm.basePath)

	v.SetDefault("storage.driver", cfg.StorageDriver)
	v.SetDefault("topic_id.pad_width", cfg.TopicIDPadWidth)
	v.SetDefault("defaults.owner", cfg.DefaultOwner)
	v.SetDefault("analytics.stability_weeks", cfg.StabilityWeeks)
	v.SetDefault("alerts.stagnant_days", cfg.Alerts.StagnantDays)
	v.SetDefault("alerts.max_exposure", cfg.Alerts.MaxExposure)
	v.SetDefault("alerts.max_active_topics", cfg.Alerts.MaxActiveTopics)
	v.SetDefault("notifications.enabled", false)
	v.SetDefault("notifications.slack.webhook_url", "")
	v.SetDefault("log.level", cfg.LogLevel)
	v.SetDefault("exporter.addr", cfg.ExporterAddr)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading %s: %w", ConfigFileName, err)
	}

	cfg.StorageDriver = strings.ToLower(v.GetString("storage.driver"))
	cfg.TopicIDPadWidth = v.GetInt("topic_id.pad_width")
	cfg.DefaultOwner = v.GetString("defaults.owner")
	cfg.StabilityWeeks = v.GetInt("analytics.stability_weeks")
	cfg.Alerts.StagnantDays = v.GetInt("alerts.stagnant_days")
	cfg.Alerts.MaxExposure = v.GetInt("alerts.max_exposure")
	cfg.Alerts.MaxActiveTopics = v.GetInt("alerts.max_active_topics")
	cfg.Notifications.Enabled = v.GetBool("notifications.enabled")
	cfg.Notifications.Slack.WebhookURL = v.GetString("notifications.slack.webhook_url")
	cfg.LogLevel = v.GetString("log.level")
	cfg.ExporterAddr = v.GetString("exporter.addr")

	return cfg, nil
}

// ValidateConfig checks the configuration for invalid values and returns a
// single error listing every problem found.
func (cm *viperConfigManager) ValidateConfig(cfg *models.GlobalConfig) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	var errs []string

	switch cfg.StorageDriver {
	case models.StorageYAML, models.StorageSQLite:
	default:
		errs = append(errs, fmt.Sprintf(
			"storage.driver %q is invalid, must be one of: %s, %s",
			cfg.StorageDriver, models.StorageYAML, models.StorageSQLite,
		))
	}

	if cfg.TopicIDPadWidth < 1 || cfg.TopicIDPadWidth > 10 {
		errs = append(errs, fmt.Sprintf(
			"topic_id.pad_width %d is invalid, must be between 1 and 10",
			cfg.TopicIDPadWidth,
		))
	}

	if cfg.StabilityWeeks < 1 || cfg.StabilityWeeks > 104 {
		errs = append(errs, fmt.Sprintf(
			"analytics.stability_weeks %d is invalid, must be between 1 and 104",
			cfg.StabilityWeeks,
		))
	}

	if cfg.Alerts.StagnantDays < 1 {
		errs = append(errs, fmt.Sprintf("alerts.stagnant_days must be positive, got %d", cfg.Alerts.StagnantDays))
	}
	if cfg.Alerts.MaxExposure < 0 {
		errs = append(errs, fmt.Sprintf("alerts.max_exposure must be non-negative, got %d", cfg.Alerts.MaxExposure))
	}
	if cfg.Alerts.MaxActiveTopics < 0 {
		errs = append(errs, fmt.Sprintf("alerts.max_active_topics must be non-negative, got %d", cfg.Alerts.MaxActiveTopics))
	}

	if _, err := zapcore.ParseLevel(cfg.LogLevel); err != nil {
		errs = append(errs, fmt.Sprintf("log.level %q is invalid", cfg.LogLevel))
	}

	if cfg.Notifications.Enabled {
		webhook := cfg.Notifications.Slack.WebhookURL
		if webhook == "" {
			errs = append(errs, "notifications.slack.webhook_url is required when notifications are enabled")
		} else if u, err := url.Parse(webhook); err != nil || u.Scheme != "https" || u.Host == "" {
			errs = append(errs, fmt.Sprintf("notifications.slack.webhook_url %q must be an https URL", webhook))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
