package models

// Storage drivers accepted in storage.driver.
const (
	StorageYAML   = "yaml"
	StorageSQLite = "sqlite"
)

// AlertConfig holds alert threshold overrides from .pttconfig.
type AlertConfig struct {
	StagnantDays    int `yaml:"stagnant_days" mapstructure:"stagnant_days"`
	MaxExposure     int `yaml:"max_exposure" mapstructure:"max_exposure"`
	MaxActiveTopics int `yaml:"max_active_topics" mapstructure:"max_active_topics"`
}

// SlackConfig holds the Slack webhook used for alert notifications.
type SlackConfig struct {
	WebhookURL string `yaml:"webhook_url" mapstructure:"webhook_url"`
}

// NotificationConfig controls outbound alert notifications.
type NotificationConfig struct {
	Enabled bool        `yaml:"enabled" mapstructure:"enabled"`
	Slack   SlackConfig `yaml:"slack" mapstructure:"slack"`
}

// GlobalConfig holds system-wide settings read from .pttconfig via Viper.
type GlobalConfig struct {
	StorageDriver   string             `yaml:"storage_driver" mapstructure:"storage_driver"`
	TopicIDPadWidth int                `yaml:"topic_id_pad_width" mapstructure:"topic_id_pad_width"`
	DefaultOwner    string             `yaml:"default_owner" mapstructure:"default_owner"`
	StabilityWeeks  int                `yaml:"stability_weeks" mapstructure:"stability_weeks"`
	LogLevel        string             `yaml:"log_level" mapstructure:"log_level"`
	ExporterAddr    string             `yaml:"exporter_addr" mapstructure:"exporter_addr"`
	Alerts          AlertConfig        `yaml:"alerts" mapstructure:"alerts"`
	Notifications   NotificationConfig `yaml:"notifications" mapstructure:"notifications"`
}
