// Package internal provides the App struct that wires all components of the
// PTT tracker together and initializes the CLI layer.
package internal

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/valter-silva-au/ptt-tracker/internal/cli"
	"github.com/valter-silva-au/ptt-tracker/internal/core"
	"github.com/valter-silva-au/ptt-tracker/internal/observability"
	"github.com/valter-silva-au/ptt-tracker/internal/storage"
	"github.com/valter-silva-au/ptt-tracker/pkg/models"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvHome overrides workspace discovery when set.
const EnvHome = "PTT_HOME"

// EventLogFileName is the JSONL audit trail inside the workspace.
const EventLogFileName = ".ptt_events.jsonl"

// App holds all service dependencies for the PTT tracker.
type App struct {
	BasePath string
	Config   *models.GlobalConfig
	Logger   *zap.Logger

	// Configuration
	ConfigMgr core.ConfigurationManager

	// Storage layer
	Store storage.TopicStore

	// Core services
	IDGen       core.TopicIDGenerator
	TopicMgr    core.TopicManager
	Insights    core.InsightEngine
	ProjectInit core.ProjectInitializer

	// Observability
	EventLog     observability.EventLog
	AlertEngine  observability.AlertEngine
	ActivityCalc observability.ActivityCalculator
	Notifier     observability.Notifier
	Exporter     *observability.Exporter
}

// NewApp creates and wires all components of the PTT tracker rooted at
// basePath. A missing .pttconfig yields the defaults; an invalid one is an
// error.
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigurationManager(basePath)
	cfg, err := app.ConfigMgr.LoadGlobalConfig()
	if err != nil {
		return nil, err
	}
	if err := app.ConfigMgr.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	app.Config = cfg

	app.Logger, err = newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	// --- Storage layer ---
	app.Store, err = storage.Open(cfg.StorageDriver, basePath)
	if err != nil {
		return nil, err
	}

	// --- Observability ---
	app.EventLog, err = observability.NewJSONLEventLog(filepath.Join(basePath, EventLogFileName))
	if err != nil {
		// Non-fatal: topics still work without the audit trail.
		app.Logger.Warn("event log disabled", zap.Error(err))
		app.EventLog = nil
	}
	var events core.EventLogger
	if app.EventLog != nil {
		events = observability.NewEventRecorder(app.EventLog, core.SystemClock)
		app.ActivityCalc = observability.NewActivityCalculator(app.EventLog)
	}

	// --- Core services ---
	app.IDGen = core.NewTopicIDGenerator(basePath, cfg.TopicIDPadWidth)
	app.TopicMgr = core.NewTopicManager(app.Store, app.IDGen, events, core.SystemClock, app.Logger)
	app.Insights = core.NewInsightEngine(app.TopicMgr, core.SystemClock, cfg.StabilityWeeks)
	app.ProjectInit = core.NewProjectInitializer()

	app.AlertEngine = observability.NewAlertEngine(app.TopicMgr, alertThresholds(cfg.Alerts), core.SystemClock)
	if cfg.Notifications.Enabled && cfg.Notifications.Slack.WebhookURL != "" {
		app.Notifier = observability.NewSlackNotifier(cfg.Notifications.Slack.WebhookURL)
	}
	app.Exporter = observability.NewExporter(app.Insights, app.Logger)

	// --- Wire CLI package-level variables ---
	cli.BasePath = basePath
	cli.StorePath = app.Store.Path()
	cli.DefaultOwner = cfg.DefaultOwner
	cli.TopicMgr = app.TopicMgr
	cli.Insights = app.Insights
	cli.ProjectInit = app.ProjectInit
	cli.Clock = core.SystemClock
	cli.Logger = app.Logger

	cli.AlertEngine = app.AlertEngine
	cli.ActivityCalc = app.ActivityCalc
	cli.Notifier = app.Notifier
	cli.Exporter = app.Exporter
	cli.ExporterAddr = cfg.ExporterAddr

	app.Logger.Debug("app initialized",
		zap.String("base_path", basePath),
		zap.String("storage_driver", cfg.StorageDriver),
	)
	return app, nil
}

// Close releases the topic store and the event log file handle, and flushes
// the logger.
func (a *App) Close() error {
	var firstErr error
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			firstErr = fmt.Errorf("closing topic store: %w", err)
		}
	}
	if a.EventLog != nil {
		if err := a.EventLog.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing event log: %w", err)
		}
	}
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
	return firstErr
}

// ResolveBasePath determines the workspace directory. PTT_HOME wins;
// otherwise the nearest ancestor of the working directory holding a
// .pttconfig, falling back to the working directory itself.
func ResolveBasePath() string {
	if home := os.Getenv(EnvHome); home != "" {
		return home
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	for dir := cwd; ; {
		if _, err := os.Stat(filepath.Join(dir, core.ConfigFileName)); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return cwd
}

// newLogger builds a console logger on stderr so command output on stdout
// stays clean.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level: %w", err)
	}
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return zap.New(zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stderr), lvl)), nil
}

func alertThresholds(cfg models.AlertConfig) observability.AlertThresholds {
	th := observability.DefaultAlertThresholds()
	if cfg.StagnantDays > 0 {
		th.StagnantDays = cfg.StagnantDays
	}
	if cfg.MaxExposure > 0 {
		th.MaxExposure = cfg.MaxExposure
	}
	if cfg.MaxActiveTopics > 0 {
		th.MaxActiveTopics = cfg.MaxActiveTopics
	}
	return th
}
