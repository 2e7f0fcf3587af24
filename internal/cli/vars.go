package cli

import (
	"github.com/valter-silva-au/ptt-tracker/internal/core"
	"github.com/valter-silva-au/ptt-tracker/internal/observability"
	"go.uber.org/zap"
)

// Core service instances, set during app initialization in app.go.
var (
	BasePath     string
	StorePath    string
	DefaultOwner string
	TopicMgr     core.TopicManager
	Insights     core.InsightEngine
	ProjectInit  core.ProjectInitializer
	Clock        core.Clock  = core.SystemClock
	Logger       *zap.Logger = zap.NewNop()
)

// Observability service instances. Any of them may be nil when the
// corresponding feature failed to initialize.
var (
	AlertEngine  observability.AlertEngine
	ActivityCalc observability.ActivityCalculator
	Notifier     observability.Notifier
	Exporter     *observability.Exporter
	ExporterAddr string
)
