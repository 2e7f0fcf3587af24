package core

import (
	"fmt"
	"time"

	"github.com/valter-silva-au/ptt-tracker/internal/analytics"
	"github.com/valter-silva-au/ptt-tracker/pkg/models"
)

// defaultHistoryMonths is how far back topic history reaches when no start
// date is given.
const defaultHistoryMonths = 6

// TopicSource is the read side of TopicManager used by InsightEngine.
type TopicSource interface {
	GetTopic(id string) (*models.Topic, error)
	ListTopics(filter models.TopicFilter) ([]models.Topic, error)
}

// InsightEngine evaluates the analytics over the current topic collection at
// the time given by its clock.
type InsightEngine interface {
	Metrics(filter models.TopicFilter) (models.DashboardMetrics, error)
	Summary(filter models.TopicFilter) (string, error)
	Insights(filter models.TopicFilter) (models.ChartInsights, error)
	Report(filter models.TopicFilter, start, end time.Time) (models.ReportMetrics, error)
	TopicHistory(id string, start, end time.Time) ([]models.RiskHistoryPoint, error)
	CompareTopics(ids []string, start, end time.Time) ([]models.MultiTopicRiskPoint, error)
}

type insightEngine struct {
	source TopicSource
	clock  Clock
	opts   analytics.Options
}

// NewInsightEngine creates an InsightEngine over source. stabilityWeeks sets
// the control series length; values below 1 select the default.
func NewInsightEngine(source TopicSource, clock Clock, stabilityWeeks int) InsightEngine {
	if clock == nil {
		clock = SystemClock
	}
	return &insightEngine{
		source: source,
		clock:  clock,
		opts:   analytics.Options{StabilityWeeks: stabilityWeeks},
	}
}

func (e *insightEngine) Metrics(filter models.TopicFilter) (models.DashboardMetrics, error) {
	topics, err := e.source.ListTopics(filter)
	if err != nil {
		return models.DashboardMetrics{}, fmt.Errorf("building metrics: %w", err)
	}
	return analytics.BuildMetricsWith(topics, e.clock(), e.opts), nil
}

func (e *insightEngine) Summary(filter models.TopicFilter) (string, error) {
	topics, err := e.source.ListTopics(filter)
	if err != nil {
		return "", fmt.Errorf("building summary: %w", err)
	}
	return analytics.LocalExecutiveSummary(topics, e.clock()), nil
}

func (e *insightEngine) Insights(filter models.TopicFilter) (models.ChartInsights, error) {
	m, err := e.Metrics(filter)
	if err != nil {
		return models.ChartInsights{}, err
	}
	return analytics.LocalDashboardInsights(m), nil
}

// Report builds month-bucketed series from start to end. A zero end means
// now; a zero start means six months before end.
func (e *insightEngine) Report(filter models.TopicFilter, start, end time.Time) (models.ReportMetrics, error) {
	topics, err := e.source.ListTopics(filter)
	if err != nil {
		return models.ReportMetrics{}, fmt.Errorf("building report: %w", err)
	}
	start, end = e.window(start, end)
	return analytics.BuildReportMetrics(topics, start, end), nil
}

// TopicHistory samples one topic weekly. Zero bounds default as in Report.
func (e *insightEngine) TopicHistory(id string, start, end time.Time) ([]models.RiskHistoryPoint, error) {
	topic, err := e.source.GetTopic(id)
	if err != nil {
		return nil, fmt.Errorf("building history for %s: %w", id, err)
	}
	start, end = e.window(start, end)
	return analytics.TopicRiskHistory(*topic, start, end), nil
}

// CompareTopics samples several topics weekly on a shared axis.
func (e *insightEngine) CompareTopics(ids []string, start, end time.Time) ([]models.MultiTopicRiskPoint, error) {
	topics := make([]models.Topic, 0, len(ids))
	for _, id := range ids {
		topic, err := e.source.GetTopic(id)
		if err != nil {
			return nil, fmt.Errorf("comparing topics: %w", err)
		}
		topics = append(topics, *topic)
	}
	start, end = e.window(start, end)
	return analytics.MultiTopicRiskHistory(topics, start, end), nil
}

func (e *insightEngine) window(start, end time.Time) (time.Time, time.Time) {
	if end.IsZero() {
		end = e.clock()
	}
	if start.IsZero() {
		start = end.AddDate(0, -defaultHistoryMonths, 0)
	}
	return start, end
}
