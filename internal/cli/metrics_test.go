package cli

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/valter-silva-au/ptt-tracker/pkg/models"
)

// failingInsights implements core.InsightEngine with every call failing.
type failingInsights struct{ err error }

func (f failingInsights) Metrics(models.TopicFilter) (models.DashboardMetrics, error) {
	return models.DashboardMetrics{}, f.err
}
func (f failingInsights) Summary(models.TopicFilter) (string, error) { return "", f.err }
func (f failingInsights) Insights(models.TopicFilter) (models.ChartInsights, error) {
	return models.ChartInsights{}, f.err
}
func (f failingInsights) Report(models.TopicFilter, time.Time, time.Time) (models.ReportMetrics, error) {
	return models.ReportMetrics{}, f.err
}
func (f failingInsights) TopicHistory(string, time.Time, time.Time) ([]models.RiskHistoryPoint, error) {
	return nil, f.err
}
func (f failingInsights) CompareTopics([]string, time.Time, time.Time) ([]models.MultiTopicRiskPoint, error) {
	return nil, f.err
}

func TestAnalyticsCmds_NilEngine(t *testing.T) {
	orig := Insights
	defer func() { Insights = orig }()
	Insights = nil

	for _, cmd := range []struct {
		name string
		run  func() error
	}{
		{"metrics", func() error { return metricsCmd.RunE(metricsCmd, nil) }},
		{"summary", func() error { return summaryCmd.RunE(summaryCmd, nil) }},
		{"insights", func() error { return insightsCmd.RunE(insightsCmd, nil) }},
		{"report", func() error { return reportCmd.RunE(reportCmd, nil) }},
		{"history", func() error { return historyCmd.RunE(historyCmd, []string{"00001"}) }},
		{"dashboard", func() error { return dashboardCmd.RunE(dashboardCmd, nil) }},
	} {
		t.Run(cmd.name, func(t *testing.T) {
			err := cmd.run()
			if err == nil || !strings.Contains(err.Error(), "not initialized") {
				t.Errorf("expected not initialized error, got %v", err)
			}
		})
	}
}

func TestMetricsCmd_Table(t *testing.T) {
	useSampleWorkspace(t)

	out := captureStdout(t, func() {
		if err := metricsCmd.RunE(metricsCmd, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	for _, want := range []string{
		"Metrics (as of 2025-06-15)",
		"Total topics:            6",
		"Resolved:                1",
		"Exposure waterfall (30d):",
		"Status entropy:",
		"Delivery confidence:",
		"Latest week:",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestMetricsCmd_JSON(t *testing.T) {
	useSampleWorkspace(t)
	restoreAfter(t, &metricsJSON)
	metricsJSON = true

	out := captureStdout(t, func() {
		if err := metricsCmd.RunE(metricsCmd, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	var m models.DashboardMetrics
	if err := json.Unmarshal([]byte(out), &m); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, out)
	}
	if m.TotalTopics != 6 || m.ResolvedCount != 1 {
		t.Errorf("unexpected counts: total %d resolved %d", m.TotalTopics, m.ResolvedCount)
	}
	sum := m.Waterfall(models.WaterfallStart) + m.Waterfall(models.WaterfallNewRisks) +
		m.Waterfall(models.WaterfallResolved) + m.Waterfall(models.WaterfallNetChange)
	if sum != m.Waterfall(models.WaterfallCurrent) {
		t.Errorf("waterfall does not balance: %+v", m.WaterfallData)
	}
}

func TestMetricsCmd_Filtered(t *testing.T) {
	useSampleWorkspace(t)
	restoreAfter(t, &metricsJSON)
	restoreAfter(t, &metricsFilter)
	metricsJSON = true
	metricsFilter = topicFilterFlags{department: "Nuclear Island"}

	out := captureStdout(t, func() {
		if err := metricsCmd.RunE(metricsCmd, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	var m models.DashboardMetrics
	if err := json.Unmarshal([]byte(out), &m); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if m.TotalTopics != 2 || m.CriticalCount != 2 {
		t.Errorf("expected the two critical Nuclear Island topics, got total %d critical %d", m.TotalTopics, m.CriticalCount)
	}
}

func TestMetricsCmd_EngineError(t *testing.T) {
	orig := Insights
	defer func() { Insights = orig }()
	Insights = failingInsights{err: errors.New("store unreadable")}

	err := metricsCmd.RunE(metricsCmd, nil)
	if err == nil || !strings.Contains(err.Error(), "store unreadable") {
		t.Errorf("expected wrapped engine error, got %v", err)
	}
}
