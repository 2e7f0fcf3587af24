package analytics

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/valter-silva-au/ptt-tracker/pkg/models"
)

// dashboardFixture returns four topics across three departments with one
// resolution inside the trailing 30 days.
func dashboardFixture() []models.Topic {
	pump := newTopic("00001", 5, 5, daysAgo(90))
	pump.Title = "RCP Vibration"
	pump.Priority = models.PriorityCritical
	pump.Status = models.StatusInProgress
	pump.RiskTrend = models.TrendEscalating

	crane := withDept(newTopic("00002", 2, 2, daysAgo(5)), models.DeptCivilWorks)
	crane.Priority = models.PriorityLow
	crane.RiskTrend = models.TrendImproving

	pour := newTopic("00003", 4, 4, daysAgo(20))
	pour.Priority = models.PriorityHigh
	pour.Status = models.StatusUnderReview

	hvac := resolve(withDept(newTopic("00004", 3, 3, daysAgo(60)), models.DeptEquipment), daysAgo(10))

	return []models.Topic{pump, crane, pour, hvac}
}

func TestBuildMetrics_Counts(t *testing.T) {
	m := BuildMetrics(dashboardFixture(), refNow)

	if m.TotalTopics != 4 {
		t.Errorf("expected 4 total, got %d", m.TotalTopics)
	}
	if m.ResolvedCount != 1 {
		t.Errorf("expected 1 resolved, got %d", m.ResolvedCount)
	}
	if m.CriticalCount != 1 || m.EscalatingCount != 1 || m.ImprovingCount != 1 {
		t.Errorf("unexpected counts: critical=%d escalating=%d improving=%d",
			m.CriticalCount, m.EscalatingCount, m.ImprovingCount)
	}

	wantDept := []models.NamedValue{
		{Name: string(models.DeptNuclearIsland), Value: 2},
		{Name: string(models.DeptCivilWorks), Value: 1},
	}
	if !reflect.DeepEqual(m.ByDepartment, wantDept) {
		t.Errorf("unexpected byDepartment: %+v", m.ByDepartment)
	}
	if len(m.ByPriority) != 3 || m.ByPriority[0].Name != string(models.PriorityCritical) {
		t.Errorf("unexpected byPriority: %+v", m.ByPriority)
	}
}

func TestBuildMetrics_Series(t *testing.T) {
	m := BuildMetrics(dashboardFixture(), refNow)

	if len(m.HeatmapData) != 24 {
		t.Fatalf("expected a full 6x4 heatmap, got %d cells", len(m.HeatmapData))
	}
	first := m.HeatmapData[0]
	if first.X != string(models.DeptNuclearIsland) || first.Y != string(models.PriorityCritical) || first.Value != 1 {
		t.Errorf("unexpected first heatmap cell: %+v", first)
	}

	if len(m.ScatterData) != 3 {
		t.Fatalf("expected 3 scatter points, got %d", len(m.ScatterData))
	}
	if p := m.ScatterData[0]; p.X != 90 || p.Y != 4 || p.Z != 10 {
		t.Errorf("unexpected scatter point: %+v", p)
	}

	if len(m.RiskTrendData) != 31 {
		t.Fatalf("expected 31 trend points, got %d", len(m.RiskTrendData))
	}
	if last := m.RiskTrendData[30]; last.TotalRiskScore != 45 || last.Date != refNow.Format("Jan 2") {
		t.Errorf("unexpected last trend point: %+v", last)
	}

	if len(m.EntropyData) != 6 || len(m.BayesianData) != 6 {
		t.Errorf("expected per-department entropy and bayesian series")
	}
	if len(m.ParetoData) != 3 {
		t.Errorf("expected 3 pareto points, got %d", len(m.ParetoData))
	}
	if len(m.ControlData) != DefaultStabilityWeeks {
		t.Errorf("expected %d control points, got %d", DefaultStabilityWeeks, len(m.ControlData))
	}
}

func TestBuildMetricsWith_StabilityWeeks(t *testing.T) {
	m := BuildMetricsWith(dashboardFixture(), refNow, Options{StabilityWeeks: 4})
	if len(m.ControlData) != 4 {
		t.Errorf("expected 4 control points, got %d", len(m.ControlData))
	}
}

func TestWaterfall(t *testing.T) {
	topics := dashboardFixture()
	got := Waterfall(topics, refNow)

	want := []models.WaterfallPoint{
		{Name: models.WaterfallStart, Value: 34},
		{Name: models.WaterfallNewRisks, Value: 20},
		{Name: models.WaterfallResolved, Value: -9},
		{Name: models.WaterfallNetChange, Value: 0},
		{Name: models.WaterfallCurrent, Value: 45, IsTotal: true},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected waterfall:\n got  %+v\n want %+v", got, want)
	}
}

func TestBuildMetrics_Empty(t *testing.T) {
	m := BuildMetrics(nil, refNow)

	if m.TotalTopics != 0 || m.ResolvedCount != 0 || m.CriticalCount != 0 {
		t.Errorf("expected zero counts, got %+v", m)
	}
	if m.ByDepartment == nil || m.ScatterData == nil || m.ParetoData == nil {
		t.Error("expected empty series to be non-nil")
	}
	for _, p := range m.RiskTrendData {
		if p.TotalRiskScore != 0 {
			t.Errorf("expected zero exposure, got %+v", p)
		}
	}
	for _, w := range m.WaterfallData {
		if w.Value != 0 {
			t.Errorf("expected zero waterfall bar, got %+v", w)
		}
	}

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) == "" {
		t.Error("expected JSON output")
	}
}

func TestBuildMetrics_Idempotent(t *testing.T) {
	topics := dashboardFixture()

	first, err := json.Marshal(BuildMetrics(topics, refNow))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	second, err := json.Marshal(BuildMetrics(topics, refNow))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(first) != string(second) {
		t.Error("expected byte-identical snapshots for identical input")
	}
}

func TestBuildMetrics_DoesNotMutateInput(t *testing.T) {
	topics := dashboardFixture()
	before, _ := json.Marshal(topics)
	BuildMetrics(topics, refNow)
	after, _ := json.Marshal(topics)
	if string(before) != string(after) {
		t.Error("expected input topics to be untouched")
	}
}
