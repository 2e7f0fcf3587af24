package analytics

import (
	"strings"
	"testing"

	"github.com/valter-silva-au/ptt-tracker/pkg/models"
)

func TestLocalExecutiveSummary_Empty(t *testing.T) {
	if got := LocalExecutiveSummary(nil, refNow); got != NoDataSummary {
		t.Errorf("expected no-data summary, got %q", got)
	}
}

func TestLocalExecutiveSummary(t *testing.T) {
	got := LocalExecutiveSummary(dashboardFixture(), refNow)

	wants := []string{
		"**1. Statistical Risk Profile (Risk Theory)**",
		"quantified at **54 units**",
		"Applying a 10% Value-at-Risk (VaR) model, we find that **46.3%** of the total risk is concentrated in just 1 items",
		"entropy score of **2.00**",
		"**Highly Dynamic** state",
		"High entropy indicates healthy parallel processing",
		"identifies **Nuclear Island** as the primary system constraint (Load Density: 5)",
		"**Strategic Intervention (2 items):**",
		"high-consequence items like *RCP Vibration*",
		"**Tactical \"Quick-Wins\" (1 items):**",
		"**Audit Required (1 items):**",
		"Prioritize the 1 Critical items",
		"Leverage the **1** topics",
		"bottlenecked **Nuclear Island** area",
	}
	for _, w := range wants {
		if !strings.Contains(got, w) {
			t.Errorf("summary missing %q\n%s", w, got)
		}
	}
	if got != LocalExecutiveSummary(dashboardFixture(), refNow) {
		t.Error("expected deterministic output")
	}
}

func TestLocalExecutiveSummary_AllResolved(t *testing.T) {
	tp := resolve(newTopic("1", 2, 2, daysAgo(10)), daysAgo(1))
	got := LocalExecutiveSummary([]models.Topic{tp}, refNow)

	for _, w := range []string{"**None** as the primary system constraint (Load Density: 0)", "items like *None*", "**Stagnated/Consolidated** state", "Low entropy suggests"} {
		if !strings.Contains(got, w) {
			t.Errorf("summary missing %q", w)
		}
	}
}

func TestMovementClass(t *testing.T) {
	tests := []struct {
		bits float64
		want string
	}{
		{2.0, MovementHighlyDynamic},
		{1.8, MovementModerate},
		{1.01, MovementModerate},
		{1.0, MovementStagnated},
		{0, MovementStagnated},
	}
	for _, tt := range tests {
		if got := MovementClass(tt.bits); got != tt.want {
			t.Errorf("MovementClass(%v) = %q, want %q", tt.bits, got, tt.want)
		}
	}
}

func TestFindBottleneck_TieGoesToFirstSeen(t *testing.T) {
	a := withDept(newTopic("1", 1, 1, daysAgo(1)), models.DeptCivilWorks)
	b := withDept(newTopic("2", 1, 1, daysAgo(1)), models.DeptEquipment)

	got, ok := FindBottleneck([]models.Topic{a, b})
	if !ok || got.Department != string(models.DeptCivilWorks) || got.Load != 1 {
		t.Errorf("unexpected bottleneck: %+v ok=%v", got, ok)
	}
	if _, ok := FindBottleneck(nil); ok {
		t.Error("expected no bottleneck for empty input")
	}
}

func TestRiskConcentration(t *testing.T) {
	var topics []models.Topic
	for i := 0; i < 20; i++ {
		topics = append(topics, newTopic("x", 1, 1, daysAgo(1)))
	}
	topics[3].Consequence, topics[3].Likelihood = 5, 5
	topics[7].Consequence, topics[7].Likelihood = 4, 5

	c := RiskConcentration(topics)
	if c.TopCount != 2 || c.SumTop != 45 || c.TotalScore != 63 {
		t.Errorf("unexpected concentration: %+v", c)
	}
}

func TestLocalDashboardInsights(t *testing.T) {
	ci := LocalDashboardInsights(BuildMetrics(dashboardFixture(), refNow))

	tests := []struct {
		name, got, want string
	}{
		{"distribution", ci.DistributionInsight, "predominantly Critical priority, representing a 25% probability"},
		{"aging", ci.AgingInsight, "mean dwell time of 90 days"},
		{"heatmap", ci.RiskHeatmapInsight, "heavy density in the Nuclear Island / Critical quadrant"},
		{"waterfall", ci.WaterfallInsight, "Negative Feedback Loop"},
		{"entropy", ci.EntropyInsight, "indicates variable status distribution"},
		{"pareto", ci.ParetoInsight, "Identifying 3 'High-ROI' items"},
		{"bayesian", ci.BayesianInsight, "Delivery confidence fluctuates"},
		{"control", ci.ControlInsight, "currently Unstable"},
	}
	for _, tt := range tests {
		if !strings.Contains(tt.got, tt.want) {
			t.Errorf("%s: %q does not contain %q", tt.name, tt.got, tt.want)
		}
	}
}

func TestLocalDashboardInsights_GrowingExposure(t *testing.T) {
	m := models.DashboardMetrics{
		WaterfallData: []models.WaterfallPoint{{Name: models.WaterfallNetChange, Value: 7}},
	}
	ci := LocalDashboardInsights(m)
	if !strings.Contains(ci.WaterfallInsight, "Control System Alert") || !strings.Contains(ci.WaterfallInsight, "+7") {
		t.Errorf("unexpected waterfall insight: %q", ci.WaterfallInsight)
	}
	if !strings.Contains(ci.ControlInsight, "Insufficient history") {
		t.Errorf("unexpected control insight: %q", ci.ControlInsight)
	}
	if !strings.Contains(ci.EntropyInsight, "insufficient") {
		t.Errorf("unexpected entropy insight: %q", ci.EntropyInsight)
	}
}

func TestLocalDashboardInsights_Empty(t *testing.T) {
	ci := LocalDashboardInsights(BuildMetrics(nil, refNow))

	if !strings.HasPrefix(ci.DistributionInsight, "Insufficient data") {
		t.Errorf("unexpected distribution insight: %q", ci.DistributionInsight)
	}
	if !strings.HasPrefix(ci.AgingInsight, "Aging variance") {
		t.Errorf("unexpected aging insight: %q", ci.AgingInsight)
	}
	if !strings.HasPrefix(ci.RiskHeatmapInsight, "Heatmap distribution") {
		t.Errorf("unexpected heatmap insight: %q", ci.RiskHeatmapInsight)
	}
	if !strings.Contains(ci.ControlInsight, "Stable") {
		t.Errorf("unexpected control insight: %q", ci.ControlInsight)
	}
}
