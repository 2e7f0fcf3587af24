package analytics

import (
	"math"
	"time"

	"github.com/valter-silva-au/ptt-tracker/pkg/models"
)

const (
	// trendDays is how far back the daily risk trend and the waterfall reach.
	trendDays = 30

	// scatterBubbleSize is the constant z value of aging chart points.
	scatterBubbleSize = 10
)

// Options tunes BuildMetricsWith. The zero value selects the defaults.
type Options struct {
	StabilityWeeks int
}

// BuildMetrics assembles the dashboard snapshot for the given topics at now.
// Counts and groupings cover active topics unless noted; the input is
// expected to be already filtered by the caller. An empty slice produces
// zero counts and empty series.
func BuildMetrics(topics []models.Topic, now time.Time) models.DashboardMetrics {
	return BuildMetricsWith(topics, now, Options{})
}

// BuildMetricsWith is BuildMetrics with explicit options.
func BuildMetricsWith(topics []models.Topic, now time.Time, opts Options) models.DashboardMetrics {
	weeks := opts.StabilityWeeks
	if weeks <= 0 {
		weeks = DefaultStabilityWeeks
	}

	m := models.DashboardMetrics{
		TotalTopics:   len(topics),
		ByDepartment:  make([]models.NamedValue, 0),
		ByPriority:    make([]models.NamedValue, 0),
		ScatterData:   make([]models.ScatterPoint, 0),
		HeatmapData:   make([]models.HeatmapCell, 0, len(models.Departments())*len(models.Priorities())),
		RiskTrendData: make([]models.RiskTrendPoint, 0, trendDays+1),
	}

	byDept := newOrderedCounter()
	byPrio := newOrderedCounter()
	heat := make(map[models.Department]map[models.Priority]int)

	for _, t := range topics {
		if t.Status == models.StatusResolved {
			m.ResolvedCount++
			continue
		}

		switch t.RiskTrend {
		case models.TrendEscalating:
			m.EscalatingCount++
		case models.TrendImproving:
			m.ImprovingCount++
		case models.TrendStable:
		}
		if t.Priority == models.PriorityCritical {
			m.CriticalCount++
		}

		byDept.add(string(t.Department))
		byPrio.add(string(t.Priority))
		if heat[t.Department] == nil {
			heat[t.Department] = make(map[models.Priority]int)
		}
		heat[t.Department][t.Priority]++

		m.ScatterData = append(m.ScatterData, models.ScatterPoint{
			ID:            t.ID,
			X:             int(math.Ceil(math.Abs(daysBetween(t.CreatedAt, now)))),
			Y:             t.Priority.Rank(),
			Z:             scatterBubbleSize,
			Name:          t.Title,
			PriorityLabel: string(t.Priority),
			Owner:         t.Owner,
			Department:    string(t.Department),
		})
	}

	m.ByDepartment = byDept.values()
	m.ByPriority = byPrio.values()

	for _, d := range models.Departments() {
		for _, p := range models.Priorities() {
			m.HeatmapData = append(m.HeatmapData, models.HeatmapCell{
				X:     string(d),
				Y:     string(p),
				Value: heat[d][p],
			})
		}
	}

	for i := trendDays; i >= 0; i-- {
		date := now.Add(-time.Duration(i) * day)
		m.RiskTrendData = append(m.RiskTrendData, models.RiskTrendPoint{
			Date:           date.Format(labelLayout),
			TotalRiskScore: ReconstructExposure(topics, date),
		})
	}

	m.WaterfallData = Waterfall(topics, now)
	m.EntropyData = StatusEntropy(topics, ByDepartment())
	m.ParetoData = ParetoFrontier(topics, now)
	m.BayesianData = BayesianConfidence(topics, ByDepartment())
	m.ControlData = StabilityTimeSeries(topics, now, weeks)

	return m
}

// Waterfall explains how exposure moved over the trailing 30 days.
//
// Start and Current are reconstructed exposures 30 days ago and at now. New
// Risks sums the scores of topics created since then; Resolved is the negated
// score of Resolved topics whose history shows a resolution since then. Net
// Change is derived so that Current = Start + New Risks - resolved + Net Change.
func Waterfall(topics []models.Topic, now time.Time) []models.WaterfallPoint {
	since := now.Add(-trendDays * day)

	start := ReconstructExposure(topics, since)
	current := ReconstructExposure(topics, now)

	newRisk, resolvedRisk := 0, 0
	for _, t := range topics {
		if t.CreatedAt.After(since) {
			newRisk += t.RiskScore()
		}
		if resolvedAfter(t, since) {
			resolvedRisk += t.RiskScore()
		}
	}
	net := current - start - newRisk + resolvedRisk

	return []models.WaterfallPoint{
		{Name: models.WaterfallStart, Value: start},
		{Name: models.WaterfallNewRisks, Value: newRisk},
		{Name: models.WaterfallResolved, Value: -resolvedRisk},
		{Name: models.WaterfallNetChange, Value: net},
		{Name: models.WaterfallCurrent, Value: current, IsTotal: true},
	}
}

// orderedCounter counts string keys and remembers first-seen order so chart
// legends stay stable across calls.
type orderedCounter struct {
	order  []string
	counts map[string]int
}

func newOrderedCounter() *orderedCounter {
	return &orderedCounter{counts: make(map[string]int)}
}

func (c *orderedCounter) add(key string) {
	if _, ok := c.counts[key]; !ok {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

func (c *orderedCounter) values() []models.NamedValue {
	out := make([]models.NamedValue, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, models.NamedValue{Name: k, Value: c.counts[k]})
	}
	return out
}
