package models

import "time"

// RiskHistoryPoint is one sample of a single topic's risk over time.
type RiskHistoryPoint struct {
	Date      string `json:"date"`
	RiskScore int    `json:"riskScore"`
	Trend     string `json:"trend"`
}

// MultiTopicRiskPoint holds the risk of several topics sampled at one date.
type MultiTopicRiskPoint struct {
	Date     string         `json:"date"`
	FullDate time.Time      `json:"fullDate"`
	Scores   map[string]int `json:"scores"`
}

// EntropyMetric is the normalized status diversity of one group.
// Diversity holds the raw member count of the group.
type EntropyMetric struct {
	Subject   string  `json:"subject"`
	Entropy   float64 `json:"entropy"`
	Diversity int     `json:"diversity"`
	FullMark  int     `json:"fullMark"`
}

// ParetoPoint places an active topic on the effort/risk plane.
type ParetoPoint struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Risk       int     `json:"risk"`
	Effort     float64 `json:"effort"`
	IsFrontier bool    `json:"isFrontier"`
}

// BayesianConfidence is the posterior delivery confidence of one group.
type BayesianConfidence struct {
	Name        string  `json:"name"`
	Probability float64 `json:"probability"`
	Variance    float64 `json:"variance"`
}

// ControlStabilityPoint is one week of the gain/damping time series.
type ControlStabilityPoint struct {
	Date      string `json:"date"`
	Gain      int    `json:"gain"`
	Damping   int    `json:"damping"`
	Stability int    `json:"stability"`
}

// NamedValue is a label/count pair used for chart legends.
type NamedValue struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// ScatterPoint is one active topic on the aging chart.
type ScatterPoint struct {
	ID            string `json:"id"`
	X             int    `json:"x"` // days open
	Y             int    `json:"y"` // priority rank
	Z             int    `json:"z"` // bubble size
	Name          string `json:"name"`
	PriorityLabel string `json:"priorityLabel"`
	Owner         string `json:"owner,omitempty"`
	Department    string `json:"department,omitempty"`
}

// HeatmapCell counts active topics for one department/priority pair.
type HeatmapCell struct {
	X     string `json:"x"` // department
	Y     string `json:"y"` // priority
	Value int    `json:"value"`
}

// RiskTrendPoint is the reconstructed total exposure on one day.
type RiskTrendPoint struct {
	Date           string `json:"date"`
	TotalRiskScore int    `json:"totalRiskScore"`
}

// Waterfall bar names.
const (
	WaterfallStart     = "Start"
	WaterfallNewRisks  = "New Risks"
	WaterfallResolved  = "Resolved"
	WaterfallNetChange = "Net Change"
	WaterfallCurrent   = "Current"
)

// WaterfallPoint is one bar of the 30-day exposure waterfall.
type WaterfallPoint struct {
	Name    string `json:"name"`
	Value   int    `json:"value"`
	IsTotal bool   `json:"isTotal,omitempty"`
}

// DashboardMetrics is the aggregate snapshot consumed by every presentation surface.
type DashboardMetrics struct {
	TotalTopics     int                     `json:"totalTopics"`
	CriticalCount   int                     `json:"criticalCount"`
	ResolvedCount   int                     `json:"resolvedCount"`
	EscalatingCount int                     `json:"escalatingCount"`
	ImprovingCount  int                     `json:"improvingCount"`
	ByDepartment    []NamedValue            `json:"byDepartment"`
	ByPriority      []NamedValue            `json:"byPriority"`
	ScatterData     []ScatterPoint          `json:"scatterData"`
	HeatmapData     []HeatmapCell           `json:"heatmapData"`
	RiskTrendData   []RiskTrendPoint        `json:"riskTrendData"`
	WaterfallData   []WaterfallPoint        `json:"waterfallData"`
	EntropyData     []EntropyMetric         `json:"entropyData"`
	ParetoData      []ParetoPoint           `json:"paretoData"`
	BayesianData    []BayesianConfidence    `json:"bayesianData"`
	ControlData     []ControlStabilityPoint `json:"controlData"`
}

// Waterfall returns the value of the named waterfall bar, or 0 if absent.
func (m DashboardMetrics) Waterfall(name string) int {
	for _, w := range m.WaterfallData {
		if w.Name == name {
			return w.Value
		}
	}
	return 0
}

// ChartInsights holds one short sentence per dashboard chart.
type ChartInsights struct {
	DistributionInsight string `json:"distributionInsight"`
	AgingInsight        string `json:"agingInsight"`
	RiskHeatmapInsight  string `json:"riskHeatmapInsight"`
	WaterfallInsight    string `json:"waterfallInsight,omitempty"`
	EntropyInsight      string `json:"entropyInsight,omitempty"`
	ParetoInsight       string `json:"paretoInsight,omitempty"`
	BayesianInsight     string `json:"bayesianInsight,omitempty"`
	ControlInsight      string `json:"controlInsight,omitempty"`
}

// ReportMetrics holds month-bucketed series for the periodic report.
type ReportMetrics struct {
	Dates          []string `json:"dates"`
	RiskTrend      []int    `json:"riskTrend"`
	ActiveCount    []int    `json:"activeCount"`
	ResolvedCount  []int    `json:"resolvedCount"`
	TopicMovements []Topic  `json:"topicMovements"`
}
