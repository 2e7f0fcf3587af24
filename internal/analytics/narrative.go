package analytics

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/valter-silva-au/ptt-tracker/pkg/models"
)

// NoDataSummary is returned by LocalExecutiveSummary for an empty collection.
const NoDataSummary = "**No data available for analysis.**"

// Movement classes derived from status entropy in bits.
const (
	MovementHighlyDynamic = "Highly Dynamic"
	MovementModerate      = "Moderately Active"
	MovementStagnated     = "Stagnated/Consolidated"
)

const (
	highlyDynamicBits = 1.8
	moderateBits      = 1.0
	lowEntropyBits    = 1.2

	// concentrationShare is the top fraction of topics inspected for risk
	// concentration.
	concentrationShare = 0.1

	quickWinMaxRisk     = 10
	strategicMinRisk    = 15
	stagnantMinOpenDays = 60
)

// Concentration describes how much of the total risk sits in the top decile.
type Concentration struct {
	TopCount   int
	SumTop     int
	TotalScore int
	Percent    float64
}

// RiskConcentration sorts all topics by score and measures the share held by
// the top 10% (at least one topic). Percent is 0 when the total is 0.
func RiskConcentration(topics []models.Topic) Concentration {
	scores := make([]int, len(topics))
	total := 0
	for i, t := range topics {
		scores[i] = t.RiskScore()
		total += scores[i]
	}
	sort.Sort(sort.Reverse(sort.IntSlice(scores)))

	top := topCount(len(topics))
	if top > len(scores) {
		top = len(scores)
	}
	sumTop := 0
	for _, s := range scores[:top] {
		sumTop += s
	}

	c := Concentration{TopCount: top, SumTop: sumTop, TotalScore: total}
	if total > 0 {
		c.Percent = float64(sumTop) / float64(total) * 100
	}
	return c
}

// topCount is max(1, floor(n * 10%)).
func topCount(n int) int {
	k := int(math.Floor(float64(n) * concentrationShare))
	if k < 1 {
		return 1
	}
	return k
}

// MovementClass labels an entropy value in bits.
func MovementClass(bits float64) string {
	switch {
	case bits > highlyDynamicBits:
		return MovementHighlyDynamic
	case bits > moderateBits:
		return MovementModerate
	default:
		return MovementStagnated
	}
}

// Bottleneck is the department carrying the heaviest priority-weighted load.
type Bottleneck struct {
	Department string
	Load       int
}

// FindBottleneck weights active topics by priority (Critical 3, High 2,
// otherwise 1) and returns the department with the largest total. Ties go to
// the department encountered first. ok is false when no topic is active.
func FindBottleneck(topics []models.Topic) (b Bottleneck, ok bool) {
	load := newOrderedCounter()
	for _, t := range topics {
		if !t.IsActive() {
			continue
		}
		for i := 0; i < t.Priority.LoadWeight(); i++ {
			load.add(string(t.Department))
		}
	}
	for _, nv := range load.values() {
		if !ok || nv.Value > b.Load {
			b = Bottleneck{Department: nv.Name, Load: nv.Value}
			ok = true
		}
	}
	return b, ok
}

// DecisionMap buckets active topics for action. Buckets may overlap.
type DecisionMap struct {
	QuickWins      []models.Topic
	StrategicRisks []models.Topic
	StagnantItems  []models.Topic
}

// MapDecisions partitions active topics into quick wins (risk < 10 and Low
// priority), strategic risks (risk >= 15) and stagnant items (In Progress and
// open more than 60 days at now).
func MapDecisions(topics []models.Topic, now time.Time) DecisionMap {
	var dm DecisionMap
	for _, t := range topics {
		if !t.IsActive() {
			continue
		}
		risk := t.RiskScore()
		if risk < quickWinMaxRisk && t.Priority == models.PriorityLow {
			dm.QuickWins = append(dm.QuickWins, t)
		}
		if risk >= strategicMinRisk {
			dm.StrategicRisks = append(dm.StrategicRisks, t)
		}
		if t.Status == models.StatusInProgress && daysBetween(t.CreatedAt, now) > stagnantMinOpenDays {
			dm.StagnantItems = append(dm.StagnantItems, t)
		}
	}
	return dm
}

// LocalExecutiveSummary renders the rule-based executive summary for topics
// at now. The output is fully determined by its inputs.
func LocalExecutiveSummary(topics []models.Topic, now time.Time) string {
	if len(topics) == 0 {
		return NoDataSummary
	}

	conc := RiskConcentration(topics)
	bits := StatusEntropyBits(topics)
	bottleneck, hasBottleneck := FindBottleneck(topics)
	mapping := MapDecisions(topics, now)

	criticals, improving := 0, 0
	for _, t := range topics {
		if !t.IsActive() {
			continue
		}
		if t.Priority == models.PriorityCritical {
			criticals++
		}
		if t.RiskTrend == models.TrendImproving {
			improving++
		}
	}

	entropyInsight := "High entropy indicates healthy parallel processing across the engineering lifecycle."
	if bits < lowEntropyBits {
		entropyInsight = "Low entropy suggests work is bunching in specific workflow stages (likely Under Review), indicating a potential serial dependency blocker."
	}

	constraint, constraintLoad, focus := "None", 0, "N/A"
	if hasBottleneck {
		constraint, constraintLoad, focus = bottleneck.Department, bottleneck.Load, bottleneck.Department
	}

	headline := "None"
	if len(mapping.StrategicRisks) > 0 {
		headline = mapping.StrategicRisks[0].Title
	}

	var b strings.Builder
	b.WriteString("**1. Statistical Risk Profile (Risk Theory)**\n")
	fmt.Fprintf(&b, "The total project risk exposure is quantified at **%d units**. Applying a 10%% Value-at-Risk (VaR) model, we find that **%s%%** of the total risk is concentrated in just %d items. This indicates a high sensitivity to specific failure points rather than a distributed risk landscape.\n\n",
		conc.TotalScore, fixed(conc.Percent, 1), conc.TopCount)

	b.WriteString("**2. Operational Velocity & Information Entropy**\n")
	fmt.Fprintf(&b, "Status distribution analysis yields an entropy score of **%s**. The project is currently in a **%s** state.\n",
		fixed(bits, 2), MovementClass(bits))
	fmt.Fprintf(&b, "* *Insight:* %s\n\n", entropyInsight)

	b.WriteString("**3. Resource Optimization & Bottlenecks (Operations Research)**\n")
	fmt.Fprintf(&b, "Linear optimization of task weights identifies **%s** as the primary system constraint (Load Density: %d). Current throughput in this area is the limiting factor for overall project delivery.\n\n",
		constraint, constraintLoad)

	b.WriteString("**4. Decision Theory: Strategic Categorization**\n")
	b.WriteString("Based on Expected Utility theory, the following actions are recommended:\n")
	fmt.Fprintf(&b, "* **Strategic Intervention (%d items):** Immediate senior management oversight required for high-consequence items like *%s*.\n",
		len(mapping.StrategicRisks), headline)
	fmt.Fprintf(&b, "* **Tactical \"Quick-Wins\" (%d items):** Low-complexity items ready for resolution to reduce \"volume noise\" in the system.\n",
		len(mapping.QuickWins))
	fmt.Fprintf(&b, "* **Audit Required (%d items):** Tasks that have exceeded %d days in 'In Progress' status without transitioning, suggesting hidden blockers.\n\n",
		len(mapping.StagnantItems), stagnantMinOpenDays)

	b.WriteString("**5. Engineering Recommendations (Game Theory / Logic)**\n")
	fmt.Fprintf(&b, "* **Zero-Sum Mitigation:** Prioritize the %d Critical items which represent non-negotiable safety/licensing gates.\n", criticals)
	fmt.Fprintf(&b, "* **Positive Momentum:** Leverage the **%d** topics currently showing improving trends to reallocate resources to the bottlenecked **%s** area.\n",
		improving, focus)
	b.WriteString("* **Root Cause Stability:** Ensure that documented history logs are maintained for all active tasks to prevent \"Information Decay\" in the engineering logic chain.")

	return b.String()
}

// LocalDashboardInsights derives one sentence per chart from a metrics
// snapshot. Every branch tolerates empty series.
func LocalDashboardInsights(m models.DashboardMetrics) models.ChartInsights {
	var ci models.ChartInsights

	if top, ok := maxNamedValue(m.ByPriority); ok && m.TotalTopics > 0 {
		share := float64(top.Value) / float64(m.TotalTopics) * 100
		ci.DistributionInsight = fmt.Sprintf("Statistical Mode: The dataset is predominantly %s priority, representing a %s%% probability of any new topic falling into this category.",
			top.Name, fixed(share, 0))
	} else {
		ci.DistributionInsight = "Insufficient data for statistical mode analysis."
	}

	sumAge, criticalPoints := 0, 0
	for _, p := range m.ScatterData {
		if p.PriorityLabel == string(models.PriorityCritical) {
			sumAge += p.X
			criticalPoints++
		}
	}
	avgAge := 0
	if criticalPoints > 0 {
		avgAge = int(math.Floor(float64(sumAge)/float64(criticalPoints) + 0.5))
	}
	if avgAge > 0 {
		ci.AgingInsight = fmt.Sprintf("Deterministic Aging: Critical paths are showing a mean dwell time of %d days, exceeding the project standard deviation for resolution targets.", avgAge)
	} else {
		ci.AgingInsight = "Aging variance is within acceptable operational tolerances."
	}

	if cell, ok := maxHeatmapCell(m.HeatmapData); ok && cell.Value > 0 {
		ci.RiskHeatmapInsight = fmt.Sprintf("Risk Matrix Cluster: Logic identifies a heavy density in the %s / %s quadrant, suggesting a systemic risk correlation in that area.", cell.X, cell.Y)
	} else {
		ci.RiskHeatmapInsight = "Heatmap distribution indicates a non-correlated, stochastic risk spread."
	}

	net := m.Waterfall(models.WaterfallNetChange)
	if net > 0 {
		ci.WaterfallInsight = fmt.Sprintf("Control System Alert: System gain (New Risk) is outpacing damping (Resolution), leading to a net instability of +%d risk points.", net)
	} else {
		ci.WaterfallInsight = fmt.Sprintf("Negative Feedback Loop: The system is successfully self-correcting, with a net risk reduction of %d points.", absInt(net))
	}

	health := "insufficient"
	if len(m.EntropyData) > 0 {
		health = "variable"
	}
	ci.EntropyInsight = fmt.Sprintf("Information Theory: Shannon entropy indicates %s status distribution health across divisions.", health)

	frontier := 0
	for _, p := range m.ParetoData {
		if p.IsFrontier {
			frontier++
		}
	}
	ci.ParetoInsight = fmt.Sprintf("Optimisation: Identifying %d 'High-ROI' items on the Efficient Frontier.", frontier)

	ci.BayesianInsight = "Probability: Delivery confidence fluctuates based on current departmental velocity and closure variance."

	if n := len(m.ControlData); n > 0 {
		state := "Unstable"
		if m.ControlData[n-1].Stability >= 0 {
			state = "Stable"
		}
		ci.ControlInsight = fmt.Sprintf("Dynamics: System stability is currently %s based on net throughput.", state)
	} else {
		ci.ControlInsight = "Dynamics: Insufficient history to assess system stability."
	}

	return ci
}

// maxNamedValue returns the first entry holding the largest value.
func maxNamedValue(values []models.NamedValue) (models.NamedValue, bool) {
	var best models.NamedValue
	found := false
	for _, v := range values {
		if !found || v.Value > best.Value {
			best, found = v, true
		}
	}
	return best, found
}

// maxHeatmapCell returns the first cell holding the largest count.
func maxHeatmapCell(cells []models.HeatmapCell) (models.HeatmapCell, bool) {
	var best models.HeatmapCell
	found := false
	for _, c := range cells {
		if !found || c.Value > best.Value {
			best, found = c, true
		}
	}
	return best, found
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
