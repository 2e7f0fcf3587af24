package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/ptt-tracker/pkg/models"
)

var (
	metricsJSON   bool
	metricsFilter topicFilterFlags
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Display the risk analytics for the current topics",
	Long: `Display the aggregate risk analytics: topic counts, the 30-day exposure
waterfall, status entropy per department, Bayesian delivery confidence,
the effort/risk Pareto frontier and the latest weekly stability.

Filters narrow the topic set before any analytic runs.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Insights == nil {
			return fmt.Errorf("insight engine not initialized")
		}

		filter, err := metricsFilter.toFilter()
		if err != nil {
			return err
		}
		m, err := Insights.Metrics(filter)
		if err != nil {
			return fmt.Errorf("calculating metrics: %w", err)
		}

		if metricsJSON {
			data, err := json.MarshalIndent(m, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting metrics as JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		printMetrics(m)
		return nil
	},
}

func printMetrics(m models.DashboardMetrics) {
	fmt.Printf("Metrics (as of %s)\n\n", Clock().Format(dateLayout))
	fmt.Printf("  %-24s %d\n", "Total topics:", m.TotalTopics)
	fmt.Printf("  %-24s %d\n", "Active critical:", m.CriticalCount)
	fmt.Printf("  %-24s %d\n", "Resolved:", m.ResolvedCount)
	fmt.Printf("  %-24s %d\n", "Escalating:", m.EscalatingCount)
	fmt.Printf("  %-24s %d\n", "Improving:", m.ImprovingCount)
	fmt.Printf("  %-24s %d\n", "Current exposure:", m.Waterfall(models.WaterfallCurrent))

	if len(m.ByDepartment) > 0 {
		fmt.Println("\n  Active by department:")
		for _, d := range m.ByDepartment {
			fmt.Printf("    %-22s %d\n", d.Name+":", d.Value)
		}
	}

	if len(m.WaterfallData) > 0 {
		fmt.Println("\n  Exposure waterfall (30d):")
		for _, w := range m.WaterfallData {
			fmt.Printf("    %-22s %+d\n", w.Name+":", w.Value)
		}
	}

	if len(m.EntropyData) > 0 {
		fmt.Println("\n  Status entropy:")
		for _, e := range m.EntropyData {
			fmt.Printf("    %-22s %.2f (%d topics)\n", e.Subject+":", e.Entropy, e.Diversity)
		}
	}

	if len(m.BayesianData) > 0 {
		fmt.Println("\n  Delivery confidence:")
		for _, b := range m.BayesianData {
			fmt.Printf("    %-22s %.1f%% (variance %.4f)\n", b.Name+":", b.Probability*100, b.Variance)
		}
	}

	var frontier []models.ParetoPoint
	for _, p := range m.ParetoData {
		if p.IsFrontier {
			frontier = append(frontier, p)
		}
	}
	if len(frontier) > 0 {
		fmt.Println("\n  Pareto frontier (high risk, low effort):")
		for _, p := range frontier {
			fmt.Printf("    %-7s risk %-3d effort %-6.2f %s\n", p.ID, p.Risk, p.Effort, p.Name)
		}
	}

	if n := len(m.ControlData); n > 0 {
		last := m.ControlData[n-1]
		fmt.Printf("\n  %-24s %s: gain %d, damping %d, stability %+d\n",
			"Latest week:", last.Date, last.Gain, last.Damping, last.Stability)
	}
}

func init() {
	metricsCmd.Flags().BoolVar(&metricsJSON, "json", false, "Output metrics as JSON")
	metricsFilter.bind(metricsCmd)
	rootCmd.AddCommand(metricsCmd)
}
