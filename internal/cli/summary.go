package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	summaryFilter  topicFilterFlags
	insightsFilter topicFilterFlags
	insightsJSON   bool
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the executive summary",
	Long: `Print a deterministic executive summary of the current topics: risk
concentration, exposure movement over the last 30 days, the department
bottleneck and recommended decisions.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Insights == nil {
			return fmt.Errorf("insight engine not initialized")
		}

		filter, err := summaryFilter.toFilter()
		if err != nil {
			return err
		}
		summary, err := Insights.Summary(filter)
		if err != nil {
			return fmt.Errorf("building summary: %w", err)
		}
		fmt.Println(summary)
		return nil
	},
}

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Print one insight per dashboard chart",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Insights == nil {
			return fmt.Errorf("insight engine not initialized")
		}

		filter, err := insightsFilter.toFilter()
		if err != nil {
			return err
		}
		ci, err := Insights.Insights(filter)
		if err != nil {
			return fmt.Errorf("building insights: %w", err)
		}

		if insightsJSON {
			data, err := json.MarshalIndent(ci, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting insights as JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		lines := []struct {
			label string
			text  string
		}{
			{"Distribution", ci.DistributionInsight},
			{"Aging", ci.AgingInsight},
			{"Heatmap", ci.RiskHeatmapInsight},
			{"Waterfall", ci.WaterfallInsight},
			{"Entropy", ci.EntropyInsight},
			{"Pareto", ci.ParetoInsight},
			{"Confidence", ci.BayesianInsight},
			{"Stability", ci.ControlInsight},
		}
		for _, l := range lines {
			if l.text == "" {
				continue
			}
			fmt.Printf("  %-13s %s\n", l.label+":", l.text)
		}
		return nil
	},
}

func init() {
	summaryFilter.bind(summaryCmd)
	insightsFilter.bind(insightsCmd)
	insightsCmd.Flags().BoolVar(&insightsJSON, "json", false, "Output insights as JSON")
	rootCmd.AddCommand(summaryCmd, insightsCmd)
}
