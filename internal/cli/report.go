package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	reportFilter topicFilterFlags
	reportFrom   string
	reportTo     string
	reportJSON   bool

	historyFrom string
	historyTo   string
	historyJSON bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the monthly risk report",
	Long: `Print month-by-month exposure, active and resolved counts between --from
and --to, followed by the active topics whose trend is moving.

Both dates default: --to to today and --from to six months earlier.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Insights == nil {
			return fmt.Errorf("insight engine not initialized")
		}

		filter, err := reportFilter.toFilter()
		if err != nil {
			return err
		}
		start, end, err := parseWindow(reportFrom, reportTo)
		if err != nil {
			return err
		}
		rm, err := Insights.Report(filter, start, end)
		if err != nil {
			return fmt.Errorf("building report: %w", err)
		}

		if reportJSON {
			data, err := json.MarshalIndent(rm, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting report as JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		fmt.Printf("%-8s %9s %7s %9s\n", "MONTH", "EXPOSURE", "ACTIVE", "RESOLVED")
		for i, d := range rm.Dates {
			fmt.Printf("%-8s %9d %7d %9d\n", d, rm.RiskTrend[i], rm.ActiveCount[i], rm.ResolvedCount[i])
		}

		if len(rm.TopicMovements) == 0 {
			fmt.Println("\nNo active topics are moving.")
			return nil
		}
		fmt.Printf("\nMoving topics (%d):\n", len(rm.TopicMovements))
		for _, t := range rm.TopicMovements {
			fmt.Printf("  %-7s %-11s %-3d %s\n", t.ID, t.RiskTrend, t.RiskScore(), t.Title)
		}
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history <topic-id> [topic-id...]",
	Short: "Show weekly risk history for one or more topics",
	Long: `Reconstruct risk scores weekly from each topic's change history.

With one ID the score and trend are listed per week. With several IDs the
scores are printed side by side; a topic scores 0 before it was created and
after it was resolved.`,
	Args:              cobra.MinimumNArgs(1),
	ValidArgsFunction: completeTopicIDs(),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Insights == nil {
			return fmt.Errorf("insight engine not initialized")
		}

		start, end, err := parseWindow(historyFrom, historyTo)
		if err != nil {
			return err
		}

		if len(args) == 1 {
			points, err := Insights.TopicHistory(args[0], start, end)
			if err != nil {
				return fmt.Errorf("building history: %w", err)
			}
			if historyJSON {
				return printJSON(points)
			}
			if len(points) == 0 {
				fmt.Println("No history in the selected window.")
				return nil
			}
			fmt.Printf("%-8s %5s  %s\n", "WEEK", "RISK", "TREND")
			for _, p := range points {
				fmt.Printf("%-8s %5d  %s\n", p.Date, p.RiskScore, p.Trend)
			}
			return nil
		}

		points, err := Insights.CompareTopics(args, start, end)
		if err != nil {
			return fmt.Errorf("comparing topics: %w", err)
		}
		if historyJSON {
			return printJSON(points)
		}

		ids := append([]string(nil), args...)
		sort.Strings(ids)
		fmt.Printf("%-8s", "WEEK")
		for _, id := range ids {
			fmt.Printf(" %7s", id)
		}
		fmt.Println()
		for _, p := range points {
			var b strings.Builder
			fmt.Fprintf(&b, "%-8s", p.Date)
			for _, id := range ids {
				fmt.Fprintf(&b, " %7d", p.Scores[id])
			}
			fmt.Println(b.String())
		}
		return nil
	},
}

// parseWindow parses optional --from/--to values. Missing values stay zero
// so the insight engine applies its defaults.
func parseWindow(from, to string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error
	if from != "" {
		if start, err = parseDate("from", from); err != nil {
			return start, end, err
		}
	}
	if to != "" {
		if end, err = parseDate("to", to); err != nil {
			return start, end, err
		}
		// Include the whole end day.
		end = end.Add(24*time.Hour - time.Nanosecond)
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return start, end, fmt.Errorf("--to %s is before --from %s", to, from)
	}
	return start, end, nil
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("formatting JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func init() {
	reportFilter.bindSelection(reportCmd)
	reportCmd.Flags().StringVar(&reportFrom, "from", "", "First month of the report (YYYY-MM-DD)")
	reportCmd.Flags().StringVar(&reportTo, "to", "", "Last month of the report (YYYY-MM-DD)")
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "Output the report as JSON")

	historyCmd.Flags().StringVar(&historyFrom, "from", "", "Start of the window (YYYY-MM-DD, default six months before --to)")
	historyCmd.Flags().StringVar(&historyTo, "to", "", "End of the window (YYYY-MM-DD, default today)")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Output the history as JSON")

	rootCmd.AddCommand(reportCmd, historyCmd)
}
