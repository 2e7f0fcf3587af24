package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	activityJSON  bool
	activitySince string
)

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Display recent topic activity from the event log",
	Long: `Display activity derived from the event log: topics created, updated,
resolved and deleted, status transitions and new topics per department.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if ActivityCalc == nil {
			return fmt.Errorf("activity calculator not initialized (observability may be disabled)")
		}

		sinceTime, err := parseSinceDuration(activitySince, Clock())
		if err != nil {
			return fmt.Errorf("parsing --since: %w", err)
		}

		activity, err := ActivityCalc.Calculate(sinceTime)
		if err != nil {
			return fmt.Errorf("calculating activity: %w", err)
		}

		if activityJSON {
			data, err := json.MarshalIndent(activity, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting activity as JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		fmt.Printf("Activity (since %s)\n\n", sinceTime.Format(dateLayout))
		fmt.Printf("  %-24s %d\n", "Events recorded:", activity.EventCount)
		fmt.Printf("  %-24s %d\n", "Topics created:", activity.TopicsCreated)
		fmt.Printf("  %-24s %d\n", "Topics updated:", activity.TopicsUpdated)
		fmt.Printf("  %-24s %d\n", "Topics resolved:", activity.TopicsResolved)
		fmt.Printf("  %-24s %d\n", "Topics deleted:", activity.TopicsDeleted)

		printCounts("Created by department:", activity.CreatedByDept)
		printCounts("Status transitions:", activity.StatusTransitions)

		if activity.OldestEvent != nil {
			fmt.Printf("\n  %-24s %s\n", "Oldest event:", activity.OldestEvent.Format(time.RFC3339))
		}
		if activity.NewestEvent != nil {
			fmt.Printf("  %-24s %s\n", "Newest event:", activity.NewestEvent.Format(time.RFC3339))
		}

		return nil
	},
}

// printCounts prints a titled block of counts in key order.
func printCounts(title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Printf("\n  %s\n", title)
	for _, k := range keys {
		fmt.Printf("    %-30s %d\n", k+":", counts[k])
	}
}

// parseSinceDuration parses a human-friendly duration string like "7d", "30d",
// or "24h" and returns the corresponding time before now.
func parseSinceDuration(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return now.AddDate(0, 0, -7), nil
	}

	if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid day duration %q", s)
		}
		return now.AddDate(0, 0, -days), nil
	}

	if strings.HasSuffix(s, "h") {
		hours, err := strconv.Atoi(strings.TrimSuffix(s, "h"))
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid hour duration %q", s)
		}
		return now.Add(-time.Duration(hours) * time.Hour), nil
	}

	return time.Time{}, fmt.Errorf("unsupported duration format %q (use e.g. 7d, 30d, 24h)", s)
}

func init() {
	activityCmd.Flags().BoolVar(&activityJSON, "json", false, "Output activity as JSON")
	activityCmd.Flags().StringVar(&activitySince, "since", "7d", "Time window (e.g. 7d, 30d, 24h)")
	rootCmd.AddCommand(activityCmd)
}
