package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/ptt-tracker/pkg/models"
)

// completeTopicIDs returns a completion function that lists topic IDs,
// optionally filtered to exclude certain statuses.
func completeTopicIDs(excludeStatuses ...models.Status) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(_ *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if TopicMgr == nil || len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		topics, err := TopicMgr.ListTopics(models.TopicFilter{})
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		exclude := make(map[models.Status]bool)
		for _, s := range excludeStatuses {
			exclude[s] = true
		}

		var ids []string
		for _, t := range topics {
			if exclude[t.Status] {
				continue
			}
			if toComplete == "" || strings.HasPrefix(t.ID, toComplete) {
				ids = append(ids, t.ID+"\t"+string(t.Priority)+": "+t.Title)
			}
		}

		return ids, cobra.ShellCompDirectiveNoFileComp
	}
}

func completeDepartments(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	var out []string
	for _, d := range models.Departments() {
		out = append(out, string(d))
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

func completePriorities(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{
		"Critical\tLoad weight 3",
		"High\tLoad weight 2",
		"Medium\tLoad weight 1",
		"Low\tLoad weight 1",
	}, cobra.ShellCompDirectiveNoFileComp
}

func completeStatuses(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{
		"New\tRaised, not yet worked",
		"In Progress\tActively being worked on",
		"Under Review\tAwaiting verification",
		"Resolved\tClosed out",
		"On Hold\tParked",
	}, cobra.ShellCompDirectiveNoFileComp
}

func completeTrends(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	var out []string
	for _, t := range models.RiskTrends() {
		out = append(out, string(t))
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
