package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/ptt-tracker/internal/core"
	"github.com/valter-silva-au/ptt-tracker/pkg/models"
)

// topicFieldFlags holds the editable topic fields shared by add and update.
type topicFieldFlags struct {
	title       string
	description string
	department  string
	priority    string
	status      string
	owner       string
	target      string
	consequence int
	likelihood  int
	trend       string
	comments    string
	evidence    string
	note        string
	user        string
	attach      []string
}

var (
	topicAddFlags    topicFieldFlags
	topicUpdateFlags topicFieldFlags
	topicListFilter  topicFilterFlags
	topicListJSON    bool
	topicResolve     topicFieldFlags
)

var topicCmd = &cobra.Command{
	Use:   "topic",
	Short: "Manage Priority Technical Topics",
	Long:  "Create, list, inspect, update, resolve and delete Priority Technical Topics.",
}

var topicAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a new topic",
	Long: `Create a new topic. The ID is allocated sequentially (00001, 00002, ...)
and a "Topic Created" history entry is recorded.

Consequence and likelihood are scored 1-5; their product is the risk score.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if TopicMgr == nil {
			return fmt.Errorf("topic manager not initialized")
		}

		f := topicAddFlags
		opts := core.CreateTopicOptions{
			Title:       f.title,
			Description: f.description,
			Department:  parseDepartmentLoose(f.department),
			Priority:    parsePriorityLoose(f.priority),
			Status:      parseStatusLoose(f.status),
			Owner:       f.owner,
			Consequence: f.consequence,
			Likelihood:  f.likelihood,
			RiskTrend:   parseTrendLoose(f.trend),
			Comments:    f.comments,
			Evidence:    f.evidence,
			User:        f.user,
		}
		if opts.Owner == "" {
			opts.Owner = DefaultOwner
		}
		if f.target != "" {
			target, err := parseDate("target", f.target)
			if err != nil {
				return err
			}
			opts.TargetResolutionDate = target
		}
		for _, path := range f.attach {
			a, err := core.AttachmentFromFile(path, Clock())
			if err != nil {
				return err
			}
			opts.Attachments = append(opts.Attachments, a)
		}

		topic, err := TopicMgr.CreateTopic(opts)
		if err != nil {
			return fmt.Errorf("creating topic: %w", err)
		}

		fmt.Printf("Created topic %s\n", topic.ID)
		fmt.Printf("  Title:      %s\n", topic.Title)
		fmt.Printf("  Department: %s\n", topic.Department)
		fmt.Printf("  Priority:   %s\n", topic.Priority)
		fmt.Printf("  Risk score: %d (C%d x L%d)\n", topic.RiskScore(), topic.Consequence, topic.Likelihood)
		return nil
	},
}

var topicListCmd = &cobra.Command{
	Use:   "list",
	Short: "List topics",
	Long: `List topics ordered by ID. Filters combine: every set filter must match.

Examples:
  ptt topic list --priority Critical
  ptt topic list --status "New,In Progress" --department "Civil Works"
  ptt topic list --from 2025-01-01 --to 2025-03-31`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if TopicMgr == nil {
			return fmt.Errorf("topic manager not initialized")
		}

		filter, err := topicListFilter.toFilter()
		if err != nil {
			return err
		}
		topics, err := TopicMgr.ListTopics(filter)
		if err != nil {
			return fmt.Errorf("listing topics: %w", err)
		}

		if topicListJSON {
			data, err := json.MarshalIndent(topics, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting topics as JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		if len(topics) == 0 {
			fmt.Println("No topics found.")
			return nil
		}

		fmt.Printf("%-7s %-9s %-13s %-5s %-20s %s\n", "ID", "PRIORITY", "STATUS", "RISK", "DEPARTMENT", "TITLE")
		fmt.Printf("%-7s %-9s %-13s %-5s %-20s %s\n", "--", "--------", "------", "----", "----------", "-----")
		for _, t := range topics {
			fmt.Printf("%-7s %-9s %-13s %-5d %-20s %s\n",
				t.ID, t.Priority, t.Status, t.RiskScore(), t.Department, t.Title)
		}
		fmt.Printf("\n%d topic(s)\n", len(topics))
		return nil
	},
}

var topicShowCmd = &cobra.Command{
	Use:               "show <topic-id>",
	Short:             "Show a topic with its change history",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeTopicIDs(),
	RunE: func(cmd *cobra.Command, args []string) error {
		if TopicMgr == nil {
			return fmt.Errorf("topic manager not initialized")
		}

		t, err := TopicMgr.GetTopic(args[0])
		if err != nil {
			return fmt.Errorf("fetching topic: %w", err)
		}
		printTopic(*t)
		return nil
	},
}

var topicUpdateCmd = &cobra.Command{
	Use:   "update <topic-id>",
	Short: "Update a topic",
	Long: `Update one or more fields of a topic. Only flags that are given change.

A history entry records every tracked field that changed (priority, status,
consequence, likelihood, risk trend, department). Changing consequence or
likelihood requires --evidence.`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeTopicIDs(models.StatusResolved),
	RunE: func(cmd *cobra.Command, args []string) error {
		if TopicMgr == nil {
			return fmt.Errorf("topic manager not initialized")
		}

		update, err := topicUpdateFlags.toUpdate()
		if err != nil {
			return err
		}
		f := topicUpdateFlags
		t, err := TopicMgr.UpdateTopic(args[0], update, core.ChangeNote{
			Description: f.note,
			Evidence:    f.evidence,
			User:        f.user,
		})
		if err != nil {
			return fmt.Errorf("updating topic: %w", err)
		}

		latest := t.History[len(t.History)-1]
		fmt.Printf("Updated topic %s\n", t.ID)
		if len(latest.Changes) == 0 {
			fmt.Println("  No tracked fields changed.")
		}
		for _, c := range latest.Changes {
			fmt.Printf("  %-12s %s -> %s\n", c.Field+":", c.OldValue, c.NewValue)
		}
		return nil
	},
}

var topicResolveCmd = &cobra.Command{
	Use:               "resolve <topic-id>",
	Short:             "Mark a topic as resolved",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeTopicIDs(models.StatusResolved),
	RunE: func(cmd *cobra.Command, args []string) error {
		if TopicMgr == nil {
			return fmt.Errorf("topic manager not initialized")
		}

		t, err := TopicMgr.UpdateStatus(args[0], models.StatusResolved, core.ChangeNote{
			Description: topicResolve.note,
			Evidence:    topicResolve.evidence,
			User:        topicResolve.user,
		})
		if err != nil {
			return fmt.Errorf("resolving topic: %w", err)
		}
		fmt.Printf("Resolved topic %s (%s), risk score %d removed from exposure\n", t.ID, t.Title, t.RiskScore())
		return nil
	},
}

var topicDeleteCmd = &cobra.Command{
	Use:               "delete <topic-id>",
	Short:             "Delete a topic and its history",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeTopicIDs(),
	RunE: func(cmd *cobra.Command, args []string) error {
		if TopicMgr == nil {
			return fmt.Errorf("topic manager not initialized")
		}
		if err := TopicMgr.DeleteTopic(args[0]); err != nil {
			return fmt.Errorf("deleting topic: %w", err)
		}
		fmt.Printf("Deleted topic %s\n", args[0])
		return nil
	},
}

// toUpdate converts the set flags into a TopicUpdate. Empty strings and zero
// scores leave the field untouched.
func (f topicFieldFlags) toUpdate() (core.TopicUpdate, error) {
	var u core.TopicUpdate
	if f.title != "" {
		u.Title = &f.title
	}
	if f.description != "" {
		u.Description = &f.description
	}
	if f.department != "" {
		d := parseDepartmentLoose(f.department)
		u.Department = &d
	}
	if f.priority != "" {
		p := parsePriorityLoose(f.priority)
		u.Priority = &p
	}
	if f.status != "" {
		s := parseStatusLoose(f.status)
		u.Status = &s
	}
	if f.owner != "" {
		u.Owner = &f.owner
	}
	if f.target != "" {
		target, err := parseDate("target", f.target)
		if err != nil {
			return u, err
		}
		u.TargetResolutionDate = &target
	}
	if f.consequence != 0 {
		u.Consequence = &f.consequence
	}
	if f.likelihood != 0 {
		u.Likelihood = &f.likelihood
	}
	if f.trend != "" {
		tr := parseTrendLoose(f.trend)
		u.RiskTrend = &tr
	}
	if f.comments != "" {
		u.Comments = &f.comments
	}
	return u, nil
}

// printTopic prints the topic details followed by its history, oldest first.
func printTopic(t models.Topic) {
	fmt.Printf("Topic %s: %s\n\n", t.ID, t.Title)
	fmt.Printf("  %-13s %s\n", "Department:", t.Department)
	fmt.Printf("  %-13s %s\n", "Priority:", t.Priority)
	fmt.Printf("  %-13s %s\n", "Status:", t.Status)
	fmt.Printf("  %-13s %s\n", "Owner:", t.Owner)
	fmt.Printf("  %-13s %d (C%d x L%d)\n", "Risk score:", t.RiskScore(), t.Consequence, t.Likelihood)
	fmt.Printf("  %-13s %s\n", "Trend:", t.RiskTrend)
	fmt.Printf("  %-13s %s\n", "Created:", t.CreatedAt.Format(dateLayout))
	fmt.Printf("  %-13s %s\n", "Target:", t.TargetResolutionDate.Format(dateLayout))
	fmt.Printf("\n  %s\n", t.Description)
	if t.Comments != "" {
		fmt.Printf("\n  Comments: %s\n", t.Comments)
	}
	if len(t.Attachments) > 0 {
		fmt.Printf("\nAttachments (%d):\n", len(t.Attachments))
		for _, a := range t.Attachments {
			fmt.Printf("  %s  %s, %s\n", a.Name, formatSize(a.Size), a.Type)
		}
	}

	fmt.Printf("\nHistory (%d):\n", len(t.History))
	for _, h := range sortedHistory(t.History) {
		fmt.Printf("  %s  %s (%s)\n", h.Date.Format("2006-01-02 15:04"), h.Description, h.User)
		for _, c := range h.Changes {
			fmt.Printf("      %s: %s -> %s\n", c.Field, c.OldValue, c.NewValue)
		}
		if h.Evidence != "" {
			fmt.Printf("      evidence: %s\n", h.Evidence)
		}
	}
}

// formatSize renders a byte count using binary units.
func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// sortedHistory returns a copy of entries in chronological order. Stored
// history is not guaranteed to be ordered.
func sortedHistory(entries []models.HistoryEntry) []models.HistoryEntry {
	out := append([]models.HistoryEntry(nil), entries...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// The loose parsers fall back to the raw value so topic validation reports
// the allowed values.

func parseDepartmentLoose(s string) models.Department {
	if d, ok := models.ParseDepartment(s); ok {
		return d
	}
	return models.Department(strings.TrimSpace(s))
}

func parsePriorityLoose(s string) models.Priority {
	if p, ok := models.ParsePriority(s); ok {
		return p
	}
	return models.Priority(strings.TrimSpace(s))
}

func parseStatusLoose(s string) models.Status {
	if s == "" {
		return ""
	}
	if st, ok := models.ParseStatus(s); ok {
		return st
	}
	return models.Status(strings.TrimSpace(s))
}

func parseTrendLoose(s string) models.RiskTrend {
	if s == "" {
		return ""
	}
	if t, ok := models.ParseRiskTrend(s); ok {
		return t
	}
	return models.RiskTrend(strings.TrimSpace(s))
}

func bindTopicFieldFlags(cmd *cobra.Command, f *topicFieldFlags) {
	cmd.Flags().StringVar(&f.title, "title", "", "Topic title")
	cmd.Flags().StringVar(&f.description, "description", "", "Topic description")
	cmd.Flags().StringVar(&f.department, "department", "", "Owning department")
	cmd.Flags().StringVar(&f.priority, "priority", "", "Priority (Critical, High, Medium, Low)")
	cmd.Flags().StringVar(&f.status, "status", "", "Status (New, In Progress, Under Review, Resolved, On Hold)")
	cmd.Flags().StringVar(&f.owner, "owner", "", "Responsible owner")
	cmd.Flags().StringVar(&f.target, "target", "", "Target resolution date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&f.consequence, "consequence", 0, "Consequence score 1-5")
	cmd.Flags().IntVar(&f.likelihood, "likelihood", 0, "Likelihood score 1-5")
	cmd.Flags().StringVar(&f.trend, "trend", "", "Risk trend (Escalating, Stable, Improving)")
	cmd.Flags().StringVar(&f.comments, "comments", "", "Free-form comments")
	cmd.Flags().StringVar(&f.evidence, "evidence", "", "Evidence supporting the change")
	cmd.Flags().StringVar(&f.user, "user", "", "User recorded in the history entry (defaults to the owner)")
	_ = cmd.RegisterFlagCompletionFunc("department", completeDepartments)
	_ = cmd.RegisterFlagCompletionFunc("priority", completePriorities)
	_ = cmd.RegisterFlagCompletionFunc("status", completeStatuses)
	_ = cmd.RegisterFlagCompletionFunc("trend", completeTrends)
}

func init() {
	bindTopicFieldFlags(topicAddCmd, &topicAddFlags)
	topicAddCmd.Flags().StringArrayVar(&topicAddFlags.attach, "attach", nil, "File to attach (repeatable)")
	for _, name := range []string{"title", "description", "department", "priority", "consequence", "likelihood", "target"} {
		_ = topicAddCmd.MarkFlagRequired(name)
	}

	bindTopicFieldFlags(topicUpdateCmd, &topicUpdateFlags)
	topicUpdateCmd.Flags().StringVar(&topicUpdateFlags.note, "note", "", "Description recorded in the history entry")

	topicListFilter.bind(topicListCmd)
	topicListCmd.Flags().BoolVar(&topicListJSON, "json", false, "Output topics as JSON")

	topicResolveCmd.Flags().StringVar(&topicResolve.note, "note", "", "Description recorded in the history entry")
	topicResolveCmd.Flags().StringVar(&topicResolve.evidence, "evidence", "", "Evidence of resolution")
	topicResolveCmd.Flags().StringVar(&topicResolve.user, "user", "", "User recorded in the history entry")

	topicCmd.AddCommand(topicAddCmd, topicListCmd, topicShowCmd, topicUpdateCmd, topicResolveCmd, topicDeleteCmd)
	rootCmd.AddCommand(topicCmd)
}
