package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/ptt-tracker/pkg/models"
)

// dateLayout is the format accepted by every date flag.
const dateLayout = "2006-01-02"

// topicFilterFlags holds the raw values of the shared topic filter flags.
type topicFilterFlags struct {
	search     string
	department string
	priority   string
	status     string
	from       string
	to         string
}

// bind registers every filter flag on cmd.
func (f *topicFilterFlags) bind(cmd *cobra.Command) {
	f.bindSelection(cmd)
	cmd.Flags().StringVar(&f.from, "from", "", "Updated on or after this date (YYYY-MM-DD, requires --to)")
	cmd.Flags().StringVar(&f.to, "to", "", "Updated on or before this date (YYYY-MM-DD, requires --from)")
}

// bindSelection registers the filter flags other than the date range, for
// commands that use --from and --to for their own window.
func (f *topicFilterFlags) bindSelection(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.search, "search", "", "Match title, owner or ID (case-insensitive)")
	cmd.Flags().StringVar(&f.department, "department", "", "Only topics owned by this department")
	cmd.Flags().StringVar(&f.priority, "priority", "", "Only topics with this priority (Critical, High, Medium, Low)")
	cmd.Flags().StringVar(&f.status, "status", "", "Comma-separated statuses (e.g. \"New,In Progress\")")
	_ = cmd.RegisterFlagCompletionFunc("department", completeDepartments)
	_ = cmd.RegisterFlagCompletionFunc("priority", completePriorities)
	_ = cmd.RegisterFlagCompletionFunc("status", completeStatuses)
}

// toFilter validates the flag values and builds the TopicFilter.
func (f *topicFilterFlags) toFilter() (models.TopicFilter, error) {
	filter := models.TopicFilter{Search: f.search}

	if f.department != "" {
		d, ok := models.ParseDepartment(f.department)
		if !ok {
			return filter, fmt.Errorf("invalid department %q", f.department)
		}
		filter.Department = d
	}
	if f.priority != "" {
		p, ok := models.ParsePriority(f.priority)
		if !ok {
			return filter, fmt.Errorf("invalid priority %q: must be one of Critical, High, Medium, Low", f.priority)
		}
		filter.Priority = p
	}
	if f.status != "" {
		for _, raw := range strings.Split(f.status, ",") {
			s, ok := models.ParseStatus(raw)
			if !ok {
				return filter, fmt.Errorf("invalid status %q", strings.TrimSpace(raw))
			}
			filter.Statuses = append(filter.Statuses, s)
		}
	}

	if (f.from == "") != (f.to == "") {
		return filter, fmt.Errorf("--from and --to must be given together")
	}
	if f.from != "" {
		from, err := parseDate("from", f.from)
		if err != nil {
			return filter, err
		}
		to, err := parseDate("to", f.to)
		if err != nil {
			return filter, err
		}
		if to.Before(from) {
			return filter, fmt.Errorf("--to %s is before --from %s", f.to, f.from)
		}
		filter.UpdatedFrom = &from
		filter.UpdatedTo = &to
	}
	return filter, nil
}

// parseDate parses a YYYY-MM-DD flag value as midnight UTC.
func parseDate(flag, value string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(value), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing --%s: expected YYYY-MM-DD, got %q", flag, value)
	}
	return t, nil
}
