package cli

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/valter-silva-au/ptt-tracker/pkg/models"
)

func TestTopicFilterFlags_ToFilter(t *testing.T) {
	june1 := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	june15 := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		flags   topicFilterFlags
		want    models.TopicFilter
		wantErr string
	}{
		{
			name:  "empty",
			flags: topicFilterFlags{},
			want:  models.TopicFilter{},
		},
		{
			name:  "search passes through",
			flags: topicFilterFlags{search: "crane"},
			want:  models.TopicFilter{Search: "crane"},
		},
		{
			name:  "department and priority are case-insensitive",
			flags: topicFilterFlags{department: "nuclear island", priority: "critical"},
			want:  models.TopicFilter{Department: models.DeptNuclearIsland, Priority: models.PriorityCritical},
		},
		{
			name:  "comma-separated statuses",
			flags: topicFilterFlags{status: "New, in_progress"},
			want:  models.TopicFilter{Statuses: []models.Status{models.StatusNew, models.StatusInProgress}},
		},
		{
			name:  "date range",
			flags: topicFilterFlags{from: "2025-06-01", to: "2025-06-15"},
			want:  models.TopicFilter{UpdatedFrom: &june1, UpdatedTo: &june15},
		},
		{
			name:    "invalid department",
			flags:   topicFilterFlags{department: "Canteen"},
			wantErr: `invalid department "Canteen"`,
		},
		{
			name:    "invalid priority",
			flags:   topicFilterFlags{priority: "Urgent"},
			wantErr: `invalid priority "Urgent"`,
		},
		{
			name:    "invalid status",
			flags:   topicFilterFlags{status: "New, Parked"},
			wantErr: `invalid status "Parked"`,
		},
		{
			name:    "from without to",
			flags:   topicFilterFlags{from: "2025-06-01"},
			wantErr: "must be given together",
		},
		{
			name:    "to without from",
			flags:   topicFilterFlags{to: "2025-06-01"},
			wantErr: "must be given together",
		},
		{
			name:    "bad date",
			flags:   topicFilterFlags{from: "01/06/2025", to: "2025-06-15"},
			wantErr: "parsing --from: expected YYYY-MM-DD",
		},
		{
			name:    "inverted range",
			flags:   topicFilterFlags{from: "2025-06-15", to: "2025-06-01"},
			wantErr: "--to 2025-06-01 is before --from 2025-06-15",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.flags.toFilter()
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("toFilter() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	got, err := parseDate("from", " 2025-02-28 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("parseDate = %v, want %v", got, want)
	}

	if _, err := parseDate("to", "2025-02-30"); err == nil {
		t.Error("expected error for an impossible date")
	}
}
