package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/ptt-tracker/internal/core"
	"github.com/valter-silva-au/ptt-tracker/pkg/models"
)

func TestTopicCmds_NilManager(t *testing.T) {
	orig := TopicMgr
	defer func() { TopicMgr = orig }()
	TopicMgr = nil

	cmds := []struct {
		cmd  *cobra.Command
		args []string
	}{
		{topicAddCmd, nil},
		{topicListCmd, nil},
		{topicShowCmd, []string{"00001"}},
		{topicUpdateCmd, []string{"00001"}},
		{topicResolveCmd, []string{"00001"}},
		{topicDeleteCmd, []string{"00001"}},
	}
	for _, tc := range cmds {
		t.Run(tc.cmd.Name(), func(t *testing.T) {
			err := tc.cmd.RunE(tc.cmd, tc.args)
			if err == nil || !strings.Contains(err.Error(), "not initialized") {
				t.Errorf("expected not initialized error, got %v", err)
			}
		})
	}
}

func TestTopicList_All(t *testing.T) {
	useSampleWorkspace(t)

	out := captureStdout(t, func() {
		if err := topicListCmd.RunE(topicListCmd, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	for _, want := range []string{"00001", "00006", "Reactor Coolant Pump Vibration Analysis", "6 topic(s)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTopicList_FilterByPriority(t *testing.T) {
	useSampleWorkspace(t)
	restoreAfter(t, &topicListFilter)
	topicListFilter = topicFilterFlags{priority: "critical"}

	out := captureStdout(t, func() {
		if err := topicListCmd.RunE(topicListCmd, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	if !strings.Contains(out, "00001") || !strings.Contains(out, "00006") {
		t.Errorf("expected both critical topics:\n%s", out)
	}
	if strings.Contains(out, "00002") {
		t.Errorf("high priority topic should be filtered out:\n%s", out)
	}
	if !strings.Contains(out, "2 topic(s)") {
		t.Errorf("expected count of 2:\n%s", out)
	}
}

func TestTopicList_NoMatches(t *testing.T) {
	useSampleWorkspace(t)
	restoreAfter(t, &topicListFilter)
	topicListFilter = topicFilterFlags{search: "no such topic"}

	out := captureStdout(t, func() {
		if err := topicListCmd.RunE(topicListCmd, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
	if !strings.Contains(out, "No topics found.") {
		t.Errorf("expected empty message, got:\n%s", out)
	}
}

func TestTopicList_InvalidFilter(t *testing.T) {
	useSampleWorkspace(t)
	restoreAfter(t, &topicListFilter)
	topicListFilter = topicFilterFlags{priority: "P0"}

	err := topicListCmd.RunE(topicListCmd, nil)
	if err == nil || !strings.Contains(err.Error(), "invalid priority") {
		t.Errorf("expected invalid priority error, got %v", err)
	}
}

func TestTopicAdd_CreatesNextID(t *testing.T) {
	useSampleWorkspace(t)
	restoreAfter(t, &topicAddFlags)
	topicAddFlags = topicFieldFlags{
		title:       "Feedwater Heater Weld Defect",
		description: "Indications found during radiography of HP heater nozzle welds.",
		department:  "conventional island",
		priority:    "high",
		owner:       "R. Patel",
		target:      "2025-07-31",
		consequence: 4,
		likelihood:  3,
	}

	out := captureStdout(t, func() {
		if err := topicAddCmd.RunE(topicAddCmd, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	if !strings.Contains(out, "Created topic 00007") {
		t.Errorf("expected ID 00007:\n%s", out)
	}
	if !strings.Contains(out, "Risk score: 12 (C4 x L3)") {
		t.Errorf("expected risk score line:\n%s", out)
	}

	topic, err := TopicMgr.GetTopic("00007")
	if err != nil {
		t.Fatalf("GetTopic: %v", err)
	}
	if topic.Department != models.DeptConventionalIsland || topic.Status != models.StatusNew {
		t.Errorf("unexpected topic: department %q status %q", topic.Department, topic.Status)
	}
	if !topic.CreatedAt.Equal(cliNow) {
		t.Errorf("CreatedAt = %v, want %v", topic.CreatedAt, cliNow)
	}
}

func TestTopicAdd_DefaultOwner(t *testing.T) {
	useSampleWorkspace(t)
	restoreAfter(t, &topicAddFlags)
	restoreAfter(t, &DefaultOwner)
	DefaultOwner = "Project Office"
	topicAddFlags = topicFieldFlags{
		title:       "Cable Tray Overfill",
		description: "Tray fill exceeds design limit in room 4.12.",
		department:  "Equipment Area",
		priority:    "Low",
		target:      "2025-08-01",
		consequence: 2,
		likelihood:  2,
	}

	captureStdout(t, func() {
		if err := topicAddCmd.RunE(topicAddCmd, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	topic, err := TopicMgr.GetTopic("00007")
	if err != nil {
		t.Fatalf("GetTopic: %v", err)
	}
	if topic.Owner != "Project Office" {
		t.Errorf("Owner = %q, want Project Office", topic.Owner)
	}
}

func TestTopicAdd_ValidationError(t *testing.T) {
	useSampleWorkspace(t)
	restoreAfter(t, &topicAddFlags)
	topicAddFlags = topicFieldFlags{
		title:       "Bad scores",
		description: "Out of range consequence.",
		department:  "Civil Works",
		priority:    "Medium",
		owner:       "X",
		target:      "2025-07-01",
		consequence: 9,
		likelihood:  2,
	}

	err := topicAddCmd.RunE(topicAddCmd, nil)
	if err == nil || !strings.Contains(err.Error(), "consequence 9 is out of range") {
		t.Errorf("expected range error, got %v", err)
	}
}

func TestTopicAdd_BadTargetDate(t *testing.T) {
	useSampleWorkspace(t)
	restoreAfter(t, &topicAddFlags)
	topicAddFlags = topicFieldFlags{target: "31/07/2025"}

	err := topicAddCmd.RunE(topicAddCmd, nil)
	if err == nil || !strings.Contains(err.Error(), "--target") {
		t.Errorf("expected --target parse error, got %v", err)
	}
}

func TestTopicShow_PrintsHistory(t *testing.T) {
	useSampleWorkspace(t)

	out := captureStdout(t, func() {
		if err := topicShowCmd.RunE(topicShowCmd, []string{"00002"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	for _, want := range []string{
		"Topic 00002: Turbine Hall Crane Certification",
		"Risk score:   16 (C4 x L4)",
		"History (2):",
		"Submitted for review",
		"Status: In Progress -> Under Review",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	// Created entry comes before the review submission.
	if strings.Index(out, "Topic Created") > strings.Index(out, "Submitted for review") {
		t.Errorf("history not in chronological order:\n%s", out)
	}
}

func TestTopicShow_PrintsAttachments(t *testing.T) {
	useSampleWorkspace(t)

	out := captureStdout(t, func() {
		if err := topicShowCmd.RunE(topicShowCmd, []string{"00001"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	for _, want := range []string{
		"Attachments (1):",
		"RCP_Vibration_Log_May.pdf  1000.5 KiB, application/pdf",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTopicShow_NoAttachmentsSection(t *testing.T) {
	useSampleWorkspace(t)

	out := captureStdout(t, func() {
		if err := topicShowCmd.RunE(topicShowCmd, []string{"00002"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
	if strings.Contains(out, "Attachments") {
		t.Errorf("unexpected attachments section:\n%s", out)
	}
}

func TestTopicAdd_Attachments(t *testing.T) {
	dir := useSampleWorkspace(t)
	restoreAfter(t, &topicAddFlags)
	path := filepath.Join(dir, "weld_radiograph.pdf")
	if err := os.WriteFile(path, make([]byte, 2048), 0o644); err != nil {
		t.Fatalf("writing attachment: %v", err)
	}
	topicAddFlags = topicFieldFlags{
		title:       "Feedwater Heater Weld Defect",
		description: "Indications found during radiography of HP heater nozzle welds.",
		department:  "Conventional Island",
		priority:    "High",
		owner:       "R. Patel",
		target:      "2025-07-31",
		consequence: 4,
		likelihood:  3,
		attach:      []string{path},
	}

	captureStdout(t, func() {
		if err := topicAddCmd.RunE(topicAddCmd, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	topic, err := TopicMgr.GetTopic("00007")
	if err != nil {
		t.Fatalf("GetTopic: %v", err)
	}
	if len(topic.Attachments) != 1 {
		t.Fatalf("expected 1 attachment, got %d", len(topic.Attachments))
	}
	a := topic.Attachments[0]
	if a.Name != "weld_radiograph.pdf" || a.Size != 2048 || a.Type != "application/pdf" {
		t.Errorf("unexpected attachment: %+v", a)
	}
	if !a.UploadDate.Equal(cliNow) {
		t.Errorf("UploadDate = %v, want %v", a.UploadDate, cliNow)
	}
}

func TestTopicAdd_MissingAttachment(t *testing.T) {
	dir := useSampleWorkspace(t)
	restoreAfter(t, &topicAddFlags)
	topicAddFlags = topicFieldFlags{
		title:       "Missing file",
		description: "Attachment path does not exist.",
		department:  "Civil Works",
		priority:    "Low",
		owner:       "X",
		target:      "2025-07-01",
		consequence: 1,
		likelihood:  1,
		attach:      []string{filepath.Join(dir, "nope.pdf")},
	}

	err := topicAddCmd.RunE(topicAddCmd, nil)
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
	if _, err := TopicMgr.GetTopic("00007"); !errors.Is(err, models.ErrTopicNotFound) {
		t.Errorf("topic should not be created, got %v", err)
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KiB"},
		{4500100, "4.3 MiB"},
	}
	for _, tt := range tests {
		if got := formatSize(tt.n); got != tt.want {
			t.Errorf("formatSize(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestTopicShow_NotFound(t *testing.T) {
	useSampleWorkspace(t)

	err := topicShowCmd.RunE(topicShowCmd, []string{"09999"})
	if !errors.Is(err, models.ErrTopicNotFound) {
		t.Errorf("expected ErrTopicNotFound, got %v", err)
	}
}

func TestTopicUpdate_RecordsChanges(t *testing.T) {
	useSampleWorkspace(t)
	restoreAfter(t, &topicUpdateFlags)
	topicUpdateFlags = topicFieldFlags{
		priority:   "Critical",
		likelihood: 5,
		evidence:   "Crane load test failed",
		note:       "Load test failure",
	}

	out := captureStdout(t, func() {
		if err := topicUpdateCmd.RunE(topicUpdateCmd, []string{"00002"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	if !strings.Contains(out, "High -> Critical") || !strings.Contains(out, "4 -> 5") {
		t.Errorf("expected priority and likelihood changes:\n%s", out)
	}

	topic, err := TopicMgr.GetTopic("00002")
	if err != nil {
		t.Fatalf("GetTopic: %v", err)
	}
	if topic.RiskScore() != 20 {
		t.Errorf("risk score = %d, want 20", topic.RiskScore())
	}
	latest := topic.History[len(topic.History)-1]
	if latest.Description != "Load test failure" || latest.Evidence != "Crane load test failed" {
		t.Errorf("unexpected history entry: %+v", latest)
	}
}

func TestTopicUpdate_EvidenceRequired(t *testing.T) {
	useSampleWorkspace(t)
	restoreAfter(t, &topicUpdateFlags)
	topicUpdateFlags = topicFieldFlags{consequence: 2}

	err := topicUpdateCmd.RunE(topicUpdateCmd, []string{"00001"})
	if !errors.Is(err, core.ErrEvidenceRequired) {
		t.Errorf("expected ErrEvidenceRequired, got %v", err)
	}
}

func TestTopicUpdate_NoChanges(t *testing.T) {
	useSampleWorkspace(t)
	restoreAfter(t, &topicUpdateFlags)
	topicUpdateFlags = topicFieldFlags{note: "Reviewed, nothing to change"}

	out := captureStdout(t, func() {
		if err := topicUpdateCmd.RunE(topicUpdateCmd, []string{"00004"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
	if !strings.Contains(out, "No tracked fields changed.") {
		t.Errorf("expected no-change message:\n%s", out)
	}
}

func TestTopicResolve(t *testing.T) {
	useSampleWorkspace(t)
	restoreAfter(t, &topicResolve)
	topicResolve = topicFieldFlags{evidence: "Balancing weights fitted"}

	out := captureStdout(t, func() {
		if err := topicResolveCmd.RunE(topicResolveCmd, []string{"00001"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
	if !strings.Contains(out, "Resolved topic 00001") {
		t.Errorf("unexpected output:\n%s", out)
	}

	topic, err := TopicMgr.GetTopic("00001")
	if err != nil {
		t.Fatalf("GetTopic: %v", err)
	}
	if topic.Status != models.StatusResolved {
		t.Errorf("status = %q, want Resolved", topic.Status)
	}
	latest := topic.History[len(topic.History)-1]
	if latest.Description != "Status changed to Resolved" {
		t.Errorf("history description = %q", latest.Description)
	}
}

func TestTopicDelete(t *testing.T) {
	useSampleWorkspace(t)

	out := captureStdout(t, func() {
		if err := topicDeleteCmd.RunE(topicDeleteCmd, []string{"00003"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
	if !strings.Contains(out, "Deleted topic 00003") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if _, err := TopicMgr.GetTopic("00003"); !errors.Is(err, models.ErrTopicNotFound) {
		t.Errorf("expected topic to be gone, got %v", err)
	}
}

func TestTopicFieldFlags_ToUpdate(t *testing.T) {
	u, err := topicFieldFlags{}.toUpdate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u != (core.TopicUpdate{}) {
		t.Errorf("empty flags should produce an empty update, got %+v", u)
	}

	u, err = topicFieldFlags{status: "on_hold", trend: "improving", target: "2025-09-30"}.toUpdate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Status == nil || *u.Status != models.StatusOnHold {
		t.Errorf("Status = %v, want On Hold", u.Status)
	}
	if u.RiskTrend == nil || *u.RiskTrend != models.TrendImproving {
		t.Errorf("RiskTrend = %v, want Improving", u.RiskTrend)
	}
	want := time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC)
	if u.TargetResolutionDate == nil || !u.TargetResolutionDate.Equal(want) {
		t.Errorf("TargetResolutionDate = %v, want %v", u.TargetResolutionDate, want)
	}
}

func TestSortedHistory(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC) }
	in := []models.HistoryEntry{
		{Date: day(5), Description: "c"},
		{Date: day(1), Description: "a"},
		{Date: day(3), Description: "b"},
	}

	got := sortedHistory(in)
	for i, want := range []string{"a", "b", "c"} {
		if got[i].Description != want {
			t.Errorf("entry %d = %q, want %q", i, got[i].Description, want)
		}
	}
	if in[0].Description != "c" {
		t.Error("input slice was modified")
	}
}
