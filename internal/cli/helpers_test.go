package cli

import (
	"io"
	"os"
	"testing"
	"time"

	"github.com/valter-silva-au/ptt-tracker/internal/core"
	"github.com/valter-silva-au/ptt-tracker/internal/observability"
	"github.com/valter-silva-au/ptt-tracker/internal/storage"
)

var cliNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

// captureStdout captures stdout output during fn execution.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("creating pipe: %v", err)
	}
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = origStdout
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("reading captured output: %v", err)
	}
	return string(out)
}

// useSampleWorkspace seeds the sample topics into a YAML store under a temp
// dir and points the package services at it. Everything is restored when
// the test ends.
func useSampleWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	clock := func() time.Time { return cliNow }

	store := storage.NewYAMLTopicStore(dir)
	ids := core.NewTopicIDGenerator(dir, 5)
	if _, err := core.SeedSampleTopics(store, ids, clock); err != nil {
		t.Fatalf("seeding sample topics: %v", err)
	}
	mgr := core.NewTopicManager(store, ids, nil, clock, nil)

	origMgr, origInsights, origAlerts, origClock := TopicMgr, Insights, AlertEngine, Clock
	origBase, origStore := BasePath, StorePath
	t.Cleanup(func() {
		TopicMgr, Insights, AlertEngine, Clock = origMgr, origInsights, origAlerts, origClock
		BasePath, StorePath = origBase, origStore
	})

	TopicMgr = mgr
	Insights = core.NewInsightEngine(mgr, clock, 0)
	AlertEngine = observability.NewAlertEngine(mgr, observability.DefaultAlertThresholds(), clock)
	Clock = clock
	BasePath = dir
	StorePath = store.Path()
	return dir
}

// restoreAfter resets a flag variable to its current value when the test ends.
func restoreAfter[T any](t *testing.T, p *T) {
	t.Helper()
	orig := *p
	t.Cleanup(func() { *p = orig })
}
