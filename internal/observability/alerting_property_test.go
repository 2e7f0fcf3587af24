package observability

import (
	"fmt"
	"testing"
	"time"

	"github.com/valter-silva-au/ptt-tracker/pkg/models"
	"pgregory.net/rapid"
)

func genAlertTopics(t *rapid.T) []models.Topic {
	n := rapid.IntRange(0, 15).Draw(t, "n")
	topics := make([]models.Topic, n)
	for i := range topics {
		created := alertNow.Add(-time.Duration(rapid.IntRange(0, 200*24).Draw(t, fmt.Sprintf("createdHours_%d", i))) * time.Hour)
		target := alertNow.Add(time.Duration(rapid.IntRange(-30*24, 30*24).Draw(t, fmt.Sprintf("targetHours_%d", i))) * time.Hour)
		topics[i] = models.Topic{
			ID:                   fmt.Sprintf("%05d", i+1),
			Title:                "generated",
			Priority:             rapid.SampledFrom(models.Priorities()).Draw(t, fmt.Sprintf("priority_%d", i)),
			Status:               rapid.SampledFrom(models.Statuses()).Draw(t, fmt.Sprintf("status_%d", i)),
			RiskTrend:            rapid.SampledFrom(models.RiskTrends()).Draw(t, fmt.Sprintf("trend_%d", i)),
			CreatedAt:            created,
			TargetResolutionDate: target,
			Consequence:          rapid.IntRange(1, 5).Draw(t, fmt.Sprintf("c_%d", i)),
			Likelihood:           rapid.IntRange(1, 5).Draw(t, fmt.Sprintf("l_%d", i)),
		}
	}
	return topics
}

// Feature: ptt-tracker, Property: Per-topic alerts only name active topics
// For any topic set, every alert carrying a topic ID SHALL refer to a topic
// that is not Resolved, and alert IDs SHALL be unique.
func TestProperty_AlertsNameActiveTopics(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		topics := genAlertTopics(rt)
		byID := make(map[string]models.Topic, len(topics))
		for _, topic := range topics {
			byID[topic.ID] = topic
		}

		seen := make(map[string]bool)
		for _, a := range EvaluateAlerts(topics, DefaultAlertThresholds(), alertNow) {
			if seen[a.ID] {
				rt.Fatalf("duplicate alert ID %s", a.ID)
			}
			seen[a.ID] = true
			if a.TopicID == "" {
				continue
			}
			if !byID[a.TopicID].IsActive() {
				rt.Fatalf("alert %s names resolved topic %s", a.ID, a.TopicID)
			}
		}
	})
}

// Feature: ptt-tracker, Property: Raising thresholds never adds alerts
// For any topic set, doubling every threshold SHALL yield no more alerts.
func TestProperty_HigherThresholdsFewerAlerts(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		topics := genAlertTopics(rt)
		th := AlertThresholds{
			StagnantDays:    rapid.IntRange(1, 120).Draw(rt, "stagnant"),
			MaxExposure:     rapid.IntRange(1, 200).Draw(rt, "exposure"),
			MaxActiveTopics: rapid.IntRange(1, 20).Draw(rt, "active"),
		}
		loose := AlertThresholds{
			StagnantDays:    th.StagnantDays * 2,
			MaxExposure:     th.MaxExposure * 2,
			MaxActiveTopics: th.MaxActiveTopics * 2,
		}

		strict := len(EvaluateAlerts(topics, th, alertNow))
		relaxed := len(EvaluateAlerts(topics, loose, alertNow))
		if relaxed > strict {
			rt.Fatalf("relaxed thresholds produced %d alerts, strict %d", relaxed, strict)
		}
	})
}
