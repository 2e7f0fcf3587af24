package analytics

import (
	"time"

	"github.com/valter-silva-au/ptt-tracker/pkg/models"
)

// ReconstructExposure returns the total risk score that was open at asOf.
//
// A topic contributes its score unless it was created after asOf, or it is
// Resolved and its history shows a resolution at or before asOf. Resolved
// topics whose history lacks a qualifying entry keep contributing; historical
// charts depend on that behavior.
func ReconstructExposure(topics []models.Topic, asOf time.Time) int {
	total := 0
	for _, t := range topics {
		if t.CreatedAt.After(asOf) {
			continue
		}
		if ResolvedAtOrBefore(t, asOf) {
			continue
		}
		total += t.RiskScore()
	}
	return total
}

// TopicRiskHistory samples a single topic's score weekly from start to end
// inclusive. Samples before the topic existed are omitted; samples after its
// recorded resolution score 0. A start after end yields no points.
func TopicRiskHistory(t models.Topic, start, end time.Time) []models.RiskHistoryPoint {
	points := make([]models.RiskHistoryPoint, 0)
	if start.After(end) {
		return points
	}
	for cur := start; !cur.After(end); cur = cur.AddDate(0, 0, 7) {
		if t.CreatedAt.After(cur) {
			continue
		}
		score := t.RiskScore()
		if ResolvedAtOrBefore(t, cur) {
			score = 0
		}
		points = append(points, models.RiskHistoryPoint{
			Date:      cur.Format(labelLayout),
			RiskScore: score,
			Trend:     string(t.RiskTrend),
		})
	}
	return points
}

// MultiTopicRiskHistory samples several topics weekly from start to end
// inclusive. Each point maps topic ID to its score at that date: 0 before
// creation or after resolution.
func MultiTopicRiskHistory(topics []models.Topic, start, end time.Time) []models.MultiTopicRiskPoint {
	points := make([]models.MultiTopicRiskPoint, 0)
	if len(topics) == 0 || start.After(end) {
		return points
	}
	for cur := start; !cur.After(end); cur = cur.AddDate(0, 0, 7) {
		scores := make(map[string]int, len(topics))
		for _, t := range topics {
			switch {
			case t.CreatedAt.After(cur):
				scores[t.ID] = 0
			case ResolvedAtOrBefore(t, cur):
				scores[t.ID] = 0
			default:
				scores[t.ID] = t.RiskScore()
			}
		}
		points = append(points, models.MultiTopicRiskPoint{
			Date:     cur.Format(labelLayout),
			FullDate: cur,
			Scores:   scores,
		})
	}
	return points
}
