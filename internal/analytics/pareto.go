package analytics

import (
	"time"

	"github.com/valter-silva-au/ptt-tracker/pkg/models"
)

// criticalEffortMultiplier doubles the effort of Critical topics.
const criticalEffortMultiplier = 2

// ParetoFrontier maps every active topic to an (effort, risk) point and flags
// the non-dominated ones. Effort is fractional days open, doubled for
// Critical topics, rounded to one decimal. A point is dominated when another
// point covers at least as much risk for strictly less effort.
func ParetoFrontier(topics []models.Topic, now time.Time) []models.ParetoPoint {
	points := make([]models.ParetoPoint, 0)
	for _, t := range topics {
		if !t.IsActive() {
			continue
		}
		effort := daysBetween(t.CreatedAt, now)
		if t.Priority == models.PriorityCritical {
			effort *= criticalEffortMultiplier
		}
		points = append(points, models.ParetoPoint{
			ID:     t.ID,
			Name:   t.Title,
			Risk:   t.RiskScore(),
			Effort: roundTo(effort, 1),
		})
	}

	for i := range points {
		points[i].IsFrontier = !dominated(points, i)
	}
	return points
}

// dominated reports whether any other point has risk >= and effort < points[i].
func dominated(points []models.ParetoPoint, i int) bool {
	p := points[i]
	for _, q := range points {
		if q.ID == p.ID {
			continue
		}
		if q.Risk >= p.Risk && q.Effort < p.Effort {
			return true
		}
	}
	return false
}
