package analytics

import (
	"time"

	"github.com/valter-silva-au/ptt-tracker/pkg/models"
)

// DefaultStabilityWeeks is the length of the dashboard's control series.
const DefaultStabilityWeeks = 13

// StabilityTimeSeries reports, for each of the trailing weeks ending at now,
// how many topics were opened (gain) and resolved (damping) and their net
// (stability = damping - gain). Points are oldest first. Week i ends at
// now - 7i days and starts seven days earlier; both ends are inclusive. A
// topic counts toward damping in the week holding its first resolution.
func StabilityTimeSeries(topics []models.Topic, now time.Time, weeks int) []models.ControlStabilityPoint {
	if weeks <= 0 {
		return []models.ControlStabilityPoint{}
	}

	out := make([]models.ControlStabilityPoint, 0, weeks)
	for i := weeks - 1; i >= 0; i-- {
		end := now.Add(-time.Duration(i) * week)
		start := end.Add(-week)

		gain, damping := 0, 0
		for _, t := range topics {
			if within(t.CreatedAt, start, end) {
				gain++
			}
			if resolvedAt, ok := FirstResolutionDate(t); ok && within(resolvedAt, start, end) {
				damping++
			}
		}

		out = append(out, models.ControlStabilityPoint{
			Date:      end.Format(labelLayout),
			Gain:      gain,
			Damping:   damping,
			Stability: damping - gain,
		})
	}
	return out
}
