package analytics

import (
	"time"

	"github.com/valter-silva-au/ptt-tracker/pkg/models"
)

// monthLayout labels report buckets with abbreviated month and two-digit year.
const monthLayout = "Jan 06"

// BuildReportMetrics buckets topics by calendar month from the month holding
// start through the month holding end. Each bucket is evaluated at the last
// instant of its month: exposure is reconstructed there, and every topic
// created by then counts as either resolved or active. Movements lists the
// active topics whose trend is not Stable. A start after end yields empty
// series.
func BuildReportMetrics(topics []models.Topic, start, end time.Time) models.ReportMetrics {
	rm := models.ReportMetrics{
		Dates:          make([]string, 0),
		RiskTrend:      make([]int, 0),
		ActiveCount:    make([]int, 0),
		ResolvedCount:  make([]int, 0),
		TopicMovements: make([]models.Topic, 0),
	}

	for _, t := range topics {
		if t.IsActive() && t.RiskTrend != models.TrendStable {
			rm.TopicMovements = append(rm.TopicMovements, t)
		}
	}

	if start.After(end) {
		return rm
	}

	last := monthStart(end)
	for cur := monthStart(start); !cur.After(last); cur = cur.AddDate(0, 1, 0) {
		monthEnd := cur.AddDate(0, 1, 0).Add(-time.Nanosecond)

		active, resolved := 0, 0
		for _, t := range topics {
			if t.CreatedAt.After(monthEnd) {
				continue
			}
			if ResolvedAtOrBefore(t, monthEnd) {
				resolved++
			} else {
				active++
			}
		}

		rm.Dates = append(rm.Dates, cur.Format(monthLayout))
		rm.RiskTrend = append(rm.RiskTrend, ReconstructExposure(topics, monthEnd))
		rm.ActiveCount = append(rm.ActiveCount, active)
		rm.ResolvedCount = append(rm.ResolvedCount, resolved)
	}
	return rm
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
