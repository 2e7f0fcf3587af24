package analytics

import (
	"time"

	"github.com/valter-silva-au/ptt-tracker/pkg/models"
)

var refNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func daysAgo(n int) time.Time {
	return refNow.Add(-time.Duration(n) * day)
}

// newTopic returns an active, valid topic created at the given time.
func newTopic(id string, consequence, likelihood int, created time.Time) models.Topic {
	return models.Topic{
		ID:          id,
		Title:       "Topic " + id,
		Department:  models.DeptNuclearIsland,
		Priority:    models.PriorityMedium,
		Status:      models.StatusNew,
		Owner:       "J. Smith",
		CreatedAt:   created,
		UpdatedAt:   created,
		Consequence: consequence,
		Likelihood:  likelihood,
		RiskTrend:   models.TrendStable,
	}
}

// resolve marks t Resolved with a qualifying history entry at the given time.
func resolve(t models.Topic, at time.Time) models.Topic {
	t.Status = models.StatusResolved
	t.History = append(t.History, models.HistoryEntry{
		Date:        at,
		Description: "Resolved",
		User:        "J. Smith",
		Changes: []models.FieldChange{
			{Field: "Status", OldValue: string(models.StatusInProgress), NewValue: string(models.StatusResolved)},
		},
	})
	return t
}
