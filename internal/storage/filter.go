package storage

import (
	"strings"
	"time"

	"github.com/valter-silva-au/ptt-tracker/pkg/models"
)

// FilterTopics returns the topics matching every set field of filter, in
// input order. The result is never nil.
func FilterTopics(topics []models.Topic, filter models.TopicFilter) []models.Topic {
	result := make([]models.Topic, 0, len(topics))
	for _, t := range topics {
		if MatchesFilter(t, filter) {
			result = append(result, t)
		}
	}
	return result
}

// MatchesFilter reports whether t satisfies filter.
//
// Search matches title, owner or ID case-insensitively. The UpdatedAt range
// applies only when both bounds are set, and the upper bound is extended by
// one day so a date-only end is inclusive.
func MatchesFilter(t models.Topic, filter models.TopicFilter) bool {
	if q := strings.ToLower(strings.TrimSpace(filter.Search)); q != "" {
		if !strings.Contains(strings.ToLower(t.Title), q) &&
			!strings.Contains(strings.ToLower(t.Owner), q) &&
			!strings.Contains(strings.ToLower(t.ID), q) {
			return false
		}
	}
	if filter.Department != "" && t.Department != filter.Department {
		return false
	}
	if filter.Priority != "" && t.Priority != filter.Priority {
		return false
	}
	if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, t.Status) {
		return false
	}
	if filter.UpdatedFrom != nil && filter.UpdatedTo != nil {
		end := filter.UpdatedTo.Add(24 * time.Hour)
		if t.UpdatedAt.Before(*filter.UpdatedFrom) || t.UpdatedAt.After(end) {
			return false
		}
	}
	return true
}

func containsStatus(haystack []models.Status, needle models.Status) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
