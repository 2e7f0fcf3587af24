package analytics

import (
	"time"

	"github.com/valter-silva-au/ptt-tracker/pkg/models"
)

// isResolutionEntry reports whether a history entry records a transition to
// the terminal status.
func isResolutionEntry(h models.HistoryEntry) bool {
	for _, c := range h.Changes {
		if c.NewValue == string(models.StatusResolved) {
			return true
		}
	}
	return false
}

// FirstResolutionDate returns the earliest history entry that records a
// transition to Resolved. History order is not trusted; the whole log is
// searched.
func FirstResolutionDate(t models.Topic) (time.Time, bool) {
	var first time.Time
	found := false
	for _, h := range t.History {
		if !isResolutionEntry(h) {
			continue
		}
		if !found || h.Date.Before(first) {
			first = h.Date
			found = true
		}
	}
	return first, found
}

// ResolvedAtOrBefore reports whether t is currently Resolved and its history
// contains any resolution entry dated at or before asOf. A Resolved topic
// with no such entry is treated as still open at asOf.
func ResolvedAtOrBefore(t models.Topic, asOf time.Time) bool {
	if t.Status != models.StatusResolved {
		return false
	}
	for _, h := range t.History {
		if isResolutionEntry(h) && !h.Date.After(asOf) {
			return true
		}
	}
	return false
}

// resolvedAfter reports whether t is currently Resolved and its history
// contains any resolution entry dated strictly after since.
func resolvedAfter(t models.Topic, since time.Time) bool {
	if t.Status != models.StatusResolved {
		return false
	}
	for _, h := range t.History {
		if isResolutionEntry(h) && h.Date.After(since) {
			return true
		}
	}
	return false
}
