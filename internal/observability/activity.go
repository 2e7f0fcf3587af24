package observability

import (
	"fmt"
	"time"
)

// Activity summarizes the audit trail over a time window.
type Activity struct {
	TopicsCreated     int            `json:"topics_created"`
	TopicsUpdated     int            `json:"topics_updated"`
	TopicsResolved    int            `json:"topics_resolved"`
	TopicsDeleted     int            `json:"topics_deleted"`
	StatusTransitions map[string]int `json:"status_transitions"`
	CreatedByDept     map[string]int `json:"created_by_department"`
	EventCount        int            `json:"event_count"`
	OldestEvent       *time.Time     `json:"oldest_event,omitempty"`
	NewestEvent       *time.Time     `json:"newest_event,omitempty"`
}

// ActivityCalculator derives activity counts from the event log.
type ActivityCalculator interface {
	Calculate(since time.Time) (*Activity, error)
}

type activityCalculator struct {
	eventLog EventLog
}

// NewActivityCalculator creates an ActivityCalculator that reads from eventLog.
func NewActivityCalculator(eventLog EventLog) ActivityCalculator {
	return &activityCalculator{eventLog: eventLog}
}

// Calculate aggregates every event at or after since. Status transitions are
// keyed "Old -> New".
func (ac *activityCalculator) Calculate(since time.Time) (*Activity, error) {
	events, err := ac.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading events for activity: %w", err)
	}

	a := &Activity{
		StatusTransitions: make(map[string]int),
		CreatedByDept:     make(map[string]int),
		EventCount:        len(events),
	}

	for _, event := range events {
		t := event.Time
		if a.OldestEvent == nil || t.Before(*a.OldestEvent) {
			a.OldestEvent = &t
		}
		if a.NewestEvent == nil || t.After(*a.NewestEvent) {
			a.NewestEvent = &t
		}

		switch event.Type {
		case "topic.created":
			a.TopicsCreated++
			if dept, ok := event.Data["department"].(string); ok {
				a.CreatedByDept[dept]++
			}
		case "topic.updated":
			a.TopicsUpdated++
		case "topic.status_changed":
			oldStatus, _ := event.Data["old_status"].(string)
			newStatus, _ := event.Data["new_status"].(string)
			if newStatus != "" {
				a.StatusTransitions[oldStatus+" -> "+newStatus]++
			}
		case "topic.resolved":
			a.TopicsResolved++
		case "topic.deleted":
			a.TopicsDeleted++
		}
	}

	return a, nil
}
