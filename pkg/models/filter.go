package models

import "time"

// TopicFilter narrows a topic collection before it reaches the analytics.
// Empty fields match everything; all set fields must match.
type TopicFilter struct {
	Search     string
	Department Department
	Priority   Priority
	Statuses   []Status
	// UpdatedFrom and UpdatedTo bound UpdatedAt. Both must be set for the
	// range to apply; the upper bound is extended by one day so the end date
	// is inclusive.
	UpdatedFrom *time.Time
	UpdatedTo   *time.Time
}
