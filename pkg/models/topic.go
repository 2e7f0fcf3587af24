package models

import (
	"strings"
	"time"
)

// Department identifies the organizational area that owns a topic.
type Department string

const (
	DeptNuclearIsland      Department = "Nuclear Island"
	DeptConventionalIsland Department = "Conventional Island"
	DeptEquipment          Department = "Equipment Area"
	DeptCivilWorks         Department = "Civil Works"
	DeptSafetyLicensing    Department = "Safety & Licensing"
	DeptProjectControls    Department = "Project Controls"
)

// Departments returns every department in declaration order.
func Departments() []Department {
	return []Department{
		DeptNuclearIsland,
		DeptConventionalIsland,
		DeptEquipment,
		DeptCivilWorks,
		DeptSafetyLicensing,
		DeptProjectControls,
	}
}

// Valid reports whether d is one of the declared departments.
func (d Department) Valid() bool {
	switch d {
	case DeptNuclearIsland, DeptConventionalIsland, DeptEquipment,
		DeptCivilWorks, DeptSafetyLicensing, DeptProjectControls:
		return true
	}
	return false
}

// Priority represents the severity level of a topic.
type Priority string

const (
	PriorityCritical Priority = "Critical"
	PriorityHigh     Priority = "High"
	PriorityMedium   Priority = "Medium"
	PriorityLow      Priority = "Low"
)

// Priorities returns every priority in declaration order (most severe first).
func Priorities() []Priority {
	return []Priority{PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow}
}

// Valid reports whether p is one of the declared priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Rank maps a priority onto the aging chart axis: Low=1 through Critical=4.
// Unknown priorities rank 0.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// LoadWeight is the weight a topic of this priority adds to its department's load.
func (p Priority) LoadWeight() int {
	switch p {
	case PriorityCritical:
		return 3
	case PriorityHigh:
		return 2
	case PriorityMedium, PriorityLow:
		return 1
	}
	return 1
}

// Status represents the current lifecycle state of a topic.
type Status string

const (
	StatusNew         Status = "New"
	StatusInProgress  Status = "In Progress"
	StatusUnderReview Status = "Under Review"
	StatusResolved    Status = "Resolved"
	StatusOnHold      Status = "On Hold"
)

// Statuses returns every status in declaration order.
func Statuses() []Status {
	return []Status{StatusNew, StatusInProgress, StatusUnderReview, StatusResolved, StatusOnHold}
}

// Valid reports whether s is one of the declared statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusUnderReview, StatusResolved, StatusOnHold:
		return true
	}
	return false
}

// Terminal reports whether s ends the topic lifecycle. Only Resolved does.
func (s Status) Terminal() bool {
	switch s {
	case StatusResolved:
		return true
	case StatusNew, StatusInProgress, StatusUnderReview, StatusOnHold:
		return false
	}
	return false
}

// RiskTrend is an externally assigned label describing how a topic's risk is moving.
type RiskTrend string

const (
	TrendEscalating RiskTrend = "Escalating"
	TrendStable     RiskTrend = "Stable"
	TrendImproving  RiskTrend = "Improving"
)

// RiskTrends returns every risk trend in declaration order.
func RiskTrends() []RiskTrend {
	return []RiskTrend{TrendEscalating, TrendStable, TrendImproving}
}

// Valid reports whether t is one of the declared trends.
func (t RiskTrend) Valid() bool {
	switch t {
	case TrendEscalating, TrendStable, TrendImproving:
		return true
	}
	return false
}

// FieldChange records a single field transition inside a history entry.
type FieldChange struct {
	Field    string `yaml:"field" json:"field"`
	OldValue string `yaml:"old_value" json:"oldValue"`
	NewValue string `yaml:"new_value" json:"newValue"`
}

// HistoryEntry is one append-only record in a topic's change log.
// Entries are not guaranteed to be in chronological order.
type HistoryEntry struct {
	Date        time.Time     `yaml:"date" json:"date"`
	Description string        `yaml:"description" json:"description"`
	User        string        `yaml:"user" json:"user"`
	Evidence    string        `yaml:"evidence,omitempty" json:"evidence,omitempty"`
	Changes     []FieldChange `yaml:"changes,omitempty" json:"changes,omitempty"`
}

// Attachment describes a file reference attached to a topic.
type Attachment struct {
	ID         string    `yaml:"id" json:"id"`
	Name       string    `yaml:"name" json:"name"`
	Size       int64     `yaml:"size" json:"size"`
	Type       string    `yaml:"type" json:"type"`
	UploadDate time.Time `yaml:"upload_date" json:"uploadDate"`
	URL        string    `yaml:"url,omitempty" json:"url,omitempty"`
}

// Topic is a Priority Technical Topic: a tracked engineering risk with a
// consequence x likelihood score and a change history.
type Topic struct {
	ID                   string         `yaml:"id" json:"id" validate:"required"`
	Title                string         `yaml:"title" json:"title" validate:"required"`
	Description          string         `yaml:"description" json:"description" validate:"required"`
	Department           Department     `yaml:"department" json:"department" validate:"required,department"`
	Priority             Priority       `yaml:"priority" json:"priority" validate:"required,priority"`
	Status               Status         `yaml:"status" json:"status" validate:"required,status"`
	Owner                string         `yaml:"owner" json:"owner" validate:"required"`
	CreatedAt            time.Time      `yaml:"created_at" json:"createdAt"`
	UpdatedAt            time.Time      `yaml:"updated_at" json:"updatedAt"`
	TargetResolutionDate time.Time      `yaml:"target_resolution_date" json:"targetResolutionDate"`
	Consequence          int            `yaml:"consequence" json:"consequence" validate:"min=1,max=5"`
	Likelihood           int            `yaml:"likelihood" json:"likelihood" validate:"min=1,max=5"`
	RiskTrend            RiskTrend      `yaml:"risk_trend" json:"riskTrend" validate:"required,risktrend"`
	Comments             string         `yaml:"comments,omitempty" json:"comments,omitempty"`
	Evidence             string         `yaml:"evidence,omitempty" json:"evidence,omitempty"`
	Attachments          []Attachment   `yaml:"attachments,omitempty" json:"attachments,omitempty"`
	History              []HistoryEntry `yaml:"history" json:"history"`
}

// RiskScore is consequence x likelihood, the fundamental risk unit (1-25).
func (t Topic) RiskScore() int {
	return t.Consequence * t.Likelihood
}

// IsActive reports whether the topic has not reached the terminal status.
func (t Topic) IsActive() bool {
	return !t.Status.Terminal()
}

// ParseDepartment matches a department by display value, case-insensitively.
func ParseDepartment(s string) (Department, bool) {
	for _, d := range Departments() {
		if strings.EqualFold(string(d), strings.TrimSpace(s)) {
			return d, true
		}
	}
	return "", false
}

// ParsePriority matches a priority by display value, case-insensitively.
func ParsePriority(s string) (Priority, bool) {
	for _, p := range Priorities() {
		if strings.EqualFold(string(p), strings.TrimSpace(s)) {
			return p, true
		}
	}
	return "", false
}

// ParseStatus matches a status by display value, case-insensitively.
// Underscores and hyphens are accepted in place of spaces ("in_progress").
func ParseStatus(s string) (Status, bool) {
	norm := strings.NewReplacer("_", " ", "-", " ").Replace(strings.TrimSpace(s))
	for _, st := range Statuses() {
		if strings.EqualFold(string(st), norm) {
			return st, true
		}
	}
	return "", false
}

// ParseRiskTrend matches a trend by display value, case-insensitively.
func ParseRiskTrend(s string) (RiskTrend, bool) {
	for _, t := range RiskTrends() {
		if strings.EqualFold(string(t), strings.TrimSpace(s)) {
			return t, true
		}
	}
	return "", false
}
