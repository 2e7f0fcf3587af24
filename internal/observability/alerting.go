package observability

import (
	"fmt"
	"time"

	"github.com/valter-silva-au/ptt-tracker/internal/analytics"
	"github.com/valter-silva-au/ptt-tracker/pkg/models"
)

// AlertSeverity represents the urgency of an alert.
type AlertSeverity string

const (
	SeverityHigh   AlertSeverity = "high"
	SeverityMedium AlertSeverity = "medium"
	SeverityLow    AlertSeverity = "low"
)

// Alert conditions.
const (
	ConditionOverdue            = "topic_overdue"
	ConditionCriticalEscalating = "critical_escalating"
	ConditionStagnant           = "topic_stagnant"
	ConditionExposureCeiling    = "exposure_above_ceiling"
	ConditionActiveBacklog      = "active_backlog_too_large"
	ConditionUnstableWeek       = "unstable_week"
)

// Alert represents a triggered alert condition.
type Alert struct {
	ID          string        `json:"id"`
	Condition   string        `json:"condition"`
	Severity    AlertSeverity `json:"severity"`
	TopicID     string        `json:"topic_id,omitempty"`
	Message     string        `json:"message"`
	TriggeredAt time.Time     `json:"triggered_at"`
}

// AlertThresholds configures when alerts fire.
type AlertThresholds struct {
	StagnantDays    int `yaml:"stagnant_days" json:"stagnant_days"`
	MaxExposure     int `yaml:"max_exposure" json:"max_exposure"`
	MaxActiveTopics int `yaml:"max_active_topics" json:"max_active_topics"`
}

// DefaultAlertThresholds returns the default alert thresholds.
func DefaultAlertThresholds() AlertThresholds {
	return AlertThresholds{
		StagnantDays:    60,
		MaxExposure:     150,
		MaxActiveTopics: 50,
	}
}

// TopicLister supplies the topic snapshot alerts are evaluated against.
type TopicLister interface {
	ListTopics(filter models.TopicFilter) ([]models.Topic, error)
}

// AlertEngine evaluates alert rules against the current topics.
type AlertEngine interface {
	Evaluate() ([]Alert, error)
}

type alertEngine struct {
	topics     TopicLister
	thresholds AlertThresholds
	clock      func() time.Time
}

// NewAlertEngine creates an AlertEngine over topics. A nil clock uses the wall
// clock in UTC.
func NewAlertEngine(topics TopicLister, thresholds AlertThresholds, clock func() time.Time) AlertEngine {
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &alertEngine{
		topics:     topics,
		thresholds: thresholds,
		clock:      clock,
	}
}

// Evaluate lists every topic and returns the triggered alerts: per-topic
// alerts first in topic order, then the portfolio-wide ones.
func (ae *alertEngine) Evaluate() ([]Alert, error) {
	topics, err := ae.topics.ListTopics(models.TopicFilter{})
	if err != nil {
		return nil, fmt.Errorf("listing topics for alerts: %w", err)
	}
	return EvaluateAlerts(topics, ae.thresholds, ae.clock()), nil
}

// EvaluateAlerts applies the alert rules to topics at now.
func EvaluateAlerts(topics []models.Topic, th AlertThresholds, now time.Time) []Alert {
	alerts := make([]Alert, 0)
	active := 0

	for _, t := range topics {
		if !t.IsActive() {
			continue
		}
		active++

		if !t.TargetResolutionDate.IsZero() && t.TargetResolutionDate.Before(now) {
			days := int(now.Sub(t.TargetResolutionDate).Hours() / 24)
			alerts = append(alerts, Alert{
				ID:          "overdue-" + t.ID,
				Condition:   ConditionOverdue,
				Severity:    SeverityHigh,
				TopicID:     t.ID,
				Message:     fmt.Sprintf("topic %s %q is %d days past its target resolution date", t.ID, t.Title, days),
				TriggeredAt: now,
			})
		}
		if t.Priority == models.PriorityCritical && t.RiskTrend == models.TrendEscalating {
			alerts = append(alerts, Alert{
				ID:          "escalating-" + t.ID,
				Condition:   ConditionCriticalEscalating,
				Severity:    SeverityHigh,
				TopicID:     t.ID,
				Message:     fmt.Sprintf("critical topic %s %q is escalating (risk %d)", t.ID, t.Title, t.RiskScore()),
				TriggeredAt: now,
			})
		}
		if th.StagnantDays > 0 && t.Status == models.StatusInProgress &&
			now.Sub(t.CreatedAt) > time.Duration(th.StagnantDays)*24*time.Hour {
			alerts = append(alerts, Alert{
				ID:          "stagnant-" + t.ID,
				Condition:   ConditionStagnant,
				Severity:    SeverityMedium,
				TopicID:     t.ID,
				Message:     fmt.Sprintf("topic %s %q has been open in progress for more than %d days", t.ID, t.Title, th.StagnantDays),
				TriggeredAt: now,
			})
		}
	}

	if exposure := analytics.ReconstructExposure(topics, now); th.MaxExposure > 0 && exposure > th.MaxExposure {
		alerts = append(alerts, Alert{
			ID:          "exposure-ceiling",
			Condition:   ConditionExposureCeiling,
			Severity:    SeverityMedium,
			Message:     fmt.Sprintf("total risk exposure is %d, above the ceiling of %d", exposure, th.MaxExposure),
			TriggeredAt: now,
		})
	}
	if th.MaxActiveTopics > 0 && active > th.MaxActiveTopics {
		alerts = append(alerts, Alert{
			ID:          "active-backlog",
			Condition:   ConditionActiveBacklog,
			Severity:    SeverityLow,
			Message:     fmt.Sprintf("%d active topics, exceeding the maximum of %d", active, th.MaxActiveTopics),
			TriggeredAt: now,
		})
	}
	if week := analytics.StabilityTimeSeries(topics, now, 1); len(week) == 1 && week[0].Stability < 0 {
		alerts = append(alerts, Alert{
			ID:          "unstable-week",
			Condition:   ConditionUnstableWeek,
			Severity:    SeverityLow,
			Message:     fmt.Sprintf("more topics opened than resolved in the last week (opened %d, resolved %d)", week[0].Gain, week[0].Damping),
			TriggeredAt: now,
		})
	}

	return alerts
}
