package core

import (
	"fmt"
	"time"

	"github.com/valter-silva-au/ptt-tracker/pkg/models"
)

const sampleUser = "System"

// sampleEvent is a backdated history entry of a sample topic.
type sampleEvent struct {
	daysAgo     int
	description string
	changes     []models.FieldChange
}

type sampleTopic struct {
	title       string
	description string
	department  models.Department
	priority    models.Priority
	status      models.Status
	owner       string
	createdAgo  int
	targetIn    int
	consequence int
	likelihood  int
	trend       models.RiskTrend
	attachments []models.Attachment
	events      []sampleEvent
}

var sampleTopics = []sampleTopic{
	{
		title:       "Reactor Coolant Pump Vibration Analysis",
		description: "Higher than expected vibration readings on RCP-2B during hot functional testing commissioning phase.",
		department:  models.DeptNuclearIsland,
		priority:    models.PriorityCritical,
		status:      models.StatusInProgress,
		owner:       "Dr. A. Smith",
		createdAgo:  30,
		targetIn:    10,
		consequence: 5,
		likelihood:  3,
		trend:       models.TrendEscalating,
		attachments: []models.Attachment{
			{ID: "att-1", Name: "RCP_Vibration_Log_May.pdf", Size: 1024500, Type: "application/pdf"},
		},
		events: []sampleEvent{
			{daysAgo: 5, description: "Risk Escalated: Vibration levels increased during secondary test.", changes: []models.FieldChange{
				{Field: FieldRiskTrend, OldValue: string(models.TrendStable), NewValue: string(models.TrendEscalating)},
			}},
		},
	},
	{
		title:       "Turbine Hall Crane Certification",
		description: "Documentation for the main overhead crane in the conventional island is pending final regulatory review.",
		department:  models.DeptConventionalIsland,
		priority:    models.PriorityHigh,
		status:      models.StatusUnderReview,
		owner:       "M. Johnson",
		createdAgo:  45,
		targetIn:    2,
		consequence: 4,
		likelihood:  4,
		trend:       models.TrendStable,
		events: []sampleEvent{
			{daysAgo: 10, description: "Submitted for review", changes: []models.FieldChange{
				{Field: FieldStatus, OldValue: string(models.StatusInProgress), NewValue: string(models.StatusUnderReview)},
			}},
		},
	},
	{
		title:       "Concrete Pour Schedule - Slab 4",
		description: "Weather delays impacting the civil works schedule for the auxiliary building foundation.",
		department:  models.DeptCivilWorks,
		priority:    models.PriorityMedium,
		status:      models.StatusNew,
		owner:       "S. Williams",
		createdAgo:  5,
		targetIn:    15,
		consequence: 3,
		likelihood:  5,
		trend:       models.TrendEscalating,
	},
	{
		title:       "Steam Generator Delivery Logistics",
		description: "Route survey update required for heavy haul transport of SG-1.",
		department:  models.DeptEquipment,
		priority:    models.PriorityHigh,
		status:      models.StatusInProgress,
		owner:       "K. Lee",
		createdAgo:  60,
		targetIn:    30,
		consequence: 3,
		likelihood:  3,
		trend:       models.TrendImproving,
		attachments: []models.Attachment{
			{ID: "att-2", Name: "SG_Transport_Route_Map_v3.png", Size: 4500100, Type: "image/png"},
		},
		events: []sampleEvent{
			{daysAgo: 2, description: "Risk reduced after route survey confirmation", changes: []models.FieldChange{
				{Field: FieldRiskTrend, OldValue: string(models.TrendStable), NewValue: string(models.TrendImproving)},
			}},
		},
	},
	{
		title:       "Fire Suppression System Test",
		description: "Routine testing of the deluge system in Zone 3 completed successfully.",
		department:  models.DeptSafetyLicensing,
		priority:    models.PriorityLow,
		status:      models.StatusResolved,
		owner:       "P. Davis",
		createdAgo:  90,
		targetIn:    -5,
		consequence: 2,
		likelihood:  2,
		trend:       models.TrendStable,
		events: []sampleEvent{
			{daysAgo: 5, description: "Issue Resolved", changes: []models.FieldChange{
				{Field: FieldStatus, OldValue: string(models.StatusInProgress), NewValue: string(models.StatusResolved)},
			}},
		},
	},
	{
		title:       "Control Room HVAC Damper Failure",
		description: "Dampers failing to close within specified time limits during interlock tests.",
		department:  models.DeptNuclearIsland,
		priority:    models.PriorityCritical,
		status:      models.StatusNew,
		owner:       "T. Harris",
		createdAgo:  2,
		targetIn:    5,
		consequence: 5,
		likelihood:  4,
		trend:       models.TrendEscalating,
	},
}

// SampleTopics builds the fixed sample data set with dates relative to now.
// IDs are left empty.
func SampleTopics(now time.Time) []models.Topic {
	at := func(days int) time.Time { return now.AddDate(0, 0, days) }

	topics := make([]models.Topic, 0, len(sampleTopics))
	for _, s := range sampleTopics {
		created := at(-s.createdAgo)
		history := []models.HistoryEntry{{Date: created, Description: "Topic Created", User: sampleUser}}
		for _, e := range s.events {
			history = append(history, models.HistoryEntry{
				Date:        at(-e.daysAgo),
				Description: e.description,
				User:        sampleUser,
				Changes:     append([]models.FieldChange(nil), e.changes...),
			})
		}
		var attachments []models.Attachment
		for _, a := range s.attachments {
			a.UploadDate = now
			attachments = append(attachments, a)
		}
		topics = append(topics, models.Topic{
			Title:                s.title,
			Description:          s.description,
			Department:           s.department,
			Priority:             s.priority,
			Status:               s.status,
			Owner:                s.owner,
			CreatedAt:            created,
			UpdatedAt:            now,
			TargetResolutionDate: at(s.targetIn),
			Consequence:          s.consequence,
			Likelihood:           s.likelihood,
			RiskTrend:            s.trend,
			Attachments:          attachments,
			History:              history,
		})
	}
	return topics
}

// SeedSampleTopics stores the sample data set under freshly generated IDs
// and returns the stored topics.
func SeedSampleTopics(store TopicStore, ids TopicIDGenerator, clock Clock) ([]models.Topic, error) {
	if clock == nil {
		clock = SystemClock
	}
	if err := store.Load(); err != nil {
		return nil, fmt.Errorf("seeding sample topics: loading store: %w", err)
	}

	v := newTopicValidator()
	topics := SampleTopics(clock())
	for i := range topics {
		id, err := ids.GenerateTopicID()
		if err != nil {
			return nil, fmt.Errorf("seeding sample topics: %w", err)
		}
		topics[i].ID = id
		if err := validateTopic(v, &topics[i]); err != nil {
			return nil, fmt.Errorf("seeding sample topics: %w", err)
		}
		if err := store.AddTopic(topics[i]); err != nil {
			return nil, fmt.Errorf("seeding sample topics: %w", err)
		}
	}
	if err := store.Save(); err != nil {
		return nil, fmt.Errorf("seeding sample topics: saving store: %w", err)
	}
	return topics, nil
}
