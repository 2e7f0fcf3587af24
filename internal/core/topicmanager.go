package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/valter-silva-au/ptt-tracker/pkg/models"
	"go.uber.org/zap"
)

// ErrTopicNotFound is returned when an operation names an unknown topic.
var ErrTopicNotFound = models.ErrTopicNotFound

// ErrEvidenceRequired is returned when consequence or likelihood changes
// without supporting evidence.
var ErrEvidenceRequired = errors.New("evidence is required when consequence or likelihood changes")

// maxIDAttempts bounds the search for a free ID when the counter collides
// with imported topics.
const maxIDAttempts = 1000

// Event types written to the event log.
const (
	EventTopicCreated       = "topic.created"
	EventTopicUpdated       = "topic.updated"
	EventTopicStatusChanged = "topic.status_changed"
	EventTopicResolved      = "topic.resolved"
	EventTopicDeleted       = "topic.deleted"
)

// Fields recorded in history when they change.
const (
	FieldPriority    = "Priority"
	FieldStatus      = "Status"
	FieldConsequence = "Consequence"
	FieldLikelihood  = "Likelihood"
	FieldRiskTrend   = "RiskTrend"
	FieldDepartment  = "Department"
)

// CreateTopicOptions describes a new topic. Status defaults to New and
// RiskTrend to Stable. CreatedAt backdates the topic when set.
type CreateTopicOptions struct {
	Title                string
	Description          string
	Department           models.Department
	Priority             models.Priority
	Status               models.Status
	Owner                string
	TargetResolutionDate time.Time
	Consequence          int
	Likelihood           int
	RiskTrend            models.RiskTrend
	Comments             string
	Evidence             string
	Attachments          []models.Attachment
	CreatedAt            time.Time
	User                 string
}

// TopicUpdate lists the fields to change. Nil fields are left untouched.
type TopicUpdate struct {
	Title                *string
	Description          *string
	Department           *models.Department
	Priority             *models.Priority
	Status               *models.Status
	Owner                *string
	TargetResolutionDate *time.Time
	Consequence          *int
	Likelihood           *int
	RiskTrend            *models.RiskTrend
	Comments             *string
}

// ChangeNote annotates the history entry written for an update.
type ChangeNote struct {
	Description string
	Evidence    string
	User        string
}

// TopicManager defines the interface for topic lifecycle operations.
type TopicManager interface {
	CreateTopic(opts CreateTopicOptions) (*models.Topic, error)
	UpdateTopic(id string, update TopicUpdate, note ChangeNote) (*models.Topic, error)
	UpdateStatus(id string, status models.Status, note ChangeNote) (*models.Topic, error)
	DeleteTopic(id string) error
	GetTopic(id string) (*models.Topic, error)
	ListTopics(filter models.TopicFilter) ([]models.Topic, error)
}

type topicManager struct {
	mu       sync.Mutex
	store    TopicStore
	ids      TopicIDGenerator
	events   EventLogger
	validate *validator.Validate
	clock    Clock
	logger   *zap.Logger
}

// NewTopicManager creates a TopicManager. events and logger may be nil; clock
// defaults to SystemClock.
func NewTopicManager(store TopicStore, ids TopicIDGenerator, events EventLogger, clock Clock, logger *zap.Logger) TopicManager {
	if clock == nil {
		clock = SystemClock
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &topicManager{
		store:    store,
		ids:      ids,
		events:   events,
		validate: newTopicValidator(),
		clock:    clock,
		logger:   logger,
	}
}

// CreateTopic allocates an ID, validates and stores the topic with a
// creation history entry.
func (tm *topicManager) CreateTopic(opts CreateTopicOptions) (*models.Topic, error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if err := tm.store.Load(); err != nil {
		return nil, fmt.Errorf("creating topic: loading store: %w", err)
	}

	now := tm.clock()
	created := opts.CreatedAt
	if created.IsZero() {
		created = now
	}
	if opts.Status == "" {
		opts.Status = models.StatusNew
	}
	if opts.RiskTrend == "" {
		opts.RiskTrend = models.TrendStable
	}

	topic := models.Topic{
		Title:                strings.TrimSpace(opts.Title),
		Description:          strings.TrimSpace(opts.Description),
		Department:           opts.Department,
		Priority:             opts.Priority,
		Status:               opts.Status,
		Owner:                strings.TrimSpace(opts.Owner),
		CreatedAt:            created,
		UpdatedAt:            created,
		TargetResolutionDate: opts.TargetResolutionDate,
		Consequence:          opts.Consequence,
		Likelihood:           opts.Likelihood,
		RiskTrend:            opts.RiskTrend,
		Comments:             opts.Comments,
		Evidence:             opts.Evidence,
		Attachments:          normalizeAttachments(opts.Attachments, created),
		History: []models.HistoryEntry{{
			Date:        created,
			Description: "Topic Created",
			User:        actor(opts.User, opts.Owner),
			Evidence:    opts.Evidence,
		}},
	}

	// Validate before drawing an ID so rejected input does not consume one.
	topic.ID = "pending"
	if err := validateTopic(tm.validate, &topic); err != nil {
		return nil, err
	}

	id, err := tm.nextID()
	if err != nil {
		return nil, fmt.Errorf("creating topic: %w", err)
	}
	topic.ID = id

	if err := tm.store.AddTopic(topic); err != nil {
		return nil, fmt.Errorf("creating topic: %w", err)
	}
	if err := tm.store.Save(); err != nil {
		return nil, fmt.Errorf("creating topic: saving store: %w", err)
	}

	tm.logEvent(EventTopicCreated, map[string]any{
		"topic_id":   topic.ID,
		"department": string(topic.Department),
		"priority":   string(topic.Priority),
		"risk_score": topic.RiskScore(),
	})
	return &topic, nil
}

// nextID draws IDs until one is unused in the store.
func (tm *topicManager) nextID() (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id, err := tm.ids.GenerateTopicID()
		if err != nil {
			return "", fmt.Errorf("generating ID: %w", err)
		}
		if _, err := tm.store.GetTopic(id); errors.Is(err, models.ErrTopicNotFound) {
			return id, nil
		} else if err != nil {
			return "", fmt.Errorf("checking ID %s: %w", id, err)
		}
	}
	return "", fmt.Errorf("generating ID: no free ID after %d attempts", maxIDAttempts)
}

// UpdateTopic applies update and appends one history entry listing every
// tracked field that changed.
func (tm *topicManager) UpdateTopic(id string, update TopicUpdate, note ChangeNote) (*models.Topic, error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if err := tm.store.Load(); err != nil {
		return nil, fmt.Errorf("updating topic %s: loading store: %w", id, err)
	}
	existing, err := tm.store.GetTopic(id)
	if err != nil {
		return nil, fmt.Errorf("updating topic %s: %w", id, err)
	}

	before := *existing
	after := applyUpdate(before, update)
	changes := diffTopics(before, after)

	riskChanged := before.Consequence != after.Consequence || before.Likelihood != after.Likelihood
	if riskChanged && strings.TrimSpace(note.Evidence) == "" {
		return nil, fmt.Errorf("updating topic %s: %w", id, ErrEvidenceRequired)
	}

	now := tm.clock()
	description := note.Description
	if description == "" {
		description = "Topic Updated"
	}
	after.UpdatedAt = now
	if note.Evidence != "" {
		after.Evidence = note.Evidence
	}
	after.History = append(append([]models.HistoryEntry(nil), before.History...), models.HistoryEntry{
		Date:        now,
		Description: description,
		User:        actor(note.User, after.Owner),
		Evidence:    note.Evidence,
		Changes:     changes,
	})

	if err := validateTopic(tm.validate, &after); err != nil {
		return nil, err
	}
	if err := tm.store.UpdateTopic(after); err != nil {
		return nil, fmt.Errorf("updating topic %s: %w", id, err)
	}
	if err := tm.store.Save(); err != nil {
		return nil, fmt.Errorf("updating topic %s: saving store: %w", id, err)
	}

	fields := make([]string, len(changes))
	for i, c := range changes {
		fields[i] = c.Field
	}
	tm.logEvent(EventTopicUpdated, map[string]any{"topic_id": after.ID, "fields": fields})
	if before.Status != after.Status {
		tm.logEvent(EventTopicStatusChanged, map[string]any{
			"topic_id":   after.ID,
			"old_status": string(before.Status),
			"new_status": string(after.Status),
		})
		if after.Status == models.StatusResolved {
			tm.logEvent(EventTopicResolved, map[string]any{"topic_id": after.ID, "risk_score": after.RiskScore()})
		}
	}
	return &after, nil
}

// UpdateStatus moves a topic to status.
func (tm *topicManager) UpdateStatus(id string, status models.Status, note ChangeNote) (*models.Topic, error) {
	if note.Description == "" {
		note.Description = "Status changed to " + string(status)
	}
	return tm.UpdateTopic(id, TopicUpdate{Status: &status}, note)
}

func (tm *topicManager) DeleteTopic(id string) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if err := tm.store.Load(); err != nil {
		return fmt.Errorf("deleting topic %s: loading store: %w", id, err)
	}
	if err := tm.store.RemoveTopic(id); err != nil {
		return fmt.Errorf("deleting topic %s: %w", id, err)
	}
	if err := tm.store.Save(); err != nil {
		return fmt.Errorf("deleting topic %s: saving store: %w", id, err)
	}
	tm.logEvent(EventTopicDeleted, map[string]any{"topic_id": id})
	return nil
}

func (tm *topicManager) GetTopic(id string) (*models.Topic, error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if err := tm.store.Load(); err != nil {
		return nil, fmt.Errorf("loading topic %s: %w", id, err)
	}
	return tm.store.GetTopic(id)
}

func (tm *topicManager) ListTopics(filter models.TopicFilter) ([]models.Topic, error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if err := tm.store.Load(); err != nil {
		return nil, fmt.Errorf("listing topics: %w", err)
	}
	return tm.store.FilterTopics(filter)
}

func (tm *topicManager) logEvent(eventType string, data map[string]any) {
	tm.logger.Debug("topic event", zap.String("type", eventType), zap.Any("data", data))
	if tm.events == nil {
		return
	}
	if err := tm.events.LogEvent(eventType, data); err != nil {
		tm.logger.Warn("writing event", zap.String("type", eventType), zap.Error(err))
	}
}

// applyUpdate returns a copy of t with the non-nil fields of u applied.
func applyUpdate(t models.Topic, u TopicUpdate) models.Topic {
	if u.Title != nil {
		t.Title = strings.TrimSpace(*u.Title)
	}
	if u.Description != nil {
		t.Description = strings.TrimSpace(*u.Description)
	}
	if u.Department != nil {
		t.Department = *u.Department
	}
	if u.Priority != nil {
		t.Priority = *u.Priority
	}
	if u.Status != nil {
		t.Status = *u.Status
	}
	if u.Owner != nil {
		t.Owner = strings.TrimSpace(*u.Owner)
	}
	if u.TargetResolutionDate != nil {
		t.TargetResolutionDate = *u.TargetResolutionDate
	}
	if u.Consequence != nil {
		t.Consequence = *u.Consequence
	}
	if u.Likelihood != nil {
		t.Likelihood = *u.Likelihood
	}
	if u.RiskTrend != nil {
		t.RiskTrend = *u.RiskTrend
	}
	if u.Comments != nil {
		t.Comments = *u.Comments
	}
	return t
}

// diffTopics lists the tracked fields whose values differ, in a fixed order.
func diffTopics(before, after models.Topic) []models.FieldChange {
	var changes []models.FieldChange
	add := func(field, oldValue, newValue string) {
		if oldValue != newValue {
			changes = append(changes, models.FieldChange{Field: field, OldValue: oldValue, NewValue: newValue})
		}
	}
	add(FieldPriority, string(before.Priority), string(after.Priority))
	add(FieldStatus, string(before.Status), string(after.Status))
	add(FieldConsequence, strconv.Itoa(before.Consequence), strconv.Itoa(after.Consequence))
	add(FieldLikelihood, strconv.Itoa(before.Likelihood), strconv.Itoa(after.Likelihood))
	add(FieldRiskTrend, string(before.RiskTrend), string(after.RiskTrend))
	add(FieldDepartment, string(before.Department), string(after.Department))
	return changes
}

// actor picks the name recorded on a history entry.
func actor(user, owner string) string {
	if u := strings.TrimSpace(user); u != "" {
		return u
	}
	if o := strings.TrimSpace(owner); o != "" {
		return o
	}
	return "System"
}
