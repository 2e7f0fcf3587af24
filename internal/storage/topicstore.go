package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/valter-silva-au/ptt-tracker/pkg/models"
	"gopkg.in/yaml.v3"
)

// ErrTopicNotFound aliases the shared sentinel so callers of this package can
// match it without importing models.
var ErrTopicNotFound = models.ErrTopicNotFound

// Storage drivers accepted by Open.
const (
	DriverYAML   = models.StorageYAML
	DriverSQLite = models.StorageSQLite
)

// TopicStore defines the interface for persisting Priority Technical Topics.
type TopicStore interface {
	AddTopic(topic models.Topic) error
	UpdateTopic(topic models.Topic) error
	RemoveTopic(id string) error
	GetTopic(id string) (*models.Topic, error)
	GetAllTopics() ([]models.Topic, error)
	FilterTopics(filter models.TopicFilter) ([]models.Topic, error)
	Load() error
	Save() error
	Close() error
	// Path is the file backing the store, watched for external changes.
	Path() string
}

// Open returns the TopicStore for driver rooted at basePath and loads it.
func Open(driver, basePath string) (TopicStore, error) {
	var store TopicStore
	switch driver {
	case DriverYAML, "":
		store = NewYAMLTopicStore(basePath)
	case DriverSQLite:
		s, err := NewSQLiteTopicStore(basePath)
		if err != nil {
			return nil, err
		}
		store = s
	default:
		return nil, fmt.Errorf("opening topic store: unknown driver %q", driver)
	}
	if err := store.Load(); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

// TopicsFile represents the top-level structure of topics.yaml.
type TopicsFile struct {
	Version string                  `yaml:"version"`
	Topics  map[string]models.Topic `yaml:"topics"`
}

type yamlTopicStore struct {
	mu       sync.RWMutex
	basePath string
	data     TopicsFile
}

// NewYAMLTopicStore creates a TopicStore backed by a topics.yaml file in the
// given base directory. Mutations stay in memory until Save.
func NewYAMLTopicStore(basePath string) TopicStore {
	return &yamlTopicStore{
		basePath: basePath,
		data:     emptyTopicsFile(),
	}
}

func emptyTopicsFile() TopicsFile {
	return TopicsFile{Version: "1.0", Topics: make(map[string]models.Topic)}
}

func (s *yamlTopicStore) Path() string {
	return filepath.Join(s.basePath, "topics.yaml")
}

func (s *yamlTopicStore) AddTopic(topic models.Topic) error {
	id := normalizeTopicID(topic.ID)
	if id == "" {
		return fmt.Errorf("adding topic: ID must not be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.data.Topics[id]; exists {
		return fmt.Errorf("adding topic: topic %s already exists", id)
	}
	topic.ID = id
	s.data.Topics[id] = topic
	return nil
}

func (s *yamlTopicStore) UpdateTopic(topic models.Topic) error {
	id := normalizeTopicID(topic.ID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.data.Topics[id]; !exists {
		return fmt.Errorf("updating topic %s: %w", id, ErrTopicNotFound)
	}
	topic.ID = id
	s.data.Topics[id] = topic
	return nil
}

func (s *yamlTopicStore) RemoveTopic(id string) error {
	id = normalizeTopicID(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.data.Topics[id]; !exists {
		return fmt.Errorf("removing topic %s: %w", id, ErrTopicNotFound)
	}
	delete(s.data.Topics, id)
	return nil
}

func (s *yamlTopicStore) GetTopic(id string) (*models.Topic, error) {
	id = normalizeTopicID(id)
	s.mu.RLock()
	defer s.mu.RUnlock()
	topic, exists := s.data.Topics[id]
	if !exists {
		return nil, fmt.Errorf("topic %s: %w", id, ErrTopicNotFound)
	}
	return &topic, nil
}

func (s *yamlTopicStore) GetAllTopics() ([]models.Topic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	topics := make([]models.Topic, 0, len(s.data.Topics))
	for _, topic := range s.data.Topics {
		topics = append(topics, topic)
	}
	sortByID(topics)
	return topics, nil
}

func (s *yamlTopicStore) FilterTopics(filter models.TopicFilter) ([]models.Topic, error) {
	all, err := s.GetAllTopics()
	if err != nil {
		return nil, err
	}
	return FilterTopics(all, filter), nil
}

func (s *yamlTopicStore) Load() error {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			s.mu.Lock()
			s.data = emptyTopicsFile()
			s.mu.Unlock()
			return nil
		}
		return fmt.Errorf("loading topics: %w", err)
	}

	var tf TopicsFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return fmt.Errorf("loading topics: parsing YAML: %w", err)
	}
	if tf.Topics == nil {
		tf.Topics = make(map[string]models.Topic)
	}
	for id, topic := range tf.Topics {
		if topic.ID == "" {
			topic.ID = id
			tf.Topics[id] = topic
		}
	}

	s.mu.Lock()
	s.data = tf
	s.mu.Unlock()
	return nil
}

func (s *yamlTopicStore) Save() error {
	if err := os.MkdirAll(s.basePath, 0o750); err != nil {
		return fmt.Errorf("saving topics: creating directory: %w", err)
	}
	s.mu.RLock()
	data, err := yaml.Marshal(&s.data)
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("saving topics: marshaling YAML: %w", err)
	}

	// Write to a sibling file and rename so watchers never see a partial file.
	tmp := s.Path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("saving topics: writing file: %w", err)
	}
	if err := os.Rename(tmp, s.Path()); err != nil {
		return fmt.Errorf("saving topics: replacing file: %w", err)
	}
	return nil
}

func (s *yamlTopicStore) Close() error { return nil }

// normalizeTopicID trims whitespace so "  00042" and "00042" address the same
// record.
func normalizeTopicID(id string) string {
	return strings.TrimSpace(id)
}

func sortByID(topics []models.Topic) {
	sort.Slice(topics, func(i, j int) bool {
		return topics[i].ID < topics[j].ID
	})
}
