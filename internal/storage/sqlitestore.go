package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/valter-silva-au/ptt-tracker/pkg/models"

	_ "modernc.org/sqlite"
)

const sqliteTimeLayout = time.RFC3339Nano

type sqliteTopicStore struct {
	mu     sync.Mutex
	db     *sql.DB
	dbPath string
}

// NewSQLiteTopicStore opens (creating if needed) topics.db in basePath,
// enables WAL and migrates the schema. Every mutation is written through, so
// Load and Save have nothing to do.
func NewSQLiteTopicStore(basePath string) (TopicStore, error) {
	if err := os.MkdirAll(basePath, 0o750); err != nil {
		return nil, fmt.Errorf("opening sqlite store: creating directory: %w", err)
	}
	dbPath := filepath.Join(basePath, "topics.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite store: %w", err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("opening sqlite store: enabling WAL: %w", err)
	}
	if err := migrateTopicStore(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &sqliteTopicStore{db: db, dbPath: dbPath}, nil
}

func migrateTopicStore(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS topics (
			id TEXT PRIMARY KEY,
			department TEXT NOT NULL,
			priority TEXT NOT NULL,
			status TEXT NOT NULL,
			owner TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			data TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_topics_status ON topics(status)`,
		`CREATE INDEX IF NOT EXISTS idx_topics_department ON topics(department)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrating sqlite store: %w", err)
		}
	}
	return nil
}

func (s *sqliteTopicStore) Path() string { return s.dbPath }

func (s *sqliteTopicStore) AddTopic(topic models.Topic) error {
	topic.ID = normalizeTopicID(topic.ID)
	if topic.ID == "" {
		return fmt.Errorf("adding topic: ID must not be empty")
	}
	data, err := json.Marshal(topic)
	if err != nil {
		return fmt.Errorf("adding topic: encoding: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var exists int
	err = s.db.QueryRow(`SELECT COUNT(1) FROM topics WHERE id = ?`, topic.ID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("adding topic: %w", err)
	}
	if exists > 0 {
		return fmt.Errorf("adding topic: topic %s already exists", topic.ID)
	}

	_, err = s.db.Exec(`
		INSERT INTO topics (id, department, priority, status, owner, updated_at, data)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, topic.ID, string(topic.Department), string(topic.Priority), string(topic.Status),
		topic.Owner, topic.UpdatedAt.UTC().Format(sqliteTimeLayout), string(data))
	if err != nil {
		return fmt.Errorf("adding topic: %w", err)
	}
	return nil
}

func (s *sqliteTopicStore) UpdateTopic(topic models.Topic) error {
	topic.ID = normalizeTopicID(topic.ID)
	data, err := json.Marshal(topic)
	if err != nil {
		return fmt.Errorf("updating topic: encoding: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`
		UPDATE topics
		SET department = ?, priority = ?, status = ?, owner = ?, updated_at = ?, data = ?
		WHERE id = ?
	`, string(topic.Department), string(topic.Priority), string(topic.Status),
		topic.Owner, topic.UpdatedAt.UTC().Format(sqliteTimeLayout), string(data), topic.ID)
	if err != nil {
		return fmt.Errorf("updating topic %s: %w", topic.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("updating topic %s: %w", topic.ID, ErrTopicNotFound)
	}
	return nil
}

func (s *sqliteTopicStore) RemoveTopic(id string) error {
	id = normalizeTopicID(id)
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`DELETE FROM topics WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("removing topic %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("removing topic %s: %w", id, ErrTopicNotFound)
	}
	return nil
}

func (s *sqliteTopicStore) GetTopic(id string) (*models.Topic, error) {
	id = normalizeTopicID(id)
	s.mu.Lock()
	defer s.mu.Unlock()

	var data string
	err := s.db.QueryRow(`SELECT data FROM topics WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("topic %s: %w", id, ErrTopicNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading topic %s: %w", id, err)
	}
	var topic models.Topic
	if err := json.Unmarshal([]byte(data), &topic); err != nil {
		return nil, fmt.Errorf("decoding topic %s: %w", id, err)
	}
	return &topic, nil
}

func (s *sqliteTopicStore) GetAllTopics() ([]models.Topic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT id, data FROM topics ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing topics: %w", err)
	}
	defer rows.Close()

	topics := make([]models.Topic, 0)
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("listing topics: %w", err)
		}
		var topic models.Topic
		if err := json.Unmarshal([]byte(data), &topic); err != nil {
			return nil, fmt.Errorf("decoding topic %s: %w", id, err)
		}
		topics = append(topics, topic)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing topics: %w", err)
	}
	return topics, nil
}

func (s *sqliteTopicStore) FilterTopics(filter models.TopicFilter) ([]models.Topic, error) {
	all, err := s.GetAllTopics()
	if err != nil {
		return nil, err
	}
	return FilterTopics(all, filter), nil
}

func (s *sqliteTopicStore) Load() error { return nil }

func (s *sqliteTopicStore) Save() error { return nil }

func (s *sqliteTopicStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
