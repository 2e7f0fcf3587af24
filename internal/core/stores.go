package core

import "github.com/valter-silva-au/ptt-tracker/pkg/models"

// TopicStore is the subset of storage.TopicStore that TopicManager needs.
// Defining it here keeps core independent of the storage package.
type TopicStore interface {
	AddTopic(topic models.Topic) error
	UpdateTopic(topic models.Topic) error
	RemoveTopic(id string) error
	GetTopic(id string) (*models.Topic, error)
	GetAllTopics() ([]models.Topic, error)
	FilterTopics(filter models.TopicFilter) ([]models.Topic, error)
	Load() error
	Save() error
}
