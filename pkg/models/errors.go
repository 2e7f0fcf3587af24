package models

import "errors"

// ErrTopicNotFound is returned when a topic ID has no stored record.
var ErrTopicNotFound = errors.New("topic not found")
