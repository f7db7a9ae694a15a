package model

import (
	"time"
)

// EventType represents the type of marketplace event.
type EventType string

const (
	EventTypeJobPosted           EventType = "job.posted"
	EventTypeConversationStarted EventType = "conversation.started"
	EventTypeMessageSent         EventType = "message.sent"
)

// Event is a domain event emitted after a successful mutation.
type Event struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	SubjectID string         `json:"subject_id"`
	ActorID   string         `json:"actor_id"`
	Payload   map[string]any `json:"payload,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
