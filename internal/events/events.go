package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	EventSource  = "gradebook-service"
	EventVersion = "1.0"
	DefaultTopic = "gradebook.events"
)

// Event types
const (
	UserRegistered        = "user.registered"
	UserCreated           = "user.created"
	UserDeleted           = "user.deleted"
	UserRolesChanged      = "user.roles_changed"
	UserActivationChanged = "user.activation_changed"
	UserPasswordReset     = "user.password_reset"

	TestCreated = "test.created"
	TestUpdated = "test.updated"
	TestDeleted = "test.deleted"

	GradeCreated = "grade.created"
	GradeUpdated = "grade.updated"
	GradeDeleted = "grade.deleted"

	CatalogChanged = "catalog.changed"
)

// Event is the envelope every domain event is published in
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	ActorID   string      `json:"actorId,omitempty"`
	Data      interface{} `json:"data"`
}

func NewEvent(eventType, actorID string, data interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    EventSource,
		Version:   EventVersion,
		Timestamp: time.Now().UTC(),
		ActorID:   actorID,
		Data:      data,
	}
}

// EventPublisher publishes domain events to the configured transport
type EventPublisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}

// Event payloads

type UserEventData struct {
	UserID   string   `json:"userId"`
	Username string   `json:"username"`
	Roles    []string `json:"roles,omitempty"`
	Active   *bool    `json:"active,omitempty"`
}

type TestEventData struct {
	TestID string `json:"testId"`
	Name   string `json:"name"`
}

type GradeEventData struct {
	GradeID   string  `json:"gradeId"`
	StudentID string  `json:"studentId"`
	TestID    *string `json:"testId,omitempty"`
	Value     float64 `json:"value"`
	Weight    float64 `json:"weight"`
}

type CatalogEventData struct {
	Collection string `json:"collection"`
	ID         string `json:"id"`
	Action     string `json:"action"`
}
