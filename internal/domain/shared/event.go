package shared

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent represents an immutable fact that occurred in the domain.
// Events are collected on aggregates (bans issued, names registered) and
// drained by the application layer for audit logging and host notification.
//
// Each event instance carries a unique identifier so consumers can process
// idempotently.
type DomainEvent interface {
	// EventID returns the unique identifier for this event instance.
	EventID() string

	// EventType returns the identifier for the event type (e.g. "user.banned").
	EventType() string

	// OccurredAt returns when the event occurred (always UTC).
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that emitted this event.
	AggregateID() string
}

// BaseEvent provides a common implementation of the DomainEvent interface.
// Concrete events embed BaseEvent and add their payload fields.
type BaseEvent struct {
	eventID     string
	eventType   string
	occurredAt  time.Time
	aggregateID string
}

// NewBaseEvent creates a BaseEvent of the given type for the given aggregate.
// The event id is a fresh UUID. occurredAt is taken from the supplied instant
// rather than the wall clock so events agree with the host's Clock.
func NewBaseEvent(eventType, aggregateID string, occurredAt time.Time) BaseEvent {
	return BaseEvent{
		eventID:     uuid.New().String(),
		eventType:   eventType,
		occurredAt:  occurredAt.UTC(),
		aggregateID: aggregateID,
	}
}

// EventID returns the unique identifier for this event.
func (e BaseEvent) EventID() string {
	return e.eventID
}

// EventType returns the type of the event.
func (e BaseEvent) EventType() string {
	return e.eventType
}

// OccurredAt returns when the event occurred.
func (e BaseEvent) OccurredAt() time.Time {
	return e.occurredAt
}

// AggregateID returns the ID of the aggregate that emitted the event.
func (e BaseEvent) AggregateID() string {
	return e.aggregateID
}
