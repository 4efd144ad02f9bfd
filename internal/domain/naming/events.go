package naming

import (
	"time"

	"github.com/kaelum/authcore/internal/domain/shared"
)

// Event types emitted by the Naming context.
const (
	EventTypeNameSet      = "naming.name_set"
	EventTypeNameRemoved  = "naming.name_removed"
	EventTypeNameVerified = "naming.name_verified"
)

// NameSet is emitted when a name is registered or changed.
type NameSet struct {
	shared.BaseEvent
	Name string
	Kind NameKind
}

// NewNameSet creates a NameSet event.
func NewNameSet(occurredAt time.Time, name string, kind NameKind) NameSet {
	return NameSet{
		BaseEvent: shared.NewBaseEvent(EventTypeNameSet, name, occurredAt),
		Name:      name,
		Kind:      kind,
	}
}

// NameRemoved is emitted when a record is removed.
type NameRemoved struct {
	shared.BaseEvent
	Name string
	Kind NameKind
}

// NewNameRemoved creates a NameRemoved event.
func NewNameRemoved(occurredAt time.Time, name string, kind NameKind) NameRemoved {
	return NameRemoved{
		BaseEvent: shared.NewBaseEvent(EventTypeNameRemoved, name, occurredAt),
		Name:      name,
		Kind:      kind,
	}
}

// NameVerified is emitted when a record's verified flag changes.
type NameVerified struct {
	shared.BaseEvent
	Name     string
	Verified bool
}

// NewNameVerified creates a NameVerified event.
func NewNameVerified(occurredAt time.Time, name string, verified bool) NameVerified {
	return NameVerified{
		BaseEvent: shared.NewBaseEvent(EventTypeNameVerified, name, occurredAt),
		Name:      name,
		Verified:  verified,
	}
}
