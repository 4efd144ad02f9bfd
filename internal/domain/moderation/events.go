package moderation

import (
	"time"

	"github.com/kaelum/authcore/internal/domain/shared"
)

// Event types emitted by the Moderation context.
const (
	EventTypeUserBanned   = "moderation.user_banned"
	EventTypeUserUnbanned = "moderation.user_unbanned"
)

// UserBanned is emitted when a ban is issued, manually or by the system path.
type UserBanned struct {
	shared.BaseEvent
	User      string
	Admin     string
	Reason    string
	ExpiresAt time.Time
}

// NewUserBanned creates a UserBanned event. user and admin are textual
// principal forms; admin is empty for system-issued bans.
func NewUserBanned(occurredAt time.Time, user, admin, reason string, expiresAt time.Time) UserBanned {
	return UserBanned{
		BaseEvent: shared.NewBaseEvent(EventTypeUserBanned, user, occurredAt),
		User:      user,
		Admin:     admin,
		Reason:    reason,
		ExpiresAt: expiresAt,
	}
}

// UserUnbanned is emitted when an active ban is lifted manually.
type UserUnbanned struct {
	shared.BaseEvent
	User  string
	Admin string
}

// NewUserUnbanned creates a UserUnbanned event.
func NewUserUnbanned(occurredAt time.Time, user, admin string) UserUnbanned {
	return UserUnbanned{
		BaseEvent: shared.NewBaseEvent(EventTypeUserUnbanned, user, occurredAt),
		User:      user,
		Admin:     admin,
	}
}
