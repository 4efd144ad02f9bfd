package access

import (
	"fmt"
	"time"

	"github.com/kaelum/authcore/internal/domain/shared"
)

// PermissionType is a value object describing a named capability. The name
// is immutable once registered. Durations cap how long grants of this type
// may live: MaxDuration bounds caller-supplied expiries, DefaultDuration is
// applied when the caller supplies none.
type PermissionType struct {
	name            string
	description     string
	maxDuration     *time.Duration
	defaultDuration *time.Duration
}

// NewPermissionType creates a PermissionType after validating its invariants.
// When both durations are set, the default must not exceed the maximum.
func NewPermissionType(name, description string, maxDuration, defaultDuration *time.Duration) (PermissionType, error) {
	if name == "" {
		return PermissionType{}, fmt.Errorf("%w: permission name cannot be empty", shared.ErrInvalidInput)
	}
	if maxDuration != nil && *maxDuration <= 0 {
		return PermissionType{}, fmt.Errorf("%w: max duration must be positive", shared.ErrInvalidInput)
	}
	if defaultDuration != nil && *defaultDuration <= 0 {
		return PermissionType{}, fmt.Errorf("%w: default duration must be positive", shared.ErrInvalidInput)
	}
	if maxDuration != nil && defaultDuration != nil && *defaultDuration > *maxDuration {
		return PermissionType{}, ErrDurationBounds
	}

	return PermissionType{
		name:            name,
		description:     description,
		maxDuration:     maxDuration,
		defaultDuration: defaultDuration,
	}, nil
}

// Name returns the immutable permission name.
func (t PermissionType) Name() string {
	return t.name
}

// Description returns the human-readable description.
func (t PermissionType) Description() string {
	return t.description
}

// MaxDuration returns the grant duration ceiling, nil when uncapped.
func (t PermissionType) MaxDuration() *time.Duration {
	return t.maxDuration
}

// DefaultDuration returns the duration applied to grants without an explicit
// expiry, nil when such grants are permanent.
func (t PermissionType) DefaultDuration() *time.Duration {
	return t.defaultDuration
}

// AdminGrant records membership of the admin set.
type AdminGrant struct {
	// CreatedBy is the interner index of the granting principal.
	CreatedBy uint32 `json:"created_by"`
	// CreatedAt is when the membership was granted.
	CreatedAt time.Time `json:"created_at"`
	// ExpiresAt bounds the membership; nil means permanent. A membership
	// whose expiry has passed is inert even before cleanup prunes it.
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Grant records a principal's entitlement to one permission type.
type Grant struct {
	// CreatedBy is the interner index of the granting principal.
	CreatedBy uint32 `json:"created_by"`
	// CreatedAt is when the grant was made.
	CreatedAt time.Time `json:"created_at"`
	// ExpiresAt bounds the grant; nil means permanent.
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}
