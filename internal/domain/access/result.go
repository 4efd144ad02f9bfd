package access

import (
	"time"

	"github.com/kaelum/authcore/internal/domain/shared"
)

// CheckKind enumerates the closed set of detailed check outcomes.
type CheckKind int

const (
	// CheckAllowed means the principal holds the permission right now.
	CheckAllowed CheckKind = iota
	// CheckBanned means the principal is actively banned; ban state
	// supersedes admin status and grants.
	CheckBanned
	// CheckPermissionNotGranted means the grants table lacks this permission.
	CheckPermissionNotGranted
	// CheckPermissionExpired means a grant exists but has lapsed.
	CheckPermissionExpired
	// CheckPermissionTypeNotFound means the permission type was never registered.
	CheckPermissionTypeNotFound
	// CheckNoPrincipalPermissions means the principal has no grants table at all.
	CheckNoPrincipalPermissions
)

// String returns the variant name for logging.
func (k CheckKind) String() string {
	switch k {
	case CheckAllowed:
		return "allowed"
	case CheckBanned:
		return "banned"
	case CheckPermissionNotGranted:
		return "permission_not_granted"
	case CheckPermissionExpired:
		return "permission_expired"
	case CheckPermissionTypeNotFound:
		return "permission_type_not_found"
	case CheckNoPrincipalPermissions:
		return "no_principal_permissions"
	default:
		return "unknown"
	}
}

// CheckResult is the detailed evaluation variant used by all higher layers.
// It is an immutable value; inspect Kind first, then the fields meaningful
// for that kind.
type CheckResult struct {
	kind       CheckKind
	reason     string
	expiresAt  *time.Time
	expiredAt  time.Time
	permission string
}

// ResultAllowed constructs the Allowed variant.
func ResultAllowed() CheckResult {
	return CheckResult{kind: CheckAllowed}
}

// ResultBanned constructs the Banned variant with the ban's reason and
// expiry (nil expiry means permanent).
func ResultBanned(reason string, expiresAt *time.Time) CheckResult {
	return CheckResult{kind: CheckBanned, reason: reason, expiresAt: expiresAt}
}

// ResultPermissionNotGranted constructs the PermissionNotGranted variant.
func ResultPermissionNotGranted() CheckResult {
	return CheckResult{kind: CheckPermissionNotGranted}
}

// ResultPermissionExpired constructs the PermissionExpired variant.
func ResultPermissionExpired(expiredAt time.Time) CheckResult {
	return CheckResult{kind: CheckPermissionExpired, expiredAt: expiredAt}
}

// ResultPermissionTypeNotFound constructs the PermissionTypeNotFound variant.
func ResultPermissionTypeNotFound(permission string) CheckResult {
	return CheckResult{kind: CheckPermissionTypeNotFound, permission: permission}
}

// ResultNoPrincipalPermissions constructs the NoPrincipalPermissions variant.
func ResultNoPrincipalPermissions() CheckResult {
	return CheckResult{kind: CheckNoPrincipalPermissions}
}

// Kind returns the variant discriminator.
func (r CheckResult) Kind() CheckKind {
	return r.kind
}

// Allowed projects the variant to a boolean: true only for CheckAllowed.
func (r CheckResult) Allowed() bool {
	return r.kind == CheckAllowed
}

// BanReason returns the ban reason for the Banned variant.
func (r CheckResult) BanReason() string {
	return r.reason
}

// BanExpiresAt returns the ban expiry for the Banned variant, nil when the
// ban is permanent.
func (r CheckResult) BanExpiresAt() *time.Time {
	return r.expiresAt
}

// ExpiredAt returns when the grant lapsed for the PermissionExpired variant.
func (r CheckResult) ExpiredAt() time.Time {
	return r.expiredAt
}

// PermissionName returns the queried name for the PermissionTypeNotFound variant.
func (r CheckResult) PermissionName() string {
	return r.permission
}

// Err translates the result into the error taxonomy: nil for Allowed,
// *shared.BannedError for Banned, and NotAuthorizedError naming the
// required permission for every other variant.
func (r CheckResult) Err(required string) error {
	switch r.kind {
	case CheckAllowed:
		return nil
	case CheckBanned:
		return &shared.BannedError{Reason: r.reason, ExpiresAt: r.expiresAt}
	default:
		return &NotAuthorizedError{Required: required}
	}
}
