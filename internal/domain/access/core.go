package access

import (
	"time"

	"github.com/kaelum/authcore/internal/domain/identity"
	"github.com/kaelum/authcore/internal/domain/shared"
)

// BanCheck answers whether a principal is actively banned. The moderation
// registry provides the implementation; it is injected after both sides
// exist so neither constructor depends on the other.
type BanCheck func(p identity.Principal) (reason string, expiresAt *time.Time, banned bool)

// Core is the aggregate root of the Access context. It owns the admin
// table, the permission-type registry and the per-principal grant tables,
// all keyed by indices of the shared interner.
//
// Core is not safe for concurrent use; the application layer serializes
// access to it.
type Core struct {
	interner   *identity.Interner
	controller identity.Principal
	clock      shared.Clock

	admins map[uint32]AdminGrant
	types  map[uint32]PermissionType
	grants map[uint32]map[uint32]Grant

	banCheck BanCheck
}

// NewCore creates a Core bound to the shared interner. controller is the
// host runtime's controller principal, which is always admin and can never
// be banned or removed.
func NewCore(interner *identity.Interner, controller identity.Principal, clock shared.Clock) *Core {
	return &Core{
		interner:   interner,
		controller: controller,
		clock:      clock,
		admins:     make(map[uint32]AdminGrant),
		types:      make(map[uint32]PermissionType),
		grants:     make(map[uint32]map[uint32]Grant),
	}
}

// Interner exposes the shared deduplication index so sibling contexts key
// their tables in the same index space.
func (c *Core) Interner() *identity.Interner {
	return c.interner
}

// Controller returns the host runtime's controller principal.
func (c *Core) Controller() identity.Principal {
	return c.controller
}

// SetBanCheck installs the ban-state back-edge. Until set, no principal
// reads as banned.
func (c *Core) SetBanCheck(fn BanCheck) {
	c.banCheck = fn
}

// RegisterType registers a permission type. Names are immutable and
// duplicates are rejected; types live for the process lifetime and are
// re-registered by the host on startup.
func (c *Core) RegisterType(name, description string, maxDuration, defaultDuration *time.Duration) error {
	pt, err := NewPermissionType(name, description, maxDuration, defaultDuration)
	if err != nil {
		return err
	}

	idx := c.interner.Index([]byte(name))
	if _, exists := c.types[idx]; exists {
		return &PermissionTypeExistsError{Name: name}
	}
	c.types[idx] = pt
	return nil
}

// TypeOf returns the registered permission type for the given name.
func (c *Core) TypeOf(name string) (PermissionType, bool) {
	idx, ok := c.interner.Lookup([]byte(name))
	if !ok {
		return PermissionType{}, false
	}
	pt, ok := c.types[idx]
	return pt, ok
}

// Types returns all registered permission types.
func (c *Core) Types() []PermissionType {
	out := make([]PermissionType, 0, len(c.types))
	for _, pt := range c.types {
		out = append(out, pt)
	}
	return out
}

// IsAdmin reports whether the principal is currently an admin. The runtime
// controller is always admin; table entries are admin only while unexpired.
func (c *Core) IsAdmin(p identity.Principal) bool {
	if p.Equal(c.controller) {
		return true
	}
	idx, ok := c.interner.LookupPrincipal(p)
	if !ok {
		return false
	}
	grant, ok := c.admins[idx]
	if !ok {
		return false
	}
	return c.activeAt(grant.ExpiresAt)
}

// AdminEntry is a materialized view of one admin-table row.
type AdminEntry struct {
	Principal identity.Principal
	CreatedBy identity.Principal
	CreatedAt time.Time
	ExpiresAt *time.Time
}

// Admins materializes the admin table, skipping expired memberships.
func (c *Core) Admins() []AdminEntry {
	out := make([]AdminEntry, 0, len(c.admins))
	for idx, grant := range c.admins {
		if !c.activeAt(grant.ExpiresAt) {
			continue
		}
		p, ok := c.interner.PrincipalFor(idx)
		if !ok {
			continue
		}
		entry := AdminEntry{Principal: p, CreatedAt: grant.CreatedAt, ExpiresAt: grant.ExpiresAt}
		if by, ok := c.interner.PrincipalFor(grant.CreatedBy); ok {
			entry.CreatedBy = by
		}
		out = append(out, entry)
	}
	return out
}

// AddAdmin adds a principal to the admin set. Gated by the add_admin
// permission, which admins hold implicitly.
func (c *Core) AddAdmin(caller, newAdmin identity.Principal, expiresAt *time.Time) error {
	if err := c.Require(caller, PermAddAdmin); err != nil {
		return err
	}

	idx := c.interner.IndexPrincipal(newAdmin)
	if existing, ok := c.admins[idx]; ok && c.activeAt(existing.ExpiresAt) {
		return ErrAlreadyAdmin
	}

	c.admins[idx] = AdminGrant{
		CreatedBy: c.interner.IndexPrincipal(caller),
		CreatedAt: c.clock.Now(),
		ExpiresAt: expiresAt,
	}
	return nil
}

// RemoveAdmin removes a principal from the admin set. Gated by the
// remove_admin permission; self-removal and controller removal are rejected.
func (c *Core) RemoveAdmin(caller, target identity.Principal) error {
	if err := c.Require(caller, PermRemoveAdmin); err != nil {
		return err
	}
	if target.Equal(caller) {
		return ErrCannotRemoveSelf
	}
	if target.Equal(c.controller) {
		return ErrCannotRemoveController
	}

	idx, ok := c.interner.LookupPrincipal(target)
	if !ok {
		return ErrAdminNotFound
	}
	if _, ok := c.admins[idx]; !ok {
		return ErrAdminNotFound
	}
	delete(c.admins, idx)
	return nil
}

// Grant entitles target to the named permission. Requires admin. The
// effective expiry is resolved from the caller-supplied expiry and the
// type's duration metadata; an existing grant for the pair is overwritten.
func (c *Core) Grant(caller, target identity.Principal, permission string, expiresAt *time.Time) error {
	if err := c.RequireAdmin(caller); err != nil {
		return err
	}

	pt, ok := c.TypeOf(permission)
	if !ok {
		return &PermissionTypeNotFoundError{Name: permission}
	}

	now := c.clock.Now()
	effective := expiresAt
	switch {
	case expiresAt != nil:
		if max := pt.MaxDuration(); max != nil && expiresAt.After(now.Add(*max)) {
			return ErrExpiryBeyondMax
		}
	case pt.DefaultDuration() != nil:
		e := now.Add(*pt.DefaultDuration())
		effective = &e
	}

	principalIdx := c.interner.IndexPrincipal(target)
	permissionIdx := c.interner.Index([]byte(permission))

	table, ok := c.grants[principalIdx]
	if !ok {
		table = make(map[uint32]Grant)
		c.grants[principalIdx] = table
	}
	table[permissionIdx] = Grant{
		CreatedBy: c.interner.IndexPrincipal(caller),
		CreatedAt: now,
		ExpiresAt: effective,
	}
	return nil
}

// Revoke deletes the grant for the pair. Requires admin. Revoking the last
// grant removes the principal's inner table.
func (c *Core) Revoke(caller, target identity.Principal, permission string) error {
	if err := c.RequireAdmin(caller); err != nil {
		return err
	}

	principalIdx, ok := c.interner.LookupPrincipal(target)
	if !ok {
		return ErrPermissionNotFound
	}
	permissionIdx, ok := c.interner.Lookup([]byte(permission))
	if !ok {
		return ErrPermissionNotFound
	}

	table, ok := c.grants[principalIdx]
	if !ok {
		return ErrPermissionNotFound
	}
	if _, ok := table[permissionIdx]; !ok {
		return ErrPermissionNotFound
	}

	delete(table, permissionIdx)
	if len(table) == 0 {
		delete(c.grants, principalIdx)
	}
	return nil
}

// CheckDetailed evaluates the detailed check variant for the principal and
// permission, in the strict order documented on the package.
func (c *Core) CheckDetailed(p identity.Principal, permission string) CheckResult {
	if c.banCheck != nil {
		if reason, expiresAt, banned := c.banCheck(p); banned {
			return ResultBanned(reason, expiresAt)
		}
	}

	if c.IsAdmin(p) {
		return ResultAllowed()
	}

	if _, ok := c.TypeOf(permission); !ok {
		return ResultPermissionTypeNotFound(permission)
	}

	principalIdx, ok := c.interner.LookupPrincipal(p)
	if !ok {
		return ResultNoPrincipalPermissions()
	}
	table, ok := c.grants[principalIdx]
	if !ok {
		return ResultNoPrincipalPermissions()
	}

	permissionIdx, ok := c.interner.Lookup([]byte(permission))
	if !ok {
		return ResultPermissionNotGranted()
	}
	grant, ok := table[permissionIdx]
	if !ok {
		return ResultPermissionNotGranted()
	}

	if grant.ExpiresAt != nil && !c.clock.Now().Before(*grant.ExpiresAt) {
		return ResultPermissionExpired(*grant.ExpiresAt)
	}

	return ResultAllowed()
}

// Check projects the detailed variant to a boolean.
func (c *Core) Check(p identity.Principal, permission string) bool {
	return c.CheckDetailed(p, permission).Allowed()
}

// Require returns nil when the caller holds the permission, the caller's
// BannedError when banned, and NotAuthorizedError otherwise. Sibling
// contexts gate their operations through this.
func (c *Core) Require(caller identity.Principal, permission string) error {
	return c.CheckDetailed(caller, permission).Err(permission)
}

// RequireAdmin is Require for admin-gated operations.
func (c *Core) RequireAdmin(caller identity.Principal) error {
	if c.banCheck != nil {
		if reason, expiresAt, banned := c.banCheck(caller); banned {
			return &shared.BannedError{Reason: reason, ExpiresAt: expiresAt}
		}
	}
	if !c.IsAdmin(caller) {
		return &NotAuthorizedError{Required: "admin"}
	}
	return nil
}

// CleanupExpired prunes expired admin memberships and permission grants,
// removing inner tables emptied by pruning. Idempotent; invoked by the
// host's periodic driver.
func (c *Core) CleanupExpired() {
	now := c.clock.Now()

	for idx, grant := range c.admins {
		if grant.ExpiresAt != nil && !now.Before(*grant.ExpiresAt) {
			delete(c.admins, idx)
		}
	}

	for principalIdx, table := range c.grants {
		for permissionIdx, grant := range table {
			if grant.ExpiresAt != nil && !now.Before(*grant.ExpiresAt) {
				delete(table, permissionIdx)
			}
		}
		if len(table) == 0 {
			delete(c.grants, principalIdx)
		}
	}
}

func (c *Core) activeAt(expiresAt *time.Time) bool {
	return expiresAt == nil || c.clock.Now().Before(*expiresAt)
}
