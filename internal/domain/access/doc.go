// Package access implements the Access bounded context: principal-based
// permission management with time-bounded grants.
//
// # Core Components
//
// Value Objects:
//   - PermissionType: a named, described capability with optional duration ceilings
//   - CheckResult: the closed evaluation variant produced by detailed checks
//
// Entities:
//   - AdminGrant: membership of the admin set, optionally expiring
//   - Grant: a principal's entitlement to a permission type, optionally expiring
//
// The Core aggregate owns the admin table, the permission-type registry and
// the per-principal grant tables. All tables are keyed by indices of the
// shared identity.Interner.
//
// # Evaluation Order
//
// CheckDetailed evaluates strictly in this order:
//
//  1. Target banned (active, unexpired)      -> Banned
//  2. Target is admin or runtime controller  -> Allowed
//  3. Permission type unknown                -> PermissionTypeNotFound
//  4. Principal has no grants table          -> NoPrincipalPermissions
//  5. Grants table lacks this permission     -> PermissionNotGranted
//  6. Grant present but expired              -> PermissionExpired
//  7. Otherwise                              -> Allowed
//
// Ban state takes precedence over everything, including admin status. The
// ban lookup is an injected callable set after both the Core and the ban
// registry exist, which breaks the construction cycle between them.
//
// # Expiry
//
// Expired grants and admin memberships are inert immediately: no check ever
// answers Allowed through an expired entry, whether or not CleanupExpired
// has pruned it yet. CleanupExpired is idempotent and driven by the host.
//
// Permission types are permanent within a process lifetime. The host
// re-registers them on startup; they are not part of the persisted state.
package access
