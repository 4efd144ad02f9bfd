// Package authz provides the application layer of the authorization core:
// the Service container that embedding hosts construct, hold and call.
//
// The Service wires the bounded contexts in dependency order - the shared
// interner, then the access core holding it, then the moderation registry
// (whose ban check is injected back into the access core), then the
// governance adapter and finally the naming registry - and exposes every
// operation group as methods: admin management, the permission-type
// registry, grant/revoke, detailed and boolean checks, the ban lifecycle
// and its queries, SNS threshold configuration and gated checks, name
// reads and writes across the three keyspaces, verification, blacklist and
// settings management, and the periodic cleanup hook.
//
// # Serialization
//
// The Service serializes all operations with one mutex, including across
// oracle calls. The underlying domain model only requires that local
// read-write sequences never interleave with an oracle suspension; holding
// the lock for whole operations is a stricter schedule with the same
// observable results, and keeps hosts that run multiple goroutines safe.
//
// # State
//
// ExportState produces the stable snapshot value (dedup table, admins,
// grants, ban log/active/settings, SNS thresholds, name tables, blacklist
// and name settings); RestoreState reinstalls one. Permission-type
// metadata is not part of the snapshot: hosts re-register types on
// startup, after restoring state and before serving requests.
package authz
