// Package moderation implements the Moderation bounded context: the
// progressive ban subsystem.
//
// # Core Components
//
// Value Objects:
//   - Settings: the progressive-duration configuration (minimum hours plus
//     an ordered list of offence-count tiers)
//   - ActiveBan: the live ban record for one principal (expiry + reason)
//
// Entities:
//   - LogEntry: one append-only ban-log row; immutable once appended
//
// The Registry aggregate owns the active-ban table, the append-only log and
// the settings singleton, keyed by indices of the shared interner.
//
// # Business Rules
//
//  1. Ban state supersedes everything: an actively banned principal fails
//     every permission check with the Banned variant, admin or not.
//  2. The log is permanent. Active bans end at expiry or manual unban; the
//     entries recording them never change. A principal's offence count is
//     the number of log entries naming them.
//  3. When no explicit duration is given, the duration comes from the
//     highest settings tier whose offence count does not exceed the
//     target's, falling back to the configured minimum hours.
//  4. Admins and the runtime controller cannot be banned.
//  5. Expired bans are deleted lazily on read and by CleanupExpired; a
//     lapsed ban never denies anything, swept or not.
//
// The Registry authorizes its operations through the access context
// (ban_user, unban_user, manage_ban_settings) and exports a BanCheck
// callable that the access context consults for ban precedence - the
// back-edge between the two contexts is this pair of references, installed
// after both exist.
package moderation
