package moderation

import (
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/kaelum/authcore/internal/domain/access"
	"github.com/kaelum/authcore/internal/domain/identity"
	"github.com/kaelum/authcore/internal/domain/shared"
)

// maxReasonLength is the maximum length for a ban reason.
const maxReasonLength = 500

// ActiveBan is the live ban record for one principal.
type ActiveBan struct {
	ExpiresAt time.Time `json:"expires_at"`
	Reason    string    `json:"reason"`
}

// LogEntry is one append-only ban-log row. Entries are immutable once
// appended; unban entries carry an expiry equal to their ban instant.
type LogEntry struct {
	ID        string    `json:"id"`
	User      uint32    `json:"user"`
	Admin     uint32    `json:"admin"`
	BannedAt  time.Time `json:"banned_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Reason    string    `json:"reason"`
}

// LogRecord is a log entry materialized with principals for callers.
// Entries whose principals are no longer resolvable are skipped during
// materialization rather than surfaced half-empty.
type LogRecord struct {
	ID        string
	User      identity.Principal
	Admin     identity.Principal
	BannedAt  time.Time
	ExpiresAt time.Time
	Reason    string
}

// BannedUser is one row of the active-ban listing.
type BannedUser struct {
	User      identity.Principal
	Reason    string
	ExpiresAt time.Time
}

// Registry is the aggregate root of the Moderation context. It owns the
// active-ban table, the append-only log and the settings singleton.
//
// Registry is not safe for concurrent use; the application layer
// serializes access to it.
type Registry struct {
	interner *identity.Interner
	perms    *access.Core
	clock    shared.Clock

	active   map[uint32]ActiveBan
	log      []LogEntry
	settings Settings

	events []shared.DomainEvent
}

// NewRegistry creates a Registry sharing the permission core's interner,
// with default progressive-duration settings.
func NewRegistry(perms *access.Core, clock shared.Clock) *Registry {
	return &Registry{
		interner: perms.Interner(),
		perms:    perms,
		clock:    clock,
		active:   make(map[uint32]ActiveBan),
		settings: DefaultSettings(),
	}
}

// BanCheck returns the callable the access context consults for ban
// precedence. Install it with access.Core.SetBanCheck after construction.
func (r *Registry) BanCheck() access.BanCheck {
	return func(p identity.Principal) (string, *time.Time, bool) {
		ban, ok := r.lookupActive(p)
		if !ok {
			return "", nil, false
		}
		expiresAt := ban.ExpiresAt
		return ban.Reason, &expiresAt, true
	}
}

// IsBanned reports whether the principal has an active, unexpired ban.
// Expired entries found on the way are deleted.
func (r *Registry) IsBanned(p identity.Principal) bool {
	_, ok := r.lookupActive(p)
	return ok
}

// Status returns the principal's active ban, or ErrUserNotBanned.
func (r *Registry) Status(p identity.Principal) (ActiveBan, error) {
	ban, ok := r.lookupActive(p)
	if !ok {
		return ActiveBan{}, ErrUserNotBanned
	}
	return ban, nil
}

// lookupActive reads the active table, lazily deleting a lapsed entry.
// Safe to mutate during reads: no suspension point intervenes.
func (r *Registry) lookupActive(p identity.Principal) (ActiveBan, bool) {
	idx, ok := r.interner.LookupPrincipal(p)
	if !ok {
		return ActiveBan{}, false
	}
	ban, ok := r.active[idx]
	if !ok {
		return ActiveBan{}, false
	}
	if !r.clock.Now().Before(ban.ExpiresAt) {
		delete(r.active, idx)
		return ActiveBan{}, false
	}
	return ban, true
}

// Ban issues a ban against target. The caller must hold ban_user or be
// admin; anonymous callers are rejected, as are admin and controller
// targets. With hours nil the duration is progressive: the highest
// settings tier at or below the target's offence count, falling back to
// the minimum. Returns the resulting expiry.
//
// A denied call distinguishes the caller's own ban (BannedError carrying
// the caller's expiry) from plain missing authorization.
func (r *Registry) Ban(caller, target identity.Principal, hours *uint32, reason string) (time.Time, error) {
	if caller.IsAnonymous() {
		return time.Time{}, shared.ErrAnonymousCaller
	}
	if err := r.perms.Require(caller, access.PermBanUser); err != nil {
		return time.Time{}, err
	}
	return r.ban(target, r.interner.IndexPrincipal(caller), hours, reason)
}

// AutoBan is the system path: no caller authorization, same target guards,
// progressive duration. The log entry's admin is the runtime controller.
func (r *Registry) AutoBan(target identity.Principal, reason string) (time.Time, error) {
	return r.ban(target, r.interner.IndexPrincipal(r.perms.Controller()), nil, reason)
}

func (r *Registry) ban(target identity.Principal, adminIdx uint32, hours *uint32, reason string) (time.Time, error) {
	if target.Equal(r.perms.Controller()) {
		return time.Time{}, ErrCannotBanController
	}
	if r.perms.IsAdmin(target) {
		return time.Time{}, ErrCannotBanAdmin
	}
	if reason == "" {
		return time.Time{}, ErrReasonRequired
	}
	if utf8.RuneCountInString(reason) > maxReasonLength {
		return time.Time{}, ErrReasonTooLong
	}

	targetIdx := r.interner.IndexPrincipal(target)

	var banHours uint32
	if hours != nil {
		if *hours == 0 {
			return time.Time{}, ErrZeroDuration
		}
		banHours = *hours
	} else {
		banHours = r.settings.DurationHoursFor(r.offenceCount(targetIdx))
	}

	now := r.clock.Now()
	expiresAt := now.Add(time.Duration(banHours) * time.Hour)

	r.log = append(r.log, LogEntry{
		ID:        uuid.New().String(),
		User:      targetIdx,
		Admin:     adminIdx,
		BannedAt:  now,
		ExpiresAt: expiresAt,
		Reason:    reason,
	})
	r.active[targetIdx] = ActiveBan{ExpiresAt: expiresAt, Reason: reason}

	adminText := ""
	if admin, ok := r.interner.PrincipalFor(adminIdx); ok {
		adminText = admin.String()
	}
	r.events = append(r.events, NewUserBanned(now, target.String(), adminText, reason, expiresAt))

	return expiresAt, nil
}

// Unban lifts target's active ban. Requires unban_user. Appends a log
// entry whose expiry equals the unban instant; unbanning a principal with
// no active ban is a no-op.
func (r *Registry) Unban(caller, target identity.Principal) error {
	if caller.IsAnonymous() {
		return shared.ErrAnonymousCaller
	}
	if err := r.perms.Require(caller, access.PermUnbanUser); err != nil {
		return err
	}

	targetIdx, ok := r.interner.LookupPrincipal(target)
	if !ok {
		return nil
	}
	ban, ok := r.active[targetIdx]
	if !ok || !r.clock.Now().Before(ban.ExpiresAt) {
		delete(r.active, targetIdx)
		return nil
	}

	now := r.clock.Now()
	r.log = append(r.log, LogEntry{
		ID:        uuid.New().String(),
		User:      targetIdx,
		Admin:     r.interner.IndexPrincipal(caller),
		BannedAt:  now,
		ExpiresAt: now,
		Reason:    "unbanned",
	})
	delete(r.active, targetIdx)

	r.events = append(r.events, NewUserUnbanned(now, target.String(), caller.String()))
	return nil
}

// offenceCount is the number of log entries naming the user.
func (r *Registry) offenceCount(userIdx uint32) uint32 {
	var count uint32
	for _, entry := range r.log {
		if entry.User == userIdx {
			count++
		}
	}
	return count
}

// OffenceCount returns the target's offence count.
func (r *Registry) OffenceCount(p identity.Principal) uint32 {
	idx, ok := r.interner.LookupPrincipal(p)
	if !ok {
		return 0
	}
	return r.offenceCount(idx)
}

// BanLog returns one page of the materialized log. Requires
// manage_ban_settings. Entries with unresolvable principals are skipped.
func (r *Registry) BanLog(caller identity.Principal, page shared.Pagination) ([]LogRecord, error) {
	if err := r.perms.Require(caller, access.PermManageBanSettings); err != nil {
		return nil, err
	}

	records := r.materialize(r.log)
	start, end := page.Slice(len(records))
	return records[start:end], nil
}

// UserHistory returns target's full log history. Requires manage_ban_settings.
func (r *Registry) UserHistory(caller, target identity.Principal) ([]LogRecord, error) {
	if err := r.perms.Require(caller, access.PermManageBanSettings); err != nil {
		return nil, err
	}

	targetIdx, ok := r.interner.LookupPrincipal(target)
	if !ok {
		return nil, nil
	}

	matching := make([]LogEntry, 0)
	for _, entry := range r.log {
		if entry.User == targetIdx {
			matching = append(matching, entry)
		}
	}
	return r.materialize(matching), nil
}

// BannedUsers lists active bans. Requires manage_ban_settings. Lapsed
// entries encountered during the walk are deleted.
func (r *Registry) BannedUsers(caller identity.Principal) ([]BannedUser, error) {
	if err := r.perms.Require(caller, access.PermManageBanSettings); err != nil {
		return nil, err
	}

	now := r.clock.Now()
	out := make([]BannedUser, 0, len(r.active))
	for idx, ban := range r.active {
		if !now.Before(ban.ExpiresAt) {
			delete(r.active, idx)
			continue
		}
		user, ok := r.interner.PrincipalFor(idx)
		if !ok {
			continue
		}
		out = append(out, BannedUser{User: user, Reason: ban.Reason, ExpiresAt: ban.ExpiresAt})
	}
	return out, nil
}

func (r *Registry) materialize(entries []LogEntry) []LogRecord {
	records := make([]LogRecord, 0, len(entries))
	for _, entry := range entries {
		user, ok := r.interner.PrincipalFor(entry.User)
		if !ok {
			continue
		}
		admin, ok := r.interner.PrincipalFor(entry.Admin)
		if !ok {
			continue
		}
		records = append(records, LogRecord{
			ID:        entry.ID,
			User:      user,
			Admin:     admin,
			BannedAt:  entry.BannedAt,
			ExpiresAt: entry.ExpiresAt,
			Reason:    entry.Reason,
		})
	}
	return records
}

// UpdateSettings replaces the progressive-duration settings. Requires
// manage_ban_settings.
func (r *Registry) UpdateSettings(caller identity.Principal, s Settings) error {
	if err := r.perms.Require(caller, access.PermManageBanSettings); err != nil {
		return err
	}
	if err := s.Validate(); err != nil {
		return err
	}
	r.settings = s.clone()
	return nil
}

// CurrentSettings returns a copy of the settings singleton.
func (r *Registry) CurrentSettings() Settings {
	return r.settings.clone()
}

// LogLen returns the number of log entries.
func (r *Registry) LogLen() int {
	return len(r.log)
}

// CleanupExpired prunes lapsed active bans. The log is never touched.
// Idempotent; invoked by the host's periodic driver.
func (r *Registry) CleanupExpired() {
	now := r.clock.Now()
	for idx, ban := range r.active {
		if !now.Before(ban.ExpiresAt) {
			delete(r.active, idx)
		}
	}
}

// DrainEvents returns collected domain events and clears the buffer.
func (r *Registry) DrainEvents() []shared.DomainEvent {
	events := r.events
	r.events = nil
	return events
}
