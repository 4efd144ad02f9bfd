package authz

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/kaelum/authcore/internal/domain/access"
	"github.com/kaelum/authcore/internal/domain/governance"
	"github.com/kaelum/authcore/internal/domain/identity"
	"github.com/kaelum/authcore/internal/domain/moderation"
	"github.com/kaelum/authcore/internal/domain/naming"
	"github.com/kaelum/authcore/internal/domain/shared"
)

// Metrics receives authorization decision counters. The infrastructure
// metrics collector implements it; a nil Metrics disables instrumentation.
type Metrics interface {
	// ObserveCheck counts one detailed permission check by outcome.
	ObserveCheck(permission, result string)
	// ObserveBan counts one ban lifecycle operation ("ban", "auto_ban",
	// "unban").
	ObserveBan(kind string)
}

// Config configures a Service.
type Config struct {
	// Controller is the host runtime's controller principal. Required.
	Controller identity.Principal

	// Oracle is the governance oracle. Optional; without it every
	// oracle-dependent check fails with governance.ErrNoOracle.
	Oracle governance.Oracle

	// Clock supplies "now". Optional; defaults to the system clock.
	Clock shared.Clock

	// Logger receives structured operation logs. Optional; defaults to a
	// no-op logger.
	Logger zerolog.Logger

	// Metrics receives decision counters. Optional.
	Metrics Metrics
}

// Service is the authorization core's container: the single owner of all
// stateful tables, safe to share across the embedding host.
type Service struct {
	mu sync.Mutex

	interner *identity.Interner
	perms    *access.Core
	bans     *moderation.Registry
	sns      *governance.Adapter
	names    *naming.Registry

	logger  zerolog.Logger
	metrics Metrics
}

// New constructs a Service, wiring the bounded contexts in dependency
// order and installing the ban-check back-edge.
func New(cfg Config) (*Service, error) {
	if cfg.Controller.IsZero() {
		return nil, fmt.Errorf("%w: controller principal is required", shared.ErrInvalidInput)
	}
	clock := cfg.Clock
	if clock == nil {
		clock = shared.SystemClock{}
	}

	interner := identity.NewInterner()
	perms := access.NewCore(interner, cfg.Controller, clock)
	bans := moderation.NewRegistry(perms, clock)
	perms.SetBanCheck(bans.BanCheck())
	sns := governance.NewAdapter(perms, cfg.Oracle)
	names := naming.NewRegistry(perms, sns, clock)

	return &Service{
		interner: interner,
		perms:    perms,
		bans:     bans,
		sns:      sns,
		names:    names,
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
	}, nil
}

// NewFromState constructs a Service and reinstalls a previously exported
// snapshot. The host must register permission types afterwards (or call
// RegisterWellKnownPermissionTypes); types are not part of the snapshot.
func NewFromState(cfg Config, state *State) (*Service, error) {
	s, err := New(cfg)
	if err != nil {
		return nil, err
	}
	if err := s.RestoreState(state); err != nil {
		return nil, err
	}
	return s, nil
}

// --- permission types -------------------------------------------------------

// RegisterPermissionType registers a permission type. Host-called at
// startup; types are process-lifetime and never persisted.
func (s *Service) RegisterPermissionType(name, description string, maxDuration, defaultDuration *time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.perms.RegisterType(name, description, maxDuration, defaultDuration)
}

// RegisterWellKnownPermissionTypes registers every well-known identifier
// with no duration ceilings, skipping ones the host already registered.
func (s *Service) RegisterWellKnownPermissionTypes() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, name := range access.WellKnownPermissions() {
		if _, exists := s.perms.TypeOf(name); !exists {
			_ = s.perms.RegisterType(name, name, nil, nil)
		}
	}
}

// PermissionTypes lists the registered types.
func (s *Service) PermissionTypes() []access.PermissionType {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.perms.Types()
}

// --- admin management -------------------------------------------------------

// AddAdmin adds a principal to the admin set.
func (s *Service) AddAdmin(caller, newAdmin identity.Principal, expiresAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.perms.AddAdmin(caller, newAdmin, expiresAt); err != nil {
		return err
	}
	s.logger.Info().
		Str("caller", caller.String()).
		Str("admin", newAdmin.String()).
		Msg("admin added")
	return nil
}

// RemoveAdmin removes a principal from the admin set.
func (s *Service) RemoveAdmin(caller, target identity.Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.perms.RemoveAdmin(caller, target); err != nil {
		return err
	}
	s.logger.Info().
		Str("caller", caller.String()).
		Str("admin", target.String()).
		Msg("admin removed")
	return nil
}

// IsAdmin reports admin status.
func (s *Service) IsAdmin(p identity.Principal) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.perms.IsAdmin(p)
}

// Admins lists active admin memberships.
func (s *Service) Admins() []access.AdminEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.perms.Admins()
}

// --- grants and checks ------------------------------------------------------

// GrantPermission grants target the named permission.
func (s *Service) GrantPermission(caller, target identity.Principal, permission string, expiresAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.perms.Grant(caller, target, permission, expiresAt); err != nil {
		return err
	}
	s.logger.Info().
		Str("caller", caller.String()).
		Str("target", target.String()).
		Str("permission", permission).
		Msg("permission granted")
	return nil
}

// RevokePermission revokes target's grant of the named permission.
func (s *Service) RevokePermission(caller, target identity.Principal, permission string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.perms.Revoke(caller, target, permission); err != nil {
		return err
	}
	s.logger.Info().
		Str("caller", caller.String()).
		Str("target", target.String()).
		Str("permission", permission).
		Msg("permission revoked")
	return nil
}

// CheckPermissionDetailed evaluates the detailed check variant.
func (s *Service) CheckPermissionDetailed(p identity.Principal, permission string) access.CheckResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := s.perms.CheckDetailed(p, permission)
	if s.metrics != nil {
		s.metrics.ObserveCheck(permission, result.Kind().String())
	}
	return result
}

// CheckPermission projects the detailed variant to a boolean.
func (s *Service) CheckPermission(p identity.Principal, permission string) bool {
	return s.CheckPermissionDetailed(p, permission).Allowed()
}

// --- ban lifecycle ----------------------------------------------------------

// BanUser bans target, with an explicit duration in hours or the
// progressive duration when hours is nil. Returns the resulting expiry.
func (s *Service) BanUser(caller, target identity.Principal, hours *uint32, reason string) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt, err := s.bans.Ban(caller, target, hours, reason)
	if err != nil {
		return time.Time{}, err
	}
	if s.metrics != nil {
		s.metrics.ObserveBan("ban")
	}
	s.logger.Info().
		Str("caller", caller.String()).
		Str("target", target.String()).
		Str("reason", reason).
		Time("expires_at", expiresAt).
		Msg("user banned")
	return expiresAt, nil
}

// AutoBanUser is the system ban path.
func (s *Service) AutoBanUser(target identity.Principal, reason string) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt, err := s.bans.AutoBan(target, reason)
	if err != nil {
		return time.Time{}, err
	}
	if s.metrics != nil {
		s.metrics.ObserveBan("auto_ban")
	}
	s.logger.Info().
		Str("target", target.String()).
		Str("reason", reason).
		Time("expires_at", expiresAt).
		Msg("user auto-banned")
	return expiresAt, nil
}

// UnbanUser lifts target's active ban.
func (s *Service) UnbanUser(caller, target identity.Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.bans.Unban(caller, target); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.ObserveBan("unban")
	}
	s.logger.Info().
		Str("caller", caller.String()).
		Str("target", target.String()).
		Msg("user unbanned")
	return nil
}

// IsBanned reports active ban status.
func (s *Service) IsBanned(p identity.Principal) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bans.IsBanned(p)
}

// BanStatus returns the principal's active ban, or
// moderation.ErrUserNotBanned.
func (s *Service) BanStatus(p identity.Principal) (moderation.ActiveBan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bans.Status(p)
}

// BanLog returns one page of the materialized ban log.
func (s *Service) BanLog(caller identity.Principal, page shared.Pagination) ([]moderation.LogRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bans.BanLog(caller, page)
}

// BannedUsers lists active bans.
func (s *Service) BannedUsers(caller identity.Principal) ([]moderation.BannedUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bans.BannedUsers(caller)
}

// UserBanHistory returns target's full ban history.
func (s *Service) UserBanHistory(caller, target identity.Principal) ([]moderation.LogRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bans.UserHistory(caller, target)
}

// UpdateBanSettings replaces the progressive-duration settings.
func (s *Service) UpdateBanSettings(caller identity.Principal, settings moderation.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.bans.UpdateSettings(caller, settings); err != nil {
		return err
	}
	s.logger.Info().
		Str("caller", caller.String()).
		Uint32("min_hours", settings.MinHours).
		Int("tiers", len(settings.Tiers)).
		Msg("ban settings updated")
	return nil
}

// BanSettings returns the progressive-duration settings.
func (s *Service) BanSettings() moderation.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bans.CurrentSettings()
}

// --- SNS --------------------------------------------------------------------

// SetSnsThreshold stores the voting-power threshold for the pair.
func (s *Service) SetSnsThreshold(caller, governancePrincipal identity.Principal, permission string, threshold governance.Threshold) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sns.SetThreshold(caller, governancePrincipal, permission, threshold); err != nil {
		return err
	}
	s.logger.Info().
		Str("caller", caller.String()).
		Str("governance", governancePrincipal.String()).
		Str("permission", permission).
		Uint64("min_voting_power", threshold.MinVotingPower).
		Msg("sns threshold set")
	return nil
}

// CheckSnsPermission evaluates the SNS-gated second-chance path.
func (s *Service) CheckSnsPermission(ctx context.Context, p identity.Principal, permission string, governancePrincipal identity.Principal) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sns.CheckSnsPermission(ctx, p, permission, governancePrincipal)
}

// HasNeuronAccess reports whether p can act on the neuron.
func (s *Service) HasNeuronAccess(ctx context.Context, p identity.Principal, neuronID governance.NeuronID, governancePrincipal identity.Principal) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sns.HasNeuronAccess(ctx, p, neuronID, governancePrincipal)
}

// --- names ------------------------------------------------------------------

// SetPrincipalName names a principal.
func (s *Service) SetPrincipalName(caller, subject identity.Principal, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.names.SetPrincipalName(caller, subject, name)
}

// RemovePrincipalName removes a principal's name.
func (s *Service) RemovePrincipalName(caller, subject identity.Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.names.RemovePrincipalName(caller, subject)
}

// GetPrincipalName returns a principal's record.
func (s *Service) GetPrincipalName(subject identity.Principal) (naming.NameView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.names.GetPrincipalName(subject)
}

// LookupPrincipalByName resolves a name to its owning principal.
func (s *Service) LookupPrincipalByName(name string) (identity.Principal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.names.LookupPrincipalByName(name)
}

// SetAccountName names an account.
func (s *Service) SetAccountName(caller identity.Principal, account identity.Account, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.names.SetAccountName(caller, account, name)
}

// RemoveAccountName removes an account's name.
func (s *Service) RemoveAccountName(caller identity.Principal, account identity.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.names.RemoveAccountName(caller, account)
}

// GetAccountName returns an account's record.
func (s *Service) GetAccountName(account identity.Account) (naming.NameView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.names.GetAccountName(account)
}

// SetNeuronName names a neuron.
func (s *Service) SetNeuronName(ctx context.Context, caller, governancePrincipal identity.Principal, neuronID governance.NeuronID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.names.SetNeuronName(ctx, caller, governancePrincipal, neuronID, name)
}

// RemoveNeuronName removes a neuron's name.
func (s *Service) RemoveNeuronName(ctx context.Context, caller, governancePrincipal identity.Principal, neuronID governance.NeuronID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.names.RemoveNeuronName(ctx, caller, governancePrincipal, neuronID)
}

// GetNeuronName returns a neuron's record.
func (s *Service) GetNeuronName(neuronID governance.NeuronID) (naming.NameView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.names.GetNeuronName(neuronID)
}

// VerifyName marks the record owning the name as verified.
func (s *Service) VerifyName(caller identity.Principal, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.names.VerifyName(caller, name)
}

// UnverifyName clears a record's verified flag.
func (s *Service) UnverifyName(caller identity.Principal, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.names.UnverifyName(caller, name)
}

// VerifyNeuronName verifies a neuron's record by neuron id.
func (s *Service) VerifyNeuronName(caller, governancePrincipal identity.Principal, neuronID governance.NeuronID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.names.VerifyNeuronName(caller, governancePrincipal, neuronID)
}

// UnverifyNeuronName clears a neuron record's verified flag by neuron id.
func (s *Service) UnverifyNeuronName(caller, governancePrincipal identity.Principal, neuronID governance.NeuronID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.names.UnverifyNeuronName(caller, governancePrincipal, neuronID)
}

// AddBannedWord adds a blacklist word.
func (s *Service) AddBannedWord(caller identity.Principal, word string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.names.AddBannedWord(caller, word)
}

// RemoveBannedWord removes a blacklist word.
func (s *Service) RemoveBannedWord(caller identity.Principal, word string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.names.RemoveBannedWord(caller, word)
}

// BannedWords lists the blacklist.
func (s *Service) BannedWords(caller identity.Principal) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.names.BannedWords(caller)
}

// UpdateNameSettings replaces the name-validation settings.
func (s *Service) UpdateNameSettings(caller identity.Principal, settings naming.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.names.UpdateSettings(caller, settings); err != nil {
		return err
	}
	s.logger.Info().
		Str("caller", caller.String()).
		Uint32("min_length", settings.MinLength).
		Uint32("max_length", settings.MaxLength).
		Msg("name settings updated")
	return nil
}

// NameSettings returns the name-validation settings.
func (s *Service) NameSettings() naming.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.names.CurrentSettings()
}

// --- maintenance ------------------------------------------------------------

// CleanupExpired sweeps expired admin memberships, grants and active bans.
// Idempotent; the ban log is never touched. Invoked by the host's periodic
// driver.
func (s *Service) CleanupExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.perms.CleanupExpired()
	s.bans.CleanupExpired()
	s.logger.Debug().Msg("expired entries swept")
}

// DrainEvents returns the domain events collected since the last drain.
func (s *Service) DrainEvents() []shared.DomainEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	events := s.bans.DrainEvents()
	return append(events, s.names.DrainEvents()...)
}

// --- snapshot ---------------------------------------------------------------

// ExportState produces the stable snapshot of every persisted table.
func (s *Service) ExportState() *State {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := &State{Version: StateVersion}
	state.Dedup = s.interner.Snapshot()
	state.Admins, state.Grants = s.perms.Snapshot()
	state.ActiveBans, state.BanLog, state.BanSettings = s.bans.Snapshot()
	state.SnsThresholds = s.sns.Snapshot()
	state.NameRecords, state.NameIndex, state.NameBlacklist, state.NameSettings = s.names.Snapshot()
	return state
}

// RestoreState reinstalls a snapshot. The interner restores in place so
// every context keeps its borrowed reference; registered permission types
// survive untouched.
func (s *Service) RestoreState(state *State) error {
	if state == nil {
		return fmt.Errorf("%w: state is nil", shared.ErrInvalidInput)
	}
	if state.Version != StateVersion {
		return fmt.Errorf("%w: unsupported state version %d", shared.ErrInvalidInput, state.Version)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.interner.Restore(state.Dedup)
	s.perms.Restore(state.Admins, state.Grants)
	s.bans.Restore(state.ActiveBans, state.BanLog, state.BanSettings)
	s.sns.Restore(state.SnsThresholds)
	s.names.Restore(state.NameRecords, state.NameIndex, state.NameBlacklist, state.NameSettings)

	s.logger.Info().
		Int("dedup_entries", len(state.Dedup)).
		Int("admins", len(state.Admins)).
		Int("grants", len(state.Grants)).
		Int("ban_log", len(state.BanLog)).
		Int("name_records", len(state.NameRecords)).
		Msg("state restored")
	return nil
}
