package naming

import (
	"context"
	"strings"

	"github.com/kaelum/authcore/internal/domain/access"
	"github.com/kaelum/authcore/internal/domain/governance"
	"github.com/kaelum/authcore/internal/domain/identity"
	"github.com/kaelum/authcore/internal/domain/shared"
)

// Keyspace tags prepended to interned subject keys. Principal subjects use
// the principal's own canonical bytes (its index is shared with the rest
// of the core); tagged keys keep accounts and neurons out of that space.
const (
	accountKeyTag = 0x41
	neuronKeyTag  = 0x4E
)

// Registry is the aggregate root of the Naming context. It owns the
// record table, the shared lowercase-name index, the blacklist and the
// validation settings.
//
// Registry is not safe for concurrent use; the application layer
// serializes access to it. The only suspension points are the oracle
// calls behind neuron-name authorization, which complete before any
// table mutation.
type Registry struct {
	interner *identity.Interner
	perms    *access.Core
	sns      *governance.Adapter
	clock    shared.Clock

	names     map[uint32]NameRecord
	byName    map[string]uint32
	blacklist map[string]BlacklistEntry
	settings  Settings

	events []shared.DomainEvent
}

// NewRegistry creates a Registry sharing the permission core's interner.
// sns may be nil; neuron-name operations then require the explicit
// permission with no reachability fallback.
func NewRegistry(perms *access.Core, sns *governance.Adapter, clock shared.Clock) *Registry {
	return &Registry{
		interner:  perms.Interner(),
		perms:     perms,
		sns:       sns,
		clock:     clock,
		names:     make(map[uint32]NameRecord),
		byName:    make(map[string]uint32),
		blacklist: make(map[string]BlacklistEntry),
		settings:  DefaultSettings(),
	}
}

// --- subject keys -----------------------------------------------------------

func accountKey(account identity.Account) []byte {
	owner := account.Owner.Bytes()
	key := make([]byte, 0, 1+len(owner)+identity.SubaccountLength)
	key = append(key, accountKeyTag)
	key = append(key, owner...)
	key = append(key, account.Subaccount.Bytes()...)
	return key
}

func neuronKey(id governance.NeuronID) []byte {
	blob := id.Bytes()
	key := make([]byte, 0, 1+len(blob))
	key = append(key, neuronKeyTag)
	key = append(key, blob...)
	return key
}

// --- authorization ----------------------------------------------------------

// authorizeWithSelf authorizes a write gated by permission, where caller
// equality with subject also suffices. A banned caller is denied even for
// self-writes.
func (r *Registry) authorizeWithSelf(caller, subject identity.Principal, permission string) error {
	if caller.IsAnonymous() {
		return shared.ErrAnonymousCaller
	}

	result := r.perms.CheckDetailed(caller, permission)
	switch {
	case result.Allowed():
		return nil
	case result.Kind() == access.CheckBanned:
		return result.Err(permission)
	case caller.Equal(subject):
		return nil
	default:
		return result.Err(permission)
	}
}

// authorizeNeuron authorizes a neuron-name write: the explicit permission
// first, then transitive neuron reachability via the governance oracle.
// The oracle resolves before the caller touches any table.
func (r *Registry) authorizeNeuron(ctx context.Context, caller, governancePrincipal identity.Principal, neuronID governance.NeuronID, permission string) error {
	if caller.IsAnonymous() {
		return shared.ErrAnonymousCaller
	}

	result := r.perms.CheckDetailed(caller, permission)
	switch {
	case result.Allowed():
		return nil
	case result.Kind() == access.CheckBanned:
		return result.Err(permission)
	}

	if r.sns == nil {
		return result.Err(permission)
	}
	ok, err := r.sns.HasNeuronAccess(ctx, caller, neuronID, governancePrincipal)
	if err != nil {
		return err
	}
	if !ok {
		return result.Err(permission)
	}
	return nil
}

// --- validation and uniqueness ----------------------------------------------

// ValidateName runs the full validation pipeline for a candidate.
func (r *Registry) ValidateName(name string) error {
	if err := r.settings.checkName(name); err != nil {
		return err
	}

	lowered := normalizeName(name)
	for word := range r.blacklist {
		if strings.Contains(lowered, word) {
			return &BannedWordError{Word: word}
		}
	}
	return nil
}

// checkUnique enforces case-insensitive uniqueness: the candidate must be
// unclaimed or already owned by the mutated subject.
func (r *Registry) checkUnique(name string, subject uint32) error {
	existing, ok := r.byName[normalizeName(name)]
	if !ok || existing == subject {
		return nil
	}

	taken := &NameTakenError{Name: name}
	if p, ok := r.interner.PrincipalFor(existing); ok {
		taken.TakenBy = &p
	}
	return taken
}

// --- record mutation --------------------------------------------------------

// setName runs the atomic mutation sequence for a validated, authorized
// write: uniqueness, record refresh, index maintenance. No suspension
// point may intervene from here on.
func (r *Registry) setName(subject uint32, kind NameKind, caller identity.Principal, name string) error {
	if err := r.ValidateName(name); err != nil {
		return err
	}
	if err := r.checkUnique(name, subject); err != nil {
		return err
	}

	now := r.clock.Now()
	callerIdx := r.interner.IndexPrincipal(caller)

	record := NameRecord{
		Name:      name,
		Kind:      kind,
		CreatedAt: now,
		CreatedBy: callerIdx,
		UpdatedAt: now,
		UpdatedBy: callerIdx,
	}
	if old, exists := r.names[subject]; exists {
		record.CreatedAt = old.CreatedAt
		record.CreatedBy = old.CreatedBy
		record.Verified = old.Verified
		if old.Name != name {
			// A name change always resets verification. The previous
			// lowercase key goes before the new one lands.
			record.Verified = false
			delete(r.byName, normalizeName(old.Name))
		}
	}

	r.names[subject] = record
	r.byName[normalizeName(name)] = subject

	r.events = append(r.events, NewNameSet(now, name, kind))
	return nil
}

// removeName deletes the subject's record and its index entry.
func (r *Registry) removeName(subject uint32) error {
	record, ok := r.names[subject]
	if !ok {
		return ErrNameNotFound
	}

	delete(r.names, subject)
	delete(r.byName, normalizeName(record.Name))

	r.events = append(r.events, NewNameRemoved(r.clock.Now(), record.Name, record.Kind))
	return nil
}

func (r *Registry) view(record NameRecord) NameView {
	v := NameView{
		Name:      record.Name,
		Kind:      record.Kind,
		Verified:  record.Verified,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
	if p, ok := r.interner.PrincipalFor(record.CreatedBy); ok {
		v.CreatedBy = p
	}
	if p, ok := r.interner.PrincipalFor(record.UpdatedBy); ok {
		v.UpdatedBy = p
	}
	return v
}

// --- principal names --------------------------------------------------------

// SetPrincipalName names a principal. Allowed for admins, edit_any_name
// holders, and the subject itself unless banned.
func (r *Registry) SetPrincipalName(caller, subject identity.Principal, name string) error {
	if err := r.authorizeWithSelf(caller, subject, access.PermEditAnyName); err != nil {
		return err
	}
	return r.setName(r.interner.IndexPrincipal(subject), KindPrincipal, caller, name)
}

// RemovePrincipalName removes a principal's name, under set authorization
// rules.
func (r *Registry) RemovePrincipalName(caller, subject identity.Principal) error {
	if err := r.authorizeWithSelf(caller, subject, access.PermEditAnyName); err != nil {
		return err
	}
	idx, ok := r.interner.LookupPrincipal(subject)
	if !ok {
		return ErrNameNotFound
	}
	return r.removeName(idx)
}

// GetPrincipalName returns the principal's record, if any.
func (r *Registry) GetPrincipalName(subject identity.Principal) (NameView, bool) {
	idx, ok := r.interner.LookupPrincipal(subject)
	if !ok {
		return NameView{}, false
	}
	record, ok := r.names[idx]
	if !ok {
		return NameView{}, false
	}
	return r.view(record), true
}

// LookupPrincipalByName resolves a name to the principal owning it, when
// the owning record sits in the principal keyspace.
func (r *Registry) LookupPrincipalByName(name string) (identity.Principal, bool) {
	idx, ok := r.byName[normalizeName(name)]
	if !ok {
		return identity.Principal{}, false
	}
	return r.interner.PrincipalFor(idx)
}

// --- account names ----------------------------------------------------------

// SetAccountName names an account. Default-subaccount addresses route to
// the principal path with the owner as subject; otherwise the caller needs
// set_account_name, admin, or ownership.
func (r *Registry) SetAccountName(caller identity.Principal, account identity.Account, name string) error {
	if account.IsDefaultSubaccount() {
		return r.SetPrincipalName(caller, account.Owner, name)
	}
	if err := r.authorizeWithSelf(caller, account.Owner, access.PermSetAccountName); err != nil {
		return err
	}
	return r.setName(r.interner.Index(accountKey(account)), KindAccount, caller, name)
}

// RemoveAccountName removes an account's name under the remove permission.
func (r *Registry) RemoveAccountName(caller identity.Principal, account identity.Account) error {
	if account.IsDefaultSubaccount() {
		return r.RemovePrincipalName(caller, account.Owner)
	}
	if err := r.authorizeWithSelf(caller, account.Owner, access.PermRemoveAccountName); err != nil {
		return err
	}
	idx, ok := r.interner.Lookup(accountKey(account))
	if !ok {
		return ErrNameNotFound
	}
	return r.removeName(idx)
}

// GetAccountName returns the account's record, if any.
func (r *Registry) GetAccountName(account identity.Account) (NameView, bool) {
	if account.IsDefaultSubaccount() {
		return r.GetPrincipalName(account.Owner)
	}
	idx, ok := r.interner.Lookup(accountKey(account))
	if !ok {
		return NameView{}, false
	}
	record, ok := r.names[idx]
	if !ok {
		return NameView{}, false
	}
	return r.view(record), true
}

// --- neuron names -----------------------------------------------------------

// SetNeuronName names a neuron. The caller needs set_sns_neuron_name or,
// failing that, transitive access to the neuron under the governance
// authority. Oracle authorization resolves before any mutation.
func (r *Registry) SetNeuronName(ctx context.Context, caller, governancePrincipal identity.Principal, neuronID governance.NeuronID, name string) error {
	if err := r.authorizeNeuron(ctx, caller, governancePrincipal, neuronID, access.PermSetSnsNeuronName); err != nil {
		return err
	}
	return r.setName(r.interner.Index(neuronKey(neuronID)), KindNeuron, caller, name)
}

// RemoveNeuronName removes a neuron's name under the remove permission or
// reachability fallback.
func (r *Registry) RemoveNeuronName(ctx context.Context, caller, governancePrincipal identity.Principal, neuronID governance.NeuronID) error {
	if err := r.authorizeNeuron(ctx, caller, governancePrincipal, neuronID, access.PermRemoveSnsNeuronName); err != nil {
		return err
	}
	idx, ok := r.interner.Lookup(neuronKey(neuronID))
	if !ok {
		return ErrNameNotFound
	}
	return r.removeName(idx)
}

// GetNeuronName returns the neuron's record, if any.
func (r *Registry) GetNeuronName(neuronID governance.NeuronID) (NameView, bool) {
	idx, ok := r.interner.Lookup(neuronKey(neuronID))
	if !ok {
		return NameView{}, false
	}
	record, ok := r.names[idx]
	if !ok {
		return NameView{}, false
	}
	return r.view(record), true
}

// --- verification -----------------------------------------------------------

// VerifyName marks the record owning the name as verified. Principal and
// account records require verify_name; neuron records require
// verify_sns_neuron_name.
func (r *Registry) VerifyName(caller identity.Principal, name string) error {
	return r.setVerified(caller, name, true)
}

// UnverifyName clears the verified flag under the unverify permissions.
func (r *Registry) UnverifyName(caller identity.Principal, name string) error {
	return r.setVerified(caller, name, false)
}

func (r *Registry) setVerified(caller identity.Principal, name string, verified bool) error {
	idx, ok := r.byName[normalizeName(name)]
	if !ok {
		return ErrNameNotFound
	}
	record, ok := r.names[idx]
	if !ok {
		return ErrNameNotFound
	}

	permission := access.PermVerifyName
	if !verified {
		permission = access.PermUnverifyName
	}
	if record.Kind == KindNeuron {
		permission = access.PermVerifySnsNeuronName
		if !verified {
			permission = access.PermUnverifySnsNeuronName
		}
	}
	if err := r.perms.Require(caller, permission); err != nil {
		return err
	}

	r.applyVerified(idx, record, caller, verified)
	return nil
}

// VerifyNeuronName verifies a neuron's record by neuron id. The governance
// principal itself is accepted alongside verify_sns_neuron_name holders.
func (r *Registry) VerifyNeuronName(caller, governancePrincipal identity.Principal, neuronID governance.NeuronID) error {
	return r.setNeuronVerified(caller, governancePrincipal, neuronID, true)
}

// UnverifyNeuronName clears a neuron record's verified flag by neuron id.
func (r *Registry) UnverifyNeuronName(caller, governancePrincipal identity.Principal, neuronID governance.NeuronID) error {
	return r.setNeuronVerified(caller, governancePrincipal, neuronID, false)
}

func (r *Registry) setNeuronVerified(caller, governancePrincipal identity.Principal, neuronID governance.NeuronID, verified bool) error {
	idx, ok := r.interner.Lookup(neuronKey(neuronID))
	if !ok {
		return ErrNeuronNotFound
	}
	record, ok := r.names[idx]
	if !ok {
		return ErrNeuronNotFound
	}

	if !caller.Equal(governancePrincipal) {
		permission := access.PermVerifySnsNeuronName
		if !verified {
			permission = access.PermUnverifySnsNeuronName
		}
		if err := r.perms.Require(caller, permission); err != nil {
			return err
		}
	}

	r.applyVerified(idx, record, caller, verified)
	return nil
}

func (r *Registry) applyVerified(idx uint32, record NameRecord, caller identity.Principal, verified bool) {
	now := r.clock.Now()
	record.Verified = verified
	record.UpdatedAt = now
	record.UpdatedBy = r.interner.IndexPrincipal(caller)
	r.names[idx] = record

	r.events = append(r.events, NewNameVerified(now, record.Name, verified))
}

// --- blacklist --------------------------------------------------------------

// AddBannedWord adds a word to the blacklist, stored lowercased. Requires
// add_banned_word.
func (r *Registry) AddBannedWord(caller identity.Principal, word string) error {
	if err := r.perms.Require(caller, access.PermAddBannedWord); err != nil {
		return err
	}
	word = normalizeName(strings.TrimSpace(word))
	if word == "" {
		return ErrEmptyWord
	}

	r.blacklist[word] = BlacklistEntry{
		AddedBy: r.interner.IndexPrincipal(caller),
		AddedAt: r.clock.Now(),
	}
	return nil
}

// RemoveBannedWord removes a word from the blacklist. Requires
// remove_banned_word.
func (r *Registry) RemoveBannedWord(caller identity.Principal, word string) error {
	if err := r.perms.Require(caller, access.PermRemoveBannedWord); err != nil {
		return err
	}
	delete(r.blacklist, normalizeName(strings.TrimSpace(word)))
	return nil
}

// BannedWords lists the blacklist. Requires view_banned_words.
func (r *Registry) BannedWords(caller identity.Principal) ([]string, error) {
	if err := r.perms.Require(caller, access.PermViewBannedWords); err != nil {
		return nil, err
	}
	words := make([]string, 0, len(r.blacklist))
	for word := range r.blacklist {
		words = append(words, word)
	}
	return words, nil
}

// --- settings ---------------------------------------------------------------

// UpdateSettings replaces the validation settings. Requires
// manage_name_settings.
func (r *Registry) UpdateSettings(caller identity.Principal, s Settings) error {
	if err := r.perms.Require(caller, access.PermManageNameSettings); err != nil {
		return err
	}
	if err := s.Validate(); err != nil {
		return err
	}
	r.settings = s
	return nil
}

// CurrentSettings returns the validation settings.
func (r *Registry) CurrentSettings() Settings {
	return r.settings
}

// DrainEvents returns collected domain events and clears the buffer.
func (r *Registry) DrainEvents() []shared.DomainEvent {
	events := r.events
	r.events = nil
	return events
}
