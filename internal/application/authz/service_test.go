package authz_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaelum/authcore/internal/application/authz"
	"github.com/kaelum/authcore/internal/domain/access"
	"github.com/kaelum/authcore/internal/domain/governance"
	"github.com/kaelum/authcore/internal/domain/identity"
	"github.com/kaelum/authcore/internal/domain/moderation"
	"github.com/kaelum/authcore/internal/domain/naming"
	"github.com/kaelum/authcore/internal/domain/shared"
)

var (
	controller = identity.MustPrincipalFromBytes([]byte{0x01})
	admin1     = identity.MustPrincipalFromBytes([]byte{0x02})
	admin2     = identity.MustPrincipalFromBytes([]byte{0x03})
	userU      = identity.MustPrincipalFromBytes([]byte{0x04, 0x0A})
	userV      = identity.MustPrincipalFromBytes([]byte{0x05, 0x0B})
	govG       = identity.MustPrincipalFromBytes([]byte{0x06, 0x0C})
)

type scriptedOracle struct {
	neurons map[string][]governance.Neuron
}

func (o *scriptedOracle) ListNeurons(_ context.Context, of identity.Principal) ([]governance.Neuron, error) {
	return o.neurons[string(of.Bytes())], nil
}

func (o *scriptedOracle) GetNeuron(_ context.Context, _ governance.NeuronID) (*governance.Neuron, error) {
	return nil, nil
}

func newService(t *testing.T, oracle governance.Oracle) (*authz.Service, *shared.ManualClock) {
	t.Helper()

	clock := shared.NewManualClock(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	svc, err := authz.New(authz.Config{
		Controller: controller,
		Oracle:     oracle,
		Clock:      clock,
		Logger:     zerolog.Nop(),
	})
	require.NoError(t, err)

	svc.RegisterWellKnownPermissionTypes()
	require.NoError(t, svc.AddAdmin(controller, admin1, nil))
	return svc, clock
}

func uintPtr(v uint32) *uint32 {
	return &v
}

func TestNew_RequiresController(t *testing.T) {
	t.Parallel()

	_, err := authz.New(authz.Config{})
	require.ErrorIs(t, err, shared.ErrInvalidInput)
}

// Scenario: a second-generation admin bans a user; the user's detailed
// check reports the ban with reason and expiry.
func TestScenario_AdminChainAndBan(t *testing.T) {
	t.Parallel()

	svc, clock := newService(t, nil)

	require.NoError(t, svc.AddAdmin(admin1, admin2, nil))

	expiresAt, err := svc.BanUser(admin2, userU, uintPtr(24), "spam")
	require.NoError(t, err)
	assert.Equal(t, clock.Now().Add(24*time.Hour), expiresAt)

	result := svc.CheckPermissionDetailed(userU, access.PermEditAnyName)
	require.Equal(t, access.CheckBanned, result.Kind())
	assert.Equal(t, "spam", result.BanReason())
	assert.Equal(t, expiresAt, *result.BanExpiresAt())
}

// Scenario: a one-hour edit_any_name grant authorizes a name write, and
// stops authorizing it after expiry.
func TestScenario_ExpiringGrantGatesNameWrites(t *testing.T) {
	t.Parallel()

	svc, clock := newService(t, nil)

	expiry := clock.Now().Add(time.Hour)
	require.NoError(t, svc.GrantPermission(admin1, userU, access.PermEditAnyName, &expiry))

	require.NoError(t, svc.SetPrincipalName(userU, userV, "alice"))

	clock.Advance(2 * time.Hour)
	err := svc.SetPrincipalName(userU, userV, "bob")
	var notAuth *access.NotAuthorizedError
	require.ErrorAs(t, err, &notAuth)
	assert.Equal(t, access.PermEditAnyName, notAuth.Required)
}

// Scenario: two users race for one name; the loser learns who holds it.
func TestScenario_ContestedName(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t, nil)

	require.NoError(t, svc.SetPrincipalName(userU, userU, "contested"))

	err := svc.SetPrincipalName(userV, userV, "contested")
	var taken *naming.NameTakenError
	require.ErrorAs(t, err, &taken)
	assert.Equal(t, "contested", taken.Name)
	require.NotNil(t, taken.TakenBy)
	assert.True(t, taken.TakenBy.Equal(userU))
}

// Scenario: a blacklisted word rejects candidates containing it.
func TestScenario_BannedWord(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t, nil)

	require.NoError(t, svc.AddBannedWord(admin1, "spam"))

	err := svc.SetPrincipalName(userU, userU, "SPAMMER")
	var banned *naming.BannedWordError
	require.ErrorAs(t, err, &banned)
	assert.Equal(t, "spam", banned.Word)
}

// Scenario: one neuron staking 100e8 at multiplier 100 clears a 50e6
// voting-power threshold.
func TestScenario_SnsVotingPower(t *testing.T) {
	t.Parallel()

	neuronID := governance.MustNeuronIDFromBytes([]byte{0xAA})
	holder := userU
	oracle := &scriptedOracle{neurons: map[string][]governance.Neuron{
		string(userU.Bytes()): {{
			ID:                    &neuronID,
			CachedStake:           100_0000_0000,
			VotingPowerMultiplier: 100,
			Permissions: []governance.NeuronPermission{
				{Principal: &holder, PermissionTypes: []int32{0, 1, 2}},
			},
		}},
	}}
	svc, _ := newService(t, oracle)

	require.NoError(t, svc.SetSnsThreshold(admin1, govG, access.PermSetSnsNeuronName, governance.Threshold{
		MinVotingPower: 50_000_000,
	}))

	ok, err := svc.CheckSnsPermission(context.Background(), userU, access.PermSetSnsNeuronName, govG)
	require.NoError(t, err)
	assert.True(t, ok)
}

// Scenario: tightened name settings reject short and special-character
// names while plain names pass.
func TestScenario_NameSettings(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t, nil)

	require.NoError(t, svc.UpdateNameSettings(admin1, naming.Settings{
		MinLength: 3, MaxLength: 20, AllowSpecialChars: false, AllowUnicode: false,
	}))

	var invalid *naming.InvalidNameError

	err := svc.SetPrincipalName(userU, userU, "ab")
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.Reason, "too short")

	err = svc.SetPrincipalName(userU, userU, "test-name")
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.Reason, "special")

	require.NoError(t, svc.SetPrincipalName(userU, userU, "validname"))
}

func TestRoundTrip_BanUnban(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t, nil)

	_, err := svc.BanUser(admin1, userU, uintPtr(24), "spam")
	require.NoError(t, err)
	require.NoError(t, svc.UnbanUser(admin1, userU))

	assert.False(t, svc.IsBanned(userU))

	log, err := svc.BanLog(admin1, shared.DefaultPagination())
	require.NoError(t, err)
	assert.Len(t, log, 2, "ban plus unban entries")

	users, err := svc.BannedUsers(admin1)
	require.NoError(t, err)
	assert.Empty(t, users)

	_, err = svc.BanStatus(userU)
	require.ErrorIs(t, err, moderation.ErrUserNotBanned)
}

func TestRoundTrip_NameSetRemove(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t, nil)

	require.NoError(t, svc.SetPrincipalName(userU, userU, "alice"))
	require.NoError(t, svc.RemovePrincipalName(userU, userU))

	_, ok := svc.GetPrincipalName(userU)
	assert.False(t, ok)
}

func TestAdminWildcardProperty(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t, nil)

	for _, permission := range []string{"edit_any_name", "unknown_perm", ""} {
		assert.True(t, svc.CheckPermission(admin1, permission))
	}
}

func TestCleanupExpired_Idempotent(t *testing.T) {
	t.Parallel()

	svc, clock := newService(t, nil)

	expiry := clock.Now().Add(time.Hour)
	require.NoError(t, svc.GrantPermission(admin1, userU, access.PermBanUser, &expiry))
	_, err := svc.BanUser(admin1, userV, uintPtr(1), "spam")
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)

	before := svc.ExportState()
	svc.CleanupExpired()
	after := svc.ExportState()
	svc.CleanupExpired()
	again := svc.ExportState()

	assert.Len(t, before.BanLog, 1)
	assert.Equal(t, after.BanLog, again.BanLog, "log untouched by cleanup")
	assert.Empty(t, after.Grants)
	assert.Empty(t, after.ActiveBans)
	assert.Equal(t, after.Grants, again.Grants)
}

func TestExportRestoreState(t *testing.T) {
	t.Parallel()

	svc, clock := newService(t, nil)

	require.NoError(t, svc.AddAdmin(admin1, admin2, nil))
	require.NoError(t, svc.GrantPermission(admin1, userU, access.PermBanUser, nil))
	_, err := svc.BanUser(admin1, userV, uintPtr(24), "spam")
	require.NoError(t, err)
	require.NoError(t, svc.SetPrincipalName(userU, userU, "alice"))
	require.NoError(t, svc.AddBannedWord(admin1, "scam"))
	require.NoError(t, svc.SetSnsThreshold(admin1, govG, access.PermSetSnsNeuronName, governance.Threshold{MinVotingPower: 7}))

	state := svc.ExportState()

	// A fresh service with re-registered types resumes from the snapshot.
	restored, err := authz.New(authz.Config{Controller: controller, Clock: clock, Logger: zerolog.Nop()})
	require.NoError(t, err)
	restored.RegisterWellKnownPermissionTypes()
	require.NoError(t, restored.RestoreState(state))

	assert.True(t, restored.IsAdmin(admin2))
	assert.True(t, restored.CheckPermission(userU, access.PermBanUser))
	assert.True(t, restored.IsBanned(userV))

	view, ok := restored.GetPrincipalName(userU)
	require.True(t, ok)
	assert.Equal(t, "alice", view.Name)

	owner, ok := restored.LookupPrincipalByName("alice")
	require.True(t, ok)
	assert.True(t, owner.Equal(userU))

	words, err := restored.BannedWords(admin1)
	require.NoError(t, err)
	assert.Equal(t, []string{"scam"}, words)

	t.Run("nil and mismatched versions rejected", func(t *testing.T) {
		require.Error(t, restored.RestoreState(nil))
		bad := *state
		bad.Version = 99
		require.Error(t, restored.RestoreState(&bad))
	})
}

func TestDrainEvents(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t, nil)

	_, err := svc.BanUser(admin1, userU, uintPtr(1), "spam")
	require.NoError(t, err)
	require.NoError(t, svc.SetPrincipalName(userV, userV, "bob"))

	events := svc.DrainEvents()
	require.Len(t, events, 2)
	assert.Equal(t, moderation.EventTypeUserBanned, events[0].EventType())
	assert.Equal(t, naming.EventTypeNameSet, events[1].EventType())
	assert.Empty(t, svc.DrainEvents())
}
