package naming

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaelum/authcore/internal/domain/access"
	"github.com/kaelum/authcore/internal/domain/governance"
	"github.com/kaelum/authcore/internal/domain/identity"
	"github.com/kaelum/authcore/internal/domain/moderation"
	"github.com/kaelum/authcore/internal/domain/shared"
)

var (
	controller = identity.MustPrincipalFromBytes([]byte{0x01})
	admin      = identity.MustPrincipalFromBytes([]byte{0x02})
	alice      = identity.MustPrincipalFromBytes([]byte{0x03})
	bob        = identity.MustPrincipalFromBytes([]byte{0x04, 0x04})
	govPrin    = identity.MustPrincipalFromBytes([]byte{0x05, 0x05})
)

// fixedOracle answers every ListNeurons call with the same neurons.
type fixedOracle struct {
	neurons map[string][]governance.Neuron
}

func (f *fixedOracle) ListNeurons(_ context.Context, of identity.Principal) ([]governance.Neuron, error) {
	return f.neurons[string(of.Bytes())], nil
}

func (f *fixedOracle) GetNeuron(_ context.Context, _ governance.NeuronID) (*governance.Neuron, error) {
	return nil, nil
}

type fixture struct {
	registry *Registry
	perms    *access.Core
	bans     *moderation.Registry
	clock    *shared.ManualClock
}

func newFixture(t *testing.T, oracle governance.Oracle) fixture {
	t.Helper()

	clock := shared.NewManualClock(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	perms := access.NewCore(identity.NewInterner(), controller, clock)
	for _, name := range access.WellKnownPermissions() {
		require.NoError(t, perms.RegisterType(name, name, nil, nil))
	}
	require.NoError(t, perms.AddAdmin(controller, admin, nil))

	bans := moderation.NewRegistry(perms, clock)
	perms.SetBanCheck(bans.BanCheck())

	adapter := governance.NewAdapter(perms, oracle)
	registry := NewRegistry(perms, adapter, clock)

	return fixture{registry: registry, perms: perms, bans: bans, clock: clock}
}

func TestSetPrincipalName_SelfService(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)

	require.NoError(t, f.registry.SetPrincipalName(alice, alice, "alice"))

	view, ok := f.registry.GetPrincipalName(alice)
	require.True(t, ok)
	assert.Equal(t, "alice", view.Name)
	assert.Equal(t, KindPrincipal, view.Kind)
	assert.False(t, view.Verified)
	assert.True(t, view.CreatedBy.Equal(alice))

	owner, ok := f.registry.LookupPrincipalByName("ALICE")
	require.True(t, ok)
	assert.True(t, owner.Equal(alice))
}

func TestSetPrincipalName_Authorization(t *testing.T) {
	t.Parallel()

	t.Run("anonymous caller", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, nil)

		err := f.registry.SetPrincipalName(identity.AnonymousPrincipal(), alice, "alice")
		require.ErrorIs(t, err, shared.ErrAnonymousCaller)
	})

	t.Run("stranger is denied", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, nil)

		err := f.registry.SetPrincipalName(bob, alice, "alice")
		var notAuth *access.NotAuthorizedError
		require.ErrorAs(t, err, &notAuth)
		assert.Equal(t, access.PermEditAnyName, notAuth.Required)
	})

	t.Run("edit_any_name holder may name others", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, nil)

		require.NoError(t, f.perms.Grant(admin, bob, access.PermEditAnyName, nil))
		require.NoError(t, f.registry.SetPrincipalName(bob, alice, "alice"))
	})

	t.Run("admin may name others", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, nil)

		require.NoError(t, f.registry.SetPrincipalName(admin, alice, "alice"))
	})

	t.Run("banned caller may not self-edit", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, nil)

		_, err := f.bans.Ban(admin, alice, nil, "spam")
		require.NoError(t, err)

		err = f.registry.SetPrincipalName(alice, alice, "alice")
		var banned *shared.BannedError
		require.ErrorAs(t, err, &banned)
		assert.Equal(t, "spam", banned.Reason)
	})

	t.Run("expired grant is denied", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, nil)

		expiry := f.clock.Now().Add(time.Hour)
		require.NoError(t, f.perms.Grant(admin, bob, access.PermEditAnyName, &expiry))
		require.NoError(t, f.registry.SetPrincipalName(bob, alice, "alice"))

		f.clock.Advance(2 * time.Hour)
		err := f.registry.SetPrincipalName(bob, alice, "malice")
		var notAuth *access.NotAuthorizedError
		require.ErrorAs(t, err, &notAuth)
		assert.Equal(t, access.PermEditAnyName, notAuth.Required)
	})
}

func TestValidationPipeline(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	require.NoError(t, f.registry.UpdateSettings(admin, Settings{
		MinLength: 3, MaxLength: 20, AllowSpecialChars: false, AllowUnicode: false,
	}))

	tests := []struct {
		name   string
		input  string
		reason string
	}{
		{name: "too short", input: "ab", reason: "too short"},
		{name: "too long", input: "abcdefghijklmnopqrstu", reason: "too long"},
		{name: "special characters", input: "test-name", reason: "special"},
		{name: "special check runs before unicode check", input: "näme!", reason: "special"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			err := f.registry.SetPrincipalName(alice, alice, tt.input)
			var invalid *InvalidNameError
			require.ErrorAs(t, err, &invalid)
			assert.Contains(t, invalid.Reason, tt.reason)
		})
	}

	t.Run("valid name passes", func(t *testing.T) {
		require.NoError(t, f.registry.SetPrincipalName(alice, alice, "validname"))
	})

	t.Run("unicode letters pass when allowed", func(t *testing.T) {
		require.NoError(t, f.registry.UpdateSettings(admin, Settings{
			MinLength: 3, MaxLength: 20, AllowSpecialChars: false, AllowUnicode: true,
		}))
		require.NoError(t, f.registry.SetPrincipalName(alice, alice, "näme"))
	})

	t.Run("ascii-only rejects unicode letters", func(t *testing.T) {
		require.NoError(t, f.registry.UpdateSettings(admin, Settings{
			MinLength: 3, MaxLength: 20, AllowSpecialChars: true, AllowUnicode: false,
		}))
		err := f.registry.SetPrincipalName(alice, alice, "näme")
		var invalid *InvalidNameError
		require.ErrorAs(t, err, &invalid)
		assert.Contains(t, invalid.Reason, "ascii")
	})
}

func TestBlacklist(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)

	t.Run("gated operations", func(t *testing.T) {
		require.Error(t, f.registry.AddBannedWord(alice, "spam"))
		require.Error(t, f.registry.RemoveBannedWord(alice, "spam"))
		_, err := f.registry.BannedWords(alice)
		require.Error(t, err)
	})

	t.Run("substring match on lowercased candidate", func(t *testing.T) {
		require.NoError(t, f.registry.AddBannedWord(admin, "SPAM"))

		err := f.registry.SetPrincipalName(alice, alice, "SPAMMER")
		var bannedWord *BannedWordError
		require.ErrorAs(t, err, &bannedWord)
		assert.Equal(t, "spam", bannedWord.Word)
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})

	t.Run("list and remove", func(t *testing.T) {
		words, err := f.registry.BannedWords(admin)
		require.NoError(t, err)
		assert.Equal(t, []string{"spam"}, words)

		require.NoError(t, f.registry.RemoveBannedWord(admin, "spam"))
		require.NoError(t, f.registry.SetPrincipalName(alice, alice, "spammer"))
	})

	t.Run("empty word rejected", func(t *testing.T) {
		require.ErrorIs(t, f.registry.AddBannedWord(admin, "  "), ErrEmptyWord)
	})
}

func TestUniqueness(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)

	require.NoError(t, f.registry.SetPrincipalName(alice, alice, "contested"))

	t.Run("case-insensitive collision names the holder", func(t *testing.T) {
		err := f.registry.SetPrincipalName(bob, bob, "Contested")
		var taken *NameTakenError
		require.ErrorAs(t, err, &taken)
		assert.Equal(t, "Contested", taken.Name)
		require.NotNil(t, taken.TakenBy)
		assert.True(t, taken.TakenBy.Equal(alice))
	})

	t.Run("subject may re-case its own name", func(t *testing.T) {
		require.NoError(t, f.registry.SetPrincipalName(alice, alice, "CONTESTED"))
		view, ok := f.registry.GetPrincipalName(alice)
		require.True(t, ok)
		assert.Equal(t, "CONTESTED", view.Name)
	})

	t.Run("released names are claimable", func(t *testing.T) {
		require.NoError(t, f.registry.RemovePrincipalName(alice, alice))
		require.NoError(t, f.registry.SetPrincipalName(bob, bob, "contested"))
	})
}

func TestRename_ResetsVerification(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)

	require.NoError(t, f.registry.SetPrincipalName(alice, alice, "alice"))
	require.NoError(t, f.registry.VerifyName(admin, "alice"))

	view, ok := f.registry.GetPrincipalName(alice)
	require.True(t, ok)
	require.True(t, view.Verified)

	t.Run("same name keeps verification", func(t *testing.T) {
		f.clock.Advance(time.Minute)
		require.NoError(t, f.registry.SetPrincipalName(alice, alice, "alice"))
		view, _ := f.registry.GetPrincipalName(alice)
		assert.True(t, view.Verified)
	})

	t.Run("changed name resets verification and keeps creation metadata", func(t *testing.T) {
		created := view.CreatedAt
		f.clock.Advance(time.Minute)
		require.NoError(t, f.registry.SetPrincipalName(alice, alice, "alicia"))

		after, ok := f.registry.GetPrincipalName(alice)
		require.True(t, ok)
		assert.False(t, after.Verified)
		assert.Equal(t, created, after.CreatedAt)
		assert.True(t, after.UpdatedAt.After(created))

		// The old lowercase key is gone.
		_, ok = f.registry.LookupPrincipalByName("alice")
		assert.False(t, ok)
		_, ok = f.registry.LookupPrincipalByName("alicia")
		assert.True(t, ok)
	})
}

func TestVerification(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	require.NoError(t, f.registry.SetPrincipalName(alice, alice, "alice"))

	t.Run("requires verify_name", func(t *testing.T) {
		err := f.registry.VerifyName(bob, "alice")
		var notAuth *access.NotAuthorizedError
		require.ErrorAs(t, err, &notAuth)
		assert.Equal(t, access.PermVerifyName, notAuth.Required)
	})

	t.Run("holder verifies and unverifies", func(t *testing.T) {
		require.NoError(t, f.perms.Grant(admin, bob, access.PermVerifyName, nil))
		require.NoError(t, f.perms.Grant(admin, bob, access.PermUnverifyName, nil))

		require.NoError(t, f.registry.VerifyName(bob, "alice"))
		view, _ := f.registry.GetPrincipalName(alice)
		assert.True(t, view.Verified)

		require.NoError(t, f.registry.UnverifyName(bob, "alice"))
		view, _ = f.registry.GetPrincipalName(alice)
		assert.False(t, view.Verified)
	})

	t.Run("unknown name", func(t *testing.T) {
		require.ErrorIs(t, f.registry.VerifyName(admin, "nobody"), ErrNameNotFound)
	})
}

func TestRoundTrip_SetThenRemove(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)

	require.NoError(t, f.registry.SetPrincipalName(alice, alice, "alice"))
	require.NoError(t, f.registry.RemovePrincipalName(alice, alice))

	_, ok := f.registry.GetPrincipalName(alice)
	assert.False(t, ok, "removal returns the subject to the unnamed state")

	require.ErrorIs(t, f.registry.RemovePrincipalName(alice, alice), ErrNameNotFound)
}

func TestAccountNames(t *testing.T) {
	t.Parallel()

	nonDefault := func(t *testing.T) identity.Account {
		t.Helper()
		sub, err := identity.SubaccountFromBytes(append(make([]byte, 31), 0x09))
		require.NoError(t, err)
		account, err := identity.NewAccount(alice, &sub)
		require.NoError(t, err)
		return account
	}

	t.Run("default subaccount routes to the principal path", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, nil)

		account, err := identity.NewAccount(alice, nil)
		require.NoError(t, err)
		require.NoError(t, f.registry.SetAccountName(alice, account, "alice"))

		view, ok := f.registry.GetPrincipalName(alice)
		require.True(t, ok)
		assert.Equal(t, KindPrincipal, view.Kind)

		var zero identity.Subaccount
		explicit, err := identity.NewAccount(alice, &zero)
		require.NoError(t, err)
		got, ok := f.registry.GetAccountName(explicit)
		require.True(t, ok)
		assert.Equal(t, "alice", got.Name)
	})

	t.Run("owner names a non-default account", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, nil)
		account := nonDefault(t)

		require.NoError(t, f.registry.SetAccountName(alice, account, "savings"))

		view, ok := f.registry.GetAccountName(account)
		require.True(t, ok)
		assert.Equal(t, KindAccount, view.Kind)

		// The account name is independent of the owner's principal name.
		_, ok = f.registry.GetPrincipalName(alice)
		assert.False(t, ok)
	})

	t.Run("stranger needs set_account_name", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, nil)
		account := nonDefault(t)

		err := f.registry.SetAccountName(bob, account, "savings")
		var notAuth *access.NotAuthorizedError
		require.ErrorAs(t, err, &notAuth)
		assert.Equal(t, access.PermSetAccountName, notAuth.Required)

		require.NoError(t, f.perms.Grant(admin, bob, access.PermSetAccountName, nil))
		require.NoError(t, f.registry.SetAccountName(bob, account, "savings"))
	})

	t.Run("remove", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, nil)
		account := nonDefault(t)

		require.NoError(t, f.registry.SetAccountName(alice, account, "savings"))
		require.NoError(t, f.registry.RemoveAccountName(alice, account))
		_, ok := f.registry.GetAccountName(account)
		assert.False(t, ok)
	})

	t.Run("account names share the uniqueness space with principals", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, nil)
		account := nonDefault(t)

		require.NoError(t, f.registry.SetPrincipalName(bob, bob, "shared"))
		err := f.registry.SetAccountName(alice, account, "Shared")
		var taken *NameTakenError
		require.ErrorAs(t, err, &taken)
		require.NotNil(t, taken.TakenBy)
		assert.True(t, taken.TakenBy.Equal(bob))

		// Collision the other way: the account record holds the name, and
		// taken_by stays empty because no principal owns the index.
		require.NoError(t, f.registry.SetAccountName(alice, account, "vault"))
		err = f.registry.SetPrincipalName(bob, bob, "vault")
		require.ErrorAs(t, err, &taken)
		assert.Nil(t, taken.TakenBy)
	})
}

func TestNeuronNames(t *testing.T) {
	t.Parallel()

	neuronID := governance.MustNeuronIDFromBytes([]byte{0xAA, 0xBB})

	ownedNeuron := func(owner identity.Principal) governance.Neuron {
		id := neuronID
		p := owner
		return governance.Neuron{
			ID:          &id,
			CachedStake: 100, VotingPowerMultiplier: 100,
			Permissions: []governance.NeuronPermission{{Principal: &p, PermissionTypes: []int32{0, 1}}},
		}
	}

	t.Run("permission holder names a neuron", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, nil)

		require.NoError(t, f.perms.Grant(admin, bob, access.PermSetSnsNeuronName, nil))
		require.NoError(t, f.registry.SetNeuronName(context.Background(), bob, govPrin, neuronID, "hotkey"))

		view, ok := f.registry.GetNeuronName(neuronID)
		require.True(t, ok)
		assert.Equal(t, KindNeuron, view.Kind)
		assert.Equal(t, "hotkey", view.Name)
	})

	t.Run("reachability fallback authorizes the controller", func(t *testing.T) {
		t.Parallel()
		oracle := &fixedOracle{neurons: map[string][]governance.Neuron{
			string(alice.Bytes()): {ownedNeuron(alice)},
		}}
		f := newFixture(t, oracle)

		require.NoError(t, f.registry.SetNeuronName(context.Background(), alice, govPrin, neuronID, "hotkey"))
	})

	t.Run("unreachable caller is denied", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, &fixedOracle{})

		err := f.registry.SetNeuronName(context.Background(), bob, govPrin, neuronID, "hotkey")
		var notAuth *access.NotAuthorizedError
		require.ErrorAs(t, err, &notAuth)
	})

	t.Run("governance principal verifies by neuron id", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, nil)

		require.NoError(t, f.perms.Grant(admin, bob, access.PermSetSnsNeuronName, nil))
		require.NoError(t, f.registry.SetNeuronName(context.Background(), bob, govPrin, neuronID, "hotkey"))

		require.NoError(t, f.registry.VerifyNeuronName(govPrin, govPrin, neuronID))
		view, _ := f.registry.GetNeuronName(neuronID)
		assert.True(t, view.Verified)

		require.NoError(t, f.registry.UnverifyNeuronName(govPrin, govPrin, neuronID))
		view, _ = f.registry.GetNeuronName(neuronID)
		assert.False(t, view.Verified)
	})

	t.Run("verifying an unnamed neuron", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, nil)

		other := governance.MustNeuronIDFromBytes([]byte{0xFF})
		err := f.registry.VerifyNeuronName(govPrin, govPrin, other)
		require.ErrorIs(t, err, ErrNeuronNotFound)
	})

	t.Run("neuron records verified by name require the sns permission", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, nil)

		require.NoError(t, f.perms.Grant(admin, bob, access.PermSetSnsNeuronName, nil))
		require.NoError(t, f.registry.SetNeuronName(context.Background(), bob, govPrin, neuronID, "hotkey"))
		require.NoError(t, f.perms.Grant(admin, bob, access.PermVerifyName, nil))

		err := f.registry.VerifyName(bob, "hotkey")
		var notAuth *access.NotAuthorizedError
		require.ErrorAs(t, err, &notAuth)
		assert.Equal(t, access.PermVerifySnsNeuronName, notAuth.Required)
	})
}

func TestUpdateSettings_Validation(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)

	require.ErrorIs(t, f.registry.UpdateSettings(admin, Settings{MinLength: 0, MaxLength: 10}), ErrMinLengthZero)
	require.ErrorIs(t, f.registry.UpdateSettings(admin, Settings{MinLength: 11, MaxLength: 10}), ErrLengthBounds)
	require.Error(t, f.registry.UpdateSettings(alice, DefaultSettings()))
}

func TestSnapshotRestore(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	require.NoError(t, f.registry.SetPrincipalName(alice, alice, "alice"))
	require.NoError(t, f.registry.AddBannedWord(admin, "spam"))

	records, index, blacklist, settings := f.registry.Snapshot()

	restored := NewRegistry(f.perms, nil, f.clock)
	restored.Restore(records, index, blacklist, settings)

	view, ok := restored.GetPrincipalName(alice)
	require.True(t, ok)
	assert.Equal(t, "alice", view.Name)

	err := restored.SetPrincipalName(bob, bob, "spammy")
	var bannedWord *BannedWordError
	require.ErrorAs(t, err, &bannedWord)
}

func TestEvents(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)

	require.NoError(t, f.registry.SetPrincipalName(alice, alice, "alice"))
	require.NoError(t, f.registry.VerifyName(admin, "alice"))
	require.NoError(t, f.registry.RemovePrincipalName(admin, alice))

	events := f.registry.DrainEvents()
	require.Len(t, events, 3)
	assert.Equal(t, EventTypeNameSet, events[0].EventType())
	assert.Equal(t, EventTypeNameVerified, events[1].EventType())
	assert.Equal(t, EventTypeNameRemoved, events[2].EventType())
	assert.Empty(t, f.registry.DrainEvents())
}
