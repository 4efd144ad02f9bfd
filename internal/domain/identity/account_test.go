package identity

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubaccountFromBytes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   []byte
		wantErr error
	}{
		{
			name:  "exactly 32 bytes",
			input: bytes.Repeat([]byte{0x01}, SubaccountLength),
		},
		{
			name:  "all zeros is valid",
			input: make([]byte, SubaccountLength),
		},
		{
			name:    "too short",
			input:   make([]byte, 31),
			wantErr: ErrSubaccountLength,
		},
		{
			name:    "too long",
			input:   make([]byte, 33),
			wantErr: ErrSubaccountLength,
		},
		{
			name:    "empty",
			input:   []byte{},
			wantErr: ErrSubaccountLength,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sub, err := SubaccountFromBytes(tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.input, sub.Bytes())
		})
	}
}

func TestSubaccount_IsDefault(t *testing.T) {
	t.Parallel()

	var zero Subaccount
	assert.True(t, zero.IsDefault())

	nonZero, err := SubaccountFromBytes(append(make([]byte, 31), 0x01))
	require.NoError(t, err)
	assert.False(t, nonZero.IsDefault())
}

func TestAccount_IsDefaultSubaccount(t *testing.T) {
	t.Parallel()

	owner := MustPrincipalFromBytes([]byte{0x10, 0x20})

	absent, err := NewAccount(owner, nil)
	require.NoError(t, err)
	assert.True(t, absent.IsDefaultSubaccount())

	var zero Subaccount
	explicit, err := NewAccount(owner, &zero)
	require.NoError(t, err)
	assert.True(t, explicit.IsDefaultSubaccount())

	nonZero, err := SubaccountFromBytes(append(make([]byte, 31), 0x07))
	require.NoError(t, err)
	named, err := NewAccount(owner, &nonZero)
	require.NoError(t, err)
	assert.False(t, named.IsDefaultSubaccount())
}

func TestNewAccount_RequiresOwner(t *testing.T) {
	t.Parallel()

	_, err := NewAccount(Principal{}, nil)
	require.ErrorIs(t, err, ErrPrincipalEmpty)
}
