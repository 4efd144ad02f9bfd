package identity

// SubaccountLength is the exact byte length of a subaccount.
const SubaccountLength = 32

// Subaccount is a 32-byte discriminator under an owning principal.
// The all-zero subaccount is the owner's default account.
type Subaccount [SubaccountLength]byte

// SubaccountFromBytes creates a Subaccount from a byte slice.
// Returns an error unless the slice is exactly 32 bytes; shorter or longer
// discriminators are rejected at the boundary rather than padded.
func SubaccountFromBytes(b []byte) (Subaccount, error) {
	if len(b) != SubaccountLength {
		return Subaccount{}, ErrSubaccountLength
	}
	var s Subaccount
	copy(s[:], b)
	return s, nil
}

// Bytes returns a copy of the subaccount bytes.
func (s Subaccount) Bytes() []byte {
	b := make([]byte, SubaccountLength)
	copy(b, s[:])
	return b
}

// IsDefault returns true if the subaccount is all zeros.
func (s Subaccount) IsDefault() bool {
	return s == Subaccount{}
}

// Account identifies an owner principal plus an optional subaccount.
// A nil subaccount and the all-zero subaccount are equivalent: both denote
// the owner's default account.
type Account struct {
	Owner      Principal
	Subaccount *Subaccount
}

// NewAccount creates an Account for the given owner and optional subaccount.
func NewAccount(owner Principal, sub *Subaccount) (Account, error) {
	if owner.IsZero() {
		return Account{}, ErrPrincipalEmpty
	}
	return Account{Owner: owner, Subaccount: sub}, nil
}

// IsDefaultSubaccount returns true when the account addresses the owner's
// default account (absent or all-zero subaccount).
func (a Account) IsDefaultSubaccount() bool {
	return a.Subaccount == nil || a.Subaccount.IsDefault()
}
