package naming

import (
	"time"

	"github.com/kaelum/authcore/internal/domain/identity"
)

// NameKind discriminates the three keyspaces sharing the name tables.
type NameKind int

const (
	// KindPrincipal names a principal directly.
	KindPrincipal NameKind = iota
	// KindAccount names an owner principal plus non-default subaccount.
	KindAccount
	// KindNeuron names an externally-governed neuron.
	KindNeuron
)

// String returns the keyspace name for logging.
func (k NameKind) String() string {
	switch k {
	case KindPrincipal:
		return "principal"
	case KindAccount:
		return "account"
	case KindNeuron:
		return "neuron"
	default:
		return "unknown"
	}
}

// NameRecord is the stored form of one name. Author fields are interner
// indices; use the registry's view methods for materialized principals.
type NameRecord struct {
	Name      string    `json:"name"`
	Kind      NameKind  `json:"kind"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	CreatedBy uint32    `json:"created_by"`
	UpdatedBy uint32    `json:"updated_by"`
}

// NameView is a record materialized for callers. Author principals are
// zero values when the stored index no longer resolves.
type NameView struct {
	Name      string
	Kind      NameKind
	Verified  bool
	CreatedAt time.Time
	UpdatedAt time.Time
	CreatedBy identity.Principal
	UpdatedBy identity.Principal
}

// BlacklistEntry is the metadata stored for one banned word.
type BlacklistEntry struct {
	AddedBy uint32    `json:"added_by"`
	AddedAt time.Time `json:"added_at"`
}
