package governance

import (
	"context"
	"encoding/hex"

	"github.com/kaelum/authcore/internal/domain/identity"
)

// NeuronID is a value object wrapping the opaque neuron identifier blob.
type NeuronID struct {
	blob string
}

// NeuronIDFromBytes creates a NeuronID from its blob form.
func NeuronIDFromBytes(b []byte) (NeuronID, error) {
	if len(b) == 0 {
		return NeuronID{}, ErrNeuronIDEmpty
	}
	return NeuronID{blob: string(b)}, nil
}

// MustNeuronIDFromBytes creates a NeuronID and panics on invalid input.
// Only use in tests or with known-valid input.
func MustNeuronIDFromBytes(b []byte) NeuronID {
	id, err := NeuronIDFromBytes(b)
	if err != nil {
		panic(err) // Intentional panic for Must* function
	}
	return id
}

// Bytes returns a copy of the identifier blob.
func (id NeuronID) Bytes() []byte {
	return []byte(id.blob)
}

// String returns the blob in hex for logging.
func (id NeuronID) String() string {
	return hex.EncodeToString([]byte(id.blob))
}

// IsZero returns true for the zero value.
func (id NeuronID) IsZero() bool {
	return id.blob == ""
}

// Equal returns true if both identifiers wrap the same blob.
func (id NeuronID) Equal(other NeuronID) bool {
	return id.blob == other.blob
}

// NeuronPermission is one per-principal permission entry on a neuron.
// The tag values are opaque to this core; only their count matters when
// selecting a neuron's owner.
type NeuronPermission struct {
	Principal       *identity.Principal
	PermissionTypes []int32
}

// Neuron is the externally-governed stakeable unit as this core reads it.
// Fields beyond these are the oracle's business and never cross the
// boundary.
type Neuron struct {
	ID                    *NeuronID
	CachedStake           uint64
	VotingPowerMultiplier uint64
	Permissions           []NeuronPermission
}

// Oracle is the governance authority's query surface, provided by the
// embedding host. Calls suspend the cooperative host; implementations
// should honor ctx cancellation.
type Oracle interface {
	// ListNeurons returns the neurons in which the principal holds any
	// permission entry.
	ListNeurons(ctx context.Context, of identity.Principal) ([]Neuron, error)

	// GetNeuron resolves a single neuron by id. Optional capability:
	// implementations without it return nil, nil.
	GetNeuron(ctx context.Context, id NeuronID) (*Neuron, error)
}
