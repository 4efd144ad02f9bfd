package governance

import (
	"context"
	"fmt"
	"math"
	"math/bits"
	"time"

	"github.com/kaelum/authcore/internal/domain/access"
	"github.com/kaelum/authcore/internal/domain/identity"
)

// Threshold configures SNS-gated access for one (governance, permission)
// pair: the minimum voting power a principal's neurons must carry, plus
// optional duration ceilings mirroring permission-type metadata.
type Threshold struct {
	MinVotingPower  uint64         `json:"min_voting_power"`
	MaxDuration     *time.Duration `json:"max_duration,omitempty"`
	DefaultDuration *time.Duration `json:"default_duration,omitempty"`
}

type thresholdKey struct {
	governance uint32
	permission uint32
}

// Adapter is the aggregate root of the Governance context. It owns the
// threshold table and defers neuron queries to the injected oracle.
//
// Adapter is not safe for concurrent use; the application layer
// serializes access to it.
type Adapter struct {
	interner   *identity.Interner
	perms      *access.Core
	oracle     Oracle
	thresholds map[thresholdKey]Threshold
}

// NewAdapter creates an Adapter sharing the permission core's interner.
// oracle may be nil; oracle-dependent checks then fail with ErrNoOracle.
func NewAdapter(perms *access.Core, oracle Oracle) *Adapter {
	return &Adapter{
		interner:   perms.Interner(),
		perms:      perms,
		oracle:     oracle,
		thresholds: make(map[thresholdKey]Threshold),
	}
}

// SetThreshold stores the threshold for the (governance, permission) pair.
// Requires admin.
func (a *Adapter) SetThreshold(caller, governance identity.Principal, permission string, t Threshold) error {
	if err := a.perms.RequireAdmin(caller); err != nil {
		return err
	}
	if t.MinVotingPower == 0 {
		return ErrZeroVotingPower
	}

	key := thresholdKey{
		governance: a.interner.IndexPrincipal(governance),
		permission: a.interner.Index([]byte(permission)),
	}
	a.thresholds[key] = t
	return nil
}

// ThresholdFor returns the stored threshold for the pair.
func (a *Adapter) ThresholdFor(governance identity.Principal, permission string) (Threshold, bool) {
	governanceIdx, ok := a.interner.LookupPrincipal(governance)
	if !ok {
		return Threshold{}, false
	}
	permissionIdx, ok := a.interner.Lookup([]byte(permission))
	if !ok {
		return Threshold{}, false
	}
	t, ok := a.thresholds[thresholdKey{governance: governanceIdx, permission: permissionIdx}]
	return t, ok
}

// CheckSnsPermission evaluates the second-chance path for p and the named
// permission under the given governance authority:
//
//  1. The governance principal authorizes itself.
//  2. A direct grant in the access context suffices.
//  3. With a threshold configured for the pair, the principal's neurons
//     are listed and their combined voting power compared to the minimum.
//
// Without a threshold the answer is false. Oracle errors propagate.
func (a *Adapter) CheckSnsPermission(ctx context.Context, p identity.Principal, permission string, governance identity.Principal) (bool, error) {
	if p.Equal(governance) {
		return true, nil
	}
	if a.perms.Check(p, permission) {
		return true, nil
	}

	threshold, ok := a.ThresholdFor(governance, permission)
	if !ok {
		return false, nil
	}

	if a.oracle == nil {
		return false, ErrNoOracle
	}
	neurons, err := a.oracle.ListNeurons(ctx, p)
	if err != nil {
		return false, fmt.Errorf("list neurons: %w", err)
	}

	return votingPower(neurons, p) >= threshold.MinVotingPower, nil
}

// HasNeuronAccess reports whether p can act on the neuron: the governance
// principal always can; anyone else must reach the neuron transitively
// through the owners of their own neurons.
func (a *Adapter) HasNeuronAccess(ctx context.Context, p identity.Principal, neuronID NeuronID, governance identity.Principal) (bool, error) {
	if p.Equal(governance) {
		return true, nil
	}

	reachable, err := a.FindReachableNeurons(ctx, p, governance)
	if err != nil {
		return false, err
	}
	for _, neuron := range reachable {
		if neuron.ID != nil && neuron.ID.Equal(neuronID) {
			return true, nil
		}
	}
	return false, nil
}

// FindReachablePrincipals lists the owners of p's neurons: for each neuron
// the permission entry with the most tags (ties: first seen) owns it. The
// result is de-duplicated, in first-seen order.
func (a *Adapter) FindReachablePrincipals(ctx context.Context, p identity.Principal, governance identity.Principal) ([]identity.Principal, error) {
	if a.oracle == nil {
		return nil, ErrNoOracle
	}
	neurons, err := a.oracle.ListNeurons(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("list neurons: %w", err)
	}

	seen := make(map[string]bool)
	owners := make([]identity.Principal, 0, len(neurons))
	for _, neuron := range neurons {
		owner, ok := neuronOwner(neuron)
		if !ok {
			continue
		}
		key := string(owner.Bytes())
		if seen[key] {
			continue
		}
		seen[key] = true
		owners = append(owners, owner)
	}
	return owners, nil
}

// FindReachableNeurons lists every neuron controlled by a principal
// reachable from p, de-duplicated by neuron-id blob.
func (a *Adapter) FindReachableNeurons(ctx context.Context, p identity.Principal, governance identity.Principal) ([]Neuron, error) {
	owners, err := a.FindReachablePrincipals(ctx, p, governance)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	out := make([]Neuron, 0)
	for _, owner := range owners {
		neurons, err := a.oracle.ListNeurons(ctx, owner)
		if err != nil {
			return nil, fmt.Errorf("list neurons: %w", err)
		}
		for _, neuron := range neurons {
			if neuron.ID != nil {
				key := string(neuron.ID.Bytes())
				if seen[key] {
					continue
				}
				seen[key] = true
			}
			out = append(out, neuron)
		}
	}
	return out, nil
}

// neuronOwner selects the permission entry with the most tags.
func neuronOwner(neuron Neuron) (identity.Principal, bool) {
	var owner identity.Principal
	found := false
	best := -1
	for _, perm := range neuron.Permissions {
		if perm.Principal == nil {
			continue
		}
		if len(perm.PermissionTypes) > best {
			best = len(perm.PermissionTypes)
			owner = *perm.Principal
			found = true
		}
	}
	return owner, found
}

// votingPower sums stake x multiplier / 100 over the neurons that list p,
// saturating at the 64-bit ceiling instead of wrapping.
func votingPower(neurons []Neuron, p identity.Principal) uint64 {
	var total uint64
	for _, neuron := range neurons {
		if !neuronLists(neuron, p) {
			continue
		}
		total = saturatingAdd(total, neuronPower(neuron))
	}
	return total
}

func neuronLists(neuron Neuron, p identity.Principal) bool {
	for _, perm := range neuron.Permissions {
		if perm.Principal != nil && perm.Principal.Equal(p) {
			return true
		}
	}
	return false
}

func neuronPower(neuron Neuron) uint64 {
	hi, lo := bits.Mul64(neuron.CachedStake, neuron.VotingPowerMultiplier)
	if hi >= 100 {
		// The quotient would overflow 64 bits.
		return math.MaxUint64
	}
	quotient, _ := bits.Div64(hi, lo, 100)
	return quotient
}

func saturatingAdd(a, b uint64) uint64 {
	if sum := a + b; sum >= a {
		return sum
	}
	return math.MaxUint64
}
