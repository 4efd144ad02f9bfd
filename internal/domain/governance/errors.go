package governance

import "errors"

// Domain-specific errors for the Governance bounded context.
var (
	// ErrNeuronIDEmpty indicates an empty neuron identifier blob.
	ErrNeuronIDEmpty = errors.New("neuron id cannot be empty")
	// ErrNoOracle indicates an oracle-dependent check on a core built
	// without an injected oracle.
	ErrNoOracle = errors.New("no governance oracle configured")
	// ErrZeroVotingPower indicates a threshold with a zero minimum.
	ErrZeroVotingPower = errors.New("minimum voting power must be positive")
)
