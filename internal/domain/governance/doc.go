// Package governance implements the Governance bounded context: the
// second-chance policy adapter for permissions gated on externally-governed
// neurons.
//
// The embedding host injects an Oracle that can list the neurons a
// principal controls. The Adapter never caches oracle answers and
// propagates oracle errors unchanged; a failed oracle call is a failed
// check, never a silent false.
//
// # Evaluation
//
// CheckSnsPermission short-circuits for the governance principal itself,
// then for a direct grant in the access context, and only then consults
// the oracle: it sums voting power (stake x multiplier / 100, saturating)
// over the neurons that list the principal and compares the total against
// the configured threshold for the (governance, permission) pair.
//
// HasNeuronAccess walks the principal's reachable set: the owners of the
// principal's neurons (the entry with the most permission tags owns a
// neuron; ties go to the first seen), then every neuron those owners
// control, de-duplicated by neuron-id blob.
//
// # Suspension
//
// Oracle calls are the core's only suspension points. Callers must finish
// oracle-based authorization before touching any local table; the Adapter
// itself holds no mutable state besides the threshold table, which is only
// written by SetThreshold and Restore.
package governance
