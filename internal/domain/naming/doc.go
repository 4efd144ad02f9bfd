// Package naming implements the Naming bounded context: unique, validated,
// optionally verified names over three keyspaces - principals, accounts
// (owner plus 32-byte subaccount) and externally-governed neurons.
//
// # Storage Shape
//
// All three keyspaces share one pair of maps: lowercase name -> subject
// index, and subject index -> record. Subject indices come from the shared
// interner; accounts and neurons intern a tagged key (a domain byte
// prepended to the owner/subaccount or neuron-id bytes) so the keyspaces
// can never collide with principal indices.
//
// # Validation Pipeline
//
// Applied in order, before any uniqueness check: length bounds, the
// special-character toggle, the unicode toggle, then the blacklist
// substring filter over the lowercased candidate.
//
// # Business Rules
//
//  1. Uniqueness is case-insensitive: a candidate's lowercased form must be
//     absent from the name index or already owned by the mutated subject.
//  2. Changing a record's stored name always resets its verified flag.
//  3. Creation metadata survives updates; updated metadata always moves.
//  4. Accounts with an absent or all-zero subaccount route to the
//     principal-name path with the owner as subject.
//  5. Neuron-name authorization falls back to transitive neuron
//     reachability through the governance oracle. Oracle-based
//     authorization resolves fully before any table is touched.
package naming
