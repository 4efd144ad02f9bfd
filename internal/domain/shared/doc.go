// Package shared provides the Shared Kernel for the authcore domain layer.
//
// The Shared Kernel contains domain primitives that every bounded context
// (identity, access, moderation, governance, naming) may import. Bounded
// contexts must not import each other's internals; anything they genuinely
// share lives here.
//
// # Components
//
// Clock:
//   - Clock abstracts time observation so the embedding host controls "now"
//   - SystemClock reads the wall clock in UTC
//   - ManualClock is a settable clock for deterministic tests
//
// Common Errors:
//   - ErrNotFound, ErrAlreadyExists, ErrInvalidInput, ErrUnauthorized, ErrForbidden
//   - ErrAnonymousCaller for operations that reject the anonymous principal
//   - BannedError, the universal error that supersedes authorization errors
//     whenever the caller is actively banned
//
// Pagination:
//   - Immutable value object for paging through the ban log and other
//     append-only collections; 1-indexed pages, per-page bounded to 100
//
// Domain Events:
//   - DomainEvent interface and BaseEvent implementation with UUID event ids
//
// # Design Principles
//
//   - Minimal dependencies: stdlib plus google/uuid for event identifiers
//   - Immutability: value objects never change after construction
//   - UTC everywhere: all timestamps observed through Clock are UTC
//   - No business logic: only generic primitives and helpers
package shared
