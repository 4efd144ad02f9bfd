// Package identity implements the Identity bounded context: the principal
// model, account addressing and the shared deduplication index.
package identity

import "errors"

// Domain-specific errors for the Identity bounded context.
var (
	// ErrPrincipalEmpty indicates an empty principal byte form.
	ErrPrincipalEmpty = errors.New("principal cannot be empty")
	// ErrPrincipalTooLong indicates the canonical form exceeds 29 bytes.
	ErrPrincipalTooLong = errors.New("principal exceeds 29 bytes")
	// ErrPrincipalText indicates the textual form is not valid base32.
	ErrPrincipalText = errors.New("principal text form is malformed")
	// ErrPrincipalChecksum indicates the textual form fails its checksum.
	ErrPrincipalChecksum = errors.New("principal text form has an invalid checksum")

	// ErrSubaccountLength indicates a subaccount that is not exactly 32 bytes.
	ErrSubaccountLength = errors.New("subaccount must be exactly 32 bytes")
)
