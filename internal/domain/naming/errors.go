package naming

import (
	"errors"
	"fmt"

	"github.com/kaelum/authcore/internal/domain/identity"
	"github.com/kaelum/authcore/internal/domain/shared"
)

// Domain-specific errors for the Naming bounded context.
var (
	// ErrNameNotFound indicates no record exists for the subject or name.
	ErrNameNotFound = errors.New("name not found")
	// ErrNeuronNotFound indicates a verification against a neuron with no name record.
	ErrNeuronNotFound = errors.New("neuron has no name record")
	// ErrEmptyWord indicates an empty blacklist word.
	ErrEmptyWord = errors.New("banned word cannot be empty")

	// ErrMinLengthZero indicates settings with a minimum length below one.
	ErrMinLengthZero = errors.New("minimum name length must be at least 1")
	// ErrLengthBounds indicates settings whose minimum exceeds their maximum.
	ErrLengthBounds = errors.New("minimum name length exceeds maximum")
)

// InvalidNameError reports a candidate that fails the validation pipeline.
type InvalidNameError struct {
	// Reason is a human-readable description of the failing rule.
	Reason string
}

// Error implements the error interface.
func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid name: %s", e.Reason)
}

// Is reports whether target matches shared.ErrInvalidInput.
func (e *InvalidNameError) Is(target error) bool {
	return target == shared.ErrInvalidInput
}

// BannedWordError reports a candidate containing a blacklisted substring.
type BannedWordError struct {
	Word string
}

// Error implements the error interface.
func (e *BannedWordError) Error() string {
	return fmt.Sprintf("name contains banned word %q", e.Word)
}

// Is reports whether target matches shared.ErrInvalidInput.
func (e *BannedWordError) Is(target error) bool {
	return target == shared.ErrInvalidInput
}

// NameTakenError reports a uniqueness violation. TakenBy is populated only
// when the owning index resolves to a principal.
type NameTakenError struct {
	Name    string
	TakenBy *identity.Principal
}

// Error implements the error interface.
func (e *NameTakenError) Error() string {
	if e.TakenBy != nil {
		return fmt.Sprintf("name %q is already taken by %s", e.Name, e.TakenBy.String())
	}
	return fmt.Sprintf("name %q is already taken", e.Name)
}

// Is reports whether target matches shared.ErrAlreadyExists.
func (e *NameTakenError) Is(target error) bool {
	return target == shared.ErrAlreadyExists
}
