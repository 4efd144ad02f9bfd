package access

import (
	"errors"
	"fmt"

	"github.com/kaelum/authcore/internal/domain/shared"
)

// Domain-specific errors for the Access bounded context.
var (
	// ErrAlreadyAdmin indicates the principal is already in the admin set.
	ErrAlreadyAdmin = errors.New("principal is already an admin")
	// ErrAdminNotFound indicates the principal is not in the admin set.
	ErrAdminNotFound = errors.New("admin not found")
	// ErrCannotRemoveSelf indicates an admin attempted to remove themselves.
	ErrCannotRemoveSelf = errors.New("admins cannot remove themselves")
	// ErrCannotRemoveController indicates an attempt to remove the runtime controller.
	ErrCannotRemoveController = errors.New("the runtime controller cannot be removed")
	// ErrPermissionNotFound indicates no grant exists for the pair.
	ErrPermissionNotFound = errors.New("permission grant not found")
	// ErrExpiryBeyondMax indicates a requested grant expiry past the type's ceiling.
	ErrExpiryBeyondMax = errors.New("requested expiry exceeds the permission's maximum duration")
	// ErrDurationBounds indicates a permission type whose default exceeds its maximum.
	ErrDurationBounds = errors.New("default duration exceeds maximum duration")
)

// NotAuthorizedError reports that the caller lacks the named permission.
// It matches shared.ErrForbidden for coarse-grained handling.
type NotAuthorizedError struct {
	// Required is the permission that would have allowed the operation,
	// or "admin" for admin-gated operations.
	Required string
}

// Error implements the error interface.
func (e *NotAuthorizedError) Error() string {
	return fmt.Sprintf("not authorized: requires %s", e.Required)
}

// Is reports whether target matches shared.ErrForbidden.
func (e *NotAuthorizedError) Is(target error) bool {
	return target == shared.ErrForbidden
}

// PermissionTypeExistsError reports a duplicate permission-type registration.
type PermissionTypeExistsError struct {
	Name string
}

// Error implements the error interface.
func (e *PermissionTypeExistsError) Error() string {
	return fmt.Sprintf("permission type %q already exists", e.Name)
}

// Is reports whether target matches shared.ErrAlreadyExists.
func (e *PermissionTypeExistsError) Is(target error) bool {
	return target == shared.ErrAlreadyExists
}

// PermissionTypeNotFoundError reports a check or grant against an unknown type.
type PermissionTypeNotFoundError struct {
	Name string
}

// Error implements the error interface.
func (e *PermissionTypeNotFoundError) Error() string {
	return fmt.Sprintf("permission type %q not found", e.Name)
}

// Is reports whether target matches shared.ErrNotFound.
func (e *PermissionTypeNotFoundError) Is(target error) bool {
	return target == shared.ErrNotFound
}
