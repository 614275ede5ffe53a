package domain

import (
	"errors"
	"fmt"
)

// Domain errors returned by the service and repository implementations.

var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrTodoNotFound indicates no todo matches the given ID.
	ErrTodoNotFound = fmt.Errorf("todo %w", ErrNotFound)

	// ErrInvalidID indicates the provided ID is not a well-formed store identity.
	ErrInvalidID = errors.New("invalid ID format")

	// ErrValidation is the common cause of every malformed-input failure.
	ErrValidation = errors.New("validation failed")
)

// Field and parameter validation errors.
var (
	ErrOwnerRequired    = errors.New("owner must be non-empty")
	ErrBodyRequired     = errors.New("body must be non-empty")
	ErrCategoryRequired = errors.New("category must be non-empty")
	ErrInvalidStatus    = errors.New("status must be one of complete or incomplete")
	ErrStatusNotBoolean = errors.New("status must be a boolean")
	ErrNotString        = errors.New("value must be a string")
	ErrInvalidLimit     = errors.New("limit must be a positive integer")
)

// ValidationError reports a rejected input parameter together with the value the caller supplied.
// It matches ErrValidation and its cause with errors.Is.
type ValidationError struct {
	Param string
	Value string
	Err   error
}

// NewValidationError builds a ValidationError for param.
func NewValidationError(param, value string, err error) *ValidationError {
	return &ValidationError{Param: param, Value: value, Err: err}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Param, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() []error {
	return []error{ErrValidation, e.Err}
}
