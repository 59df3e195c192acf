package route

import (
	"errors"
	"fmt"
)

// Common route errors that can be checked with errors.Is().
var (
	// ErrDuplicatePath is returned when inserting or updating a route
	// would violate the unique-path constraint.
	ErrDuplicatePath = errors.New("a route with that path already exists")

	// ErrNotFound is returned when no route exists with the given id.
	ErrNotFound = errors.New("route not found")
)

// StoreError wraps a low-level storage failure with the operation that
// produced it.
type StoreError struct {
	// Op is the store operation that failed (e.g. "insert", "find_all").
	Op string

	// Err is the underlying driver error.
	Err error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return fmt.Sprintf("route store %s: %v", e.Op, e.Err)
}

// Unwrap returns the wrapped error for error chain traversal.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a StoreError for the given operation.
func NewStoreError(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}
