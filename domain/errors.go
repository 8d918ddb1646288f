/*
errors.go - Centralized error types for the allocation engine

PURPOSE:
  All error types in one place. The calculators never error for "no data"
  conditions (empty allocation lists, zero denominators); only malformed
  input and storage failures are exceptional.

ERROR CATEGORIES:
  1. Input errors - malformed allocations, unknown ids
  2. Conflict results - promotion validation failures (scenario package)
  3. Storage errors - persistence collaborator failures

USAGE:
  Callers branch on category with errors.Is / the helpers below:

    if domain.IsNotFound(err) { ... 404 ... }
    if domain.IsInput(err)    { ... 400 ... }
*/
package domain

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrResourceNotFound is returned when a referenced resource doesn't exist.
	ErrResourceNotFound = errors.New("resource not found")

	// ErrProjectNotFound is returned when a referenced project doesn't exist.
	ErrProjectNotFound = errors.New("project not found")

	// ErrAllocationNotFound is returned when a referenced allocation doesn't exist.
	ErrAllocationNotFound = errors.New("allocation not found")

	// ErrScenarioNotFound is returned when a referenced scenario doesn't exist.
	ErrScenarioNotFound = errors.New("scenario not found")

	// ErrInvalidRange is returned when a date range ends before it starts.
	ErrInvalidRange = errors.New("invalid range: end before start")

	// ErrInvalidUtilization is returned when a utilization percentage falls
	// outside the configured bounds.
	ErrInvalidUtilization = errors.New("utilization outside configured bounds")

	// ErrInvalidInput is the generic malformed-input sentinel.
	ErrInvalidInput = errors.New("invalid input")

	// ErrStorage wraps failures of the persistence collaborator.
	ErrStorage = errors.New("storage failure")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InputError describes a malformed field on an incoming record.
// Surfaced immediately to the caller, never retried.
type InputError struct {
	Field  string
	Reason string
	Err    error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Unwrap exposes both the generic input sentinel and the specific cause,
// so errors.Is matches either.
func (e *InputError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvalidInput, e.Err}
	}
	return []error{ErrInvalidInput}
}

// StorageError wraps a persistence failure with the operation that hit it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return ErrStorage }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrResourceNotFound) ||
		errors.Is(err, ErrProjectNotFound) ||
		errors.Is(err, ErrAllocationNotFound) ||
		errors.Is(err, ErrScenarioNotFound)
}

// IsInput returns true if the error is due to invalid caller input.
func IsInput(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrInvalidUtilization)
}

// IsStorage returns true if the error came from the persistence collaborator.
func IsStorage(err error) bool {
	return errors.Is(err, ErrStorage)
}
