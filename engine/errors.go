/*
errors.go - Error types for the layers around the engine

PURPOSE:
  The calculation itself never fails: bad data degrades to zero or falls
  through the precedence chain. These errors belong to the collaborators
  that feed it (stores, importers, HTTP handlers) and are kept here so all
  of them agree on what a bad range or a missing user means.

USAGE:
  if errors.Is(err, engine.ErrInvalidRange) {
      // 400
  }

SEE ALSO:
  - store.go: Store implementations return ErrNotFound
  - api/handlers.go: Maps these errors to HTTP status codes
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidRange is returned when a date range is malformed or reversed.
	ErrInvalidRange = errors.New("invalid date range")

	// ErrNotFound is returned when a stored record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUserNotFound is returned when a referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidOverride is returned when an override cannot be stored
	// (unknown mode, malformed date key, unknown weekday).
	ErrInvalidOverride = errors.New("invalid override")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// RangeError explains why a date range was rejected.
type RangeError struct {
	Range  DateRange
	Reason string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("invalid date range %s: %s", e.Range, e.Reason)
}

func (e *RangeError) Unwrap() error {
	return ErrInvalidRange
}

// OverrideError explains why an override was rejected.
type OverrideError struct {
	UserID UserID
	Field  string
	Reason string
}

func (e *OverrideError) Error() string {
	return fmt.Sprintf("invalid override for %s (%s): %s", e.UserID, e.Field, e.Reason)
}

func (e *OverrideError) Unwrap() error {
	return ErrInvalidOverride
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrInvalidOverride)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrUserNotFound)
}
