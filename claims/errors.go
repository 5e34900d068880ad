/*
errors.go - Centralized error types for the claims engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Outer layers (HTTP, report) map these onto their own surfaces.

ERROR CATEGORIES:
  1. Validation errors  - bad hours/rate on submission
  2. Transition errors  - missing claim or non-Pending state
  3. Calculation errors - amount overflow
  4. Storage errors     - database or file I/O failures

USAGE:
  if errors.Is(err, claims.ErrClaimNotFound) {
      // 404
  }
*/
package claims

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidHours is returned when hours worked is zero or negative.
	ErrInvalidHours = errors.New("hours worked must be greater than zero")

	// ErrInvalidRate is returned when the hourly rate is negative.
	ErrInvalidRate = errors.New("hourly rate must be zero or positive")

	// ErrAmountOverflow is returned when hours x rate exceeds the
	// representable range for a monetary amount.
	ErrAmountOverflow = errors.New("amount overflow")

	// ErrClaimNotFound is returned when a referenced claim doesn't exist.
	ErrClaimNotFound = errors.New("claim not found")

	// ErrDocumentNotFound is returned when a referenced document doesn't exist.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrLecturerNotFound is returned when a referenced lecturer doesn't exist.
	ErrLecturerNotFound = errors.New("lecturer not found")

	// ErrInvalidTransition is returned when Approve or Reject is called on
	// a claim that is no longer Pending. Transitions are one-directional.
	ErrInvalidTransition = errors.New("claim is not pending")

	// ErrStorageFailure is returned when persistence or file I/O fails.
	ErrStorageFailure = errors.New("storage failure")

	// ErrFileRejected is the base error for uploads refused by the file
	// storage boundary (disallowed extension, over the size ceiling,
	// empty). Rejected files are skipped; the claim is still created.
	ErrFileRejected = errors.New("file rejected")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError reports which field failed submission validation.
type ValidationError struct {
	Field string // "hours_worked" or "hourly_rate"
	Value decimal.Decimal
	Rule  error // ErrInvalidHours or ErrInvalidRate
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %s: %v", e.Field, e.Value, e.Rule)
}

func (e *ValidationError) Unwrap() error { return e.Rule }

// TransitionError reports a rejected state transition.
type TransitionError struct {
	ClaimID int64
	From    Status
	To      Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("claim %d: cannot transition %s -> %s", e.ClaimID, e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidHours) ||
		errors.Is(err, ErrInvalidRate) ||
		errors.Is(err, ErrInvalidTransition)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrClaimNotFound) ||
		errors.Is(err, ErrDocumentNotFound) ||
		errors.Is(err, ErrLecturerNotFound)
}
