/*
errors.go - Centralized error types for the pricing engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Collaborating packages (views, api) wrap these errors with context.

ERROR CATEGORIES:
  1. Recoverable validation errors - bad request data, returned to the
     caller as a structured failure; no partial mutation occurs.
  2. Fatal computational errors - malformed configuration (zero capacity
     with a non-empty team, zero standard hours). These are raised rather
     than silently defaulted: returning 0 here would mask a data-entry
     mistake as a legitimate business result.

USAGE:
  if pricing.IsFatal(err) {
      // unusable input data, propagate as a hard failure
  }

SEE ALSO:
  - capacity.go: raises the fatal errors
  - views/mutations.go: returns the validation errors
*/
package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNoActiveEmployees is returned by allocation algorithms when the
	// effective-active employee set is empty.
	ErrNoActiveEmployees = errors.New("no active employees")

	// ErrZeroTotalGross is returned by proportional allocation when the sum
	// of adjusted gross pay across active employees is zero.
	ErrZeroTotalGross = errors.New("total adjusted gross is zero")

	// ErrShareOutOfRange is returned when an allocation share is outside [0, 1].
	ErrShareOutOfRange = errors.New("allocation share out of range")

	// ErrNothingToNormalize is returned when normalization finds no
	// allocation rows, or the sum of current shares is zero.
	ErrNothingToNormalize = errors.New("no allocation shares to normalize")

	// ErrOverheadTypeNotActive is returned when an allocation algorithm
	// targets an overhead type that is not effectively active.
	ErrOverheadTypeNotActive = errors.New("overhead type not active in this view")

	// ErrEntityNotFound is returned when a referenced record doesn't exist.
	ErrEntityNotFound = errors.New("entity not found")

	// ErrViewNotFound is returned when a referenced pricing view doesn't exist.
	ErrViewNotFound = errors.New("pricing view not found")

	// ErrZeroCapacity is FATAL: employees exist but their combined capacity
	// is zero (e.g. every employee has fte = 0).
	ErrZeroCapacity = errors.New("capacity hours is zero for a non-empty employee set")

	// ErrZeroStandardHours is FATAL: standard_hours_per_month resolves to
	// zero while computing a QA/BA add-on.
	ErrZeroStandardHours = errors.New("standard hours per month is zero")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ShareRangeError reports the offending share on a range violation.
type ShareRangeError struct {
	EmployeeID     EmployeeID
	OverheadTypeID OverheadTypeID
	Share          decimal.Decimal
}

func (e *ShareRangeError) Error() string {
	return fmt.Sprintf("allocation share %s for employee %s / overhead type %s must be in [0, 1]",
		e.Share, e.EmployeeID, e.OverheadTypeID)
}

func (e *ShareRangeError) Unwrap() error { return ErrShareOutOfRange }

// CapacityError reports which employee group produced zero capacity.
type CapacityError struct {
	Category  Category
	StackID   StackID
	Employees int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("capacity hours is zero for %d %s employee(s) on stack %q; check fte and releasable-hours settings",
		e.Employees, e.Category, string(e.StackID))
}

func (e *CapacityError) Unwrap() error { return ErrZeroCapacity }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsFatal reports whether err is a fatal computational error that signals
// unusable input data rather than a recoverable user error.
func IsFatal(err error) bool {
	return errors.Is(err, ErrZeroCapacity) ||
		errors.Is(err, ErrZeroStandardHours)
}

// IsClientError reports whether err is a recoverable validation error.
func IsClientError(err error) bool {
	return errors.Is(err, ErrNoActiveEmployees) ||
		errors.Is(err, ErrZeroTotalGross) ||
		errors.Is(err, ErrShareOutOfRange) ||
		errors.Is(err, ErrNothingToNormalize) ||
		errors.Is(err, ErrOverheadTypeNotActive)
}

// IsNotFound reports whether err indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEntityNotFound) ||
		errors.Is(err, ErrViewNotFound)
}
