/*
errors.go - Centralized error types for the attendance engine

PURPOSE:
  All engine error types in one place. The outer layers (api, report) match
  on the sentinels with errors.Is and surface the structured details.

ERROR CATEGORIES:
  1. Per-shift errors  - attached to one shift's result, never fatal
  2. Config errors     - the only fatal precondition; rejected up front

PROPAGATION CONTRACT:
  A failure classifying one shift must never abort processing of other
  shifts or other employees. Per-shift errors are collected into the
  summary's audit trail (see aggregate.go); only an invalid TimeConfig
  stops a run before it starts.
*/
package engine

import (
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrMissingTimestamp marks an event whose instant could not be resolved
	// from either the authoritative timestamp or the fallback strings.
	ErrMissingTimestamp = errors.New("missing timestamp")

	// ErrZeroOrNegativeDuration marks a shift whose normalized exit does not
	// come after its entry. Rounding can produce this; it is reported, not
	// silently clamped.
	ErrZeroOrNegativeDuration = errors.New("zero or negative shift duration")

	// ErrOrphanShift marks a shift missing its matching counterpart punch.
	// It is a warning variant of a successfully reconciled shift: the shift
	// exists and is reported, it just contributes no minutes.
	ErrOrphanShift = errors.New("orphan shift")

	// ErrUnparseableDate marks a date string that does not form a real
	// calendar date in D/M/YYYY order.
	ErrUnparseableDate = errors.New("unparseable date")

	// ErrInvalidTimeConfig marks a caller-supplied config outside the
	// documented bounds. This is fatal for the whole run.
	ErrInvalidTimeConfig = errors.New("invalid time config")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// MissingTimestampError reports the event that had no resolvable instant.
type MissingTimestampError struct {
	EmployeeID string
	DateText   string
	TimeText   string
	Cause      error
}

func (e *MissingTimestampError) Error() string {
	return fmt.Sprintf("missing timestamp for %q (date=%q time=%q): %v",
		e.EmployeeID, e.DateText, e.TimeText, e.Cause)
}

func (e *MissingTimestampError) Unwrap() error { return ErrMissingTimestamp }

// ZeroOrNegativeDurationError reports the normalized boundaries that failed
// the end > start requirement.
type ZeroOrNegativeDurationError struct {
	EmployeeID string
	Entry      time.Time
	Exit       time.Time
}

func (e *ZeroOrNegativeDurationError) Error() string {
	return fmt.Sprintf("shift for %q has non-positive duration: entry %s, exit %s",
		e.EmployeeID, e.Entry.Format(time.RFC3339), e.Exit.Format(time.RFC3339))
}

func (e *ZeroOrNegativeDurationError) Unwrap() error { return ErrZeroOrNegativeDuration }

// UnparseableDateError reports a malformed D/M/YYYY date string.
type UnparseableDateError struct {
	Input string
}

func (e *UnparseableDateError) Error() string {
	return fmt.Sprintf("unparseable date %q (want D/M/YYYY)", e.Input)
}

func (e *UnparseableDateError) Unwrap() error { return ErrUnparseableDate }

// ConfigError reports a TimeConfig field outside its documented bounds.
type ConfigError struct {
	Field    string
	Value    int
	Min, Max int
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid time config: %s=%d outside [%d,%d]",
		e.Field, e.Value, e.Min, e.Max)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidTimeConfig }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsShiftSkip reports whether err is one of the per-shift conditions that
// exclude a shift from totals without aborting the run.
func IsShiftSkip(err error) bool {
	return errors.Is(err, ErrMissingTimestamp) ||
		errors.Is(err, ErrZeroOrNegativeDuration) ||
		errors.Is(err, ErrOrphanShift)
}
