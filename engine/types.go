/*
Package engine implements the attendance reconciliation and labor-time
classification core.

PURPOSE:
  Converts a raw, possibly-inconsistent stream of clock-in/clock-out punches
  into payroll-grade minute totals split by regulatory category
  (ordinary/holiday x day/night). The engine is a pure, synchronous
  transformation: it performs no I/O, reads no global state, and computes
  everything fresh from the snapshot of events it is handed.

KEY CONCEPTS IN THIS FILE (types.go):
  - AttendanceEvent: An immutable punch (Entry or Exit) with its instant
  - Shift: A reconciled Entry/Exit pair, possibly missing one side
  - TimeConfig: Rounding and lunch-deduction policy for one run
  - HourBuckets: The four minute accumulators keyed by (special x period)

DESIGN PRINCIPLES:
  1. Purity: calendar and config are injected; same inputs, same outputs
  2. No event is ever dropped: every punch lands on exactly one Shift
  3. Per-shift failure isolation: one bad shift never aborts the run

SEE ALSO:
  - reconcile.go: Event pairing state machine
  - classify.go:  Per-minute bucketing and lunch deduction
  - aggregate.go: Per-employee summary with audit trail
*/
package engine

import (
	"strings"
	"time"
)

// =============================================================================
// ATTENDANCE EVENT - Immutable punch record
// =============================================================================

type EventType string

const (
	EventEntry EventType = "Entry"
	EventExit  EventType = "Exit"
)

// Valid reports whether t is one of the two known punch types.
func (t EventType) Valid() bool { return t == EventEntry || t == EventExit }

// AttendanceEvent is one clock punch as captured by the external subsystem.
// RecordedAt is the server-authoritative instant when available. When it is
// zero the event falls back to the DateText/TimeText pair, which is parsed
// lazily (see Instant) because capture devices occasionally deliver garbage.
type AttendanceEvent struct {
	EmployeeID string
	Type       EventType

	// Authoritative instant. Zero value means "not captured".
	RecordedAt time.Time

	// Fallback strings: "D/M/YYYY" and "HH:MM" or "HH:MM:SS", local time.
	DateText string
	TimeText string
}

// Instant resolves the event's point in time: the authoritative timestamp if
// present, otherwise the fallback strings parsed in loc. A nil loc means
// time.Local. Unresolvable events yield a *MissingTimestampError; the event
// still travels through reconciliation so that it is never silently dropped.
func (e AttendanceEvent) Instant(loc *time.Location) (time.Time, error) {
	if !e.RecordedAt.IsZero() {
		return e.RecordedAt, nil
	}
	if loc == nil {
		loc = time.Local
	}
	at, err := parseFallback(e.DateText, e.TimeText, loc)
	if err != nil {
		return time.Time{}, &MissingTimestampError{
			EmployeeID: e.EmployeeID,
			DateText:   e.DateText,
			TimeText:   e.TimeText,
			Cause:      err,
		}
	}
	return at, nil
}

// CanonicalEmployeeID returns the grouping key for an employee identifier:
// trimmed and case-folded, so " Alice " and "alice" reconcile together.
func CanonicalEmployeeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// =============================================================================
// SHIFT - Reconciled Entry/Exit pair
// =============================================================================

// Shift pairs one Entry with one Exit for an employee. At least one side is
// always non-nil. Shifts are transient: built per reconciliation run and
// discarded after reporting.
type Shift struct {
	EmployeeID string
	Entry      *AttendanceEvent
	Exit       *AttendanceEvent
}

// Closed reports whether the shift has both punches.
func (s Shift) Closed() bool { return s.Entry != nil && s.Exit != nil }

// Open reports whether the shift is an entry still awaiting its exit.
func (s Shift) Open() bool { return s.Entry != nil && s.Exit == nil }

// OrphanExit reports whether the shift is a stray exit with no entry.
func (s Shift) OrphanExit() bool { return s.Entry == nil && s.Exit != nil }

// =============================================================================
// TIME CONFIG - Rounding and lunch policy for one run
// =============================================================================

// TimeConfig carries the caller-supplied calculation policy. It is immutable
// for the duration of a run; the engine never reads settings from anywhere
// else. Validate before use: an invalid config is the one fatal precondition
// the engine enforces (spec'd bounds, not silently clamped).
type TimeConfig struct {
	RoundingEnabled bool
	RoundingMinutes int // [1,60]
	LunchEnabled    bool
	LunchMinutes    int // [1,180]
}

// Validate checks the configured bounds. Bounds apply even when the matching
// feature is disabled, so a half-toggled settings row is caught early.
func (c TimeConfig) Validate() error {
	if c.RoundingMinutes < 1 || c.RoundingMinutes > 60 {
		return &ConfigError{Field: "roundingMinutes", Value: c.RoundingMinutes, Min: 1, Max: 60}
	}
	if c.LunchMinutes < 1 || c.LunchMinutes > 180 {
		return &ConfigError{Field: "lunchMinutes", Value: c.LunchMinutes, Min: 1, Max: 180}
	}
	return nil
}

// =============================================================================
// HOUR BUCKETS - The four regulatory minute accumulators
// =============================================================================

// HourBuckets counts whole minutes per regulatory category. Before lunch
// deduction the sum always equals the floored shift duration; deduction only
// removes minutes, never creates them, and never drives a bucket negative.
type HourBuckets struct {
	OrdinaryDay   int
	OrdinaryNight int
	HolidayDay    int
	HolidayNight  int
}

// Total returns the sum of all four buckets, in minutes.
func (b HourBuckets) Total() int {
	return b.OrdinaryDay + b.OrdinaryNight + b.HolidayDay + b.HolidayNight
}

// Add returns the element-wise sum of two bucket sets.
func (b HourBuckets) Add(o HourBuckets) HourBuckets {
	return HourBuckets{
		OrdinaryDay:   b.OrdinaryDay + o.OrdinaryDay,
		OrdinaryNight: b.OrdinaryNight + o.OrdinaryNight,
		HolidayDay:    b.HolidayDay + o.HolidayDay,
		HolidayNight:  b.HolidayNight + o.HolidayNight,
	}
}

// IsZero reports whether every bucket is empty.
func (b HourBuckets) IsZero() bool { return b == HourBuckets{} }

// =============================================================================
// HOLIDAY CALENDAR - Injected pure collaborator
// =============================================================================

// HolidayCalendar answers "is this calendar date a Sunday or a designated
// holiday". Implementations must be pure: the engine calls it once per
// classified minute and never caches or mutates it. Only the year, month and
// day of the argument are significant.
type HolidayCalendar interface {
	IsHolidayOrSunday(date time.Time) bool
}
