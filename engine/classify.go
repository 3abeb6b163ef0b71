/*
classify.go - Per-minute labor-time classification and lunch deduction

PURPOSE:
  Walks a shift's time interval one whole minute at a time and buckets each
  minute into one of four regulatory categories:

      (ordinary, day)    local hour in [6,19), non-holiday date
      (ordinary, night)  otherwise on a non-holiday date
      (holiday, day)     local hour in [6,19), Sunday or holiday
      (holiday, night)   otherwise on a Sunday or holiday

  The minute loop is deliberately brute force. Evaluating every minute on its
  own makes midnight crossings, day/night boundaries and multi-day shifts fall
  out with zero special cases, and shifts are bounded human work sessions, so
  O(duration) is fine. An O(segments) interval-math version is possible but
  not worth the boundary bookkeeping today.

LUNCH DEDUCTION:
  Shifts strictly longer than 8 hours lose the configured lunch interval,
  taken from the cheapest regulatory category first:
      ordinaryDay -> ordinaryNight -> holidayDay -> holidayNight
  That priority order preserves holiday/night minutes for payroll and is a
  business rule, not an implementation accident. Buckets never go negative;
  if they run out, the remainder is simply not deducted.
*/
package engine

import (
	"errors"
	"time"
)

// dayPeriodStart/End bound the "day" period: 06:00 inclusive to 19:00
// exclusive, local time. Night is the complement, wrapping midnight.
const (
	dayPeriodStartHour = 6
	dayPeriodEndHour   = 19
)

// lunchThresholdMinutes is the raw shift length a shift must exceed
// (strictly) before any lunch deduction applies. Exactly 480 gets none.
const lunchThresholdMinutes = 480

// Classify buckets every whole minute of [start, end) by regulatory
// category. The duration is truncated to whole minutes; a fractional tail is
// dropped, not rounded. Requires end > start, otherwise it fails with a
// *ZeroOrNegativeDurationError and no partial result.
func Classify(start, end time.Time, cal HolidayCalendar) (HourBuckets, error) {
	if !end.After(start) {
		return HourBuckets{}, &ZeroOrNegativeDurationError{Entry: start, Exit: end}
	}

	minutes := int(end.Sub(start) / time.Minute)
	var b HourBuckets
	for i := 0; i < minutes; i++ {
		at := start.Add(time.Duration(i) * time.Minute)
		day := at.Hour() >= dayPeriodStartHour && at.Hour() < dayPeriodEndHour
		special := cal.IsHolidayOrSunday(at)
		switch {
		case special && day:
			b.HolidayDay++
		case special:
			b.HolidayNight++
		case day:
			b.OrdinaryDay++
		default:
			b.OrdinaryNight++
		}
	}
	return b, nil
}

// DeductLunch removes up to minutes from b in fixed priority order, lowest
// regulatory cost first. Under-deduction is acceptable: when every bucket is
// exhausted the remainder is dropped rather than reported as an error.
func DeductLunch(b HourBuckets, minutes int) HourBuckets {
	remaining := minutes
	take := func(bucket *int) {
		if remaining <= 0 {
			return
		}
		n := remaining
		if *bucket < n {
			n = *bucket
		}
		*bucket -= n
		remaining -= n
	}
	take(&b.OrdinaryDay)
	take(&b.OrdinaryNight)
	take(&b.HolidayDay)
	take(&b.HolidayNight)
	return b
}

// ClassifyShift runs the full per-shift pipeline: resolve the punch instants,
// apply the rounding policy, classify minute by minute, then apply the lunch
// policy. Orphan shifts (open entry or stray exit) yield ErrOrphanShift: the
// shift is real and reportable, it just has no measurable interval.
//
// loc is the business zone: day/night hours and the Sunday/holiday date are
// evaluated in it regardless of the zone the authoritative timestamp was
// recorded in (stores commonly hand instants back in UTC). A nil loc means
// time.Local.
//
// cfg must already be validated; ClassifyShift does not re-check it.
func ClassifyShift(s Shift, cfg TimeConfig, cal HolidayCalendar, loc *time.Location) (HourBuckets, error) {
	if !s.Closed() {
		return HourBuckets{}, &orphanShiftError{shift: s}
	}
	if loc == nil {
		loc = time.Local
	}

	entryAt, err := s.Entry.Instant(loc)
	if err != nil {
		return HourBuckets{}, err
	}
	exitAt, err := s.Exit.Instant(loc)
	if err != nil {
		return HourBuckets{}, err
	}

	start := normalize(entryAt.In(loc), cfg)
	end := normalize(exitAt.In(loc), cfg)

	b, err := Classify(start, end, cal)
	if err != nil {
		var zerr *ZeroOrNegativeDurationError
		if errors.As(err, &zerr) {
			zerr.EmployeeID = s.EmployeeID
		}
		return HourBuckets{}, err
	}

	if cfg.LunchEnabled && b.Total() > lunchThresholdMinutes {
		b = DeductLunch(b, cfg.LunchMinutes)
	}
	return b, nil
}

// orphanShiftError tags an open or orphan-exit shift in the audit trail.
type orphanShiftError struct {
	shift Shift
}

func (e *orphanShiftError) Error() string {
	if e.shift.OrphanExit() {
		return "orphan shift: exit without matching entry"
	}
	return "orphan shift: entry without matching exit"
}

func (e *orphanShiftError) Unwrap() error { return ErrOrphanShift }
