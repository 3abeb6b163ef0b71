package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// FALLBACK TIMESTAMP PARSING - Strict "D/M/YYYY" + "HH:MM[:SS]"
// =============================================================================
//
// Capture devices that miss the authoritative timestamp deliver a pair of
// strings instead. The field order is day/month/year - that is what the
// capture subsystem emits, and it is preserved here exactly. Parsing is
// strict: a string that does not name a real calendar date or wall-clock
// time is an error, never a normalized guess (no "32/1" becoming Feb 1).

// ParseDayMonthYear parses a "D/M/YYYY" date string into year, month, day.
// Single-digit day and month are accepted ("5/3/2025"). The result is
// validated against the real calendar, so "29/2/2025" fails.
func ParseDayMonthYear(s string) (int, time.Month, int, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 3 {
		return 0, 0, 0, &UnparseableDateError{Input: s}
	}
	day, err1 := strconv.Atoi(parts[0])
	month, err2 := strconv.Atoi(parts[1])
	year, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, 0, 0, &UnparseableDateError{Input: s}
	}
	if year < 1 || month < 1 || month > 12 || day < 1 || day > 31 {
		return 0, 0, 0, &UnparseableDateError{Input: s}
	}
	// time.Date normalizes out-of-range days; round-trip to reject them.
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
		return 0, 0, 0, &UnparseableDateError{Input: s}
	}
	return year, time.Month(month), day, nil
}

// parseClock parses "HH:MM" or "HH:MM:SS" into hour, minute, second.
func parseClock(s string) (int, int, int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("unparseable time %q (want HH:MM or HH:MM:SS)", s)
	}
	hour, err1 := strconv.Atoi(parts[0])
	min, err2 := strconv.Atoi(parts[1])
	sec := 0
	var err3 error
	if len(parts) == 3 {
		sec, err3 = strconv.Atoi(parts[2])
	}
	if err1 != nil || err2 != nil || err3 != nil ||
		hour < 0 || hour > 23 || min < 0 || min > 59 || sec < 0 || sec > 59 {
		return 0, 0, 0, fmt.Errorf("unparseable time %q (want HH:MM or HH:MM:SS)", s)
	}
	return hour, min, sec, nil
}

// parseFallback combines the date and time strings into an instant in loc.
func parseFallback(dateText, timeText string, loc *time.Location) (time.Time, error) {
	year, month, day, err := ParseDayMonthYear(dateText)
	if err != nil {
		return time.Time{}, err
	}
	hour, min, sec, err := parseClock(timeText)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(year, month, day, hour, min, sec, 0, loc), nil
}
