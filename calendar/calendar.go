/*
Package calendar provides concrete holiday calendars for the attendance
engine.

PURPOSE:
  Implements engine.HolidayCalendar: the pure "is this date a Sunday or a
  designated holiday" predicate. Two flavors of holiday are supported:

  - Fixed holidays: a month/day, either recurring every year (Year == 0) or
    bound to one specific year (e.g. a one-off municipal holiday).
  - Movable feasts: dates anchored to Easter by a day offset, computed per
    year so the table never needs per-year entries for them.

PURITY:
  Calendars are immutable after construction and safe for concurrent use -
  the engine calls IsHolidayOrSunday once per classified minute, possibly
  from parallel per-employee workers.

SEE ALSO:
  - engine/types.go: HolidayCalendar interface definition
*/
package calendar

import (
	"time"

	"github.com/warp/attendance-engine/engine"
)

// =============================================================================
// HOLIDAY DEFINITIONS
// =============================================================================

// Holiday is one fixed-date holiday. Year == 0 means it recurs every year on
// the same month/day.
type Holiday struct {
	Name  string
	Day   int
	Month time.Month
	Year  int
}

// ParseHoliday builds a recurring or single-year holiday from a "D/M/YYYY"
// date string, the same strict day/month/year order the punch fallback uses.
// recurring discards the parsed year.
func ParseHoliday(name, date string, recurring bool) (Holiday, error) {
	year, month, day, err := engine.ParseDayMonthYear(date)
	if err != nil {
		return Holiday{}, err
	}
	h := Holiday{Name: name, Day: day, Month: month, Year: year}
	if recurring {
		h.Year = 0
	}
	return h, nil
}

// MovableFeast is a holiday at a fixed day offset from Easter Sunday.
type MovableFeast struct {
	Name   string
	Offset int // days relative to Easter Sunday
}

// CommonMovableFeasts are the Easter-anchored holidays observed by most
// locales this system ships in.
func CommonMovableFeasts() []MovableFeast {
	return []MovableFeast{
		{Name: "Carnival", Offset: -47},
		{Name: "Good Friday", Offset: -2},
		{Name: "Corpus Christi", Offset: 60},
	}
}

// =============================================================================
// TABLE CALENDAR
// =============================================================================

type monthDay struct {
	month time.Month
	day   int
}

type fullDate struct {
	year  int
	month time.Month
	day   int
}

// Table answers the holiday-or-Sunday predicate from a fixed holiday set
// plus optional movable feasts. All movable feast dates are resolved up
// front in NewTable, so lookups are read-only and lock-free.
type Table struct {
	recurring     map[monthDay]string
	single        map[fullDate]string
	movableByYear map[fullDate]string
}

// NewTable builds a calendar from fixed holidays and movable feasts. Movable
// feast dates are precomputed for the years spanned by [fromYear, toYear];
// dates outside that range simply miss the movable set (fixed holidays and
// Sundays still apply).
func NewTable(holidays []Holiday, movable []MovableFeast, fromYear, toYear int) *Table {
	t := &Table{
		recurring:     make(map[monthDay]string),
		single:        make(map[fullDate]string),
		movableByYear: make(map[fullDate]string),
	}
	for _, h := range holidays {
		if h.Year == 0 {
			t.recurring[monthDay{h.Month, h.Day}] = h.Name
			continue
		}
		t.single[fullDate{h.Year, h.Month, h.Day}] = h.Name
	}
	for year := fromYear; year <= toYear; year++ {
		easter := EasterSunday(year)
		for _, f := range movable {
			d := easter.AddDate(0, 0, f.Offset)
			t.movableByYear[fullDate{d.Year(), d.Month(), d.Day()}] = f.Name
		}
	}
	return t
}

// IsHolidayOrSunday implements engine.HolidayCalendar.
func (t *Table) IsHolidayOrSunday(date time.Time) bool {
	if date.Weekday() == time.Sunday {
		return true
	}
	_, name := t.holidayName(date)
	return name != ""
}

// HolidayName returns the designated holiday name for a date, if any.
// Sundays without a designated holiday return ok=false.
func (t *Table) HolidayName(date time.Time) (string, bool) {
	ok, name := t.holidayName(date)
	return name, ok
}

func (t *Table) holidayName(date time.Time) (bool, string) {
	fd := fullDate{date.Year(), date.Month(), date.Day()}
	if name, ok := t.single[fd]; ok {
		return true, name
	}
	if name, ok := t.movableByYear[fd]; ok {
		return true, name
	}
	if name, ok := t.recurring[monthDay{date.Month(), date.Day()}]; ok {
		return true, name
	}
	return false, ""
}

var _ engine.HolidayCalendar = (*Table)(nil)

// =============================================================================
// SUNDAYS-ONLY CALENDAR
// =============================================================================

// SundaysOnly is the zero-config calendar: no designated holidays, Sundays
// still count as special. Useful for callers without a holiday table and as
// the test default.
type SundaysOnly struct{}

func (SundaysOnly) IsHolidayOrSunday(date time.Time) bool {
	return date.Weekday() == time.Sunday
}

var _ engine.HolidayCalendar = SundaysOnly{}

// =============================================================================
// EASTER COMPUTUS
// =============================================================================

// EasterSunday returns Easter Sunday for a year in the Gregorian calendar
// (anonymous Gregorian computus). The result is at midnight UTC; only the
// calendar date is meaningful.
func EasterSunday(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}
