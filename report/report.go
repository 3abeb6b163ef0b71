/*
Package report builds the structured rows that external formatters render.

PURPOSE:
  Turns reconciled shifts and classified buckets into three report shapes:

  - Per-shift detail:    one row per shift, status and buckets included
  - Category detail:     one row per (employee, regulatory category)
  - Per-employee summary: summed buckets and decimal hour totals

  Locale-specific text and number rendering (and CSV/XLSX encoding) live
  outside this module; these rows are the boundary.

PRECISION:
  Payroll-facing hour totals use shopspring/decimal, never float64. Minutes
  divide by 60 at a fixed scale of 2, which is what the downstream payroll
  export consumes.
*/
package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/attendance-engine/engine"
)

// =============================================================================
// CATEGORIES
// =============================================================================

// Category names one of the four regulatory buckets.
type Category string

const (
	CategoryOrdinaryDay   Category = "ordinary_day"
	CategoryOrdinaryNight Category = "ordinary_night"
	CategoryHolidayDay    Category = "holiday_day"
	CategoryHolidayNight  Category = "holiday_night"
)

// Categories lists the four buckets in their fixed reporting (and lunch
// deduction priority) order.
func Categories() []Category {
	return []Category{
		CategoryOrdinaryDay,
		CategoryOrdinaryNight,
		CategoryHolidayDay,
		CategoryHolidayNight,
	}
}

// Minutes extracts the bucket matching c.
func Minutes(b engine.HourBuckets, c Category) int {
	switch c {
	case CategoryOrdinaryDay:
		return b.OrdinaryDay
	case CategoryOrdinaryNight:
		return b.OrdinaryNight
	case CategoryHolidayDay:
		return b.HolidayDay
	case CategoryHolidayNight:
		return b.HolidayNight
	}
	return 0
}

// sixty is the minutes-per-hour divisor, hoisted so every row shares it.
var sixty = decimal.NewFromInt(60)

// HoursFromMinutes converts a minute count to decimal hours at scale 2.
func HoursFromMinutes(minutes int) decimal.Decimal {
	return decimal.NewFromInt(int64(minutes)).DivRound(sixty, 2)
}

// =============================================================================
// PER-SHIFT DETAIL
// =============================================================================

// ShiftStatus tags how a shift came out of classification.
type ShiftStatus string

const (
	StatusClosed     ShiftStatus = "closed"
	StatusOpen       ShiftStatus = "open"
	StatusOrphanExit ShiftStatus = "orphan_exit"
	StatusError      ShiftStatus = "error"
)

// ShiftRow is one shift in the per-shift detail report. Entry/Exit carry the
// normalized (rounded) boundaries when resolvable, nil otherwise. Skipped
// shifts keep their reason in Note.
type ShiftRow struct {
	EmployeeID string
	Status     ShiftStatus
	Entry      *time.Time
	Exit       *time.Time
	Buckets    engine.HourBuckets
	Note       string
}

// BuildShiftDetail classifies every shift individually and returns one row
// per shift, in the reconciler's emission order. cfg must be valid; the
// error mirrors engine.SummarizeByEmployee's fatal precondition.
func BuildShiftDetail(shifts []engine.Shift, cfg engine.TimeConfig, cal engine.HolidayCalendar, loc *time.Location) ([]ShiftRow, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rows := make([]ShiftRow, 0, len(shifts))
	for _, s := range shifts {
		row := ShiftRow{EmployeeID: s.EmployeeID, Status: statusOf(s)}
		row.Entry = normalizedInstant(s.Entry, cfg, loc)
		row.Exit = normalizedInstant(s.Exit, cfg, loc)

		b, err := engine.ClassifyShift(s, cfg, cal, loc)
		switch {
		case err == nil:
			row.Buckets = b
		case engine.IsShiftSkip(err):
			row.Note = err.Error()
			if row.Status == StatusClosed {
				row.Status = StatusError
			}
		default:
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func statusOf(s engine.Shift) ShiftStatus {
	switch {
	case s.OrphanExit():
		return StatusOrphanExit
	case s.Open():
		return StatusOpen
	default:
		return StatusClosed
	}
}

// normalizedInstant resolves and rounds one punch boundary, rendered in the
// business zone so report rows line up with what classification saw.
func normalizedInstant(ev *engine.AttendanceEvent, cfg engine.TimeConfig, loc *time.Location) *time.Time {
	if ev == nil {
		return nil
	}
	if loc == nil {
		loc = time.Local
	}
	at, err := ev.Instant(loc)
	if err != nil {
		return nil
	}
	at = at.In(loc)
	if cfg.RoundingEnabled {
		at = engine.RoundToNearest(at, cfg.RoundingMinutes)
	}
	return &at
}

// =============================================================================
// CATEGORY-DISCRIMINATED DETAIL
// =============================================================================

// CategoryRow is one (employee, category) pair with its minute and decimal
// hour totals. Zero-minute categories are included so the report grid stays
// rectangular.
type CategoryRow struct {
	EmployeeID string
	Category   Category
	Minutes    int
	Hours      decimal.Decimal
}

// BuildCategoryDetail expands a summary into per-category rows, employees in
// sorted order, categories in fixed order.
func BuildCategoryDetail(summary *engine.Summary) []CategoryRow {
	rows := make([]CategoryRow, 0, len(summary.Totals)*4)
	for _, id := range sortedEmployees(summary) {
		b := summary.Totals[id]
		for _, c := range Categories() {
			m := Minutes(b, c)
			rows = append(rows, CategoryRow{
				EmployeeID: id,
				Category:   c,
				Minutes:    m,
				Hours:      HoursFromMinutes(m),
			})
		}
	}
	return rows
}

// =============================================================================
// PER-EMPLOYEE SUMMARY
// =============================================================================

// SummaryRow is one employee's total line.
type SummaryRow struct {
	EmployeeID    string
	Buckets       engine.HourBuckets
	TotalMinutes  int
	TotalHours    decimal.Decimal
	SkippedShifts int
}

// BuildSummary flattens a summary into per-employee rows in sorted employee
// order, with each employee's skipped-shift count for the audit column.
func BuildSummary(summary *engine.Summary) []SummaryRow {
	skipped := make(map[string]int)
	for _, s := range summary.Skipped {
		skipped[engine.CanonicalEmployeeID(s.Shift.EmployeeID)]++
	}

	rows := make([]SummaryRow, 0, len(summary.Totals))
	for _, id := range sortedEmployees(summary) {
		b := summary.Totals[id]
		rows = append(rows, SummaryRow{
			EmployeeID:    id,
			Buckets:       b,
			TotalMinutes:  b.Total(),
			TotalHours:    HoursFromMinutes(b.Total()),
			SkippedShifts: skipped[engine.CanonicalEmployeeID(id)],
		})
	}
	return rows
}

func sortedEmployees(summary *engine.Summary) []string {
	ids := make([]string, 0, len(summary.Totals))
	for id := range summary.Totals {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
