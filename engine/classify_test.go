package engine_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/attendance-engine/engine"
)

// sundaysOnly is the test calendar: Sundays special, nothing else.
type sundaysOnly struct{}

func (sundaysOnly) IsHolidayOrSunday(d time.Time) bool { return d.Weekday() == time.Sunday }

// sunday precedes the shared test monday.
var sunday = monday.AddDate(0, 0, -1)

// noPolicy is a valid config with both features disabled.
var noPolicy = engine.TimeConfig{RoundingMinutes: 15, LunchMinutes: 60}

func closedShift(entryAt, exitAt time.Time) engine.Shift {
	e := entry("emp-1", entryAt)
	x := exit("emp-1", exitAt)
	return engine.Shift{EmployeeID: "emp-1", Entry: &e, Exit: &x}
}

// =============================================================================
// PER-MINUTE CLASSIFICATION
// =============================================================================

func TestClassify_SumEqualsFlooredDuration(t *testing.T) {
	// The four buckets always partition the floored shift duration.
	start := at(monday, 8, 0)
	end := at(monday, 17, 30).Add(45 * time.Second) // 570m45s -> 570 whole minutes

	b, err := engine.Classify(start, end, sundaysOnly{})
	require.NoError(t, err)
	assert.Equal(t, 570, b.Total())
}

func TestClassify_DayNightBoundary(t *testing.T) {
	// GIVEN: The two minutes straddling 19:00 on a non-holiday date
	// THEN: 18:59 is ordinary day, 19:00 is ordinary night

	b, err := engine.Classify(at(monday, 18, 59), at(monday, 19, 1), sundaysOnly{})
	require.NoError(t, err)
	assert.Equal(t, engine.HourBuckets{OrdinaryDay: 1, OrdinaryNight: 1}, b)
}

func TestClassify_MorningBoundary(t *testing.T) {
	// 05:59 is night, 06:00 is day.
	b, err := engine.Classify(at(monday, 5, 59), at(monday, 6, 1), sundaysOnly{})
	require.NoError(t, err)
	assert.Equal(t, engine.HourBuckets{OrdinaryDay: 1, OrdinaryNight: 1}, b)
}

func TestClassify_SundayNightIntoMonday(t *testing.T) {
	// GIVEN: Entry Sunday 20:00, exit Monday 02:00, Sunday special
	// THEN: 240 holiday-night minutes (Sunday) + 120 ordinary-night (Monday)

	b, err := engine.Classify(at(sunday, 20, 0), at(monday, 2, 0), sundaysOnly{})
	require.NoError(t, err)
	assert.Equal(t, engine.HourBuckets{HolidayNight: 240, OrdinaryNight: 120}, b)
}

func TestClassify_MultiDayShift(t *testing.T) {
	// A 48h shift needs no special-casing: per-minute evaluation covers it.
	b, err := engine.Classify(at(monday, 0, 0), at(monday.AddDate(0, 0, 2), 0, 0), sundaysOnly{})
	require.NoError(t, err)
	assert.Equal(t, 2880, b.Total())
	// Two non-special days: 2x13h day period, 2x11h night period.
	assert.Equal(t, 1560, b.OrdinaryDay)
	assert.Equal(t, 1320, b.OrdinaryNight)
}

func TestClassify_ZeroDurationFails(t *testing.T) {
	_, err := engine.Classify(at(monday, 8, 0), at(monday, 8, 0), sundaysOnly{})
	assert.ErrorIs(t, err, engine.ErrZeroOrNegativeDuration)
}

func TestClassify_NegativeDurationFails(t *testing.T) {
	_, err := engine.Classify(at(monday, 17, 0), at(monday, 8, 0), sundaysOnly{})
	assert.ErrorIs(t, err, engine.ErrZeroOrNegativeDuration)
}

func TestClassify_Idempotent(t *testing.T) {
	// Same inputs, bit-identical outputs.
	b1, err1 := engine.Classify(at(sunday, 20, 0), at(monday, 2, 0), sundaysOnly{})
	b2, err2 := engine.Classify(at(sunday, 20, 0), at(monday, 2, 0), sundaysOnly{})
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, b1, b2)
}

// =============================================================================
// LUNCH DEDUCTION
// =============================================================================

func TestDeductLunch_PriorityOrder(t *testing.T) {
	// Deduction drains ordinaryDay first, then ordinaryNight, then
	// holidayDay, then holidayNight.
	b := engine.HourBuckets{OrdinaryDay: 30, OrdinaryNight: 20, HolidayDay: 10, HolidayNight: 10}

	got := engine.DeductLunch(b, 55)
	assert.Equal(t, engine.HourBuckets{OrdinaryDay: 0, OrdinaryNight: 0, HolidayDay: 5, HolidayNight: 10}, got)
}

func TestDeductLunch_UnderDeduction(t *testing.T) {
	// When every bucket is exhausted the remainder is dropped; buckets never
	// go negative.
	b := engine.HourBuckets{OrdinaryDay: 10, OrdinaryNight: 5}

	got := engine.DeductLunch(b, 120)
	assert.Equal(t, engine.HourBuckets{}, got)
}

func TestClassifyShift_LunchThresholdExactly480(t *testing.T) {
	// GIVEN: A shift totaling exactly 480 minutes and lunch enabled
	// THEN: No deduction - the gate is strictly greater than 480

	cfg := engine.TimeConfig{RoundingMinutes: 15, LunchEnabled: true, LunchMinutes: 60}
	b, err := engine.ClassifyShift(closedShift(at(monday, 8, 0), at(monday, 16, 0)), cfg, sundaysOnly{}, testLoc)
	require.NoError(t, err)
	assert.Equal(t, 480, b.Total())
}

func TestClassifyShift_LunchThreshold481(t *testing.T) {
	// 481 minutes crosses the gate: 60 minutes come off ordinaryDay.
	cfg := engine.TimeConfig{RoundingMinutes: 15, LunchEnabled: true, LunchMinutes: 60}
	b, err := engine.ClassifyShift(closedShift(at(monday, 8, 0), at(monday, 16, 1)), cfg, sundaysOnly{}, testLoc)
	require.NoError(t, err)
	assert.Equal(t, engine.HourBuckets{OrdinaryDay: 421}, b)
}

func TestClassifyShift_LunchFallsThroughToNight(t *testing.T) {
	// GIVEN: 17:00 -> 02:30 next day (570m): 120 day minutes, 450 night
	// WHEN: Deducting a 150-minute lunch
	// THEN: All 120 day minutes go first, the remaining 30 come off night

	cfg := engine.TimeConfig{RoundingMinutes: 15, LunchEnabled: true, LunchMinutes: 150}
	b, err := engine.ClassifyShift(closedShift(at(monday, 17, 0), at(monday.AddDate(0, 0, 1), 2, 30)), cfg, sundaysOnly{}, testLoc)
	require.NoError(t, err)
	assert.Equal(t, engine.HourBuckets{OrdinaryDay: 0, OrdinaryNight: 420}, b)
}

func TestClassifyShift_LunchDisabled(t *testing.T) {
	cfg := engine.TimeConfig{RoundingMinutes: 15, LunchMinutes: 60}
	b, err := engine.ClassifyShift(closedShift(at(monday, 8, 0), at(monday, 18, 0)), cfg, sundaysOnly{}, testLoc)
	require.NoError(t, err)
	assert.Equal(t, 600, b.Total())
}

// =============================================================================
// SHIFT-LEVEL PIPELINE
// =============================================================================

func TestClassifyShift_RoundingCollapsesShift(t *testing.T) {
	// GIVEN: A 4-minute shift that 15-minute rounding collapses to nothing
	// THEN: Explicit failure, not a silent clamp

	cfg := engine.TimeConfig{RoundingEnabled: true, RoundingMinutes: 15, LunchMinutes: 60}
	_, err := engine.ClassifyShift(closedShift(at(monday, 8, 8), at(monday, 8, 12)), cfg, sundaysOnly{}, testLoc)
	assert.ErrorIs(t, err, engine.ErrZeroOrNegativeDuration)
}

func TestClassifyShift_RoundingApplied(t *testing.T) {
	// 07:58 -> 16:53 with 15-minute rounding becomes 08:00 -> 17:00.
	cfg := engine.TimeConfig{RoundingEnabled: true, RoundingMinutes: 15, LunchMinutes: 60}
	b, err := engine.ClassifyShift(closedShift(at(monday, 7, 58), at(monday, 16, 53)), cfg, sundaysOnly{}, testLoc)
	require.NoError(t, err)
	assert.Equal(t, 540, b.Total())
}

func TestClassifyShift_OpenShift(t *testing.T) {
	e := entry("emp-1", at(monday, 8, 0))
	s := engine.Shift{EmployeeID: "emp-1", Entry: &e}

	_, err := engine.ClassifyShift(s, noPolicy, sundaysOnly{}, testLoc)
	assert.ErrorIs(t, err, engine.ErrOrphanShift)
}

func TestClassifyShift_OrphanExit(t *testing.T) {
	x := exit("emp-1", at(monday, 17, 0))
	s := engine.Shift{EmployeeID: "emp-1", Exit: &x}

	_, err := engine.ClassifyShift(s, noPolicy, sundaysOnly{}, testLoc)
	assert.ErrorIs(t, err, engine.ErrOrphanShift)
}

func TestClassifyShift_BusinessZoneDayPeriod(t *testing.T) {
	// GIVEN: A punch pair recorded in UTC for a UTC-5 site,
	//        Mon 23:00 -> Tue 00:00 UTC, which is local Mon 18:00 -> 19:00
	// THEN: The hour buckets follow the business zone: one day minute block,
	//       not night

	businessZone := time.FixedZone("UTC-5", -5*60*60)
	s := closedShift(at(monday, 23, 0), at(monday.AddDate(0, 0, 1), 0, 0))

	b, err := engine.ClassifyShift(s, noPolicy, sundaysOnly{}, businessZone)
	require.NoError(t, err)
	assert.Equal(t, engine.HourBuckets{OrdinaryDay: 60}, b)
}

func TestClassifyShift_BusinessZoneHolidayDate(t *testing.T) {
	// Mon 01:00 -> 02:00 UTC is still Sunday 20:00 -> 21:00 at a UTC-5
	// site, so the Sunday premium applies there.
	businessZone := time.FixedZone("UTC-5", -5*60*60)
	s := closedShift(at(monday, 1, 0), at(monday, 2, 0))

	b, err := engine.ClassifyShift(s, noPolicy, sundaysOnly{}, businessZone)
	require.NoError(t, err)
	assert.Equal(t, engine.HourBuckets{HolidayNight: 60}, b)
}

func TestClassifyShift_MissingTimestamp(t *testing.T) {
	e := engine.AttendanceEvent{EmployeeID: "emp-1", Type: engine.EventEntry, DateText: "32/1/2025", TimeText: "08:00"}
	x := exit("emp-1", at(monday, 17, 0))
	s := engine.Shift{EmployeeID: "emp-1", Entry: &e, Exit: &x}

	_, err := engine.ClassifyShift(s, noPolicy, sundaysOnly{}, testLoc)
	assert.ErrorIs(t, err, engine.ErrMissingTimestamp)

	var merr *engine.MissingTimestampError
	require.True(t, errors.As(err, &merr))
	assert.Equal(t, "32/1/2025", merr.DateText)
}
