package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/attendance-engine/engine"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

var testLoc = time.UTC

// monday is a plain working Monday used across the engine tests.
var monday = time.Date(2025, time.March, 10, 0, 0, 0, 0, testLoc)

func at(day time.Time, hour, min int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, min, 0, 0, day.Location())
}

func entry(employeeID string, t time.Time) engine.AttendanceEvent {
	return engine.AttendanceEvent{EmployeeID: employeeID, Type: engine.EventEntry, RecordedAt: t}
}

func exit(employeeID string, t time.Time) engine.AttendanceEvent {
	return engine.AttendanceEvent{EmployeeID: employeeID, Type: engine.EventExit, RecordedAt: t}
}

// countPunches verifies the no-event-dropped invariant.
func countPunches(shifts []engine.Shift) int {
	n := 0
	for _, s := range shifts {
		if s.Entry != nil {
			n++
		}
		if s.Exit != nil {
			n++
		}
	}
	return n
}

// =============================================================================
// PAIRING STATE MACHINE
// =============================================================================

func TestReconcile_ClosedThenOpen(t *testing.T) {
	// GIVEN: Entry@08:00, Exit@17:00, Entry@18:00 for one employee
	// WHEN: Reconciling
	// THEN: Exactly one closed shift (08:00-17:00) and one open shift (18:00)

	events := []engine.AttendanceEvent{
		entry("emp-1", at(monday, 8, 0)),
		exit("emp-1", at(monday, 17, 0)),
		entry("emp-1", at(monday, 18, 0)),
	}

	shifts := engine.Reconcile(events, testLoc)
	require.Len(t, shifts, 2)

	assert.True(t, shifts[0].Closed())
	assert.Equal(t, at(monday, 8, 0), shifts[0].Entry.RecordedAt)
	assert.Equal(t, at(monday, 17, 0), shifts[0].Exit.RecordedAt)

	assert.True(t, shifts[1].Open())
	assert.Equal(t, at(monday, 18, 0), shifts[1].Entry.RecordedAt)
}

func TestReconcile_DoubleEntry(t *testing.T) {
	// GIVEN: Entry@08:00, Entry@09:00, Exit@17:00
	// WHEN: Reconciling
	// THEN: The 08:00 entry becomes an open orphan, 09:00-17:00 closes

	events := []engine.AttendanceEvent{
		entry("emp-1", at(monday, 8, 0)),
		entry("emp-1", at(monday, 9, 0)),
		exit("emp-1", at(monday, 17, 0)),
	}

	shifts := engine.Reconcile(events, testLoc)
	require.Len(t, shifts, 2)

	assert.True(t, shifts[0].Open())
	assert.Equal(t, at(monday, 8, 0), shifts[0].Entry.RecordedAt)

	assert.True(t, shifts[1].Closed())
	assert.Equal(t, at(monday, 9, 0), shifts[1].Entry.RecordedAt)
	assert.Equal(t, at(monday, 17, 0), shifts[1].Exit.RecordedAt)
}

func TestReconcile_OrphanExit(t *testing.T) {
	// GIVEN: A stray Exit before any Entry
	// WHEN: Reconciling
	// THEN: An orphan-exit shift is emitted; the following pair still closes

	events := []engine.AttendanceEvent{
		exit("emp-1", at(monday, 7, 0)),
		entry("emp-1", at(monday, 8, 0)),
		exit("emp-1", at(monday, 17, 0)),
	}

	shifts := engine.Reconcile(events, testLoc)
	require.Len(t, shifts, 2)

	assert.True(t, shifts[0].OrphanExit())
	assert.Equal(t, at(monday, 7, 0), shifts[0].Exit.RecordedAt)
	assert.True(t, shifts[1].Closed())
}

func TestReconcile_UnorderedInput(t *testing.T) {
	// Punches arrive out of order; reconciliation sorts per employee.
	events := []engine.AttendanceEvent{
		exit("emp-1", at(monday, 17, 0)),
		entry("emp-1", at(monday, 8, 0)),
	}

	shifts := engine.Reconcile(events, testLoc)
	require.Len(t, shifts, 1)
	assert.True(t, shifts[0].Closed())
}

func TestReconcile_NoEventDropped(t *testing.T) {
	// Every punch, however messy the stream, lands on exactly one shift.
	events := []engine.AttendanceEvent{
		exit("emp-1", at(monday, 6, 0)),
		entry("emp-1", at(monday, 8, 0)),
		entry("emp-1", at(monday, 9, 0)),
		exit("emp-1", at(monday, 17, 0)),
		entry("emp-1", at(monday, 18, 0)),
	}

	shifts := engine.Reconcile(events, testLoc)
	assert.Equal(t, len(events), countPunches(shifts))
}

// =============================================================================
// GROUPING
// =============================================================================

func TestReconcile_CaseInsensitiveTrimmedGrouping(t *testing.T) {
	// GIVEN: The same employee punched as " Alice " and "alice"
	// WHEN: Reconciling
	// THEN: Both punches land in one group and pair into one closed shift

	events := []engine.AttendanceEvent{
		entry(" Alice ", at(monday, 8, 0)),
		exit("alice", at(monday, 17, 0)),
	}

	shifts := engine.Reconcile(events, testLoc)
	require.Len(t, shifts, 1)
	assert.True(t, shifts[0].Closed())
	assert.Equal(t, "Alice", shifts[0].EmployeeID)
}

func TestReconcile_EmployeesIndependent(t *testing.T) {
	// Interleaved punches from two employees reconcile independently.
	events := []engine.AttendanceEvent{
		entry("bob", at(monday, 8, 0)),
		entry("amy", at(monday, 8, 30)),
		exit("bob", at(monday, 17, 0)),
		exit("amy", at(monday, 16, 30)),
	}

	shifts := engine.Reconcile(events, testLoc)
	require.Len(t, shifts, 2)

	// Groups come out in sorted key order.
	assert.Equal(t, "amy", shifts[0].EmployeeID)
	assert.True(t, shifts[0].Closed())
	assert.Equal(t, "bob", shifts[1].EmployeeID)
	assert.True(t, shifts[1].Closed())
}

func TestReconcile_TiesKeepInputOrder(t *testing.T) {
	// Two punches at the same instant must not error; stable sort keeps
	// input order, so Entry-then-Exit at the same minute still pairs.
	events := []engine.AttendanceEvent{
		entry("emp-1", at(monday, 8, 0)),
		exit("emp-1", at(monday, 8, 0)),
	}

	shifts := engine.Reconcile(events, testLoc)
	require.Len(t, shifts, 1)
	assert.True(t, shifts[0].Closed())
}

// =============================================================================
// FALLBACK INSTANTS
// =============================================================================

func TestReconcile_FallbackStringsOrdered(t *testing.T) {
	// Fallback-format punches sort by their parsed instant.
	events := []engine.AttendanceEvent{
		{EmployeeID: "emp-1", Type: engine.EventExit, DateText: "10/3/2025", TimeText: "17:00"},
		{EmployeeID: "emp-1", Type: engine.EventEntry, DateText: "10/3/2025", TimeText: "08:00"},
	}

	shifts := engine.Reconcile(events, testLoc)
	require.Len(t, shifts, 1)
	assert.True(t, shifts[0].Closed())
}

func TestReconcile_UnresolvableEventKeptAsOrphan(t *testing.T) {
	// GIVEN: One punch with garbage date text among good punches
	// WHEN: Reconciling
	// THEN: The good pair closes; the bad punch survives as its own shift

	events := []engine.AttendanceEvent{
		entry("emp-1", at(monday, 8, 0)),
		exit("emp-1", at(monday, 17, 0)),
		{EmployeeID: "emp-1", Type: engine.EventEntry, DateText: "not-a-date", TimeText: "08:00"},
	}

	shifts := engine.Reconcile(events, testLoc)
	require.Len(t, shifts, 2)
	assert.True(t, shifts[0].Closed())
	assert.True(t, shifts[1].Open())
	assert.Equal(t, "not-a-date", shifts[1].Entry.DateText)
	assert.Equal(t, len(events), countPunches(shifts))
}
