/*
reconcile.go - Pairing raw punches into shifts

PURPOSE:
  Groups the event snapshot by employee, orders each group chronologically,
  and runs a two-state machine that pairs Entry with Exit. Real punch streams
  are messy - forgotten exits, double entries, stray exits - so the machine
  tolerates all of them by emitting orphan shifts rather than failing.

STATE MACHINE (per employee):
  AwaitingEntry --Entry--> AwaitingExit   (hold the entry)
  AwaitingExit  --Exit---> AwaitingEntry  (emit closed shift)
  AwaitingExit  --Entry--> AwaitingExit   (emit held entry as open shift,
                                           hold the new entry)
  AwaitingEntry --Exit---> AwaitingEntry  (emit orphan-exit shift)
  stream end with held entry             (emit open shift)

INVARIANTS:
  - Every event is attached to exactly one emitted shift
  - Per-employee output order follows chronological emission order
  - Sorting is stable: equal instants keep input order, no tie errors
*/
package engine

import (
	"sort"
	"strings"
	"time"
)

// resolvedEvent carries an event together with its resolved instant. Events
// whose instant cannot be resolved still participate (bad=true) so that the
// no-event-dropped invariant holds.
type resolvedEvent struct {
	ev  AttendanceEvent
	at  time.Time
	bad bool
}

// Reconcile pairs the full event snapshot into shifts. Grouping is by
// trimmed, case-folded employee ID; the emitted Shift carries the trimmed
// form of the first ID seen for the group. Employee groups are emitted in
// sorted key order so the output is deterministic. Events with unresolvable
// instants cannot be ordered, so each one becomes its own single-punch shift
// appended after the group's reconciled shifts; classification later attaches
// the MissingTimestampError to it.
func Reconcile(events []AttendanceEvent, loc *time.Location) []Shift {
	type group struct {
		displayID string
		resolved  []resolvedEvent
	}

	groups := make(map[string]*group)
	var order []string
	for _, ev := range events {
		key := CanonicalEmployeeID(ev.EmployeeID)
		g, ok := groups[key]
		if !ok {
			g = &group{displayID: trimmedID(ev.EmployeeID)}
			groups[key] = g
			order = append(order, key)
		}
		at, err := ev.Instant(loc)
		g.resolved = append(g.resolved, resolvedEvent{ev: ev, at: at, bad: err != nil})
	}
	sort.Strings(order)

	var shifts []Shift
	for _, key := range order {
		g := groups[key]

		good := make([]resolvedEvent, 0, len(g.resolved))
		var bad []resolvedEvent
		for _, re := range g.resolved {
			if re.bad {
				bad = append(bad, re)
				continue
			}
			good = append(good, re)
		}
		sort.SliceStable(good, func(i, j int) bool { return good[i].at.Before(good[j].at) })

		shifts = append(shifts, reconcileGroup(g.displayID, good)...)
		for _, re := range bad {
			shifts = append(shifts, singlePunchShift(g.displayID, re.ev))
		}
	}
	return shifts
}

// reconcileGroup runs the pairing state machine over one employee's ordered
// punches.
func reconcileGroup(employeeID string, ordered []resolvedEvent) []Shift {
	var shifts []Shift
	var held *AttendanceEvent // non-nil means AwaitingExit

	for i := range ordered {
		ev := ordered[i].ev
		switch ev.Type {
		case EventEntry:
			if held != nil {
				// Double entry: the held one never got its exit.
				shifts = append(shifts, Shift{EmployeeID: employeeID, Entry: held})
			}
			e := ev
			held = &e
		case EventExit:
			if held != nil {
				e := ev
				shifts = append(shifts, Shift{EmployeeID: employeeID, Entry: held, Exit: &e})
				held = nil
			} else {
				shifts = append(shifts, singlePunchShift(employeeID, ev))
			}
		default:
			// Unknown punch type: keep it visible as an orphan rather than
			// dropping it.
			shifts = append(shifts, singlePunchShift(employeeID, ev))
		}
	}

	if held != nil {
		shifts = append(shifts, Shift{EmployeeID: employeeID, Entry: held})
	}
	return shifts
}

func singlePunchShift(employeeID string, ev AttendanceEvent) Shift {
	e := ev
	if ev.Type == EventExit {
		return Shift{EmployeeID: employeeID, Exit: &e}
	}
	return Shift{EmployeeID: employeeID, Entry: &e}
}

func trimmedID(id string) string {
	if t := strings.TrimSpace(id); t != "" {
		return t
	}
	return id
}
