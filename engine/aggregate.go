/*
aggregate.go - Per-employee summary with audit trail

PURPOSE:
  Runs the full classification pipeline over a reconciled shift list and sums
  buckets per employee. Shifts that cannot be classified (orphans, missing
  timestamps, rounded-to-nothing durations) contribute no minutes but are
  recorded in the summary's audit trail - skipped, never discarded.

CONCURRENCY:
  Classification has no cross-employee dependency, so employee groups run on
  parallel worker goroutines. Each worker reads only its own shift slice and
  writes only its own result slot; the merge happens after all workers are
  done. The whole call remains synchronous from the caller's view - no
  cancellation plumbing, the work is bounded by one punch history per
  employee.
*/
package engine

import (
	"sort"
	"sync"
	"time"
)

// SkippedShift records one shift excluded from the totals and why.
type SkippedShift struct {
	Shift  Shift
	Reason error
}

// Summary is the per-employee aggregation result plus its audit trail.
type Summary struct {
	// Totals maps the display employee ID to summed buckets across all of
	// that employee's classifiable shifts.
	Totals map[string]HourBuckets

	// Skipped lists every shift that contributed nothing, with its reason,
	// ordered by employee then by original shift order.
	Skipped []SkippedShift
}

// SummarizeByEmployee classifies every shift and sums buckets per employee.
// The only fatal error is an invalid cfg, rejected before any shift is
// touched; every per-shift failure lands in Summary.Skipped instead.
func SummarizeByEmployee(shifts []Shift, cfg TimeConfig, cal HolidayCalendar, loc *time.Location) (*Summary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	byEmployee := make(map[string][]Shift)
	var keys []string
	for _, s := range shifts {
		key := CanonicalEmployeeID(s.EmployeeID)
		if _, ok := byEmployee[key]; !ok {
			keys = append(keys, key)
		}
		byEmployee[key] = append(byEmployee[key], s)
	}
	sort.Strings(keys)

	type result struct {
		displayID string
		total     HourBuckets
		skipped   []SkippedShift
	}

	results := make([]result, len(keys))
	var wg sync.WaitGroup
	for i, key := range keys {
		wg.Add(1)
		go func(i int, group []Shift) {
			defer wg.Done()
			r := result{displayID: trimmedID(group[0].EmployeeID)}
			for _, s := range group {
				b, err := ClassifyShift(s, cfg, cal, loc)
				if err != nil {
					r.skipped = append(r.skipped, SkippedShift{Shift: s, Reason: err})
					continue
				}
				r.total = r.total.Add(b)
			}
			results[i] = r
		}(i, byEmployee[key])
	}
	wg.Wait()

	summary := &Summary{Totals: make(map[string]HourBuckets, len(keys))}
	for _, r := range results {
		// Employees whose every shift was skipped still appear with a zero
		// total so the report surface shows them.
		summary.Totals[r.displayID] = r.total
		summary.Skipped = append(summary.Skipped, r.skipped...)
	}
	return summary, nil
}

// SummarizeEvents is the end-to-end convenience path: reconcile the raw punch
// snapshot, then summarize. This is what report surfaces call.
func SummarizeEvents(events []AttendanceEvent, cfg TimeConfig, cal HolidayCalendar, loc *time.Location) (*Summary, error) {
	return SummarizeByEmployee(Reconcile(events, loc), cfg, cal, loc)
}
