package engine

import "time"

// =============================================================================
// TIME NORMALIZER - Punch rounding policy
// =============================================================================

// RoundToNearest rounds t to the nearest multiple of intervalMinutes measured
// from the zero time, with exact half-intervals rounding up. time.Time.Round
// gives exactly those semantics, so this stays a thin wrapper; the name keeps
// the policy grepable. Non-positive intervals are identity (Validate rejects
// them before any shift is processed).
//
// Rounding is applied independently to a shift's entry and exit; it never
// reorders or merges shifts. If rounding pushes exit at-or-before entry the
// shift is NOT clamped here - classification reports it explicitly.
func RoundToNearest(t time.Time, intervalMinutes int) time.Time {
	if intervalMinutes <= 0 {
		return t
	}
	return t.Round(time.Duration(intervalMinutes) * time.Minute)
}

// normalize applies the configured rounding policy to one instant.
func normalize(t time.Time, cfg TimeConfig) time.Time {
	if !cfg.RoundingEnabled {
		return t
	}
	return RoundToNearest(t, cfg.RoundingMinutes)
}
