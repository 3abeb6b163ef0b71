/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication, decoupling the internal
  engine/report types from the external contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.
*/
package api

import (
	"time"

	"github.com/warp/attendance-engine/engine"
	"github.com/warp/attendance-engine/report"
	"github.com/warp/attendance-engine/store/sqlite"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// EVENTS
// =============================================================================

// SubmitEventRequest is one punch from the capture subsystem. Either
// recorded_at (RFC3339) or the date/time fallback pair must be present.
type SubmitEventRequest struct {
	EmployeeID string `json:"employeeId"`
	EventType  string `json:"eventType"` // "Entry" or "Exit"
	RecordedAt string `json:"recordedAt,omitempty"`
	Date       string `json:"date,omitempty"` // "D/M/YYYY"
	Time       string `json:"time,omitempty"` // "HH:MM" or "HH:MM:SS"
}

// EventDTO is one stored punch in responses.
type EventDTO struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employeeId"`
	EventType  string `json:"eventType"`
	RecordedAt string `json:"recordedAt,omitempty"`
	Date       string `json:"date,omitempty"`
	Time       string `json:"time,omitempty"`
	CreatedAt  string `json:"createdAt"`
}

func toEventDTO(rec sqlite.EventRecord) EventDTO {
	dto := EventDTO{
		ID:         rec.ID,
		EmployeeID: rec.EmployeeID,
		EventType:  string(rec.EventType),
		Date:       rec.DateText,
		Time:       rec.TimeText,
		CreatedAt:  rec.CreatedAt.Format(time.RFC3339),
	}
	if rec.RecordedAt != nil {
		dto.RecordedAt = rec.RecordedAt.Format(time.RFC3339)
	}
	return dto
}

// =============================================================================
// SETTINGS
// =============================================================================

// SettingsDTO carries the time-calculation settings in the external naming.
type SettingsDTO struct {
	Rounding     bool `json:"calc_rounding"`
	RoundingMins int  `json:"calc_roundingMins"`
	Lunch        bool `json:"calc_lunch"`
	LunchMins    int  `json:"calc_lunchMins"`
}

func toSettingsDTO(cfg engine.TimeConfig) SettingsDTO {
	return SettingsDTO{
		Rounding:     cfg.RoundingEnabled,
		RoundingMins: cfg.RoundingMinutes,
		Lunch:        cfg.LunchEnabled,
		LunchMins:    cfg.LunchMinutes,
	}
}

func (d SettingsDTO) toTimeConfig() engine.TimeConfig {
	return engine.TimeConfig{
		RoundingEnabled: d.Rounding,
		RoundingMinutes: d.RoundingMins,
		LunchEnabled:    d.Lunch,
		LunchMinutes:    d.LunchMins,
	}
}

// =============================================================================
// HOLIDAYS
// =============================================================================

// HolidayDTO is one holiday table entry. Recurring entries omit the year.
type HolidayDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Date      string `json:"date"` // "D/M/YYYY"; year ignored when recurring
	Recurring bool   `json:"recurring"`
}

// =============================================================================
// REPORTS
// =============================================================================

// BucketsDTO is the four-way minute split.
type BucketsDTO struct {
	OrdinaryDay   int `json:"ordinaryDay"`
	OrdinaryNight int `json:"ordinaryNight"`
	HolidayDay    int `json:"holidayDay"`
	HolidayNight  int `json:"holidayNight"`
}

func toBucketsDTO(b engine.HourBuckets) BucketsDTO {
	return BucketsDTO{
		OrdinaryDay:   b.OrdinaryDay,
		OrdinaryNight: b.OrdinaryNight,
		HolidayDay:    b.HolidayDay,
		HolidayNight:  b.HolidayNight,
	}
}

// ShiftRowDTO is one row of the per-shift detail report.
type ShiftRowDTO struct {
	EmployeeID string     `json:"employeeId"`
	Status     string     `json:"status"`
	Entry      string     `json:"entry,omitempty"`
	Exit       string     `json:"exit,omitempty"`
	Buckets    BucketsDTO `json:"buckets"`
	Note       string     `json:"note,omitempty"`
}

func toShiftRowDTO(row report.ShiftRow) ShiftRowDTO {
	dto := ShiftRowDTO{
		EmployeeID: row.EmployeeID,
		Status:     string(row.Status),
		Buckets:    toBucketsDTO(row.Buckets),
		Note:       row.Note,
	}
	if row.Entry != nil {
		dto.Entry = row.Entry.Format(time.RFC3339)
	}
	if row.Exit != nil {
		dto.Exit = row.Exit.Format(time.RFC3339)
	}
	return dto
}

// CategoryRowDTO is one row of the category-discriminated detail report.
// Hours is a decimal string so clients never see binary float artifacts.
type CategoryRowDTO struct {
	EmployeeID string `json:"employeeId"`
	Category   string `json:"category"`
	Minutes    int    `json:"minutes"`
	Hours      string `json:"hours"`
}

// SummaryRowDTO is one employee's total line.
type SummaryRowDTO struct {
	EmployeeID    string     `json:"employeeId"`
	Buckets       BucketsDTO `json:"buckets"`
	TotalMinutes  int        `json:"totalMinutes"`
	TotalHours    string     `json:"totalHours"`
	SkippedShifts int        `json:"skippedShifts"`
}
