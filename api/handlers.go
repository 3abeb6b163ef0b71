/*
handlers.go - HTTP API handlers for the attendance service

PURPOSE:
  Exposes punch ingestion, settings, holidays and the engine-backed reports
  via REST. Handlers parse HTTP, load the punch snapshot from the store, and
  delegate to the engine/report packages.

REQUEST FLOW (reports):
  1. Parse from/to filters
  2. Load settings, holidays and events from the store
  3. Build the holiday calendar
  4. Run the engine over the snapshot
  5. Serialize report rows

ERROR HANDLING:
  - 400: Validation errors, invalid input (including invalid settings -
         the engine's one fatal precondition is held at this boundary)
  - 404: Resource not found
  - 500: Store failures

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/warp/attendance-engine/calendar"
	"github.com/warp/attendance-engine/engine"
	"github.com/warp/attendance-engine/report"
	"github.com/warp/attendance-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    *sqlite.Store
	Location *time.Location

	// DefaultConfig applies until an admin saves settings.
	DefaultConfig engine.TimeConfig

	// Movable feasts resolved into every calendar built for a report.
	Movable []calendar.MovableFeast
}

// NewHandler creates a handler with the given store and parsing location.
func NewHandler(store *sqlite.Store, loc *time.Location, defaults engine.TimeConfig) *Handler {
	if loc == nil {
		loc = time.Local
	}
	return &Handler{
		Store:         store,
		Location:      loc,
		DefaultConfig: defaults,
		Movable:       calendar.CommonMovableFeasts(),
	}
}

// =============================================================================
// EVENT HANDLERS
// =============================================================================

// SubmitEvent stores one punch from the capture subsystem.
func (h *Handler) SubmitEvent(w http.ResponseWriter, r *http.Request) {
	var req SubmitEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	eventType := engine.EventType(req.EventType)
	if !eventType.Valid() {
		writeError(w, http.StatusBadRequest, "eventType must be \"Entry\" or \"Exit\"", nil)
		return
	}
	if req.EmployeeID == "" {
		writeError(w, http.StatusBadRequest, "employeeId is required", nil)
		return
	}

	rec := sqlite.EventRecord{
		EmployeeID: req.EmployeeID,
		EventType:  eventType,
		DateText:   req.Date,
		TimeText:   req.Time,
	}
	if req.RecordedAt != "" {
		at, err := time.Parse(time.RFC3339, req.RecordedAt)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid recordedAt (use RFC3339)", err)
			return
		}
		rec.RecordedAt = &at
	} else if req.Date == "" || req.Time == "" {
		writeError(w, http.StatusBadRequest, "Either recordedAt or date+time is required", nil)
		return
	}

	saved, err := h.Store.AppendEvent(r.Context(), rec)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to store event", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEventDTO(saved))
}

// ListEvents returns stored punches, optionally filtered by employee and
// from/to dates.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	filter, err := h.parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid filter", err)
		return
	}

	records, err := h.Store.ListEvents(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list events", err)
		return
	}

	dtos := make([]EventDTO, len(records))
	for i, rec := range records {
		dtos[i] = toEventDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// SETTINGS HANDLERS
// =============================================================================

// GetSettings returns the active time-calculation settings.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.activeConfig(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load settings", err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsDTO(cfg))
}

// PutSettings validates and stores new settings. Out-of-bounds values are
// rejected here so the engine never sees them.
func (h *Handler) PutSettings(w http.ResponseWriter, r *http.Request) {
	var dto SettingsDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	cfg := dto.toTimeConfig()
	if err := cfg.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid settings", err)
		return
	}
	if err := h.Store.SaveSettings(r.Context(), cfg); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save settings", err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsDTO(cfg))
}

// =============================================================================
// HOLIDAY HANDLERS
// =============================================================================

// ListHolidays returns the holiday table.
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.ListHolidays(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list holidays", err)
		return
	}

	dtos := make([]HolidayDTO, len(records))
	for i, rec := range records {
		date := fmt.Sprintf("%d/%d/%d", rec.Day, rec.Month, rec.Year)
		if rec.Year == 0 {
			date = fmt.Sprintf("%d/%d", rec.Day, rec.Month)
		}
		dtos[i] = HolidayDTO{
			ID:        rec.ID,
			Name:      rec.Name,
			Date:      date,
			Recurring: rec.Year == 0,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateHoliday adds one holiday from a strict D/M/YYYY date string.
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var dto HolidayDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	hol, err := calendar.ParseHoliday(dto.Name, dto.Date, dto.Recurring)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use D/M/YYYY)", err)
		return
	}

	saved, err := h.Store.SaveHoliday(r.Context(), sqlite.HolidayRecord{
		Name:  hol.Name,
		Day:   hol.Day,
		Month: int(hol.Month),
		Year:  hol.Year,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save holiday", err)
		return
	}
	dto.ID = saved.ID
	writeJSON(w, http.StatusCreated, dto)
}

// DeleteHoliday removes one holiday by ID.
func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Store.DeleteHoliday(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete holiday", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// ShiftDetailReport classifies every reconciled shift individually.
func (h *Handler) ShiftDetailReport(w http.ResponseWriter, r *http.Request) {
	shifts, cfg, cal, ok := h.reportInputs(w, r)
	if !ok {
		return
	}

	rows, err := report.BuildShiftDetail(shifts, cfg, cal, h.Location)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build report", err)
		return
	}

	dtos := make([]ShiftRowDTO, len(rows))
	for i, row := range rows {
		dtos[i] = toShiftRowDTO(row)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CategoryDetailReport returns one row per (employee, category).
func (h *Handler) CategoryDetailReport(w http.ResponseWriter, r *http.Request) {
	summary, ok := h.runSummary(w, r)
	if !ok {
		return
	}

	rows := report.BuildCategoryDetail(summary)
	dtos := make([]CategoryRowDTO, len(rows))
	for i, row := range rows {
		dtos[i] = CategoryRowDTO{
			EmployeeID: row.EmployeeID,
			Category:   string(row.Category),
			Minutes:    row.Minutes,
			Hours:      row.Hours.StringFixed(2),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SummaryReport returns one total line per employee.
func (h *Handler) SummaryReport(w http.ResponseWriter, r *http.Request) {
	summary, ok := h.runSummary(w, r)
	if !ok {
		return
	}

	rows := report.BuildSummary(summary)
	dtos := make([]SummaryRowDTO, len(rows))
	for i, row := range rows {
		dtos[i] = SummaryRowDTO{
			EmployeeID:    row.EmployeeID,
			Buckets:       toBucketsDTO(row.Buckets),
			TotalMinutes:  row.TotalMinutes,
			TotalHours:    row.TotalHours.StringFixed(2),
			SkippedShifts: row.SkippedShifts,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// SHARED PLUMBING
// =============================================================================

// parseFilter reads employee/from/to query params. from/to are inclusive /
// exclusive date bounds in D/M/YYYY, matching the domain's date order.
func (h *Handler) parseFilter(r *http.Request) (sqlite.EventFilter, error) {
	f := sqlite.EventFilter{EmployeeID: r.URL.Query().Get("employee")}
	if v := r.URL.Query().Get("from"); v != "" {
		year, month, day, err := engine.ParseDayMonthYear(v)
		if err != nil {
			return f, err
		}
		f.From = time.Date(year, month, day, 0, 0, 0, 0, h.Location)
	}
	if v := r.URL.Query().Get("to"); v != "" {
		year, month, day, err := engine.ParseDayMonthYear(v)
		if err != nil {
			return f, err
		}
		f.To = time.Date(year, month, day, 0, 0, 0, 0, h.Location).AddDate(0, 0, 1)
	}
	return f, nil
}

// activeConfig returns the stored settings, or the defaults when none are
// saved yet.
func (h *Handler) activeConfig(r *http.Request) (engine.TimeConfig, error) {
	cfg, err := h.Store.GetSettings(r.Context())
	if err != nil {
		return engine.TimeConfig{}, err
	}
	if cfg == nil {
		return h.DefaultConfig, nil
	}
	return *cfg, nil
}

// buildCalendar assembles the holiday calendar from the stored table plus
// the movable feasts, precomputed for the years the snapshot spans.
func (h *Handler) buildCalendar(r *http.Request, events []engine.AttendanceEvent) (engine.HolidayCalendar, error) {
	records, err := h.Store.ListHolidays(r.Context())
	if err != nil {
		return nil, err
	}

	holidays := make([]calendar.Holiday, len(records))
	for i, rec := range records {
		holidays[i] = calendar.Holiday{
			Name:  rec.Name,
			Day:   rec.Day,
			Month: time.Month(rec.Month),
			Year:  rec.Year,
		}
	}

	fromYear, toYear := yearSpan(events, h.Location)
	return calendar.NewTable(holidays, h.Movable, fromYear, toYear), nil
}

// yearSpan finds the calendar years touched by the snapshot, padded by one
// on each side so rounding across New Year's Eve stays covered.
func yearSpan(events []engine.AttendanceEvent, loc *time.Location) (int, int) {
	from, to := 0, 0
	for _, ev := range events {
		at, err := ev.Instant(loc)
		if err != nil {
			continue
		}
		y := at.In(loc).Year()
		if from == 0 || y < from {
			from = y
		}
		if y > to {
			to = y
		}
	}
	if from == 0 {
		y := time.Now().Year()
		return y - 1, y + 1
	}
	return from - 1, to + 1
}

// filterByWindow keeps punches whose resolved instant falls in [from, to),
// evaluated in the business zone. Back-dated fallback punches are ranged by
// their punched date text, not by when they were inserted. Punches with
// unresolvable instants stay in: they surface as error shifts in the audit
// trail rather than silently vanishing from ranged reports.
func filterByWindow(events []engine.AttendanceEvent, from, to time.Time, loc *time.Location) []engine.AttendanceEvent {
	if from.IsZero() && to.IsZero() {
		return events
	}
	kept := events[:0]
	for _, ev := range events {
		at, err := ev.Instant(loc)
		if err != nil {
			kept = append(kept, ev)
			continue
		}
		if !from.IsZero() && at.Before(from) {
			continue
		}
		if !to.IsZero() && !at.Before(to) {
			continue
		}
		kept = append(kept, ev)
	}
	return kept
}

// reportInputs loads everything a report needs: the reconciled shifts, the
// active config and the calendar. The from/to window is applied here, after
// instant resolution, so fallback-only punches are ranged by the date they
// carry rather than by insert time.
func (h *Handler) reportInputs(w http.ResponseWriter, r *http.Request) ([]engine.Shift, engine.TimeConfig, engine.HolidayCalendar, bool) {
	filter, err := h.parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid filter", err)
		return nil, engine.TimeConfig{}, nil, false
	}

	records, err := h.Store.ListEvents(r.Context(), sqlite.EventFilter{EmployeeID: filter.EmployeeID})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load events", err)
		return nil, engine.TimeConfig{}, nil, false
	}
	events := make([]engine.AttendanceEvent, len(records))
	for i, rec := range records {
		events[i] = rec.ToEvent()
	}
	events = filterByWindow(events, filter.From, filter.To, h.Location)

	cfg, err := h.activeConfig(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load settings", err)
		return nil, engine.TimeConfig{}, nil, false
	}

	cal, err := h.buildCalendar(r, events)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load holidays", err)
		return nil, engine.TimeConfig{}, nil, false
	}

	return engine.Reconcile(events, h.Location), cfg, cal, true
}

// runSummary runs the full engine pipeline for the summary-shaped reports.
func (h *Handler) runSummary(w http.ResponseWriter, r *http.Request) (*engine.Summary, bool) {
	shifts, cfg, cal, ok := h.reportInputs(w, r)
	if !ok {
		return nil, false
	}

	summary, err := engine.SummarizeByEmployee(shifts, cfg, cal, h.Location)
	if err != nil {
		// Stored settings are validated on save, so this indicates a bug.
		if errors.Is(err, engine.ErrInvalidTimeConfig) {
			writeError(w, http.StatusInternalServerError, "Stored settings are invalid", err)
			return nil, false
		}
		writeError(w, http.StatusInternalServerError, "Failed to summarize", err)
		return nil, false
	}
	return summary, true
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
