/*
Package sqlite provides the SQLite-backed persistence for the attendance
service.

PURPOSE:
  Stores the raw punch log, the holiday table, and the time-calculation
  settings. The engine itself never touches this package - the API layer
  loads a snapshot here and hands plain values to the engine.

APPEND-ONLY ENFORCEMENT:
  attendance_events is an append-only punch log:
  - No UPDATE statements on attendance_events
  - No DELETE statements on attendance_events
  Corrections are new punches; reconciliation tolerates the mess.

KEY TABLES:
  attendance_events: Immutable punch log (authoritative or fallback instants)
  holidays:          Designated holidays (recurring or single-year)
  time_settings:     Single-row rounding/lunch configuration

WAL MODE:
  SQLite is opened with WAL for better read concurrency while punches are
  being appended.

USAGE:
  store, err := sqlite.New("./data/attendance.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/attendance-engine/engine"
)

// Store implements punch, holiday and settings persistence using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS attendance_events (
		id           TEXT PRIMARY KEY,
		employee_id  TEXT NOT NULL,
		event_type   TEXT NOT NULL CHECK (event_type IN ('Entry', 'Exit')),
		recorded_at  TIMESTAMP,
		date_text    TEXT NOT NULL DEFAULT '',
		time_text    TEXT NOT NULL DEFAULT '',
		created_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_events_employee
		ON attendance_events(employee_id, recorded_at);

	CREATE TABLE IF NOT EXISTS holidays (
		id     TEXT PRIMARY KEY,
		name   TEXT NOT NULL,
		day    INTEGER NOT NULL,
		month  INTEGER NOT NULL,
		year   INTEGER NOT NULL DEFAULT 0
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_holidays_date
		ON holidays(year, month, day);

	CREATE TABLE IF NOT EXISTS time_settings (
		id               INTEGER PRIMARY KEY CHECK (id = 1),
		rounding_enabled INTEGER NOT NULL,
		rounding_minutes INTEGER NOT NULL,
		lunch_enabled    INTEGER NOT NULL,
		lunch_minutes    INTEGER NOT NULL,
		updated_at       TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// ATTENDANCE EVENTS - Append-only punch log
// =============================================================================

// EventRecord is one stored punch. RecordedAt is nil for fallback-only
// punches, mirroring engine.AttendanceEvent's zero value.
type EventRecord struct {
	ID         string
	EmployeeID string
	EventType  engine.EventType
	RecordedAt *time.Time
	DateText   string
	TimeText   string
	CreatedAt  time.Time
}

// ToEvent converts the record into the engine's input type.
func (r EventRecord) ToEvent() engine.AttendanceEvent {
	ev := engine.AttendanceEvent{
		EmployeeID: r.EmployeeID,
		Type:       r.EventType,
		DateText:   r.DateText,
		TimeText:   r.TimeText,
	}
	if r.RecordedAt != nil {
		ev.RecordedAt = *r.RecordedAt
	}
	return ev
}

// AppendEvent stores one punch. An empty ID gets a generated UUID; the
// generated ID is written back into the passed record's copy and returned.
func (s *Store) AppendEvent(ctx context.Context, rec EventRecord) (EventRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attendance_events (id, employee_id, event_type, recorded_at, date_text, time_text, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.EmployeeID, string(rec.EventType), rec.RecordedAt,
		rec.DateText, rec.TimeText, rec.CreatedAt)
	if err != nil {
		return EventRecord{}, fmt.Errorf("failed to append event: %w", err)
	}
	return rec, nil
}

// EventFilter narrows ListEvents. Zero values mean "no constraint". From/To
// filter on the authoritative instant when present, otherwise on the insert
// time - good enough for browsing the raw punch log. Report windows are
// applied after instant resolution instead, so back-dated fallback punches
// land in the window their date text names.
type EventFilter struct {
	EmployeeID string
	From, To   time.Time
}

// ListEvents returns punches matching the filter, oldest first by insert
// order. The engine re-sorts per employee by resolved instant, so insert
// order here doubles as the stable tiebreaker the reconciler needs.
func (s *Store) ListEvents(ctx context.Context, f EventFilter) ([]EventRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, employee_id, event_type, recorded_at, date_text, time_text, created_at
		FROM attendance_events WHERE 1=1`
	var args []any
	if f.EmployeeID != "" {
		query += ` AND LOWER(TRIM(employee_id)) = ?`
		args = append(args, engine.CanonicalEmployeeID(f.EmployeeID))
	}
	if !f.From.IsZero() {
		query += ` AND COALESCE(recorded_at, created_at) >= ?`
		args = append(args, f.From)
	}
	if !f.To.IsZero() {
		query += ` AND COALESCE(recorded_at, created_at) < ?`
		args = append(args, f.To)
	}
	query += ` ORDER BY created_at, rowid`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var records []EventRecord
	for rows.Next() {
		var rec EventRecord
		var eventType string
		var recordedAt sql.NullTime
		if err := rows.Scan(&rec.ID, &rec.EmployeeID, &eventType, &recordedAt,
			&rec.DateText, &rec.TimeText, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		rec.EventType = engine.EventType(eventType)
		if recordedAt.Valid {
			t := recordedAt.Time
			rec.RecordedAt = &t
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// =============================================================================
// HOLIDAYS
// =============================================================================

// HolidayRecord is one stored holiday. Year 0 means recurring yearly.
type HolidayRecord struct {
	ID    string
	Name  string
	Day   int
	Month int
	Year  int
}

// SaveHoliday inserts or updates a holiday. An empty ID gets a generated
// UUID.
func (s *Store) SaveHoliday(ctx context.Context, rec HolidayRecord) (HolidayRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO holidays (id, name, day, month, year)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name=excluded.name, day=excluded.day,
			month=excluded.month, year=excluded.year`,
		rec.ID, rec.Name, rec.Day, rec.Month, rec.Year)
	if err != nil {
		return HolidayRecord{}, fmt.Errorf("failed to save holiday: %w", err)
	}
	return rec, nil
}

// ListHolidays returns all holidays, recurring first, then by date.
func (s *Store) ListHolidays(ctx context.Context) ([]HolidayRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, day, month, year FROM holidays
		ORDER BY year, month, day`)
	if err != nil {
		return nil, fmt.Errorf("failed to query holidays: %w", err)
	}
	defer rows.Close()

	var records []HolidayRecord
	for rows.Next() {
		var rec HolidayRecord
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Day, &rec.Month, &rec.Year); err != nil {
			return nil, fmt.Errorf("failed to scan holiday: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// DeleteHoliday removes a holiday by ID. Missing IDs are not an error.
func (s *Store) DeleteHoliday(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM holidays WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete holiday: %w", err)
	}
	return nil
}

// =============================================================================
// TIME SETTINGS - Single-row configuration
// =============================================================================

// GetSettings returns the stored time configuration, or (nil, nil) when none
// has been saved yet - the caller decides the default.
func (s *Store) GetSettings(ctx context.Context) (*engine.TimeConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var cfg engine.TimeConfig
	err := s.db.QueryRowContext(ctx, `
		SELECT rounding_enabled, rounding_minutes, lunch_enabled, lunch_minutes
		FROM time_settings WHERE id = 1`).
		Scan(&cfg.RoundingEnabled, &cfg.RoundingMinutes, &cfg.LunchEnabled, &cfg.LunchMinutes)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return &cfg, nil
}

// SaveSettings validates and stores the time configuration. Invalid configs
// never reach the row - this is the caller-side precondition the engine
// depends on.
func (s *Store) SaveSettings(ctx context.Context, cfg engine.TimeConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO time_settings (id, rounding_enabled, rounding_minutes, lunch_enabled, lunch_minutes, updated_at)
		VALUES (1, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			rounding_enabled=excluded.rounding_enabled,
			rounding_minutes=excluded.rounding_minutes,
			lunch_enabled=excluded.lunch_enabled,
			lunch_minutes=excluded.lunch_minutes,
			updated_at=CURRENT_TIMESTAMP`,
		cfg.RoundingEnabled, cfg.RoundingMinutes, cfg.LunchEnabled, cfg.LunchMinutes)
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}
