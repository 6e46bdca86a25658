/*
Package sqlite provides a SQLite-backed implementation of engine.Store.

PURPOSE:
  Persists everything a report needs (users, time entries, profiles,
  holidays, time off, overrides) plus the persisted settings and computed
  report snapshots. In production, the same patterns apply to PostgreSQL -
  only minor SQL dialect differences.

INTERFACES IMPLEMENTED:
  engine.Store: Read side used by engine.LoadInput

KEY TABLES:
  users:            Known users (also those without entries)
  time_entries:     Imported entries, stored as JSON with an indexed start
  profiles:         Capacity and working days per user
  holidays:         One holiday per user-day
  time_off:         One time-off record per user-day
  overrides:        Override JSON per user
  settings:         Single row with Config + Params
  report_snapshots: Stored report results (scheduler and on-demand)

INDEXES:
  - idx_entries_start: Range queries on start instant (hot path)
  - idx_holidays_user_date / idx_time_off_user_date: One record per user-day

ENTRY STORAGE:
  Entries are stored whole as JSON so that malformed fields survive the
  round trip and degrade inside the engine exactly as they would in memory.
  start_unix is NULL when the start does not parse; such entries are only
  reachable through ListAllEntries, never through a ranged query.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  File databases are opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time
  ":memory:" databases are pinned to one connection so every query sees
  the same database.

USAGE:
  store, err := sqlite.New("./data/overtime.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  results, err := engine.Report(ctx, store, rng, settings, loc)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - engine/store.go: Interface definition
  - engine/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/overtime-engine/engine"
)

// Store implements engine.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	dsn := dbPath + "?_foreign_keys=on&_journal_mode=WAL"
	if dbPath == ":memory:" {
		dsn = dbPath + "?_foreign_keys=on"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
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
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	-- Time entries (whole entry kept as JSON)
	CREATE TABLE IF NOT EXISTS time_entries (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		start_unix INTEGER,
		entry_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_entries_start
		ON time_entries(start_unix);
	CREATE INDEX IF NOT EXISTS idx_entries_user
		ON time_entries(user_id, start_unix);

	CREATE TABLE IF NOT EXISTS profiles (
		user_id TEXT PRIMARY KEY,
		capacity TEXT NOT NULL DEFAULT '',
		working_days_json TEXT NOT NULL DEFAULT '[]',
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS holidays (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		date TEXT NOT NULL,
		name TEXT NOT NULL,
		project_id TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_holidays_user_date
		ON holidays(user_id, date);

	CREATE TABLE IF NOT EXISTS time_off (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		date TEXT NOT NULL,
		is_full_day BOOLEAN NOT NULL DEFAULT FALSE,
		hours TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_time_off_user_date
		ON time_off(user_id, date);

	CREATE TABLE IF NOT EXISTS overrides (
		user_id TEXT PRIMARY KEY,
		override_json TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Single-row settings table
	CREATE TABLE IF NOT EXISTS settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		settings_json TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS report_snapshots (
		id TEXT PRIMARY KEY,
		range_start TEXT NOT NULL,
		range_end TEXT NOT NULL,
		source TEXT NOT NULL,
		report_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_report_snapshots_created
		ON report_snapshots(created_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// USERS
// =============================================================================

// SaveUser inserts or renames a user. An empty name never overwrites a
// known one.
func (s *Store) SaveUser(ctx context.Context, u engine.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.saveUser(ctx, s.db, u)
}

func (s *Store) saveUser(ctx context.Context, db execer, u engine.User) error {
	query := `
		INSERT INTO users (id, name, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = CASE WHEN excluded.name != '' THEN excluded.name ELSE users.name END
	`
	_, err := db.ExecContext(ctx, query, string(u.ID), u.Name, now())
	return err
}

// ListUsers returns all users ordered by ID.
func (s *Store) ListUsers(ctx context.Context) ([]engine.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT id, name FROM users ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []engine.User{}
	for rows.Next() {
		var u engine.User
		var id string
		if err := rows.Scan(&id, &u.Name); err != nil {
			return nil, err
		}
		u.ID = engine.UserID(id)
		users = append(users, u)
	}
	return users, rows.Err()
}

// =============================================================================
// TIME ENTRIES
// =============================================================================

// AppendEntries upserts entries atomically. Entries without an ID get a
// generated one; their users are registered on the way. Returns the stored
// entries with IDs filled in.
func (s *Store) AppendEntries(ctx context.Context, entries []engine.TimeEntry) ([]engine.TimeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	query := `
		INSERT INTO time_entries (id, user_id, start_unix, entry_json, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			start_unix = excluded.start_unix,
			entry_json = excluded.entry_json
	`

	stored := make([]engine.TimeEntry, 0, len(entries))
	for _, e := range entries {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if e.UserID != "" {
			if err := s.saveUser(ctx, sqlTx, engine.User{ID: e.UserID, Name: e.UserName}); err != nil {
				return nil, fmt.Errorf("failed to save user %s: %w", e.UserID, err)
			}
		}

		var startUnix sql.NullInt64
		if start, ok := engine.ParseInstant(e.Start); ok {
			startUnix = sql.NullInt64{Int64: start.UnixNano(), Valid: true}
		}
		entryJSON, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("failed to encode entry %s: %w", e.ID, err)
		}

		if _, err := sqlTx.ExecContext(ctx, query, e.ID, string(e.UserID), startUnix, string(entryJSON), now()); err != nil {
			return nil, fmt.Errorf("failed to append entry %s: %w", e.ID, err)
		}
		stored = append(stored, e)
	}

	if err := sqlTx.Commit(); err != nil {
		return nil, err
	}
	return stored, nil
}

// EntriesInRange returns entries whose start is in [from, to), ordered by
// start and then insertion.
func (s *Store) EntriesInRange(ctx context.Context, from, to time.Time) ([]engine.TimeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT entry_json FROM time_entries
		WHERE start_unix >= ? AND start_unix < ?
		ORDER BY start_unix ASC, rowid ASC
	`
	return s.queryEntries(ctx, query, from.UnixNano(), to.UnixNano())
}

// ListAllEntries returns every entry, including ones with a malformed start.
func (s *Store) ListAllEntries(ctx context.Context) ([]engine.TimeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryEntries(ctx, "SELECT entry_json FROM time_entries ORDER BY start_unix IS NULL, start_unix, rowid")
}

// DeleteEntry removes one entry.
func (s *Store) DeleteEntry(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "time_entries", "id", id)
}

func (s *Store) queryEntries(ctx context.Context, query string, args ...any) ([]engine.TimeEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	entries := []engine.TimeEntry{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		var e engine.TimeEntry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			return nil, fmt.Errorf("failed to decode entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// =============================================================================
// PROFILES
// =============================================================================

// SaveProfile stores a user's profile, replacing any previous one.
func (s *Store) SaveProfile(ctx context.Context, id engine.UserID, p engine.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	days, err := json.Marshal(p.WorkingDays)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO profiles (user_id, capacity, working_days_json, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			capacity = excluded.capacity,
			working_days_json = excluded.working_days_json,
			updated_at = excluded.updated_at
	`
	_, err = s.db.ExecContext(ctx, query, string(id), string(p.Capacity), string(days), now())
	return err
}

// Profiles returns all profiles keyed by user.
func (s *Store) Profiles(ctx context.Context) (engine.ProfileMap, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT user_id, capacity, working_days_json FROM profiles")
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer rows.Close()

	profiles := make(engine.ProfileMap)
	for rows.Next() {
		var id, capacity, days string
		if err := rows.Scan(&id, &capacity, &days); err != nil {
			return nil, err
		}
		p := engine.UserProfile{Capacity: engine.Numeric(capacity)}
		json.Unmarshal([]byte(days), &p.WorkingDays)
		profiles[engine.UserID(id)] = p
	}
	return profiles, rows.Err()
}

// =============================================================================
// HOLIDAYS
// =============================================================================

// HolidayRecord is a stored holiday.
type HolidayRecord struct {
	ID     string         `json:"id"`
	UserID engine.UserID  `json:"userId"`
	Date   engine.DateKey `json:"date"`
	engine.Holiday
}

// SaveHoliday stores a holiday. A second holiday on the same user-day
// replaces the first. Returns the record with its ID.
func (s *Store) SaveHoliday(ctx context.Context, h HolidayRecord) (HolidayRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if h.ID == "" {
		h.ID = uuid.NewString()
	}

	query := `
		INSERT INTO holidays (id, user_id, date, name, project_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, date) DO UPDATE SET
			id = excluded.id,
			name = excluded.name,
			project_id = excluded.project_id
	`
	_, err := s.db.ExecContext(ctx, query,
		h.ID, string(h.UserID), string(h.Date), h.Name, h.ProjectID, now())
	return h, err
}

// DeleteHoliday deletes a holiday by ID.
func (s *Store) DeleteHoliday(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "holidays", "id", id)
}

// ListHolidays returns holiday records inside the range, by date then user.
func (s *Store) ListHolidays(ctx context.Context, rng engine.DateRange) ([]HolidayRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, date, name, project_id FROM holidays
		 WHERE date >= ? AND date <= ? ORDER BY date, user_id`,
		string(rng.Start), string(rng.End))
	if err != nil {
		return nil, fmt.Errorf("failed to query holidays: %w", err)
	}
	defer rows.Close()

	records := []HolidayRecord{}
	for rows.Next() {
		var r HolidayRecord
		var userID, date string
		if err := rows.Scan(&r.ID, &userID, &date, &r.Name, &r.ProjectID); err != nil {
			return nil, err
		}
		r.UserID = engine.UserID(userID)
		r.Date = engine.DateKey(date)
		records = append(records, r)
	}
	return records, rows.Err()
}

// Holidays implements engine.Store.
func (s *Store) Holidays(ctx context.Context, rng engine.DateRange) (engine.HolidayMap, error) {
	records, err := s.ListHolidays(ctx, rng)
	if err != nil {
		return nil, err
	}
	result := make(engine.HolidayMap)
	for _, r := range records {
		if result[r.UserID] == nil {
			result[r.UserID] = make(map[engine.DateKey]engine.Holiday)
		}
		result[r.UserID][r.Date] = r.Holiday
	}
	return result, nil
}

// =============================================================================
// TIME OFF
// =============================================================================

// TimeOffRecord is a stored time-off record.
type TimeOffRecord struct {
	ID     string         `json:"id"`
	UserID engine.UserID  `json:"userId"`
	Date   engine.DateKey `json:"date"`
	engine.TimeOffInfo
}

// SaveTimeOff stores a time-off record, replacing any on the same user-day.
func (s *Store) SaveTimeOff(ctx context.Context, t TimeOffRecord) (TimeOffRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	query := `
		INSERT INTO time_off (id, user_id, date, is_full_day, hours, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, date) DO UPDATE SET
			id = excluded.id,
			is_full_day = excluded.is_full_day,
			hours = excluded.hours
	`
	_, err := s.db.ExecContext(ctx, query,
		t.ID, string(t.UserID), string(t.Date), t.IsFullDay, string(t.Hours), now())
	return t, err
}

// DeleteTimeOff deletes a time-off record by ID.
func (s *Store) DeleteTimeOff(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "time_off", "id", id)
}

// ListTimeOff returns time-off records inside the range.
func (s *Store) ListTimeOff(ctx context.Context, rng engine.DateRange) ([]TimeOffRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, date, is_full_day, hours FROM time_off
		 WHERE date >= ? AND date <= ? ORDER BY date, user_id`,
		string(rng.Start), string(rng.End))
	if err != nil {
		return nil, fmt.Errorf("failed to query time off: %w", err)
	}
	defer rows.Close()

	records := []TimeOffRecord{}
	for rows.Next() {
		var r TimeOffRecord
		var userID, date, hours string
		if err := rows.Scan(&r.ID, &userID, &date, &r.IsFullDay, &hours); err != nil {
			return nil, err
		}
		r.UserID = engine.UserID(userID)
		r.Date = engine.DateKey(date)
		r.Hours = engine.Numeric(hours)
		records = append(records, r)
	}
	return records, rows.Err()
}

// TimeOff implements engine.Store.
func (s *Store) TimeOff(ctx context.Context, rng engine.DateRange) (engine.TimeOffMap, error) {
	records, err := s.ListTimeOff(ctx, rng)
	if err != nil {
		return nil, err
	}
	result := make(engine.TimeOffMap)
	for _, r := range records {
		if result[r.UserID] == nil {
			result[r.UserID] = make(map[engine.DateKey]engine.TimeOffInfo)
		}
		result[r.UserID][r.Date] = r.TimeOffInfo
	}
	return result, nil
}

// =============================================================================
// OVERRIDES
// =============================================================================

// SaveOverride validates and stores a user's override.
func (s *Store) SaveOverride(ctx context.Context, id engine.UserID, o engine.Override) error {
	if err := o.Validate(id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(o)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO overrides (user_id, override_json, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			override_json = excluded.override_json,
			updated_at = excluded.updated_at
	`
	_, err = s.db.ExecContext(ctx, query, string(id), string(raw), now())
	return err
}

// DeleteOverride removes a user's override.
func (s *Store) DeleteOverride(ctx context.Context, id engine.UserID) error {
	return s.deleteByID(ctx, "overrides", "user_id", string(id))
}

// Overrides implements engine.Store. Rows that no longer decode are skipped.
func (s *Store) Overrides(ctx context.Context) (engine.OverrideMap, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT user_id, override_json FROM overrides")
	if err != nil {
		return nil, fmt.Errorf("failed to query overrides: %w", err)
	}
	defer rows.Close()

	result := make(engine.OverrideMap)
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}
		var o engine.Override
		if err := json.Unmarshal([]byte(raw), &o); err != nil {
			continue
		}
		result[engine.UserID(id)] = o
	}
	return result, rows.Err()
}

// =============================================================================
// SETTINGS
// =============================================================================

// Settings returns the persisted settings decoded over defaults, so fields
// missing from the stored JSON keep their default values.
func (s *Store) Settings(ctx context.Context, defaults engine.Settings) (engine.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var raw string
	err := s.db.QueryRowContext(ctx, "SELECT settings_json FROM settings WHERE id = 1").Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return defaults, nil
	}
	if err != nil {
		return defaults, err
	}

	settings := defaults
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return defaults, fmt.Errorf("failed to decode settings: %w", err)
	}
	return settings, nil
}

// SaveSettings replaces the persisted settings.
func (s *Store) SaveSettings(ctx context.Context, settings engine.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(settings)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO settings (id, settings_json, updated_at)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			settings_json = excluded.settings_json,
			updated_at = excluded.updated_at
	`
	_, err = s.db.ExecContext(ctx, query, string(raw), now())
	return err
}

// =============================================================================
// REPORT SNAPSHOTS
// =============================================================================

// ReportRecord is a stored report result.
type ReportRecord struct {
	ID         string
	Range      engine.DateRange
	Source     string // "scheduler" or "api"
	ReportJSON string
	CreatedAt  time.Time
}

// SaveReport stores a computed report and returns its ID.
func (s *Store) SaveReport(ctx context.Context, rng engine.DateRange, source string, results []engine.UserAnalysis) (string, error) {
	raw, err := json.Marshal(results)
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO report_snapshots (id, range_start, range_end, source, report_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, string(rng.Start), string(rng.End), source, string(raw),
		time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return "", err
	}
	return id, nil
}

// LatestReport returns the most recent report, or nil when none exists.
func (s *Store) LatestReport(ctx context.Context) (*ReportRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var r ReportRecord
	var start, end, createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, range_start, range_end, source, report_json, created_at
		 FROM report_snapshots ORDER BY created_at DESC, rowid DESC LIMIT 1`,
	).Scan(&r.ID, &start, &end, &r.Source, &r.ReportJSON, &createdAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	r.Range = engine.DateRange{Start: engine.DateKey(start), End: engine.DateKey(end)}
	r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return &r, nil
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data except settings (for demo scenarios).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"time_entries", "users", "profiles", "holidays", "time_off", "overrides", "report_snapshots"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// deleteByID deletes one row and reports engine.ErrNotFound when nothing
// matched. table and column are always constants.
func (s *Store) deleteByID(ctx context.Context, table, column, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE "+column+" = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", strings.TrimSuffix(table, "s"), id, engine.ErrNotFound)
	}
	return nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

var _ engine.Store = (*Store)(nil)
