/*
handlers.go - HTTP API handlers for the overtime service

PURPOSE:
  Exposes the overtime engine and its reference data via REST API. Handles
  HTTP request/response, JSON serialization, and delegates to the engine,
  the factory and the SQLite store.

ENDPOINTS:
  Users:
    GET    /api/users                       List users
    POST   /api/users                       Create or rename a user

  Entries:
    GET    /api/entries?start&end           Entries starting inside the range
    POST   /api/entries                     Import remote entry JSON (array)
    DELETE /api/entries/{id}                Delete one entry

  Reference data:
    GET    /api/profiles                    All profiles
    PUT    /api/profiles/{userID}           Replace a profile
    GET    /api/holidays?start&end          Holidays (all when no range)
    POST   /api/holidays                    Create holiday
    DELETE /api/holidays/{id}               Delete holiday
    GET    /api/time-off?start&end          Time off (all when no range)
    POST   /api/time-off                    Create time off
    DELETE /api/time-off/{id}               Delete time off
    GET    /api/overrides                   All overrides
    PUT    /api/overrides/{userID}          Replace an override
    DELETE /api/overrides/{userID}          Remove an override

  Settings:
    GET    /api/settings                    Persisted settings (or defaults)
    PUT    /api/settings                    Partial update over current settings

  Reports:
    GET    /api/reports?start&end[&save]    Report from stored data
    POST   /api/reports/calculate           Stateless report (snapshot in body)
    GET    /api/reports/export.csv          Entry-level CSV (?view=earned|cost|profit)
    GET    /api/reports/summary.csv         Per-user CSV
    GET    /api/reports/latest              Last stored report snapshot

  Without start and end, report endpoints use the current ISO week in the
  configured time zone.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Malformed body, invalid range, override or settings
  - 404: Record not found
  - 500: Internal errors

SECURITY NOTE:
  No authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/warp/overtime-engine/engine"
	"github.com/warp/overtime-engine/export"
	"github.com/warp/overtime-engine/factory"
	"github.com/warp/overtime-engine/metrics"
	"github.com/warp/overtime-engine/store/sqlite"
)

const maxBodyBytes = 10 << 20

// allTime is the listing range used when reference data is requested
// without start and end.
var allTime = engine.DateRange{Start: "0001-01-01", End: "9999-12-31"}

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   *sqlite.Store
	Factory *factory.Factory
	Metrics *metrics.Manager

	// Defaults are used until settings are saved through the API.
	Defaults engine.Settings

	// Location decides report days and the default (current week) range.
	Location *time.Location

	now func() time.Time

	mu              sync.Mutex
	currentScenario string
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithDefaults sets the settings used when none are persisted.
func WithDefaults(s engine.Settings) HandlerOption {
	return func(h *Handler) { h.Defaults = s }
}

// WithLocation sets the report time zone.
func WithLocation(loc *time.Location) HandlerOption {
	return func(h *Handler) {
		if loc != nil {
			h.Location = loc
		}
	}
}

// WithMetrics sets the metrics manager.
func WithMetrics(m *metrics.Manager) HandlerOption {
	return func(h *Handler) {
		if m != nil {
			h.Metrics = m
		}
	}
}

// WithClock replaces time.Now (used for the default range).
func WithClock(now func() time.Time) HandlerOption {
	return func(h *Handler) {
		if now != nil {
			h.now = now
		}
	}
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store, opts ...HandlerOption) *Handler {
	h := &Handler{
		Store:    store,
		Factory:  factory.New(),
		Defaults: engine.DefaultSettings(),
		Location: time.UTC,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.Metrics == nil {
		h.Metrics = metrics.NewManager()
	}
	return h
}

// currentWeek returns the ISO week containing today in the report time zone.
func (h *Handler) currentWeek() engine.DateRange {
	return engine.WeekOf(engine.DateKeyOf(h.now(), h.Location))
}

// settings returns persisted settings over the configured defaults.
func (h *Handler) settings(ctx context.Context) (engine.Settings, error) {
	return h.Store.Settings(ctx, h.Defaults)
}

// Calculate loads the stored snapshot for rng, calculates it and records
// metrics under source. Shared by the report endpoints and the scheduler.
func (h *Handler) Calculate(ctx context.Context, rng engine.DateRange, source string) ([]engine.UserAnalysis, engine.Settings, error) {
	settings, err := h.settings(ctx)
	if err != nil {
		h.Metrics.RecordReportError(source)
		return nil, settings, fmt.Errorf("load settings: %w", err)
	}

	start := time.Now()
	results, err := engine.Report(ctx, h.Store, rng, settings, h.Location)
	if err != nil {
		if !engine.IsClientError(err) {
			h.Metrics.RecordReportError(source)
		}
		return nil, settings, err
	}
	h.Metrics.RecordReport(source, len(results), countEntries(results), time.Since(start))
	return results, settings, nil
}

func countEntries(results []engine.UserAnalysis) int {
	n := 0
	for _, u := range results {
		n += u.Totals.EntryCount
	}
	return n
}

// =============================================================================
// USER HANDLERS
// =============================================================================

// ListUsers returns all users.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Store.ListUsers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list users", err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// CreateUser creates a user, or renames an existing one.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var u engine.User
	if err := decodeJSON(r, &u); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if u.ID == "" {
		writeError(w, http.StatusBadRequest, "id is required", nil)
		return
	}
	if u.Name == "" {
		u.Name = string(u.ID)
	}

	if err := h.Store.SaveUser(r.Context(), u); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save user", err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

// =============================================================================
// ENTRY HANDLERS
// =============================================================================

// ListEntries returns entries whose start falls inside the range.
// GET /api/entries?start=2025-03-10&end=2025-03-16
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	rng, err := rangeFromQuery(r, h.currentWeek())
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid range", err)
		return
	}

	from, to := rng.Window(h.Location)
	entries, err := h.Store.EntriesInRange(r.Context(), from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list entries", err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// ImportEntries stores an array of entries in the remote time-tracker format.
// Entries without an ID get one; existing IDs are replaced.
// POST /api/entries
func (h *Handler) ImportEntries(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	entries, err := h.Factory.ParseEntries(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid entries", err)
		return
	}

	stored, err := h.Store.AppendEntries(r.Context(), entries)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to store entries", err)
		return
	}
	writeJSON(w, http.StatusCreated, ImportResponse{Imported: len(stored), Entries: stored})
}

// DeleteEntry removes one entry.
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteEntry(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, statusFor(err), "Failed to delete entry", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// PROFILE HANDLERS
// =============================================================================

// ListProfiles returns all profiles keyed by user ID.
func (h *Handler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.Store.Profiles(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list profiles", err)
		return
	}
	writeJSON(w, http.StatusOK, profiles)
}

// PutProfile replaces a user's profile. Capacity may be a number, a numeric
// string or an ISO-8601 duration.
// PUT /api/profiles/{userID}
func (h *Handler) PutProfile(w http.ResponseWriter, r *http.Request) {
	userID := engine.UserID(chi.URLParam(r, "userID"))

	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	profile, err := h.Factory.ParseProfile(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid profile", err)
		return
	}

	if err := h.Store.SaveProfile(r.Context(), userID, profile); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save profile", err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// =============================================================================
// HOLIDAY HANDLERS
// =============================================================================

// ListHolidays returns holidays inside the range, or all of them.
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	rng, err := rangeFromQuery(r, allTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid range", err)
		return
	}

	holidays, err := h.Store.ListHolidays(r.Context(), rng)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list holidays", err)
		return
	}
	writeJSON(w, http.StatusOK, holidays)
}

// CreateHoliday stores a holiday. A second holiday on the same user-day
// replaces the first.
// POST /api/holidays
// {"userId": "u1", "date": "2025-12-25", "name": "Christmas"}
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req HolidayRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	date, err := validateUserDay(req.UserID, req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid holiday", err)
		return
	}

	record, err := h.Store.SaveHoliday(r.Context(), sqlite.HolidayRecord{
		UserID:  req.UserID,
		Date:    date,
		Holiday: engine.Holiday{Name: req.Name, ProjectID: req.ProjectID},
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save holiday", err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

// DeleteHoliday removes a holiday.
func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteHoliday(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, statusFor(err), "Failed to delete holiday", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// TIME-OFF HANDLERS
// =============================================================================

// ListTimeOff returns time-off records inside the range, or all of them.
func (h *Handler) ListTimeOff(w http.ResponseWriter, r *http.Request) {
	rng, err := rangeFromQuery(r, allTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid range", err)
		return
	}

	records, err := h.Store.ListTimeOff(r.Context(), rng)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list time off", err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// CreateTimeOff stores approved time off for one user-day.
// POST /api/time-off
// {"userId": "u1", "date": "2025-03-12", "hours": 2}
func (h *Handler) CreateTimeOff(w http.ResponseWriter, r *http.Request) {
	var req TimeOffRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	date, err := validateUserDay(req.UserID, req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid time off", err)
		return
	}
	if !req.IsFullDay {
		hours, ok := req.Hours.Decimal()
		if !ok || !hours.IsPositive() {
			writeError(w, http.StatusBadRequest, "Invalid time off", errors.New("partial time off needs positive hours"))
			return
		}
	}

	record, err := h.Store.SaveTimeOff(r.Context(), sqlite.TimeOffRecord{
		UserID:      req.UserID,
		Date:        date,
		TimeOffInfo: engine.TimeOffInfo{IsFullDay: req.IsFullDay, Hours: req.Hours},
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save time off", err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

// DeleteTimeOff removes a time-off record.
func (h *Handler) DeleteTimeOff(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteTimeOff(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, statusFor(err), "Failed to delete time off", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// OVERRIDE HANDLERS
// =============================================================================

// ListOverrides returns all overrides keyed by user ID.
func (h *Handler) ListOverrides(w http.ResponseWriter, r *http.Request) {
	overrides, err := h.Store.Overrides(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list overrides", err)
		return
	}
	writeJSON(w, http.StatusOK, overrides)
}

// PutOverride replaces a user's override.
// PUT /api/overrides/{userID}
// {"mode": "weekly", "capacity": 7, "weeklyOverrides": {"FRIDAY": {"capacity": 4}}}
func (h *Handler) PutOverride(w http.ResponseWriter, r *http.Request) {
	userID := engine.UserID(chi.URLParam(r, "userID"))

	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	override, err := h.Factory.ParseOverride(userID, body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid override", err)
		return
	}

	if err := h.Store.SaveOverride(r.Context(), userID, override); err != nil {
		writeError(w, statusFor(err), "Failed to save override", err)
		return
	}
	writeJSON(w, http.StatusOK, override)
}

// DeleteOverride removes a user's override.
func (h *Handler) DeleteOverride(w http.ResponseWriter, r *http.Request) {
	userID := engine.UserID(chi.URLParam(r, "userID"))
	if err := h.Store.DeleteOverride(r.Context(), userID); err != nil {
		writeError(w, statusFor(err), "Failed to delete override", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// SETTINGS HANDLERS
// =============================================================================

// GetSettings returns the effective settings.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load settings", err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// PutSettings applies a partial settings document over the current settings.
// PUT /api/settings
// {"config": {"enableTieredOT": true}, "params": {"tier2ThresholdHours": 10}}
func (h *Handler) PutSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	current, err := h.settings(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load settings", err)
		return
	}
	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	settings, err := h.Factory.ParseSettings(body, current)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid settings", err)
		return
	}

	if err := h.Store.SaveSettings(ctx, settings); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save settings", err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// GetReport calculates a report from stored data. With save=true the result
// is also stored as a snapshot.
// GET /api/reports?start=2025-03-10&end=2025-03-16
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rng, err := rangeFromQuery(r, h.currentWeek())
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid range", err)
		return
	}

	results, settings, err := h.Calculate(ctx, rng, "api")
	if err != nil {
		writeError(w, statusFor(err), "Failed to calculate report", err)
		return
	}

	resp := ReportResponse{Range: &rng, View: settings.Config.AmountDisplay, Users: results}
	if r.URL.Query().Get("save") == "true" {
		id, err := h.Store.SaveReport(ctx, rng, "api", results)
		if err != nil {
			h.Metrics.RecordReportError("api")
			writeError(w, http.StatusInternalServerError, "Failed to save report", err)
			return
		}
		resp.SavedID = id
	}
	writeJSON(w, http.StatusOK, resp)
}

// CalculateStateless calculates a report from a snapshot carried entirely
// in the body. Nothing is read from or written to the store except the
// settings used as defaults.
// POST /api/reports/calculate
func (h *Handler) CalculateStateless(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	defaults, err := h.settings(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load settings", err)
		return
	}
	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	in, err := h.Factory.ParseCalculateRequest(body, defaults)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid calculate request", err)
		return
	}

	start := time.Now()
	results := engine.Calculate(in)
	h.Metrics.RecordReport("stateless", len(results), countEntries(results), time.Since(start))

	writeJSON(w, http.StatusOK, ReportResponse{Range: in.Range, View: in.Config.AmountDisplay, Users: results})
}

// ExportDetailCSV writes the entry-level CSV.
// GET /api/reports/export.csv?start&end&view=cost
func (h *Handler) ExportDetailCSV(w http.ResponseWriter, r *http.Request) {
	h.exportCSV(w, r, "detail", export.WriteDetail)
}

// ExportSummaryCSV writes the per-user CSV.
// GET /api/reports/summary.csv?start&end&view=profit
func (h *Handler) ExportSummaryCSV(w http.ResponseWriter, r *http.Request) {
	h.exportCSV(w, r, "summary", export.WriteSummary)
}

type csvWriter func(io.Writer, []engine.UserAnalysis, engine.AmountView) error

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request, name string, write csvWriter) {
	rng, err := rangeFromQuery(r, h.currentWeek())
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid range", err)
		return
	}

	results, settings, err := h.Calculate(r.Context(), rng, "export")
	if err != nil {
		writeError(w, statusFor(err), "Failed to calculate report", err)
		return
	}

	view := settings.Config.AmountDisplay
	if v := r.URL.Query().Get("view"); v != "" {
		view = engine.AmountView(v)
		switch view {
		case engine.ViewEarned, engine.ViewCost, engine.ViewProfit:
		default:
			writeError(w, http.StatusBadRequest, "Invalid view (use earned, cost or profit)", nil)
			return
		}
	}

	// Buffer so a write failure can still become a JSON error.
	var buf bytes.Buffer
	if err := write(&buf, results, view); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to write CSV", err)
		return
	}

	filename := fmt.Sprintf("overtime-%s-%s-%s.csv", name, rng.Start, rng.End)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// LatestReport returns the most recent stored report snapshot.
func (h *Handler) LatestReport(w http.ResponseWriter, r *http.Request) {
	record, err := h.Store.LatestReport(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load report", err)
		return
	}
	if record == nil {
		writeError(w, http.StatusNotFound, "No report stored yet", nil)
		return
	}

	writeJSON(w, http.StatusOK, StoredReportDTO{
		ID:        record.ID,
		Range:     record.Range,
		Source:    record.Source,
		CreatedAt: record.CreatedAt,
		Users:     json.RawMessage(record.ReportJSON),
	})
}

// =============================================================================
// HELPERS
// =============================================================================

// rangeFromQuery reads start and end. Both missing means fallback; one
// missing is an error.
func rangeFromQuery(r *http.Request, fallback engine.DateRange) (engine.DateRange, error) {
	q := r.URL.Query()
	start, end := q.Get("start"), q.Get("end")
	if start == "" && end == "" {
		return fallback, nil
	}

	rng := engine.DateRange{Start: engine.DateKey(start), End: engine.DateKey(end)}
	if start == "" || end == "" {
		return rng, &engine.RangeError{Range: rng, Reason: "start and end are required together"}
	}
	if err := rng.Validate(); err != nil {
		return rng, err
	}
	return rng, nil
}

func validateUserDay(userID engine.UserID, date string) (engine.DateKey, error) {
	if userID == "" {
		return "", errors.New("userId is required")
	}
	return engine.ParseDateKey(date)
}

// statusFor maps store and engine errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case engine.IsClientError(err), errors.Is(err, factory.ErrInvalidSettings):
		return http.StatusBadRequest
	case engine.IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func readBody(r *http.Request) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
}

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
