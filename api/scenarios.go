/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with the data
	behind the documented overtime examples, plus one realistic team week.

AVAILABLE SCENARIOS:

	tail-attribution: 3h work, 2h break, 5h work on an 8h day
	split-boundary:   Tiered overtime with 3h carried in from the day before
	holiday:          4h worked on a holiday (capacity 0)
	partial-time-off: 8h worked with 2h approved time off (capacity 6)
	team-week:        Profiles, overrides, holidays, time off and weekend work

HOW SCENARIOS WORK:
 1. Reset database (clear all data except settings)
 2. Save scenario settings (configured defaults plus scenario tweaks)
 3. Create users, profiles, overrides, holidays and time off
 4. Store entries

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "split-boundary"}

	GET /api/reports?start=<range.start>&end=<range.end>

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Report endpoints
*/
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/warp/overtime-engine/engine"
	"github.com/warp/overtime-engine/store/sqlite"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

const scenarioMonday = "2025-03-10"

var scenarios = []ScenarioDTO{
	{
		ID:          "tail-attribution",
		Name:        "Tail Attribution",
		Description: "8h capacity; 3h work, 2h break, 5h work. Breaks never become overtime: 10h regular, 0h overtime",
		Range:       engine.DateRange{Start: scenarioMonday, End: scenarioMonday},
	},
	{
		ID:          "split-boundary",
		Name:        "Split Boundary",
		Description: "Tiered overtime, tier 2 after 4h. Sunday carries 3h overtime; Monday's last entry splits into 1h regular and 2h overtime (1h tier 1, 1h tier 2)",
		Range:       engine.DateRange{Start: "2025-03-09", End: scenarioMonday},
	},
	{
		ID:          "holiday",
		Name:        "Holiday",
		Description: "A holiday zeroes capacity: 4h worked are all overtime",
		Range:       engine.DateRange{Start: scenarioMonday, End: scenarioMonday},
	},
	{
		ID:          "partial-time-off",
		Name:        "Partial Time Off",
		Description: "2h approved time off lowers capacity to 6h: 8h worked gives 6h regular, 2h overtime",
		Range:       engine.DateRange{Start: scenarioMonday, End: scenarioMonday},
	},
	{
		ID:          "team-week",
		Name:        "Team Week",
		Description: "Two people over one week: profile capacity, a Friday override, a holiday, full-day time off and Saturday work",
		Range:       engine.DateRange{Start: scenarioMonday, End: "2025-03-16"},
	},
}

// ListScenarios returns available demo scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the last loaded scenario.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeError(w, http.StatusNotFound, "No scenario loaded", nil)
}

// LoadScenario resets the database and loads a demo scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var scenario *ScenarioDTO
	for i := range scenarios {
		if scenarios[i].ID == req.ScenarioID {
			scenario = &scenarios[i]
		}
	}
	if scenario == nil {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	ctx := r.Context()
	if err := h.loadScenario(ctx, req.ScenarioID); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	h.mu.Lock()
	h.currentScenario = req.ScenarioID
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"status": "loaded", "scenario": req.ScenarioID, "range": scenario.Range})
}

// ResetDatabase clears all data except settings.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.mu.Lock()
	h.currentScenario = ""
	h.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (h *Handler) loadScenario(ctx context.Context, id string) error {
	if err := h.Store.Reset(ctx); err != nil {
		return fmt.Errorf("reset: %w", err)
	}

	settings := h.Defaults
	var load func(context.Context) error
	switch id {
	case "tail-attribution":
		load = h.loadTailAttributionScenario
	case "split-boundary":
		settings.Config.EnableTieredOT = true
		settings.Params.Tier2ThresholdHours = 4
		settings.Params.OvertimeMultiplier = 1.5
		settings.Params.Tier2Multiplier = 2
		load = h.loadSplitBoundaryScenario
	case "holiday":
		settings.Config.ApplyHolidays = true
		load = h.loadHolidayScenario
	case "partial-time-off":
		settings.Config.ApplyTimeOff = true
		load = h.loadPartialTimeOffScenario
	case "team-week":
		settings = engine.DefaultSettings()
		settings.Config.UseProfileCapacity = true
		settings.Config.UseProfileWorkingDays = true
		settings.Config.EnableTieredOT = true
		settings.Params.Tier2ThresholdHours = 6
		load = h.loadTeamWeekScenario
	default:
		return fmt.Errorf("unknown scenario %q", id)
	}

	if err := h.Store.SaveSettings(ctx, settings); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return load(ctx)
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadTailAttributionScenario(ctx context.Context) error {
	_, err := h.Store.AppendEntries(ctx, []engine.TimeEntry{
		span("a-1", "ada", "Ada", scenarioMonday, 8, 3, "REGULAR", true),
		span("a-2", "ada", "Ada", scenarioMonday, 11, 2, "BREAK", false),
		span("a-3", "ada", "Ada", scenarioMonday, 13, 5, "REGULAR", true),
	})
	return err
}

func (h *Handler) loadSplitBoundaryScenario(ctx context.Context) error {
	_, err := h.Store.AppendEntries(ctx, []engine.TimeEntry{
		// Sunday: 11h against 8h carries 3h of overtime into Monday.
		span("b-0", "ben", "Ben", "2025-03-09", 7, 11, "REGULAR", true),
		span("b-1", "ben", "Ben", scenarioMonday, 8, 3, "REGULAR", true),
		span("b-2", "ben", "Ben", scenarioMonday, 11, 1, "BREAK", false),
		span("b-3", "ben", "Ben", scenarioMonday, 12, 4, "REGULAR", true),
		span("b-4", "ben", "Ben", scenarioMonday, 16, 3, "REGULAR", false),
	})
	return err
}

func (h *Handler) loadHolidayScenario(ctx context.Context) error {
	if _, err := h.Store.SaveHoliday(ctx, sqlite.HolidayRecord{
		UserID:  "cy",
		Date:    scenarioMonday,
		Holiday: engine.Holiday{Name: "Founders Day"},
	}); err != nil {
		return err
	}
	_, err := h.Store.AppendEntries(ctx, []engine.TimeEntry{
		span("c-1", "cy", "Cy", scenarioMonday, 9, 4, "REGULAR", true),
	})
	return err
}

func (h *Handler) loadPartialTimeOffScenario(ctx context.Context) error {
	if _, err := h.Store.SaveTimeOff(ctx, sqlite.TimeOffRecord{
		UserID:      "dee",
		Date:        scenarioMonday,
		TimeOffInfo: engine.TimeOffInfo{Hours: engine.Num(2)},
	}); err != nil {
		return err
	}
	_, err := h.Store.AppendEntries(ctx, []engine.TimeEntry{
		span("d-1", "dee", "Dee", scenarioMonday, 8, 8, "REGULAR", true),
	})
	return err
}

func (h *Handler) loadTeamWeekScenario(ctx context.Context) error {
	weekdays := []string{"MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY"}

	// Eve works 7.5h days Monday to Friday and 4h on Fridays.
	if err := h.Store.SaveProfile(ctx, "eve", engine.UserProfile{Capacity: engine.Num(7.5), WorkingDays: weekdays}); err != nil {
		return err
	}
	if err := h.Store.SaveOverride(ctx, "eve", engine.Override{
		Mode:   engine.ModeWeekly,
		Weekly: map[string]engine.OverrideValues{"FRIDAY": {Capacity: engine.Num(4)}},
	}); err != nil {
		return err
	}

	// Finn has an 8h profile, a holiday on Wednesday and Thursday off.
	if err := h.Store.SaveProfile(ctx, "finn", engine.UserProfile{Capacity: engine.Num(8), WorkingDays: weekdays}); err != nil {
		return err
	}
	if _, err := h.Store.SaveHoliday(ctx, sqlite.HolidayRecord{
		UserID: "finn", Date: "2025-03-12", Holiday: engine.Holiday{Name: "Regional Holiday"},
	}); err != nil {
		return err
	}
	if _, err := h.Store.SaveTimeOff(ctx, sqlite.TimeOffRecord{
		UserID: "finn", Date: "2025-03-13", TimeOffInfo: engine.TimeOffInfo{IsFullDay: true},
	}); err != nil {
		return err
	}

	// A user with no entries still appears in the report.
	if err := h.Store.SaveUser(ctx, engine.User{ID: "gus", Name: "Gus"}); err != nil {
		return err
	}

	entries := []engine.TimeEntry{
		span("e-mon", "eve", "Eve", "2025-03-10", 9, 9, "REGULAR", true),
		span("e-tue", "eve", "Eve", "2025-03-11", 9, 7.5, "REGULAR", true),
		span("e-wed-1", "eve", "Eve", "2025-03-12", 8, 4, "REGULAR", true),
		span("e-wed-b", "eve", "Eve", "2025-03-12", 12, 1, "BREAK", false),
		span("e-wed-2", "eve", "Eve", "2025-03-12", 13, 5, "REGULAR", false),
		span("e-thu", "eve", "Eve", "2025-03-13", 9, 8, "REGULAR", true),
		span("e-fri", "eve", "Eve", "2025-03-14", 9, 6, "REGULAR", true),

		span("f-mon", "finn", "Finn", "2025-03-10", 8, 10, "REGULAR", true),
		span("f-tue", "finn", "Finn", "2025-03-11", 8, 8, "REGULAR", false),
		span("f-wed", "finn", "Finn", "2025-03-12", 10, 3, "REGULAR", true),
		span("f-fri", "finn", "Finn", "2025-03-14", 8, 8, "REGULAR", true),
		span("f-sat", "finn", "Finn", "2025-03-15", 10, 5, "REGULAR", true),
	}
	_, err := h.Store.AppendEntries(ctx, entries)
	return err
}

// span builds a UTC entry starting at startHour on day and lasting hours,
// with fixed demo rates.
func span(id string, user engine.UserID, name, day string, startHour, hours float64, typ string, billable bool) engine.TimeEntry {
	d, _ := time.Parse(engine.DateLayout, day)
	start := d.Add(time.Duration(startHour * float64(time.Hour)))
	end := start.Add(time.Duration(hours * float64(time.Hour)))

	e := engine.TimeEntry{
		ID:       id,
		UserID:   user,
		UserName: name,
		Start:    start.Format(time.RFC3339),
		End:      end.Format(time.RFC3339),
		Type:     typ,
		Billable: billable,
		CostRate: engine.Num(35),
	}
	if billable {
		e.EarnedRate = engine.Num(80)
	}
	return e
}
