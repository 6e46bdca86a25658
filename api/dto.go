/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication that are not already
  engine or factory types. Reports are returned as engine.UserAnalysis
  directly; the engine output is the API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Reference data:
    HolidayRequest, TimeOffRequest

  Entries:
    ImportResponse

  Reports:
    ReportResponse, StoredReportDTO

  Scenarios:
    ScenarioDTO, LoadScenarioRequest

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/factory.go: EntryJSON, ProfileJSON, CalculateRequest
*/
package api

import (
	"encoding/json"
	"time"

	"github.com/warp/overtime-engine/engine"
)

// =============================================================================
// REFERENCE DATA
// =============================================================================

// HolidayRequest creates a holiday for one user-day.
type HolidayRequest struct {
	UserID    engine.UserID `json:"userId"`
	Date      string        `json:"date"`
	Name      string        `json:"name"`
	ProjectID string        `json:"projectId,omitempty"`
}

// TimeOffRequest creates approved time off for one user-day. Hours is
// ignored when IsFullDay is set.
type TimeOffRequest struct {
	UserID    engine.UserID  `json:"userId"`
	Date      string         `json:"date"`
	IsFullDay bool           `json:"isFullDay"`
	Hours     engine.Numeric `json:"hours,omitempty"`
}

// =============================================================================
// ENTRIES
// =============================================================================

// ImportResponse is returned after importing remote entries.
type ImportResponse struct {
	Imported int                `json:"imported"`
	Entries  []engine.TimeEntry `json:"entries"`
}

// =============================================================================
// REPORTS
// =============================================================================

// ReportResponse wraps a calculated report.
type ReportResponse struct {
	Range   *engine.DateRange     `json:"range,omitempty"`
	View    engine.AmountView     `json:"view"`
	Users   []engine.UserAnalysis `json:"users"`
	SavedID string                `json:"savedId,omitempty"`
}

// StoredReportDTO is a report snapshot read back from the store.
type StoredReportDTO struct {
	ID        string           `json:"id"`
	Range     engine.DateRange `json:"range"`
	Source    string           `json:"source"`
	CreatedAt time.Time        `json:"createdAt"`
	Users     json.RawMessage  `json:"users"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	// Range is the report range that shows the scenario.
	Range engine.DateRange `json:"range"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}
