/*
Package factory converts collaborator JSON into engine types.

PURPOSE:
  The engine works on normalized Go types. Everything that arrives from the
  outside (time-tracker exports, override documents, settings, profiles, a
  full stateless calculation request) passes through here first, so the
  engine never sees wire-format quirks.

REMOTE ENTRY FORMAT:
  {
    "id": "5f1c...",
    "userId": "u1",
    "userName": "Ada",
    "description": "Client call",
    "type": "REGULAR",
    "billable": true,
    "timeInterval": {
      "start": "2025-03-10T09:00:00Z",
      "end": "2025-03-10T12:00:00Z",
      "duration": "PT3H"
    },
    "hourlyRate": {"amount": 5000, "currency": "USD"},   // minor units
    "costRate": {"amount": 3000},                         // minor units
    "amounts": [{"type": "EARNED", "value": 150}],       // major units
    "projectId": "p1", "projectName": "Apollo",
    "clientId": "c1", "clientName": "ACME",
    "taskId": "t1", "taskName": "Design"
  }

KEY FEATURES:
  - Rates in minor units are converted to major units (amount / 100)
  - Numbers and numeric strings are both accepted wherever a value is numeric
  - Settings are decoded over defaults, so partial documents are fine
  - Profile capacity may be a number, a numeric string or an ISO-8601 duration

USAGE:
  f := factory.New()
  entries, err := f.ParseEntries(body)
  input, err := f.ParseCalculateRequest(body, defaults)

SEE ALSO:
  - engine/types.go: Target types
  - api/handlers.go: HTTP boundary that calls this package
*/
package factory

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/overtime-engine/engine"
)

// ErrInvalidSettings is returned when a settings document has values the
// engine cannot interpret.
var ErrInvalidSettings = errors.New("invalid settings")

var hundred = decimal.NewFromInt(100)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// EntryJSON is one time entry in the remote tracker format.
type EntryJSON struct {
	ID           string               `json:"id"`
	UserID       string               `json:"userId"`
	UserName     string               `json:"userName"`
	Description  string               `json:"description"`
	Type         string               `json:"type"`
	Billable     bool                 `json:"billable"`
	TimeInterval TimeIntervalJSON     `json:"timeInterval"`
	HourlyRate   *RateJSON            `json:"hourlyRate,omitempty"`
	CostRate     *RateJSON            `json:"costRate,omitempty"`
	Amounts      []engine.TypedAmount `json:"amounts,omitempty"`
	ProjectID    string               `json:"projectId,omitempty"`
	ProjectName  string               `json:"projectName,omitempty"`
	ClientID     string               `json:"clientId,omitempty"`
	ClientName   string               `json:"clientName,omitempty"`
	TaskID       string               `json:"taskId,omitempty"`
	TaskName     string               `json:"taskName,omitempty"`
}

// TimeIntervalJSON holds the entry's instants and optional duration.
type TimeIntervalJSON struct {
	Start    string `json:"start"`
	End      string `json:"end"`
	Duration string `json:"duration"`
}

// RateJSON is a per-hour rate in minor currency units.
type RateJSON struct {
	Amount   engine.Numeric `json:"amount"`
	Currency string         `json:"currency,omitempty"`
}

// ProfileJSON is a user profile document.
type ProfileJSON struct {
	Capacity    json.RawMessage `json:"capacity,omitempty"`
	WorkingDays []string        `json:"workingDays,omitempty"`
}

// CalculateRequest is a complete stateless calculation request: the whole
// snapshot travels in the body.
type CalculateRequest struct {
	Entries   []EntryJSON                                             `json:"entries"`
	Users     []engine.User                                           `json:"users,omitempty"`
	Profiles  map[engine.UserID]ProfileJSON                           `json:"profiles,omitempty"`
	Holidays  map[engine.UserID]map[engine.DateKey]engine.Holiday     `json:"holidays,omitempty"`
	TimeOff   map[engine.UserID]map[engine.DateKey]engine.TimeOffInfo `json:"timeOff,omitempty"`
	Overrides map[engine.UserID]engine.Override                       `json:"overrides,omitempty"`
	Settings  json.RawMessage                                         `json:"settings,omitempty"`
	Range     *engine.DateRange                                       `json:"range,omitempty"`
	TimeZone  string                                                  `json:"timeZone,omitempty"`
}

// =============================================================================
// FACTORY
// =============================================================================

// Factory converts JSON documents into engine types.
type Factory struct{}

// New creates a new factory.
func New() *Factory {
	return &Factory{}
}

// ParseEntries parses an array of remote entries.
func (f *Factory) ParseEntries(data []byte) ([]engine.TimeEntry, error) {
	var raw []EntryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse entries JSON: %w", err)
	}
	return f.FromEntries(raw), nil
}

// FromEntries converts remote entries.
func (f *Factory) FromEntries(raw []EntryJSON) []engine.TimeEntry {
	entries := make([]engine.TimeEntry, len(raw))
	for i, ej := range raw {
		entries[i] = f.FromEntryJSON(ej)
	}
	return entries
}

// FromEntryJSON converts one remote entry. Rates are converted from minor to
// major units; a rate that does not parse is left unset so the engine falls
// back to the typed amounts.
func (f *Factory) FromEntryJSON(ej EntryJSON) engine.TimeEntry {
	return engine.TimeEntry{
		ID:          ej.ID,
		UserID:      engine.UserID(ej.UserID),
		UserName:    ej.UserName,
		Description: ej.Description,
		Start:       ej.TimeInterval.Start,
		End:         ej.TimeInterval.End,
		Duration:    ej.TimeInterval.Duration,
		Type:        ej.Type,
		Billable:    ej.Billable,
		EarnedRate:  majorUnits(ej.HourlyRate),
		CostRate:    majorUnits(ej.CostRate),
		Amounts:     ej.Amounts,
		ProjectID:   ej.ProjectID,
		ProjectName: ej.ProjectName,
		ClientID:    ej.ClientID,
		ClientName:  ej.ClientName,
		TaskID:      ej.TaskID,
		TaskName:    ej.TaskName,
	}
}

func majorUnits(r *RateJSON) engine.Numeric {
	if r == nil {
		return ""
	}
	d, ok := r.Amount.Decimal()
	if !ok {
		return ""
	}
	return engine.Numeric(d.Div(hundred).String())
}

// ParseOverride parses one override document. Values may be numbers or
// numeric strings; the structure is validated.
func (f *Factory) ParseOverride(userID engine.UserID, data []byte) (engine.Override, error) {
	var o engine.Override
	if err := json.Unmarshal(data, &o); err != nil {
		return engine.Override{}, fmt.Errorf("failed to parse override JSON: %w", err)
	}
	if err := o.Validate(userID); err != nil {
		return engine.Override{}, err
	}
	return o, nil
}

// ParseSettings decodes a settings document over defaults.
//
//	{"config": {"enableTieredOT": true}, "params": {"dailyThreshold": 7.5}}
func (f *Factory) ParseSettings(data []byte, defaults engine.Settings) (engine.Settings, error) {
	settings := defaults
	if len(strings.TrimSpace(string(data))) == 0 {
		return settings, nil
	}
	if err := json.Unmarshal(data, &settings); err != nil {
		return defaults, fmt.Errorf("failed to parse settings JSON: %w", err)
	}
	if err := ValidateSettings(settings); err != nil {
		return defaults, err
	}
	return settings, nil
}

// ValidateSettings rejects values the engine would silently reinterpret.
func ValidateSettings(s engine.Settings) error {
	switch s.Config.AmountDisplay {
	case engine.ViewEarned, engine.ViewCost, engine.ViewProfit:
	default:
		return fmt.Errorf("%w: amountDisplay %q (use earned, cost or profit)", ErrInvalidSettings, s.Config.AmountDisplay)
	}
	p := s.Params
	if p.DailyThreshold < 0 || p.WeeklyThreshold < 0 || p.Tier2ThresholdHours < 0 {
		return fmt.Errorf("%w: thresholds must not be negative", ErrInvalidSettings)
	}
	if p.OvertimeMultiplier < 1 || p.Tier2Multiplier < 1 {
		return fmt.Errorf("%w: multipliers must be at least 1", ErrInvalidSettings)
	}
	return nil
}

// ParseProfile parses a profile document.
func (f *Factory) ParseProfile(data []byte) (engine.UserProfile, error) {
	var pj ProfileJSON
	if err := json.Unmarshal(data, &pj); err != nil {
		return engine.UserProfile{}, fmt.Errorf("failed to parse profile JSON: %w", err)
	}
	return f.FromProfileJSON(pj), nil
}

// FromProfileJSON converts a profile. A capacity given as an ISO-8601
// duration ("PT7H30M") is converted to hours; anything unusable is kept as
// is and skipped at resolve time.
func (f *Factory) FromProfileJSON(pj ProfileJSON) engine.UserProfile {
	p := engine.UserProfile{WorkingDays: pj.WorkingDays}
	if len(pj.Capacity) == 0 {
		return p
	}

	var capacity engine.Numeric
	if err := json.Unmarshal(pj.Capacity, &capacity); err != nil {
		return p
	}
	if !capacity.IsSet() {
		if d, ok := engine.ParseDuration(string(capacity)); ok {
			capacity = engine.Numeric(engine.DurationHours(d).String())
		}
	}
	p.Capacity = capacity
	return p
}

// ParseCalculateRequest builds a complete engine.Input from a stateless
// request. Settings missing from the request come from defaults.
func (f *Factory) ParseCalculateRequest(data []byte, defaults engine.Settings) (engine.Input, error) {
	var req CalculateRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return engine.Input{}, fmt.Errorf("failed to parse calculate request: %w", err)
	}

	settings, err := f.ParseSettings(req.Settings, defaults)
	if err != nil {
		return engine.Input{}, err
	}

	loc := time.UTC
	if req.TimeZone != "" {
		loc, err = time.LoadLocation(req.TimeZone)
		if err != nil {
			return engine.Input{}, fmt.Errorf("%w: unknown time zone %q", ErrInvalidSettings, req.TimeZone)
		}
	}

	if req.Range != nil {
		if err := req.Range.Validate(); err != nil {
			return engine.Input{}, err
		}
	}

	profiles := make(engine.ProfileMap, len(req.Profiles))
	for id, pj := range req.Profiles {
		profiles[id] = f.FromProfileJSON(pj)
	}

	return engine.Input{
		Entries:   f.FromEntries(req.Entries),
		Users:     req.Users,
		Profiles:  profiles,
		Holidays:  req.Holidays,
		TimeOff:   req.TimeOff,
		Overrides: req.Overrides,
		Config:    settings.Config,
		Params:    settings.Params,
		Range:     req.Range,
		Location:  loc,
	}, nil
}
