/*
Package engine provides the overtime calculation engine.

PURPOSE:
  Turns a snapshot of time entries plus reference data (profiles, holidays,
  time-off, overrides) into a per-user, per-day breakdown of regular vs.
  overtime hours, billable splits and tiered overtime pay.

KEY CONCEPTS IN THIS FILE (types.go):
  - TimeEntry: one tracked interval, exactly as received from the time tracker
  - Numeric: a number that may arrive as a JSON number or a numeric string
  - Override / OverrideValues: per-user capacity and multiplier overrides
  - Config / Params: feature flags and global calculation defaults
  - UserAnalysis: the output record handed to renderers and exporters

DESIGN PRINCIPLES:
  1. Purity: Calculate never performs I/O and never mutates its input
  2. Precision: hours and money use decimal.Decimal, rounded once per user
  3. Degradation: bad data resolves to zero or falls through, never errors
  4. Determinism: identical input produces identical output

USAGE:
  results := engine.Calculate(engine.Input{
      Entries:  entries,
      Profiles: profiles,
      Config:   engine.DefaultConfig(),
      Params:   engine.DefaultParams(),
  })

SEE ALSO:
  - calculate.go: Orchestration over users and days
  - capacity.go: Five-level precedence chain
  - attribution.go: Tail attribution of overtime
*/
package engine

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// NUMERIC - Number or numeric-like string
// =============================================================================

// Numeric holds a value that callers may send as a JSON number or as a
// numeric string ("8", " 7.5 "). The empty value means "not set".
type Numeric string

// Num builds a Numeric from a float.
func Num(v float64) Numeric {
	return Numeric(strconv.FormatFloat(v, 'f', -1, 64))
}

// Decimal parses the value. ok is false when the value is unset or does not
// parse to a finite number.
func (n Numeric) Decimal() (d decimal.Decimal, ok bool) {
	s := strings.TrimSpace(string(n))
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// OrZero returns the parsed value, or zero when it is unset or malformed.
func (n Numeric) OrZero() decimal.Decimal {
	d, _ := n.Decimal()
	return d
}

// IsSet reports whether the value parses.
func (n Numeric) IsSet() bool {
	_, ok := n.Decimal()
	return ok
}

func (n *Numeric) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*n = ""
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = Numeric(s)
		return nil
	}
	// Anything else (numbers, but also booleans or objects) is kept raw and
	// simply fails to parse later.
	*n = Numeric(raw)
	return nil
}

func (n Numeric) MarshalJSON() ([]byte, error) {
	if d, ok := n.Decimal(); ok {
		return []byte(d.String()), nil
	}
	if n == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(n))
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type UserID string

// User is the minimal identity needed to report on someone, including users
// that have no entries in the range.
type User struct {
	ID   UserID `json:"id"`
	Name string `json:"name"`
}

// =============================================================================
// TIME ENTRY - Input record
// =============================================================================

// TimeEntry is one tracked interval. Start and End are RFC 3339 strings as
// delivered by the time tracker; they may be malformed. Duration, when set,
// is an ISO-8601 duration ("PT1H30M") or a Go duration string ("1h30m") and
// takes precedence over End-Start.
type TimeEntry struct {
	ID          string `json:"id"`
	UserID      UserID `json:"userId"`
	UserName    string `json:"userName,omitempty"`
	Description string `json:"description,omitempty"`

	Start    string `json:"start"`
	End      string `json:"end,omitempty"`
	Duration string `json:"duration,omitempty"`

	// Type is the raw type tag (REGULAR, BREAK, HOLIDAY, TIME_OFF, ...).
	Type     string `json:"type,omitempty"`
	Billable bool   `json:"billable"`

	// Hourly rates in major currency units.
	EarnedRate Numeric `json:"earnedRate,omitempty"`
	CostRate   Numeric `json:"costRate,omitempty"`

	// Amounts are entry totals per view, used when a rate is missing.
	Amounts []TypedAmount `json:"amounts,omitempty"`

	ProjectID   string `json:"projectId,omitempty"`
	ProjectName string `json:"projectName,omitempty"`
	ClientID    string `json:"clientId,omitempty"`
	ClientName  string `json:"clientName,omitempty"`
	TaskID      string `json:"taskId,omitempty"`
	TaskName    string `json:"taskName,omitempty"`
}

// TypedAmount is an entry total for one monetary view.
type TypedAmount struct {
	Type  string  `json:"type"` // EARNED, COST or PROFIT
	Value Numeric `json:"value"`
}

// =============================================================================
// REFERENCE DATA
// =============================================================================

// UserProfile carries per-user capacity and working days. WorkingDays holds
// weekday names ("MONDAY", "Monday"); an empty list means every day works.
type UserProfile struct {
	Capacity    Numeric  `json:"capacity,omitempty"`
	WorkingDays []string `json:"workingDays,omitempty"`
}

// WorksOn reports whether the weekday is a working day for this profile.
func (p UserProfile) WorksOn(wd time.Weekday) bool {
	if len(p.WorkingDays) == 0 {
		return true
	}
	for _, d := range p.WorkingDays {
		if strings.EqualFold(strings.TrimSpace(d), wd.String()) {
			return true
		}
	}
	return false
}

// Holiday marks a user-day as a holiday.
type Holiday struct {
	Name      string `json:"name"`
	ProjectID string `json:"projectId,omitempty"`
}

// TimeOffInfo marks approved time off on a user-day.
type TimeOffInfo struct {
	IsFullDay bool    `json:"isFullDay"`
	Hours     Numeric `json:"hours,omitempty"`
}

type (
	HolidayMap  map[UserID]map[DateKey]Holiday
	TimeOffMap  map[UserID]map[DateKey]TimeOffInfo
	ProfileMap  map[UserID]UserProfile
	OverrideMap map[UserID]Override
)

// =============================================================================
// OVERRIDES
// =============================================================================

type OverrideMode string

const (
	ModeGlobal OverrideMode = "global"
	ModeWeekly OverrideMode = "weekly"
	ModePerDay OverrideMode = "perDay"
)

// OverrideValues is one granularity's worth of optional overrides.
type OverrideValues struct {
	Capacity        Numeric `json:"capacity,omitempty"`
	Multiplier      Numeric `json:"multiplier,omitempty"`
	Tier2Threshold  Numeric `json:"tier2Threshold,omitempty"`
	Tier2Multiplier Numeric `json:"tier2Multiplier,omitempty"`
}

// Override is a user's override configuration. The embedded values are the
// global (all-days) overrides. Weekly is keyed by weekday name and PerDay by
// date key; only the granularity chosen by Mode is consulted.
type Override struct {
	Mode OverrideMode `json:"mode,omitempty"`
	OverrideValues
	Weekly map[string]OverrideValues  `json:"weeklyOverrides,omitempty"`
	PerDay map[DateKey]OverrideValues `json:"perDayOverrides,omitempty"`
}

// =============================================================================
// CONFIG & PARAMS
// =============================================================================

// AmountView selects which monetary view is displayed.
type AmountView string

const (
	ViewEarned AmountView = "earned"
	ViewCost   AmountView = "cost"
	ViewProfit AmountView = "profit"
)

// Config holds the feature flags that shape a calculation.
type Config struct {
	UseProfileCapacity    bool       `json:"useProfileCapacity" koanf:"use_profile_capacity"`
	UseProfileWorkingDays bool       `json:"useProfileWorkingDays" koanf:"use_profile_working_days"`
	ApplyHolidays         bool       `json:"applyHolidays" koanf:"apply_holidays"`
	ApplyTimeOff          bool       `json:"applyTimeOff" koanf:"apply_time_off"`
	EnableTieredOT        bool       `json:"enableTieredOT" koanf:"enable_tiered_ot"`
	AmountDisplay         AmountView `json:"amountDisplay" koanf:"amount_display"`
}

// DefaultConfig returns the flags used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		UseProfileCapacity:    true,
		UseProfileWorkingDays: true,
		ApplyHolidays:         true,
		ApplyTimeOff:          true,
		EnableTieredOT:        false,
		AmountDisplay:         ViewEarned,
	}
}

// Params holds the global calculation defaults (precedence level 5).
type Params struct {
	DailyThreshold      float64 `json:"dailyThreshold" koanf:"daily_threshold"`
	WeeklyThreshold     float64 `json:"weeklyThreshold" koanf:"weekly_threshold"` // carried; daily mode ignores it
	OvertimeMultiplier  float64 `json:"overtimeMultiplier" koanf:"overtime_multiplier"`
	Tier2ThresholdHours float64 `json:"tier2ThresholdHours" koanf:"tier2_threshold_hours"`
	Tier2Multiplier     float64 `json:"tier2Multiplier" koanf:"tier2_multiplier"`
}

func DefaultParams() Params {
	return Params{
		DailyThreshold:      8,
		WeeklyThreshold:     40,
		OvertimeMultiplier:  1.5,
		Tier2ThresholdHours: 0,
		Tier2Multiplier:     2,
	}
}

// =============================================================================
// INPUT
// =============================================================================

// Input is the immutable snapshot for one calculation.
type Input struct {
	Entries   []TimeEntry
	Users     []User
	Profiles  ProfileMap
	Holidays  HolidayMap
	TimeOff   TimeOffMap
	Overrides OverrideMap
	Config    Config
	Params    Params

	// Range is optional; when nil it is derived from the entries.
	Range *DateRange

	// Location decides which calendar day an instant belongs to. Nil means UTC.
	Location *time.Location
}

// =============================================================================
// OUTPUT
// =============================================================================

// Kind is the closed classification of an entry.
type Kind string

const (
	KindWork  Kind = "work"
	KindBreak Kind = "break"
	KindPTO   Kind = "pto"
)

// MoneyBreakdown is one monetary view of an entry.
type MoneyBreakdown struct {
	Rate         decimal.Decimal `json:"rate"`
	Regular      decimal.Decimal `json:"regular"`
	OvertimeBase decimal.Decimal `json:"overtimeBase"`
	Tier1Premium decimal.Decimal `json:"tier1Premium"`
	Tier2Premium decimal.Decimal `json:"tier2Premium"`
	Total        decimal.Decimal `json:"total"`
}

// EntryAnalysis is the computed result attached to one entry.
type EntryAnalysis struct {
	Kind       Kind            `json:"kind"`
	Duration   decimal.Decimal `json:"duration"`
	Regular    decimal.Decimal `json:"regular"`
	Overtime   decimal.Decimal `json:"overtime"`
	Tier1Hours decimal.Decimal `json:"tier1Hours"`
	Tier2Hours decimal.Decimal `json:"tier2Hours"`
	IsBillable bool            `json:"isBillable"`
	Tags       []string        `json:"tags,omitempty"`

	Earned MoneyBreakdown `json:"earned"`
	Cost   MoneyBreakdown `json:"cost"`
	Profit MoneyBreakdown `json:"profit"`
}

// View returns the breakdown for the given view (earned when unknown).
func (a EntryAnalysis) View(v AmountView) MoneyBreakdown {
	switch v {
	case ViewCost:
		return a.Cost
	case ViewProfit:
		return a.Profit
	default:
		return a.Earned
	}
}

// AnalyzedEntry pairs an untouched input entry with its analysis.
type AnalyzedEntry struct {
	Entry    TimeEntry     `json:"entry"`
	Analysis EntryAnalysis `json:"analysis"`
}

// DayMeta describes the resolved context of one user-day.
type DayMeta struct {
	BaseCapacity      decimal.Decimal `json:"baseCapacity"`
	Capacity          decimal.Decimal `json:"capacity"`
	Multiplier        decimal.Decimal `json:"multiplier"`
	Tier2Threshold    decimal.Decimal `json:"tier2Threshold"`
	Tier2Multiplier   decimal.Decimal `json:"tier2Multiplier"`
	IsHoliday         bool            `json:"isHoliday"`
	HolidayName       string          `json:"holidayName,omitempty"`
	HolidayProjectID  string          `json:"holidayProjectId,omitempty"`
	IsNonWorking      bool            `json:"isNonWorking"`
	IsTimeOff         bool            `json:"isTimeOff"`
	IsFullDayTimeOff  bool            `json:"isFullDayTimeOff"`
	TimeOffHours      decimal.Decimal `json:"timeOffHours"`
	InferredFromEntry bool            `json:"inferredFromEntry,omitempty"`
}

// DayData is one calendar day of a user's report.
type DayData struct {
	Entries []AnalyzedEntry `json:"entries"`
	Meta    DayMeta         `json:"meta"`
}

// MoneyTotals aggregates one monetary view.
type MoneyTotals struct {
	Base         decimal.Decimal `json:"base"`
	Tier1Premium decimal.Decimal `json:"tier1Premium"`
	Tier2Premium decimal.Decimal `json:"tier2Premium"`
	Premium      decimal.Decimal `json:"premium"`
	Total        decimal.Decimal `json:"total"`
}

// UserTotals is the rounded aggregate of a user's report.
type UserTotals struct {
	Regular           decimal.Decimal `json:"regular"`
	Overtime          decimal.Decimal `json:"overtime"`
	Total             decimal.Decimal `json:"total"`
	Breaks            decimal.Decimal `json:"breaks"`
	PTO               decimal.Decimal `json:"pto"`
	BillableWorked    decimal.Decimal `json:"billableWorked"`
	NonBillableWorked decimal.Decimal `json:"nonBillableWorked"`
	BillableOT        decimal.Decimal `json:"billableOT"`
	NonBillableOT     decimal.Decimal `json:"nonBillableOT"`
	Tier1Hours        decimal.Decimal `json:"tier1Hours"`
	Tier2Hours        decimal.Decimal `json:"tier2Hours"`

	Earned MoneyTotals `json:"earned"`
	Cost   MoneyTotals `json:"cost"`
	Profit MoneyTotals `json:"profit"`

	// Premiums of the displayed view (Config.AmountDisplay).
	OTPremium    decimal.Decimal `json:"otPremium"`
	Tier2Premium decimal.Decimal `json:"tier2Premium"`

	Expected     decimal.Decimal `json:"expected"`
	HolidayCount int             `json:"holidayCount"`
	HolidayHours decimal.Decimal `json:"holidayHours"`
	TimeOffCount int             `json:"timeOffCount"`
	TimeOffHours decimal.Decimal `json:"timeOffHours"`
	EntryCount   int             `json:"entryCount"`
}

// View returns the money totals for the given view (earned when unknown).
func (t UserTotals) View(v AmountView) MoneyTotals {
	switch v {
	case ViewCost:
		return t.Cost
	case ViewProfit:
		return t.Profit
	default:
		return t.Earned
	}
}

// UserAnalysis is the per-user output record.
type UserAnalysis struct {
	UserID   UserID              `json:"userId"`
	UserName string              `json:"userName"`
	Days     map[DateKey]DayData `json:"days"`

	// Undated holds entries whose start instant could not be parsed.
	Undated []AnalyzedEntry `json:"undated,omitempty"`

	Totals UserTotals `json:"totals"`
}

// DayKeys returns the day keys in calendar order.
func (u UserAnalysis) DayKeys() []DateKey {
	keys := make([]DateKey, 0, len(u.Days))
	for k := range u.Days {
		keys = append(keys, k)
	}
	sortDateKeys(keys)
	return keys
}
