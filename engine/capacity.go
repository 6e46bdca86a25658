/*
capacity.go - Capacity and multiplier resolution

PURPOSE:
  Resolves, for one user-day, the base daily capacity and the three overtime
  parameters (tier-1 multiplier, tier-2 threshold, tier-2 multiplier).

PRECEDENCE (highest first, applied to each value independently):
  1. Per-day override for the exact date   (only when mode is perDay)
  2. Weekly override for the weekday       (only when mode is weekly)
  3. Global override for the user
  4. Profile capacity                      (capacity only, UseProfileCapacity)
  5. Global default from Params

  A level whose value is missing or does not parse is skipped silently.

SEE ALSO:
  - daycontext.go: Turns base capacity into effective capacity
*/
package engine

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Resolved holds the four values produced by the precedence chain.
type Resolved struct {
	Capacity        decimal.Decimal
	Multiplier      decimal.Decimal
	Tier2Threshold  decimal.Decimal
	Tier2Multiplier decimal.Decimal
}

// overrideLevels returns the override levels that apply to a date, most
// specific first.
func overrideLevels(o Override, date DateKey) []OverrideValues {
	levels := make([]OverrideValues, 0, 3)
	switch o.mode() {
	case ModePerDay:
		if v, ok := o.PerDay[date]; ok {
			levels = append(levels, v)
		}
	case ModeWeekly:
		if v, ok := o.weekly(date.Weekday()); ok {
			levels = append(levels, v)
		}
	}
	return append(levels, o.OverrideValues)
}

// resolveValue walks the override levels, then the profile value, then the
// default. It is the single fallback chain shared by all four values.
func resolveValue(levels []OverrideValues, field func(OverrideValues) Numeric, profile Numeric, def decimal.Decimal) decimal.Decimal {
	for _, lvl := range levels {
		if d, ok := field(lvl).Decimal(); ok {
			return d
		}
	}
	if d, ok := profile.Decimal(); ok {
		return d
	}
	return def
}

// Resolve computes the base values for one user-day.
func Resolve(date DateKey, override Override, profile UserProfile, hasProfile bool, cfg Config, params Params) Resolved {
	levels := overrideLevels(override, date)

	var profileCapacity Numeric
	if cfg.UseProfileCapacity && hasProfile {
		profileCapacity = profile.Capacity
	}

	return Resolved{
		Capacity: resolveValue(levels, func(v OverrideValues) Numeric { return v.Capacity },
			profileCapacity, paramDecimal(params.DailyThreshold)),
		Multiplier: resolveValue(levels, func(v OverrideValues) Numeric { return v.Multiplier },
			"", paramDecimal(params.OvertimeMultiplier)),
		Tier2Threshold: resolveValue(levels, func(v OverrideValues) Numeric { return v.Tier2Threshold },
			"", paramDecimal(params.Tier2ThresholdHours)),
		Tier2Multiplier: resolveValue(levels, func(v OverrideValues) Numeric { return v.Tier2Multiplier },
			"", paramDecimal(params.Tier2Multiplier)),
	}
}

// paramDecimal converts a default; non-finite values become zero.
func paramDecimal(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

// =============================================================================
// OVERRIDE HELPERS
// =============================================================================

func (o Override) mode() OverrideMode {
	switch strings.ToLower(strings.TrimSpace(string(o.Mode))) {
	case "weekly":
		return ModeWeekly
	case "perday", "per_day", "per-day":
		return ModePerDay
	default:
		return ModeGlobal
	}
}

// weekly looks up the weekday entry; keys are matched case-insensitively.
func (o Override) weekly(wd time.Weekday) (OverrideValues, bool) {
	if v, ok := o.Weekly[strings.ToUpper(wd.String())]; ok {
		return v, true
	}
	for k, v := range o.Weekly {
		if strings.EqualFold(strings.TrimSpace(k), wd.String()) {
			return v, true
		}
	}
	return OverrideValues{}, false
}

var weekdayNames = map[string]bool{
	"MONDAY": true, "TUESDAY": true, "WEDNESDAY": true, "THURSDAY": true,
	"FRIDAY": true, "SATURDAY": true, "SUNDAY": true,
}

// Validate checks the structure of an override before it is stored. Values
// themselves are not checked: unparseable values are skipped at resolve time.
func (o Override) Validate(userID UserID) error {
	switch strings.ToLower(strings.TrimSpace(string(o.Mode))) {
	case "", "global", "weekly", "perday", "per_day", "per-day":
	default:
		return &OverrideError{UserID: userID, Field: "mode", Reason: "unknown mode " + string(o.Mode)}
	}
	for k := range o.Weekly {
		if !weekdayNames[strings.ToUpper(strings.TrimSpace(k))] {
			return &OverrideError{UserID: userID, Field: "weeklyOverrides", Reason: "unknown weekday " + k}
		}
	}
	for k := range o.PerDay {
		if _, err := ParseDateKey(string(k)); err != nil {
			return &OverrideError{UserID: userID, Field: "perDayOverrides", Reason: "invalid date " + string(k)}
		}
	}
	return nil
}
