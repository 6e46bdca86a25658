/*
daycontext.go - Effective capacity for a user-day

PURPOSE:
  Applies holidays, non-working days and time off to the base capacity
  produced by the precedence chain.

RULES (first match wins):
  1. Holiday                          -> 0
  2. Weekday outside working days     -> 0
  3. Full-day time off                -> 0
  4. Partial time off                 -> max(0, base - hours)
  5. Otherwise                        -> base

DUAL-SOURCE DETECTION:
  Holidays and time off each have two detectors: one reading structured
  reference data, one inferring from entry type tags. The reference detector
  runs only when its Apply* flag is on, the entry detector only when it is
  off, and the results are OR-ed. Both can never fire for the same signal.
*/
package engine

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DayContext is everything known about a user-day before adjustment.
type DayContext struct {
	Date       DateKey
	Resolved   Resolved
	WorkingDay bool
	Holiday    *Holiday     // reference data, nil when absent
	TimeOff    *TimeOffInfo // reference data, nil when absent
	Entries    []TimeEntry  // the day's raw entries
}

type timeOffSignal struct {
	fullDay bool
	hours   decimal.Decimal
}

// =============================================================================
// DETECTORS
// =============================================================================

func holidayFromReference(dc DayContext, cfg Config) (Holiday, bool) {
	if !cfg.ApplyHolidays || dc.Holiday == nil {
		return Holiday{}, false
	}
	return *dc.Holiday, true
}

func holidayFromEntries(dc DayContext, cfg Config) (Holiday, bool) {
	if cfg.ApplyHolidays {
		return Holiday{}, false
	}
	for _, e := range dc.Entries {
		if isHolidayEntry(e) {
			name := strings.TrimSpace(e.Description)
			if name == "" {
				name = "Holiday"
			}
			return Holiday{Name: name, ProjectID: e.ProjectID}, true
		}
	}
	return Holiday{}, false
}

func timeOffFromReference(dc DayContext, cfg Config) (timeOffSignal, bool) {
	if !cfg.ApplyTimeOff || dc.TimeOff == nil {
		return timeOffSignal{}, false
	}
	hours := decimal.Max(decimal.Zero, dc.TimeOff.Hours.OrZero())
	if !dc.TimeOff.IsFullDay && hours.IsZero() {
		return timeOffSignal{}, false
	}
	return timeOffSignal{fullDay: dc.TimeOff.IsFullDay, hours: hours}, true
}

func timeOffFromEntries(dc DayContext, cfg Config) (timeOffSignal, bool) {
	if cfg.ApplyTimeOff {
		return timeOffSignal{}, false
	}
	found := false
	hours := decimal.Zero
	for _, e := range dc.Entries {
		if isTimeOffEntry(e) {
			found = true
			hours = hours.Add(decimal.Max(decimal.Zero, entryHours(e)))
		}
	}
	return timeOffSignal{hours: hours}, found
}

func detectHoliday(dc DayContext, cfg Config) (Holiday, bool, bool) {
	if h, ok := holidayFromReference(dc, cfg); ok {
		return h, true, false
	}
	if h, ok := holidayFromEntries(dc, cfg); ok {
		return h, true, true
	}
	return Holiday{}, false, false
}

func detectTimeOff(dc DayContext, cfg Config) (timeOffSignal, bool, bool) {
	if t, ok := timeOffFromReference(dc, cfg); ok {
		return t, true, false
	}
	if t, ok := timeOffFromEntries(dc, cfg); ok {
		return t, true, true
	}
	return timeOffSignal{}, false, false
}

// =============================================================================
// ADJUSTMENT
// =============================================================================

// AdjustDay produces the day's metadata, including effective capacity.
func AdjustDay(dc DayContext, cfg Config) DayMeta {
	base := dc.Resolved.Capacity
	meta := DayMeta{
		BaseCapacity:    base,
		Multiplier:      dc.Resolved.Multiplier,
		Tier2Threshold:  dc.Resolved.Tier2Threshold,
		Tier2Multiplier: dc.Resolved.Tier2Multiplier,
		IsNonWorking:    !dc.WorkingDay,
		TimeOffHours:    decimal.Zero,
	}

	holiday, isHoliday, holidayInferred := detectHoliday(dc, cfg)
	if isHoliday {
		meta.IsHoliday = true
		meta.HolidayName = holiday.Name
		meta.HolidayProjectID = holiday.ProjectID
	}

	timeOff, isTimeOff, timeOffInferred := detectTimeOff(dc, cfg)
	if isTimeOff {
		meta.IsTimeOff = true
		meta.IsFullDayTimeOff = timeOff.fullDay
		meta.TimeOffHours = timeOff.hours
		if timeOff.fullDay {
			meta.TimeOffHours = decimal.Max(decimal.Zero, base)
		}
	}
	meta.InferredFromEntry = holidayInferred || timeOffInferred

	switch {
	case meta.IsHoliday, meta.IsNonWorking, meta.IsFullDayTimeOff:
		meta.Capacity = decimal.Zero
	case meta.IsTimeOff:
		meta.Capacity = decimal.Max(decimal.Zero, base.Sub(meta.TimeOffHours))
	default:
		meta.Capacity = decimal.Max(decimal.Zero, base)
	}
	return meta
}

// timeOffApplied reports whether time off, rather than a holiday or a
// non-working day, decided the day's capacity.
func (m DayMeta) timeOffApplied() bool {
	return m.IsTimeOff && !m.IsHoliday && !m.IsNonWorking
}

// contextTags lists the day-level tags copied onto each entry analysis.
func (m DayMeta) contextTags() []string {
	var tags []string
	if m.IsHoliday {
		tags = append(tags, "HOLIDAY")
	}
	if m.IsNonWorking {
		tags = append(tags, "OFF_DAY")
	}
	if m.IsTimeOff {
		tags = append(tags, "TIME_OFF")
	}
	return tags
}
