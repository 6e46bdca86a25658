package engine

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DATE KEY - Calendar day identifier ("2006-01-02")
// =============================================================================

const DateLayout = "2006-01-02"

type DateKey string

// ParseDateKey validates and normalizes a "YYYY-MM-DD" string.
func ParseDateKey(s string) (DateKey, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return "", err
	}
	return DateKey(t.Format(DateLayout)), nil
}

// DateKeyOf returns the calendar day of t in loc (UTC when nil).
func DateKeyOf(t time.Time, loc *time.Location) DateKey {
	if loc == nil {
		loc = time.UTC
	}
	return DateKey(t.In(loc).Format(DateLayout))
}

// NewDateKey builds a key from its parts.
func NewDateKey(year int, month time.Month, day int) DateKey {
	return DateKey(time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Format(DateLayout))
}

func (k DateKey) Time() time.Time {
	t, _ := time.Parse(DateLayout, string(k))
	return t
}

func (k DateKey) Weekday() time.Weekday { return k.Time().Weekday() }
func (k DateKey) AddDays(n int) DateKey { return DateKey(k.Time().AddDate(0, 0, n).Format(DateLayout)) }
func (k DateKey) String() string        { return string(k) }

// Keys are zero-padded, so lexical order is calendar order.
func (k DateKey) Before(other DateKey) bool { return k < other }

func sortDateKeys(keys []DateKey) {
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
}

// =============================================================================
// DATE RANGE - Inclusive calendar range
// =============================================================================

// DateRange is an inclusive range of calendar days.
type DateRange struct {
	Start DateKey `json:"start"`
	End   DateKey `json:"end"`
}

// Contains reports whether the day is inside [Start, End].
func (r DateRange) Contains(k DateKey) bool {
	return k >= r.Start && k <= r.End
}

// Days returns every day in the range. A reversed or malformed range yields
// none.
func (r DateRange) Days() []DateKey {
	var days []DateKey
	if r.Validate() != nil {
		return days
	}
	for current := r.Start; current <= r.End; current = current.AddDays(1) {
		days = append(days, current)
	}
	return days
}

// Validate checks that both ends parse and End is not before Start.
func (r DateRange) Validate() error {
	if _, err := ParseDateKey(string(r.Start)); err != nil {
		return &RangeError{Range: r, Reason: "invalid start date"}
	}
	if _, err := ParseDateKey(string(r.End)); err != nil {
		return &RangeError{Range: r, Reason: "invalid end date"}
	}
	if r.End.Before(r.Start) {
		return &RangeError{Range: r, Reason: "end before start"}
	}
	return nil
}

func (r DateRange) String() string {
	return "[" + string(r.Start) + ", " + string(r.End) + "]"
}

// WeekOf returns the Monday-to-Sunday range containing the day.
func WeekOf(k DateKey) DateRange {
	wd := int(k.Weekday())
	if wd == 0 {
		wd = 7 // Sunday ends the ISO week
	}
	monday := k.AddDays(-(wd - 1))
	return DateRange{Start: monday, End: monday.AddDays(6)}
}

// =============================================================================
// INSTANTS AND DURATIONS
// =============================================================================

var (
	hoursPerNano     = decimal.NewFromInt(int64(time.Hour))
	maxDurationNanos = decimal.NewFromInt(math.MaxInt64)
)

// ParseInstant parses an RFC 3339 timestamp (with or without fractional seconds).
func ParseInstant(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

var isoDuration = regexp.MustCompile(`^P(?:(\d+(?:\.\d+)?)D)?(?:T(?:(\d+(?:\.\d+)?)H)?(?:(\d+(?:\.\d+)?)M)?(?:(\d+(?:\.\d+)?)S)?)?$`)

// ParseDuration accepts ISO-8601 day/time durations ("PT7H30M", "P1DT2H")
// and Go duration strings ("7h30m"). Negative durations are rejected.
func ParseDuration(s string) (time.Duration, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}
	if m := isoDuration.FindStringSubmatch(s); m != nil && s != "P" && s != "PT" {
		units := []time.Duration{24 * time.Hour, time.Hour, time.Minute, time.Second}
		total := decimal.Zero
		for i, unit := range units {
			if m[i+1] == "" {
				continue
			}
			v, err := decimal.NewFromString(m[i+1])
			if err != nil {
				return 0, false
			}
			total = total.Add(v.Mul(decimal.NewFromInt(int64(unit))))
		}
		// Anything time.Duration cannot hold is malformed.
		total = total.Truncate(0)
		if total.GreaterThan(maxDurationNanos) {
			return 0, false
		}
		return time.Duration(total.IntPart()), true
	}
	d, err := time.ParseDuration(strings.ToLower(s))
	if err != nil || d < 0 {
		return 0, false
	}
	return d, true
}

// DurationHours converts a duration to decimal hours.
func DurationHours(d time.Duration) decimal.Decimal {
	return decimal.NewFromInt(int64(d)).Div(hoursPerNano)
}

// entryHours resolves an entry's duration: explicit duration first, then
// End-Start, then zero.
func entryHours(e TimeEntry) decimal.Decimal {
	if d, ok := ParseDuration(e.Duration); ok {
		return DurationHours(d)
	}
	start, okStart := ParseInstant(e.Start)
	end, okEnd := ParseInstant(e.End)
	if okStart && okEnd && !end.Before(start) {
		return DurationHours(end.Sub(start))
	}
	return decimal.Zero
}
