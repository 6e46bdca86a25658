package engine_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/warp/overtime-engine/engine"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// 2025-03-10 is a Monday.
const monday = "2025-03-10"

func instant(day string, hour float64) time.Time {
	d, err := time.Parse(engine.DateLayout, day)
	if err != nil {
		panic(err)
	}
	return d.Add(time.Duration(hour * float64(time.Hour)))
}

// entry builds an entry on day starting at startHour and lasting hours.
func entry(id, user, day string, startHour, hours float64, typ string, billable bool) engine.TimeEntry {
	start := instant(day, startHour)
	end := start.Add(time.Duration(hours * float64(time.Hour)))
	return engine.TimeEntry{
		ID:       id,
		UserID:   engine.UserID(user),
		UserName: "User " + user,
		Start:    start.Format(time.RFC3339),
		End:      end.Format(time.RFC3339),
		Type:     typ,
		Billable: billable,
	}
}

func work(id, day string, startHour, hours float64) engine.TimeEntry {
	return entry(id, "u1", day, startHour, hours, "REGULAR", true)
}

func brk(id, day string, startHour, hours float64) engine.TimeEntry {
	return entry(id, "u1", day, startHour, hours, "BREAK", false)
}

func singleDay(day string) *engine.DateRange {
	return &engine.DateRange{Start: engine.DateKey(day), End: engine.DateKey(day)}
}

func dec(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

func assertDec(t *testing.T, want float64, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	if !dec(want).Equal(got) {
		msg := fmt.Sprintf("expected %v, got %s", want, got)
		if len(msgAndArgs) > 0 {
			msg = fmt.Sprintf("%s: %s", fmt.Sprint(msgAndArgs...), msg)
		}
		assert.Fail(t, msg)
	}
}

func findUser(t *testing.T, results []engine.UserAnalysis, id string) engine.UserAnalysis {
	t.Helper()
	for _, r := range results {
		if r.UserID == engine.UserID(id) {
			return r
		}
	}
	t.Fatalf("user %s not in results", id)
	return engine.UserAnalysis{}
}

// flatConfig disables every profile/reference feature so tests only see
// what they set up explicitly.
func flatConfig() engine.Config {
	return engine.Config{AmountDisplay: engine.ViewEarned, ApplyHolidays: true, ApplyTimeOff: true}
}
