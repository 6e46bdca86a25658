package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/warp/overtime-engine/engine"
)

func TestEntryRates_DirectFieldsWin(t *testing.T) {
	e := engine.TimeEntry{
		Billable:   true,
		EarnedRate: engine.Num(50),
		CostRate:   "30",
		Amounts:    []engine.TypedAmount{{Type: "EARNED", Value: engine.Num(1000)}},
	}

	r := engine.EntryRates(e, dec(4))

	assertDec(t, 50, r.Earned)
	assertDec(t, 30, r.Cost)
	assertDec(t, 20, r.Profit)
}

func TestEntryRates_FallbackToAmounts(t *testing.T) {
	// GIVEN: No direct rates, EARNED amount 100 over 4h, cost "0"
	e := engine.TimeEntry{
		Billable: true,
		CostRate: "0",
		Amounts: []engine.TypedAmount{
			{Type: "earned", Value: engine.Num(100)},
			{Type: "COST", Value: "60"},
		},
	}

	r := engine.EntryRates(e, dec(4))

	// THEN: Rates are amount / hours
	assertDec(t, 25, r.Earned)
	assertDec(t, 15, r.Cost)
	assertDec(t, 10, r.Profit)
}

func TestEntryRates_NonBillableEarnsNothing(t *testing.T) {
	e := engine.TimeEntry{EarnedRate: engine.Num(50), CostRate: engine.Num(20)}

	r := engine.EntryRates(e, dec(2))

	assertDec(t, 0, r.Earned)
	assertDec(t, 20, r.Cost)
	assertDec(t, -20, r.Profit)
}

func TestEntryRates_ZeroHoursOrGarbage(t *testing.T) {
	e := engine.TimeEntry{
		Billable:   true,
		EarnedRate: "n/a",
		Amounts:    []engine.TypedAmount{{Type: "EARNED", Value: engine.Num(100)}},
	}

	r := engine.EntryRates(e, dec(0))

	assert.True(t, r.Earned.IsZero())
	assert.True(t, r.Cost.IsZero())
}

func TestMonetize(t *testing.T) {
	// GIVEN: 1h regular, 2h overtime of which 1h tier-2, rate 40, m1 1.5, m2 2
	split := engine.HourSplit{Duration: dec(3), Regular: dec(1), Overtime: dec(2)}
	tiers := engine.TierSplit{Tier1: dec(1), Tier2: dec(1)}

	m := engine.Monetize(split, tiers, dec(40), dec(1.5), dec(2))

	assertDec(t, 40, m.Regular)
	assertDec(t, 80, m.OvertimeBase)
	assertDec(t, 40, m.Tier1Premium)
	assertDec(t, 20, m.Tier2Premium)
	assertDec(t, 180, m.Total)
}

func TestCalculate_AmountDisplayView(t *testing.T) {
	e := work("e1", monday, 8, 10)
	e.EarnedRate = engine.Num(100)
	e.CostRate = engine.Num(60)

	for _, tt := range []struct {
		view    engine.AmountView
		premium float64
	}{
		{engine.ViewEarned, 100},
		{engine.ViewCost, 60},
		{engine.ViewProfit, 40},
		{"bogus", 100},
	} {
		cfg := flatConfig()
		cfg.AmountDisplay = tt.view
		results := engine.Calculate(engine.Input{Entries: []engine.TimeEntry{e}, Config: cfg, Params: engine.DefaultParams()})

		// 2h overtime * rate * 0.5
		assertDec(t, tt.premium, results[0].Totals.OTPremium, tt.view)
	}
}

func TestCalculate_TotalsRounded(t *testing.T) {
	// GIVEN: A 20-minute entry at rate 10 (3.333... hours-money)
	e := work("e1", monday, 8, 0)
	e.Duration = "PT20M"
	e.EarnedRate = engine.Num(10)

	results := engine.Calculate(engine.Input{Entries: []engine.TimeEntry{e}, Config: flatConfig(), Params: engine.DefaultParams()})

	totals := results[0].Totals
	assert.Equal(t, "0.3333", totals.Regular.String())
	assert.Equal(t, "3.33", totals.Earned.Total.String())
}
