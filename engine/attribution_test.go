package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/overtime-engine/engine"
)

// =============================================================================
// CLASSIFICATION
// =============================================================================

func TestNormalizeType(t *testing.T) {
	tests := map[string]string{
		"":                    "REGULAR",
		"  regular ":          "REGULAR",
		"break":               "BREAK",
		"time-off":            "TIME_OFF",
		"Time Off":            "TIME_OFF",
		"TIME_OFF_TIME_ENTRY": "TIME_OFF",
		"holiday_time_entry":  "HOLIDAY",
		"meeting":             "MEETING",
	}
	for raw, want := range tests {
		assert.Equal(t, want, engine.NormalizeType(raw), "raw %q", raw)
	}
}

func TestClassify(t *testing.T) {
	assert.Equal(t, engine.KindBreak, engine.Classify(engine.TimeEntry{Type: "Break"}))
	assert.Equal(t, engine.KindPTO, engine.Classify(engine.TimeEntry{Type: "HOLIDAY"}))
	assert.Equal(t, engine.KindPTO, engine.Classify(engine.TimeEntry{Type: "time off"}))
	assert.Equal(t, engine.KindWork, engine.Classify(engine.TimeEntry{Type: "REGULAR"}))
	assert.Equal(t, engine.KindWork, engine.Classify(engine.TimeEntry{Type: "TRAVEL"}))
	assert.Equal(t, engine.KindWork, engine.Classify(engine.TimeEntry{}))
}

// =============================================================================
// TAIL ATTRIBUTION
// =============================================================================

func slot(kind engine.Kind, hours float64) engine.Slot {
	return engine.Slot{Kind: kind, Hours: dec(hours)}
}

func TestAttributeTail_SplitsBoundaryEntry(t *testing.T) {
	// GIVEN: Capacity 8, work 5h, break 1h, work 5h
	splits := engine.AttributeTail([]engine.Slot{
		slot(engine.KindWork, 5),
		slot(engine.KindBreak, 1),
		slot(engine.KindWork, 5),
	}, dec(8))

	// THEN: The break is regular; the last entry straddles the boundary
	require.Len(t, splits, 3)
	assertDec(t, 5, splits[0].Regular)
	assertDec(t, 1, splits[1].Regular)
	assertDec(t, 0, splits[1].Overtime)
	assertDec(t, 3, splits[2].Regular)
	assertDec(t, 2, splits[2].Overtime)
}

func TestAttributeTail_ZeroCapacity(t *testing.T) {
	splits := engine.AttributeTail([]engine.Slot{
		slot(engine.KindPTO, 8),
		slot(engine.KindWork, 2),
	}, dec(0))

	assertDec(t, 8, splits[0].Regular, "pto stays regular")
	assertDec(t, 0, splits[1].Regular)
	assertDec(t, 2, splits[1].Overtime)
}

func TestAttributeTail_AfterCapacityAllOvertime(t *testing.T) {
	splits := engine.AttributeTail([]engine.Slot{
		slot(engine.KindWork, 8),
		slot(engine.KindWork, 1.25),
		slot(engine.KindWork, -3), // negative durations clamp to zero
	}, dec(8))

	assertDec(t, 8, splits[0].Regular)
	assertDec(t, 1.25, splits[1].Overtime)
	assertDec(t, 0, splits[2].Duration)
	assertDec(t, 0, splits[2].Overtime)
}

// =============================================================================
// TIERS
// =============================================================================

func TestTierState_SplitAcrossThreshold(t *testing.T) {
	// GIVEN: Threshold 4h, cumulative overtime 3h
	state := engine.TierState{Cumulative: dec(3)}

	// WHEN: 2h more overtime
	split, next := state.Split(dec(2), dec(4), true)

	// THEN: 1h tier-1, 1h tier-2, state advances to 5h
	assertDec(t, 1, split.Tier1)
	assertDec(t, 1, split.Tier2)
	assertDec(t, 5, next.Cumulative)

	// AND: Everything after the threshold is tier-2
	split, next = next.Split(dec(1.5), dec(4), true)
	assertDec(t, 0, split.Tier1)
	assertDec(t, 1.5, split.Tier2)
	assertDec(t, 6.5, next.Cumulative)
}

func TestTierState_DisabledOrZeroThreshold(t *testing.T) {
	state := engine.TierState{Cumulative: dec(10)}

	split, next := state.Split(dec(2), dec(4), false)
	assertDec(t, 2, split.Tier1, "disabled")
	assertDec(t, 0, split.Tier2, "disabled")
	assertDec(t, 12, next.Cumulative, "state advances even when disabled")

	split, _ = state.Split(dec(2), dec(0), true)
	assertDec(t, 2, split.Tier1, "zero threshold")
	assertDec(t, 0, split.Tier2, "zero threshold")
}

func TestCalculate_TierStateCarriesAcrossDays(t *testing.T) {
	// GIVEN: Tiering on, threshold 3h, 2h overtime on each of two days
	params := engine.DefaultParams()
	params.Tier2ThresholdHours = 3
	cfg := flatConfig()
	cfg.EnableTieredOT = true
	tuesday := engine.DateKey(monday).AddDays(1).String()

	results := engine.Calculate(engine.Input{
		Entries: []engine.TimeEntry{work("e1", monday, 8, 10), work("e2", tuesday, 8, 10)},
		Config:  cfg,
		Params:  params,
	})

	// THEN: Day two has 1h tier-1 and 1h tier-2
	u := findUser(t, results, "u1")
	second := u.Days[engine.DateKey(tuesday)].Entries[0].Analysis
	assertDec(t, 1, second.Tier1Hours)
	assertDec(t, 1, second.Tier2Hours)
	assertDec(t, 3, u.Totals.Tier1Hours)
	assertDec(t, 1, u.Totals.Tier2Hours)
}

func TestCalculate_TieringDisabled_AllTier1(t *testing.T) {
	params := engine.DefaultParams()
	params.Tier2ThresholdHours = 1
	results := engine.Calculate(engine.Input{
		Entries: []engine.TimeEntry{work("e1", monday, 8, 12)},
		Config:  flatConfig(), // EnableTieredOT off
		Params:  params,
	})

	totals := results[0].Totals
	assertDec(t, 4, totals.Tier1Hours)
	assertDec(t, 0, totals.Tier2Hours)
}
