package engine_test

import (
	"encoding/json"
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/overtime-engine/engine"
)

// =============================================================================
// SCENARIOS
// =============================================================================

func TestCalculate_ScenarioA_TailAttribution(t *testing.T) {
	// GIVEN: Capacity 8h, entries 3h work, 2h break, 5h work
	// WHEN: Calculating the day
	// THEN: Everything is regular (breaks do not consume capacity)

	results := engine.Calculate(engine.Input{
		Entries: []engine.TimeEntry{
			work("e1", monday, 9, 3),
			brk("e2", monday, 12, 2),
			work("e3", monday, 14, 5),
		},
		Config: flatConfig(),
		Params: engine.DefaultParams(),
		Range:  singleDay(monday),
	})

	require.Len(t, results, 1)
	totals := results[0].Totals
	assertDec(t, 10, totals.Regular, "regular")
	assertDec(t, 0, totals.Overtime, "overtime")
	assertDec(t, 2, totals.Breaks, "breaks")
	assertDec(t, 10, totals.Total, "total")
}

func TestCalculate_ScenarioB_SplitBoundaryWithTiers(t *testing.T) {
	// GIVEN: A Sunday with 3h overtime already accumulated, threshold 4h,
	//        then Monday: 3h work, 1h break, 4h work, 3h non-billable work
	// WHEN: Calculating with tiered overtime
	// THEN: The last entry splits 1h regular / 2h overtime, 1h tier-1 / 1h tier-2

	sunday := "2025-03-09"
	last := entry("e4", "u1", monday, 17, 3, "REGULAR", false)
	last.CostRate = engine.Num(20)

	params := engine.DefaultParams()
	params.Tier2ThresholdHours = 4
	params.OvertimeMultiplier = 1.5
	params.Tier2Multiplier = 2
	cfg := flatConfig()
	cfg.EnableTieredOT = true

	results := engine.Calculate(engine.Input{
		Entries: []engine.TimeEntry{
			work("e0", sunday, 8, 11),
			work("e1", monday, 8, 3),
			brk("e2", monday, 11, 1),
			work("e3", monday, 12, 4),
			last,
		},
		Config: cfg,
		Params: params,
		Range:  &engine.DateRange{Start: engine.DateKey(sunday), End: engine.DateKey(monday)},
	})
	require.Len(t, results, 1)

	prior := results[0].Days[engine.DateKey(sunday)].Entries[0].Analysis
	assertDec(t, 3, prior.Overtime, "prior overtime")
	assertDec(t, 3, prior.Tier1Hours, "prior tier1")

	day := results[0].Days[engine.DateKey(monday)]
	require.Len(t, day.Entries, 4)
	e4 := day.Entries[3].Analysis
	assertDec(t, 1, e4.Regular, "regular")
	assertDec(t, 2, e4.Overtime, "overtime")
	assertDec(t, 1, e4.Tier1Hours, "tier1")
	assertDec(t, 1, e4.Tier2Hours, "tier2")

	// Non-billable earns nothing; cost keeps its rate.
	assertDec(t, 0, e4.Earned.Total, "earned")
	assertDec(t, 20, e4.Cost.Regular, "cost regular")
	assertDec(t, 40, e4.Cost.OvertimeBase, "cost OT base")
	assertDec(t, 20, e4.Cost.Tier1Premium, "cost tier1 premium")
	assertDec(t, 10, e4.Cost.Tier2Premium, "cost tier2 premium")
	assertDec(t, 90, e4.Cost.Total, "cost total")
	assertDec(t, -20, e4.Profit.Rate, "profit rate")
	assertDec(t, -90, e4.Profit.Total, "profit total")

	// Monday alone: billable worked 3+4=7, non-billable worked break 1 + e4 1,
	// non-billable OT 2. Sunday adds 8 billable worked and 3 billable OT.
	totals := results[0].Totals
	assertDec(t, 5, totals.Overtime, "user overtime")
	assertDec(t, 4, totals.Tier1Hours, "user tier1")
	assertDec(t, 1, totals.Tier2Hours, "user tier2")
	assertDec(t, 15, totals.BillableWorked, "billable worked")
	assertDec(t, 3, totals.BillableOT, "billable OT")
	assertDec(t, 2, totals.NonBillableWorked, "non-billable worked")
	assertDec(t, 2, totals.NonBillableOT, "non-billable OT")
}

func TestCalculate_ScenarioC_HolidayZeroesCapacity(t *testing.T) {
	// GIVEN: Base capacity 8h, the day is a holiday
	// WHEN: A 4h work entry is recorded
	// THEN: Capacity is 0 and all 4h are overtime

	results := engine.Calculate(engine.Input{
		Entries:  []engine.TimeEntry{work("e1", monday, 9, 4)},
		Holidays: engine.HolidayMap{"u1": {engine.DateKey(monday): {Name: "Founders Day"}}},
		Config:   flatConfig(),
		Params:   engine.DefaultParams(),
		Range:    singleDay(monday),
	})

	day := results[0].Days[engine.DateKey(monday)]
	assert.True(t, day.Meta.IsHoliday)
	assert.Equal(t, "Founders Day", day.Meta.HolidayName)
	assertDec(t, 0, day.Meta.Capacity, "capacity")
	assertDec(t, 0, day.Entries[0].Analysis.Regular, "regular")
	assertDec(t, 4, day.Entries[0].Analysis.Overtime, "overtime")
	assert.Contains(t, day.Entries[0].Analysis.Tags, "HOLIDAY")

	totals := results[0].Totals
	assert.Equal(t, 1, totals.HolidayCount)
	assertDec(t, 8, totals.HolidayHours, "holiday hours")
	assertDec(t, 0, totals.Expected, "expected")
}

func TestCalculate_ScenarioD_PartialTimeOff(t *testing.T) {
	// GIVEN: Base capacity 8h and 2h approved time off
	// WHEN: An 8h work entry is recorded
	// THEN: Capacity is 6h: 6h regular, 2h overtime

	results := engine.Calculate(engine.Input{
		Entries: []engine.TimeEntry{work("e1", monday, 8, 8)},
		TimeOff: engine.TimeOffMap{"u1": {engine.DateKey(monday): {Hours: engine.Num(2)}}},
		Config:  flatConfig(),
		Params:  engine.DefaultParams(),
		Range:   singleDay(monday),
	})

	day := results[0].Days[engine.DateKey(monday)]
	assertDec(t, 6, day.Meta.Capacity, "capacity")
	assertDec(t, 6, day.Entries[0].Analysis.Regular, "regular")
	assertDec(t, 2, day.Entries[0].Analysis.Overtime, "overtime")

	totals := results[0].Totals
	assert.Equal(t, 1, totals.TimeOffCount)
	assertDec(t, 2, totals.TimeOffHours, "time off hours")
}

// =============================================================================
// DAY CONTEXT FALLBACKS
// =============================================================================

func TestCalculate_HolidayInferredFromEntry_WhenReferenceDisabled(t *testing.T) {
	// GIVEN: ApplyHolidays is off and the day has a HOLIDAY_TIME_ENTRY entry
	// WHEN: Calculating
	// THEN: The day is treated as a holiday; the PTO entry stays regular

	cfg := flatConfig()
	cfg.ApplyHolidays = false
	holiday := entry("h1", "u1", monday, 0, 8, "holiday_time_entry", false)
	holiday.Description = "Spring Holiday"

	results := engine.Calculate(engine.Input{
		Entries: []engine.TimeEntry{holiday, work("e1", monday, 9, 2)},
		// Reference data is ignored when the flag is off.
		Holidays: engine.HolidayMap{"u1": {engine.DateKey(monday): {Name: "ignored"}}},
		Config:   cfg,
		Params:   engine.DefaultParams(),
		Range:    singleDay(monday),
	})

	day := results[0].Days[engine.DateKey(monday)]
	assert.True(t, day.Meta.IsHoliday)
	assert.True(t, day.Meta.InferredFromEntry)
	assert.Equal(t, "Spring Holiday", day.Meta.HolidayName)

	pto := day.Entries[0].Analysis
	assert.Equal(t, engine.KindPTO, pto.Kind)
	assertDec(t, 8, pto.Regular, "pto regular")
	assertDec(t, 0, pto.Overtime, "pto overtime")

	assertDec(t, 2, day.Entries[1].Analysis.Overtime, "work on holiday")
}

func TestCalculate_HolidayEntryIgnored_WhenReferenceEnabled(t *testing.T) {
	// GIVEN: ApplyHolidays is on, no reference holiday, but a HOLIDAY entry
	// THEN: No holiday is detected; capacity stays 8

	results := engine.Calculate(engine.Input{
		Entries: []engine.TimeEntry{entry("h1", "u1", monday, 0, 8, "HOLIDAY", false)},
		Config:  flatConfig(),
		Params:  engine.DefaultParams(),
		Range:   singleDay(monday),
	})

	day := results[0].Days[engine.DateKey(monday)]
	assert.False(t, day.Meta.IsHoliday)
	assertDec(t, 8, day.Meta.Capacity, "capacity")
}

func TestCalculate_TimeOffInferredFromEntries_Summed(t *testing.T) {
	// GIVEN: ApplyTimeOff is off and two TIME_OFF entries of 1h and 2h
	// THEN: Capacity is 8 - 3 = 5

	cfg := flatConfig()
	cfg.ApplyTimeOff = false

	results := engine.Calculate(engine.Input{
		Entries: []engine.TimeEntry{
			entry("t1", "u1", monday, 8, 1, "TIME_OFF", false),
			entry("t2", "u1", monday, 9, 2, "time-off", false),
			work("e1", monday, 11, 6),
		},
		Config: cfg,
		Params: engine.DefaultParams(),
		Range:  singleDay(monday),
	})

	day := results[0].Days[engine.DateKey(monday)]
	assert.True(t, day.Meta.IsTimeOff)
	assertDec(t, 5, day.Meta.Capacity, "capacity")
	assertDec(t, 5, day.Entries[2].Analysis.Regular, "regular")
	assertDec(t, 1, day.Entries[2].Analysis.Overtime, "overtime")
	assertDec(t, 3, results[0].Totals.PTO, "pto")
}

func TestCalculate_TimeOffEntryWithOverflowingDuration(t *testing.T) {
	// GIVEN: ApplyTimeOff is off and a 2h TIME_OFF entry whose explicit
	//        duration does not fit in a time.Duration
	// WHEN: A 12h work entry follows on the same day
	// THEN: The duration falls back to end-start and capacity is 8 - 2 = 6

	cfg := flatConfig()
	cfg.ApplyTimeOff = false
	pto := entry("t1", "u1", monday, 6, 2, "TIME_OFF", false)
	pto.Duration = "PT3000000H"

	results := engine.Calculate(engine.Input{
		Entries: []engine.TimeEntry{pto, work("e1", monday, 8, 12)},
		Config:  cfg,
		Params:  engine.DefaultParams(),
		Range:   singleDay(monday),
	})

	day := results[0].Days[engine.DateKey(monday)]
	assert.True(t, day.Meta.IsTimeOff)
	assertDec(t, 6, day.Meta.Capacity, "capacity")
	assertDec(t, 2, day.Entries[0].Analysis.Duration, "time off duration")
	assertDec(t, 6, day.Entries[1].Analysis.Regular, "regular")
	assertDec(t, 6, day.Entries[1].Analysis.Overtime, "overtime")
	assertDec(t, 2, results[0].Totals.PTO, "pto")
}

func TestCalculate_FullDayTimeOff(t *testing.T) {
	results := engine.Calculate(engine.Input{
		Entries: []engine.TimeEntry{work("e1", monday, 9, 1)},
		TimeOff: engine.TimeOffMap{"u1": {engine.DateKey(monday): {IsFullDay: true}}},
		Config:  flatConfig(),
		Params:  engine.DefaultParams(),
		Range:   singleDay(monday),
	})

	day := results[0].Days[engine.DateKey(monday)]
	assert.True(t, day.Meta.IsFullDayTimeOff)
	assertDec(t, 0, day.Meta.Capacity, "capacity")
	assertDec(t, 1, day.Entries[0].Analysis.Overtime, "overtime")
	assertDec(t, 8, results[0].Totals.TimeOffHours, "time off hours")
}

func TestCalculate_NonWorkingDay(t *testing.T) {
	// GIVEN: Profile works Monday-Friday, work recorded on Saturday
	// THEN: Saturday capacity is 0 and all work is overtime

	saturday := "2025-03-15"
	cfg := flatConfig()
	cfg.UseProfileWorkingDays = true

	results := engine.Calculate(engine.Input{
		Entries: []engine.TimeEntry{work("e1", saturday, 9, 3)},
		Profiles: engine.ProfileMap{"u1": {
			WorkingDays: []string{"MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY"},
		}},
		Config: cfg,
		Params: engine.DefaultParams(),
		Range:  &engine.DateRange{Start: monday, End: engine.DateKey(saturday)},
	})

	days := results[0].Days
	require.Len(t, days, 6)
	sat := days[engine.DateKey(saturday)]
	assert.True(t, sat.Meta.IsNonWorking)
	assertDec(t, 3, sat.Entries[0].Analysis.Overtime, "overtime")
	assert.Contains(t, sat.Entries[0].Analysis.Tags, "OFF_DAY")
	assertDec(t, 40, results[0].Totals.Expected, "expected")
}

// =============================================================================
// USERS, ORDERING, DEGRADATION
// =============================================================================

func TestCalculate_UserWithoutEntries_GetsExpectedCapacity(t *testing.T) {
	// GIVEN: Two users, only one of them has entries, a five-day range
	// THEN: Both appear, sorted by name, with expected capacity computed

	results := engine.Calculate(engine.Input{
		Entries: []engine.TimeEntry{entry("e1", "u2", monday, 9, 1, "", true)},
		Users: []engine.User{
			{ID: "u2", Name: "Zoe"},
			{ID: "u1", Name: "Adam"},
		},
		TimeOff: engine.TimeOffMap{"u1": {"2025-03-11": {IsFullDay: true}}},
		Config:  flatConfig(),
		Params:  engine.DefaultParams(),
		Range:   &engine.DateRange{Start: monday, End: "2025-03-14"},
	})

	require.Len(t, results, 2)
	assert.Equal(t, "Adam", results[0].UserName)
	assert.Equal(t, "Zoe", results[1].UserName)

	adam := results[0]
	assert.Len(t, adam.Days, 5)
	assert.Equal(t, 0, adam.Totals.EntryCount)
	assertDec(t, 32, adam.Totals.Expected, "expected")
	assert.Equal(t, 1, adam.Totals.TimeOffCount)
}

func TestCalculate_EqualStartTimes_KeepInputOrder(t *testing.T) {
	// GIVEN: Capacity 8, two entries with the same start: 6h then 4h
	// THEN: The first listed entry is processed first

	a := work("a", monday, 9, 6)
	b := work("b", monday, 9, 4)
	results := engine.Calculate(engine.Input{
		Entries: []engine.TimeEntry{work("late", monday, 20, 1), a, b},
		Config:  flatConfig(),
		Params:  engine.DefaultParams(),
		Range:   singleDay(monday),
	})

	day := results[0].Days[engine.DateKey(monday)]
	require.Len(t, day.Entries, 3)
	assert.Equal(t, "a", day.Entries[0].Entry.ID)
	assert.Equal(t, "b", day.Entries[1].Entry.ID)
	assert.Equal(t, "late", day.Entries[2].Entry.ID)
	assertDec(t, 6, day.Entries[0].Analysis.Regular)
	assertDec(t, 2, day.Entries[1].Analysis.Regular)
	assertDec(t, 2, day.Entries[1].Analysis.Overtime)
	assertDec(t, 1, day.Entries[2].Analysis.Overtime)
}

func TestCalculate_MidnightSpanningEntry_CountsOnStartDay(t *testing.T) {
	// GIVEN: A 4h entry from 22:00 to 02:00
	// THEN: All 4h belong to the start day

	results := engine.Calculate(engine.Input{
		Entries: []engine.TimeEntry{work("e1", monday, 22, 4)},
		Config:  flatConfig(),
		Params:  engine.DefaultParams(),
	})

	days := results[0].Days
	require.Len(t, days, 1)
	assertDec(t, 4, days[engine.DateKey(monday)].Entries[0].Analysis.Duration)
}

func TestCalculate_LocationDecidesDay(t *testing.T) {
	// GIVEN: An entry at 23:30 UTC and a location 2h ahead
	// THEN: The entry belongs to the next calendar day

	loc := time.FixedZone("UTC+2", 2*60*60)
	results := engine.Calculate(engine.Input{
		Entries:  []engine.TimeEntry{work("e1", monday, 23.5, 1)},
		Config:   flatConfig(),
		Params:   engine.DefaultParams(),
		Location: loc,
	})

	_, ok := results[0].Days["2025-03-11"]
	assert.True(t, ok)
}

func TestCalculate_MalformedData_Degrades(t *testing.T) {
	// GIVEN: Entries with broken timestamps and durations
	// THEN: Nothing panics; bad values resolve to zero

	badDuration := work("dur", monday, 9, 2)
	badDuration.Duration = "not-a-duration" // falls back to End-Start

	isoDuration := work("iso", monday, 12, 1)
	isoDuration.Duration = "PT1H30M" // explicit duration wins
	isoDuration.End = ""

	noEnd := work("noend", monday, 15, 1)
	noEnd.End = "garbage"

	noStart := work("nostart", monday, 0, 1)
	noStart.Start = "yesterday-ish"

	results := engine.Calculate(engine.Input{
		Entries: []engine.TimeEntry{badDuration, isoDuration, noEnd, noStart},
		Config:  flatConfig(),
		Params:  engine.DefaultParams(),
	})

	require.Len(t, results, 1)
	day := results[0].Days[engine.DateKey(monday)]
	require.Len(t, day.Entries, 3)
	assertDec(t, 2, day.Entries[0].Analysis.Duration, "end-start fallback")
	assertDec(t, 1.5, day.Entries[1].Analysis.Duration, "ISO duration")
	assertDec(t, 0, day.Entries[2].Analysis.Duration, "no usable duration")

	require.Len(t, results[0].Undated, 1)
	assert.Equal(t, "nostart", results[0].Undated[0].Entry.ID)
	assert.Contains(t, results[0].Undated[0].Analysis.Tags, "INVALID_TIME")
	assertDec(t, 0, results[0].Undated[0].Analysis.Duration)
	assert.Equal(t, 4, results[0].Totals.EntryCount)
}

func TestCalculate_DoesNotMutateInput(t *testing.T) {
	entries := []engine.TimeEntry{work("b", monday, 14, 1), work("a", monday, 9, 1)}
	before := append([]engine.TimeEntry(nil), entries...)

	engine.Calculate(engine.Input{Entries: entries, Config: flatConfig(), Params: engine.DefaultParams()})

	assert.Equal(t, before, entries)
}

// =============================================================================
// PROPERTIES
// =============================================================================

func randomInput(seed int64) engine.Input {
	rng := rand.New(rand.NewSource(seed))
	types := []string{"REGULAR", "", "BREAK", "TIME_OFF", "HOLIDAY", "regular"}
	var entries []engine.TimeEntry
	for d := 0; d < 10; d++ {
		day := string(engine.DateKey(monday).AddDays(d))
		hour := 6.0
		for i := 0; i < rng.Intn(6); i++ {
			hours := float64(rng.Intn(20)+1) / 4
			e := entry("", []string{"u1", "u2"}[rng.Intn(2)], day, hour, hours, types[rng.Intn(len(types))], rng.Intn(3) > 0)
			e.ID = day + "-" + string(rune('a'+i))
			e.EarnedRate = engine.Num(float64(rng.Intn(100)))
			e.CostRate = engine.Num(float64(rng.Intn(60)))
			entries = append(entries, e)
			hour += hours / 2
		}
	}
	params := engine.DefaultParams()
	params.Tier2ThresholdHours = 5
	cfg := flatConfig()
	cfg.EnableTieredOT = true
	return engine.Input{
		Entries:   entries,
		Config:    cfg,
		Params:    params,
		Overrides: engine.OverrideMap{"u2": {OverrideValues: engine.OverrideValues{Capacity: "6"}}},
		TimeOff:   engine.TimeOffMap{"u1": {engine.DateKey(monday).AddDays(2): {Hours: engine.Num(3)}}},
	}
}

func TestProperty_ConservationCapacityAndTiers(t *testing.T) {
	for seed := int64(1); seed <= 25; seed++ {
		in := randomInput(seed)
		for _, user := range engine.Calculate(in) {
			var tier1Total decimal.Decimal
			for _, key := range user.DayKeys() {
				day := user.Days[key]
				var workRegular decimal.Decimal
				for _, ae := range day.Entries {
					a := ae.Analysis
					assert.True(t, a.Tier1Hours.Add(a.Tier2Hours).Equal(a.Overtime), "tier split seed %d", seed)
					if a.Kind == engine.KindWork {
						assert.True(t, a.Regular.Add(a.Overtime).Equal(a.Duration), "conservation seed %d", seed)
						workRegular = workRegular.Add(a.Regular)
					} else {
						assert.True(t, a.Overtime.IsZero(), "non-work overtime seed %d", seed)
						assert.True(t, a.Regular.Equal(a.Duration), "non-work regular seed %d", seed)
					}
					tier1Total = tier1Total.Add(a.Tier1Hours)
				}
				assert.True(t, workRegular.LessThanOrEqual(day.Meta.Capacity), "capacity bound seed %d day %s", seed, key)
			}
			assert.True(t, tier1Total.LessThanOrEqual(dec(5)), "tier1 bounded by threshold seed %d", seed)
		}
	}
}

func TestProperty_Determinism(t *testing.T) {
	in := randomInput(42)

	first, err := json.Marshal(engine.Calculate(in))
	require.NoError(t, err)
	second, err := json.Marshal(engine.Calculate(in))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestProperty_RoundingIsIdempotent(t *testing.T) {
	// GIVEN: Per-entry analyses at full precision
	// WHEN: Summing them and rounding once
	// THEN: The result equals the reported totals, and rounding again is a no-op

	in := randomInput(7)
	for _, user := range engine.Calculate(in) {
		var regular, overtime, earned, cost decimal.Decimal
		for _, key := range user.DayKeys() {
			for _, ae := range user.Days[key].Entries {
				regular = regular.Add(ae.Analysis.Regular)
				overtime = overtime.Add(ae.Analysis.Overtime)
				earned = earned.Add(ae.Analysis.Earned.Total)
				cost = cost.Add(ae.Analysis.Cost.Total)
			}
		}
		assert.True(t, engine.RoundHours(regular).Equal(user.Totals.Regular), "regular for %s", user.UserID)
		assert.True(t, engine.RoundHours(overtime).Equal(user.Totals.Overtime), "overtime for %s", user.UserID)
		assert.True(t, engine.RoundMoney(earned).Equal(user.Totals.Earned.Total), "earned for %s", user.UserID)
		assert.True(t, engine.RoundMoney(cost).Equal(user.Totals.Cost.Total), "cost for %s", user.UserID)

		assert.True(t, engine.RoundHours(user.Totals.Regular).Equal(user.Totals.Regular))
		assert.True(t, engine.RoundMoney(user.Totals.Earned.Total).Equal(user.Totals.Earned.Total))
	}
}
