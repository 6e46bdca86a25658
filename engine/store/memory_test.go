package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/overtime-engine/engine"
	"github.com/warp/overtime-engine/engine/store"
)

func at(day string, hour int) string {
	d, _ := time.Parse(engine.DateLayout, day)
	return d.Add(time.Duration(hour) * time.Hour).Format(time.RFC3339)
}

func TestMemory_EntriesOrderedAndRanged(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	// GIVEN: Entries appended out of order, one with a broken start
	require.NoError(t, m.AppendEntries(ctx, []engine.TimeEntry{
		{ID: "late", UserID: "u1", Start: at("2025-03-10", 15)},
		{ID: "bad", UserID: "u1", Start: "not a time"},
		{ID: "early", UserID: "u1", Start: at("2025-03-10", 8)},
		{ID: "next", UserID: "u1", Start: at("2025-03-11", 8)},
	}))

	// WHEN: Querying Monday only
	from, _ := time.Parse(engine.DateLayout, "2025-03-10")
	got, err := m.EntriesInRange(ctx, from, from.AddDate(0, 0, 1))
	require.NoError(t, err)

	// THEN: Only Monday entries, in start order; the broken one is skipped
	require.Len(t, got, 2)
	assert.Equal(t, "early", got[0].ID)
	assert.Equal(t, "late", got[1].ID)
}

func TestMemory_ReferenceDataFilteredByRange(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	require.NoError(t, m.SaveHoliday(ctx, "u1", "2025-03-10", engine.Holiday{Name: "A"}))
	require.NoError(t, m.SaveHoliday(ctx, "u1", "2025-04-10", engine.Holiday{Name: "B"}))
	require.NoError(t, m.SaveTimeOff(ctx, "u2", "2025-03-11", engine.TimeOffInfo{IsFullDay: true}))

	rng := engine.DateRange{Start: "2025-03-10", End: "2025-03-16"}
	holidays, err := m.Holidays(ctx, rng)
	require.NoError(t, err)
	timeOff, err := m.TimeOff(ctx, rng)
	require.NoError(t, err)

	assert.Len(t, holidays["u1"], 1)
	assert.Equal(t, "A", holidays["u1"]["2025-03-10"].Name)
	assert.True(t, timeOff["u2"]["2025-03-11"].IsFullDay)
}

func TestMemory_Overrides(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	err := m.SaveOverride(ctx, "u1", engine.Override{Mode: "hourly"})
	assert.True(t, errors.Is(err, engine.ErrInvalidOverride))

	require.NoError(t, m.SaveOverride(ctx, "u1", engine.Override{OverrideValues: engine.OverrideValues{Capacity: "6"}}))
	overrides, err := m.Overrides(ctx)
	require.NoError(t, err)
	assert.Equal(t, engine.Numeric("6"), overrides["u1"].Capacity)

	require.NoError(t, m.DeleteOverride(ctx, "u1"))
	assert.True(t, engine.IsNotFound(m.DeleteOverride(ctx, "u1")))
}

func TestReport_FromMemoryStore(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	require.NoError(t, m.SaveUser(ctx, engine.User{ID: "u1", Name: "Ada"}))
	require.NoError(t, m.SaveUser(ctx, engine.User{ID: "u2", Name: "Ben"}))
	require.NoError(t, m.SaveProfile(ctx, "u1", engine.UserProfile{Capacity: engine.Num(6)}))
	require.NoError(t, m.AppendEntries(ctx, []engine.TimeEntry{
		{ID: "e1", UserID: "u1", Start: at("2025-03-10", 9), End: at("2025-03-10", 17), Type: "REGULAR", Billable: true},
		// Outside the range
		{ID: "e2", UserID: "u1", Start: at("2025-03-20", 9), End: at("2025-03-20", 17)},
	}))

	rng := engine.DateRange{Start: "2025-03-10", End: "2025-03-10"}
	results, err := engine.Report(ctx, m, rng, engine.DefaultSettings(), nil)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "Ada", results[0].UserName)
	assert.Equal(t, 1, results[0].Totals.EntryCount)
	assert.Equal(t, "2", results[0].Totals.Overtime.String())
	assert.Equal(t, "Ben", results[1].UserName)
	assert.Equal(t, "8", results[1].Totals.Expected.String())
}

func TestReport_InvalidRange(t *testing.T) {
	_, err := engine.Report(context.Background(), store.NewMemory(),
		engine.DateRange{Start: "2025-03-10", End: "2025-03-01"}, engine.DefaultSettings(), nil)

	require.Error(t, err)
	assert.True(t, engine.IsClientError(err))
}
