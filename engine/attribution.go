package engine

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Slot is one entry as the allocator sees it.
type Slot struct {
	Kind  Kind
	Hours decimal.Decimal
}

// HourSplit is the regular/overtime result for one slot.
type HourSplit struct {
	Duration decimal.Decimal
	Regular  decimal.Decimal
	Overtime decimal.Decimal
}

// AttributeTail splits a day's slots, already in chronological order, into
// regular and overtime hours against the day's capacity. Overtime lands on
// the last hours worked; a work slot straddling the boundary is split.
// Break and PTO slots are always regular and never move the accumulator.
func AttributeTail(slots []Slot, capacity decimal.Decimal) []HourSplit {
	splits := make([]HourSplit, len(slots))
	worked := decimal.Zero

	for i, s := range slots {
		d := decimal.Max(decimal.Zero, s.Hours)
		split := HourSplit{Duration: d, Regular: d, Overtime: decimal.Zero}

		if s.Kind == KindWork {
			switch {
			case worked.GreaterThanOrEqual(capacity):
				split.Regular = decimal.Zero
				split.Overtime = d
			case worked.Add(d).LessThanOrEqual(capacity):
				// fits entirely
			default:
				split.Regular = capacity.Sub(worked)
				split.Overtime = d.Sub(split.Regular)
			}
			worked = worked.Add(d)
		}
		splits[i] = split
	}
	return splits
}

// sortByStart orders a day's entries by start instant. The sort is stable so
// entries sharing a start keep their input order.
func sortByStart(entries []TimeEntry, starts []time.Time) {
	idx := make([]int, len(entries))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return starts[idx[a]].Before(starts[idx[b]])
	})

	sortedEntries := make([]TimeEntry, len(entries))
	sortedStarts := make([]time.Time, len(starts))
	for i, j := range idx {
		sortedEntries[i] = entries[j]
		sortedStarts[i] = starts[j]
	}
	copy(entries, sortedEntries)
	copy(starts, sortedStarts)
}
