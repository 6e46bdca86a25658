package engine

import "github.com/shopspring/decimal"

// TierSplit is an entry's overtime divided into tiers.
type TierSplit struct {
	Tier1 decimal.Decimal
	Tier2 decimal.Decimal
}

// TierState is a user's cumulative overtime across the whole report range.
// It is threaded through the day loop as a value: every Split returns the
// next state instead of mutating a shared counter.
type TierState struct {
	Cumulative decimal.Decimal
}

// Split divides one entry's overtime into tier-1 and tier-2 hours and
// returns the advanced state. Tiering applies only when enabled and the
// threshold is positive; otherwise everything is tier-1. The state always
// advances by the full overtime.
func (s TierState) Split(overtime, threshold decimal.Decimal, enabled bool) (TierSplit, TierState) {
	overtime = decimal.Max(decimal.Zero, overtime)
	before := s.Cumulative
	after := before.Add(overtime)
	next := TierState{Cumulative: after}

	if !enabled || !threshold.IsPositive() {
		return TierSplit{Tier1: overtime, Tier2: decimal.Zero}, next
	}

	switch {
	case before.GreaterThanOrEqual(threshold):
		return TierSplit{Tier1: decimal.Zero, Tier2: overtime}, next
	case after.LessThanOrEqual(threshold):
		return TierSplit{Tier1: overtime, Tier2: decimal.Zero}, next
	default:
		tier1 := threshold.Sub(before)
		return TierSplit{Tier1: tier1, Tier2: overtime.Sub(tier1)}, next
	}
}
