package engine

import (
	"strings"

	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// Rates is the per-hour rate of each monetary view.
type Rates struct {
	Earned decimal.Decimal
	Cost   decimal.Decimal
	Profit decimal.Decimal
}

// EntryRates derives the three rates for an entry. Earned and cost come from
// the direct rate fields when they are set and non-zero, otherwise from the
// matching typed amount divided by the entry's hours. Non-billable entries
// earn nothing. Profit is always earned minus cost.
func EntryRates(e TimeEntry, hours decimal.Decimal) Rates {
	earned := rateFor(e.EarnedRate, e.Amounts, "EARNED", hours)
	cost := rateFor(e.CostRate, e.Amounts, "COST", hours)
	if !e.Billable {
		earned = decimal.Zero
	}
	return Rates{Earned: earned, Cost: cost, Profit: earned.Sub(cost)}
}

func rateFor(direct Numeric, amounts []TypedAmount, kind string, hours decimal.Decimal) decimal.Decimal {
	if d, ok := direct.Decimal(); ok && !d.IsZero() {
		return d
	}
	if !hours.IsPositive() {
		return decimal.Zero
	}
	for _, a := range amounts {
		if strings.EqualFold(strings.TrimSpace(a.Type), kind) {
			if v, ok := a.Value.Decimal(); ok {
				return v.Div(hours)
			}
		}
	}
	return decimal.Zero
}

// Monetize prices an hour split at one rate.
//
//	regular       = regular * rate
//	overtimeBase  = overtime * rate
//	tier1Premium  = overtime * rate * (m1 - 1)
//	tier2Premium  = tier2 * rate * (m2 - m1)
func Monetize(split HourSplit, tiers TierSplit, rate, m1, m2 decimal.Decimal) MoneyBreakdown {
	regular := split.Regular.Mul(rate)
	base := split.Overtime.Mul(rate)
	tier1 := split.Overtime.Mul(rate).Mul(m1.Sub(one))
	tier2 := tiers.Tier2.Mul(rate).Mul(m2.Sub(m1))
	return MoneyBreakdown{
		Rate:         rate,
		Regular:      regular,
		OvertimeBase: base,
		Tier1Premium: tier1,
		Tier2Premium: tier2,
		Total:        regular.Add(base).Add(tier1).Add(tier2),
	}
}
