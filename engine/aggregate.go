package engine

import "github.com/shopspring/decimal"

const (
	HourPlaces  int32 = 4
	MoneyPlaces int32 = 2
)

func RoundHours(d decimal.Decimal) decimal.Decimal { return d.Round(HourPlaces) }
func RoundMoney(d decimal.Decimal) decimal.Decimal { return d.Round(MoneyPlaces) }

// aggregator accumulates a user's totals at full precision. Rounding happens
// once, in finish.
type aggregator struct {
	view   AmountView
	totals UserTotals
}

func newAggregator(view AmountView) *aggregator {
	return &aggregator{view: view}
}

func (a *aggregator) addEntry(an EntryAnalysis) {
	t := &a.totals
	t.EntryCount++
	t.Regular = t.Regular.Add(an.Regular)
	t.Overtime = t.Overtime.Add(an.Overtime)
	t.Total = t.Total.Add(an.Duration)
	t.Tier1Hours = t.Tier1Hours.Add(an.Tier1Hours)
	t.Tier2Hours = t.Tier2Hours.Add(an.Tier2Hours)

	switch an.Kind {
	case KindBreak:
		t.Breaks = t.Breaks.Add(an.Duration)
	case KindPTO:
		t.PTO = t.PTO.Add(an.Duration)
	}

	if an.IsBillable {
		t.BillableWorked = t.BillableWorked.Add(an.Regular)
		t.BillableOT = t.BillableOT.Add(an.Overtime)
	} else {
		t.NonBillableWorked = t.NonBillableWorked.Add(an.Regular)
		t.NonBillableOT = t.NonBillableOT.Add(an.Overtime)
	}

	t.Earned = addMoney(t.Earned, an.Earned)
	t.Cost = addMoney(t.Cost, an.Cost)
	t.Profit = addMoney(t.Profit, an.Profit)
}

func (a *aggregator) addDay(meta DayMeta) {
	t := &a.totals
	t.Expected = t.Expected.Add(meta.Capacity)
	if meta.IsHoliday {
		t.HolidayCount++
		if !meta.IsNonWorking {
			t.HolidayHours = t.HolidayHours.Add(decimal.Max(decimal.Zero, meta.BaseCapacity))
		}
	}
	if meta.timeOffApplied() {
		t.TimeOffCount++
		reduction := decimal.Min(meta.TimeOffHours, decimal.Max(decimal.Zero, meta.BaseCapacity))
		t.TimeOffHours = t.TimeOffHours.Add(reduction)
	}
}

func addMoney(m MoneyTotals, b MoneyBreakdown) MoneyTotals {
	m.Base = m.Base.Add(b.Regular).Add(b.OvertimeBase)
	m.Tier1Premium = m.Tier1Premium.Add(b.Tier1Premium)
	m.Tier2Premium = m.Tier2Premium.Add(b.Tier2Premium)
	m.Premium = m.Premium.Add(b.Tier1Premium).Add(b.Tier2Premium)
	m.Total = m.Total.Add(b.Total)
	return m
}

func roundMoneyTotals(m MoneyTotals) MoneyTotals {
	return MoneyTotals{
		Base:         RoundMoney(m.Base),
		Tier1Premium: RoundMoney(m.Tier1Premium),
		Tier2Premium: RoundMoney(m.Tier2Premium),
		Premium:      RoundMoney(m.Premium),
		Total:        RoundMoney(m.Total),
	}
}

// finish rounds every field: 4 places for hours, 2 for currency.
func (a *aggregator) finish() UserTotals {
	t := a.totals
	out := UserTotals{
		Regular:           RoundHours(t.Regular),
		Overtime:          RoundHours(t.Overtime),
		Total:             RoundHours(t.Total),
		Breaks:            RoundHours(t.Breaks),
		PTO:               RoundHours(t.PTO),
		BillableWorked:    RoundHours(t.BillableWorked),
		NonBillableWorked: RoundHours(t.NonBillableWorked),
		BillableOT:        RoundHours(t.BillableOT),
		NonBillableOT:     RoundHours(t.NonBillableOT),
		Tier1Hours:        RoundHours(t.Tier1Hours),
		Tier2Hours:        RoundHours(t.Tier2Hours),

		Earned: roundMoneyTotals(t.Earned),
		Cost:   roundMoneyTotals(t.Cost),
		Profit: roundMoneyTotals(t.Profit),

		Expected:     RoundHours(t.Expected),
		HolidayCount: t.HolidayCount,
		HolidayHours: RoundHours(t.HolidayHours),
		TimeOffCount: t.TimeOffCount,
		TimeOffHours: RoundHours(t.TimeOffHours),
		EntryCount:   t.EntryCount,
	}
	shown := out.View(a.view)
	out.OTPremium = shown.Tier1Premium
	out.Tier2Premium = shown.Tier2Premium
	return out
}
