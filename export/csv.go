/*
Package export writes calculated reports as CSV.

PURPOSE:
  Two layouts for spreadsheet users:
  - Detail: one row per analyzed entry, in user then calendar order
  - Summary: one row per user with the rounded totals

  Money columns come from one monetary view (earned, cost or profit). Hours
  are written with 4 decimal places and money with 2.

FORMULA INJECTION:
  Text cells starting with '=', '+', '-', '@', tab or carriage return are
  prefixed with a single quote so spreadsheet apps treat them as text.
  Numeric cells are written as-is.

SEE ALSO:
  - engine/types.go: UserAnalysis, UserTotals
  - api/handlers.go: /api/reports/export.csv and /api/reports/summary.csv
*/
package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/warp/overtime-engine/engine"
)

var DetailHeader = []string{
	"user_id", "user_name", "date", "entry_id", "start", "end", "type", "kind",
	"billable", "project", "client", "task", "description",
	"duration_h", "regular_h", "overtime_h", "tier1_h", "tier2_h",
	"rate", "regular_amount", "overtime_base", "tier1_premium", "tier2_premium", "total_amount",
	"tags",
}

var SummaryHeader = []string{
	"user_id", "user_name", "entries",
	"regular_h", "overtime_h", "total_h", "breaks_h", "pto_h",
	"billable_worked_h", "non_billable_worked_h", "billable_ot_h", "non_billable_ot_h",
	"tier1_h", "tier2_h", "expected_h",
	"holidays", "holiday_h", "time_off_days", "time_off_h",
	"base_amount", "tier1_premium", "tier2_premium", "total_amount",
}

// WriteDetail writes one row per analyzed entry. Undated entries follow the
// dated ones with an empty date.
func WriteDetail(w io.Writer, results []engine.UserAnalysis, view engine.AmountView) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(DetailHeader); err != nil {
		return err
	}

	for _, u := range results {
		for _, day := range u.DayKeys() {
			for _, ae := range u.Days[day].Entries {
				if err := writer.Write(detailRow(u, string(day), ae, view)); err != nil {
					return err
				}
			}
		}
		for _, ae := range u.Undated {
			if err := writer.Write(detailRow(u, "", ae, view)); err != nil {
				return err
			}
		}
	}

	writer.Flush()
	return writer.Error()
}

func detailRow(u engine.UserAnalysis, date string, ae engine.AnalyzedEntry, view engine.AmountView) []string {
	e, a := ae.Entry, ae.Analysis
	money := a.View(view)
	return []string{
		Sanitize(string(u.UserID)),
		Sanitize(u.UserName),
		date,
		Sanitize(e.ID),
		Sanitize(e.Start),
		Sanitize(e.End),
		engine.NormalizeType(e.Type),
		string(a.Kind),
		strconv.FormatBool(a.IsBillable),
		Sanitize(firstNonEmpty(e.ProjectName, e.ProjectID)),
		Sanitize(firstNonEmpty(e.ClientName, e.ClientID)),
		Sanitize(firstNonEmpty(e.TaskName, e.TaskID)),
		Sanitize(e.Description),
		hours(a.Duration),
		hours(a.Regular),
		hours(a.Overtime),
		hours(a.Tier1Hours),
		hours(a.Tier2Hours),
		amount(money.Rate),
		amount(money.Regular),
		amount(money.OvertimeBase),
		amount(money.Tier1Premium),
		amount(money.Tier2Premium),
		amount(money.Total),
		strings.Join(a.Tags, "|"),
	}
}

// WriteSummary writes one row per user.
func WriteSummary(w io.Writer, results []engine.UserAnalysis, view engine.AmountView) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(SummaryHeader); err != nil {
		return err
	}

	for _, u := range results {
		t := u.Totals
		money := t.View(view)
		record := []string{
			Sanitize(string(u.UserID)),
			Sanitize(u.UserName),
			strconv.Itoa(t.EntryCount),
			hours(t.Regular),
			hours(t.Overtime),
			hours(t.Total),
			hours(t.Breaks),
			hours(t.PTO),
			hours(t.BillableWorked),
			hours(t.NonBillableWorked),
			hours(t.BillableOT),
			hours(t.NonBillableOT),
			hours(t.Tier1Hours),
			hours(t.Tier2Hours),
			hours(t.Expected),
			strconv.Itoa(t.HolidayCount),
			hours(t.HolidayHours),
			strconv.Itoa(t.TimeOffCount),
			hours(t.TimeOffHours),
			amount(money.Base),
			amount(money.Tier1Premium),
			amount(money.Tier2Premium),
			amount(money.Total),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// Sanitize neutralizes cells that a spreadsheet would evaluate as a formula.
func Sanitize(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}

func hours(d decimal.Decimal) string  { return engine.RoundHours(d).StringFixed(engine.HourPlaces) }
func amount(d decimal.Decimal) string { return engine.RoundMoney(d).StringFixed(engine.MoneyPlaces) }

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
