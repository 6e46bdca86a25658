/*
calculate.go - Report orchestration

PURPOSE:
  Runs the full pipeline for every user in the snapshot:

    for each user:
      group entries by calendar day (start instant, report location)
      for each day in range (plus any day that has entries):
        resolve capacity        (capacity.go)
        adjust for day context  (daycontext.go)
        classify + sort entries (classify.go, attribution.go)
        attribute tail          (attribution.go)
        split tiers             (tiers.go, state carried across days)
        monetize                (money.go)
        accumulate              (aggregate.go)
      round totals once

MIDNIGHT:
  An entry belongs to the day its start instant falls on. Entries running
  past midnight are not split; the whole duration counts on the start day.

OUTPUT ORDER:
  Users are sorted by name, then by ID. Days are a map keyed by date;
  UserAnalysis.DayKeys gives calendar order.
*/
package engine

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Calculate analyzes the snapshot. It never fails: malformed data degrades
// to zero values, and every user present in Users or Entries gets a record.
func Calculate(in Input) []UserAnalysis {
	loc := in.Location
	if loc == nil {
		loc = time.UTC
	}
	cfg := in.Config
	switch cfg.AmountDisplay {
	case ViewEarned, ViewCost, ViewProfit:
	default:
		cfg.AmountDisplay = ViewEarned
	}

	users := collectUsers(in)

	rng := in.Range
	if rng == nil {
		rng = deriveRange(in.Entries, loc)
	}

	results := make([]UserAnalysis, 0, len(users))
	for _, u := range users {
		results = append(results, analyzeUser(u, in, cfg, rng, loc))
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].UserName != results[j].UserName {
			return results[i].UserName < results[j].UserName
		}
		return results[i].UserID < results[j].UserID
	})
	return results
}

// =============================================================================
// USERS
// =============================================================================

type userBucket struct {
	id      UserID
	name    string
	entries []TimeEntry
}

func collectUsers(in Input) []*userBucket {
	byID := make(map[UserID]*userBucket)
	var order []*userBucket

	get := func(id UserID) *userBucket {
		if b, ok := byID[id]; ok {
			return b
		}
		b := &userBucket{id: id}
		byID[id] = b
		order = append(order, b)
		return b
	}

	for _, u := range in.Users {
		b := get(u.ID)
		if b.name == "" {
			b.name = u.Name
		}
	}
	for _, e := range in.Entries {
		b := get(e.UserID)
		if b.name == "" {
			b.name = e.UserName
		}
		b.entries = append(b.entries, e)
	}
	for _, b := range order {
		if b.name == "" {
			b.name = string(b.id)
		}
	}
	return order
}

// deriveRange spans the earliest and latest entry days. Nil when no entry
// has a usable start.
func deriveRange(entries []TimeEntry, loc *time.Location) *DateRange {
	var rng *DateRange
	for _, e := range entries {
		start, ok := ParseInstant(e.Start)
		if !ok {
			continue
		}
		key := DateKeyOf(start, loc)
		if rng == nil {
			rng = &DateRange{Start: key, End: key}
			continue
		}
		if key.Before(rng.Start) {
			rng.Start = key
		}
		if rng.End.Before(key) {
			rng.End = key
		}
	}
	return rng
}

// =============================================================================
// PER-USER PIPELINE
// =============================================================================

func analyzeUser(u *userBucket, in Input, cfg Config, rng *DateRange, loc *time.Location) UserAnalysis {
	out := UserAnalysis{
		UserID:   u.id,
		UserName: u.name,
		Days:     make(map[DateKey]DayData),
	}

	byDay := make(map[DateKey][]TimeEntry)
	starts := make(map[DateKey][]time.Time)
	var undated []TimeEntry
	for _, e := range u.entries {
		start, ok := ParseInstant(e.Start)
		if !ok {
			undated = append(undated, e)
			continue
		}
		key := DateKeyOf(start, loc)
		byDay[key] = append(byDay[key], e)
		starts[key] = append(starts[key], start)
	}

	days := reportDays(rng, byDay)
	override := in.Overrides[u.id]
	profile, hasProfile := in.Profiles[u.id]
	agg := newAggregator(cfg.AmountDisplay)
	state := TierState{}

	for _, day := range days {
		entries := byDay[day]
		sortByStart(entries, starts[day])

		dc := DayContext{
			Date:       day,
			Resolved:   Resolve(day, override, profile, hasProfile, cfg, in.Params),
			WorkingDay: isWorkingDay(day, profile, hasProfile, cfg),
			Entries:    entries,
		}
		if h, ok := in.Holidays[u.id][day]; ok {
			dc.Holiday = &h
		}
		if t, ok := in.TimeOff[u.id][day]; ok {
			dc.TimeOff = &t
		}
		meta := AdjustDay(dc, cfg)

		var analyzed []AnalyzedEntry
		analyzed, state = analyzeDay(entries, meta, cfg, state)
		for _, a := range analyzed {
			agg.addEntry(a.Analysis)
		}
		agg.addDay(meta)

		out.Days[day] = DayData{Entries: analyzed, Meta: meta}
	}

	for _, e := range undated {
		a := AnalyzedEntry{Entry: e, Analysis: zeroAnalysis(e)}
		agg.addEntry(a.Analysis)
		out.Undated = append(out.Undated, a)
	}

	out.Totals = agg.finish()
	return out
}

// reportDays is the union of the range days and the days that have entries,
// in calendar order.
func reportDays(rng *DateRange, byDay map[DateKey][]TimeEntry) []DateKey {
	seen := make(map[DateKey]bool)
	var days []DateKey
	if rng != nil {
		for _, d := range rng.Days() {
			seen[d] = true
			days = append(days, d)
		}
	}
	for d := range byDay {
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	sortDateKeys(days)
	return days
}

func isWorkingDay(day DateKey, profile UserProfile, hasProfile bool, cfg Config) bool {
	if !cfg.UseProfileWorkingDays || !hasProfile {
		return true
	}
	return profile.WorksOn(day.Weekday())
}

// analyzeDay runs attribution, tiering and pricing over one day's sorted
// entries. The tier state comes in from the previous day and goes out to
// the next one.
func analyzeDay(entries []TimeEntry, meta DayMeta, cfg Config, state TierState) ([]AnalyzedEntry, TierState) {
	slots := make([]Slot, len(entries))
	for i, e := range entries {
		slots[i] = Slot{Kind: Classify(e), Hours: entryHours(e)}
	}
	splits := AttributeTail(slots, meta.Capacity)
	dayTags := meta.contextTags()

	out := make([]AnalyzedEntry, len(entries))
	for i, e := range entries {
		split := splits[i]
		tiers := TierSplit{Tier1: decimal.Zero, Tier2: decimal.Zero}
		if slots[i].Kind == KindWork {
			tiers, state = state.Split(split.Overtime, meta.Tier2Threshold, cfg.EnableTieredOT)
		}

		rates := EntryRates(e, split.Duration)
		m1, m2 := meta.Multiplier, meta.Tier2Multiplier

		out[i] = AnalyzedEntry{
			Entry: e,
			Analysis: EntryAnalysis{
				Kind:       slots[i].Kind,
				Duration:   split.Duration,
				Regular:    split.Regular,
				Overtime:   split.Overtime,
				Tier1Hours: tiers.Tier1,
				Tier2Hours: tiers.Tier2,
				IsBillable: e.Billable,
				Tags:       entryTags(slots[i].Kind, dayTags),
				Earned:     Monetize(split, tiers, rates.Earned, m1, m2),
				Cost:       Monetize(split, tiers, rates.Cost, m1, m2),
				Profit:     Monetize(split, tiers, rates.Profit, m1, m2),
			},
		}
	}
	return out, state
}

func entryTags(kind Kind, dayTags []string) []string {
	tags := make([]string, 0, len(dayTags)+1)
	switch kind {
	case KindBreak:
		tags = append(tags, "BREAK")
	case KindPTO:
		tags = append(tags, "PTO")
	}
	return append(tags, dayTags...)
}

// zeroAnalysis is the analysis of an entry whose start could not be parsed.
func zeroAnalysis(e TimeEntry) EntryAnalysis {
	zero := MoneyBreakdown{}
	return EntryAnalysis{
		Kind:       Classify(e),
		IsBillable: e.Billable,
		Tags:       []string{"INVALID_TIME"},
		Earned:     zero,
		Cost:       zero,
		Profit:     zero,
	}
}
