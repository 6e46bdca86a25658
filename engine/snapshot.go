package engine

import (
	"context"
	"fmt"
	"time"
)

// =============================================================================
// SNAPSHOT - One immutable Input per report request
// =============================================================================

// LoadInput reads everything a report over rng needs from the store. The
// entry window is [rng.Start 00:00, rng.End+1 00:00) in loc.
func LoadInput(ctx context.Context, s Store, rng DateRange, settings Settings, loc *time.Location) (Input, error) {
	if err := rng.Validate(); err != nil {
		return Input{}, err
	}
	if loc == nil {
		loc = time.UTC
	}

	from, to := rng.Window(loc)

	users, err := s.ListUsers(ctx)
	if err != nil {
		return Input{}, fmt.Errorf("load users: %w", err)
	}
	entries, err := s.EntriesInRange(ctx, from, to)
	if err != nil {
		return Input{}, fmt.Errorf("load entries %s: %w", rng, err)
	}
	profiles, err := s.Profiles(ctx)
	if err != nil {
		return Input{}, fmt.Errorf("load profiles: %w", err)
	}
	holidays, err := s.Holidays(ctx, rng)
	if err != nil {
		return Input{}, fmt.Errorf("load holidays %s: %w", rng, err)
	}
	timeOff, err := s.TimeOff(ctx, rng)
	if err != nil {
		return Input{}, fmt.Errorf("load time off %s: %w", rng, err)
	}
	overrides, err := s.Overrides(ctx)
	if err != nil {
		return Input{}, fmt.Errorf("load overrides: %w", err)
	}

	r := rng
	return Input{
		Entries:   entries,
		Users:     users,
		Profiles:  profiles,
		Holidays:  holidays,
		TimeOff:   timeOff,
		Overrides: overrides,
		Config:    settings.Config,
		Params:    settings.Params,
		Range:     &r,
		Location:  loc,
	}, nil
}

// Window converts a calendar range into the instant window [from, to)
// covering it in loc.
func (r DateRange) Window(loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	start := r.Start.Time()
	end := r.End.Time()
	from := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
	to := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1)
	return from, to
}

// Report loads a snapshot and calculates it.
func Report(ctx context.Context, s Store, rng DateRange, settings Settings, loc *time.Location) ([]UserAnalysis, error) {
	in, err := LoadInput(ctx, s, rng, settings, loc)
	if err != nil {
		return nil, err
	}
	return Calculate(in), nil
}
