/*
store.go - Read interface for the data that feeds a report

PURPOSE:
  Defines what the engine's callers need from persistence: the time entries
  of a range and the reference data (users, profiles, holidays, time off,
  overrides). The engine itself never calls a Store; LoadInput (snapshot.go)
  reads one into an immutable Input before Calculate runs.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite
  - engine/store/memory.go: In-memory for testing and demos

SEE ALSO:
  - snapshot.go: Builds an Input from a Store
*/
package engine

import (
	"context"
	"time"
)

// =============================================================================
// STORE - Read side used by report requests
// =============================================================================

type Store interface {
	// ListUsers returns every known user, including users without entries.
	ListUsers(ctx context.Context) ([]User, error)

	// EntriesInRange returns entries whose start instant is in [from, to).
	// Entries with an unparseable start are never returned by a ranged query.
	EntriesInRange(ctx context.Context, from, to time.Time) ([]TimeEntry, error)

	// Profiles returns all user profiles.
	Profiles(ctx context.Context) (ProfileMap, error)

	// Holidays returns holidays whose date is inside the range.
	Holidays(ctx context.Context, rng DateRange) (HolidayMap, error)

	// TimeOff returns time-off records whose date is inside the range.
	TimeOff(ctx context.Context, rng DateRange) (TimeOffMap, error)

	// Overrides returns all user overrides.
	Overrides(ctx context.Context) (OverrideMap, error)
}

// Settings is the persisted pair of feature flags and calculation defaults.
type Settings struct {
	Config Config `json:"config" koanf:"config"`
	Params Params `json:"params" koanf:"params"`
}

// DefaultSettings returns DefaultConfig and DefaultParams.
func DefaultSettings() Settings {
	return Settings{Config: DefaultConfig(), Params: DefaultParams()}
}
