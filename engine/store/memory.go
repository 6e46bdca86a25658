// Package store provides Store implementations.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/warp/overtime-engine/engine"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	users     map[engine.UserID]engine.User
	entries   []engine.TimeEntry
	profiles  engine.ProfileMap
	holidays  engine.HolidayMap
	timeOff   engine.TimeOffMap
	overrides engine.OverrideMap
}

func NewMemory() *Memory {
	return &Memory{
		users:     make(map[engine.UserID]engine.User),
		profiles:  make(engine.ProfileMap),
		holidays:  make(engine.HolidayMap),
		timeOff:   make(engine.TimeOffMap),
		overrides: make(engine.OverrideMap),
	}
}

// =============================================================================
// WRITES
// =============================================================================

func (m *Memory) SaveUser(_ context.Context, u engine.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	return nil
}

// AppendEntries adds entries, keeping them ordered by start instant.
// Entries without a parseable start are kept at the end.
func (m *Memory) AppendEntries(_ context.Context, entries []engine.TimeEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range entries {
		start, ok := engine.ParseInstant(e.Start)
		i := len(m.entries)
		if ok {
			// Binary search for insertion point after equal starts.
			i = sort.Search(len(m.entries), func(i int) bool {
				s, ok := engine.ParseInstant(m.entries[i].Start)
				return !ok || s.After(start)
			})
		}
		m.entries = append(m.entries, engine.TimeEntry{})
		copy(m.entries[i+1:], m.entries[i:])
		m.entries[i] = e
	}
	return nil
}

func (m *Memory) SaveProfile(_ context.Context, id engine.UserID, p engine.UserProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[id] = p
	return nil
}

func (m *Memory) SaveHoliday(_ context.Context, id engine.UserID, day engine.DateKey, h engine.Holiday) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.holidays[id] == nil {
		m.holidays[id] = make(map[engine.DateKey]engine.Holiday)
	}
	m.holidays[id][day] = h
	return nil
}

func (m *Memory) SaveTimeOff(_ context.Context, id engine.UserID, day engine.DateKey, t engine.TimeOffInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.timeOff[id] == nil {
		m.timeOff[id] = make(map[engine.DateKey]engine.TimeOffInfo)
	}
	m.timeOff[id][day] = t
	return nil
}

func (m *Memory) SaveOverride(_ context.Context, id engine.UserID, o engine.Override) error {
	if err := o.Validate(id); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overrides[id] = o
	return nil
}

func (m *Memory) DeleteOverride(_ context.Context, id engine.UserID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.overrides[id]; !ok {
		return engine.ErrNotFound
	}
	delete(m.overrides, id)
	return nil
}

// =============================================================================
// READS (engine.Store)
// =============================================================================

func (m *Memory) ListUsers(_ context.Context) ([]engine.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make([]engine.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (m *Memory) EntriesInRange(_ context.Context, from, to time.Time) ([]engine.TimeEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []engine.TimeEntry
	for _, e := range m.entries {
		start, ok := engine.ParseInstant(e.Start)
		if !ok {
			continue
		}
		if !start.Before(from) && start.Before(to) {
			result = append(result, e)
		}
	}
	return result, nil
}

func (m *Memory) Profiles(_ context.Context) (engine.ProfileMap, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(engine.ProfileMap, len(m.profiles))
	for k, v := range m.profiles {
		result[k] = v
	}
	return result, nil
}

func (m *Memory) Holidays(_ context.Context, rng engine.DateRange) (engine.HolidayMap, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(engine.HolidayMap)
	for user, days := range m.holidays {
		for day, h := range days {
			if !rng.Contains(day) {
				continue
			}
			if result[user] == nil {
				result[user] = make(map[engine.DateKey]engine.Holiday)
			}
			result[user][day] = h
		}
	}
	return result, nil
}

func (m *Memory) TimeOff(_ context.Context, rng engine.DateRange) (engine.TimeOffMap, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(engine.TimeOffMap)
	for user, days := range m.timeOff {
		for day, t := range days {
			if !rng.Contains(day) {
				continue
			}
			if result[user] == nil {
				result[user] = make(map[engine.DateKey]engine.TimeOffInfo)
			}
			result[user][day] = t
		}
	}
	return result, nil
}

func (m *Memory) Overrides(_ context.Context) (engine.OverrideMap, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(engine.OverrideMap, len(m.overrides))
	for k, v := range m.overrides {
		result[k] = v
	}
	return result, nil
}

var _ engine.Store = (*Memory)(nil)
