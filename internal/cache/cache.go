// Package cache stores short-lived advisor output.
package cache

import (
	"context"
	"sync"
	"time"
)

// Cache is a string key/value store with per-entry expiry.
type Cache interface {
	// Get returns the value for key. ok is false on a miss.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set stores value under key for ttl.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

type entry struct {
	value   string
	expires time.Time
}

// DefaultMaxEntries bounds a Memory cache created by NewMemory.
const DefaultMaxEntries = 10000

// Memory is an in-process Cache used when Redis is not configured. It holds
// at most maxEntries values.
type Memory struct {
	mu         sync.Mutex
	entries    map[string]entry
	maxEntries int
	now        func() time.Time
}

// NewMemory creates an empty in-process cache.
func NewMemory() *Memory {
	return NewMemoryWithLimit(DefaultMaxEntries)
}

// NewMemoryWithLimit creates an empty in-process cache holding at most limit
// entries. A non-positive limit means DefaultMaxEntries.
func NewMemoryWithLimit(limit int) *Memory {
	if limit <= 0 {
		limit = DefaultMaxEntries
	}
	return &Memory{
		entries:    make(map[string]entry),
		maxEntries: limit,
		now:        time.Now,
	}
}

// Len returns the number of stored entries, expired or not.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Get implements Cache.
func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return "", false, nil
	}
	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		delete(m.entries, key)
		return "", false, nil
	}
	return e.value, true, nil
}

// Set implements Cache. A non-positive ttl never expires. Expired entries
// are dropped first; when the cache is still full the entry closest to
// expiry makes room.
func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if _, exists := m.entries[key]; !exists && len(m.entries) >= m.maxEntries {
		m.sweepLocked(now)
		if len(m.entries) >= m.maxEntries {
			m.evictLocked()
		}
	}

	e := entry{value: value}
	if ttl > 0 {
		e.expires = now.Add(ttl)
	}
	m.entries[key] = e
	return nil
}

func (m *Memory) sweepLocked(now time.Time) {
	for k, e := range m.entries {
		if !e.expires.IsZero() && !now.Before(e.expires) {
			delete(m.entries, k)
		}
	}
}

// evictLocked drops the entry that expires soonest, preferring entries
// with a ttl over permanent ones.
func (m *Memory) evictLocked() {
	var (
		victim string
		soon   time.Time
		found  bool
	)
	for k, e := range m.entries {
		switch {
		case !found:
			victim, soon, found = k, e.expires, true
		case soon.IsZero() && !e.expires.IsZero():
			victim, soon = k, e.expires
		case !e.expires.IsZero() && e.expires.Before(soon):
			victim, soon = k, e.expires
		}
	}
	if found {
		delete(m.entries, victim)
	}
}
