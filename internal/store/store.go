// Package store implements the CacheSlot contract from the
// specification: a keyed slot holding {value, expires_at}, with a
// freshness check performed at read time (component B).
package store

import (
	"sync"

	"github.com/iiivansss84/rehydrate/internal/clock"
)

// Slot is the per-key record holding the latest successful value plus
// its expiration, mirroring the CacheSlot data model.
type Slot struct {
	Value         any
	ExpiresAt     int64 // unix seconds
	LastRefreshAt int64 // unix seconds
}

// Store is the contract every backend (Memory, FreeCache) satisfies.
// Put/Get are linearizable per key; Get treats an expired slot as
// absent without requiring eager deletion (I3).
type Store interface {
	Put(key string, value any, ttlSeconds int64)
	Get(key string) (any, bool)
	Snapshot() map[string]any
	Close() error
}

// Memory is the default Store: a mutex-guarded map whose Get lazily
// deletes the slot it reads once that slot has expired, in the manner
// of the teacher's in-memory layer and guttosm-pack-service's ttlCache.
// Put does not sweep other expired slots.
type Memory struct {
	mu    sync.RWMutex
	clock clock.Clock
	slots map[string]Slot
}

// NewMemory constructs an empty in-memory Store.
func NewMemory(c clock.Clock) *Memory {
	return &Memory{
		clock: c,
		slots: make(map[string]Slot),
	}
}

// Put records {value, now+ttl, now}, overwriting any prior slot for key.
func (m *Memory) Put(key string, value any, ttlSeconds int64) {
	now := m.clock.Now().Unix()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[key] = Slot{
		Value:         value,
		ExpiresAt:     now + ttlSeconds,
		LastRefreshAt: now,
	}
}

// Get returns (value, true) if a slot exists and expires_at > now(),
// else (nil, false). Expired slots are lazily evicted here, which
// serves as the opportunistic sweep the spec permits.
func (m *Memory) Get(key string) (any, bool) {
	now := m.clock.Now().Unix()

	m.mu.RLock()
	slot, ok := m.slots[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if slot.ExpiresAt <= now {
		m.mu.Lock()
		if cur, stillThere := m.slots[key]; stillThere && cur.ExpiresAt <= now {
			delete(m.slots, key)
		}
		m.mu.Unlock()
		return nil, false
	}
	return slot.Value, true
}

// Snapshot returns all currently fresh entries, for tests/observability.
func (m *Memory) Snapshot() map[string]any {
	now := m.clock.Now().Unix()
	out := make(map[string]any)

	m.mu.RLock()
	defer m.mu.RUnlock()
	for k, slot := range m.slots {
		if slot.ExpiresAt > now {
			out[k] = slot.Value
		}
	}
	return out
}

// Close is a no-op for Memory; it exists to satisfy Store for callers
// that treat backends uniformly.
func (m *Memory) Close() error {
	return nil
}
