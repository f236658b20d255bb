// Package registry maps key -> registration, component C.
package registry

import (
	"sync"
)

// Fn is a zero-argument compute callable returning Ok(value) or Err(reason).
type Fn = func() (any, error)

// Registration is immutable once created.
type Registration struct {
	Key                    string
	Fn                     Fn
	TTLSeconds             int64
	RefreshIntervalSeconds int64
}

// Registry is a mutex-guarded map, read-mostly, insert-if-absent on
// Register (I5), grounded on incubusfree-consul's agent/cache
// typesLock/types pattern.
type Registry struct {
	mu   sync.RWMutex
	regs map[string]Registration
}

// New constructs an empty Registry.
func New() *Registry {
	return &Registry{regs: make(map[string]Registration)}
}

// Validate checks the ttl/interval contract (I1) independent of
// whether the key is already registered.
func Validate(ttlSeconds, refreshIntervalSeconds int64) bool {
	return ttlSeconds > 0 && refreshIntervalSeconds >= 0 && refreshIntervalSeconds < ttlSeconds
}

// Register inserts reg only if Key is absent. Returns false (no
// change made) if the key already exists.
func (r *Registry) Register(reg Registration) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.regs[reg.Key]; exists {
		return false
	}
	r.regs[reg.Key] = reg
	return true
}

// Get returns the registration for key, if any.
func (r *Registry) Get(key string) (Registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.regs[key]
	return reg, ok
}

// Deregister removes and returns the prior entry, if any.
func (r *Registry) Deregister(key string) (Registration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.regs[key]
	if ok {
		delete(r.regs, key)
	}
	return reg, ok
}

// Keys returns all currently registered keys.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.regs))
	for k := range r.regs {
		keys = append(keys, k)
	}
	return keys
}
