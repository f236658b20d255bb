// Package waiter implements the Waiter Hub, component F: a per-key
// set of pending readers awaiting the next successful compute,
// grounded on the internalLock/internalLockWait strobe-channel
// pattern (each pending waiter holds a one-shot channel closed or
// sent to exactly once on release, per I4).
package waiter

import (
	"sync"
	"time"

	"github.com/iiivansss84/rehydrate/internal/clock"
)

// Result is delivered to a Waiter exactly once.
type Result struct {
	Value         any
	TimedOut      bool
	NotRegistered bool
}

// Handle identifies a subscribed waiter so the caller can Await it.
type Handle struct {
	key string
	ch  chan Result
	hub *Hub
}

type pending struct {
	ch    chan Result
	timer clock.Timer
}

// Hub is the concurrent map key -> list of pending waiters.
type Hub struct {
	mu       sync.Mutex
	clock    clock.Clock
	byKey    map[string][]*pending
	torndown map[string]bool
}

// New constructs an empty Hub.
func New(c clock.Clock) *Hub {
	return &Hub{
		clock:    c,
		byKey:    make(map[string][]*pending),
		torndown: make(map[string]bool),
	}
}

// Subscribe records a pending waiter for key and arms a timer for
// timeout's duration from now. The returned Handle is consumed by
// exactly one Await call.
//
// If key was already torn down by PublishNotRegistered (deregistered
// between the caller's registry check and this call), the waiter is
// delivered NotRegistered immediately rather than waiting out its
// deadline — this closes the race window P4 guards against.
func (h *Hub) Subscribe(key string, timeout time.Duration) Handle {
	ch := make(chan Result, 1)
	p := &pending{ch: ch}

	h.mu.Lock()
	if h.torndown[key] {
		h.mu.Unlock()
		ch <- Result{NotRegistered: true}
		return Handle{key: key, ch: ch, hub: h}
	}
	h.byKey[key] = append(h.byKey[key], p)
	h.mu.Unlock()

	p.timer = h.clock.AfterFunc(timeout, func() {
		h.release(key, p, Result{TimedOut: true})
	})

	return Handle{key: key, ch: ch, hub: h}
}

// Reset clears a prior teardown marker for key, so a fresh
// register -> deregister -> register cycle behaves like a never-torn-down
// key for subsequent Subscribe calls.
func (h *Hub) Reset(key string) {
	h.mu.Lock()
	delete(h.torndown, key)
	h.mu.Unlock()
}

// Await blocks until the waiter behind handle is released, by publish,
// deregistration, or its own deadline.
func (h *Hub) Await(handle Handle) Result {
	return <-handle.ch
}

// Publish atomically drains and wakes all waiters for key with value.
// Waiters subscribed strictly after this call are unaffected.
func (h *Hub) Publish(key string, value any) {
	h.drain(key, Result{Value: value})
}

// PublishNotRegistered drains and wakes all waiters for key, signaling
// that the key has been deregistered (spec §4.5 teardown step 4), and
// marks key as torn down so any Subscribe racing with deregistration
// is released immediately instead of waiting out its deadline.
func (h *Hub) PublishNotRegistered(key string) {
	h.mu.Lock()
	h.torndown[key] = true
	h.mu.Unlock()
	h.drain(key, Result{NotRegistered: true})
}

func (h *Hub) drain(key string, result Result) {
	h.mu.Lock()
	pendings := h.byKey[key]
	delete(h.byKey, key)
	h.mu.Unlock()

	for _, p := range pendings {
		if p.timer != nil {
			p.timer.Stop()
		}
		// Buffered with capacity 1 at Subscribe time, so this never blocks.
		p.ch <- result
	}
}

// release removes a single pending waiter (used by the deadline timer)
// and delivers result, unless it has already been drained by a publish.
func (h *Hub) release(key string, target *pending, result Result) {
	h.mu.Lock()
	list := h.byKey[key]
	idx := -1
	for i, p := range list {
		if p == target {
			idx = i
			break
		}
	}
	if idx == -1 {
		// Already drained by a Publish/PublishNotRegistered race; the
		// winner already delivered a result, so do nothing here.
		h.mu.Unlock()
		return
	}
	h.byKey[key] = append(list[:idx], list[idx+1:]...)
	h.mu.Unlock()

	target.ch <- result
}
