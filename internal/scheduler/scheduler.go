// Package scheduler implements component E: one independent periodic
// worker per registered key, running the Idle -> Running ->
// PublishResult -> (Sleeping | RetainOld) -> Sleeping -> Running state
// machine from the specification, torn down in an orderly fashion via
// golang.org/x/sync/errgroup.
package scheduler

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/iiivansss84/rehydrate/internal/clock"
	"github.com/iiivansss84/rehydrate/internal/executor"
	"github.com/iiivansss84/rehydrate/internal/registry"
	"github.com/iiivansss84/rehydrate/internal/store"
	"github.com/iiivansss84/rehydrate/internal/telemetry"
	"github.com/iiivansss84/rehydrate/internal/waiter"
)

// State is a WorkerState.status value from the specification.
type State int

const (
	Idle State = iota
	Running
	Sleeping
	Stopping
)

// worker is one key's per-key actor-like loop.
type worker struct {
	reg   registry.Registration
	stop  chan struct{}
	stopO sync.Once
}

// Scheduler owns one worker goroutine per registered key.
type Scheduler struct {
	clock    clock.Clock
	store    store.Store
	hub      *waiter.Hub
	executor *executor.Executor
	metrics  *telemetry.MetricSet
	log      zerolog.Logger

	mu      sync.Mutex
	workers map[string]*worker
	group   *errgroup.Group
}

// New constructs a Scheduler bound to the given collaborators.
func New(c clock.Clock, st store.Store, hub *waiter.Hub, exec *executor.Executor, metrics *telemetry.MetricSet, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		clock:    c,
		store:    st,
		hub:      hub,
		executor: exec,
		metrics:  metrics,
		log:      log,
		workers:  make(map[string]*worker),
		group:    &errgroup.Group{},
	}
}

// Spawn starts the periodic worker for reg, triggering the first
// compute immediately (Idle -> Running), per spec §4.5. The caller
// must have already inserted reg into the Registry before calling
// this, so a concurrent Get sees the registration as soon as the
// worker is running.
func (s *Scheduler) Spawn(reg registry.Registration) {
	w := &worker{reg: reg, stop: make(chan struct{})}

	s.mu.Lock()
	s.workers[reg.Key] = w
	s.mu.Unlock()

	s.group.Go(func() error {
		s.run(w)
		return nil
	})
}

// Stop tears down the worker for key per the teardown sequence in
// spec §4.5: it signals the worker to cancel a pending sleep
// immediately, or to let a running compute finish without publishing,
// and releases the key's waiters with NotRegistered before returning.
func (s *Scheduler) Stop(key string) {
	s.mu.Lock()
	w, ok := s.workers[key]
	if ok {
		delete(s.workers, key)
	}
	s.mu.Unlock()
	if !ok {
		return
	}
	w.stopO.Do(func() { close(w.stop) })
	s.hub.PublishNotRegistered(key)
}

// Wait blocks until every spawned worker goroutine has exited, bounded
// by ctx, mirroring the teacher's Close()'s wg.Wait().
func (s *Scheduler) Wait(ctx context.Context) error {
	done := make(chan error, 1)
	go func() { done <- s.group.Wait() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) setState(key string, st State) {
	if s.metrics == nil {
		return
	}
	s.metrics.WorkerState.WithLabelValues(key).Set(float64(st))
}

// run is the per-key loop: Running -> publish/retain -> Sleeping ->
// Running, until stop is signaled.
func (s *Scheduler) run(w *worker) {
	key := w.reg.Key
	s.log.Debug().Str("key", key).Msg("worker started")
	defer func() {
		s.log.Debug().Str("key", key).Msg("worker stopped")
	}()

	for {
		select {
		case <-w.stop:
			s.setState(key, Stopping)
			return
		default:
		}

		s.setState(key, Running)
		value, err := s.executor.Execute(w.reg)

		// Check for a stop signal that arrived while the compute was
		// running: per spec, let it finish (it already has), but do
		// not publish its result, and exit without sleeping.
		select {
		case <-w.stop:
			s.setState(key, Stopping)
			return
		default:
		}

		if err == nil {
			s.store.Put(key, value, w.reg.TTLSeconds)
			s.hub.Publish(key, value)
		}
		// On error: do not touch Store, do not release waiters; the
		// previous value (if any) remains valid per its own TTL.

		s.setState(key, Sleeping)
		if !s.sleep(w, w.reg.RefreshIntervalSeconds) {
			s.setState(key, Stopping)
			return
		}
	}
}

// sleep waits for the worker's refresh interval or an early stop
// signal, returning false if stop fired first.
func (s *Scheduler) sleep(w *worker, refreshIntervalSeconds int64) bool {
	if refreshIntervalSeconds <= 0 {
		select {
		case <-w.stop:
			return false
		default:
			return true
		}
	}
	timer := s.clock.NewTimer(secondsToDuration(refreshIntervalSeconds))
	defer timer.Stop()
	select {
	case <-timer.Chan():
		return true
	case <-w.stop:
		return false
	}
}
