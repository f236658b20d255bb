package rehydrate

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	uuid "github.com/satori/go.uuid"

	"github.com/iiivansss84/rehydrate/internal/clock"
	"github.com/iiivansss84/rehydrate/internal/executor"
	"github.com/iiivansss84/rehydrate/internal/registry"
	"github.com/iiivansss84/rehydrate/internal/scheduler"
	"github.com/iiivansss84/rehydrate/internal/snapshot"
	"github.com/iiivansss84/rehydrate/internal/store"
	"github.com/iiivansss84/rehydrate/internal/telemetry"
	"github.com/iiivansss84/rehydrate/internal/waiter"
)

// Fn is a zero-argument compute callable, registered under a key.
type Fn = func() (any, error)

// Cache is the public facade orchestrating the registry, store,
// scheduler, and waiter hub (component G).
type Cache struct {
	id string

	clock     clock.Clock
	store     store.Store
	registry  *registry.Registry
	hub       *waiter.Hub
	scheduler *scheduler.Scheduler
	metrics   *telemetry.MetricSet
	log       zerolog.Logger

	defaultTimeout time.Duration
}

// New constructs a Cache. By default it uses the real wall clock, an
// in-memory Store, no Prometheus registration, and the global zerolog
// logger — callers override any of these with Option values.
func New(opts ...Option) *Cache {
	cfg := &config{
		appName:        "rehydrate",
		clock:          clock.NewReal(),
		log:            log.Logger,
		defaultTimeout: defaultGetTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.store == nil {
		if cfg.useFreeCache {
			cfg.store = store.NewFreeCache(cfg.clock, cfg.freeCacheSize)
		} else {
			cfg.store = store.NewMemory(cfg.clock)
		}
	}

	id := uuid.NewV4().String()
	instanceLog := cfg.log.With().Str("cache_id", id).Logger()

	metrics := telemetry.NewMetricSet(cfg.appName, cfg.registerer)
	hub := waiter.New(cfg.clock)
	exec := executor.New(cfg.clock, metrics, instanceLog)
	sched := scheduler.New(cfg.clock, cfg.store, hub, exec, metrics, instanceLog)

	return &Cache{
		id:             id,
		clock:          cfg.clock,
		store:          cfg.store,
		registry:       registry.New(),
		hub:            hub,
		scheduler:      sched,
		metrics:        metrics,
		log:            instanceLog,
		defaultTimeout: cfg.defaultTimeout,
	}
}

// RegisterFunction registers fn under key with the given ttl and
// refreshInterval, then immediately kicks off the first compute
// (Idle -> Running, spec §4.5). Returns ErrInvalidParameters if
// refreshInterval is not strictly less than ttl (I1), or
// ErrAlreadyRegistered if key is already registered (I5, no state
// changes on that path).
func (c *Cache) RegisterFunction(key string, fn Fn, ttl, refreshInterval time.Duration) error {
	ttlSeconds := int64(ttl / time.Second)
	refreshSeconds := int64(refreshInterval / time.Second)
	if !registry.Validate(ttlSeconds, refreshSeconds) {
		return ErrInvalidParameters
	}

	reg := registry.Registration{
		Key:                    key,
		Fn:                     fn,
		TTLSeconds:             ttlSeconds,
		RefreshIntervalSeconds: refreshSeconds,
	}
	if !c.registry.Register(reg) {
		return ErrAlreadyRegistered
	}

	c.hub.Reset(key)
	c.scheduler.Spawn(reg)
	return nil
}

// Get consults the Store first (last-stored-value semantics, §4.7
// step 1), falls back to waiting on the next successful compute if
// the key is registered but has no fresh value, and fails fast with
// ErrNotRegistered for unknown keys. The timeout is taken from ctx's
// deadline if present, else from the Cache's default.
func (c *Cache) Get(ctx context.Context, key string) (any, error) {
	if value, ok := c.store.Get(key); ok {
		return value, nil
	}

	if _, ok := c.registry.Get(key); !ok {
		return nil, ErrNotRegistered
	}

	timeout := c.defaultTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, ErrTimeout
		}
	}

	handle := c.hub.Subscribe(key, timeout)
	result := c.hub.Await(handle)

	switch {
	case result.NotRegistered:
		return nil, ErrNotRegistered
	case result.TimedOut:
		if c.metrics != nil {
			c.metrics.WaiterTimeout.Inc()
		}
		return nil, ErrTimeout
	default:
		return result.Value, nil
	}
}

// Deregister tears down the worker for key (spec §4.5 teardown):
// cancels a pending sleep, lets a running compute finish without
// publishing, releases outstanding waiters with ErrNotRegistered, and
// removes the registry entry. Idempotent: deregistering an absent key
// returns ErrNotRegistered.
func (c *Cache) Deregister(key string) error {
	if _, ok := c.registry.Deregister(key); !ok {
		return ErrNotRegistered
	}
	c.scheduler.Stop(key)
	return nil
}

// Snapshot returns all currently fresh key/value pairs, for tests and
// observability.
func (c *Cache) Snapshot() map[string]any {
	return c.store.Snapshot()
}

// SnapshotExport msgpack-encodes and zstd-compresses Snapshot(), for
// callers shipping a point-in-time cache dump to cold storage or a
// debug endpoint.
func (c *Cache) SnapshotExport() ([]byte, error) {
	return snapshot.Export(c.Snapshot())
}

// Close deregisters every registered key, then waits for all worker
// goroutines to exit, bounded by ctx. Equivalent to the lifecycle
// described in spec §6: "Shutting down the Cache is equivalent to
// deregistering all keys, then stopping."
func (c *Cache) Close(ctx context.Context) error {
	c.log.Debug().Msg("closing cache, deregistering all keys")
	for _, key := range c.registry.Keys() {
		_ = c.Deregister(key)
	}
	err := c.scheduler.Wait(ctx)
	c.metrics.Unregister()
	if storeErr := c.store.Close(); storeErr != nil && err == nil {
		err = storeErr
	}
	return err
}
