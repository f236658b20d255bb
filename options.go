package rehydrate

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/iiivansss84/rehydrate/internal/clock"
	"github.com/iiivansss84/rehydrate/internal/store"
)

const defaultGetTimeout = 5 * time.Second

type config struct {
	appName        string
	clock          clock.Clock
	store          store.Store
	freeCacheSize  int
	useFreeCache   bool
	registerer     prometheus.Registerer
	log            zerolog.Logger
	defaultTimeout time.Duration
}

// Option configures a Cache, following the options pattern used
// across the pack (e.g. gburgyan-go-ctxdep's CtxCacheOptions),
// generalized here to the functional-options idiom.
type Option func(*config)

// WithAppName sets the metric name prefix, mirroring the teacher's
// NewCache(appName, ...) parameter.
func WithAppName(name string) Option {
	return func(c *config) { c.appName = name }
}

// WithClock overrides the Clock capability; tests use this to inject
// a clockwork.FakeClock for deterministic TTL/refresh-interval assertions.
func WithClock(cl clock.Clock) Option {
	return func(c *config) { c.clock = cl }
}

// WithFreeCacheStore selects the freecache-backed Store instead of
// the default in-memory map, for workloads with many large
// serializable values where bounded memory matters more than an
// exact Snapshot().
func WithFreeCacheStore(sizeBytes int) Option {
	return func(c *config) {
		c.useFreeCache = true
		c.freeCacheSize = sizeBytes
	}
}

// WithStore overrides the Store implementation entirely, for callers
// supplying their own backend.
func WithStore(s store.Store) Option {
	return func(c *config) { c.store = s }
}

// WithPrometheusRegisterer registers the Cache's metrics against reg,
// mirroring the teacher's enableStats flag generalized to "pass a
// registerer, or pass nil to skip metrics registration".
func WithPrometheusRegisterer(reg prometheus.Registerer) Option {
	return func(c *config) { c.registerer = reg }
}

// WithLogger overrides the zerolog.Logger used for warnings about
// compute failures and crashes.
func WithLogger(log zerolog.Logger) Option {
	return func(c *config) { c.log = log }
}

// WithDefaultTimeout sets the timeout Get uses when the caller's
// context carries no deadline.
func WithDefaultTimeout(d time.Duration) Option {
	return func(c *config) { c.defaultTimeout = d }
}
