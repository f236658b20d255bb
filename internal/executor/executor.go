// Package executor implements component D: invoke a registered
// function, converting panics into a ComputeCrashed outcome. It never
// touches the Store; publishing is the scheduler's responsibility.
package executor

import (
	"fmt"
	"runtime/debug"

	"github.com/rs/zerolog"

	"github.com/iiivansss84/rehydrate/internal/clock"
	"github.com/iiivansss84/rehydrate/internal/registry"
	"github.com/iiivansss84/rehydrate/internal/telemetry"
)

// CrashError wraps a recovered panic from a registered compute
// function, the Go-idiomatic equivalent of ComputeCrashed(details).
type CrashError struct {
	Detail string
	Stack  string
}

func (e *CrashError) Error() string {
	return fmt.Sprintf("rehydrate: compute crashed: %s", e.Detail)
}

// Executor runs registered compute functions and reports outcomes.
type Executor struct {
	clock   clock.Clock
	metrics *telemetry.MetricSet
	log     zerolog.Logger
}

// New constructs an Executor.
func New(c clock.Clock, metrics *telemetry.MetricSet, log zerolog.Logger) *Executor {
	return &Executor{clock: c, metrics: metrics, log: log}
}

// Execute invokes reg.Fn, recovering any panic into a CrashError, and
// returns the outcome unchanged otherwise. It never holds a
// Cache-owned lock while fn runs.
func (e *Executor) Execute(reg registry.Registration) (value any, err error) {
	started := e.clock.Now()
	defer func() {
		elapsedMs := float64(e.clock.Now().Sub(started).Milliseconds())
		if e.metrics != nil {
			e.metrics.ComputeMillis.WithLabelValues(reg.Key).Observe(elapsedMs)
		}
	}()

	defer func() {
		if r := recover(); r != nil {
			stack := string(debug.Stack())
			err = &CrashError{Detail: fmt.Sprint(r), Stack: stack}
			e.log.Warn().Str("key", reg.Key).Str("panic", fmt.Sprint(r)).Msg("compute function panicked")
			e.recordOutcome(reg.Key, telemetry.OutcomeCrash)
		}
	}()

	value, err = reg.Fn()
	if err != nil {
		e.log.Warn().Str("key", reg.Key).Err(err).Msg("compute function returned error")
		e.recordOutcome(reg.Key, telemetry.OutcomeFailure)
		return nil, err
	}
	e.recordOutcome(reg.Key, telemetry.OutcomeSuccess)
	return value, nil
}

func (e *Executor) recordOutcome(key, outcome string) {
	if e.metrics != nil {
		e.metrics.Computes.WithLabelValues(key, outcome).Inc()
	}
}

