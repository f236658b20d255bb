// Package clock wraps clockwork.Clock so the rest of the engine reads
// time through a single injectable capability, per the "Clock injection"
// guidance. The one exception is Cache.Get, which turns a caller's
// context deadline (a wall-clock time) into a timeout with time.Until.
package clock

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Clock is the capability the scheduler, store, and waiter hub use to
// read time and arm timers. It is clockwork.Clock renamed at the
// package boundary so callers of this module don't need to import
// clockwork themselves to pass a fake clock into New.
type Clock = clockwork.Clock

// Timer is clockwork's cancellable timer handle, returned by
// Clock.AfterFunc and Clock.NewTimer.
type Timer = clockwork.Timer

// NewReal returns a Clock backed by the real wall clock.
func NewReal() Clock {
	return clockwork.NewRealClock()
}

// NewFake returns a Clock with a controllable "now", for deterministic
// tests of TTL and refresh-interval boundaries.
func NewFake() clockwork.FakeClock {
	return clockwork.NewFakeClock()
}

// NewFakeAt returns a Clock with a controllable "now" pinned to t.
func NewFakeAt(t time.Time) clockwork.FakeClock {
	return clockwork.NewFakeClockAt(t)
}
