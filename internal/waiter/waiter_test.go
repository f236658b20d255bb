package waiter

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishWakesSubscribedWaiter(t *testing.T) {
	clock := clockwork.NewFakeClock()
	h := New(clock)

	handle := h.Subscribe("k", time.Second)

	done := make(chan Result, 1)
	go func() { done <- h.Await(handle) }()

	clock.BlockUntil(1) // wait for the deadline timer to be armed
	h.Publish("k", "value")

	result := <-done
	require.Equal(t, "value", result.Value)
	require.False(t, result.TimedOut)
	require.False(t, result.NotRegistered)
}

func TestHub_DeadlineReleasesWithTimeout(t *testing.T) {
	clock := clockwork.NewFakeClock()
	h := New(clock)

	handle := h.Subscribe("k", time.Second)

	done := make(chan Result, 1)
	go func() { done <- h.Await(handle) }()

	clock.BlockUntil(1)
	clock.Advance(time.Second)

	result := <-done
	require.True(t, result.TimedOut)
}

func TestHub_PublishNotRegisteredWakesWaiter(t *testing.T) {
	clock := clockwork.NewFakeClock()
	h := New(clock)

	handle := h.Subscribe("k", time.Minute)
	done := make(chan Result, 1)
	go func() { done <- h.Await(handle) }()

	clock.BlockUntil(1)
	h.PublishNotRegistered("k")

	result := <-done
	require.True(t, result.NotRegistered)
}

func TestHub_SubscribeAfterTeardownReturnsNotRegisteredImmediately(t *testing.T) {
	clock := clockwork.NewFakeClock()
	h := New(clock)

	h.PublishNotRegistered("k") // nothing subscribed yet; marks key torn down

	handle := h.Subscribe("k", time.Minute)
	result := h.Await(handle)
	require.True(t, result.NotRegistered, "a Subscribe racing with deregistration must not wait out its deadline")
}

func TestHub_ResetClearsTeardownMarker(t *testing.T) {
	clock := clockwork.NewFakeClock()
	h := New(clock)

	h.PublishNotRegistered("k")
	h.Reset("k")

	handle := h.Subscribe("k", time.Second)
	done := make(chan Result, 1)
	go func() { done <- h.Await(handle) }()

	clock.BlockUntil(1)
	h.Publish("k", 7)

	result := <-done
	require.Equal(t, 7, result.Value)
}

func TestHub_MultipleWaitersAllReceivePublish(t *testing.T) {
	clock := clockwork.NewFakeClock()
	h := New(clock)

	const n = 5
	handles := make([]Handle, n)
	for i := range handles {
		handles[i] = h.Subscribe("k", time.Minute)
	}
	clock.BlockUntil(n)

	h.Publish("k", "v")
	for _, handle := range handles {
		result := h.Await(handle)
		require.Equal(t, "v", result.Value)
	}
}
