package registry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func noop() (any, error) { return nil, nil }

func TestValidate(t *testing.T) {
	require.True(t, Validate(10, 3))
	require.True(t, Validate(10, 0))
	require.False(t, Validate(0, 0), "ttl must be > 0")
	require.False(t, Validate(10, -1), "interval must be >= 0")
	require.False(t, Validate(10, 10), "interval must be strictly less than ttl")
	require.False(t, Validate(10, 11), "interval must be strictly less than ttl")
}

func TestRegistry_RegisterInsertOnlyIfAbsent(t *testing.T) {
	r := New()

	ok := r.Register(Registration{Key: "k", Fn: noop, TTLSeconds: 10, RefreshIntervalSeconds: 3})
	require.True(t, ok)

	// Second registration for the same key makes no change (I5).
	ok = r.Register(Registration{Key: "k", Fn: noop, TTLSeconds: 99, RefreshIntervalSeconds: 1})
	require.False(t, ok)

	reg, found := r.Get("k")
	require.True(t, found)
	require.Equal(t, int64(10), reg.TTLSeconds, "AlreadyRegistered must leave the original registration untouched")
}

func TestRegistry_DeregisterReturnsPriorEntry(t *testing.T) {
	r := New()
	r.Register(Registration{Key: "k", Fn: noop, TTLSeconds: 10, RefreshIntervalSeconds: 3})

	reg, ok := r.Deregister("k")
	require.True(t, ok)
	require.Equal(t, "k", reg.Key)

	_, ok = r.Get("k")
	require.False(t, ok)

	_, ok = r.Deregister("k")
	require.False(t, ok, "deregistering an absent key returns false")
}

func TestRegistry_RegisterDeregisterRegisterSucceeds(t *testing.T) {
	r := New()
	require.True(t, r.Register(Registration{Key: "k", Fn: noop, TTLSeconds: 10, RefreshIntervalSeconds: 3}))
	_, ok := r.Deregister("k")
	require.True(t, ok)
	require.True(t, r.Register(Registration{Key: "k", Fn: noop, TTLSeconds: 5, RefreshIntervalSeconds: 1}))
}

func TestRegistry_Keys(t *testing.T) {
	r := New()
	r.Register(Registration{Key: "a", Fn: noop, TTLSeconds: 10, RefreshIntervalSeconds: 3})
	r.Register(Registration{Key: "b", Fn: noop, TTLSeconds: 10, RefreshIntervalSeconds: 3})

	require.ElementsMatch(t, []string{"a", "b"}, r.Keys())
}
