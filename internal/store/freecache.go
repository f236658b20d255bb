package store

import (
	"github.com/coocood/freecache"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/iiivansss84/rehydrate/internal/clock"
)

// envelope bundles the marshaled value with its expiry so Get can
// check freshness against the injected clock without relying on
// freecache's own TTL bookkeeping, which is expressed in
// seconds-from-set rather than an absolute time we can query back out.
type envelope struct {
	ValueBytes []byte `msgpack:"v"`
	ExpiresAt  int64  `msgpack:"e"`
}

// FreeCache is a Store backed by github.com/coocood/freecache, for
// callers who register many keys with large serializable values and
// want bounded memory instead of an unbounded Go map. Values are
// msgpack-encoded to the []byte shape freecache requires, the same
// marshal/unmarshal pairing the teacher uses for its Redis path.
type FreeCache struct {
	clock clock.Clock
	cache *freecache.Cache
}

// NewFreeCache constructs a FreeCache-backed Store with the given
// byte-size budget.
func NewFreeCache(c clock.Clock, sizeBytes int) *FreeCache {
	return &FreeCache{
		clock: c,
		cache: freecache.NewCache(sizeBytes),
	}
}

// Put marshals value and writes it with freecache's own TTL, plus an
// envelope recording the absolute expiry that Get checks.
func (f *FreeCache) Put(key string, value any, ttlSeconds int64) {
	now := f.clock.Now().Unix()
	valueBytes, err := marshal(value)
	if err != nil {
		// Value is not marshalable: fail silently and let the slot
		// stay absent, same as if the compute had never succeeded.
		return
	}
	env := envelope{ValueBytes: valueBytes, ExpiresAt: now + ttlSeconds}
	envBytes, err := msgpack.Marshal(&env)
	if err != nil {
		return
	}
	_ = f.cache.Set([]byte(key), envBytes, int(ttlSeconds))
}

// Get reads back the envelope and unmarshals the value. freecache
// already evicts on its own TTL, so a miss here means either never
// set or expired.
func (f *FreeCache) Get(key string) (any, bool) {
	envBytes, err := f.cache.Get([]byte(key))
	if err != nil {
		return nil, false
	}
	var env envelope
	if err := msgpack.Unmarshal(envBytes, &env); err != nil {
		return nil, false
	}
	if env.ExpiresAt <= f.clock.Now().Unix() {
		return nil, false
	}
	value, err := unmarshal(env.ValueBytes)
	if err != nil {
		return nil, false
	}
	return value, true
}

// Snapshot always returns an empty map for this backend: FreeCache
// does not track the keys it has stored, so it cannot enumerate its
// fresh entries.
func (f *FreeCache) Snapshot() map[string]any {
	// freecache has no native iterator; callers needing a full
	// snapshot from this backend should prefer Memory. This returns
	// an empty map rather than guessing at keys it was never told
	// about, which would silently under- or over-report freshness.
	return map[string]any{}
}

// Close releases no external resources; freecache is purely in-process.
func (f *FreeCache) Close() error {
	return nil
}

// marshal always goes through msgpack, unlike the teacher's []byte/string
// fast path: that fast path only works when the caller supplies a typed
// destination to unmarshal into, which this Store's Get(key) (any, bool)
// contract deliberately doesn't require.
func marshal(value any) ([]byte, error) {
	return msgpack.Marshal(value)
}

func unmarshal(b []byte) (any, error) {
	var v any
	if err := msgpack.Unmarshal(b, &v); err != nil {
		return nil, err
	}
	return v, nil
}
