// Package rehydrate implements a periodic self-rehydrating cache:
// callers register zero-argument compute functions under named keys,
// each with a time-to-live and a refresh interval, and the cache
// transparently recomputes each function on its own schedule while
// serving the most recently successful result to concurrent readers
// with bounded latency.
package rehydrate
