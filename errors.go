package rehydrate

import "errors"

var (
	// ErrNotRegistered is returned when a key has no active registration.
	ErrNotRegistered = errors.New("rehydrate: key not registered")
	// ErrAlreadyRegistered is returned when a key is already registered.
	ErrAlreadyRegistered = errors.New("rehydrate: key already registered")
	// ErrInvalidParameters is returned when ttl/refreshInterval violate I1.
	ErrInvalidParameters = errors.New("rehydrate: invalid ttl/refresh parameters")
	// ErrTimeout is returned when Get's deadline elapses before a fresh value lands.
	ErrTimeout = errors.New("rehydrate: timeout waiting for value")
)
