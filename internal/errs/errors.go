// Package errs defines shared sentinel errors for the persistence and
// synchronization layers. Callers should use errors.Is to match these values.
package errs

import "errors"

var (
	// Store availability.
	ErrNotAvailable = errors.New("no persistence backend available")

	// Remote store errors. Unreachable covers transport failures; rejected
	// covers authorization and constraint violations reported by the store.
	ErrRemoteUnreachable = errors.New("remote store unreachable")
	ErrRemoteRejected    = errors.New("remote store rejected request")

	// Cache deserialization failure. Never propagated past the cache layer:
	// a corrupt payload degrades to an empty result.
	ErrCorrupt = errors.New("corrupt cached payload")

	// Identity errors.
	ErrUnauthenticated = errors.New("no identity could be resolved")
	ErrInvalidToken    = errors.New("invalid token")
	ErrUnauthorized    = errors.New("unauthorized")

	// Repository-level errors.
	ErrNotFound = errors.New("not found")
)
