package resolver

import "errors"

var (
	// ErrUnrecognizedPlatform means the shared URL is not something we can resolve.
	// It is a client input error and is never absorbed by the fallback policy.
	ErrUnrecognizedPlatform = errors.New("unrecognized platform")

	// ErrStorageFailure wraps failures of the mandatory final writes.
	ErrStorageFailure = errors.New("storage failure")
)
