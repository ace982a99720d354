package playback

import "errors"

// Errors
var (
	// ErrTrackNotFound means the target track does not exist at transition
	// time. Surfaced to the caller, never retried here.
	ErrTrackNotFound = errors.New("track not found")

	// ErrConflict means the store transaction could not complete (write
	// conflict or lock timeout). Retryable by the caller; the core performs
	// no automatic retry.
	ErrConflict = errors.New("playback transition conflict")

	// ErrInvalidState means a track carried a status outside the closed
	// stopped/playing/paused enum. A programming invariant failure.
	ErrInvalidState = errors.New("invalid playback status")

	// ErrInvariantViolation means the store reported more than one active
	// track for a user. Surfaced rather than silently resolved.
	ErrInvariantViolation = errors.New("multiple active tracks for user")
)
