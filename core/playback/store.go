package playback

import (
	"context"

	"github.com/duythanhle/live-beats/model"
)

// TransitionStore is the durable side of the state machine. ApplyTransition
// is the only mutation path and the sole serialization point: the store's
// transaction isolation is what keeps concurrent transitions for one user
// from committing two active tracks.
type TransitionStore interface {
	// GetTrack loads a track snapshot. Returns ErrTrackNotFound if absent.
	GetTrack(ctx context.Context, id int64) (*model.Track, error)

	// ApplyTransition applies a computed transition as one atomic unit:
	// every other playing or paused track of userID is set to stopped, then
	// the target row is written with fields. Neither write is visible
	// without the other. Returns the post-commit target row.
	//
	// Returns ErrTrackNotFound if the target row no longer exists, and
	// ErrConflict if the transaction could not complete (retryable by the
	// caller).
	ApplyTransition(ctx context.Context, userID, trackID int64, fields TransitionFields) (*model.Track, error)

	// CurrentActive returns the at-most-one playing or paused track for a
	// user, or nil when none. If the store holds more than one active row
	// the invariant is broken and ErrInvariantViolation is returned rather
	// than an arbitrary pick.
	CurrentActive(ctx context.Context, userID int64) (*model.Track, error)
}
