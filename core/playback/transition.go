// Package playback implements the playback state machine for user track
// libraries: per user at most one track is playing or paused at a time, and
// elapsed time survives pause/resume cycles without a separate accumulator.
package playback

import (
	"fmt"
	"time"

	"github.com/duythanhle/live-beats/model"
)

// RequestPlay computes the target fields for playing track t at now.
//
// A stopped track starts its clock at now. A paused track is resumed by
// rewinding played_at so that now minus played_at equals the elapsed time
// accumulated before the pause. Replaying an already-playing track keeps its
// clock untouched. Alongside the returned fields, every other active track of
// the same user must be stopped in the same atomic unit; that demotion is the
// store's job (see TransitionStore.ApplyTransition).
func RequestPlay(t *model.Track, now time.Time) (PlayFields, error) {
	now = now.UTC().Truncate(time.Second)

	switch t.Status {
	case model.StatusPlaying:
		if t.PlayedAt == nil {
			return PlayFields{}, fmt.Errorf("%w: playing track %d has no played_at", ErrInvalidState, t.ID)
		}
		// Idempotent replay keeps the running clock.
		return PlayFields{Status: model.StatusPlaying, PlayedAt: t.PlayedAt.UTC().Truncate(time.Second)}, nil

	case model.StatusPaused:
		if t.PlayedAt == nil || t.PausedAt == nil {
			return PlayFields{}, fmt.Errorf("%w: paused track %d missing played_at or paused_at", ErrInvalidState, t.ID)
		}
		elapsed := t.PausedAt.Sub(*t.PlayedAt)
		return PlayFields{Status: model.StatusPlaying, PlayedAt: now.Add(-elapsed)}, nil

	case model.StatusStopped:
		return PlayFields{Status: model.StatusPlaying, PlayedAt: now}, nil

	default:
		return PlayFields{}, fmt.Errorf("%w: %q on track %d", ErrInvalidState, t.Status, t.ID)
	}
}

// RequestPause computes the target fields for pausing track t at now.
// played_at is left untouched, so elapsed time becomes the fixed difference
// paused_at minus played_at until the track is resumed.
//
// Only a playing or paused track can pause. A stopped track is rejected even
// when it still carries a played_at: demotion writes only the status, so the
// leftover timestamp must never bring the track back as paused.
func RequestPause(t *model.Track, now time.Time) (PauseFields, error) {
	switch t.Status {
	case model.StatusPlaying, model.StatusPaused:
		if t.PlayedAt == nil {
			return PauseFields{}, fmt.Errorf("%w: cannot pause track %d that never played", ErrInvalidState, t.ID)
		}
	case model.StatusStopped:
		return PauseFields{}, fmt.Errorf("%w: cannot pause stopped track %d", ErrInvalidState, t.ID)
	default:
		return PauseFields{}, fmt.Errorf("%w: %q on track %d", ErrInvalidState, t.Status, t.ID)
	}
	return PauseFields{
		Status:   model.StatusPaused,
		PausedAt: now.UTC().Truncate(time.Second),
	}, nil
}

// Elapsed returns how long track t has been playing, as of now. It is a pure
// read: playing tracks are measured against the live clock, paused tracks
// against their frozen paused_at, stopped tracks are always zero.
func Elapsed(t *model.Track, now time.Time) (time.Duration, error) {
	switch t.Status {
	case model.StatusPlaying:
		if t.PlayedAt == nil {
			return 0, fmt.Errorf("%w: playing track %d has no played_at", ErrInvalidState, t.ID)
		}
		return now.Sub(*t.PlayedAt), nil

	case model.StatusPaused:
		if t.PlayedAt == nil || t.PausedAt == nil {
			return 0, fmt.Errorf("%w: paused track %d missing played_at or paused_at", ErrInvalidState, t.ID)
		}
		return t.PausedAt.Sub(*t.PlayedAt), nil

	case model.StatusStopped:
		return 0, nil

	default:
		return 0, fmt.Errorf("%w: %q on track %d", ErrInvalidState, t.Status, t.ID)
	}
}
