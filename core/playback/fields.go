package playback

import (
	"time"

	"github.com/duythanhle/live-beats/model"
)

// TransitionFields is the set of columns one transition may write. The
// interface is sealed: only PlayFields and PauseFields implement it, so a
// transition can never touch a column its type does not declare.
type TransitionFields interface {
	// Columns returns the column/value pairs to write on the target row.
	Columns() map[string]interface{}

	transitionFields()
}

// PlayFields is the target-row write set for a play transition.
type PlayFields struct {
	Status   model.PlaybackStatus
	PlayedAt time.Time
}

func (f PlayFields) Columns() map[string]interface{} {
	return map[string]interface{}{
		"status":    f.Status,
		"played_at": f.PlayedAt,
		"paused_at": nil, // paused_at is meaningless outside paused
	}
}

func (PlayFields) transitionFields() {}

// PauseFields is the target-row write set for a pause transition.
type PauseFields struct {
	Status   model.PlaybackStatus
	PausedAt time.Time
}

func (f PauseFields) Columns() map[string]interface{} {
	return map[string]interface{}{
		"status":    f.Status,
		"paused_at": f.PausedAt,
	}
}

func (PauseFields) transitionFields() {}
