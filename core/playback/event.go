package playback

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/duythanhle/live-beats/model"
)

// EventType is the kind of playback event.
type EventType string

const (
	EventPlay  EventType = "play"
	EventPause EventType = "pause"
)

// Event is published to a user's room channel after a committed transition.
type Event struct {
	ID         string       `json:"id"`
	Type       EventType    `json:"type"`
	Track      *model.Track `json:"track"`
	ElapsedSec float64      `json:"elapsedSec,omitempty"`
	Timestamp  int64        `json:"timestamp"` // Unix milliseconds
}

// NewEvent builds an event for the given committed track state, stamped
// with the caller's clock.
func NewEvent(typ EventType, track *model.Track, elapsed time.Duration, now time.Time) Event {
	return Event{
		ID:         uuid.New().String(),
		Type:       typ,
		Track:      track,
		ElapsedSec: elapsed.Seconds(),
		Timestamp:  now.UnixMilli(),
	}
}

// Notifier publishes state-change events to per-user channels. Delivery is
// fire-and-forget, at-least-once; a publish failure never fails a transition.
type Notifier interface {
	Publish(ctx context.Context, topic string, event Event) error
}

// Topic derives the channel name for a user's room.
func Topic(userID int64) string {
	return fmt.Sprintf("room:%d", userID)
}
