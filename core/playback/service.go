package playback

import (
	"context"
	"fmt"
	"time"

	"github.com/duythanhle/live-beats/logger"
	"github.com/duythanhle/live-beats/model"
)

// Service is the library facade callers go through: it composes the state
// machine, the transition store and the notifier. One Service instance is
// shared by all request handlers; it holds no per-user state of its own.
type Service struct {
	store    TransitionStore
	notifier Notifier
	clock    Clock
}

// NewService creates a playback service. A nil clock falls back to the
// system clock.
func NewService(store TransitionStore, notifier Notifier, clock Clock) *Service {
	if clock == nil {
		clock = SystemClock()
	}
	return &Service{store: store, notifier: notifier, clock: clock}
}

// Play starts or resumes playback of the given track and stops whatever else
// the owner had active, all in one store transaction. The committed state is
// published to the owner's room channel.
func (s *Service) Play(ctx context.Context, trackID int64) error {
	track, err := s.store.GetTrack(ctx, trackID)
	if err != nil {
		return fmt.Errorf("play track %d: %w", trackID, err)
	}

	fields, err := RequestPlay(track, s.clock.Now())
	if err != nil {
		return fmt.Errorf("play track %d: %w", trackID, err)
	}

	updated, err := s.store.ApplyTransition(ctx, track.UserID, track.ID, fields)
	if err != nil {
		return fmt.Errorf("play track %d: %w", trackID, err)
	}

	elapsed, err := Elapsed(updated, s.clock.Now())
	if err != nil {
		// The row we just wrote has a known-good status; reaching this
		// means the store returned something else entirely.
		return fmt.Errorf("play track %d: %w", trackID, err)
	}

	s.publish(ctx, updated.UserID, NewEvent(EventPlay, updated, elapsed, s.clock.Now()))
	return nil
}

// Pause pauses the given track, freezing its elapsed time at paused_at minus
// played_at. Any other active track of the owner is stopped in the same
// transaction; normally there is none, but the demotion holds even if the
// at-most-one-active rule was transiently broken.
func (s *Service) Pause(ctx context.Context, track *model.Track) error {
	fields, err := RequestPause(track, s.clock.Now())
	if err != nil {
		return fmt.Errorf("pause track %d: %w", track.ID, err)
	}

	updated, err := s.store.ApplyTransition(ctx, track.UserID, track.ID, fields)
	if err != nil {
		return fmt.Errorf("pause track %d: %w", track.ID, err)
	}

	s.publish(ctx, updated.UserID, NewEvent(EventPause, updated, 0, s.clock.Now()))
	return nil
}

// CurrentActive returns the user's playing or paused track, or nil when the
// user has none.
func (s *Service) CurrentActive(ctx context.Context, userID int64) (*model.Track, error) {
	return s.store.CurrentActive(ctx, userID)
}

// Elapsed returns how long the track has been playing as of now.
func (s *Service) Elapsed(track *model.Track) (time.Duration, error) {
	return Elapsed(track, s.clock.Now())
}

// publish sends the event to the owner's room channel. State mutation is the
// authoritative effect; notification is best-effort.
func (s *Service) publish(ctx context.Context, userID int64, ev Event) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, Topic(userID), ev); err != nil {
		logger.Warn("playback event publish failed",
			logger.Int64("userId", userID),
			logger.String("eventType", string(ev.Type)),
			logger.ErrorField(err))
	}
}
