package playback

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duythanhle/live-beats/model"
)

// fakeClock is a settable clock.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

// memStore is an in-memory TransitionStore mirroring the transactional
// semantics of the real one: demotion and target write happen together or
// not at all.
type memStore struct {
	tracks     map[int64]*model.Track
	applyErr   error
	applyCalls int
}

func newMemStore(tracks ...*model.Track) *memStore {
	s := &memStore{tracks: make(map[int64]*model.Track)}
	for _, t := range tracks {
		s.tracks[t.ID] = t
	}
	return s
}

func (s *memStore) GetTrack(_ context.Context, id int64) (*model.Track, error) {
	t, ok := s.tracks[id]
	if !ok {
		return nil, ErrTrackNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *memStore) ApplyTransition(_ context.Context, userID, trackID int64, fields TransitionFields) (*model.Track, error) {
	s.applyCalls++
	if s.applyErr != nil {
		return nil, s.applyErr
	}
	target, ok := s.tracks[trackID]
	if !ok || target.UserID != userID {
		return nil, ErrTrackNotFound
	}

	for _, t := range s.tracks {
		if t.UserID == userID && t.ID != trackID && t.Status.Active() {
			t.Status = model.StatusStopped
		}
	}

	switch f := fields.(type) {
	case PlayFields:
		playedAt := f.PlayedAt
		target.Status = f.Status
		target.PlayedAt = &playedAt
		target.PausedAt = nil
	case PauseFields:
		pausedAt := f.PausedAt
		target.Status = f.Status
		target.PausedAt = &pausedAt
	}

	cp := *target
	return &cp, nil
}

func (s *memStore) CurrentActive(_ context.Context, userID int64) (*model.Track, error) {
	var active []*model.Track
	for _, t := range s.tracks {
		if t.UserID == userID && t.Status.Active() {
			active = append(active, t)
		}
	}
	switch len(active) {
	case 0:
		return nil, nil
	case 1:
		cp := *active[0]
		return &cp, nil
	default:
		return nil, ErrInvariantViolation
	}
}

// recordingNotifier captures published events.
type recordingNotifier struct {
	topics []string
	events []Event
	err    error
}

func (n *recordingNotifier) Publish(_ context.Context, topic string, event Event) error {
	if n.err != nil {
		return n.err
	}
	n.topics = append(n.topics, topic)
	n.events = append(n.events, event)
	return nil
}

func newTestService(store *memStore, notifier *recordingNotifier, startAt time.Time) (*Service, *fakeClock) {
	clock := &fakeClock{now: startAt}
	return NewService(store, notifier, clock), clock
}

func TestServicePlay_StartsStoppedTrack(t *testing.T) {
	store := newMemStore(stoppedTrack(1, 7))
	notifier := &recordingNotifier{}
	svc, _ := newTestService(store, notifier, at(1000))

	require.NoError(t, svc.Play(context.Background(), 1))

	track := store.tracks[1]
	assert.Equal(t, model.StatusPlaying, track.Status)
	require.NotNil(t, track.PlayedAt)
	assert.Equal(t, at(1000), *track.PlayedAt)

	require.Len(t, notifier.events, 1)
	assert.Equal(t, EventPlay, notifier.events[0].Type)
	assert.Equal(t, "room:7", notifier.topics[0])
	assert.NotEmpty(t, notifier.events[0].ID)
	assert.Equal(t, float64(0), notifier.events[0].ElapsedSec)
	assert.Equal(t, at(1000).UnixMilli(), notifier.events[0].Timestamp, "events are stamped from the service clock")
}

func TestServicePlay_DemotesActivePeer(t *testing.T) {
	x := playingTrack(1, 7, at(900))
	y := stoppedTrack(2, 7)
	store := newMemStore(x, y)
	notifier := &recordingNotifier{}
	svc, _ := newTestService(store, notifier, at(1000))

	require.NoError(t, svc.Play(context.Background(), 2))

	assert.Equal(t, model.StatusStopped, store.tracks[1].Status)
	assert.Equal(t, model.StatusPlaying, store.tracks[2].Status)

	active, err := svc.CurrentActive(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, int64(2), active.ID)
}

func TestServicePlay_LeavesOtherUsersAlone(t *testing.T) {
	mine := stoppedTrack(1, 7)
	theirs := playingTrack(2, 8, at(900))
	store := newMemStore(mine, theirs)
	notifier := &recordingNotifier{}
	svc, _ := newTestService(store, notifier, at(1000))

	require.NoError(t, svc.Play(context.Background(), 1))

	assert.Equal(t, model.StatusPlaying, store.tracks[2].Status, "peer demotion is scoped per user")
}

func TestServicePlay_TrackNotFound(t *testing.T) {
	store := newMemStore(stoppedTrack(1, 7))
	notifier := &recordingNotifier{}
	svc, _ := newTestService(store, notifier, at(1000))

	err := svc.Play(context.Background(), 42)
	assert.ErrorIs(t, err, ErrTrackNotFound)
	assert.Zero(t, store.applyCalls, "no writes on a missing track")
	assert.Empty(t, notifier.events, "no event on a failed transition")
}

func TestServicePlay_ConflictPropagates(t *testing.T) {
	store := newMemStore(stoppedTrack(1, 7))
	store.applyErr = ErrConflict
	notifier := &recordingNotifier{}
	svc, _ := newTestService(store, notifier, at(1000))

	err := svc.Play(context.Background(), 1)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Empty(t, notifier.events)
}

func TestServicePlay_PublishFailureDoesNotFailTransition(t *testing.T) {
	store := newMemStore(stoppedTrack(1, 7))
	notifier := &recordingNotifier{err: context.DeadlineExceeded}
	svc, _ := newTestService(store, notifier, at(1000))

	require.NoError(t, svc.Play(context.Background(), 1))
	assert.Equal(t, model.StatusPlaying, store.tracks[1].Status, "state change is authoritative")
}

func TestServicePause(t *testing.T) {
	store := newMemStore(playingTrack(1, 7, at(1000)))
	notifier := &recordingNotifier{}
	svc, _ := newTestService(store, notifier, at(1020))

	track, err := store.GetTrack(context.Background(), 1)
	require.NoError(t, err)
	require.NoError(t, svc.Pause(context.Background(), track))

	updated := store.tracks[1]
	assert.Equal(t, model.StatusPaused, updated.Status)
	require.NotNil(t, updated.PausedAt)
	assert.Equal(t, at(1020), *updated.PausedAt)
	assert.False(t, updated.PausedAt.Before(*updated.PlayedAt))

	require.Len(t, notifier.events, 1)
	assert.Equal(t, EventPause, notifier.events[0].Type)
}

// TestServicePause_DemotedTrackStaysStopped covers the aftermath of peer
// demotion: the demoted row keeps its old played_at, and pausing it must not
// bring it back as paused with elapsed time measured from that stale clock.
func TestServicePause_DemotedTrackStaysStopped(t *testing.T) {
	x := playingTrack(1, 7, at(1000))
	y := stoppedTrack(2, 7)
	store := newMemStore(x, y)
	notifier := &recordingNotifier{}
	svc, _ := newTestService(store, notifier, at(5000))

	ctx := context.Background()
	require.NoError(t, svc.Play(ctx, 2))

	demoted, err := store.GetTrack(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, model.StatusStopped, demoted.Status)
	require.NotNil(t, demoted.PlayedAt, "demotion only rewrites the status")

	err = svc.Pause(ctx, demoted)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, model.StatusStopped, store.tracks[1].Status)

	elapsed, err := svc.Elapsed(demoted)
	require.NoError(t, err)
	assert.Zero(t, elapsed, "a stopped track never reports time from its stale played_at")

	require.Len(t, notifier.events, 1, "only the play published")
	assert.Equal(t, EventPlay, notifier.events[0].Type)
}

// TestServicePauseResumeCycle drives the full scenario through the facade:
// play at T0, pause at T0+30, resume at T0+90, and the elapsed time reads 30s
// again right after the resume.
func TestServicePauseResumeCycle(t *testing.T) {
	store := newMemStore(stoppedTrack(1, 7))
	notifier := &recordingNotifier{}
	svc, clock := newTestService(store, notifier, at(1000))

	ctx := context.Background()
	require.NoError(t, svc.Play(ctx, 1))

	clock.advance(30 * time.Second)
	track, err := store.GetTrack(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, svc.Pause(ctx, track))

	clock.advance(60 * time.Second)
	require.NoError(t, svc.Play(ctx, 1))

	current, err := store.GetTrack(ctx, 1)
	require.NoError(t, err)
	elapsed, err := svc.Elapsed(current)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, elapsed)

	clock.advance(5 * time.Second)
	elapsed, err = svc.Elapsed(current)
	require.NoError(t, err)
	assert.Equal(t, 35*time.Second, elapsed)
}

func TestServiceCurrentActive_None(t *testing.T) {
	store := newMemStore(stoppedTrack(1, 7))
	svc, _ := newTestService(store, &recordingNotifier{}, at(1000))

	active, err := svc.CurrentActive(context.Background(), 7)
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestServiceCurrentActive_InvariantViolation(t *testing.T) {
	// Two active rows can only come from a bug or a manual data edit; the
	// service surfaces that instead of silently picking one.
	store := newMemStore(
		playingTrack(1, 7, at(900)),
		pausedTrack(2, 7, at(800), at(850)),
	)
	svc, _ := newTestService(store, &recordingNotifier{}, at(1000))

	_, err := svc.CurrentActive(context.Background(), 7)
	assert.ErrorIs(t, err, ErrInvariantViolation)
}

func TestTopic(t *testing.T) {
	assert.Equal(t, "room:7", Topic(7))
	assert.Equal(t, "room:12345", Topic(12345))
}
