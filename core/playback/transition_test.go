package playback

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duythanhle/live-beats/model"
)

// at builds a UTC timestamp from seconds since epoch, matching the
// second-resolution the transitions persist.
func at(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

func stoppedTrack(id, userID int64) *model.Track {
	return &model.Track{ID: id, UserID: userID, Status: model.StatusStopped}
}

func playingTrack(id, userID int64, playedAt time.Time) *model.Track {
	return &model.Track{ID: id, UserID: userID, Status: model.StatusPlaying, PlayedAt: &playedAt}
}

func pausedTrack(id, userID int64, playedAt, pausedAt time.Time) *model.Track {
	return &model.Track{ID: id, UserID: userID, Status: model.StatusPaused, PlayedAt: &playedAt, PausedAt: &pausedAt}
}

func TestRequestPlay_FromStopped(t *testing.T) {
	fields, err := RequestPlay(stoppedTrack(1, 7), at(1000))
	require.NoError(t, err)

	assert.Equal(t, model.StatusPlaying, fields.Status)
	assert.Equal(t, at(1000), fields.PlayedAt)
}

func TestRequestPlay_TruncatesToSeconds(t *testing.T) {
	now := at(1000).Add(750 * time.Millisecond)

	fields, err := RequestPlay(stoppedTrack(1, 7), now)
	require.NoError(t, err)

	assert.Equal(t, at(1000), fields.PlayedAt, "persisted played_at must be whole seconds")
}

func TestRequestPlay_ResumeRewindsStart(t *testing.T) {
	// Played at T=1000, paused at T=1020 (20s elapsed), resumed at T=1100:
	// the clock is rewound to T=1080 so elapsed stays 20s.
	track := pausedTrack(1, 7, at(1000), at(1020))

	fields, err := RequestPlay(track, at(1100))
	require.NoError(t, err)

	assert.Equal(t, model.StatusPlaying, fields.Status)
	assert.Equal(t, at(1080), fields.PlayedAt)
}

func TestRequestPlay_IdempotentOnPlaying(t *testing.T) {
	track := playingTrack(1, 7, at(1000))

	fields, err := RequestPlay(track, at(1050))
	require.NoError(t, err)

	assert.Equal(t, at(1000), fields.PlayedAt, "replay must not move the clock")
}

func TestRequestPlay_InvalidStatus(t *testing.T) {
	track := &model.Track{ID: 1, UserID: 7, Status: "buffering"}

	_, err := RequestPlay(track, at(1000))
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestRequestPlay_PausedWithoutTimestamps(t *testing.T) {
	track := &model.Track{ID: 1, UserID: 7, Status: model.StatusPaused}

	_, err := RequestPlay(track, at(1000))
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestRequestPause(t *testing.T) {
	track := playingTrack(1, 7, at(1000))

	fields, err := RequestPause(track, at(1020))
	require.NoError(t, err)

	assert.Equal(t, model.StatusPaused, fields.Status)
	assert.Equal(t, at(1020), fields.PausedAt)
}

func TestRequestPause_NeverPlayed(t *testing.T) {
	_, err := RequestPause(stoppedTrack(1, 7), at(1000))
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestRequestPause_StoppedWithStalePlayedAt(t *testing.T) {
	// A demoted track keeps its old played_at; pausing it must still fail.
	track := stoppedTrack(1, 7)
	playedAt := at(1000)
	track.PlayedAt = &playedAt

	_, err := RequestPause(track, at(5000))
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestRequestPause_PausedAtNotBeforePlayedAt(t *testing.T) {
	playedAt := at(1000)
	track := playingTrack(1, 7, playedAt)

	// Immediate pause: equality is allowed.
	fields, err := RequestPause(track, at(1000))
	require.NoError(t, err)
	assert.False(t, fields.PausedAt.Before(playedAt))
}

func TestElapsed(t *testing.T) {
	tests := []struct {
		name    string
		track   *model.Track
		now     time.Time
		want    time.Duration
		wantErr error
	}{
		{
			name:  "playing measures against live clock",
			track: playingTrack(1, 7, at(1000)),
			now:   at(1005),
			want:  5 * time.Second,
		},
		{
			name:  "playing keeps sub-second precision",
			track: playingTrack(1, 7, at(1000)),
			now:   at(1005).Add(300 * time.Millisecond),
			want:  5*time.Second + 300*time.Millisecond,
		},
		{
			name:  "paused is frozen at paused_at",
			track: pausedTrack(1, 7, at(1000), at(1020)),
			now:   at(9999),
			want:  20 * time.Second,
		},
		{
			name:  "stopped is always zero",
			track: stoppedTrack(1, 7),
			now:   at(5000),
			want:  0,
		},
		{
			name:    "unknown status fails",
			track:   &model.Track{ID: 1, Status: "loading"},
			now:     at(1000),
			wantErr: ErrInvalidState,
		},
		{
			name:    "playing without played_at fails",
			track:   &model.Track{ID: 1, Status: model.StatusPlaying},
			now:     at(1000),
			wantErr: ErrInvalidState,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Elapsed(tt.track, tt.now)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestPauseResumeCycle walks the full sequence: elapsed time must survive the
// pause and keep counting from where it stopped.
func TestPauseResumeCycle(t *testing.T) {
	track := stoppedTrack(1, 7)

	// Play at T0=1000.
	playFields, err := RequestPlay(track, at(1000))
	require.NoError(t, err)
	track.Status = playFields.Status
	track.PlayedAt = &playFields.PlayedAt
	track.PausedAt = nil

	// Pause at T0+30.
	pauseFields, err := RequestPause(track, at(1030))
	require.NoError(t, err)
	track.Status = pauseFields.Status
	track.PausedAt = &pauseFields.PausedAt

	elapsed, err := Elapsed(track, at(1090))
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, elapsed, "elapsed frozen while paused")

	// Resume at T0+90.
	playFields, err = RequestPlay(track, at(1090))
	require.NoError(t, err)
	track.Status = playFields.Status
	track.PlayedAt = &playFields.PlayedAt
	track.PausedAt = nil

	elapsed, err = Elapsed(track, at(1090))
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, elapsed, "resume preserves elapsed")

	elapsed, err = Elapsed(track, at(1095))
	require.NoError(t, err)
	assert.Equal(t, 35*time.Second, elapsed, "and it keeps counting")
}
