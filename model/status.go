package model

// PlaybackStatus is the playback state of a track. It is a closed enum:
// every consumer must match all three values exhaustively.
type PlaybackStatus string

const (
	StatusStopped PlaybackStatus = "stopped"
	StatusPlaying PlaybackStatus = "playing"
	StatusPaused  PlaybackStatus = "paused"
)

// Valid reports whether s is one of the three known statuses.
func (s PlaybackStatus) Valid() bool {
	switch s {
	case StatusStopped, StatusPlaying, StatusPaused:
		return true
	default:
		return false
	}
}

// Active reports whether the status counts against the one-active-track
// rule: a playing or paused track holds the user's playback slot.
func (s PlaybackStatus) Active() bool {
	return s == StatusPlaying || s == StatusPaused
}

// String implements fmt.Stringer.
func (s PlaybackStatus) String() string {
	return string(s)
}
