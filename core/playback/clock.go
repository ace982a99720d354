package playback

import "time"

// Clock supplies the current time. Transitions persist timestamps truncated
// to whole seconds; elapsed-time reads use the live value.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// SystemClock returns a Clock backed by the wall clock, in UTC.
func SystemClock() Clock {
	return systemClock{}
}
