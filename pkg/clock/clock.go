package clock

import "time"

// Layouts for the persisted attendance row shape.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// Clock provides the current time. Services take a Clock so tests can pin it.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// System returns a Clock backed by time.Now.
func System() Clock {
	return systemClock{}
}

// Fixed returns a Clock that always reports t.
func Fixed(t time.Time) Clock {
	return fixedClock{t: t}
}

type fixedClock struct {
	t time.Time
}

func (f fixedClock) Now() time.Time {
	return f.t
}

// Date formats t as a calendar date string (YYYY-MM-DD).
func Date(t time.Time) string {
	return t.Format(DateLayout)
}

// TimeOfDay formats t as a time-of-day string (HH:MM:SS).
func TimeOfDay(t time.Time) string {
	return t.Format(TimeLayout)
}
