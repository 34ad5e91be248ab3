package record

import "time"

// Clock supplies the wall-clock time used for date keys and timestamps.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// DateKey formats t's local calendar date as MMDDYYYY.
func DateKey(t time.Time) string {
	return t.Local().Format("01022006")
}
