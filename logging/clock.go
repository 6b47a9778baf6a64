package logging

import "time"

type Clock interface {
	Now() time.Time
}

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time {
	return f()
}

func SystemClock() Clock {
	return ClockFunc(time.Now)
}
