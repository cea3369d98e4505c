package coordinator

import "time"

// Clock abstracts time so the debounce window can be driven deterministically
// in tests.
type Clock interface {
	Now() time.Time

	// AfterFunc runs fn after d on the clock's own schedule and returns a
	// handle that stops the call while it is still pending.
	AfterFunc(d time.Duration, fn func()) Timer
}

// Timer is a stoppable handle to a scheduled callback.
type Timer interface {
	Stop() bool
}

// wallClock is the real-time Clock used outside tests.
type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

func (wallClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}
