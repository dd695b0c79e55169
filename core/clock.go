package core

import "time"

// Clock abstracts time so the timer-job helper and idle-backoff delays can
// be driven deterministically under test, the same way Logger and Metrics
// are pluggable collaborators rather than direct calls into a package.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
	Sleep(d time.Duration)
}

type realClock struct{}

// RealClock returns the Clock backed by the actual wall clock.
func RealClock() Clock { return realClock{} }

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }
func (realClock) Sleep(d time.Duration)                  { time.Sleep(d) }
