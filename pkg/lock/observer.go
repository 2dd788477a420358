package lock

import "time"

// Observer receives lock events, typically to record metrics.
// Methods are called synchronously from the goroutine using the Lock.
type Observer interface {
	LockAcquired(path string, waited time.Duration, attempts int)
	LockTimedOut(path string, waited time.Duration)
	StaleLockRemoved(path string, ownerPID int)
	LockReleased(path string, held time.Duration)
}

type nopObserver struct{}

func (nopObserver) LockAcquired(string, time.Duration, int) {}
func (nopObserver) LockTimedOut(string, time.Duration)      {}
func (nopObserver) StaleLockRemoved(string, int)            {}
func (nopObserver) LockReleased(string, time.Duration)      {}
