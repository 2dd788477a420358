package lock

import (
	"time"

	"github.com/juju/clock"

	"github.com/bashhack/softlock/pkg/logger"
	"github.com/bashhack/softlock/pkg/process"
)

// WaitForever as a timeout makes Acquire wait until the lock is free.
// Any negative duration has the same meaning.
const WaitForever time.Duration = -1

const (
	// DefaultReleaseAttempts bounds how often Release retries a busy lock file.
	DefaultReleaseAttempts = 50
	// DefaultReleaseDelay is the pause between release attempts.
	DefaultReleaseDelay = 100 * time.Millisecond
)

// Option customises a Lock.
type Option func(*Lock)

// WithTimeout sets the timeout Acquire uses. The default is WaitForever.
func WithTimeout(d time.Duration) Option {
	return func(l *Lock) {
		l.timeout = d
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(log logger.Logger) Option {
	return func(l *Lock) {
		if log != nil {
			l.logger = log
		}
	}
}

// WithClock sets the clock used for backoff waits and timeouts.
func WithClock(c clock.Clock) Option {
	return func(l *Lock) {
		if c != nil {
			l.clock = c
		}
	}
}

// WithBackoff sets the wait schedule between contended attempts. Values that
// would break the schedule (factor <= 1, max < initial) are ignored.
func WithBackoff(initial time.Duration, factor float64, max time.Duration) Option {
	return func(l *Lock) {
		b := Backoff{Initial: initial, Factor: factor, Max: max}
		if b.valid() {
			l.backoff = b
		}
	}
}

// WithLivenessChecker sets how owner processes are probed.
func WithLivenessChecker(c process.Checker) Option {
	return func(l *Lock) {
		if c != nil {
			l.checker = c
		}
	}
}

// WithObserver registers an Observer for lock events.
func WithObserver(o Observer) Option {
	return func(l *Lock) {
		if o != nil {
			l.observer = o
		}
	}
}

// WithReleaseRetry sets how many times, and how far apart, Release tries to
// delete a lock file the platform reports as busy.
func WithReleaseRetry(attempts int, delay time.Duration) Option {
	return func(l *Lock) {
		if attempts > 0 {
			l.releaseAttempts = attempts
		}
		if delay > 0 {
			l.releaseDelay = delay
		}
	}
}

// WithPID overrides the process identifier written to the lock file.
func WithPID(pid int) Option {
	return func(l *Lock) {
		if pid > 0 {
			l.pid = pid
		}
	}
}
