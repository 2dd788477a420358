package lock

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/juju/clock"

	"github.com/bashhack/softlock/pkg/errors"
	"github.com/bashhack/softlock/pkg/logger"
	"github.com/bashhack/softlock/pkg/process"
)

// Lock is a handle on a cross-process lock identified by a file path.
//
// A Lock is owned by a single goroutine. Distinct handles on the same path,
// in the same or different processes, exclude each other.
type Lock struct {
	path    string
	timeout time.Duration
	pid     int

	logger   logger.Logger
	clock    clock.Clock
	backoff  Backoff
	checker  process.Checker
	observer Observer

	releaseAttempts int
	releaseDelay    time.Duration

	// filesystem seams
	mkdirAll      func(string, os.FileMode) error
	openExclusive func(string) (*os.File, error)
	remove        func(string) error

	held       atomic.Bool
	generation atomic.Uint64
	acquiredAt time.Time
	// identity of the file this handle created; Release only removes that one
	created fs.FileInfo
}

// New returns an unheld Lock on path. The path is made absolute; its parent
// directory is created on the first Acquire.
func New(path string, opts ...Option) (*Lock, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.NewLockError(path, 0, errors.ErrInvalidPath)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.NewLockError(path, 0, errors.Wrap(errors.ErrInvalidPath, err.Error()))
	}

	l := &Lock{
		path:            abs,
		timeout:         WaitForever,
		pid:             os.Getpid(),
		logger:          logger.Discard(),
		clock:           clock.WallClock,
		backoff:         DefaultBackoff(),
		checker:         process.Default(),
		observer:        nopObserver{},
		releaseAttempts: DefaultReleaseAttempts,
		releaseDelay:    DefaultReleaseDelay,
		mkdirAll:        os.MkdirAll,
		remove:          os.Remove,
	}
	l.openExclusive = func(path string) (*os.File, error) {
		return publishExclusive(path, lockContent(l.pid))
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Path returns the absolute path of the lock file.
func (l *Lock) Path() string {
	return l.path
}

// Timeout returns the timeout Acquire uses.
func (l *Lock) Timeout() time.Duration {
	return l.timeout
}

// Held reports whether this handle currently holds the lock.
func (l *Lock) Held() bool {
	return l.held.Load()
}

// Acquire waits for the lock using the handle's default timeout.
func (l *Lock) Acquire(ctx context.Context) (*Guard, error) {
	return l.AcquireTimeout(ctx, l.timeout)
}

// AcquireTimeout waits up to timeout for the lock. A negative timeout waits
// until the lock is free; zero makes a single attempt.
//
// While another live process holds the lock, AcquireTimeout sleeps with
// exponential backoff and retries. A lock whose owner has died is removed and
// retried without waiting. The timeout is checked between attempts, so the
// call may overrun it by at most one backoff interval.
//
// Errors are *errors.LockError values wrapping ErrReentrantAcquire,
// ErrLockTimeout, the context's error, or the I/O error that prevented
// creating the file.
func (l *Lock) AcquireTimeout(ctx context.Context, timeout time.Duration) (*Guard, error) {
	if l.held.Load() {
		return nil, errors.NewLockError(l.path, l.pid, errors.ErrReentrantAcquire)
	}

	if err := l.mkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return nil, errors.NewLockError(l.path, 0, errors.Wrap(err, "failed to create lock directory"))
	}

	start := l.clock.Now()
	delay := l.backoff.Initial
	holder := 0

	for attempt := 1; ; attempt++ {
		outcome, info, err := l.tryCreate()
		switch outcome {
		case outcomeCreated:
			return l.markHeld(start, attempt, info), nil
		case outcomeAlreadyExists:
		default:
			return nil, errors.NewLockError(l.path, 0, errors.Wrapf(err, "failed to create lock file (%s)", outcome))
		}

		removed, ownerPID := l.removeIfStale()
		if removed {
			continue
		}
		if ownerPID > 0 {
			holder = ownerPID
		}

		waited := l.clock.Now().Sub(start)
		if timeout >= 0 && waited >= timeout {
			l.logger.Info("Timed out after %s waiting for lock %s", waited, l.path)
			l.observer.LockTimedOut(l.path, waited)
			return nil, errors.NewLockError(l.path, holder, errors.ErrLockTimeout)
		}

		if attempt == 1 {
			l.logger.Info("Lock %s is held by PID %d, waiting", l.path, holder)
		}
		select {
		case <-ctx.Done():
			return nil, errors.NewLockError(l.path, holder, ctx.Err())
		case <-l.clock.After(delay):
		}
		delay = l.backoff.Next(delay)
	}
}

func (l *Lock) markHeld(start time.Time, attempts int, info fs.FileInfo) *Guard {
	now := l.clock.Now()
	l.acquiredAt = now
	l.created = info
	l.held.Store(true)
	gen := l.generation.Add(1)

	waited := now.Sub(start)
	l.logger.Info("Acquired lock %s after %d attempt(s)", l.path, attempts)
	l.observer.LockAcquired(l.path, waited, attempts)
	return &Guard{lock: l, generation: gen}
}

// Do runs fn while holding the lock. The lock is released however fn exits,
// including by panic; a release failure is joined to fn's error.
func (l *Lock) Do(ctx context.Context, fn func() error) (err error) {
	g, err := l.Acquire(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := g.Release(); releaseErr != nil {
			err = errors.Join(err, releaseErr)
		}
	}()
	return fn()
}
