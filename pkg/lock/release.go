package lock

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/juju/retry"

	"github.com/bashhack/softlock/pkg/errors"
)

// Release deletes the lock file this handle created. It is a no-op when the handle does not hold
// the lock, so calling it twice is safe.
//
// A lock file the platform reports as busy is retried with a short fixed
// delay. A file that is already gone, or that was replaced by another holder
// after ours was forcibly removed, counts as released and is left alone. Any other failure,
// or a file still busy after the last attempt, is returned wrapping
// ErrReleaseFailed and the handle stays held so the caller can try again.
func (l *Lock) Release() error {
	if !l.held.Load() {
		return nil
	}

	err := retry.Call(retry.CallArgs{
		Func: l.removeOwnFile,
		IsFatalError: func(err error) bool {
			return !isBusyRemoveError(err)
		},
		NotifyFunc: func(err error, attempt int) {
			l.logger.Warning("Lock file %s is busy (attempt %d): %v", l.path, attempt, err)
		},
		Attempts: l.releaseAttempts,
		Delay:    l.releaseDelay,
		Clock:    l.clock,
	})
	if err != nil {
		if retry.IsAttemptsExceeded(err) {
			err = retry.LastError(err)
		}
		err = errors.Cause(err)
		l.logger.Error("Failed to release lock %s: %v", l.path, err)
		return errors.NewLockError(l.path, l.pid, fmt.Errorf("%w: %w", errors.ErrReleaseFailed, err))
	}

	held := l.clock.Now().Sub(l.acquiredAt)
	l.held.Store(false)
	l.logger.Info("Released lock %s after %s", l.path, held)
	l.observer.LockReleased(l.path, held)
	return nil
}

func (l *Lock) removeOwnFile() error {
	current, err := os.Stat(l.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		l.logger.Warning("Lock file %s was already removed", l.path)
		return nil
	case err == nil && l.created != nil && !os.SameFile(current, l.created):
		l.logger.Warning("Lock file %s now belongs to another holder, leaving it in place", l.path)
		return nil
	}

	err = l.remove(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		l.logger.Warning("Lock file %s was already removed", l.path)
		return nil
	}
	return err
}
