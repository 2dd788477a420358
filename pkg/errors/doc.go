// Package errors provides error handling utilities for softlock.
//
// It defines the sentinel errors and typed errors that cross the lock's API
// boundary, and thin wrapping helpers built on github.com/juju/errors so
// annotated errors keep a traceable cause.
//
// # Error Kinds
//
// A failed acquire is always one of:
//
//   - ErrLockTimeout: the lock stayed held by a live owner for the whole wait
//   - ErrReentrantAcquire: the handle already holds the lock (programming error)
//   - an unexpected I/O error (permission denied, disk errors)
//
// Each is delivered inside a *LockError that names the lock file and, when
// known, the PID recorded in it:
//
//	g, err := l.Acquire(ctx)
//	if errors.IsTimeout(err) {
//	    // retry later
//	}
//
// # Wrapping
//
// Wrap and Wrapf annotate an error with context. Is and As look through both
// standard wrapping and juju-style annotations.
package errors
