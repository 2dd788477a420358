package errors

import (
	stderrors "errors"
	"fmt"

	jujuerrors "github.com/juju/errors"
)

// Sentinel errors that can be used with Is() for error type checking
var (
	// ErrLockTimeout indicates the lock could not be acquired before the timeout elapsed
	ErrLockTimeout = stderrors.New("timed out waiting for lock")

	// ErrReentrantAcquire indicates Acquire was called on a handle that already holds its lock.
	// It is a programming error, never a contention signal.
	ErrReentrantAcquire = stderrors.New("acquire is not reentrant: lock already held by this handle")

	// ErrReleaseFailed indicates the lock file could not be removed on release
	ErrReleaseFailed = stderrors.New("failed to release lock")

	// ErrInvalidPath indicates an empty or unusable lock path
	ErrInvalidPath = stderrors.New("invalid lock path")

	// ErrLockHeld indicates the lock is owned by a live process
	ErrLockHeld = stderrors.New("lock is held by a running process")

	// ErrInvalidConfiguration indicates an invalid or conflicting user configuration
	ErrInvalidConfiguration = stderrors.New("invalid configuration")
)

// New creates a new error with the given message.
func New(message string) error {
	return jujuerrors.New(message)
}

// Errorf creates a new formatted error.
func Errorf(format string, args ...interface{}) error {
	return jujuerrors.Errorf(format, args...)
}

// Trace records the caller's location on err. A nil err stays nil.
func Trace(err error) error {
	return jujuerrors.Trace(err)
}

// Wrap annotates err with a message for better context. A nil err stays nil.
func Wrap(err error, message string) error {
	return jujuerrors.Annotate(err, message)
}

// Wrapf annotates err with a formatted message. A nil err stays nil.
func Wrapf(err error, format string, args ...interface{}) error {
	return jujuerrors.Annotatef(err, format, args...)
}

// Is reports whether target is in err's chain, looking through
// annotations as well as standard wrapping.
func Is(err, target error) bool {
	if stderrors.Is(err, target) {
		return true
	}
	return stderrors.Is(jujuerrors.Cause(err), target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	if stderrors.As(err, target) {
		return true
	}
	cause := jujuerrors.Cause(err)
	return cause != nil && stderrors.As(cause, target)
}

// Join wraps errors.Join so callers need a single errors import.
func Join(errs ...error) error {
	return stderrors.Join(errs...)
}

// IsTimeout reports whether err is a lock acquisition timeout.
func IsTimeout(err error) bool {
	return Is(err, ErrLockTimeout)
}

// IsReentrant reports whether err signals a reentrant acquire.
func IsReentrant(err error) bool {
	return Is(err, ErrReentrantAcquire)
}

// LockError represents an error that occurred when interacting with a lock file.
// It includes the lock file path, the owning process ID if known, and the underlying error.
type LockError struct {
	LockFile string
	PID      int
	Err      error
}

// Error implements the error interface with details about the lock file and process.
func (e *LockError) Error() string {
	if e.PID > 0 {
		return fmt.Sprintf("lock error with file %s (PID: %d): %v", e.LockFile, e.PID, e.Err)
	}
	return fmt.Sprintf("lock error with file %s: %v", e.LockFile, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *LockError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the error was caused by the acquire timeout.
func (e *LockError) Timeout() bool {
	return Is(e.Err, ErrLockTimeout)
}

// NewLockError creates a new LockError with the given parameters.
func NewLockError(lockFile string, pid int, err error) *LockError {
	return &LockError{
		LockFile: lockFile,
		PID:      pid,
		Err:      err,
	}
}

// ConfigError represents an error in the application configuration.
type ConfigError struct {
	Parameter string
	Value     interface{}
	Err       error
}

// Error implements the error interface with the offending parameter and value.
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("configuration error for %s = %v: %v", e.Parameter, e.Value, e.Err)
	}
	return fmt.Sprintf("configuration error for %s: %v", e.Parameter, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError with the given parameters.
func NewConfigError(parameter string, value interface{}, err error) *ConfigError {
	return &ConfigError{
		Parameter: parameter,
		Value:     value,
		Err:       err,
	}
}

// Cause returns the error an annotation chain was built on.
func Cause(err error) error {
	return jujuerrors.Cause(err)
}
