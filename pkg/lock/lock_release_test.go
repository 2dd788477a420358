package lock

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"testing"
	"time"

	softlockErrors "github.com/bashhack/softlock/pkg/errors"
	"github.com/bashhack/softlock/pkg/process"
)

func acquireForTest(t *testing.T, l *Lock) *Guard {
	t.Helper()
	g, err := l.AcquireTimeout(context.Background(), 0)
	if err != nil {
		t.Fatalf("Failed to acquire lock: %v", err)
	}
	return g
}

func TestRelease_IsIdempotent(t *testing.T) {
	t.Parallel()

	path := lockPath(t)
	obs := &recordingObserver{}
	l := newTestLock(t, path, WithObserver(obs))

	if err := l.Release(); err != nil {
		t.Errorf("Expected release of an unheld lock to be a no-op, got %v", err)
	}

	acquireForTest(t, l)
	for i := 0; i < 3; i++ {
		if err := l.Release(); err != nil {
			t.Fatalf("Release %d failed: %v", i+1, err)
		}
	}
	if obs.released != 1 {
		t.Errorf("Expected one release event, got %d", obs.released)
	}
	if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Expected lock file to be removed, stat returned: %v", err)
	}
}

func TestRelease_UnheldHandleLeavesFileAlone(t *testing.T) {
	t.Parallel()

	path := lockPath(t)
	writeLockFile(t, path, "4242\n")
	l := newTestLock(t, path)

	// never acquired, so the file is not ours
	if err := l.Release(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got := readLockPID(t, path); got != 4242 {
		t.Errorf("Expected other holder's lock file to remain, got PID %d", got)
	}
}

func TestRelease_LeavesSuccessorsLockAlone(t *testing.T) {
	t.Parallel()

	path := lockPath(t)
	alive := WithLivenessChecker(stateChecker(process.Alive))
	a := newTestLock(t, path, WithPID(111), alive)
	b := newTestLock(t, path, WithPID(222), alive)
	c := newTestLock(t, path, WithPID(333), alive)

	acquireForTest(t, a)
	if err := ForceRemove(path); err != nil {
		t.Fatalf("Failed to break lock: %v", err)
	}
	acquireForTest(t, b)

	if err := a.Release(); err != nil {
		t.Fatalf("Expected release of a replaced lock to succeed, got %v", err)
	}
	if a.Held() {
		t.Error("Expected the broken handle to no longer be held")
	}
	if got := readLockPID(t, path); got != 222 {
		t.Fatalf("Expected successor's lock file to remain, got PID %d", got)
	}

	if _, err := c.AcquireTimeout(context.Background(), 0); !softlockErrors.IsTimeout(err) {
		t.Errorf("Expected a third handle to be kept out, got %v", err)
	}
	if !b.Held() {
		t.Error("Expected successor to still hold the lock")
	}
}

func TestRelease_HandlesRemoveErrors(t *testing.T) {
	t.Parallel()

	permissionErr := func(p string) error {
		return &fs.PathError{Op: "remove", Path: p, Err: fs.ErrPermission}
	}

	tests := map[string]struct {
		needsBusy     bool
		failures      func(p string) []error
		expectedCalls int
		expectErr     bool
		errorIs       error
	}{
		"BusyThenSucceeds": {
			needsBusy: true,
			failures: func(p string) []error {
				return []error{busyRemoveError(p), busyRemoveError(p)}
			},
			expectedCalls: 3,
		},
		"StaysBusy": {
			needsBusy: true,
			failures: func(p string) []error {
				return []error{busyRemoveError(p), busyRemoveError(p), busyRemoveError(p), busyRemoveError(p)}
			},
			expectedCalls: 4,
			expectErr:     true,
		},
		"PermissionDeniedIsNotRetried": {
			failures: func(p string) []error {
				return []error{permissionErr(p)}
			},
			expectedCalls: 1,
			expectErr:     true,
			errorIs:       fs.ErrPermission,
		},
		"AlreadyRemoved": {
			failures: func(p string) []error {
				_ = os.Remove(p)
				return nil
			},
			expectedCalls: 0,
		},
		"RemoveReportsNotExist": {
			failures: func(p string) []error {
				return []error{&fs.PathError{Op: "remove", Path: p, Err: fs.ErrNotExist}}
			},
			expectedCalls: 1,
		},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			path := lockPath(t)
			if tc.needsBusy && busyRemoveError(path) == nil {
				t.Skip("no retryable remove error on this platform")
			}

			obs := &recordingObserver{}
			l := newTestLock(t, path, WithObserver(obs), WithReleaseRetry(4, time.Millisecond))
			acquireForTest(t, l)

			failures := tc.failures(path)
			calls := 0
			l.remove = func(p string) error {
				calls++
				if calls <= len(failures) {
					if errors.Is(failures[calls-1], fs.ErrNotExist) {
						// another remover got there between our stat and remove
						_ = os.Remove(p)
					}
					return failures[calls-1]
				}
				return os.Remove(p)
			}

			err := l.Release()
			if calls != tc.expectedCalls {
				t.Errorf("Expected %d remove calls, got %d", tc.expectedCalls, calls)
			}

			if !tc.expectErr {
				if err != nil {
					t.Fatalf("Unexpected error: %v", err)
				}
				if l.Held() {
					t.Error("Expected lock not to be held after release")
				}
				if obs.released != 1 {
					t.Errorf("Expected one release event, got %d", obs.released)
				}
				if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
					t.Errorf("Expected lock file to be gone, stat returned: %v", err)
				}
				return
			}

			if !errors.Is(err, softlockErrors.ErrReleaseFailed) {
				t.Fatalf("Expected ErrReleaseFailed, got %v", err)
			}
			if tc.errorIs != nil && !errors.Is(err, tc.errorIs) {
				t.Errorf("Expected error to match %v, got %v", tc.errorIs, err)
			}
			if !l.Held() {
				t.Error("Expected lock to stay held after a failed release")
			}
			if obs.released != 0 {
				t.Errorf("Expected no release event, got %d", obs.released)
			}

			// once the file can be removed, a second Release finishes the job
			l.remove = os.Remove
			if err := l.Release(); err != nil {
				t.Fatalf("Expected retry of release to succeed, got %v", err)
			}
			if l.Held() {
				t.Error("Expected lock not to be held after successful retry")
			}
		})
	}
}
