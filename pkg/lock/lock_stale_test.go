package lock

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"testing"

	softlockErrors "github.com/bashhack/softlock/pkg/errors"
	"github.com/bashhack/softlock/pkg/process"
)

func TestAcquire_RecoversStaleLock(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		content     string
		checker     process.Checker
		expectedPID int
	}{
		"DeadOwner": {
			content:     "999999\n",
			checker:     stateChecker(process.Dead),
			expectedPID: 999999,
		},
		"NoTrailingNewline": {
			content:     "999999",
			checker:     stateChecker(process.Dead),
			expectedPID: 999999,
		},
		"EmptyFile": {
			content: "",
			checker: stateChecker(process.Alive),
		},
		"WhitespaceOnly": {
			content: "  \n",
			checker: stateChecker(process.Alive),
		},
		"Garbage": {
			content: "not-a-pid\n",
			checker: stateChecker(process.Alive),
		},
		"NegativePID": {
			content:     "-5\n",
			checker:     process.Default(),
			expectedPID: -5,
		},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			path := lockPath(t)
			writeLockFile(t, path, tc.content)

			clk := newStepClock()
			obs := &recordingObserver{}
			l := newTestLock(t, path,
				WithClock(clk),
				WithObserver(obs),
				WithLivenessChecker(tc.checker),
			)

			// a stale lock is reclaimed within a single-attempt acquire
			if _, err := l.AcquireTimeout(context.Background(), 0); err != nil {
				t.Fatalf("Expected to reclaim stale lock, got %v", err)
			}
			if got := readLockPID(t, path); got != os.Getpid() {
				t.Errorf("Expected our PID %d in lock file, got %d", os.Getpid(), got)
			}
			if waits := clk.Waits(); len(waits) != 0 {
				t.Errorf("Expected no backoff after stale removal, got %v", waits)
			}
			if len(obs.stale) != 1 || obs.stale[0] != tc.expectedPID {
				t.Errorf("Expected one stale removal for PID %d, got %v", tc.expectedPID, obs.stale)
			}
			if len(obs.acquired) != 1 || obs.acquired[0] != 2 {
				t.Errorf("Expected acquisition on attempt 2, got %v", obs.acquired)
			}
		})
	}
}

func TestAcquire_RecoversLockOfNonexistentProcess(t *testing.T) {
	t.Parallel()

	const pid = 999999
	if process.Default().State(pid) != process.Dead {
		t.Skipf("PID %d is in use or cannot be probed on this system", pid)
	}

	path := lockPath(t)
	writeLockFile(t, path, "999999\n")
	l := newTestLock(t, path)

	if _, err := l.AcquireTimeout(context.Background(), 0); err != nil {
		t.Fatalf("Expected to reclaim lock of PID %d, got %v", pid, err)
	}
	if got := readLockPID(t, path); got != os.Getpid() {
		t.Errorf("Expected our PID in lock file, got %d", got)
	}
}

func TestAcquire_KeepsLockOfLiveOrUnknownOwner(t *testing.T) {
	t.Parallel()

	tests := map[string]process.State{
		"Alive":   process.Alive,
		"Unknown": process.Unknown,
	}

	for name, state := range tests {
		state := state
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			path := lockPath(t)
			writeLockFile(t, path, "4242\n")

			obs := &recordingObserver{}
			l := newTestLock(t, path,
				WithClock(newStepClock()),
				WithObserver(obs),
				WithLivenessChecker(stateChecker(state)),
			)

			_, err := l.AcquireTimeout(context.Background(), 0)
			if !softlockErrors.IsTimeout(err) {
				t.Fatalf("Expected timeout error, got %v", err)
			}
			if got := readLockPID(t, path); got != 4242 {
				t.Errorf("Expected lock file to be untouched, got PID %d", got)
			}
			if len(obs.stale) != 0 {
				t.Errorf("Expected no stale removals, got %v", obs.stale)
			}
		})
	}
}

func TestParseOwner_HandlesFormats(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		content       string
		state         process.State
		expectedPID   int
		expectedStale bool
	}{
		"Live":          {content: "123\n", state: process.Alive, expectedPID: 123},
		"Dead":          {content: "123\n", state: process.Dead, expectedPID: 123, expectedStale: true},
		"Unknown":       {content: "123\n", state: process.Unknown, expectedPID: 123},
		"Padded":        {content: "  123  \n", state: process.Alive, expectedPID: 123},
		"WindowsEOL":    {content: "123\r\n", state: process.Alive, expectedPID: 123},
		"Empty":         {content: "", state: process.Alive, expectedStale: true},
		"NotANumber":    {content: "abc\n", state: process.Alive, expectedStale: true},
		"TrailingJunk":  {content: "123abc\n", state: process.Alive, expectedStale: true},
		"TwoNumbers":    {content: "123\n456\n", state: process.Alive, expectedStale: true},
		"FloatingPoint": {content: "12.5\n", state: process.Alive, expectedStale: true},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			probed := 0
			checker := process.CheckerFunc(func(pid int) process.State {
				probed = pid
				return tc.state
			})

			o := parseOwner([]byte(tc.content), checker)
			if o.pid != tc.expectedPID {
				t.Errorf("Expected PID %d, got %d", tc.expectedPID, o.pid)
			}
			if o.stale != tc.expectedStale {
				t.Errorf("Expected stale=%v, got %v", tc.expectedStale, o.stale)
			}
			if tc.expectedPID != 0 && probed != tc.expectedPID {
				t.Errorf("Expected checker to probe PID %d, got %d", tc.expectedPID, probed)
			}
			if tc.expectedPID == 0 && probed != 0 {
				t.Errorf("Expected checker not to be called for unusable content, probed %d", probed)
			}
		})
	}
}

func TestRemoveIfStale_HandlesRaces(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		setup           func(t *testing.T, l *Lock)
		expectedRemoved bool
		expectFile      bool
	}{
		"FileReplacedWhileJudging": {
			setup: func(t *testing.T, l *Lock) {
				// the owner is found dead, but by then a new holder has
				// replaced the file
				l.checker = process.CheckerFunc(func(int) process.State {
					next := l.path + ".next"
					if err := os.WriteFile(next, []byte("777\n"), 0o644); err != nil {
						t.Errorf("Failed to write replacement lock file: %v", err)
					}
					if err := os.Rename(next, l.path); err != nil {
						t.Errorf("Failed to replace lock file: %v", err)
					}
					return process.Dead
				})
			},
			expectedRemoved: false,
			expectFile:      true,
		},
		"FileVanishedWhileJudging": {
			setup: func(t *testing.T, l *Lock) {
				l.checker = process.CheckerFunc(func(int) process.State {
					if err := os.Remove(l.path); err != nil {
						t.Errorf("Failed to remove lock file: %v", err)
					}
					return process.Dead
				})
			},
			expectedRemoved: false,
			expectFile:      false,
		},
		"RemovedByAnotherProcessFirst": {
			setup: func(t *testing.T, l *Lock) {
				l.checker = stateChecker(process.Dead)
				l.remove = func(p string) error {
					_ = os.Remove(p)
					return &fs.PathError{Op: "remove", Path: p, Err: fs.ErrNotExist}
				}
			},
			expectedRemoved: false,
			expectFile:      false,
		},
		"RemoveFails": {
			setup: func(t *testing.T, l *Lock) {
				l.checker = stateChecker(process.Dead)
				l.remove = func(p string) error {
					return &fs.PathError{Op: "remove", Path: p, Err: fs.ErrPermission}
				}
			},
			expectedRemoved: false,
			expectFile:      true,
		},
		"Stale": {
			setup: func(t *testing.T, l *Lock) {
				l.checker = stateChecker(process.Dead)
			},
			expectedRemoved: true,
			expectFile:      false,
		},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			path := lockPath(t)
			writeLockFile(t, path, "999999\n")

			obs := &recordingObserver{}
			l := newTestLock(t, path, WithObserver(obs))
			tc.setup(t, l)

			removed, pid := l.removeIfStale()
			if removed != tc.expectedRemoved {
				t.Errorf("Expected removed=%v, got %v", tc.expectedRemoved, removed)
			}
			if pid != 999999 {
				t.Errorf("Expected observed owner 999999, got %d", pid)
			}

			_, err := os.Stat(path)
			if exists := err == nil; exists != tc.expectFile {
				t.Errorf("Expected file exists=%v, stat returned: %v", tc.expectFile, err)
			}
			if tc.expectedRemoved != (len(obs.stale) == 1) {
				t.Errorf("Expected stale event only on removal, got %v", obs.stale)
			}
		})
	}
}

func TestRemoveIfStale_NeverRemovesUnreadableFile(t *testing.T) {
	t.Parallel()

	path := lockPath(t)
	l := newTestLock(t, path, WithLivenessChecker(stateChecker(process.Dead)))

	// missing file
	removed, pid := l.removeIfStale()
	if removed || pid != 0 {
		t.Errorf("Expected nothing removed for a missing file, got removed=%v pid=%d", removed, pid)
	}

	// a directory at the lock path can be stat'd but not read
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	removed, _ = l.removeIfStale()
	if removed {
		t.Error("Expected an unreadable lock path not to be removed")
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		t.Error("Expected directory to be left in place")
	}
}
