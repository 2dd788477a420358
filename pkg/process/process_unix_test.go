//go:build unix

package process

import (
	"os"
	"testing"

	"golang.org/x/sys/unix"
)

func TestState_ClassifiesKillErrors(t *testing.T) {
	previousKill := kill
	t.Cleanup(func() { kill = previousKill })

	tests := map[string]struct {
		killErr  error
		expected State
	}{
		"Exists":            {killErr: nil, expected: Alive},
		"NoSuchProcess":     {killErr: unix.ESRCH, expected: Dead},
		"PermissionDenied":  {killErr: unix.EPERM, expected: Alive},
		"UnexpectedFailure": {killErr: unix.EINVAL, expected: Unknown},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			kill = func(pid int, sig unix.Signal) error {
				if sig != 0 {
					t.Fatalf("Expected signal 0, got %v", sig)
				}
				return test.killErr
			}

			if got := state(4242); got != test.expected {
				t.Errorf("Expected %v, got %v", test.expected, got)
			}
		})
	}
}

func TestState_NonExistentPID(t *testing.T) {
	pid := nonExistentPID(t)

	if got := Default().State(pid); got != Dead {
		t.Errorf("State(%d) = %v, expected %v", pid, got, Dead)
	}
}

func TestState_InitIsAliveEvenWithoutPermission(t *testing.T) {
	if os.Getpid() == 1 {
		t.Skip("running as PID 1")
	}

	// PID 1 always exists; unprivileged callers get EPERM, root gets nil.
	if got := Default().State(1); got != Alive {
		t.Errorf("State(1) = %v, expected %v", got, Alive)
	}
}

func nonExistentPID(t *testing.T) int {
	t.Helper()
	for pid := 999999; pid > 900000; pid-- {
		if err := unix.Kill(pid, 0); err == unix.ESRCH {
			return pid
		}
	}
	t.Skip("could not find an unused PID")
	return 0
}
