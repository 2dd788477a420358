//go:build windows

package process

import (
	"testing"

	"golang.org/x/sys/windows"
)

func stubWindows(t *testing.T, open func(uint32, bool, uint32) (windows.Handle, error), exitCode func(windows.Handle, *uint32) error) {
	t.Helper()
	previousOpen, previousExit, previousClose := openProcess, getExitCodeProcess, closeHandle
	t.Cleanup(func() {
		openProcess, getExitCodeProcess, closeHandle = previousOpen, previousExit, previousClose
	})
	openProcess = open
	getExitCodeProcess = exitCode
	closeHandle = func(windows.Handle) error { return nil }
}

func TestState_OpenProcessErrors(t *testing.T) {
	tests := map[string]struct {
		openErr  error
		expected State
	}{
		"NoSuchProcess": {openErr: windows.ERROR_INVALID_PARAMETER, expected: Dead},
		"AccessDenied":  {openErr: windows.ERROR_ACCESS_DENIED, expected: Alive},
		"Unexpected":    {openErr: windows.ERROR_NOT_ENOUGH_MEMORY, expected: Unknown},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			exitCalled := false
			stubWindows(t,
				func(uint32, bool, uint32) (windows.Handle, error) { return 0, test.openErr },
				func(windows.Handle, *uint32) error { exitCalled = true; return nil },
			)

			if got := state(1234); got != test.expected {
				t.Errorf("Expected %v, got %v", test.expected, got)
			}
			if exitCalled {
				t.Errorf("GetExitCodeProcess should not run when OpenProcess fails")
			}
		})
	}
}

func TestState_ExitCode(t *testing.T) {
	tests := map[string]struct {
		code     uint32
		err      error
		expected State
	}{
		"StillActive": {code: stillActive, expected: Alive},
		"Exited":      {code: 0, expected: Dead},
		"QueryFailed": {err: windows.ERROR_INVALID_HANDLE, expected: Unknown},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			stubWindows(t,
				func(uint32, bool, uint32) (windows.Handle, error) { return windows.Handle(7), nil },
				func(_ windows.Handle, code *uint32) error {
					*code = test.code
					return test.err
				},
			)

			if got := state(1234); got != test.expected {
				t.Errorf("Expected %v, got %v", test.expected, got)
			}
		})
	}
}
