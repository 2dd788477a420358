//go:build windows

package process

import (
	"errors"

	"golang.org/x/sys/windows"
)

// STILL_ACTIVE from GetExitCodeProcess.
const stillActive = 259

var (
	openProcess        = windows.OpenProcess
	getExitCodeProcess = windows.GetExitCodeProcess
	closeHandle        = windows.CloseHandle
)

func state(pid int) State {
	h, err := openProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, uint32(pid))
	if err != nil {
		switch {
		case errors.Is(err, windows.ERROR_INVALID_PARAMETER):
			return Dead
		case errors.Is(err, windows.ERROR_ACCESS_DENIED):
			return Alive
		default:
			return Unknown
		}
	}
	defer func() { _ = closeHandle(h) }()

	var code uint32
	if err := getExitCodeProcess(h, &code); err != nil {
		return Unknown
	}
	// An exited process keeps its object alive while handles remain open.
	if code == stillActive {
		return Alive
	}
	return Dead
}
