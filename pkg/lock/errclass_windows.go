//go:build windows

package lock

import (
	"errors"
	"io/fs"

	"golang.org/x/sys/windows"
)

// Windows refuses to create a file that is pending deletion, or still open by
// its deleter, with ACCESS_DENIED or SHARING_VIOLATION. Both mean the lock is
// busy, not that we lack permission.
func classifyCreateError(err error) createOutcome {
	switch {
	case errors.Is(err, fs.ErrExist),
		errors.Is(err, windows.ERROR_ACCESS_DENIED),
		errors.Is(err, windows.ERROR_SHARING_VIOLATION):
		return outcomeAlreadyExists
	case errors.Is(err, fs.ErrPermission):
		return outcomePermissionDenied
	default:
		return outcomeIOError
	}
}

// isBusyRemoveError reports whether a failed delete is worth retrying.
// Another process (a reader checking staleness, an indexer, antivirus) may
// briefly hold the file open.
func isBusyRemoveError(err error) bool {
	return errors.Is(err, windows.ERROR_ACCESS_DENIED) ||
		errors.Is(err, windows.ERROR_SHARING_VIOLATION)
}
