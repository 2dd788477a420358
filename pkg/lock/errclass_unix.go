//go:build unix

package lock

import (
	"errors"
	"io/fs"

	"golang.org/x/sys/unix"
)

func classifyCreateError(err error) createOutcome {
	switch {
	case errors.Is(err, fs.ErrExist):
		return outcomeAlreadyExists
	case errors.Is(err, fs.ErrPermission):
		return outcomePermissionDenied
	default:
		return outcomeIOError
	}
}

// isBusyRemoveError reports whether a failed delete is worth retrying.
func isBusyRemoveError(err error) bool {
	return errors.Is(err, unix.EBUSY)
}
