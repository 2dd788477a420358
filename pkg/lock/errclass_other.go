//go:build !unix && !windows

package lock

import (
	"errors"
	"io/fs"
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

func isBusyRemoveError(error) bool {
	return false
}
