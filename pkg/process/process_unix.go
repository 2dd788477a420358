//go:build unix

package process

import (
	"errors"

	"golang.org/x/sys/unix"
)

var kill = unix.Kill

// state probes pid with signal 0, which performs the existence and
// permission checks without delivering anything.
func state(pid int) State {
	err := kill(pid, 0)
	switch {
	case err == nil:
		return Alive
	case errors.Is(err, unix.ESRCH):
		return Dead
	case errors.Is(err, unix.EPERM):
		// exists, owned by someone else
		return Alive
	default:
		return Unknown
	}
}
