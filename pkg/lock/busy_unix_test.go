//go:build unix

package lock

import (
	"io/fs"

	"golang.org/x/sys/unix"
)

func busyRemoveError(path string) error {
	return &fs.PathError{Op: "remove", Path: path, Err: unix.EBUSY}
}
