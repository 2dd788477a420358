//go:build windows

package lock

import (
	"io/fs"

	"golang.org/x/sys/windows"
)

func busyRemoveError(path string) error {
	return &fs.PathError{Op: "remove", Path: path, Err: windows.ERROR_SHARING_VIOLATION}
}
