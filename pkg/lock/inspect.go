package lock

import (
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/bashhack/softlock/pkg/errors"
	"github.com/bashhack/softlock/pkg/process"
)

// Status is a point-in-time view of a lock file. It may be out of date as
// soon as it is returned.
type Status struct {
	Path    string
	Exists  bool
	PID     int // 0 if the file is empty or corrupt
	Owner   process.State
	Stale   bool
	ModTime time.Time
}

// Inspect reports on the lock file at path without modifying it. A missing
// file is not an error. A nil checker uses process.Default.
func Inspect(path string, checker process.Checker) (Status, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Status{Path: path}, errors.NewLockError(path, 0, errors.Wrap(errors.ErrInvalidPath, err.Error()))
	}
	if checker == nil {
		checker = process.Default()
	}

	st := Status{Path: abs}
	info, err := os.Stat(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return st, nil
	}
	if err != nil {
		return st, errors.NewLockError(abs, 0, errors.Wrap(err, "failed to stat lock file"))
	}

	data, err := os.ReadFile(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return st, nil
	}
	if err != nil {
		return st, errors.NewLockError(abs, 0, errors.Wrap(err, "failed to read lock file"))
	}

	o := parseOwner(data, checker)
	st.Exists = true
	st.PID = o.pid
	st.Owner = o.state
	st.Stale = o.stale
	st.ModTime = info.ModTime()
	return st, nil
}

// RemoveIfStale removes the lock file at path if its owner is dead or its
// content is unusable. It reports whether this call removed it. A lock held
// by a live (or unverifiable) owner yields ErrLockHeld.
func RemoveIfStale(path string, checker process.Checker) (bool, error) {
	l, err := New(path, WithLivenessChecker(checker))
	if err != nil {
		return false, err
	}

	if removed, _ := l.removeIfStale(); removed {
		return true, nil
	}

	st, err := Inspect(l.path, l.checker)
	if err != nil {
		return false, err
	}
	switch {
	case !st.Exists:
		return false, nil
	case st.Stale:
		return false, errors.NewLockError(l.path, st.PID, errors.New("stale lock file could not be removed"))
	default:
		return false, errors.NewLockError(l.path, st.PID, errors.ErrLockHeld)
	}
}

// ForceRemove deletes the lock file regardless of its owner. Use it only when
// the owner is known to be gone but cannot be detected as such, for instance
// after its PID was reused.
func ForceRemove(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.NewLockError(path, 0, errors.Wrap(errors.ErrInvalidPath, err.Error()))
	}
	if err := os.Remove(abs); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.NewLockError(abs, 0, errors.Wrap(err, "failed to remove lock file"))
	}
	return nil
}
