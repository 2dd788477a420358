package lock

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/bashhack/softlock/pkg/process"
)

// owner describes what a lock file says about its holder.
type owner struct {
	pid   int // 0 when the content is not a PID
	state process.State
	stale bool
	info  fs.FileInfo
}

// readOwner inspects the lock file at path. ok is false when the file could
// not be read (it may have been removed or replaced concurrently); such a
// file is never considered stale.
func readOwner(path string, checker process.Checker) (o owner, ok bool) {
	info, err := os.Stat(path)
	if err != nil {
		return owner{}, false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return owner{}, false
	}
	o = parseOwner(data, checker)
	o.info = info
	return o, true
}

func parseOwner(data []byte, checker process.Checker) owner {
	content := strings.TrimSpace(string(data))
	if content == "" {
		// crash between create and write
		return owner{state: process.Dead, stale: true}
	}
	pid, err := strconv.Atoi(content)
	if err != nil {
		return owner{state: process.Dead, stale: true}
	}

	state := checker.State(pid)
	return owner{
		pid:   pid,
		state: state,
		stale: state == process.Dead,
	}
}

// removeIfStale deletes the lock file if its recorded owner is gone.
// It returns true only if this call deleted the file; the returned PID is
// the owner that was observed, if any.
func (l *Lock) removeIfStale() (removed bool, ownerPID int) {
	o, ok := readOwner(l.path, l.checker)
	if !ok || !o.stale {
		return false, o.pid
	}

	// The file we judged must still be the one at path.
	if current, err := os.Stat(l.path); err != nil || !os.SameFile(current, o.info) {
		return false, o.pid
	}

	if err := l.remove(l.path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			l.logger.Warning("Failed to remove stale lock %s (PID %d): %v", l.path, o.pid, err)
		}
		// someone else cleaned up first, or the file is stuck; either
		// way we don't own it
		return false, o.pid
	}

	l.logger.Info("Removed stale lock %s left by PID %d", l.path, o.pid)
	l.observer.StaleLockRemoved(l.path, o.pid)
	return true, o.pid
}
