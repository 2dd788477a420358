package lock

import (
	"io/fs"
	"os"
	"strconv"
)

// createOutcome is the result of one attempt to create the lock file.
type createOutcome int

const (
	outcomeCreated createOutcome = iota
	outcomeAlreadyExists
	outcomePermissionDenied
	outcomeIOError
)

func (o createOutcome) String() string {
	switch o {
	case outcomeCreated:
		return "created"
	case outcomeAlreadyExists:
		return "already exists"
	case outcomePermissionDenied:
		return "permission denied"
	default:
		return "I/O error"
	}
}

// lockContent is what a lock file owned by pid contains.
func lockContent(pid int) []byte {
	return []byte(strconv.Itoa(pid) + "\n")
}

// tryCreate atomically creates the lock file holding our PID and returns the
// identity of the created file. Only outcomeCreated comes with a nil error.
func (l *Lock) tryCreate() (createOutcome, fs.FileInfo, error) {
	f, err := l.openExclusive(l.path)
	if err != nil {
		return classifyCreateError(err), nil, err
	}

	_, writeErr := f.Write(lockContent(l.pid))
	var info fs.FileInfo
	if writeErr == nil {
		info, writeErr = f.Stat()
	}
	closeErr := f.Close()
	if writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		// A half-written file would read as stale; don't leave it behind.
		_ = l.remove(l.path)
		return outcomeIOError, nil, writeErr
	}
	return outcomeCreated, info, nil
}

// openExclusive creates path, failing if it exists. The file is empty until
// the caller writes to it.
func openExclusive(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
}
