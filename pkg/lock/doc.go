// Package lock provides an advisory, cross-process lock backed by a file.
//
// Holding the lock means having created the lock file. The file is created
// with O_CREATE|O_EXCL, so at most one process can succeed, and it contains
// the holder's process ID followed by a newline:
//
//	12345
//
// Nothing else is stored. The lock only constrains processes that use it.
//
// # Usage
//
//	l, err := lock.New("/var/cache/build/.lock", lock.WithTimeout(30*time.Second))
//	if err != nil {
//	    return err
//	}
//
//	g, err := l.Acquire(ctx)
//	if err != nil {
//	    return err // errors.IsTimeout(err) when another process kept it
//	}
//	defer g.Release()
//
// or, scoped:
//
//	err = l.Do(ctx, func() error {
//	    return rebuildCache()
//	})
//
// # Waiting
//
// When the file exists, Acquire checks whether the PID inside still belongs
// to a running process. If not (or the file is empty or corrupt) the file is
// removed and creation is retried at once. Otherwise Acquire sleeps and tries
// again, starting at 100ms and growing by 1.5x per wait up to one second,
// until the timeout elapses. There is no queue: any waiter may win next.
//
// # Stale Locks
//
// Liveness comes from package process: signal 0 on Unix, OpenProcess on
// Windows. A process that exists but cannot be inspected counts as alive,
// and so does any process whose state cannot be determined. Because only the
// PID is recorded, a dead holder whose PID has been reused by an unrelated
// process keeps the lock until that process exits too; ForceRemove exists
// for that case.
//
// # Release
//
// Release deletes the file. Busy files (open elsewhere on Windows) are
// retried for a few seconds; a file that is already gone counts as released.
//
// # Thread Safety
//
// A Lock must be used from one goroutine at a time. Goroutines that need to
// exclude each other should each create their own Lock on the same path.
package lock
