// Package softlock is an advisory, cross-process file lock
//
// softlock serializes work between cooperating processes by atomically
// creating a lock file that records the owner's process ID. A waiting
// process polls with bounded exponential backoff, and a lock whose owner
// has died (or whose file is empty or corrupt) is reclaimed so a crash
// never wedges the next run.
//
// # Quick Start
//
//	# Run a command while holding /tmp/deploy.lock, waiting forever
//	softlock run /tmp/deploy.lock -- ./deploy.sh
//
//	# Give up after 30 seconds
//	softlock run -t 30s /tmp/deploy.lock -- ./deploy.sh
//
//	# Inspect and clear a lock
//	softlock status /tmp/deploy.lock
//	softlock break /tmp/deploy.lock
//
// From Go:
//
//	l, err := lock.New("/tmp/deploy.lock", lock.WithTimeout(30*time.Second))
//	if err != nil {
//		return err
//	}
//	return l.Do(ctx, deploy)
//
// # Module Structure
//
// The module is organized into these packages:
//
//   - cmd/softlock: Command-line interface
//   - pkg/lock: Lock acquisition, stale recovery and release
//   - pkg/process: Liveness checks for the PID stored in a lock file
//   - pkg/errors: Error handling utilities
//   - pkg/logger: Logging facilities
//   - internal/config: Flags, environment and YAML configuration
//   - internal/metrics: Prometheus collector for lock events
//
// # Platform Support
//
// Lock creation relies on exclusive file creation, which is atomic on local
// file systems on Linux, macOS and Windows. Liveness checks use signal 0 on
// Unix and OpenProcess on Windows.
//
// # Limitations
//
// The lock is advisory: processes that do not use softlock are not kept out.
// A PID that has been reused by an unrelated process makes a stale lock look
// held until that process exits.
package softlock
