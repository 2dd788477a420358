// Package config provides configuration handling for the softlock command.
//
// Configuration values are loaded with the following precedence:
//
// 1. Command-line flags (highest priority)
// 2. SOFTLOCK_* environment variables
// 3. The YAML file named by --config or SOFTLOCK_CONFIG
// 4. Default values (lowest priority)
//
// # Environment Variables
//
//	SOFTLOCK_LOCK              Default lock file path
//	SOFTLOCK_TIMEOUT           How long to wait for the lock, e.g. "30s" (default: forever)
//	SOFTLOCK_NONBLOCK          Make a single attempt (default: false)
//	SOFTLOCK_BACKOFF_INITIAL   First wait between attempts (default: 100ms)
//	SOFTLOCK_BACKOFF_FACTOR    Growth of the wait (default: 1.5)
//	SOFTLOCK_BACKOFF_MAX       Longest wait (default: 1s)
//	SOFTLOCK_RELEASE_ATTEMPTS  Attempts to delete a busy lock file (default: 50)
//	SOFTLOCK_RELEASE_DELAY     Pause between release attempts (default: 100ms)
//	SOFTLOCK_VERBOSE           Show informational messages (default: true)
//	SOFTLOCK_DEBUG             Enable debug logging (default: false)
//	SOFTLOCK_LOG_FILE          Path to log file (default: ~/.local/share/softlock/logs/softlock.log)
//	SOFTLOCK_METRICS_FILE      Write Prometheus metrics here on exit
//	SOFTLOCK_CONFIG            Path to YAML config file
//
// # Config File
//
// The YAML file uses the same settings in snake case:
//
//	lock: /var/lock/build.lock
//	timeout: 30s
//	backoff_initial: 50ms
//	backoff_factor: 2
//	backoff_max: 2s
//	debug: true
//
// # Usage
//
//	cfg := config.New()
//	cfg.LoadFromEnvironment()
//	cfg.SetupFlags(cmd.PersistentFlags())
//	// after parsing
//	if err := cfg.Resolve(cmd.Flags()); err != nil {
//	    // Handle error
//	}
//	l, err := lock.New(cfg.LockPath, cfg.LockOptions()...)
//
// The Config type is not safe for concurrent modification. It is loaded at
// startup and then read.
package config
