// Package main implements softlock, a command-line front end to cross-process
// file locks.
//
// A lock is a file holding the decimal process ID of its owner. softlock
// creates it atomically, waits with exponential backoff while another live
// process holds it, and removes it when the owner has died.
//
// # Basic Usage
//
//	# Run a command while holding the lock, waiting as long as needed
//	softlock run /tmp/build.lock -- make all
//
//	# Give up after 30 seconds
//	softlock run --timeout 30s /tmp/build.lock -- ./deploy.sh
//
//	# Fail at once if the lock is held
//	softlock run --nonblock /tmp/build.lock -- ./cron-job.sh
//
//	# Show who holds a lock
//	softlock status /tmp/build.lock
//
//	# Remove a lock whose owner died
//	softlock break /tmp/build.lock
//
// # Exit Status
//
// run exits with the status of the command it ran. Failing to get the lock,
// or any other error, exits with 1. An interrupt exits with 130 after the
// lock has been released.
//
// # Configuration
//
// See package internal/config for the SOFTLOCK_* environment variables and
// the YAML config file. Global flags:
//
//	--config          YAML config file
//	--debug           Enable debug logging
//	--log-file        Path to log file
//	-q, --quiet       Hide informational messages
//	--metrics-file    Write Prometheus metrics to this file on exit
package main
