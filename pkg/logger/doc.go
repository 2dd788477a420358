// Package logger provides logging for softlock.
//
// The Logger interface separates diagnostic output (Info, Warning, Error)
// from messages addressed to the person running the CLI (InfoToUser,
// WarningToUser, Success, StatusMessage). DefaultLogger implements it on top
// of log/slog, optionally writing the structured log to a file:
//
//	log := logger.New(true, "/var/log/softlock.log", false)
//	defer log.Close()
//
//	log.Info("waiting for %s", path)
//	log.Success("lock acquired")
//
// Library code that should stay silent uses Discard.
//
// DefaultLogger is safe for concurrent use.
package logger
