package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Logger is the logging interface shared by the lock and the CLI.
//
// Info, Warning and Error are diagnostic: they go to the structured log and
// are echoed to the terminal only in verbose mode (Error always reaches
// stderr). InfoToUser, WarningToUser, Success and StatusMessage are meant for
// the person running the command and are always printed.
//
// Format strings follow fmt.Printf conventions.
type Logger interface {
	Info(format string, args ...interface{})
	Warning(format string, args ...interface{})
	Error(format string, args ...interface{})

	InfoToUser(format string, args ...interface{})
	WarningToUser(format string, args ...interface{})
	Success(format string, args ...interface{})
	StatusMessage(format string, args ...interface{})

	// Close flushes and closes the log file, if any.
	Close() error
}

// Options configures a DefaultLogger.
type Options struct {
	// Debug enables the structured log.
	Debug bool
	// LogFile receives the structured log when Debug is set. Empty means stderr.
	LogFile string
	// Verbose echoes diagnostic messages to stdout.
	Verbose bool

	Stdout io.Writer
	Stderr io.Writer
}

// DefaultLogger writes structured records with log/slog and user-facing
// lines to plain writers. It is safe for concurrent use.
type DefaultLogger struct {
	mu      sync.Mutex
	slog    *slog.Logger
	debug   bool
	verbose bool
	stdout  io.Writer
	stderr  io.Writer
	file    *os.File
}

// New creates a logger writing to the process's stdout and stderr.
func New(debug bool, logFile string, verbose bool) *DefaultLogger {
	return NewWithOptions(Options{
		Debug:   debug,
		LogFile: logFile,
		Verbose: verbose,
	})
}

// Discard returns a logger that drops everything. It is the lock's default.
func Discard() *DefaultLogger {
	return NewWithOptions(Options{Stdout: io.Discard, Stderr: io.Discard})
}

// NewWithOptions creates a DefaultLogger from opts. A log file that cannot be
// opened falls back to stderr with a warning rather than failing.
func NewWithOptions(opts Options) *DefaultLogger {
	l := &DefaultLogger{
		debug:   opts.Debug,
		verbose: opts.Verbose,
		stdout:  opts.Stdout,
		stderr:  opts.Stderr,
	}
	if l.stdout == nil {
		l.stdout = os.Stdout
	}
	if l.stderr == nil {
		l.stderr = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{Level: slog.LevelInfo}
	var sink io.Writer = l.stderr

	if opts.Debug && opts.LogFile != "" {
		f, err := openLogFile(opts.LogFile)
		if err != nil {
			_, _ = fmt.Fprintf(l.stderr, "⚠️  Failed to open log file %s: %v, using stderr instead\n", opts.LogFile, err)
		} else {
			l.file = f
			sink = f
		}
	}

	l.slog = slog.New(slog.NewTextHandler(sink, handlerOpts)).With("component", "softlock")
	if l.file != nil {
		l.slog.Info("debug logging started", "pid", os.Getpid())
	}
	return l
}

func openLogFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
}

func (l *DefaultLogger) log(level slog.Level, msg string) {
	if l.debug {
		l.slog.Log(context.Background(), level, msg)
	}
}

// Info logs a diagnostic message.
func (l *DefaultLogger) Info(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	l.log(slog.LevelInfo, msg)
	if l.verbose {
		_, _ = fmt.Fprintf(l.stdout, "ℹ️  %s\n", msg)
	}
}

// Warning logs a diagnostic warning.
func (l *DefaultLogger) Warning(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	l.log(slog.LevelWarn, msg)
	if l.verbose {
		_, _ = fmt.Fprintf(l.stdout, "⚠️  %s\n", msg)
	}
}

// Error logs an error and always reports it on stderr.
func (l *DefaultLogger) Error(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	l.log(slog.LevelError, msg)
	_, _ = fmt.Fprintf(l.stderr, "❌ %s\n", msg)
}

// InfoToUser prints an informational line and logs it.
func (l *DefaultLogger) InfoToUser(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	l.log(slog.LevelInfo, msg)
	_, _ = fmt.Fprintf(l.stdout, "ℹ️  %s\n", msg)
}

// WarningToUser prints a warning line and logs it.
func (l *DefaultLogger) WarningToUser(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	l.log(slog.LevelWarn, msg)
	_, _ = fmt.Fprintf(l.stdout, "⚠️  %s\n", msg)
}

// Success prints a success line and logs it.
func (l *DefaultLogger) Success(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	l.log(slog.LevelInfo, msg)
	_, _ = fmt.Fprintf(l.stdout, "✅ %s\n", msg)
}

// StatusMessage prints msg verbatim to stdout without logging it.
func (l *DefaultLogger) StatusMessage(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, _ = fmt.Fprintln(l.stdout, fmt.Sprintf(format, args...))
}

// Close syncs and closes the log file.
func (l *DefaultLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	f := l.file
	l.file = nil
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
