package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bashhack/softlock/internal/config"
	"github.com/bashhack/softlock/internal/metrics"
	"github.com/bashhack/softlock/pkg/errors"
	"github.com/bashhack/softlock/pkg/lock"
	"github.com/bashhack/softlock/pkg/logger"
	"github.com/bashhack/softlock/pkg/process"
)

// Exit codes beyond the wrapped command's own.
const (
	exitOK          = 0
	exitFailure     = 1
	exitInterrupted = 130
)

// AppOptions contains app configuration and dependencies
type AppOptions struct {
	// Required
	Config *config.Config

	// Optional components
	Logger  logger.Logger
	Checker process.Checker
	Metrics *metrics.Collector

	// I/O dependencies
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// System dependencies
	Exit        func(code int)
	ExecCommand func(ctx context.Context, name string, args ...string) *exec.Cmd
	Now         func() time.Time
}

// App is the softlock command-line application
type App struct {
	Config  *config.Config
	Logger  logger.Logger
	Checker process.Checker
	Metrics *metrics.Collector

	// I/O streams
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// System dependencies
	exit        func(code int)
	execCommand func(ctx context.Context, name string, args ...string) *exec.Cmd
	now         func() time.Time

	registry *prometheus.Registry
	lock     *lock.Lock
}

// NewDefaultApp creates an App with standard dependencies
func NewDefaultApp(versionInfo config.VersionInfo) *App {
	cfg := config.New()
	cfg.VersionInfo = versionInfo
	cfg.LoadFromEnvironment()

	return NewApp(AppOptions{
		Config: cfg,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Exit:   os.Exit,
	})
}

// NewApp creates an App with custom dependencies
func NewApp(opts AppOptions) *App {
	if opts.Config == nil {
		panic("Config is required in AppOptions")
	}

	app := &App{
		Config:      opts.Config,
		Logger:      opts.Logger,
		Checker:     opts.Checker,
		Metrics:     opts.Metrics,
		Stdin:       opts.Stdin,
		Stdout:      opts.Stdout,
		Stderr:      opts.Stderr,
		exit:        opts.Exit,
		execCommand: opts.ExecCommand,
		now:         opts.Now,
	}

	// Set defaults for nil dependencies
	if app.Stdin == nil {
		app.Stdin = os.Stdin
	}
	if app.Stdout == nil {
		app.Stdout = os.Stdout
	}
	if app.Stderr == nil {
		app.Stderr = os.Stderr
	}
	if app.exit == nil {
		app.exit = os.Exit
	}
	if app.execCommand == nil {
		app.execCommand = exec.CommandContext
	}
	if app.now == nil {
		app.now = time.Now
	}
	if app.Checker == nil {
		app.Checker = process.Default()
	}

	return app
}

// Initialize sets up components not provided during construction. The
// configuration must already be resolved.
func (a *App) Initialize() error {
	if a.Logger == nil {
		// stdout belongs to the command run under the lock
		a.Logger = logger.NewWithOptions(logger.Options{
			Debug:   a.Config.Debug,
			LogFile: a.Config.LogFile,
			Verbose: a.Config.Verbose,
			Stdout:  a.Stderr,
			Stderr:  a.Stderr,
		})
	}

	if a.Metrics == nil {
		a.Metrics = metrics.NewCollector()
	}
	if a.registry == nil {
		a.registry = prometheus.NewRegistry()
		if err := a.registry.Register(a.Metrics); err != nil {
			return errors.Wrap(err, "failed to register metrics")
		}
	}

	return nil
}

// newLock creates a lock on path configured from the app's settings.
func (a *App) newLock(path string) (*lock.Lock, error) {
	opts := append(a.Config.LockOptions(),
		lock.WithLogger(a.Logger),
		lock.WithLivenessChecker(a.Checker),
		lock.WithObserver(a.Metrics),
	)
	return lock.New(path, opts...)
}

// Execute runs the command line in args and returns the process exit code.
func (a *App) Execute(ctx context.Context, args []string) int {
	root := a.RootCommand()
	root.SetArgs(args)
	root.SetIn(a.Stdin)
	root.SetOut(a.Stdout)
	root.SetErr(a.Stderr)

	err := root.ExecuteContext(ctx)

	if closeErr := a.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	var exitErr *commandExitError
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &exitErr):
		return exitErr.code
	case ctx.Err() != nil && errors.Is(err, ctx.Err()):
		_, _ = fmt.Fprintf(a.Stderr, "\nInterrupted\n")
		return exitInterrupted
	default:
		_, _ = fmt.Fprintf(a.Stderr, "❌ Error: %v\n", err)
		return exitFailure
	}
}

// ShowVersion displays version information
func (a *App) ShowVersion() {
	_, _ = fmt.Fprintf(a.Stdout, "softlock %s (%s) built on %s\n",
		a.Config.VersionInfo.Version,
		a.Config.VersionInfo.Commit,
		a.Config.VersionInfo.Date)
}

// Close releases resources held by the App: a lock still held, the metrics
// file and the logger.
func (a *App) Close() error {
	var errs []error

	if a.lock != nil {
		if err := a.lock.Release(); err != nil {
			if a.Logger != nil {
				a.Logger.Error("Failed to release lock during cleanup: %v", err)
			}
			errs = append(errs, err)
		}
		a.lock = nil
	}

	if a.Config.MetricsFile != "" && a.registry != nil {
		if err := metrics.WriteTextfile(a.Config.MetricsFile, a.registry); err != nil {
			errs = append(errs, err)
		}
	}

	if a.Logger != nil {
		if err := a.Logger.Close(); err != nil {
			_, _ = fmt.Fprintf(a.Stderr, "❌ Failed to close logger: %v\n", err)
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
