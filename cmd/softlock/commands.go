package main

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/bashhack/softlock/pkg/errors"
	"github.com/bashhack/softlock/pkg/lock"
	"github.com/bashhack/softlock/pkg/process"
)

// commandExitError carries the exit status of the command run under the lock.
type commandExitError struct {
	code int
}

func (e *commandExitError) Error() string {
	return fmt.Sprintf("command exited with status %d", e.code)
}

// RootCommand builds the softlock command tree bound to the app's config.
func (a *App) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "softlock",
		Short: "Cross-process advisory file locks",
		Long: `softlock serialises work across processes with a lock file holding the
owner's process ID. A lock left behind by a process that died is detected and
reclaimed automatically.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.Config.Resolve(cmd.Flags()); err != nil {
				return err
			}
			return a.Initialize()
		},
	}
	a.Config.SetupFlags(root.PersistentFlags())

	root.AddCommand(
		a.runCommand(),
		a.statusCommand(),
		a.breakCommand(),
		a.versionCommand(),
	)
	return root
}

func (a *App) runCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [lock] -- command [args...]",
		Short: "Run a command while holding the lock",
		Example: `  softlock run /tmp/build.lock -- make all
  softlock run --timeout 30s /tmp/build.lock -- ./deploy.sh
  SOFTLOCK_LOCK=/tmp/build.lock softlock run -- make test`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, argv, err := a.splitRunArgs(cmd.ArgsLenAtDash(), args)
			if err != nil {
				return err
			}
			return a.runLocked(cmd, path, argv)
		},
	}
	a.Config.SetupAcquireFlags(cmd.Flags())
	return cmd
}

// splitRunArgs separates the lock path from the command. Without a path
// before "--" the configured default lock is used.
func (a *App) splitRunArgs(dash int, args []string) (string, []string, error) {
	var path string
	var argv []string
	switch dash {
	case -1:
		path, argv = args[0], args[1:]
	case 0:
		path, argv = a.Config.LockPath, args
	case 1:
		path, argv = args[0], args[1:]
	default:
		return "", nil, errors.Errorf("expected a single lock path before --, got %q", strings.Join(args[:dash], " "))
	}
	if path == "" {
		return "", nil, errors.Wrap(errors.ErrInvalidPath, "no lock path given and SOFTLOCK_LOCK is not set")
	}
	if len(argv) == 0 {
		return "", nil, errors.New("no command given to run")
	}
	return path, argv, nil
}

func (a *App) runLocked(cmd *cobra.Command, path string, argv []string) error {
	ctx := cmd.Context()

	l, err := a.newLock(path)
	if err != nil {
		return err
	}
	if _, err := l.Acquire(ctx); err != nil {
		if errors.IsTimeout(err) {
			a.Logger.WarningToUser("Could not acquire %s: another process holds it", l.Path())
		}
		return err
	}
	a.lock = l

	child := a.execCommand(ctx, argv[0], argv[1:]...)
	child.Stdin = a.Stdin
	child.Stdout = a.Stdout
	child.Stderr = a.Stderr

	runErr := child.Run()

	// on failure a.lock stays set and Close tries once more
	if err := l.Release(); err != nil {
		return errors.Join(runErr, err)
	}
	a.lock = nil

	if ctx.Err() != nil {
		return ctx.Err()
	}
	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		code := exitErr.ExitCode()
		if code < 0 {
			// killed by a signal
			code = exitFailure
		}
		return &commandExitError{code: code}
	}
	if runErr != nil {
		return errors.Wrapf(runErr, "failed to run %s", argv[0])
	}
	return nil
}

func (a *App) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status [lock]",
		Short: "Show who holds the lock",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.lockPathArg(args)
			if err != nil {
				return err
			}
			st, err := lock.Inspect(path, a.Checker)
			if err != nil {
				return err
			}
			a.printStatus(st)
			return nil
		},
	}
}

func (a *App) printStatus(st lock.Status) {
	out := a.Stdout
	_, _ = fmt.Fprintf(out, "Lock:   %s\n", st.Path)
	if !st.Exists {
		_, _ = fmt.Fprintf(out, "State:  free\n")
		return
	}

	switch {
	case st.PID == 0:
		_, _ = fmt.Fprintf(out, "State:  stale (lock file has no valid PID)\n")
	case st.Stale:
		_, _ = fmt.Fprintf(out, "State:  stale (PID %d is not running)\n", st.PID)
	case st.Owner == process.Unknown:
		_, _ = fmt.Fprintf(out, "State:  held by PID %d (could not verify it is running)\n", st.PID)
	default:
		_, _ = fmt.Fprintf(out, "State:  held by PID %d\n", st.PID)
	}
	_, _ = fmt.Fprintf(out, "Since:  %s (%s)\n",
		humanize.RelTime(st.ModTime, a.now(), "ago", "from now"),
		st.ModTime.Format("2006-01-02 15:04:05"))
}

func (a *App) breakCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "break [lock]",
		Short: "Remove a stale lock",
		Long: `Remove the lock file if the process that created it is no longer running.
With --force the lock file is removed even if its owner appears to be alive,
which is only safe when the PID has been reused by an unrelated process.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.lockPathArg(args)
			if err != nil {
				return err
			}
			return a.breakLock(path, force)
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Remove the lock even if its owner appears to be running")
	return cmd
}

func (a *App) breakLock(path string, force bool) error {
	removed, err := lock.RemoveIfStale(path, a.Checker)
	switch {
	case err == nil && removed:
		a.Logger.Success("Removed stale lock %s", path)
		return nil
	case err == nil:
		a.Logger.InfoToUser("No lock at %s", path)
		return nil
	case errors.Is(err, errors.ErrLockHeld) && force:
		var lockErr *errors.LockError
		if errors.As(err, &lockErr) {
			a.Logger.WarningToUser("Forcibly removing lock %s held by PID %d", path, lockErr.PID)
		}
		if err := lock.ForceRemove(path); err != nil {
			return err
		}
		a.Logger.Success("Removed lock %s", path)
		return nil
	case errors.Is(err, errors.ErrLockHeld):
		a.Logger.WarningToUser("Lock %s is held by a running process; use --force to remove it anyway", path)
		return err
	default:
		return err
	}
}

func (a *App) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(*cobra.Command, []string) {
			a.ShowVersion()
		},
	}
}

// lockPathArg returns the lock named on the command line, or the configured
// default.
func (a *App) lockPathArg(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	if a.Config.LockPath == "" {
		return "", errors.Wrap(errors.ErrInvalidPath, "no lock path given and SOFTLOCK_LOCK is not set")
	}
	return a.Config.LockPath, nil
}
