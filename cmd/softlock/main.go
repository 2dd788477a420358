package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bashhack/softlock/internal/config"
)

// Version information - injected at build time
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	versionInfo := config.VersionInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	}

	app := NewDefaultApp(versionInfo)

	// Interrupting softlock cancels the wait for the lock, or the command
	// running under it, and still releases the lock on the way out.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := app.Execute(ctx, os.Args[1:])
	stop()

	app.exit(code)
}
