// Package main provides the entry point for the autopost CLI.
package main

import (
	"context"
	"os"

	"github.com/votewire/autopost/internal/cli"
)

// Build metadata injected via -ldflags at release time.
//
//nolint:gochecknoglobals // Set by the linker
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx := context.Background()

	err := cli.Execute(ctx, cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	})

	// os.Exit skips deferred calls, so flush the log file here.
	cli.CloseLogFile()
	os.Exit(cli.ExitCodeForError(err))
}
