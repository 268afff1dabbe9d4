// Package main provides the entry point for the forge CLI.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/forgeworks/forge/internal/cli"
	"github.com/forgeworks/forge/internal/signal"
)

// Build information set via ldflags.
//
//nolint:gochecknoglobals // Set at build time
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	handler := signal.NewHandler(context.Background())
	defer handler.Stop()

	err := cli.Execute(handler.Context(), cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	})

	cli.CloseLogFile()

	if handler.WasInterrupted() {
		fmt.Fprintln(os.Stderr, "Interrupted.")
		os.Exit(cli.ExitError)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCodeForError(err))
	}
}
