// Package main provides the entry point for the lore CLI application.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	version       = "0.1.0-dev"
	globalWorld   string
	globalVerbose bool
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	rootCmd := &cobra.Command{
		Use:           "lore",
		Short:         "Story timelines with fictional calendars",
		Long:          "Keeps dated events of fictional worlds in era-based calendars, orders them chronologically and answers age questions.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&globalWorld, "world", "w", "", "World to operate on (required)")
	rootCmd.PersistentFlags().BoolVarP(&globalVerbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(
		newWorldsCmd(),
		newTimelineCmd(),
		newEventsCmd(),
		newCharactersCmd(),
		newIngestCmd(),
		newWatchCmd(),
		newQueryCmd(),
		newImportCmd(),
		newExportCmd(),
		newHistoryCmd(),
	)

	return rootCmd.ExecuteContext(ctx)
}
