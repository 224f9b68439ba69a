package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ersonp/lore-timeline/internal/application/handlers"
	"github.com/ersonp/lore-timeline/internal/domain/chrono"
)

type ingestFlags struct {
	handlers.IngestOptions
	pattern   string
	recursive bool
}

func newIngestCmd() *cobra.Command {
	var flags ingestFlags

	cmd := &cobra.Command{
		Use:   "ingest <file|dir>",
		Short: "Extract dated events from prose",
		Long: `Reads text files, asks the LLM for dated events written in the timeline's
eras, parses the dates and stores the events on the timeline.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.Timeline, "timeline", "t", "", "Timeline receiving the events (required)")
	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "Extract without saving")
	cmd.Flags().BoolVar(&flags.SkipUndated, "skip-undated", false, "Drop events whose date cannot be read")
	cmd.Flags().StringVarP(&flags.pattern, "pattern", "p", "*.txt", "File pattern when ingesting a directory")
	cmd.Flags().BoolVarP(&flags.recursive, "recursive", "r", false, "Descend into subdirectories")
	_ = cmd.MarkFlagRequired("timeline")

	return cmd
}

func runIngest(cmd *cobra.Command, path string, flags ingestFlags) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	return withDeps(func(d *Deps) error {
		handler, err := d.requireIngest()
		if err != nil {
			return err
		}

		if !handlers.IsDirectory(path) {
			fmt.Fprintf(out, "Ingesting %s...\n", path)

			result, err := handler.Handle(ctx, d.World, path, flags.IngestOptions)
			if err != nil {
				return fmt.Errorf("ingesting file: %w", err)
			}
			return printIngestResult(out, result, flags.DryRun)
		}

		progress := func(file string) {
			fmt.Fprintf(out, "Ingesting %s...\n", file)
		}
		batch, err := handler.HandleDirectory(ctx, d.World, path, flags.pattern, flags.recursive, progress, flags.IngestOptions)
		if err != nil {
			return fmt.Errorf("ingesting directory: %w", err)
		}

		for _, e := range batch.Errors {
			fmt.Fprintf(out, "  error: %v\n", e)
		}
		verb := "Extracted"
		if flags.DryRun {
			verb = "Dry run: extracted"
		}
		fmt.Fprintf(out, "\n%s %d events from %d files (%d undated)\n", verb, batch.TotalEvents, batch.TotalFiles, batch.TotalUndated)
		if len(batch.Errors) > 0 {
			return fmt.Errorf("%d files failed", len(batch.Errors))
		}
		return nil
	})
}

func printIngestResult(w io.Writer, result *handlers.IngestResult, dryRun bool) error {
	verb := "Extracted"
	if dryRun {
		verb = "Dry run: extracted"
	}
	if _, err := fmt.Fprintf(w, "%s %d events from %s\n", verb, result.EventsCount, result.FilePath); err != nil {
		return err
	}

	for i, ev := range result.Events {
		if _, err := fmt.Fprintf(w, "  %d. %-24s %s\n", i+1, chrono.FormatEventDate(ev.Date), ev.Title); err != nil {
			return err
		}
	}

	if result.Undated > 0 {
		if _, err := fmt.Fprintf(w, "%d events had no readable date\n", result.Undated); err != nil {
			return err
		}
	}
	return nil
}
