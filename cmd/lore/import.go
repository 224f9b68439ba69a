package main

import (
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/ersonp/lore-timeline/internal/application/handlers"
	"github.com/ersonp/lore-timeline/internal/domain/services"
)

type importFlags struct {
	timeline   string
	format     string
	dryRun     bool
	onConflict string
}

func newImportCmd() *cobra.Command {
	var flags importFlags

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import events from JSON or CSV",
		Long: `Imports events from a structured file onto a timeline. Each record needs a
title and a date; id, description and source_file are optional. Files
written by 'lore export' in json or csv format can be imported back.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.timeline, "timeline", "t", "", "Target timeline (required)")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "auto", "File format (json, csv, auto)")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Validate without saving")
	cmd.Flags().StringVar(&flags.onConflict, "on-conflict", "skip", "Conflict handling (skip, overwrite)")
	_ = cmd.MarkFlagRequired("timeline")

	return cmd
}

func runImport(cmd *cobra.Command, filePath string, flags importFlags) error {
	if !slices.Contains(validConflictStrategies, flags.onConflict) {
		return fmt.Errorf("invalid --on-conflict value %q (valid: skip, overwrite)", flags.onConflict)
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	return withDeps(func(d *Deps) error {
		opts := handlers.ImportOptions{
			Timeline:   flags.timeline,
			Format:     flags.format,
			DryRun:     flags.dryRun,
			OnConflict: services.ConflictStrategy(flags.onConflict),
		}

		fmt.Fprintf(out, "Importing %s...\n", filePath)

		result, err := d.ImportHandler.Handle(ctx, d.World, filePath, opts)
		if err != nil {
			return fmt.Errorf("importing file: %w", err)
		}

		return printImportResult(out, result, flags.dryRun)
	})
}

func printImportResult(w io.Writer, result *handlers.ImportResult, dryRun bool) error {
	if len(result.Errors) > 0 {
		if _, err := fmt.Fprintf(w, "\nValidation errors (%d):\n", len(result.Errors)); err != nil {
			return err
		}
		for _, e := range result.Errors {
			if _, err := fmt.Fprintf(w, "  %s\n", e.Error()); err != nil {
				return err
			}
		}
	}

	summary := fmt.Sprintf("Imported: %d events", result.Imported)
	if dryRun {
		summary = fmt.Sprintf("Dry run: %d events would be imported", result.Imported)
	}
	if result.Timeline != "" {
		summary += fmt.Sprintf(" onto %q", result.Timeline)
	}
	if result.Skipped > 0 {
		summary += fmt.Sprintf(", %d skipped (already exist)", result.Skipped)
	}
	if len(result.Errors) > 0 {
		summary += fmt.Sprintf(", %d errors", len(result.Errors))
	}

	_, err := fmt.Fprintf(w, "\n%s\n", summary)
	return err
}
