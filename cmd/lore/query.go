package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ersonp/lore-timeline/internal/application/handlers"
	"github.com/ersonp/lore-timeline/internal/domain/chrono"
)

func newQueryCmd() *cobra.Command {
	var opts handlers.QueryOptions

	cmd := &cobra.Command{
		Use:   "query <question>",
		Short: "Search for events",
		Long:  "Performs semantic search over indexed events, optionally ordered by date instead of relevance.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(func(d *Deps) error {
				result, err := d.QueryHandler.Handle(ctx, d.World, args[0], opts)
				if err != nil {
					return fmt.Errorf("querying events: %w", err)
				}
				return printQueryResult(cmd.OutOrStdout(), result)
			})
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "l", DefaultQueryLimit, "Maximum number of results")
	cmd.Flags().StringVarP(&opts.Timeline, "timeline", "t", "", "Restrict results to one timeline")
	cmd.Flags().BoolVarP(&opts.Chronological, "chronological", "c", false, "Order results by date")

	return cmd
}

func printQueryResult(w io.Writer, result *handlers.QueryResult) error {
	if len(result.Events) == 0 {
		_, err := fmt.Fprintln(w, "No events found.")
		return err
	}

	if _, err := fmt.Fprintf(w, "Found %d events:\n\n", len(result.Events)); err != nil {
		return err
	}

	for i, ev := range result.Events {
		if _, err := fmt.Fprintf(w, "%d. [%s] %s\n", i+1, chrono.FormatEventDate(ev.Date), ev.Title); err != nil {
			return err
		}
		if ev.Description != "" {
			if _, err := fmt.Fprintf(w, "   %s\n", ev.Description); err != nil {
				return err
			}
		}
		if ev.SourceFile != "" {
			if _, err := fmt.Fprintf(w, "   Source: %s\n", ev.SourceFile); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}
