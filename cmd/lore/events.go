package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ersonp/lore-timeline/internal/application/handlers"
	"github.com/ersonp/lore-timeline/internal/domain/chrono"
)

func newEventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "events",
		Aliases: []string{"event"},
		Short:   "Add or remove timeline events",
	}

	cmd.AddCommand(
		newEventsAddCmd(),
		newEventsRemoveCmd(),
	)

	return cmd
}

func newEventsAddCmd() *cobra.Command {
	var req handlers.AddEventRequest

	cmd := &cobra.Command{
		Use:   "add TIMELINE TITLE",
		Short: "Add an event to a timeline",
		Long: `Adds an event. Dates are written era first:
  "SE 300-04-02"      exact day
  "SE 300"            exact year
  "~SE 300", "c. SE 300"  approximate
  "SE 300..SE 310"    range
  "1999-05-01"        plain date without an era
Unreadable dates are kept and sort after every dated event.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			req.Timeline = args[0]
			req.Title = args[1]

			return withDeps(func(d *Deps) error {
				ev, err := d.TimelineHandler.HandleAddEvent(ctx, d.World, req)
				if err != nil {
					return err
				}
				fmt.Printf("Added %q at %s (id %s)\n", ev.Title, chrono.FormatEventDate(ev.Date), ev.ID)
				if !ev.Date.IsResolved() {
					fmt.Printf("Warning: date %q could not be read; the event sorts last\n", req.Date)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&req.Date, "date", "", "Event date, e.g. \"SE 300-04-02\"")
	cmd.Flags().StringVarP(&req.Description, "description", "d", "", "Event description")
	cmd.Flags().StringVarP(&req.SourceFile, "source", "s", "", "Source the event came from")

	return cmd
}

func newEventsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove ID",
		Short: "Remove an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(func(d *Deps) error {
				if err := d.TimelineHandler.HandleRemoveEvent(ctx, args[0]); err != nil {
					return err
				}
				fmt.Printf("Removed event %s\n", args[0])
				return nil
			})
		},
	}
}
