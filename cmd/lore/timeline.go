package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ersonp/lore-timeline/internal/application/handlers"
	"github.com/ersonp/lore-timeline/internal/domain/chrono"
	"github.com/ersonp/lore-timeline/internal/domain/entities"
)

func newTimelineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "timeline",
		Aliases: []string{"timelines"},
		Short:   "Manage timelines and their eras",
	}

	cmd.AddCommand(
		newTimelineCreateCmd(),
		newTimelineListCmd(),
		newTimelineErasCmd(),
		newTimelineShowCmd(),
		newTimelineDeleteCmd(),
	)

	return cmd
}

func newTimelineCreateCmd() *cobra.Command {
	var eras, description string

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a timeline",
		Long: `Creates a timeline. Eras are listed oldest first, either as a comma list
("BE, SE") or as JSON with optional year bounds
([{"name":"BE","startYear":1,"endYear":1000},{"name":"SE"}]).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(func(d *Deps) error {
				tl, err := d.TimelineHandler.HandleCreate(ctx, d.World, args[0], description, eras)
				if err != nil {
					return err
				}
				fmt.Printf("Created timeline %q\n", tl.Name)
				return printEras(cmd.OutOrStdout(), chrono.ParseEraConfig(tl.Eras))
			})
		},
	}

	cmd.Flags().StringVarP(&eras, "eras", "e", "", "Era definition, oldest first (default from config)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Timeline description")

	return cmd
}

func newTimelineListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List timelines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(func(d *Deps) error {
				summaries, err := d.TimelineHandler.HandleList(ctx, d.World)
				if err != nil {
					return err
				}
				return printTimelines(cmd.OutOrStdout(), summaries)
			})
		},
	}
}

func newTimelineErasCmd() *cobra.Command {
	var set string

	cmd := &cobra.Command{
		Use:   "eras NAME",
		Short: "Show or replace a timeline's eras",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(func(d *Deps) error {
				var (
					eras []entities.EraConfig
					err  error
				)
				if cmd.Flags().Changed("set") {
					eras, err = d.TimelineHandler.HandleSetEras(ctx, d.World, args[0], set)
				} else {
					eras, err = d.TimelineHandler.HandleEras(ctx, d.World, args[0])
				}
				if err != nil {
					return err
				}
				return printEras(cmd.OutOrStdout(), eras)
			})
		},
	}

	cmd.Flags().StringVar(&set, "set", "", "Replace the era definition")

	return cmd
}

func newTimelineShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show NAME",
		Short: "Show a timeline's events in chronological order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(func(d *Deps) error {
				view, err := d.TimelineHandler.HandleShow(ctx, d.World, args[0])
				if err != nil {
					return err
				}
				return printTimelineView(cmd.OutOrStdout(), view)
			})
		},
	}
}

func newTimelineDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a timeline and its events",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(func(d *Deps) error {
				if err := d.TimelineHandler.HandleDelete(ctx, d.World, args[0]); err != nil {
					return err
				}
				fmt.Printf("Deleted timeline %q\n", args[0])
				return nil
			})
		},
	}
}

func printTimelines(w io.Writer, summaries []handlers.TimelineSummary) error {
	if len(summaries) == 0 {
		_, err := fmt.Fprint(w, "No timelines.\nUse 'lore timeline create NAME --eras \"...\"' to create one.\n")
		return err
	}

	if _, err := fmt.Fprintf(w, "%-20s %-7s %s\n", "NAME", "EVENTS", "ERAS"); err != nil {
		return err
	}
	for _, s := range summaries {
		if _, err := fmt.Fprintf(w, "%-20s %-7d %s\n", s.Timeline.Name, s.EventCount, strings.Join(s.Eras, ", ")); err != nil {
			return err
		}
	}
	return nil
}

func printEras(w io.Writer, eras []entities.EraConfig) error {
	if len(eras) == 0 {
		_, err := fmt.Fprintln(w, "No eras defined; dates sort by year alone.")
		return err
	}

	for i, era := range eras {
		if _, err := fmt.Fprintf(w, "%2d. %-20s %s\n", i+1, era.Name, formatEraBounds(era)); err != nil {
			return err
		}
	}
	return nil
}

// formatEraBounds renders "start..end" with "?" for unknown bounds, or an
// empty string when neither bound is set.
func formatEraBounds(era entities.EraConfig) string {
	if era.StartYear.IsZero() && era.EndYear.IsZero() {
		return ""
	}
	return boundText(era.StartYear) + ".." + boundText(era.EndYear)
}

func boundText(b entities.YearBound) string {
	if !b.Known {
		return "?"
	}
	return b.Text
}

func printTimelineView(w io.Writer, view *handlers.TimelineView) error {
	tl := view.Timeline
	if _, err := fmt.Fprintf(w, "%s\n", tl.Name); err != nil {
		return err
	}
	if tl.Description != "" {
		if _, err := fmt.Fprintf(w, "%s\n", tl.Description); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "Eras: %s\n\n", strings.Join(chrono.EraNames(view.Eras), ", ")); err != nil {
		return err
	}

	if len(view.Events) == 0 {
		_, err := fmt.Fprintln(w, "No events.")
		return err
	}

	for i, oe := range view.Events {
		ev := oe.Event
		if _, err := fmt.Fprintf(w, "%3d. %s %-24s %s\n", i+1, placementMarker(oe.Key.Placement), chrono.FormatEventDate(ev.Date), ev.Title); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "        id: %s\n", ev.ID); err != nil {
			return err
		}
	}

	_, err := fmt.Fprint(w, "\n? era not in the timeline's eras   - no usable date\n")
	return err
}

// placementMarker flags events whose position is a best effort.
func placementMarker(p chrono.Placement) string {
	switch p {
	case chrono.PlacementRanked:
		return " "
	case chrono.PlacementUnranked:
		return "?"
	default:
		return "-"
	}
}
