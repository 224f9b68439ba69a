package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ersonp/lore-timeline/internal/application/handlers"
	"github.com/ersonp/lore-timeline/internal/domain/chrono"
	"github.com/ersonp/lore-timeline/internal/domain/services"
)

type exportFlags struct {
	timeline string
	format   string
	output   string
}

func newExportCmd() *cobra.Command {
	var flags exportFlags

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a timeline's events to file",
		Long:  "Exports a timeline's events in chronological order to JSON, CSV, or markdown format.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.timeline, "timeline", "t", "", "Timeline to export (required)")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "json", "Output format (json, csv, markdown)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file (default: stdout)")
	_ = cmd.MarkFlagRequired("timeline")

	return cmd
}

func runExport(cmd *cobra.Command, flags exportFlags) error {
	if !slices.Contains(validFormats, flags.format) {
		return fmt.Errorf("invalid format %q, valid formats: %v", flags.format, validFormats)
	}

	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		view, err := d.TimelineHandler.HandleShow(ctx, d.World, flags.timeline)
		if err != nil {
			return err
		}
		if len(view.Events) == 0 {
			return fmt.Errorf("timeline %q has no events to export", view.Timeline.Name)
		}
		return exportView(view, flags.format, flags.output)
	})
}

func exportView(view *handlers.TimelineView, format, output string) (err error) {
	var w io.Writer = os.Stdout

	if output != "" {
		f, err := os.OpenFile(output, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return fmt.Errorf("creating file: %w", err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("closing file: %w", cerr)
			}
		}()
		w = f
	}

	if err := formatEvents(w, format, view); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	if output != "" {
		fmt.Printf("Exported %d events to %s\n", len(view.Events), output)
	}

	return nil
}

func formatEvents(w io.Writer, format string, view *handlers.TimelineView) error {
	switch format {
	case "json":
		return formatJSON(w, view.Events)
	case "csv":
		return formatCSV(w, view.Events)
	case "markdown":
		return formatMarkdown(w, view)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// exportEvent is the exported form of an event. Its fields are a superset
// of what the import parsers read.
type exportEvent struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Date        string `json:"date"`
	DateKind    string `json:"date_kind"`
	Placement   string `json:"placement"`
	SourceFile  string `json:"source_file,omitempty"`
}

func toExportEvent(oe services.OrderedEvent) exportEvent {
	ev := oe.Event
	return exportEvent{
		ID:          ev.ID,
		Title:       ev.Title,
		Description: ev.Description,
		Date:        chrono.FormatEventDate(ev.Date),
		DateKind:    string(ev.Date.Kind),
		Placement:   oe.Key.Placement.String(),
		SourceFile:  ev.SourceFile,
	}
}

func formatJSON(w io.Writer, events []services.OrderedEvent) error {
	exported := make([]exportEvent, 0, len(events))
	for _, oe := range events {
		exported = append(exported, toExportEvent(oe))
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(exported)
}

func formatCSV(w io.Writer, events []services.OrderedEvent) error {
	writer := csv.NewWriter(w)

	header := []string{"id", "title", "description", "date", "date_kind", "placement", "source_file"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, oe := range events {
		e := toExportEvent(oe)
		row := []string{e.ID, e.Title, e.Description, e.Date, e.DateKind, e.Placement, e.SourceFile}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatMarkdown(w io.Writer, view *handlers.TimelineView) error {
	if _, err := fmt.Fprintf(w, "# %s\n\n", escapeMarkdown(view.Timeline.Name)); err != nil {
		return err
	}
	if len(view.Eras) > 0 {
		if _, err := fmt.Fprintf(w, "Eras: %s\n\n", strings.Join(chrono.EraNames(view.Eras), ", ")); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "Total: %d events\n\n", len(view.Events)); err != nil {
		return err
	}

	if _, err := fmt.Fprint(w, "| Date | Title | Description | Source |\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprint(w, "|------|-------|-------------|--------|\n"); err != nil {
		return err
	}

	for _, oe := range view.Events {
		ev := oe.Event
		date := chrono.FormatEventDate(ev.Date)
		if oe.Key.Placement == chrono.PlacementUnranked {
			date += " (?)"
		}
		if _, err := fmt.Fprintf(w, "| %s | %s | %s | %s |\n",
			escapeMarkdown(date),
			escapeMarkdown(ev.Title),
			escapeMarkdown(ev.Description),
			escapeMarkdown(shortenSource(ev.SourceFile)),
		); err != nil {
			return err
		}
	}

	return nil
}

// shortenSource keeps the tail of long source paths.
func shortenSource(source string) string {
	if len(source) > MaxSourceWidth {
		return "..." + source[len(source)-(MaxSourceWidth-3):]
	}
	return source
}

func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
