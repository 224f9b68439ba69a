package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/ersonp/lore-timeline/internal/domain/services"
	"github.com/ersonp/lore-timeline/internal/infrastructure/parsers"
)

// ImportHandler loads JSON or CSV event files onto a timeline.
type ImportHandler struct {
	service   *services.ImportService
	timelines *services.TimelineService
}

// NewImportHandler creates a new import handler.
func NewImportHandler(service *services.ImportService, timelines *services.TimelineService) *ImportHandler {
	return &ImportHandler{
		service:   service,
		timelines: timelines,
	}
}

// ImportOptions controls import behavior.
type ImportOptions struct {
	Timeline   string                    // Target timeline name (required)
	Format     string                    // "json", "csv", or "auto"
	DryRun     bool                      // Validate without saving
	OnConflict services.ConflictStrategy // What to do with ids already on the timeline
}

// ImportResult summarizes one file import.
type ImportResult struct {
	Timeline string // Name of the timeline imported onto
	Parsed   int    // Records read from the file
	Imported int
	Skipped  int
	Errors   []services.ImportError
}

// Handle reads filePath and imports its records onto opts.Timeline.
func (h *ImportHandler) Handle(ctx context.Context, worldID, filePath string, opts ImportOptions) (*ImportResult, error) {
	tl, err := requireTimeline(ctx, h.timelines, worldID, opts.Timeline)
	if err != nil {
		return nil, err
	}

	rawEvents, err := readEventFile(filePath, opts.Format)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Timeline: tl.Name, Parsed: len(rawEvents)}
	if len(rawEvents) == 0 {
		return result, nil
	}

	imported, err := h.service.Import(ctx, tl, rawEvents, services.ImportOptions{
		DryRun:     opts.DryRun,
		OnConflict: opts.OnConflict,
	})
	if err != nil {
		return nil, err
	}

	result.Imported = imported.Imported
	result.Skipped = imported.Skipped
	result.Errors = imported.Errors
	return result, nil
}

// readEventFile picks a parser from format, or from the file extension when
// format is empty or "auto", and parses the whole file.
func readEventFile(filePath, format string) ([]parsers.RawEvent, error) {
	parser := parsers.ForFormat(format)
	if format == "" || format == "auto" {
		parser = parsers.ForFile(filePath)
	}
	if parser == nil {
		return nil, fmt.Errorf("unsupported format for file: %s", filePath)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	rawEvents, err := parser.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("parsing file: %w", err)
	}
	return rawEvents, nil
}
