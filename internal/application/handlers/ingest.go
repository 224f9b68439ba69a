package handlers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ersonp/lore-timeline/internal/domain/entities"
	"github.com/ersonp/lore-timeline/internal/domain/services"
)

// IngestHandler handles extracting timeline events from prose files.
type IngestHandler struct {
	extractionService *services.ExtractionService
	timelines         *services.TimelineService
}

// NewIngestHandler creates a new ingest handler.
func NewIngestHandler(extractionService *services.ExtractionService, timelines *services.TimelineService) *IngestHandler {
	return &IngestHandler{
		extractionService: extractionService,
		timelines:         timelines,
	}
}

// IngestOptions controls ingestion behavior.
type IngestOptions struct {
	Timeline    string // Name of the timeline receiving the events (required)
	DryRun      bool   // Extract only, don't save events
	SkipUndated bool   // Drop events whose date could not be read
}

// IngestResult contains the result of ingestion.
type IngestResult struct {
	FilePath    string
	EventsCount int
	Events      []entities.TimelineEvent
	Undated     int
	Characters  []string
}

// IngestBatchResult contains the result of batch ingestion.
type IngestBatchResult struct {
	TotalFiles   int
	TotalEvents  int
	TotalUndated int
	FileResults  []*IngestResult
	Errors       []error
}

// Handle ingests a file onto a timeline.
// Uses streaming to avoid loading entire file into memory.
func (h *IngestHandler) Handle(ctx context.Context, worldID, filePath string, opts IngestOptions) (*IngestResult, error) {
	tl, err := requireTimeline(ctx, h.timelines, worldID, opts.Timeline)
	if err != nil {
		return nil, err
	}
	return h.ingestFile(ctx, tl, filePath, opts)
}

func (h *IngestHandler) ingestFile(ctx context.Context, tl *entities.Timeline, filePath string, opts IngestOptions) (*IngestResult, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("accessing file: %w", err)
	}

	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", absPath)
	}

	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	extractOpts := services.ExtractionOptions{
		DryRun:      opts.DryRun,
		SkipUndated: opts.SkipUndated,
	}

	result, err := h.extractionService.ExtractFromReader(ctx, file, tl, absPath, extractOpts)
	if err != nil {
		return nil, fmt.Errorf("extracting events: %w", err)
	}

	return &IngestResult{
		FilePath:    absPath,
		EventsCount: len(result.Events),
		Events:      result.Events,
		Undated:     result.Undated,
		Characters:  result.Characters,
	}, nil
}

// HandleText extracts events from a block of text onto a timeline. The
// source names where the text came from and may be empty.
func (h *IngestHandler) HandleText(ctx context.Context, worldID, text, source string, opts IngestOptions) (*IngestResult, error) {
	tl, err := requireTimeline(ctx, h.timelines, worldID, opts.Timeline)
	if err != nil {
		return nil, err
	}

	extractOpts := services.ExtractionOptions{
		DryRun:      opts.DryRun,
		SkipUndated: opts.SkipUndated,
	}

	result, err := h.extractionService.ExtractAndStore(ctx, text, tl, source, extractOpts)
	if err != nil {
		return nil, fmt.Errorf("extracting events: %w", err)
	}

	return &IngestResult{
		FilePath:    source,
		EventsCount: len(result.Events),
		Events:      result.Events,
		Undated:     result.Undated,
		Characters:  result.Characters,
	}, nil
}

// HandleDirectory ingests all matching files in a directory onto a timeline.
func (h *IngestHandler) HandleDirectory(ctx context.Context, worldID, dirPath, pattern string, recursive bool, progressFn func(file string), opts IngestOptions) (*IngestBatchResult, error) {
	tl, err := requireTimeline(ctx, h.timelines, worldID, opts.Timeline)
	if err != nil {
		return nil, err
	}

	absPath, err := filepath.Abs(dirPath)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("accessing path: %w", err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", absPath)
	}

	files, err := findFiles(absPath, pattern, recursive)
	if err != nil {
		return nil, fmt.Errorf("finding files: %w", err)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no files matching pattern %q found in %s", pattern, absPath)
	}

	result := &IngestBatchResult{
		FileResults: make([]*IngestResult, 0, len(files)),
	}

	for _, file := range files {
		if progressFn != nil {
			progressFn(file)
		}

		fileResult, err := h.ingestFile(ctx, tl, file, opts)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("%s: %w", file, err))
			continue
		}

		result.FileResults = append(result.FileResults, fileResult)
		result.TotalFiles++
		result.TotalEvents += fileResult.EventsCount
		result.TotalUndated += fileResult.Undated
	}

	return result, nil
}

// findFiles finds all files matching the pattern in the directory.
func findFiles(dirPath string, pattern string, recursive bool) ([]string, error) {
	var files []string

	walkFn := func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if !recursive && path != dirPath {
				return filepath.SkipDir
			}
			return nil
		}

		matched, err := filepath.Match(pattern, d.Name())
		if err != nil {
			return err
		}

		if matched {
			files = append(files, path)
		}

		return nil
	}

	if err := filepath.WalkDir(dirPath, walkFn); err != nil {
		return nil, err
	}

	return files, nil
}

// IsDirectory checks if the given path is a directory.
func IsDirectory(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// IsGlobPattern checks if the path contains glob characters.
func IsGlobPattern(path string) bool {
	return strings.ContainsAny(path, "*?[")
}
