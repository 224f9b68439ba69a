package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ersonp/lore-timeline/internal/domain/chrono"
	"github.com/ersonp/lore-timeline/internal/domain/entities"
	"github.com/ersonp/lore-timeline/internal/domain/ports"
	"github.com/ersonp/lore-timeline/internal/infrastructure/parsers"
)

// ConflictStrategy defines how to handle existing events during import.
type ConflictStrategy string

const (
	// ConflictSkip skips events that already exist (by ID).
	ConflictSkip ConflictStrategy = "skip"
	// ConflictOverwrite overwrites existing events with new data.
	ConflictOverwrite ConflictStrategy = "overwrite"
)

// ImportOptions controls import behavior.
type ImportOptions struct {
	DryRun     bool             // Validate without saving
	OnConflict ConflictStrategy // How to handle existing events
}

// ImportError represents an error for a specific event during import.
type ImportError struct {
	Line    int    // Line number (1-indexed, 0 if unknown)
	Field   string // Which field has the error
	Value   string // The invalid value
	Message string // Human-readable error message
}

func (e ImportError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// ImportResult contains the result of an import operation.
type ImportResult struct {
	Imported int
	Skipped  int
	Errors   []ImportError
}

// ImportService handles importing events from external sources.
type ImportService struct {
	relationalDB ports.RelationalDB
	embedder     ports.Embedder
	vectorDB     ports.VectorDB
	logger       *zap.Logger
}

// NewImportService creates a new import service. embedder and vectorDB may
// be nil, in which case imported events are not indexed.
func NewImportService(relationalDB ports.RelationalDB, embedder ports.Embedder, vectorDB ports.VectorDB, logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{
		relationalDB: relationalDB,
		embedder:     embedder,
		vectorDB:     vectorDB,
		logger:       logger,
	}
}

// Import validates raw events and stores them on a timeline.
func (s *ImportService) Import(ctx context.Context, tl *entities.Timeline, rawEvents []parsers.RawEvent, opts ImportOptions) (*ImportResult, error) {
	result := &ImportResult{}

	events, validationErrors := s.validateEvents(tl, rawEvents)
	result.Errors = validationErrors

	if len(events) == 0 {
		return result, nil
	}

	if opts.DryRun {
		result.Imported = len(events)
		return result, nil
	}

	toSave, skipped, err := s.resolveConflicts(ctx, tl, events, opts.OnConflict)
	if err != nil {
		return nil, err
	}
	result.Skipped = skipped

	for i := range toSave {
		if err := s.relationalDB.SaveEvent(ctx, &toSave[i]); err != nil {
			return nil, fmt.Errorf("saving event: %w", err)
		}
	}

	if err := s.index(ctx, toSave); err != nil {
		return nil, err
	}

	result.Imported = len(toSave)
	s.logger.Info("events imported",
		zap.String("timeline", tl.Name),
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped),
		zap.Int("invalid", len(result.Errors)))
	return result, nil
}

// validateEvents validates raw events and converts the valid ones.
func (s *ImportService) validateEvents(tl *entities.Timeline, rawEvents []parsers.RawEvent) ([]entities.TimelineEvent, []ImportError) {
	valid := make([]entities.TimelineEvent, 0, len(rawEvents))
	var errors []ImportError
	now := time.Now()

	for i := range rawEvents {
		raw := &rawEvents[i]
		lineNum := raw.LineNum
		if lineNum == 0 {
			lineNum = i + 1
		}

		date, importErr := validateRawEvent(raw, lineNum)
		if importErr != nil {
			errors = append(errors, *importErr)
			continue
		}

		id := raw.ID
		if id == "" {
			id = uuid.New().String()
		}

		valid = append(valid, entities.TimelineEvent{
			ID:          id,
			TimelineID:  tl.ID,
			Title:       raw.Title,
			Description: raw.Description,
			Date:        date,
			SourceFile:  raw.SourceFile,
			CreatedAt:   now,
		})
	}

	return valid, errors
}

// validateRawEvent validates a single raw event and returns its parsed date.
func validateRawEvent(raw *parsers.RawEvent, lineNum int) (entities.EventDate, *ImportError) {
	if raw.Title == "" {
		return entities.EventDate{}, &ImportError{Line: lineNum, Field: "title", Message: "missing required field: title"}
	}
	if raw.Date == "" {
		return entities.EventDate{}, &ImportError{Line: lineNum, Field: "date", Message: "missing required field: date"}
	}

	date := chrono.ParseEventDate(raw.Date)
	if !date.IsResolved() {
		return entities.EventDate{}, &ImportError{
			Line:    lineNum,
			Field:   "date",
			Value:   raw.Date,
			Message: fmt.Sprintf("unreadable date %q (expected e.g. \"SE 300-04-02\", \"~SE 300\" or \"SE 300 .. SE 310\")", raw.Date),
		}
	}

	return date, nil
}

// resolveConflicts applies the conflict strategy to events whose ID is
// already stored. An ID that belongs to another timeline is never
// overwritten.
func (s *ImportService) resolveConflicts(ctx context.Context, tl *entities.Timeline, events []entities.TimelineEvent, onConflict ConflictStrategy) ([]entities.TimelineEvent, int, error) {
	toSave := make([]entities.TimelineEvent, 0, len(events))
	var skipped int

	for i := range events {
		existing, err := s.relationalDB.FindEventByID(ctx, events[i].ID)
		if err != nil {
			return nil, 0, fmt.Errorf("checking existing event: %w", err)
		}
		if existing == nil {
			toSave = append(toSave, events[i])
			continue
		}

		if onConflict == ConflictSkip || existing.TimelineID != tl.ID {
			skipped++
			continue
		}

		events[i].CreatedAt = existing.CreatedAt
		toSave = append(toSave, events[i])
	}

	return toSave, skipped, nil
}

// index generates embeddings for the saved events and stores them.
func (s *ImportService) index(ctx context.Context, events []entities.TimelineEvent) error {
	if s.embedder == nil || s.vectorDB == nil || len(events) == 0 {
		return nil
	}

	texts := make([]string, len(events))
	for i := range events {
		texts[i] = eventToText(&events[i])
	}

	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("generating embeddings: %w", err)
	}

	for i := range events {
		events[i].Embedding = embeddings[i]
	}

	if err := s.vectorDB.SaveBatch(ctx, events); err != nil {
		return fmt.Errorf("indexing events: %w", err)
	}
	return nil
}
