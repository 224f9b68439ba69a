package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ersonp/lore-timeline/internal/domain/chrono"
	"github.com/ersonp/lore-timeline/internal/domain/entities"
	"github.com/ersonp/lore-timeline/internal/domain/ports"
)

var (
	// ErrTimelineNotFound is returned when a timeline does not exist.
	ErrTimelineNotFound = errors.New("timeline not found")
	// ErrTimelineExists is returned when creating a timeline whose name is taken.
	ErrTimelineExists = errors.New("timeline already exists")
	// ErrEventNotFound is returned when an event does not exist.
	ErrEventNotFound = errors.New("event not found")
	// ErrEmptyName is returned when a required name or title is blank.
	ErrEmptyName = errors.New("name cannot be empty")
)

// OrderedEvent is an event together with the key it was ordered by.
type OrderedEvent struct {
	Event *entities.TimelineEvent
	Key   chrono.SortKey
}

// TimelineService manages timelines and their events.
type TimelineService struct {
	relationalDB ports.RelationalDB
	embedder     ports.Embedder
	vectorDB     ports.VectorDB
	logger       *zap.Logger
}

// NewTimelineService creates a new TimelineService. embedder and vectorDB
// may be nil, in which case events are stored without being indexed.
func NewTimelineService(relationalDB ports.RelationalDB, embedder ports.Embedder, vectorDB ports.VectorDB, logger *zap.Logger) *TimelineService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimelineService{
		relationalDB: relationalDB,
		embedder:     embedder,
		vectorDB:     vectorDB,
		logger:       logger,
	}
}

// Create creates a new timeline with the given era definition.
func (s *TimelineService) Create(ctx context.Context, worldID, name, description, eras string) (*entities.Timeline, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	existing, err := s.relationalDB.FindTimelineByName(ctx, worldID, name)
	if err != nil {
		return nil, fmt.Errorf("checking existing timeline: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrTimelineExists, name)
	}

	now := time.Now()
	tl := &entities.Timeline{
		ID:          uuid.New().String(),
		WorldID:     worldID,
		Name:        name,
		Description: description,
		Eras:        strings.TrimSpace(eras),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.relationalDB.SaveTimeline(ctx, tl); err != nil {
		return nil, fmt.Errorf("saving timeline: %w", err)
	}

	s.audit(ctx, entities.ActionTimelineCreated, tl.ID, map[string]any{"name": tl.Name, "eras": tl.Eras})
	s.logger.Debug("timeline created",
		zap.String("timeline", tl.Name),
		zap.Int("eras", len(chrono.ParseEraConfig(tl.Eras))))
	return tl, nil
}

// Get returns a timeline by ID.
func (s *TimelineService) Get(ctx context.Context, id string) (*entities.Timeline, error) {
	tl, err := s.relationalDB.FindTimelineByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding timeline: %w", err)
	}
	if tl == nil {
		return nil, fmt.Errorf("%w: %s", ErrTimelineNotFound, id)
	}
	return tl, nil
}

// FindByName returns a timeline by name (case-insensitive).
func (s *TimelineService) FindByName(ctx context.Context, worldID, name string) (*entities.Timeline, error) {
	tl, err := s.relationalDB.FindTimelineByName(ctx, worldID, name)
	if err != nil {
		return nil, fmt.Errorf("finding timeline: %w", err)
	}
	if tl == nil {
		return nil, fmt.Errorf("%w: %s", ErrTimelineNotFound, name)
	}
	return tl, nil
}

// List returns all timelines of a world.
func (s *TimelineService) List(ctx context.Context, worldID string) ([]*entities.Timeline, error) {
	return s.relationalDB.ListTimelines(ctx, worldID)
}

// SetEras replaces the era definition of a timeline. Stored events keep
// their dates; only their ordering changes.
func (s *TimelineService) SetEras(ctx context.Context, worldID, name, eras string) (*entities.Timeline, error) {
	tl, err := s.FindByName(ctx, worldID, name)
	if err != nil {
		return nil, err
	}

	previous := tl.Eras
	tl.Eras = strings.TrimSpace(eras)
	tl.UpdatedAt = time.Now()
	if err := s.relationalDB.SaveTimeline(ctx, tl); err != nil {
		return nil, fmt.Errorf("saving timeline: %w", err)
	}

	s.audit(ctx, entities.ActionErasUpdated, tl.ID, map[string]any{"from": previous, "to": tl.Eras})
	return tl, nil
}

// Eras returns the parsed era table of a timeline.
func (s *TimelineService) Eras(ctx context.Context, worldID, name string) ([]entities.EraConfig, error) {
	tl, err := s.FindByName(ctx, worldID, name)
	if err != nil {
		return nil, err
	}
	return chrono.ParseEraConfig(tl.Eras), nil
}

// Delete removes a timeline, its events and their index entries.
func (s *TimelineService) Delete(ctx context.Context, worldID, name string) error {
	tl, err := s.FindByName(ctx, worldID, name)
	if err != nil {
		return err
	}

	if s.vectorDB != nil {
		if err := s.vectorDB.DeleteByTimeline(ctx, tl.ID); err != nil {
			return fmt.Errorf("deleting indexed events: %w", err)
		}
	}

	if err := s.relationalDB.DeleteTimeline(ctx, tl.ID); err != nil {
		return fmt.Errorf("deleting timeline: %w", err)
	}

	s.audit(ctx, entities.ActionTimelineDeleted, tl.ID, map[string]any{"name": tl.Name})
	return nil
}

// AddEvent stores a new event on a timeline and indexes it when an
// embedder and vector store are configured. The ID and CreatedAt fields are
// filled in.
func (s *TimelineService) AddEvent(ctx context.Context, timelineID string, ev *entities.TimelineEvent) error {
	ev.Title = strings.TrimSpace(ev.Title)
	if ev.Title == "" {
		return ErrEmptyName
	}

	if _, err := s.Get(ctx, timelineID); err != nil {
		return err
	}

	if ev.ID == "" {
		ev.ID = uuid.New().String()
	}
	ev.TimelineID = timelineID
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}

	if !ev.Date.IsResolved() {
		s.logger.Warn("event has no usable date and will sort last",
			zap.String("event", ev.Title))
	}

	if err := s.relationalDB.SaveEvent(ctx, ev); err != nil {
		return fmt.Errorf("saving event: %w", err)
	}

	if err := s.index(ctx, ev); err != nil {
		return err
	}

	s.audit(ctx, entities.ActionEventAdded, ev.ID, map[string]any{
		"timeline": timelineID,
		"date":     chrono.FormatEventDate(ev.Date),
	})
	return nil
}

// RemoveEvent deletes an event and its index entry.
func (s *TimelineService) RemoveEvent(ctx context.Context, eventID string) error {
	ev, err := s.Event(ctx, eventID)
	if err != nil {
		return err
	}

	if err := s.relationalDB.DeleteEvent(ctx, ev.ID); err != nil {
		return fmt.Errorf("deleting event: %w", err)
	}

	if s.vectorDB != nil {
		if err := s.vectorDB.Delete(ctx, ev.ID); err != nil {
			return fmt.Errorf("deleting indexed event: %w", err)
		}
	}

	s.audit(ctx, entities.ActionEventRemoved, ev.ID, map[string]any{"timeline": ev.TimelineID, "title": ev.Title})
	return nil
}

// Event returns an event by ID.
func (s *TimelineService) Event(ctx context.Context, eventID string) (*entities.TimelineEvent, error) {
	ev, err := s.relationalDB.FindEventByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("finding event: %w", err)
	}
	if ev == nil {
		return nil, fmt.Errorf("%w: %s", ErrEventNotFound, eventID)
	}
	return ev, nil
}

// Events returns the events of a timeline in chronological order. Events
// with equal keys keep their insertion order.
func (s *TimelineService) Events(ctx context.Context, tl *entities.Timeline) ([]OrderedEvent, error) {
	events, err := s.relationalDB.ListEvents(ctx, tl.ID)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	return OrderEvents(events, chrono.EraNames(chrono.ParseEraConfig(tl.Eras))), nil
}

// OrderEvents sorts events chronologically against an era ordering.
func OrderEvents(events []*entities.TimelineEvent, eraOrder []string) []OrderedEvent {
	ordered := make([]OrderedEvent, 0, len(events))
	for _, ev := range events {
		ordered = append(ordered, OrderedEvent{Event: ev, Key: chrono.Key(&ev.Date, eraOrder)})
	}
	slices.SortStableFunc(ordered, func(a, b OrderedEvent) int {
		return a.Key.Compare(b.Key)
	})
	return ordered
}

// index embeds and stores an event in the vector store.
func (s *TimelineService) index(ctx context.Context, ev *entities.TimelineEvent) error {
	if s.embedder == nil || s.vectorDB == nil {
		return nil
	}

	embedding, err := s.embedder.Embed(ctx, eventToText(ev))
	if err != nil {
		return fmt.Errorf("generating embedding: %w", err)
	}
	ev.Embedding = embedding

	if err := s.vectorDB.Save(ctx, *ev); err != nil {
		return fmt.Errorf("indexing event: %w", err)
	}
	return nil
}

// audit records an action. A failing audit log does not fail the operation.
func (s *TimelineService) audit(ctx context.Context, action, subjectID string, details map[string]any) {
	logAction(ctx, s.relationalDB, s.logger, action, subjectID, details)
}

func logAction(ctx context.Context, db ports.RelationalDB, logger *zap.Logger, action, subjectID string, details map[string]any) {
	if err := db.LogAction(ctx, action, subjectID, details); err != nil {
		logger.Warn("writing audit log",
			zap.String("action", action),
			zap.String("subject", subjectID),
			zap.Error(err))
	}
}

// eventToText converts an event to searchable text for embedding.
func eventToText(ev *entities.TimelineEvent) string {
	parts := []string{ev.Title}
	if ev.Date.IsResolved() {
		parts = append(parts, chrono.FormatEventDate(ev.Date))
	}
	if ev.Description != "" {
		parts = append(parts, ev.Description)
	}
	return strings.Join(parts, " ")
}
