package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ersonp/lore-timeline/internal/domain/chrono"
	"github.com/ersonp/lore-timeline/internal/domain/entities"
	"github.com/ersonp/lore-timeline/internal/domain/services"
)

// TimelineHandler handles timeline and event operations.
type TimelineHandler struct {
	timelines   *services.TimelineService
	defaultEras string
}

// NewTimelineHandler creates a new TimelineHandler. defaultEras is used for
// timelines created without an era definition.
func NewTimelineHandler(timelines *services.TimelineService, defaultEras string) *TimelineHandler {
	return &TimelineHandler{
		timelines:   timelines,
		defaultEras: defaultEras,
	}
}

// TimelineSummary is a timeline with its era names and event count.
type TimelineSummary struct {
	Timeline   *entities.Timeline
	Eras       []string
	EventCount int
}

// TimelineView is a timeline with its eras and chronologically ordered events.
type TimelineView struct {
	Timeline *entities.Timeline
	Eras     []entities.EraConfig
	Events   []services.OrderedEvent
}

// AddEventRequest describes an event to add from user input.
type AddEventRequest struct {
	Timeline    string
	Title       string
	Description string
	Date        string // Free text, e.g. "SE 300-04-02", "~BE 12", "BE 10..BE 20"
	SourceFile  string
}

// HandleCreate creates a timeline.
func (h *TimelineHandler) HandleCreate(ctx context.Context, worldID, name, description, eras string) (*entities.Timeline, error) {
	if strings.TrimSpace(eras) == "" {
		eras = h.defaultEras
	}
	return h.timelines.Create(ctx, worldID, name, description, eras)
}

// HandleList returns all timelines of a world.
func (h *TimelineHandler) HandleList(ctx context.Context, worldID string) ([]TimelineSummary, error) {
	timelines, err := h.timelines.List(ctx, worldID)
	if err != nil {
		return nil, err
	}

	summaries := make([]TimelineSummary, 0, len(timelines))
	for _, tl := range timelines {
		events, err := h.timelines.Events(ctx, tl)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, TimelineSummary{
			Timeline:   tl,
			Eras:       chrono.EraNames(chrono.ParseEraConfig(tl.Eras)),
			EventCount: len(events),
		})
	}
	return summaries, nil
}

// HandleShow returns a timeline with its ordered events.
func (h *TimelineHandler) HandleShow(ctx context.Context, worldID, name string) (*TimelineView, error) {
	tl, err := h.timelines.FindByName(ctx, worldID, name)
	if err != nil {
		return nil, err
	}

	events, err := h.timelines.Events(ctx, tl)
	if err != nil {
		return nil, err
	}

	return &TimelineView{
		Timeline: tl,
		Eras:     chrono.ParseEraConfig(tl.Eras),
		Events:   events,
	}, nil
}

// HandleEras returns the parsed era table of a timeline.
func (h *TimelineHandler) HandleEras(ctx context.Context, worldID, name string) ([]entities.EraConfig, error) {
	return h.timelines.Eras(ctx, worldID, name)
}

// HandleSetEras replaces the era definition of a timeline.
func (h *TimelineHandler) HandleSetEras(ctx context.Context, worldID, name, eras string) ([]entities.EraConfig, error) {
	tl, err := h.timelines.SetEras(ctx, worldID, name, eras)
	if err != nil {
		return nil, err
	}
	return chrono.ParseEraConfig(tl.Eras), nil
}

// HandleDelete removes a timeline and its events.
func (h *TimelineHandler) HandleDelete(ctx context.Context, worldID, name string) error {
	return h.timelines.Delete(ctx, worldID, name)
}

// HandleAddEvent parses the date and adds the event. An unreadable date is
// kept; such events sort after every dated event.
func (h *TimelineHandler) HandleAddEvent(ctx context.Context, worldID string, req AddEventRequest) (*entities.TimelineEvent, error) {
	tl, err := h.timelines.FindByName(ctx, worldID, req.Timeline)
	if err != nil {
		return nil, err
	}

	ev := &entities.TimelineEvent{
		Title:       req.Title,
		Description: strings.TrimSpace(req.Description),
		Date:        chrono.ParseEventDate(req.Date),
		SourceFile:  req.SourceFile,
	}
	if err := h.timelines.AddEvent(ctx, tl.ID, ev); err != nil {
		return nil, err
	}
	return ev, nil
}

// HandleSaveEvents adds already parsed events to a timeline, for example
// the pending events of a dry-run extraction. It stops at the first failure
// and returns how many were saved.
func (h *TimelineHandler) HandleSaveEvents(ctx context.Context, worldID, timeline string, events []entities.TimelineEvent) (int, error) {
	tl, err := requireTimeline(ctx, h.timelines, worldID, timeline)
	if err != nil {
		return 0, err
	}

	for i := range events {
		if err := h.timelines.AddEvent(ctx, tl.ID, &events[i]); err != nil {
			return i, fmt.Errorf("saving %q: %w", events[i].Title, err)
		}
	}
	return len(events), nil
}

// HandleRemoveEvent removes an event by ID.
func (h *TimelineHandler) HandleRemoveEvent(ctx context.Context, eventID string) error {
	return h.timelines.RemoveEvent(ctx, eventID)
}

// resolveTimeline returns the named timeline, or nil for an empty name.
func resolveTimeline(ctx context.Context, timelines *services.TimelineService, worldID, name string) (*entities.Timeline, error) {
	if strings.TrimSpace(name) == "" {
		return nil, nil
	}
	tl, err := timelines.FindByName(ctx, worldID, name)
	if err != nil {
		return nil, err
	}
	return tl, nil
}

// requireTimeline is resolveTimeline for operations that need a timeline.
func requireTimeline(ctx context.Context, timelines *services.TimelineService, worldID, name string) (*entities.Timeline, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("timeline is required (use --timeline flag)")
	}
	tl, err := resolveTimeline(ctx, timelines, worldID, name)
	if err != nil {
		return nil, fmt.Errorf("resolving timeline: %w", err)
	}
	return tl, nil
}
