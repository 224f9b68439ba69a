package handlers

import (
	"context"
	"fmt"

	"github.com/ersonp/lore-timeline/internal/domain/entities"
	"github.com/ersonp/lore-timeline/internal/domain/services"
)

// QueryHandler handles event queries.
type QueryHandler struct {
	queryService *services.QueryService
	timelines    *services.TimelineService
}

// NewQueryHandler creates a new query handler.
func NewQueryHandler(queryService *services.QueryService, timelines *services.TimelineService) *QueryHandler {
	return &QueryHandler{
		queryService: queryService,
		timelines:    timelines,
	}
}

// QueryOptions narrows a query.
type QueryOptions struct {
	Limit         int
	Timeline      string // Timeline name; empty searches every timeline
	Chronological bool   // Order results by date instead of relevance
}

// QueryResult contains the result of a query.
type QueryResult struct {
	Query  string
	Events []entities.TimelineEvent
}

// Handle searches for events matching the query.
func (h *QueryHandler) Handle(ctx context.Context, worldID, query string, opts QueryOptions) (*QueryResult, error) {
	searchOpts := services.SearchOptions{
		Limit:         opts.Limit,
		Chronological: opts.Chronological,
	}

	tl, err := resolveTimeline(ctx, h.timelines, worldID, opts.Timeline)
	if err != nil {
		return nil, err
	}
	if tl != nil {
		searchOpts.TimelineID = tl.ID
	}

	events, err := h.queryService.Search(ctx, query, searchOpts)
	if err != nil {
		return nil, fmt.Errorf("searching events: %w", err)
	}

	return &QueryResult{
		Query:  query,
		Events: events,
	}, nil
}
