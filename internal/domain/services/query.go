package services

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/ersonp/lore-timeline/internal/domain/chrono"
	"github.com/ersonp/lore-timeline/internal/domain/entities"
	"github.com/ersonp/lore-timeline/internal/domain/ports"
)

// DefaultSearchLimit is the default number of results to return.
const DefaultSearchLimit = 10

// ErrSearchUnavailable is returned when no embedder or vector store is configured.
var ErrSearchUnavailable = errors.New("semantic search is not configured")

// SearchOptions narrows and orders a semantic search.
type SearchOptions struct {
	Limit      int
	TimelineID string // Restrict results to one timeline
	// Chronological reorders results by date instead of relevance.
	Chronological bool
}

// QueryService handles semantic search over indexed events.
type QueryService struct {
	embedder     ports.Embedder
	vectorDB     ports.VectorDB
	relationalDB ports.RelationalDB
}

// NewQueryService creates a new query service.
func NewQueryService(embedder ports.Embedder, vectorDB ports.VectorDB, relationalDB ports.RelationalDB) *QueryService {
	return &QueryService{
		embedder:     embedder,
		vectorDB:     vectorDB,
		relationalDB: relationalDB,
	}
}

// Search finds events semantically similar to the query.
func (s *QueryService) Search(ctx context.Context, query string, opts SearchOptions) ([]entities.TimelineEvent, error) {
	if s.embedder == nil || s.vectorDB == nil {
		return nil, ErrSearchUnavailable
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("generating query embedding: %w", err)
	}

	var events []entities.TimelineEvent
	if opts.TimelineID != "" {
		events, err = s.vectorDB.SearchByTimeline(ctx, embedding, opts.TimelineID, limit)
	} else {
		events, err = s.vectorDB.Search(ctx, embedding, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("searching events: %w", err)
	}

	if opts.Chronological {
		if err := s.sortChronologically(ctx, events); err != nil {
			return nil, err
		}
	}

	return events, nil
}

// sortChronologically orders events by date, each against the era ordering
// of its own timeline. Results from different timelines are grouped by
// timeline first since their keys are not comparable.
func (s *QueryService) sortChronologically(ctx context.Context, events []entities.TimelineEvent) error {
	eraOrders := make(map[string][]string)
	position := make(map[string]int)
	for i := range events {
		id := events[i].TimelineID
		if _, ok := eraOrders[id]; ok {
			continue
		}
		tl, err := s.relationalDB.FindTimelineByID(ctx, id)
		if err != nil {
			return fmt.Errorf("finding timeline: %w", err)
		}
		if tl != nil {
			eraOrders[id] = chrono.EraNames(chrono.ParseEraConfig(tl.Eras))
		} else {
			eraOrders[id] = nil
		}
		position[id] = len(position)
	}

	slices.SortStableFunc(events, func(a, b entities.TimelineEvent) int {
		if a.TimelineID != b.TimelineID {
			return position[a.TimelineID] - position[b.TimelineID]
		}
		return chrono.Compare(&a.Date, &b.Date, eraOrders[a.TimelineID])
	})
	return nil
}
