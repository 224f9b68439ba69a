package ports

import (
	"context"

	"github.com/ersonp/lore-timeline/internal/domain/entities"
)

// VectorDB defines the interface for the semantic event index.
type VectorDB interface {
	// Save stores an event with its embedding.
	Save(ctx context.Context, event entities.TimelineEvent) error

	// SaveBatch stores multiple events.
	SaveBatch(ctx context.Context, events []entities.TimelineEvent) error

	// FindByID retrieves an indexed event by its ID.
	FindByID(ctx context.Context, id string) (entities.TimelineEvent, error)

	// Search performs a semantic search and returns similar events.
	Search(ctx context.Context, embedding []float32, limit int) ([]entities.TimelineEvent, error)

	// SearchByTimeline performs a semantic search restricted to one timeline.
	SearchByTimeline(ctx context.Context, embedding []float32, timelineID string, limit int) ([]entities.TimelineEvent, error)

	// Delete removes an event by its ID.
	Delete(ctx context.Context, id string) error

	// DeleteByTimeline removes every event of a timeline.
	DeleteByTimeline(ctx context.Context, timelineID string) error
}
