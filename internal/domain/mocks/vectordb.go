package mocks

import (
	"context"
	"fmt"

	"github.com/ersonp/lore-timeline/internal/domain/entities"
)

// VectorDB is a mock implementation of ports.VectorDB.
type VectorDB struct {
	Events []entities.TimelineEvent
	Err    error

	// Collection errors (separate from Err for fine-grained control)
	EnsureCollectionErr error
	DeleteCollectionErr error

	// Call tracking
	SaveCallCount             int
	SaveBatchCallCount        int
	SaveBatchLastEvents       []entities.TimelineEvent
	DeleteCallCount           int
	DeletedTimelines          []string
	EnsureCollectionCallCount int
	DeleteCollectionCallCount int
}

// EnsureCollection creates the collection if it doesn't exist.
func (m *VectorDB) EnsureCollection(ctx context.Context, vectorSize uint64) error {
	m.EnsureCollectionCallCount++
	return m.EnsureCollectionErr
}

// DeleteCollection removes the collection and all its data.
func (m *VectorDB) DeleteCollection(ctx context.Context) error {
	m.DeleteCollectionCallCount++
	return m.DeleteCollectionErr
}

// Save stores a single event.
func (m *VectorDB) Save(ctx context.Context, event entities.TimelineEvent) error {
	m.SaveCallCount++
	if m.Err != nil {
		return m.Err
	}
	m.Events = append(m.Events, event)
	return nil
}

// SaveBatch stores multiple events.
func (m *VectorDB) SaveBatch(ctx context.Context, events []entities.TimelineEvent) error {
	m.SaveBatchCallCount++
	m.SaveBatchLastEvents = events
	if m.Err != nil {
		return m.Err
	}
	m.Events = append(m.Events, events...)
	return nil
}

// FindByID retrieves an event by ID.
func (m *VectorDB) FindByID(ctx context.Context, id string) (entities.TimelineEvent, error) {
	if m.Err != nil {
		return entities.TimelineEvent{}, m.Err
	}
	for i := range m.Events {
		if m.Events[i].ID == id {
			return m.Events[i], nil
		}
	}
	return entities.TimelineEvent{}, fmt.Errorf("event not found: %s", id)
}

// Search returns the first limit stored events.
func (m *VectorDB) Search(ctx context.Context, embedding []float32, limit int) ([]entities.TimelineEvent, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if limit > len(m.Events) {
		return m.Events, nil
	}
	return m.Events[:limit], nil
}

// SearchByTimeline returns the first limit stored events of a timeline.
func (m *VectorDB) SearchByTimeline(ctx context.Context, embedding []float32, timelineID string, limit int) ([]entities.TimelineEvent, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var filtered []entities.TimelineEvent
	for i := range m.Events {
		if m.Events[i].TimelineID == timelineID {
			filtered = append(filtered, m.Events[i])
		}
	}
	if limit > len(filtered) {
		return filtered, nil
	}
	return filtered[:limit], nil
}

// Delete removes an event by ID.
func (m *VectorDB) Delete(ctx context.Context, id string) error {
	m.DeleteCallCount++
	if m.Err != nil {
		return m.Err
	}
	for i := range m.Events {
		if m.Events[i].ID == id {
			m.Events = append(m.Events[:i], m.Events[i+1:]...)
			break
		}
	}
	return nil
}

// DeleteByTimeline removes all events of a timeline.
func (m *VectorDB) DeleteByTimeline(ctx context.Context, timelineID string) error {
	m.DeletedTimelines = append(m.DeletedTimelines, timelineID)
	if m.Err != nil {
		return m.Err
	}
	kept := m.Events[:0]
	for _, ev := range m.Events {
		if ev.TimelineID != timelineID {
			kept = append(kept, ev)
		}
	}
	m.Events = kept
	return nil
}
