package mocks

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/ersonp/lore-timeline/internal/domain/entities"
)

// RelationalDB is an in-memory mock implementation of ports.RelationalDB.
type RelationalDB struct {
	Timelines  map[string]*entities.Timeline
	Events     map[string]*entities.TimelineEvent
	Characters map[string]*entities.Character
	Audit      []entities.AuditEntry
	Err        error

	// eventOrder keeps insertion order, which ListEvents returns.
	eventOrder []string
}

// NewRelationalDB creates a new mock RelationalDB.
func NewRelationalDB() *RelationalDB {
	return &RelationalDB{
		Timelines:  make(map[string]*entities.Timeline),
		Events:     make(map[string]*entities.TimelineEvent),
		Characters: make(map[string]*entities.Character),
	}
}

// EnsureSchema creates the database schema if it doesn't exist.
func (m *RelationalDB) EnsureSchema(_ context.Context) error {
	return m.Err
}

// Close closes the database connection.
func (m *RelationalDB) Close() error {
	return nil
}

// Timeline methods.

// SaveTimeline saves or updates a timeline.
func (m *RelationalDB) SaveTimeline(_ context.Context, tl *entities.Timeline) error {
	if m.Err != nil {
		return m.Err
	}
	m.Timelines[tl.ID] = tl
	return nil
}

// FindTimelineByID finds a timeline by its ID.
func (m *RelationalDB) FindTimelineByID(_ context.Context, id string) (*entities.Timeline, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Timelines[id], nil
}

// FindTimelineByName finds a timeline by name.
func (m *RelationalDB) FindTimelineByName(_ context.Context, worldID, name string) (*entities.Timeline, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	for _, tl := range m.Timelines {
		if tl.WorldID == worldID && strings.EqualFold(tl.Name, strings.TrimSpace(name)) {
			return tl, nil
		}
	}
	return nil, nil
}

// ListTimelines lists the timelines of a world ordered by name.
func (m *RelationalDB) ListTimelines(_ context.Context, worldID string) ([]*entities.Timeline, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var result []*entities.Timeline
	for _, tl := range m.Timelines {
		if tl.WorldID == worldID {
			result = append(result, tl)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}

// DeleteTimeline deletes a timeline and its events.
func (m *RelationalDB) DeleteTimeline(_ context.Context, id string) error {
	if m.Err != nil {
		return m.Err
	}
	delete(m.Timelines, id)
	for eventID, ev := range m.Events {
		if ev.TimelineID == id {
			m.removeEvent(eventID)
		}
	}
	return nil
}

// Event methods.

// SaveEvent saves or updates an event.
func (m *RelationalDB) SaveEvent(_ context.Context, ev *entities.TimelineEvent) error {
	if m.Err != nil {
		return m.Err
	}
	if _, exists := m.Events[ev.ID]; !exists {
		m.eventOrder = append(m.eventOrder, ev.ID)
	}
	m.Events[ev.ID] = ev
	return nil
}

// FindEventByID finds an event by its ID.
func (m *RelationalDB) FindEventByID(_ context.Context, id string) (*entities.TimelineEvent, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Events[id], nil
}

// ListEvents lists the events of a timeline in insertion order.
func (m *RelationalDB) ListEvents(_ context.Context, timelineID string) ([]*entities.TimelineEvent, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var result []*entities.TimelineEvent
	for _, id := range m.eventOrder {
		if ev := m.Events[id]; ev != nil && ev.TimelineID == timelineID {
			result = append(result, ev)
		}
	}
	return result, nil
}

// DeleteEvent deletes an event by ID.
func (m *RelationalDB) DeleteEvent(_ context.Context, id string) error {
	if m.Err != nil {
		return m.Err
	}
	m.removeEvent(id)
	return nil
}

// CountEvents returns the number of events on a timeline.
func (m *RelationalDB) CountEvents(_ context.Context, timelineID string) (int, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	count := 0
	for _, ev := range m.Events {
		if ev.TimelineID == timelineID {
			count++
		}
	}
	return count, nil
}

func (m *RelationalDB) removeEvent(id string) {
	delete(m.Events, id)
	for i, existing := range m.eventOrder {
		if existing == id {
			m.eventOrder = append(m.eventOrder[:i], m.eventOrder[i+1:]...)
			break
		}
	}
}

// Character methods.

// SaveCharacter saves or updates a character.
func (m *RelationalDB) SaveCharacter(_ context.Context, c *entities.Character) error {
	if m.Err != nil {
		return m.Err
	}
	m.Characters[c.ID] = c
	return nil
}

// FindCharacterByID finds a character by its ID.
func (m *RelationalDB) FindCharacterByID(_ context.Context, id string) (*entities.Character, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Characters[id], nil
}

// FindCharacterByName finds a character by its normalized name.
func (m *RelationalDB) FindCharacterByName(_ context.Context, worldID, name string) (*entities.Character, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	normalized := entities.NormalizeName(name)
	for _, c := range m.Characters {
		if c.WorldID == worldID && c.NormalizedName == normalized {
			return c, nil
		}
	}
	return nil, nil
}

// ListCharacters lists the characters of a world ordered by name.
func (m *RelationalDB) ListCharacters(_ context.Context, worldID string) ([]*entities.Character, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var result []*entities.Character
	for _, c := range m.Characters {
		if c.WorldID == worldID {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].NormalizedName < result[j].NormalizedName
	})
	return result, nil
}

// DeleteCharacter deletes a character by ID.
func (m *RelationalDB) DeleteCharacter(_ context.Context, id string) error {
	if m.Err != nil {
		return m.Err
	}
	delete(m.Characters, id)
	return nil
}

// Audit log methods.

// LogAction records an action.
func (m *RelationalDB) LogAction(_ context.Context, action, subjectID string, details map[string]any) error {
	if m.Err != nil {
		return m.Err
	}
	m.Audit = append(m.Audit, entities.AuditEntry{
		ID:        int64(len(m.Audit) + 1),
		Action:    action,
		SubjectID: subjectID,
		Details:   details,
		CreatedAt: time.Now(),
	})
	return nil
}

// FindAuditLog finds audit log entries for a subject, newest first.
func (m *RelationalDB) FindAuditLog(_ context.Context, subjectID string) ([]entities.AuditEntry, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var result []entities.AuditEntry
	for i := len(m.Audit) - 1; i >= 0; i-- {
		if m.Audit[i].SubjectID == subjectID {
			result = append(result, m.Audit[i])
		}
	}
	return result, nil
}

// FindAuditLogByAction finds audit log entries by action type.
func (m *RelationalDB) FindAuditLogByAction(_ context.Context, action string, limit int) ([]entities.AuditEntry, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var result []entities.AuditEntry
	for i := len(m.Audit) - 1; i >= 0 && len(result) < limit; i-- {
		if m.Audit[i].Action == action {
			result = append(result, m.Audit[i])
		}
	}
	return result, nil
}
