package ports

import (
	"context"

	"github.com/ersonp/lore-timeline/internal/domain/entities"
)

// RelationalDB defines the interface for relational database operations.
// Find methods return nil and no error when nothing matches.
type RelationalDB interface {
	// EnsureSchema creates the database schema if it doesn't exist.
	EnsureSchema(ctx context.Context) error

	// Close closes the database connection.
	Close() error

	// Timeline operations

	// SaveTimeline saves or updates a timeline.
	SaveTimeline(ctx context.Context, timeline *entities.Timeline) error

	// FindTimelineByID finds a timeline by its ID.
	FindTimelineByID(ctx context.Context, id string) (*entities.Timeline, error)

	// FindTimelineByName finds a timeline by name (case-insensitive).
	FindTimelineByName(ctx context.Context, worldID, name string) (*entities.Timeline, error)

	// ListTimelines lists all timelines of a world ordered by name.
	ListTimelines(ctx context.Context, worldID string) ([]*entities.Timeline, error)

	// DeleteTimeline deletes a timeline and its events.
	DeleteTimeline(ctx context.Context, id string) error

	// Event operations

	// SaveEvent saves or updates a timeline event.
	SaveEvent(ctx context.Context, event *entities.TimelineEvent) error

	// FindEventByID finds an event by its ID.
	FindEventByID(ctx context.Context, id string) (*entities.TimelineEvent, error)

	// ListEvents lists the events of a timeline in insertion order.
	ListEvents(ctx context.Context, timelineID string) ([]*entities.TimelineEvent, error)

	// DeleteEvent deletes an event by ID.
	DeleteEvent(ctx context.Context, id string) error

	// CountEvents returns the number of events on a timeline.
	CountEvents(ctx context.Context, timelineID string) (int, error)

	// Character operations

	// SaveCharacter saves or updates a character.
	SaveCharacter(ctx context.Context, character *entities.Character) error

	// FindCharacterByID finds a character by its ID.
	FindCharacterByID(ctx context.Context, id string) (*entities.Character, error)

	// FindCharacterByName finds a character by its normalized name.
	FindCharacterByName(ctx context.Context, worldID, name string) (*entities.Character, error)

	// ListCharacters lists all characters of a world ordered by name.
	ListCharacters(ctx context.Context, worldID string) ([]*entities.Character, error)

	// DeleteCharacter deletes a character by ID.
	DeleteCharacter(ctx context.Context, id string) error

	// LogAction logs an action to the audit log.
	LogAction(ctx context.Context, action, subjectID string, details map[string]any) error

	// FindAuditLog finds audit log entries for a subject, newest first.
	FindAuditLog(ctx context.Context, subjectID string) ([]entities.AuditEntry, error)

	// FindAuditLogByAction finds audit log entries by action type.
	FindAuditLogByAction(ctx context.Context, action string, limit int) ([]entities.AuditEntry, error)
}
