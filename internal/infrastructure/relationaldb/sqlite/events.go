package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ersonp/lore-timeline/internal/domain/entities"
)

const eventColumns = `id, timeline_id, title, description, date, source_file, created_at`

// SaveEvent saves or updates a timeline event.
func (r *Repository) SaveEvent(ctx context.Context, ev *entities.TimelineEvent) error {
	date, err := json.Marshal(ev.Date)
	if err != nil {
		return fmt.Errorf("marshaling event date: %w", err)
	}

	query := `
		INSERT INTO events (id, timeline_id, title, description, date_kind, date, source_file, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			timeline_id = excluded.timeline_id,
			title = excluded.title,
			description = excluded.description,
			date_kind = excluded.date_kind,
			date = excluded.date,
			source_file = excluded.source_file
	`
	_, err = r.db.ExecContext(ctx, query,
		ev.ID,
		ev.TimelineID,
		ev.Title,
		nullString(ev.Description),
		nullString(string(ev.Date.Kind)),
		string(date),
		nullString(ev.SourceFile),
		ev.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving event: %w", err)
	}
	return nil
}

// FindEventByID finds an event by its ID.
func (r *Repository) FindEventByID(ctx context.Context, id string) (*entities.TimelineEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = ?`
	ev, err := scanEvent(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return ev, err
}

// ListEvents lists the events of a timeline in insertion order.
func (r *Repository) ListEvents(ctx context.Context, timelineID string) ([]*entities.TimelineEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE timeline_id = ? ORDER BY rowid`
	rows, err := r.db.QueryContext(ctx, query, timelineID)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	var events []*entities.TimelineEvent
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// DeleteEvent deletes an event by ID.
func (r *Repository) DeleteEvent(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting event: %w", err)
	}
	return nil
}

// CountEvents returns the number of events on a timeline.
func (r *Repository) CountEvents(ctx context.Context, timelineID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events WHERE timeline_id = ?`, timelineID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting events: %w", err)
	}
	return count, nil
}

func scanEvent(s rowScanner) (*entities.TimelineEvent, error) {
	var ev entities.TimelineEvent
	var description, date, sourceFile sql.NullString
	err := s.Scan(
		&ev.ID,
		&ev.TimelineID,
		&ev.Title,
		&description,
		&date,
		&sourceFile,
		&ev.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning event: %w", err)
	}

	ev.Description = description.String
	ev.SourceFile = sourceFile.String
	if date.Valid && date.String != "" {
		if err := json.Unmarshal([]byte(date.String), &ev.Date); err != nil {
			return nil, fmt.Errorf("unmarshaling event date: %w", err)
		}
	}
	return &ev, nil
}
