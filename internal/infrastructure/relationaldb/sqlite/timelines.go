package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ersonp/lore-timeline/internal/domain/entities"
)

const timelineColumns = `id, world_id, name, description, eras, created_at, updated_at`

// SaveTimeline saves or updates a timeline.
func (r *Repository) SaveTimeline(ctx context.Context, tl *entities.Timeline) error {
	query := `
		INSERT INTO timelines (id, world_id, name, normalized_name, description, eras, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			normalized_name = excluded.normalized_name,
			description = excluded.description,
			eras = excluded.eras,
			updated_at = excluded.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		tl.ID,
		tl.WorldID,
		tl.Name,
		entities.NormalizeName(tl.Name),
		nullString(tl.Description),
		nullString(tl.Eras),
		tl.CreatedAt,
		tl.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving timeline: %w", err)
	}
	return nil
}

// FindTimelineByID finds a timeline by its ID.
func (r *Repository) FindTimelineByID(ctx context.Context, id string) (*entities.Timeline, error) {
	query := `SELECT ` + timelineColumns + ` FROM timelines WHERE id = ?`
	return scanTimelineRow(r.db.QueryRowContext(ctx, query, id))
}

// FindTimelineByName finds a timeline by name (case-insensitive).
func (r *Repository) FindTimelineByName(ctx context.Context, worldID, name string) (*entities.Timeline, error) {
	query := `SELECT ` + timelineColumns + ` FROM timelines WHERE world_id = ? AND normalized_name = ?`
	return scanTimelineRow(r.db.QueryRowContext(ctx, query, worldID, entities.NormalizeName(name)))
}

// ListTimelines lists all timelines of a world ordered by name.
func (r *Repository) ListTimelines(ctx context.Context, worldID string) ([]*entities.Timeline, error) {
	query := `SELECT ` + timelineColumns + ` FROM timelines WHERE world_id = ? ORDER BY normalized_name`
	rows, err := r.db.QueryContext(ctx, query, worldID)
	if err != nil {
		return nil, fmt.Errorf("querying timelines: %w", err)
	}
	defer rows.Close()

	var timelines []*entities.Timeline
	for rows.Next() {
		tl, err := scanTimeline(rows)
		if err != nil {
			return nil, err
		}
		timelines = append(timelines, tl)
	}
	return timelines, rows.Err()
}

// DeleteTimeline deletes a timeline and its events. Characters that refer
// to it lose the reference.
func (r *Repository) DeleteTimeline(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	statements := []string{
		`DELETE FROM events WHERE timeline_id = ?`,
		`UPDATE characters SET timeline_id = NULL WHERE timeline_id = ?`,
		`DELETE FROM timelines WHERE id = ?`,
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return fmt.Errorf("deleting timeline: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing timeline delete: %w", err)
	}
	return nil
}

func scanTimelineRow(row *sql.Row) (*entities.Timeline, error) {
	tl, err := scanTimeline(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return tl, err
}

func scanTimeline(s rowScanner) (*entities.Timeline, error) {
	var tl entities.Timeline
	var description, eras sql.NullString
	err := s.Scan(
		&tl.ID,
		&tl.WorldID,
		&tl.Name,
		&description,
		&eras,
		&tl.CreatedAt,
		&tl.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning timeline: %w", err)
	}
	tl.Description = description.String
	tl.Eras = eras.String
	return &tl, nil
}
