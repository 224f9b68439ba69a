package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ersonp/lore-timeline/internal/domain/entities"
)

const characterColumns = `id, world_id, name, normalized_name, birth_date, timeline_id, created_at, updated_at`

// SaveCharacter saves or updates a character.
func (r *Repository) SaveCharacter(ctx context.Context, c *entities.Character) error {
	query := `
		INSERT INTO characters (id, world_id, name, normalized_name, birth_date, timeline_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			normalized_name = excluded.normalized_name,
			birth_date = excluded.birth_date,
			timeline_id = excluded.timeline_id,
			updated_at = excluded.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		c.ID,
		c.WorldID,
		c.Name,
		entities.NormalizeName(c.Name),
		nullString(c.BirthDate),
		nullString(c.TimelineID),
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving character: %w", err)
	}
	return nil
}

// FindCharacterByID finds a character by its ID.
func (r *Repository) FindCharacterByID(ctx context.Context, id string) (*entities.Character, error) {
	query := `SELECT ` + characterColumns + ` FROM characters WHERE id = ?`
	c, err := scanCharacter(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

// FindCharacterByName finds a character by its normalized name.
func (r *Repository) FindCharacterByName(ctx context.Context, worldID, name string) (*entities.Character, error) {
	query := `SELECT ` + characterColumns + ` FROM characters WHERE world_id = ? AND normalized_name = ?`
	c, err := scanCharacter(r.db.QueryRowContext(ctx, query, worldID, entities.NormalizeName(name)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

// ListCharacters lists all characters of a world ordered by name.
func (r *Repository) ListCharacters(ctx context.Context, worldID string) ([]*entities.Character, error) {
	query := `SELECT ` + characterColumns + ` FROM characters WHERE world_id = ? ORDER BY normalized_name`
	rows, err := r.db.QueryContext(ctx, query, worldID)
	if err != nil {
		return nil, fmt.Errorf("querying characters: %w", err)
	}
	defer rows.Close()

	var characters []*entities.Character
	for rows.Next() {
		c, err := scanCharacter(rows)
		if err != nil {
			return nil, err
		}
		characters = append(characters, c)
	}
	return characters, rows.Err()
}

// DeleteCharacter deletes a character by ID.
func (r *Repository) DeleteCharacter(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM characters WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting character: %w", err)
	}
	return nil
}

func scanCharacter(s rowScanner) (*entities.Character, error) {
	var c entities.Character
	var birthDate, timelineID sql.NullString
	err := s.Scan(
		&c.ID,
		&c.WorldID,
		&c.Name,
		&c.NormalizedName,
		&birthDate,
		&timelineID,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning character: %w", err)
	}
	c.BirthDate = birthDate.String
	c.TimelineID = timelineID.String
	return &c, nil
}
