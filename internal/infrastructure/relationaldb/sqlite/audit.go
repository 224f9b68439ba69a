package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ersonp/lore-timeline/internal/domain/entities"
)

const auditColumns = `id, action, subject_id, details, created_at`

// LogAction appends an entry to the audit log. Nil details are stored as NULL.
func (r *Repository) LogAction(ctx context.Context, action, subjectID string, details map[string]any) error {
	encoded, err := encodeDetails(details)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO audit_log (action, subject_id, details, created_at) VALUES (?, ?, ?, ?)`,
		action, nullString(subjectID), encoded, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("logging action: %w", err)
	}
	return nil
}

// FindAuditLog returns a subject's entries, newest first.
func (r *Repository) FindAuditLog(ctx context.Context, subjectID string) ([]entities.AuditEntry, error) {
	return r.queryAuditLog(ctx,
		`SELECT `+auditColumns+` FROM audit_log WHERE subject_id = ? ORDER BY created_at DESC, id DESC`,
		subjectID)
}

// FindAuditLogByAction returns up to limit entries for an action, newest first.
func (r *Repository) FindAuditLogByAction(ctx context.Context, action string, limit int) ([]entities.AuditEntry, error) {
	return r.queryAuditLog(ctx,
		`SELECT `+auditColumns+` FROM audit_log WHERE action = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		action, limit)
}

func (r *Repository) queryAuditLog(ctx context.Context, query string, args ...any) ([]entities.AuditEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying audit log: %w", err)
	}
	defer rows.Close()

	var entries []entities.AuditEntry
	for rows.Next() {
		entry, err := scanAuditEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func scanAuditEntry(s rowScanner) (entities.AuditEntry, error) {
	var (
		entry              entities.AuditEntry
		subjectID, details sql.NullString
	)
	if err := s.Scan(&entry.ID, &entry.Action, &subjectID, &details, &entry.CreatedAt); err != nil {
		return entry, fmt.Errorf("scanning audit entry: %w", err)
	}
	entry.SubjectID = subjectID.String

	decoded, err := decodeDetails(details)
	if err != nil {
		return entry, err
	}
	entry.Details = decoded
	return entry, nil
}

func encodeDetails(details map[string]any) (sql.NullString, error) {
	if details == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(details)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("marshaling details: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func decodeDetails(details sql.NullString) (map[string]any, error) {
	if !details.Valid || details.String == "" {
		return nil, nil
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(details.String), &decoded); err != nil {
		return nil, fmt.Errorf("unmarshaling details: %w", err)
	}
	return decoded, nil
}
