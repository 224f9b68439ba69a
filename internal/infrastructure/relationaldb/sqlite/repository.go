// Package sqlite provides a SQLite implementation of the RelationalDB interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/ersonp/lore-timeline/internal/infrastructure/config"
)

// memoryPath opens a private in-memory database.
const memoryPath = ":memory:"

const schema = `
-- Timelines (story calendars with their era definition)
CREATE TABLE IF NOT EXISTS timelines (
	id TEXT PRIMARY KEY,
	world_id TEXT NOT NULL,
	name TEXT NOT NULL,
	normalized_name TEXT NOT NULL,
	description TEXT,
	eras TEXT,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(world_id, normalized_name)
);
CREATE INDEX IF NOT EXISTS idx_timelines_world ON timelines(world_id);

-- Timeline events (date is the JSON encoded EventDate)
CREATE TABLE IF NOT EXISTS events (
	id TEXT PRIMARY KEY,
	timeline_id TEXT NOT NULL REFERENCES timelines(id) ON DELETE CASCADE,
	title TEXT NOT NULL,
	description TEXT,
	date_kind TEXT,
	date TEXT,
	source_file TEXT,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_events_timeline ON events(timeline_id);

-- Characters (birth date is free text in the era notation)
CREATE TABLE IF NOT EXISTS characters (
	id TEXT PRIMARY KEY,
	world_id TEXT NOT NULL,
	name TEXT NOT NULL,
	normalized_name TEXT NOT NULL,
	birth_date TEXT,
	timeline_id TEXT REFERENCES timelines(id) ON DELETE SET NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(world_id, normalized_name)
);
CREATE INDEX IF NOT EXISTS idx_characters_world ON characters(world_id);

-- Audit log (one row per change, details as JSON)
CREATE TABLE IF NOT EXISTS audit_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	action TEXT NOT NULL,
	subject_id TEXT,
	details TEXT,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_audit_log_subject ON audit_log(subject_id);
CREATE INDEX IF NOT EXISTS idx_audit_log_action ON audit_log(action);
CREATE INDEX IF NOT EXISTS idx_audit_log_created ON audit_log(created_at);
`

// pragmas run on the single connection right after opening.
var pragmas = []struct{ setting, what string }{
	{"foreign_keys = ON", "enabling foreign keys"},
	{"journal_mode = WAL", "enabling WAL mode"},
	{"busy_timeout = 5000", "setting busy timeout"},
}

// Repository implements ports.RelationalDB using SQLite.
type Repository struct {
	db   *sql.DB
	path string
}

// NewRepository creates a new SQLite repository.
func NewRepository(cfg config.SQLiteConfig) (*Repository, error) {
	if cfg.Path == "" {
		return nil, errors.New("sqlite path is required")
	}

	if cfg.Path != memoryPath {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	// PRAGMAs are per connection, and each connection to ":memory:" is a
	// separate database. One connection keeps both consistent.
	db.SetMaxOpenConns(1)

	for _, p := range pragmas {
		if _, err := db.Exec("PRAGMA " + p.setting); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", p.what, err)
		}
	}

	return &Repository{
		db:   db,
		path: cfg.Path,
	}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Path returns the database file path.
func (r *Repository) Path() string {
	return r.path
}

// EnsureSchema creates the tables and indexes if they do not exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// nullString maps "" to NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}
