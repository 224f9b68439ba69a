// Package entities contains core domain data structures.
package entities

import (
	"strings"
	"time"
)

// Character is a named person of a world. BirthDate is free text as the
// author wrote it, e.g. "BE 5-01-01" or "1999-05-01".
type Character struct {
	ID             string    `json:"id"`
	WorldID        string    `json:"world_id"`
	Name           string    `json:"name"`
	NormalizedName string    `json:"normalized_name"` // Lowercase for matching
	BirthDate      string    `json:"birth_date,omitempty"`
	TimelineID     string    `json:"timeline_id,omitempty"` // Timeline whose eras the birth date refers to
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NormalizeName converts a name to lowercase for case-insensitive matching.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
