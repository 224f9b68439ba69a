package entities

import "time"

// Audit actions recorded by the services.
const (
	ActionTimelineCreated  = "timeline_created"
	ActionTimelineDeleted  = "timeline_deleted"
	ActionErasUpdated      = "eras_updated"
	ActionEventAdded       = "event_added"
	ActionEventRemoved     = "event_removed"
	ActionCharacterCreated = "character_created"
	ActionCharacterUpdated = "character_updated"
	ActionCharacterDeleted = "character_deleted"
)

// AuditEntry represents a logged action in the system.
type AuditEntry struct {
	ID        int64          `json:"id"`
	Action    string         `json:"action"`
	SubjectID string         `json:"subject_id,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
