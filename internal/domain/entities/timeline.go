package entities

import "time"

// Timeline is an ordered story calendar owned by a world. Eras holds the raw
// era definition as the user wrote it (comma list or JSON).
type Timeline struct {
	ID          string    `json:"id"`
	WorldID     string    `json:"world_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Eras        string    `json:"eras,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TimelineEvent is a dated entry on a timeline.
type TimelineEvent struct {
	ID          string    `json:"id"`
	TimelineID  string    `json:"timeline_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Date        EventDate `json:"date"`
	SourceFile  string    `json:"source_file,omitempty"`
	Embedding   []float32 `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}
