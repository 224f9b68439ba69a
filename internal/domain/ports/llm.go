// Package ports defines interfaces for external service communication.
package ports

import "context"

// LLMClient defines the interface for LLM operations.
type LLMClient interface {
	// ExtractEvents extracts dated events from the given prose. eras is the
	// timeline's era ordering, offered to the model so that it writes dates
	// with designators the timeline knows.
	ExtractEvents(ctx context.Context, text string, eras []string) ([]ExtractedEvent, error)
}

// ExtractedEvent is an event as the model reported it. Date is free text
// such as "SE 300-04-02" or "~BE 12"; it is parsed by the caller.
type ExtractedEvent struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Date        string   `json:"date"`
	Characters  []string `json:"characters,omitempty"`
}
