// Package mocks provides mock implementations for testing.
package mocks

import (
	"context"

	"github.com/ersonp/lore-timeline/internal/domain/ports"
)

// LLMClient is a mock implementation of ports.LLMClient.
type LLMClient struct {
	Events     []ports.ExtractedEvent
	ExtractErr error

	// Call tracking
	ExtractCallCount int
	LastEras         []string
}

// ExtractEvents returns the configured events or error.
func (m *LLMClient) ExtractEvents(ctx context.Context, text string, eras []string) ([]ports.ExtractedEvent, error) {
	m.ExtractCallCount++
	m.LastEras = eras
	if m.ExtractErr != nil {
		return nil, m.ExtractErr
	}
	return m.Events, nil
}
