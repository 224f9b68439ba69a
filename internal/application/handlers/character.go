package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ersonp/lore-timeline/internal/domain/chrono"
	"github.com/ersonp/lore-timeline/internal/domain/entities"
	"github.com/ersonp/lore-timeline/internal/domain/services"
)

// CharacterHandler handles character operations.
type CharacterHandler struct {
	characters *services.CharacterService
}

// NewCharacterHandler creates a new CharacterHandler.
func NewCharacterHandler(characters *services.CharacterService) *CharacterHandler {
	return &CharacterHandler{
		characters: characters,
	}
}

// AgeOptions selects the point in story time an age is computed at.
// Exactly one of At and EventID must be set.
type AgeOptions struct {
	At       string // Date text, e.g. "SE 3"
	EventID  string // Use the date of this event
	Timeline string // Overrides the character's own timeline (At only)
}

// HandleCreate creates a character.
func (h *CharacterHandler) HandleCreate(ctx context.Context, worldID, name, born, timeline string) (*entities.Character, error) {
	return h.characters.Create(ctx, worldID, name, born, timeline)
}

// HandleList returns all characters of a world.
func (h *CharacterHandler) HandleList(ctx context.Context, worldID string) ([]*entities.Character, error) {
	return h.characters.List(ctx, worldID)
}

// HandleSetBirthDate updates a character's birth date.
func (h *CharacterHandler) HandleSetBirthDate(ctx context.Context, worldID, name, born, timeline string) (*entities.Character, error) {
	return h.characters.SetBirthDate(ctx, worldID, name, born, timeline)
}

// HandleDelete removes a character.
func (h *CharacterHandler) HandleDelete(ctx context.Context, worldID, name string) error {
	return h.characters.Delete(ctx, worldID, name)
}

// HandleAge computes a character's age at a date or event.
func (h *CharacterHandler) HandleAge(ctx context.Context, worldID, name string, opts AgeOptions) (*services.AgeResult, error) {
	at := strings.TrimSpace(opts.At)
	eventID := strings.TrimSpace(opts.EventID)

	switch {
	case at != "" && eventID != "":
		return nil, errors.New("use either --at or --event, not both")
	case eventID != "":
		return h.characters.AgeAtEvent(ctx, worldID, name, eventID)
	case at != "":
		date := chrono.ParseEventDate(at)
		if !date.IsResolved() {
			return nil, fmt.Errorf("unreadable date %q", at)
		}
		return h.characters.AgeAt(ctx, worldID, name, opts.Timeline, date)
	default:
		return nil, errors.New("a date (--at) or an event (--event) is required")
	}
}
