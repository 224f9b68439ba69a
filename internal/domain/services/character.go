package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ersonp/lore-timeline/internal/domain/chrono"
	"github.com/ersonp/lore-timeline/internal/domain/entities"
	"github.com/ersonp/lore-timeline/internal/domain/ports"
)

var (
	// ErrCharacterNotFound is returned when a character does not exist.
	ErrCharacterNotFound = errors.New("character not found")
	// ErrCharacterExists is returned when creating a character whose name is taken.
	ErrCharacterExists = errors.New("character already exists")
)

// AgeResult is the age of a character at a point in story time.
type AgeResult struct {
	Character *entities.Character
	// Timeline supplies the era table; nil when none was involved.
	Timeline *entities.Timeline
	At       entities.EventDate
	chrono.AgeEstimate
}

// CharacterService manages characters and their ages.
type CharacterService struct {
	relationalDB ports.RelationalDB
	timelines    *TimelineService
	logger       *zap.Logger
}

// NewCharacterService creates a new CharacterService.
func NewCharacterService(relationalDB ports.RelationalDB, timelines *TimelineService, logger *zap.Logger) *CharacterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CharacterService{
		relationalDB: relationalDB,
		timelines:    timelines,
		logger:       logger,
	}
}

// Create adds a character. timelineName names the timeline whose eras the
// birth date is written in and may be empty.
func (s *CharacterService) Create(ctx context.Context, worldID, name, birthDate, timelineName string) (*entities.Character, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	existing, err := s.relationalDB.FindCharacterByName(ctx, worldID, name)
	if err != nil {
		return nil, fmt.Errorf("checking existing character: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrCharacterExists, name)
	}

	timelineID, err := s.resolveTimeline(ctx, worldID, timelineName)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	c := &entities.Character{
		ID:             uuid.New().String(),
		WorldID:        worldID,
		Name:           name,
		NormalizedName: entities.NormalizeName(name),
		BirthDate:      strings.TrimSpace(birthDate),
		TimelineID:     timelineID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.relationalDB.SaveCharacter(ctx, c); err != nil {
		return nil, fmt.Errorf("saving character: %w", err)
	}

	s.warnUnreadableBirthDate(c)
	logAction(ctx, s.relationalDB, s.logger, entities.ActionCharacterCreated, c.ID, map[string]any{
		"name":       c.Name,
		"birth_date": c.BirthDate,
	})
	return c, nil
}

// FindByName returns a character by name (case-insensitive).
func (s *CharacterService) FindByName(ctx context.Context, worldID, name string) (*entities.Character, error) {
	c, err := s.relationalDB.FindCharacterByName(ctx, worldID, name)
	if err != nil {
		return nil, fmt.Errorf("finding character: %w", err)
	}
	if c == nil {
		return nil, fmt.Errorf("%w: %s", ErrCharacterNotFound, name)
	}
	return c, nil
}

// List returns all characters of a world.
func (s *CharacterService) List(ctx context.Context, worldID string) ([]*entities.Character, error) {
	return s.relationalDB.ListCharacters(ctx, worldID)
}

// SetBirthDate changes a character's birth date and, when timelineName is
// not empty, the timeline it refers to.
func (s *CharacterService) SetBirthDate(ctx context.Context, worldID, name, birthDate, timelineName string) (*entities.Character, error) {
	c, err := s.FindByName(ctx, worldID, name)
	if err != nil {
		return nil, err
	}

	if timelineName != "" {
		timelineID, err := s.resolveTimeline(ctx, worldID, timelineName)
		if err != nil {
			return nil, err
		}
		c.TimelineID = timelineID
	}

	previous := c.BirthDate
	c.BirthDate = strings.TrimSpace(birthDate)
	c.UpdatedAt = time.Now()
	if err := s.relationalDB.SaveCharacter(ctx, c); err != nil {
		return nil, fmt.Errorf("saving character: %w", err)
	}

	s.warnUnreadableBirthDate(c)
	logAction(ctx, s.relationalDB, s.logger, entities.ActionCharacterUpdated, c.ID, map[string]any{
		"from": previous,
		"to":   c.BirthDate,
	})
	return c, nil
}

// Delete removes a character.
func (s *CharacterService) Delete(ctx context.Context, worldID, name string) error {
	c, err := s.FindByName(ctx, worldID, name)
	if err != nil {
		return err
	}
	if err := s.relationalDB.DeleteCharacter(ctx, c.ID); err != nil {
		return fmt.Errorf("deleting character: %w", err)
	}
	logAction(ctx, s.relationalDB, s.logger, entities.ActionCharacterDeleted, c.ID, map[string]any{"name": c.Name})
	return nil
}

// AgeAt computes a character's age at a date. The era table comes from
// timelineName, or from the character's own timeline when it is empty.
func (s *CharacterService) AgeAt(ctx context.Context, worldID, name, timelineName string, at entities.EventDate) (*AgeResult, error) {
	c, err := s.FindByName(ctx, worldID, name)
	if err != nil {
		return nil, err
	}

	var tl *entities.Timeline
	switch {
	case timelineName != "":
		tl, err = s.timelines.FindByName(ctx, worldID, timelineName)
	case c.TimelineID != "":
		tl, err = s.timelines.Get(ctx, c.TimelineID)
	}
	if err != nil {
		return nil, err
	}

	return s.age(c, tl, at), nil
}

// AgeAtEvent computes a character's age at a stored event, using the era
// table of the event's timeline.
func (s *CharacterService) AgeAtEvent(ctx context.Context, worldID, name, eventID string) (*AgeResult, error) {
	c, err := s.FindByName(ctx, worldID, name)
	if err != nil {
		return nil, err
	}

	ev, err := s.timelines.Event(ctx, eventID)
	if err != nil {
		return nil, err
	}

	tl, err := s.timelines.Get(ctx, ev.TimelineID)
	if err != nil {
		return nil, err
	}

	return s.age(c, tl, ev.Date), nil
}

func (s *CharacterService) age(c *entities.Character, tl *entities.Timeline, at entities.EventDate) *AgeResult {
	var eras []entities.EraConfig
	if tl != nil {
		eras = chrono.ParseEraConfig(tl.Eras)
	}

	est := chrono.EstimateAge(c.BirthDate, at, eras)
	if !est.Known {
		s.logger.Debug("age unknown",
			zap.String("character", c.Name),
			zap.String("at", chrono.FormatEventDate(at)),
			zap.String("reason", string(est.Reason)))
	}

	return &AgeResult{
		Character:   c,
		Timeline:    tl,
		At:          at,
		AgeEstimate: est,
	}
}

func (s *CharacterService) resolveTimeline(ctx context.Context, worldID, timelineName string) (string, error) {
	if strings.TrimSpace(timelineName) == "" {
		return "", nil
	}
	tl, err := s.timelines.FindByName(ctx, worldID, timelineName)
	if err != nil {
		return "", err
	}
	return tl.ID, nil
}

func (s *CharacterService) warnUnreadableBirthDate(c *entities.Character) {
	if c.BirthDate == "" {
		return
	}
	if _, ok := chrono.ParseEraDate(c.BirthDate); ok {
		return
	}
	if _, ok := chrono.ParsePlainDate(c.BirthDate); ok {
		return
	}
	s.logger.Warn("birth date is not a recognised date; ages will be unknown",
		zap.String("character", c.Name),
		zap.String("birth_date", c.BirthDate))
}
