// Package handlers contains application use case handlers.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ersonp/lore-timeline/internal/domain/ports"
	"github.com/ersonp/lore-timeline/internal/infrastructure/config"
	embedder "github.com/ersonp/lore-timeline/internal/infrastructure/embedder/openai"
)

// InitHandler bootstraps and tears down worlds: config directory, worlds
// file entry, vector collection and per-world database.
type InitHandler struct {
	collectionManager ports.CollectionManager
}

// NewInitHandler creates a new init handler. collectionManager manages the
// world's collection and may be nil when no vector store is used.
func NewInitHandler(collectionManager ports.CollectionManager) *InitHandler {
	return &InitHandler{
		collectionManager: collectionManager,
	}
}

// InitResult contains the result of initialization.
type InitResult struct {
	ConfigPath     string
	CollectionName string
	// Initialized is true when the .lore directory was created by this call.
	Initialized bool
}

// WorldOptions are the optional settings of a new world.
type WorldOptions struct {
	Description string
	// DefaultEras is the era definition for timelines created without one.
	DefaultEras string
}

// Handle creates a world, initializing the .lore directory if needed.
func (h *InitHandler) Handle(ctx context.Context, basePath, world string, opts WorldOptions) (*InitResult, error) {
	world = strings.TrimSpace(world)
	if world == "" {
		return nil, errors.New("world name cannot be empty")
	}

	result := &InitResult{
		ConfigPath:     config.ConfigFilePath(basePath),
		CollectionName: config.GenerateCollectionName(world),
	}

	if !config.Exists(basePath) {
		if err := config.WriteDefault(basePath); err != nil {
			return nil, fmt.Errorf("writing default config: %w", err)
		}
		result.Initialized = true
	}

	worlds, err := config.LoadWorlds(basePath)
	if err != nil {
		return nil, fmt.Errorf("loading worlds: %w", err)
	}
	if worlds.Exists(world) {
		return nil, fmt.Errorf("world %q already exists", world)
	}

	if h.collectionManager != nil {
		if err := h.collectionManager.EnsureCollection(ctx, embedder.VectorSize); err != nil {
			return nil, fmt.Errorf("creating collection: %w", err)
		}
	}

	worlds.Add(world, config.WorldEntry{
		Collection:  result.CollectionName,
		Description: opts.Description,
		DefaultEras: strings.TrimSpace(opts.DefaultEras),
	})
	if err := worlds.Save(basePath); err != nil {
		return nil, fmt.Errorf("saving worlds: %w", err)
	}

	return result, nil
}

// HandleDelete removes a world: its collection, its database and its
// worlds file entry.
func (h *InitHandler) HandleDelete(ctx context.Context, basePath, world string) error {
	worlds, err := config.LoadWorlds(basePath)
	if err != nil {
		return fmt.Errorf("loading worlds: %w", err)
	}
	if _, err := worlds.Get(world); err != nil {
		return err
	}

	if h.collectionManager != nil {
		if err := h.collectionManager.DeleteCollection(ctx); err != nil {
			return fmt.Errorf("deleting collection: %w", err)
		}
	}

	if err := os.RemoveAll(config.WorldDir(basePath, world)); err != nil {
		return fmt.Errorf("removing world data: %w", err)
	}

	worlds.Remove(world)
	if err := worlds.Save(basePath); err != nil {
		return fmt.Errorf("saving worlds: %w", err)
	}
	return nil
}
