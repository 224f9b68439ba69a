package config

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// maxListedWorlds caps the names suggested when a world is not found.
const maxListedWorlds = 5

// WorldsConfig is the .lore/worlds.yaml registry.
type WorldsConfig struct {
	Worlds map[string]WorldEntry `yaml:"worlds,omitempty"`
}

// WorldEntry describes one world. DefaultEras is the era definition given
// to timelines created in the world without one of their own.
type WorldEntry struct {
	Collection  string `yaml:"collection"`
	Description string `yaml:"description,omitempty"`
	DefaultEras string `yaml:"default_eras,omitempty"`
}

// ErasOr returns the world's default era definition, or fallback when the
// world has none.
func (e WorldEntry) ErasOr(fallback string) string {
	if strings.TrimSpace(e.DefaultEras) != "" {
		return e.DefaultEras
	}
	return fallback
}

// LoadWorlds reads the worlds registry. A missing file is an empty registry.
func LoadWorlds(basePath string) (*WorldsConfig, error) {
	cfg := &WorldsConfig{}

	data, err := os.ReadFile(WorldsFilePath(basePath))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		data = nil
	case err != nil:
		return nil, fmt.Errorf("reading worlds file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing worlds file: %w", err)
	}
	if cfg.Worlds == nil {
		cfg.Worlds = make(map[string]WorldEntry)
	}
	return cfg, nil
}

// Save writes the registry, creating the .lore directory if needed.
func (w *WorldsConfig) Save(basePath string) error {
	if err := os.MkdirAll(ConfigDir(basePath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(w)
	if err != nil {
		return fmt.Errorf("marshaling worlds config: %w", err)
	}

	if err := os.WriteFile(WorldsFilePath(basePath), data, 0600); err != nil {
		return fmt.Errorf("writing worlds file: %w", err)
	}
	return nil
}

// Add registers or replaces a world.
func (w *WorldsConfig) Add(name string, entry WorldEntry) {
	if w.Worlds == nil {
		w.Worlds = make(map[string]WorldEntry)
	}
	w.Worlds[name] = entry
}

// Remove drops a world from the registry.
func (w *WorldsConfig) Remove(name string) {
	delete(w.Worlds, name)
}

// Names returns the registered world names in sorted order.
func (w *WorldsConfig) Names() []string {
	return slices.Sorted(maps.Keys(w.Worlds))
}

// Get returns the entry for a world. The error for an unknown world lists
// a few of the registered names.
func (w *WorldsConfig) Get(name string) (*WorldEntry, error) {
	if len(w.Worlds) == 0 {
		return nil, errors.New("no worlds configured")
	}

	entry, ok := w.Worlds[name]
	if !ok {
		names := w.Names()
		if len(names) > maxListedWorlds {
			names = append(names[:maxListedWorlds], "...")
		}
		return nil, fmt.Errorf("world %q not found (available: %s)", name, strings.Join(names, ", "))
	}
	return &entry, nil
}

// Exists reports whether a world is registered.
func (w *WorldsConfig) Exists(name string) bool {
	_, ok := w.Worlds[name]
	return ok
}

// WorldsExists reports whether a worlds file exists under basePath.
func WorldsExists(basePath string) bool {
	_, err := os.Stat(WorldsFilePath(basePath))
	return err == nil
}
