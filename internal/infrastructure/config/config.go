// Package config provides configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigDir is the directory name for lore configuration.
	DefaultConfigDir = ".lore"
	// DefaultConfigFile is the default config file name.
	DefaultConfigFile = "config.yaml"
	// DefaultWorldsFile is the default worlds file name.
	DefaultWorldsFile = "worlds.yaml"
)

var (
	// reNonAlphanumeric matches characters that aren't alphanumeric or underscore.
	reNonAlphanumeric = regexp.MustCompile(`[^a-z0-9_]`)
	// reMultipleUnderscores matches consecutive underscores.
	reMultipleUnderscores = regexp.MustCompile(`_+`)
)

// Config holds static infrastructure configuration (read-only after init).
type Config struct {
	LLM      LLMConfig      `yaml:"llm,omitempty"`
	Embedder EmbedderConfig `yaml:"embedder,omitempty"`
	Qdrant   QdrantConfig   `yaml:"qdrant,omitempty"`
	SQLite   SQLiteConfig   `yaml:"sqlite,omitempty"`
	Log      LogConfig      `yaml:"log,omitempty"`
	Timeline TimelineConfig `yaml:"timeline,omitempty"`
}

// LLMConfig holds configuration for the LLM provider.
type LLMConfig struct {
	Provider string `yaml:"provider,omitempty"`
	Model    string `yaml:"model,omitempty"`
	APIKey   string `yaml:"api_key,omitempty"`
	// BaseURL overrides the API endpoint, for OpenAI-compatible servers.
	BaseURL string `yaml:"base_url,omitempty"`
}

// EmbedderConfig holds configuration for the embedding provider.
type EmbedderConfig struct {
	Provider string `yaml:"provider,omitempty"`
	Model    string `yaml:"model,omitempty"`
	APIKey   string `yaml:"api_key,omitempty"`
	// BaseURL overrides the API endpoint, for OpenAI-compatible servers.
	BaseURL string `yaml:"base_url,omitempty"`
}

// QdrantConfig holds configuration for the Qdrant vector database.
type QdrantConfig struct {
	Host       string `yaml:"host,omitempty"`
	Port       int    `yaml:"port,omitempty"`
	Collection string `yaml:"collection,omitempty"`
	APIKey     string `yaml:"api_key,omitempty"`
}

// SQLiteConfig holds configuration for the SQLite relational database.
type SQLiteConfig struct {
	// Path is the file path to the SQLite database.
	// For per-world databases, this is computed dynamically using SQLitePathForWorld.
	Path string `yaml:"path,omitempty"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `yaml:"level,omitempty"`
	// Format is "console" or "json".
	Format string `yaml:"format,omitempty"`
}

// TimelineConfig holds defaults for new timelines.
type TimelineConfig struct {
	// DefaultEras is used when a timeline is created without an era
	// definition. Comma list or JSON, as accepted by the era parser.
	DefaultEras string `yaml:"default_eras,omitempty"`
}

// envOverrides lists the environment variables read on top of the file.
type envOverrides struct {
	OpenAIKey  string `env:"OPENAI_API_KEY"`
	QdrantKey  string `env:"QDRANT_API_KEY"`
	QdrantHost string `env:"LORE_QDRANT_HOST"`
	LogLevel   string `env:"LORE_LOG_LEVEL"`
	LogFormat  string `env:"LORE_LOG_FORMAT"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider: "openai",
			Model:    "gpt-4o-mini",
		},
		Embedder: EmbedderConfig{
			Provider: "openai",
			Model:    "text-embedding-3-small",
		},
		Qdrant: QdrantConfig{
			Host: "localhost",
			Port: 6334,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from the .lore directory in the given path.
func Load(basePath string) (*Config, error) {
	configFile := ConfigFilePath(basePath)

	data, err := os.ReadFile(configFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config file not found: %s (run 'lore worlds create' first)", configFile)
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault is Load for a directory that may not be initialized yet. It
// returns the defaults with environment overrides when no config exists.
func LoadOrDefault(basePath string) (*Config, error) {
	if Exists(basePath) {
		return Load(basePath)
	}

	cfg := Default()
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides. API keys only
// fill values the file left empty; the Qdrant host and log settings replace
// the file's values.
func (c *Config) applyEnvOverrides() error {
	var vars envOverrides
	if err := env.Parse(&vars); err != nil {
		return fmt.Errorf("parsing environment: %w", err)
	}

	if vars.OpenAIKey != "" {
		if c.LLM.APIKey == "" {
			c.LLM.APIKey = vars.OpenAIKey
		}
		if c.Embedder.APIKey == "" {
			c.Embedder.APIKey = vars.OpenAIKey
		}
	}
	if vars.QdrantKey != "" && c.Qdrant.APIKey == "" {
		c.Qdrant.APIKey = vars.QdrantKey
	}
	if vars.QdrantHost != "" {
		c.Qdrant.Host = vars.QdrantHost
	}
	if vars.LogLevel != "" {
		c.Log.Level = vars.LogLevel
	}
	if vars.LogFormat != "" {
		c.Log.Format = vars.LogFormat
	}
	return nil
}

// ConfigDir returns the path to the .lore config directory.
func ConfigDir(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir)
}

// ConfigFilePath returns the path to the config file.
func ConfigFilePath(basePath string) string {
	return filepath.Join(ConfigDir(basePath), DefaultConfigFile)
}

// WorldsFilePath returns the path to the worlds file.
func WorldsFilePath(basePath string) string {
	return filepath.Join(ConfigDir(basePath), DefaultWorldsFile)
}

// Exists reports whether basePath holds a lore config file.
func Exists(basePath string) bool {
	_, err := os.Stat(ConfigFilePath(basePath))
	return err == nil
}

// SanitizeWorldName folds a world name to lowercase letters, digits and
// single underscores. Names with nothing usable become "default".
func SanitizeWorldName(name string) string {
	name = strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return '_'
		}
		return r
	}, strings.ToLower(name))
	name = reNonAlphanumeric.ReplaceAllString(name, "")
	name = strings.Trim(reMultipleUnderscores.ReplaceAllString(name, "_"), "_")

	if name == "" {
		return "default"
	}
	return name
}

// GenerateCollectionName creates a collection name for a world.
func GenerateCollectionName(worldName string) string {
	return "lore_" + SanitizeWorldName(worldName)
}

// WorldDir returns the directory holding a world's data.
func WorldDir(basePath, worldName string) string {
	return filepath.Join(ConfigDir(basePath), "worlds", SanitizeWorldName(worldName))
}

// SQLitePathForWorld returns the SQLite database path for a given world.
func SQLitePathForWorld(basePath, worldName string) string {
	return filepath.Join(WorldDir(basePath, worldName), "lore.db")
}
