package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultConfigYAML is the default configuration content.
const DefaultConfigYAML = `# Lore Timeline Configuration

llm:
  provider: openai
  model: gpt-4o-mini
  # api_key: your-api-key (or set OPENAI_API_KEY env var)

embedder:
  provider: openai
  model: text-embedding-3-small
  # api_key: your-api-key (or set OPENAI_API_KEY env var)

qdrant:
  host: localhost
  port: 6334
  # api_key: your-api-key (for Qdrant Cloud)

log:
  level: info     # debug, info, warn, error (or set LORE_LOG_LEVEL)
  format: console # console or json (or set LORE_LOG_FORMAT)

timeline:
  # Era definition used when 'lore timeline create' gets no --eras.
  # default_eras: "First Age, Second Age, Third Age"
`

// WriteDefault creates the .lore directory and writes the commented default
// config. It fails if a config file already exists.
func WriteDefault(basePath string) error {
	return writeConfigFile(basePath, []byte(DefaultConfigYAML), false)
}

// Write replaces the config file with cfg.
func Write(basePath string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return writeConfigFile(basePath, data, true)
}

func writeConfigFile(basePath string, data []byte, overwrite bool) error {
	if err := os.MkdirAll(ConfigDir(basePath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := ConfigFilePath(basePath)
	if !overwrite && Exists(basePath) {
		return fmt.Errorf("config file already exists: %s", path)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
