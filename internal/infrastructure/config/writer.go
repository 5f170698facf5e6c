package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigYAML is the default configuration content.
const DefaultConfigYAML = `# Curator Configuration

corpus:
  # Workspace directory holding channels/ and tests/ bundles
  dir: content

store:
  # SQLite work queue and audit ledger
  path: .curator/curator.db
  # Claims per item before a release marks it permanently failed
  max_attempts: 3

export:
  # Build output: per-channel bundles, aggregate, rejection report
  dir: dist

quality:
  # Minimum prompt/answer length in characters
  min_field_length: 8
  # Extra placeholder markers on top of TODO/FIXME/TBD
  # placeholders: ["???"]

queue:
  # In-progress claims older than this are recovered
  stale_after: 15m
`

// WriteDefault creates the .curator directory and writes a default
// config file.
func WriteDefault(basePath string) error {
	configDir := filepath.Join(basePath, DefaultConfigDir)
	configFile := filepath.Join(configDir, DefaultConfigFile)

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists: %s", configFile)
	}

	if err := os.WriteFile(configFile, []byte(DefaultConfigYAML), 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
