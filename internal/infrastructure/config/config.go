// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigDir is the directory name for curator configuration.
	DefaultConfigDir = ".curator"
	// DefaultConfigFile is the default config file name.
	DefaultConfigFile = "config.yaml"
	// DefaultDBFile is the default work store file name.
	DefaultDBFile = "curator.db"
)

// Config holds static infrastructure configuration (read-only after init).
type Config struct {
	Corpus  CorpusConfig  `yaml:"corpus,omitempty"`
	Store   StoreConfig   `yaml:"store,omitempty"`
	Export  ExportConfig  `yaml:"export,omitempty"`
	Quality QualityConfig `yaml:"quality,omitempty"`
	Queue   QueueConfig   `yaml:"queue,omitempty"`
}

// CorpusConfig locates the channel content bundles.
type CorpusConfig struct {
	// Dir is the workspace directory holding channels/ and tests/.
	Dir string `yaml:"dir,omitempty"`
}

// StoreConfig holds configuration for the SQLite work store.
type StoreConfig struct {
	// Path is the file path to the SQLite database.
	Path string `yaml:"path,omitempty"`
	// MaxAttempts is how many claims an item gets before a release
	// marks it permanently failed.
	MaxAttempts int `yaml:"max_attempts,omitempty"`
}

// ExportConfig controls build output.
type ExportConfig struct {
	// Dir is where bundles and the rejection report are written.
	Dir string `yaml:"dir,omitempty"`
}

// QualityConfig tunes the quality gate.
type QualityConfig struct {
	// MinFieldLength is the minimum prompt/answer length in runes.
	MinFieldLength int `yaml:"min_field_length,omitempty"`
	// Placeholders extends the built-in placeholder vocabulary.
	Placeholders []string `yaml:"placeholders,omitempty"`
}

// QueueConfig tunes queue recovery behavior.
type QueueConfig struct {
	// StaleAfter is how long a claim may sit in-progress before the
	// recovery sweep releases it, as a Go duration string.
	StaleAfter string `yaml:"stale_after,omitempty"`
}

// StaleAfterDuration parses the stale threshold, falling back to zero
// (meaning the service default) when unset.
func (q QueueConfig) StaleAfterDuration() (time.Duration, error) {
	if q.StaleAfter == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(q.StaleAfter)
	if err != nil {
		return 0, fmt.Errorf("parsing queue.stale_after: %w", err)
	}
	return d, nil
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Corpus: CorpusConfig{Dir: "content"},
		Store:  StoreConfig{Path: filepath.Join(DefaultConfigDir, DefaultDBFile), MaxAttempts: 3},
		Export: ExportConfig{Dir: "dist"},
		Quality: QualityConfig{
			MinFieldLength: 8,
		},
		Queue: QueueConfig{StaleAfter: "15m"},
	}
}

// Load loads configuration from the .curator directory in the given path.
func Load(basePath string) (*Config, error) {
	configFile := filepath.Join(basePath, DefaultConfigDir, DefaultConfigFile)

	data, err := os.ReadFile(configFile)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s (run 'curator init' first)", configFile)
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Start with defaults
	cfg := Default()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	cfg.applyEnvOverrides()

	// Relative paths resolve against the workspace root
	cfg.resolvePaths(basePath)

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if path := os.Getenv("CURATOR_DB_PATH"); path != "" {
		c.Store.Path = path
	}
	if dir := os.Getenv("CURATOR_CORPUS_DIR"); dir != "" {
		c.Corpus.Dir = dir
	}
}

// resolvePaths anchors relative paths at the workspace root.
func (c *Config) resolvePaths(basePath string) {
	if !filepath.IsAbs(c.Corpus.Dir) {
		c.Corpus.Dir = filepath.Join(basePath, c.Corpus.Dir)
	}
	if !filepath.IsAbs(c.Store.Path) {
		c.Store.Path = filepath.Join(basePath, c.Store.Path)
	}
	if !filepath.IsAbs(c.Export.Dir) {
		c.Export.Dir = filepath.Join(basePath, c.Export.Dir)
	}
}

// ConfigDir returns the path to the .curator config directory.
func ConfigDir(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir)
}

// ConfigFilePath returns the path to the config file.
func ConfigFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultConfigFile)
}

// Exists checks if a curator config exists in the given path.
func Exists(basePath string) bool {
	configFile := filepath.Join(basePath, DefaultConfigDir, DefaultConfigFile)
	_, err := os.Stat(configFile)
	return err == nil
}
