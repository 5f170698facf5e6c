package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, basePath, content string) {
	t.Helper()
	dir := filepath.Join(basePath, DefaultConfigDir)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte(content), 0644))
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "content", cfg.Corpus.Dir)
	assert.Equal(t, filepath.Join(DefaultConfigDir, DefaultDBFile), cfg.Store.Path)
	assert.Equal(t, 3, cfg.Store.MaxAttempts)
	assert.Equal(t, "dist", cfg.Export.Dir)
	assert.Equal(t, 8, cfg.Quality.MinFieldLength)
	assert.Equal(t, "15m", cfg.Queue.StaleAfter)
}

func TestLoad(t *testing.T) {
	t.Run("missing config file", func(t *testing.T) {
		_, err := Load(t.TempDir())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "curator init")
	})

	t.Run("defaults fill unset fields", func(t *testing.T) {
		basePath := t.TempDir()
		writeConfig(t, basePath, "corpus:\n  dir: questions\n")

		cfg, err := Load(basePath)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(basePath, "questions"), cfg.Corpus.Dir)
		assert.Equal(t, 3, cfg.Store.MaxAttempts)
		assert.Equal(t, 8, cfg.Quality.MinFieldLength)
	})

	t.Run("file values override defaults", func(t *testing.T) {
		basePath := t.TempDir()
		writeConfig(t, basePath, `
store:
  max_attempts: 5
quality:
  min_field_length: 12
  placeholders: ["???"]
queue:
  stale_after: 30m
`)

		cfg, err := Load(basePath)
		require.NoError(t, err)
		assert.Equal(t, 5, cfg.Store.MaxAttempts)
		assert.Equal(t, 12, cfg.Quality.MinFieldLength)
		assert.Equal(t, []string{"???"}, cfg.Quality.Placeholders)
		assert.Equal(t, "30m", cfg.Queue.StaleAfter)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		basePath := t.TempDir()
		writeConfig(t, basePath, "store:\n  path: ignored.db\n")
		dbPath := filepath.Join(t.TempDir(), "override.db")
		t.Setenv("CURATOR_DB_PATH", dbPath)

		cfg, err := Load(basePath)
		require.NoError(t, err)
		assert.Equal(t, dbPath, cfg.Store.Path)
	})

	t.Run("relative paths anchor at the workspace root", func(t *testing.T) {
		basePath := t.TempDir()
		writeConfig(t, basePath, "")

		cfg, err := Load(basePath)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(basePath, "content"), cfg.Corpus.Dir)
		assert.Equal(t, filepath.Join(basePath, DefaultConfigDir, DefaultDBFile), cfg.Store.Path)
		assert.Equal(t, filepath.Join(basePath, "dist"), cfg.Export.Dir)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		basePath := t.TempDir()
		writeConfig(t, basePath, "store: [not a map")

		_, err := Load(basePath)
		require.Error(t, err)
	})
}

func TestQueueConfig_StaleAfterDuration(t *testing.T) {
	t.Run("unset means service default", func(t *testing.T) {
		d, err := QueueConfig{}.StaleAfterDuration()
		require.NoError(t, err)
		assert.Zero(t, d)
	})

	t.Run("parses duration", func(t *testing.T) {
		d, err := QueueConfig{StaleAfter: "45m"}.StaleAfterDuration()
		require.NoError(t, err)
		assert.Equal(t, 45*time.Minute, d)
	})

	t.Run("invalid duration", func(t *testing.T) {
		_, err := QueueConfig{StaleAfter: "soon"}.StaleAfterDuration()
		require.Error(t, err)
	})
}

func TestWriteDefault(t *testing.T) {
	t.Run("writes a loadable config", func(t *testing.T) {
		basePath := t.TempDir()
		require.NoError(t, WriteDefault(basePath))
		assert.True(t, Exists(basePath))

		cfg, err := Load(basePath)
		require.NoError(t, err)
		assert.Equal(t, 3, cfg.Store.MaxAttempts)
		assert.Equal(t, "15m", cfg.Queue.StaleAfter)
	})

	t.Run("refuses to overwrite", func(t *testing.T) {
		basePath := t.TempDir()
		require.NoError(t, WriteDefault(basePath))
		err := WriteDefault(basePath)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already exists")
	})
}

func TestExists(t *testing.T) {
	basePath := t.TempDir()
	assert.False(t, Exists(basePath))
	writeConfig(t, basePath, "")
	assert.True(t, Exists(basePath))
}
