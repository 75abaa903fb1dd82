package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	// An explicitly named file that is missing is a real error.
	assert.Error(t, err)
	assert.Nil(t, cfg)

	cfg, err = Load("")
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Crawler.MaxDepth)
	assert.Equal(t, 100, cfg.Crawler.MaxPages)
	assert.Equal(t, 5, cfg.Crawler.Workers)
	assert.Equal(t, 5*time.Second, cfg.Crawler.IdleTimeout)
	assert.Equal(t, 15*time.Second, cfg.Crawler.Timeout)
	assert.Equal(t, "SiteWalker/1.0", cfg.Crawler.UserAgent)
	assert.Equal(t, []string{"pdf", "jpg", "png", "gif"}, cfg.Crawler.ExcludedExtensions)
	assert.Equal(t, "./sitewalker.db", cfg.Storage.Path)
	assert.Equal(t, "info", cfg.Logging.Level)

	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
crawler:
  max_depth: 7
  workers: 2
storage:
  path: /tmp/other.db
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Crawler.MaxDepth)
	assert.Equal(t, 2, cfg.Crawler.Workers)
	assert.Equal(t, "/tmp/other.db", cfg.Storage.Path)
	// Untouched keys keep their defaults.
	assert.Equal(t, 100, cfg.Crawler.MaxPages)
}

func TestValidate(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	cfg.Crawler.MaxPages = 0
	assert.Error(t, cfg.Validate())

	cfg, _ = Load("")
	cfg.Crawler.Workers = -1
	assert.Error(t, cfg.Validate())

	cfg, _ = Load("")
	cfg.Storage.Path = ""
	assert.Error(t, cfg.Validate())
}
