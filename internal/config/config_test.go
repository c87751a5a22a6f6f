package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 16, cfg.Cache.MaxSize)
	assert.Equal(t, "0.0.0.0:2053", cfg.Server.ListenAddr)
	assert.Equal(t, "198.41.0.4", cfg.Server.RootServerIP)
	assert.Equal(t, 43210, cfg.Server.ResolverSourcePort)
	assert.True(t, cfg.Cache.Enabled)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("RECURDNS_CACHE_MAX_SIZE", "256")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 256, cfg.Cache.MaxSize)
}

func TestLoadConfigFileOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache:\n  max_size: 42\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 42, cfg.Cache.MaxSize)
}

func TestLoadMissingConfigFileIsNotFatal(t *testing.T) {
	_, err := Load("/nonexistent/path/to/config.yaml")
	require.NoError(t, err)
}
