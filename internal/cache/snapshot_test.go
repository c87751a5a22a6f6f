package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dns_cache.toml")

	c := New(4, nil)
	e1, err := NewEntryFromPacket(aRecordPacket("a.example.com", 60), 60, 1000)
	require.NoError(t, err)
	e2, err := NewEntryFromPacket(aRecordPacket("b.example.com", 120), 120, 2000)
	require.NoError(t, err)
	c.Insert("a.example.com-1", e1)
	c.Insert("b.example.com-1", e2)

	require.NoError(t, Save(c, path))

	loaded, err := Load(path, 4, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Len())

	got, ok := loaded.Get("a.example.com-1", 1000)
	require.True(t, ok)
	assert.Equal(t, e1.Response, got.Response)
	assert.Equal(t, e1.TTL, got.TTL)
}

func TestLoadMissingFileStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	c, err := Load(filepath.Join(dir, "nonexistent.toml"), 16, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 16, c.MaxSize())
}

func TestLoadMalformedFileFallsBackToEmptyCache(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dns_cache.toml")
	require.NoError(t, os.WriteFile(path, []byte("not valid toml {{{"), 0o644))

	c, err := Load(path, 8, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSnapshotCorruption)
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 8, c.MaxSize())
}
