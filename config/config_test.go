package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteThenLoadProfileRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.json")

	p := Profile{Host: "example.preservica.com", Tenant: "tenant-a", Username: "user", Password: "pass"}
	require.NoError(t, Write(path, "work", p))

	loaded, err := LoadProfile(path, "work")
	require.NoError(t, err)
	assert.Equal(t, p, loaded)
}

func TestWriteDefaultsToDefaultProfileName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	p := Profile{Host: "h", Tenant: "t", Username: "u", Password: "pw"}
	require.NoError(t, Write(path, "", p))

	loaded, err := LoadProfile(path, "")
	require.NoError(t, err)
	assert.Equal(t, p, loaded)

	f, err := Load(path)
	require.NoError(t, err)
	_, ok := f[DefaultProfile]
	assert.True(t, ok)
}

func TestWritePreservesOtherProfiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	require.NoError(t, Write(path, "first", Profile{Host: "h1"}))
	require.NoError(t, Write(path, "second", Profile{Host: "h2"}))

	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "h1", f["first"].Host)
	assert.Equal(t, "h2", f["second"].Host)
}

func TestWriteSetsRestrictivePermissions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, Write(path, "work", Profile{Host: "h"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadProfileMissingProfileReturnsError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, Write(path, "work", Profile{Host: "h"}))

	_, err := LoadProfile(path, "nonexistent")
	assert.Error(t, err)
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	_, err := Load("/nonexistent/path/config.json")
	assert.Error(t, err)
}
