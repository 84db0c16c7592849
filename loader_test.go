package stbridge

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceLoaderFindsFileInSearchDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "STB202.xsd")
	require.NoError(t, os.WriteFile(path, []byte(testXSD), 0o644))

	loader := NewSourceLoader([]string{dir}, nil)
	data, location, err := loader.Fetch(context.Background(), Version202)

	require.NoError(t, err)
	assert.Equal(t, path, location)
	assert.Equal(t, []byte(testXSD), data)
}

func TestSourceLoaderFallsBackAcrossFilenames(t *testing.T) {
	// Only the JSON variant exists; the XSD candidates are tried first
	// and skipped.
	dir := t.TempDir()
	path := filepath.Join(dir, "stb-2.1.0.schema.json")
	require.NoError(t, os.WriteFile(path, []byte(testJSONSchema), 0o644))

	loader := NewSourceLoader([]string{dir}, nil)
	data, location, err := loader.Fetch(context.Background(), Version210)

	require.NoError(t, err)
	assert.Equal(t, path, location)
	assert.NotEmpty(t, data)
}

func TestSourceLoaderPrefersExplicitLocations(t *testing.T) {
	dir := t.TempDir()
	standard := filepath.Join(dir, "STB202.xsd")
	require.NoError(t, os.WriteFile(standard, []byte("standard"), 0o644))
	custom := filepath.Join(dir, "custom.xsd")
	require.NoError(t, os.WriteFile(custom, []byte("custom"), 0o644))

	loader := NewSourceLoader([]string{dir}, nil)
	loader.AddLocation(Version202, custom)

	data, location, err := loader.Fetch(context.Background(), Version202)
	require.NoError(t, err)
	assert.Equal(t, custom, location)
	assert.Equal(t, "custom", string(data))
}

func TestSourceLoaderMissingSource(t *testing.T) {
	loader := NewSourceLoader([]string{t.TempDir()}, nil)
	_, _, err := loader.Fetch(context.Background(), Version202)
	require.Error(t, err)
}

func TestSourceLoaderUnknownVersion(t *testing.T) {
	loader := NewSourceLoader([]string{t.TempDir()}, nil)
	_, _, err := loader.Fetch(context.Background(), SchemaVersion("9.9.9"))
	require.Error(t, err)
}

func TestSourceLoaderRemoteDisabledByDefault(t *testing.T) {
	loader := NewSourceLoader(nil, nil)
	_, err := loader.fetchOne(context.Background(), "https://example.com/STB202.xsd")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "remote schema loading disabled")
}
