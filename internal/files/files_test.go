// ABOUTME: Tests for upload path and glob expansion.
// ABOUTME: Covers size flags, de-duplication and missing paths.
package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389-research/asksee/internal/api"
)

func writeFile(t *testing.T, path string, size int64) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(size))
	require.NoError(t, f.Close())
}

func TestExpandPlainPath(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a.txt")
	writeFile(t, p, 5)

	got, err := Expand([]string{p})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, p, got[0].Path)
	assert.Equal(t, int64(5), got[0].Size)
	assert.False(t, got[0].TooLarge)
}

func TestExpandDoubleStar(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "docs", "a.md"), 1)
	writeFile(t, filepath.Join(dir, "docs", "nested", "b.md"), 1)
	writeFile(t, filepath.Join(dir, "docs", "c.txt"), 1)

	got, err := Expand([]string{filepath.Join(dir, "docs", "**", "*.md")})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, filepath.Join(dir, "docs", "a.md"), got[0].Path)
	assert.Equal(t, filepath.Join(dir, "docs", "nested", "b.md"), got[1].Path)
}

func TestExpandDeduplicates(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a.txt")
	writeFile(t, p, 1)

	got, err := Expand([]string{p, filepath.Join(dir, "*.txt")})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestExpandFlagsOversized(t *testing.T) {
	dir := t.TempDir()
	exact := filepath.Join(dir, "exact.bin")
	over := filepath.Join(dir, "over.bin")
	writeFile(t, exact, api.MaxUploadBytes)
	writeFile(t, over, api.MaxUploadBytes+1)

	got, err := Expand([]string{exact, over})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.False(t, got[0].TooLarge)
	assert.True(t, got[1].TooLarge)
}

func TestExpandErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Expand([]string{filepath.Join(dir, "missing.txt")})
	assert.Error(t, err)

	_, err = Expand([]string{filepath.Join(dir, "*.none")})
	assert.Error(t, err)

	_, err = Expand([]string{dir})
	assert.Error(t, err)
}
