package cargo

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFileWithSize creates a file of the given size, creating parent
// directories as needed.
func writeFileWithSize(t *testing.T, path string, size int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))
}

// TestHome resolves CARGO_HOME ahead of the home-directory default.
func TestHome(t *testing.T) {
	t.Run("CARGO_HOME override", func(t *testing.T) {
		dir := t.TempDir()
		t.Setenv("CARGO_HOME", dir)
		home, err := Home()
		require.NoError(t, err)
		assert.Equal(t, dir, home)
	})

	t.Run("defaults under the home directory", func(t *testing.T) {
		t.Setenv("CARGO_HOME", "")
		home, err := Home()
		require.NoError(t, err)
		assert.Equal(t, ".cargo", filepath.Base(home))
	})
}

// TestInspectCache sizes each cache area independently and tolerates
// missing ones.
func TestInspectCache(t *testing.T) {
	home := t.TempDir()
	t.Setenv("CARGO_HOME", home)

	writeFileWithSize(t, filepath.Join(home, "registry", "index", "github", "config.json"), 100)
	writeFileWithSize(t, filepath.Join(home, "registry", "cache", "github", "serde-1.0.crate"), 2048)
	writeFileWithSize(t, filepath.Join(home, "registry", "src", "github", "serde-1.0", "lib.rs"), 512)
	writeFileWithSize(t, filepath.Join(home, "git", "db", "repo", "HEAD"), 64)
	// git/checkouts deliberately absent.

	cache, err := InspectCache(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(100), cache.RegistryIndex)
	assert.Equal(t, int64(2048), cache.RegistryCache)
	assert.Equal(t, int64(512), cache.RegistrySrc)
	assert.Equal(t, int64(64), cache.GitDB)
	assert.Equal(t, int64(0), cache.GitCheckouts)

	assert.Equal(t, int64(2660), cache.Registry())
	assert.Equal(t, int64(64), cache.Git())
	assert.Equal(t, int64(2724), cache.Total())
}

// TestInspectCache_Empty reports zeros for a machine without cargo.
func TestInspectCache_Empty(t *testing.T) {
	t.Setenv("CARGO_HOME", filepath.Join(t.TempDir(), "nope"))
	cache, err := InspectCache(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), cache.Total())
}

// TestDirSize covers nesting, missing paths, and cancellation.
func TestDirSize(t *testing.T) {
	t.Run("sums nested regular files", func(t *testing.T) {
		dir := t.TempDir()
		writeFileWithSize(t, filepath.Join(dir, "a.bin"), 10)
		writeFileWithSize(t, filepath.Join(dir, "deep", "nested", "b.bin"), 30)

		size, err := DirSize(context.Background(), dir)
		require.NoError(t, err)
		assert.Equal(t, int64(40), size)
	})

	t.Run("missing path is zero", func(t *testing.T) {
		size, err := DirSize(context.Background(), filepath.Join(t.TempDir(), "missing"))
		require.NoError(t, err)
		assert.Equal(t, int64(0), size)
	})

	t.Run("cancelled context aborts the walk", func(t *testing.T) {
		dir := t.TempDir()
		writeFileWithSize(t, filepath.Join(dir, "a.bin"), 10)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := DirSize(ctx, dir)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
