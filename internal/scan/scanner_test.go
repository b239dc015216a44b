package scan

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rskill-dev/rskill/internal/model"
)

// writeProject creates a minimal Cargo project under root at the given
// relative path and returns its absolute directory.
func writeProject(t *testing.T, root, rel, name string) string {
	t.Helper()
	dir := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(dir, 0o755))
	manifest := "[package]\nname = \"" + name + "\"\nversion = \"0.1.0\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Cargo.toml"), []byte(manifest), 0o644))
	return dir
}

// writeTargetFile puts a file of the given size under the project's
// build directory.
func writeTargetFile(t *testing.T, projectDir, rel string, size int) {
	t.Helper()
	p := filepath.Join(projectDir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, make([]byte, size), 0o644))
}

func projectNames(result *Result) []string {
	names := make([]string, len(result.Projects))
	for i := range result.Projects {
		names[i] = result.Projects[i].Name
	}
	return names
}

// TestNew_Validation rejects bad roots and fills in defaults.
func TestNew_Validation(t *testing.T) {
	t.Run("nonexistent root", func(t *testing.T) {
		_, err := New(Options{Root: filepath.Join(t.TempDir(), "missing")})
		require.Error(t, err)
		var cliErr *model.CLIError
		require.ErrorAs(t, err, &cliErr)
		assert.Equal(t, model.ExitInvalidInput, cliErr.Code)
	})

	t.Run("root is a file", func(t *testing.T) {
		dir := t.TempDir()
		file := filepath.Join(dir, "not-a-dir")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

		_, err := New(Options{Root: file})
		require.Error(t, err)
		var cliErr *model.CLIError
		require.ErrorAs(t, err, &cliErr)
		assert.Equal(t, model.ExitInvalidInput, cliErr.Code)
	})

	t.Run("defaults applied", func(t *testing.T) {
		s, err := New(Options{Root: t.TempDir()})
		require.NoError(t, err)
		assert.Equal(t, DefaultTargetName, s.opts.TargetName)
		assert.Equal(t, DefaultMaxDepth, s.opts.MaxDepth)
		assert.Greater(t, s.opts.Concurrency, 0)
		assert.True(t, filepath.IsAbs(s.Root()))
	})

	t.Run("full scan deepens the default depth", func(t *testing.T) {
		s, err := New(Options{Root: t.TempDir(), FullScan: true})
		require.NoError(t, err)
		assert.Equal(t, FullScanMaxDepth, s.opts.MaxDepth)
	})
}

// TestScan_Discovery covers the walk rules: nesting, depth bounds, and
// the always-skipped names.
func TestScan_Discovery(t *testing.T) {
	t.Run("finds projects at multiple depths", func(t *testing.T) {
		root := t.TempDir()
		writeProject(t, root, "alpha", "alpha")
		writeProject(t, root, "work/beta", "beta")
		writeProject(t, root, "work/oss/gamma", "gamma")

		s, err := New(Options{Root: root})
		require.NoError(t, err)
		result, err := s.Scan(context.Background())
		require.NoError(t, err)

		assert.ElementsMatch(t, []string{"alpha", "beta", "gamma"}, projectNames(result))
		assert.Empty(t, result.Issues)
	})

	t.Run("the root itself can be a project", func(t *testing.T) {
		root := t.TempDir()
		writeProject(t, root, ".", "self")

		s, err := New(Options{Root: root})
		require.NoError(t, err)
		result, err := s.Scan(context.Background())
		require.NoError(t, err)

		require.Len(t, result.Projects, 1)
		assert.Equal(t, "self", result.Projects[0].Name)
		assert.Equal(t, s.Root(), result.Projects[0].Path)
	})

	t.Run("respects the depth bound", func(t *testing.T) {
		root := t.TempDir()
		writeProject(t, root, "a/shallow", "shallow")
		writeProject(t, root, "a/b/c/deep", "deep")

		s, err := New(Options{Root: root, MaxDepth: 2})
		require.NoError(t, err)
		result, err := s.Scan(context.Background())
		require.NoError(t, err)

		assert.Equal(t, []string{"shallow"}, projectNames(result))
	})

	t.Run("never searches inside build directories", func(t *testing.T) {
		root := t.TempDir()
		outer := writeProject(t, root, "outer", "outer")
		// A vendored crate inside target/ must not surface as a project.
		writeProject(t, outer, "target/package/vendored", "vendored")

		s, err := New(Options{Root: root})
		require.NoError(t, err)
		result, err := s.Scan(context.Background())
		require.NoError(t, err)

		assert.Equal(t, []string{"outer"}, projectNames(result))
	})

	t.Run("skips version control and node_modules", func(t *testing.T) {
		root := t.TempDir()
		writeProject(t, root, ".git/stray", "in-git")
		writeProject(t, root, "web/node_modules/pkg", "in-node-modules")
		writeProject(t, root, "real", "real")

		s, err := New(Options{Root: root})
		require.NoError(t, err)
		result, err := s.Scan(context.Background())
		require.NoError(t, err)

		assert.Equal(t, []string{"real"}, projectNames(result))
	})

	t.Run("hidden directories skipped only when asked", func(t *testing.T) {
		root := t.TempDir()
		writeProject(t, root, ".config/hidden", "hidden")
		writeProject(t, root, "visible", "visible")

		s, err := New(Options{Root: root})
		require.NoError(t, err)
		result, err := s.Scan(context.Background())
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"hidden", "visible"}, projectNames(result))

		s, err = New(Options{Root: root, ExcludeHidden: true})
		require.NoError(t, err)
		result, err = s.Scan(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"visible"}, projectNames(result))
	})

	t.Run("excluded names are skipped", func(t *testing.T) {
		root := t.TempDir()
		writeProject(t, root, "vendor/dep", "dep")
		writeProject(t, root, "mine", "mine")

		s, err := New(Options{Root: root, Exclude: []string{"vendor"}})
		require.NoError(t, err)
		result, err := s.Scan(context.Background())
		require.NoError(t, err)

		assert.Equal(t, []string{"mine"}, projectNames(result))
	})

	t.Run("custom target name is skipped instead", func(t *testing.T) {
		root := t.TempDir()
		outer := writeProject(t, root, "outer", "outer")
		writeProject(t, outer, "build-out/vendored", "vendored")
		// The default name is just a directory now.
		writeProject(t, outer, "target/sub", "in-target")

		s, err := New(Options{Root: root, TargetName: "build-out"})
		require.NoError(t, err)
		result, err := s.Scan(context.Background())
		require.NoError(t, err)

		assert.ElementsMatch(t, []string{"outer", "in-target"}, projectNames(result))
	})

	t.Run("empty tree finds nothing", func(t *testing.T) {
		s, err := New(Options{Root: t.TempDir()})
		require.NoError(t, err)
		result, err := s.Scan(context.Background())
		require.NoError(t, err)
		assert.Empty(t, result.Projects)
	})
}

// TestScan_Cancellation aborts promptly when the context is done.
func TestScan_Cancellation(t *testing.T) {
	root := t.TempDir()
	writeProject(t, root, "p", "p")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s, err := New(Options{Root: root})
	require.NoError(t, err)
	_, err = s.Scan(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
