package cargo

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeManifest writes a Cargo.toml with the given content into dir
// and returns its path.
func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ManifestName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// TestParseManifest covers package name extraction, workspace detection,
// and dependency counting across common manifest shapes.
func TestParseManifest(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected Manifest
	}{
		{
			name: "plain package",
			content: `[package]
name = "hello"
version = "0.1.0"
edition = "2021"

[dependencies]
serde = "1.0"
tokio = { version = "1", features = ["full"] }
`,
			expected: Manifest{Name: "hello", Dependencies: 2},
		},
		{
			name: "workspace root without package",
			content: `[workspace]
members = ["crates/*"]
resolver = "2"
`,
			expected: Manifest{WorkspaceRoot: true},
		},
		{
			name: "workspace with package section",
			content: `[package]
name = "app"

[workspace]
members = ["tools"]

[dependencies]
anyhow = "1"
`,
			expected: Manifest{Name: "app", WorkspaceRoot: true, Dependencies: 1},
		},
		{
			name: "workspace dependencies section counts as workspace",
			content: `[workspace.dependencies]
serde = "1.0"
`,
			expected: Manifest{WorkspaceRoot: true},
		},
		{
			name: "dotted dependency tables count once each",
			content: `[package]
name = "dotted"

[dependencies]
log = "0.4"

[dependencies.serde]
version = "1.0"
features = ["derive"]
`,
			expected: Manifest{Name: "dotted", Dependencies: 2},
		},
		{
			name: "dev and build dependencies are not counted",
			content: `[package]
name = "testy"

[dependencies]
serde = "1.0"

[dev-dependencies]
proptest = "1"
criterion = "0.5"

[build-dependencies]
cc = "1"
`,
			expected: Manifest{Name: "testy", Dependencies: 1},
		},
		{
			name: "multi-line arrays do not inflate the count",
			content: `[package]
name = "multiline"

[dependencies]
tokio = { version = "1", features = [
    "rt",
    "macros",
] }
`,
			expected: Manifest{Name: "multiline", Dependencies: 1},
		},
		{
			name: "comments and blank lines ignored",
			content: `# top-level comment
[package]
# the crate name
name = "commented" # inline comment

[dependencies]
# serde = "disabled"
log = "0.4"
`,
			expected: Manifest{Name: "commented", Dependencies: 1},
		},
		{
			name: "single-quoted name",
			content: `[package]
name = 'quoted'
`,
			expected: Manifest{Name: "quoted"},
		},
		{
			name:     "empty manifest",
			content:  "",
			expected: Manifest{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeManifest(t, t.TempDir(), tt.content)
			m, err := ParseManifest(path)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, *m)
		})
	}
}

// TestParseManifest_Missing verifies a missing manifest is an error.
func TestParseManifest_Missing(t *testing.T) {
	_, err := ParseManifest(filepath.Join(t.TempDir(), ManifestName))
	assert.Error(t, err)
}

// TestLastModified picks the newest of the source indicator files and
// tolerates missing ones.
func TestLastModified(t *testing.T) {
	t.Run("newest indicator wins", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0o755))

		old := time.Now().Add(-48 * time.Hour)
		recent := time.Now().Add(-1 * time.Hour)

		writeManifest(t, dir, "[package]\nname = \"x\"\n")
		require.NoError(t, os.Chtimes(filepath.Join(dir, ManifestName), old, old))

		mainPath := filepath.Join(dir, "src", "main.rs")
		require.NoError(t, os.WriteFile(mainPath, []byte("fn main() {}\n"), 0o644))
		require.NoError(t, os.Chtimes(mainPath, recent, recent))

		got := LastModified(dir)
		assert.WithinDuration(t, recent, got, time.Second)
	})

	t.Run("no indicators yields zero time", func(t *testing.T) {
		assert.True(t, LastModified(t.TempDir()).IsZero())
	})
}
