// Package cli: settings_test.go covers the defaults / configuration
// file / flags precedence chain without executing any command.
package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rskill-dev/rskill/internal/config"
	"github.com/rskill-dev/rskill/internal/model"
)

// resetFlags restores the global flag variables after a test that
// mutates them.
func resetFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		jsonOutput = false
		verbose = false
		fullScan = false
		targetName = ""
		sortBy = ""
		excludeDirs = nil
		excludeHidden = false
		hideErrors = false
		gbUnits = false
		noUpdateCheck = false
		configPath = ""
		maxDepth = 0
	})
}

// changedSet returns a Changed lookalike that reports true only for
// the given flag names.
func changedSet(names ...string) func(string) bool {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[name] = true
	}
	return func(name string) bool { return set[name] }
}

func boolPtr(v bool) *bool { return &v }

func TestDefaultSettings(t *testing.T) {
	settings := defaultSettings()

	assert.Equal(t, "target", settings.targetName)
	assert.Equal(t, model.SortBySize, settings.sort)
	assert.True(t, settings.checkUpdates)
	assert.Zero(t, settings.maxDepth)
	assert.False(t, settings.fullScan)
}

func TestApplyConfig(t *testing.T) {
	t.Run("empty config changes nothing", func(t *testing.T) {
		settings := defaultSettings()
		require.NoError(t, settings.applyConfig(&config.Config{}))
		assert.Equal(t, defaultSettings(), settings)
	})

	t.Run("set fields are applied", func(t *testing.T) {
		settings := defaultSettings()
		err := settings.applyConfig(&config.Config{
			TargetName:    "build",
			Sort:          "path",
			Exclude:       []string{"vendor", "third_party"},
			ExcludeHidden: boolPtr(true),
			HideErrors:    boolPtr(true),
			MaxDepth:      8,
			GB:            boolPtr(true),
			CheckUpdates:  boolPtr(false),
		})
		require.NoError(t, err)

		assert.Equal(t, "build", settings.targetName)
		assert.Equal(t, model.SortByPath, settings.sort)
		assert.Equal(t, []string{"vendor", "third_party"}, settings.exclude)
		assert.True(t, settings.excludeHidden)
		assert.True(t, settings.hideErrors)
		assert.Equal(t, 8, settings.maxDepth)
		assert.True(t, settings.gb)
		assert.False(t, settings.checkUpdates)
	})

	t.Run("unknown sort is a config error", func(t *testing.T) {
		settings := defaultSettings()
		err := settings.applyConfig(&config.Config{Sort: "alphabetical"})

		var cliErr *model.CLIError
		require.ErrorAs(t, err, &cliErr)
		assert.Equal(t, model.ExitConfigInvalid, cliErr.Code)
	})
}

func TestApplyFlags(t *testing.T) {
	t.Run("unchanged flags never override", func(t *testing.T) {
		resetFlags(t)
		targetName = "build"
		sortBy = "path"
		gbUnits = true

		settings := defaultSettings()
		require.NoError(t, settings.applyFlags(changedSet()))

		assert.Equal(t, "target", settings.targetName)
		assert.Equal(t, model.SortBySize, settings.sort)
		assert.False(t, settings.gb)
	})

	t.Run("changed flags win over config", func(t *testing.T) {
		resetFlags(t)
		sortBy = "last-mod"
		targetName = "out"

		settings := defaultSettings()
		require.NoError(t, settings.applyConfig(&config.Config{Sort: "path", TargetName: "build"}))
		require.NoError(t, settings.applyFlags(changedSet("sort", "target")))

		assert.Equal(t, model.SortByLastModified, settings.sort)
		assert.Equal(t, "out", settings.targetName)
	})

	t.Run("invalid sort flag", func(t *testing.T) {
		resetFlags(t)
		sortBy = "biggest"

		settings := defaultSettings()
		err := settings.applyFlags(changedSet("sort"))

		var cliErr *model.CLIError
		require.ErrorAs(t, err, &cliErr)
		assert.Equal(t, model.ExitInvalidInput, cliErr.Code)
	})

	t.Run("max-depth bounds", func(t *testing.T) {
		for _, depth := range []int{0, -3, config.MaxDepthLimit + 1} {
			resetFlags(t)
			maxDepth = depth

			settings := defaultSettings()
			err := settings.applyFlags(changedSet("max-depth"))

			var cliErr *model.CLIError
			require.ErrorAs(t, err, &cliErr, "depth %d", depth)
			assert.Equal(t, model.ExitInvalidInput, cliErr.Code)
		}

		resetFlags(t)
		maxDepth = 8
		settings := defaultSettings()
		require.NoError(t, settings.applyFlags(changedSet("max-depth")))
		assert.Equal(t, 8, settings.maxDepth)
	})

	t.Run("no-update-check disables the check", func(t *testing.T) {
		resetFlags(t)
		noUpdateCheck = true

		settings := defaultSettings()
		require.NoError(t, settings.applyFlags(changedSet()))
		assert.False(t, settings.checkUpdates)
	})

	t.Run("exclude replaces the configured list", func(t *testing.T) {
		resetFlags(t)
		excludeDirs = []string{"dist"}

		settings := defaultSettings()
		require.NoError(t, settings.applyConfig(&config.Config{Exclude: []string{"vendor"}}))
		require.NoError(t, settings.applyFlags(changedSet("exclude")))
		assert.Equal(t, []string{"dist"}, settings.exclude)
	})
}

func TestLoadConfigFile(t *testing.T) {
	t.Run("explicit path", func(t *testing.T) {
		resetFlags(t)
		dir := t.TempDir()
		path := filepath.Join(dir, "my-config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("sort: path\n"), 0o644))
		configPath = path

		cfg, loadedFrom, err := loadConfigFile("")
		require.NoError(t, err)
		require.NotNil(t, cfg)
		assert.Equal(t, path, loadedFrom)
		assert.Equal(t, "path", cfg.Sort)
	})

	t.Run("explicit path missing", func(t *testing.T) {
		resetFlags(t)
		configPath = filepath.Join(t.TempDir(), "nope.yaml")

		_, _, err := loadConfigFile("")
		require.Error(t, err)
	})

	t.Run("found next to the scan root", func(t *testing.T) {
		resetFlags(t)
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".rskill.yaml"), []byte("gb: true\n"), 0o644))

		cfg, loadedFrom, err := loadConfigFile(dir)
		require.NoError(t, err)
		require.NotNil(t, cfg)
		assert.Equal(t, filepath.Join(dir, ".rskill.yaml"), loadedFrom)
		require.NotNil(t, cfg.GB)
		assert.True(t, *cfg.GB)
	})

	t.Run("broken file is an error", func(t *testing.T) {
		resetFlags(t)
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".rskill.yaml"), []byte("sort: [broken\n"), 0o644))

		_, _, err := loadConfigFile(dir)
		require.Error(t, err)

		var cliErr *model.CLIError
		require.True(t, errors.As(err, &cliErr))
		assert.Equal(t, model.ExitConfigInvalid, cliErr.Code)
	})
}

func TestNewScanner(t *testing.T) {
	t.Run("valid root", func(t *testing.T) {
		settings := defaultSettings()
		settings.root = t.TempDir()

		scanner, err := newScanner(settings)
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(scanner.Root()))
	})

	t.Run("missing root is invalid input", func(t *testing.T) {
		settings := defaultSettings()
		settings.root = filepath.Join(t.TempDir(), "does-not-exist")

		_, err := newScanner(settings)
		var cliErr *model.CLIError
		require.ErrorAs(t, err, &cliErr)
		assert.Equal(t, model.ExitInvalidInput, cliErr.Code)
	})
}
