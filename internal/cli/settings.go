// Package cli: settings.go merges built-in defaults, the optional
// configuration file, and command-line flags into the effective
// settings for one command run.
//
// Precedence, lowest to highest: defaults, configuration file, flags
// the user actually set (cobra's Changed check). A flag left at its
// default never overrides a configured value.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rskill-dev/rskill/internal/config"
	"github.com/rskill-dev/rskill/internal/model"
	"github.com/rskill-dev/rskill/internal/scan"
)

// scanSettings are the effective options for a command run after the
// defaults, the configuration file, and the flags have been merged.
type scanSettings struct {
	root          string
	fullScan      bool
	targetName    string
	sort          model.SortMode
	exclude       []string
	excludeHidden bool
	hideErrors    bool
	gb            bool
	maxDepth      int
	checkUpdates  bool
}

// defaultSettings returns the built-in defaults, before any
// configuration file or flag is applied.
func defaultSettings() *scanSettings {
	return &scanSettings{
		targetName:   scan.DefaultTargetName,
		sort:         model.SortBySize,
		checkUpdates: true,
	}
}

// resolveSettings builds the effective settings for a command run.
// args is the command's positional arguments; the first one, when
// present, is the scan root.
func resolveSettings(cmd *cobra.Command, args []string) (*scanSettings, error) {
	settings := defaultSettings()
	if len(args) > 0 {
		settings.root = args[0]
	}

	cfg, path, err := loadConfigFile(settings.root)
	if err != nil {
		return nil, err
	}
	if cfg != nil {
		VerboseLog("Loaded configuration from %s", path)
		if err := settings.applyConfig(cfg); err != nil {
			return nil, err
		}
	}

	if err := settings.applyFlags(cmd.Flags().Changed); err != nil {
		return nil, err
	}
	return settings, nil
}

// loadConfigFile loads the configuration for this run: the --config
// path when given, otherwise the first candidate found near the scan
// root or under the user config directory. A missing file is not an
// error; a broken one is.
func loadConfigFile(root string) (*config.Config, string, error) {
	if configPath != "" {
		cfg, err := config.Load(configPath)
		return cfg, configPath, err
	}

	searchRoot := root
	if searchRoot == "" {
		searchRoot = "."
	}
	path, found := config.Find(searchRoot)
	if !found {
		return nil, "", nil
	}
	cfg, err := config.Load(path)
	return cfg, path, err
}

// applyConfig folds a loaded configuration file into the settings.
// Only fields the file actually sets are applied.
func (s *scanSettings) applyConfig(cfg *config.Config) error {
	if cfg.TargetName != "" {
		s.targetName = cfg.TargetName
	}
	if cfg.Sort != "" {
		mode, err := model.ParseSortMode(cfg.Sort)
		if err != nil {
			return model.WrapCLIError(model.ExitConfigInvalid, "invalid sort in configuration", err)
		}
		s.sort = mode
	}
	if len(cfg.Exclude) > 0 {
		s.exclude = append(s.exclude, cfg.Exclude...)
	}
	if cfg.ExcludeHidden != nil {
		s.excludeHidden = *cfg.ExcludeHidden
	}
	if cfg.HideErrors != nil {
		s.hideErrors = *cfg.HideErrors
	}
	if cfg.MaxDepth > 0 {
		s.maxDepth = cfg.MaxDepth
	}
	if cfg.GB != nil {
		s.gb = *cfg.GB
	}
	if cfg.CheckUpdates != nil {
		s.checkUpdates = *cfg.CheckUpdates
	}
	return nil
}

// applyFlags folds the global flag variables into the settings.
// changed reports whether the user set a flag explicitly; unset flags
// never override the configuration file.
func (s *scanSettings) applyFlags(changed func(name string) bool) error {
	if changed("full") {
		s.fullScan = fullScan
	}
	if changed("target") {
		s.targetName = targetName
	}
	if changed("sort") {
		mode, err := model.ParseSortMode(sortBy)
		if err != nil {
			return model.WrapCLIError(model.ExitInvalidInput, "invalid --sort value", err)
		}
		s.sort = mode
	}
	if changed("exclude") {
		s.exclude = excludeDirs
	}
	if changed("exclude-hidden") {
		s.excludeHidden = excludeHidden
	}
	if changed("hide-errors") {
		s.hideErrors = hideErrors
	}
	if changed("gb") {
		s.gb = gbUnits
	}
	if changed("max-depth") {
		if maxDepth < 1 || maxDepth > config.MaxDepthLimit {
			return model.NewCLIError(model.ExitInvalidInput,
				fmt.Sprintf("invalid --max-depth %d: must be between 1 and %d", maxDepth, config.MaxDepthLimit))
		}
		s.maxDepth = maxDepth
	}
	if noUpdateCheck {
		s.checkUpdates = false
	}
	return nil
}

// newScanner builds a scanner from the settings.
func newScanner(settings *scanSettings) (*scan.Scanner, error) {
	scanner, err := scan.New(scan.Options{
		Root:          settings.root,
		TargetName:    settings.targetName,
		MaxDepth:      settings.maxDepth,
		FullScan:      settings.fullScan,
		Exclude:       settings.exclude,
		ExcludeHidden: settings.excludeHidden,
	})
	if err != nil {
		return nil, err // scan.New already returns a CLIError for a bad root
	}
	return scanner, nil
}
