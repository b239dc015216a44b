package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/rskill-dev/rskill/internal/model"
)

// DefaultFileName is the file name written by `rskill config init`.
const DefaultFileName = ".rskill.yaml"

// MaxDepthLimit is the largest search depth a config file may request.
const MaxDepthLimit = 32

// Config mirrors the optional rskill configuration file. All fields are
// optional; boolean options use pointers so that "not set" can be told
// apart from an explicit false.
type Config struct {
	// TargetName overrides the build directory name to look for
	// (default "target").
	TargetName string `json:"targetName,omitempty" yaml:"targetName,omitempty"`

	// Sort is the default ordering for listings: "size", "path", or
	// "last-mod".
	Sort string `json:"sort,omitempty" yaml:"sort,omitempty"`

	// Exclude lists directory names to skip while scanning.
	Exclude []string `json:"exclude,omitempty" yaml:"exclude,omitempty"`

	// ExcludeHidden skips dot-directories while scanning.
	ExcludeHidden *bool `json:"excludeHidden,omitempty" yaml:"excludeHidden,omitempty"`

	// HideErrors suppresses per-directory scan warnings in output.
	HideErrors *bool `json:"hideErrors,omitempty" yaml:"hideErrors,omitempty"`

	// MaxDepth bounds how deep the scanner descends below the root.
	MaxDepth int `json:"maxDepth,omitempty" yaml:"maxDepth,omitempty"`

	// GB reports sizes in gigabytes instead of auto-scaled units.
	GB *bool `json:"gb,omitempty" yaml:"gb,omitempty"`

	// CheckUpdates controls the startup release check.
	CheckUpdates *bool `json:"checkUpdates,omitempty" yaml:"checkUpdates,omitempty"`
}

// ValidationError describes a single problem found in a config file.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Find searches for a configuration file, checking the scan root first
// and the per-user config directory second:
//
//  1. <root>/.rskill.json
//  2. <root>/.rskill.yaml
//  3. <root>/.rskill.yml
//  4. <UserConfigDir>/rskill/config.json
//  5. <UserConfigDir>/rskill/config.yaml
//
// The boolean result reports whether a file was found; configuration is
// optional, so finding nothing is not an error.
func Find(root string) (string, bool) {
	candidates := []string{
		filepath.Join(root, ".rskill.json"),
		filepath.Join(root, ".rskill.yaml"),
		filepath.Join(root, ".rskill.yml"),
	}
	if userDir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates,
			filepath.Join(userDir, "rskill", "config.json"),
			filepath.Join(userDir, "rskill", "config.yaml"),
		)
	}

	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}

// Load reads and parses the configuration file at path. Files ending in
// .json are treated as JSONC; .yaml and .yml files as YAML. The parsed
// config is validated before being returned.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitConfigInvalid,
			fmt.Sprintf("failed to read config file: %s", path), err)
	}

	cfg := &Config{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		// Strip comments and trailing commas before parsing.
		if err := json.Unmarshal(jsonc.ToJSON(data), cfg); err != nil {
			return nil, model.WrapCLIError(model.ExitConfigInvalid,
				fmt.Sprintf("failed to parse config file: %s", path), err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, model.WrapCLIError(model.ExitConfigInvalid,
				fmt.Sprintf("failed to parse config file: %s", path), err)
		}
	default:
		return nil, model.NewCLIError(model.ExitConfigInvalid,
			fmt.Sprintf("unsupported config file extension: %s", path))
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		messages := make([]string, len(errs))
		for i, e := range errs {
			messages[i] = e.Error()
		}
		return nil, model.NewCLIError(model.ExitConfigInvalid,
			fmt.Sprintf("invalid config file %s: %s", path, strings.Join(messages, "; ")))
	}
	return cfg, nil
}

// Validate checks the configuration for problems and returns one
// ValidationError per offending field. A zero-length result means the
// config is usable.
func (c *Config) Validate() []ValidationError {
	var errs []ValidationError

	if c.Sort != "" {
		if _, err := model.ParseSortMode(c.Sort); err != nil {
			errs = append(errs, ValidationError{
				Field:   "sort",
				Message: fmt.Sprintf("unknown sort mode %q (expected size, path, or last-mod)", c.Sort),
			})
		}
	}

	if c.MaxDepth < 0 || c.MaxDepth > MaxDepthLimit {
		errs = append(errs, ValidationError{
			Field:   "maxDepth",
			Message: fmt.Sprintf("must be between 1 and %d", MaxDepthLimit),
		})
	}

	if c.TargetName != "" {
		// The target name is joined onto project paths before removal,
		// so it must be a bare directory name.
		if c.TargetName == "." || c.TargetName == ".." ||
			strings.ContainsAny(c.TargetName, `/\`) {
			errs = append(errs, ValidationError{
				Field:   "targetName",
				Message: fmt.Sprintf("must be a plain directory name, got %q", c.TargetName),
			})
		}
	}

	for _, name := range c.Exclude {
		if name == "" || strings.ContainsAny(name, `/\`) {
			errs = append(errs, ValidationError{
				Field:   "exclude",
				Message: fmt.Sprintf("entries must be plain directory names, got %q", name),
			})
		}
	}

	return errs
}

// defaultConfig is the seed for generated config files. Pointer fields
// are set so every option appears in the output.
func defaultConfig() *Config {
	excludeHidden := false
	hideErrors := false
	gb := false
	checkUpdates := true
	return &Config{
		TargetName:    "target",
		Sort:          model.SortBySize.String(),
		Exclude:       []string{"node_modules"},
		ExcludeHidden: &excludeHidden,
		HideErrors:    &hideErrors,
		MaxDepth:      5,
		GB:            &gb,
		CheckUpdates:  &checkUpdates,
	}
}

// Generate renders a starter configuration file with every option set
// to its default value.
func Generate() ([]byte, error) {
	body, err := yaml.Marshal(defaultConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal default config: %w", err)
	}

	header := "# rskill configuration.\n" +
		"# Command-line flags override anything set here.\n" +
		"# See `rskill --help` for what each option does.\n\n"
	return append([]byte(header), body...), nil
}

// WriteDefault writes a starter config file to path, creating parent
// directories as needed. It refuses to overwrite an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return model.NewCLIError(model.ExitConfigInvalid,
			fmt.Sprintf("config file already exists: %s", path))
	}

	data, err := Generate()
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError,
			"failed to generate default config", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("failed to create directory: %s", dir), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("failed to write config file: %s", path), err)
	}
	return nil
}
