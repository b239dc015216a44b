// Package cli implements the cobra-based CLI commands for rskill.
//
// Each subcommand (list, clean, cache, config) is defined in its own
// file within this package. This file defines the root command that
// serves as the parent for all subcommands, handles global flags, and
// runs the interactive interface when rskill is invoked bare on a
// terminal.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rskill-dev/rskill/internal/clean"
	"github.com/rskill-dev/rskill/internal/model"
	"github.com/rskill-dev/rskill/internal/release"
	"github.com/rskill-dev/rskill/internal/sysopen"
	"github.com/rskill-dev/rskill/internal/ui"
)

// Global flag variables shared across all subcommands.
// These are bound to cobra persistent flags on the root command,
// which makes them available to every subcommand automatically.
var (
	// jsonOutput controls whether command output is formatted as JSON.
	// When false (default), output uses human-readable text format.
	jsonOutput bool

	// verbose enables detailed logging output for debugging.
	// When true, additional information about operations is printed to stderr.
	verbose bool

	// fullScan widens the scan to the whole home directory.
	fullScan bool

	// targetName overrides the build directory name to look for.
	targetName string

	// sortBy selects the ordering of scan results: size, path, last-mod.
	sortBy string

	// excludeDirs lists directory names the scan skips entirely.
	excludeDirs []string

	// excludeHidden skips dot-directories during the scan.
	excludeHidden bool

	// hideErrors suppresses per-directory scan problem reporting.
	hideErrors bool

	// gbUnits pins size output to gigabytes with two decimals.
	gbUnits bool

	// noUpdateCheck disables the background release check.
	noUpdateCheck bool

	// configPath points at an explicit configuration file.
	configPath string

	// maxDepth bounds scan recursion below the root.
	maxDepth int
)

// version, commit, and date are set at build time via ldflags.
// They are injected from the main package to display version information.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// interactiveUpdateWait is how long the interactive interface lets the
// background release check finish. The underlying request times out
// well before this.
const interactiveUpdateWait = 5 * time.Second

// NewRootCommand creates and configures the root cobra command.
// This is the entry point for the entire CLI application.
//
// Invoked bare on a terminal, the root command launches the interactive
// interface. With --json, or when stdout is not a terminal, it behaves
// like "rskill list" so pipes and scripts get parseable output.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rskill [directory]",
		Short: "Find and remove Rust build directories",
		Long: `rskill scans a directory tree for Cargo projects, sizes their target/
build directories, and removes the ones you no longer need.

Run it bare in a terminal for the interactive interface, or use the
list and clean subcommands for scriptable output. Cargo's shared caches
are reported by the cache subcommand but never removed.`,

		Args: cobra.MaximumNArgs(1),

		// SilenceUsage prevents cobra from printing usage on every error.
		// We handle error output ourselves for cleaner UX.
		SilenceUsage: true,

		// SilenceErrors prevents cobra from printing errors automatically.
		// We format errors ourselves (text or JSON based on --json flag).
		SilenceErrors: true,

		// Version is displayed when --version flag is used.
		Version: release.Info{Version: Version, Commit: Commit, Date: Date}.String(),

		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd, args)
		},
	}

	// PersistentFlags are inherited by all subcommands. Any flag defined
	// here is automatically available in every subcommand without
	// re-declaration.
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&fullScan, "full", "f", false, "Scan the whole home directory")
	rootCmd.PersistentFlags().StringVarP(&targetName, "target", "t", "target", "Build directory name to look for")
	rootCmd.PersistentFlags().StringVarP(&sortBy, "sort", "s", string(model.SortBySize), "Sort order: size, path, last-mod")
	rootCmd.PersistentFlags().StringSliceVarP(&excludeDirs, "exclude", "E", nil, "Directory names to skip (repeatable)")
	rootCmd.PersistentFlags().BoolVarP(&excludeHidden, "exclude-hidden", "x", false, "Skip hidden directories")
	rootCmd.PersistentFlags().BoolVar(&hideErrors, "hide-errors", false, "Suppress scan problem reporting")
	rootCmd.PersistentFlags().BoolVar(&gbUnits, "gb", false, "Show sizes in gigabytes")
	rootCmd.PersistentFlags().BoolVar(&noUpdateCheck, "no-update-check", false, "Skip the release update check")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a configuration file")
	rootCmd.PersistentFlags().IntVar(&maxDepth, "max-depth", 0, "Directory depth limit below the scan root")

	// Register subcommands. Each subcommand is defined in its own file
	// (list.go, clean.go, etc.) and returns a *cobra.Command.
	rootCmd.AddCommand(NewListCommand())
	rootCmd.AddCommand(NewCleanCommand())
	rootCmd.AddCommand(NewCacheCommand())
	rootCmd.AddCommand(NewConfigCommand())

	return rootCmd
}

// runRoot dispatches a bare "rskill [directory]" invocation: the
// interactive interface on a terminal, the list output everywhere else.
func runRoot(cmd *cobra.Command, args []string) error {
	settings, err := resolveSettings(cmd, args)
	if err != nil {
		return err
	}

	if IsJSONOutput() || !stdoutIsTerminal() {
		return runListWithSettings(cmd.Context(), settings)
	}
	return runInteractive(cmd.Context(), settings)
}

// runInteractive wires the scanner, the cleaner, and the reveal helper
// into the bubbletea session and blocks until the user quits.
func runInteractive(ctx context.Context, settings *scanSettings) error {
	scanner, err := newScanner(settings)
	if err != nil {
		return err
	}

	opts := ui.Options{
		Scanner: scanner,
		Clean: func(ctx context.Context, project model.Project) (int64, error) {
			return clean.Remove(ctx, project, clean.Options{TargetName: settings.targetName})
		},
		Reveal:     sysopen.Reveal,
		Sort:       settings.sort,
		GB:         settings.gb,
		HideErrors: settings.hideErrors,
	}

	if harvest := startUpdateCheck(ctx, settings); harvest != nil {
		opts.CheckUpdate = func() *release.Release {
			return harvest(interactiveUpdateWait)
		}
	}

	if err := ui.Run(ctx, opts); err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "interactive session failed", err)
	}
	return nil
}

// Execute runs the root command and handles exit codes.
// This is the main entry point called from main.go.
//
// It inspects errors returned by cobra commands and translates them
// into appropriate OS exit codes. CLIError types carry their own
// exit codes; other errors default to exit code 1.
func Execute(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		// Check if the error is a CLIError with a specific exit code.
		// errors.As would also work here, but a type assertion is simpler
		// for this single-level check.
		if cliErr, ok := err.(*model.CLIError); ok {
			printError(cliErr.Message, cliErr.Err)
			os.Exit(int(cliErr.Code))
		}

		// Generic error, exit with code 1.
		printError(err.Error(), nil)
		os.Exit(int(model.ExitGeneralError))
	}
}

// printError outputs an error message in the appropriate format
// (JSON or text) based on the --json global flag.
func printError(message string, underlying error) {
	if jsonOutput {
		errObj := map[string]interface{}{
			"error": map[string]interface{}{
				"message": message,
			},
		}
		if underlying != nil {
			if errMap, ok := errObj["error"].(map[string]interface{}); ok {
				errMap["detail"] = underlying.Error()
			}
		}
		// Errors go to stderr even in JSON mode, because stdout is
		// reserved for successful command output.
		data, _ := json.MarshalIndent(errObj, "", "  ")
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		if underlying != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", message, underlying)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %s\n", message)
		}
	}
}

// VerboseLog prints a message to stderr only when verbose mode is enabled.
// This is used throughout the CLI for debug/trace output that helps
// users understand what operations are being performed.
func VerboseLog(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[verbose] "+format+"\n", args...)
	}
}

// IsJSONOutput returns whether the --json flag is set.
// Subcommands use this to decide their output format.
func IsJSONOutput() bool {
	return jsonOutput
}

// stdoutIsTerminal reports whether stdout is attached to a terminal.
func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// stdinIsTerminal reports whether stdin is attached to a terminal.
// Confirmation prompts require it.
func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// startUpdateCheck launches the background release check when it is
// enabled for this run. Returns nil when the check is disabled; the
// returned harvest function otherwise waits for the result.
func startUpdateCheck(ctx context.Context, settings *scanSettings) func(wait time.Duration) *release.Release {
	if !settings.checkUpdates {
		return nil
	}

	info := release.Info{Version: Version, Commit: Commit, Date: Date}
	if info.Dev() {
		VerboseLog("Development build, skipping the release check")
		return nil
	}

	VerboseLog("Checking for a newer release in the background")
	checker := &release.Checker{}
	return checker.CheckInBackground(ctx, Version)
}

// printUpdateNotice waits briefly for the background release check and
// prints a one-line notice to stderr when a newer release exists.
func printUpdateNotice(harvest func(wait time.Duration) *release.Release) {
	if harvest == nil {
		return
	}
	rel := harvest(release.DefaultHarvestWait)
	if rel == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "\nA newer rskill release is available: %s\n%s\n", rel.TagName, rel.HTMLURL)
}
