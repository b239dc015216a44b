// Package main is the entry point for the rskill CLI.
//
// This binary finds Rust projects, reports how much disk their build
// directories occupy, and removes the ones you pick. It delegates all
// functionality to the internal/cli package, which defines cobra
// commands.
//
// Build-time variables (version, commit, date) are injected via ldflags
// by the release workflow. During development, they default to "dev",
// "none", and "unknown" respectively.
package main

import (
	"github.com/rskill-dev/rskill/internal/cli"
)

// version, commit, and date are set by the release workflow at build
// time via ldflags (see .github/workflows/release.yml). They provide
// binary identification for the --version flag output.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Inject build-time version info into the CLI package.
	// This decouples the build system (workflow ldflags) from the
	// CLI framework (cobra), keeping main.go minimal.
	cli.Version = version
	cli.Commit = commit
	cli.Date = date

	// Create the root command with all subcommands registered,
	// then execute it. Execute handles error formatting and exit codes.
	rootCmd := cli.NewRootCommand()
	cli.Execute(rootCmd)
}
