// Package cli: clean.go implements the "rskill clean" command.
//
// The clean command scans for Cargo projects, shows what would be
// removed, asks for confirmation, and then deletes every discovered
// build directory. --dry-run stops after the report, --yes skips the
// prompt for scripted use. Removal failures are reported per project
// and turn into exit code 4 without aborting the rest of the batch.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rskill-dev/rskill/internal/clean"
	"github.com/rskill-dev/rskill/internal/model"
)

// cleanFlags holds the flag values for the clean command.
type cleanFlags struct {
	// yes skips the confirmation prompt.
	yes bool

	// dryRun reports what would be removed without removing anything.
	dryRun bool
}

// NewCleanCommand creates the "clean" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewCleanCommand() *cobra.Command {
	flags := &cleanFlags{}

	cmd := &cobra.Command{
		Use:   "clean [directory]",
		Short: "Remove the build directories of discovered projects",
		Long: `Scan for Cargo projects and remove their build directories.

Everything removed is rebuildable with cargo build; shared caches under
~/.cargo are never touched. Projects modified within the last 30 days
are flagged in the confirmation, since they will likely rebuild soon.

Examples:
  rskill clean
  rskill clean ~/src --dry-run
  rskill clean --yes --exclude vendored`,

		Args: cobra.MaximumNArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := resolveSettings(cmd, args)
			if err != nil {
				return err
			}
			return runClean(cmd.Context(), settings, flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.yes, "yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Report what would be removed without removing anything")

	return cmd
}

// runClean is the main logic for the clean command.
func runClean(ctx context.Context, settings *scanSettings, flags *cleanFlags) error {
	harvest := startUpdateCheck(ctx, settings)
	defer printUpdateNotice(harvest)

	scanner, err := newScanner(settings)
	if err != nil {
		return err
	}

	VerboseLog("Scanning %s", scanner.Root())
	result, err := scanner.Scan(ctx)
	if err != nil {
		return model.WrapCLIError(model.ExitScanFailed, "scan failed", err)
	}

	candidates := cleanCandidates(result.Projects, settings.sort)
	if len(candidates) == 0 {
		fmt.Println("Nothing to clean.")
		return nil
	}

	now := time.Now()
	printCleanPlan(candidates, settings.gb, now)

	if flags.dryRun {
		fmt.Println("\nDry run: nothing was removed.")
		return nil
	}

	if !flags.yes {
		if !stdinIsTerminal() {
			return model.NewCLIError(model.ExitUserCancelled,
				"standard input is not a terminal; pass --yes to confirm removal")
		}
		if active := countActive(candidates, now); active > 0 {
			fmt.Printf("\n%d of these projects were modified in the last 30 days and will likely rebuild.\n", active)
		}
		prompt := fmt.Sprintf("Remove %d build directories (%s)?",
			len(candidates), model.FormatSize(model.TotalSize(candidates), settings.gb))
		if !promptConfirmation(os.Stdin, os.Stdout, prompt) {
			return model.NewCLIError(model.ExitUserCancelled, "aborted")
		}
	}

	fmt.Println()
	opts := clean.Options{TargetName: settings.targetName}
	freed, failures := clean.RemoveAll(ctx, candidates, opts, func(project model.Project, freed int64, err error) {
		if err != nil {
			fmt.Printf("  failed   %s: %v\n", project.Name, err)
			return
		}
		fmt.Printf("  cleaned  %-24s freed %s\n", project.Name, model.FormatSize(freed, settings.gb))
	})

	fmt.Printf("\nFreed %s across %d projects.\n",
		model.FormatSize(freed, settings.gb), len(candidates)-failures)
	if failures > 0 {
		return model.NewCLIError(model.ExitCleanFailed,
			fmt.Sprintf("%d of %d build directories could not be removed", failures, len(candidates)))
	}
	return nil
}

// cleanCandidates filters the scan result down to projects that have a
// build directory to remove, ordered by the active sort mode.
func cleanCandidates(projects []model.Project, mode model.SortMode) []model.Project {
	candidates := make([]model.Project, 0, len(projects))
	for i := range projects {
		if projects[i].HasTarget() {
			candidates = append(candidates, projects[i])
		}
	}
	model.SortProjects(candidates, mode)
	return candidates
}

// countActive is the number of projects touched within the active
// window relative to now.
func countActive(projects []model.Project, now time.Time) int {
	count := 0
	for i := range projects {
		if projects[i].Active(now) {
			count++
		}
	}
	return count
}

// printCleanPlan lists what is about to be removed and the total size.
func printCleanPlan(projects []model.Project, gb bool, now time.Time) {
	fmt.Println("Build directories to remove:")
	fmt.Println()
	for i := range projects {
		project := &projects[i]
		marker := ""
		if project.Active(now) {
			marker = "  (active)"
		}
		fmt.Printf("  %-24s %10s  %s%s\n",
			project.Name, model.FormatSize(project.TargetSize, gb), project.Path, marker)
	}
	fmt.Printf("\nTotal: %s across %d projects.\n",
		model.FormatSize(model.TotalSize(projects), gb), len(projects))
}

// promptConfirmation asks a yes/no question on out and reads the answer
// from in. Anything but an explicit yes declines, including EOF.
func promptConfirmation(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "\n%s [y/N]: ", prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	return parseConfirm(line)
}

// parseConfirm interprets one line of prompt input.
func parseConfirm(line string) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
