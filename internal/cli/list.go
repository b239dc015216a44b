// Package cli: list.go implements the "rskill list" command.
//
// The list command scans for Cargo projects and prints a table of their
// build directory sizes, ages, and paths, or a JSON document with
// --json. Directories the scan could not read are reported on stderr
// unless --hide-errors is set.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/rskill-dev/rskill/internal/model"
	"github.com/rskill-dev/rskill/internal/scan"
)

// NewListCommand creates the "list" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list [directory]",
		Short: "List Cargo projects and their build directory sizes",
		Long: `List the Cargo projects found under a directory, with the size and
age of each project's build directory.

Projects without a build directory are listed with a dash. The scan
root defaults to the current directory; --full scans your home
directory instead.

Examples:
  rskill list
  rskill list ~/src --sort last-mod
  rskill list --json | jq '.totalSize'`,

		Args: cobra.MaximumNArgs(1),

		// RunE returns an error to the root command's error handler.
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := resolveSettings(cmd, args)
			if err != nil {
				return err
			}
			return runListWithSettings(cmd.Context(), settings)
		},
	}
}

// runListWithSettings is the main logic for the list command. The root
// command reuses it for non-interactive invocations.
func runListWithSettings(ctx context.Context, settings *scanSettings) error {
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
	VerboseLog("Found %d projects, %d skipped directories", len(result.Projects), len(result.Issues))

	model.SortProjects(result.Projects, settings.sort)

	if IsJSONOutput() {
		printListJSON(result)
		return nil
	}

	printListText(result, settings)
	if !settings.hideErrors {
		printScanIssues(result.Issues)
	}
	return nil
}

// listResultJSON is the JSON output structure of the list command.
type listResultJSON struct {
	Projects  []model.Project   `json:"projects"`
	TotalSize int64             `json:"totalSize"`
	Count     int               `json:"count"`
	Issues    []model.ScanIssue `json:"issues"`
}

// printListJSON outputs the scan result as structured JSON.
func printListJSON(result *scan.Result) {
	out := listResultJSON{
		Projects:  result.Projects,
		TotalSize: model.TotalSize(result.Projects),
		Count:     len(result.Projects),
		Issues:    result.Issues,
	}
	// Empty slices instead of nil so JSON output shows [] instead of
	// null when nothing was found.
	if out.Projects == nil {
		out.Projects = []model.Project{}
	}
	if out.Issues == nil {
		out.Issues = []model.ScanIssue{}
	}

	data, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(data))
}

// printListText outputs the scan result as a human-readable table.
//
// The table format is:
//
//	NAME                           SIZE  LAST MODIFIED     STATUS  PATH
//	api-server                   4.2 GB  2 months ago      stale   /home/me/src/api-server
//	cli-tools                         -  3 days ago        active  /home/me/src/cli-tools
func printListText(result *scan.Result, settings *scanSettings) {
	if len(result.Projects) == 0 {
		fmt.Println("No Cargo projects found.")
		return
	}

	now := time.Now()
	fmt.Printf("%-24s %10s  %-16s  %-7s %s\n", "NAME", "SIZE", "LAST MODIFIED", "STATUS", "PATH")
	for i := range result.Projects {
		project := &result.Projects[i]
		fmt.Printf("%-24s %10s  %-16s  %-7s %s\n",
			project.Name,
			formatProjectSize(project, settings.gb),
			formatAge(project.LastModified, now),
			project.Status(now),
			project.Path,
		)
	}

	fmt.Printf("\n%d projects, %s of build artifacts\n",
		len(result.Projects),
		model.FormatSize(model.TotalSize(result.Projects), settings.gb))
}

// printScanIssues reports directories the scan had to skip. They go to
// stderr so piped stdout stays clean.
func printScanIssues(issues []model.ScanIssue) {
	if len(issues) == 0 {
		return
	}
	fmt.Fprintf(os.Stderr, "\nSkipped %d unreadable directories:\n", len(issues))
	for _, issue := range issues {
		fmt.Fprintf(os.Stderr, "  %s: %s\n", issue.Path, issue.Reason)
	}
}

// formatProjectSize renders a project's build directory size, with a
// dash for projects that have no build directory at all.
func formatProjectSize(project *model.Project, gb bool) string {
	if !project.HasTarget() {
		return "-"
	}
	return model.FormatSize(project.TargetSize, gb)
}

// formatAge renders how long ago a project was last touched. The zero
// time means no source indicator file exists.
func formatAge(lastModified, now time.Time) string {
	if lastModified.IsZero() {
		return "-"
	}
	return humanize.RelTime(lastModified, now, "ago", "from now")
}
