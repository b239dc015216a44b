// Package cli: cache.go implements the "rskill cache" command.
//
// The cache command reports the disk usage of cargo's shared caches
// (registry and git) and, with --docker, of the Docker daemon. Cargo
// caches are report-only: they are shared across projects and rskill
// never removes them. The Docker build cache, however, can be pruned
// with --prune after the usual confirmation.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rskill-dev/rskill/internal/cargo"
	"github.com/rskill-dev/rskill/internal/dockerusage"
	"github.com/rskill-dev/rskill/internal/model"
)

// cacheFlags holds the flag values for the cache command.
type cacheFlags struct {
	// docker includes Docker disk usage in the report.
	docker bool

	// prune removes unused Docker build cache records. Implies docker.
	prune bool

	// yes skips the prune confirmation prompt.
	yes bool

	// dryRun reports what pruning would reclaim without pruning.
	dryRun bool
}

// NewCacheCommand creates the "cache" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewCacheCommand() *cobra.Command {
	flags := &cacheFlags{}

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Report cargo and Docker cache disk usage",
		Long: `Report the disk usage of cargo's shared caches: the registry index,
downloaded crates, extracted sources, and git dependency checkouts.

These caches are shared across every project on the machine, so rskill
reports them but never removes them. With --docker the report also
covers Docker images, containers, volumes, and build cache; --prune
additionally removes unused Docker build cache records.

Examples:
  rskill cache
  rskill cache --docker
  rskill cache --prune --yes`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := resolveSettings(cmd, nil)
			if err != nil {
				return err
			}
			return runCache(cmd.Context(), settings, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.docker, "docker", false, "Include Docker disk usage")
	cmd.Flags().BoolVar(&flags.prune, "prune", false, "Prune the Docker build cache (implies --docker)")
	cmd.Flags().BoolVarP(&flags.yes, "yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Report what would be pruned without pruning")

	return cmd
}

// runCache is the main logic for the cache command.
func runCache(ctx context.Context, settings *scanSettings, flags *cacheFlags) error {
	harvest := startUpdateCheck(ctx, settings)
	defer printUpdateNotice(harvest)

	if flags.prune {
		flags.docker = true
	}

	cargoCache, err := cargo.InspectCache(ctx)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to inspect cargo caches", err)
	}

	// The daemon is only contacted when Docker reporting is requested.
	var usage *dockerusage.Usage
	var client *dockerusage.Client
	if flags.docker {
		client, err = dockerusage.NewClient()
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()

		if err := client.Ping(ctx); err != nil {
			return err
		}
		VerboseLog("Connected to Docker daemon")

		du, err := client.Usage(ctx)
		if err != nil {
			return err
		}
		usage = &du
	}

	if IsJSONOutput() {
		printCacheJSON(cargoCache, usage)
	} else {
		printCacheText(cargoCache, usage, settings.gb)
	}

	if !flags.prune {
		return nil
	}
	return pruneDockerBuildCache(ctx, client, usage, settings, flags)
}

// pruneDockerBuildCache runs the confirm-then-prune flow for the Docker
// build cache.
func pruneDockerBuildCache(ctx context.Context, client *dockerusage.Client, usage *dockerusage.Usage, settings *scanSettings, flags *cacheFlags) error {
	reclaimable := model.FormatSize(usage.BuildCache.Reclaimable, settings.gb)

	if flags.dryRun {
		fmt.Printf("\nDry run: would prune up to %s of Docker build cache.\n", reclaimable)
		return nil
	}

	if !flags.yes {
		if !stdinIsTerminal() {
			return model.NewCLIError(model.ExitUserCancelled,
				"standard input is not a terminal; pass --yes to confirm pruning")
		}
		prompt := fmt.Sprintf("Prune the Docker build cache (up to %s)?", reclaimable)
		if !promptConfirmation(os.Stdin, os.Stdout, prompt) {
			return model.NewCLIError(model.ExitUserCancelled, "aborted")
		}
	}

	reclaimed, deleted, err := client.PruneBuildCache(ctx, false)
	if err != nil {
		return err
	}
	fmt.Printf("\nPruned %d build cache records, reclaimed %s.\n",
		deleted, model.FormatSize(reclaimed, settings.gb))
	return nil
}

// cacheResultJSON is the JSON output structure of the cache command.
type cacheResultJSON struct {
	Cargo  *cargo.Cache       `json:"cargo"`
	Docker *dockerusage.Usage `json:"docker,omitempty"`
}

// printCacheJSON outputs the cache report as structured JSON.
func printCacheJSON(cargoCache *cargo.Cache, usage *dockerusage.Usage) {
	out := cacheResultJSON{Cargo: cargoCache, Docker: usage}
	data, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(data))
}

// printCacheText outputs the cache report as human-readable tables.
func printCacheText(cargoCache *cargo.Cache, usage *dockerusage.Usage, gb bool) {
	fmt.Println("Cargo caches (shared across projects, never removed by rskill):")
	fmt.Printf("  %-16s %10s\n", "registry index", model.FormatSize(cargoCache.RegistryIndex, gb))
	fmt.Printf("  %-16s %10s\n", "registry cache", model.FormatSize(cargoCache.RegistryCache, gb))
	fmt.Printf("  %-16s %10s\n", "registry src", model.FormatSize(cargoCache.RegistrySrc, gb))
	fmt.Printf("  %-16s %10s\n", "git db", model.FormatSize(cargoCache.GitDB, gb))
	fmt.Printf("  %-16s %10s\n", "git checkouts", model.FormatSize(cargoCache.GitCheckouts, gb))
	fmt.Printf("  %-16s %10s\n", "total", model.FormatSize(cargoCache.Total(), gb))

	if usage == nil {
		return
	}

	fmt.Println("\nDocker disk usage:")
	fmt.Printf("  %-12s %6s %10s %12s\n", "TYPE", "COUNT", "SIZE", "RECLAIMABLE")
	printDockerSection("images", usage.Images, gb)
	printDockerSection("containers", usage.Containers, gb)
	printDockerSection("volumes", usage.Volumes, gb)
	printDockerSection("build cache", usage.BuildCache, gb)
	fmt.Printf("  %-12s %6s %10s %12s\n", "total", "",
		model.FormatSize(usage.Total(), gb), model.FormatSize(usage.TotalReclaimable(), gb))
}

// printDockerSection prints one row of the Docker usage table.
func printDockerSection(label string, section dockerusage.Section, gb bool) {
	fmt.Printf("  %-12s %6d %10s %12s\n",
		label, section.Count, model.FormatSize(section.Size, gb), model.FormatSize(section.Reclaimable, gb))
}
