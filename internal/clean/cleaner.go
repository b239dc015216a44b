package clean

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rskill-dev/rskill/internal/cargo"
	"github.com/rskill-dev/rskill/internal/model"
)

// Options controls removal behavior.
type Options struct {
	// DryRun reports what would be removed without deleting anything.
	DryRun bool

	// TargetName is the build directory name, matching the scan that
	// produced the projects. Empty means Cargo's default.
	TargetName string
}

// targetName returns the effective build directory name.
func (o Options) targetName() string {
	if o.TargetName == "" {
		return "target"
	}
	return o.TargetName
}

// Remove deletes one project's build directory and returns the bytes
// reclaimed. A project without a build directory frees zero bytes and
// is not an error.
//
// Safety guard: the path removed is always <project>/<targetName>, and
// the project root must still contain a Cargo.toml at removal time.
// This keeps a stale or hand-constructed Project from ever pointing the
// removal at an arbitrary directory.
func Remove(ctx context.Context, project model.Project, opts Options) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	manifest := filepath.Join(project.Path, cargo.ManifestName)
	if _, err := os.Stat(manifest); err != nil {
		return 0, fmt.Errorf("refusing to clean %s: %s not found: %w", project.Path, cargo.ManifestName, err)
	}

	targetDir := filepath.Join(project.Path, opts.targetName())
	info, err := os.Stat(targetDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to inspect %s: %w", targetDir, err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("refusing to clean %s: not a directory", targetDir)
	}

	// The scan already measured the directory; re-measuring before a
	// real removal keeps the reported number honest when builds ran
	// in between.
	freed := project.TargetSize
	if !opts.DryRun {
		if size, err := cargo.DirSize(ctx, targetDir); err == nil {
			freed = size
		}
		if err := os.RemoveAll(targetDir); err != nil {
			return 0, fmt.Errorf("failed to remove %s: %w", targetDir, err)
		}
	}

	return freed, nil
}

// RemoveAll cleans every project in order, reporting each outcome
// through progress. Individual failures are counted but never abort
// the batch; only context cancellation stops it early.
func RemoveAll(ctx context.Context, projects []model.Project, opts Options, progress func(project model.Project, freed int64, err error)) (freed int64, failures int) {
	for _, project := range projects {
		if ctx.Err() != nil {
			return freed, failures
		}

		n, err := Remove(ctx, project, opts)
		if err != nil {
			failures++
		} else {
			freed += n
		}
		if progress != nil {
			progress(project, n, err)
		}
	}
	return freed, failures
}
