package scan

import (
	"context"
	"os"
	"path"
	"path/filepath"

	"github.com/rskill-dev/rskill/internal/cargo"
	"github.com/rskill-dev/rskill/internal/model"
)

// profileKinds maps Cargo's build-profile directory names to their
// artifact kinds. Anything else under the build dir is "other".
var profileKinds = map[string]model.ArtifactKind{
	"debug":   model.KindDebug,
	"release": model.KindRelease,
}

// analyze gathers everything rskill reports about one project directory.
// Failures to read the manifest or the build directory degrade to issues;
// the only error returned is context cancellation.
func (s *Scanner) analyze(ctx context.Context, dir string) (model.Project, []model.ScanIssue, error) {
	var issues []model.ScanIssue

	project := model.Project{
		Name:         filepath.Base(dir),
		Path:         dir,
		TargetDir:    filepath.Join(dir, s.opts.TargetName),
		LastModified: cargo.LastModified(dir),
	}

	manifest, err := cargo.ParseManifest(filepath.Join(dir, cargo.ManifestName))
	if err != nil {
		issues = append(issues, model.ScanIssue{Path: dir, Reason: err.Error()})
	} else {
		if manifest.Name != "" {
			project.Name = manifest.Name
		}
		project.WorkspaceRoot = manifest.WorkspaceRoot
		project.Dependencies = manifest.Dependencies
	}

	if _, err := os.Stat(filepath.Join(dir, cargo.LockName)); err == nil {
		project.HasLockFile = true
	}

	artifacts, total, targetIssues, err := s.analyzeTarget(ctx, project.TargetDir)
	if err != nil {
		return model.Project{}, nil, err
	}
	project.Artifacts = artifacts
	project.TargetSize = total
	issues = append(issues, targetIssues...)

	return project, issues, nil
}

// analyzeTarget sizes the build directory and classifies its top-level
// entries. A missing build directory is normal (freshly cloned or
// already cleaned projects) and yields an empty breakdown.
func (s *Scanner) analyzeTarget(ctx context.Context, targetDir string) ([]model.Artifact, int64, []model.ScanIssue, error) {
	entries, err := os.ReadDir(targetDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, nil, nil
		}
		return nil, 0, []model.ScanIssue{{Path: targetDir, Reason: err.Error()}}, nil
	}

	var artifacts []model.Artifact
	var total int64

	for _, entry := range entries {
		name := entry.Name()

		if !entry.IsDir() {
			// Loose files like CACHEDIR.TAG and .rustc_info.json.
			info, err := entry.Info()
			if err != nil {
				continue
			}
			artifacts = append(artifacts, model.Artifact{
				Kind: model.KindOther,
				Path: name,
				Size: info.Size(),
			})
			total += info.Size()
			continue
		}

		if kind, ok := profileKinds[name]; ok {
			profileArts, profileTotal, err := s.profileArtifacts(ctx, targetDir, name, kind)
			if err != nil {
				return nil, 0, nil, err
			}
			artifacts = append(artifacts, profileArts...)
			total += profileTotal
			continue
		}

		size, err := cargo.DirSize(ctx, filepath.Join(targetDir, name))
		if err != nil {
			return nil, 0, nil, err
		}
		artifacts = append(artifacts, model.Artifact{
			Kind: model.KindOther,
			Path: name,
			Size: size,
		})
		total += size
	}

	return artifacts, total, nil, nil
}

// profileArtifacts breaks a debug/ or release/ directory into the
// compiler's cache subdirectories plus a residual entry for the profile
// itself. The residual covers final binaries, .fingerprint, build
// scripts, and anything else directly under the profile.
func (s *Scanner) profileArtifacts(ctx context.Context, targetDir, profile string, kind model.ArtifactKind) ([]model.Artifact, int64, error) {
	profileDir := filepath.Join(targetDir, profile)
	entries, err := os.ReadDir(profileDir)
	if err != nil {
		// Readable parent with an unreadable profile: size what we can.
		size, sizeErr := cargo.DirSize(ctx, profileDir)
		if sizeErr != nil {
			return nil, 0, sizeErr
		}
		return []model.Artifact{{Kind: kind, Path: profile, Size: size}}, size, nil
	}

	subKinds := map[string]model.ArtifactKind{
		"incremental": model.KindIncremental,
		"deps":        model.KindDeps,
		"examples":    model.KindExamples,
	}

	var subs []model.Artifact
	var residual, total int64

	for _, entry := range entries {
		entryPath := filepath.Join(profileDir, entry.Name())

		var size int64
		if entry.IsDir() {
			size, err = cargo.DirSize(ctx, entryPath)
			if err != nil {
				return nil, 0, err
			}
		} else if info, infoErr := entry.Info(); infoErr == nil {
			size = info.Size()
		}
		total += size

		if subKind, ok := subKinds[entry.Name()]; ok && entry.IsDir() {
			subs = append(subs, model.Artifact{
				Kind: subKind,
				Path: path.Join(profile, entry.Name()),
				Size: size,
			})
		} else {
			residual += size
		}
	}

	artifacts := make([]model.Artifact, 0, len(subs)+1)
	if residual > 0 || len(subs) == 0 {
		artifacts = append(artifacts, model.Artifact{Kind: kind, Path: profile, Size: residual})
	}
	artifacts = append(artifacts, subs...)

	return artifacts, total, nil
}
