// Package scan discovers Rust projects and sizes their build directories.
package scan

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/rskill-dev/rskill/internal/cargo"
	"github.com/rskill-dev/rskill/internal/model"
)

const (
	// DefaultTargetName is Cargo's default build directory name.
	DefaultTargetName = "target"

	// DefaultMaxDepth bounds how many directory levels below the root
	// a project may sit.
	DefaultMaxDepth = 5

	// FullScanMaxDepth is the deeper bound used when scanning a whole
	// home directory.
	FullScanMaxDepth = 10
)

// alwaysSkipNames are directory names never worth descending into,
// regardless of flags.
var alwaysSkipNames = map[string]struct{}{
	".git":         {},
	"node_modules": {},
}

// Options controls a scan. The zero value scans the current directory
// with Cargo defaults.
type Options struct {
	// Root is the directory to scan. Empty means the current directory,
	// or the user's home directory when FullScan is set.
	Root string

	// TargetName is the build directory name to look for. Empty means
	// DefaultTargetName. Projects configured with a custom build dir
	// (via cargo's build.target-dir) can be scanned by setting this.
	TargetName string

	// MaxDepth bounds recursion below the root. Zero picks the default
	// for the scan type.
	MaxDepth int

	// FullScan widens the scan to the home directory with a deeper
	// recursion bound.
	FullScan bool

	// Exclude lists directory names to skip entirely.
	Exclude []string

	// ExcludeHidden skips dot-directories.
	ExcludeHidden bool

	// Concurrency bounds the parallel per-project analysis.
	// Zero means the number of CPUs.
	Concurrency int
}

// Result is the outcome of one scan.
type Result struct {
	// Projects are the discovered projects, in walk order.
	Projects []model.Project `json:"projects"`

	// Issues are directories the walk had to skip.
	Issues []model.ScanIssue `json:"issues,omitempty"`
}

// Scanner performs project discovery with a fixed set of options.
type Scanner struct {
	opts    Options
	exclude map[string]struct{}
	ignore  []string
}

// New validates the options, resolves the scan root to an absolute
// directory, and returns a ready Scanner.
func New(opts Options) (*Scanner, error) {
	if opts.Root == "" {
		if opts.FullScan {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("failed to resolve home directory: %w", err)
			}
			opts.Root = home
		} else {
			opts.Root = "."
		}
	}

	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve scan root: %w", err)
	}
	opts.Root = root

	info, err := os.Stat(root)
	if err != nil {
		return nil, model.WrapCLIError(
			model.ExitInvalidInput,
			fmt.Sprintf("scan root does not exist: %s", root),
			err,
		)
	}
	if !info.IsDir() {
		return nil, model.NewCLIError(
			model.ExitInvalidInput,
			fmt.Sprintf("scan root is not a directory: %s", root),
		)
	}

	if opts.TargetName == "" {
		opts.TargetName = DefaultTargetName
	}
	if opts.MaxDepth <= 0 {
		if opts.FullScan {
			opts.MaxDepth = FullScanMaxDepth
		} else {
			opts.MaxDepth = DefaultMaxDepth
		}
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = runtime.NumCPU()
	}

	exclude := make(map[string]struct{}, len(opts.Exclude))
	for _, name := range opts.Exclude {
		if name != "" {
			exclude[name] = struct{}{}
		}
	}

	return &Scanner{
		opts:    opts,
		exclude: exclude,
		ignore:  systemIgnorePaths(),
	}, nil
}

// Root returns the resolved absolute scan root.
func (s *Scanner) Root() string {
	return s.opts.Root
}

// Scan walks the root for Cargo projects, then analyzes each one with
// bounded parallelism. Unreadable directories become Issues; the only
// errors returned are setup failures and context cancellation.
func (s *Scanner) Scan(ctx context.Context) (*Result, error) {
	dirs, walkIssues, err := s.discover(ctx)
	if err != nil {
		return nil, err
	}

	projects := make([]model.Project, len(dirs))
	issueLists := make([][]model.ScanIssue, len(dirs))

	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(s.opts.Concurrency)
	for i, dir := range dirs {
		grp.Go(func() error {
			project, issues, err := s.analyze(gctx, dir)
			if err != nil {
				return err
			}
			projects[i] = project
			issueLists[i] = issues
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	result := &Result{Projects: projects, Issues: walkIssues}
	for _, issues := range issueLists {
		result.Issues = append(result.Issues, issues...)
	}
	return result, nil
}

// discover walks the tree and returns the project directories found.
func (s *Scanner) discover(ctx context.Context) ([]string, []model.ScanIssue, error) {
	var dirs []string
	var issues []model.ScanIssue

	root := s.opts.Root
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err != nil {
			issues = append(issues, model.ScanIssue{Path: path, Reason: err.Error()})
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if !d.IsDir() {
			if d.Name() == cargo.ManifestName {
				dirs = append(dirs, filepath.Dir(path))
			}
			return nil
		}

		if path == root {
			return nil
		}
		if s.skipDir(path, d.Name()) {
			return fs.SkipDir
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return dirs, issues, nil
}

// skipDir decides whether to descend into a directory. The root itself
// is never passed here.
func (s *Scanner) skipDir(path, name string) bool {
	if _, ok := alwaysSkipNames[name]; ok {
		return true
	}
	// Build directories are what we measure, not where we search:
	// a Cargo.toml vendored inside target/ is not a user project.
	if name == s.opts.TargetName {
		return true
	}
	if s.opts.ExcludeHidden && strings.HasPrefix(name, ".") {
		return true
	}
	if _, ok := s.exclude[name]; ok {
		return true
	}
	if s.depth(path) > s.opts.MaxDepth {
		return true
	}
	for _, ignore := range s.ignore {
		if pathsEqual(path, ignore) {
			return true
		}
	}
	return false
}

// depth counts directory levels below the scan root.
func (s *Scanner) depth(path string) int {
	rel, err := filepath.Rel(s.opts.Root, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}

// systemIgnorePaths lists OS directories a scan should never descend
// into. A user can still scan one directly by making it the root.
func systemIgnorePaths() []string {
	switch runtime.GOOS {
	case "windows":
		return []string{
			`C:\Windows`,
			`C:\Program Files`,
			`C:\Program Files (x86)`,
			`C:\ProgramData`,
		}
	case "darwin":
		return []string{
			"/System", "/Library", "/private",
			"/bin", "/sbin", "/usr", "/dev", "/etc", "/var",
		}
	default:
		return []string{
			"/proc", "/sys", "/dev", "/boot", "/etc",
			"/lib", "/lib64", "/bin", "/sbin", "/usr",
			"/var", "/run", "/snap",
		}
	}
}

// pathsEqual compares cleaned paths, case-insensitively on Windows.
func pathsEqual(a, b string) bool {
	if runtime.GOOS == "windows" {
		return strings.EqualFold(filepath.Clean(a), filepath.Clean(b))
	}
	return filepath.Clean(a) == filepath.Clean(b)
}
