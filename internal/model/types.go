// Package model defines the domain types for the rskill CLI.
//
// All entities in this package are plain values produced by the scanner
// and consumed by the CLI commands and the interactive UI. They carry no
// behavior beyond classification, sorting, and validation.
package model

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// ActiveWindow is the recency threshold for considering a project active.
// Projects touched within this window get a warning before their build
// artifacts are removed, since they will likely be rebuilt soon.
const ActiveWindow = 30 * 24 * time.Hour

// ArtifactKind classifies an entry found inside a project's build
// directory. Cargo lays the directory out by build profile:
//
//	target/debug/        unoptimized builds + incremental/deps/examples
//	target/release/      optimized builds + incremental/deps/examples
//	target/doc/ etc.     anything else is reported as "other"
type ArtifactKind string

const (
	// KindDebug is an unoptimized build profile directory.
	KindDebug ArtifactKind = "debug"

	// KindRelease is an optimized build profile directory.
	KindRelease ArtifactKind = "release"

	// KindIncremental holds the compiler's incremental compilation state
	// inside a profile directory.
	KindIncremental ArtifactKind = "incremental"

	// KindDeps holds compiled dependency objects inside a profile directory.
	KindDeps ArtifactKind = "deps"

	// KindExamples holds compiled example binaries inside a profile directory.
	KindExamples ArtifactKind = "examples"

	// KindOther is any build-directory entry not covered above
	// (doc output, custom profiles, stray files).
	KindOther ArtifactKind = "other"
)

// String returns the string representation of ArtifactKind.
// This method satisfies the fmt.Stringer interface, enabling
// human-readable output in CLI commands and the interactive UI.
func (k ArtifactKind) String() string {
	return string(k)
}

// IsValid checks whether the ArtifactKind value is one of the
// predefined valid kinds.
func (k ArtifactKind) IsValid() bool {
	switch k {
	case KindDebug, KindRelease, KindIncremental, KindDeps, KindExamples, KindOther:
		return true
	default:
		return false
	}
}

// ParseArtifactKind converts a string to an ArtifactKind.
// Returns an error if the string does not match any valid kind.
func ParseArtifactKind(s string) (ArtifactKind, error) {
	kind := ArtifactKind(strings.ToLower(s))
	if !kind.IsValid() {
		return "", fmt.Errorf("invalid artifact kind: %q (valid: debug, release, incremental, deps, examples, other)", s)
	}
	return kind, nil
}

// Description returns a short human-readable explanation of what the
// artifact kind contains.
func (k ArtifactKind) Description() string {
	switch k {
	case KindDebug:
		return "debug build artifacts"
	case KindRelease:
		return "release build artifacts"
	case KindIncremental:
		return "incremental compilation cache"
	case KindDeps:
		return "compiled dependencies"
	case KindExamples:
		return "compiled examples"
	default:
		return "other build output"
	}
}

// SafeToRemove reports whether removing this kind of artifact only costs
// a rebuild. Every kind that lives inside a project's own build directory
// qualifies; shared caches (the cargo registry, the cargo git cache) are
// handled separately and are never removed by this tool.
func (k ArtifactKind) SafeToRemove() bool {
	return k.IsValid()
}

// Artifact is a single classified entry inside a project's build directory.
type Artifact struct {
	// Kind classifies the entry.
	Kind ArtifactKind `json:"kind"`

	// Path is the entry's path relative to the build directory,
	// using forward slashes (e.g. "debug/incremental").
	Path string `json:"path"`

	// Size is the cumulative size of the entry in bytes.
	Size int64 `json:"size"`
}

// Project represents one discovered Rust project: a directory containing
// a Cargo.toml, together with the facts the scanner gathered about it.
type Project struct {
	// Name is the package name from Cargo.toml, falling back to the
	// directory name when the manifest does not declare one.
	Name string `json:"name"`

	// Path is the absolute path of the project root (the directory
	// containing Cargo.toml).
	Path string `json:"path"`

	// TargetDir is the absolute path of the project's build directory.
	// It is set even when the directory does not exist yet.
	TargetDir string `json:"targetDir"`

	// TargetSize is the cumulative size of the build directory in bytes.
	// Zero when the project has no build directory.
	TargetSize int64 `json:"targetSize"`

	// LastModified is the newest modification time among the project's
	// source indicators (Cargo.toml, Cargo.lock, src/main.rs, src/lib.rs).
	// The zero time means none of them exist.
	LastModified time.Time `json:"lastModified"`

	// WorkspaceRoot indicates the manifest declares a [workspace] section.
	// Workspace members share this project's build directory.
	WorkspaceRoot bool `json:"workspaceRoot"`

	// HasLockFile indicates a Cargo.lock exists next to the manifest.
	HasLockFile bool `json:"hasLockFile"`

	// Dependencies is the number of entries in the manifest's
	// [dependencies] section.
	Dependencies int `json:"dependencies"`

	// Artifacts is the classified breakdown of the build directory.
	// Empty when the project has no build directory.
	Artifacts []Artifact `json:"artifacts,omitempty"`
}

// Active reports whether the project was touched within ActiveWindow
// of the reference time. Active projects are flagged before removal
// because their build directories will likely be repopulated.
func (p *Project) Active(ref time.Time) bool {
	if p.LastModified.IsZero() {
		return false
	}
	return ref.Sub(p.LastModified) < ActiveWindow
}

// Status returns "active" or "stale" relative to the reference time,
// for display in tables and the interactive UI.
func (p *Project) Status(ref time.Time) string {
	if p.Active(ref) {
		return "active"
	}
	return "stale"
}

// HasTarget reports whether the scanner found a build directory for
// this project. Projects without one are listed but never cleaned.
func (p *Project) HasTarget() bool {
	return p.TargetSize > 0 || len(p.Artifacts) > 0
}

// TotalSize sums the build-directory sizes of the given projects.
func TotalSize(projects []Project) int64 {
	var total int64
	for i := range projects {
		total += projects[i].TargetSize
	}
	return total
}

// FormatSize renders a byte count for display. With gb set, the unit is
// pinned to decimal gigabytes with two digits of precision, which makes
// columns of sizes directly comparable; otherwise the unit auto-scales.
func FormatSize(size int64, gb bool) string {
	if size < 0 {
		size = 0
	}
	if gb {
		return fmt.Sprintf("%.2f GB", float64(size)/1e9)
	}
	return humanize.Bytes(uint64(size))
}

// SortMode determines the ordering of scan results.
type SortMode string

const (
	// SortBySize orders projects largest build directory first.
	SortBySize SortMode = "size"

	// SortByPath orders projects lexicographically by project path.
	SortByPath SortMode = "path"

	// SortByLastModified orders projects longest-untouched first,
	// which is the useful order when deciding what to clean.
	SortByLastModified SortMode = "last-mod"
)

// String returns the string representation of SortMode.
func (m SortMode) String() string {
	return string(m)
}

// IsValid checks whether the SortMode value is one of the
// predefined valid modes.
func (m SortMode) IsValid() bool {
	switch m {
	case SortBySize, SortByPath, SortByLastModified:
		return true
	default:
		return false
	}
}

// ParseSortMode converts a string to a SortMode.
// Returns an error if the string does not match any valid mode.
func ParseSortMode(s string) (SortMode, error) {
	mode := SortMode(strings.ToLower(s))
	if !mode.IsValid() {
		return "", fmt.Errorf("invalid sort mode: %q (valid: size, path, last-mod)", s)
	}
	return mode, nil
}

// Next cycles to the following sort mode. The interactive UI binds this
// to a key so users can reorder the list without restarting.
func (m SortMode) Next() SortMode {
	switch m {
	case SortBySize:
		return SortByPath
	case SortByPath:
		return SortByLastModified
	default:
		return SortBySize
	}
}

// SortProjects orders projects in place according to the given mode.
// Ties fall back to the path ordering so output is deterministic.
func SortProjects(projects []Project, mode SortMode) {
	sort.SliceStable(projects, func(i, j int) bool {
		switch mode {
		case SortByPath:
			return projects[i].Path < projects[j].Path
		case SortByLastModified:
			if !projects[i].LastModified.Equal(projects[j].LastModified) {
				return projects[i].LastModified.Before(projects[j].LastModified)
			}
			return projects[i].Path < projects[j].Path
		default:
			if projects[i].TargetSize != projects[j].TargetSize {
				return projects[i].TargetSize > projects[j].TargetSize
			}
			return projects[i].Path < projects[j].Path
		}
	})
}

// ScanIssue records a directory the scanner had to skip, typically due
// to permissions. Issues are reported to the user but never abort a scan.
type ScanIssue struct {
	// Path is the directory that could not be read.
	Path string `json:"path"`

	// Reason is the human-readable cause.
	Reason string `json:"reason"`
}

// ExitCode defines the CLI exit codes. These codes allow scripts and CI
// systems to programmatically determine the outcome of a command.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitInvalidInput indicates a flag value or argument was rejected
	// (unknown sort mode, nonexistent directory, bad target name).
	ExitInvalidInput ExitCode = 2

	// ExitScanFailed indicates the filesystem scan could not run at all.
	// Per-directory read errors do not trigger this; they are reported
	// as ScanIssues.
	ExitScanFailed ExitCode = 3

	// ExitCleanFailed indicates one or more build directories could not
	// be removed.
	ExitCleanFailed ExitCode = 4

	// ExitDockerUnavailable indicates the Docker daemon is not accessible.
	// Only commands invoked with Docker reporting enabled can return this.
	ExitDockerUnavailable ExitCode = 5

	// ExitConfigInvalid indicates the configuration file failed to parse
	// or validate.
	ExitConfigInvalid ExitCode = 6

	// ExitUserCancelled indicates the user declined an interactive prompt.
	ExitUserCancelled ExitCode = 7
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
// This follows Go's error wrapping convention introduced in Go 1.13.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
