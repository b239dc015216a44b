package cargo

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// ManifestName is the file that marks a directory as a Cargo project.
	ManifestName = "Cargo.toml"

	// LockName is the lock file Cargo writes next to the manifest.
	LockName = "Cargo.lock"
)

// Manifest holds the facts rskill extracts from a Cargo.toml.
// Only a small slice of the manifest format is understood; unknown
// sections and keys are ignored.
type Manifest struct {
	// Name is the package name, or "" when the manifest declares none
	// (pure workspace roots often don't).
	Name string

	// WorkspaceRoot indicates the manifest contains a [workspace] section.
	WorkspaceRoot bool

	// Dependencies is the number of entries in the [dependencies] section,
	// counting dotted sub-tables ([dependencies.serde]) as one entry each.
	Dependencies int
}

// ParseManifest reads a Cargo.toml and extracts the package name, the
// workspace declaration, and the dependency count.
//
// The parser is line-oriented: it tracks the current [section] header and
// only looks at `name = "..."` inside [package] and key lines inside
// [dependencies]. Comments and blank lines are skipped. Multi-line values
// (arrays, inline tables spanning lines) don't produce key lines of their
// own, so they never inflate the dependency count.
func ParseManifest(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", ManifestName, err)
	}
	defer f.Close()

	m := &Manifest{}
	section := ""

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "[") {
			section = sectionName(line)
			switch {
			case section == "workspace" || strings.HasPrefix(section, "workspace."):
				m.WorkspaceRoot = true
			case strings.HasPrefix(section, "dependencies."):
				// A dotted sub-table like [dependencies.serde] is one entry.
				m.Dependencies++
			}
			continue
		}

		switch {
		case section == "package":
			if key, value, ok := splitKeyValue(line); ok && key == "name" {
				m.Name = unquote(value)
			}
		case section == "dependencies":
			if _, _, ok := splitKeyValue(line); ok {
				m.Dependencies++
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", ManifestName, err)
	}

	return m, nil
}

// sectionName extracts the section name from a "[section]" header line,
// tolerating trailing comments.
func sectionName(line string) string {
	end := strings.Index(line, "]")
	if end < 0 {
		return ""
	}
	return strings.TrimSpace(line[1:end])
}

// splitKeyValue splits a "key = value" line. Lines that are value
// continuations (array elements, closing brackets) have no "=" before
// any quote and are rejected.
func splitKeyValue(line string) (key, value string, ok bool) {
	eq := strings.Index(line, "=")
	if eq < 0 {
		return "", "", false
	}
	key = strings.TrimSpace(line[:eq])
	if key == "" || strings.ContainsAny(key, "\"'[]{},") {
		return "", "", false
	}
	return key, strings.TrimSpace(line[eq+1:]), true
}

// unquote strips surrounding quotes and a trailing comment from a TOML
// string value.
func unquote(value string) string {
	if i := strings.Index(value, "#"); i >= 0 && !strings.HasPrefix(value, "\"") {
		value = strings.TrimSpace(value[:i])
	}
	if len(value) >= 2 {
		if (value[0] == '"' && value[len(value)-1] == '"') ||
			(value[0] == '\'' && value[len(value)-1] == '\'') {
			return value[1 : len(value)-1]
		}
	}
	// Quoted value followed by a comment: name = "foo" # the crate
	if value != "" && value[0] == '"' {
		if end := strings.Index(value[1:], "\""); end >= 0 {
			return value[1 : end+1]
		}
	}
	return value
}

// sourceIndicators are the files whose modification times tell how
// recently a project was worked on. The newest one wins.
var sourceIndicators = []string{
	ManifestName,
	LockName,
	filepath.Join("src", "main.rs"),
	filepath.Join("src", "lib.rs"),
}

// LastModified returns the newest modification time among the project's
// source indicator files. Missing files are skipped; the zero time is
// returned when none of them exist.
func LastModified(projectDir string) time.Time {
	var newest time.Time
	for _, rel := range sourceIndicators {
		info, err := os.Stat(filepath.Join(projectDir, rel))
		if err != nil {
			continue
		}
		if mt := info.ModTime(); mt.After(newest) {
			newest = mt
		}
	}
	return newest
}
