// Package release ties a running rskill binary to the release pipeline
// that produced it.
//
// It carries the build identity injected through -ldflags, knows what
// the release workflow names its artifacts per platform, and implements
// the startup check against the GitHub releases API that tells users
// when a newer version is available. The check is best effort: it runs
// in the background, is bounded by a short harvest window, and stays
// silent on any failure.
package release

import "fmt"

// BaseName is the bare binary name the release workflow compiles.
const BaseName = "rskill"

// Info identifies a build of the binary. Release builds inject the
// fields through -ldflags; a plain `go build` reports the defaults.
type Info struct {
	Version string
	Commit  string
	Date    string
}

// Dev reports whether this is an untagged source build. Dev builds
// never produce update notices, since "dev" compares with nothing.
func (i Info) Dev() bool {
	return i.Version == "" || i.Version == "dev"
}

// String renders the build identity for --version output.
func (i Info) String() string {
	version := i.Version
	if version == "" {
		version = "dev"
	}
	commit := i.Commit
	if commit == "" {
		commit = "none"
	}
	date := i.Date
	if date == "" {
		date = "unknown"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
}

// BinaryName returns the artifact file name the release workflow
// produces for the given GOOS.
func BinaryName(goos string) string {
	if goos == "windows" {
		return BaseName + ".exe"
	}
	return BaseName
}
