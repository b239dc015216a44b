// Package clean removes the build directories of scanned Rust projects
// for the rskill CLI.
//
// Removal is deliberately narrow: the package only deletes a directory
// that sits directly inside a project root next to a Cargo.toml, under
// the build-directory name the scan was configured with. Anything else
// is refused. Dry-run mode reports the bytes a removal would reclaim
// without touching the filesystem.
package clean
