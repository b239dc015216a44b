// Package scan discovers Rust projects on disk and measures their build
// directories for the rskill CLI.
//
// Discovery is a bounded-depth filepath.WalkDir traversal that looks for
// Cargo.toml files. The walk never follows symlinks, always skips version
// control and build directories, and on request skips hidden directories
// and user-excluded names. Directories that cannot be read are reported
// as issues, never as scan failures.
//
// Each discovered project is then analyzed in parallel (bounded by an
// errgroup limit): manifest facts via the cargo package, the newest
// source timestamp, and a size breakdown of the build directory grouped
// by artifact kind (debug/release profiles and their incremental, deps,
// and examples subdirectories).
package scan
