// Package cargo inspects Cargo projects and the shared cargo home for
// the rskill CLI.
//
// The package reads the handful of facts rskill needs straight from
// Cargo.toml with a line-oriented parser rather than a full TOML library:
// the package name, the [workspace] declaration, and the number of
// [dependencies] entries. Everything else in the manifest is ignored.
//
// It also locates the cargo home ($CARGO_HOME, falling back to ~/.cargo)
// and sizes its shared download caches (registry index/cache/src and git
// db/checkouts). These caches are shared across every project on the
// machine, so rskill reports them but never deletes them.
package cargo
