// Package model defines the domain types and value objects for the
// rskill CLI.
//
// All entities (Project, Artifact, ScanIssue, etc.) are transient
// representations built from a filesystem scan at runtime; there are no
// persistent state files.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model
