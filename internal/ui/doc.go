// Package ui implements the interactive terminal interface for
// browsing and cleaning Cargo build directories.
//
// The interface is a bubbletea application: one Model holds the whole
// screen state, messages deliver scan and clean results from background
// goroutines, and the View renders a scrollable project list with a
// summary footer. Key bindings follow the bubbles/key conventions
// (vim-style j/k plus arrow keys); colors come from a lipgloss Theme
// restricted to ANSI 256 codes for broad terminal compatibility.
//
// The package does no filesystem work of its own. Scanning, cleaning,
// and revealing paths are injected through Options so the command layer
// decides policy and the model stays testable without a real tree.
package ui
