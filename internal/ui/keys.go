package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the interactive UI.
type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding

	// Clean removes the selected project's build directory.
	Clean key.Binding
	// CleanAll removes every listed build directory after confirmation.
	CleanAll key.Binding

	// Open reveals the selected project in the file manager.
	Open key.Binding
	// Refresh rescans the tree.
	Refresh key.Binding
	// Sort cycles through the sort modes.
	Sort key.Binding

	Quit key.Binding
}

// DefaultKeyMap is the built-in key binding set. Vim-style navigation
// (j/k) alongside standard arrow keys.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Top: key.NewBinding(
		key.WithKeys("g", "home"),
		key.WithHelp("g", "top"),
	),
	Bottom: key.NewBinding(
		key.WithKeys("G", "end"),
		key.WithHelp("G", "bottom"),
	),
	// Space also triggers Clean; it arrives as tea.KeySpace and is
	// routed in Update rather than through this binding.
	Clean: key.NewBinding(
		key.WithKeys("d", "delete"),
		key.WithHelp("space/d", "clean"),
	),
	CleanAll: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "clean all"),
	),
	Open: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "open"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "rescan"),
	),
	Sort: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "sort"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
