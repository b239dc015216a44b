package ui

import "github.com/charmbracelet/lipgloss"

// Theme defines the color palette for the interactive UI. All colors
// use lipgloss ANSI 256-color codes for broad terminal compatibility.
type Theme struct {
	// Text colors.
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Selected row.
	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	// Project state accents. Active marks projects touched within the
	// recency window, which deserve a second thought before cleaning.
	ActiveAccent  lipgloss.Color
	StaleAccent   lipgloss.Color
	CleanedAccent lipgloss.Color
	ErrorAccent   lipgloss.Color

	// UI chrome.
	TitleForeground lipgloss.Color
	BorderColor     lipgloss.Color
	HelpText        lipgloss.Color

	// Confirmation prompt for destructive bulk actions.
	ConfirmForeground lipgloss.Color

	// Update notice in the footer.
	NoticeForeground lipgloss.Color
}

// DefaultTheme is the built-in dark-terminal color scheme. Designed for
// 256-color terminals with a dark background.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	ActiveAccent:  lipgloss.Color("220"), // amber: recently built
	StaleAccent:   lipgloss.Color("114"), // green: safe to clean
	CleanedAccent: lipgloss.Color("78"),  // bright green: done
	ErrorAccent:   lipgloss.Color("196"), // red

	TitleForeground: lipgloss.Color("255"),
	BorderColor:     lipgloss.Color("240"),
	HelpText:        lipgloss.Color("241"),

	ConfirmForeground: lipgloss.Color("220"),

	NoticeForeground: lipgloss.Color("75"), // blue
}
