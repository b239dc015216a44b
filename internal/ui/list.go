package ui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/rskill-dev/rskill/internal/model"
)

// Column widths for the project table. The path column absorbs the
// remaining space; all others are fixed.
const (
	columnWidthName = 22
	columnWidthAge  = 16
	columnWidthSize = 10
	minPathWidth    = 10
)

// ListRenderer handles table-style rendering of project rows within a
// given width.
type ListRenderer struct {
	theme Theme
	width int
	root  string
	gb    bool
}

// NewListRenderer creates a ListRenderer for the given width. Paths are
// shown relative to root when they sit below it.
func NewListRenderer(theme Theme, width int, root string, gb bool) ListRenderer {
	return ListRenderer{theme: theme, width: width, root: root, gb: gb}
}

// RenderRow renders a single project as a formatted table row. The
// selected flag switches to the uniform highlight style. spinnerFrame
// is the current spinner glyph, used as the marker while the row's
// build directory is being removed. reference anchors relative ages.
//
// Row layout: marker + name + path + age + size
//
//	● api-server     backend/api-server      2 months ago    1.2 GB
//	✓ old-prototype  experiments/prototype        cleaned     840 MB
func (renderer ListRenderer) RenderRow(item row, selected bool, spinnerFrame string, reference time.Time) string {
	pathWidth := renderer.width - 2 - columnWidthName - 2 - columnWidthAge - 2 - columnWidthSize
	if pathWidth < minPathWidth {
		pathWidth = minPathWidth
	}

	project := item.project
	name := truncate(project.Name, columnWidthName)
	displayPath := truncateLeft(renderer.displayPath(project.Path), pathWidth)

	// Marker, age column, and size column depend on the row state.
	marker := "○"
	markerColor := renderer.theme.StaleAccent
	age := relAge(project.LastModified, reference)
	ageColor := renderer.theme.FaintText
	size := model.FormatSize(project.TargetSize, renderer.gb)
	sizeColor := renderer.theme.NormalText

	switch item.state {
	case rowIdle:
		if project.Active(reference) {
			marker = "●"
			markerColor = renderer.theme.ActiveAccent
		}
	case rowCleaning:
		marker = spinnerFrame
		age = "cleaning"
	case rowCleaned:
		marker = "✓"
		markerColor = renderer.theme.CleanedAccent
		age = "cleaned"
		ageColor = renderer.theme.CleanedAccent
		size = model.FormatSize(item.freed, renderer.gb)
		sizeColor = renderer.theme.CleanedAccent
	case rowFailed:
		marker = "✗"
		markerColor = renderer.theme.ErrorAccent
		age = "failed"
		ageColor = renderer.theme.ErrorAccent
	}

	if selected {
		// Uniform foreground over the highlight background; per-span
		// colors would fight the selection tint.
		line := fmt.Sprintf("%s %-*s  %-*s  %*s  %*s",
			marker, columnWidthName, name, pathWidth, displayPath,
			columnWidthAge, age, columnWidthSize, size)
		return lipgloss.NewStyle().
			Background(renderer.theme.SelectedBackground).
			Foreground(renderer.theme.SelectedForeground).
			Width(renderer.width).
			MaxWidth(renderer.width).
			Render(line)
	}

	styled := func(text string, color lipgloss.Color) string {
		return lipgloss.NewStyle().Foreground(color).Render(text)
	}
	markerCell := marker
	if item.state != rowCleaning {
		// Spinner frames arrive pre-styled from the spinner component.
		markerCell = styled(marker, markerColor)
	}
	return markerCell + " " +
		styled(fmt.Sprintf("%-*s", columnWidthName, name), renderer.theme.NormalText) + "  " +
		styled(fmt.Sprintf("%-*s", pathWidth, displayPath), renderer.theme.FaintText) + "  " +
		styled(fmt.Sprintf("%*s", columnWidthAge, age), ageColor) + "  " +
		styled(fmt.Sprintf("%*s", columnWidthSize, size), sizeColor)
}

// displayPath renders a project path relative to the scan root when it
// sits below it, falling back to the absolute path otherwise.
func (renderer ListRenderer) displayPath(path string) string {
	if renderer.root == "" {
		return path
	}
	rel, err := filepath.Rel(renderer.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}

// relAge renders how long ago the project was last built.
func relAge(lastModified, reference time.Time) string {
	if lastModified.IsZero() {
		return "unknown"
	}
	return humanize.RelTime(lastModified, reference, "ago", "from now")
}

// truncate shortens s to at most width cells, ending with an ellipsis
// when anything was cut.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes)) > width-1 {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}

// truncateLeft shortens s to at most width cells by dropping the head,
// which keeps the most specific part of a path visible.
func truncateLeft(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes)) > width-1 {
		runes = runes[1:]
	}
	return "…" + string(runes)
}
