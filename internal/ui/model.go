package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rskill-dev/rskill/internal/model"
	"github.com/rskill-dev/rskill/internal/release"
	"github.com/rskill-dev/rskill/internal/scan"
)

// Scanner supplies project data for the interactive view.
type Scanner interface {
	Scan(ctx context.Context) (*scan.Result, error)
	Root() string
}

// CleanFunc removes one project's build directory and reports the bytes
// freed.
type CleanFunc func(ctx context.Context, project model.Project) (int64, error)

// RevealFunc opens a path in the platform file manager.
type RevealFunc func(ctx context.Context, path string) error

// UpdateCheck waits for the background release check and returns a
// newer release, or nil when there is none.
type UpdateCheck func() *release.Release

// Options configures the interactive session. Scanner and Clean are
// required; the rest may be zero.
type Options struct {
	Scanner Scanner
	Clean   CleanFunc
	Reveal  RevealFunc

	// CheckUpdate is nil when update checks are disabled.
	CheckUpdate UpdateCheck

	Sort       model.SortMode
	GB         bool
	HideErrors bool
}

// rowState tracks what the UI has done to a project so far.
type rowState int

const (
	rowIdle rowState = iota
	rowCleaning
	rowCleaned
	rowFailed
)

// row pairs a scanned project with its interactive state. Cleaned rows
// stay in the list so the user sees what was freed.
type row struct {
	project model.Project
	state   rowState
	freed   int64
	err     string
}

// scanDoneMsg delivers the result of a background scan.
type scanDoneMsg struct {
	result *scan.Result
	err    error
}

// cleanDoneMsg delivers the result of one background removal. The row
// is addressed by project path rather than index because the list may
// have been resorted while the removal ran in the background.
type cleanDoneMsg struct {
	path  string
	freed int64
	err   error
}

// revealDoneMsg delivers the result of opening a path in the file
// manager.
type revealDoneMsg struct {
	err error
}

// updateNoticeMsg delivers the background release check result.
type updateNoticeMsg struct {
	release *release.Release
}

// chromeLines is the fixed vertical space around the list: one header
// line on top, then separator, summary, and help at the bottom.
const chromeLines = 4

// Model is the top-level bubbletea model for the interactive session.
type Model struct {
	opts    Options
	theme   Theme
	keys    KeyMap
	spinner spinner.Model

	// Terminal dimensions (set by WindowSizeMsg).
	width  int
	height int
	ready  bool

	// Scan state.
	scanning bool
	rows     []row
	issues   []model.ScanIssue
	sort     model.SortMode

	// List state. selectedPath keeps the cursor on the same project
	// across resorts and rescans.
	cursor       int
	scrollOffset int
	selectedPath string

	// Pending clean-all confirmation.
	confirmingAll bool

	cleansInFlight int
	freedTotal     int64
	lastError      string
	notice         string
}

// New creates a Model for the given session options. The first scan
// starts from Init.
func New(opts Options) Model {
	sortMode := opts.Sort
	if sortMode == "" {
		sortMode = model.SortBySize
	}

	return Model{
		opts:  opts,
		theme: DefaultTheme,
		keys:  DefaultKeyMap,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.MiniDot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(DefaultTheme.ActiveAccent)),
		),
		scanning: true,
		sort:     sortMode,
	}
}

// Run starts the interactive session and blocks until the user quits.
func Run(ctx context.Context, opts Options) error {
	program := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

// Init implements tea.Model. Kicks off the spinner, the initial scan,
// and the update check when one is configured.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, m.startScan()}
	if m.opts.CheckUpdate != nil {
		cmds = append(cmds, m.startUpdateCheck())
	}
	return tea.Batch(cmds...)
}

// startScan runs a scan in the background and delivers a scanDoneMsg.
func (m Model) startScan() tea.Cmd {
	scanner := m.opts.Scanner
	return func() tea.Msg {
		result, err := scanner.Scan(context.Background())
		return scanDoneMsg{result: result, err: err}
	}
}

// startUpdateCheck waits for the background release check and delivers
// an updateNoticeMsg.
func (m Model) startUpdateCheck() tea.Cmd {
	check := m.opts.CheckUpdate
	return func() tea.Msg {
		return updateNoticeMsg{release: check()}
	}
}

// Update implements tea.Model.
func (m Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.KeyMsg:
		return m.handleKeys(message)

	case tea.WindowSizeMsg:
		m.width = message.Width
		m.height = message.Height
		m.ready = true
		m.ensureCursorVisible()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(message)
		return m, cmd

	case scanDoneMsg:
		m.scanning = false
		if message.err != nil {
			m.lastError = message.err.Error()
			return m, nil
		}
		m.issues = message.result.Issues
		m.rows = buildRows(message.result.Projects, m.sort)
		m.restoreSelection()
		m.ensureCursorVisible()

	case cleanDoneMsg:
		if m.cleansInFlight > 0 {
			m.cleansInFlight--
		}
		index := m.rowIndex(message.path)
		if index < 0 {
			return m, nil
		}
		if message.err != nil {
			m.rows[index].state = rowFailed
			m.rows[index].err = message.err.Error()
			m.lastError = message.err.Error()
			return m, nil
		}
		m.rows[index].state = rowCleaned
		m.rows[index].freed = message.freed
		m.freedTotal += message.freed

	case revealDoneMsg:
		if message.err != nil {
			m.lastError = message.err.Error()
		}

	case updateNoticeMsg:
		if message.release != nil {
			m.notice = fmt.Sprintf("update available: %s", message.release.TagName)
		}
	}
	return m, nil
}

// handleKeys routes keyboard input.
func (m Model) handleKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	// ctrl+c always quits, even mid-confirmation.
	if message.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	// A pending clean-all confirmation swallows every key: y launches
	// the removals, anything else cancels.
	if m.confirmingAll {
		m.confirmingAll = false
		if message.Type == tea.KeyRunes && len(message.Runes) == 1 &&
			(message.Runes[0] == 'y' || message.Runes[0] == 'Y') {
			return m.startCleanAll()
		}
		return m, nil
	}

	switch {
	case key.Matches(message, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(message, m.keys.Up):
		m.moveCursor(-1)

	case key.Matches(message, m.keys.Down):
		m.moveCursor(1)

	case key.Matches(message, m.keys.Top):
		m.cursor = 0
		m.rememberSelection()
		m.ensureCursorVisible()

	case key.Matches(message, m.keys.Bottom):
		if len(m.rows) > 0 {
			m.cursor = len(m.rows) - 1
		}
		m.rememberSelection()
		m.ensureCursorVisible()

	case message.Type == tea.KeySpace, key.Matches(message, m.keys.Clean):
		return m.cleanSelected()

	case key.Matches(message, m.keys.CleanAll):
		if m.idleCount() > 0 {
			m.confirmingAll = true
		}

	case key.Matches(message, m.keys.Open):
		return m.revealSelected()

	case key.Matches(message, m.keys.Refresh):
		return m.rescan()

	case key.Matches(message, m.keys.Sort):
		m.sort = m.sort.Next()
		m.resort()
	}

	return m, nil
}

// cleanSelected starts removing the selected project's build directory.
func (m Model) cleanSelected() (tea.Model, tea.Cmd) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return m, nil
	}
	if m.rows[m.cursor].state != rowIdle {
		return m, nil
	}

	m.rows[m.cursor].state = rowCleaning
	m.cleansInFlight++
	return m, m.cleanCmd(m.rows[m.cursor].project)
}

// startCleanAll marks every idle row as cleaning and runs the removals
// one after another so the disk is not hammered in parallel.
func (m Model) startCleanAll() (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	for index := range m.rows {
		if m.rows[index].state != rowIdle {
			continue
		}
		m.rows[index].state = rowCleaning
		m.cleansInFlight++
		cmds = append(cmds, m.cleanCmd(m.rows[index].project))
	}
	if len(cmds) == 0 {
		return m, nil
	}
	return m, tea.Sequence(cmds...)
}

// cleanCmd returns a command that removes one build directory in the
// background.
func (m Model) cleanCmd(project model.Project) tea.Cmd {
	cleanFn := m.opts.Clean
	return func() tea.Msg {
		freed, err := cleanFn(context.Background(), project)
		return cleanDoneMsg{path: project.Path, freed: freed, err: err}
	}
}

// revealSelected opens the selected project in the file manager.
func (m Model) revealSelected() (tea.Model, tea.Cmd) {
	if m.opts.Reveal == nil || m.cursor < 0 || m.cursor >= len(m.rows) {
		return m, nil
	}
	revealFn := m.opts.Reveal
	path := m.rows[m.cursor].project.Path
	return m, func() tea.Msg {
		return revealDoneMsg{err: revealFn(context.Background(), path)}
	}
}

// rescan starts a fresh scan unless one is already running.
func (m Model) rescan() (tea.Model, tea.Cmd) {
	if m.scanning {
		return m, nil
	}
	m.scanning = true
	m.lastError = ""
	return m, m.startScan()
}

// buildRows filters the scan result down to projects that have a build
// directory and orders them by the given mode.
func buildRows(projects []model.Project, mode model.SortMode) []row {
	sorted := make([]model.Project, len(projects))
	copy(sorted, projects)
	model.SortProjects(sorted, mode)

	rows := make([]row, 0, len(sorted))
	for _, project := range sorted {
		if !project.HasTarget() {
			continue
		}
		rows = append(rows, row{project: project})
	}
	return rows
}

// resort reorders the rows under the current sort mode, carrying each
// row's clean state along and keeping the selection on the same
// project.
func (m *Model) resort() {
	m.rememberSelection()

	projects := make([]model.Project, len(m.rows))
	states := make(map[string]row, len(m.rows))
	for index, item := range m.rows {
		projects[index] = item.project
		states[item.project.Path] = item
	}
	model.SortProjects(projects, m.sort)
	for index, project := range projects {
		m.rows[index] = states[project.Path]
	}

	m.restoreSelection()
	m.ensureCursorVisible()
}

// moveCursor shifts the cursor by delta, clamped to the row range.
func (m *Model) moveCursor(delta int) {
	if len(m.rows) == 0 {
		return
	}
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	m.rememberSelection()
	m.ensureCursorVisible()
}

// rememberSelection records the project under the cursor.
func (m *Model) rememberSelection() {
	if m.cursor >= 0 && m.cursor < len(m.rows) {
		m.selectedPath = m.rows[m.cursor].project.Path
	}
}

// restoreSelection moves the cursor back to the remembered project, or
// clamps it when that project is gone.
func (m *Model) restoreSelection() {
	if m.selectedPath != "" {
		for index := range m.rows {
			if m.rows[index].project.Path == m.selectedPath {
				m.cursor = index
				return
			}
		}
	}
	if m.cursor >= len(m.rows) {
		if len(m.rows) == 0 {
			m.cursor = 0
		} else {
			m.cursor = len(m.rows) - 1
		}
	}
}

// ensureCursorVisible adjusts the scroll offset so the cursor stays on
// screen.
func (m *Model) ensureCursorVisible() {
	visible := m.visibleHeight()
	if visible <= 0 {
		return
	}
	if m.cursor < m.scrollOffset {
		m.scrollOffset = m.cursor
	}
	if m.cursor >= m.scrollOffset+visible {
		m.scrollOffset = m.cursor - visible + 1
	}
	if m.scrollOffset < 0 {
		m.scrollOffset = 0
	}
}

// visibleHeight is the number of list rows that fit between the header
// and the bottom chrome.
func (m Model) visibleHeight() int {
	height := m.height - chromeLines
	if height < 0 {
		return 0
	}
	return height
}

// rowIndex finds a row by project path, -1 when absent.
func (m Model) rowIndex(path string) int {
	for index := range m.rows {
		if m.rows[index].project.Path == path {
			return index
		}
	}
	return -1
}

// idleCount is the number of rows that still have a build directory to
// remove.
func (m Model) idleCount() int {
	count := 0
	for index := range m.rows {
		if m.rows[index].state == rowIdle {
			count++
		}
	}
	return count
}

// View implements tea.Model. Renders the header, the project list, and
// the two-line footer.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var sections []string
	sections = append(sections, m.renderHeader())

	switch {
	case m.scanning:
		sections = append(sections, m.padToList(
			fmt.Sprintf("%s Scanning %s for Cargo projects...", m.spinner.View(), m.opts.Scanner.Root())))
	case len(m.rows) == 0:
		empty := lipgloss.NewStyle().Foreground(m.theme.FaintText).
			Render(fmt.Sprintf("No build directories found under %s.", m.opts.Scanner.Root()))
		sections = append(sections, m.padToList(empty))
	default:
		sections = append(sections, m.renderList())
	}

	separator := lipgloss.NewStyle().
		Foreground(m.theme.BorderColor).
		Render(strings.Repeat("─", m.width))
	sections = append(sections, separator)
	sections = append(sections, m.renderSummary())
	sections = append(sections, m.renderFooter())

	return strings.Join(sections, "\n")
}

// renderHeader renders the top chrome line.
func (m Model) renderHeader() string {
	title := lipgloss.NewStyle().
		Foreground(m.theme.TitleForeground).
		Bold(true).
		Render("rskill")
	root := lipgloss.NewStyle().Foreground(m.theme.FaintText).Render(m.opts.Scanner.Root())
	sortLabel := lipgloss.NewStyle().Foreground(m.theme.FaintText).Render("sort: " + m.sort.String())
	return title + "  " + root + "  " + sortLabel
}

// renderList renders the visible slice of project rows, padded to the
// full list height so the footer stays pinned to the bottom.
func (m Model) renderList() string {
	visible := m.visibleHeight()
	renderer := NewListRenderer(m.theme, m.width, m.opts.Scanner.Root(), m.opts.GB)
	reference := time.Now()

	lines := make([]string, 0, visible)
	for index := m.scrollOffset; index < m.scrollOffset+visible && index < len(m.rows); index++ {
		lines = append(lines, renderer.RenderRow(m.rows[index], index == m.cursor, m.spinner.View(), reference))
	}
	for len(lines) < visible {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// padToList pads a single message line to the list height.
func (m Model) padToList(line string) string {
	lines := []string{line}
	for len(lines) < m.visibleHeight() {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// renderSummary renders project counts, reclaimable and freed totals,
// and scan problems.
func (m Model) renderSummary() string {
	var reclaimable int64
	for _, item := range m.rows {
		if item.state != rowCleaned {
			reclaimable += item.project.TargetSize
		}
	}

	parts := []string{
		fmt.Sprintf("%d projects", len(m.rows)),
		fmt.Sprintf("%s to reclaim", model.FormatSize(reclaimable, m.opts.GB)),
	}
	if m.freedTotal > 0 {
		parts = append(parts, fmt.Sprintf("%s freed", model.FormatSize(m.freedTotal, m.opts.GB)))
	}
	if len(m.issues) > 0 && !m.opts.HideErrors {
		parts = append(parts, fmt.Sprintf("%d dirs skipped", len(m.issues)))
	}
	summary := lipgloss.NewStyle().
		Foreground(m.theme.NormalText).
		Render(strings.Join(parts, "   "))

	if m.lastError == "" {
		return summary
	}
	errText := lipgloss.NewStyle().
		Foreground(m.theme.ErrorAccent).
		Render(truncate("error: "+m.lastError, m.width))
	return summary + "   " + errText
}

// renderFooter renders the help line, or the confirmation prompt while
// a clean-all is pending.
func (m Model) renderFooter() string {
	if m.confirmingAll {
		prompt := fmt.Sprintf("Remove all %d build directories? (y/n)", m.idleCount())
		return lipgloss.NewStyle().
			Foreground(m.theme.ConfirmForeground).
			Bold(true).
			Render(prompt)
	}

	bindings := []key.Binding{
		m.keys.Up, m.keys.Down, m.keys.Clean, m.keys.CleanAll,
		m.keys.Open, m.keys.Refresh, m.keys.Sort, m.keys.Quit,
	}
	parts := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		help := binding.Help()
		parts = append(parts, help.Key+" "+help.Desc)
	}
	line := lipgloss.NewStyle().
		Foreground(m.theme.HelpText).
		Render(truncate(strings.Join(parts, "  "), m.width))

	if m.notice == "" {
		return line
	}
	notice := lipgloss.NewStyle().Foreground(m.theme.NoticeForeground).Render(m.notice)
	return line + "  " + notice
}
