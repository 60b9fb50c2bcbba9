package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-2048/internal/games/t2048"
	"github.com/vovakirdan/tui-2048/internal/storage"
)

// Scoreboard layout constants
const (
	minWidthForSidebar = 80  // Minimum width to show the level sidebar
	sidebarWidth       = 24  // Width of the level sidebar
	maxScores          = 100 // Max runs to load per level
)

// RunSource provides finished runs for the scoreboard.
type RunSource interface {
	TopRuns(ctx context.Context, level, limit int) ([]storage.RunEntry, error)
}

// ScoreboardKeyMap defines the key bindings for the scoreboard.
type ScoreboardKeyMap struct {
	Up        key.Binding
	Down      key.Binding
	NextLevel key.Binding
	PrevLevel key.Binding
	Back      key.Binding
	Quit      key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ScoreboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextLevel, k.PrevLevel, k.Back}
}

// FullHelp returns key bindings for the full help view.
func (k ScoreboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextLevel, k.PrevLevel},
		{k.Back, k.Quit},
	}
}

// DefaultScoreboardKeyMap returns default key bindings.
func DefaultScoreboardKeyMap() ScoreboardKeyMap {
	return ScoreboardKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		NextLevel: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab/→", "next level"),
		),
		PrevLevel: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("S-tab/←", "prev level"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc/b", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// scoresMsg carries runs loaded for one level.
type scoresMsg struct {
	level int
	runs  []storage.RunEntry
	err   error
}

// scoreboard lists the best finished runs per level.
type scoreboard struct {
	levels      t2048.Levels
	cursor      int
	source      RunSource
	runs        []storage.RunEntry
	err         error
	table       table.Model
	help        help.Model
	keys        ScoreboardKeyMap
	width       int
	height      int
	showSidebar bool
}

func newScoreboard(source RunSource, levels t2048.Levels, cursor, width, height int) scoreboard {
	h := help.New()
	h.Width = width
	m := scoreboard{
		levels:      levels,
		cursor:      cursor,
		source:      source,
		help:        h,
		keys:        DefaultScoreboardKeyMap(),
		width:       width,
		height:      height,
		showSidebar: width >= minWidthForSidebar,
	}
	m.table = m.createTable()
	return m
}

// createTable creates a table sized for the current window.
func (m *scoreboard) createTable() table.Model {
	columns := []table.Column{
		{Title: "Rank", Width: 5},
		{Title: "Player", Width: 12},
		{Title: "Score", Width: 8},
		{Title: "Tile", Width: 6},
		{Title: "Result", Width: 9},
		{Title: "Date", Width: 12},
	}

	tableWidth := m.width - 4
	if m.showSidebar {
		tableWidth -= sidebarWidth + 3
	}
	if tableWidth < 64 {
		// Drop the date column on narrow terminals.
		columns = columns[:5]
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(m.height-8, 3)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)
	return t
}

func (m scoreboard) level() int {
	if m.levels.Len() == 0 {
		return 0
	}
	return m.levels[m.cursor].Level
}

// load returns a command that fetches runs for the selected level.
func (m scoreboard) load(ctx context.Context) tea.Cmd {
	if m.source == nil || m.levels.Len() == 0 {
		return nil
	}
	source, level := m.source, m.level()
	return func() tea.Msg {
		runs, err := source.TopRuns(ctx, level, maxScores)
		return scoresMsg{level: level, runs: runs, err: err}
	}
}

func (m *scoreboard) setRuns(msg scoresMsg) {
	if msg.level != m.level() {
		return // stale result for a level no longer shown
	}
	m.runs, m.err = msg.runs, msg.err
	m.updateTableRows()
}

// updateTableRows fills the table, trimming each row to the visible columns.
func (m *scoreboard) updateTableRows() {
	cols := len(m.table.Columns())
	rows := make([]table.Row, len(m.runs))
	for i, r := range m.runs {
		result := "lost"
		if r.Outcome == t2048.StateLevelComplete {
			result = "cleared"
		}
		rows[i] = table.Row{
			fmt.Sprintf("#%d", i+1),
			r.Player,
			fmt.Sprintf("%d", r.Score),
			fmt.Sprintf("%d", r.MaxTile),
			result,
			r.CreatedAt.Format("Jan 02 15:04"),
		}[:cols]
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

func (m *scoreboard) resize(width, height int) {
	m.width, m.height = width, height
	m.showSidebar = width >= minWidthForSidebar
	m.table = m.createTable()
	m.updateTableRows()
	m.help.Width = width
}

// update handles a key press. It reports whether the scoreboard was closed
// or the program should quit.
func (m *scoreboard) update(ctx context.Context, msg tea.KeyMsg) (back, quit bool, cmd tea.Cmd) {
	n := m.levels.Len()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return false, true, nil
	case key.Matches(msg, m.keys.Back):
		return true, false, nil
	case key.Matches(msg, m.keys.NextLevel) && n > 0:
		m.cursor = (m.cursor + 1) % n
		m.runs = nil
		m.updateTableRows()
		return false, false, m.load(ctx)
	case key.Matches(msg, m.keys.PrevLevel) && n > 0:
		m.cursor = (m.cursor - 1 + n) % n
		m.runs = nil
		m.updateTableRows()
		return false, false, m.load(ctx)
	}
	m.table, cmd = m.table.Update(msg)
	return false, false, cmd
}

func (m scoreboard) view() string {
	var b strings.Builder

	title := "HIGH SCORES"
	if m.levels.Len() > 0 {
		cfg := m.levels[m.cursor]
		title = fmt.Sprintf("HIGH SCORES - Level %d: %s", cfg.Level, cfg.Name)
	}
	b.WriteString(centerText(titleStyle.Render(title), m.width, len(title)))
	b.WriteString("\n\n")

	if m.showSidebar {
		b.WriteString(m.renderWideLayout())
	} else {
		b.WriteString(m.renderNarrowLayout())
	}

	b.WriteString("\n")
	b.WriteString(statusStyle.Render(m.help.View(m.keys)))
	return b.String()
}

// renderWideLayout renders the level sidebar next to the table.
func (m scoreboard) renderWideLayout() string {
	sidebarStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(sidebarWidth).
		Padding(0, 1)

	var sidebar strings.Builder
	sidebar.WriteString("Levels\n")
	sidebar.WriteString(strings.Repeat("-", sidebarWidth-4))
	sidebar.WriteString("\n")
	for i, cfg := range m.levels {
		cursor := "  "
		style := lipgloss.NewStyle()
		if i == m.cursor {
			cursor = "> "
			style = style.Bold(true).Foreground(lipgloss.Color("229"))
		}
		name := fmt.Sprintf("%d. %s", cfg.Level, cfg.Name)
		if maxLen := sidebarWidth - 6; len(name) > maxLen {
			name = name[:maxLen-1] + "."
		}
		sidebar.WriteString(style.Render(cursor + name))
		sidebar.WriteString("\n")
	}

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	return lipgloss.JoinHorizontal(lipgloss.Top,
		sidebarStyle.Render(sidebar.String()), "  ", tableStyle.Render(m.renderTableContent()))
}

// renderNarrowLayout shows the current level between arrows above the table.
func (m scoreboard) renderNarrowLayout() string {
	var b strings.Builder
	if m.levels.Len() > 0 {
		tab := fmt.Sprintf("< Level %d/%d >", m.level(), m.levels.Len())
		b.WriteString(centerText(tab, m.width, len(tab)))
		b.WriteString("\n\n")
	}
	b.WriteString(m.renderTableContent())
	return b.String()
}

func (m scoreboard) renderTableContent() string {
	switch {
	case m.source == nil:
		return statusStyle.Render("No score storage available")
	case m.err != nil:
		return errorStyle.Render("Failed to load scores: " + m.err.Error())
	case len(m.runs) == 0:
		return statusStyle.Render("No runs recorded yet")
	}
	return m.table.View()
}
