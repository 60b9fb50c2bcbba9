package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-2048/internal/core"
	"github.com/vovakirdan/tui-2048/internal/games/t2048"
)

// footerHeight is the number of lines below the board: status and help.
const footerHeight = 2

type view int

const (
	viewGame view = iota
	viewLevels
	viewScores
)

// loadedMsg carries the startup load result.
type loadedMsg struct {
	loaded t2048.Loaded
}

// savedMsg reports the end of a save.
type savedMsg struct {
	err error
}

// Options configures a Model.
type Options struct {
	Controller    *t2048.Controller
	Persistence   t2048.Persistence // t2048.Discard when nil
	Runs          RunSource         // Scoreboard source; nil hides scores
	Logger        *log.Logger
	Config        core.RuntimeConfig // Initial screen size
	ScreenshotDir string             // Screenshots are disabled when empty
	Context       context.Context
}

// Model is the Bubble Tea model for one player's game. It owns the event
// loop side of the controller: the startup load and the save round trips
// run as commands and report back through messages.
type Model struct {
	ctx     context.Context
	ctrl    *t2048.Controller
	persist t2048.Persistence
	runs    RunSource
	logger  *log.Logger

	screen        *core.Screen
	width, height int
	screenshotDir string

	view    view
	menu    levelMenu
	scores  scoreboard
	keys    KeyMap
	help    help.Model
	spinner spinner.Model

	status   string
	quitting bool
}

// NewModel creates a model around an unrestored controller.
func NewModel(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	persist := opts.Persistence
	if persist == nil {
		persist = t2048.Discard
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	size := opts.Config
	if size.ScreenW <= 0 || size.ScreenH <= 0 {
		size = core.DefaultConfig()
	}
	h := help.New()
	h.Width = size.ScreenW

	return Model{
		ctx:           ctx,
		ctrl:          opts.Controller,
		persist:       persist,
		runs:          opts.Runs,
		logger:        logger,
		screen:        core.NewScreen(size.ScreenW, max(size.ScreenH-footerHeight, 0)),
		width:         size.ScreenW,
		height:        size.ScreenH,
		screenshotDir: opts.ScreenshotDir,
		keys:          DefaultKeyMap(),
		help:          h,
		spinner:       spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

// Init starts the spinner and the startup load.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadCmd())
}

func (m Model) loadCmd() tea.Cmd {
	ctx, persist, player, logger := m.ctx, m.persist, m.ctrl.Player(), m.logger
	return func() tea.Msg {
		return loadedMsg{loaded: t2048.LoadState(ctx, persist, player, logger)}
	}
}

// saveCmd takes the pending writes from the controller and performs them
// off the event loop. It returns nil when nothing needs saving.
func (m Model) saveCmd() tea.Cmd {
	batch, ok := m.ctrl.PendingSave()
	if !ok {
		return nil
	}
	ctx, persist := m.ctx, m.persist
	return func() tea.Msg {
		return savedMsg{err: batch.Apply(ctx, persist)}
	}
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.ctrl.Restore(msg.loaded)
		return m, m.saveCmd()

	case savedMsg:
		m.ctrl.SaveDone(msg.err)
		if msg.err != nil {
			m.status = "Save failed"
		}
		next := m.saveCmd()
		if m.quitting && next == nil {
			return m, tea.Quit
		}
		return m, next

	case scoresMsg:
		m.scores.setRuns(msg)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.screen.Resize(msg.Width, max(msg.Height-footerHeight, 0))
		m.help.Width = msg.Width
		if m.view == viewScores {
			m.scores.resize(msg.Width, msg.Height)
		}
		return m, nil

	case tea.KeyMsg:
		if m.quitting {
			return m, nil
		}
		switch m.view {
		case viewLevels:
			return m.handleMenuKey(msg)
		case viewScores:
			return m.handleScoresKey(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

// quit stops the program once pending writes are on disk.
func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	if m.ctrl.Saving() {
		return m, nil // savedMsg finishes the quit
	}
	if cmd := m.saveCmd(); cmd != nil {
		return m, cmd
	}
	return m, tea.Quit
}

// handleKey processes keyboard input in the game view.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Screenshot):
		m.saveScreenshot()
		return m, nil
	case key.Matches(msg, m.keys.Scores):
		if m.runs == nil {
			return m, nil
		}
		m.view = viewScores
		m.scores = newScoreboard(m.runs, m.ctrl.Levels(), m.ctrl.Snapshot().LevelIndex, m.width, m.height)
		return m, m.scores.load(m.ctx)
	}

	action := m.keys.ActionFor(msg)
	switch action {
	case core.ActionNone:
		return m, nil
	case core.ActionQuit:
		return m.quit()
	case core.ActionMenu:
		if !m.ctrl.Ready() {
			return m, nil
		}
		m.view = viewLevels
		m.menu = newLevelMenu(m.ctrl.Snapshot(), m.ctrl.Levels())
		return m, nil
	}

	m.status = ""
	if !m.ctrl.Handle(action) {
		return m, nil
	}
	return m, m.saveCmd()
}

func (m Model) handleMenuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	level, back, quit := m.menu.update(msg)
	switch {
	case quit:
		return m.quit()
	case back:
		m.view = viewGame
		return m, nil
	case level > 0:
		if err := m.ctrl.SelectLevel(level); err != nil {
			m.logger.Debug("level select rejected", "level", level, "error", err)
			m.status = "Level locked"
			return m, nil
		}
		m.view = viewGame
		m.status = ""
		return m, m.saveCmd()
	}
	return m, nil
}

func (m Model) handleScoresKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	back, quit, cmd := m.scores.update(m.ctx, msg)
	switch {
	case quit:
		return m.quit()
	case back:
		m.view = viewGame
	}
	return m, cmd
}

// saveScreenshot writes the current board as plain text.
func (m *Model) saveScreenshot() {
	if m.screenshotDir == "" {
		return
	}
	t2048.Render(m.screen, m.ctrl.Snapshot())

	if err := os.MkdirAll(m.screenshotDir, 0o755); err != nil {
		m.logger.Warn("screenshot dir", "error", err)
		return
	}
	name := fmt.Sprintf("2048_%s.txt", time.Now().Format("20060102_150405"))
	path := filepath.Join(m.screenshotDir, name)
	if err := os.WriteFile(path, []byte(m.screen.String()), 0o600); err != nil {
		m.logger.Warn("screenshot", "path", path, "error", err)
		return
	}
	m.status = "Saved " + name
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	switch m.view {
	case viewLevels:
		return m.menu.view(m.width) + "\n" + m.statusLine()
	case viewScores:
		return m.scores.view()
	}

	t2048.Render(m.screen, m.ctrl.Snapshot())

	var b strings.Builder
	b.WriteString(RenderScreen(m.screen))
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func (m Model) statusLine() string {
	switch {
	case !m.ctrl.Ready():
		return m.spinner.View() + statusStyle.Render(" loading")
	case m.ctrl.Saving():
		return m.spinner.View() + statusStyle.Render(" saving")
	case m.status != "":
		return statusStyle.Render(m.status)
	}
	return statusStyle.Render("player: " + m.ctrl.Player())
}

// Run starts the Bubble Tea program and blocks until the player quits.
func Run(opts Options) error {
	p := tea.NewProgram(NewModel(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
