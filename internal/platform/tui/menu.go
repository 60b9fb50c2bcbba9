package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-2048/internal/games/t2048"
)

// levelItem is one row of the level select menu.
type levelItem struct {
	cfg      t2048.LevelConfig
	best     int
	unlocked bool
	current  bool
}

// levelMenu is the level select screen. It lists every level and lets the
// player jump to any unlocked one.
type levelMenu struct {
	items  []levelItem
	cursor int
}

// newLevelMenu builds the menu from the current snapshot. The cursor starts
// on the level being played.
func newLevelMenu(s t2048.Snapshot, levels t2048.Levels) levelMenu {
	m := levelMenu{items: make([]levelItem, 0, levels.Len())}
	for i, cfg := range levels {
		m.items = append(m.items, levelItem{
			cfg:      cfg,
			best:     s.Progression.Best(cfg.Level),
			unlocked: s.Progression.Unlocked(cfg.Level),
			current:  i == s.LevelIndex,
		})
		if i == s.LevelIndex {
			m.cursor = i
		}
	}
	return m
}

// update moves the cursor. It returns the chosen level number when the
// player selects an unlocked row, and back=true when the menu is closed.
func (m *levelMenu) update(msg tea.KeyMsg) (level int, back, quit bool) {
	switch MapKeyToMenuAction(msg) {
	case MenuActionQuit:
		return 0, false, true
	case MenuActionBack:
		return 0, true, false
	case MenuActionUp:
		if m.cursor > 0 {
			m.cursor--
		}
	case MenuActionDown:
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case MenuActionSelect:
		if len(m.items) > 0 && m.items[m.cursor].unlocked {
			return m.items[m.cursor].cfg.Level, false, false
		}
	}
	return 0, false, false
}

func (m levelMenu) view(width int) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centerText(titleStyle.Render("  S E L E C T   L E V E L  "), width, len("  S E L E C T   L E V E L  ")))
	b.WriteString("\n\n")

	for i, item := range m.items {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		status := ""
		switch {
		case !item.unlocked:
			status = " [locked]"
		case item.current:
			status = " *"
		}
		line := fmt.Sprintf("%s%2d. %-18s %dx%d  target %-5d  best %-6d%s",
			cursor, item.cfg.Level, item.cfg.Name, item.cfg.BoardSize, item.cfg.BoardSize,
			item.cfg.TargetScore, item.best, status)
		styled := line
		if !item.unlocked {
			styled = statusStyle.Render(line)
		}
		b.WriteString(centerText(styled, width, len([]rune(line))))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	controls := "Up/Down: Navigate  |  Enter: Play  |  Esc: Back  |  Q: Quit"
	b.WriteString(centerText(controls, width, len(controls)))
	b.WriteString("\n")
	return b.String()
}

// centerText centers text within width. visible is the printed length of
// text, which differs from len(text) once styles are applied.
func centerText(text string, width, visible int) string {
	if visible >= width {
		return text
	}
	padding := (width - visible) / 2
	return strings.Repeat(" ", padding) + text
}
