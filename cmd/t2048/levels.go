package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-2048/internal/games/t2048"
)

var levelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "Show the level table and your progress",
	Long: `List every level with its board size, target tile and chance of a
spawned 4, after --levels and --difficulty are applied. When the save
database is readable, best scores and unlocks for --player are shown too.

Examples:
  t2048 levels
  t2048 levels --difficulty hard
  t2048 levels --player alice`,
	Args: cobra.NoArgs,
	RunE: runLevels,
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	lockedStyle = cellStyle.Foreground(lipgloss.Color("241"))
)

func runLevels(_ *cobra.Command, _ []string) error {
	levels, err := loadLevels()
	if err != nil {
		return err
	}

	prog := t2048.NewProgression()
	if store, err := openStore(); err == nil {
		if p, found, err := store.LoadProgression(context.Background(), flagPlayer); err == nil && found {
			prog = p.Normalize(levels)
		}
		store.Close()
	}

	rows := make([][]string, 0, levels.Len())
	for _, cfg := range levels {
		status := "locked"
		if prog.Unlocked(cfg.Level) {
			status = "unlocked"
		}
		if cfg.Level == prog.CurrentLevel {
			status = "current"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", cfg.Level),
			cfg.Name,
			fmt.Sprintf("%dx%d", cfg.BoardSize, cfg.BoardSize),
			fmt.Sprintf("%d", cfg.TargetScore),
			fmt.Sprintf("%.0f%%", cfg.Spawn4*100),
			fmt.Sprintf("%d", prog.Best(cfg.Level)),
			status,
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers("#", "Name", "Board", "Target", "4s", "Best", "Status").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case rows[row][6] == "locked":
				return lockedStyle
			}
			return cellStyle
		})

	fmt.Printf("Levels - %s\n", flagPlayer)
	fmt.Println(t.Render())
	return nil
}
