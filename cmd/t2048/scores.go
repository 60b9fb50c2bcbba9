package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-2048/internal/storage"
)

var (
	flagRecent int
	flagLimit  int
)

var scoresCmd = &cobra.Command{
	Use:   "scores [level]",
	Short: "Show high scores",
	Long: `Without arguments, show statistics for every level that has been
played. With a level number, show the best finished runs on that level.

Examples:
  t2048 scores
  t2048 scores 6
  t2048 scores --recent 10 --player alice`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagRecent, "recent", 0, "Show the N most recent runs of --player instead")
	scoresCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of runs to show for a level")
}

func runScores(_ *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	switch {
	case flagRecent > 0:
		runs, err := store.RecentRuns(ctx, flagPlayer, flagRecent)
		if err != nil {
			return fmt.Errorf("retrieving runs: %w", err)
		}
		fmt.Printf("Recent runs - %s\n", flagPlayer)
		printRuns(runs)

	case len(args) == 1:
		level, err := strconv.Atoi(args[0])
		if err != nil || level < 1 {
			return fmt.Errorf("invalid level %q", args[0])
		}
		runs, err := store.TopRuns(ctx, level, flagLimit)
		if err != nil {
			return fmt.Errorf("retrieving scores: %w", err)
		}
		fmt.Printf("High Scores - Level %d\n", level)
		printRuns(runs)

	default:
		sqlite, ok := store.(*storage.Store)
		if !ok {
			return errors.New("level statistics need the SQLite database; pass a level number instead")
		}
		stats, err := sqlite.LevelStatsAll(ctx)
		if err != nil {
			return fmt.Errorf("retrieving statistics: %w", err)
		}
		printStats(stats)
	}
	return nil
}

func printRuns(runs []storage.RunEntry) {
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		fmt.Println()
		fmt.Println("Play 't2048 play' to set the first score!")
		return
	}
	rows := make([][]string, len(runs))
	for i, r := range runs {
		rows[i] = []string{
			fmt.Sprintf("#%d", i+1),
			r.Player,
			fmt.Sprintf("%d", r.Level),
			fmt.Sprintf("%d", r.Score),
			fmt.Sprintf("%d", r.MaxTile),
			string(r.Outcome),
			r.CreatedAt.Format("2006-01-02 15:04"),
		}
	}
	fmt.Println(newTable("Rank", "Player", "Level", "Score", "Tile", "Outcome", "Date").Rows(rows...).Render())
}

func printStats(stats []storage.LevelStats) {
	if len(stats) == 0 {
		fmt.Println("No runs recorded yet.")
		return
	}
	rows := make([][]string, len(stats))
	for i, s := range stats {
		rows[i] = []string{
			fmt.Sprintf("%d", s.Level),
			fmt.Sprintf("%d", s.Runs),
			fmt.Sprintf("%d", s.Completed),
			fmt.Sprintf("%d", s.HighScore),
			fmt.Sprintf("%.0f", s.AvgScore),
			fmt.Sprintf("%d", s.BestTile),
			s.LastPlayed.Format("2006-01-02 15:04"),
		}
	}
	fmt.Println("Level statistics")
	fmt.Println(newTable("Level", "Runs", "Cleared", "High", "Avg", "Best tile", "Last played").Rows(rows...).Render())
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}
