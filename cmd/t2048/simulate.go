package main

import (
	"context"
	"errors"
	"fmt"
	"unicode"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-2048/internal/core"
	"github.com/vovakirdan/tui-2048/internal/games/t2048"
)

var (
	flagMoves   string
	flagPersist bool
	flagQuiet   bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Play a move script without the terminal UI",
	Long: `Apply a script of moves and print the board after each one.
Moves are u, d, l and r; other characters are ignored. With the same
--seed the output is reproducible.

By default nothing is saved. With --persist the run resumes and updates
the saved state of --player like a normal game.

Examples:
  t2048 simulate --seed 42 --moves lldrru
  t2048 simulate --seed 1 --moves "$(cat moves.txt)" --quiet`,
	Args: cobra.NoArgs,
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().StringVar(&flagMoves, "moves", "", "Move script, e.g. \"uldr\"")
	simulateCmd.Flags().BoolVar(&flagPersist, "persist", false, "Load and save state in the database")
	simulateCmd.Flags().BoolVar(&flagQuiet, "quiet", false, "Only print the final board")
}

func runSimulate(_ *cobra.Command, _ []string) error {
	levels, err := loadLevels()
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(true)
	if err != nil {
		return err
	}
	defer closeLog()

	persist := t2048.Discard
	if flagPersist {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()
		persist = store
	}

	ctrl, err := t2048.NewController(t2048.Options{
		Levels: levels,
		Player: flagPlayer,
		Rand:   newRand(),
		Logger: logger,
	})
	if err != nil {
		return err
	}

	ctx := context.Background()
	ctrl.Start(ctx, persist)
	if err := ctrl.Flush(ctx, persist); err != nil {
		logger.Warn("initial save failed", "error", err)
	}

	printSnapshot(ctrl.Snapshot(), "start")
	for _, r := range flagMoves {
		if unicode.IsSpace(r) {
			continue
		}
		dir, err := t2048.ParseDirection(string(r))
		if err != nil {
			logger.Debug("skipping move", "move", string(r))
			continue
		}
		changed, err := ctrl.Move(dir)
		if errors.Is(err, t2048.ErrSessionOver) {
			break
		}
		if err != nil {
			return err
		}
		if err := ctrl.Flush(ctx, persist); err != nil {
			logger.Warn("save failed", "error", err)
		}
		if changed && !flagQuiet {
			printSnapshot(ctrl.Snapshot(), dir.String())
		}
	}

	final := ctrl.Snapshot()
	if flagQuiet {
		printSnapshot(final, "final")
	}
	fmt.Printf("level=%d score=%d max_tile=%d state=%s\n", final.Level.Level, final.Score, final.MaxTile(), final.State)
	return nil
}

// printSnapshot draws the board the way the terminal UI does, without colors.
func printSnapshot(s t2048.Snapshot, label string) {
	w, h := t2048.BoardExtent(s.Board.Size())
	screen := core.NewScreen(w, h)
	t2048.Render(screen, s)
	fmt.Printf("-- %s\n%s\n", label, screen.String())
}
