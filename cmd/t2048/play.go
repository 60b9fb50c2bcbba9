package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-2048/internal/config"
	"github.com/vovakirdan/tui-2048/internal/core"
	"github.com/vovakirdan/tui-2048/internal/games/t2048"
	"github.com/vovakirdan/tui-2048/internal/platform/tui"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play in this terminal",
	Long: `Start playing. The highest unlocked level is resumed, including the
board you left unfinished.

Controls:
  Arrows/WASD/HJKL - Slide tiles
  R                - Retry (or replay after completing a level)
  N/Enter          - Next level after completing one
  Shift+N          - New game (wipes progress)
  M/Esc            - Level select
  Tab              - High scores
  Ctrl+S           - Save a text screenshot
  ?                - Toggle help
  Q/Ctrl+C         - Quit

Difficulty options:
  easy   - Few 4s on early levels, more later on
  normal - Moderate ramp of 4s across levels
  hard   - Many 4s from the first level
  fixed  - Spawn chances exactly as configured

Examples:
  t2048 play
  t2048 play --difficulty hard
  t2048 play --levels ./my-levels.yaml`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func runPlay(_ *cobra.Command, _ []string) error {
	levels, err := loadLevels()
	if err != nil {
		return err
	}

	logger, closeLog, err := newLogger(false)
	if err != nil {
		return err
	}
	defer closeLog()

	size := core.DefaultConfig()
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		size.ScreenW = w
		size.ScreenH = h
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

	opts := tui.Options{
		Controller:    ctrl,
		Persistence:   t2048.Discard,
		Logger:        logger,
		Config:        size,
		ScreenshotDir: filepath.Join(config.AppDir(), "screenshots"),
	}

	store, err := openStore()
	if err != nil {
		// Continue without storage - the game still works, progress is not kept
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		logger.Warn("playing without persistence", "error", err)
	} else {
		defer store.Close()
		opts.Persistence = store
		opts.Runs = store
	}

	if err := tui.Run(opts); err != nil {
		return fmt.Errorf("running game: %w", err)
	}
	return nil
}
