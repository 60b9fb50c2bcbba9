// t2048 is a sliding-tile puzzle for the terminal with a ladder of levels.
//
// Usage:
//
//	t2048 play               - Play locally, resuming saved progress
//	t2048 serve              - Start SSH server for remote play
//	t2048 levels             - Show the level table and your progress
//	t2048 scores [level]     - Show best runs or per-level statistics
//	t2048 simulate --moves   - Replay a move script without a terminal UI
//	t2048 reset              - Forget saved progress for a player
//
// Global flags:
//
//	--seed <value>       - Set RNG seed for reproducible tile spawns
//	--db <path>          - Set database path (default: ~/.t2048/t2048.db)
//	--levels <path>      - Custom levels YAML
//	--difficulty <name>  - Spawn difficulty preset: easy, normal, hard, fixed
//	--player <name>      - Save slot (default: $USER)
//	--redis <addr>       - Keep state in Redis instead of SQLite
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-2048/internal/config"
	"github.com/vovakirdan/tui-2048/internal/games/t2048"
	"github.com/vovakirdan/tui-2048/internal/storage"
)

var (
	// Global flags
	flagSeed       int64
	flagDBPath     string
	flagLevels     string
	flagDifficulty string
	flagPlayer     string
	flagLogLevel   string
	flagLogFile    string
	flagRedis      string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "t2048",
	Short: "2048 with levels, in your terminal",
	Long: `t2048 is a sliding-tile puzzle. Merge equal tiles to reach each
level's target tile and unlock the next, larger challenge.

Progress is saved after every move and restored on the next start.

Examples:
  t2048 play
  t2048 play --difficulty hard
  t2048 serve --ssh :2222
  t2048 scores 6
  t2048 simulate --seed 42 --moves lldrru`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.t2048/t2048.db", "Path to the save database")
	rootCmd.PersistentFlags().StringVar(&flagLevels, "levels", "", "Path to custom levels YAML")
	rootCmd.PersistentFlags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
	rootCmd.PersistentFlags().StringVar(&flagPlayer, "player", defaultPlayer(), "Player name used as the save slot")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "Log file (default: ~/.t2048/t2048.log)")
	rootCmd.PersistentFlags().StringVar(&flagRedis, "redis", "", "Redis address; replaces the SQLite database when set")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(levelsCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(resetCmd)
}

func defaultPlayer() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "player"
}

// loadLevels resolves the level table from the global flags.
func loadLevels() (t2048.Levels, error) {
	if flagDifficulty != "" && !config.ValidPreset(flagDifficulty) {
		return nil, fmt.Errorf("unknown difficulty %q (want easy, normal, hard or fixed)", flagDifficulty)
	}
	return config.LoadResolved(flagLevels, config.DifficultyPreset(flagDifficulty))
}

// newRand returns the spawn source for --seed.
func newRand() t2048.Rand {
	seed := flagSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// newLogger builds the process logger. Interactive commands log to a file
// so output does not tear the alternate screen.
func newLogger(toStderr bool) (*log.Logger, func(), error) {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", flagLogLevel, err)
	}
	opts := log.Options{
		ReportTimestamp: true,
		Prefix:          "t2048",
		Level:           level,
	}
	if toStderr {
		return log.NewWithOptions(os.Stderr, opts), func() {}, nil
	}

	path := flagLogFile
	if path == "" {
		path = filepath.Join(config.AppDir(), "t2048.log")
	}
	path = expandHome(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return log.NewWithOptions(f, opts), func() { f.Close() }, nil
}

// openStore opens Redis when --redis is set and the SQLite file from --db
// otherwise.
func openStore() (storage.Backend, error) {
	if flagRedis != "" {
		cfg := storage.DefaultRedisConfig()
		cfg.Addr = flagRedis
		cfg.Password = os.Getenv("T2048_REDIS_PASSWORD")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return storage.OpenRedis(ctx, cfg)
	}
	store, err := storage.Open(flagDBPath)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", flagDBPath, err)
	}
	return store, nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
