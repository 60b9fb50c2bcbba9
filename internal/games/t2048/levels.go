// Package t2048 implements a levelled 2048 puzzle: an immutable board, the
// slide-and-merge move engine, terminal state detection and the level
// progression controller that drives it.
package t2048

import (
	"errors"
	"fmt"
)

// ErrUnknownLevel is returned when a level index or number has no configuration.
var ErrUnknownLevel = errors.New("t2048: unknown level")

// MinBoardSize is the smallest supported board side.
const MinBoardSize = 4

// LevelConfig defines one level of the campaign.
type LevelConfig struct {
	Level       int     // 1-based level number, used as the key for best scores
	Name        string  // Display name
	BoardSize   int     // Side length of the board
	TargetScore int     // Tile value that completes the level
	Spawn4      float64 // Probability of spawning 4 instead of 2
}

// Levels is the ordered, read-only level table. Index 0 is the first playable level.
type Levels []LevelConfig

// DefaultLevels returns the built-in ten level campaign.
func DefaultLevels() Levels {
	return Levels{
		{Level: 1, Name: "Warm-up", BoardSize: 4, TargetScore: 64, Spawn4: DefaultSpawn4},
		{Level: 2, Name: "Getting Started", BoardSize: 4, TargetScore: 128, Spawn4: DefaultSpawn4},
		{Level: 3, Name: "Building Momentum", BoardSize: 4, TargetScore: 256, Spawn4: DefaultSpawn4},
		{Level: 4, Name: "The Climb", BoardSize: 4, TargetScore: 512, Spawn4: DefaultSpawn4},
		{Level: 5, Name: "Halfway There", BoardSize: 4, TargetScore: 1024, Spawn4: DefaultSpawn4},
		{Level: 6, Name: "Classic 2048", BoardSize: 4, TargetScore: 2048, Spawn4: DefaultSpawn4},
		{Level: 7, Name: "More Room", BoardSize: 5, TargetScore: 2048, Spawn4: DefaultSpawn4},
		{Level: 8, Name: "Beyond Limits", BoardSize: 5, TargetScore: 4096, Spawn4: DefaultSpawn4},
		{Level: 9, Name: "Grandmaster", BoardSize: 5, TargetScore: 8192, Spawn4: DefaultSpawn4},
		{Level: 10, Name: "Ultimate Champion", BoardSize: 5, TargetScore: 16384, Spawn4: DefaultSpawn4},
	}
}

// Len returns the number of levels.
func (l Levels) Len() int {
	return len(l)
}

// At returns the level at the given 0-based index.
func (l Levels) At(index int) (LevelConfig, error) {
	if index < 0 || index >= len(l) {
		return LevelConfig{}, fmt.Errorf("%w: index %d of %d", ErrUnknownLevel, index, len(l))
	}
	return l[index], nil
}

// IndexOf returns the index of the level with the given number.
func (l Levels) IndexOf(level int) (int, bool) {
	for i, cfg := range l {
		if cfg.Level == level {
			return i, true
		}
	}
	return 0, false
}

// IsLast reports whether index is the final level.
func (l Levels) IsLast(index int) bool {
	return index == len(l)-1
}

// StartIndex maps an unlocked level number to the index a resumed game starts at.
func (l Levels) StartIndex(currentLevel int) int {
	idx := currentLevel - 1
	if idx >= len(l) {
		idx = len(l) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}

// Validate checks that levels are numbered 1..n in order and playable.
func (l Levels) Validate() error {
	if len(l) == 0 {
		return fmt.Errorf("%w: no levels", ErrUnknownLevel)
	}
	for i, cfg := range l {
		if cfg.Level != i+1 {
			return fmt.Errorf("level %d: expected level number %d", cfg.Level, i+1)
		}
		if cfg.BoardSize < MinBoardSize {
			return fmt.Errorf("level %d: board size %d is below %d", cfg.Level, cfg.BoardSize, MinBoardSize)
		}
		if !isPowerOfTwo(cfg.TargetScore) {
			return fmt.Errorf("level %d: target %d is not a power of two", cfg.Level, cfg.TargetScore)
		}
		if cfg.Spawn4 < 0 || cfg.Spawn4 > 1 {
			return fmt.Errorf("level %d: spawn4 %.2f outside [0,1]", cfg.Level, cfg.Spawn4)
		}
	}
	return nil
}
