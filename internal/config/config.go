// Package config provides YAML-based level table loading and difficulty
// presets for the game.
package config

// LevelsFile is the on-disk form of the level table.
type LevelsFile struct {
	Spawn4     float64          `yaml:"spawn4"` // Default probability of spawning a 4
	Difficulty DifficultyConfig `yaml:"difficulty"`
	Levels     []LevelEntry     `yaml:"levels"`
}

// LevelEntry defines one level.
type LevelEntry struct {
	Level     int      `yaml:"level"`
	Name      string   `yaml:"name"`
	BoardSize int      `yaml:"board_size"`
	Target    int      `yaml:"target"`
	Spawn4    *float64 `yaml:"spawn4,omitempty"` // Overrides the default and the difficulty ramp
}

// DifficultyConfig ramps the chance of a 4 spawning across the campaign.
type DifficultyConfig struct {
	Enabled      bool    `yaml:"enabled"`
	InitialLevel float64 `yaml:"initial_level"` // 0.0 = easy, 1.0 = hard
	MaxSpawn4    float64 `yaml:"max_spawn4"`    // Spawn4 on the last level at full difficulty
}

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// InitialLevelForPreset returns the initial_level for a difficulty preset.
func InitialLevelForPreset(preset DifficultyPreset) float64 {
	switch preset {
	case DifficultyEasy:
		return 0.0
	case DifficultyNormal:
		return 0.3
	case DifficultyHard:
		return 0.7
	default:
		return 0.0
	}
}

// IsFixedPreset returns true if the preset disables the spawn ramp.
func IsFixedPreset(preset DifficultyPreset) bool {
	return preset == DifficultyFixed
}

// ValidPreset reports whether s names a known preset.
func ValidPreset(s string) bool {
	switch DifficultyPreset(s) {
	case DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyFixed:
		return true
	}
	return false
}
