package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/tui-2048/internal/games/t2048"
)

//go:embed defaults/levels.yaml
var defaultLevelsYAML []byte

// AppDirName is the per-user directory holding config, database and logs.
const AppDirName = ".t2048"

// LoadLevels loads the level table.
// Search order: customPath -> ~/.t2048/levels.yaml -> ./configs/levels.yaml -> embedded default
func LoadLevels(customPath string) (LevelsFile, error) {
	var cfg LevelsFile

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath("levels.yaml"); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if err := yaml.Unmarshal(data, &cfg); err == nil {
				return cfg, nil
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile("configs/levels.yaml"); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err == nil {
			return cfg, nil
		}
	}

	// Use embedded default YAML
	if err := yaml.Unmarshal(defaultLevelsYAML, &cfg); err != nil {
		return DefaultLevelsFile(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// DefaultLevelsFile returns the built-in table in file form.
func DefaultLevelsFile() LevelsFile {
	defaults := t2048.DefaultLevels()
	f := LevelsFile{
		Spawn4:     t2048.DefaultSpawn4,
		Difficulty: DifficultyConfig{MaxSpawn4: 0.25},
		Levels:     make([]LevelEntry, len(defaults)),
	}
	for i, lvl := range defaults {
		f.Levels[i] = LevelEntry{
			Level:     lvl.Level,
			Name:      lvl.Name,
			BoardSize: lvl.BoardSize,
			Target:    lvl.TargetScore,
		}
	}
	return f
}

// ApplyPreset modifies the difficulty block based on a preset.
func ApplyPreset(cfg *LevelsFile, preset DifficultyPreset) {
	if preset == "" {
		return
	}
	if IsFixedPreset(preset) {
		cfg.Difficulty.Enabled = false
		return
	}
	cfg.Difficulty.Enabled = true
	cfg.Difficulty.InitialLevel = InitialLevelForPreset(preset)
}

// Resolve turns the file into a validated level table.
func (f LevelsFile) Resolve() (t2048.Levels, error) {
	if len(f.Levels) == 0 {
		return nil, fmt.Errorf("config: no levels defined")
	}
	base := f.Spawn4
	if base == 0 {
		base = t2048.DefaultSpawn4
	}
	dm := NewDifficultyManager(f.Difficulty)

	levels := make(t2048.Levels, len(f.Levels))
	for i, e := range f.Levels {
		spawn4 := dm.Spawn4(base, i, len(f.Levels))
		if e.Spawn4 != nil {
			spawn4 = *e.Spawn4
		}
		levels[i] = t2048.LevelConfig{
			Level:       e.Level,
			Name:        e.Name,
			BoardSize:   e.BoardSize,
			TargetScore: e.Target,
			Spawn4:      spawn4,
		}
	}
	if err := levels.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return levels, nil
}

// LoadResolved loads the table, applies the preset and validates it.
func LoadResolved(customPath string, preset DifficultyPreset) (t2048.Levels, error) {
	f, err := LoadLevels(customPath)
	if err != nil {
		return nil, err
	}
	ApplyPreset(&f, preset)
	return f.Resolve()
}

// AppDir returns ~/.t2048, or ./.t2048 when the home directory is unknown.
func AppDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return AppDirName
	}
	return filepath.Join(home, AppDirName)
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, AppDirName, filename)
}
