package config

import "math"

// DifficultyManager computes per-level spawn parameters.
type DifficultyManager struct {
	cfg DifficultyConfig
}

// NewDifficultyManager creates a new difficulty manager.
func NewDifficultyManager(cfg DifficultyConfig) *DifficultyManager {
	cfg.InitialLevel = clampF(cfg.InitialLevel, 0.0, 1.0)
	return &DifficultyManager{cfg: cfg}
}

// IsEnabled returns whether the spawn ramp is active.
func (d *DifficultyManager) IsEnabled() bool {
	return d.cfg.Enabled
}

// Level returns the difficulty (0.0 to 1.0) of the level at index out of count.
func (d *DifficultyManager) Level(index, count int) float64 {
	if !d.cfg.Enabled {
		return d.cfg.InitialLevel
	}
	progress := 1.0
	if count > 1 {
		progress = clampF(float64(index)/float64(count-1), 0.0, 1.0)
	}
	// Interpolate from initial level to 1.0
	return d.cfg.InitialLevel + progress*(1.0-d.cfg.InitialLevel)
}

// Spawn4 returns the probability of a 4 for the level at index.
// With the ramp disabled it is base.
func (d *DifficultyManager) Spawn4(base float64, index, count int) float64 {
	if !d.cfg.Enabled || d.cfg.MaxSpawn4 <= base {
		return base
	}
	level := d.Level(index, count)
	return clampF(base+level*(d.cfg.MaxSpawn4-base), 0.0, 1.0)
}

// clampF restricts a float64 to [min, max].
func clampF(val, min, max float64) float64 {
	return math.Max(min, math.Min(max, val))
}
