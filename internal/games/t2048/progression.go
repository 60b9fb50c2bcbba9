package t2048

// Progression is the cross-session player record: the highest unlocked level
// and the best score reached on each level.
type Progression struct {
	CurrentLevel int         `json:"currentLevel"`
	BestScores   map[int]int `json:"bestScores"`
}

// NewProgression returns the default record: level 1 unlocked, no scores.
func NewProgression() Progression {
	return Progression{CurrentLevel: 1, BestScores: map[int]int{}}
}

// Best returns the best score recorded for a level, 0 if none.
func (p Progression) Best(level int) int {
	return p.BestScores[level]
}

// RecordScore stores score as the best for level if it beats the stored value.
// It reports whether the record changed.
func (p *Progression) RecordScore(level, score int) bool {
	if score <= p.Best(level) {
		return false
	}
	if p.BestScores == nil {
		p.BestScores = map[int]int{}
	}
	p.BestScores[level] = score
	return true
}

// Unlock advances CurrentLevel after level is completed. It only fires when
// the completed level is the highest unlocked one and a next level exists,
// so replaying an old level never unlocks anything.
func (p *Progression) Unlock(completed int, hasNext bool) bool {
	if completed != p.CurrentLevel || !hasNext {
		return false
	}
	p.CurrentLevel++
	return true
}

// Unlocked reports whether the player may start level.
func (p Progression) Unlocked(level int) bool {
	return level >= 1 && level <= p.CurrentLevel
}

// Clone returns a deep copy.
func (p Progression) Clone() Progression {
	scores := make(map[int]int, len(p.BestScores))
	for k, v := range p.BestScores {
		scores[k] = v
	}
	return Progression{CurrentLevel: p.CurrentLevel, BestScores: scores}
}

// Normalize clamps CurrentLevel into [1, levels] and drops scores for unknown
// or negative entries. It is applied to every loaded record.
func (p Progression) Normalize(levels Levels) Progression {
	out := p.Clone()
	if out.CurrentLevel < 1 {
		out.CurrentLevel = 1
	}
	if n := levels.Len(); n > 0 && out.CurrentLevel > n {
		out.CurrentLevel = n
	}
	for level, score := range out.BestScores {
		if _, ok := levels.IndexOf(level); !ok || score < 0 {
			delete(out.BestScores, level)
		}
	}
	return out
}
