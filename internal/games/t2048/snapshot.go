package t2048

// State is the lifecycle state of a level session.
type State string

const (
	StatePlaying       State = "playing"
	StateLevelComplete State = "level_complete"
	StateGameOver      State = "game_over"
)

// Terminal reports whether the state rejects further moves.
func (s State) Terminal() bool {
	return s == StateLevelComplete || s == StateGameOver
}

// Snapshot captures everything a renderer needs after a state change.
// It shares no mutable data with the controller.
type Snapshot struct {
	Board       Board
	Score       int
	BestScore   int // Best score recorded for the active level
	Level       LevelConfig
	LevelIndex  int
	LevelCount  int
	State       State
	Progression Progression
	MergedIDs   []TileID // Tiles created by merges during the last move
	SpawnedID   TileID   // Tile spawned after the last move, valid if HasSpawned
	HasSpawned  bool
	Final       bool // Last level completed
	Ready       bool // Startup load finished
	Saving      bool // A save is in flight; moves are rejected
}

// MaxTile returns the highest tile value on the snapshot board.
func (s Snapshot) MaxTile() int {
	return s.Board.MaxTile()
}

// IsMerged reports whether id was produced by a merge in the last move.
func (s Snapshot) IsMerged(id TileID) bool {
	for _, m := range s.MergedIDs {
		if m == id {
			return true
		}
	}
	return false
}

// Snapshot returns the current observable state.
func (c *Controller) Snapshot() Snapshot {
	merged := make([]TileID, len(c.lastMerged))
	copy(merged, c.lastMerged)
	return Snapshot{
		Board:       c.session.Board,
		Score:       c.session.Score,
		BestScore:   c.progression.Best(c.session.Level.Level),
		Level:       c.session.Level,
		LevelIndex:  c.session.LevelIndex,
		LevelCount:  c.levels.Len(),
		State:       c.session.State,
		Progression: c.progression.Clone(),
		MergedIDs:   merged,
		SpawnedID:   c.lastSpawned,
		HasSpawned:  c.hasSpawned,
		Final:       c.session.State == StateLevelComplete && c.levels.IsLast(c.session.LevelIndex),
		Ready:       c.ready,
		Saving:      c.saving,
	}
}
