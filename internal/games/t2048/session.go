package t2048

// Session is one level's in-progress board, score and terminal state.
// It is a value: step returns a new Session and leaves the receiver intact.
type Session struct {
	LevelIndex int
	Level      LevelConfig
	Board      Board
	Score      int
	State      State
	RunID      string // Identifies this attempt in the run history
}

// stepResult describes what one accepted move did to a session.
type stepResult struct {
	Move       MoveResult
	Spawned    Tile
	HasSpawned bool
}

// newSession seeds a fresh two-tile board for level.
func newSession(index int, level LevelConfig, rng Rand, ids *IDSource, runID string) Session {
	return Session{
		LevelIndex: index,
		Level:      level,
		Board:      SeedBoard(level.BoardSize, rng, ids, level.Spawn4),
		State:      StatePlaying,
		RunID:      runID,
	}
}

// step applies one move: transform, spawn when the board changed, then the
// terminal checks on the post-spawn board. Level completion wins over game over.
// An unchanged board returns the session as is and never spawns.
func (s Session) step(dir Direction, rng Rand, ids *IDSource) (Session, stepResult, error) {
	res, err := Move(s.Board, dir, ids)
	if err != nil {
		return s, stepResult{}, err
	}
	out := stepResult{Move: res}
	if !res.Changed {
		return s, out, nil
	}

	next := s
	next.Score += res.ScoreDelta
	board, spawned := SpawnTile(res.Board, rng, ids, s.Level.Spawn4)
	next.Board = board
	if spawned {
		out.HasSpawned = true
		for _, t := range board.cells {
			if t.JustSpawned {
				out.Spawned = t
				break
			}
		}
	}

	next.State = classify(next.Board, s.Level.TargetScore)
	return next, out, nil
}

// classify runs the terminal checks. Level completion wins over game over.
func classify(b Board, target int) State {
	switch {
	case IsLevelComplete(b, target):
		return StateLevelComplete
	case IsGameOver(b):
		return StateGameOver
	}
	return StatePlaying
}

// saved converts the session to its persisted form.
func (s Session) saved() SavedSession {
	return SaveSession(s.Level.Level, s.Score, s.Board)
}

// run returns the history record for a finished session.
func (s Session) run() RunRecord {
	return RunRecord{
		RunID:   s.RunID,
		Level:   s.Level.Level,
		Score:   s.Score,
		MaxTile: s.Board.MaxTile(),
		Outcome: s.State,
	}
}
