package t2048

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

// ErrCorrupt is returned by a Persistence when a stored record cannot be decoded.
// The record is discarded and callers fall back to the default state.
var ErrCorrupt = errors.New("t2048: corrupt persisted data")

// Persistence loads and saves session and progression state for a player.
// Load methods report found=false when nothing is stored.
type Persistence interface {
	LoadSession(ctx context.Context, player string) (SavedSession, bool, error)
	SaveSession(ctx context.Context, player string, s SavedSession) error
	ClearSession(ctx context.Context, player string) error
	LoadProgression(ctx context.Context, player string) (Progression, bool, error)
	SaveProgression(ctx context.Context, player string, p Progression) error
	RecordRun(ctx context.Context, player string, r RunRecord) error
}

// SavedTile is the minimal persisted form of a tile. Flags are not stored.
type SavedTile struct {
	Value int    `json:"value"`
	ID    TileID `json:"id"`
}

// SavedSession is the persisted form of an in-progress level.
// Empty cells are nil.
type SavedSession struct {
	Level int            `json:"level"`
	Score int            `json:"score"`
	Board [][]*SavedTile `json:"board"`
}

// RunRecord is one finished level attempt.
type RunRecord struct {
	RunID     string
	Level     int
	Score     int
	MaxTile   int
	Outcome   State
	CreatedAt time.Time
}

// SaveSession converts a board and score to the persisted form.
func SaveSession(level, score int, b Board) SavedSession {
	rows := make([][]*SavedTile, b.size)
	for r := range rows {
		rows[r] = make([]*SavedTile, b.size)
		for c := range rows[r] {
			t := b.cells[r*b.size+c]
			if t.Empty() {
				continue
			}
			rows[r][c] = &SavedTile{Value: t.Value, ID: t.ID}
		}
	}
	return SavedSession{Level: level, Score: score, Board: rows}
}

// Size returns the persisted board side.
func (s SavedSession) Size() int {
	return len(s.Board)
}

// Validate checks shape, tile values and id uniqueness.
func (s SavedSession) Validate() error {
	if s.Level < 1 {
		return fmt.Errorf("%w: level %d", ErrCorrupt, s.Level)
	}
	if s.Score < 0 {
		return fmt.Errorf("%w: negative score %d", ErrCorrupt, s.Score)
	}
	n := len(s.Board)
	if n == 0 {
		return fmt.Errorf("%w: empty board", ErrCorrupt)
	}
	seen := make(map[TileID]struct{})
	for r, row := range s.Board {
		if len(row) != n {
			return fmt.Errorf("%w: row %d has %d cells, want %d", ErrCorrupt, r, len(row), n)
		}
		for c, t := range row {
			if t == nil {
				continue
			}
			if !isPowerOfTwo(t.Value) {
				return fmt.Errorf("%w: value %d at (%d,%d)", ErrCorrupt, t.Value, r, c)
			}
			if _, dup := seen[t.ID]; dup {
				return fmt.Errorf("%w: duplicate tile id %d", ErrCorrupt, t.ID)
			}
			seen[t.ID] = struct{}{}
		}
	}
	return nil
}

// BoardFromSaved rebuilds a board keeping the persisted tile ids and advances
// ids past every one of them.
func BoardFromSaved(s SavedSession, ids *IDSource) (Board, error) {
	if err := s.Validate(); err != nil {
		return Board{}, err
	}
	n := len(s.Board)
	b := NewBoard(n)
	for r, row := range s.Board {
		for c, t := range row {
			if t == nil {
				continue
			}
			b.cells[r*n+c] = Tile{ID: t.ID, Value: t.Value}
			ids.Observe(t.ID)
		}
	}
	return b, nil
}

// Loaded is the result of the startup load.
type Loaded struct {
	Progression Progression
	Session     *SavedSession // nil when absent or discarded
}

// LoadState reads progression and session for player. Errors never escape:
// corrupt or unreadable data is logged and replaced by the default.
func LoadState(ctx context.Context, p Persistence, player string, logger *log.Logger) Loaded {
	logger = orDiscard(logger)
	out := Loaded{Progression: NewProgression()}

	prog, found, err := p.LoadProgression(ctx, player)
	switch {
	case err != nil:
		logger.Warn("discarding progression", "player", player, "error", err)
	case found:
		out.Progression = prog
	}

	sess, found, err := p.LoadSession(ctx, player)
	switch {
	case err != nil:
		logger.Warn("discarding saved session", "player", player, "error", err)
	case found:
		if verr := sess.Validate(); verr != nil {
			logger.Warn("discarding saved session", "player", player, "error", verr)
			break
		}
		out.Session = &sess
	}
	return out
}

// SaveBatch is the set of writes produced since the last save.
type SaveBatch struct {
	Player       string
	Progression  *Progression
	Session      *SavedSession
	ClearSession bool
	Runs         []RunRecord
}

// Empty reports whether the batch has nothing to write.
func (b SaveBatch) Empty() bool {
	return b.Progression == nil && b.Session == nil && !b.ClearSession && len(b.Runs) == 0
}

// Apply performs every write in the batch. All writes are attempted; the
// returned error joins the failures.
func (b SaveBatch) Apply(ctx context.Context, p Persistence) error {
	var errs []error
	if b.Progression != nil {
		if err := p.SaveProgression(ctx, b.Player, *b.Progression); err != nil {
			errs = append(errs, err)
		}
	}
	switch {
	case b.Session != nil:
		if err := p.SaveSession(ctx, b.Player, *b.Session); err != nil {
			errs = append(errs, err)
		}
	case b.ClearSession:
		if err := p.ClearSession(ctx, b.Player); err != nil {
			errs = append(errs, err)
		}
	}
	for _, r := range b.Runs {
		if err := p.RecordRun(ctx, b.Player, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Discard is a Persistence that stores nothing. It backs play when no
// database is available.
var Discard Persistence = discard{}

type discard struct{}

func (discard) LoadSession(context.Context, string) (SavedSession, bool, error) {
	return SavedSession{}, false, nil
}
func (discard) SaveSession(context.Context, string, SavedSession) error { return nil }
func (discard) ClearSession(context.Context, string) error              { return nil }
func (discard) LoadProgression(context.Context, string) (Progression, bool, error) {
	return Progression{}, false, nil
}
func (discard) SaveProgression(context.Context, string, Progression) error { return nil }
func (discard) RecordRun(context.Context, string, RunRecord) error         { return nil }
