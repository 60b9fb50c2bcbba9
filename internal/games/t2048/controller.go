package t2048

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/tui-2048/internal/core"
)

var (
	// ErrNotReady is returned for moves before the startup load has been applied.
	ErrNotReady = errors.New("t2048: state not loaded")
	// ErrBusy is returned for moves while a save is in flight.
	ErrBusy = errors.New("t2048: save in progress")
	// ErrSessionOver is returned for moves after the level completed or the game ended.
	ErrSessionOver = errors.New("t2048: session is over")
	// ErrInvalidTransition is returned for a command the current state does not allow.
	ErrInvalidTransition = errors.New("t2048: invalid transition")
	// ErrLocked is returned when selecting a level that is not unlocked yet.
	ErrLocked = errors.New("t2048: level locked")
)

// Options configures a Controller.
type Options struct {
	Levels Levels      // Level table; DefaultLevels when empty
	Player string      // Key for persisted state
	Rand   Rand        // Spawn randomness; time seeded when nil
	Logger *log.Logger // Discarding logger when nil
}

// Controller sequences levels for one player. It owns the id source, the
// active session and the progression record.
//
// The controller is synchronous and not safe for concurrent use. Persistence
// runs outside it: callers take a SaveBatch with PendingSave, write it, and
// report back with SaveDone. Moves are rejected while a save is pending.
type Controller struct {
	levels Levels
	player string
	rng    Rand
	ids    *IDSource
	logger *log.Logger

	session     Session
	progression Progression
	stored      *SavedSession // Latest session handed to persistence, nil when cleared

	ready  bool
	saving bool

	sessionDirty     bool
	clearSession     bool
	progressionDirty bool
	runs             []RunRecord

	lastMerged  []TileID
	lastSpawned TileID
	hasSpawned  bool
}

// NewController validates the level table and returns a controller that
// accepts no moves until Restore or Start has run.
func NewController(opts Options) (*Controller, error) {
	levels := opts.Levels
	if levels.Len() == 0 {
		levels = DefaultLevels()
	}
	if err := levels.Validate(); err != nil {
		return nil, fmt.Errorf("t2048: levels: %w", err)
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	c := &Controller{
		levels:      levels,
		player:      opts.Player,
		rng:         rng,
		ids:         NewIDSource(),
		logger:      orDiscard(opts.Logger),
		progression: NewProgression(),
	}
	first, _ := levels.At(0)
	c.session = Session{Level: first, Board: NewBoard(first.BoardSize), State: StatePlaying}
	return c, nil
}

// Levels returns the level table.
func (c *Controller) Levels() Levels {
	return c.levels
}

// Player returns the persistence key.
func (c *Controller) Player() string {
	return c.player
}

// Ready reports whether the startup load has been applied.
func (c *Controller) Ready() bool {
	return c.ready
}

// Saving reports whether a save is in flight.
func (c *Controller) Saving() bool {
	return c.saving
}

// Start loads persisted state and applies it. It is the synchronous startup
// path for callers without an event loop.
func (c *Controller) Start(ctx context.Context, p Persistence) {
	c.Restore(LoadState(ctx, p, c.player, c.logger))
}

// Restore applies the startup load and lifts the startup barrier. The level
// resumed is the highest unlocked one; the saved board is reused only when
// its level and size match.
func (c *Controller) Restore(l Loaded) {
	c.progression = l.Progression.Normalize(c.levels)
	if l.Progression.CurrentLevel != c.progression.CurrentLevel {
		c.progressionDirty = true
	}
	c.stored = l.Session
	c.startLevel(c.levels.StartIndex(c.progression.CurrentLevel), true)
	c.ready = true
	c.logger.Info("state restored",
		"player", c.player,
		"level", c.session.Level.Level,
		"unlocked", c.progression.CurrentLevel,
		"score", c.session.Score,
	)
}

// Handle maps an input action to a command. Unknown actions and rejected
// commands return false without changing state.
func (c *Controller) Handle(a core.Action) bool {
	var err error
	switch a {
	case core.ActionUp:
		return c.tryMove(DirUp)
	case core.ActionDown:
		return c.tryMove(DirDown)
	case core.ActionLeft:
		return c.tryMove(DirLeft)
	case core.ActionRight:
		return c.tryMove(DirRight)
	case core.ActionRestart:
		if c.session.State == StateLevelComplete {
			err = c.Replay()
		} else {
			err = c.Retry()
		}
	case core.ActionNextLevel:
		err = c.NextLevel()
	case core.ActionNewGame:
		err = c.NewGame()
	default:
		return false
	}
	if err != nil {
		c.logger.Debug("command rejected", "action", a, "error", err)
		return false
	}
	return true
}

func (c *Controller) tryMove(dir Direction) bool {
	changed, err := c.Move(dir)
	if err != nil {
		c.logger.Debug("move rejected", "direction", dir, "error", err)
		return false
	}
	return changed
}

// Move applies one direction to the active session. It reports whether the
// board changed. A move that changes nothing spawns nothing and saves nothing.
func (c *Controller) Move(dir Direction) (bool, error) {
	if err := c.acceptMove(); err != nil {
		return false, err
	}
	next, res, err := c.session.step(dir, c.rng, c.ids)
	if err != nil {
		return false, err
	}
	if !res.Move.Changed {
		return false, nil
	}

	c.session = next
	c.lastMerged = res.Move.Merged
	c.lastSpawned = res.Spawned.ID
	c.hasSpawned = res.HasSpawned

	if c.progression.RecordScore(next.Level.Level, next.Score) {
		c.progressionDirty = true
	}
	if next.State.Terminal() {
		c.conclude()
	} else {
		c.storeSession()
	}
	return true, nil
}

// conclude handles a session that just turned terminal: a completed level
// unlocks the next one, and either way the run is recorded.
func (c *Controller) conclude() {
	if c.session.State == StateLevelComplete {
		hasNext := !c.levels.IsLast(c.session.LevelIndex)
		if c.progression.Unlock(c.session.Level.Level, hasNext) {
			c.progressionDirty = true
			c.logger.Info("level unlocked", "player", c.player, "level", c.progression.CurrentLevel)
		}
	}
	c.finish()
}

func (c *Controller) acceptMove() error {
	switch {
	case !c.ready:
		return ErrNotReady
	case c.saving:
		return ErrBusy
	case c.session.State.Terminal():
		return ErrSessionOver
	}
	return nil
}

// finish records the run and drops the saved board of a terminal session.
func (c *Controller) finish() {
	run := c.session.run()
	run.CreatedAt = time.Now()
	c.runs = append(c.runs, run)
	c.stored = nil
	c.clearSession = true
	c.sessionDirty = false
	c.logger.Info("level finished",
		"player", c.player,
		"level", run.Level,
		"outcome", run.Outcome,
		"score", run.Score,
		"max_tile", run.MaxTile,
	)
}

// Retry restarts the current level on a fresh board. Progression is untouched.
func (c *Controller) Retry() error {
	if !c.ready {
		return ErrNotReady
	}
	if c.session.State == StateLevelComplete {
		return fmt.Errorf("%w: retry after level complete", ErrInvalidTransition)
	}
	c.startLevel(c.session.LevelIndex, false)
	return nil
}

// Replay restarts the level just completed, resuming a matching saved board.
func (c *Controller) Replay() error {
	if !c.ready {
		return ErrNotReady
	}
	if c.session.State != StateLevelComplete {
		return fmt.Errorf("%w: replay from %s", ErrInvalidTransition, c.session.State)
	}
	c.startLevel(c.session.LevelIndex, true)
	return nil
}

// NextLevel moves on from a completed level. It fails on the last level.
func (c *Controller) NextLevel() error {
	if !c.ready {
		return ErrNotReady
	}
	if c.session.State != StateLevelComplete {
		return fmt.Errorf("%w: next level from %s", ErrInvalidTransition, c.session.State)
	}
	if c.levels.IsLast(c.session.LevelIndex) {
		return fmt.Errorf("%w: no level after %d", ErrUnknownLevel, c.session.Level.Level)
	}
	c.startLevel(c.session.LevelIndex+1, true)
	return nil
}

// SelectLevel switches to an unlocked level from any state.
func (c *Controller) SelectLevel(level int) error {
	if !c.ready {
		return ErrNotReady
	}
	idx, ok := c.levels.IndexOf(level)
	if !ok {
		return fmt.Errorf("%w: level %d", ErrUnknownLevel, level)
	}
	if !c.progression.Unlocked(level) {
		return fmt.Errorf("%w: level %d", ErrLocked, level)
	}
	c.startLevel(idx, true)
	return nil
}

// NewGame wipes progression and tile ids and starts the first level.
func (c *Controller) NewGame() error {
	if !c.ready {
		return ErrNotReady
	}
	c.progression = NewProgression()
	c.progressionDirty = true
	c.ids.Reset()
	c.stored = nil
	c.clearSession = true
	c.startLevel(0, false)
	c.logger.Info("new game", "player", c.player)
	return nil
}

// startLevel replaces the session with level index. A missing level is
// logged and forces the first level. When restore is set a stored session
// is reused if its level number and board size match.
func (c *Controller) startLevel(index int, restore bool) {
	cfg, err := c.levels.At(index)
	if err != nil {
		c.logger.Error("missing level config, resetting to first level", "index", index, "error", err)
		index = 0
		cfg = c.levels[0]
	}

	c.lastMerged = nil
	c.lastSpawned = 0
	c.hasSpawned = false

	if restore && c.stored != nil && c.stored.Level == cfg.Level && c.stored.Size() == cfg.BoardSize {
		board, err := BoardFromSaved(*c.stored, c.ids)
		if err == nil {
			c.session = Session{
				LevelIndex: index,
				Level:      cfg,
				Board:      board,
				Score:      c.stored.Score,
				State:      classify(board, cfg.TargetScore),
				RunID:      uuid.NewString(),
			}
			if c.session.State.Terminal() {
				c.logger.Info("restored board is already finished", "player", c.player, "level", cfg.Level)
				c.conclude()
			}
			return
		}
		c.logger.Warn("discarding saved session", "player", c.player, "error", err)
	}

	c.session = newSession(index, cfg, c.rng, c.ids, uuid.NewString())
	c.storeSession()
}

func (c *Controller) storeSession() {
	s := c.session.saved()
	c.stored = &s
	c.sessionDirty = true
	c.clearSession = false
}

// PendingSave hands out the writes accumulated since the last save and
// marks the controller as saving. It returns false when nothing is dirty
// or a save is already in flight.
func (c *Controller) PendingSave() (SaveBatch, bool) {
	if c.saving {
		return SaveBatch{}, false
	}
	batch := SaveBatch{Player: c.player, ClearSession: c.clearSession, Runs: c.runs}
	if c.progressionDirty {
		p := c.progression.Clone()
		batch.Progression = &p
	}
	if c.sessionDirty && c.stored != nil {
		s := *c.stored
		batch.Session = &s
	}
	if batch.Empty() {
		return SaveBatch{}, false
	}
	c.progressionDirty = false
	c.sessionDirty = false
	c.clearSession = false
	c.runs = nil
	c.saving = true
	return batch, true
}

// SaveDone ends the save started by PendingSave. Failures are logged and
// never roll back in-memory state.
func (c *Controller) SaveDone(err error) {
	c.saving = false
	if err != nil {
		c.logger.Warn("save failed", "player", c.player, "error", err)
	}
}

// Flush writes pending state synchronously.
func (c *Controller) Flush(ctx context.Context, p Persistence) error {
	batch, ok := c.PendingSave()
	if !ok {
		return nil
	}
	err := batch.Apply(ctx, p)
	c.SaveDone(err)
	return err
}

func orDiscard(l *log.Logger) *log.Logger {
	if l == nil {
		return log.New(io.Discard)
	}
	return l
}
