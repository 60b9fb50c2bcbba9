// Package storage provides SQLite-based persistence for sessions,
// progression and finished runs.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/tui-2048/internal/games/t2048"
)

const timeLayout = "2006-01-02 15:04:05"

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

// Ensure Store implements the game's persistence contract.
var _ t2048.Persistence = (*Store)(nil)

// RunEntry is a stored finished run.
type RunEntry struct {
	ID        int64
	RunID     string
	Player    string
	Level     int
	Score     int
	MaxTile   int
	Outcome   t2048.State
	CreatedAt time.Time
}

// LevelStats contains aggregated statistics for one level.
type LevelStats struct {
	Level      int
	Runs       int
	Completed  int
	HighScore  int
	AvgScore   float64
	BestTile   int
	LastPlayed time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	// SSH sessions share the file; one connection serialises writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}
	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS sessions (
			player TEXT PRIMARY KEY,
			level INTEGER NOT NULL,
			score INTEGER NOT NULL,
			board TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS progression (
			player TEXT PRIMARY KEY,
			current_level INTEGER NOT NULL,
			best_scores TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			player TEXT NOT NULL,
			level INTEGER NOT NULL,
			score INTEGER NOT NULL,
			max_tile INTEGER NOT NULL,
			outcome TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_runs_level_top ON runs(level, score DESC);
		CREATE INDEX IF NOT EXISTS idx_runs_player ON runs(player, created_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// LoadSession returns the saved in-progress level for player.
// An undecodable row is deleted and reported as t2048.ErrCorrupt.
func (s *Store) LoadSession(ctx context.Context, player string) (t2048.SavedSession, bool, error) {
	var (
		sess  t2048.SavedSession
		board string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT level, score, board FROM sessions WHERE player = ?",
		player,
	).Scan(&sess.Level, &sess.Score, &board)
	if errors.Is(err, sql.ErrNoRows) {
		return t2048.SavedSession{}, false, nil
	}
	if err != nil {
		return t2048.SavedSession{}, false, fmt.Errorf("storage: cannot load session: %w", err)
	}

	if err := json.Unmarshal([]byte(board), &sess.Board); err != nil {
		return t2048.SavedSession{}, false, s.discardSession(ctx, player, err)
	}
	if err := sess.Validate(); err != nil {
		return t2048.SavedSession{}, false, s.discardSession(ctx, player, err)
	}
	return sess, true, nil
}

func (s *Store) discardSession(ctx context.Context, player string, cause error) error {
	if err := s.ClearSession(ctx, player); err != nil {
		return errors.Join(fmt.Errorf("storage: session: %w: %v", t2048.ErrCorrupt, cause), err)
	}
	return fmt.Errorf("storage: session: %w: %v", t2048.ErrCorrupt, cause)
}

// SaveSession replaces the saved session for player.
func (s *Store) SaveSession(ctx context.Context, player string, sess t2048.SavedSession) error {
	board, err := json.Marshal(sess.Board)
	if err != nil {
		return fmt.Errorf("storage: cannot encode board: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (player, level, score, board, updated_at)
		 VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(player) DO UPDATE SET
		   level = excluded.level,
		   score = excluded.score,
		   board = excluded.board,
		   updated_at = excluded.updated_at`,
		player, sess.Level, sess.Score, string(board),
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save session: %w", err)
	}
	return nil
}

// ClearSession deletes the saved session for player.
func (s *Store) ClearSession(ctx context.Context, player string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE player = ?", player); err != nil {
		return fmt.Errorf("storage: cannot clear session: %w", err)
	}
	return nil
}

// LoadProgression returns the progression record for player.
// An undecodable row is deleted and reported as t2048.ErrCorrupt.
func (s *Store) LoadProgression(ctx context.Context, player string) (t2048.Progression, bool, error) {
	var (
		p      t2048.Progression
		scores string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT current_level, best_scores FROM progression WHERE player = ?",
		player,
	).Scan(&p.CurrentLevel, &scores)
	if errors.Is(err, sql.ErrNoRows) {
		return t2048.Progression{}, false, nil
	}
	if err != nil {
		return t2048.Progression{}, false, fmt.Errorf("storage: cannot load progression: %w", err)
	}

	cause := json.Unmarshal([]byte(scores), &p.BestScores)
	if cause == nil && p.CurrentLevel < 1 {
		cause = fmt.Errorf("current level %d", p.CurrentLevel)
	}
	if cause != nil {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM progression WHERE player = ?", player); err != nil {
			return t2048.Progression{}, false, fmt.Errorf("storage: cannot discard progression: %w", err)
		}
		return t2048.Progression{}, false, fmt.Errorf("storage: progression: %w: %v", t2048.ErrCorrupt, cause)
	}
	if p.BestScores == nil {
		p.BestScores = map[int]int{}
	}
	return p, true, nil
}

// SaveProgression replaces the progression record for player.
func (s *Store) SaveProgression(ctx context.Context, player string, p t2048.Progression) error {
	scores := p.BestScores
	if scores == nil {
		scores = map[int]int{}
	}
	data, err := json.Marshal(scores)
	if err != nil {
		return fmt.Errorf("storage: cannot encode best scores: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO progression (player, current_level, best_scores, updated_at)
		 VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(player) DO UPDATE SET
		   current_level = excluded.current_level,
		   best_scores = excluded.best_scores,
		   updated_at = excluded.updated_at`,
		player, p.CurrentLevel, string(data),
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save progression: %w", err)
	}
	return nil
}

// RecordRun appends a finished run.
func (s *Store) RecordRun(ctx context.Context, player string, r t2048.RunRecord) error {
	created := r.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, player, level, score, max_tile, outcome, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, player, r.Level, r.Score, r.MaxTile, string(r.Outcome), created.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("storage: cannot record run: %w", err)
	}
	return nil
}

// ResetPlayer deletes the session and progression of player. Run history is kept.
func (s *Store) ResetPlayer(ctx context.Context, player string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: cannot begin reset: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM sessions WHERE player = ?", player); err != nil {
		return fmt.Errorf("storage: cannot reset session: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM progression WHERE player = ?", player); err != nil {
		return fmt.Errorf("storage: cannot reset progression: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: cannot commit reset: %w", err)
	}
	return nil
}

// TopRuns retrieves the best runs on a level across all players.
// Results are ordered by score descending.
func (s *Store) TopRuns(ctx context.Context, level, limit int) ([]RunEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, player, level, score, max_tile, outcome, created_at
		 FROM runs
		 WHERE level = ?
		 ORDER BY score DESC, id ASC
		 LIMIT ?`,
		level, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	return scanRuns(rows)
}

// RecentRuns retrieves the latest runs of a player, newest first.
func (s *Store) RecentRuns(ctx context.Context, player string, limit int) ([]RunEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, player, level, score, max_tile, outcome, created_at
		 FROM runs
		 WHERE player = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		player, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	return scanRuns(rows)
}

func scanRuns(rows *sql.Rows) ([]RunEntry, error) {
	defer rows.Close()

	var entries []RunEntry
	for rows.Next() {
		var (
			e         RunEntry
			outcome   string
			createdAt any
		)
		if err := rows.Scan(&e.ID, &e.RunID, &e.Player, &e.Level, &e.Score, &e.MaxTile, &outcome, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.Outcome = t2048.State(outcome)
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return entries, nil
}

// LevelStatsAll retrieves statistics for every level that has been played.
func (s *Store) LevelStatsAll(ctx context.Context) ([]LevelStats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT level, COUNT(*),
		        SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END),
		        MAX(score), AVG(score), MAX(max_tile), MAX(created_at)
		 FROM runs
		 GROUP BY level
		 ORDER BY level`,
		string(t2048.StateLevelComplete),
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get level stats: %w", err)
	}
	defer rows.Close()

	var stats []LevelStats
	for rows.Next() {
		var (
			st         LevelStats
			lastPlayed any
		)
		if err := rows.Scan(&st.Level, &st.Runs, &st.Completed, &st.HighScore, &st.AvgScore, &st.BestTile, &lastPlayed); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		st.LastPlayed = parseTime(lastPlayed)
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return stats, nil
}

// parseTime handles both time.Time and string datetime columns.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(timeLayout, t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
