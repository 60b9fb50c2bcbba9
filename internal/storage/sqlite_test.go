package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vovakirdan/tui-2048/internal/games/t2048"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestSessionRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, found, err := store.LoadSession(ctx, "alice"); err != nil || found {
		t.Fatalf("LoadSession on empty db = %v, %v", found, err)
	}

	board := t2048.NewBoard(4).
		With(0, 0, t2048.Tile{ID: 12, Value: 8}).
		With(3, 2, t2048.Tile{ID: 3, Value: 2, JustSpawned: true})
	saved := t2048.SaveSession(2, 340, board)
	if err := store.SaveSession(ctx, "alice", saved); err != nil {
		t.Fatalf("SaveSession() failed: %v", err)
	}

	got, found, err := store.LoadSession(ctx, "alice")
	if err != nil || !found {
		t.Fatalf("LoadSession() = %v, %v", found, err)
	}
	if got.Level != 2 || got.Score != 340 || got.Size() != 4 {
		t.Errorf("loaded level %d score %d size %d", got.Level, got.Score, got.Size())
	}
	if tile := got.Board[0][0]; tile == nil || tile.Value != 8 || tile.ID != 12 {
		t.Errorf("tile (0,0) = %+v", tile)
	}
	if got.Board[1][1] != nil {
		t.Error("empty cell should load as nil")
	}

	// Overwrite keeps a single slot per player
	if err := store.SaveSession(ctx, "alice", t2048.SaveSession(3, 0, t2048.NewBoard(5))); err != nil {
		t.Fatalf("SaveSession() failed: %v", err)
	}
	got, _, _ = store.LoadSession(ctx, "alice")
	if got.Level != 3 {
		t.Errorf("session not replaced, level = %d", got.Level)
	}

	if _, found, _ := store.LoadSession(ctx, "bob"); found {
		t.Error("sessions must be keyed by player")
	}

	if err := store.ClearSession(ctx, "alice"); err != nil {
		t.Fatalf("ClearSession() failed: %v", err)
	}
	if _, found, _ := store.LoadSession(ctx, "alice"); found {
		t.Error("session should be gone after ClearSession")
	}
}

func TestCorruptSessionIsDiscarded(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		board string
	}{
		{"not json", "{{{"},
		{"bad value", `[[{"value":3,"id":1}]]`},
		{"ragged", `[[null,null],[null]]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.db.Exec(
				"INSERT OR REPLACE INTO sessions (player, level, score, board) VALUES (?, 1, 0, ?)",
				"carol", tt.board,
			)
			if err != nil {
				t.Fatal(err)
			}

			_, found, err := store.LoadSession(ctx, "carol")
			if found || !errors.Is(err, t2048.ErrCorrupt) {
				t.Fatalf("LoadSession() = %v, %v; want ErrCorrupt", found, err)
			}
			if _, found, err := store.LoadSession(ctx, "carol"); found || err != nil {
				t.Errorf("corrupt row should be deleted, got %v, %v", found, err)
			}
		})
	}
}

func TestProgressionRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, found, err := store.LoadProgression(ctx, "alice"); err != nil || found {
		t.Fatalf("LoadProgression on empty db = %v, %v", found, err)
	}

	p := t2048.Progression{CurrentLevel: 3, BestScores: map[int]int{1: 120, 2: 800}}
	if err := store.SaveProgression(ctx, "alice", p); err != nil {
		t.Fatalf("SaveProgression() failed: %v", err)
	}
	got, found, err := store.LoadProgression(ctx, "alice")
	if err != nil || !found {
		t.Fatalf("LoadProgression() = %v, %v", found, err)
	}
	if got.CurrentLevel != 3 || got.Best(1) != 120 || got.Best(2) != 800 {
		t.Errorf("loaded progression = %+v", got)
	}

	if err := store.SaveProgression(ctx, "alice", t2048.Progression{CurrentLevel: 1}); err != nil {
		t.Fatalf("SaveProgression() failed: %v", err)
	}
	got, _, _ = store.LoadProgression(ctx, "alice")
	if got.CurrentLevel != 1 || len(got.BestScores) != 0 || got.BestScores == nil {
		t.Errorf("reset progression = %+v", got)
	}
}

func TestCorruptProgressionIsDiscarded(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, err := store.db.Exec(
		"INSERT INTO progression (player, current_level, best_scores) VALUES (?, 2, ?)",
		"dave", "not json",
	)
	if err != nil {
		t.Fatal(err)
	}

	if _, _, err := store.LoadProgression(ctx, "dave"); !errors.Is(err, t2048.ErrCorrupt) {
		t.Fatalf("LoadProgression() err = %v, want ErrCorrupt", err)
	}
	if _, found, err := store.LoadProgression(ctx, "dave"); found || err != nil {
		t.Errorf("corrupt row should be deleted, got %v, %v", found, err)
	}
}

func TestRunsHistory(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	runs := []struct {
		player string
		rec    t2048.RunRecord
	}{
		{"alice", t2048.RunRecord{RunID: "a1", Level: 1, Score: 100, MaxTile: 64, Outcome: t2048.StateLevelComplete, CreatedAt: base}},
		{"alice", t2048.RunRecord{RunID: "a2", Level: 1, Score: 50, MaxTile: 32, Outcome: t2048.StateGameOver, CreatedAt: base.Add(time.Minute)}},
		{"bob", t2048.RunRecord{RunID: "b1", Level: 1, Score: 200, MaxTile: 64, Outcome: t2048.StateLevelComplete, CreatedAt: base.Add(2 * time.Minute)}},
		{"bob", t2048.RunRecord{RunID: "b2", Level: 2, Score: 900, MaxTile: 128, Outcome: t2048.StateLevelComplete, CreatedAt: base.Add(3 * time.Minute)}},
	}
	for _, r := range runs {
		if err := store.RecordRun(ctx, r.player, r.rec); err != nil {
			t.Fatalf("RecordRun() failed: %v", err)
		}
	}

	top, err := store.TopRuns(ctx, 1, 10)
	if err != nil {
		t.Fatalf("TopRuns() failed: %v", err)
	}
	if len(top) != 3 {
		t.Fatalf("Expected 3 runs, got %d", len(top))
	}
	if top[0].Score != 200 || top[0].Player != "bob" || top[2].Score != 50 {
		t.Errorf("top runs out of order: %+v", top)
	}

	recent, err := store.RecentRuns(ctx, "alice", 10)
	if err != nil {
		t.Fatalf("RecentRuns() failed: %v", err)
	}
	if len(recent) != 2 || recent[0].RunID != "a2" {
		t.Errorf("recent runs = %+v", recent)
	}
	if recent[0].Outcome != t2048.StateGameOver {
		t.Errorf("outcome = %q", recent[0].Outcome)
	}

	stats, err := store.LevelStatsAll(ctx)
	if err != nil {
		t.Fatalf("LevelStatsAll() failed: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("Expected stats for 2 levels, got %d", len(stats))
	}
	if stats[0].Level != 1 || stats[0].Runs != 3 || stats[0].Completed != 2 || stats[0].HighScore != 200 {
		t.Errorf("level 1 stats = %+v", stats[0])
	}
}

func TestResetPlayer(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.SaveSession(ctx, "alice", t2048.SaveSession(1, 4, t2048.NewBoard(4))); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveProgression(ctx, "alice", t2048.NewProgression()); err != nil {
		t.Fatal(err)
	}
	if err := store.RecordRun(ctx, "alice", t2048.RunRecord{RunID: "x", Level: 1, Outcome: t2048.StateGameOver}); err != nil {
		t.Fatal(err)
	}

	if err := store.ResetPlayer(ctx, "alice"); err != nil {
		t.Fatalf("ResetPlayer() failed: %v", err)
	}
	if _, found, _ := store.LoadSession(ctx, "alice"); found {
		t.Error("session should be removed")
	}
	if _, found, _ := store.LoadProgression(ctx, "alice"); found {
		t.Error("progression should be removed")
	}
	if runs, _ := store.RecentRuns(ctx, "alice", 10); len(runs) != 1 {
		t.Error("run history should survive a reset")
	}
}

func TestControllerWithStore(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	c, err := t2048.NewController(t2048.Options{Player: "erin"})
	if err != nil {
		t.Fatal(err)
	}
	c.Start(ctx, store)
	for _, d := range []t2048.Direction{t2048.DirLeft, t2048.DirUp, t2048.DirRight, t2048.DirDown} {
		if _, err := c.Move(d); err != nil {
			t.Fatalf("Move(%s): %v", d, err)
		}
		if err := c.Flush(ctx, store); err != nil {
			t.Fatalf("Flush: %v", err)
		}
	}
	want := c.Snapshot()

	resumed, err := t2048.NewController(t2048.Options{Player: "erin"})
	if err != nil {
		t.Fatal(err)
	}
	resumed.Start(ctx, store)
	got := resumed.Snapshot()
	if !got.Board.Equal(want.Board) || got.Score != want.Score {
		t.Errorf("resumed board\n%v\nscore %d, want\n%v\nscore %d", got.Board, got.Score, want.Board, want.Score)
	}
}
