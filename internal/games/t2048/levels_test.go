package t2048

import (
	"errors"
	"testing"
)

func TestDefaultLevels(t *testing.T) {
	levels := DefaultLevels()
	if err := levels.Validate(); err != nil {
		t.Fatalf("DefaultLevels invalid: %v", err)
	}
	if levels.Len() != 10 {
		t.Fatalf("Len = %d, want 10", levels.Len())
	}
	if levels[0].TargetScore != 64 || levels[9].TargetScore != 16384 {
		t.Errorf("targets = %d..%d, want 64..16384", levels[0].TargetScore, levels[9].TargetScore)
	}
	if levels[5].BoardSize != 4 || levels[6].BoardSize != 5 {
		t.Error("levels 7-10 should use a 5x5 board")
	}
}

func TestLevelsAt(t *testing.T) {
	levels := DefaultLevels()
	if _, err := levels.At(-1); !errors.Is(err, ErrUnknownLevel) {
		t.Errorf("At(-1) err = %v", err)
	}
	if _, err := levels.At(10); !errors.Is(err, ErrUnknownLevel) {
		t.Errorf("At(10) err = %v", err)
	}
	if cfg, err := levels.At(2); err != nil || cfg.Level != 3 {
		t.Errorf("At(2) = %+v, %v", cfg, err)
	}
}

func TestLevelsStartIndex(t *testing.T) {
	levels := DefaultLevels()
	tests := []struct {
		current int
		want    int
	}{
		{1, 0},
		{0, 0},
		{-3, 0},
		{4, 3},
		{10, 9},
		{42, 9},
	}
	for _, tt := range tests {
		if got := levels.StartIndex(tt.current); got != tt.want {
			t.Errorf("StartIndex(%d) = %d, want %d", tt.current, got, tt.want)
		}
	}
}

func TestLevelsValidate(t *testing.T) {
	tests := []struct {
		name   string
		levels Levels
	}{
		{"empty", Levels{}},
		{"gap", Levels{{Level: 1, BoardSize: 4, TargetScore: 64}, {Level: 3, BoardSize: 4, TargetScore: 64}}},
		{"small board", Levels{{Level: 1, BoardSize: 3, TargetScore: 64}}},
		{"odd target", Levels{{Level: 1, BoardSize: 4, TargetScore: 100}}},
		{"bad spawn4", Levels{{Level: 1, BoardSize: 4, TargetScore: 64, Spawn4: 1.5}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.levels.Validate(); err == nil {
				t.Error("Validate should fail")
			}
		})
	}
}

func TestProgressionRecordScore(t *testing.T) {
	p := NewProgression()
	if !p.RecordScore(1, 40) {
		t.Error("first score should be recorded")
	}
	if p.RecordScore(1, 40) || p.RecordScore(1, 12) {
		t.Error("equal or lower score should not be recorded")
	}
	if p.Best(1) != 40 || p.Best(2) != 0 {
		t.Errorf("Best = %d/%d, want 40/0", p.Best(1), p.Best(2))
	}

	var zero Progression
	if !zero.RecordScore(3, 8) || zero.Best(3) != 8 {
		t.Error("RecordScore should work on a zero Progression")
	}
}

func TestProgressionUnlockOnce(t *testing.T) {
	p := NewProgression()
	if !p.Unlock(1, true) {
		t.Fatal("completing the unlocked level should unlock the next")
	}
	if p.Unlock(1, true) {
		t.Error("completing level 1 again must not unlock twice")
	}
	if p.CurrentLevel != 2 {
		t.Errorf("CurrentLevel = %d, want 2", p.CurrentLevel)
	}
	if p.Unlock(2, false) {
		t.Error("no unlock without a next level")
	}
}

func TestProgressionNormalize(t *testing.T) {
	levels := DefaultLevels()
	p := Progression{CurrentLevel: 99, BestScores: map[int]int{1: 10, 42: 5, 2: -1}}
	n := p.Normalize(levels)
	if n.CurrentLevel != 10 {
		t.Errorf("CurrentLevel = %d, want 10", n.CurrentLevel)
	}
	if len(n.BestScores) != 1 || n.Best(1) != 10 {
		t.Errorf("BestScores = %v, want only level 1", n.BestScores)
	}
	if len(p.BestScores) != 3 {
		t.Error("Normalize modified the receiver")
	}

	if got := (Progression{}).Normalize(levels).CurrentLevel; got != 1 {
		t.Errorf("zero CurrentLevel normalized to %d, want 1", got)
	}
}

func TestSavedSessionValidate(t *testing.T) {
	good := SaveSession(1, 10, NewBoard(4).With(0, 0, Tile{ID: 3, Value: 4}))
	if err := good.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	dup := SaveSession(1, 10, NewBoard(4).
		With(0, 0, Tile{ID: 3, Value: 4}).
		With(0, 1, Tile{ID: 3, Value: 2}))
	bad := []SavedSession{
		{Level: 0, Board: good.Board},
		{Level: 1, Score: -1, Board: good.Board},
		{Level: 1},
		{Level: 1, Board: [][]*SavedTile{{nil, nil}, {nil}}},
		{Level: 1, Board: [][]*SavedTile{{{Value: 3}}}},
		dup,
	}
	for i, s := range bad {
		if err := s.Validate(); !errors.Is(err, ErrCorrupt) {
			t.Errorf("case %d: err = %v, want ErrCorrupt", i, err)
		}
	}
}

func TestBoardFromSavedKeepsIDs(t *testing.T) {
	b := NewBoard(4).
		With(1, 1, Tile{ID: 17, Value: 8}).
		With(3, 0, Tile{ID: 5, Value: 2, JustSpawned: true})
	s := SaveSession(1, 0, b)

	ids := NewIDSource()
	restored, err := BoardFromSaved(s, ids)
	if err != nil {
		t.Fatalf("BoardFromSaved: %v", err)
	}
	if restored.At(1, 1).ID != 17 || restored.At(3, 0).ID != 5 {
		t.Error("restored tiles should keep their ids")
	}
	if restored.At(3, 0).JustSpawned {
		t.Error("flags are not persisted")
	}
	if ids.Peek() != 18 {
		t.Errorf("counter = %d, want 18", ids.Peek())
	}
}
