package t2048

import (
	"errors"
	"math/rand"
	"testing"
)

func TestNewBoard(t *testing.T) {
	b := NewBoard(5)
	if b.Size() != 5 {
		t.Fatalf("Size = %d, want 5", b.Size())
	}
	if got := len(b.EmptyCells()); got != 25 {
		t.Errorf("EmptyCells = %d, want 25", got)
	}
	if b.MaxTile() != 0 {
		t.Errorf("MaxTile = %d, want 0", b.MaxTile())
	}
}

func TestBoardFromValuesRejectsBadInput(t *testing.T) {
	tests := []struct {
		name   string
		values [][]int
	}{
		{"ragged", [][]int{{2, 0}, {0}}},
		{"not a power of two", [][]int{{3, 0}, {0, 0}}},
		{"one", [][]int{{1, 0}, {0, 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := BoardFromValues(tt.values, NewIDSource()); !errors.Is(err, ErrInvalidBoard) {
				t.Errorf("err = %v, want ErrInvalidBoard", err)
			}
		})
	}
}

func TestBoardWithCopies(t *testing.T) {
	b := NewBoard(4)
	next := b.With(1, 2, Tile{ID: 7, Value: 8})
	if !b.At(1, 2).Empty() {
		t.Error("With modified the receiver")
	}
	if next.At(1, 2).Value != 8 {
		t.Errorf("At(1,2) = %d, want 8", next.At(1, 2).Value)
	}
	if pos, ok := next.Find(7); !ok || pos != (Pos{Row: 1, Col: 2}) {
		t.Errorf("Find(7) = %v, %v", pos, ok)
	}
}

func TestMaxTile(t *testing.T) {
	b := mustBoard(t, [][]int{
		{2, 4, 8, 16},
		{32, 64, 128, 256},
		{512, 1024, 2048, 4},
		{8, 16, 32, 64},
	})
	if got := b.MaxTile(); got != 2048 {
		t.Errorf("MaxTile = %d, want 2048", got)
	}
}

func TestEmptyCells(t *testing.T) {
	b := mustBoard(t, [][]int{
		{2, 0, 8, 0},
		{0, 64, 0, 256},
		{512, 0, 2048, 0},
		{0, 16, 0, 64},
	})
	cells := b.EmptyCells()
	if len(cells) != 8 {
		t.Errorf("EmptyCells count = %d, want 8", len(cells))
	}
	if cells[0] != (Pos{Row: 0, Col: 1}) {
		t.Errorf("first empty cell = %v, want (0,1)", cells[0])
	}
}

func TestClearFlags(t *testing.T) {
	b := NewBoard(4).
		With(0, 0, Tile{ID: 1, Value: 4, JustMerged: true}).
		With(0, 1, Tile{ID: 2, Value: 2, JustSpawned: true})

	clean := ClearFlags(b)
	for _, row := range clean.Rows() {
		for _, tile := range row {
			if tile.JustMerged || tile.JustSpawned {
				t.Fatalf("flag survived ClearFlags: %+v", tile)
			}
		}
	}
	if !b.At(0, 0).JustMerged {
		t.Error("ClearFlags modified the receiver")
	}
	if clean.At(0, 0).ID != 1 {
		t.Error("ClearFlags must keep ids")
	}
}

func TestIDSource(t *testing.T) {
	ids := NewIDSource()
	if ids.Next() != 0 || ids.Next() != 1 {
		t.Fatal("ids should start at zero and increase")
	}
	ids.Observe(10)
	if got := ids.Next(); got != 11 {
		t.Errorf("Next after Observe(10) = %d, want 11", got)
	}
	ids.Observe(3)
	if got := ids.Peek(); got != 12 {
		t.Errorf("Observe of an old id moved the counter to %d", got)
	}
	ids.Reset()
	if got := ids.Next(); got != 0 {
		t.Errorf("Next after Reset = %d, want 0", got)
	}
}

func TestSpawnTile(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	ids := NewIDSource()
	b := NewBoard(4).With(2, 2, Tile{ID: ids.Next(), Value: 8, JustMerged: true})

	next, ok := SpawnRandomTile(b, rng, ids)
	if !ok {
		t.Fatal("spawn on a board with space should succeed")
	}
	if got := len(next.EmptyCells()); got != 14 {
		t.Errorf("EmptyCells = %d, want 14", got)
	}
	if len(b.EmptyCells()) != 15 {
		t.Error("SpawnTile modified the receiver")
	}

	var spawned []Tile
	for _, row := range next.Rows() {
		for _, tile := range row {
			if tile.JustSpawned {
				spawned = append(spawned, tile)
			}
		}
	}
	if len(spawned) != 1 {
		t.Fatalf("spawned tiles = %d, want 1", len(spawned))
	}
	if v := spawned[0].Value; v != 2 && v != 4 {
		t.Errorf("spawned value = %d, want 2 or 4", v)
	}
	if spawned[0].ID != 1 {
		t.Errorf("spawned id = %d, want 1", spawned[0].ID)
	}
	if next.At(2, 2).JustMerged {
		t.Error("spawn must clear flags on other tiles")
	}
}

func TestSpawnTileFullBoard(t *testing.T) {
	b := mustBoard(t, [][]int{
		{2, 4},
		{4, 2},
	})
	ids := NewIDSource()
	next, ok := SpawnTile(b, rand.New(rand.NewSource(1)), ids, DefaultSpawn4)
	if ok {
		t.Error("spawn on a full board should report false")
	}
	if !next.Equal(b) {
		t.Error("full board should be returned unchanged")
	}
	if ids.Peek() != 0 {
		t.Error("no id should be issued for a failed spawn")
	}
}

func TestSpawnTileProbability(t *testing.T) {
	for _, tt := range []struct {
		spawn4 float64
		want   int
	}{
		{0, 2},
		{1, 4},
	} {
		rng := rand.New(rand.NewSource(5))
		for i := 0; i < 50; i++ {
			b, _ := SpawnTile(NewBoard(4), rng, NewIDSource(), tt.spawn4)
			if got := b.MaxTile(); got != tt.want {
				t.Fatalf("spawn4=%v spawned %d, want %d", tt.spawn4, got, tt.want)
			}
		}
	}
}

func TestDeterministicSpawn(t *testing.T) {
	b1 := SeedBoard(4, rand.New(rand.NewSource(12345)), NewIDSource(), DefaultSpawn4)
	b2 := SeedBoard(4, rand.New(rand.NewSource(12345)), NewIDSource(), DefaultSpawn4)
	if !b1.Equal(b2) {
		t.Errorf("same seed should produce same initial board:\n%v\nvs\n%v", b1, b2)
	}
}

func TestSeedBoard(t *testing.T) {
	b := SeedBoard(5, rand.New(rand.NewSource(9)), NewIDSource(), DefaultSpawn4)
	if b.Size() != 5 {
		t.Fatalf("Size = %d, want 5", b.Size())
	}
	tiles := 0
	for _, row := range b.Rows() {
		for _, tile := range row {
			if tile.Empty() {
				continue
			}
			tiles++
			if tile.JustSpawned || tile.JustMerged {
				t.Errorf("seeded tile carries a flag: %+v", tile)
			}
		}
	}
	if tiles != 2 {
		t.Errorf("seeded tiles = %d, want 2", tiles)
	}
}

func TestGameOver(t *testing.T) {
	full := [][]int{
		{2, 4, 8, 16},
		{32, 64, 128, 256},
		{512, 1024, 2048, 4096},
		{8192, 16384, 32768, 65536},
	}
	if !IsGameOver(mustBoard(t, full)) {
		t.Error("board with no moves should be game over")
	}

	withMerge := [][]int{
		{2, 2, 8, 16},
		{32, 64, 128, 256},
		{512, 1024, 2048, 4096},
		{8192, 16384, 32768, 65536},
	}
	if IsGameOver(mustBoard(t, withMerge)) {
		t.Error("board with possible horizontal merge should not be game over")
	}

	withVertical := [][]int{
		{2, 4, 8, 16},
		{32, 64, 128, 16},
		{512, 1024, 2048, 4096},
		{8192, 16384, 32768, 65536},
	}
	if IsGameOver(mustBoard(t, withVertical)) {
		t.Error("board with possible vertical merge should not be game over")
	}

	oneEmpty := mustBoard(t, full).With(2, 2, Tile{})
	if IsGameOver(oneEmpty) {
		t.Error("board with empty cell should not be game over")
	}
}

func TestIsLevelComplete(t *testing.T) {
	tests := []struct {
		max  int
		want bool
	}{
		{1024, false},
		{2048, true},
		{4096, true},
	}
	for _, tt := range tests {
		b := NewBoard(4).With(3, 1, Tile{ID: 1, Value: tt.max}).With(0, 0, Tile{ID: 2, Value: 2})
		if got := IsLevelComplete(b, 2048); got != tt.want {
			t.Errorf("IsLevelComplete(max %d, 2048) = %v, want %v", tt.max, got, tt.want)
		}
	}
}
