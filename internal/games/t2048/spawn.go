package t2048

// DefaultSpawn4 is the probability of spawning a 4 instead of a 2.
const DefaultSpawn4 = 0.10

// Rand is the subset of *rand.Rand used for tile spawns.
type Rand interface {
	Intn(n int) int
	Float64() float64
}

// SpawnRandomTile spawns a 2 (90%) or a 4 (10%) in a uniformly random empty cell.
func SpawnRandomTile(b Board, rng Rand, ids *IDSource) (Board, bool) {
	return SpawnTile(b, rng, ids, DefaultSpawn4)
}

// SpawnTile returns a copy of b with one random empty cell filled by a fresh
// tile flagged JustSpawned. Flags on every other tile are cleared. A full
// board is returned unchanged with spawned=false.
func SpawnTile(b Board, rng Rand, ids *IDSource, spawn4 float64) (next Board, spawned bool) {
	empty := b.EmptyCells()
	if len(empty) == 0 {
		return b, false
	}

	cell := empty[rng.Intn(len(empty))]

	value := 2
	if rng.Float64() < spawn4 {
		value = 4
	}

	next = ClearFlags(b)
	next.cells[cell.Row*b.size+cell.Col] = Tile{
		ID:          ids.Next(),
		Value:       value,
		JustSpawned: true,
	}
	return next, true
}

// SeedBoard returns a fresh size x size board holding two spawned tiles.
func SeedBoard(size int, rng Rand, ids *IDSource, spawn4 float64) Board {
	b := NewBoard(size)
	b, _ = SpawnTile(b, rng, ids, spawn4)
	b, _ = SpawnTile(b, rng, ids, spawn4)
	return ClearFlags(b)
}
