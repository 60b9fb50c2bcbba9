package t2048

// TileID identifies a tile for the lifetime of a game.
// Renderers use it to track a tile across moves; the engine never compares tiles by id.
type TileID uint64

// Tile is the content of one board cell. The zero Tile is an empty cell.
type Tile struct {
	ID          TileID
	Value       int  // Power of two >= 2, 0 for an empty cell
	JustMerged  bool // Created by a merge during the last move
	JustSpawned bool // Spawned after the last move
}

// Empty reports whether the cell holds no tile.
func (t Tile) Empty() bool {
	return t.Value == 0
}

// plain returns the tile with both transient flags cleared.
func (t Tile) plain() Tile {
	t.JustMerged = false
	t.JustSpawned = false
	return t
}

// IDSource issues tile ids. It is owned by a Controller and reset only when a
// brand-new game starts, so ids stay unique across level changes and resumes.
type IDSource struct {
	next TileID
}

// NewIDSource returns a counter starting at zero.
func NewIDSource() *IDSource {
	return &IDSource{}
}

// Next returns a fresh id.
func (s *IDSource) Next() TileID {
	id := s.next
	s.next++
	return id
}

// Observe advances the counter past id so restored tiles never collide with new ones.
func (s *IDSource) Observe(id TileID) {
	if id >= s.next {
		s.next = id + 1
	}
}

// Peek returns the id the next call to Next will hand out.
func (s *IDSource) Peek() TileID {
	return s.next
}

// Reset zeroes the counter. Only a new game may call this.
func (s *IDSource) Reset() {
	s.next = 0
}

// isPowerOfTwo reports whether v is a power of two >= 2.
func isPowerOfTwo(v int) bool {
	return v >= 2 && v&(v-1) == 0
}
