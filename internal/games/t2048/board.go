package t2048

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidBoard is returned when cell values cannot form a board.
var ErrInvalidBoard = errors.New("t2048: invalid board")

// Pos is a board coordinate. (0,0) is the top-left cell.
type Pos struct {
	Row int
	Col int
}

// Board is an immutable square grid of tiles stored row-major.
// Every operation returns a new Board; a Board value is safe to keep as a
// snapshot after later moves.
type Board struct {
	size  int
	cells []Tile
}

// NewBoard returns a size x size board of empty cells.
func NewBoard(size int) Board {
	if size < 0 {
		size = 0
	}
	return Board{
		size:  size,
		cells: make([]Tile, size*size),
	}
}

// BoardFromValues builds a board from a square matrix of values, 0 meaning empty.
// Every tile gets a fresh id from ids.
func BoardFromValues(values [][]int, ids *IDSource) (Board, error) {
	size := len(values)
	b := NewBoard(size)
	for r, row := range values {
		if len(row) != size {
			return Board{}, fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidBoard, r, len(row), size)
		}
		for c, v := range row {
			if v == 0 {
				continue
			}
			if !isPowerOfTwo(v) {
				return Board{}, fmt.Errorf("%w: value %d at (%d,%d)", ErrInvalidBoard, v, r, c)
			}
			b.cells[r*size+c] = Tile{ID: ids.Next(), Value: v}
		}
	}
	return b, nil
}

// Size returns the side length.
func (b Board) Size() int {
	return b.size
}

// At returns the tile at (row, col). Out-of-range coordinates yield an empty tile.
func (b Board) At(row, col int) Tile {
	if row < 0 || row >= b.size || col < 0 || col >= b.size {
		return Tile{}
	}
	return b.cells[row*b.size+col]
}

// With returns a copy of the board with (row, col) set to t.
func (b Board) With(row, col int, t Tile) Board {
	if row < 0 || row >= b.size || col < 0 || col >= b.size {
		return b
	}
	next := b.clone()
	next.cells[row*b.size+col] = t
	return next
}

// Rows returns a copy of the tiles as a matrix.
func (b Board) Rows() [][]Tile {
	rows := make([][]Tile, b.size)
	for r := range rows {
		rows[r] = make([]Tile, b.size)
		copy(rows[r], b.cells[r*b.size:(r+1)*b.size])
	}
	return rows
}

// Values returns the tile values as a matrix, 0 for empty cells.
func (b Board) Values() [][]int {
	values := make([][]int, b.size)
	for r := range values {
		values[r] = make([]int, b.size)
		for c := range values[r] {
			values[r][c] = b.cells[r*b.size+c].Value
		}
	}
	return values
}

// Equal compares boards by size and values. Ids and flags are ignored.
func (b Board) Equal(other Board) bool {
	if b.size != other.size {
		return false
	}
	for i := range b.cells {
		if b.cells[i].Value != other.cells[i].Value {
			return false
		}
	}
	return true
}

// EmptyCells returns the coordinates of all empty cells in row-major order.
func (b Board) EmptyCells() []Pos {
	var cells []Pos
	for i, t := range b.cells {
		if t.Empty() {
			cells = append(cells, Pos{Row: i / b.size, Col: i % b.size})
		}
	}
	return cells
}

// HasEmptyCell returns true if there's at least one empty cell.
func (b Board) HasEmptyCell() bool {
	for _, t := range b.cells {
		if t.Empty() {
			return true
		}
	}
	return false
}

// MaxTile returns the maximum tile value on the board.
func (b Board) MaxTile() int {
	maxVal := 0
	for _, t := range b.cells {
		if t.Value > maxVal {
			maxVal = t.Value
		}
	}
	return maxVal
}

// Find returns the position of the tile with the given id.
func (b Board) Find(id TileID) (Pos, bool) {
	for i, t := range b.cells {
		if !t.Empty() && t.ID == id {
			return Pos{Row: i / b.size, Col: i % b.size}, true
		}
	}
	return Pos{}, false
}

// ClearFlags returns a copy of the board with every transient flag cleared.
func ClearFlags(b Board) Board {
	next := b.clone()
	for i, t := range next.cells {
		next.cells[i] = t.plain()
	}
	return next
}

// String renders the values as space separated rows, '.' for empty cells.
func (b Board) String() string {
	var sb strings.Builder
	for r := 0; r < b.size; r++ {
		if r > 0 {
			sb.WriteByte('\n')
		}
		for c := 0; c < b.size; c++ {
			if c > 0 {
				sb.WriteByte(' ')
			}
			v := b.cells[r*b.size+c].Value
			if v == 0 {
				sb.WriteByte('.')
				continue
			}
			sb.WriteString(strconv.Itoa(v))
		}
	}
	return sb.String()
}

func (b Board) clone() Board {
	cells := make([]Tile, len(b.cells))
	copy(cells, b.cells)
	return Board{size: b.size, cells: cells}
}
