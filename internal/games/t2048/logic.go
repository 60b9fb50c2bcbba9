package t2048

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDirection is returned by Move for a direction outside the four canonical ones.
var ErrInvalidDirection = errors.New("t2048: invalid direction")

// Direction represents a move direction.
type Direction int

const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
)

// String returns the lowercase direction name.
func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// ParseDirection accepts a direction name or its first letter, in any case.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "u", "up":
		return DirUp, nil
	case "d", "down":
		return DirDown, nil
	case "l", "left":
		return DirLeft, nil
	case "r", "right":
		return DirRight, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// rotations returns how many clockwise quarter turns bring dir onto "left".
// A clockwise turn carries the top row to the right column, so "up" needs
// three turns and "down" one.
func (d Direction) rotations() (int, bool) {
	switch d {
	case DirLeft:
		return 0, true
	case DirUp:
		return 3, true
	case DirRight:
		return 2, true
	case DirDown:
		return 1, true
	}
	return 0, false
}

// MoveResult is the outcome of applying one direction to a board.
type MoveResult struct {
	Board      Board
	ScoreDelta int      // Sum of the values of all merged tiles
	Changed    bool     // Whether any tile moved or merged
	Merged     []TileID // Ids of the tiles created by merges
}

// Move slides and merges every row towards dir and returns the new board.
// The input board is never modified. Each direction is reduced to a
// slide-left by rotating the board, processing rows and rotating back.
func Move(b Board, dir Direction, ids *IDSource) (MoveResult, error) {
	k, ok := dir.rotations()
	if !ok {
		return MoveResult{Board: b}, fmt.Errorf("%w: %s", ErrInvalidDirection, dir)
	}

	work := Rotate(ClearFlags(b), k)
	n := work.size
	next := NewBoard(n)
	result := MoveResult{}

	for r := 0; r < n; r++ {
		row := work.cells[r*n : (r+1)*n]
		slid := slideRow(row, ids)
		copy(next.cells[r*n:(r+1)*n], slid.tiles)
		result.ScoreDelta += slid.score
		result.Merged = append(result.Merged, slid.merged...)
		if slid.changed {
			result.Changed = true
		}
	}

	result.Board = Rotate(next, 4-k)
	return result, nil
}

// rowResult is what slideRow produces for one row.
type rowResult struct {
	tiles   []Tile
	score   int
	changed bool
	merged  []TileID
}

// slideRow compacts a row to the left and merges equal neighbours once.
// A merged tile is a new tile with a fresh id and is never compared again
// within the same pass.
func slideRow(row []Tile, ids *IDSource) rowResult {
	compact := make([]Tile, 0, len(row))
	for _, t := range row {
		if !t.Empty() {
			compact = append(compact, t)
		}
	}

	res := rowResult{tiles: make([]Tile, 0, len(row))}
	for i := 0; i < len(compact); i++ {
		cur := compact[i]
		if i+1 < len(compact) && compact[i+1].Value == cur.Value {
			merged := Tile{ID: ids.Next(), Value: cur.Value * 2, JustMerged: true}
			res.tiles = append(res.tiles, merged)
			res.score += merged.Value
			res.merged = append(res.merged, merged.ID)
			i++
			continue
		}
		res.tiles = append(res.tiles, cur)
	}

	for len(res.tiles) < len(row) {
		res.tiles = append(res.tiles, Tile{})
	}

	for i := range row {
		if row[i].Value != res.tiles[i].Value {
			res.changed = true
			break
		}
	}
	return res
}

// Rotate turns the board k quarter turns clockwise: out[c][N-1-r] = b[r][c].
// k is taken modulo 4; zero turns return b itself.
func Rotate(b Board, k int) Board {
	k = ((k % 4) + 4) % 4
	if k == 0 {
		return b
	}

	n := b.size
	cur := b
	for range k {
		rotated := NewBoard(n)
		for r := 0; r < n; r++ {
			for c := 0; c < n; c++ {
				rotated.cells[c*n+(n-1-r)] = cur.cells[r*n+c]
			}
		}
		cur = rotated
	}
	return cur
}
