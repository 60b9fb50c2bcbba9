package t2048

// HasPossibleMerge returns true if any two orthogonally adjacent tiles share a value.
func HasPossibleMerge(b Board) bool {
	n := b.size
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			val := b.cells[r*n+c].Value
			if val == 0 {
				continue
			}
			if c < n-1 && b.cells[r*n+c+1].Value == val {
				return true
			}
			if r < n-1 && b.cells[(r+1)*n+c].Value == val {
				return true
			}
		}
	}
	return false
}

// CanMove returns true if any move is possible.
func CanMove(b Board) bool {
	return b.HasEmptyCell() || HasPossibleMerge(b)
}

// IsGameOver returns true if the board is full and no neighbours can merge.
// It looks only at the current occupancy, never at future spawns.
func IsGameOver(b Board) bool {
	return !CanMove(b)
}

// IsLevelComplete returns true if any tile has reached the target value.
func IsLevelComplete(b Board, target int) bool {
	return b.MaxTile() >= target
}
