package t2048

import (
	"fmt"
	"strconv"

	"github.com/vovakirdan/tui-2048/internal/core"
)

const (
	cellWidth  = 7 // Width of each cell including the left border; fits 5 digits
	cellHeight = 2 // Height of each cell including the top border
	hudHeight  = 3
)

// BoardExtent returns the screen size needed to draw a size x size board with its HUD.
func BoardExtent(size int) (w, h int) {
	return size*cellWidth + 1, hudHeight + 1 + size*cellHeight + 1
}

// Render draws a snapshot to the screen.
func Render(dst *core.Screen, s Snapshot) {
	dst.Clear()

	size := s.Board.Size()
	boardW, boardH := size*cellWidth+1, size*cellHeight+1
	needW, needH := BoardExtent(size)
	if dst.Width() < needW || dst.Height() < needH {
		renderTooSmall(dst)
		return
	}

	boardX := (dst.Width() - boardW) / 2
	boardY := hudHeight + 1

	renderHUD(dst, s, boardX, boardW)
	renderBoard(dst, s, boardX, boardY)
	renderOverlays(dst, s, boardX, boardY, boardW, boardH)
}

// renderTooSmall shows a "window too small" message.
func renderTooSmall(dst *core.Screen) {
	y := dst.Height() / 2
	dst.DrawTextCentered(y, "Window too small")
	dst.DrawTextCentered(y+1, "Please resize terminal")
}

// renderHUD draws the score and level info.
func renderHUD(dst *core.Screen, s Snapshot, boardX, boardW int) {
	title := "2048"
	if s.Level.Name != "" {
		title = "2048 - " + s.Level.Name
	}
	dst.DrawTextColored(boardX+(boardW-len([]rune(title)))/2, 0, title, core.ColorBrightYellow)

	dst.DrawText(boardX, 1, fmt.Sprintf("Score: %d", s.Score))

	best := fmt.Sprintf("Best: %d", s.BestScore)
	dst.DrawText(max(boardX, boardX+boardW-len(best)), 1, best)

	info := fmt.Sprintf("Level %d/%d  Target: %d", s.Level.Level, s.LevelCount, s.Level.TargetScore)
	dst.DrawTextColored(boardX+(boardW-len(info))/2, 2, info, core.ColorGray)
}

// renderBoard draws the N x N grid with tiles.
func renderBoard(dst *core.Screen, s Snapshot, boardX, boardY int) {
	n := s.Board.Size()
	for y := range n + 1 {
		for x := range n + 1 {
			px := boardX + x*cellWidth
			py := boardY + y*cellHeight

			var corner rune
			switch {
			case y == 0 && x == 0:
				corner = '┌'
			case y == 0 && x == n:
				corner = '┐'
			case y == n && x == 0:
				corner = '└'
			case y == n && x == n:
				corner = '┘'
			case y == 0:
				corner = '┬'
			case y == n:
				corner = '┴'
			case x == 0:
				corner = '├'
			case x == n:
				corner = '┤'
			default:
				corner = '┼'
			}
			dst.SetColored(px, py, corner, core.ColorGray)

			if x < n {
				for i := 1; i < cellWidth; i++ {
					dst.SetColored(px+i, py, '─', core.ColorGray)
				}
			}
			if y < n {
				for i := 1; i < cellHeight; i++ {
					dst.SetColored(px, py+i, '│', core.ColorGray)
				}
			}
		}
	}

	for r := range n {
		for c := range n {
			t := s.Board.At(r, c)
			if t.Empty() {
				continue
			}
			cellX := boardX + c*cellWidth + 1
			cellY := boardY + r*cellHeight + 1

			label := strconv.Itoa(t.Value)
			pad := max((cellWidth-1-len(label))/2, 0)
			color := TileColor(t.Value)
			switch {
			case s.IsMerged(t.ID):
				color = core.ColorBrightWhite
			case s.HasSpawned && t.ID == s.SpawnedID:
				color = core.ColorBrightGreen
			}
			dst.DrawTextColored(cellX+pad, cellY, label, color)
		}
	}
}

// TileColor picks the display color for a tile value.
func TileColor(value int) core.Color {
	switch value {
	case 2:
		return core.ColorWhite
	case 4:
		return core.ColorBrightWhite
	case 8:
		return core.ColorYellow
	case 16:
		return core.ColorOrange
	case 32:
		return core.ColorRed
	case 64:
		return core.ColorBrightRed
	case 128:
		return core.ColorBrightYellow
	case 256:
		return core.ColorGreen
	case 512:
		return core.ColorBrightGreen
	case 1024:
		return core.ColorCyan
	case 2048:
		return core.ColorBrightCyan
	case 4096:
		return core.ColorBlue
	case 8192:
		return core.ColorMagenta
	default:
		return core.ColorBrightMagenta
	}
}

// renderOverlays draws state overlays.
func renderOverlays(dst *core.Screen, s Snapshot, boardX, boardY, boardW, boardH int) {
	centerX := boardX + boardW/2
	centerY := boardY + boardH/2

	switch {
	case !s.Ready:
		drawOverlay(dst, centerX, centerY, "Loading...")
	case s.Final:
		drawOverlay(dst, centerX, centerY, "ALL LEVELS COMPLETE!", fmt.Sprintf("Score: %d", s.Score), "R: replay  Shift+N: new game")
	case s.State == StateLevelComplete:
		drawOverlay(dst, centerX, centerY,
			"LEVEL COMPLETE!",
			fmt.Sprintf("Target %d reached", s.Level.TargetScore),
			"N: next  R: replay",
		)
	case s.State == StateGameOver:
		drawOverlay(dst, centerX, centerY,
			"GAME OVER",
			fmt.Sprintf("Max tile: %d", s.MaxTile()),
			"R: try again  Shift+N: new game",
		)
	}
}

// drawOverlay draws a centered boxed message over the board.
func drawOverlay(dst *core.Screen, centerX, centerY int, lines ...string) {
	maxLen := 0
	for _, line := range lines {
		maxLen = max(maxLen, len([]rune(line)))
	}

	box := core.RectAround(centerX, centerY, maxLen+4, len(lines)+2)
	dst.DrawRect(box, ' ')
	dst.DrawBox(box)

	for i, line := range lines {
		x := centerX - len([]rune(line))/2
		dst.DrawTextColored(x, box.Y+1+i, line, core.ColorBrightWhite)
	}
}
