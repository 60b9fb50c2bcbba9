package t2048

import (
	"strings"
	"testing"

	"github.com/vovakirdan/tui-2048/internal/core"
)

func TestRenderHUDAndTiles(t *testing.T) {
	c := newTestController(t, nil)
	restoreBoard(t, c, [][]int{
		{2048, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 16384},
	}, 36)

	scr := core.NewScreen(80, 24)
	Render(scr, c.Snapshot())
	out := scr.String()

	for _, want := range []string{"2048 - Warm-up", "Score: 36", "Level 1/10", "Target: 64", "16384", "┌"} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q:\n%s", want, out)
		}
	}
}

func TestRenderTooSmall(t *testing.T) {
	c := newTestController(t, nil)
	c.Restore(Loaded{Progression: NewProgression()})

	scr := core.NewScreen(20, 8)
	Render(scr, c.Snapshot())
	if !strings.Contains(scr.String(), "Window too small") {
		t.Errorf("expected too small message:\n%s", scr.String())
	}
}

func TestRenderOverlays(t *testing.T) {
	tests := []struct {
		name   string
		target int
		want   string
	}{
		{"game over", 128, "GAME OVER"},
		{"final", 64, "ALL LEVELS COMPLETE!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestController(t, Levels{{Level: 1, BoardSize: 4, TargetScore: tt.target}})
			restoreBoard(t, c, fullAfterMerge, 0)
			if _, err := c.Move(DirLeft); err != nil {
				t.Fatalf("Move: %v", err)
			}

			scr := core.NewScreen(80, 24)
			Render(scr, c.Snapshot())
			if !strings.Contains(scr.String(), tt.want) {
				t.Errorf("render missing %q:\n%s", tt.want, scr.String())
			}
		})
	}
}

func TestRenderLoading(t *testing.T) {
	c := newTestController(t, nil)
	scr := core.NewScreen(80, 24)
	Render(scr, c.Snapshot())
	if !strings.Contains(scr.String(), "Loading...") {
		t.Errorf("expected loading overlay:\n%s", scr.String())
	}
}

func TestTileColor(t *testing.T) {
	if TileColor(2) == TileColor(2048) {
		t.Error("2 and 2048 should differ in color")
	}
	if TileColor(1<<20) != core.ColorBrightMagenta {
		t.Error("huge tiles use the top color")
	}
}
