package core

import (
	"strings"
	"testing"
)

func TestNewScreen(t *testing.T) {
	s := NewScreen(30, 12)

	if s.Width() != 30 || s.Height() != 12 {
		t.Fatalf("dimensions = %dx%d, expected 30x12", s.Width(), s.Height())
	}

	for y := 0; y < s.Height(); y++ {
		for x := 0; x < s.Width(); x++ {
			if c := s.GetCell(x, y); c.Rune != ' ' || c.Color != ColorDefault {
				t.Fatalf("new screen cell (%d, %d) = %+v, expected blank", x, y, c)
			}
		}
	}
}

func TestScreenSetOutOfBounds(t *testing.T) {
	s := NewScreen(4, 4)

	s.Set(-1, 0, 'A')
	s.Set(4, 0, 'A')
	s.Set(0, -1, 'A')
	s.Set(0, 4, 'A')

	if s.Get(-1, 0) != ' ' || s.Get(10, 10) != ' ' {
		t.Error("out of bounds Get should return space")
	}
	if strings.ContainsRune(s.String(), 'A') {
		t.Error("out of bounds Set should be ignored")
	}
}

func TestScreenColoredText(t *testing.T) {
	s := NewScreen(10, 2)
	s.DrawTextColored(1, 1, "2048", ColorOrange)

	for i, ch := range "2048" {
		c := s.GetCell(1+i, 1)
		if c.Rune != ch || c.Color != ColorOrange {
			t.Errorf("cell %d = %+v, expected %q in orange", i, c, ch)
		}
	}

	s.Clear()
	if c := s.GetCell(1, 1); c.Color != ColorDefault {
		t.Errorf("Clear should reset colors, got %+v", c)
	}
}

func TestScreenDrawTextClipped(t *testing.T) {
	s := NewScreen(6, 1)
	s.DrawText(4, 0, "Score")

	if s.Row(0) != "    Sc" {
		t.Errorf("Row(0) = %q, expected clipped text", s.Row(0))
	}
}

func TestScreenDrawTextCentered(t *testing.T) {
	s := NewScreen(11, 1)
	s.DrawTextCentered(0, "WIN")

	if s.Row(0) != "    WIN    " {
		t.Errorf("Row(0) = %q", s.Row(0))
	}
}

func TestScreenDrawBox(t *testing.T) {
	s := NewScreen(6, 4)
	s.DrawBox(NewRect(0, 0, 6, 4))

	expected := strings.Join([]string{
		"┌────┐",
		"│    │",
		"│    │",
		"└────┘",
	}, "\n")

	if s.String() != expected {
		t.Errorf("DrawBox:\n%s\nexpected:\n%s", s.String(), expected)
	}
}

func TestScreenDrawRect(t *testing.T) {
	s := NewScreen(5, 3)
	s.DrawRect(NewRect(1, 1, 3, 1), '#')

	if s.Row(1) != " ### " {
		t.Errorf("Row(1) = %q", s.Row(1))
	}
	if s.Row(0) != "     " {
		t.Errorf("DrawRect should not touch row 0, got %q", s.Row(0))
	}
}

func TestScreenResizeKeepsContent(t *testing.T) {
	s := NewScreen(10, 4)
	s.DrawTextColored(0, 0, "Level", ColorCyan)

	s.Resize(3, 2)
	if s.Row(0) != "Lev" {
		t.Errorf("after shrink Row(0) = %q", s.Row(0))
	}

	s.Resize(8, 3)
	if !strings.HasPrefix(s.Row(0), "Lev") {
		t.Errorf("after grow Row(0) = %q", s.Row(0))
	}
	if s.GetCell(0, 0).Color != ColorCyan {
		t.Error("resize should keep cell colors")
	}
	if s.Row(-1) != "        " {
		t.Errorf("out of range Row should be blank, got %q", s.Row(-1))
	}
}
