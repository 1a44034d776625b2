package layout

import (
	"testing"

	grid "github.com/Dicklesworthstone/shokodash/internal/layout"
)

func TestBreakpointForWidth(t *testing.T) {
	tests := []struct {
		width int
		want  grid.Breakpoint
	}{
		{0, grid.SM},
		{79, grid.SM},
		{80, grid.MD},
		{119, grid.MD},
		{120, grid.LG},
		{300, grid.LG},
	}
	for _, tt := range tests {
		if got := BreakpointForWidth(tt.width); got != tt.want {
			t.Errorf("BreakpointForWidth(%d) = %s, want %s", tt.width, got, tt.want)
		}
	}
}

func TestCanvasRectTilesColumns(t *testing.T) {
	c := NewCanvas(125)
	if c.Breakpoint != grid.LG {
		t.Fatalf("breakpoint = %s, want lg", c.Breakpoint)
	}

	left := c.Rect(grid.Placement{I: "a", X: 0, Y: 0, W: 5, H: 2})
	right := c.Rect(grid.Placement{I: "b", X: 5, Y: 0, W: 7, H: 2})

	if left.X != 0 || left.X+left.W != right.X {
		t.Errorf("panels do not tile: left=%+v right=%+v", left, right)
	}
	if right.X+right.W != 125 {
		t.Errorf("right edge = %d, want 125", right.X+right.W)
	}
	if left.H != 2*DefaultRowHeight {
		t.Errorf("height = %d, want %d", left.H, 2*DefaultRowHeight)
	}
}

func TestCanvasRectOffsetsRows(t *testing.T) {
	c := NewCanvas(60)
	r := c.Rect(grid.Placement{I: "a", X: 0, Y: 3, W: 6, H: 1})
	if r.Y != 3*DefaultRowHeight {
		t.Errorf("Y = %d, want %d", r.Y, 3*DefaultRowHeight)
	}
	if r.W != 60 {
		t.Errorf("W = %d, want 60", r.W)
	}
	if !r.Contains(0, r.Y) || r.Contains(0, r.Y+r.H) {
		t.Errorf("Contains is off for %+v", r)
	}
}

func TestCanvasHeight(t *testing.T) {
	c := NewCanvas(100)
	items := []grid.Placement{
		{I: "a", X: 0, Y: 0, W: 5, H: 2},
		{I: "b", X: 5, Y: 1, W: 5, H: 3},
	}
	if got := c.Height(items); got != 4*DefaultRowHeight {
		t.Errorf("Height = %d, want %d", got, 4*DefaultRowHeight)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		s    string
		max  int
		want string
	}{
		{"empty string", "", 10, ""},
		{"short string", "hello", 10, "hello"},
		{"exact length", "hello", 5, "hello"},
		{"truncate with ellipsis", "hello world", 8, "hello w…"},
		{"max zero", "hello", 0, ""},
		{"max negative", "hello", -1, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.s, tt.max); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.s, tt.max, got, tt.want)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	if got := Wrap("one two three", 7); got != "one two\nthree" {
		t.Errorf("Wrap = %q", got)
	}
	if got := Wrap("anything", 0); got != "" {
		t.Errorf("Wrap with zero width = %q, want empty", got)
	}
}
