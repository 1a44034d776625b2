package layout

import (
	"errors"
	"testing"
)

func overlaps(items []Placement) bool {
	for i := range items {
		for j := i + 1; j < len(items); j++ {
			if items[i].collides(items[j]) {
				return true
			}
		}
	}
	return false
}

func TestBreakpointCols(t *testing.T) {
	tests := map[Breakpoint]int{LG: 12, MD: 10, SM: 6, "xl": 0}
	for bp, want := range tests {
		if got := bp.Cols(); got != want {
			t.Errorf("%s.Cols() = %d, want %d", bp, got, want)
		}
	}
	if Breakpoint("xl").Valid() {
		t.Error("xl reported valid")
	}
}

func TestDefaultIsCompactAndFits(t *testing.T) {
	d := Default()
	for _, bp := range Breakpoints {
		items := d[bp]
		if len(items) != 11 {
			t.Errorf("%s: %d placements, want 11", bp, len(items))
		}
		if overlaps(items) {
			t.Errorf("%s: default placements overlap", bp)
		}
		for _, p := range items {
			if p.X+p.W > bp.Cols() {
				t.Errorf("%s: %s exceeds %d columns", bp, p.I, bp.Cols())
			}
		}
		compacted := Compact(items, bp.Cols())
		if !(Layouts{bp: compacted}).Equal(Layouts{bp: items}) {
			t.Errorf("%s: default layout is not compact", bp)
		}
	}
}

func TestDefaultReturnsFreshCopy(t *testing.T) {
	a := Default()
	a[LG][0].X = 5
	if Default()[LG][0].X != 0 {
		t.Error("Default() shares storage between calls")
	}
}

func TestCloneAndEqual(t *testing.T) {
	a := Default()
	b := a.Clone()
	if !a.Equal(b) {
		t.Fatal("clone not equal")
	}
	b[MD][1].Y++
	if a.Equal(b) {
		t.Error("Equal ignores a changed placement")
	}
	if a[MD][1].Y == b[MD][1].Y {
		t.Error("Clone shares placement storage")
	}
}

func TestMoveSwapsStackedItems(t *testing.T) {
	items := []Placement{
		{I: "a", X: 0, Y: 0, W: 4, H: 2},
		{I: "b", X: 0, Y: 2, W: 4, H: 2},
	}
	out, err := Move(items, 12, "b", 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	a, _ := Layouts{LG: out}.Find(LG, "a")
	b, _ := Layouts{LG: out}.Find(LG, "b")
	if b.Y != 0 || a.Y != 2 {
		t.Errorf("after move a=%+v b=%+v", a, b)
	}
	if items[1].Y != 2 {
		t.Error("Move modified its input")
	}
}

func TestMoveClampsToGrid(t *testing.T) {
	items := []Placement{{I: "a", X: 0, Y: 0, W: 4, H: 2}}
	out, err := Move(items, 12, "a", 20, -3)
	if err != nil {
		t.Fatal(err)
	}
	if out[0].X != 8 || out[0].Y != 0 {
		t.Errorf("clamped = %+v, want x=8 y=0", out[0])
	}
}

func TestMoveSideways(t *testing.T) {
	items := []Placement{
		{I: "a", X: 0, Y: 0, W: 6, H: 3},
		{I: "b", X: 6, Y: 0, W: 6, H: 3},
		{I: "c", X: 0, Y: 3, W: 12, H: 2},
	}
	out, err := Move(items, 12, "a", 3, 0)
	if err != nil {
		t.Fatal(err)
	}
	if overlaps(out) {
		t.Fatalf("overlap after move: %+v", out)
	}
	a := out[0]
	if a.X != 3 || a.Y != 0 {
		t.Errorf("a = %+v", a)
	}
}

func TestResizeRespectsMinimumsAndPushesDown(t *testing.T) {
	items := []Placement{
		{I: "a", X: 0, Y: 0, W: 4, H: 2, MinW: 3, MinH: 2},
		{I: "b", X: 0, Y: 2, W: 4, H: 2},
	}

	out, err := Resize(items, 12, "a", 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	if out[0].W != 3 || out[0].H != 2 {
		t.Errorf("shrunk = %+v, want w=3 h=2", out[0])
	}

	out, err = Resize(items, 12, "a", 40, 5)
	if err != nil {
		t.Fatal(err)
	}
	if out[0].W != 12 || out[0].H != 5 {
		t.Errorf("grown = %+v, want w=12 h=5", out[0])
	}
	if out[1].Y != 5 {
		t.Errorf("b not pushed below: %+v", out[1])
	}
	if overlaps(out) {
		t.Errorf("overlap after resize: %+v", out)
	}
}

func TestUnknownPanel(t *testing.T) {
	items := []Placement{{I: "a", W: 1, H: 1}}
	if _, err := Move(items, 12, "zz", 0, 0); !errors.Is(err, ErrUnknownPanel) {
		t.Errorf("Move err = %v", err)
	}
	if _, err := Resize(items, 12, "zz", 1, 1); !errors.Is(err, ErrUnknownPanel) {
		t.Errorf("Resize err = %v", err)
	}
}

func TestCompactStopsAtObstacle(t *testing.T) {
	items := []Placement{
		{I: "a", X: 0, Y: 3, W: 12, H: 2},
		{I: "b", X: 0, Y: 10, W: 4, H: 1},
	}
	out := Compact(items, 12)
	if out[0].Y != 0 || out[1].Y != 2 {
		t.Errorf("compacted = %+v", out)
	}
}

func TestRows(t *testing.T) {
	l := Layouts{SM: {{I: "a", Y: 0, H: 3}, {I: "b", Y: 3, H: 4}}}
	if l.Rows(SM) != 7 {
		t.Errorf("Rows = %d", l.Rows(SM))
	}
}
