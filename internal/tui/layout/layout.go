// Package layout maps dashboard grid placements onto terminal cells.
package layout

import (
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"

	grid "github.com/Dicklesworthstone/shokodash/internal/layout"
)

// Width thresholds selecting the grid breakpoint. Narrow terminals stack
// panels (sm), mid-width terminals get the 10 column grid, wide terminals
// the full 12 columns.
const (
	MediumThreshold = 80
	LargeThreshold  = 120
)

// DefaultRowHeight is the number of terminal lines one grid row occupies.
const DefaultRowHeight = 4

// BreakpointForWidth maps a terminal width to a grid breakpoint.
func BreakpointForWidth(width int) grid.Breakpoint {
	switch {
	case width >= LargeThreshold:
		return grid.LG
	case width >= MediumThreshold:
		return grid.MD
	default:
		return grid.SM
	}
}

// Rect is a cell-space rectangle.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether the cell (x, y) lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Canvas converts grid units to cells for one terminal width.
type Canvas struct {
	Width      int
	Breakpoint grid.Breakpoint
	RowHeight  int
}

// NewCanvas returns the canvas for a terminal width.
func NewCanvas(width int) Canvas {
	return Canvas{
		Width:      width,
		Breakpoint: BreakpointForWidth(width),
		RowHeight:  DefaultRowHeight,
	}
}

func (c Canvas) column(x int) int {
	cols := c.Breakpoint.Cols()
	if x > cols {
		x = cols
	}
	return x * c.Width / cols
}

// Rect returns the cells covered by a placement. Column edges are computed
// from the left border of each column so adjacent panels tile exactly.
func (c Canvas) Rect(p grid.Placement) Rect {
	left := c.column(p.X)
	right := c.column(p.X + p.W)
	return Rect{
		X: left,
		Y: p.Y * c.RowHeight,
		W: right - left,
		H: p.H * c.RowHeight,
	}
}

// Height returns the number of lines needed to draw every placement.
func (c Canvas) Height(placements []grid.Placement) int {
	return grid.Rows(placements) * c.RowHeight
}

// Truncate trims s to max display cells, appending "…" when cut. ANSI
// sequences are preserved and do not count toward the width.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if ansi.PrintableRuneWidth(s) <= max {
		return s
	}
	return truncate.StringWithTail(s, uint(max), "…")
}

// Wrap word-wraps s to width cells.
func Wrap(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return wordwrap.String(s, width)
}
