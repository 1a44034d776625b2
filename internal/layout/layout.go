// Package layout models the dashboard grid: one ordered list of panel
// placements per breakpoint, and the move, resize and compaction rules
// applied while editing.
package layout

import (
	"errors"
	"fmt"
	"sort"
)

// Breakpoint names a grid width class.
type Breakpoint string

const (
	LG Breakpoint = "lg"
	MD Breakpoint = "md"
	SM Breakpoint = "sm"
)

// Breakpoints lists all breakpoints from widest to narrowest.
var Breakpoints = []Breakpoint{LG, MD, SM}

// ErrUnknownPanel is returned when a placement key is not in the layout.
var ErrUnknownPanel = errors.New("layout: unknown panel")

// ErrUnknownBreakpoint is returned for a breakpoint outside lg, md and sm.
var ErrUnknownBreakpoint = errors.New("layout: unknown breakpoint")

// Cols returns the column count of the breakpoint.
func (b Breakpoint) Cols() int {
	switch b {
	case LG:
		return 12
	case MD:
		return 10
	case SM:
		return 6
	default:
		return 0
	}
}

// Valid reports whether b is a known breakpoint.
func (b Breakpoint) Valid() bool { return b.Cols() > 0 }

// Placement is one panel's cell rectangle, in grid units.
type Placement struct {
	I    string `json:"i" yaml:"i" toml:"i"`
	X    int    `json:"x" yaml:"x" toml:"x"`
	Y    int    `json:"y" yaml:"y" toml:"y"`
	W    int    `json:"w" yaml:"w" toml:"w"`
	H    int    `json:"h" yaml:"h" toml:"h"`
	MinW int    `json:"minW,omitempty" yaml:"minW,omitempty" toml:"minW,omitempty"`
	MinH int    `json:"minH,omitempty" yaml:"minH,omitempty" toml:"minH,omitempty"`
}

func (p Placement) bottom() int { return p.Y + p.H }

func (p Placement) collides(o Placement) bool {
	if p.I == o.I {
		return false
	}
	return p.X < o.X+o.W && o.X < p.X+p.W && p.Y < o.Y+o.H && o.Y < p.Y+p.H
}

// Layouts maps each breakpoint to its placements.
type Layouts map[Breakpoint][]Placement

// Clone returns a deep copy.
func (l Layouts) Clone() Layouts {
	if l == nil {
		return nil
	}
	out := make(Layouts, len(l))
	for bp, items := range l {
		cp := make([]Placement, len(items))
		copy(cp, items)
		out[bp] = cp
	}
	return out
}

// Equal reports whether both layouts hold the same placements in the same
// order.
func (l Layouts) Equal(o Layouts) bool {
	if len(l) != len(o) {
		return false
	}
	for bp, items := range l {
		other, ok := o[bp]
		if !ok || len(other) != len(items) {
			return false
		}
		for i := range items {
			if items[i] != other[i] {
				return false
			}
		}
	}
	return true
}

// Find returns the placement of key at bp.
func (l Layouts) Find(bp Breakpoint, key string) (Placement, bool) {
	for _, p := range l[bp] {
		if p.I == key {
			return p, true
		}
	}
	return Placement{}, false
}

// Rows returns the grid height of bp.
func (l Layouts) Rows(bp Breakpoint) int {
	return Rows(l[bp])
}

// Rows returns the lowest bottom edge among items.
func Rows(items []Placement) int {
	rows := 0
	for _, p := range items {
		if b := p.bottom(); b > rows {
			rows = b
		}
	}
	return rows
}

func indexOf(items []Placement, key string) int {
	for i, p := range items {
		if p.I == key {
			return i
		}
	}
	return -1
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Move places key at (x, y), pushes colliding items down and compacts.
// items is not modified.
func Move(items []Placement, cols int, key string, x, y int) ([]Placement, error) {
	out := clone(items)
	i := indexOf(out, key)
	if i < 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPanel, key)
	}
	p := &out[i]
	p.W = clamp(p.W, 1, cols)
	p.X = clamp(x, 0, cols-p.W)
	p.Y = max(y, 0)

	resolve(out, i)
	return Compact(out, cols), nil
}

// Resize sets the size of key, keeping its origin, then resolves
// collisions and compacts.
func Resize(items []Placement, cols int, key string, w, h int) ([]Placement, error) {
	out := clone(items)
	i := indexOf(out, key)
	if i < 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPanel, key)
	}
	p := &out[i]
	minW := max(1, p.MinW)
	minH := max(1, p.MinH)
	p.W = clamp(w, minW, max(minW, cols-p.X))
	p.H = max(h, minH)

	resolve(out, i)
	return Compact(out, cols), nil
}

// resolve pushes everything that overlaps the pinned item below it,
// cascading to whatever those items then overlap.
func resolve(items []Placement, pinned int) {
	queue := []int{pinned}
	for len(queue) > 0 {
		cur := items[queue[0]]
		queue = queue[1:]
		for j := range items {
			if j == pinned || !cur.collides(items[j]) {
				continue
			}
			items[j].Y = cur.bottom()
			queue = append(queue, j)
		}
	}
}

// Compact moves every item up until it rests on another, in (y, x) order,
// keeping the original slice order in the result. Widths are clamped to cols.
func Compact(items []Placement, cols int) []Placement {
	out := clone(items)
	for i := range out {
		if cols > 0 {
			out[i].W = clamp(out[i].W, 1, cols)
			out[i].X = clamp(out[i].X, 0, cols-out[i].W)
		}
		out[i].Y = max(out[i].Y, 0)
		out[i].H = max(out[i].H, 1)
	}

	order := make([]int, len(out))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		pa, pb := out[order[a]], out[order[b]]
		if pa.Y != pb.Y {
			return pa.Y < pb.Y
		}
		return pa.X < pb.X
	})

	placed := make([]Placement, 0, len(out))
	for _, idx := range order {
		p := out[idx]
		for p.Y > 0 {
			up := p
			up.Y--
			if firstCollision(placed, up) >= 0 {
				break
			}
			p = up
		}
		for {
			j := firstCollision(placed, p)
			if j < 0 {
				break
			}
			p.Y = placed[j].bottom()
		}
		out[idx] = p
		placed = append(placed, p)
	}
	return out
}

func firstCollision(items []Placement, p Placement) int {
	for i, q := range items {
		if p.collides(q) {
			return i
		}
	}
	return -1
}

func clone(items []Placement) []Placement {
	out := make([]Placement, len(items))
	copy(out, items)
	return out
}
