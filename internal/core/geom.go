// Package core provides the leaf primitives of the driver: the time source,
// the abstract platform events, the input state tracker and the character-cell
// surface applications draw into. It has no external dependencies (especially
// no Bubble Tea or Ebiten) so that applications stay pure and testable.
package core

// Vec2 is a 2-D coordinate in surface units (pixels on desktop, cells in a terminal).
type Vec2 struct {
	X, Y float64
}

// Point is an integer cell position on a Screen.
type Point struct {
	X, Y int
}

// Add returns p translated by d.
func (p Point) Add(d Point) Point {
	return Point{X: p.X + d.X, Y: p.Y + d.Y}
}

// Wrap returns p folded back into [0, w) x [0, h).
// Dimensions <= 0 leave the corresponding axis untouched.
func (p Point) Wrap(w, h int) Point {
	return Point{X: wrap(p.X, w), Y: wrap(p.Y, h)}
}

func wrap(v, n int) int {
	if n <= 0 {
		return v
	}
	v %= n
	if v < 0 {
		v += n
	}
	return v
}

// Rect represents an axis-aligned cell rectangle.
type Rect struct {
	X, Y int // Top-left corner position
	W, H int // Width and height
}

// NewRect creates a new rectangle with the given position and dimensions.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() int {
	return r.X + r.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.H
}

// Contains returns true if the point (x, y) is inside this rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Clamp restricts a value to be within [lo, hi].
func Clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
