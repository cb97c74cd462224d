// Package physics provides axis-aligned collision detection and broad-phase utilities.
package physics

// Rect is an axis-aligned box. X, Y is the top-left corner.
type Rect struct {
	X, Y float64
	W, H float64
}

// RectAround returns the box of half-extent r centered on (cx, cy).
func RectAround(cx, cy, r float64) Rect {
	return Rect{X: cx - r, Y: cy - r, W: 2 * r, H: 2 * r}
}

// Right returns the right edge.
func (r Rect) Right() float64 {
	return r.X + r.W
}

// Bottom returns the bottom edge.
func (r Rect) Bottom() float64 {
	return r.Y + r.H
}

// Center returns the center point.
func (r Rect) Center() (float64, float64) {
	return r.X + r.W/2, r.Y + r.H/2
}

// Overlaps reports whether two boxes intersect.
// Edges are inclusive: boxes that only touch count as overlapping.
func (r Rect) Overlaps(o Rect) bool {
	return r.X <= o.Right() && o.X <= r.Right() &&
		r.Y <= o.Bottom() && o.Y <= r.Bottom()
}

// Contains reports whether the point lies inside the box (edges inclusive).
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.Right() && y >= r.Y && y <= r.Bottom()
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
