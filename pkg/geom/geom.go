// Geometric primitives shared by the simulation, the viewport and the renderers.

package geom

import "math"

// Vec is a 2D point or vector. World positions, velocities and pan offsets
// all use it.
type Vec struct {
	X, Y float64
}

// Add returns v + o.
func (v Vec) Add(o Vec) Vec { return Vec{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec) Sub(o Vec) Vec { return Vec{v.X - o.X, v.Y - o.Y} }

// Scale returns v multiplied by k.
func (v Vec) Scale(k float64) Vec { return Vec{v.X * k, v.Y * k} }

// Len returns the Euclidean length of v.
func (v Vec) Len() float64 { return math.Hypot(v.X, v.Y) }

// Dist returns the Euclidean distance between v and o.
func (v Vec) Dist(o Vec) float64 { return math.Hypot(v.X-o.X, v.Y-o.Y) }

// Rect represents an axis-aligned rectangle.
type Rect struct {
	X, Y float64 // Top-left corner
	W, H float64 // Full width and height
}

// Centre returns the centre point of r.
func (r Rect) Centre() Vec {
	return Vec{r.X + r.W/2, r.Y + r.H/2}
}

// Contains reports whether p lies inside r (right and bottom edges excluded).
func (r Rect) Contains(p Vec) bool {
	return p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}

// RectOverlap returns the overlap area between two rectangles.
// Returns 0 if they don't overlap.
func RectOverlap(a, b Rect) float64 {
	overlapX := math.Min(a.X+a.W, b.X+b.W) - math.Max(a.X, b.X)
	overlapY := math.Min(a.Y+a.H, b.Y+b.H) - math.Max(a.Y, b.Y)

	if overlapX <= 0 || overlapY <= 0 {
		return 0
	}

	return overlapX * overlapY
}
