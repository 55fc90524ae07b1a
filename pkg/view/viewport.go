// Package view maps between screen coordinates, where input events happen,
// and world coordinates, where node positions live.
//
// Three spaces are involved. Screen space is the coordinate system of input
// events: the drawing element sits at Bounds within it and is displayed at
// Bounds.W x Bounds.H. Buffer space is the element's logical drawing surface
// of size Buffer, which may differ from its displayed size. World space is
// buffer space with the pan offset and zoom scale removed.
package view

import (
	"math"

	"github.com/ha1tch/reseau/pkg/geom"
)

const (
	MinZoom  = 0.3
	MaxZoom  = 3.0
	ZoomStep = 1.2
)

// Size is a width and height in buffer units.
type Size struct {
	W, H float64
}

// Viewport is the view transform of one drawing surface.
type Viewport struct {
	Pan  geom.Vec // buffer units
	Zoom float64

	Bounds geom.Rect // element position and displayed size, screen units
	Buffer Size      // logical drawing-buffer size

	// Present is a presentation-only offset, in buffer units, applied on top
	// of Pan while a touch gesture is in progress. Simulation and hit-testing
	// never see it until it is committed into Pan.
	Present geom.Vec
}

// New returns a viewport whose element shows a buffer of the given size at
// its natural size at the screen origin.
func New(w, h float64) *Viewport {
	return &Viewport{
		Zoom:   1,
		Bounds: geom.Rect{W: w, H: h},
		Buffer: Size{W: w, H: h},
	}
}

// ratio returns the buffer units per screen unit on each axis.
func (v *Viewport) ratio() (float64, float64) {
	rx, ry := 1.0, 1.0
	if v.Bounds.W > 0 && v.Buffer.W > 0 {
		rx = v.Buffer.W / v.Bounds.W
	}
	if v.Bounds.H > 0 && v.Buffer.H > 0 {
		ry = v.Buffer.H / v.Bounds.H
	}
	return rx, ry
}

func (v *Viewport) zoom() float64 {
	if v.Zoom <= 0 {
		return 1
	}
	return v.Zoom
}

// ScreenToBuffer converts a screen point to buffer coordinates.
func (v *Viewport) ScreenToBuffer(sx, sy float64) geom.Vec {
	rx, ry := v.ratio()
	return geom.Vec{X: (sx - v.Bounds.X) * rx, Y: (sy - v.Bounds.Y) * ry}
}

// BufferToScreen is the inverse of ScreenToBuffer.
func (v *Viewport) BufferToScreen(b geom.Vec) geom.Vec {
	rx, ry := v.ratio()
	return geom.Vec{X: b.X/rx + v.Bounds.X, Y: b.Y/ry + v.Bounds.Y}
}

// ToWorld converts a screen point to world coordinates.
func (v *Viewport) ToWorld(sx, sy float64) geom.Vec {
	b := v.ScreenToBuffer(sx, sy)
	z := v.zoom()
	return geom.Vec{X: (b.X - v.Pan.X) / z, Y: (b.Y - v.Pan.Y) / z}
}

// ToScreen converts a world point to screen coordinates, ignoring any
// presentation offset.
func (v *Viewport) ToScreen(w geom.Vec) geom.Vec {
	z := v.zoom()
	return v.BufferToScreen(geom.Vec{X: w.X*z + v.Pan.X, Y: w.Y*z + v.Pan.Y})
}

// Presented converts a world point to screen coordinates as currently
// displayed, presentation offset included.
func (v *Viewport) Presented(w geom.Vec) geom.Vec {
	z := v.zoom()
	return v.BufferToScreen(geom.Vec{
		X: w.X*z + v.Pan.X + v.Present.X,
		Y: w.Y*z + v.Pan.Y + v.Present.Y,
	})
}

// ScreenDelta converts a displacement in screen units to buffer units, the
// unit of Pan.
func (v *Viewport) ScreenDelta(dx, dy float64) geom.Vec {
	rx, ry := v.ratio()
	return geom.Vec{X: dx * rx, Y: dy * ry}
}

// Hit reports whether p lies strictly inside the circle of radius r around
// centre.
func Hit(p, centre geom.Vec, r float64) bool {
	return p.Dist(centre) < r
}

func clampZoom(z float64) float64 {
	return math.Max(MinZoom, math.Min(MaxZoom, z))
}

// ZoomIn multiplies the scale by ZoomStep, up to MaxZoom.
func (v *Viewport) ZoomIn() {
	v.Zoom = clampZoom(v.zoom() * ZoomStep)
}

// ZoomOut divides the scale by ZoomStep, down to MinZoom.
func (v *Viewport) ZoomOut() {
	v.Zoom = clampZoom(v.zoom() / ZoomStep)
}

// ZoomAt multiplies the scale by factor, keeping the world point under the
// screen point (sx, sy) in place.
func (v *Viewport) ZoomAt(sx, sy, factor float64) {
	if factor <= 0 {
		return
	}
	b := v.ScreenToBuffer(sx, sy)
	w := v.ToWorld(sx, sy)
	v.Zoom = clampZoom(v.zoom() * factor)
	v.Pan = geom.Vec{X: b.X - w.X*v.Zoom, Y: b.Y - w.Y*v.Zoom}
}

// Reset restores the identity transform.
func (v *Viewport) Reset() {
	v.Pan = geom.Vec{}
	v.Zoom = 1
	v.Present = geom.Vec{}
}

// CentreOn pans so that world point w sits at the centre of the buffer at
// the current scale.
func (v *Viewport) CentreOn(w geom.Vec) {
	z := v.zoom()
	v.Pan = geom.Vec{X: v.Buffer.W/2 - w.X*z, Y: v.Buffer.H/2 - w.Y*z}
}

// PanBy moves the view by a displacement in buffer units.
func (v *Viewport) PanBy(d geom.Vec) {
	v.Pan = v.Pan.Add(d)
}

// CommitPresent folds the presentation offset into Pan and clears it.
func (v *Viewport) CommitPresent() {
	v.Pan = v.Pan.Add(v.Present)
	v.Present = geom.Vec{}
}

// Resize updates the displayed bounds of the element.
func (v *Viewport) Resize(bounds geom.Rect) {
	v.Bounds = bounds
}

// VisibleWorld returns the world rectangle covered by the buffer.
func (v *Viewport) VisibleWorld() geom.Rect {
	z := v.zoom()
	return geom.Rect{
		X: -v.Pan.X / z,
		Y: -v.Pan.Y / z,
		W: v.Buffer.W / z,
		H: v.Buffer.H / z,
	}
}
