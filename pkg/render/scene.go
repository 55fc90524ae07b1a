// Package render draws the ownership network. A Frame captures everything a
// redraw depends on; Compose reduces it to a Scene (what is visible, what is
// dimmed) which the raster and SVG back ends then paint in the same order.
package render

import (
	"github.com/ha1tch/reseau/pkg/geom"
	"github.com/ha1tch/reseau/pkg/graph"
	"github.com/ha1tch/reseau/pkg/view"
)

// LabelRunes is the maximum number of characters of a node label drawn.
const LabelRunes = 15

// Frame is a snapshot of the state a redraw reads.
type Frame struct {
	Graph    *graph.Graph
	View     view.Viewport
	Filter   graph.Filter
	Selected string
	Hovered  string
	Focus    bool
}

// SceneNode is a node to draw.
type SceneNode struct {
	Node     *graph.Node
	Label    string
	Dimmed   bool
	Selected bool
	Hovered  bool
}

// SceneEdge is an edge to draw. Both endpoints are visible.
type SceneEdge struct {
	Edge     graph.Edge
	From, To geom.Vec // world positions
	Dimmed   bool
}

// Scene is the visible part of a frame, in draw order.
type Scene struct {
	Nodes []SceneNode
	Edges []SceneEdge

	// Connected is the focus set: the selection and its direct neighbours.
	// It is nil when focus mode is off or nothing is selected.
	Connected map[string]bool
}

// Compose filters the graph and works out focus dimming. Edges are kept
// only when both endpoints pass the filter.
func Compose(f Frame) Scene {
	var s Scene
	if f.Graph.Empty() {
		return s
	}

	if f.Focus && f.Selected != "" && f.Graph.Has(f.Selected) {
		s.Connected = f.Graph.Neighbourhood(f.Selected)
	}
	dim := func(id string) bool {
		return s.Connected != nil && !s.Connected[id]
	}

	visible := f.Graph.Filter(f.Filter)
	shown := make(map[string]*graph.Node, len(visible))
	for _, n := range visible {
		shown[n.ID] = n
	}

	for _, e := range f.Graph.Edges {
		from, ok1 := shown[e.Source]
		to, ok2 := shown[e.Target]
		if !ok1 || !ok2 {
			continue
		}
		s.Edges = append(s.Edges, SceneEdge{
			Edge:   e,
			From:   from.Pos,
			To:     to.Pos,
			Dimmed: dim(e.Source) || dim(e.Target),
		})
	}

	s.Nodes = make([]SceneNode, 0, len(visible))
	for _, n := range visible {
		s.Nodes = append(s.Nodes, SceneNode{
			Node:     n,
			Label:    TruncateLabel(n.Label),
			Dimmed:   dim(n.ID),
			Selected: n.ID == f.Selected,
			Hovered:  n.ID == f.Hovered,
		})
	}

	return s
}

// TruncateLabel cuts a label to LabelRunes characters.
func TruncateLabel(s string) string {
	r := []rune(s)
	if len(r) <= LabelRunes {
		return s
	}
	return string(r[:LabelRunes])
}

// transform maps world coordinates to output pixels: the viewport's pan,
// presentation offset and zoom, then the buffer-to-surface device scale.
type transform struct {
	kx, ky float64 // pixels per buffer unit
	zoom   float64
	off    geom.Vec // pan + presentation offset, buffer units
}

func newTransform(v view.Viewport, width, height int) transform {
	t := transform{kx: 1, ky: 1, zoom: v.Zoom, off: v.Pan.Add(v.Present)}
	if v.Buffer.W > 0 {
		t.kx = float64(width) / v.Buffer.W
	}
	if v.Buffer.H > 0 {
		t.ky = float64(height) / v.Buffer.H
	}
	if t.zoom <= 0 {
		t.zoom = 1
	}
	return t
}

// point maps a world position to pixels.
func (t transform) point(p geom.Vec) geom.Vec {
	return geom.Vec{
		X: (p.X*t.zoom + t.off.X) * t.kx,
		Y: (p.Y*t.zoom + t.off.Y) * t.ky,
	}
}

// length maps a world length to pixels.
func (t transform) length(l float64) float64 {
	return l * t.zoom * (t.kx + t.ky) / 2
}

// unit is the pixel size of one buffer unit, for strokes and offsets that
// should not grow with zoom.
func (t transform) unit() float64 {
	return (t.kx + t.ky) / 2
}
