// Package interact turns pointer and touch input into node drags, view pans
// and selection changes.
//
// A Controller is not safe for concurrent use. Hosts serialise it together
// with the simulation that reads the same graph.
package interact

import (
	"fmt"
	"strings"

	"github.com/ha1tch/reseau/pkg/geom"
	"github.com/ha1tch/reseau/pkg/graph"
	"github.com/ha1tch/reseau/pkg/view"
)

// Tool is the current interpretation of a primary-button drag.
type Tool int

const (
	ToolSelect Tool = iota // drag moves nodes, empty click deselects
	ToolPan                // drag always pans
)

func (t Tool) String() string {
	switch t {
	case ToolSelect:
		return "select"
	case ToolPan:
		return "pan"
	default:
		return fmt.Sprintf("Tool(%d)", int(t))
	}
}

// ParseTool parses "select" or "pan".
func ParseTool(s string) (Tool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "select", "s":
		return ToolSelect, nil
	case "pan", "p":
		return ToolPan, nil
	}
	return ToolSelect, fmt.Errorf("unknown tool %q", s)
}

// Button identifies a mouse button.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonSecondary
	ButtonMiddle
)

// Gesture is the gesture in progress. At most one runs at a time.
type Gesture int

const (
	GestureNone Gesture = iota
	GestureDrag
	GesturePan
	GestureTouchPan
)

func (g Gesture) String() string {
	switch g {
	case GestureNone:
		return "none"
	case GestureDrag:
		return "drag"
	case GesturePan:
		return "pan"
	case GestureTouchPan:
		return "touch-pan"
	default:
		return fmt.Sprintf("Gesture(%d)", int(g))
	}
}

// Touch is one active touch point, in screen coordinates.
type Touch struct {
	X, Y float64
}

// Hooks connect the controller to whatever animates the graph.
type Hooks struct {
	// Restart is called when a drag or pan begins.
	Restart func()
	// Drag is called with the id of the node being dragged, and with ""
	// when it is released.
	Drag func(id string)
}

// Controller holds the interaction state of one view.
type Controller struct {
	g     *graph.Graph
	v     *view.Viewport
	hooks Hooks

	tool     Tool
	selected string
	hovered  string
	focus    bool
	filter   graph.Filter

	gesture Gesture
	touch   bool // current gesture came from a touch
	dragged string
	anchor  geom.Vec // screen point of the previous move, or touch start
}

// New returns a controller over g, viewed through v.
func New(g *graph.Graph, v *view.Viewport, hooks Hooks) *Controller {
	return &Controller{g: g, v: v, hooks: hooks}
}

// SetGraph replaces the graph. Any gesture is cancelled, and selection and
// hover are kept only if their nodes still exist.
func (c *Controller) SetGraph(g *graph.Graph) {
	c.release()
	c.g = g
	if !g.Has(c.selected) {
		c.selected = ""
	}
	if !g.Has(c.hovered) {
		c.hovered = ""
	}
}

// Tool returns the active pointer tool.
func (c *Controller) Tool() Tool { return c.tool }

// Selected returns the id of the selected node, or "".
func (c *Controller) Selected() string { return c.selected }

// Hovered returns the id of the node under the pointer, or "".
func (c *Controller) Hovered() string { return c.hovered }

// Focus reports whether focus mode is on.
func (c *Controller) Focus() bool { return c.focus }

// Filter returns the kind filter and search query in effect.
func (c *Controller) Filter() graph.Filter { return c.filter }

// Gesture returns the gesture in progress.
func (c *Controller) Gesture() Gesture { return c.gesture }

// Dragged returns the id of the node held by the pointer, or "".
func (c *Controller) Dragged() string { return c.dragged }

// Viewport returns the viewport the controller drives.
func (c *Controller) Viewport() *view.Viewport { return c.v }

// Dragging reports whether a node is being dragged.
func (c *Controller) Dragging() bool { return c.gesture == GestureDrag }

// Panning reports whether the view is being panned, by mouse or touch.
func (c *Controller) Panning() bool {
	return c.gesture == GesturePan || c.gesture == GestureTouchPan
}

// Active reports whether a gesture keeps the simulation awake.
func (c *Controller) Active() bool { return c.gesture != GestureNone }

// Selection returns the selected node, or nil.
func (c *Controller) Selection() *graph.Node {
	if c.selected == "" {
		return nil
	}
	return c.g.Node(c.selected)
}

// HoveredNode returns the node under the pointer, or nil.
func (c *Controller) HoveredNode() *graph.Node {
	if c.hovered == "" {
		return nil
	}
	return c.g.Node(c.hovered)
}

// NodeAt returns the first visible node containing the screen point, in
// node order.
func (c *Controller) NodeAt(sx, sy float64) *graph.Node {
	if c.g.Empty() {
		return nil
	}
	w := c.v.ToWorld(sx, sy)
	for _, n := range c.g.Filter(c.filter) {
		if view.Hit(w, n.Pos, n.Radius) {
			return n
		}
	}
	return nil
}

func (c *Controller) restart() {
	if c.hooks.Restart != nil {
		c.hooks.Restart()
	}
}

func (c *Controller) setDragged(id string) {
	c.dragged = id
	if c.hooks.Drag != nil {
		c.hooks.Drag(id)
	}
}

func (c *Controller) beginDrag(n *graph.Node, sx, sy float64) {
	c.gesture = GestureDrag
	c.selected = n.ID
	c.anchor = geom.Vec{X: sx, Y: sy}
	c.setDragged(n.ID)
	c.restart()
}

func (c *Controller) beginPan(g Gesture, sx, sy float64) {
	c.gesture = g
	c.anchor = geom.Vec{X: sx, Y: sy}
	c.restart()
}

// moveDragged puts the dragged node under the screen point, at rest.
func (c *Controller) moveDragged(sx, sy float64) {
	n := c.g.Node(c.dragged)
	if n == nil {
		c.release()
		return
	}
	n.Pos = c.v.ToWorld(sx, sy)
	n.Vel = geom.Vec{}
}

// release ends any gesture. A touch pan's presentation offset is folded
// into the pan here and nowhere else.
func (c *Controller) release() {
	switch c.gesture {
	case GestureDrag:
		c.setDragged("")
	case GestureTouchPan:
		c.v.CommitPresent()
	}
	c.gesture = GestureNone
	c.touch = false
}

// PointerDown starts a mouse gesture. The pan tool and the non-primary
// buttons pan; otherwise a hit node is dragged and selected, and a miss
// clears the selection.
func (c *Controller) PointerDown(sx, sy float64, b Button) {
	if c.gesture != GestureNone {
		if c.touch {
			return
		}
		c.release()
	}
	if c.tool == ToolPan || b != ButtonPrimary {
		c.beginPan(GesturePan, sx, sy)
		return
	}
	if n := c.NodeAt(sx, sy); n != nil {
		c.beginDrag(n, sx, sy)
		return
	}
	c.selected = ""
}

// PointerMove drags, pans or updates the hovered node.
func (c *Controller) PointerMove(sx, sy float64) {
	if c.touch {
		return
	}
	switch c.gesture {
	case GestureDrag:
		c.moveDragged(sx, sy)
	case GesturePan:
		c.v.PanBy(c.v.ScreenDelta(sx-c.anchor.X, sy-c.anchor.Y))
		c.anchor = geom.Vec{X: sx, Y: sy}
	case GestureNone:
		c.hovered = ""
		if n := c.NodeAt(sx, sy); n != nil {
			c.hovered = n.ID
		}
	}
}

// PointerUp ends a mouse gesture.
func (c *Controller) PointerUp() {
	if !c.touch {
		c.release()
	}
}

// PointerLeave ends a mouse gesture and clears the hover.
func (c *Controller) PointerLeave() {
	c.PointerUp()
	c.hovered = ""
}

// TouchStart starts a touch gesture. A touch on a node drags and selects
// it; anywhere else it pans the view, leaving the selection alone. Events
// with more than one touch point are ignored.
func (c *Controller) TouchStart(points []Touch) {
	if len(points) != 1 || c.gesture != GestureNone {
		return
	}
	p := points[0]
	c.touch = true
	if c.tool != ToolPan {
		if n := c.NodeAt(p.X, p.Y); n != nil {
			c.beginDrag(n, p.X, p.Y)
			return
		}
	}
	c.v.Present = geom.Vec{}
	c.beginPan(GestureTouchPan, p.X, p.Y)
}

// TouchMove follows a single touch point. A touch pan only moves the
// presentation offset.
func (c *Controller) TouchMove(points []Touch) {
	if len(points) != 1 || !c.touch {
		return
	}
	p := points[0]
	switch c.gesture {
	case GestureDrag:
		c.moveDragged(p.X, p.Y)
	case GestureTouchPan:
		c.v.Present = c.v.ScreenDelta(p.X-c.anchor.X, p.Y-c.anchor.Y)
	}
}

// TouchEnd ends a touch gesture.
func (c *Controller) TouchEnd() {
	if c.touch {
		c.release()
	}
}

// SetTool changes the tool. A gesture in progress carries on unchanged.
func (c *Controller) SetTool(t Tool) { c.tool = t }

// Select selects the node with the given id, or clears the selection for
// an empty or unknown id. It reports whether a node is selected.
func (c *Controller) Select(id string) bool {
	if !c.g.Has(id) {
		c.selected = ""
		return false
	}
	c.selected = id
	return true
}

// ZoomIn zooms in one step about the centre of the view.
func (c *Controller) ZoomIn() { c.v.ZoomIn() }

// ZoomOut zooms out one step about the centre of the view.
func (c *Controller) ZoomOut() { c.v.ZoomOut() }

// ResetView restores the initial pan and zoom.
func (c *Controller) ResetView() { c.v.Reset() }

// ZoomAt zooms by factor about a screen point, for wheel input.
func (c *Controller) ZoomAt(sx, sy, factor float64) { c.v.ZoomAt(sx, sy, factor) }

// CentreOnSelection pans the selected node to the centre of the view. It
// reports false when nothing is selected.
func (c *Controller) CentreOnSelection() bool {
	n := c.Selection()
	if n == nil {
		return false
	}
	c.v.CentreOn(n.Pos)
	return true
}

// ToggleFocus flips focus mode and returns the new setting.
func (c *Controller) ToggleFocus() bool {
	c.focus = !c.focus
	return c.focus
}

// SetFocus turns focus mode on or off.
func (c *Controller) SetFocus(on bool) { c.focus = on }

// SetFilter restricts the visible nodes to one kind; "" shows all kinds.
func (c *Controller) SetFilter(k graph.Kind) { c.filter.Kind = k }

// SetSearch sets the label search text.
func (c *Controller) SetSearch(q string) { c.filter.Query = q }

// CycleFilter steps the kind filter through all kinds and back to none,
// returning the new kind.
func (c *Controller) CycleFilter() graph.Kind {
	next := graph.Kind("")
	if c.filter.Kind == "" {
		next = graph.Kinds[0]
	} else {
		for i, k := range graph.Kinds {
			if k == c.filter.Kind && i+1 < len(graph.Kinds) {
				next = graph.Kinds[i+1]
			}
		}
	}
	c.filter.Kind = next
	return next
}

// Navigate hands the selected node to nav. It reports whether a callback
// ran.
func (c *Controller) Navigate(nav Navigator) bool {
	return nav.Navigate(c.Selection())
}
