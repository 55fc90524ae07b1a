package reseau

import (
	"github.com/ha1tch/reseau/pkg/graph"
	"github.com/ha1tch/reseau/pkg/render"
)

// NodeState is a visible node as reported to remote clients.
type NodeState struct {
	ID       string     `json:"id"`
	Label    string     `json:"label"`
	Kind     graph.Kind `json:"kind"`
	X        float64    `json:"x"`
	Y        float64    `json:"y"`
	Radius   float64    `json:"radius"`
	Color    string     `json:"color"`
	Dimmed   bool       `json:"dimmed,omitempty"`
	Selected bool       `json:"selected,omitempty"`
	Hovered  bool       `json:"hovered,omitempty"`
}

// EdgeState is a visible edge.
type EdgeState struct {
	Source string         `json:"source"`
	Target string         `json:"target"`
	Label  string         `json:"label,omitempty"`
	Kind   graph.EdgeKind `json:"kind"`
	Dimmed bool           `json:"dimmed,omitempty"`
}

// ViewState is the view transform, presentation offset included.
type ViewState struct {
	PanX     float64 `json:"panX"`
	PanY     float64 `json:"panY"`
	Zoom     float64 `json:"zoom"`
	PresentX float64 `json:"presentX"`
	PresentY float64 `json:"presentY"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
}

// InteractionState mirrors the interaction controller.
type InteractionState struct {
	Tool     string     `json:"tool"`
	Gesture  string     `json:"gesture"`
	Selected string     `json:"selected,omitempty"`
	Hovered  string     `json:"hovered,omitempty"`
	Focus    bool       `json:"focus"`
	Filter   graph.Kind `json:"filter,omitempty"`
	Search   string     `json:"search,omitempty"`
}

// SimulationState describes the frame loop.
type SimulationState struct {
	State   string `json:"state"`
	Profile string `json:"profile"`
	Steps   uint64 `json:"steps"`
	Frames  uint64 `json:"frames"`
	Stable  bool   `json:"stable"`
}

// State is a serialisable snapshot of a session.
type State struct {
	Nodes       []NodeState      `json:"nodes"`
	Edges       []EdgeState      `json:"edges"`
	View        ViewState        `json:"view"`
	Interaction InteractionState `json:"interaction"`
	Simulation  SimulationState  `json:"simulation"`
	Details     []Detail         `json:"details,omitempty"`
}

// State returns the visible scene and the session's state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	scene := render.Compose(s.frame(s.g))
	st := State{
		Nodes: make([]NodeState, 0, len(scene.Nodes)),
		Edges: make([]EdgeState, 0, len(scene.Edges)),
		View: ViewState{
			PanX:     s.view.Pan.X,
			PanY:     s.view.Pan.Y,
			Zoom:     s.view.Zoom,
			PresentX: s.view.Present.X,
			PresentY: s.view.Present.Y,
			Width:    s.view.Buffer.W,
			Height:   s.view.Buffer.H,
		},
		Interaction: InteractionState{
			Tool:     s.ctl.Tool().String(),
			Gesture:  s.ctl.Gesture().String(),
			Selected: s.ctl.Selected(),
			Hovered:  s.ctl.Hovered(),
			Focus:    s.ctl.Focus(),
			Filter:   s.ctl.Filter().Kind,
			Search:   s.ctl.Filter().Query,
		},
		Simulation: SimulationState{
			State:   s.loop.State().String(),
			Profile: s.sim.Profile().Name,
			Steps:   s.sim.Steps(),
			Frames:  s.loop.Frames(),
			Stable:  s.sim.Stable(),
		},
	}

	for _, sn := range scene.Nodes {
		n := sn.Node
		st.Nodes = append(st.Nodes, NodeState{
			ID:       n.ID,
			Label:    sn.Label,
			Kind:     n.Kind,
			X:        n.Pos.X,
			Y:        n.Pos.Y,
			Radius:   n.Radius,
			Color:    n.Color,
			Dimmed:   sn.Dimmed,
			Selected: sn.Selected,
			Hovered:  sn.Hovered,
		})
	}
	for _, se := range scene.Edges {
		st.Edges = append(st.Edges, EdgeState{
			Source: se.Edge.Source,
			Target: se.Edge.Target,
			Label:  se.Edge.Label,
			Kind:   se.Edge.Kind,
			Dimmed: se.Dimmed,
		})
	}
	if n := s.ctl.Selection(); n != nil {
		st.Details = Details(n)
	}
	return st
}
