package physics

import (
	"math"

	"github.com/ha1tch/reseau/pkg/graph"
)

// Simulation advances node positions of a graph one step at a time.
// It is not safe for concurrent use.
type Simulation struct {
	g       *graph.Graph
	profile Profile
	dragged string
	steps   uint64

	stability stability
}

// NewSimulation returns a simulation over g. The graph's nodes are mutated
// in place by Step.
func NewSimulation(g *graph.Graph, p Profile) *Simulation {
	p = p.withDefaults()
	return &Simulation{
		g:         g,
		profile:   p,
		stability: newStability(p.StabilityWindow),
	}
}

// Graph returns the graph being laid out.
func (s *Simulation) Graph() *graph.Graph { return s.g }

// Profile returns the profile in use.
func (s *Simulation) Profile() Profile { return s.profile }

// Steps returns the number of steps run so far.
func (s *Simulation) Steps() uint64 { return s.steps }

// SetGraph replaces the graph and resets stability tracking.
func (s *Simulation) SetGraph(g *graph.Graph) {
	s.g = g
	s.dragged = ""
	s.stability.reset()
}

// SetDragged marks the node held by the pointer. The empty id releases it.
// A dragged node is not integrated and has zero velocity.
func (s *Simulation) SetDragged(id string) {
	s.dragged = id
	if n := s.g.Node(id); n != nil {
		n.Vel.X, n.Vel.Y = 0, 0
	}
}

// Dragged returns the id of the dragged node, if any.
func (s *Simulation) Dragged() string { return s.dragged }

// distance returns the components and length of b - a, with a zero length
// replaced by 1.
func distance(ax, ay, bx, by float64) (dx, dy, d float64) {
	dx, dy = bx-ax, by-ay
	d = math.Sqrt(dx*dx + dy*dy)
	if d == 0 {
		d = 1
	}
	return dx, dy, d
}

// firstPartner returns the first j > i such that the pair (i, j) belongs to
// the sample of the given phase: pairs with (i+j) % stride == phase. Phases
// rotate from step to step so every pair is visited once per stride steps.
func firstPartner(i, stride, phase int) int {
	j := i + 1
	if stride > 1 {
		r := (i + j) % stride
		j += (phase - r + stride) % stride
	}
	return j
}

// Step runs one simulation step and returns the total distance moved by
// all nodes. Forces are accumulated into velocities before any node moves.
func (s *Simulation) Step() float64 {
	if s.g.Empty() {
		return 0
	}

	p := s.profile
	nodes := s.g.Nodes
	n := len(nodes)
	phase := int(s.steps % uint64(p.Stride))

	for i := 0; i < n; i++ {
		a := &nodes[i]
		for j := firstPartner(i, p.Stride, phase); j < n; j += p.Stride {
			b := &nodes[j]
			dx, dy, d := distance(a.Pos.X, a.Pos.Y, b.Pos.X, b.Pos.Y)
			f := p.Repulsion / (d*d + p.Softening)
			fx, fy := dx/d*f, dy/d*f
			a.Vel.X -= fx
			a.Vel.Y -= fy
			b.Vel.X += fx
			b.Vel.Y += fy
		}
	}

	applied := 0
	for k := phase; k < len(s.g.Edges); k += p.Stride {
		if p.EdgeCap > 0 && applied >= p.EdgeCap {
			break
		}
		e := s.g.Edges[k]
		si, ti := s.g.Index(e.Source), s.g.Index(e.Target)
		if si < 0 || ti < 0 || si == ti {
			continue
		}
		src, dst := &nodes[si], &nodes[ti]
		dx, dy, d := distance(src.Pos.X, src.Pos.Y, dst.Pos.X, dst.Pos.Y)
		f := (d - p.SpringLength) * p.SpringStiffness
		fx, fy := dx/d*f, dy/d*f
		src.Vel.X += fx
		src.Vel.Y += fy
		dst.Vel.X -= fx
		dst.Vel.Y -= fy
		applied++
	}

	var moved float64
	for i := range nodes {
		nd := &nodes[i]
		if nd.ID == s.dragged {
			nd.Vel.X, nd.Vel.Y = 0, 0
			continue
		}
		nd.Vel.X += (p.Centre.X - nd.Pos.X) * p.Gravity
		nd.Vel.Y += (p.Centre.Y - nd.Pos.Y) * p.Gravity
		nd.Vel.X *= p.Damping
		nd.Vel.Y *= p.Damping
		nd.Pos.X += nd.Vel.X
		nd.Pos.Y += nd.Vel.Y
		moved += math.Hypot(nd.Vel.X, nd.Vel.Y)
	}

	s.steps++
	s.stability.record(moved/float64(n), p.StabilityThreshold)

	return moved
}

// Stable reports whether the layout has settled.
func (s *Simulation) Stable() bool {
	return s.stability.calm >= s.profile.StableFrames
}

// ResetStability forgets the displacement history, so the simulation must
// settle again before Stable reports true.
func (s *Simulation) ResetStability() {
	s.stability.reset()
}
