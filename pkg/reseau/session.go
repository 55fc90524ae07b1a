// Package reseau ties the ownership network together: one Session owns a
// graph, its simulation loop, a viewport and the interaction state, and
// serialises every access to them.
//
// Hosts feed input events to the session and redraw when notified. Frame
// callbacks, input handlers and snapshots all take the same lock, so a
// render never sees a half-written step.
package reseau

import (
	"sync"
	"time"

	"github.com/ha1tch/reseau/pkg/geom"
	"github.com/ha1tch/reseau/pkg/graph"
	"github.com/ha1tch/reseau/pkg/interact"
	"github.com/ha1tch/reseau/pkg/logger"
	"github.com/ha1tch/reseau/pkg/medias"
	"github.com/ha1tch/reseau/pkg/metrics"
	"github.com/ha1tch/reseau/pkg/physics"
	"github.com/ha1tch/reseau/pkg/render"
	"github.com/ha1tch/reseau/pkg/view"
)

// Options configures a Session. The zero value is usable.
type Options struct {
	Profile physics.Profile

	// Scheduler delivers frames. It defaults to a TimerScheduler at the
	// profile's frame interval.
	Scheduler physics.Scheduler

	// Width and Height are the logical drawing-buffer size, 800x600 by
	// default.
	Width, Height float64

	Metrics *metrics.Registry
}

// Session is the explicit simulation context of one view.
type Session struct {
	mu      sync.Mutex
	g       *graph.Graph
	view    *view.Viewport
	sim     *physics.Simulation
	loop    *physics.Loop
	ctl     *interact.Controller
	metrics *metrics.Registry

	held      string // node pinned by ApplyDrag
	skipped   uint64
	tickStart time.Time
	closed    bool

	subMu   sync.Mutex
	subs    map[int]func()
	nextSub int
}

// New returns an empty session.
func New(opts Options) *Session {
	if opts.Profile == (physics.Profile{}) {
		opts.Profile = physics.StandardProfile()
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = 800, 600
	}

	s := &Session{
		view:    view.New(opts.Width, opts.Height),
		metrics: opts.Metrics,
		subs:    make(map[int]func()),
	}
	s.sim = physics.NewSimulation(nil, opts.Profile)

	sched := opts.Scheduler
	if sched == nil {
		sched = &physics.TimerScheduler{Period: s.sim.Profile().FrameInterval}
	}
	s.loop = physics.NewLoop(s.sim, &lockedScheduler{inner: sched, s: s})
	s.loop.Active = s.active
	s.loop.OnFrame = s.onFrame
	s.loop.OnIdle = s.onIdle

	s.ctl = interact.New(nil, s.view, interact.Hooks{
		Restart: s.ensureRunning,
		Drag:    s.setDragged,
	})
	return s
}

// setDragged follows the pointer drag, falling back to the node pinned by
// ApplyDrag when the pointer lets go. A released node must settle again
// before the loop may go idle.
func (s *Session) setDragged(id string) {
	if id == "" {
		id = s.held
		s.sim.ResetStability()
	}
	s.sim.SetDragged(id)
}

// lockedScheduler runs every frame under the session lock and notifies
// subscribers once the lock is released.
type lockedScheduler struct {
	inner physics.Scheduler
	s     *Session
}

func (l *lockedScheduler) Schedule(fn func(now time.Time)) func() {
	s := l.s
	return l.inner.Schedule(func(now time.Time) {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}
		s.tickStart = time.Now()
		fn(now)
		s.mu.Unlock()
		s.notify()
	})
}

func (s *Session) active() bool {
	return s.ctl.Active() || s.held != ""
}

func (s *Session) onFrame(displacement float64) {
	s.metrics.RecordStep(time.Since(s.tickStart), displacement)
	if sk := s.loop.Skipped(); sk > s.skipped {
		s.metrics.RecordSkippedFrames(sk - s.skipped)
		s.skipped = sk
	}
}

func (s *Session) onIdle() {
	s.metrics.RecordSettled()
	s.metrics.LoopStopped()
	logger.Debug("layout settled", "steps", s.sim.Steps(), "frames", s.loop.Frames())
}

// ensureRunning starts the loop. Callers hold s.mu.
func (s *Session) ensureRunning() {
	if s.closed || s.loop.State() == physics.Running {
		return
	}
	s.loop.EnsureRunning()
	if s.loop.State() == physics.Running {
		s.metrics.LoopStarted()
	}
}

// stop cancels the loop. Callers hold s.mu.
func (s *Session) stop() {
	if s.loop.State() == physics.Running {
		s.metrics.LoopStopped()
	}
	s.loop.Stop()
}

// Subscribe registers fn to be called after every state change: each
// simulation frame, each input event and each load. It is called without
// the session lock held. The returned function unsubscribes.
func (s *Session) Subscribe(fn func()) (cancel func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Session) notify() {
	s.subMu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// update runs fn under the lock and notifies afterwards.
func (s *Session) update(fn func()) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	fn()
	s.mu.Unlock()
	s.notify()
}

// Load builds the graph from a dataset and starts laying it out. An empty
// dataset stops the simulation. It returns the new graph's statistics.
func (s *Session) Load(ds medias.Dataset) graph.Stats {
	return s.LoadGraph(graph.BuildDataset(ds))
}

// LoadGraph replaces the graph.
func (s *Session) LoadGraph(g *graph.Graph) graph.Stats {
	st := g.Stats(0)
	s.update(func() {
		s.g = g
		s.held = ""
		s.sim.SetGraph(g)
		s.ctl.SetGraph(g)

		byKind := make(map[string]int, len(st.ByKind))
		for k, n := range st.ByKind {
			byKind[string(k)] = n
		}
		s.metrics.SetGraph(byKind, st.Edges, st.Dangling)
		logger.Info("graph loaded", "nodes", st.Nodes, "edges", st.Edges, "dangling", st.Dangling)

		if g.Empty() {
			s.stop()
			return
		}
		s.ensureRunning()
	})
	return st
}

// Step runs one simulation step outside the frame loop and returns the
// total displacement.
func (s *Session) Step() float64 {
	var d float64
	s.update(func() {
		start := time.Now()
		d = s.sim.Step()
		s.metrics.RecordStep(time.Since(start), d)
	})
	return d
}

// ApplyDrag pins a node at a world position with zero velocity, as if it
// were held by the pointer, and wakes the simulation. The node stays pinned
// until ReleaseDrag. It reports whether the node exists.
func (s *Session) ApplyDrag(id string, p geom.Vec) bool {
	ok := false
	s.update(func() {
		n := s.g.Node(id)
		if n == nil {
			return
		}
		ok = true
		n.Pos = p
		n.Vel = geom.Vec{}
		s.held = id
		s.sim.SetDragged(id)
		s.ensureRunning()
	})
	return ok
}

// ReleaseDrag unpins the node held by ApplyDrag.
func (s *Session) ReleaseDrag() {
	s.update(func() {
		if s.held == "" {
			return
		}
		if s.sim.Dragged() == s.held {
			s.sim.SetDragged("")
		}
		s.held = ""
		s.sim.ResetStability()
	})
}

// BeginPan starts panning the view from a screen point.
func (s *Session) BeginPan(sx, sy float64) {
	s.update(func() { s.ctl.PointerDown(sx, sy, interact.ButtonSecondary) })
}

// UpdatePan moves the view by the screen distance since the last call.
func (s *Session) UpdatePan(sx, sy float64) {
	s.update(func() { s.ctl.PointerMove(sx, sy) })
}

// EndPan ends panning.
func (s *Session) EndPan() {
	s.update(func() { s.ctl.PointerUp() })
}

// PointerDown starts a drag, a pan or a selection at a screen point.
func (s *Session) PointerDown(sx, sy float64, b interact.Button) {
	s.update(func() { s.ctl.PointerDown(sx, sy, b) })
}

// PointerMove moves the pointer, dragging or panning if a gesture is in
// progress.
func (s *Session) PointerMove(sx, sy float64) {
	s.update(func() { s.ctl.PointerMove(sx, sy) })
}

// PointerUp ends the pointer gesture.
func (s *Session) PointerUp() {
	s.update(func() { s.ctl.PointerUp() })
}

// PointerLeave ends the gesture and clears the hover when the pointer
// leaves the view.
func (s *Session) PointerLeave() {
	s.update(func() { s.ctl.PointerLeave() })
}

// TouchStart begins a touch gesture.
func (s *Session) TouchStart(points []interact.Touch) {
	s.update(func() { s.ctl.TouchStart(points) })
}

// TouchMove updates the touch gesture.
func (s *Session) TouchMove(points []interact.Touch) {
	s.update(func() { s.ctl.TouchMove(points) })
}

// TouchEnd ends the touch gesture.
func (s *Session) TouchEnd() {
	s.update(func() { s.ctl.TouchEnd() })
}

// SetTool switches between the pointer and pan tools.
func (s *Session) SetTool(t interact.Tool) {
	s.update(func() { s.ctl.SetTool(t) })
}

// ZoomIn zooms in one step.
func (s *Session) ZoomIn() {
	s.update(s.ctl.ZoomIn)
}

// ZoomOut zooms out one step.
func (s *Session) ZoomOut() {
	s.update(s.ctl.ZoomOut)
}

// ZoomAt zooms by factor about a screen point.
func (s *Session) ZoomAt(sx, sy, factor float64) {
	s.update(func() { s.ctl.ZoomAt(sx, sy, factor) })
}

// ResetView restores the initial pan and zoom.
func (s *Session) ResetView() {
	s.update(s.ctl.ResetView)
}

// CentreOnSelection reports false when nothing is selected.
func (s *Session) CentreOnSelection() bool {
	ok := false
	s.update(func() { ok = s.ctl.CentreOnSelection() })
	return ok
}

// ToggleFocus returns the new focus setting.
func (s *Session) ToggleFocus() bool {
	on := false
	s.update(func() { on = s.ctl.ToggleFocus() })
	return on
}

// SetFilter shows only nodes of kind k; "" shows every kind.
func (s *Session) SetFilter(k graph.Kind) {
	s.update(func() { s.ctl.SetFilter(k) })
}

// SetSearch filters nodes by label. Queries shorter than
// graph.MinQueryLen show every node.
func (s *Session) SetSearch(q string) {
	s.update(func() { s.ctl.SetSearch(q) })
}

// CycleFilter steps through the kind filters and returns the new one.
func (s *Session) CycleFilter() graph.Kind {
	var k graph.Kind
	s.update(func() { k = s.ctl.CycleFilter() })
	return k
}

// Select selects a node by id; an unknown id clears the selection.
func (s *Session) Select(id string) bool {
	ok := false
	s.update(func() { ok = s.ctl.Select(id) })
	return ok
}

// Resize sets where the drawing element sits on screen and how large it is
// displayed.
func (s *Session) Resize(bounds geom.Rect) {
	s.update(func() { s.view.Resize(bounds) })
}

// SetBuffer changes the logical drawing-buffer size.
func (s *Session) SetBuffer(w, h float64) {
	s.update(func() { s.view.Buffer = view.Size{W: w, H: h} })
}

// Navigate passes the selected entity to nav. The callback runs without
// the session lock held.
func (s *Session) Navigate(nav interact.Navigator) bool {
	s.mu.Lock()
	var target *graph.Node
	if n := s.ctl.Selection(); n != nil {
		c := *n
		target = &c
	}
	s.mu.Unlock()
	return nav.Navigate(target)
}

// NodeAt returns a copy of the visible node under a screen point.
func (s *Session) NodeAt(sx, sy float64) (graph.Node, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := s.ctl.NodeAt(sx, sy); n != nil {
		return *n, true
	}
	return graph.Node{}, false
}

// Frame returns a snapshot of everything a redraw needs. The graph is
// copied, so the frame stays valid while the simulation runs on.
func (s *Session) Frame() render.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame(s.g.Clone())
}

func (s *Session) frame(g *graph.Graph) render.Frame {
	return render.Frame{
		Graph:    g,
		View:     *s.view,
		Filter:   s.ctl.Filter(),
		Selected: s.ctl.Selected(),
		Hovered:  s.ctl.Hovered(),
		Focus:    s.ctl.Focus(),
	}
}

// Draw calls fn with the current frame under the session lock, without
// copying the graph. fn must not call back into the session.
func (s *Session) Draw(fn func(render.Frame)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.frame(s.g))
}

// Running reports whether the simulation loop is scheduled.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loop.State() == physics.Running
}

// Stats returns statistics of the current graph.
func (s *Session) Stats(top int) graph.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.g.Stats(top)
}

// Close stops the simulation. Later events are ignored. Close is
// idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	if !s.closed {
		s.stop()
		s.closed = true
	}
	s.mu.Unlock()

	s.subMu.Lock()
	clear(s.subs)
	s.subMu.Unlock()
}
