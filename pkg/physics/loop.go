package physics

import (
	"time"
)

// State is the run state of a Loop.
type State int

const (
	Idle State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "idle"
}

// Loop drives a Simulation one frame at a time through a Scheduler. It never
// blocks: every executed frame schedules the next one.
//
// A Loop is not safe for concurrent use. Callers serialise EnsureRunning,
// Stop and the scheduled callbacks, typically by running them all under the
// same lock or on the same event goroutine.
type Loop struct {
	sim   *Simulation
	sched Scheduler

	// Active reports whether a drag or pan is in progress. While it returns
	// true the loop never goes idle.
	Active func() bool

	// OnFrame is called after every executed step with its displacement.
	OnFrame func(displacement float64)

	// OnIdle is called when the loop stops because the layout settled.
	OnIdle func()

	state   State
	cancel  func()
	gen     uint64 // bumped on every start and stop
	last    time.Time
	frames  uint64
	skipped uint64
}

// NewLoop returns an idle loop.
func NewLoop(sim *Simulation, sched Scheduler) *Loop {
	return &Loop{sim: sim, sched: sched}
}

// State returns the current run state.
func (l *Loop) State() State { return l.state }

// Frames returns the number of executed frames.
func (l *Loop) Frames() uint64 { return l.frames }

// Skipped returns the number of frames dropped by the frame governor.
func (l *Loop) Skipped() uint64 { return l.skipped }

// Simulation returns the simulation the loop drives.
func (l *Loop) Simulation() *Simulation { return l.sim }

// EnsureRunning starts the loop unless it is already running or the graph
// is empty. It never schedules a second callback.
func (l *Loop) EnsureRunning() {
	if l.state == Running || l.sim.Graph().Empty() {
		return
	}
	l.state = Running
	l.gen++
	l.last = time.Time{}
	l.sim.ResetStability()
	l.schedule()
}

// Stop cancels the pending callback and leaves the loop idle.
func (l *Loop) Stop() {
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.state = Idle
	l.gen++
}

// schedule arranges the next tick. A callback the scheduler could not take
// back runs as a no-op once the loop was stopped or restarted after it.
func (l *Loop) schedule() {
	gen := l.gen
	l.cancel = l.sched.Schedule(func(now time.Time) {
		if gen != l.gen {
			return
		}
		l.tick(now)
	})
}

func (l *Loop) active() bool {
	return l.Active != nil && l.Active()
}

func (l *Loop) tick(now time.Time) {
	l.cancel = nil
	if l.state != Running {
		return
	}
	if l.sim.Graph().Empty() {
		l.state = Idle
		return
	}

	interval := l.sim.Profile().FrameInterval
	if !l.last.IsZero() && now.Sub(l.last) < interval {
		l.skipped++
		l.schedule()
		return
	}
	l.last = now

	d := l.sim.Step()
	l.frames++
	if l.OnFrame != nil {
		l.OnFrame(d)
	}

	if l.sim.Stable() && !l.active() {
		l.state = Idle
		if l.OnIdle != nil {
			l.OnIdle()
		}
		return
	}

	l.schedule()
}
