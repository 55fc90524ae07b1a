package physics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Scheduler delivers frame callbacks. Schedule arranges for fn to run once
// at the next display frame and returns a function cancelling it. Calling
// cancel after fn ran is harmless.
type Scheduler interface {
	Schedule(fn func(now time.Time)) (cancel func())
}

// TimerScheduler fires one callback per Period using time.AfterFunc. When
// Post is set the callback is handed to it instead of running on the timer
// goroutine, so a host can execute it on its own event loop. A cancelled
// callback that was already posted does nothing when it finally runs.
type TimerScheduler struct {
	Period time.Duration
	Post   func(func())
}

// DefaultFramePeriod approximates a 60 Hz display.
const DefaultFramePeriod = time.Second / 60

// Schedule implements Scheduler.
func (s *TimerScheduler) Schedule(fn func(now time.Time)) func() {
	period := s.Period
	if period <= 0 {
		period = DefaultFramePeriod
	}

	var cancelled atomic.Bool
	run := func() {
		if cancelled.Load() {
			return
		}
		fn(time.Now())
	}

	t := time.AfterFunc(period, func() {
		if s.Post != nil {
			s.Post(run)
			return
		}
		run()
	})

	return func() {
		cancelled.Store(true)
		t.Stop()
	}
}

// ManualScheduler is a Scheduler driven explicitly, for tests and headless
// runs. Each Advance moves its clock forward by Period and runs the
// callbacks pending at that moment.
type ManualScheduler struct {
	Period time.Duration

	mu      sync.Mutex
	now     time.Time
	pending []*manualTask
}

type manualTask struct {
	fn        func(time.Time)
	cancelled bool
}

// NewManualScheduler returns a scheduler whose clock starts at start.
func NewManualScheduler(start time.Time, period time.Duration) *ManualScheduler {
	if period <= 0 {
		period = DefaultFramePeriod
	}
	return &ManualScheduler{Period: period, now: start}
}

// Schedule implements Scheduler.
func (m *ManualScheduler) Schedule(fn func(now time.Time)) func() {
	task := &manualTask{fn: fn}

	m.mu.Lock()
	m.pending = append(m.pending, task)
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		task.cancelled = true
		m.mu.Unlock()
	}
}

// Now returns the scheduler's clock.
func (m *ManualScheduler) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Pending returns the number of callbacks waiting for the next frame.
func (m *ManualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.pending {
		if !t.cancelled {
			n++
		}
	}
	return n
}

// Advance runs one frame. Callbacks scheduled while it runs wait for the
// next frame. It reports whether any callback ran.
func (m *ManualScheduler) Advance() bool {
	m.mu.Lock()
	m.now = m.now.Add(m.Period)
	now := m.now
	tasks := m.pending
	m.pending = nil
	m.mu.Unlock()

	ran := false
	for _, t := range tasks {
		m.mu.Lock()
		cancelled := t.cancelled
		m.mu.Unlock()
		if cancelled {
			continue
		}
		t.fn(now)
		ran = true
	}
	return ran
}

// Run advances frames until nothing is pending or max frames have run, and
// returns the number of frames advanced.
func (m *ManualScheduler) Run(max int) int {
	frames := 0
	for frames < max && m.Pending() > 0 {
		m.Advance()
		frames++
	}
	return frames
}
