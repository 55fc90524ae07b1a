package reseau

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/reseau/pkg/geom"
	"github.com/ha1tch/reseau/pkg/graph"
	"github.com/ha1tch/reseau/pkg/interact"
	"github.com/ha1tch/reseau/pkg/medias"
	"github.com/ha1tch/reseau/pkg/metrics"
	"github.com/ha1tch/reseau/pkg/physics"
	"github.com/ha1tch/reseau/pkg/render"
)

var (
	canalX = graph.NodeID(graph.KindMedia, "Canal X")
	alice  = graph.NodeID(graph.KindPerson, "Alice")
	orgY   = graph.NodeID(graph.KindOrganisation, "Org Y")
)

// scenario has Bob as an owner with no record of his own.
func scenario() medias.Dataset {
	return medias.Dataset{
		Medias: []medias.Media{{
			Name: "Canal X",
			Type: "Télévision",
			Owners: []medias.Owner{
				{Name: "Alice", Type: medias.OwnerPerson, Value: "60%"},
				{Name: "Org Y", Type: medias.OwnerOrganisation, Value: "100%"},
			},
		}},
		Personnes: []medias.Personne{{
			Name:        "Alice",
			DirectMedia: []medias.HeldMedia{{Name: "Canal X", Value: "60%"}},
		}},
		Organisations: []medias.Organisation{{
			Name:   "Org Y",
			Owners: []medias.Owner{{Name: "Bob", Type: medias.OwnerPerson, Value: "40%"}},
			Media:  []medias.OwnedMedia{{Name: "Canal X", Value: "100%"}},
		}},
	}
}

func newSession(t *testing.T) (*Session, *physics.ManualScheduler, *metrics.Registry) {
	t.Helper()
	sched := physics.NewManualScheduler(time.Unix(0, 0), physics.DefaultFramePeriod)
	reg := metrics.NewRegistry()
	s := New(Options{Scheduler: sched, Metrics: reg})
	t.Cleanup(s.Close)
	return s, sched, reg
}

func value(t *testing.T, c prometheus.Metric) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	if m.Counter != nil {
		return m.Counter.GetValue()
	}
	return m.Gauge.GetValue()
}

func nodePos(t *testing.T, s *Session, id string) geom.Vec {
	t.Helper()
	n := s.Frame().Graph.Node(id)
	require.NotNil(t, n, id)
	return n.Pos
}

func TestLoadRunsUntilSettled(t *testing.T) {
	s, sched, reg := newSession(t)

	st := s.Load(scenario())
	assert.Equal(t, 3, st.Nodes)
	assert.Equal(t, 3, st.Edges)
	assert.Equal(t, 1, st.Dangling)
	assert.True(t, s.Running())
	assert.Equal(t, 1.0, value(t, reg.SimulationRunning))

	frames := sched.Run(5000)
	assert.Less(t, frames, 5000)
	assert.False(t, s.Running())
	assert.Equal(t, 0, sched.Pending())

	assert.Equal(t, float64(frames), value(t, reg.SimulationStepsTotal))
	assert.Equal(t, 1.0, value(t, reg.SimulationSettledTotal))
	assert.Equal(t, 0.0, value(t, reg.SimulationRunning))
	assert.Equal(t, 1.0, value(t, reg.GraphDangling))
}

func TestEmptyLoadStops(t *testing.T) {
	s, sched, reg := newSession(t)
	s.Load(scenario())
	sched.Run(10)
	require.True(t, s.Running())

	st := s.Load(medias.Dataset{})
	assert.Zero(t, st.Nodes)
	assert.False(t, s.Running())
	assert.Equal(t, 0, sched.Pending())
	assert.Equal(t, 0.0, value(t, reg.SimulationRunning))
	assert.Empty(t, s.State().Nodes)
}

func TestRestartNeverDoubleSchedules(t *testing.T) {
	s, sched, _ := newSession(t)
	s.Load(scenario())

	p := nodePos(t, s, canalX)
	s.PointerDown(p.X, p.Y, interact.ButtonPrimary)
	s.PointerUp()
	s.BeginPan(10, 10)
	s.EndPan()

	assert.Equal(t, 1, sched.Pending())
}

func TestDragKeepsLoopAwake(t *testing.T) {
	s, sched, _ := newSession(t)
	s.Load(scenario())
	sched.Run(5000)
	require.False(t, s.Running())

	p := nodePos(t, s, alice)
	s.PointerDown(p.X, p.Y, interact.ButtonPrimary)
	assert.True(t, s.Running(), "beginning a drag restarts the simulation")
	assert.Equal(t, alice, s.State().Interaction.Selected)

	s.PointerMove(100, 120)
	assert.Equal(t, 2000, sched.Run(2000), "never idles while dragging")
	assert.Equal(t, geom.Vec{X: 100, Y: 120}, nodePos(t, s, alice))

	s.PointerUp()
	assert.Less(t, sched.Run(5000), 5000)
	assert.False(t, s.Running())
}

func TestApplyDrag(t *testing.T) {
	s, sched, _ := newSession(t)
	s.Load(scenario())

	assert.False(t, s.ApplyDrag("media-Nowhere", geom.Vec{}))

	target := geom.Vec{X: 120, Y: 80}
	require.True(t, s.ApplyDrag(orgY, target))
	sched.Run(100)
	assert.Equal(t, target, nodePos(t, s, orgY))
	assert.True(t, s.Running())

	s.ReleaseDrag()
	sched.Run(5)
	assert.NotEqual(t, target, nodePos(t, s, orgY))
}

func TestPanRoundTrip(t *testing.T) {
	s, _, _ := newSession(t)
	s.Load(scenario())

	s.BeginPan(0, 0)
	assert.Equal(t, "pan", s.State().Interaction.Gesture)
	s.UpdatePan(10, 20)
	s.UpdatePan(15, 20)
	s.EndPan()

	st := s.State()
	assert.Equal(t, 15.0, st.View.PanX)
	assert.Equal(t, 20.0, st.View.PanY)
	assert.Equal(t, "none", st.Interaction.Gesture)
}

func TestTouchPanCommitsOnce(t *testing.T) {
	s, _, _ := newSession(t)
	s.Load(scenario())

	s.TouchStart([]interact.Touch{{X: 5, Y: 5}})
	s.TouchMove([]interact.Touch{{X: 25, Y: 15}})
	st := s.State()
	assert.Equal(t, 20.0, st.View.PresentX)
	assert.Zero(t, st.View.PanX)

	s.TouchEnd()
	st = s.State()
	assert.Equal(t, 20.0, st.View.PanX)
	assert.Equal(t, 10.0, st.View.PanY)
	assert.Zero(t, st.View.PresentX)
}

func TestFocusState(t *testing.T) {
	s, _, _ := newSession(t)
	s.Load(scenario())

	require.True(t, s.Select(alice))
	assert.True(t, s.ToggleFocus())

	st := s.State()
	dimmed := map[string]bool{}
	for _, n := range st.Nodes {
		dimmed[n.ID] = n.Dimmed
	}
	assert.Equal(t, map[string]bool{alice: false, canalX: false, orgY: true}, dimmed)
	for _, e := range st.Edges {
		assert.Equal(t, e.Source == orgY, e.Dimmed, "%s -> %s", e.Source, e.Target)
	}
	require.NotEmpty(t, st.Details)
	assert.Equal(t, "Médias directs", st.Details[1].Key)
}

func TestFilterState(t *testing.T) {
	s, _, _ := newSession(t)
	s.Load(scenario())

	s.SetFilter(graph.KindMedia)
	st := s.State()
	require.Len(t, st.Nodes, 1)
	assert.Empty(t, st.Edges)

	s.SetFilter("")
	s.SetSearch("ali")
	st = s.State()
	require.Len(t, st.Nodes, 1)
	assert.Equal(t, alice, st.Nodes[0].ID)

	s.SetSearch("a")
	assert.Len(t, s.State().Nodes, 3, "one character does not filter")

	assert.Equal(t, graph.KindMedia, s.CycleFilter())
}

func TestZoomState(t *testing.T) {
	s, _, _ := newSession(t)
	for range 10 {
		s.ZoomIn()
	}
	assert.Equal(t, 3.0, s.State().View.Zoom)
	s.ResetView()
	assert.Equal(t, 1.0, s.State().View.Zoom)
	assert.False(t, s.CentreOnSelection())
}

func TestStateJSON(t *testing.T) {
	s, _, _ := newSession(t)
	s.Load(scenario())
	s.Select(canalX)

	data, err := json.Marshal(s.State())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "nodes")
	assert.Contains(t, decoded, "interaction")
	assert.Equal(t, "standard", decoded["simulation"].(map[string]any)["profile"])
}

func TestSubscribe(t *testing.T) {
	s, sched, _ := newSession(t)
	var calls int
	cancel := s.Subscribe(func() {
		calls++
		_ = s.Frame() // the lock is released
	})

	s.Load(scenario())
	assert.Equal(t, 1, calls)
	sched.Advance()
	assert.Equal(t, 2, calls)
	s.ZoomIn()
	assert.Equal(t, 3, calls)

	cancel()
	s.ZoomOut()
	assert.Equal(t, 3, calls)
}

func TestFrameIsSnapshot(t *testing.T) {
	s, _, _ := newSession(t)
	s.Load(scenario())

	f := s.Frame()
	before := f.Graph.Node(canalX).Pos
	s.Step()
	assert.Equal(t, before, f.Graph.Node(canalX).Pos)
	assert.NotEqual(t, before, nodePos(t, s, canalX))

	var live geom.Vec
	s.Draw(func(f render.Frame) { live = f.Graph.Node(canalX).Pos })
	assert.Equal(t, nodePos(t, s, canalX), live)
}

func TestClose(t *testing.T) {
	s, sched, _ := newSession(t)
	s.Load(scenario())
	var calls int
	s.Subscribe(func() { calls++ })

	s.Close()
	s.Close()
	assert.False(t, s.Running())
	assert.Equal(t, 0, sched.Pending())

	s.ZoomIn()
	s.Load(scenario())
	assert.Zero(t, calls)
	assert.Equal(t, 1.0, s.State().View.Zoom)
}

func TestNavigate(t *testing.T) {
	s, _, _ := newSession(t)
	s.Load(scenario())

	var got string
	nav := interact.Navigator{OnMedia: func(name string) { got = name }}
	assert.False(t, s.Navigate(nav))

	s.Select(canalX)
	assert.True(t, s.Navigate(nav))
	assert.Equal(t, "Canal X", got)

	label, details, ok := s.SelectionDetails()
	require.True(t, ok)
	assert.Equal(t, "Canal X", label)
	assert.Equal(t, Detail{Key: "Prix", Value: NotSpecified}, details[1])
}

func TestConcurrentInput(t *testing.T) {
	s := New(Options{
		Scheduler: &physics.TimerScheduler{Period: time.Millisecond},
		Profile:   physics.LowPowerProfile(),
	})
	defer s.Close()

	var frames atomic.Int64
	s.Subscribe(func() { frames.Add(1) })
	s.Load(scenario())

	var wg sync.WaitGroup
	for i := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 50 {
				s.PointerMove(float64(i*100+j), float64(j))
				_ = s.Frame()
				_ = s.State()
			}
		}()
	}
	wg.Wait()

	require.Eventually(t, func() bool { return frames.Load() > 200 }, 2*time.Second, 5*time.Millisecond)
}
