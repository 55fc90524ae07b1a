package main

import (
	"context"
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/reseau/pkg/geom"
	"github.com/ha1tch/reseau/pkg/graph"
	"github.com/ha1tch/reseau/pkg/interact"
	"github.com/ha1tch/reseau/pkg/medias"
	"github.com/ha1tch/reseau/pkg/metrics"
	"github.com/ha1tch/reseau/pkg/physics"
	"github.com/ha1tch/reseau/pkg/reseau"
	"github.com/ha1tch/reseau/pkg/view"
)

var (
	canalX = graph.NodeID(graph.KindMedia, "Canal X")
	alice  = graph.NodeID(graph.KindPerson, "Alice")
)

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

type testViewer struct {
	*Viewer
	sim   tcell.SimulationScreen
	sched *physics.ManualScheduler
	reg   *metrics.Registry
}

func newTestViewer(t *testing.T) *testViewer {
	t.Helper()
	sim := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, sim.Init())
	sim.SetSize(120, 42)
	t.Cleanup(sim.Fini)

	reg := metrics.NewRegistry()
	v := newViewer(sim, viewerOptions{
		BufferWidth: 800,
		Labels:      true,
		Background:  colorful.Color{R: 1, G: 1, B: 1},
		Metrics:     reg,
	})
	sched := physics.NewManualScheduler(time.Unix(0, 0), physics.DefaultFramePeriod)
	v.session = reseau.New(reseau.Options{Scheduler: sched, Width: 800, Height: 600, Metrics: reg})
	t.Cleanup(v.session.Close)
	return &testViewer{Viewer: v, sim: sim, sched: sched, reg: reg}
}

// ready loads the scenario and lets it settle.
func (tv *testViewer) ready(t *testing.T) {
	t.Helper()
	tv.onLoaded(loaded{ds: scenario()})
	tv.sched.Run(5000)
	tv.render()
}

func (tv *testViewer) render() {
	tv.draw()
	tv.sim.Show()
}

func (tv *testViewer) text() string {
	cells, w, h := tv.sim.GetContents()
	var b strings.Builder
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r := cells[y*w+x].Runes
			if len(r) == 0 {
				r = []rune{' '}
			}
			b.WriteString(string(r))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// cellOf returns the cell a node is displayed in.
func (tv *testViewer) cellOf(t *testing.T, id string) (int, int) {
	t.Helper()
	f := tv.session.Frame()
	n := f.Graph.Node(id)
	require.NotNil(t, n, id)
	p := f.View.ToScreen(n.Pos)
	x, y := int(p.X), int(p.Y)
	require.True(t, tv.inCanvas(x, y), "%s at %v is off the canvas", id, p)
	return x, y
}

func (tv *testViewer) mouse(x, y int, b tcell.ButtonMask) {
	tv.handleMouse(tcell.NewEventMouse(x, y, b, tcell.ModNone))
}

func (tv *testViewer) key(k tcell.Key) bool {
	return tv.handleKey(tcell.NewEventKey(k, 0, tcell.ModNone))
}

func (tv *testViewer) runes(s string) {
	for _, r := range s {
		tv.handleKey(tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
	}
}

func TestNotices(t *testing.T) {
	tv := newTestViewer(t)
	tv.render()
	assert.Contains(t, tv.text(), "Chargement des données…")
	assert.Contains(t, tv.text(), "Q:Quit")

	tv.onLoaded(loaded{err: errors.New("boom")})
	tv.render()
	assert.Contains(t, tv.text(), "Impossible de charger les données")

	tv = newTestViewer(t)
	tv.onLoaded(loaded{ds: medias.Dataset{}})
	tv.render()
	assert.Contains(t, tv.text(), "Aucune donnée disponible")
	assert.False(t, tv.session.Running())
}

func TestLayoutDerivesBuffer(t *testing.T) {
	tv := newTestViewer(t)
	tv.ready(t)

	assert.Equal(t, 120, tv.cols)
	assert.Equal(t, 40, tv.rows)
	f := tv.session.Frame()
	assert.Equal(t, geom.Rect{W: 120, H: 40}, f.View.Bounds)
	assert.Equal(t, 800.0, f.View.Buffer.W)
	assert.InDelta(t, 800.0*80/120, f.View.Buffer.H, 1e-9)

	tv.panel = true
	tv.render()
	assert.Equal(t, 120-panelWidth, tv.cols)
}

func TestBlitHalfBlocks(t *testing.T) {
	tv := newTestViewer(t)
	tv.cols, tv.rows = 2, 1
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.SetRGBA(0, 0, color.RGBA{255, 0, 0, 255})
	img.SetRGBA(0, 1, color.RGBA{0, 0, 255, 255})
	img.SetRGBA(1, 0, color.RGBA{0, 255, 0, 255})
	img.SetRGBA(1, 1, color.RGBA{255, 255, 255, 255})

	tv.blit(img)
	tv.sim.Show()
	cells, w, _ := tv.sim.GetContents()

	tests := []struct {
		x      int
		fg, bg tcell.Color
	}{
		{0, tcell.NewRGBColor(255, 0, 0), tcell.NewRGBColor(0, 0, 255)},
		{1, tcell.NewRGBColor(0, 255, 0), tcell.NewRGBColor(255, 255, 255)},
	}
	for _, tt := range tests {
		c := cells[tt.x]
		assert.Equal(t, []rune{halfBlock}, c.Runes)
		fg, bg, _ := c.Style.Decompose()
		assert.Equal(t, tt.fg, fg, "fg at %d", tt.x)
		assert.Equal(t, tt.bg, bg, "bg at %d", tt.x)
	}
	assert.Equal(t, 120, w)
}

func TestDrawLabel(t *testing.T) {
	tv := newTestViewer(t)
	tv.cols, tv.rows = 20, 10
	img := image.NewRGBA(image.Rect(0, 0, 20, 20))

	tv.drawLabel(img, label{text: "Alice", centre: geom.Vec{X: 10.5, Y: 5}, bottom: geom.Vec{X: 10.5, Y: 5.6}})
	tv.drawLabel(img, label{text: "Bas", centre: geom.Vec{X: 10, Y: 9}, bottom: geom.Vec{X: 10, Y: 9.5}})
	tv.sim.Show()

	lines := strings.Split(tv.text(), "\n")
	assert.Equal(t, "Alice", lines[6][8:13])
	assert.NotContains(t, tv.text(), "Bas")
}

func TestLabelsToggle(t *testing.T) {
	tv := newTestViewer(t)
	tv.ready(t)
	assert.Contains(t, tv.text(), "3 nœuds, 3 liens (1 orphelins)")

	tv.runes("l")
	tv.render()
	text := tv.text()
	for _, name := range []string{"Canal X", "Alice", "Org Y"} {
		assert.NotContains(t, text, name)
	}
}

func TestDrawRecordsRender(t *testing.T) {
	tv := newTestViewer(t)
	tv.ready(t)
	tv.render()

	var m dto.Metric
	require.NoError(t, tv.reg.RendersTotal.WithLabelValues("term").Write(&m))
	assert.Equal(t, 2.0, m.Counter.GetValue())
}

func TestMouseSelectAndHover(t *testing.T) {
	tv := newTestViewer(t)
	tv.ready(t)
	x, y := tv.cellOf(t, canalX)

	tv.mouse(x, y, tcell.ButtonNone)
	assert.Equal(t, "Canal X", tv.hover)

	tv.mouse(x, y, tcell.ButtonPrimary)
	tv.mouse(x, y, tcell.ButtonNone)
	assert.Equal(t, canalX, tv.session.Frame().Selected)

	tv.render()
	assert.Contains(t, tv.text(), "Canal X")

	// A click on empty canvas clears the selection.
	tv.mouse(0, 0, tcell.ButtonPrimary)
	tv.mouse(0, 0, tcell.ButtonNone)
	assert.Empty(t, tv.session.Frame().Selected)
}

func TestMouseDragMovesNode(t *testing.T) {
	tv := newTestViewer(t)
	tv.ready(t)
	x, y := tv.cellOf(t, alice)

	tv.mouse(x, y, tcell.ButtonPrimary)
	tv.mouse(x+5, y+2, tcell.ButtonPrimary)
	f := tv.session.Frame()
	want := f.View.ToWorld(cellCentre(x+5, y+2))
	got := f.Graph.Node(alice).Pos
	assert.InDelta(t, want.X, got.X, 1e-9)
	assert.InDelta(t, want.Y, got.Y, 1e-9)
	tv.mouse(x+5, y+2, tcell.ButtonNone)
	assert.True(t, tv.session.Running())
}

func TestMousePanAndWheel(t *testing.T) {
	tv := newTestViewer(t)
	tv.ready(t)

	before := tv.session.Frame().View.Pan
	tv.mouse(1, 1, tcell.ButtonSecondary)
	tv.mouse(11, 1, tcell.ButtonSecondary)
	tv.mouse(11, 1, tcell.ButtonNone)
	after := tv.session.Frame().View.Pan
	assert.InDelta(t, 10*800.0/120, after.X-before.X, 1e-9)
	assert.InDelta(t, 0, after.Y-before.Y, 1e-9)

	tv.mouse(60, 20, tcell.WheelUp)
	assert.InDelta(t, view.ZoomStep, tv.session.Frame().View.Zoom, 1e-9)
	tv.mouse(60, 20, tcell.WheelDown)
	assert.InDelta(t, 1, tv.session.Frame().View.Zoom, 1e-9)

	// Events outside the canvas are ignored.
	tv.mouse(60, 41, tcell.WheelUp)
	assert.InDelta(t, 1, tv.session.Frame().View.Zoom, 1e-9)
}

func TestPointerButton(t *testing.T) {
	assert.Equal(t, interact.ButtonPrimary, pointerButton(tcell.ButtonPrimary))
	assert.Equal(t, interact.ButtonSecondary, pointerButton(tcell.ButtonSecondary))
	assert.Equal(t, interact.ButtonMiddle, pointerButton(tcell.ButtonMiddle))
}

func TestKeys(t *testing.T) {
	tv := newTestViewer(t)
	tv.ready(t)

	tv.runes("+")
	assert.InDelta(t, view.ZoomStep, tv.session.Frame().View.Zoom, 1e-9)
	tv.runes("0")
	assert.InDelta(t, 1, tv.session.Frame().View.Zoom, 1e-9)

	tv.key(tcell.KeyTab)
	assert.Equal(t, graph.KindMedia, tv.session.Frame().Filter.Kind)
	assert.Equal(t, "Médias", tv.message)

	tv.runes("p")
	assert.Equal(t, interact.ToolPan, tv.tool)
	assert.Equal(t, "PAN · Médias", tv.modeString())
	tv.runes("s")
	assert.Equal(t, interact.ToolSelect, tv.tool)

	tv.runes("c")
	assert.Equal(t, "Aucune sélection", tv.message)

	before := tv.session.Frame().View.Pan
	tv.key(tcell.KeyLeft)
	assert.Greater(t, tv.session.Frame().View.Pan.X, before.X)

	assert.False(t, tv.runesQuit("x"))
	assert.True(t, tv.runesQuit("q"))
	assert.True(t, tv.key(tcell.KeyCtrlC))
}

func (tv *testViewer) runesQuit(s string) bool {
	return tv.handleKey(tcell.NewEventKey(tcell.KeyRune, []rune(s)[0], tcell.ModNone))
}

func TestSearch(t *testing.T) {
	tv := newTestViewer(t)
	tv.ready(t)

	tv.runes("/")
	assert.Equal(t, ModeSearch, tv.mode)
	tv.runes("alq")
	tv.key(tcell.KeyBackspace2)
	assert.Equal(t, "al", tv.session.Frame().Filter.Query)

	// q is text while searching.
	assert.False(t, tv.runesQuit("q"))
	tv.key(tcell.KeyBackspace2)

	tv.render()
	assert.Contains(t, tv.text(), "Rechercher: al_")
	tv.key(tcell.KeyEnter)
	assert.Equal(t, ModeCanvas, tv.mode)
	assert.Equal(t, "«al»", tv.modeString())

	tv.render()
	assert.Contains(t, tv.text(), "Alice")
	assert.NotContains(t, tv.text(), "Org Y")

	tv.key(tcell.KeyEscape)
	assert.Empty(t, tv.session.Frame().Filter.Query)
}

func TestNavigateOpensPanel(t *testing.T) {
	tv := newTestViewer(t)
	tv.ready(t)

	tv.key(tcell.KeyEnter)
	assert.False(t, tv.panel)
	assert.Equal(t, "Sélectionnez une entité", tv.message)

	require.True(t, tv.session.Select(canalX))
	tv.key(tcell.KeyEnter)
	require.True(t, tv.panel)
	assert.Equal(t, graph.KindMedia, tv.panelKind)
	assert.Equal(t, "Canal X", tv.panelTitle)

	tv.render()
	text := tv.text()
	assert.Contains(t, text, "Médias")
	assert.Contains(t, text, "Télévision")
	assert.Contains(t, text, "Alice, Org Y")
	assert.Contains(t, text, "Esc:Close")

	tv.key(tcell.KeyEscape)
	assert.False(t, tv.panel)
}

func TestFocusKey(t *testing.T) {
	tv := newTestViewer(t)
	tv.ready(t)
	require.True(t, tv.session.Select(alice))

	tv.runes("f")
	assert.True(t, tv.session.Frame().Focus)
	assert.Equal(t, "FOCUS", tv.modeString())
	tv.runes("f")
	assert.False(t, tv.session.Frame().Focus)
}

func TestPostRunsOnEventLoop(t *testing.T) {
	tv := newTestViewer(t)
	ran := false
	tv.post(func() { ran = true })

	for !ran {
		tv.handleEvent(tv.sim.PollEvent())
	}
	assert.True(t, ran)
}

func TestLoadPostsResult(t *testing.T) {
	tv := newTestViewer(t)
	go tv.load(context.Background(), func(context.Context) (medias.Dataset, error) {
		return scenario(), nil
	})

	for tv.state == stateLoading {
		tv.handleEvent(tv.sim.PollEvent())
	}
	assert.Equal(t, stateReady, tv.state)
	assert.Equal(t, 3, tv.stats.Nodes)
}

func TestLoadWaitsForFullQueue(t *testing.T) {
	tv := newTestViewer(t)
	queued := 0
	for tv.sim.PostEvent(tcell.NewEventInterrupt(nil)) == nil {
		queued++
	}
	require.Positive(t, queued)

	go tv.load(context.Background(), func(context.Context) (medias.Dataset, error) {
		return scenario(), nil
	})

	for tv.state == stateLoading {
		tv.handleEvent(tv.sim.PollEvent())
	}
	assert.Equal(t, stateReady, tv.state)
}

func TestLoadGivesUpWhenCancelled(t *testing.T) {
	tv := newTestViewer(t)
	for tv.sim.PostEvent(tcell.NewEventInterrupt(nil)) == nil {
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		tv.load(ctx, func(context.Context) (medias.Dataset, error) {
			return scenario(), nil
		})
		close(done)
	}()

	time.Sleep(3 * loadRepost)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("load still posting after cancel")
	}
	assert.Equal(t, stateLoading, tv.state)
}

func TestWrap(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  []string
	}{
		{"Alice, Org Y", 20, []string{"Alice, Org Y"}},
		{"Alice, Org Y", 6, []string{"Alice,", "Org Y"}},
		{"Télévisions", 5, []string{"Télév", "ision", "s"}},
		{"", 10, nil},
		{"x", 0, nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, wrap(tt.in, tt.width), "%q/%d", tt.in, tt.width)
	}
	assert.Equal(t, "Organisati…", truncate("Organisations", 11))
}
