package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ha1tch/reseau/pkg/geom"
	"github.com/ha1tch/reseau/pkg/graph"
	"github.com/ha1tch/reseau/pkg/interact"
	"github.com/ha1tch/reseau/pkg/logger"
	"github.com/ha1tch/reseau/pkg/medias"
	"github.com/ha1tch/reseau/pkg/metrics"
	"github.com/ha1tch/reseau/pkg/reseau"
	"github.com/ha1tch/reseau/pkg/view"
)

// Mode is the input mode of the viewer.
type Mode int

const (
	ModeCanvas Mode = iota
	ModeSearch
)

// MessageType selects how a status message is drawn.
type MessageType int

const (
	MsgInfo MessageType = iota
	MsgError
	MsgSuccess
)

type loadState int

const (
	stateLoading loadState = iota
	stateReady
	stateFailed
)

// loaded is posted to the event loop once the dataset is read.
type loaded struct {
	ds  medias.Dataset
	err error
}

const (
	panelWidth = 34
	barRows    = 2 // help and status bars
)

type viewerOptions struct {
	BufferWidth float64
	Labels      bool
	Background  colorful.Color
	Metrics     *metrics.Registry
}

// Viewer hosts one session on a tcell screen.
type Viewer struct {
	screen  tcell.Screen
	session *reseau.Session
	metrics *metrics.Registry

	bufferWidth float64
	background  colorful.Color
	labels      bool

	state   loadState
	loadErr error
	stats   graph.Stats

	mode        Mode
	inputBuffer string
	tool        interact.Tool
	buttons     tcell.ButtonMask // buttons held at the last mouse event
	hover       string           // label of the node under the mouse

	panel        bool
	panelTitle   string
	panelKind    graph.Kind
	panelDetails []reseau.Detail

	message     string
	messageType MessageType
	messageAt   time.Time

	cols, rows int // canvas size in cells
}

func newViewer(screen tcell.Screen, opts viewerOptions) *Viewer {
	if opts.BufferWidth <= 0 {
		opts.BufferWidth = 800
	}
	return &Viewer{
		screen:      screen,
		metrics:     opts.Metrics,
		bufferWidth: opts.BufferWidth,
		background:  opts.Background,
		labels:      opts.Labels,
	}
}

// post hands a frame callback to the event loop. When the event queue is
// full the callback runs on the timer goroutine instead; the session locks
// around it either way, only the redraw is lost.
func (v *Viewer) post(fn func()) {
	if err := v.screen.PostEvent(tcell.NewEventInterrupt(fn)); err != nil {
		fn()
	}
}

// loadRepost spaces attempts to hand the dataset to a full event queue.
const loadRepost = 10 * time.Millisecond

// load reads the dataset off the event loop and posts the result. While the
// event queue is full it keeps trying until ctx is done.
func (v *Viewer) load(ctx context.Context, fn func(context.Context) (medias.Dataset, error)) {
	ds, err := fn(ctx)
	ev := tcell.NewEventInterrupt(loaded{ds: ds, err: err})
	for ctx.Err() == nil {
		if v.screen.PostEvent(ev) == nil {
			return
		}
		select {
		case <-ctx.Done():
		case <-time.After(loadRepost):
		}
	}
}

func (v *Viewer) onLoaded(l loaded) {
	if l.err != nil {
		v.state = stateFailed
		v.loadErr = l.err
		v.showMessage("Impossible de charger les données", MsgError)
		logger.Error("load dataset", "err", l.err)
		return
	}
	v.state = stateReady
	v.stats = v.session.Load(l.ds)
	v.showMessage("Données chargées", MsgSuccess)
	logger.Info("dataset loaded", "nodes", v.stats.Nodes, "edges", v.stats.Edges, "dangling", v.stats.Dangling)
}

func (v *Viewer) run() {
	for {
		v.draw()
		v.screen.Show()

		ev := v.screen.PollEvent()
		if ev == nil {
			return
		}
		if v.handleEvent(ev) {
			return
		}
	}
}

// handleEvent dispatches one event and reports whether the viewer should
// quit.
func (v *Viewer) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		v.screen.Sync()
	case *tcell.EventKey:
		return v.handleKey(ev)
	case *tcell.EventMouse:
		v.handleMouse(ev)
	case *tcell.EventInterrupt:
		switch data := ev.Data().(type) {
		case func():
			data()
		case loaded:
			v.onLoaded(data)
		}
	}
	return false
}

// layout sizes the canvas to the screen and keeps the session's buffer at
// the configured width with the canvas's aspect ratio. Each cell holds two
// pixels stacked vertically.
func (v *Viewer) layout() {
	w, h := v.screen.Size()
	cols, rows := w, h-barRows
	if v.panel {
		cols -= panelWidth
	}
	cols, rows = max(cols, 1), max(rows, 1)
	if cols == v.cols && rows == v.rows {
		return
	}
	v.cols, v.rows = cols, rows
	if v.session == nil {
		return
	}
	v.session.Resize(geom.Rect{W: float64(cols), H: float64(rows)})
	v.session.SetBuffer(v.bufferWidth, v.bufferWidth*float64(2*rows)/float64(cols))
}

// cellCentre maps a cell to the screen point at its centre.
func cellCentre(x, y int) (float64, float64) {
	return float64(x) + 0.5, float64(y) + 0.5
}

func (v *Viewer) inCanvas(x, y int) bool {
	return x >= 0 && y >= 0 && x < v.cols && y < v.rows
}

func (v *Viewer) handleMouse(ev *tcell.EventMouse) {
	if v.state != stateReady {
		return
	}
	x, y := ev.Position()
	sx, sy := cellCentre(x, y)
	held := ev.Buttons() &^ (tcell.WheelUp | tcell.WheelDown | tcell.WheelLeft | tcell.WheelRight)
	prev := v.buttons
	v.buttons = held

	switch {
	case ev.Buttons()&tcell.WheelUp != 0:
		if v.inCanvas(x, y) {
			v.session.ZoomAt(sx, sy, view.ZoomStep)
		}
		return
	case ev.Buttons()&tcell.WheelDown != 0:
		if v.inCanvas(x, y) {
			v.session.ZoomAt(sx, sy, 1/view.ZoomStep)
		}
		return
	}

	switch {
	case prev == tcell.ButtonNone && held != tcell.ButtonNone:
		if !v.inCanvas(x, y) {
			v.buttons = tcell.ButtonNone
			return
		}
		v.session.PointerDown(sx, sy, pointerButton(held))
	case prev != tcell.ButtonNone && held == tcell.ButtonNone:
		v.session.PointerUp()
	default:
		if !v.inCanvas(x, y) {
			if prev == tcell.ButtonNone {
				v.session.PointerLeave()
				v.hover = ""
			}
			return
		}
		v.session.PointerMove(sx, sy)
	}

	v.hover = ""
	if n, ok := v.session.NodeAt(sx, sy); ok {
		v.hover = n.Label
	}
}

func pointerButton(b tcell.ButtonMask) interact.Button {
	switch {
	case b&tcell.ButtonPrimary != 0:
		return interact.ButtonPrimary
	case b&tcell.ButtonMiddle != 0:
		return interact.ButtonMiddle
	default:
		return interact.ButtonSecondary
	}
}

func (v *Viewer) handleKey(ev *tcell.EventKey) bool {
	if ev.Key() == tcell.KeyCtrlC {
		return true
	}
	if v.mode == ModeSearch {
		v.handleSearchKey(ev)
		return false
	}
	if ev.Key() == tcell.KeyRune && (ev.Rune() == 'q' || ev.Rune() == 'Q') {
		return true
	}
	if v.state != stateReady {
		return false
	}

	switch ev.Key() {
	case tcell.KeyTab:
		k := v.session.CycleFilter()
		if k == "" {
			v.showMessage("Tous les types", MsgInfo)
		} else {
			v.showMessage(k.Title(), MsgInfo)
		}
	case tcell.KeyEnter:
		v.navigate()
	case tcell.KeyEscape:
		switch {
		case v.panel:
			v.panel = false
		case v.session.Frame().Filter.Query != "":
			v.session.SetSearch("")
		}
	case tcell.KeyUp:
		v.panBy(0, 2)
	case tcell.KeyDown:
		v.panBy(0, -2)
	case tcell.KeyLeft:
		v.panBy(4, 0)
	case tcell.KeyRight:
		v.panBy(-4, 0)
	case tcell.KeyRune:
		v.handleRune(ev.Rune())
	}
	return false
}

func (v *Viewer) handleRune(r rune) {
	switch r {
	case '+', '=':
		v.session.ZoomIn()
	case '-', '_':
		v.session.ZoomOut()
	case '0':
		v.session.ResetView()
	case 'c', 'C':
		if !v.session.CentreOnSelection() {
			v.showMessage("Aucune sélection", MsgInfo)
		}
	case 'f', 'F':
		if v.session.ToggleFocus() {
			v.showMessage("Focus", MsgInfo)
		} else {
			v.showMessage("Focus désactivé", MsgInfo)
		}
	case 'p', 'P':
		v.setTool(interact.ToolPan)
	case 's', 'S':
		v.setTool(interact.ToolSelect)
	case 'l', 'L':
		v.labels = !v.labels
	case '/':
		v.mode = ModeSearch
		v.inputBuffer = v.session.Frame().Filter.Query
	}
}

func (v *Viewer) setTool(t interact.Tool) {
	v.tool = t
	v.session.SetTool(t)
	v.showMessage("Outil: "+t.String(), MsgInfo)
}

// panBy moves the view by a distance in cells, as if dragged.
func (v *Viewer) panBy(dx, dy float64) {
	v.session.BeginPan(0, 0)
	v.session.UpdatePan(dx, dy)
	v.session.EndPan()
}

// handleSearchKey edits the search text. The filter follows every
// keystroke.
func (v *Viewer) handleSearchKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEnter:
		v.mode = ModeCanvas
	case tcell.KeyEscape:
		v.mode = ModeCanvas
		v.inputBuffer = ""
		v.session.SetSearch("")
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if r := []rune(v.inputBuffer); len(r) > 0 {
			v.inputBuffer = string(r[:len(r)-1])
			v.session.SetSearch(v.inputBuffer)
		}
	case tcell.KeyRune:
		v.inputBuffer += string(ev.Rune())
		v.session.SetSearch(v.inputBuffer)
	}
}

// navigate opens the detail panel for the selected entity.
func (v *Viewer) navigate() {
	open := func(k graph.Kind) func(string) {
		return func(name string) {
			v.panel = true
			v.panelKind = k
			v.panelTitle = name
		}
	}
	ok := v.session.Navigate(interact.Navigator{
		OnMedia:        open(graph.KindMedia),
		OnPerson:       open(graph.KindPerson),
		OnOrganisation: open(graph.KindOrganisation),
	})
	if !ok {
		v.showMessage("Sélectionnez une entité", MsgInfo)
		return
	}
	if _, details, ok := v.session.SelectionDetails(); ok {
		v.panelDetails = details
	}
	logger.Debug("navigate", "kind", v.panelKind, "name", v.panelTitle)
}

// flashPhase is one of the four alternating phases of a message flash.
const flashPhase = 125 * time.Millisecond

func (v *Viewer) showMessage(msg string, t MessageType) {
	v.message = msg
	v.messageType = t
	v.messageAt = time.Now()
	if !flashes(t) {
		return
	}
	// Redraw at each phase boundary so the flash animates while idle.
	for i := 1; i <= 4; i++ {
		time.AfterFunc(time.Duration(i)*flashPhase, func() {
			v.screen.PostEvent(tcell.NewEventInterrupt(nil))
		})
	}
}

// flashes reports whether messages of type t flash when shown.
func flashes(t MessageType) bool {
	return t == MsgError || t == MsgSuccess
}

// flashInverted reports whether a flashing message is drawn inverted
// elapsed after it was shown: normal, inverted, normal, inverted, then
// normal for good.
func flashInverted(elapsed time.Duration) bool {
	if elapsed < 0 || elapsed >= 4*flashPhase {
		return false
	}
	phase := elapsed / flashPhase
	return phase == 1 || phase == 3
}

// recordRender reports how long a canvas redraw took.
func (v *Viewer) recordRender(start time.Time) {
	v.metrics.RecordRender("term", time.Since(start))
}

func (v *Viewer) statusText() string {
	switch v.state {
	case stateLoading:
		return "Chargement…"
	case stateFailed:
		return "Erreur: " + v.loadErr.Error()
	}
	s := fmt.Sprintf("%d nœuds, %d liens", v.stats.Nodes, v.stats.Edges)
	if v.stats.Dangling > 0 {
		s += fmt.Sprintf(" (%d orphelins)", v.stats.Dangling)
	}
	return s
}
