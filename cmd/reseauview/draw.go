package main

import (
	"image"
	"math"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/mattn/go-runewidth"

	"github.com/ha1tch/reseau/pkg/geom"
	"github.com/ha1tch/reseau/pkg/graph"
	"github.com/ha1tch/reseau/pkg/interact"
	"github.com/ha1tch/reseau/pkg/render"
)

// Styles
var (
	styleDefault  = tcell.StyleDefault
	stylePanel    = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	stylePanelH   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	stylePanelKey = tcell.StyleDefault.Foreground(tcell.ColorSilver)
	styleStatus   = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy)
	styleMsgInfo  = tcell.StyleDefault.Foreground(tcell.ColorSilver).Background(tcell.ColorNavy)
	styleMsgError = tcell.StyleDefault.Foreground(tcell.ColorRed).Background(tcell.ColorNavy).Bold(true)
	styleHelp     = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleBorder   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleNotice   = tcell.StyleDefault.Foreground(tcell.ColorGray).Italic(true)
	styleInput    = tcell.StyleDefault.Background(tcell.ColorNavy).Foreground(tcell.ColorWhite)
)

// Label text colours over the canvas.
var (
	labelInk    = colorful.Color{R: 0.17, G: 0.24, B: 0.31}
	labelDimmed = colorful.Color{R: 0.6, G: 0.6, B: 0.6}
)

// halfBlock is drawn in every canvas cell: the foreground paints the upper
// pixel and the background the lower one.
const halfBlock = '▀'

func (v *Viewer) draw() {
	v.screen.Clear()
	w, h := v.screen.Size()
	v.layout()

	switch v.state {
	case stateLoading:
		v.drawNotice("Chargement des données…")
	case stateFailed:
		v.drawNotice("Impossible de charger les données")
	default:
		if v.stats.Nodes == 0 {
			v.drawNotice("Aucune donnée disponible")
		} else {
			v.drawCanvas()
		}
	}

	if v.panel {
		v.drawPanel(w, h)
	}
	if v.mode == ModeSearch {
		v.drawInputBox(w, h)
	}
	v.drawStatusBar(w, h)
}

func (v *Viewer) drawNotice(text string) {
	x := (v.cols - runewidth.StringWidth(text)) / 2
	v.drawString(max(x, 0), v.rows/2, text, styleNotice)
}

func rgb(c colorful.Color) tcell.Color {
	r, g, b := c.Clamped().RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

func pixel(img *image.RGBA, x, y int) colorful.Color {
	c := img.RGBAAt(x, y)
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// label is a node label placed in screen cells.
type label struct {
	text     string
	centre   geom.Vec // node centre
	bottom   geom.Vec // lowest point of the node
	dimmed   bool
	selected bool
}

// drawCanvas rasterises the frame at two pixels per cell and blits it, then
// overlays the labels as text.
func (v *Viewer) drawCanvas() {
	start := time.Now()
	opts := render.DefaultOptions()
	opts.Width, opts.Height = v.cols, 2*v.rows
	opts.Labels, opts.Legend = false, false
	opts.Background = v.background

	var (
		img    *image.RGBA
		labels []label
	)
	v.session.Draw(func(f render.Frame) {
		img = render.Image(f, opts)
		if !v.labels {
			return
		}
		for _, n := range render.Compose(f).Nodes {
			labels = append(labels, label{
				text:     n.Label,
				centre:   f.View.Presented(n.Node.Pos),
				bottom:   f.View.Presented(geom.Vec{X: n.Node.Pos.X, Y: n.Node.Pos.Y + n.Node.Radius}),
				dimmed:   n.Dimmed,
				selected: n.Selected,
			})
		}
	})
	v.blit(img)
	for _, l := range labels {
		v.drawLabel(img, l)
	}
	v.recordRender(start)
}

func (v *Viewer) blit(img *image.RGBA) {
	for y := 0; y < v.rows; y++ {
		for x := 0; x < v.cols; x++ {
			style := styleDefault.
				Foreground(rgb(pixel(img, x, 2*y))).
				Background(rgb(pixel(img, x, 2*y+1)))
			v.screen.SetContent(x, y, halfBlock, nil, style)
		}
	}
}

// drawLabel writes a label centred in the row below its node. Each cell
// keeps the canvas colour behind it, blended from its two pixels.
func (v *Viewer) drawLabel(img *image.RGBA, l label) {
	row := int(math.Floor(l.bottom.Y)) + 1
	if row < 0 || row >= v.rows {
		return
	}

	ink := labelInk
	if l.dimmed {
		ink = labelDimmed
	}
	x := int(math.Floor(l.centre.X)) - runewidth.StringWidth(l.text)/2
	for _, r := range l.text {
		rw := runewidth.RuneWidth(r)
		if x >= 0 && x+rw <= v.cols {
			bg := pixel(img, x, 2*row).BlendRgb(pixel(img, x, 2*row+1), 0.5)
			style := styleDefault.Foreground(rgb(ink)).Background(rgb(bg))
			if l.selected {
				style = style.Bold(true)
			}
			v.screen.SetContent(x, row, r, nil, style)
		}
		x += rw
	}
}

// drawPanel shows the entity opened with Enter to the right of the canvas.
func (v *Viewer) drawPanel(w, h int) {
	x := w - panelWidth
	height := h - barRows
	v.drawTitledBox(x, 0, panelWidth, height, v.panelKind.Title())

	inner := panelWidth - 4
	y := 2
	v.drawString(x+2, y, truncate(v.panelTitle, inner), stylePanelH)
	y += 2
	for _, d := range v.panelDetails {
		if y >= height-1 {
			break
		}
		v.drawString(x+2, y, truncate(d.Key, inner), stylePanelKey)
		y++
		for _, line := range wrap(d.Value, inner-2) {
			if y >= height-1 {
				break
			}
			v.drawString(x+4, y, line, stylePanel)
			y++
		}
	}
}

func (v *Viewer) drawTitledBox(x, y, w, h int, title string) {
	v.screen.SetContent(x, y, '┌', nil, styleBorder)
	for i := 1; i < w-1; i++ {
		v.screen.SetContent(x+i, y, '─', nil, styleBorder)
	}
	v.screen.SetContent(x+w-1, y, '┐', nil, styleBorder)

	if title != "" {
		tw := runewidth.StringWidth(title)
		titleX := x + (w-tw-2)/2
		v.screen.SetContent(titleX, y, ' ', nil, styleBorder)
		v.drawString(titleX+1, y, title, stylePanelH)
		v.screen.SetContent(titleX+1+tw, y, ' ', nil, styleBorder)
	}

	for row := 1; row < h-1; row++ {
		v.screen.SetContent(x, y+row, '│', nil, styleBorder)
		for col := 1; col < w-1; col++ {
			v.screen.SetContent(x+col, y+row, ' ', nil, styleDefault)
		}
		v.screen.SetContent(x+w-1, y+row, '│', nil, styleBorder)
	}

	v.screen.SetContent(x, y+h-1, '└', nil, styleBorder)
	for i := 1; i < w-1; i++ {
		v.screen.SetContent(x+i, y+h-1, '─', nil, styleBorder)
	}
	v.screen.SetContent(x+w-1, y+h-1, '┘', nil, styleBorder)
}

func (v *Viewer) drawInputBox(w, h int) {
	boxW := min(50, w)
	boxX := (w - boxW) / 2
	boxY := (h - barRows - 3) / 2
	for row := boxY; row < boxY+3; row++ {
		for col := boxX; col < boxX+boxW; col++ {
			v.screen.SetContent(col, row, ' ', nil, styleInput)
		}
	}
	prompt := "Rechercher: "
	v.drawString(boxX+2, boxY+1, prompt, styleInput)
	v.drawString(boxX+2+runewidth.StringWidth(prompt), boxY+1, v.inputBuffer+"_", styleInput)
}

func (v *Viewer) drawStatusBar(w, h int) {
	y := h - 1
	for x := 0; x < w; x++ {
		v.screen.SetContent(x, y, ' ', nil, styleStatus)
	}
	v.drawString(1, y, v.statusText(), styleStatus)

	mode := v.modeString()
	v.drawString(w/2-runewidth.StringWidth(mode)/2, y, mode, styleStatus)

	// The hovered node wins over older messages.
	right, style := v.message, styleMsgInfo
	if v.messageType == MsgError {
		style = styleMsgError
	}
	if flashes(v.messageType) && flashInverted(time.Since(v.messageAt)) {
		style = style.Reverse(true)
	}
	if v.hover != "" {
		right, style = v.hover, styleStatus.Bold(true)
	}
	if right != "" {
		v.drawString(w-runewidth.StringWidth(right)-2, y, right, style)
	}

	y = h - 2
	for x := 0; x < w; x++ {
		v.screen.SetContent(x, y, ' ', nil, styleDefault)
	}
	v.drawString(1, y, v.helpString(), styleHelp)
}

// drawString writes s from column x, advancing by each rune's display
// width.
func (v *Viewer) drawString(x, y int, s string, style tcell.Style) {
	for _, r := range s {
		v.screen.SetContent(x, y, r, nil, style)
		x += runewidth.RuneWidth(r)
	}
}

func (v *Viewer) modeString() string {
	if v.mode == ModeSearch {
		return "RECHERCHE"
	}
	if v.state != stateReady {
		return ""
	}
	f := v.session.Frame()
	s := ""
	if v.tool == interact.ToolPan {
		s = "PAN"
	}
	if f.Filter.Kind != "" {
		s = join(s, f.Filter.Kind.Title())
	}
	if len([]rune(f.Filter.Query)) >= graph.MinQueryLen {
		s = join(s, "«"+f.Filter.Query+"»")
	}
	if f.Focus {
		s = join(s, "FOCUS")
	}
	return s
}

func join(a, b string) string {
	if a == "" {
		return b
	}
	return a + " · " + b
}

func (v *Viewer) helpString() string {
	switch {
	case v.mode == ModeSearch:
		return "Type text  Enter:Confirm  Esc:Clear"
	case v.panel:
		return "Esc:Close  Enter:Details  +/-:Zoom  0:Reset  C:Centre  F:Focus  Q:Quit"
	case v.state != stateReady:
		return "Q:Quit"
	default:
		return "+/-:Zoom  0:Reset  C:Centre  F:Focus  P/S:Tool  Tab:Filter  /:Search  Enter:Details  L:Labels  Q:Quit"
	}
}

func truncate(s string, maxWidth int) string {
	return runewidth.Truncate(s, maxWidth, "…")
}

// wrap breaks s into lines at most width cells wide, at spaces where it
// can.
func wrap(s string, width int) []string {
	if width <= 0 {
		return nil
	}
	var (
		lines []string
		line  string
	)
	for _, word := range strings.Fields(s) {
		switch {
		case line == "":
			line = word
		case runewidth.StringWidth(line)+1+runewidth.StringWidth(word) <= width:
			line += " " + word
		default:
			lines = append(lines, line)
			line = word
		}
		for runewidth.StringWidth(line) > width {
			head := runewidth.Truncate(line, width, "")
			if head == "" {
				break
			}
			lines = append(lines, head)
			line = line[len(head):]
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}
