package render

import (
	"image"
	"image/png"
	"io"
	"sync"

	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"

	"github.com/ha1tch/reseau/pkg/geom"
	"github.com/ha1tch/reseau/pkg/graph"
)

// Options configures an output surface.
type Options struct {
	Width       int // pixels
	Height      int
	Supersample int // PNG only
	Labels      bool
	Legend      bool
	Title       string
	Background  colorful.Color
}

// DefaultOptions returns an 800x600 surface with labels and legend.
func DefaultOptions() Options {
	return Options{
		Width:       800,
		Height:      600,
		Supersample: 2,
		Labels:      true,
		Legend:      true,
		Background:  Background,
	}
}

// Font sizes in world units.
const (
	labelSize  = 12.0
	legendSize = 12.0
)

// Glyph faces are shared, so rasterising is serialised.
var rasterMu sync.Mutex

func setRGBA(dc *gg.Context, c colorful.Color, a float64) {
	dc.SetRGBA(c.R, c.G, c.B, a)
}

// Raster paints the frame onto dc, which is taken to cover the whole
// drawing buffer.
func Raster(dc *gg.Context, f Frame, opts Options) {
	rasterMu.Lock()
	defer rasterMu.Unlock()

	w, h := dc.Width(), dc.Height()
	t := newTransform(f.View, w, h)
	scene := Compose(f)

	dc.SetColor(opts.Background)
	dc.Clear()

	dc.SetLineCap(gg.LineCapRound)
	for _, e := range scene.Edges {
		a, b := t.point(e.From), t.point(e.To)
		alpha := 1.0
		if e.Dimmed {
			alpha = 0.3
		}
		setRGBA(dc, EdgeColor, alpha)
		dc.SetLineWidth(t.length(1))
		dc.DrawLine(a.X, a.Y, b.X, b.Y)
		dc.Stroke()
	}

	for i := range scene.Nodes {
		drawNode(dc, t, &scene.Nodes[i], opts.Labels)
	}

	if opts.Title != "" {
		drawTitle(dc, t, opts.Title)
	}
	if opts.Legend {
		drawLegend(dc, t, h)
	}
}

func drawNode(dc *gg.Context, t transform, sn *SceneNode, labels bool) {
	n := sn.Node
	c := t.point(n.Pos)
	r := t.length(n.Radius)
	u := t.length(1)
	pal := nodePalette(n, sn.Dimmed)

	// Drop shadow
	dc.SetRGBA(0, 0, 0, 0.18)
	dc.DrawCircle(c.X+2*u, c.Y+3*u, r+2*u)
	dc.Fill()

	// Outer ring
	if sn.Selected {
		setRGBA(dc, SelectRing, 1)
	} else {
		setRGBA(dc, white, 1)
	}
	dc.DrawCircle(c.X, c.Y, r+2*u)
	dc.Fill()

	// Gradient body, lit from the upper left
	grad := gg.NewRadialGradient(c.X-r/3, c.Y-r/3, 0, c.X, c.Y, r)
	grad.AddColorStop(0, pal.Light)
	grad.AddColorStop(0.6, pal.Base)
	grad.AddColorStop(1, pal.Dark)
	dc.SetFillStyle(grad)
	dc.DrawCircle(c.X, c.Y, r)
	dc.Fill()

	// Gloss
	dc.SetRGBA(1, 1, 1, 0.3)
	dc.DrawEllipse(c.X, c.Y-r*0.45, r*0.55, r*0.28)
	dc.Fill()

	// Glyph
	dc.SetFontFace(fontCache.face(r, true))
	setRGBA(dc, pal.Glyph, 1)
	dc.DrawStringAnchored(n.Kind.Glyph(), c.X, c.Y, 0.5, 0.5)

	if sn.Selected {
		setRGBA(dc, SelectRing, 0.45)
		dc.SetLineWidth(3 * u)
		dc.DrawCircle(c.X, c.Y, r+6*u)
		dc.Stroke()
	}
	if sn.Hovered && !sn.Selected {
		setRGBA(dc, HoverRing, 0.9)
		dc.SetLineWidth(2 * u)
		dc.DrawCircle(c.X, c.Y, r+4*u)
		dc.Stroke()
	}

	if labels && sn.Label != "" {
		drawLabel(dc, sn.Label, c.X, c.Y+r+15*u, t.length(labelSize), sn.Dimmed)
	}
}

// drawLabel draws text centred on (x, baseline) over a rounded plate.
func drawLabel(dc *gg.Context, text string, x, baseline, size float64, dimmed bool) {
	pw, ph, px, py := plateRect(text, x, baseline, size)

	setRGBA(dc, PlateColor, 0.85)
	dc.DrawRoundedRectangle(px, py, pw, ph, ph/3)
	dc.Fill()

	dc.SetFontFace(fontCache.face(size, false))
	alpha := 1.0
	if dimmed {
		alpha = 0.45
	}
	setRGBA(dc, LabelColor, alpha)
	dc.DrawStringAnchored(text, x, baseline, 0.5, 0)
}

// plateRect returns the size and top-left corner of a label plate.
func plateRect(text string, x, baseline, size float64) (w, h, left, top float64) {
	pad := size * 0.35
	w = fontCache.measure(text, size, false) + 2*pad
	h = size + pad
	return w, h, x - w/2, baseline - size*0.85 - pad/2
}

func drawTitle(dc *gg.Context, t transform, title string) {
	u := t.unit()
	size := 16 * u
	dc.SetFontFace(fontCache.face(size, true))
	setRGBA(dc, LabelColor, 1)
	dc.DrawStringAnchored(title, 16*u, 16*u, 0, 1)
}

type legendItem struct {
	color colorful.Color
	label string
}

func legendItems() []legendItem {
	items := make([]legendItem, 0, len(graph.Kinds))
	for _, k := range graph.Kinds {
		items = append(items, legendItem{KindPalette(k, false).Base, k.Title()})
	}
	return items
}

// legendBox returns the legend rectangle in pixels, anchored bottom left.
func legendBox(u float64, height int) geom.Rect {
	w, h := 150*u, (24+22*float64(len(graph.Kinds)))*u
	return geom.Rect{X: 12 * u, Y: float64(height) - h - 12*u, W: w, H: h}
}

func drawLegend(dc *gg.Context, t transform, height int) {
	u := t.unit()
	box := legendBox(u, height)

	setRGBA(dc, white, 0.9)
	dc.DrawRoundedRectangle(box.X, box.Y, box.W, box.H, 8*u)
	dc.Fill()
	setRGBA(dc, slate, 1)
	dc.SetLineWidth(u)
	dc.DrawRoundedRectangle(box.X, box.Y, box.W, box.H, 8*u)
	dc.Stroke()

	dc.SetFontFace(fontCache.face(legendSize*u, false))
	for i, item := range legendItems() {
		iy := box.Y + 23*u + float64(i)*22*u
		setRGBA(dc, item.color, 1)
		dc.DrawCircle(box.X+18*u, iy, 7*u)
		dc.Fill()
		setRGBA(dc, LabelColor, 1)
		dc.DrawStringAnchored(item.label, box.X+34*u, iy, 0, 0.35)
	}
}

// Image renders the frame to a new image of opts.Width x opts.Height.
func Image(f Frame, opts Options) *image.RGBA {
	w, h := max(opts.Width, 1), max(opts.Height, 1)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	Raster(gg.NewContextForRGBA(img), f, opts)
	return img
}

// PNG renders the frame as PNG. The scene is drawn at Supersample times the
// requested size and scaled down for smoother edges.
func PNG(w io.Writer, f Frame, opts Options) error {
	s := opts.Supersample
	if s < 1 {
		s = 1
	}
	large := opts
	large.Width = opts.Width * s
	large.Height = opts.Height * s
	largeImg := Image(f, large)

	if s == 1 {
		return png.Encode(w, largeImg)
	}

	finalImg := image.NewRGBA(image.Rect(0, 0, max(opts.Width, 1), max(opts.Height, 1)))
	draw.CatmullRom.Scale(finalImg, finalImg.Bounds(), largeImg, largeImg.Bounds(), draw.Over, nil)

	return png.Encode(w, finalImg)
}
