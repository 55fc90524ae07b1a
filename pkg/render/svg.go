package render

import (
	"fmt"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ha1tch/reseau/pkg/graph"
)

func css(c colorful.Color) string {
	return c.Clamped().Hex()
}

func gradientID(k graph.Kind, dimmed bool) string {
	if dimmed {
		return "dim-" + string(k)
	}
	return "fill-" + string(k)
}

func defineGradient(canvas *svg.SVG, id string, p Palette) {
	canvas.RadialGradient(id, 35, 35, 70, 35, 35, []svg.Offcolor{
		{Offset: 0, Color: css(p.Light), Opacity: 1},
		{Offset: 60, Color: css(p.Base), Opacity: 1},
		{Offset: 100, Color: css(p.Dark), Opacity: 1},
	})
}

func ipt(v float64) int { return int(math.Round(v)) }

// SVG renders the frame as an SVG document of opts.Width x opts.Height.
// Node colours that differ from their kind palette fall back to it.
func SVG(w io.Writer, f Frame, opts Options) error {
	rasterMu.Lock()
	defer rasterMu.Unlock()

	width, height := max(opts.Width, 1), max(opts.Height, 1)
	t := newTransform(f.View, width, height)
	scene := Compose(f)

	cw := &errWriter{w: w}
	canvas := svg.New(cw)
	canvas.Start(width, height)
	if opts.Title != "" {
		canvas.Title(opts.Title)
	}

	canvas.Def()
	for _, k := range graph.Kinds {
		defineGradient(canvas, gradientID(k, false), KindPalette(k, false))
		defineGradient(canvas, gradientID(k, true), KindPalette(k, true))
	}
	canvas.Filter("glow")
	canvas.FeGaussianBlur(svg.Filterspec{In: "SourceGraphic", Result: "blur"}, 3, 3)
	canvas.FeMerge([]string{"blur", "SourceGraphic"})
	canvas.Fend()
	canvas.DefEnd()

	canvas.Rect(0, 0, width, height, "fill:"+css(opts.Background))

	u := t.length(1)

	canvas.Gid("edges")
	for _, e := range scene.Edges {
		a, b := t.point(e.From), t.point(e.To)
		opacity := 1.0
		if e.Dimmed {
			opacity = 0.3
		}
		canvas.Line(ipt(a.X), ipt(a.Y), ipt(b.X), ipt(b.Y),
			fmt.Sprintf("stroke:%s;stroke-width:%.2f;stroke-opacity:%.2f;stroke-linecap:round", css(EdgeColor), u, opacity))
	}
	canvas.Gend()

	canvas.Gid("nodes")
	for i := range scene.Nodes {
		sn := &scene.Nodes[i]
		n := sn.Node
		c := t.point(n.Pos)
		x, y := ipt(c.X), ipt(c.Y)
		r := t.length(n.Radius)
		pal := KindPalette(n.Kind, sn.Dimmed)

		canvas.Circle(ipt(c.X+2*u), ipt(c.Y+3*u), ipt(r+2*u), "fill:#000000;fill-opacity:0.18")

		ring := white
		if sn.Selected {
			ring = SelectRing
		}
		canvas.Circle(x, y, ipt(r+2*u), "fill:"+css(ring))
		canvas.Circle(x, y, ipt(r), fmt.Sprintf("fill:url(#%s)", gradientID(n.Kind, sn.Dimmed)))
		canvas.Ellipse(x, ipt(c.Y-r*0.45), ipt(r*0.55), ipt(r*0.28), "fill:#ffffff;fill-opacity:0.3")
		canvas.Text(x, ipt(c.Y+r*0.35), n.Kind.Glyph(),
			fmt.Sprintf("fill:%s;font-size:%.1fpx;font-family:sans-serif;font-weight:bold;text-anchor:middle", css(pal.Glyph), r))

		if sn.Selected {
			canvas.Circle(x, y, ipt(r+6*u),
				fmt.Sprintf("fill:none;stroke:%s;stroke-width:%.2f;stroke-opacity:0.45;filter:url(#glow)", css(SelectRing), 3*u))
		}
		if sn.Hovered && !sn.Selected {
			canvas.Circle(x, y, ipt(r+4*u),
				fmt.Sprintf("fill:none;stroke:%s;stroke-width:%.2f", css(HoverRing), 2*u))
		}

		if opts.Labels && sn.Label != "" {
			size := t.length(labelSize)
			baseline := c.Y + r + 15*u
			pw, ph, px, py := plateRect(sn.Label, c.X, baseline, size)
			canvas.Roundrect(ipt(px), ipt(py), ipt(pw), ipt(ph), ipt(ph/3), ipt(ph/3), "fill:#ffffff;fill-opacity:0.85")
			opacity := 1.0
			if sn.Dimmed {
				opacity = 0.45
			}
			canvas.Text(x, ipt(baseline), sn.Label,
				fmt.Sprintf("fill:%s;fill-opacity:%.2f;font-size:%.1fpx;font-family:sans-serif;text-anchor:middle", css(LabelColor), opacity, size))
		}
	}
	canvas.Gend()

	if opts.Title != "" {
		uu := t.unit()
		canvas.Text(ipt(16*uu), ipt(32*uu), opts.Title,
			fmt.Sprintf("fill:%s;font-size:%.1fpx;font-family:sans-serif;font-weight:bold", css(LabelColor), 16*uu))
	}

	if opts.Legend {
		uu := t.unit()
		box := legendBox(uu, height)
		canvas.Roundrect(ipt(box.X), ipt(box.Y), ipt(box.W), ipt(box.H), ipt(8*uu), ipt(8*uu),
			fmt.Sprintf("fill:#ffffff;fill-opacity:0.9;stroke:%s", css(slate)))
		for i, item := range legendItems() {
			iy := box.Y + 23*uu + float64(i)*22*uu
			canvas.Circle(ipt(box.X+18*uu), ipt(iy), ipt(7*uu), "fill:"+css(item.color))
			canvas.Text(ipt(box.X+34*uu), ipt(iy+4*uu), item.label,
				fmt.Sprintf("fill:%s;font-size:%.1fpx;font-family:sans-serif", css(LabelColor), legendSize*uu))
		}
	}

	canvas.End()
	return cw.err
}

// errWriter remembers the first write error, since svgo does not report
// them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}
