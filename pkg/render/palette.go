package render

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ha1tch/reseau/pkg/graph"
)

// Fixed colours of the scene.
var (
	Background = colorful.Color{R: 1, G: 1, B: 1}
	EdgeColor  = mustHex("#94a3b8")
	LabelColor = mustHex("#1e293b")
	SelectRing = mustHex("#f59e0b")
	HoverRing  = mustHex("#cbd5e1")
	PlateColor = colorful.Color{R: 1, G: 1, B: 1}

	white = colorful.Color{R: 1, G: 1, B: 1}
	black = colorful.Color{}
	slate = mustHex("#e2e8f0")
)

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Palette holds the gradient stops used to fill one node.
type Palette struct {
	Base  colorful.Color
	Light colorful.Color // highlight stop, upper left
	Dark  colorful.Color // rim stop
	Glyph colorful.Color
}

// NewPalette derives gradient stops from a base colour.
func NewPalette(base colorful.Color) Palette {
	return Palette{
		Base:  base,
		Light: base.BlendLab(white, 0.35).Clamped(),
		Dark:  base.BlendLab(black, 0.25).Clamped(),
		Glyph: white,
	}
}

// Dimmed returns a washed-out version of p for nodes outside the focus.
func (p Palette) Dimmed() Palette {
	h, c, l := p.Base.Hcl()
	grey := colorful.Hcl(h, c*0.15, l).Clamped().BlendLab(slate, 0.55).Clamped()
	d := NewPalette(grey)
	d.Glyph = mustHex("#94a3b8")
	return d
}

var (
	kindPalettes   = map[graph.Kind]Palette{}
	dimmedPalettes = map[graph.Kind]Palette{}
)

func init() {
	for _, k := range graph.Kinds {
		p := NewPalette(mustHex(k.Color()))
		kindPalettes[k] = p
		dimmedPalettes[k] = p.Dimmed()
	}
}

// KindPalette returns the palette of a node kind.
func KindPalette(k graph.Kind, dimmed bool) Palette {
	if dimmed {
		if p, ok := dimmedPalettes[k]; ok {
			return p
		}
	} else if p, ok := kindPalettes[k]; ok {
		return p
	}
	return NewPalette(EdgeColor)
}

// nodePalette picks the palette for a node, honouring a custom node colour.
func nodePalette(n *graph.Node, dimmed bool) Palette {
	if n.Color == "" || n.Color == n.Kind.Color() {
		return KindPalette(n.Kind, dimmed)
	}
	c, err := colorful.Hex(n.Color)
	if err != nil {
		return KindPalette(n.Kind, dimmed)
	}
	p := NewPalette(c)
	if dimmed {
		return p.Dimmed()
	}
	return p
}
