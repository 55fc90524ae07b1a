package render

import (
	"bytes"
	"errors"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/reseau/pkg/geom"
	"github.com/ha1tch/reseau/pkg/graph"
	"github.com/ha1tch/reseau/pkg/view"
)

func node(id string, kind graph.Kind, x, y float64) graph.Node {
	return graph.Node{
		ID:     id,
		Label:  id,
		Kind:   kind,
		Pos:    geom.Vec{X: x, Y: y},
		Radius: kind.Radius(),
		Color:  kind.Color(),
	}
}

// star returns s linked to a and b, with c hanging off a.
func star() *graph.Graph {
	return graph.New([]graph.Node{
		node("s", graph.KindPerson, 400, 300),
		node("a", graph.KindMedia, 250, 300),
		node("b", graph.KindOrganisation, 550, 300),
		node("c", graph.KindMedia, 250, 450),
	}, []graph.Edge{
		{Source: "s", Target: "a"},
		{Source: "b", Target: "s"},
		{Source: "a", Target: "c"},
		{Source: "s", Target: "ghost"},
	})
}

func frame(g *graph.Graph) Frame {
	return Frame{Graph: g, View: *view.New(800, 600)}
}

func ids(s Scene) (nodes []string, dimmed []string) {
	for _, n := range s.Nodes {
		nodes = append(nodes, n.Node.ID)
		if n.Dimmed {
			dimmed = append(dimmed, n.Node.ID)
		}
	}
	return nodes, dimmed
}

func TestComposeFocus(t *testing.T) {
	f := frame(star())
	f.Selected = "s"
	f.Focus = true

	s := Compose(f)

	assert.Equal(t, map[string]bool{"s": true, "a": true, "b": true}, s.Connected)
	_, dimmed := ids(s)
	assert.Equal(t, []string{"c"}, dimmed)

	for _, e := range s.Edges {
		if e.Edge.Target == "c" {
			assert.True(t, e.Dimmed, "edge to c should be dimmed")
		} else {
			assert.False(t, e.Dimmed)
		}
	}
}

func TestComposeFocusWithoutSelection(t *testing.T) {
	f := frame(star())
	f.Focus = true

	s := Compose(f)
	assert.Nil(t, s.Connected)
	_, dimmed := ids(s)
	assert.Empty(t, dimmed)
}

func TestComposeFilterDropsEdges(t *testing.T) {
	f := frame(star())
	f.Filter = graph.Filter{Kind: graph.KindMedia}

	s := Compose(f)
	nodes, _ := ids(s)
	assert.Equal(t, []string{"a", "c"}, nodes)
	require.Len(t, s.Edges, 1)
	assert.Equal(t, "c", s.Edges[0].Edge.Target)
}

func TestComposeSkipsDanglingEdges(t *testing.T) {
	s := Compose(frame(star()))
	assert.Len(t, s.Edges, 3)
	for _, e := range s.Edges {
		assert.NotEqual(t, "ghost", e.Edge.Target)
	}
}

func TestComposeEmpty(t *testing.T) {
	s := Compose(Frame{})
	assert.Empty(t, s.Nodes)
	assert.Empty(t, s.Edges)
}

func TestTruncateLabel(t *testing.T) {
	assert.Equal(t, "Le Monde", TruncateLabel("Le Monde"))
	assert.Equal(t, "Groupe Le Monde", TruncateLabel("Groupe Le Monde Libre"))
	assert.Equal(t, "Éditions Privat", TruncateLabel("Éditions Privat SAS"))
}

func TestTransform(t *testing.T) {
	v := view.New(800, 600)
	v.Zoom = 2
	v.Pan = geom.Vec{X: -100, Y: 0}
	v.Present = geom.Vec{X: 10, Y: 10}

	tr := newTransform(*v, 400, 300)
	assert.Equal(t, geom.Vec{X: 55, Y: 105}, tr.point(geom.Vec{X: 100, Y: 100}))
	assert.Equal(t, 20.0, tr.length(20))
	assert.Equal(t, 0.5, tr.unit())
}

func TestPNG(t *testing.T) {
	f := frame(star())
	f.Selected = "s"

	opts := DefaultOptions()
	opts.Width, opts.Height = 400, 300

	var buf bytes.Buffer
	require.NoError(t, PNG(&buf, f, opts))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 400, img.Bounds().Dx())
	assert.Equal(t, 300, img.Bounds().Dy())

	// Top-right corner is background.
	r, g, b, _ := img.At(398, 2).RGBA()
	for _, ch := range []uint32{r, g, b} {
		assert.GreaterOrEqual(t, ch, uint32(0xfe00))
	}

	// The organisation node at (550, 300) sits at (275, 150) and is green.
	// Sample right of the glyph and below the gloss.
	r, g, b, _ = img.At(282, 151).RGBA()
	assert.Greater(t, g, r)
	assert.Greater(t, g, b)
}

func TestImageDanglingAndEmpty(t *testing.T) {
	opts := DefaultOptions()
	opts.Width, opts.Height = 80, 60

	img := Image(frame(star()), opts)
	assert.Equal(t, 80, img.Bounds().Dx())

	img = Image(Frame{}, opts)
	assert.Equal(t, 60, img.Bounds().Dy())
}

func TestSVG(t *testing.T) {
	g := star()
	g.Node("a").Label = `Canal <X> & "Y"`
	f := frame(g)
	f.Selected = "s"
	f.Focus = true

	opts := DefaultOptions()
	opts.Title = "Réseau"

	var buf bytes.Buffer
	require.NoError(t, SVG(&buf, f, opts))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "<?xml"))
	assert.Contains(t, out, `id="fill-media"`)
	assert.Contains(t, out, `id="dim-media"`)
	assert.Contains(t, out, "url(#dim-media)")
	assert.Contains(t, out, "url(#glow)")
	assert.Contains(t, out, "Canal &lt;X&gt; &amp;")
	assert.Contains(t, out, "Organisations")
	assert.Contains(t, out, "Réseau")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "</svg>"))
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestSVGWriteError(t *testing.T) {
	err := SVG(failWriter{}, frame(star()), DefaultOptions())
	assert.EqualError(t, err, "disk full")
}

func TestPalettes(t *testing.T) {
	for _, k := range graph.Kinds {
		p := KindPalette(k, false)
		d := KindPalette(k, true)

		assert.Equal(t, k.Color(), p.Base.Hex())
		_, cBase, _ := p.Base.Hcl()
		_, cDim, _ := d.Base.Hcl()
		assert.Less(t, cDim, cBase, "dimmed %s should be less saturated", k)
	}
}
