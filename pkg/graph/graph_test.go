package graph

import (
	"math"
	"sort"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/reseau/pkg/medias"
)

// scenario returns the Canal X / Alice / Org Y / Bob dataset.
func scenario() ([]medias.Media, []medias.Personne, []medias.Organisation) {
	ms := []medias.Media{{
		Name: "Canal X",
		Owners: []medias.Owner{
			{Name: "Alice", Type: medias.OwnerPerson, Value: "60%"},
			{Name: "Org Y", Type: medias.OwnerOrganisation, Value: "100%"},
		},
	}}
	ps := []medias.Personne{{Name: "Alice"}}
	os := []medias.Organisation{{
		Name:   "Org Y",
		Owners: []medias.Owner{{Name: "Bob", Type: medias.OwnerPerson, Value: "40%"}},
		Media:  []medias.OwnedMedia{{Name: "Canal X", Value: "100%"}},
	}}
	return ms, ps, os
}

func edgeKeys(g *Graph) []string {
	var keys []string
	for _, e := range g.Edges {
		keys = append(keys, e.Source+" -> "+e.Target+" "+e.Label)
	}
	sort.Strings(keys)
	return keys
}

func TestBuildScenario(t *testing.T) {
	g := Build(scenario())

	require.Len(t, g.Nodes, 3)
	assert.Equal(t, KindMedia, g.Node("media-Canal X").Kind)
	assert.Equal(t, KindPerson, g.Node("personne-Alice").Kind)
	assert.Equal(t, KindOrganisation, g.Node("organisation-Org Y").Kind)

	assert.Equal(t, []string{
		"organisation-Org Y -> media-Canal X 100%",
		"personne-Alice -> media-Canal X 60%",
		"personne-Bob -> organisation-Org Y 40%",
	}, edgeKeys(g))

	// Bob has no record of his own.
	assert.False(t, g.Resolved(Edge{Source: "personne-Bob", Target: "organisation-Org Y"}))
	assert.Equal(t, 1, g.Stats(5).Dangling)
}

func TestBuildOrderIndependent(t *testing.T) {
	ms, ps, os := scenario()
	ms = append(ms, medias.Media{Name: "Radio Z"})
	os = append(os, medias.Organisation{
		Name:  "Groupe W",
		Media: []medias.OwnedMedia{{Name: "Radio Z", Value: "51%"}},
	})
	want := edgeKeys(Build(ms, ps, os))

	rms := []medias.Media{ms[1], ms[0]}
	ros := []medias.Organisation{os[1], os[0]}
	got := Build(rms, ps, ros)

	assert.Equal(t, want, edgeKeys(got))
	assert.Len(t, got.Nodes, 5)
}

func TestBuildEmptyInputs(t *testing.T) {
	g := Build(nil, nil, nil)
	assert.True(t, g.Empty())
	assert.Empty(t, g.Edges)

	g = Build([]medias.Media{{Name: "Solo"}}, nil, nil)
	assert.Len(t, g.Nodes, 1)
	assert.Empty(t, g.Edges)
}

func TestBuildDoesNotMutateInputs(t *testing.T) {
	ms, ps, os := scenario()
	Build(ms, ps, os)

	fresh, _, _ := scenario()
	assert.Equal(t, fresh, ms)
}

func TestBuildPayloadPointsAtRecord(t *testing.T) {
	ms, ps, os := scenario()
	g := Build(ms, ps, os)

	m, ok := g.Node("media-Canal X").Payload.(*medias.Media)
	require.True(t, ok)
	assert.Same(t, &ms[0], m)
}

func TestBuildInitialLayout(t *testing.T) {
	ms := []medias.Media{{Name: "A"}, {Name: "B"}}
	ps := []medias.Personne{{Name: "P"}}
	os := []medias.Organisation{{Name: "O"}}
	g := Build(ms, ps, os)

	tests := []struct {
		id   string
		x, y float64
		r    float64
	}{
		{"media-A", 650, 300, 20},
		{"media-B", 150, 300, 20},
		{"personne-P", 200, 300, 25},
		{"organisation-O", 400, 450, 22},
	}

	for _, tt := range tests {
		n := g.Node(tt.id)
		require.NotNil(t, n, tt.id)
		if math.Abs(n.Pos.X-tt.x) > 1e-9 || math.Abs(n.Pos.Y-tt.y) > 1e-9 {
			t.Errorf("%s at %v, want (%v, %v)", tt.id, n.Pos, tt.x, tt.y)
		}
		if n.Radius != tt.r {
			t.Errorf("%s radius = %v, want %v", tt.id, n.Radius, tt.r)
		}
		if n.Vel.X != 0 || n.Vel.Y != 0 {
			t.Errorf("%s starts moving: %v", tt.id, n.Vel)
		}
	}
}

func TestSameNameDifferentKinds(t *testing.T) {
	g := Build(
		[]medias.Media{{Name: "X"}},
		[]medias.Personne{{Name: "X"}},
		[]medias.Organisation{{Name: "X"}},
	)
	assert.Len(t, g.Nodes, 3)
	assert.NotNil(t, g.Node("media-X"))
	assert.NotNil(t, g.Node("personne-X"))
	assert.NotNil(t, g.Node("organisation-X"))
}

func TestNodeIDsUnique(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	properties.Property("every node id is unique and every entity has one", prop.ForAll(
		func(mNames, pNames, oNames []string) bool {
			var ms []medias.Media
			for _, n := range mNames {
				ms = append(ms, medias.Media{Name: n})
			}
			var ps []medias.Personne
			for _, n := range pNames {
				ps = append(ps, medias.Personne{Name: n})
			}
			var os []medias.Organisation
			for _, n := range oNames {
				os = append(os, medias.Organisation{Name: n})
			}

			g := Build(ms, ps, os)

			seen := make(map[string]bool)
			for _, n := range g.Nodes {
				if seen[n.ID] {
					return false
				}
				seen[n.ID] = true
			}
			for _, n := range mNames {
				if !seen[NodeID(KindMedia, n)] {
					return false
				}
			}
			for _, n := range pNames {
				if !seen[NodeID(KindPerson, n)] {
					return false
				}
			}
			for _, n := range oNames {
				if !seen[NodeID(KindOrganisation, n)] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.AlphaString()),
		gen.SliceOf(gen.AlphaString()),
		gen.SliceOf(gen.AlphaString()),
	))

	properties.TestingRun(t)
}

func TestNeighbourhoodOneHop(t *testing.T) {
	nodes := []Node{{ID: "s"}, {ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}
	edges := []Edge{
		{Source: "s", Target: "a"},
		{Source: "b", Target: "s"},
		{Source: "a", Target: "c"}, // two hops away
		{Source: "s", Target: "ghost"},
	}
	g := New(nodes, edges)

	assert.Equal(t, map[string]bool{"s": true, "a": true, "b": true}, g.Neighbourhood("s"))
	assert.Empty(t, g.Neighbourhood("missing"))
	assert.Equal(t, map[string]bool{"d": true}, g.Neighbourhood("d"))
}

func TestFilter(t *testing.T) {
	g := Build(
		[]medias.Media{{Name: "Le Monde"}, {Name: "Libération"}},
		[]medias.Personne{{Name: "Xavier Niel"}},
		[]medias.Organisation{{Name: "Le Monde Libre"}},
	)

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"all", Filter{}, []string{"Le Monde", "Libération", "Xavier Niel", "Le Monde Libre"}},
		{"kind", Filter{Kind: KindMedia}, []string{"Le Monde", "Libération"}},
		{"query case-insensitive", Filter{Query: "MONDE"}, []string{"Le Monde", "Le Monde Libre"}},
		{"query below threshold", Filter{Query: "x"}, []string{"Le Monde", "Libération", "Xavier Niel", "Le Monde Libre"}},
		{"kind and query", Filter{Kind: KindOrganisation, Query: "monde"}, []string{"Le Monde Libre"}},
		{"accented", Filter{Query: "ÉRA"}, []string{"Libération"}},
		{"no match", Filter{Query: "zz"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, n := range g.Filter(tt.filter) {
				got = append(got, n.Label)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilterActive(t *testing.T) {
	assert.False(t, Filter{}.Active())
	assert.False(t, Filter{Query: "é"}.Active())
	assert.True(t, Filter{Query: "éa"}.Active())
	assert.True(t, Filter{Kind: KindPerson}.Active())
}

func TestStats(t *testing.T) {
	ms, ps, os := scenario()
	ps = append(ps, medias.Personne{
		Name:          "Carla",
		DirectMedia:   []medias.HeldMedia{{Name: "Canal X"}},
		Organisations: []medias.Holding{{Name: "Org Y"}},
	})
	g := Build(ms, ps, os)

	s := g.Stats(2)
	assert.Equal(t, 4, s.Nodes)
	assert.Equal(t, 5, s.Edges)
	assert.Equal(t, 1, s.Dangling)
	assert.Equal(t, 1, s.ByKind[KindMedia])
	assert.Equal(t, 2, s.ByKind[KindPerson])
	assert.Equal(t, 1, s.ByEdge[EdgeOrganisation])
	require.Len(t, s.TopOwners, 2)
	assert.Equal(t, Degree{ID: "personne-Carla", Label: "Carla", Kind: KindPerson, Out: 2}, s.TopOwners[0])
	assert.Equal(t, "Alice", s.TopOwners[1].Label)
}

func TestGenerateDOT(t *testing.T) {
	g := Build(scenario())
	dot := GenerateDOT(g, `Réseau "test"`)

	assert.True(t, strings.HasPrefix(dot, "digraph Reseau {"))
	assert.Contains(t, dot, `label="Réseau \"test\""`)
	assert.Contains(t, dot, `"media-Canal X" [label="Canal X", shape=box, fillcolor="#3b82f6"]`)
	assert.Contains(t, dot, `"personne-Bob" [style=dashed`)
	assert.Contains(t, dot, `"personne-Bob" -> "organisation-Org Y" [label="40%", style=dashed]`)
	assert.Contains(t, dot, `"personne-Alice" -> "media-Canal X" [label="60%"]`)
}

func TestClone(t *testing.T) {
	g := New([]Node{{ID: "a"}, {ID: "b"}}, []Edge{{Source: "a", Target: "b"}})
	c := g.Clone()

	g.Node("a").Pos.X = 42
	assert.Zero(t, c.Node("a").Pos.X)
	assert.True(t, c.Has("b"))
	assert.Len(t, c.Edges, 1)

	var nilGraph *Graph
	assert.Nil(t, nilGraph.Clone())
}
