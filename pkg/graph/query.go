package graph

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// MinQueryLen is the shortest search text that filters anything.
const MinQueryLen = 2

// Filter selects the nodes shown by the viewer. The zero value shows
// everything.
type Filter struct {
	Kind  Kind   // empty for all kinds
	Query string // case-insensitive substring of the label
}

// Active reports whether the filter hides anything.
func (f Filter) Active() bool {
	return f.Kind != "" || utf8.RuneCountInString(f.Query) >= MinQueryLen
}

// Match reports whether n passes the filter.
func (f Filter) Match(n *Node) bool {
	if f.Kind != "" && n.Kind != f.Kind {
		return false
	}
	if utf8.RuneCountInString(f.Query) >= MinQueryLen &&
		!strings.Contains(strings.ToLower(n.Label), strings.ToLower(f.Query)) {
		return false
	}
	return true
}

// Filter returns the nodes passing f, in node order.
func (g *Graph) Filter(f Filter) []*Node {
	if g == nil {
		return nil
	}
	out := make([]*Node, 0, len(g.Nodes))
	for i := range g.Nodes {
		if f.Match(&g.Nodes[i]) {
			out = append(out, &g.Nodes[i])
		}
	}
	return out
}

// Neighbourhood returns the node itself plus every node one edge away from
// it, in either direction. Endpoints missing from the graph are left out.
// An unknown id yields an empty set.
func (g *Graph) Neighbourhood(id string) map[string]bool {
	set := make(map[string]bool)
	if !g.Has(id) {
		return set
	}
	set[id] = true
	for _, e := range g.Edges {
		switch id {
		case e.Source:
			if g.Has(e.Target) {
				set[e.Target] = true
			}
		case e.Target:
			if g.Has(e.Source) {
				set[e.Source] = true
			}
		}
	}
	return set
}

// Degree counts the outgoing edges of a node.
type Degree struct {
	ID    string
	Label string
	Kind  Kind
	Out   int
}

// Stats summarises a graph.
type Stats struct {
	Nodes     int
	Edges     int
	Dangling  int // edges with at least one missing endpoint
	ByKind    map[Kind]int
	ByEdge    map[EdgeKind]int
	TopOwners []Degree
}

// Stats computes counts and the top owners by out-degree, keeping at most
// top entries. Ties are broken by label.
func (g *Graph) Stats(top int) Stats {
	s := Stats{
		ByKind: make(map[Kind]int),
		ByEdge: make(map[EdgeKind]int),
	}
	if g == nil {
		return s
	}

	s.Nodes = len(g.Nodes)
	s.Edges = len(g.Edges)
	for i := range g.Nodes {
		s.ByKind[g.Nodes[i].Kind]++
	}

	out := make(map[string]int)
	for _, e := range g.Edges {
		s.ByEdge[e.Kind]++
		if !g.Resolved(e) {
			s.Dangling++
		}
		if g.Has(e.Source) {
			out[e.Source]++
		}
	}

	for id, n := range out {
		node := g.Node(id)
		s.TopOwners = append(s.TopOwners, Degree{ID: id, Label: node.Label, Kind: node.Kind, Out: n})
	}
	sort.Slice(s.TopOwners, func(i, j int) bool {
		a, b := s.TopOwners[i], s.TopOwners[j]
		if a.Out != b.Out {
			return a.Out > b.Out
		}
		return a.Label < b.Label
	})
	if top >= 0 && len(s.TopOwners) > top {
		s.TopOwners = s.TopOwners[:top]
	}

	return s
}
