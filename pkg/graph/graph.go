// Package graph builds the ownership network from the three entity
// collections and answers the structural queries the viewer needs:
// lookup, one-hop neighbourhood, kind and text filtering, statistics.
package graph

import (
	"github.com/ha1tch/reseau/pkg/geom"
)

// Kind classifies a node. Values match the API's entity type names.
type Kind string

const (
	KindMedia        Kind = "media"
	KindPerson       Kind = "personne"
	KindOrganisation Kind = "organisation"
)

// Kinds lists every node kind in display order.
var Kinds = []Kind{KindMedia, KindPerson, KindOrganisation}

// kindStyle holds the fixed presentation attributes of a kind.
type kindStyle struct {
	radius float64
	color  string
	glyph  string
	title  string
}

var kindStyles = map[Kind]kindStyle{
	KindMedia:        {20, "#3b82f6", "M", "Médias"},
	KindPerson:       {25, "#8b5cf6", "P", "Personnes"},
	KindOrganisation: {22, "#10b981", "O", "Organisations"},
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	_, ok := kindStyles[k]
	return ok
}

// Radius returns the node radius, in world units, for the kind.
func (k Kind) Radius() float64 { return kindStyles[k].radius }

// Color returns the base colour of the kind as a hex string.
func (k Kind) Color() string { return kindStyles[k].color }

// Glyph returns the single-character symbol drawn at the node centre.
func (k Kind) Glyph() string { return kindStyles[k].glyph }

// Title returns the plural display name used in legends and filters.
func (k Kind) Title() string { return kindStyles[k].title }

// EdgeKind classifies an ownership relation. It carries no physical
// meaning; renderers may style on it.
type EdgeKind string

const (
	EdgeOwner        EdgeKind = "proprietaire" // ownership of a media
	EdgeSubsidiary   EdgeKind = "filiale"      // ownership of an organisation
	EdgeOrganisation EdgeKind = "media"        // an organisation holding a media
)

// Node is a positioned entity of the network.
type Node struct {
	ID     string
	Label  string
	Kind   Kind
	Pos    geom.Vec
	Vel    geom.Vec
	Radius float64
	Color  string

	// Payload points at the source record (*medias.Media, *medias.Personne
	// or *medias.Organisation). It must not be modified.
	Payload any
}

// Edge is a directed relation from an owner to what it owns. Either
// endpoint may be missing from the node set.
type Edge struct {
	Source string
	Target string
	Label  string
	Kind   EdgeKind
}

// Graph is the node and edge set of one load.
type Graph struct {
	Nodes []Node
	Edges []Edge

	index map[string]int
}

// NodeID returns the composite identifier of an entity of the given kind.
func NodeID(kind Kind, name string) string {
	return string(kind) + "-" + name
}

// New returns a graph over the given nodes and edges. Later nodes with an
// already seen id are dropped.
func New(nodes []Node, edges []Edge) *Graph {
	g := &Graph{
		Nodes: make([]Node, 0, len(nodes)),
		Edges: edges,
		index: make(map[string]int, len(nodes)),
	}
	for _, n := range nodes {
		if _, dup := g.index[n.ID]; dup {
			continue
		}
		g.index[n.ID] = len(g.Nodes)
		g.Nodes = append(g.Nodes, n)
	}
	return g
}

// Empty reports whether the graph has no node.
func (g *Graph) Empty() bool {
	return g == nil || len(g.Nodes) == 0
}

// Index returns the position of the node with the given id in Nodes, or -1.
func (g *Graph) Index(id string) int {
	if g == nil {
		return -1
	}
	if i, ok := g.index[id]; ok {
		return i
	}
	return -1
}

// Node returns the node with the given id, or nil when it does not exist.
// The pointer stays valid until the graph is rebuilt.
func (g *Graph) Node(id string) *Node {
	i := g.Index(id)
	if i < 0 {
		return nil
	}
	return &g.Nodes[i]
}

// Has reports whether a node with the given id exists.
func (g *Graph) Has(id string) bool {
	return g.Index(id) >= 0
}

// Resolved reports whether both endpoints of e exist.
func (g *Graph) Resolved(e Edge) bool {
	return g.Has(e.Source) && g.Has(e.Target)
}

// Clone returns a copy whose nodes can be read while the original keeps
// moving. Payloads are shared.
func (g *Graph) Clone() *Graph {
	if g == nil {
		return nil
	}
	c := &Graph{
		Nodes: append([]Node(nil), g.Nodes...),
		Edges: append([]Edge(nil), g.Edges...),
		index: make(map[string]int, len(g.index)),
	}
	for id, i := range g.index {
		c.index[id] = i
	}
	return c
}
