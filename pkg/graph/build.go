package graph

import (
	"math"

	"github.com/ha1tch/reseau/pkg/geom"
	"github.com/ha1tch/reseau/pkg/medias"
)

// Centre is the world point around which the initial layout is placed and
// towards which gravity pulls.
var Centre = geom.Vec{X: 400, Y: 300}

// ring describes the initial circle of one kind.
type ring struct {
	radius float64
	phase  float64
}

var rings = map[Kind]ring{
	KindMedia:        {250, 0},
	KindPerson:       {200, math.Pi},
	KindOrganisation: {150, math.Pi / 2},
}

// ringPos returns the initial position of the i-th of n nodes of a kind.
func ringPos(kind Kind, i, n int) geom.Vec {
	r := rings[kind]
	angle := 2*math.Pi*float64(i)/float64(n) + r.phase
	return geom.Vec{
		X: Centre.X + math.Cos(angle)*r.radius,
		Y: Centre.Y + math.Sin(angle)*r.radius,
	}
}

func newNode(kind Kind, name string, pos geom.Vec, payload any) Node {
	return Node{
		ID:      NodeID(kind, name),
		Label:   name,
		Kind:    kind,
		Pos:     pos,
		Radius:  kind.Radius(),
		Color:   kind.Color(),
		Payload: payload,
	}
}

// ownerKind maps a declared owner type onto a node kind.
func ownerKind(t medias.OwnerType) Kind {
	if t == medias.OwnerOrganisation {
		return KindOrganisation
	}
	return KindPerson
}

// relation classifies an edge from its endpoint kinds, so the same relation
// gets the same kind whichever record declared it.
func relation(owner, owned Kind) EdgeKind {
	switch {
	case owned == KindOrganisation:
		return EdgeSubsidiary
	case owner == KindOrganisation:
		return EdgeOrganisation
	default:
		return EdgeOwner
	}
}

// edgeSet accumulates edges, keeping the first of any (source, target) pair.
type edgeSet struct {
	edges []Edge
	seen  map[[2]string]bool
}

func (s *edgeSet) add(ownerKind Kind, owner string, ownedKind Kind, owned, label string) {
	source, target := NodeID(ownerKind, owner), NodeID(ownedKind, owned)
	key := [2]string{source, target}
	if s.seen[key] {
		return
	}
	s.seen[key] = true
	s.edges = append(s.edges, Edge{
		Source: source,
		Target: target,
		Label:  label,
		Kind:   relation(ownerKind, ownedKind),
	})
}

// Build turns the three collections into a graph with a circular initial
// layout. Every reference found on a record becomes an edge pointing from
// owner to owned, so a relation declared on both sides yields one edge.
// Referenced entities are not required to exist. Inputs are not modified;
// node payloads point into them.
func Build(ms []medias.Media, ps []medias.Personne, orgs []medias.Organisation) *Graph {
	nodes := make([]Node, 0, len(ms)+len(ps)+len(orgs))
	set := &edgeSet{seen: make(map[[2]string]bool)}

	for i := range ms {
		m := &ms[i]
		nodes = append(nodes, newNode(KindMedia, m.Name, ringPos(KindMedia, i, len(ms)), m))

		for _, o := range m.Owners {
			set.add(ownerKind(o.Type), o.Name, KindMedia, m.Name, o.Value)
		}
	}

	for i := range ps {
		p := &ps[i]
		nodes = append(nodes, newNode(KindPerson, p.Name, ringPos(KindPerson, i, len(ps)), p))

		for _, h := range p.Organisations {
			set.add(KindPerson, p.Name, KindOrganisation, h.Name, h.Value)
		}
		for _, h := range p.DirectMedia {
			set.add(KindPerson, p.Name, KindMedia, h.Name, h.Value)
		}
	}

	for i := range orgs {
		o := &orgs[i]
		nodes = append(nodes, newNode(KindOrganisation, o.Name, ringPos(KindOrganisation, i, len(orgs)), o))

		for _, w := range o.Owners {
			set.add(ownerKind(w.Type), w.Name, KindOrganisation, o.Name, w.Value)
		}
		for _, sub := range o.Subsidiaries {
			set.add(KindOrganisation, o.Name, KindOrganisation, sub.Name, sub.Value)
		}
		for _, h := range o.Media {
			set.add(KindOrganisation, o.Name, KindMedia, h.Name, h.Value)
		}
	}

	return New(nodes, set.edges)
}

// BuildDataset is Build over a medias.Dataset.
func BuildDataset(ds medias.Dataset) *Graph {
	return Build(ds.Medias, ds.Personnes, ds.Organisations)
}
