package interact

import "github.com/ha1tch/reseau/pkg/graph"

// Navigator receives requests to leave the network for an entity's own
// view. Each callback gets the entity name. Nil callbacks are skipped.
type Navigator struct {
	OnMedia        func(name string)
	OnPerson       func(name string)
	OnOrganisation func(name string)
}

// Navigate calls the callback matching the node's kind. It reports whether
// one ran.
func (nav Navigator) Navigate(n *graph.Node) bool {
	if n == nil {
		return false
	}
	var fn func(string)
	switch n.Kind {
	case graph.KindMedia:
		fn = nav.OnMedia
	case graph.KindPerson:
		fn = nav.OnPerson
	case graph.KindOrganisation:
		fn = nav.OnOrganisation
	}
	if fn == nil {
		return false
	}
	fn(n.Label)
	return true
}
