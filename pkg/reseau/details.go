package reseau

import (
	"strconv"
	"strings"

	"github.com/ha1tch/reseau/pkg/graph"
	"github.com/ha1tch/reseau/pkg/medias"
)

// Detail is one line of the information panel.
type Detail struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// NotSpecified is shown for empty values.
const NotSpecified = "Non spécifié"

func orNotSpecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return NotSpecified
	}
	return s
}

func ownerNames(owners []medias.Owner) string {
	names := make([]string, 0, len(owners))
	for _, o := range owners {
		names = append(names, o.Name)
	}
	return orNotSpecified(strings.Join(names, ", "))
}

// Details describes a node's entity for the information panel. Nodes
// without a source record only report their kind.
func Details(n *graph.Node) []Detail {
	if n == nil {
		return nil
	}
	out := []Detail{{Key: "Type", Value: string(n.Kind)}}

	switch p := n.Payload.(type) {
	case *medias.Media:
		out = []Detail{
			{Key: "Type", Value: orNotSpecified(p.Type)},
			{Key: "Prix", Value: orNotSpecified(p.Price)},
			{Key: "Propriétaires", Value: ownerNames(p.Owners)},
		}
		if p.Periodicity != "" {
			out = append(out, Detail{Key: "Périodicité", Value: p.Periodicity})
		}
		if p.Scale != "" {
			out = append(out, Detail{Key: "Échelle", Value: p.Scale})
		}
		if p.Defunct {
			out = append(out, Detail{Key: "Statut", Value: "Disparu"})
		}
	case *medias.Personne:
		out = append(out,
			Detail{Key: "Médias directs", Value: strconv.Itoa(len(p.DirectMedia))},
			Detail{Key: "Organisations", Value: strconv.Itoa(len(p.Organisations))},
		)
		if p.Rankings.Challenges2024 != nil {
			out = append(out, Detail{Key: "Challenges 2024", Value: strconv.Itoa(*p.Rankings.Challenges2024)})
		}
		if p.Rankings.Forbes2024 {
			out = append(out, Detail{Key: "Forbes 2024", Value: "oui"})
		}
	case *medias.Organisation:
		out = append(out,
			Detail{Key: "Propriétaires", Value: ownerNames(p.Owners)},
			Detail{Key: "Médias", Value: strconv.Itoa(len(p.Media))},
			Detail{Key: "Filiales", Value: strconv.Itoa(len(p.Subsidiaries))},
		)
		if p.Commentary != "" {
			out = append(out, Detail{Key: "Commentaire", Value: p.Commentary})
		}
	}
	return out
}

// SelectionDetails returns the selected node's label and details, or false
// when nothing is selected.
func (s *Session) SelectionDetails() (string, []Detail, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.ctl.Selection()
	if n == nil {
		return "", nil, false
	}
	return n.Label, Details(n), true
}
