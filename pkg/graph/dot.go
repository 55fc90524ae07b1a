package graph

import (
	"fmt"
	"strings"
)

var dotShapes = map[Kind]string{
	KindMedia:        "box",
	KindPerson:       "ellipse",
	KindOrganisation: "hexagon",
}

// GenerateDOT converts the graph to Graphviz DOT format. Dangling edges are
// kept, with their missing endpoint drawn as a dashed placeholder.
func GenerateDOT(g *Graph, title string) string {
	var sb strings.Builder

	sb.WriteString("digraph Reseau {\n")
	sb.WriteString("    rankdir=LR;\n")
	sb.WriteString("    node [fontname=\"Helvetica\", fontsize=11, style=filled, fontcolor=white];\n")
	sb.WriteString("    edge [fontname=\"Helvetica\", fontsize=10, color=\"#94a3b8\"];\n")
	sb.WriteString("\n")

	if title != "" {
		sb.WriteString("    labelloc=\"t\";\n")
		sb.WriteString(fmt.Sprintf("    label=\"%s\";\n", escapeDOT(title)))
		sb.WriteString("\n")
	}

	if g == nil {
		sb.WriteString("}\n")
		return sb.String()
	}

	for i := range g.Nodes {
		n := &g.Nodes[i]
		sb.WriteString(fmt.Sprintf("    \"%s\" [label=\"%s\", shape=%s, fillcolor=\"%s\"];\n",
			escapeDOT(n.ID), escapeDOT(n.Label), dotShapes[n.Kind], n.Color))
	}
	sb.WriteString("\n")

	missing := make(map[string]bool)
	for _, e := range g.Edges {
		for _, id := range []string{e.Source, e.Target} {
			if !g.Has(id) && !missing[id] {
				missing[id] = true
				sb.WriteString(fmt.Sprintf("    \"%s\" [style=dashed, fontcolor=\"#64748b\"];\n", escapeDOT(id)))
			}
		}
	}
	if len(missing) > 0 {
		sb.WriteString("\n")
	}

	for _, e := range g.Edges {
		attrs := fmt.Sprintf("label=\"%s\"", escapeDOT(e.Label))
		if !g.Resolved(e) {
			attrs += ", style=dashed"
		}
		sb.WriteString(fmt.Sprintf("    \"%s\" -> \"%s\" [%s];\n",
			escapeDOT(e.Source), escapeDOT(e.Target), attrs))
	}

	sb.WriteString("}\n")

	return sb.String()
}

func escapeDOT(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "<", "\\<")
	s = strings.ReplaceAll(s, ">", "\\>")
	return s
}
