package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ha1tch/reseau/internal/ui"
	"github.com/ha1tch/reseau/pkg/graph"
)

// statsReport is the --json form of stats.
type statsReport struct {
	Nodes     int                    `json:"nodes"`
	Edges     int                    `json:"edges"`
	Dangling  int                    `json:"dangling"`
	ByKind    map[graph.Kind]int     `json:"byKind"`
	ByEdge    map[graph.EdgeKind]int `json:"byEdge"`
	TopOwners []ownerReport          `json:"topOwners"`
}

type ownerReport struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Kind  graph.Kind `json:"kind"`
	Owned int        `json:"owned"`
}

func statsCmd(a *app) *cobra.Command {
	var (
		top    int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Count entities and relations and list the biggest owners",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := a.dataset(cmd.Context())
			if err != nil {
				return err
			}
			st := graph.BuildDataset(ds).Stats(top)
			out := cmd.OutOrStdout()

			if asJSON {
				r := statsReport{
					Nodes:     st.Nodes,
					Edges:     st.Edges,
					Dangling:  st.Dangling,
					ByKind:    st.ByKind,
					ByEdge:    st.ByEdge,
					TopOwners: []ownerReport{},
				}
				for _, d := range st.TopOwners {
					r.TopOwners = append(r.TopOwners, ownerReport{ID: d.ID, Name: d.Label, Kind: d.Kind, Owned: d.Out})
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(r)
			}

			ui.Banner(out, "stats")
			if st.Nodes == 0 {
				ui.Warn.Fprintln(out, "  Aucune donnée disponible")
				return nil
			}

			rows := make([][]string, 0, len(graph.Kinds))
			for _, k := range graph.Kinds {
				rows = append(rows, []string{ui.Kind(k), strconv.Itoa(st.ByKind[k])})
			}
			ui.Table(out, []string{"Entités", "Nombre"}, rows)
			fmt.Fprintln(out)

			edgeKinds := []graph.EdgeKind{graph.EdgeOwner, graph.EdgeSubsidiary, graph.EdgeOrganisation}
			rows = rows[:0]
			for _, k := range edgeKinds {
				rows = append(rows, []string{string(k), strconv.Itoa(st.ByEdge[k])})
			}
			ui.Table(out, []string{"Relations", "Nombre"}, rows)
			fmt.Fprintln(out)

			fmt.Fprintf(out, "  %d nodes, %d edges", st.Nodes, st.Edges)
			if st.Dangling > 0 {
				fmt.Fprintf(out, ", %s %d dangling", ui.WarnIcon(), st.Dangling)
			}
			fmt.Fprint(out, "\n\n")

			if len(st.TopOwners) > 0 {
				rows = rows[:0]
				for i, d := range st.TopOwners {
					rows = append(rows, []string{strconv.Itoa(i + 1), d.Label, d.Kind.Title(), strconv.Itoa(d.Out)})
				}
				ui.Table(out, []string{"#", "Propriétaire", "Type", "Possessions"}, rows)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&top, "top", "n", 10, "Number of owners listed")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the statistics as JSON")
	return cmd
}
