package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initGraphMetrics() {
	r.GraphNodes = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "reseau_graph_nodes",
			Help: "Nodes in the most recently loaded graph, by kind",
		},
		[]string{"kind"},
	)

	r.GraphEdges = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "reseau_graph_edges",
			Help: "Edges in the most recently loaded graph",
		},
	)

	r.GraphDangling = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "reseau_graph_dangling_edges",
			Help: "Edges whose endpoints are not both present",
		},
	)
}
