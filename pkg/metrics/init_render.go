package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initRenderMetrics() {
	r.RendersTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "reseau_renders_total",
			Help: "Total number of rendered frames",
		},
		[]string{"format"},
	)

	r.RenderDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reseau_render_duration_seconds",
			Help:    "Time taken to render one frame",
			Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"format"},
	)
}
