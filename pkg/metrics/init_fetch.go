package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initFetchMetrics() {
	r.FetchRequestsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "reseau_fetch_requests_total",
			Help: "Total number of upstream API requests",
		},
		[]string{"collection", "status"},
	)

	r.FetchDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reseau_fetch_duration_seconds",
			Help:    "Upstream API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"collection"},
	)
}
