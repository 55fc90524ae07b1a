package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the application
type Registry struct {
	// Simulation Metrics
	SimulationStepsTotal    prometheus.Counter
	SimulationFramesSkipped prometheus.Counter
	SimulationSettledTotal  prometheus.Counter
	SimulationStepDuration  prometheus.Histogram
	SimulationDisplacement  prometheus.Gauge
	SimulationRunning       prometheus.Gauge

	// Graph Metrics
	GraphNodes    *prometheus.GaugeVec
	GraphEdges    prometheus.Gauge
	GraphDangling prometheus.Gauge

	// Render Metrics
	RendersTotal   *prometheus.CounterVec
	RenderDuration *prometheus.HistogramVec

	// Fetch Metrics
	FetchRequestsTotal *prometheus.CounterVec
	FetchDuration      *prometheus.HistogramVec

	// HTTP Metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	SessionsActive      prometheus.Gauge

	registry *prometheus.Registry
	mu       sync.Mutex
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	r.initSimulationMetrics()
	r.initGraphMetrics()
	r.initRenderMetrics()
	r.initFetchMetrics()
	r.initHTTPMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
