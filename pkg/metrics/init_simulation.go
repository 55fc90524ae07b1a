package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initSimulationMetrics() {
	r.SimulationStepsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "reseau_simulation_steps_total",
			Help: "Total number of physics steps executed",
		},
	)

	r.SimulationFramesSkipped = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "reseau_simulation_frames_skipped_total",
			Help: "Frames dropped because they arrived before the profile's frame interval",
		},
	)

	r.SimulationSettledTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "reseau_simulation_settled_total",
			Help: "Number of times a simulation went idle after settling",
		},
	)

	r.SimulationStepDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reseau_simulation_step_duration_seconds",
			Help:    "Wall time of one physics step",
			Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05},
		},
	)

	r.SimulationDisplacement = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "reseau_simulation_displacement",
			Help: "Total node displacement of the most recent step",
		},
	)

	r.SimulationRunning = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "reseau_simulation_running",
			Help: "Number of simulation loops currently running",
		},
	)
}
