package metrics

import (
	"time"
)

// The Record and Set helpers are no-ops on a nil *Registry, so components
// can be built without metrics.

// RecordStep records one executed physics step
func (r *Registry) RecordStep(duration time.Duration, displacement float64) {
	if r == nil {
		return
	}
	r.SimulationStepsTotal.Inc()
	r.SimulationStepDuration.Observe(duration.Seconds())
	r.SimulationDisplacement.Set(displacement)
}

// RecordSkippedFrames adds frames dropped by the frame governor
func (r *Registry) RecordSkippedFrames(n uint64) {
	if r == nil || n == 0 {
		return
	}
	r.SimulationFramesSkipped.Add(float64(n))
}

// RecordSettled records a loop going idle after its layout settled
func (r *Registry) RecordSettled() {
	if r == nil {
		return
	}
	r.SimulationSettledTotal.Inc()
}

// LoopStarted marks a frame loop as running.
func (r *Registry) LoopStarted() {
	if r == nil {
		return
	}
	r.SimulationRunning.Inc()
}

// LoopStopped marks a frame loop as idle.
func (r *Registry) LoopStopped() {
	if r == nil {
		return
	}
	r.SimulationRunning.Dec()
}

// SetGraph publishes the size of a freshly loaded graph
func (r *Registry) SetGraph(byKind map[string]int, edges, dangling int) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.GraphNodes.Reset()
	for kind, n := range byKind {
		r.GraphNodes.WithLabelValues(kind).Set(float64(n))
	}
	r.GraphEdges.Set(float64(edges))
	r.GraphDangling.Set(float64(dangling))
}

// RecordRender records one rendered frame in the given format (png, svg, term)
func (r *Registry) RecordRender(format string, duration time.Duration) {
	if r == nil {
		return
	}
	r.RendersTotal.WithLabelValues(format).Inc()
	r.RenderDuration.WithLabelValues(format).Observe(duration.Seconds())
}

// RecordFetch records an upstream API request
func (r *Registry) RecordFetch(collection, status string, duration time.Duration) {
	if r == nil {
		return
	}
	r.FetchRequestsTotal.WithLabelValues(collection, status).Inc()
	r.FetchDuration.WithLabelValues(collection).Observe(duration.Seconds())
}

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if r == nil {
		return
	}
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// SetSessions publishes the number of open sessions
func (r *Registry) SetSessions(n int) {
	if r == nil {
		return
	}
	r.SessionsActive.Set(float64(n))
}
