package metrics

import (
	"time"
)

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordCompile records the outcome and latency of one compilation run
func (r *Registry) RecordCompile(status string, duration time.Duration) {
	r.CompilesTotal.WithLabelValues(status).Inc()
	r.CompileDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// ObserveRun records the volume counters for a successful run
func (r *Registry) ObserveRun(devicesByRole map[string]int, blocks, routes int) {
	for role, n := range devicesByRole {
		r.DevicesGenerated.WithLabelValues(role).Add(float64(n))
	}
	r.BlocksAllocated.Add(float64(blocks))
	r.RoutesGenerated.Add(float64(routes))
}
