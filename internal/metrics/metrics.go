// Package metrics defines the Prometheus collectors exported by the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles every collector so transports and sinks share one registry.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal      *prometheus.CounterVec
	HTTPRequestDuration    *prometheus.HistogramVec
	StorageOperationsTotal *prometheus.CounterVec
	AuditQueueDepth        prometheus.Gauge
	AuditEntriesDropped    prometheus.Counter
	AuditBatchFlushTotal   prometheus.Counter
}

// New creates the collectors and registers them on a fresh registry together
// with the standard Go and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "points_http_requests_total",
			Help: "Total number of HTTP requests by route and status code",
		}, []string{"route", "method", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "points_http_request_duration_seconds",
			Help:    "Duration of HTTP request processing in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		StorageOperationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "points_storage_operations_total",
			Help: "Total number of repository operations by kind and outcome",
		}, []string{"operation", "outcome"}),
		AuditQueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "points_audit_queue_depth",
			Help: "Number of audit entries waiting to be flushed",
		}),
		AuditEntriesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "points_audit_entries_dropped_total",
			Help: "Audit entries dropped because the sink queue was full",
		}),
		AuditBatchFlushTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "points_audit_batch_flush_total",
			Help: "Total number of audit batch flush operations",
		}),
	}

	m.registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.StorageOperationsTotal,
		m.AuditQueueDepth,
		m.AuditEntriesDropped,
		m.AuditBatchFlushTotal,
	)

	return m
}

// Registry exposes the registry for the /metrics handler and the gRPC
// interceptor metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
