package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "rentwise"

// Metrics holds all Prometheus metrics for the API service.
type Metrics struct {
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	StatusChanges       *prometheus.CounterVec
	LeasesCreated       *prometheus.CounterVec
	GeocodeCacheHits    prometheus.Counter
	GeocodeCacheMisses  prometheus.Counter
	GeocodeRequests     *prometheus.CounterVec
	PhotoUploads        *prometheus.CounterVec
}

// New initializes the metrics and registers them with reg. Tests pass a
// fresh prometheus.NewRegistry() so repeated construction does not panic.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		StatusChanges: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "applications",
			Name:      "status_changes_total",
			Help:      "Total number of committed application status changes by target status.",
		}, []string{"status"}),
		LeasesCreated: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "leases",
			Name:      "created_total",
			Help:      "Total number of leases created by reason.",
		}, []string{"reason"}), // reason: application, approval
		GeocodeCacheHits: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "geocode",
			Name:      "cache_hits_total",
			Help:      "Total number of geocode cache hits.",
		}),
		GeocodeCacheMisses: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "geocode",
			Name:      "cache_misses_total",
			Help:      "Total number of geocode cache misses.",
		}),
		GeocodeRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "geocode",
			Name:      "requests_total",
			Help:      "Total number of upstream geocoding requests by result.",
		}, []string{"result"}), // result: found, empty, error
		PhotoUploads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "photo_uploads_total",
			Help:      "Total number of property photo uploads by result.",
		}, []string{"result"}),
	}
}
