package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the application-level Prometheus metrics. Feature packages
// with high-cardinality concerns (rls, revocation) register their own
// collectors; this struct covers the shared HTTP surface.
type Metrics struct {
	HTTPRequestDuration *prometheus.HistogramVec
	DocumentsCreated    prometheus.Counter
	ShareLinkResolves   *prometheus.CounterVec
}

// New creates and registers all shared Prometheus metrics. Call once per
// process; registration panics on duplicates.
func New() *Metrics {
	return newWith(promauto.With(prometheus.DefaultRegisterer))
}

// NewNop creates unregistered metrics for tests.
func NewNop() *Metrics {
	return newWith(promauto.With(prometheus.NewRegistry()))
}

func newWith(factory promauto.Factory) *Metrics {
	return &Metrics{
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tome_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
		DocumentsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "tome_documents_created_total",
			Help: "Total number of documents created",
		}),
		ShareLinkResolves: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tome_share_link_resolves_total",
			Help: "Public share link resolution attempts by outcome",
		}, []string{"outcome"}),
	}
}
