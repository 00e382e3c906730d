// Package metrics provides Prometheus metrics for the consultation server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	RepliesInFlight prometheus.Gauge
	// outcome: completed, empty, failed, aborted, rejected
	RepliesTotal *prometheus.CounterVec

	QuoteMutationsTotal *prometheus.CounterVec
}

// New registers all metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "avquote_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "avquote_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		RepliesInFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "avquote_replies_in_flight",
				Help: "Assistant replies currently streaming",
			},
		),
		RepliesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "avquote_replies_total",
				Help: "Assistant replies by outcome",
			},
			[]string{"outcome"},
		),
		QuoteMutationsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "avquote_quote_mutations_total",
				Help: "Quote mutations by operation",
			},
			[]string{"operation"},
		),
	}
}
