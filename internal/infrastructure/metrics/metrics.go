package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors shared by the background workers.
// Request-level metrics are recorded by the HTTP middleware.
type Metrics struct {
	// Outbox metrics
	EventsPublished *prometheus.CounterVec
	EventsFailed    *prometheus.CounterVec
	OutboxBatchSize prometheus.Histogram

	// Database pool metrics
	DBConnectionsTotal prometheus.Gauge
	DBConnectionsIdle  prometheus.Gauge
}

// New creates and registers the collectors.
func New() *Metrics {
	return &Metrics{
		EventsPublished: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lexocore_events_published_total",
				Help: "Total outbox events published by type",
			},
			[]string{"event_type"},
		),
		EventsFailed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lexocore_events_failed_total",
				Help: "Total outbox event publish failures by type",
			},
			[]string{"event_type"},
		),
		OutboxBatchSize: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "lexocore_outbox_batch_size",
			Help:    "Number of events processed per outbox poll",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
		}),

		DBConnectionsTotal: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "lexocore_db_connections_total",
			Help: "Current number of database connections in the pool",
		}),
		DBConnectionsIdle: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "lexocore_db_connections_idle",
			Help: "Current number of idle database connections in the pool",
		}),
	}
}
