package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus instruments for the alerting pipeline.
type Metrics struct {
	SweepsTotal          prometheus.Counter
	SubscribersProcessed prometheus.Counter
	AlertsSent           prometheus.Counter
	SweepErrors          prometheus.Counter

	// ProviderRequestDuration is labelled by endpoint
	// (geocode, reverse_geocode, air_pollution, weather, forecast).
	ProviderRequestDuration *prometheus.HistogramVec
}

func newMetrics() *Metrics {
	return &Metrics{
		SweepsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aqi_alerting",
			Name:      "sweeps_total",
			Help:      "Total sweep runs, scheduled and manual.",
		}),
		SubscribersProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aqi_alerting",
			Name:      "subscribers_processed_total",
			Help:      "Subscribers for which a reading was obtained.",
		}),
		AlertsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aqi_alerting",
			Name:      "alerts_sent_total",
			Help:      "Alert emails sent successfully.",
		}),
		SweepErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aqi_alerting",
			Name:      "sweep_errors_total",
			Help:      "Per-subscriber failures captured during sweeps.",
		}),
		ProviderRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "aqi_alerting",
			Name:      "provider_request_duration_seconds",
			Help:      "Outbound provider request duration by endpoint.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"endpoint"}),
	}
}

// NewMetrics creates the pipeline metrics and registers them with the
// default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.SweepsTotal,
		m.SubscribersProcessed,
		m.AlertsSent,
		m.SweepErrors,
		m.ProviderRequestDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics across tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
