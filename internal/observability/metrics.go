package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// reconciliation pipeline.
type Metrics struct {
	RequestsConsumed    prometheus.Counter
	RequestErrors       prometheus.Counter
	ShipmentsNormalized *prometheus.CounterVec // label: carrier
	OutliersFlagged     prometheus.Counter
	ResultsPublished    prometheus.Counter
	PipelineRunning     prometheus.Gauge

	RequestRows       prometheus.Histogram
	ReconcileDuration prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RequestsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "billing_recon",
			Name:      "requests_consumed_total",
			Help:      "Total reconciliation requests read from the source topic.",
		}),
		RequestErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "billing_recon",
			Name:      "request_errors_total",
			Help:      "Total requests skipped because they could not be decoded or exceeded limits.",
		}),
		ShipmentsNormalized: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "billing_recon",
			Name:      "shipments_normalized_total",
			Help:      "Total shipments normalized, by carrier.",
		}, []string{"carrier"}),
		OutliersFlagged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "billing_recon",
			Name:      "outliers_flagged_total",
			Help:      "Total shipments flagged as per-kg-rate outliers.",
		}),
		ResultsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "billing_recon",
			Name:      "results_published_total",
			Help:      "Total reconciliation results written to the sink topic.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "billing_recon",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		RequestRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "billing_recon",
			Name:      "request_rows",
			Help:      "Raw rows per reconciliation request, both carriers combined.",
			Buckets:   []float64{10, 50, 100, 500, 1000, 5000, 10000, 50000},
		}),
		ReconcileDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "billing_recon",
			Name:      "reconcile_duration_seconds",
			Help:      "Duration of a complete normalize-detect-aggregate cycle.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
	}

	prometheus.MustRegister(
		m.RequestsConsumed,
		m.RequestErrors,
		m.ShipmentsNormalized,
		m.OutliersFlagged,
		m.ResultsPublished,
		m.PipelineRunning,
		m.RequestRows,
		m.ReconcileDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RequestsConsumed:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "billing_recon", Name: "requests_consumed_total"}),
		RequestErrors:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "billing_recon", Name: "request_errors_total"}),
		ShipmentsNormalized: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "billing_recon", Name: "shipments_normalized_total"}, []string{"carrier"}),
		OutliersFlagged:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "billing_recon", Name: "outliers_flagged_total"}),
		ResultsPublished:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "billing_recon", Name: "results_published_total"}),
		PipelineRunning:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "billing_recon", Name: "pipeline_running"}),
		RequestRows:         prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "billing_recon", Name: "request_rows"}),
		ReconcileDuration:   prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "billing_recon", Name: "reconcile_duration_seconds"}),
	}
}
