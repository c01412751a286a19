package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// transformation pipeline. Stage labels name the writing stages
// (global_stats, spatial_anomalies, global_extrema).
type Metrics struct {
	RowsWritten     *prometheus.CounterVec // labels: stage
	BytesWritten    *prometheus.CounterVec // labels: stage
	StagesSkipped   *prometheus.CounterVec // labels: stage
	StageDuration   *prometheus.HistogramVec
	PipelineRunning prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RowsWritten,
		m.BytesWritten,
		m.StagesSkipped,
		m.StageDuration,
		m.PipelineRunning,
	)
	return m
}

// NewMetricsForTesting creates Metrics without touching the default
// registry, avoiding "already registered" panics when called from
// multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RowsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "climate_etl",
			Name:      "rows_written_total",
			Help:      "Rows written to output tables per stage.",
		}, []string{"stage"}),
		BytesWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "climate_etl",
			Name:      "bytes_written_total",
			Help:      "On-disk bytes of written output files per stage.",
		}, []string{"stage"}),
		StagesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "climate_etl",
			Name:      "stages_skipped_total",
			Help:      "Stages skipped because a matching output already existed.",
		}, []string{"stage"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "climate_etl",
			Name:      "stage_duration_seconds",
			Help:      "Wall-clock duration of a writing stage, compute plus IO.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300, 1200, 3600},
		}, []string{"stage"}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "climate_etl",
			Name:      "pipeline_running",
			Help:      "1 while the pipeline is active, 0 once finished.",
		}),
	}
}
