package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the growth pipeline.
type Metrics struct {
	FetchAttempts *prometheus.CounterVec // labels: outcome={success,transient,cached}
	RowsIngested  prometheus.Counter
	RegionsLoaded prometheus.Gauge
	IngestErrors  *prometheus.CounterVec // labels: kind={schema,gap,row,other}

	// Per-region analysis metrics.
	FitResults *prometheus.CounterVec // labels: result={fitted,insufficient_window,division_by_zero,raw}

	RunDuration     prometheus.Histogram
	RunsTotal       *prometheus.CounterVec // labels: outcome={success,failure}
	LastSuccess     prometheus.Gauge
	PipelineRunning prometheus.Gauge
	SummariesOut    prometheus.Counter
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.FetchAttempts,
		m.RowsIngested,
		m.RegionsLoaded,
		m.IngestErrors,
		m.FitResults,
		m.RunDuration,
		m.RunsTotal,
		m.LastSuccess,
		m.PipelineRunning,
		m.SummariesOut,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FetchAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "case_growth",
			Name:      "fetch_attempts_total",
			Help:      "Feed fetch attempts by outcome.",
		}, []string{"outcome"}),
		RowsIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "case_growth",
			Name:      "rows_ingested_total",
			Help:      "Total feed rows accepted by ingestion.",
		}),
		RegionsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "case_growth",
			Name:      "regions_loaded",
			Help:      "Number of regions in the last successfully ingested feed.",
		}),
		IngestErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "case_growth",
			Name:      "ingest_errors_total",
			Help:      "Fatal ingestion errors by kind.",
		}, []string{"kind"}),
		FitResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "case_growth",
			Name:      "fit_results_total",
			Help:      "Per-region growth fit outcomes.",
		}, []string{"result"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "case_growth",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete fetch-ingest-analyze-emit run.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "case_growth",
			Name:      "runs_total",
			Help:      "Pipeline runs by outcome.",
		}, []string{"outcome"}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "case_growth",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "case_growth",
			Name:      "pipeline_running",
			Help:      "1 when the refresh loop is active, 0 when shut down.",
		}),
		SummariesOut: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "case_growth",
			Name:      "summaries_published_total",
			Help:      "Region summaries written to the summary topic.",
		}),
	}
}
