package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "adcirc_etl"

// File kinds used as the "kind" label on parse metrics.
const (
	KindGrid  = "grid"
	KindField = "field"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the ETL pipeline.
type Metrics struct {
	// Parse metrics, labelled by kind={grid,field}.
	FilesParsed   *prometheus.CounterVec
	ParseErrors   *prometheus.CounterVec
	ParseDuration *prometheus.HistogramVec

	TruncatedSeries  prometheus.Counter
	StationsProduced prometheus.Counter
	TransformErrors  prometheus.Counter
	PipelineRunning  prometheus.Gauge
	RunDuration      prometheus.Histogram

	// Datum conversion metrics.
	DatumRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	DatumCache       *prometheus.CounterVec // labels: result={hit,miss}
	DatumAPIDuration prometheus.Histogram
	DatumEnabled     prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FilesParsed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_parsed_total",
			Help:      "ADCIRC files parsed successfully, by kind.",
		}, []string{"kind"}),
		ParseErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_errors_total",
			Help:      "ADCIRC files that failed to parse, by kind.",
		}, []string{"kind"}),
		ParseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "parse_duration_seconds",
			Help:      "Time spent parsing an ADCIRC file, by kind.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 180},
		}, []string{"kind"}),
		TruncatedSeries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "truncated_series_total",
			Help:      "Field files holding fewer timesteps than their header declared.",
		}),
		StationsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stations_produced_total",
			Help:      "Station series written to the sink topic.",
		}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transform_errors_total",
			Help:      "Station extraction failures.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 while a pipeline run is in progress, 0 otherwise.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete extract-transform-load run.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900},
		}),
		DatumRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "datum_requests_total",
			Help:      "Datum conversion API requests by outcome.",
		}, []string{"outcome"}),
		DatumCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "datum_cache_total",
			Help:      "Datum conversion cache lookups by result.",
		}, []string{"result"}),
		DatumAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "datum_api_duration_seconds",
			Help:      "VDatum API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		DatumEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "datum_enabled",
			Help:      "1 when datum conversion is enabled, 0 otherwise.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.FilesParsed,
		m.ParseErrors,
		m.ParseDuration,
		m.TruncatedSeries,
		m.StationsProduced,
		m.TransformErrors,
		m.PipelineRunning,
		m.RunDuration,
		m.DatumRequests,
		m.DatumCache,
		m.DatumAPIDuration,
		m.DatumEnabled,
	}
}
