package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "snowfall_setup"

// Metrics holds the Prometheus counters, histograms, and gauges for setup runs.
type Metrics struct {
	RunsTotal   *prometheus.CounterVec // labels: outcome={success,failure}
	RunRunning  prometheus.Gauge
	RunDuration prometheus.Histogram
	LastSuccess prometheus.Gauge

	// Map service metrics.
	MapServerRequests *prometheus.CounterVec // labels: outcome={success,error}
	MapServerDuration prometheus.Histogram
	ShapefilesWritten *prometheus.CounterVec // labels: kind={zone,cwa}
	ShapefileErrors   *prometheus.CounterVec // labels: kind={zone,cwa}

	// Drive mirror metrics.
	DriveFiles *prometheus.CounterVec // labels: result={downloaded,exists,document,error}
	DriveBytes prometheus.Counter

	ArtifactsPublished prometheus.Counter
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := NewMetricsForTesting()
	prometheus.MustRegister(
		m.RunsTotal,
		m.RunRunning,
		m.RunDuration,
		m.LastSuccess,
		m.MapServerRequests,
		m.MapServerDuration,
		m.ShapefilesWritten,
		m.ShapefileErrors,
		m.DriveFiles,
		m.DriveBytes,
		m.ArtifactsPublished,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Completed setup runs by outcome.",
		}, []string{"outcome"}),
		RunRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_running",
			Help:      "1 while a setup run is in progress.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete setup run.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last run that finished without failures.",
		}),
		MapServerRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mapserver_requests_total",
			Help:      "MapServer query requests by outcome.",
		}, []string{"outcome"}),
		MapServerDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "mapserver_request_duration_seconds",
			Help:      "MapServer query duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		ShapefilesWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shapefiles_written_total",
			Help:      "Shapefiles written by kind.",
		}, []string{"kind"}),
		ShapefileErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shapefile_errors_total",
			Help:      "Zones or CWAs that failed to produce a shapefile.",
		}, []string{"kind"}),
		DriveFiles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "drive_files_total",
			Help:      "Drive files visited by result.",
		}, []string{"result"}),
		DriveBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "drive_bytes_downloaded_total",
			Help:      "Bytes downloaded from Drive.",
		}),
		ArtifactsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "artifacts_published_total",
			Help:      "Artifact events published to Kafka.",
		}),
	}
}
