// Package monitoring collects Prometheus metrics for the filesystem service.
package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics.
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Filesystem operation metrics
	OpsTotal   *prometheus.CounterVec
	OpDuration *prometheus.HistogramVec

	// Download metrics
	DownloadsActive prometheus.Gauge
	DownloadsTotal  *prometheus.CounterVec
	DownloadedBytes prometheus.Counter

	// WebSocket metrics
	WSConnections prometheus.Gauge

	startTime time.Time
}

// NewMetrics creates a metrics collector registered on reg. Passing nil uses
// the default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		startTime: time.Now(),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "siphonfs_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "siphonfs_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),

		OpsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "siphonfs_operations_total",
				Help: "Total number of filesystem operations",
			},
			[]string{"op", "code"},
		),
		OpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "siphonfs_operation_duration_seconds",
				Help:    "Filesystem operation duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"op"},
		),

		DownloadsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "siphonfs_downloads_active",
				Help: "Number of in-flight downloads",
			},
		),
		DownloadsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "siphonfs_downloads_total",
				Help: "Total number of downloads by outcome",
			},
			[]string{"status"},
		),
		DownloadedBytes: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "siphonfs_downloaded_bytes_total",
				Help: "Total bytes written by downloads",
			},
		),

		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "siphonfs_ws_connections",
				Help: "Number of open websocket event streams",
			},
		),
	}
}

// RecordHTTPRequest records one HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordOp records one filesystem operation outcome. code is "ok" on
// success, the taxonomy code otherwise. Nil-receiver safe so the service
// can run unmetered.
func (m *Metrics) RecordOp(op, code string, duration time.Duration) {
	if m == nil {
		return
	}
	m.OpsTotal.WithLabelValues(op, code).Inc()
	m.OpDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// DownloadStarted marks a transfer as in flight.
func (m *Metrics) DownloadStarted() {
	if m == nil {
		return
	}
	m.DownloadsActive.Inc()
}

// DownloadFinished records a settled transfer.
func (m *Metrics) DownloadFinished(status string, bytes int64) {
	if m == nil {
		return
	}
	m.DownloadsActive.Dec()
	m.DownloadsTotal.WithLabelValues(status).Inc()
	if bytes > 0 {
		m.DownloadedBytes.Add(float64(bytes))
	}
}

// Uptime returns time since the collector was created.
func (m *Metrics) Uptime() time.Duration {
	return time.Since(m.startTime)
}
