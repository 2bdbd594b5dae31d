package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lightbooru_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lightbooru_http_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lightbooru_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// Scan metrics
var (
	ScanRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lightbooru_scan_runs_total",
			Help: "Total number of snapshot rebuilds started",
		},
	)

	ScanIsRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lightbooru_scan_is_running",
			Help: "Whether a snapshot rebuild is currently running (1 or 0)",
		},
	)

	ScanLastDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lightbooru_scan_last_duration_seconds",
			Help: "Duration of the last completed snapshot rebuild",
		},
	)

	ScanItemsDiscovered = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lightbooru_scan_items_discovered",
			Help: "Number of media items discovered by the last scan",
		},
	)

	ScanWarningsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lightbooru_scan_warnings_total",
			Help: "Total number of scan warnings (missing metadata, orphaned metadata, unreadable entries)",
		},
	)

	ScanParseErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lightbooru_scan_parse_errors_total",
			Help: "Total number of malformed metadata or overlay files encountered",
		},
	)

	ScanWorkers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lightbooru_scan_workers",
			Help: "Number of workers used by the parallel scanner",
		},
	)
)

// Snapshot and query metrics
var (
	SnapshotItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lightbooru_snapshot_items",
			Help: "Number of view records in the published snapshot",
		},
	)

	QueryTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lightbooru_queries_total",
			Help: "Total number of snapshot queries evaluated",
		},
	)

	QueryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lightbooru_query_duration_seconds",
			Help:    "Snapshot query evaluation duration in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)
)

// Duplicate detection metrics
var (
	DuplicateScanDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lightbooru_duplicate_scan_duration_seconds",
			Help: "Duration of the last duplicate detection pass",
		},
	)

	DuplicateHashErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lightbooru_duplicate_hash_errors_total",
			Help: "Total number of images that could not be perceptually hashed",
		},
	)

	DuplicateClusters = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lightbooru_duplicate_clusters",
			Help: "Number of duplicate clusters found by the last detection pass",
		},
	)
)

// Edit metrics
var (
	EditsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lightbooru_edits_total",
			Help: "Total number of overlay edit operations",
		},
		[]string{"status"},
	)
)
