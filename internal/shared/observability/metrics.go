package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

// Tracer is the process-wide tracer for query-path spans. Without an SDK
// installed it is a no-op.
var Tracer = otel.Tracer("pawnlens")

// Metrics definitions
var (
	ParseDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pawnlens_parse_seconds",
		Help:    "Time spent extracting declarations from a source file.",
		Buckets: prometheus.DefBuckets,
	})

	FilesIndexedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pawnlens_files_indexed_total",
		Help: "Total number of file index operations.",
	}, []string{"builtin"})

	IndexedFiles = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pawnlens_indexed_files",
		Help: "Current number of file identities in the item repository.",
	})

	UnresolvedIncludesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pawnlens_unresolved_includes_total",
		Help: "Total number of include directives that settled on an empty table.",
	})

	QueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pawnlens_query_seconds",
		Help:    "Time spent answering an editor query.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})

	QueryErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pawnlens_query_errors_total",
		Help: "Total number of queries rejected or failed.",
	}, []string{"op"})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pawnlens_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	SnapshotHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pawnlens_snapshot_hits_total",
		Help: "Snapshot store lookups by outcome.",
	}, []string{"outcome"})
)
