// Package metrics provides Prometheus metrics for scan and resolve runs.
//
// Metrics live on a dedicated registry rather than the global default so a run can be
// exported as a node_exporter textfile without Go runtime collectors mixed in.
package metrics

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "modorder"
)

// Registry holds every modorder metric.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

// Package results recorded by RecordPackage.
const (
	ResultMod         = "mod"
	ResultAssetOnly   = "asset_only"
	ResultUnsupported = "unsupported"
	ResultError       = "error"
)

// Scan metrics track package processing.
var (
	// PackagesTotal is the total number of packages processed by result.
	PackagesTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "packages_total",
		Help:      "Total number of packages processed",
	}, []string{"result"})

	// PackageDuration is a histogram of per-package open and extract duration.
	PackageDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "package_duration_seconds",
		Help:      "Duration of opening a package and extracting its descriptor",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to ~4s
	})

	// ScanDuration is a histogram of whole scan duration in seconds.
	ScanDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "scan_duration_seconds",
		Help:      "Duration of scanning a mods directory in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~20s
	})
)

// Cache metrics track descriptor cache lookups.
var (
	// CacheHitsTotal is the total number of cache hits.
	CacheHitsTotal = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_hits_total",
		Help:      "Total number of descriptor cache hits",
	})

	// CacheMissesTotal is the total number of cache misses.
	CacheMissesTotal = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_misses_total",
		Help:      "Total number of descriptor cache misses",
	})
)

// Resolve metrics track load order computation.
var (
	// ModsTotal is the number of mods in the last resolved graph.
	ModsTotal = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "mods_total",
		Help:      "Number of mods in the last resolved graph",
	})

	// WarningsTotal is the number of resolver warnings of the last run by kind.
	WarningsTotal = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "resolve_warnings",
		Help:      "Number of resolver warnings in the last run",
	}, []string{"kind"})

	// ResolveFailuresTotal is the total number of resolutions that failed.
	ResolveFailuresTotal = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "resolve_failures_total",
		Help:      "Total number of load order computations that failed",
	})

	// ResolveDuration is a histogram of resolve duration in seconds.
	ResolveDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "resolve_duration_seconds",
		Help:      "Duration of load order computation in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10), // 10us to ~2.6s
	})
)

// BuildInfo provides version and build information.
var BuildInfo = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: namespace,
	Name:      "build_info",
	Help:      "Version and build information",
}, []string{"version", "go_version"})

// RecordPackage records one processed package.
func RecordPackage(result string, duration time.Duration) {
	PackagesTotal.WithLabelValues(result).Inc()
	PackageDuration.Observe(duration.Seconds())
}

// RecordScan records a completed scan.
func RecordScan(duration time.Duration) {
	ScanDuration.Observe(duration.Seconds())
}

// RecordCacheAccess records a cache access.
func RecordCacheAccess(hit bool) {
	if hit {
		CacheHitsTotal.Inc()
	} else {
		CacheMissesTotal.Inc()
	}
}

// RecordResolve records a load order computation.
func RecordResolve(duration time.Duration, mods, missing, outdated int, err error) {
	ResolveDuration.Observe(duration.Seconds())
	ModsTotal.Set(float64(mods))
	WarningsTotal.WithLabelValues("missing").Set(float64(missing))
	WarningsTotal.WithLabelValues("outdated").Set(float64(outdated))
	if err != nil {
		ResolveFailuresTotal.Inc()
	}
}

// SetBuildInfo records the running version.
func SetBuildInfo(version string) {
	BuildInfo.WithLabelValues(version, runtime.Version()).Set(1)
}

// WriteTextfile writes the current metrics to path in the Prometheus text format.
func WriteTextfile(path string) error {
	if path == "" {
		return errors.New("metrics textfile path is empty")
	}
	if err := prometheus.WriteToTextfile(path, Registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile; %w", err)
	}
	return nil
}

// WatchChangesTotal is the total number of package changes handled in watch mode.
var WatchChangesTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "watch_changes_total",
	Help:      "Total number of package changes handled in watch mode",
})

// RecordWatchBatch records one batch of package changes.
func RecordWatchBatch(changes int) {
	WatchChangesTotal.Add(float64(changes))
}
