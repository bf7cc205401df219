// Package metrics provides Prometheus metrics for the feed API.
package metrics

import (
	"database/sql"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "journey_feed"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, path, and status code",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		},
	)

	// StoreQueryFailures counts read queries that failed and were degraded
	// to an empty result
	StoreQueryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_query_failures_total",
			Help:      "Read queries that failed and returned an empty result, by operation",
		},
		[]string{"operation"},
	)

	// SchemaFallbacks counts queries retried because a column was missing
	SchemaFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schema_fallbacks_total",
			Help:      "Queries retried without a column the database does not have",
		},
		[]string{"column"},
	)

	ArticlesCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "articles",
			Name:      "created_total",
			Help:      "Article create attempts by result",
		},
		[]string{"result"},
	)

	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "uploads",
			Name:      "total",
			Help:      "Image uploads by kind and result",
		},
		[]string{"kind", "result"},
	)

	// Streaming export metrics
	ExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "total",
			Help:      "Article exports by format and result",
		},
		[]string{"format", "result"},
	)

	ExportRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "records_total",
			Help:      "Articles written by exports, by format",
		},
		[]string{"format"},
	)

	ExportDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "duration_seconds",
			Help:      "Export duration in seconds",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"format"},
	)

	DBConnectionPoolSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "pool_connections",
			Help:      "Database connection pool stats",
		},
		[]string{"state"},
	)
)

// ObserveQueryFailure records a degraded read
func ObserveQueryFailure(operation string) {
	StoreQueryFailures.WithLabelValues(operation).Inc()
}

// ObserveSchemaFallback records a retry without column
func ObserveSchemaFallback(column string) {
	SchemaFallbacks.WithLabelValues(column).Inc()
}

// ObserveExport records a finished export
func ObserveExport(format, result string, durationSeconds float64, recordCount int) {
	ExportsTotal.WithLabelValues(format, result).Inc()
	ExportDuration.WithLabelValues(format).Observe(durationSeconds)
	if recordCount > 0 {
		ExportRecords.WithLabelValues(format).Add(float64(recordCount))
	}
}

// PoolStatsProvider reports database/sql pool statistics
type PoolStatsProvider interface {
	Stats() sql.DBStats
}

// PoolStatsCollector copies pool statistics into gauges periodically
type PoolStatsCollector struct {
	provider PoolStatsProvider
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewPoolStatsCollector creates a new pool stats collector
func NewPoolStatsCollector(provider PoolStatsProvider) *PoolStatsCollector {
	return &PoolStatsCollector{
		provider: provider,
		stopChan: make(chan struct{}),
	}
}

// Start begins collecting pool stats every interval
func (c *PoolStatsCollector) Start(interval time.Duration) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		c.collect()

		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopChan:
				return
			}
		}
	}()
}

func (c *PoolStatsCollector) collect() {
	stats := c.provider.Stats()
	DBConnectionPoolSize.WithLabelValues("open").Set(float64(stats.OpenConnections))
	DBConnectionPoolSize.WithLabelValues("idle").Set(float64(stats.Idle))
	DBConnectionPoolSize.WithLabelValues("in_use").Set(float64(stats.InUse))
}

// Stop stops the pool stats collector
func (c *PoolStatsCollector) Stop() {
	close(c.stopChan)
	c.wg.Wait()
}
