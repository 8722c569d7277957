// Package metrics provides the Prometheus metrics exported by the journey planner.
package metrics

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "journeyplanner"

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	Registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Engine metrics
	ProfileComputations prometheus.Counter
	ProfileDuration     prometheus.Histogram
	ConnectionsScanned  prometheus.Counter
	ProfileCacheHits    prometheus.Counter
	ProfileCacheMisses  prometheus.Counter
	ProfileCacheEntries prometheus.Gauge

	logger *slog.Logger

	collectorStarted atomic.Bool
	cancel           context.CancelFunc
	wg               sync.WaitGroup
}

// New creates and registers all application metrics with a new registry.
func New() *Metrics {
	return NewWithLogger(nil)
}

// NewWithLogger creates metrics with a logger for error reporting.
func NewWithLogger(logger *slog.Logger) *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		ProfileComputations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "profile_computations_total",
			Help:      "Number of profiles computed by the router",
		}),
		ProfileDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "profile_duration_seconds",
			Help:      "Time spent scanning connections for one profile",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		ConnectionsScanned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_scanned_total",
			Help:      "Number of connections scanned across all profile computations",
		}),
		ProfileCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "profile_cache_hits_total",
			Help:      "Profile lookups served from the cache",
		}),
		ProfileCacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "profile_cache_misses_total",
			Help:      "Profile lookups that required a computation",
		}),
		ProfileCacheEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "profile_cache_entries",
			Help:      "Number of profiles currently held in the cache",
		}),
		logger: logger,
	}

	m.Registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ProfileComputations,
		m.ProfileDuration,
		m.ConnectionsScanned,
		m.ProfileCacheHits,
		m.ProfileCacheMisses,
		m.ProfileCacheEntries,
	)
	return m
}

// ObserveProfile records one profile computation.
func (m *Metrics) ObserveProfile(duration time.Duration, connections int) {
	m.ProfileComputations.Inc()
	m.ProfileDuration.Observe(duration.Seconds())
	m.ConnectionsScanned.Add(float64(connections))
}

// CacheHit and CacheMiss count profile cache lookups.
func (m *Metrics) CacheHit()  { m.ProfileCacheHits.Inc() }
func (m *Metrics) CacheMiss() { m.ProfileCacheMisses.Inc() }

// StartCacheSizeCollector samples size every interval into the cache entries gauge.
// Only the first call starts a collector. Call Shutdown to stop it.
func (m *Metrics) StartCacheSizeCollector(size func() int, interval time.Duration) {
	if size == nil {
		return
	}
	if !m.collectorStarted.CompareAndSwap(false, true) {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.wg.Add(1)
	m.cancel = cancel

	go func() {
		defer m.wg.Done()
		defer func() {
			if r := recover(); r != nil && m.logger != nil {
				m.logger.Error("panic in cache size collector", "error", r)
			}
		}()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		m.ProfileCacheEntries.Set(float64(size()))
		for {
			select {
			case <-ticker.C:
				m.ProfileCacheEntries.Set(float64(size()))
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Shutdown stops the collector goroutine and waits for it to exit. It is safe to call
// multiple times.
func (m *Metrics) Shutdown() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
}
