package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/cronograma-api/internal/models"
	"github.com/noah-isme/cronograma-api/internal/scheduler"
)

// MetricsService encapsulates Prometheus instrumentation and keeps lightweight
// counters for the JSON snapshot endpoint.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	dbQueryDuration *prometheus.HistogramVec
	plannerDuration *prometheus.HistogramVec
	feasibility     *prometheus.CounterVec
	deficit         prometheus.Histogram
	qualityScore    prometheus.Histogram
	maxRun          prometheus.Histogram

	cacheHitCount        uint64
	cacheMissCount       uint64
	requestCount         uint64
	requestDurationTotal uint64
	dbQueryCount         uint64
	dbQueryDurationTotal uint64
	feasibilityCount     uint64
	infeasibleCount      uint64
	distributionCount    uint64
	qualityScoreTotal    uint64
}

// NewMetricsService registers core Prometheus collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache lookups",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	dbQueryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	plannerDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "planner_operation_duration_seconds",
		Help:    "Duration of planner operations",
		Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"operation"})

	feasibility := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_feasibility_checks_total",
		Help: "Feasibility checks by resulting status",
	}, []string{"status"})

	deficit := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "planner_slot_deficit",
		Help:    "Missing sessions for infeasible plans",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	})

	qualityScore := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "planner_distribution_quality_score",
		Help:    "Quality score of generated distributions",
		Buckets: prometheus.LinearBuckets(0, 10, 11),
	})

	maxRun := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "planner_distribution_max_run",
		Help:    "Longest same-subject run of generated distributions",
		Buckets: prometheus.LinearBuckets(1, 1, 8),
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses,
		dbQueryDuration, plannerDuration, feasibility, deficit, qualityScore, maxRun, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheWrite:      cacheWrite,
		cacheHitRatio:   cacheHitRatio,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		dbQueryDuration: dbQueryDuration,
		plannerDuration: plannerDuration,
		feasibility:     feasibility,
		deficit:         deficit,
		qualityScore:    qualityScore,
		maxRun:          maxRun,
	}
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	total := hits + atomic.LoadUint64(&m.cacheMissCount)
	if total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveDBQuery records database query timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
	atomic.AddUint64(&m.dbQueryCount, 1)
	atomic.AddUint64(&m.dbQueryDurationTotal, uint64(duration.Nanoseconds()))
}

// ObserveFeasibility records the outcome of a feasibility check.
func (m *MetricsService) ObserveFeasibility(result scheduler.FeasibilityResult, duration time.Duration) {
	if m == nil {
		return
	}
	m.plannerDuration.WithLabelValues("feasibility").Observe(duration.Seconds())
	m.feasibility.WithLabelValues(string(result.Status)).Inc()
	atomic.AddUint64(&m.feasibilityCount, 1)
	if !result.IsFeasible {
		m.deficit.Observe(float64(result.Deficit))
		atomic.AddUint64(&m.infeasibleCount, 1)
	}
}

// ObserveDistribution records a generated sequence and its quality.
func (m *MetricsService) ObserveDistribution(analysis scheduler.DistributionAnalysis, quality scheduler.QualityReport, duration time.Duration) {
	if m == nil {
		return
	}
	m.plannerDuration.WithLabelValues("distribution").Observe(duration.Seconds())
	m.qualityScore.Observe(float64(quality.Score))
	m.maxRun.Observe(float64(analysis.MaxConsecutiveSubject))
	atomic.AddUint64(&m.distributionCount, 1)
	if quality.Score > 0 {
		atomic.AddUint64(&m.qualityScoreTotal, uint64(quality.Score))
	}
}

// Snapshot returns aggregated metrics suitable for JSON consumers.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	dbCount := atomic.LoadUint64(&m.dbQueryCount)
	distributions := atomic.LoadUint64(&m.distributionCount)

	return models.SystemMetrics{
		CacheHitRatio:            ratio(hits, hits+misses),
		CacheHits:                hits,
		CacheMisses:              misses,
		RequestsTotal:            requests,
		AverageRequestDurationMs: averageMs(atomic.LoadUint64(&m.requestDurationTotal), requests),
		DBQueryCount:             dbCount,
		AverageDBQueryDurationMs: averageMs(atomic.LoadUint64(&m.dbQueryDurationTotal), dbCount),
		FeasibilityChecks:        atomic.LoadUint64(&m.feasibilityCount),
		InfeasiblePlans:          atomic.LoadUint64(&m.infeasibleCount),
		Distributions:            distributions,
		AverageQualityScore:      ratio(atomic.LoadUint64(&m.qualityScoreTotal), distributions),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}

func ratio(part, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total)
}

func averageMs(totalNanos, count uint64) float64 {
	if count == 0 {
		return 0
	}
	return float64(totalNanos) / float64(count) / float64(time.Millisecond)
}
