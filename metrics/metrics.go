package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the collectors for cache and fetch activity
type Metrics struct {
	// CacheHits counts payloads served without refreshing, per slot key
	CacheHits *prometheus.CounterVec

	// CacheMisses counts stale or absent slots that triggered a refresh
	CacheMisses *prometheus.CounterVec

	// CacheRefreshFailures counts refreshes that returned an error
	CacheRefreshFailures *prometheus.CounterVec

	// FetchDuration observes fetch latency per fetcher and outcome
	FetchDuration *prometheus.HistogramVec
}

// New registers the collectors on reg. Pass prometheus.DefaultRegisterer in
// production and a fresh prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CacheHits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mytv_cache_hits_total",
			Help: "Total number of cache slot reads served without refresh",
		}, []string{"key"}),
		CacheMisses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mytv_cache_misses_total",
			Help: "Total number of cache slot reads that required a refresh",
		}, []string{"key"}),
		CacheRefreshFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mytv_cache_refresh_failures_total",
			Help: "Total number of failed cache slot refreshes",
		}, []string{"key"}),
		FetchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mytv_fetch_duration_seconds",
			Help:    "Duration of source fetches",
			Buckets: prometheus.DefBuckets,
		}, []string{"fetcher", "outcome"}),
	}
}

// CacheHit records a fresh read
func (m *Metrics) CacheHit(key string) {
	if m == nil {
		return
	}
	m.CacheHits.WithLabelValues(key).Inc()
}

// CacheMiss records a stale or absent read
func (m *Metrics) CacheMiss(key string) {
	if m == nil {
		return
	}
	m.CacheMisses.WithLabelValues(key).Inc()
}

// RefreshFailed records a refresh error
func (m *Metrics) RefreshFailed(key string) {
	if m == nil {
		return
	}
	m.CacheRefreshFailures.WithLabelValues(key).Inc()
}

// FetchObserved records a fetch with its outcome
func (m *Metrics) FetchObserved(fetcher string, d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.FetchDuration.WithLabelValues(fetcher, outcome).Observe(d.Seconds())
}
