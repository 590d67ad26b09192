package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks cache hits by freshness (fresh, stale)
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artsel_cache_hits_total",
			Help: "Total number of page cache hits",
		},
		[]string{"freshness"},
	)

	// CacheMisses tracks cache misses
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "artsel_cache_misses_total",
			Help: "Total number of page cache misses",
		},
	)

	// NotModifiedResponses tracks 304 responses that revalidated a stale entry
	NotModifiedResponses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "artsel_not_modified_total",
			Help: "Total number of 304 Not Modified responses",
		},
	)

	// CacheErrors tracks cache operation errors
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artsel_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete", "touch"
	)
)
