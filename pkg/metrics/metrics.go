// Package metrics exposes the Prometheus registry of the artwork selector.
// Metrics are defined in their own packages via promauto and land in the default registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the registerer every package's metrics are registered with.
var Registry = prometheus.DefaultRegisterer

// Gatherer collects the metrics served by Handler.
var Gatherer = prometheus.DefaultGatherer

// Handler serves the metrics in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Navigation (pkg/pagination):
//   - artsel_page_changes_total{outcome} (Counter): page changes by outcome (ok, failed, stale)
//   - artsel_batch_fetches_total{outcome} (Counter): batch page fetches by outcome
//   - artsel_batch_fetch_duration_seconds (Histogram): batch page fetch duration
//
// Bulk selection (pkg/selection):
//   - artsel_bulk_selections_total{outcome} (Counter): committed, stale, failed, noop
//   - artsel_bulk_pages_fetched (Histogram): extra pages fetched per bulk selection
//
// Source requests (pkg/source):
//   - artsel_source_requests_total{status} (Counter): requests by HTTP status
//   - artsel_source_request_duration_seconds (Histogram): page fetch duration, cache hits included
//   - artsel_source_errors_total{class} (Counter): errors by class (client, server, rate_limit, network, decode)
//   - artsel_source_retries_total{error_class} (Counter): retry attempts by error class
//
// Cache (pkg/cache):
//   - artsel_cache_hits_total{freshness} (Counter): fresh and stale hits
//   - artsel_cache_misses_total (Counter)
//   - artsel_not_modified_total (Counter): 304 responses
//   - artsel_cache_errors_total{operation} (Counter)
//
// Rate limit (pkg/ratelimit):
//   - artsel_rate_limit_remaining (Gauge)
//   - artsel_rate_limit_blocks_total (Counter)
//   - artsel_rate_limit_throttles_total (Counter)
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(artsel_cache_hits_total[5m])) /
//   (sum(rate(artsel_cache_hits_total[5m])) + sum(rate(artsel_cache_misses_total[5m])))
//
//   # Share of bulk selections discarded as stale
//   rate(artsel_bulk_selections_total{outcome="stale"}[5m]) / rate(artsel_bulk_selections_total[5m])
//
//   # P95 Source Latency
//   histogram_quantile(0.95, rate(artsel_source_request_duration_seconds_bucket[5m]))
