// Package metrics exposes the Prometheus metrics of alert-feed.
// All metrics are defined in their respective packages (pagination, client,
// cache, ratelimit) to maintain modularity and avoid circular dependencies.
//
// This package provides the HTTP handler and the reference for all metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by alert-feed.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer collects everything registered with Registry.
var Gatherer = prometheus.DefaultGatherer

// Handler serves all registered metrics in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Accumulator Metrics (pkg/pagination):
//   - alertfeed_pages_fetched_total{accumulator} (Counter): Pages appended
//   - alertfeed_page_fetch_duration_seconds{accumulator} (Histogram): Page fetch duration
//   - alertfeed_page_fetch_errors_total{accumulator} (Counter): Failed page fetches
//   - alertfeed_load_more_dropped_total{accumulator} (Counter): LoadMore calls ignored while a fetch was in flight
//   - alertfeed_stale_responses_total{accumulator} (Counter): Responses discarded after a reset
//   - alertfeed_accumulated_items{accumulator} (Gauge): Items currently accumulated
//
// Query Metrics (pkg/client):
//   - alertfeed_queries_total{operation, status} (Counter): GraphQL queries by operation and HTTP status
//   - alertfeed_query_duration_seconds{operation} (Histogram): Query duration by operation
//   - alertfeed_query_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network, graphql)
//
// Retry Metrics (pkg/client):
//   - alertfeed_query_retries_total{error_class} (Counter): Retry attempts by error class
//   - alertfeed_query_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - alertfeed_query_retry_exhausted_total{error_class} (Counter): Queries that exhausted max retries
//
// Rate Limit Metrics (pkg/ratelimit):
//   - alertfeed_api_requests_remaining (Gauge): Requests remaining in the API rate limit window
//   - alertfeed_rate_limit_blocks_total (Counter): Requests blocked due to critical budget
//   - alertfeed_rate_limit_throttles_total (Counter): Requests throttled due to warning budget
//
// Cache Metrics (pkg/cache):
//   - alertfeed_cache_hits_total{layer="redis"} (Counter): Cache hits by layer
//   - alertfeed_cache_misses_total (Counter): Cache misses
//   - alertfeed_cache_written_bytes_total{layer="redis"} (Counter): Bytes written to the cache
//   - alertfeed_cache_invalidated_keys_total (Counter): Keys removed by invalidation
//   - alertfeed_cache_errors_total{operation} (Counter): Cache operation errors
//
// Example Prometheus Queries:
//
//   # Page Cache Hit Rate
//   sum(rate(alertfeed_cache_hits_total[5m])) /
//   (sum(rate(alertfeed_cache_hits_total[5m])) + sum(rate(alertfeed_cache_misses_total[5m])))
//
//   # Request Budget Status
//   alertfeed_api_requests_remaining < 20
//
//   # Stale Response Rate
//   rate(alertfeed_stale_responses_total[5m])
//
//   # P95 Page Fetch Latency
//   histogram_quantile(0.95, rate(alertfeed_page_fetch_duration_seconds_bucket[5m]))
