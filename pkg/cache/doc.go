// Package cache provides a Redis-backed page cache for paginated queries.
//
// Each fetched page is stored under a deterministic key built from the query
// name, the filter parameters, the page size and the continuation token the
// page was requested with. Entries expire after a fixed TTL.
//
// # Basic Usage
//
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//
//	manager := cache.NewManager(redisClient)
//
//	// Wrap any pagination.Fetcher
//	fetcher := cache.NewCachingFetcher[client.Alert](
//		apiClient.Fetcher(), manager, client.OperationListAlerts, 30*time.Second)
//
//	acc := pagination.New[client.Alert](fetcher, pagination.DefaultConfig())
//
// The caching fetcher is cache-first: a fresh entry is returned without
// contacting the API. Redis failures are logged and the request falls
// through to the wrapped fetcher, so the cache never fails a fetch.
//
// # Invalidation
//
//	// Drop all cached pages of a query after the list changed
//	n, err := manager.InvalidateQuery(ctx, client.OperationListAlerts)
//
// # Metrics
//
//   - alertfeed_cache_hits_total{layer="redis"} - Cache hits
//   - alertfeed_cache_misses_total - Cache misses
//   - alertfeed_cache_written_bytes_total{layer="redis"} - Bytes written
//   - alertfeed_cache_invalidated_keys_total - Keys removed by invalidation
//   - alertfeed_cache_errors_total{operation} - Cache operation errors
package cache
