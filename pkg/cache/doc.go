// Package cache provides a Redis-backed cache for record source page responses.
//
// Pages of the artworks collection are cached as raw JSON bodies together with
// their validators (ETag, Last-Modified) and freshness lifetime:
//
//   - Cache-Control max-age wins over Expires; without either DefaultTTL applies
//   - A fresh entry is served without touching the network
//   - An expired entry is kept for StaleGrace so it can be revalidated with
//     If-None-Match / If-Modified-Since; a 304 extends it via Touch
//   - Keys are deterministic for a (resource, page, limit, fields) tuple
//
// # Basic Usage
//
//	redisClient := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	manager := cache.NewManager(redisClient)
//
//	key := cache.CacheKey{Resource: "artworks", Page: 2, Limit: 12}
//
//	entry, err := manager.Get(ctx, key)
//	switch {
//	case err == cache.ErrCacheMiss:
//		// fetch from the API
//	case entry.IsExpired():
//		cache.AddConditionalHeaders(req, entry)
//	default:
//		// serve entry.Data
//	}
//
// # Metrics
//
//   - artsel_cache_hits_total{freshness} - Cache hits, fresh or stale
//   - artsel_cache_misses_total - Cache misses
//   - artsel_not_modified_total - 304 responses that revalidated an entry
//   - artsel_cache_errors_total{operation} - Cache operation errors
package cache
