package cache

import (
	"encoding/json"
	"time"
)

// CacheEntry represents one cached page of a paginated query.
type CacheEntry struct {
	// Data is the JSON encoding of the page items
	Data json.RawMessage `json:"data"`

	// Token is the continuation token returned with the page
	Token string `json:"token,omitempty"`

	// ItemCount is the number of items encoded in Data
	ItemCount int `json:"item_count"`

	// Expires is when the cache entry becomes stale
	Expires time.Time `json:"expires"`

	// CachedAt is when we cached this page
	CachedAt time.Time `json:"cached_at"`
}

// IsExpired returns true if the cache entry has expired.
func (e *CacheEntry) IsExpired() bool {
	return time.Now().After(e.Expires)
}

// TTL returns the time until expiration.
// Returns 0 if already expired.
func (e *CacheEntry) TTL() time.Duration {
	ttl := time.Until(e.Expires)
	if ttl < 0 {
		return 0
	}
	return ttl
}
