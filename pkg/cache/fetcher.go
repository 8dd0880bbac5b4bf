package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Sternrassler/alert-feed/pkg/pagination"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// maxLiveTokens bounds the set of continuation keys remembered from network pages
const maxLiveTokens = 4096

// CachingFetcher serves pages from Redis while they are fresh and falls back
// to the wrapped fetcher otherwise. Cache failures are logged, never returned.
//
// A continuation page whose token came from a network response is fetched
// from the network too, so a listing started on live data never continues
// with a cached page from an older snapshot. Listings that started from the
// cache keep reading from the cache.
type CachingFetcher[T any] struct {
	next    pagination.Fetcher[T]
	manager *Manager
	query   string
	ttl     time.Duration
	logger  zerolog.Logger

	mu   sync.Mutex
	live map[string]time.Time
}

// NewCachingFetcher wraps next with a page cache for query.
func NewCachingFetcher[T any](next pagination.Fetcher[T], manager *Manager, query string, ttl time.Duration) *CachingFetcher[T] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CachingFetcher[T]{
		next:    next,
		manager: manager,
		query:   query,
		ttl:     ttl,
		logger:  log.With().Str("component", "page-cache").Str("query", query).Logger(),
		live:    make(map[string]time.Time),
	}
}

// Fetch implements pagination.Fetcher.
func (f *CachingFetcher[T]) Fetch(ctx context.Context, req pagination.Request) (pagination.Page[T], error) {
	key := KeyFor(f.query, req)

	if req.Token != "" && f.takeLive(key) {
		f.logger.Debug().
			Str("key", key.String()).
			Msg("Continuation of a network page, bypassing cache")
		page, err := f.fetchAndStore(ctx, key, req)
		if err != nil {
			f.markLive(key)
		}
		return page, err
	}

	entry, err := f.manager.Get(ctx, key)
	switch {
	case err == nil:
		page, decodeErr := EntryToPage[T](entry)
		if decodeErr == nil {
			f.logger.Debug().
				Str("key", key.String()).
				Int("items", len(page.Items)).
				Msg("Page served from cache")
			return page, nil
		}
		CacheErrors.WithLabelValues("decode").Inc()
		f.logger.Warn().Err(decodeErr).Str("key", key.String()).Msg("Discarding undecodable cache entry")
		_ = f.manager.Delete(ctx, key)
	case !errors.Is(err, ErrCacheMiss):
		f.logger.Warn().Err(err).Str("key", key.String()).Msg("Cache get error")
	}

	return f.fetchAndStore(ctx, key, req)
}

func (f *CachingFetcher[T]) fetchAndStore(ctx context.Context, key CacheKey, req pagination.Request) (pagination.Page[T], error) {
	page, err := f.next.Fetch(ctx, req)
	if err != nil {
		return page, err
	}

	if page.HasMore() {
		next := req
		next.Token = page.Token
		f.markLive(KeyFor(f.query, next))
	}

	newEntry, err := PageToEntry(page, f.ttl)
	if err != nil {
		f.logger.Warn().Err(err).Msg("Failed to create cache entry")
		return page, nil
	}
	if err := f.manager.Set(ctx, key, newEntry); err != nil {
		f.logger.Warn().Err(err).Str("key", key.String()).Msg("Failed to cache page")
	} else {
		f.logger.Debug().
			Str("key", key.String()).
			Dur("ttl", f.ttl).
			Msg("Cached page")
	}

	return page, nil
}

// markLive remembers that the page at key continues a network response.
func (f *CachingFetcher[T]) markLive(key CacheKey) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := time.Now()
	if len(f.live) >= maxLiveTokens {
		for k, at := range f.live {
			if now.Sub(at) > f.ttl {
				delete(f.live, k)
			}
		}
		if len(f.live) >= maxLiveTokens {
			clear(f.live)
		}
	}
	f.live[key.String()] = now
}

// takeLive reports whether key continues a network response seen within the
// TTL and forgets it.
func (f *CachingFetcher[T]) takeLive(key CacheKey) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	at, ok := f.live[key.String()]
	if !ok {
		return false
	}
	delete(f.live, key.String())
	return time.Since(at) <= f.ttl
}
