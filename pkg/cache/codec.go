package cache

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Sternrassler/alert-feed/pkg/pagination"
)

// DefaultTTL is how long a page stays cached when no TTL is configured
const DefaultTTL = 30 * time.Second

// PageToEntry encodes a page into a cache entry that expires after ttl.
func PageToEntry[T any](page pagination.Page[T], ttl time.Duration) (*CacheEntry, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	items := page.Items
	if items == nil {
		items = []T{}
	}

	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("marshal page items: %w", err)
	}

	now := time.Now()
	return &CacheEntry{
		Data:      data,
		Token:     page.Token,
		ItemCount: len(page.Items),
		Expires:   now.Add(ttl),
		CachedAt:  now,
	}, nil
}

// EntryToPage decodes a cache entry back into a page.
func EntryToPage[T any](entry *CacheEntry) (pagination.Page[T], error) {
	if entry == nil {
		return pagination.Page[T]{}, fmt.Errorf("%w: nil entry", ErrInvalidEntry)
	}

	var items []T
	if err := json.Unmarshal(entry.Data, &items); err != nil {
		return pagination.Page[T]{}, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}
	if len(items) != entry.ItemCount {
		return pagination.Page[T]{}, fmt.Errorf("%w: decoded %d items, expected %d",
			ErrInvalidEntry, len(items), entry.ItemCount)
	}

	return pagination.Page[T]{
		Items: items,
		Token: entry.Token,
	}, nil
}
