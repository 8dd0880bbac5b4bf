package cache

import (
	"fmt"
	"strings"

	"github.com/Sternrassler/alert-feed/pkg/pagination"
)

// KeyPrefix starts every page cache key.
const KeyPrefix = "alertfeed:page"

// CacheKey represents a unique identifier for a cached page.
type CacheKey struct {
	// Query is the operation the page belongs to (e.g., "ListAlerts")
	Query string

	// ParamsKey is pagination.Params.Key() of the request
	ParamsKey string

	// PageSize of the request
	PageSize int

	// Token is the continuation token the page was requested with ("" = first page)
	Token string
}

// KeyFor builds the cache key of a page request.
func KeyFor(query string, req pagination.Request) CacheKey {
	return CacheKey{
		Query:     query,
		ParamsKey: req.Params.Key(),
		PageSize:  req.PageSize,
		Token:     req.Token,
	}
}

// String generates a deterministic cache key string.
// Format: alertfeed:page:query:params:size=N:token=T
// Empty params and tokens are written as "-".
//
// Example:
//
//	alertfeed:page:ListAlerts:sortDir=descending:size=25:token=-
func (k CacheKey) String() string {
	return strings.Join([]string{
		QueryPrefix(k.Query),
		orDash(k.ParamsKey),
		fmt.Sprintf("size=%d", k.PageSize),
		"token=" + orDash(k.Token),
	}, ":")
}

// QueryPrefix returns the key prefix shared by all pages of a query.
func QueryPrefix(query string) string {
	return KeyPrefix + ":" + query
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
