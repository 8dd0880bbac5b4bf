package pagination

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrSuperseded is returned by a fetch whose response was discarded because
// Initialize or UpdateParams was called while it was in flight.
var ErrSuperseded = errors.New("request superseded")

// ErrTokenNotAdvanced is recorded when a page comes back with the same
// continuation token it was requested with. The page is not appended.
var ErrTokenNotAdvanced = errors.New("continuation token did not advance")

// Config holds accumulator configuration
type Config struct {
	// Name labels metrics and log lines of this accumulator
	Name string
	// PageSize is sent with every request
	PageSize int
	// Timeout per page fetch (0 = no timeout beyond the caller's context)
	Timeout time.Duration
}

// DefaultConfig returns the configuration used by the alert list
func DefaultConfig() Config {
	return Config{
		Name:     "alerts",
		PageSize: 25,
		Timeout:  15 * time.Second,
	}
}

// Page is one page of a paginated query
type Page[T any] struct {
	Items []T
	// Token is the continuation token; empty when there are no further pages
	Token string
}

// HasMore reports whether another page can be requested after this one
func (p Page[T]) HasMore() bool {
	return p.Token != ""
}

// Request is what the accumulator asks a Fetcher for
type Request struct {
	Params   Params
	PageSize int
	// Token is empty for the first page
	Token string
}

// Fetcher is the query interface the accumulator pulls pages from
type Fetcher[T any] interface {
	Fetch(ctx context.Context, req Request) (Page[T], error)
}

// FetcherFunc adapts a plain function to the Fetcher interface
type FetcherFunc[T any] func(ctx context.Context, req Request) (Page[T], error)

// Fetch implements Fetcher
func (f FetcherFunc[T]) Fetch(ctx context.Context, req Request) (Page[T], error) {
	return f(ctx, req)
}

// State is the snapshot a rendering surface consumes
type State[T any] struct {
	Items   []T
	Token   string
	HasMore bool
	Loading bool
	// Err is the error of the most recent fetch; cleared by the next success
	Err error
	// Initialized is false until Initialize has been called once
	Initialized bool
}

// Accumulator merges pages of a paginated query into one append-only sequence.
// All methods are safe for concurrent use.
type Accumulator[T any] struct {
	fetcher Fetcher[T]
	config  Config
	logger  zerolog.Logger

	mu            sync.Mutex
	params        Params
	items         []T
	token         string
	initialized   bool
	loading       bool
	err           error
	failedInitial bool
	// generation changes on every Initialize; responses from an older
	// generation are discarded
	generation uint64
	cancel     context.CancelFunc
}

// New creates an accumulator over the given fetcher
func New[T any](fetcher Fetcher[T], config Config) *Accumulator[T] {
	if fetcher == nil {
		panic("fetcher cannot be nil")
	}
	if config.Name == "" {
		config.Name = "default"
	}
	if config.PageSize <= 0 {
		config.PageSize = DefaultConfig().PageSize
	}

	return &Accumulator[T]{
		fetcher: fetcher,
		config:  config,
		logger: log.With().
			Str("component", "pagination").
			Str("accumulator", config.Name).
			Logger(),
	}
}

// Initialize discards everything accumulated so far and fetches the first page
// for params. A fetch still in flight is cancelled and its response ignored.
// The returned error is also recorded in State.
func (a *Accumulator[T]) Initialize(ctx context.Context, params Params) error {
	a.mu.Lock()
	if a.cancel != nil {
		a.cancel()
	}
	a.generation++
	gen := a.generation
	a.params = params
	a.items = nil
	a.token = ""
	a.initialized = true
	a.loading = true
	a.err = nil
	a.failedInitial = false
	fetchCtx, cancel := a.fetchContext(ctx)
	a.cancel = cancel
	accumulatedItems.WithLabelValues(a.config.Name).Set(0)
	a.mu.Unlock()

	a.logger.Debug().
		Str("params", params.Key()).
		Uint64("generation", gen).
		Msg("Initializing accumulator")

	return a.fetch(fetchCtx, cancel, gen, Request{
		Params:   params,
		PageSize: a.config.PageSize,
	})
}

// UpdateParams replaces the filter/sort parameters and starts over.
func (a *Accumulator[T]) UpdateParams(ctx context.Context, params Params) error {
	return a.Initialize(ctx, params)
}

// LoadMore fetches the page after the last one received and appends it.
// It is a no-op, returning false, when a fetch is already in flight, when
// Initialize has not been called, or when there are no further pages.
func (a *Accumulator[T]) LoadMore(ctx context.Context) (bool, error) {
	a.mu.Lock()
	if !a.initialized || a.loading || a.token == "" {
		loading := a.loading
		a.mu.Unlock()
		loadMoreDroppedTotal.WithLabelValues(a.config.Name).Inc()
		a.logger.Debug().
			Bool("loading", loading).
			Msg("LoadMore dropped")
		return false, nil
	}
	gen := a.generation
	req := Request{
		Params:   a.params,
		PageSize: a.config.PageSize,
		Token:    a.token,
	}
	a.loading = true
	fetchCtx, cancel := a.fetchContext(ctx)
	a.cancel = cancel
	a.mu.Unlock()

	return true, a.fetch(fetchCtx, cancel, gen, req)
}

// Retry re-issues the fetch that failed last: the first page if the initial
// load failed, the next page otherwise. Returns false when there is nothing
// to retry.
func (a *Accumulator[T]) Retry(ctx context.Context) (bool, error) {
	a.mu.Lock()
	failed := a.err != nil && !a.loading
	initial := a.failedInitial
	params := a.params
	a.mu.Unlock()

	if !failed {
		return false, nil
	}

	a.logger.Info().
		Bool("initial", initial).
		Msg("Retrying failed fetch")

	if initial {
		return true, a.Initialize(ctx, params)
	}
	return a.LoadMore(ctx)
}

// State returns a snapshot of the accumulated result. Items is a copy.
func (a *Accumulator[T]) State() State[T] {
	a.mu.Lock()
	defer a.mu.Unlock()

	return State[T]{
		Items:       slices.Clone(a.items),
		Token:       a.token,
		HasMore:     a.token != "",
		Loading:     a.loading,
		Err:         a.err,
		Initialized: a.initialized,
	}
}

// Len returns the number of accumulated items
func (a *Accumulator[T]) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.items)
}

// Params returns the parameters of the current result set
func (a *Accumulator[T]) Params() Params {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.params
}

// status returns the fields the trigger needs without copying items
func (a *Accumulator[T]) status() (hasMore, loading bool, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.token != "", a.loading, a.err
}

func (a *Accumulator[T]) fetchContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config.Timeout > 0 {
		return context.WithTimeout(ctx, a.config.Timeout)
	}
	return context.WithCancel(ctx)
}

// fetch runs outside the lock and applies the response only if it still
// belongs to the current generation and position.
func (a *Accumulator[T]) fetch(ctx context.Context, cancel context.CancelFunc, gen uint64, req Request) error {
	start := time.Now()
	page, err := a.fetcher.Fetch(ctx, req)
	cancel()
	pageFetchDuration.WithLabelValues(a.config.Name).Observe(time.Since(start).Seconds())

	a.mu.Lock()
	defer a.mu.Unlock()

	if gen != a.generation || req.Token != a.token {
		staleResponsesTotal.WithLabelValues(a.config.Name).Inc()
		a.logger.Debug().
			Uint64("generation", gen).
			Uint64("current_generation", a.generation).
			Msg("Discarding superseded response")
		return ErrSuperseded
	}

	a.loading = false
	a.cancel = nil

	if err != nil {
		a.err = err
		a.failedInitial = req.Token == ""
		pageFetchErrorsTotal.WithLabelValues(a.config.Name).Inc()
		a.logger.Warn().
			Err(err).
			Bool("initial", a.failedInitial).
			Int("accumulated", len(a.items)).
			Msg("Page fetch failed")
		return fmt.Errorf("fetch page: %w", err)
	}

	if page.Token != "" && page.Token == req.Token {
		a.err = fmt.Errorf("%w: token %q", ErrTokenNotAdvanced, page.Token)
		a.failedInitial = false
		pageFetchErrorsTotal.WithLabelValues(a.config.Name).Inc()
		a.logger.Error().
			Str("token", page.Token).
			Int("page_items", len(page.Items)).
			Msg("Fetcher returned the requested token again, page dropped")
		return fmt.Errorf("fetch page: %w", a.err)
	}

	a.items = append(a.items, page.Items...)
	a.token = page.Token
	a.err = nil
	a.failedInitial = false

	pagesFetchedTotal.WithLabelValues(a.config.Name).Inc()
	accumulatedItems.WithLabelValues(a.config.Name).Set(float64(len(a.items)))

	a.logger.Debug().
		Int("page_items", len(page.Items)).
		Int("accumulated", len(a.items)).
		Bool("has_more", page.HasMore()).
		Dur("duration", time.Since(start)).
		Msg("Page appended")

	return nil
}
