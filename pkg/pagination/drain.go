package pagination

import (
	"context"
	"fmt"
	"time"
)

// Drain keeps loading pages until the list is exhausted, maxPages further pages
// have been appended (0 = unlimited) or a fetch fails. It returns the number of
// pages appended. On failure the pages loaded so far stay accumulated.
//
// Drain stops early if LoadMore is dropped because another caller has a fetch
// in flight.
func (a *Accumulator[T]) Drain(ctx context.Context, maxPages int) (int, error) {
	start := time.Now()
	pages := 0

	for maxPages <= 0 || pages < maxPages {
		if err := ctx.Err(); err != nil {
			return pages, err
		}

		issued, err := a.LoadMore(ctx)
		if err != nil {
			a.logger.Warn().
				Err(err).
				Int("fetched_pages", pages).
				Msg("Drain stopped - returning partial results")
			return pages, fmt.Errorf("drain (partial data: %d pages): %w", pages, err)
		}
		if !issued {
			break
		}
		pages++

		// Progress logging every 50 pages
		if pages%50 == 0 {
			a.logger.Info().
				Int("fetched", pages).
				Int("items", a.Len()).
				Msg("Drain progress")
		}
	}

	a.logger.Info().
		Int("pages", pages).
		Int("items", a.Len()).
		Dur("duration", time.Since(start)).
		Msg("Drain complete")

	return pages, nil
}
