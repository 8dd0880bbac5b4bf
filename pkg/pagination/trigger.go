package pagination

import "context"

// Trigger turns viewport observations into LoadMore calls.
type Trigger[T any] struct {
	acc       *Accumulator[T]
	threshold float64
}

// NewTrigger creates a trigger that loads more once the rendered content is
// within threshold (pixels or rows, as long as the caller is consistent) of
// its end. A non-positive threshold only fires at the very end.
func NewTrigger[T any](acc *Accumulator[T], threshold float64) *Trigger[T] {
	if threshold < 0 {
		threshold = 0
	}
	return &Trigger[T]{
		acc:       acc,
		threshold: threshold,
	}
}

// Threshold returns the configured proximity threshold
func (t *Trigger[T]) Threshold() float64 {
	return t.threshold
}

// Observe reports the distance between the viewport and the end of the
// rendered list. It returns true if a fetch was issued.
//
// Nothing is fetched while a fetch is in flight, when the list is exhausted,
// or while the last fetch is in error: failed fetches are only re-issued
// through Accumulator.Retry.
func (t *Trigger[T]) Observe(ctx context.Context, distanceToEnd float64) (bool, error) {
	if distanceToEnd > t.threshold {
		return false, nil
	}

	hasMore, loading, err := t.acc.status()
	if !hasMore || loading || err != nil {
		return false, nil
	}

	return t.acc.LoadMore(ctx)
}
