// Package pagination merges successive pages of a cursor-paginated list query
// into one append-only sequence.
//
// The alerts API returns pages of alert summaries together with a
// lastEvaluatedKey continuation token. An empty token means the list is
// exhausted. The Accumulator keeps the items received so far, the current
// token and the loading/error state a rendering surface needs:
//
//	acc := pagination.New[client.Alert](alertsClient.Fetcher(), pagination.DefaultConfig())
//	if err := acc.Initialize(ctx, pagination.Params{SortDir: pagination.SortDescending}); err != nil {
//		// initial load failed, acc.State().Err is set
//	}
//
//	trigger := pagination.NewTrigger(acc, 500)
//	trigger.Observe(ctx, distanceToEnd) // loads the next page when close to the end
//
// The accumulator:
//   - Allows at most one fetch in flight; LoadMore calls made meanwhile are dropped
//   - Appends each page exactly once, in arrival order, never reordering or deduplicating
//   - Discards responses that belong to a superseded Initialize/UpdateParams call
//   - Keeps already loaded items when a fetch fails and records the error in State
//   - Never retries on its own; Retry re-issues the failed fetch on request
package pagination
