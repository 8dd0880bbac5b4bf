package pagination

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for accumulator operations.
var (
	pagesFetchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alertfeed_pages_fetched_total",
		Help: "Total pages appended to accumulators",
	}, []string{"accumulator"})

	pageFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "alertfeed_page_fetch_duration_seconds",
		Help:    "Page fetch duration in seconds",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10},
	}, []string{"accumulator"})

	pageFetchErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alertfeed_page_fetch_errors_total",
		Help: "Total failed page fetches",
	}, []string{"accumulator"})

	loadMoreDroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alertfeed_load_more_dropped_total",
		Help: "LoadMore calls dropped because a fetch was in flight or no pages were left",
	}, []string{"accumulator"})

	staleResponsesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alertfeed_stale_responses_total",
		Help: "Responses discarded because the request was superseded",
	}, []string{"accumulator"})

	accumulatedItems = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "alertfeed_accumulated_items",
		Help: "Number of items currently held by an accumulator",
	}, []string{"accumulator"})
)
