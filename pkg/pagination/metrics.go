package pagination

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// pageChangesTotal tracks page navigation by outcome (ok, failed, stale, invalid)
	pageChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artsel_page_changes_total",
			Help: "Total number of page changes by outcome",
		},
		[]string{"outcome"},
	)

	// batchFetchesTotal tracks multi-page fetches by outcome (ok, failed)
	batchFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artsel_batch_fetches_total",
			Help: "Total number of multi-page batch fetches by outcome",
		},
		[]string{"outcome"},
	)

	// batchFetchDuration tracks wall-clock time of successful batch fetches
	batchFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "artsel_batch_fetch_duration_seconds",
			Help:    "Duration of successful multi-page batch fetches",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
	)
)
