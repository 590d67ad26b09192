package selection

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// bulkSelectionsTotal tracks bulk selections by outcome (committed, stale, failed, noop)
	bulkSelectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artsel_bulk_selections_total",
			Help: "Total number of bulk range selections by outcome",
		},
		[]string{"outcome"},
	)

	// bulkPagesFetched tracks how many extra pages a bulk selection needed
	bulkPagesFetched = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "artsel_bulk_pages_fetched",
			Help:    "Additional pages fetched per bulk selection",
			Buckets: []float64{1, 2, 3, 5, 10, 20, 50},
		},
	)
)
