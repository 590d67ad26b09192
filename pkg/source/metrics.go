package source

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "artsel_source_requests_total",
		Help: "Total artworks API requests by status",
	}, []string{"status"})

	requestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "artsel_source_request_duration_seconds",
		Help:    "Artworks API page fetch duration in seconds, cache hits included",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
	})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "artsel_source_errors_total",
		Help: "Total artworks API errors by class",
	}, []string{"class"})

	retriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "artsel_source_retries_total",
		Help: "Total number of retry attempts by error class",
	}, []string{"error_class"})
)
