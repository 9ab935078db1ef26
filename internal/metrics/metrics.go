// Package metrics holds the Prometheus instruments exported by movierec.
// Instruments register with the default registry on package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DatasetLoadDuration observes successful artifact loads.
	DatasetLoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "movierec_dataset_load_duration_seconds",
			Help:    "Duration of similarity matrix and metadata loads in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// DatasetLoadFailures counts failed loads by stage (open, read, decode, validate).
	DatasetLoadFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movierec_dataset_load_failures_total",
			Help: "Total number of failed dataset loads",
		},
		[]string{"stage"},
	)

	// DatasetMovies reports the dimension of the loaded matrix.
	DatasetMovies = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "movierec_dataset_movies",
			Help: "Number of movies in the loaded dataset",
		},
	)

	// RecommendRequests counts recommendation queries by outcome.
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movierec_recommend_requests_total",
			Help: "Total number of recommendation requests",
		},
		[]string{"result"}, // "ok", "unknown_title", "ambiguous", "invalid"
	)

	// RecommendDuration observes ranking latency, poster enrichment included.
	RecommendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "movierec_recommend_duration_seconds",
			Help:    "Duration of recommendation requests in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
	)

	// PosterLookups counts poster lookups by result: "hit", "cached",
	// or a failure reason such as "timeout" or "status".
	PosterLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movierec_poster_lookups_total",
			Help: "Total number of poster lookups by result",
		},
		[]string{"result"},
	)

	// PosterBreakerState is 0 closed, 1 half-open, 2 open.
	PosterBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "movierec_poster_breaker_state",
			Help: "Poster API circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)
)
