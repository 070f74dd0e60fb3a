// Package metrics exposes Prometheus instrumentation for the recommender.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// QueriesTotal counts retrieval calls by mode ("keyword", "nutrient") and outcome status.
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flavour_queries_total",
			Help: "Total number of recommendation queries by mode and status",
		},
		[]string{"mode", "status"},
	)

	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flavour_query_duration_seconds",
			Help:    "Duration of recommendation queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"mode"},
	)

	// ModelFitDuration measures index builds and classifier training.
	ModelFitDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flavour_model_fit_duration_seconds",
			Help:    "Duration of model fitting in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"model"},
	)

	ModelCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flavour_model_cache_hits_total",
			Help: "Total number of fitted model cache hits",
		},
		[]string{"model"},
	)

	ModelCacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flavour_model_cache_misses_total",
			Help: "Total number of fitted model cache misses",
		},
		[]string{"model"},
	)

	CatalogRecipes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "flavour_catalog_recipes",
			Help: "Number of recipes in the loaded catalog",
		},
	)

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flavour_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flavour_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// RecordQuery records one retrieval call
func RecordQuery(mode, status string, duration time.Duration) {
	QueriesTotal.WithLabelValues(mode, status).Inc()
	QueryDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

// RecordModelFit records the time spent fitting a model
func RecordModelFit(model string, duration time.Duration) {
	ModelFitDuration.WithLabelValues(model).Observe(duration.Seconds())
}

// RecordCacheLookup records a model cache hit or miss
func RecordCacheLookup(model string, hit bool) {
	if hit {
		ModelCacheHits.WithLabelValues(model).Inc()
		return
	}
	ModelCacheMisses.WithLabelValues(model).Inc()
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, route, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
