// Package metrics exposes Prometheus collectors for recipe generation and the HTTP API.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecipesGenerated counts recipes by outcome: "custom" or "fallback".
	RecipesGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fragrance_recipes_generated_total",
			Help: "Total number of recipes generated",
		},
		[]string{"outcome"},
	)

	// RecipeDuration measures a full pipeline run, including cache and translation.
	RecipeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fragrance_recipe_duration_seconds",
			Help:    "Duration of recipe pipeline runs in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 15},
		},
		[]string{"source"},
	)

	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fragrance_recipe_cache_hits_total",
			Help: "Total number of recipe cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fragrance_recipe_cache_misses_total",
			Help: "Total number of recipe cache misses",
		},
	)

	// Translations counts translation attempts by result: "ok" or "error".
	Translations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fragrance_translations_total",
			Help: "Total number of recipe translation attempts",
		},
		[]string{"result"},
	)

	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fragrance_store_errors_total",
			Help: "Total number of recipe store failures",
		},
		[]string{"operation"},
	)

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fragrance_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fragrance_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	RateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fragrance_api_rate_limited_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
		[]string{"route"},
	)
)

// RecordRecipe records one pipeline run. source is "cache" or "generated".
func RecordRecipe(source string, degraded bool, duration time.Duration) {
	outcome := "custom"
	if degraded {
		outcome = "fallback"
	}
	RecipesGenerated.WithLabelValues(outcome).Inc()
	RecipeDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordCacheLookup records a cache hit or miss.
func RecordCacheLookup(hit bool) {
	if hit {
		CacheHits.Inc()
		return
	}
	CacheMisses.Inc()
}

// RecordTranslation records the result of a translation attempt.
func RecordTranslation(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	Translations.WithLabelValues(result).Inc()
}

// RecordAPIRequest records a finished HTTP request.
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
