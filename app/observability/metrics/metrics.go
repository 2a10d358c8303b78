package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	SuggestionRequestsTotal  metric.Int64Counter
	SuggestionDurationSecs   metric.Float64Histogram
	OverpassFetchDurationSec metric.Float64Histogram
	OverpassCacheHitsTotal   metric.Int64Counter
	RankingErrorsTotal       metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metric instruments once, reading the
// Meter from the globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("tripdeck")
		var err error
		m := &AppMetrics{}

		m.SuggestionRequestsTotal, err = meter.Int64Counter(
			"suggestion_requests_total",
			metric.WithDescription("Total number of suggestion requests completed"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create suggestion_requests_total: %v", err)
		}

		m.SuggestionDurationSecs, err = meter.Float64Histogram(
			"suggestion_duration_seconds",
			metric.WithDescription("End-to-end duration of suggestion runs in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create suggestion_duration_seconds: %v", err)
		}

		m.OverpassFetchDurationSec, err = meter.Float64Histogram(
			"overpass_fetch_duration_seconds",
			metric.WithDescription("Duration of Overpass interpreter round-trips in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create overpass_fetch_duration_seconds: %v", err)
		}

		m.OverpassCacheHitsTotal, err = meter.Int64Counter(
			"overpass_cache_hits_total",
			metric.WithDescription("Number of suggestion runs served from the query cache"),
			metric.WithUnit("{hit}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create overpass_cache_hits_total: %v", err)
		}

		m.RankingErrorsTotal, err = meter.Int64Counter(
			"ranking_errors_total",
			metric.WithDescription("Number of failed ranking calls"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create ranking_errors_total: %v", err)
		}

		log.Println("Application metrics instruments initialized.")
		appMetrics = m
	})
}

// Get returns the globally initialized AppMetrics instance. Panics if
// InitAppMetrics was not called at startup.
func Get() *AppMetrics {
	if appMetrics == nil {
		panic("metrics instruments not initialized. Call metrics.InitAppMetrics() first.")
	}
	return appMetrics
}
