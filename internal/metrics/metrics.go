// Package metrics declares the Prometheus collectors shared by the
// generator and the preview server. Collectors register on the default
// registry through promauto; mount promhttp.Handler() to expose them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wallgen_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wallgen_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wallgen_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Generator metrics
var (
	GeneratorRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wallgen_generator_series_runs_total",
			Help: "Series generation runs by source and outcome",
		},
		[]string{"series", "source", "status"},
	)

	GeneratorDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wallgen_generator_series_duration_seconds",
			Help:    "Time spent generating one series",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"series"},
	)

	GeneratorEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "wallgen_generator_entries",
			Help: "Entries written by the last generation of a series",
		},
		[]string{"series"},
	)

	GeneratorUnprobed = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "wallgen_generator_entries_without_resolution",
			Help: "Entries of the last generation that carry no resolution",
		},
		[]string{"series"},
	)
)

// Gallery metrics
var (
	CatalogLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wallgen_catalog_loads_total",
			Help: "Catalog documents decoded by the preview server",
		},
		[]string{"series", "status"},
	)

	NavigationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wallgen_navigations_total",
			Help: "Series navigations by outcome (allow, redirect, throttled)",
		},
		[]string{"outcome"},
	)

	PopularityEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wallgen_popularity_events_total",
			Help: "Recorded view and download events",
		},
		[]string{"series", "kind"},
	)
)
