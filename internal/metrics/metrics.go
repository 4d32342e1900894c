// Package metrics exposes Prometheus counters for the solver service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds the service's Prometheus instruments
type Collector struct {
	solveDuration  *prometheus.HistogramVec
	solvesTotal    *prometheus.CounterVec
	zeroIterations prometheus.Histogram
	weatherFetches *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
}

// NewCollector creates and registers the service metrics
func NewCollector() *Collector {
	m := &Collector{
		solveDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "strelok_solve_duration_seconds",
				Help:    "Time spent computing a firing solution",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
			},
			[]string{"drag_family"},
		),
		solvesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "strelok_solves_total",
				Help: "Total firing solutions computed",
			},
			[]string{"drag_family", "status"},
		),
		zeroIterations: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "strelok_zero_iterations",
				Help:    "Iterations used by the zero-angle search",
				Buckets: prometheus.LinearBuckets(1, 1, 10),
			},
		),
		weatherFetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "strelok_weather_fetches_total",
				Help: "Weather lookups by outcome",
			},
			[]string{"source"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "strelok_http_requests_total",
				Help: "HTTP requests by route and status class",
			},
			[]string{"route", "status"},
		),
	}

	prometheus.MustRegister(m.solveDuration)
	prometheus.MustRegister(m.solvesTotal)
	prometheus.MustRegister(m.zeroIterations)
	prometheus.MustRegister(m.weatherFetches)
	prometheus.MustRegister(m.httpRequests)

	return m
}

// RecordSolve tracks one solver run
func (m *Collector) RecordSolve(dragFamily string, duration time.Duration, zeroIterations int, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.solvesTotal.WithLabelValues(dragFamily, status).Inc()
	if err == nil {
		m.solveDuration.WithLabelValues(dragFamily).Observe(duration.Seconds())
		m.zeroIterations.Observe(float64(zeroIterations))
	}
}

// RecordWeatherFetch tracks one weather lookup by source ("open-meteo",
// "standard" or "cache")
func (m *Collector) RecordWeatherFetch(source string) {
	m.weatherFetches.WithLabelValues(source).Inc()
}

// RecordHTTPRequest tracks one API request
func (m *Collector) RecordHTTPRequest(route, status string) {
	m.httpRequests.WithLabelValues(route, status).Inc()
}
