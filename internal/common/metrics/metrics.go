// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "askai_requests_total",
			Help: "Total number of HTTP requests handled, by route and status code",
		},
		[]string{"route", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "askai_request_duration_seconds",
			Help: "Duration of HTTP request handling in seconds",
		},
		[]string{"route"},
	)

	CompletionRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "askai_completion_requests_total",
			Help: "Total number of upstream completion calls, by outcome",
		},
		[]string{"status"},
	)

	CompletionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "askai_completion_request_duration_seconds",
			Help: "Duration of upstream completion calls in seconds",
		},
	)

	ShortCircuits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "askai_short_circuits_total",
			Help: "Total number of requests answered without reaching the completion service",
		},
		[]string{"reason"},
	)

	ReferencesBuilt = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "askai_citation_references_built_total",
			Help: "Total number of deduplicated references built from citations",
		},
	)

	OrphanMarkersRemoved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "askai_citation_orphan_markers_removed_total",
			Help: "Total number of citation markers stripped because no reference backed them",
		},
	)
)
