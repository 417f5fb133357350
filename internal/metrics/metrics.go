// Package metrics は Prometheus のコレクタを定義します。/metrics で公開されます。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arcana_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "arcana_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// 抽選
	DrawsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arcana_draws_created_total",
			Help: "Total number of persisted draws",
		},
		[]string{"card_count"},
	)

	// リーディング生成
	ReadingGenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arcana_reading_generations_total",
			Help: "Total number of reading generations by backend and outcome",
		},
		[]string{"backend", "outcome"}, // outcome: ok | malformed | failure | rejected
	)

	ReadingGenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "arcana_reading_generation_duration_seconds",
			Help:    "Reading generation latency in seconds",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 2.5, 5, 10, 20, 40, 60},
		},
		[]string{"backend"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "arcana_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arcana_circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// 外部画像検索 (cardctl import-images)
	CommonsRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arcana_commons_requests_total",
			Help: "Total number of Wikimedia Commons API requests by result",
		},
		[]string{"result"}, // ok | retry | error
	)
)
