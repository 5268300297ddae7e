package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	MessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "render_messages_total",
			Help: "Inbound push messages by outcome (rendered, dropped, rejected)",
		},
		[]string{"template", "status"},
	)

	RenderDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "render_duration_ms",
			Help:    "Synchronous render duration in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"template"},
	)

	PayloadParseFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "render_payload_parse_failures_total",
			Help: "Structured sub-payload parse failures by payload kind",
		},
		[]string{"payload"},
	)

	ImageFetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "render_image_fetch_total",
			Help: "Image fetch attempts by status",
		},
		[]string{"status"},
	)

	ImageFetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "render_image_fetch_duration_ms",
			Help:    "Image fetch duration in milliseconds",
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		},
		[]string{"status"},
	)

	SinkDisplaysTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "render_sink_displays_total",
			Help: "Display calls delivered to the sink by style",
		},
		[]string{"style"},
	)

	SinkCancelsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "render_sink_cancels_total",
			Help: "Cancel calls delivered to the sink",
		},
	)

	RetryAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broker_retry_attempts_total",
			Help: "Message processing retry attempts",
		},
		[]string{"service", "topic"},
	)

	DLQMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broker_dlq_messages_total",
			Help: "Messages routed to the DLQ",
		},
		[]string{"service", "topic", "reason"},
	)

	RateLimitRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_rate_limit_requests_total",
			Help: "Ingest requests by rate limit outcome",
		},
		[]string{"status"},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Requests passed through circuit breakers",
		},
		[]string{"name", "state"},
	)

	CircuitBreakerFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_failures_total",
			Help: "Failed requests through circuit breakers",
		},
		[]string{"name"},
	)
)

func RegisterRenderMetrics() {
	prometheus.MustRegister(
		MessagesTotal,
		RenderDuration,
		PayloadParseFailuresTotal,
		ImageFetchTotal,
		ImageFetchDuration,
		SinkDisplaysTotal,
		SinkCancelsTotal,
	)
}

func RegisterBrokerMetrics() {
	prometheus.MustRegister(
		RetryAttemptsTotal,
		DLQMessagesTotal,
	)
}

func RegisterIngestMetrics() {
	prometheus.MustRegister(RateLimitRequestsTotal)
}

func RegisterCircuitBreakerMetrics() {
	prometheus.MustRegister(
		CircuitBreakerState,
		CircuitBreakerRequests,
		CircuitBreakerFailures,
	)
}

func ObserveRenderDuration(d time.Duration, template string) {
	RenderDuration.WithLabelValues(template).Observe(float64(d.Milliseconds()))
}

func ObserveImageFetchDuration(d time.Duration, status string) {
	ImageFetchDuration.WithLabelValues(status).Observe(float64(d.Milliseconds()))
}
