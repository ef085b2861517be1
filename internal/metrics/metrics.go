package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "imagify_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "route", "status"})

	HTTPLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "imagify_http_request_duration_seconds",
		Help:    "Request latency",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 30, 60},
	}, []string{"method", "route"})

	Generations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "imagify_generations_total",
		Help: "Image generation attempts by outcome",
	}, []string{"outcome"})

	CreditsDebited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "imagify_credits_debited_total",
		Help: "Credits consumed by successful generations",
	})

	CreditsGranted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "imagify_credits_granted_total",
		Help: "Credits granted by settled purchases",
	})

	Settlements = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "imagify_settlements_total",
		Help: "Payment verification attempts by outcome",
	}, []string{"outcome"})
)

const (
	OutcomeSuccess          = "success"
	OutcomeInsufficient     = "insufficient_credit"
	OutcomeProviderError    = "provider_error"
	OutcomeInvalid          = "invalid"
	OutcomeAlreadyProcessed = "already_processed"
	OutcomeNotPaid          = "not_paid"
	OutcomeError            = "error"
)
