package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Validation metrics
var (
	AddressValidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "address_validations_total",
			Help: "Total number of email address validations",
		},
		[]string{"mode", "result"}, // N|Y, valid|invalid
	)

	MXLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mx_lookups_total",
			Help: "Total number of MX lookups that reached the validator",
		},
		[]string{"result"}, // found, empty, error
	)

	MXCacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mx_cache_requests_total",
			Help: "Total number of MX cache lookups",
		},
		[]string{"store", "result"}, // memory|redis, hit|miss
	)

	MXLookupDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mx_lookup_duration_seconds",
			Help:    "Duration of uncached DNS MX lookups",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// Mail metrics
var (
	MessagesSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_sent_total",
			Help: "Total number of messages submitted to the SMTP relay",
		},
		[]string{"result"}, // success, failure
	)

	TransactionalTogglesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "transactional_toggles_total",
			Help: "Total number of messages sent with provider transactional mode switched off",
		},
	)
)

// API metrics
var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	APIAuthFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "api_auth_failures_total",
			Help: "Total number of API authentication failures",
		},
	)
)
