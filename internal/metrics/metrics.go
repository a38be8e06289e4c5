// Package metrics holds Prometheus instruments that are used across the
// app.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studentdesk_api_requests_total",
			Help: "Backend API calls by operation and HTTP status (0 = transport error).",
		}, []string{"op", "status"})

	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "studentdesk_api_request_duration_seconds",
			Help:    "Backend API latency by operation.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"})

	FormSubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studentdesk_form_submissions_total",
			Help: "Form submissions by form and outcome (success, failed, invalid, duplicate).",
		}, []string{"form", "outcome"})

	SessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "studentdesk_sessions_active",
			Help: "Server-side sessions created minus sessions cleared since start.",
		})
)

func init() {
	prometheus.MustRegister(
		APIRequestsTotal,
		APIRequestDuration,
		FormSubmissionsTotal,
		SessionsActive,
	)
}
