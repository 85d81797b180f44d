// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Template Stack Contributors

package auth

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Status constants for auth operation metrics.
const (
	StatusSuccess      = "success"
	StatusUnauthorized = "unauthorized"
	StatusConflict     = "conflict"
	StatusInvalid      = "invalid"
	StatusError        = "error"
)

// Operation labels.
const (
	OpLogin    = "login"
	OpRegister = "register"
	OpLogout   = "logout"
	OpMe       = "me"
)

// Operations is the counter for auth operations.
// Use RegisterMetrics to register this with a Prometheus registry.
var Operations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "backend_auth_operations_total",
		Help: "Total number of auth operations",
	},
	[]string{"operation", "status"},
)

// OperationDuration is the histogram for auth operation duration.
// Use RegisterMetrics to register this with a Prometheus registry.
var OperationDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "backend_auth_operation_duration_seconds",
		Help:    "Auth operation duration in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"operation"},
)

// SessionsSwept counts expired session records removed by the sweeper.
var SessionsSwept = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "backend_auth_sessions_swept_total",
		Help: "Total number of expired sessions removed by cleanup",
	},
)

// RegisterMetrics registers auth package metrics with the given Prometheus registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(Operations)
	reg.MustRegister(OperationDuration)
	reg.MustRegister(SessionsSwept)
}

// RegisterSessionGauge exposes the number of records held by sessions.
func RegisterSessionGauge(reg prometheus.Registerer, sessions *SessionRegistry) {
	reg.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "backend_auth_sessions",
			Help: "Number of session records currently held",
		},
		func() float64 { return float64(sessions.Len()) },
	))
}

// RecordOperation increments the operation counter and observes its duration.
func RecordOperation(operation string, err error, duration time.Duration) {
	Operations.WithLabelValues(operation, statusOf(err)).Inc()
	OperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func statusOf(err error) string {
	if err == nil {
		return StatusSuccess
	}
	switch KindOf(err) {
	case KindUnauthorized:
		return StatusUnauthorized
	case KindConflict:
		return StatusConflict
	case KindValidation:
		return StatusInvalid
	default:
		return StatusError
	}
}
