package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result labels
const (
	ResultSuccess  = "success"
	ResultFailure  = "failure"
	ResultConflict = "conflict"
	ResultInvalid  = "invalid"
	ResultDisabled = "disabled"
	ResultError    = "error"
)

var (
	RegistrationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "usercenter_registrations_total",
		Help: "Registration attempts by result.",
	}, []string{"result"})

	LoginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "usercenter_logins_total",
		Help: "Login attempts by result.",
	}, []string{"result"})

	RecoveryAnswersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "usercenter_recovery_answers_total",
		Help: "Security answer submissions by result.",
	}, []string{"result"})

	RecoveryTerminatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "usercenter_recovery_terminated_total",
		Help: "Recovery flows ended after too many wrong answers.",
	})

	PasswordResetsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "usercenter_password_resets_total",
		Help: "Completed password resets.",
	})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "usercenter_http_request_duration_seconds",
		Help:    "HTTP request latency by route and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)
