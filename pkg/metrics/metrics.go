// Package metrics provides Prometheus metrics for the auth flow.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CodeRequestsTotal counts verification code requests by result.
	CodeRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "colorfit",
			Subsystem: "auth",
			Name:      "code_requests_total",
			Help:      "Total number of verification code requests",
		},
		[]string{"result"},
	)

	// VerificationsTotal counts code verification attempts by result.
	VerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "colorfit",
			Subsystem: "auth",
			Name:      "verifications_total",
			Help:      "Total number of verification code checks",
		},
		[]string{"result"},
	)

	// RegistrationsTotal counts registration attempts by result.
	RegistrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "colorfit",
			Subsystem: "auth",
			Name:      "registrations_total",
			Help:      "Total number of registration attempts",
		},
		[]string{"result"},
	)

	// LoginsTotal counts login attempts by result.
	LoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "colorfit",
			Subsystem: "auth",
			Name:      "logins_total",
			Help:      "Total number of login attempts",
		},
		[]string{"result"},
	)

	// PendingSweptTotal counts expired pending verifications removed by the sweeper.
	PendingSweptTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "colorfit",
			Subsystem: "auth",
			Name:      "pending_swept_total",
			Help:      "Total number of expired pending verifications removed",
		},
	)
)

// AuthRecorder counts auth outcomes into the counters above.
type AuthRecorder struct{}

func (AuthRecorder) CodeRequest(result string) {
	CodeRequestsTotal.WithLabelValues(result).Inc()
}

func (AuthRecorder) Verification(result string) {
	VerificationsTotal.WithLabelValues(result).Inc()
}

func (AuthRecorder) Registration(result string) {
	RegistrationsTotal.WithLabelValues(result).Inc()
}

func (AuthRecorder) Login(result string) {
	LoginsTotal.WithLabelValues(result).Inc()
}

// RecordSwept adds n removed pending verifications.
func RecordSwept(n int64) {
	PendingSweptTotal.Add(float64(n))
}
