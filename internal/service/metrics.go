package service

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	submissionComment = "comment"
	submissionContact = "contact"

	outcomeAccepted    = "accepted"
	outcomeHoneypot    = "honeypot"
	outcomeInvalid     = "invalid"
	outcomeRateLimited = "rate_limited"
	outcomeError       = "error"
)

var (
	submissionMetricsOnce sync.Once
	submissionsTotal      *prometheus.CounterVec
)

func recordSubmission(kind, outcome string) {
	submissionMetricsOnce.Do(func() {
		submissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portfolio",
			Subsystem: "submissions",
			Name:      "total",
			Help:      "Public form submissions by kind and outcome",
		}, []string{"kind", "outcome"})
	})
	submissionsTotal.WithLabelValues(kind, outcome).Inc()
}
