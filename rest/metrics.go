package rest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "membervault",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests handled, by method and status code.",
	}, []string{"method", "code"})

	auditWritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "membervault",
		Subsystem: "audit",
		Name:      "writes_total",
		Help:      "Activity log write attempts, by outcome.",
	}, []string{"outcome"})
)
