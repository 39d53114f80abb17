package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "provisioner",
		Subsystem: "vmodel",
		Name:      "transitions_total",
		Help:      "Number of recorded vendor model transitions",
	}, []string{"template", "action"})

	callbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "provisioner",
		Subsystem: "policy",
		Name:      "calls_total",
		Help:      "Number of boot agent calls by kind and route",
	}, []string{"kind", "route"})

	expiredTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "provisioner",
		Subsystem: "vmodel",
		Name:      "timeouts_total",
		Help:      "Number of vendor model states which exceeded their maximum time",
	}, []string{"template"})
)
