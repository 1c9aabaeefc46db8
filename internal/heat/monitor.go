// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package heat

import (
	"github.com/cobaltcore-dev/stackops/internal/monitoring"
	"github.com/prometheus/client_golang/prometheus"
)

type Monitor struct {
	RequestTimer *prometheus.HistogramVec
}

func NewMonitor(registry *monitoring.Registry) Monitor {
	requestTimer := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stackops_heat_request_duration_seconds",
		Help:    "Duration of heat api requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"request"})
	registry.MustRegister(requestTimer)
	return Monitor{RequestTimer: requestTimer}
}
