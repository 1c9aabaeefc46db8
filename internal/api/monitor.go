// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"github.com/cobaltcore-dev/stackops/internal/monitoring"
	"github.com/prometheus/client_golang/prometheus"
)

type Monitor struct {
	apiRequestsTimer *prometheus.HistogramVec
}

func NewMonitor(registry *monitoring.Registry) Monitor {
	apiRequestsTimer := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stackops_api_request_duration_seconds",
		Help:    "Duration of API requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "pattern", "status", "text"})
	registry.MustRegister(
		apiRequestsTimer,
	)
	return Monitor{apiRequestsTimer: apiRequestsTimer}
}
