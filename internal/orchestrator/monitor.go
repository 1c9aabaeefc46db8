// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package orchestrator

import (
	"github.com/cobaltcore-dev/stackops/internal/monitoring"
	"github.com/prometheus/client_golang/prometheus"
)

type Monitor struct {
	RunTimer   *prometheus.HistogramVec
	RunCounter *prometheus.CounterVec
}

func NewMonitor(registry *monitoring.Registry) Monitor {
	runTimer := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stackops_orchestrator_run_duration_seconds",
		Help:    "Duration of orchestration runs",
		Buckets: prometheus.ExponentialBuckets(1, 4, 10),
	}, []string{"type"})
	runCounter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stackops_orchestrator_runs_total",
		Help: "Number of orchestration runs by outcome",
	}, []string{"type", "status"})
	registry.MustRegister(
		runTimer,
		runCounter,
	)
	return Monitor{
		RunTimer:   runTimer,
		RunCounter: runCounter,
	}
}
