// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package watcher

import (
	"github.com/cobaltcore-dev/stackops/internal/monitoring"
	"github.com/prometheus/client_golang/prometheus"
)

type Monitor struct {
	PollAttemptsCounter *prometheus.CounterVec
	WatchTimer          *prometheus.HistogramVec
}

func NewMonitor(registry *monitoring.Registry) Monitor {
	pollAttemptsCounter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stackops_watcher_poll_attempts_total",
		Help: "Number of status poll attempts",
	}, []string{"wait"})
	watchTimer := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stackops_watcher_watch_duration_seconds",
		Help:    "Duration of stack watches",
		Buckets: prometheus.ExponentialBuckets(1, 4, 10),
	}, []string{"wait"})
	registry.MustRegister(
		pollAttemptsCounter,
		watchTimer,
	)
	return Monitor{
		PollAttemptsCounter: pollAttemptsCounter,
		WatchTimer:          watchTimer,
	}
}
