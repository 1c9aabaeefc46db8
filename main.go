// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cobaltcore-dev/stackops/internal/api"
	"github.com/cobaltcore-dev/stackops/internal/conf"
	"github.com/cobaltcore-dev/stackops/internal/db"
	"github.com/cobaltcore-dev/stackops/internal/heat"
	"github.com/cobaltcore-dev/stackops/internal/keystone"
	"github.com/cobaltcore-dev/stackops/internal/monitoring"
	"github.com/cobaltcore-dev/stackops/internal/mqtt"
	"github.com/cobaltcore-dev/stackops/internal/orchestrator"
	"github.com/cobaltcore-dev/stackops/internal/publisher"
	"github.com/cobaltcore-dev/stackops/internal/runs"
	"github.com/cobaltcore-dev/stackops/internal/watcher"
	"github.com/sapcc/go-bits/httpext"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Run the prometheus metrics server for monitoring.
func runMonitoringServer(ctx context.Context, registry *monitoring.Registry, config conf.MonitoringConfig) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	slog.Info("metrics listening", "port", config.Port)
	addr := fmt.Sprintf(":%d", config.Port)
	if err := httpext.ListenAndServeContext(ctx, addr, mux); err != nil {
		panic(err)
	}
}

func main() {
	config := conf.NewConfig()
	config.GetLoggingConfig().SetDefaultLogger()

	// This context will gracefully shutdown when the process receives the
	// standard shutdown signal SIGINT, with a 10-second delay to allow
	// Kubernetes to stop sending new requests well before the process starts
	// to shut down.
	ctx := httpext.ContextWithSIGINT(context.Background(), 10*time.Second)

	registry := monitoring.NewRegistry(config.GetMonitoringConfig())
	go runMonitoringServer(ctx, registry, config.GetMonitoringConfig())

	database := db.NewPostgresDB(config.GetDBConfig())
	defer database.Close()
	store := runs.NewStore(database)

	keystoneAPI := keystone.NewKeystoneAPI(config.GetKeystoneConfig())
	heatAPI := heat.NewHeatAPI(heat.NewMonitor(registry), keystoneAPI, config.GetHeatConfig())
	heatAPI.Init(ctx)

	mqttClient := mqtt.NewClient(config.GetMQTTConfig())
	if err := mqttClient.Connect(); err != nil {
		panic("failed to connect to mqtt broker: " + err.Error())
	}
	defer mqttClient.Disconnect()

	stackWatcher := watcher.NewWatcher(heatAPI, config.GetWatcherConfig(), watcher.NewMonitor(registry))
	statusPublisher := publisher.NewPublisher(mqttClient, config.GetPublisherConfig())
	lifecycle := orchestrator.NewOrchestrator(
		heatAPI, stackWatcher, statusPublisher, orchestrator.NewMonitor(registry),
	)

	// Run the api server after all other tasks have been started.
	lifecycleAPI := api.NewAPI(config.GetAPIConfig(), lifecycle, store, api.NewMonitor(registry))
	lifecycleAPI.Init(ctx) // blocking
}
