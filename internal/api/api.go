// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/cobaltcore-dev/stackops/internal/conf"
	"github.com/cobaltcore-dev/stackops/internal/orchestrator"
	"github.com/cobaltcore-dev/stackops/internal/publisher"
	"github.com/cobaltcore-dev/stackops/internal/runs"
	"github.com/sapcc/go-bits/httpext"
)

// Default timeout in minutes for heat stack updates when the request
// does not carry one.
const defaultUpdateTimeoutMins = 240

type API interface {
	// Init the API mux and bind the handlers.
	Init(context.Context)
}

type api struct {
	Orchestrator orchestrator.Orchestrator
	store        runs.Store
	config       conf.APIConfig
	monitor      Monitor
	// Executes an accepted orchestration run, asynchronously unless
	// overridden in tests.
	runAsync func(fn func())
}

func NewAPI(config conf.APIConfig, o orchestrator.Orchestrator, store runs.Store, m Monitor) API {
	return &api{
		Orchestrator: o,
		store:        store,
		config:       config,
		monitor:      m,
		runAsync:     func(fn func()) { go fn() },
	}
}

// Init the API mux and bind the handlers.
func (api *api) Init(ctx context.Context) {
	mux := http.NewServeMux()
	mux.HandleFunc("/up", api.Up)
	mux.HandleFunc("/v1/stacks/delete", api.StackDelete)
	mux.HandleFunc("/v1/nodes/remove", api.NodeRemove)
	mux.HandleFunc("/v1/runs", api.Runs)
	slog.Info("api listening on", "port", api.config.Port)
	addr := fmt.Sprintf(":%d", api.config.Port)
	if err := httpext.ListenAndServeContext(ctx, addr, mux); err != nil {
		panic(err)
	}
}

// Helper to respond to the request with the given code and error.
// Also adds monitoring for the time it took to handle the request.
type apihelper struct {
	api     *api
	w       http.ResponseWriter
	r       *http.Request
	pattern string
	t       time.Time
}

func (api *api) newHelper(w http.ResponseWriter, r *http.Request, pattern string) apihelper {
	return apihelper{api: api, w: w, r: r, pattern: pattern, t: time.Now()}
}

// Respond to the request with the given code and error.
// Also log the time it took to handle the request.
func (h apihelper) respond(code int, err error, text string) {
	if h.api.monitor.apiRequestsTimer != nil {
		observer := h.api.monitor.apiRequestsTimer.WithLabelValues(
			h.r.Method,
			h.pattern,
			strconv.Itoa(code),
			text, // Internal error messages should not face the monitor.
		)
		observer.Observe(time.Since(h.t).Seconds())
	}
	if err != nil {
		slog.Error("failed to handle request", "error", err)
		http.Error(h.w, text, code)
		return
	}
	// If there was no error, nothing else to do.
}

// Handle the GET request to check if the API is up.
func (api *api) Up(w http.ResponseWriter, r *http.Request) {
	h := api.newHelper(w, r, "/up")
	h.respond(http.StatusOK, nil, "Success")
}

// Accept the run: record it, respond with 202 and the execution id,
// and continue the orchestration in the background. The background
// run gets a fresh context since the request context ends with the
// response.
func (h apihelper) accept(runType, target, queue string, fn func(ctx context.Context, exec publisher.Execution) error) {
	exec := publisher.NewExecution()
	run := runs.Run{
		ID:        exec.ID,
		Type:      runType,
		Target:    target,
		Queue:     queue,
		Status:    publisher.StatusRunning,
		StartedAt: time.Now(),
	}
	if err := h.api.store.Create(run); err != nil {
		h.respond(http.StatusInternalServerError, err, "failed to record run")
		return
	}
	h.api.runAsync(func() {
		ctx := context.Background()
		err := fn(ctx, exec)
		status, message := publisher.StatusSuccess, ""
		if err != nil {
			status, message = publisher.StatusFailed, err.Error()
		}
		if err := h.api.store.Finish(exec.ID, status, message); err != nil {
			slog.Error("failed to record run outcome", "id", exec.ID, "error", err)
		}
	})
	response := RunAcceptedResponse{Execution: exec}
	h.w.Header().Set("Content-Type", "application/json")
	h.w.WriteHeader(http.StatusAccepted)
	if err := json.NewEncoder(h.w).Encode(response); err != nil {
		h.respond(http.StatusInternalServerError, err, "failed to encode response")
		return
	}
	h.respond(http.StatusAccepted, nil, "Accepted")
}

// Handle the POST request to delete a stack.
func (api *api) StackDelete(w http.ResponseWriter, r *http.Request) {
	h := api.newHelper(w, r, "/v1/stacks/delete")
	if r.Method != http.MethodPost {
		internalErr := fmt.Errorf("invalid request method: %s", r.Method)
		h.respond(http.StatusMethodNotAllowed, internalErr, "invalid request method")
		return
	}
	defer r.Body.Close()
	var requestData StackDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil {
		h.respond(http.StatusBadRequest, err, "failed to decode request body")
		return
	}
	if requestData.Stack == "" || requestData.Queue == "" {
		internalErr := fmt.Errorf("incomplete request: %+v", requestData)
		h.respond(http.StatusBadRequest, internalErr, "stack and queue are required")
		return
	}
	slog.Info(
		"handling POST request",
		"url", "/v1/stacks/delete", "stack", requestData.Stack, "queue", requestData.Queue,
	)
	h.accept(orchestrator.TypeStackDelete, requestData.Stack, requestData.Queue,
		func(ctx context.Context, exec publisher.Execution) error {
			return api.Orchestrator.DeleteStack(ctx, exec, requestData.Stack, requestData.Queue)
		})
}

// Handle the POST request to remove nodes from a plan stack.
func (api *api) NodeRemove(w http.ResponseWriter, r *http.Request) {
	h := api.newHelper(w, r, "/v1/nodes/remove")
	if r.Method != http.MethodPost {
		internalErr := fmt.Errorf("invalid request method: %s", r.Method)
		h.respond(http.StatusMethodNotAllowed, internalErr, "invalid request method")
		return
	}
	defer r.Body.Close()
	var requestData NodeRemoveRequest
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil {
		h.respond(http.StatusBadRequest, err, "failed to decode request body")
		return
	}
	if requestData.Plan == "" || requestData.Queue == "" || len(requestData.Nodes) == 0 {
		internalErr := fmt.Errorf("incomplete request: %+v", requestData)
		h.respond(http.StatusBadRequest, internalErr, "plan, nodes and queue are required")
		return
	}
	if requestData.TimeoutMins <= 0 {
		requestData.TimeoutMins = defaultUpdateTimeoutMins
	}
	slog.Info(
		"handling POST request",
		"url", "/v1/nodes/remove", "plan", requestData.Plan,
		"nodes", len(requestData.Nodes), "queue", requestData.Queue,
	)
	h.accept(orchestrator.TypeNodeRemove, requestData.Plan, requestData.Queue,
		func(ctx context.Context, exec publisher.Execution) error {
			return api.Orchestrator.RemoveNodes(
				ctx, exec, requestData.Plan, requestData.Nodes,
				requestData.TimeoutMins, requestData.Queue,
			)
		})
}

// Handle the GET request to list recorded runs, or a single run when
// an id query parameter is given.
func (api *api) Runs(w http.ResponseWriter, r *http.Request) {
	h := api.newHelper(w, r, "/v1/runs")
	if r.Method != http.MethodGet {
		internalErr := fmt.Errorf("invalid request method: %s", r.Method)
		h.respond(http.StatusMethodNotAllowed, internalErr, "invalid request method")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if id := r.URL.Query().Get("id"); id != "" {
		run, err := api.store.Get(id)
		if err != nil {
			h.respond(http.StatusNotFound, err, "run not found")
			return
		}
		if err := json.NewEncoder(w).Encode(run); err != nil {
			h.respond(http.StatusInternalServerError, err, "failed to encode response")
			return
		}
		h.respond(http.StatusOK, nil, "Success")
		return
	}
	all, err := api.store.List()
	if err != nil {
		h.respond(http.StatusInternalServerError, err, "failed to list runs")
		return
	}
	if err := json.NewEncoder(w).Encode(all); err != nil {
		h.respond(http.StatusInternalServerError, err, "failed to encode response")
		return
	}
	h.respond(http.StatusOK, nil, "Success")
}
