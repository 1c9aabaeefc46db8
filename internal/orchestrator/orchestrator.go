// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

// Package orchestrator drives the lifecycle runs: an imperative action
// against heat, a watch until the stack settles, and an outcome
// notification on the caller's queue. Every run publishes exactly one
// final notification, whether it succeeds or fails.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cobaltcore-dev/stackops/internal/heat"
	"github.com/cobaltcore-dev/stackops/internal/publisher"
	"github.com/cobaltcore-dev/stackops/internal/watcher"
	"github.com/prometheus/client_golang/prometheus"
)

// Kinds of orchestration runs, carried in the notification type.
const (
	TypeStackDelete = "stack_delete"
	TypeNodeRemove  = "node_remove"
)

// Reason attached to stack resources marked for removal.
const removalReason = "marked unhealthy for removal"

type Orchestrator interface {
	// Delete the stack and wait until it is gone.
	DeleteStack(ctx context.Context, exec publisher.Execution, stack, queue string) error
	// Remove the given node resources from the plan stack and wait
	// until the resulting stack update settles.
	RemoveNodes(ctx context.Context, exec publisher.Execution, plan string, nodes []string, timeoutMins int, queue string) error
}

type orchestrator struct {
	heat    heat.HeatAPI
	watcher watcher.Watcher
	pub     publisher.Publisher
	mon     Monitor
}

// Create a new lifecycle orchestrator on the given collaborators.
func NewOrchestrator(
	api heat.HeatAPI,
	w watcher.Watcher,
	pub publisher.Publisher,
	mon Monitor,
) Orchestrator {
	return &orchestrator{heat: api, watcher: w, pub: pub, mon: mon}
}

// Run the given orchestration: announce it on the queue, execute it,
// and publish the outcome. The run fails fast on the first error but
// still publishes exactly one final notification. A failed final
// publish escapes as PublishError and takes precedence over the run
// error itself, since the outcome never reached the caller.
func (o *orchestrator) run(
	ctx context.Context, runType string,
	exec publisher.Execution, queue string,
	fn func(ctx context.Context) error,
) error {
	if o.mon.RunTimer != nil {
		hist := o.mon.RunTimer.WithLabelValues(runType)
		timer := prometheus.NewTimer(hist)
		defer timer.ObserveDuration()
	}
	running := publisher.Notification{
		Type:      runType,
		Status:    publisher.StatusRunning,
		Execution: exec,
	}
	if err := o.pub.Publish(ctx, queue, running); err != nil {
		return err
	}
	runErr := fn(ctx)
	outcome := publisher.Notification{
		Type:      runType,
		Status:    publisher.StatusSuccess,
		Execution: exec,
	}
	if runErr != nil {
		outcome.Status = publisher.StatusFailed
		outcome.Message = runErr.Error()
		slog.Error("orchestration run failed", "type", runType, "execution", exec.ID, "error", runErr)
	} else {
		slog.Info("orchestration run succeeded", "type", runType, "execution", exec.ID)
	}
	if o.mon.RunCounter != nil {
		o.mon.RunCounter.WithLabelValues(runType, outcome.Status).Inc()
	}
	if err := o.pub.Publish(ctx, queue, outcome); err != nil {
		return err
	}
	return runErr
}

// Delete the stack and wait until it is gone from the stack listing.
func (o *orchestrator) DeleteStack(
	ctx context.Context, exec publisher.Execution, stack, queue string,
) error {
	return o.run(ctx, TypeStackDelete, exec, queue, func(ctx context.Context) error {
		slog.Info("deleting stack", "stack", stack, "execution", exec.ID)
		if err := o.heat.DeleteStack(ctx, stack); err != nil {
			return &ActionError{Type: TypeStackDelete, Stack: stack, Err: err}
		}
		return o.watcher.WaitForDeleted(ctx, stack)
	})
}

// Remove the given node resources from the plan stack: mark each one
// unhealthy, then shrink the stack with an update carrying the given
// timeout. The run waits for the update to start before waiting for
// it to settle, so a stale settled status from the previous update is
// never mistaken for the outcome.
func (o *orchestrator) RemoveNodes(
	ctx context.Context, exec publisher.Execution,
	plan string, nodes []string, timeoutMins int, queue string,
) error {
	return o.run(ctx, TypeNodeRemove, exec, queue, func(ctx context.Context) error {
		stack, err := o.heat.GetStack(ctx, plan)
		if err != nil {
			return &ActionError{Type: TypeNodeRemove, Stack: plan, Err: err}
		}
		for _, node := range nodes {
			slog.Info("marking node for removal", "stack", plan, "node", node, "execution", exec.ID)
			if err := o.heat.MarkResourceUnhealthy(ctx, stack, node, removalReason); err != nil {
				return &ActionError{Type: TypeNodeRemove, Stack: plan, Err: err}
			}
		}
		if err := o.heat.PatchStack(ctx, stack, timeoutMins); err != nil {
			return &ActionError{Type: TypeNodeRemove, Stack: plan, Err: err}
		}
		if _, err := o.watcher.WaitForInProgress(ctx, plan); err != nil {
			return err
		}
		status, err := o.watcher.WaitForCompleteOrFailed(ctx, plan)
		if err != nil {
			return err
		}
		if heat.StatusFailed(status) {
			return &watcher.TerminalFailureError{
				Stack:  plan,
				Status: status,
				Reason: fmt.Sprintf("stack update settled with status %s", status),
			}
		}
		return nil
	})
}
