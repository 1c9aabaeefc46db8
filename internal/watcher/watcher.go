// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package watcher

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cobaltcore-dev/stackops/internal/conf"
	"github.com/cobaltcore-dev/stackops/internal/heat"
	"github.com/cobaltcore-dev/stackops/internal/retry"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// Fixed delay between two status polls unless configured otherwise.
	defaultPollInterval = 15 * time.Second
	// Default timeout for waiting until a stack reaches a terminal state.
	defaultStackTimeout = 4 * time.Hour
	// Default timeout for waiting until a stack starts transitioning.
	defaultInProgressTimeout = 10 * time.Minute
	// Default timeout for waiting until a deleted stack is gone.
	defaultDeleteTimeout = 4 * time.Hour
)

// Watcher polls heat until a stack satisfies a stop condition or the
// attempt budget derived from the timeout is exhausted.
type Watcher interface {
	// Wait until the stack is no longer in progress. Returns the final
	// observed status.
	WaitForCompleteOrFailed(ctx context.Context, stack string) (string, error)
	// Wait until the stack has started transitioning, i.e. is no longer
	// in a settled create or update state. Returns the first status
	// observed outside those states.
	WaitForInProgress(ctx context.Context, stack string) (string, error)
	// Wait until the stack is gone from the stack listing. Fails fast
	// with a TerminalFailureError when DELETE_FAILED is observed.
	WaitForDeleted(ctx context.Context, stack string) error
}

type watcher struct {
	// Heat api to poll the stack status from.
	api heat.HeatAPI
	// Monitor to track the watcher.
	mon Monitor
	// Fixed delay between two status polls.
	interval time.Duration
	// Timeouts per wait operation.
	stackTimeout      time.Duration
	inProgressTimeout time.Duration
	deleteTimeout     time.Duration
}

// Create a new stack watcher polling the given heat API.
func NewWatcher(api heat.HeatAPI, config conf.WatcherConfig, mon Monitor) Watcher {
	w := &watcher{
		api:               api,
		mon:               mon,
		interval:          defaultPollInterval,
		stackTimeout:      defaultStackTimeout,
		inProgressTimeout: defaultInProgressTimeout,
		deleteTimeout:     defaultDeleteTimeout,
	}
	if config.PollIntervalSeconds > 0 {
		w.interval = time.Duration(config.PollIntervalSeconds) * time.Second
	}
	if config.StackTimeoutSeconds > 0 {
		w.stackTimeout = time.Duration(config.StackTimeoutSeconds) * time.Second
	}
	if config.InProgressTimeoutSeconds > 0 {
		w.inProgressTimeout = time.Duration(config.InProgressTimeoutSeconds) * time.Second
	}
	if config.DeleteTimeoutSeconds > 0 {
		w.deleteTimeout = time.Duration(config.DeleteTimeoutSeconds) * time.Second
	}
	return w
}

// The attempt budget is derived from the timeout, never hardcoded:
// one poll per interval, rounded down, at least one. The last attempt
// may therefore happen slightly before the nominal timeout elapses.
func attemptBudget(timeout, interval time.Duration) int {
	attempts := int(timeout / interval)
	if attempts < 1 {
		attempts = 1
	}
	return attempts
}

// Run the poll func on the shared bounded retry loop and translate
// budget exhaustion into a TimeoutError.
func (w *watcher) watch(
	ctx context.Context, wait, stack string,
	timeout time.Duration, poll retry.Func,
) error {
	attempts := attemptBudget(timeout, w.interval)
	slog.Info(
		"watching stack", "wait", wait, "stack", stack,
		"timeout", timeout, "attempts", attempts,
	)
	if w.mon.WatchTimer != nil {
		hist := w.mon.WatchTimer.WithLabelValues(wait)
		timer := prometheus.NewTimer(hist)
		defer timer.ObserveDuration()
	}
	err := retry.Do(ctx, w.interval, attempts, func(ctx context.Context, attempt int) (bool, error) {
		if w.mon.PollAttemptsCounter != nil {
			w.mon.PollAttemptsCounter.WithLabelValues(wait).Inc()
		}
		return poll(ctx, attempt)
	})
	if errors.Is(err, retry.ErrAttemptsExhausted) {
		return &TimeoutError{Stack: stack, Timeout: timeout, Attempts: attempts, Err: err}
	}
	return err
}

// Wait until the stack is no longer in progress.
func (w *watcher) WaitForCompleteOrFailed(ctx context.Context, stack string) (string, error) {
	var status string
	err := w.watch(ctx, "complete_or_failed", stack, w.stackTimeout,
		func(ctx context.Context, attempt int) (bool, error) {
			s, err := w.api.GetStack(ctx, stack)
			if err != nil {
				// Transient query errors consume the retry budget.
				return false, err
			}
			status = s.Status
			return !heat.StatusInProgress(s.Status), nil
		})
	if err != nil {
		return "", err
	}
	slog.Info("stack settled", "stack", stack, "status", status)
	return status, nil
}

// Wait until the stack has started transitioning.
func (w *watcher) WaitForInProgress(ctx context.Context, stack string) (string, error) {
	var status string
	err := w.watch(ctx, "in_progress", stack, w.inProgressTimeout,
		func(ctx context.Context, attempt int) (bool, error) {
			s, err := w.api.GetStack(ctx, stack)
			if err != nil {
				return false, err
			}
			status = s.Status
			return !heat.StatusSettled(s.Status), nil
		})
	if err != nil {
		return "", err
	}
	slog.Info("stack started transitioning", "stack", stack, "status", status)
	return status, nil
}

// Wait until the stack is gone from the stack listing.
func (w *watcher) WaitForDeleted(ctx context.Context, stack string) error {
	return w.watch(ctx, "deleted", stack, w.deleteTimeout,
		func(ctx context.Context, attempt int) (bool, error) {
			stacks, err := w.api.ListStacks(ctx)
			if err != nil {
				return false, err
			}
			for _, s := range stacks {
				if s.Name != stack && s.ID != stack {
					continue
				}
				if s.Status == heat.StatusDeleteFailed {
					// Non-retryable, the stack needs external action.
					return true, &TerminalFailureError{
						Stack:  stack,
						Status: s.Status,
						Reason: s.StatusReason,
					}
				}
				return false, nil
			}
			slog.Info("stack gone from listing", "stack", stack)
			return true, nil
		})
}
