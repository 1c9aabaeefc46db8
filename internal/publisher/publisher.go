// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package publisher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cobaltcore-dev/stackops/internal/conf"
	"github.com/cobaltcore-dev/stackops/internal/mqtt"
	"github.com/cobaltcore-dev/stackops/internal/retry"
	"github.com/google/uuid"
)

// Statuses carried by a notification.
const (
	StatusRunning = "RUNNING"
	StatusSuccess = "SUCCESS"
	StatusFailed  = "FAILED"
)

const (
	// Default delay between delivery attempts.
	defaultRetryInterval = 1 * time.Second
	// Default number of delivery attempts.
	defaultMaxRetries = 5
)

// Correlation id attached to all notifications of the same
// orchestration run.
type Execution struct {
	ID string `json:"id"`
}

// Create a fresh execution context for an orchestration run.
func NewExecution() Execution {
	return Execution{ID: uuid.NewString()}
}

// Structured outcome message delivered to a notification queue.
type Notification struct {
	// The kind of orchestration run, such as "stack_delete".
	Type string `json:"type"`
	// One of RUNNING, SUCCESS, FAILED.
	Status string `json:"status"`
	// The last error payload observed, if any.
	Message string `json:"message,omitempty"`
	// Correlation context of the run.
	Execution Execution `json:"execution"`
}

// The notification channel exhausted its delivery attempts.
type PublishError struct {
	Queue    string
	Attempts int
	Err      error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf(
		"failed to publish to queue %s after %d attempts: %v",
		e.Queue, e.Attempts, e.Err,
	)
}

func (e *PublishError) Unwrap() error { return e.Err }

// Publisher delivers notifications to a queue with bounded retry.
type Publisher interface {
	Publish(ctx context.Context, queue string, n Notification) error
}

type publisher struct {
	// MQTT client carrying the notification channel.
	client mqtt.Client
	// Delay between delivery attempts.
	delay time.Duration
	// Number of delivery attempts before giving up.
	attempts int
}

// Create a new status publisher on the given mqtt client.
func NewPublisher(client mqtt.Client, config conf.PublisherConfig) Publisher {
	delay := defaultRetryInterval
	if config.RetryIntervalSeconds > 0 {
		delay = time.Duration(config.RetryIntervalSeconds) * time.Second
	}
	attempts := defaultMaxRetries
	if config.MaxRetries > 0 {
		attempts = config.MaxRetries
	}
	return &publisher{client: client, delay: delay, attempts: attempts}
}

// Publish the notification on the queue topic. Transient delivery
// errors are retried on the shared bounded retry loop. Exhausting the
// budget yields a PublishError, there is no further fallback channel.
func (p *publisher) Publish(ctx context.Context, queue string, n Notification) error {
	err := retry.Do(ctx, p.delay, p.attempts,
		func(ctx context.Context, attempt int) (bool, error) {
			if err := p.client.Publish(queue, n); err != nil {
				slog.Error(
					"failed to publish notification",
					"queue", queue, "attempt", attempt, "error", err,
				)
				return false, err
			}
			return true, nil
		})
	if errors.Is(err, retry.ErrAttemptsExhausted) {
		return &PublishError{Queue: queue, Attempts: p.attempts, Err: err}
	}
	return err
}
