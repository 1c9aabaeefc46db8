// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

// Package retry provides the bounded retry loop shared by the stack
// watcher and the status publisher: a fixed delay between attempts and
// a fixed attempt budget.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Returned when the attempt budget is exhausted without the attempt
// func reporting done.
var ErrAttemptsExhausted = errors.New("attempts exhausted")

// A single attempt. The returned values decide how the loop continues:
//   - (true, nil): success, stop.
//   - (false, nil): not there yet, sleep and try again.
//   - (true, err): terminal failure, stop with err.
//   - (false, err): transient failure, sleep and try again.
type Func func(ctx context.Context, attempt int) (done bool, err error)

// Run fn up to maxAttempts times with the given delay between attempts.
// The delay is skipped after the last attempt. Context cancellation
// aborts the sleep and returns the context error.
func Do(ctx context.Context, delay time.Duration, maxAttempts int, fn Func) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		done, err := fn(ctx, attempt)
		if done {
			return err
		}
		lastErr = err
		if attempt == maxAttempts {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if lastErr != nil {
		return fmt.Errorf("%w after %d attempts: %w", ErrAttemptsExhausted, maxAttempts, lastErr)
	}
	return fmt.Errorf("%w after %d attempts", ErrAttemptsExhausted, maxAttempts)
}
