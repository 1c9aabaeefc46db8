// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package watcher

import (
	"fmt"
	"time"
)

// A watch exceeded its attempt budget without reaching the stop
// condition.
type TimeoutError struct {
	Stack    string
	Timeout  time.Duration
	Attempts int
	Err      error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf(
		"stack %s did not reach the expected state within %s (%d attempts)",
		e.Stack, e.Timeout, e.Attempts,
	)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// A watch observed a known-bad terminal status.
type TerminalFailureError struct {
	Stack  string
	Status string
	Reason string
}

func (e *TerminalFailureError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("stack %s reached %s: %s", e.Stack, e.Status, e.Reason)
	}
	return fmt.Sprintf("stack %s reached %s", e.Stack, e.Status)
}
