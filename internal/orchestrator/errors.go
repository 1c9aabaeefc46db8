// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package orchestrator

import "fmt"

// An imperative step of an orchestration run failed before any
// watching could start.
type ActionError struct {
	// The kind of orchestration run, such as "stack_delete".
	Type string
	// The stack the action was issued against.
	Stack string
	Err   error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("%s action failed for stack %s: %v", e.Type, e.Stack, e.Err)
}

func (e *ActionError) Unwrap() error { return e.Err }
