// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package heat

import "strings"

// Stack statuses as reported by heat. The status is owned and mutated
// exclusively by heat, we only observe it.
const (
	StatusCreateInProgress = "CREATE_IN_PROGRESS"
	StatusCreateComplete   = "CREATE_COMPLETE"
	StatusCreateFailed     = "CREATE_FAILED"
	StatusUpdateInProgress = "UPDATE_IN_PROGRESS"
	StatusUpdateComplete   = "UPDATE_COMPLETE"
	StatusUpdateFailed     = "UPDATE_FAILED"
	StatusDeleteInProgress = "DELETE_IN_PROGRESS"
	StatusDeleteComplete   = "DELETE_COMPLETE"
	StatusDeleteFailed     = "DELETE_FAILED"
)

// Model of a heat stack, reduced to the fields we observe.
type Stack struct {
	ID           string `json:"id"`
	Name         string `json:"stack_name"`
	Status       string `json:"stack_status"`
	StatusReason string `json:"stack_status_reason"`
}

// Whether the status describes a stack that is still transitioning.
func StatusInProgress(status string) bool {
	return strings.HasSuffix(status, "_IN_PROGRESS")
}

// Whether the status describes a failed terminal state.
func StatusFailed(status string) bool {
	return strings.HasSuffix(status, "_FAILED")
}

// Whether the status describes a create or update that has settled,
// successfully or not.
func StatusSettled(status string) bool {
	switch status {
	case StatusCreateComplete, StatusCreateFailed,
		StatusUpdateComplete, StatusUpdateFailed:
		return true
	}
	return false
}
