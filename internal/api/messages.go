// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package api

import "github.com/cobaltcore-dev/stackops/internal/publisher"

// Request to delete a stack and wait until it is gone.
type StackDeleteRequest struct {
	// Name or id of the stack to delete.
	Stack string `json:"stack"`
	// Queue to deliver status notifications to.
	Queue string `json:"queue"`
}

// Request to remove node resources from a plan stack.
type NodeRemoveRequest struct {
	// Name or id of the plan stack to shrink.
	Plan string `json:"plan"`
	// Resource names of the nodes to remove.
	Nodes []string `json:"nodes"`
	// Timeout in minutes passed to the heat stack update.
	TimeoutMins int `json:"timeout_mins"`
	// Queue to deliver status notifications to.
	Queue string `json:"queue"`
}

// Response to an accepted orchestration request. The run continues in
// the background, its outcome is delivered on the requested queue.
type RunAcceptedResponse struct {
	Execution publisher.Execution `json:"execution"`
}
