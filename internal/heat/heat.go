// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package heat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cobaltcore-dev/stackops/internal/conf"
	"github.com/cobaltcore-dev/stackops/internal/keystone"
	"github.com/gophercloud/gophercloud/v2"
	"github.com/prometheus/client_golang/prometheus"
)

// Returned by GetStack when the stack is not known to heat.
var ErrStackNotFound = errors.New("stack not found")

type HeatAPI interface {
	// Init the heat API.
	Init(ctx context.Context)
	// Get a single stack by its name or id.
	GetStack(ctx context.Context, ident string) (*Stack, error)
	// List all stacks visible to the authenticated project.
	ListStacks(ctx context.Context) ([]Stack, error)
	// Request deletion of the stack with the given name or id.
	DeleteStack(ctx context.Context, ident string) error
	// Mark a resource of the stack as unhealthy so that the next stack
	// update replaces or removes it.
	MarkResourceUnhealthy(ctx context.Context, stack *Stack, resource, reason string) error
	// Trigger an existing (PATCH) update of the stack with the given
	// update timeout in minutes.
	PatchStack(ctx context.Context, stack *Stack, timeoutMins int) error
}

// API for OpenStack Heat.
type heatAPI struct {
	// Monitor to track the api.
	mon Monitor
	// Keystone api to authenticate against.
	keystoneAPI keystone.KeystoneAPI
	// Heat configuration.
	conf conf.HeatConfig
	// Authenticated OpenStack service client to issue the requests.
	sc *gophercloud.ServiceClient
}

// Create a new OpenStack heat API.
func NewHeatAPI(mon Monitor, k keystone.KeystoneAPI, conf conf.HeatConfig) HeatAPI {
	return &heatAPI{mon: mon, keystoneAPI: k, conf: conf}
}

// Init the heat API.
func (api *heatAPI) Init(ctx context.Context) {
	if err := api.keystoneAPI.Authenticate(ctx); err != nil {
		panic(err)
	}
	url, err := api.keystoneAPI.FindEndpoint(api.conf.Availability, "orchestration")
	if err != nil {
		panic(err)
	}
	slog.Info("using heat endpoint", "url", url)
	api.sc = &gophercloud.ServiceClient{
		ProviderClient: api.keystoneAPI.Client(),
		Endpoint:       strings.TrimSuffix(url, "/") + "/",
		Type:           "orchestration",
	}
}

// Issue a request against the heat endpoint and decode the response into
// result, unless result is nil. The status codes given in okCodes are
// accepted, everything else is an error.
func (api *heatAPI) do(
	ctx context.Context, label, method, path string,
	body, result any, okCodes ...int,
) error {
	if api.mon.RequestTimer != nil {
		hist := api.mon.RequestTimer.WithLabelValues(label)
		timer := prometheus.NewTimer(hist)
		defer timer.ObserveDuration()
	}
	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}
	url := api.sc.Endpoint + strings.TrimPrefix(path, "/")
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Auth-Token", api.keystoneAPI.Client().Token())
	resp, err := api.sc.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return ErrStackNotFound
	}
	ok := false
	for _, code := range okCodes {
		if resp.StatusCode == code {
			ok = true
			break
		}
	}
	if !ok {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	if result == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(result)
}

// Get a single stack by its name or id.
func (api *heatAPI) GetStack(ctx context.Context, ident string) (*Stack, error) {
	var data struct {
		Stack Stack `json:"stack"`
	}
	err := api.do(
		ctx, "heat_stack_get", http.MethodGet, "stacks/"+ident,
		nil, &data, http.StatusOK,
	)
	if err != nil {
		return nil, err
	}
	return &data.Stack, nil
}

// List all stacks visible to the authenticated project.
func (api *heatAPI) ListStacks(ctx context.Context) ([]Stack, error) {
	var data struct {
		Stacks []Stack `json:"stacks"`
	}
	err := api.do(
		ctx, "heat_stack_list", http.MethodGet, "stacks",
		nil, &data, http.StatusOK,
	)
	if err != nil {
		return nil, err
	}
	slog.Info("fetched heat stacks", "count", len(data.Stacks))
	return data.Stacks, nil
}

// Request deletion of the stack with the given name or id.
func (api *heatAPI) DeleteStack(ctx context.Context, ident string) error {
	// Resolve the stack first, the delete endpoint needs name and id.
	stack, err := api.GetStack(ctx, ident)
	if err != nil {
		return err
	}
	path := fmt.Sprintf("stacks/%s/%s", stack.Name, stack.ID)
	return api.do(
		ctx, "heat_stack_delete", http.MethodDelete, path,
		nil, nil, http.StatusNoContent,
	)
}

// Mark a resource of the stack as unhealthy.
func (api *heatAPI) MarkResourceUnhealthy(
	ctx context.Context, stack *Stack, resource, reason string,
) error {
	body := struct {
		MarkUnhealthy        bool   `json:"mark_unhealthy"`
		ResourceStatusReason string `json:"resource_status_reason,omitempty"`
	}{MarkUnhealthy: true, ResourceStatusReason: reason}
	path := fmt.Sprintf("stacks/%s/%s/resources/%s", stack.Name, stack.ID, resource)
	return api.do(
		ctx, "heat_resource_mark_unhealthy", http.MethodPatch, path,
		body, nil, http.StatusOK,
	)
}

// Trigger an existing (PATCH) update of the stack.
func (api *heatAPI) PatchStack(ctx context.Context, stack *Stack, timeoutMins int) error {
	body := struct {
		TimeoutMins int `json:"timeout_mins,omitempty"`
	}{TimeoutMins: timeoutMins}
	path := fmt.Sprintf("stacks/%s/%s", stack.Name, stack.ID)
	return api.do(
		ctx, "heat_stack_patch", http.MethodPatch, path,
		body, nil, http.StatusAccepted,
	)
}
