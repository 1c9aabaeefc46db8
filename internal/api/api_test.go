// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cobaltcore-dev/stackops/internal/publisher"
	"github.com/cobaltcore-dev/stackops/internal/runs"
	testlibDB "github.com/cobaltcore-dev/stackops/testlib/db"
)

type mockOrchestrator struct {
	// Error returned by either orchestration.
	err error
	// Arguments observed.
	stack       string
	plan        string
	nodes       []string
	timeoutMins int
	queue       string
	calls       int
}

func (m *mockOrchestrator) DeleteStack(ctx context.Context, exec publisher.Execution, stack, queue string) error {
	m.calls++
	m.stack = stack
	m.queue = queue
	return m.err
}

func (m *mockOrchestrator) RemoveNodes(ctx context.Context, exec publisher.Execution, plan string, nodes []string, timeoutMins int, queue string) error {
	m.calls++
	m.plan = plan
	m.nodes = nodes
	m.timeoutMins = timeoutMins
	m.queue = queue
	return m.err
}

// API with a synchronous run executor so tests can assert on the run
// outcome right after the handler returns.
func newTestAPI(t *testing.T, o *mockOrchestrator) (*api, runs.Store) {
	testDB := testlibDB.NewSqliteTestDB(t)
	t.Cleanup(testDB.Close)
	store := runs.NewStore(*testDB.DB)
	return &api{
		Orchestrator: o,
		store:        store,
		runAsync:     func(fn func()) { fn() },
	}, store
}

func TestUp(t *testing.T) {
	a, _ := newTestAPI(t, &mockOrchestrator{})
	rec := httptest.NewRecorder()
	a.Up(rec, httptest.NewRequest(http.MethodGet, "/up", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
}

func TestStackDeleteAccepted(t *testing.T) {
	o := &mockOrchestrator{}
	a, store := newTestAPI(t, o)
	body := `{"stack": "overcloud", "queue": "stack-delete-queue"}`
	rec := httptest.NewRecorder()
	a.StackDelete(rec, httptest.NewRequest(http.MethodPost, "/v1/stacks/delete", strings.NewReader(body)))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected status 202, got %d", rec.Code)
	}
	var response RunAcceptedResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if response.Execution.ID == "" {
		t.Fatal("expected an execution id")
	}
	if o.calls != 1 || o.stack != "overcloud" || o.queue != "stack-delete-queue" {
		t.Errorf("unexpected orchestrator call: %+v", o)
	}
	run, err := store.Get(response.Execution.ID)
	if err != nil {
		t.Fatalf("expected run to be recorded, got %v", err)
	}
	if run.Status != publisher.StatusSuccess {
		t.Errorf("expected status SUCCESS, got %s", run.Status)
	}
	if run.Target != "overcloud" {
		t.Errorf("expected target overcloud, got %s", run.Target)
	}
}

func TestStackDeleteRecordsFailure(t *testing.T) {
	o := &mockOrchestrator{err: errors.New("stack overcloud reached DELETE_FAILED")}
	a, store := newTestAPI(t, o)
	body := `{"stack": "overcloud", "queue": "q"}`
	rec := httptest.NewRecorder()
	a.StackDelete(rec, httptest.NewRequest(http.MethodPost, "/v1/stacks/delete", strings.NewReader(body)))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected status 202, got %d", rec.Code)
	}
	var response RunAcceptedResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	run, err := store.Get(response.Execution.ID)
	if err != nil {
		t.Fatalf("expected run to be recorded, got %v", err)
	}
	if run.Status != publisher.StatusFailed {
		t.Errorf("expected status FAILED, got %s", run.Status)
	}
	if run.Message == "" {
		t.Error("expected a failure message")
	}
}

func TestStackDeleteRejectsWrongMethod(t *testing.T) {
	a, _ := newTestAPI(t, &mockOrchestrator{})
	rec := httptest.NewRecorder()
	a.StackDelete(rec, httptest.NewRequest(http.MethodGet, "/v1/stacks/delete", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", rec.Code)
	}
}

func TestStackDeleteRejectsIncompleteRequest(t *testing.T) {
	o := &mockOrchestrator{}
	a, _ := newTestAPI(t, o)
	body := `{"stack": "overcloud"}`
	rec := httptest.NewRecorder()
	a.StackDelete(rec, httptest.NewRequest(http.MethodPost, "/v1/stacks/delete", strings.NewReader(body)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
	if o.calls != 0 {
		t.Errorf("expected no orchestrator call, got %d", o.calls)
	}
}

func TestNodeRemoveAccepted(t *testing.T) {
	o := &mockOrchestrator{}
	a, _ := newTestAPI(t, o)
	body := `{"plan": "overcloud", "nodes": ["compute-0", "compute-3"], "timeout_mins": 90, "queue": "q"}`
	rec := httptest.NewRecorder()
	a.NodeRemove(rec, httptest.NewRequest(http.MethodPost, "/v1/nodes/remove", strings.NewReader(body)))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected status 202, got %d", rec.Code)
	}
	if o.plan != "overcloud" || len(o.nodes) != 2 || o.timeoutMins != 90 {
		t.Errorf("unexpected orchestrator call: %+v", o)
	}
}

func TestNodeRemoveAppliesDefaultTimeout(t *testing.T) {
	o := &mockOrchestrator{}
	a, _ := newTestAPI(t, o)
	body := `{"plan": "overcloud", "nodes": ["compute-0"], "queue": "q"}`
	rec := httptest.NewRecorder()
	a.NodeRemove(rec, httptest.NewRequest(http.MethodPost, "/v1/nodes/remove", strings.NewReader(body)))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected status 202, got %d", rec.Code)
	}
	if o.timeoutMins != defaultUpdateTimeoutMins {
		t.Errorf("expected default timeout of %d minutes, got %d", defaultUpdateTimeoutMins, o.timeoutMins)
	}
}

func TestNodeRemoveRejectsEmptyNodes(t *testing.T) {
	o := &mockOrchestrator{}
	a, _ := newTestAPI(t, o)
	body := `{"plan": "overcloud", "nodes": [], "queue": "q"}`
	rec := httptest.NewRecorder()
	a.NodeRemove(rec, httptest.NewRequest(http.MethodPost, "/v1/nodes/remove", strings.NewReader(body)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
	if o.calls != 0 {
		t.Errorf("expected no orchestrator call, got %d", o.calls)
	}
}

func TestRunsListing(t *testing.T) {
	a, _ := newTestAPI(t, &mockOrchestrator{})
	body := `{"stack": "overcloud", "queue": "q"}`
	rec := httptest.NewRecorder()
	a.StackDelete(rec, httptest.NewRequest(http.MethodPost, "/v1/stacks/delete", strings.NewReader(body)))
	var response RunAcceptedResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	rec = httptest.NewRecorder()
	a.Runs(rec, httptest.NewRequest(http.MethodGet, "/v1/runs", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var all []runs.Run
	if err := json.NewDecoder(rec.Body).Decode(&all); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(all) != 1 || all[0].ID != response.Execution.ID {
		t.Errorf("unexpected runs %+v", all)
	}

	rec = httptest.NewRecorder()
	a.Runs(rec, httptest.NewRequest(http.MethodGet, "/v1/runs?id="+response.Execution.ID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var single runs.Run
	if err := json.NewDecoder(rec.Body).Decode(&single); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if single.ID != response.Execution.ID {
		t.Errorf("expected run %s, got %s", response.Execution.ID, single.ID)
	}
}

func TestRunsUnknownID(t *testing.T) {
	a, _ := newTestAPI(t, &mockOrchestrator{})
	rec := httptest.NewRecorder()
	a.Runs(rec, httptest.NewRequest(http.MethodGet, "/v1/runs?id=unknown", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}
}
