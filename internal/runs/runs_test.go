// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package runs_test

import (
	"testing"
	"time"

	"github.com/cobaltcore-dev/stackops/internal/runs"
	testlibDB "github.com/cobaltcore-dev/stackops/testlib/db"
)

func newStore(t *testing.T) runs.Store {
	testDB := testlibDB.NewSqliteTestDB(t)
	t.Cleanup(testDB.Close)
	return runs.NewStore(*testDB.DB)
}

func TestNewStoreCreatesTable(t *testing.T) {
	testDB := testlibDB.NewSqliteTestDB(t)
	t.Cleanup(testDB.Close)
	runs.NewStore(*testDB.DB)
	if !testDB.TableExists(runs.Run{}) {
		t.Fatal("expected runs table to exist")
	}
}

func TestCreateAndGet(t *testing.T) {
	store := newStore(t)
	run := runs.Run{
		ID:        "exec-1",
		Type:      "stack_delete",
		Target:    "overcloud",
		Queue:     "stack-delete-queue",
		Status:    "RUNNING",
		StartedAt: time.Now(),
	}
	if err := store.Create(run); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	got, err := store.Get("exec-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.Target != "overcloud" || got.Status != "RUNNING" {
		t.Errorf("unexpected run %+v", got)
	}
}

func TestFinish(t *testing.T) {
	store := newStore(t)
	run := runs.Run{
		ID:        "exec-1",
		Type:      "node_remove",
		Target:    "overcloud",
		Queue:     "q",
		Status:    "RUNNING",
		StartedAt: time.Now(),
	}
	if err := store.Create(run); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := store.Finish("exec-1", "FAILED", "stack update settled with status UPDATE_FAILED"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	got, err := store.Get("exec-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.Status != "FAILED" {
		t.Errorf("expected status FAILED, got %s", got.Status)
	}
	if got.Message == "" {
		t.Error("expected a failure message")
	}
	if got.FinishedAt.IsZero() {
		t.Error("expected a finish timestamp")
	}
}

func TestListNewestFirst(t *testing.T) {
	store := newStore(t)
	now := time.Now()
	for i, id := range []string{"exec-1", "exec-2"} {
		run := runs.Run{
			ID:        id,
			Type:      "stack_delete",
			Target:    "overcloud",
			Queue:     "q",
			Status:    "SUCCESS",
			StartedAt: now.Add(time.Duration(i) * time.Minute),
		}
		if err := store.Create(run); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	}
	got, err := store.List()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(got))
	}
	if got[0].ID != "exec-2" {
		t.Errorf("expected newest run first, got %s", got[0].ID)
	}
}
