// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

// Package runs records orchestration runs in the database so their
// outcome can be queried after the fact, independently of the
// notification queue.
package runs

import (
	"log/slog"
	"time"

	"github.com/cobaltcore-dev/stackops/internal/db"
)

// Record of a single orchestration run.
type Run struct {
	// Execution id correlating the run with its notifications.
	ID string `db:"id,primarykey"`
	// The kind of orchestration run, such as "stack_delete".
	Type string `db:"type"`
	// The stack or plan the run operates on.
	Target string `db:"target"`
	// The notification queue outcomes are delivered to.
	Queue string `db:"queue"`
	// One of RUNNING, SUCCESS, FAILED.
	Status string `db:"status"`
	// The last error observed, if any.
	Message string `db:"message"`
	// When the run was accepted and when it finished.
	StartedAt  time.Time `db:"started_at"`
	FinishedAt time.Time `db:"finished_at"`
}

// Table under which the runs are stored.
func (Run) TableName() string { return "lifecycle_runs" }

// Store persists orchestration runs.
type Store struct {
	DB db.DB
}

// Create a new run store and ensure its table exists.
func NewStore(database db.DB) Store {
	s := Store{DB: database}
	if err := s.DB.CreateTable(s.DB.AddTable(Run{})); err != nil {
		panic(err)
	}
	return s
}

// Record a newly accepted run.
func (s Store) Create(run Run) error {
	slog.Info("recording run", "id", run.ID, "type", run.Type, "target", run.Target)
	return s.DB.Insert(&run)
}

// Record the outcome of a finished run.
func (s Store) Finish(id, status, message string) error {
	run, err := s.Get(id)
	if err != nil {
		return err
	}
	run.Status = status
	run.Message = message
	run.FinishedAt = time.Now()
	_, err = s.DB.Update(run)
	return err
}

// Look up a run by its execution id.
func (s Store) Get(id string) (*Run, error) {
	var run Run
	query := "SELECT * FROM " + Run{}.TableName() + " WHERE id = :id"
	if err := s.DB.SelectOne(&run, query, map[string]any{"id": id}); err != nil {
		return nil, err
	}
	return &run, nil
}

// List all recorded runs, newest first.
func (s Store) List() ([]Run, error) {
	var runs []Run
	query := "SELECT * FROM " + Run{}.TableName() + " ORDER BY started_at DESC"
	if _, err := s.DB.Select(&runs, query); err != nil {
		return nil, err
	}
	return runs, nil
}
