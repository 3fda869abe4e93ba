// Package scheduler runs schedule-triggered workflows on their cron
// expressions.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/atelierhq/atelier/internal/store"
	"github.com/atelierhq/atelier/internal/workflow"
)

// Scheduler keeps one cron entry per enabled schedule-triggered workflow.
// Refresh rebuilds the entries from the store; the API layer calls it after
// every workflow create, replace, or delete.
type Scheduler struct {
	store  *store.Store
	engine *workflow.Engine
	cron   *cron.Cron

	mu      sync.Mutex
	entries map[string]cron.EntryID
}

// New creates a Scheduler. Call Start before Refresh.
func New(st *store.Store, engine *workflow.Engine) *Scheduler {
	return &Scheduler{
		store:   st,
		engine:  engine,
		cron:    cron.New(),
		entries: make(map[string]cron.EntryID),
	}
}

// Start begins firing cron entries.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the cron runner and waits for in-flight runs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// Refresh rebuilds the cron entries from the enabled schedule-triggered
// workflows in the store. Workflows with invalid cron expressions are
// skipped and logged.
func (s *Scheduler) Refresh(ctx context.Context) error {
	workflows, err := s.store.Workflows.ListScheduled(ctx)
	if err != nil {
		return fmt.Errorf("list scheduled workflows: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, entry := range s.entries {
		s.cron.Remove(entry)
		delete(s.entries, id)
	}

	for _, wf := range workflows {
		id := wf.ID
		entry, err := s.cron.AddFunc(wf.Trigger.Cron, func() { s.fire(id) })
		if err != nil {
			slog.Warn("skipping workflow with invalid cron expression",
				"workflow", id, "cron", wf.Trigger.Cron, "error", err)
			continue
		}
		s.entries[id] = entry
	}
	return nil
}

// Entries reports how many workflows are currently scheduled.
func (s *Scheduler) Entries() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Scheduler) fire(workflowID string) {
	ctx := context.Background()

	wf, err := s.store.Workflows.Get(ctx, workflowID)
	if err != nil {
		slog.Error("load scheduled workflow", "workflow", workflowID, "error", err)
		return
	}
	if !wf.Enabled {
		return
	}

	exec, err := s.engine.Execute(ctx, wf)
	if err != nil {
		slog.Error("run scheduled workflow", "workflow", workflowID, "error", err)
		return
	}
	slog.Info("scheduled workflow ran", "workflow", workflowID, "execution", exec.ID, "status", exec.Status)
}
