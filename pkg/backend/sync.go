package backend

import (
	"context"
	"errors"
	"fmt"

	dashboard "github.com/goliatone/go-flowdash/components/dashboard"
	"github.com/goliatone/go-flowdash/pkg/n8n"
	"github.com/goliatone/go-flowdash/pkg/store"
)

// Sync pulls workflows from n8n into the store and returns how many were
// upserted. Workflows already bridged keep their id, counters and category.
func (s *Server) Sync(ctx context.Context) (int, error) {
	remote, err := s.cfg.Engine.Workflows(ctx)
	if err != nil {
		return 0, fmt.Errorf("backend: fetch n8n workflows: %w", err)
	}
	for _, rw := range remote {
		local, err := s.cfg.Store.WorkflowByN8NID(ctx, rw.ID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			local = dashboard.Workflow{ID: "wf-n8n-" + rw.ID, N8NID: rw.ID}
		case err != nil:
			return 0, err
		}
		local.Name = rw.Name
		local.Status = syncedStatus(local.Status, rw)
		local.UpdatedAt = s.cfg.Now()
		if err := s.cfg.Store.UpsertWorkflow(ctx, local); err != nil {
			return 0, err
		}
	}
	if err := s.cfg.Events.ResourceUpdated(ctx, dashboard.FlowEvent{
		Resource: dashboard.ResourceWorkflows,
		Reason:   "sync",
		At:       s.cfg.Now(),
	}); err != nil {
		return len(remote), err
	}
	return len(remote), nil
}

// syncedStatus follows n8n's active flag but keeps an error status on
// workflows n8n still reports as active.
func syncedStatus(current dashboard.WorkflowStatus, rw n8n.Workflow) dashboard.WorkflowStatus {
	if !rw.Active {
		return dashboard.WorkflowInactive
	}
	if current == dashboard.WorkflowError {
		return current
	}
	return dashboard.WorkflowActive
}
