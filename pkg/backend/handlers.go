package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	dashboard "github.com/goliatone/go-flowdash/components/dashboard"
	"github.com/goliatone/go-flowdash/pkg/n8n"
	"github.com/goliatone/go-flowdash/pkg/store"
)

func newExecutionID() string {
	return uuid.NewString()
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Business Automation API",
		"version": Version,
		"status":  "running",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.cfg.Store.Ping(r.Context()); err != nil {
		writeDetail(w, http.StatusServiceUnavailable, "database unavailable: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "business-automation-api",
	})
}

func (s *Server) handleWorkflows(w http.ResponseWriter, r *http.Request) {
	query := dashboard.WorkflowQuery{
		Category: r.URL.Query().Get("category"),
		Status:   r.URL.Query().Get("status"),
	}
	list, err := s.cfg.Store.Workflows(r.Context(), query)
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "Error listing workflows", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.cfg.Store.Stats(r.Context())
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "Error computing stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	workflow, ok := s.lookup(w, r)
	if !ok {
		return
	}
	start := s.cfg.Now()
	raw, err := s.cfg.Engine.Execute(ctx, engineID(workflow))
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "Error executing workflow", err)
		return
	}
	end := s.cfg.Now()
	duration := float64(end.Sub(start).Milliseconds())
	exec := dashboard.Execution{
		ID:             s.cfg.NewID(),
		WorkflowID:     workflow.ID,
		WorkflowName:   workflow.Name,
		N8NExecutionID: n8n.ExecutionIDFrom(raw),
		Status:         dashboard.ExecutionSuccess,
		StartTime:      start,
		EndTime:        &end,
		Duration:       &duration,
		TriggeredBy:    "Manual",
	}
	if err := s.cfg.Store.RecordExecution(ctx, exec); err != nil {
		s.fail(w, http.StatusInternalServerError, "Error recording execution", err)
		return
	}
	s.publish(r, dashboard.FlowEvent{Resource: dashboard.ResourceExecutions, WorkflowID: workflow.ID, Reason: "execute"})
	writeJSON(w, http.StatusOK, dashboard.ActionResult{
		Success:     true,
		Message:     fmt.Sprintf("Workflow %s executed", workflow.ID),
		ExecutionID: exec.ID,
		Result:      raw,
	})
}

func (s *Server) handleActivate(w http.ResponseWriter, r *http.Request) {
	s.setStatus(w, r, dashboard.WorkflowActive)
}

func (s *Server) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	s.setStatus(w, r, dashboard.WorkflowInactive)
}

func (s *Server) setStatus(w http.ResponseWriter, r *http.Request, status dashboard.WorkflowStatus) {
	ctx := r.Context()
	workflow, ok := s.lookup(w, r)
	if !ok {
		return
	}
	call, verb := s.cfg.Engine.Activate, "activated"
	if status != dashboard.WorkflowActive {
		call, verb = s.cfg.Engine.Deactivate, "deactivated"
	}
	raw, err := call(ctx, engineID(workflow))
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "Error updating workflow", err)
		return
	}
	if err := s.cfg.Store.SetWorkflowStatus(ctx, workflow.ID, status); err != nil {
		s.fail(w, http.StatusInternalServerError, "Error updating workflow", err)
		return
	}
	s.publish(r, dashboard.FlowEvent{Resource: dashboard.ResourceWorkflows, WorkflowID: workflow.ID, Reason: verb})
	writeJSON(w, http.StatusOK, dashboard.ActionResult{
		Success: true,
		Message: fmt.Sprintf("Workflow %s %s", workflow.ID, verb),
		Result:  raw,
	})
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	n, err := s.Sync(r.Context())
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "Error syncing", err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard.ActionResult{
		Success: true,
		Message: fmt.Sprintf("Synced %d workflows", n),
	})
}

func (s *Server) handleExecutions(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r, dashboard.DefaultExecutionLimit)
	if !ok {
		return
	}
	list, err := s.cfg.Store.Executions(r.Context(), dashboard.ExecutionQuery{
		WorkflowID: r.URL.Query().Get("workflow_id"),
		Limit:      limit,
	})
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "Error listing executions", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r, dashboard.DefaultRecentLimit)
	if !ok {
		return
	}
	list, err := s.cfg.Store.Executions(r.Context(), dashboard.ExecutionQuery{Limit: limit})
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "Error listing executions", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (dashboard.Workflow, bool) {
	id := chi.URLParam(r, "id")
	workflow, err := s.cfg.Store.Workflow(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeDetail(w, http.StatusNotFound, fmt.Sprintf("Workflow %s not found", id))
		return dashboard.Workflow{}, false
	}
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "Error loading workflow", err)
		return dashboard.Workflow{}, false
	}
	return workflow, true
}

func (s *Server) publish(r *http.Request, event dashboard.FlowEvent) {
	event.At = s.cfg.Now()
	if err := s.cfg.Events.ResourceUpdated(r.Context(), event); err != nil {
		s.cfg.Logger.Warn("publish event", slog.Any("error", err))
	}
}

func (s *Server) fail(w http.ResponseWriter, status int, prefix string, err error) {
	s.cfg.Logger.Error(prefix, slog.Any("error", err))
	writeDetail(w, status, prefix+": "+err.Error())
}

// engineID is the id n8n knows the workflow by.
func engineID(w dashboard.Workflow) string {
	if w.N8NID != "" {
		return w.N8NID
	}
	return w.ID
}

func parseLimit(w http.ResponseWriter, r *http.Request, fallback int) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		writeDetail(w, http.StatusUnprocessableEntity, "limit must be a positive integer")
		return 0, false
	}
	return n, true
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

