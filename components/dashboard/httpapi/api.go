package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/goliatone/go-flowdash/components/dashboard"
	"github.com/goliatone/go-flowdash/components/dashboard/queries"
)

// Handlers exposes net/http endpoints backed by an Executor.
type Handlers struct {
	API Executor
}

// ParseWorkflowListInput reads search/status/category/sort query parameters.
func ParseWorkflowListInput(values map[string][]string) queries.WorkflowListInput {
	get := func(key string) string {
		if v := values[key]; len(v) > 0 {
			return strings.TrimSpace(v[0])
		}
		return ""
	}
	return queries.WorkflowListInput{
		Filter: dashboard.WorkflowFilter{
			Search:   get("search"),
			Status:   get("status"),
			Category: get("category"),
		},
		Sort: dashboard.ParseSortKey(get("sort")),
	}
}

// ParseLimit reads a positive integer limit, returning fallback when absent or invalid.
func ParseLimit(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// StatusFor maps dashboard errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, dashboard.ErrWorkflowIDRequired), errors.Is(err, dashboard.ErrUnknownResource):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotConfigured), errors.Is(err, dashboard.ErrSourceNotConfigured):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

func (h *Handlers) HandleOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.API.Overview(r.Context())
	respond(w, overview, err)
}

func (h *Handlers) HandleWorkflows(w http.ResponseWriter, r *http.Request) {
	list, err := h.API.Workflows(r.Context(), ParseWorkflowListInput(r.URL.Query()))
	respond(w, list, err)
}

func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.API.Stats(r.Context())
	respond(w, stats, err)
}

func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	overview, err := h.API.Overview(r.Context())
	respond(w, overview.Status, err)
}

func (h *Handlers) HandleExecutions(w http.ResponseWriter, r *http.Request) {
	query := dashboard.ExecutionQuery{
		WorkflowID: r.URL.Query().Get("workflow_id"),
		Limit:      ParseLimit(r.URL.Query().Get("limit"), dashboard.DefaultExecutionLimit),
	}
	list, err := h.API.Executions(r.Context(), query)
	respond(w, list, err)
}

func (h *Handlers) HandleRecent(w http.ResponseWriter, r *http.Request) {
	limit := ParseLimit(r.URL.Query().Get("limit"), dashboard.DefaultRecentLimit)
	list, err := h.API.Recent(r.Context(), limit)
	respond(w, list, err)
}

// HandleWorkflowAction runs execute, activate or deactivate for workflowID.
func (h *Handlers) HandleWorkflowAction(w http.ResponseWriter, r *http.Request, action, workflowID string) {
	var (
		result dashboard.ActionResult
		err    error
	)
	switch action {
	case "execute":
		result, err = h.API.Execute(r.Context(), workflowID)
	case "activate":
		result, err = h.API.Activate(r.Context(), workflowID)
	case "deactivate":
		result, err = h.API.Deactivate(r.Context(), workflowID)
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown action " + action})
		return
	}
	respond(w, result, err)
}

func (h *Handlers) HandleSync(w http.ResponseWriter, r *http.Request) {
	result, err := h.API.Sync(r.Context())
	respond(w, result, err)
}

func (h *Handlers) HandleRevalidate(w http.ResponseWriter, r *http.Request, resource string) {
	if err := h.API.Revalidate(r.Context(), resource); err != nil {
		respond(w, nil, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "revalidated"})
}

func respond(w http.ResponseWriter, payload any, err error) {
	if err != nil {
		writeJSON(w, StatusFor(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
