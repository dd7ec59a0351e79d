package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goliatone/go-flowdash/components/dashboard"
	"github.com/goliatone/go-flowdash/components/dashboard/commands"
	"github.com/goliatone/go-flowdash/components/dashboard/queries"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouterServesEndpointsUnderBasePath(t *testing.T) {
	stats := &stubQuerier[queries.StatsInput, dashboard.DashboardStats]{
		out: dashboard.DashboardStats{TotalWorkflows: 5},
	}
	deactivate := &stubCommander[commands.WorkflowActionInput]{
		fill: func(msg commands.WorkflowActionInput) {
			*msg.Result = dashboard.ActionResult{Success: true, Message: "paused"}
		},
	}
	revalidate := &stubCommander[commands.RevalidateInput]{}
	handler := NewRouter(&Handlers{API: &CommandExecutor{
		StatsQuerier:        stats,
		DeactivateCommander: deactivate,
		RevalidateCommander: revalidate,
	}}, "/admin/automation")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/automation/api/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var got dashboard.DashboardStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 5, got.TotalWorkflows)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/automation/workflows/wf-003/deactivate", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "wf-003", deactivate.last.WorkflowID)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/automation/revalidate/recent", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "recent", revalidate.last.Resource)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouterRejectsWrongMethod(t *testing.T) {
	handler := NewRouter(&Handlers{API: &CommandExecutor{}}, "/")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sync", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/workflows/wf-001/restart", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
