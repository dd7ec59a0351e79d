package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dashboard "github.com/goliatone/go-flowdash/components/dashboard"
	"github.com/goliatone/go-flowdash/pkg/n8n"
	"github.com/goliatone/go-flowdash/pkg/store"
)

var backendNow = time.Date(2024, 1, 30, 16, 30, 0, 0, time.UTC)

type stubEngine struct {
	mu        sync.Mutex
	workflows []n8n.Workflow
	err       error
	calls     []string
}

func (e *stubEngine) record(call string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, call)
	return e.err
}

func (e *stubEngine) Workflows(context.Context) ([]n8n.Workflow, error) {
	if err := e.record("workflows"); err != nil {
		return nil, err
	}
	return e.workflows, nil
}

func (e *stubEngine) Execute(_ context.Context, id string) (json.RawMessage, error) {
	if err := e.record("execute:" + id); err != nil {
		return nil, err
	}
	return json.RawMessage(`{"data":{"id":"n8n-77"}}`), nil
}

func (e *stubEngine) Activate(_ context.Context, id string) (json.RawMessage, error) {
	if err := e.record("activate:" + id); err != nil {
		return nil, err
	}
	return json.RawMessage(`{"active":true}`), nil
}

func (e *stubEngine) Deactivate(_ context.Context, id string) (json.RawMessage, error) {
	if err := e.record("deactivate:" + id); err != nil {
		return nil, err
	}
	return json.RawMessage(`{"active":false}`), nil
}

func newTestServer(t *testing.T, engine *stubEngine) (*Server, *store.Store) {
	t.Helper()
	ctx := context.Background()
	st, err := store.Open(ctx, filepath.Join(t.TempDir(), "backend.db"),
		store.WithClock(func() time.Time { return backendNow }))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	for _, w := range store.SampleWorkflows() {
		require.NoError(t, st.UpsertWorkflow(ctx, w))
	}
	srv, err := New(Config{
		Store:           st,
		Engine:          engine,
		FrontendOrigins: []string{"http://localhost:3000"},
		Now:             func() time.Time { return backendNow },
		NewID:           sequentialIDs(),
	})
	require.NoError(t, err)
	return srv, st
}

func sequentialIDs() func() string {
	var n atomic.Int64
	return func() string {
		return fmt.Sprintf("exec-test-%d", n.Add(1))
	}
}

func do(t *testing.T, srv *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestNewRequiresDependencies(t *testing.T) {
	_, err := New(Config{Engine: &stubEngine{}})
	assert.Error(t, err)

	srv, _ := newTestServer(t, &stubEngine{})
	_, err = New(Config{Store: srv.cfg.Store})
	assert.Error(t, err)
}

func TestInfoAndHealth(t *testing.T) {
	srv, _ := newTestServer(t, &stubEngine{})

	rec := do(t, srv, http.MethodGet, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	info := decode[map[string]string](t, rec)
	assert.Equal(t, Version, info["version"])
	assert.Equal(t, "running", info["status"])

	rec = do(t, srv, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode[map[string]string](t, rec)["status"])
}

func TestListWorkflowsWithFilters(t *testing.T) {
	srv, _ := newTestServer(t, &stubEngine{})

	rec := do(t, srv, http.MethodGet, "/api/workflows/")
	require.Equal(t, http.StatusOK, rec.Code)
	all := decode[[]dashboard.Workflow](t, rec)
	require.Len(t, all, 3)
	assert.Equal(t, "wf-001", all[0].ID)

	rec = do(t, srv, http.MethodGet, "/api/workflows/?category=sales")
	filtered := decode[[]dashboard.Workflow](t, rec)
	require.Len(t, filtered, 1)
	assert.Equal(t, "wf-002", filtered[0].ID)

	rec = do(t, srv, http.MethodGet, "/api/workflows/?status=error")
	filtered = decode[[]dashboard.Workflow](t, rec)
	require.Len(t, filtered, 1)
	assert.Equal(t, "wf-003", filtered[0].ID)
}

func TestStatsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, &stubEngine{})

	rec := do(t, srv, http.MethodGet, "/api/workflows/stats")
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[dashboard.DashboardStats](t, rec)
	assert.Equal(t, 3, stats.TotalWorkflows)
	assert.Equal(t, 2, stats.ActiveWorkflows)
	assert.Equal(t, 0, stats.TotalExecutions)
	assert.InDelta(t, 156.2+89.3+67.8, stats.TotalTimeSaved, 1e-6)
}

func TestExecuteRecordsAndBroadcasts(t *testing.T) {
	engine := &stubEngine{}
	srv, st := newTestServer(t, engine)
	events, cancel := srv.Events().Subscribe()
	defer cancel()

	rec := do(t, srv, http.MethodPost, "/api/workflows/wf-002/execute")
	require.Equal(t, http.StatusOK, rec.Code)
	result := decode[dashboard.ActionResult](t, rec)
	assert.True(t, result.Success)
	assert.Equal(t, "exec-test-1", result.ExecutionID)
	assert.Equal(t, []string{"execute:2"}, engine.calls)

	execs, err := st.Executions(context.Background(), dashboard.ExecutionQuery{WorkflowID: "wf-002"})
	require.NoError(t, err)
	require.Len(t, execs, 1)
	assert.Equal(t, "n8n-77", execs[0].N8NExecutionID)
	assert.Equal(t, "Manual", execs[0].TriggeredBy)
	assert.Equal(t, dashboard.ExecutionSuccess, execs[0].Status)

	w, err := st.Workflow(context.Background(), "wf-002")
	require.NoError(t, err)
	assert.Equal(t, 893, w.TotalExecutions)

	select {
	case event := <-events:
		assert.Equal(t, dashboard.ResourceExecutions, event.Resource)
		assert.Equal(t, "wf-002", event.WorkflowID)
	default:
		t.Fatal("expected execute event")
	}
}

func TestExecuteUnknownWorkflow(t *testing.T) {
	engine := &stubEngine{}
	srv, _ := newTestServer(t, engine)

	rec := do(t, srv, http.MethodPost, "/api/workflows/wf-404/execute")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, decode[map[string]string](t, rec)["detail"], "wf-404")
	assert.Empty(t, engine.calls)
}

func TestExecuteEngineFailure(t *testing.T) {
	srv, _ := newTestServer(t, &stubEngine{err: errors.New("n8n down")})

	rec := do(t, srv, http.MethodPost, "/api/workflows/wf-001/execute")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, decode[map[string]string](t, rec)["detail"], "n8n down")
}

func TestActivateAndDeactivate(t *testing.T) {
	engine := &stubEngine{}
	srv, st := newTestServer(t, engine)
	ctx := context.Background()

	rec := do(t, srv, http.MethodPatch, "/api/workflows/wf-003/activate")
	require.Equal(t, http.StatusOK, rec.Code)
	w, err := st.Workflow(ctx, "wf-003")
	require.NoError(t, err)
	assert.Equal(t, dashboard.WorkflowActive, w.Status)

	rec = do(t, srv, http.MethodPatch, "/api/workflows/wf-001/deactivate")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decode[dashboard.ActionResult](t, rec).Message, "deactivated")
	w, err = st.Workflow(ctx, "wf-001")
	require.NoError(t, err)
	assert.Equal(t, dashboard.WorkflowInactive, w.Status)

	assert.Equal(t, []string{"activate:3", "deactivate:1"}, engine.calls)
}

func TestSyncUpsertsWorkflows(t *testing.T) {
	engine := &stubEngine{workflows: []n8n.Workflow{
		{ID: "1", Name: "Order Processing v2", Active: true},
		{ID: "3", Name: "Social Sync", Active: true},
		{ID: "42", Name: "Invoice Reminder", Active: false},
	}}
	srv, st := newTestServer(t, engine)
	ctx := context.Background()

	rec := do(t, srv, http.MethodGet, "/api/workflows/sync")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Synced 3 workflows", decode[dashboard.ActionResult](t, rec).Message)

	w, err := st.Workflow(ctx, "wf-001")
	require.NoError(t, err)
	assert.Equal(t, "Order Processing v2", w.Name)
	assert.Equal(t, 1247, w.TotalExecutions)

	w, err = st.Workflow(ctx, "wf-003")
	require.NoError(t, err)
	assert.Equal(t, dashboard.WorkflowError, w.Status)

	created, err := st.WorkflowByN8NID(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, "wf-n8n-42", created.ID)
	assert.Equal(t, dashboard.WorkflowInactive, created.Status)
}

func TestSyncEngineFailure(t *testing.T) {
	srv, _ := newTestServer(t, &stubEngine{err: errors.New("boom")})

	rec := do(t, srv, http.MethodGet, "/api/workflows/sync")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestExecutionsEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, &stubEngine{})
	for range 3 {
		require.Equal(t, http.StatusOK, do(t, srv, http.MethodPost, "/api/workflows/wf-001/execute").Code)
	}
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodPost, "/api/workflows/wf-002/execute").Code)

	rec := do(t, srv, http.MethodGet, "/api/executions/?workflow_id=wf-002")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]dashboard.Execution](t, rec), 1)

	rec = do(t, srv, http.MethodGet, "/api/executions/recent?limit=1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]dashboard.Execution](t, rec), 1)

	rec = do(t, srv, http.MethodGet, "/api/executions/?limit=abc")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t, &stubEngine{})

	req := httptest.NewRequest(http.MethodOptions, "/api/workflows/wf-001/activate", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.True(t, strings.Contains(rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPatch))
}

func TestStartSchedulerWithoutSchedule(t *testing.T) {
	srv, _ := newTestServer(t, &stubEngine{})
	assert.NoError(t, srv.StartScheduler(context.Background()))

	srv.cfg.SyncSchedule = "not a schedule"
	assert.Error(t, srv.StartScheduler(context.Background()))
}
