package store

import (
	"context"
	"math/rand/v2"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dashboard "github.com/goliatone/go-flowdash/components/dashboard"
)

var storeNow = time.Date(2024, 1, 30, 16, 30, 0, 0, time.UTC)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "flowdash.db"),
		WithClock(func() time.Time { return storeNow }))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seededStore(t *testing.T) *Store {
	t.Helper()
	s := openTestStore(t)
	seeded, err := s.Seed(context.Background(), rand.New(rand.NewPCG(7, 11)))
	require.NoError(t, err)
	require.True(t, seeded)
	return s
}

func TestSeedIsIdempotent(t *testing.T) {
	s := seededStore(t)
	seeded, err := s.Seed(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, seeded)

	execs, err := s.Executions(context.Background(), dashboard.ExecutionQuery{Limit: 100})
	require.NoError(t, err)
	assert.Len(t, execs, SeedExecutions)
}

func TestSeedExecutionShape(t *testing.T) {
	s := seededStore(t)
	execs, err := s.Executions(context.Background(), dashboard.ExecutionQuery{Limit: 100})
	require.NoError(t, err)

	for i, e := range execs {
		if i > 0 {
			assert.False(t, e.StartTime.After(execs[i-1].StartTime), "newest first")
		}
		require.NotNil(t, e.Duration)
		switch e.Status {
		case dashboard.ExecutionSuccess:
			assert.GreaterOrEqual(t, *e.Duration, 1000.0)
			assert.LessOrEqual(t, *e.Duration, 5000.0)
			assert.Nil(t, e.ErrorMessage)
		case dashboard.ExecutionError:
			assert.GreaterOrEqual(t, *e.Duration, 5000.0)
			assert.Equal(t, "API rate limit exceeded", e.FailureMessage())
		default:
			t.Fatalf("unexpected status %s", e.Status)
		}
		assert.Contains(t, seedTriggers, e.TriggeredBy)
		assert.False(t, e.StartTime.After(storeNow))
		assert.True(t, e.StartTime.After(storeNow.AddDate(0, 0, -31)))
	}
}

func TestWorkflowsOrderAndFilters(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	all, err := s.Workflows(ctx, dashboard.WorkflowQuery{Status: "all"})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"wf-001", "wf-002", "wf-003"}, []string{all[0].ID, all[1].ID, all[2].ID})
	assert.Equal(t, []string{"Shopify Webhook", "Schedule"}, all[0].Triggers)

	sales, err := s.Workflows(ctx, dashboard.WorkflowQuery{Category: "sales"})
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, "wf-002", sales[0].ID)

	failing, err := s.Workflows(ctx, dashboard.WorkflowQuery{Status: "error"})
	require.NoError(t, err)
	require.Len(t, failing, 1)
	assert.Equal(t, "wf-003", failing[0].ID)
}

func TestStats(t *testing.T) {
	s := seededStore(t)
	stats, err := s.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalWorkflows)
	assert.Equal(t, 2, stats.ActiveWorkflows)
	assert.Equal(t, SeedExecutions, stats.TotalExecutions)
	assert.InDelta(t, 313.3, stats.TotalTimeSaved, 0.001)
	assert.InDelta(t, 313.3*25, stats.TotalROI, 0.01)
	assert.GreaterOrEqual(t, stats.SuccessRate, 0.0)
	assert.LessOrEqual(t, stats.SuccessRate, 100.0)
	assert.LessOrEqual(t, stats.ErrorsToday, stats.ExecutionsToday)
}

func TestStatsEmptyDatabase(t *testing.T) {
	s := openTestStore(t)
	stats, err := s.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, dashboard.DashboardStats{}, stats)
}

func TestRecordExecutionCountsToday(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()
	before, err := s.Stats(ctx)
	require.NoError(t, err)

	msg := "timeout"
	require.NoError(t, s.RecordExecution(ctx, dashboard.Execution{
		ID:           "exec-new",
		WorkflowID:   "wf-002",
		WorkflowName: "Lead Qualification System",
		Status:       dashboard.ExecutionError,
		StartTime:    storeNow.Add(-time.Minute),
		ErrorMessage: &msg,
	}))

	after, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, before.TotalExecutions+1, after.TotalExecutions)
	assert.Equal(t, before.ExecutionsToday+1, after.ExecutionsToday)
	assert.Equal(t, before.ErrorsToday+1, after.ErrorsToday)

	w, err := s.Workflow(ctx, "wf-002")
	require.NoError(t, err)
	assert.Equal(t, 893, w.TotalExecutions)
	require.NotNil(t, w.LastExecution)
	assert.True(t, w.LastExecution.Equal(storeNow.Add(-time.Minute)))

	scoped, err := s.Executions(ctx, dashboard.ExecutionQuery{WorkflowID: "wf-002", Limit: 1})
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, "exec-new", scoped[0].ID)
	assert.Nil(t, scoped[0].Duration)
}

func TestRecordExecutionUnknownWorkflow(t *testing.T) {
	s := openTestStore(t)
	err := s.RecordExecution(context.Background(), dashboard.Execution{
		ID: "x", WorkflowID: "wf-404", WorkflowName: "ghost", Status: dashboard.ExecutionSuccess,
	})
	assert.Error(t, err)
}

func TestSetWorkflowStatus(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetWorkflowStatus(ctx, "wf-003", dashboard.WorkflowActive))
	w, err := s.Workflow(ctx, "wf-003")
	require.NoError(t, err)
	assert.Equal(t, dashboard.WorkflowActive, w.Status)

	err = s.SetWorkflowStatus(ctx, "wf-404", dashboard.WorkflowActive)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpsertWorkflowKeepsCounters(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertWorkflow(ctx, dashboard.Workflow{
		ID: "wf-001", N8NID: "1", Name: "Order Processing v2", Status: dashboard.WorkflowInactive,
	}))
	w, err := s.Workflow(ctx, "wf-001")
	require.NoError(t, err)
	assert.Equal(t, "Order Processing v2", w.Name)
	assert.Equal(t, dashboard.WorkflowInactive, w.Status)
	assert.Equal(t, 1247, w.TotalExecutions)
	assert.Equal(t, "E-commerce", w.Category)

	require.NoError(t, s.UpsertWorkflow(ctx, dashboard.Workflow{ID: "wf-n8n-9", N8NID: "9", Name: "New"}))
	created, err := s.WorkflowByN8NID(ctx, "9")
	require.NoError(t, err)
	assert.Equal(t, "wf-n8n-9", created.ID)
	assert.Equal(t, "General", created.Category)
	assert.Empty(t, created.Triggers)

	_, err = s.WorkflowByN8NID(ctx, "404")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpenInMemory(t *testing.T) {
	s, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Ping(context.Background()))
	list, err := s.Workflows(context.Background(), dashboard.WorkflowQuery{})
	require.NoError(t, err)
	assert.Empty(t, list)
}
