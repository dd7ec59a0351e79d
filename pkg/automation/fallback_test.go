package automation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dashboard "github.com/goliatone/go-flowdash/components/dashboard"
)

type failingClient struct {
	err   error
	calls int
}

func (c *failingClient) Workflows(context.Context, dashboard.WorkflowQuery) ([]dashboard.Workflow, error) {
	c.calls++
	return nil, c.err
}

func (c *failingClient) Stats(context.Context) (dashboard.DashboardStats, error) {
	c.calls++
	return dashboard.DashboardStats{}, c.err
}

func (c *failingClient) Executions(context.Context, dashboard.ExecutionQuery) ([]dashboard.Execution, error) {
	c.calls++
	return nil, c.err
}

func (c *failingClient) RecentExecutions(context.Context, int) ([]dashboard.Execution, error) {
	c.calls++
	return nil, c.err
}

func (c *failingClient) Execute(context.Context, string) (dashboard.ActionResult, error) {
	c.calls++
	return dashboard.ActionResult{}, c.err
}

func (c *failingClient) Activate(context.Context, string) (dashboard.ActionResult, error) {
	c.calls++
	return dashboard.ActionResult{}, c.err
}

func (c *failingClient) Deactivate(context.Context, string) (dashboard.ActionResult, error) {
	c.calls++
	return dashboard.ActionResult{}, c.err
}

func (c *failingClient) Sync(context.Context) (dashboard.ActionResult, error) {
	c.calls++
	return dashboard.ActionResult{}, c.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFallbackServesMockOnNetworkError(t *testing.T) {
	primary := &failingClient{err: &NetworkError{Method: "GET", Path: "/api/workflows/stats", Err: errors.New("connection refused")}}
	client := NewFallbackClient(primary, nil, quietLogger())
	ctx := context.Background()

	stats, err := client.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4896, stats.TotalExecutions)
	assert.Equal(t, 15660.0, stats.TotalROI)

	workflows, err := client.Workflows(ctx, dashboard.WorkflowQuery{})
	require.NoError(t, err)
	assert.Len(t, workflows, 5)

	execs, err := client.Executions(ctx, dashboard.ExecutionQuery{})
	require.NoError(t, err)
	assert.NotNil(t, execs)
	assert.Empty(t, execs)

	recent, err := client.RecentExecutions(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, recent)

	result, err := client.Execute(ctx, "wf-001")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, OfflineMessage, result.Message)
}

func TestFallbackPropagatesStatusErrors(t *testing.T) {
	primary := &failingClient{err: &StatusError{Method: "GET", Path: "/api/workflows/", StatusCode: 500, Body: "boom"}}
	client := NewFallbackClient(primary, nil, quietLogger())

	_, err := client.Workflows(context.Background(), dashboard.WorkflowQuery{})
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 500, statusErr.StatusCode)

	_, err = client.Sync(context.Background())
	assert.Error(t, err)
}

func TestIsNetworkError(t *testing.T) {
	assert.False(t, IsNetworkError(nil))
	assert.False(t, IsNetworkError(errors.New("decode failed")))
	assert.True(t, IsNetworkError(&NetworkError{Err: errors.New("dial")}))
	assert.True(t, IsNetworkError(&net.OpError{Op: "dial", Err: errors.New("refused")}))
	assert.False(t, IsNetworkError(&StatusError{StatusCode: 502}))
}
