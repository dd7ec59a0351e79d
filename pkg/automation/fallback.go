package automation

import (
	"context"
	"log/slog"

	dashboard "github.com/goliatone/go-flowdash/components/dashboard"
)

// OfflineMessage is returned by actions while the API is unreachable.
const OfflineMessage = "offline"

// FallbackClient serves mock data when the primary client cannot reach the
// API. Errors from a reachable API are returned unchanged.
type FallbackClient struct {
	primary Client
	mock    *MockClient
	logger  *slog.Logger
}

// NewFallbackClient wraps primary. A nil mock uses the embedded fixtures and a
// nil logger uses slog.Default.
func NewFallbackClient(primary Client, mock *MockClient, logger *slog.Logger) *FallbackClient {
	if logger == nil {
		logger = slog.Default()
	}
	if mock == nil {
		data, err := DefaultFixtures()
		if err != nil {
			logger.Error("automation fixtures unavailable", slog.Any("error", err))
		}
		mock = NewMockClient(data)
	}
	return &FallbackClient{primary: primary, mock: mock, logger: logger}
}

func (c *FallbackClient) Workflows(ctx context.Context, query dashboard.WorkflowQuery) ([]dashboard.Workflow, error) {
	out, err := c.primary.Workflows(ctx, query)
	if c.offline("workflows", err) {
		return c.mock.Workflows(ctx, query)
	}
	return out, err
}

func (c *FallbackClient) Stats(ctx context.Context) (dashboard.DashboardStats, error) {
	out, err := c.primary.Stats(ctx)
	if c.offline("stats", err) {
		return c.mock.Stats(ctx)
	}
	return out, err
}

// Executions has no mock payload: offline it yields an empty list.
func (c *FallbackClient) Executions(ctx context.Context, query dashboard.ExecutionQuery) ([]dashboard.Execution, error) {
	out, err := c.primary.Executions(ctx, query)
	if c.offline("executions", err) {
		return []dashboard.Execution{}, nil
	}
	return out, err
}

func (c *FallbackClient) RecentExecutions(ctx context.Context, limit int) ([]dashboard.Execution, error) {
	out, err := c.primary.RecentExecutions(ctx, limit)
	if c.offline("executions/recent", err) {
		return []dashboard.Execution{}, nil
	}
	return out, err
}

func (c *FallbackClient) Execute(ctx context.Context, workflowID string) (dashboard.ActionResult, error) {
	return c.action("execute", workflowID)(c.primary.Execute(ctx, workflowID))
}

func (c *FallbackClient) Activate(ctx context.Context, workflowID string) (dashboard.ActionResult, error) {
	return c.action("activate", workflowID)(c.primary.Activate(ctx, workflowID))
}

func (c *FallbackClient) Deactivate(ctx context.Context, workflowID string) (dashboard.ActionResult, error) {
	return c.action("deactivate", workflowID)(c.primary.Deactivate(ctx, workflowID))
}

func (c *FallbackClient) Sync(ctx context.Context) (dashboard.ActionResult, error) {
	return c.action("sync", "")(c.primary.Sync(ctx))
}

func (c *FallbackClient) action(name, workflowID string) func(dashboard.ActionResult, error) (dashboard.ActionResult, error) {
	return func(result dashboard.ActionResult, err error) (dashboard.ActionResult, error) {
		if c.offline(name, err, slog.String("workflow_id", workflowID)) {
			return dashboard.ActionResult{Success: false, Message: OfflineMessage}, nil
		}
		return result, err
	}
}

// offline logs err and reports whether the mock payload should be used.
func (c *FallbackClient) offline(endpoint string, err error, attrs ...any) bool {
	if err == nil {
		return false
	}
	args := append([]any{slog.String("endpoint", endpoint), slog.Any("error", err)}, attrs...)
	if IsNetworkError(err) {
		c.logger.Warn("automation api unavailable, using mock data", args...)
		return true
	}
	c.logger.Error("automation api request failed", args...)
	return false
}
