package automation

import (
	"context"

	dashboard "github.com/goliatone/go-flowdash/components/dashboard"
)

// WorkflowReader lists workflows and aggregate stats.
type WorkflowReader interface {
	Workflows(ctx context.Context, query dashboard.WorkflowQuery) ([]dashboard.Workflow, error)
	Stats(ctx context.Context) (dashboard.DashboardStats, error)
}

// ExecutionReader lists workflow runs.
type ExecutionReader interface {
	Executions(ctx context.Context, query dashboard.ExecutionQuery) ([]dashboard.Execution, error)
	RecentExecutions(ctx context.Context, limit int) ([]dashboard.Execution, error)
}

// WorkflowActions mutates workflows on the backend.
type WorkflowActions interface {
	Execute(ctx context.Context, workflowID string) (dashboard.ActionResult, error)
	Activate(ctx context.Context, workflowID string) (dashboard.ActionResult, error)
	Deactivate(ctx context.Context, workflowID string) (dashboard.ActionResult, error)
	Sync(ctx context.Context) (dashboard.ActionResult, error)
}

// Client is a convenience union for backends that implement every call.
type Client interface {
	WorkflowReader
	ExecutionReader
	WorkflowActions
}

var (
	_ dashboard.Source = (Client)(nil)
	_ Client           = (*HTTPClient)(nil)
	_ Client           = (*MockClient)(nil)
	_ Client           = (*FallbackClient)(nil)
)
