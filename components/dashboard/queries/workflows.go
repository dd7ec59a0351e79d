package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-flowdash/components/dashboard"
)

// WorkflowListInput carries the list view controls.
type WorkflowListInput struct {
	Filter dashboard.WorkflowFilter
	Sort   dashboard.SortKey
}

type workflowLister interface {
	Workflows(ctx context.Context, filter dashboard.WorkflowFilter, sort dashboard.SortKey) ([]dashboard.Workflow, error)
}

// WorkflowListQuery returns the filtered and sorted workflow list.
type WorkflowListQuery struct {
	service workflowLister
}

// NewWorkflowListQuery builds the query.
func NewWorkflowListQuery(service workflowLister) *WorkflowListQuery {
	return &WorkflowListQuery{service: service}
}

var _ gocommand.Querier[WorkflowListInput, []dashboard.Workflow] = (*WorkflowListQuery)(nil)

// Query resolves the workflow list.
func (q *WorkflowListQuery) Query(ctx context.Context, input WorkflowListInput) ([]dashboard.Workflow, error) {
	return q.service.Workflows(ctx, input.Filter, input.Sort)
}
