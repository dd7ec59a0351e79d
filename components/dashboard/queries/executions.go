package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-flowdash/components/dashboard"
)

type executionService interface {
	Executions(ctx context.Context, query dashboard.ExecutionQuery) ([]dashboard.Execution, error)
	Recent(ctx context.Context, limit int) ([]dashboard.Execution, error)
}

// ExecutionsQuery lists executions, optionally scoped to a workflow.
type ExecutionsQuery struct {
	service executionService
}

// NewExecutionsQuery builds the query.
func NewExecutionsQuery(service executionService) *ExecutionsQuery {
	return &ExecutionsQuery{service: service}
}

var _ gocommand.Querier[dashboard.ExecutionQuery, []dashboard.Execution] = (*ExecutionsQuery)(nil)

// Query resolves the executions.
func (q *ExecutionsQuery) Query(ctx context.Context, input dashboard.ExecutionQuery) ([]dashboard.Execution, error) {
	if input.Limit <= 0 {
		input.Limit = dashboard.DefaultExecutionLimit
	}
	return q.service.Executions(ctx, input)
}

// RecentExecutionsInput bounds the recent list.
type RecentExecutionsInput struct {
	Limit int
}

// RecentExecutionsQuery lists the newest executions.
type RecentExecutionsQuery struct {
	service executionService
}

// NewRecentExecutionsQuery builds the query.
func NewRecentExecutionsQuery(service executionService) *RecentExecutionsQuery {
	return &RecentExecutionsQuery{service: service}
}

var _ gocommand.Querier[RecentExecutionsInput, []dashboard.Execution] = (*RecentExecutionsQuery)(nil)

// Query resolves the recent executions.
func (q *RecentExecutionsQuery) Query(ctx context.Context, input RecentExecutionsInput) ([]dashboard.Execution, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = dashboard.DefaultRecentLimit
	}
	return q.service.Recent(ctx, limit)
}
