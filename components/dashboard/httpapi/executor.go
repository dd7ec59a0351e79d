package httpapi

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-flowdash/components/dashboard"
	"github.com/goliatone/go-flowdash/components/dashboard/commands"
	"github.com/goliatone/go-flowdash/components/dashboard/queries"
)

// Executor is the contract transports use to reach dashboard commands and queries.
type Executor interface {
	Execute(ctx context.Context, workflowID string) (dashboard.ActionResult, error)
	Activate(ctx context.Context, workflowID string) (dashboard.ActionResult, error)
	Deactivate(ctx context.Context, workflowID string) (dashboard.ActionResult, error)
	Sync(ctx context.Context) (dashboard.ActionResult, error)
	Revalidate(ctx context.Context, resource string) error

	Overview(ctx context.Context) (dashboard.Overview, error)
	Workflows(ctx context.Context, input queries.WorkflowListInput) ([]dashboard.Workflow, error)
	Stats(ctx context.Context) (dashboard.DashboardStats, error)
	Executions(ctx context.Context, query dashboard.ExecutionQuery) ([]dashboard.Execution, error)
	Recent(ctx context.Context, limit int) ([]dashboard.Execution, error)
}

// ErrNotConfigured is returned when the executor lacks the requested handler.
var ErrNotConfigured = errors.New("httpapi: handler not configured")

// CommandExecutor adapts go-command commanders and queriers to Executor.
type CommandExecutor struct {
	ExecuteCommander    gocommand.Commander[commands.WorkflowActionInput]
	ActivateCommander   gocommand.Commander[commands.WorkflowActionInput]
	DeactivateCommander gocommand.Commander[commands.WorkflowActionInput]
	SyncCommander       gocommand.Commander[commands.SyncWorkflowsInput]
	RevalidateCommander gocommand.Commander[commands.RevalidateInput]

	OverviewQuerier   gocommand.Querier[queries.StatsInput, dashboard.Overview]
	WorkflowsQuerier  gocommand.Querier[queries.WorkflowListInput, []dashboard.Workflow]
	StatsQuerier      gocommand.Querier[queries.StatsInput, dashboard.DashboardStats]
	ExecutionsQuerier gocommand.Querier[dashboard.ExecutionQuery, []dashboard.Execution]
	RecentQuerier     gocommand.Querier[queries.RecentExecutionsInput, []dashboard.Execution]
}

// NewCommandExecutor wires every command and query around a dashboard service.
func NewCommandExecutor(service *dashboard.Service, telemetry commands.Telemetry) *CommandExecutor {
	return &CommandExecutor{
		ExecuteCommander:    commands.NewExecuteWorkflowCommand(service, telemetry),
		ActivateCommander:   commands.NewActivateWorkflowCommand(service, telemetry),
		DeactivateCommander: commands.NewDeactivateWorkflowCommand(service, telemetry),
		SyncCommander:       commands.NewSyncWorkflowsCommand(service, telemetry),
		RevalidateCommander: commands.NewRevalidateCommand(service, telemetry),
		OverviewQuerier:     queries.NewOverviewQuery(service),
		WorkflowsQuerier:    queries.NewWorkflowListQuery(service),
		StatsQuerier:        queries.NewDashboardStatsQuery(service),
		ExecutionsQuerier:   queries.NewExecutionsQuery(service),
		RecentQuerier:       queries.NewRecentExecutionsQuery(service),
	}
}

var _ Executor = (*CommandExecutor)(nil)

func (e *CommandExecutor) runAction(ctx context.Context, cmd gocommand.Commander[commands.WorkflowActionInput], workflowID string) (dashboard.ActionResult, error) {
	if cmd == nil {
		return dashboard.ActionResult{}, ErrNotConfigured
	}
	var result dashboard.ActionResult
	if err := cmd.Execute(ctx, commands.WorkflowActionInput{WorkflowID: workflowID, Result: &result}); err != nil {
		return dashboard.ActionResult{}, err
	}
	return result, nil
}

func (e *CommandExecutor) Execute(ctx context.Context, workflowID string) (dashboard.ActionResult, error) {
	return e.runAction(ctx, e.ExecuteCommander, workflowID)
}

func (e *CommandExecutor) Activate(ctx context.Context, workflowID string) (dashboard.ActionResult, error) {
	return e.runAction(ctx, e.ActivateCommander, workflowID)
}

func (e *CommandExecutor) Deactivate(ctx context.Context, workflowID string) (dashboard.ActionResult, error) {
	return e.runAction(ctx, e.DeactivateCommander, workflowID)
}

func (e *CommandExecutor) Sync(ctx context.Context) (dashboard.ActionResult, error) {
	if e.SyncCommander == nil {
		return dashboard.ActionResult{}, ErrNotConfigured
	}
	var result dashboard.ActionResult
	if err := e.SyncCommander.Execute(ctx, commands.SyncWorkflowsInput{Result: &result}); err != nil {
		return dashboard.ActionResult{}, err
	}
	return result, nil
}

func (e *CommandExecutor) Revalidate(ctx context.Context, resource string) error {
	if e.RevalidateCommander == nil {
		return ErrNotConfigured
	}
	return e.RevalidateCommander.Execute(ctx, commands.RevalidateInput{Resource: resource})
}

func (e *CommandExecutor) Overview(ctx context.Context) (dashboard.Overview, error) {
	if e.OverviewQuerier == nil {
		return dashboard.Overview{}, ErrNotConfigured
	}
	return e.OverviewQuerier.Query(ctx, queries.StatsInput{})
}

func (e *CommandExecutor) Workflows(ctx context.Context, input queries.WorkflowListInput) ([]dashboard.Workflow, error) {
	if e.WorkflowsQuerier == nil {
		return nil, ErrNotConfigured
	}
	return e.WorkflowsQuerier.Query(ctx, input)
}

func (e *CommandExecutor) Stats(ctx context.Context) (dashboard.DashboardStats, error) {
	if e.StatsQuerier == nil {
		return dashboard.DashboardStats{}, ErrNotConfigured
	}
	return e.StatsQuerier.Query(ctx, queries.StatsInput{})
}

func (e *CommandExecutor) Executions(ctx context.Context, query dashboard.ExecutionQuery) ([]dashboard.Execution, error) {
	if e.ExecutionsQuerier == nil {
		return nil, ErrNotConfigured
	}
	return e.ExecutionsQuerier.Query(ctx, query)
}

func (e *CommandExecutor) Recent(ctx context.Context, limit int) ([]dashboard.Execution, error) {
	if e.RecentQuerier == nil {
		return nil, ErrNotConfigured
	}
	return e.RecentQuerier.Query(ctx, queries.RecentExecutionsInput{Limit: limit})
}
