package main

import (
	"context"

	"github.com/goliatone/go-flowdash/components/dashboard"
	"github.com/goliatone/go-flowdash/components/dashboard/httpapi"
	"github.com/goliatone/go-flowdash/components/dashboard/queries"
	dashboardpkg "github.com/goliatone/go-flowdash/pkg/dashboard"
	"github.com/goliatone/go-flowdash/pkg/logging"
)

// executor builds the command/query executor over a poller-less service, so
// every client command reads straight from the automation API.
func (rt *runtime) executor() (*httpapi.CommandExecutor, error) {
	source, err := dashboardpkg.NewSource(rt.cfg, rt.logger)
	if err != nil {
		return nil, err
	}
	telemetry := logging.NewSlogTelemetry(rt.logger)
	service := dashboard.NewService(dashboard.Options{
		Source:     source,
		Telemetry:  telemetry,
		HourlyRate: rt.cfg.Dashboard.HourlyRate,
		ChartDays:  rt.cfg.Dashboard.ChartDays,
	})
	return httpapi.NewCommandExecutor(service, telemetry), nil
}

type workflowsCmd struct {
	Search   string `help:"Case-insensitive match on name or description."`
	Status   string `default:"all" help:"Filter by status (all, active, inactive, error)."`
	Category string `default:"all" help:"Filter by category."`
	Sort     string `default:"executions" enum:"executions,name,success,lastExecution" help:"Sort key."`
}

func (c *workflowsCmd) Run(ctx context.Context, rt *runtime) error {
	exec, err := rt.executor()
	if err != nil {
		return err
	}
	list, err := exec.Workflows(ctx, queries.WorkflowListInput{
		Filter: dashboard.WorkflowFilter{Search: c.Search, Status: c.Status, Category: c.Category},
		Sort:   dashboard.ParseSortKey(c.Sort),
	})
	if err != nil {
		return err
	}
	return renderList(rt.out, rt.format, list, workflowColumns)
}

type statsCmd struct{}

func (c *statsCmd) Run(ctx context.Context, rt *runtime) error {
	exec, err := rt.executor()
	if err != nil {
		return err
	}
	stats, err := exec.Stats(ctx)
	if err != nil {
		return err
	}
	return renderRecord(rt.out, rt.format, stats, statsFields(stats))
}

type executionsCmd struct {
	WorkflowID string `name:"workflow-id" help:"Only executions of this workflow."`
	Limit      int    `default:"50" help:"Maximum number of executions."`
}

func (c *executionsCmd) Run(ctx context.Context, rt *runtime) error {
	exec, err := rt.executor()
	if err != nil {
		return err
	}
	list, err := exec.Executions(ctx, dashboard.ExecutionQuery{WorkflowID: c.WorkflowID, Limit: c.Limit})
	if err != nil {
		return err
	}
	return renderList(rt.out, rt.format, list, executionColumns)
}

type recentCmd struct {
	Limit int `default:"10" help:"Maximum number of executions."`
}

func (c *recentCmd) Run(ctx context.Context, rt *runtime) error {
	exec, err := rt.executor()
	if err != nil {
		return err
	}
	list, err := exec.Recent(ctx, c.Limit)
	if err != nil {
		return err
	}
	return renderList(rt.out, rt.format, list, executionColumns)
}

type executeCmd struct {
	ID string `arg:"" help:"Workflow id."`
}

func (c *executeCmd) Run(ctx context.Context, rt *runtime) error {
	return runAction(ctx, rt, func(e *httpapi.CommandExecutor) (dashboard.ActionResult, error) {
		return e.Execute(ctx, c.ID)
	})
}

type activateCmd struct {
	ID string `arg:"" help:"Workflow id."`
}

func (c *activateCmd) Run(ctx context.Context, rt *runtime) error {
	return runAction(ctx, rt, func(e *httpapi.CommandExecutor) (dashboard.ActionResult, error) {
		return e.Activate(ctx, c.ID)
	})
}

type deactivateCmd struct {
	ID string `arg:"" help:"Workflow id."`
}

func (c *deactivateCmd) Run(ctx context.Context, rt *runtime) error {
	return runAction(ctx, rt, func(e *httpapi.CommandExecutor) (dashboard.ActionResult, error) {
		return e.Deactivate(ctx, c.ID)
	})
}

type syncCmd struct{}

func (c *syncCmd) Run(ctx context.Context, rt *runtime) error {
	return runAction(ctx, rt, func(e *httpapi.CommandExecutor) (dashboard.ActionResult, error) {
		return e.Sync(ctx)
	})
}

func runAction(_ context.Context, rt *runtime, call func(*httpapi.CommandExecutor) (dashboard.ActionResult, error)) error {
	exec, err := rt.executor()
	if err != nil {
		return err
	}
	result, err := call(exec)
	if err != nil {
		return err
	}
	return renderRecord(rt.out, rt.format, result, resultFields(result))
}
