package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-flowdash/components/dashboard"
)

// WorkflowActionInput targets a single workflow. When Result is set the
// backend reply is copied into it.
type WorkflowActionInput struct {
	WorkflowID string
	Result     *dashboard.ActionResult
}

type workflowService interface {
	Execute(ctx context.Context, workflowID string) (dashboard.ActionResult, error)
	Activate(ctx context.Context, workflowID string) (dashboard.ActionResult, error)
	Deactivate(ctx context.Context, workflowID string) (dashboard.ActionResult, error)
}

type workflowCall func(workflowService, context.Context, string) (dashboard.ActionResult, error)

// workflowCommand shares validation and telemetry across the workflow actions.
type workflowCommand struct {
	name      string
	call      workflowCall
	service   workflowService
	telemetry Telemetry
}

func (c *workflowCommand) execute(ctx context.Context, msg WorkflowActionInput) error {
	if c.service == nil {
		return errors.New(c.name + " command requires service")
	}
	if msg.WorkflowID == "" {
		return dashboard.ErrWorkflowIDRequired
	}
	result, err := c.call(c.service, ctx, msg.WorkflowID)
	recordOutcome(ctx, c.telemetry, "dashboard.command."+c.name, map[string]any{
		"workflow_id": msg.WorkflowID,
		"success":     result.Success,
	}, err)
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = result
	}
	return nil
}

// ExecuteWorkflowCommand triggers a workflow run.
type ExecuteWorkflowCommand struct{ workflowCommand }

// NewExecuteWorkflowCommand creates the command.
func NewExecuteWorkflowCommand(service workflowService, telemetry Telemetry) *ExecuteWorkflowCommand {
	return &ExecuteWorkflowCommand{workflowCommand{
		name: "execute", call: workflowService.Execute, service: service, telemetry: normalizeTelemetry(telemetry),
	}}
}

var _ gocommand.Commander[WorkflowActionInput] = (*ExecuteWorkflowCommand)(nil)

// Execute runs the workflow.
func (c *ExecuteWorkflowCommand) Execute(ctx context.Context, msg WorkflowActionInput) error {
	return c.execute(ctx, msg)
}

// ActivateWorkflowCommand enables a workflow.
type ActivateWorkflowCommand struct{ workflowCommand }

// NewActivateWorkflowCommand creates the command.
func NewActivateWorkflowCommand(service workflowService, telemetry Telemetry) *ActivateWorkflowCommand {
	return &ActivateWorkflowCommand{workflowCommand{
		name: "activate", call: workflowService.Activate, service: service, telemetry: normalizeTelemetry(telemetry),
	}}
}

var _ gocommand.Commander[WorkflowActionInput] = (*ActivateWorkflowCommand)(nil)

// Execute activates the workflow.
func (c *ActivateWorkflowCommand) Execute(ctx context.Context, msg WorkflowActionInput) error {
	return c.execute(ctx, msg)
}

// DeactivateWorkflowCommand disables a workflow.
type DeactivateWorkflowCommand struct{ workflowCommand }

// NewDeactivateWorkflowCommand creates the command.
func NewDeactivateWorkflowCommand(service workflowService, telemetry Telemetry) *DeactivateWorkflowCommand {
	return &DeactivateWorkflowCommand{workflowCommand{
		name: "deactivate", call: workflowService.Deactivate, service: service, telemetry: normalizeTelemetry(telemetry),
	}}
}

var _ gocommand.Commander[WorkflowActionInput] = (*DeactivateWorkflowCommand)(nil)

// Execute deactivates the workflow.
func (c *DeactivateWorkflowCommand) Execute(ctx context.Context, msg WorkflowActionInput) error {
	return c.execute(ctx, msg)
}
