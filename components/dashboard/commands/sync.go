package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-flowdash/components/dashboard"
)

// SyncWorkflowsInput requests a backend pull from the automation engine.
type SyncWorkflowsInput struct {
	Result *dashboard.ActionResult
}

type syncService interface {
	Sync(ctx context.Context) (dashboard.ActionResult, error)
}

// SyncWorkflowsCommand wraps Service.Sync.
type SyncWorkflowsCommand struct {
	service   syncService
	telemetry Telemetry
}

// NewSyncWorkflowsCommand creates the command.
func NewSyncWorkflowsCommand(service syncService, telemetry Telemetry) *SyncWorkflowsCommand {
	return &SyncWorkflowsCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SyncWorkflowsInput] = (*SyncWorkflowsCommand)(nil)

// Execute delegates to the dashboard service.
func (c *SyncWorkflowsCommand) Execute(ctx context.Context, msg SyncWorkflowsInput) error {
	if c.service == nil {
		return errors.New("sync command requires service")
	}
	result, err := c.service.Sync(ctx)
	recordOutcome(ctx, c.telemetry, "dashboard.command.sync", map[string]any{
		"message": result.Message,
	}, err)
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = result
	}
	return nil
}
