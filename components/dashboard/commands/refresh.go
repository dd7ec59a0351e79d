package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-flowdash/components/dashboard"
)

// RevalidateInput names the resource to refresh; empty refreshes everything.
type RevalidateInput struct {
	Resource string
}

type revalidator interface {
	Revalidate(ctx context.Context, resource dashboard.Resource) error
}

// RevalidateCommand forces a poll outside the regular interval.
type RevalidateCommand struct {
	service   revalidator
	telemetry Telemetry
}

// NewRevalidateCommand creates the command.
func NewRevalidateCommand(service revalidator, telemetry Telemetry) *RevalidateCommand {
	return &RevalidateCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RevalidateInput] = (*RevalidateCommand)(nil)

// Execute refreshes the requested resources and joins their failures.
func (c *RevalidateCommand) Execute(ctx context.Context, msg RevalidateInput) error {
	if c.service == nil {
		return errors.New("revalidate command requires service")
	}
	resources := dashboard.Resources()
	if msg.Resource != "" {
		resource, err := dashboard.ParseResource(msg.Resource)
		if err != nil {
			return err
		}
		resources = []dashboard.Resource{resource}
	}
	var errs []error
	for _, resource := range resources {
		if err := c.service.Revalidate(ctx, resource); err != nil {
			errs = append(errs, err)
		}
	}
	err := errors.Join(errs...)
	recordOutcome(ctx, c.telemetry, "dashboard.command.revalidate", map[string]any{
		"resource": msg.Resource,
		"count":    len(resources),
	}, err)
	return err
}

// NotifyInput forwards a FlowEvent to the refresh hooks.
type NotifyInput struct {
	Event dashboard.FlowEvent
}

type notifier interface {
	NotifyResourceUpdated(ctx context.Context, event dashboard.FlowEvent) error
}

// NotifyCommand triggers refresh hooks without polling.
type NotifyCommand struct {
	service   notifier
	telemetry Telemetry
}

// NewNotifyCommand creates the command.
func NewNotifyCommand(service notifier, telemetry Telemetry) *NotifyCommand {
	return &NotifyCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[NotifyInput] = (*NotifyCommand)(nil)

// Execute notifies the dashboard service's refresh hooks.
func (c *NotifyCommand) Execute(ctx context.Context, msg NotifyInput) error {
	if c.service == nil {
		return errors.New("notify command requires service")
	}
	if err := c.service.NotifyResourceUpdated(ctx, msg.Event); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.notify", map[string]any{
		"resource": string(msg.Event.Resource),
		"reason":   msg.Event.Reason,
	})
	return nil
}
