package commands

import (
	"context"
	"errors"
	"testing"

	dashboard "github.com/goliatone/go-flowdash/components/dashboard"
)

type stubService struct {
	calls       []string
	revalidated []dashboard.Resource
	events      []dashboard.FlowEvent
	err         error
}

func (s *stubService) action(name, id string) (dashboard.ActionResult, error) {
	s.calls = append(s.calls, name+":"+id)
	if s.err != nil {
		return dashboard.ActionResult{}, s.err
	}
	return dashboard.ActionResult{Success: true, Message: name, ExecutionID: "exec-" + id}, nil
}

func (s *stubService) Execute(_ context.Context, id string) (dashboard.ActionResult, error) {
	return s.action("execute", id)
}

func (s *stubService) Activate(_ context.Context, id string) (dashboard.ActionResult, error) {
	return s.action("activate", id)
}

func (s *stubService) Deactivate(_ context.Context, id string) (dashboard.ActionResult, error) {
	return s.action("deactivate", id)
}

func (s *stubService) Sync(context.Context) (dashboard.ActionResult, error) {
	return s.action("sync", "")
}

func (s *stubService) Revalidate(_ context.Context, resource dashboard.Resource) error {
	s.revalidated = append(s.revalidated, resource)
	return s.err
}

func (s *stubService) NotifyResourceUpdated(_ context.Context, event dashboard.FlowEvent) error {
	s.events = append(s.events, event)
	return nil
}

type stubTelemetry struct {
	events []string
}

func (s *stubTelemetry) Record(_ context.Context, event string, _ map[string]any) {
	s.events = append(s.events, event)
}

func TestExecuteWorkflowCommand(t *testing.T) {
	service := &stubService{}
	telemetry := &stubTelemetry{}
	cmd := NewExecuteWorkflowCommand(service, telemetry)

	var result dashboard.ActionResult
	if err := cmd.Execute(context.Background(), WorkflowActionInput{WorkflowID: "wf-001", Result: &result}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if len(service.calls) != 1 || service.calls[0] != "execute:wf-001" {
		t.Fatalf("unexpected calls %v", service.calls)
	}
	if result.ExecutionID != "exec-wf-001" {
		t.Fatalf("expected result to be copied, got %+v", result)
	}
	if len(telemetry.events) != 1 || telemetry.events[0] != "dashboard.command.execute" {
		t.Fatalf("unexpected telemetry %v", telemetry.events)
	}
}

func TestActivateDeactivateCommands(t *testing.T) {
	service := &stubService{}
	if err := NewActivateWorkflowCommand(service, nil).Execute(context.Background(), WorkflowActionInput{WorkflowID: "wf-003"}); err != nil {
		t.Fatalf("activate returned error: %v", err)
	}
	if err := NewDeactivateWorkflowCommand(service, nil).Execute(context.Background(), WorkflowActionInput{WorkflowID: "wf-001"}); err != nil {
		t.Fatalf("deactivate returned error: %v", err)
	}
	if service.calls[0] != "activate:wf-003" || service.calls[1] != "deactivate:wf-001" {
		t.Fatalf("unexpected calls %v", service.calls)
	}
}

func TestWorkflowCommandValidation(t *testing.T) {
	if err := NewExecuteWorkflowCommand(nil, nil).Execute(context.Background(), WorkflowActionInput{WorkflowID: "wf"}); err == nil {
		t.Fatalf("expected error without service")
	}
	err := NewExecuteWorkflowCommand(&stubService{}, nil).Execute(context.Background(), WorkflowActionInput{})
	if !errors.Is(err, dashboard.ErrWorkflowIDRequired) {
		t.Fatalf("expected missing id error, got %v", err)
	}
}

func TestWorkflowCommandRecordsFailure(t *testing.T) {
	service := &stubService{err: errors.New("boom")}
	telemetry := &stubTelemetry{}
	err := NewActivateWorkflowCommand(service, telemetry).Execute(context.Background(), WorkflowActionInput{WorkflowID: "wf-001"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if telemetry.events[0] != "dashboard.command.activate.error" {
		t.Fatalf("expected error telemetry, got %v", telemetry.events)
	}
}

func TestSyncWorkflowsCommand(t *testing.T) {
	service := &stubService{}
	var result dashboard.ActionResult
	if err := NewSyncWorkflowsCommand(service, nil).Execute(context.Background(), SyncWorkflowsInput{Result: &result}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if !result.Success || result.Message != "sync" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestRevalidateCommand(t *testing.T) {
	service := &stubService{}
	cmd := NewRevalidateCommand(service, nil)
	if err := cmd.Execute(context.Background(), RevalidateInput{Resource: "stats"}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if len(service.revalidated) != 1 || service.revalidated[0] != dashboard.ResourceStats {
		t.Fatalf("unexpected revalidations %v", service.revalidated)
	}

	service.revalidated = nil
	if err := cmd.Execute(context.Background(), RevalidateInput{}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if len(service.revalidated) != len(dashboard.Resources()) {
		t.Fatalf("expected every resource to be revalidated, got %v", service.revalidated)
	}

	if err := cmd.Execute(context.Background(), RevalidateInput{Resource: "widgets"}); !errors.Is(err, dashboard.ErrUnknownResource) {
		t.Fatalf("expected unknown resource error, got %v", err)
	}
}

func TestNotifyCommand(t *testing.T) {
	service := &stubService{}
	event := dashboard.FlowEvent{Resource: dashboard.ResourceWorkflows, Reason: "sync"}
	if err := NewNotifyCommand(service, nil).Execute(context.Background(), NotifyInput{Event: event}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if len(service.events) != 1 || service.events[0].Reason != "sync" {
		t.Fatalf("expected event forwarded, got %v", service.events)
	}
}
