package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"
)

var fixedNow = time.Date(2024, 1, 30, 16, 30, 0, 0, time.UTC)

func timePtr(t time.Time) *time.Time { return &t }

func floatPtr(v float64) *float64 { return &v }

func sampleWorkflows() []Workflow {
	return []Workflow{
		{
			ID:              "wf-001",
			Name:            "E-commerce Order Processing",
			Description:     "Automatiza el procesamiento de pedidos",
			Category:        "E-commerce",
			Status:          WorkflowActive,
			LastExecution:   timePtr(fixedNow.Add(-time.Hour)),
			TotalExecutions: 1247,
			SuccessRate:     98.5,
			TimeSavedHours:  156.3,
		},
		{
			ID:              "wf-002",
			Name:            "Lead Scoring & CRM Update",
			Description:     "Califica leads automaticamente",
			Category:        "Sales",
			Status:          WorkflowActive,
			LastExecution:   timePtr(fixedNow.Add(-2 * time.Hour)),
			TotalExecutions: 892,
			SuccessRate:     96.2,
			TimeSavedHours:  89.2,
		},
		{
			ID:              "wf-003",
			Name:            "Social Media Monitoring",
			Description:     "Monitorea menciones de marca",
			Category:        "Marketing",
			Status:          WorkflowInactive,
			TotalExecutions: 2156,
			SuccessRate:     99.1,
			TimeSavedHours:  234.7,
		},
		{
			ID:              "wf-004",
			Name:            "Invoice Reminder",
			Description:     "Sends payment reminders",
			Category:        "E-commerce",
			Status:          WorkflowError,
			LastExecution:   timePtr(fixedNow.Add(-48 * time.Hour)),
			TotalExecutions: 12,
			SuccessRate:     50,
			TimeSavedHours:  1.2,
		},
	}
}

func sampleExecutions() []Execution {
	msg := "API rate limit exceeded"
	return []Execution{
		{ID: "ex-1", WorkflowID: "wf-001", WorkflowName: "E-commerce Order Processing", Status: ExecutionSuccess, StartTime: fixedNow.Add(-time.Hour), Duration: floatPtr(2300), TriggeredBy: "Webhook"},
		{ID: "ex-2", WorkflowID: "wf-002", WorkflowName: "Lead Scoring & CRM Update", Status: ExecutionError, StartTime: fixedNow.Add(-2 * time.Hour), Duration: floatPtr(6100), ErrorMessage: &msg, TriggeredBy: "Schedule"},
		{ID: "ex-3", WorkflowID: "wf-001", WorkflowName: "E-commerce Order Processing", Status: ExecutionSuccess, StartTime: fixedNow.Add(-24 * time.Hour), Duration: floatPtr(1800), TriggeredBy: "Manual"},
		{ID: "ex-4", WorkflowID: "wf-003", WorkflowName: "Social Media Monitoring", Status: ExecutionRunning, StartTime: fixedNow.Add(-5 * time.Minute), TriggeredBy: "Schedule"},
	}
}

func sampleStats() DashboardStats {
	return DashboardStats{
		TotalWorkflows:  5,
		ActiveWorkflows: 3,
		TotalExecutions: 4896,
		SuccessRate:     97.8,
		TotalTimeSaved:  626.4,
		TotalROI:        15660,
		ExecutionsToday: 47,
		ErrorsToday:     2,
	}
}

var errBackendDown = errors.New("backend down")

type stubSource struct {
	mu         sync.Mutex
	workflows  []Workflow
	stats      DashboardStats
	executions []Execution
	err        map[Resource]error
	actionErr  error
	calls      map[string]int
	actions    []string
	block      chan struct{}
}

func newStubSource() *stubSource {
	return &stubSource{
		workflows:  sampleWorkflows(),
		stats:      sampleStats(),
		executions: sampleExecutions(),
		err:        map[Resource]error{},
		calls:      map[string]int{},
	}
}

func (s *stubSource) record(name string) {
	s.mu.Lock()
	s.calls[name]++
	s.mu.Unlock()
}

func (s *stubSource) callCount(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[name]
}

func (s *stubSource) setErr(resource Resource, err error) {
	s.mu.Lock()
	s.err[resource] = err
	s.mu.Unlock()
}

func (s *stubSource) errFor(resource Resource) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err[resource]
}

func (s *stubSource) Workflows(ctx context.Context, query WorkflowQuery) ([]Workflow, error) {
	s.record("workflows")
	if s.block != nil {
		<-s.block
	}
	if err := s.errFor(ResourceWorkflows); err != nil {
		return nil, err
	}
	return append([]Workflow(nil), s.workflows...), nil
}

func (s *stubSource) Stats(ctx context.Context) (DashboardStats, error) {
	s.record("stats")
	if err := s.errFor(ResourceStats); err != nil {
		return DashboardStats{}, err
	}
	return s.stats, nil
}

func (s *stubSource) Executions(ctx context.Context, query ExecutionQuery) ([]Execution, error) {
	s.record("executions")
	if err := s.errFor(ResourceExecutions); err != nil {
		return nil, err
	}
	list := s.executions
	if query.WorkflowID != "" {
		list = ExecutionsFor(list, query.WorkflowID)
	}
	return limitExecutions(append([]Execution(nil), list...), query.Limit), nil
}

func (s *stubSource) RecentExecutions(ctx context.Context, limit int) ([]Execution, error) {
	s.record("recent")
	if err := s.errFor(ResourceRecent); err != nil {
		return nil, err
	}
	return limitExecutions(append([]Execution(nil), s.executions...), limit), nil
}

func (s *stubSource) action(name, id string) (ActionResult, error) {
	s.record(name)
	s.mu.Lock()
	s.actions = append(s.actions, name+":"+id)
	s.mu.Unlock()
	if s.actionErr != nil {
		return ActionResult{}, s.actionErr
	}
	return ActionResult{Success: true, Message: name + " ok"}, nil
}

func (s *stubSource) Execute(ctx context.Context, id string) (ActionResult, error) {
	return s.action("execute", id)
}

func (s *stubSource) Activate(ctx context.Context, id string) (ActionResult, error) {
	return s.action("activate", id)
}

func (s *stubSource) Deactivate(ctx context.Context, id string) (ActionResult, error) {
	return s.action("deactivate", id)
}

func (s *stubSource) Sync(ctx context.Context) (ActionResult, error) {
	return s.action("sync", "")
}

type recordingHook struct {
	mu     sync.Mutex
	events []FlowEvent
}

func (h *recordingHook) ResourceUpdated(ctx context.Context, event FlowEvent) error {
	h.mu.Lock()
	h.events = append(h.events, event)
	h.mu.Unlock()
	return nil
}

func (h *recordingHook) snapshot() []FlowEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]FlowEvent(nil), h.events...)
}

type recordingTelemetry struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingTelemetry) Record(ctx context.Context, event string, payload map[string]any) {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
}

func (r *recordingTelemetry) has(event string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e == event {
			return true
		}
	}
	return false
}
