package dashboard

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrSourceNotConfigured is returned when no automation source was provided.
	ErrSourceNotConfigured = errors.New("dashboard: automation source not configured")
	// ErrWorkflowIDRequired is returned by workflow actions called without an id.
	ErrWorkflowIDRequired = errors.New("dashboard: workflow id is required")
)

// Overview defaults.
const (
	DefaultTopWorkflows   = 3
	DefaultOverviewRecent = 5
	DefaultChartDays      = 7
)

// Options configures the dashboard Service. Every collaborator is provided via
// interface so applications can swap implementations.
type Options struct {
	Source      Source
	Poller      *Poller
	RefreshHook RefreshHook
	Telemetry   Telemetry
	HourlyRate  float64
	ChartDays   int
	Now         func() time.Time
}

// Service serves dashboard data from the poller snapshots, falling back to the
// source while a snapshot is still loading, and runs workflow actions.
type Service struct {
	opts Options
}

// NewService builds a Service instance with safe defaults.
func NewService(opts Options) *Service {
	if opts.HourlyRate <= 0 {
		opts.HourlyRate = DefaultHourlyRate
	}
	if opts.ChartDays <= 0 {
		opts.ChartDays = DefaultChartDays
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	opts.RefreshHook = normalizeRefreshHook(opts.RefreshHook)
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	return &Service{opts: opts}
}

// HourlyRate returns the rate used for ROI figures.
func (s *Service) HourlyRate() float64 {
	return s.opts.HourlyRate
}

func (s *Service) source() (Source, error) {
	if s.opts.Source == nil {
		return nil, ErrSourceNotConfigured
	}
	return s.opts.Source, nil
}

// cached serves a snapshot when it holds data, surfaces its error when it has
// none, and fetches directly while it is still loading.
func cached[T any](snap Snapshot[T], fetch func() (T, error)) (T, error) {
	if snap.HasData {
		return snap.Data, nil
	}
	if snap.Err != nil {
		var zero T
		return zero, snap.Err
	}
	return fetch()
}

// Workflows returns the full workflow list with filter and sort applied.
func (s *Service) Workflows(ctx context.Context, filter WorkflowFilter, sort SortKey) ([]Workflow, error) {
	all, err := s.allWorkflows(ctx)
	if err != nil {
		return nil, err
	}
	return ApplyView(all, filter, sort), nil
}

func (s *Service) allWorkflows(ctx context.Context) ([]Workflow, error) {
	src, err := s.source()
	if err != nil {
		return nil, err
	}
	fetch := func() ([]Workflow, error) {
		return src.Workflows(ctx, WorkflowQuery{})
	}
	if s.opts.Poller == nil {
		return fetch()
	}
	return cached(s.opts.Poller.Workflows(), fetch)
}

// Stats returns the aggregate dashboard figures.
func (s *Service) Stats(ctx context.Context) (DashboardStats, error) {
	src, err := s.source()
	if err != nil {
		return DashboardStats{}, err
	}
	fetch := func() (DashboardStats, error) {
		return src.Stats(ctx)
	}
	if s.opts.Poller == nil {
		return fetch()
	}
	return cached(s.opts.Poller.Stats(), fetch)
}

// Executions lists executions. Queries scoped to a workflow, or asking for more
// rows than the poller keeps, always go to the source.
func (s *Service) Executions(ctx context.Context, query ExecutionQuery) ([]Execution, error) {
	src, err := s.source()
	if err != nil {
		return nil, err
	}
	fetch := func() ([]Execution, error) {
		return src.Executions(ctx, query)
	}
	if s.opts.Poller == nil || query.WorkflowID != "" || query.Limit > s.opts.Poller.opts.ExecutionLimit {
		return fetch()
	}
	list, err := cached(s.opts.Poller.Executions(), fetch)
	if err != nil {
		return nil, err
	}
	return limitExecutions(list, query.Limit), nil
}

// Recent returns the most recent executions, newest first.
func (s *Service) Recent(ctx context.Context, limit int) ([]Execution, error) {
	src, err := s.source()
	if err != nil {
		return nil, err
	}
	fetch := func() ([]Execution, error) {
		return src.RecentExecutions(ctx, limit)
	}
	if s.opts.Poller == nil || limit > s.opts.Poller.opts.RecentLimit {
		return fetch()
	}
	list, err := cached(s.opts.Poller.Recent(), fetch)
	if err != nil {
		return nil, err
	}
	return limitExecutions(list, limit), nil
}

func limitExecutions(list []Execution, limit int) []Execution {
	if limit > 0 && len(list) > limit {
		return list[:limit]
	}
	return list
}

// Status reports the poller state of every resource, or nil without a poller.
func (s *Service) Status() []ResourceStatus {
	if s.opts.Poller == nil {
		return nil
	}
	return s.opts.Poller.Status()
}

// Overview is the view model behind the main dashboard page.
type Overview struct {
	Stats          DashboardStats     `json:"stats"`
	Summary        WorkflowSummary    `json:"summary"`
	ActivePercent  float64            `json:"active_percent"`
	SuccessToday   float64            `json:"success_today"`
	TimeSavedToday float64            `json:"time_saved_today"`
	ROIToday       float64            `json:"roi_today"`
	TopWorkflows   []Workflow         `json:"top_workflows"`
	Recent         []Execution        `json:"recent"`
	Chart          []ChartData        `json:"chart"`
	Categories     []WorkflowCategory `json:"categories"`
	Status         []ResourceStatus   `json:"status,omitempty"`
	GeneratedAt    time.Time          `json:"generated_at"`
}

// Dashboard assembles the overview. Stats are required; the other resources
// degrade to empty sections and are reported through Status. A failed stats
// poll is reported even when an older snapshot is still held.
func (s *Service) Dashboard(ctx context.Context) (Overview, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return Overview{}, err
	}
	if s.opts.Poller != nil {
		if snap := s.opts.Poller.Stats(); snap.IsError() {
			return Overview{}, snap.Err
		}
	}
	now := s.opts.Now()
	overview := Overview{Stats: stats, GeneratedAt: now, Status: s.Status()}

	workflows, err := s.allWorkflows(ctx)
	if err != nil {
		s.recordFailure(ctx, ResourceWorkflows, err)
	}
	executions, err := s.Executions(ctx, ExecutionQuery{Limit: DefaultExecutionLimit})
	if err != nil {
		s.recordFailure(ctx, ResourceExecutions, err)
	}
	recent, err := s.Recent(ctx, DefaultOverviewRecent)
	if err != nil {
		s.recordFailure(ctx, ResourceRecent, err)
	}

	overview.Summary = Summarize(workflows, s.opts.HourlyRate)
	overview.Categories = CategoryBreakdown(workflows)
	top := ApplyView(workflows, WorkflowFilter{}, SortByExecutions)
	if len(top) > DefaultTopWorkflows {
		top = top[:DefaultTopWorkflows]
	}
	overview.TopWorkflows = top
	overview.Recent = limitExecutions(recent, DefaultOverviewRecent)
	overview.Chart = DailyChart(executions, workflows, s.opts.ChartDays, now)

	if stats.TotalWorkflows > 0 {
		overview.ActivePercent = round1(float64(stats.ActiveWorkflows) / float64(stats.TotalWorkflows) * 100)
	}
	overview.SuccessToday = SuccessRate(stats.ExecutionsToday-stats.ErrorsToday, stats.ExecutionsToday)
	if n := len(overview.Chart); n > 0 {
		overview.TimeSavedToday = overview.Chart[n-1].TimeSaved
	}
	overview.ROIToday = CalculateROI(overview.TimeSavedToday, s.opts.HourlyRate)

	s.recordTelemetry(ctx, "dashboard.overview", map[string]any{
		"workflows": len(workflows),
		"recent":    len(overview.Recent),
	})
	return overview, nil
}

// Execute triggers a workflow run.
func (s *Service) Execute(ctx context.Context, workflowID string) (ActionResult, error) {
	return s.runAction(ctx, "execute", workflowID, Source.Execute,
		ResourceExecutions, ResourceRecent, ResourceStats, ResourceWorkflows)
}

// Activate enables a workflow.
func (s *Service) Activate(ctx context.Context, workflowID string) (ActionResult, error) {
	return s.runAction(ctx, "activate", workflowID, Source.Activate, ResourceWorkflows, ResourceStats)
}

// Deactivate disables a workflow.
func (s *Service) Deactivate(ctx context.Context, workflowID string) (ActionResult, error) {
	return s.runAction(ctx, "deactivate", workflowID, Source.Deactivate, ResourceWorkflows, ResourceStats)
}

// Sync asks the backend to pull workflows from the automation engine.
func (s *Service) Sync(ctx context.Context) (ActionResult, error) {
	src, err := s.source()
	if err != nil {
		return ActionResult{}, err
	}
	result, err := src.Sync(ctx)
	if err != nil {
		return ActionResult{}, err
	}
	s.afterAction(ctx, "sync", "", ResourceWorkflows, ResourceStats)
	return result, nil
}

type workflowAction func(Source, context.Context, string) (ActionResult, error)

func (s *Service) runAction(ctx context.Context, reason, workflowID string, action workflowAction, affected ...Resource) (ActionResult, error) {
	src, err := s.source()
	if err != nil {
		return ActionResult{}, err
	}
	if workflowID == "" {
		return ActionResult{}, ErrWorkflowIDRequired
	}
	result, err := action(src, ctx, workflowID)
	if err != nil {
		return ActionResult{}, err
	}
	s.afterAction(ctx, reason, workflowID, affected...)
	return result, nil
}

// afterAction revalidates the affected snapshots and notifies transports.
// Revalidation failures are recorded, not returned: the action itself succeeded.
func (s *Service) afterAction(ctx context.Context, reason, workflowID string, affected ...Resource) {
	if s.opts.Poller != nil {
		for _, resource := range affected {
			if err := s.opts.Poller.Revalidate(ctx, resource); err != nil {
				s.recordFailure(ctx, resource, err)
			}
		}
	}
	event := FlowEvent{WorkflowID: workflowID, Reason: reason, At: s.opts.Now()}
	payload := map[string]any{"reason": reason, "workflow_id": workflowID}
	if err := s.opts.RefreshHook.ResourceUpdated(ctx, event); err != nil {
		payload["hook_error"] = err.Error()
	}
	s.recordTelemetry(ctx, "dashboard.workflow."+reason, payload)
}

// Revalidate forces a refresh of one resource.
func (s *Service) Revalidate(ctx context.Context, resource Resource) error {
	if s.opts.Poller == nil {
		return nil
	}
	return s.opts.Poller.Revalidate(ctx, resource)
}

// NotifyResourceUpdated exposes refresh hook invocation for commands/transports.
func (s *Service) NotifyResourceUpdated(ctx context.Context, event FlowEvent) error {
	if event.At.IsZero() {
		event.At = s.opts.Now()
	}
	if err := s.opts.RefreshHook.ResourceUpdated(ctx, event); err != nil {
		return err
	}
	s.recordTelemetry(ctx, "dashboard.resource.event", map[string]any{
		"resource":    string(event.Resource),
		"workflow_id": event.WorkflowID,
		"reason":      event.Reason,
	})
	return nil
}

func (s *Service) recordFailure(ctx context.Context, resource Resource, err error) {
	s.recordTelemetry(ctx, "dashboard.resource.error", map[string]any{
		"resource": string(resource),
		"error":    err.Error(),
	})
}

func (s *Service) recordTelemetry(ctx context.Context, event string, payload map[string]any) {
	s.opts.Telemetry.Record(ctx, event, payload)
}
