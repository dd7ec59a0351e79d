package dashboard

import (
	"context"
	"encoding/json"
	"time"
)

// WorkflowStatus is the lifecycle state reported by the automation backend.
type WorkflowStatus string

const (
	WorkflowActive   WorkflowStatus = "active"
	WorkflowInactive WorkflowStatus = "inactive"
	WorkflowError    WorkflowStatus = "error"
)

// ExecutionStatus is the outcome of a single workflow run.
type ExecutionStatus string

const (
	ExecutionSuccess ExecutionStatus = "success"
	ExecutionError   ExecutionStatus = "error"
	ExecutionRunning ExecutionStatus = "running"
	ExecutionWaiting ExecutionStatus = "waiting"
)

// FilterAll disables a status or category constraint.
const FilterAll = "all"

// Source fetches dashboard records from the automation backend. pkg/automation
// provides HTTP, mock and fallback implementations.
type Source interface {
	Workflows(ctx context.Context, query WorkflowQuery) ([]Workflow, error)
	Stats(ctx context.Context) (DashboardStats, error)
	Executions(ctx context.Context, query ExecutionQuery) ([]Execution, error)
	RecentExecutions(ctx context.Context, limit int) ([]Execution, error)
	Execute(ctx context.Context, workflowID string) (ActionResult, error)
	Activate(ctx context.Context, workflowID string) (ActionResult, error)
	Deactivate(ctx context.Context, workflowID string) (ActionResult, error)
	Sync(ctx context.Context) (ActionResult, error)
}

// RefreshHook notifies transports (REST/WebSocket/SSE) about refreshed data.
type RefreshHook interface {
	ResourceUpdated(ctx context.Context, event FlowEvent) error
}

// WorkflowQuery narrows the remote workflow listing.
type WorkflowQuery struct {
	Category string
	Status   string
}

// ExecutionQuery narrows the remote execution listing.
type ExecutionQuery struct {
	WorkflowID string
	Limit      int
}

// Workflow is a named automation definition tracked by the backend.
type Workflow struct {
	ID               string         `json:"id" yaml:"id"`
	N8NID            string         `json:"n8n_id,omitempty" yaml:"n8n_id,omitempty"`
	Name             string         `json:"name" yaml:"name"`
	Description      string         `json:"description" yaml:"description"`
	Category         string         `json:"category" yaml:"category"`
	Status           WorkflowStatus `json:"status" yaml:"status"`
	CreatedAt        time.Time      `json:"created_at" yaml:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at" yaml:"updated_at"`
	LastExecution    *time.Time     `json:"last_execution,omitempty" yaml:"last_execution,omitempty"`
	TotalExecutions  int            `json:"total_executions" yaml:"total_executions"`
	SuccessRate      float64        `json:"success_rate" yaml:"success_rate"`
	AvgExecutionTime float64        `json:"avg_execution_time" yaml:"avg_execution_time"`
	TimeSavedHours   float64        `json:"time_saved_hours" yaml:"time_saved_hours"`
	Triggers         []string       `json:"triggers" yaml:"triggers"`
	Actions          []string       `json:"actions" yaml:"actions"`
}

// Execution is one run instance of a workflow.
type Execution struct {
	ID             string          `json:"id" yaml:"id"`
	WorkflowID     string          `json:"workflow_id" yaml:"workflow_id"`
	WorkflowName   string          `json:"workflow_name" yaml:"workflow_name"`
	N8NExecutionID string          `json:"n8n_execution_id,omitempty" yaml:"n8n_execution_id,omitempty"`
	Status         ExecutionStatus `json:"status" yaml:"status"`
	StartTime      time.Time       `json:"start_time" yaml:"start_time"`
	EndTime        *time.Time      `json:"end_time,omitempty" yaml:"end_time,omitempty"`
	Duration       *float64        `json:"duration,omitempty" yaml:"duration,omitempty"`
	ErrorMessage   *string         `json:"error_message,omitempty" yaml:"error_message,omitempty"`
	DataProcessed  int             `json:"data_processed" yaml:"data_processed"`
	TriggeredBy    string          `json:"triggered_by" yaml:"triggered_by"`
}

// DurationMillis returns the recorded duration or 0 while the run is in flight.
func (e Execution) DurationMillis() float64 {
	if e.Duration == nil {
		return 0
	}
	return *e.Duration
}

// FailureMessage returns the recorded error message, if any.
func (e Execution) FailureMessage() string {
	if e.ErrorMessage == nil {
		return ""
	}
	return *e.ErrorMessage
}

// DashboardStats aggregates counts across all workflows and executions.
type DashboardStats struct {
	TotalWorkflows  int     `json:"total_workflows" yaml:"total_workflows"`
	ActiveWorkflows int     `json:"active_workflows" yaml:"active_workflows"`
	TotalExecutions int     `json:"total_executions" yaml:"total_executions"`
	SuccessRate     float64 `json:"success_rate" yaml:"success_rate"`
	TotalTimeSaved  float64 `json:"total_time_saved" yaml:"total_time_saved"`
	TotalROI        float64 `json:"total_roi" yaml:"total_roi"`
	ExecutionsToday int     `json:"executions_today" yaml:"executions_today"`
	ErrorsToday     int     `json:"errors_today" yaml:"errors_today"`
}

// ChartData is a single day bucket for the executions trend chart.
type ChartData struct {
	Date       string  `json:"date"`
	Executions int     `json:"executions"`
	Successes  int     `json:"successes"`
	Errors     int     `json:"errors"`
	TimeSaved  float64 `json:"time_saved"`
}

// WorkflowCategory counts workflows per category for the breakdown widget.
type WorkflowCategory struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
	Color string `json:"color"`
}

// ActionResult is the backend reply to execute/activate/deactivate/sync calls.
type ActionResult struct {
	Success     bool            `json:"success"`
	Message     string          `json:"message"`
	ExecutionID string          `json:"execution_id,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
}

// Resource identifies a polled backend collection.
type Resource string

const (
	ResourceWorkflows  Resource = "workflows"
	ResourceStats      Resource = "stats"
	ResourceExecutions Resource = "executions"
	ResourceRecent     Resource = "recent"
)

// Resources lists every polled resource in display order.
func Resources() []Resource {
	return []Resource{ResourceWorkflows, ResourceStats, ResourceExecutions, ResourceRecent}
}

// FlowEvent describes changes that transports might care about.
type FlowEvent struct {
	Resource   Resource  `json:"resource,omitempty"`
	WorkflowID string    `json:"workflow_id,omitempty"`
	Reason     string    `json:"reason"`
	Error      string    `json:"error,omitempty"`
	At         time.Time `json:"at"`
}
