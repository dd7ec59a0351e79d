package automation

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	dashboard "github.com/goliatone/go-flowdash/components/dashboard"
)

//go:embed fixtures.yaml
var defaultFixtures []byte

// MockData seeds deterministic automation responses for tests or offline demos.
type MockData struct {
	Stats      dashboard.DashboardStats `yaml:"stats"`
	Workflows  []dashboard.Workflow     `yaml:"workflows"`
	Executions []ExecutionFixture       `yaml:"executions"`
}

// ExecutionFixture is an execution whose start time is relative to the read time.
type ExecutionFixture struct {
	ID           string                    `yaml:"id"`
	WorkflowID   string                    `yaml:"workflow_id"`
	WorkflowName string                    `yaml:"workflow_name"`
	Status       dashboard.ExecutionStatus `yaml:"status"`
	Ago          time.Duration             `yaml:"ago"`
	Duration     float64                   `yaml:"duration"`
	TriggeredBy  string                    `yaml:"triggered_by"`
	Processed    int                       `yaml:"data_processed"`
	ErrorMessage string                    `yaml:"error_message"`
}

func (f ExecutionFixture) at(now time.Time) dashboard.Execution {
	start := now.Add(-f.Ago)
	end := start.Add(time.Duration(f.Duration) * time.Millisecond)
	duration := f.Duration
	exec := dashboard.Execution{
		ID:             f.ID,
		WorkflowID:     f.WorkflowID,
		WorkflowName:   f.WorkflowName,
		N8NExecutionID: "n8n-" + f.ID,
		Status:         f.Status,
		StartTime:      start,
		EndTime:        &end,
		Duration:       &duration,
		DataProcessed:  f.Processed,
		TriggeredBy:    f.TriggeredBy,
	}
	if f.ErrorMessage != "" {
		msg := f.ErrorMessage
		exec.ErrorMessage = &msg
	}
	return exec
}

// LoadFixtures decodes YAML mock data.
func LoadFixtures(r io.Reader) (MockData, error) {
	var data MockData
	if err := yaml.NewDecoder(r).Decode(&data); err != nil {
		return MockData{}, fmt.Errorf("automation: decode fixtures: %w", err)
	}
	return data, nil
}

// DefaultFixtures returns the embedded sample data set.
func DefaultFixtures() (MockData, error) {
	return LoadFixtures(bytes.NewReader(defaultFixtures))
}

// MockClient implements Client using in-memory fixtures. Activate and
// Deactivate change the in-memory status so offline demos stay coherent.
type MockClient struct {
	mu   sync.RWMutex
	data MockData
	now  func() time.Time
}

// NewMockClient builds a mock automation client from the provided fixtures.
func NewMockClient(data MockData) *MockClient {
	return &MockClient{data: data, now: time.Now}
}

// NewDefaultMockClient builds a mock client over the embedded fixtures.
func NewDefaultMockClient() (*MockClient, error) {
	data, err := DefaultFixtures()
	if err != nil {
		return nil, err
	}
	return NewMockClient(data), nil
}

// WithClock overrides the clock used for relative timestamps.
func (c *MockClient) WithClock(now func() time.Time) *MockClient {
	if now != nil {
		c.now = now
	}
	return c
}

// Workflows returns copies of the fixtures matching query. Every workflow
// reports the read time as its last execution.
func (c *MockClient) Workflows(_ context.Context, query dashboard.WorkflowQuery) ([]dashboard.Workflow, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	now := c.now()
	out := make([]dashboard.Workflow, 0, len(c.data.Workflows))
	for _, w := range c.data.Workflows {
		if !matchesQuery(w, query) {
			continue
		}
		clone := cloneWorkflow(w)
		last := now
		clone.LastExecution = &last
		out = append(out, clone)
	}
	return out, nil
}

// Stats returns the stats fixture.
func (c *MockClient) Stats(context.Context) (dashboard.DashboardStats, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data.Stats, nil
}

// Executions returns fixture executions, newest first.
func (c *MockClient) Executions(_ context.Context, query dashboard.ExecutionQuery) ([]dashboard.Execution, error) {
	list := c.executions()
	if query.WorkflowID != "" {
		list = dashboard.ExecutionsFor(list, query.WorkflowID)
	}
	return limit(list, query.Limit, dashboard.DefaultExecutionLimit), nil
}

// RecentExecutions returns the newest fixture executions.
func (c *MockClient) RecentExecutions(_ context.Context, n int) ([]dashboard.Execution, error) {
	return limit(c.executions(), n, dashboard.DefaultRecentLimit), nil
}

func (c *MockClient) Execute(_ context.Context, workflowID string) (dashboard.ActionResult, error) {
	if _, err := c.find(workflowID); err != nil {
		return dashboard.ActionResult{}, err
	}
	return dashboard.ActionResult{
		Success:     true,
		Message:     fmt.Sprintf("Workflow %s executed", workflowID),
		ExecutionID: fmt.Sprintf("mock-%s-%d", workflowID, c.now().Unix()),
	}, nil
}

func (c *MockClient) Activate(_ context.Context, workflowID string) (dashboard.ActionResult, error) {
	return c.setStatus(workflowID, dashboard.WorkflowActive, "activated")
}

func (c *MockClient) Deactivate(_ context.Context, workflowID string) (dashboard.ActionResult, error) {
	return c.setStatus(workflowID, dashboard.WorkflowInactive, "deactivated")
}

func (c *MockClient) Sync(context.Context) (dashboard.ActionResult, error) {
	c.mu.RLock()
	n := len(c.data.Workflows)
	c.mu.RUnlock()
	return dashboard.ActionResult{Success: true, Message: fmt.Sprintf("Synced %d workflows", n)}, nil
}

func (c *MockClient) find(workflowID string) (int, error) {
	if workflowID == "" {
		return -1, dashboard.ErrWorkflowIDRequired
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i, w := range c.data.Workflows {
		if w.ID == workflowID {
			return i, nil
		}
	}
	return -1, &StatusError{Method: "MOCK", Path: "/api/workflows/" + workflowID, StatusCode: 404, Body: "workflow not found"}
}

func (c *MockClient) setStatus(workflowID string, status dashboard.WorkflowStatus, verb string) (dashboard.ActionResult, error) {
	idx, err := c.find(workflowID)
	if err != nil {
		return dashboard.ActionResult{}, err
	}
	c.mu.Lock()
	c.data.Workflows[idx].Status = status
	c.data.Workflows[idx].UpdatedAt = c.now()
	c.mu.Unlock()
	return dashboard.ActionResult{Success: true, Message: fmt.Sprintf("Workflow %s %s", workflowID, verb)}, nil
}

func (c *MockClient) executions() []dashboard.Execution {
	c.mu.RLock()
	defer c.mu.RUnlock()
	now := c.now()
	out := make([]dashboard.Execution, len(c.data.Executions))
	for i, f := range c.data.Executions {
		out[i] = f.at(now)
	}
	return out
}

func matchesQuery(w dashboard.Workflow, query dashboard.WorkflowQuery) bool {
	if query.Category != "" && query.Category != dashboard.FilterAll && !strings.EqualFold(w.Category, query.Category) {
		return false
	}
	if query.Status != "" && query.Status != dashboard.FilterAll && string(w.Status) != query.Status {
		return false
	}
	return true
}

func cloneWorkflow(w dashboard.Workflow) dashboard.Workflow {
	w.Triggers = append([]string(nil), w.Triggers...)
	w.Actions = append([]string(nil), w.Actions...)
	if w.LastExecution != nil {
		last := *w.LastExecution
		w.LastExecution = &last
	}
	return w
}

func limit(list []dashboard.Execution, n, fallback int) []dashboard.Execution {
	if n <= 0 {
		n = fallback
	}
	if len(list) > n {
		return list[:n]
	}
	return list
}
