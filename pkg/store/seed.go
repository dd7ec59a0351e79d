package store

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	dashboard "github.com/goliatone/go-flowdash/components/dashboard"
)

// SeedExecutions is how many sample executions Seed generates.
const SeedExecutions = 50

// SampleWorkflows are inserted into an empty database.
func SampleWorkflows() []dashboard.Workflow {
	return []dashboard.Workflow{
		{
			ID: "wf-001", N8NID: "1", Name: "E-commerce Order Processing",
			Description: "Automates order processing from Shopify through to the inventory system",
			Category:    "E-commerce", Status: dashboard.WorkflowActive,
			TotalExecutions: 1247, SuccessRate: 98.5, AvgExecutionTime: 2340, TimeSavedHours: 156.2,
			Triggers: []string{"Shopify Webhook", "Schedule"},
			Actions:  []string{"Update Inventory", "Send Email", "Create Invoice"},
		},
		{
			ID: "wf-002", N8NID: "2", Name: "Lead Qualification System",
			Description: "Scores incoming leads and routes them to the right sales rep",
			Category:    "Sales", Status: dashboard.WorkflowActive,
			TotalExecutions: 892, SuccessRate: 96.8, AvgExecutionTime: 1890, TimeSavedHours: 89.3,
			Triggers: []string{"Form Submission", "CRM Update"},
			Actions:  []string{"Score Lead", "Assign Sales Rep", "Send Notification"},
		},
		{
			ID: "wf-003", N8NID: "3", Name: "Social Media Content Sync",
			Description: "Syncs published content across social platforms",
			Category:    "Marketing", Status: dashboard.WorkflowError,
			TotalExecutions: 445, SuccessRate: 94.2, AvgExecutionTime: 3200, TimeSavedHours: 67.8,
			Triggers: []string{"Content Published", "Schedule"},
			Actions:  []string{"Post to Twitter", "Post to LinkedIn", "Update Analytics"},
		},
	}
}

var seedTriggers = []string{"Webhook", "Schedule", "Manual"}

// Seed fills an empty database with the sample workflows and random
// executions spread over the last 30 days. It is a no-op when workflows exist.
func (s *Store) Seed(ctx context.Context, rng *rand.Rand) (bool, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM workflows").Scan(&count); err != nil {
		return false, fmt.Errorf("store: count workflows: %w", err)
	}
	if count > 0 {
		return false, nil
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	workflows := SampleWorkflows()
	for _, w := range workflows {
		if err := s.UpsertWorkflow(ctx, w); err != nil {
			return false, err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("store: begin seed: %w", err)
	}
	defer tx.Rollback()

	now := s.now()
	for i := range SeedExecutions {
		if err := insertExecution(ctx, tx, sampleExecution(rng, workflows, i+1, now)); err != nil {
			return false, err
		}
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("store: commit seed: %w", err)
	}
	return true, nil
}

// sampleExecution succeeds 95% of the time; successes take 1-5s, failures 5-10s.
func sampleExecution(rng *rand.Rand, workflows []dashboard.Workflow, n int, now time.Time) dashboard.Execution {
	w := workflows[rng.IntN(len(workflows))]
	status := dashboard.ExecutionSuccess
	var duration float64
	if rng.IntN(100) < 95 {
		duration = float64(1000 + rng.IntN(4001))
	} else {
		status = dashboard.ExecutionError
		duration = float64(5000 + rng.IntN(5001))
	}
	start := now.AddDate(0, 0, -rng.IntN(31))
	end := start.Add(time.Duration(duration) * time.Millisecond)
	exec := dashboard.Execution{
		ID:             fmt.Sprintf("exec-%03d", n),
		WorkflowID:     w.ID,
		WorkflowName:   w.Name,
		N8NExecutionID: fmt.Sprintf("n8n-exec-%d", n),
		Status:         status,
		StartTime:      start,
		EndTime:        &end,
		Duration:       &duration,
		TriggeredBy:    seedTriggers[rng.IntN(len(seedTriggers))],
		DataProcessed:  1 + rng.IntN(20),
	}
	if status == dashboard.ExecutionError {
		msg := "API rate limit exceeded"
		exec.ErrorMessage = &msg
	}
	return exec
}
