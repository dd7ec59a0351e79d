package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	dashboard "github.com/goliatone/go-flowdash/components/dashboard"
)

const workflowColumns = `id, n8n_id, name, description, category, status, created_at, updated_at,
	last_execution, total_executions, success_rate, avg_execution_time, time_saved_hours, triggers, actions`

// Workflows lists workflows ordered by total executions, descending. Category
// matches case-insensitively; "all" or empty disables a filter.
func (s *Store) Workflows(ctx context.Context, query dashboard.WorkflowQuery) ([]dashboard.Workflow, error) {
	var (
		where []string
		args  []any
	)
	if query.Category != "" && query.Category != dashboard.FilterAll {
		where = append(where, "LOWER(category) = LOWER(?)")
		args = append(args, query.Category)
	}
	if query.Status != "" && query.Status != dashboard.FilterAll {
		where = append(where, "status = ?")
		args = append(args, query.Status)
	}
	stmt := "SELECT " + workflowColumns + " FROM workflows"
	if len(where) > 0 {
		stmt += " WHERE " + strings.Join(where, " AND ")
	}
	stmt += " ORDER BY total_executions DESC, id"

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list workflows: %w", err)
	}
	defer rows.Close()

	out := []dashboard.Workflow{}
	for rows.Next() {
		w, err := scanWorkflow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// Workflow loads one workflow by id.
func (s *Store) Workflow(ctx context.Context, id string) (dashboard.Workflow, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+workflowColumns+" FROM workflows WHERE id = ?", id)
	w, err := scanWorkflow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return dashboard.Workflow{}, fmt.Errorf("%w: workflow %s", ErrNotFound, id)
	}
	return w, err
}

// WorkflowByN8NID finds the workflow bridged to an n8n workflow id.
func (s *Store) WorkflowByN8NID(ctx context.Context, n8nID string) (dashboard.Workflow, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+workflowColumns+" FROM workflows WHERE n8n_id = ? LIMIT 1", n8nID)
	w, err := scanWorkflow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return dashboard.Workflow{}, fmt.Errorf("%w: n8n workflow %s", ErrNotFound, n8nID)
	}
	return w, err
}

// SetWorkflowStatus updates the status of a workflow.
func (s *Store) SetWorkflowStatus(ctx context.Context, id string, status dashboard.WorkflowStatus) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE workflows SET status = ?, updated_at = ? WHERE id = ?",
		string(status), formatTime(s.now()), id)
	if err != nil {
		return fmt.Errorf("store: set status %s: %w", id, err)
	}
	return requireAffected(res, id)
}

// UpsertWorkflow inserts w or refreshes the fields an n8n sync owns:
// name, status and n8n id. Counters and metrics are kept.
func (s *Store) UpsertWorkflow(ctx context.Context, w dashboard.Workflow) error {
	if w.ID == "" {
		return dashboard.ErrWorkflowIDRequired
	}
	now := s.now()
	if w.CreatedAt.IsZero() {
		w.CreatedAt = now
	}
	if w.UpdatedAt.IsZero() {
		w.UpdatedAt = now
	}
	if w.Category == "" {
		w.Category = "General"
	}
	if w.Status == "" {
		w.Status = dashboard.WorkflowInactive
	}
	triggers, err := encodeList(w.Triggers)
	if err != nil {
		return err
	}
	actions, err := encodeList(w.Actions)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO workflows (`+workflowColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			n8n_id = excluded.n8n_id,
			name = excluded.name,
			status = excluded.status,
			updated_at = excluded.updated_at`,
		w.ID, nullString(w.N8NID), w.Name, w.Description, w.Category, string(w.Status),
		formatTime(w.CreatedAt), formatTime(w.UpdatedAt), nullTime(w.LastExecution),
		w.TotalExecutions, w.SuccessRate, w.AvgExecutionTime, w.TimeSavedHours, triggers, actions)
	if err != nil {
		return fmt.Errorf("store: upsert workflow %s: %w", w.ID, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkflow(row rowScanner) (dashboard.Workflow, error) {
	var (
		w                    dashboard.Workflow
		n8nID, last          sql.NullString
		status               string
		created, updated     string
		triggers, actionList string
	)
	err := row.Scan(&w.ID, &n8nID, &w.Name, &w.Description, &w.Category, &status, &created, &updated,
		&last, &w.TotalExecutions, &w.SuccessRate, &w.AvgExecutionTime, &w.TimeSavedHours, &triggers, &actionList)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dashboard.Workflow{}, err
		}
		return dashboard.Workflow{}, fmt.Errorf("store: scan workflow: %w", err)
	}
	w.N8NID = n8nID.String
	w.Status = dashboard.WorkflowStatus(status)
	if w.CreatedAt, err = parseTime(created); err != nil {
		return dashboard.Workflow{}, err
	}
	if w.UpdatedAt, err = parseTime(updated); err != nil {
		return dashboard.Workflow{}, err
	}
	if w.LastExecution, err = parseNullTime(last); err != nil {
		return dashboard.Workflow{}, err
	}
	if err := json.Unmarshal([]byte(triggers), &w.Triggers); err != nil {
		return dashboard.Workflow{}, fmt.Errorf("store: decode triggers of %s: %w", w.ID, err)
	}
	if err := json.Unmarshal([]byte(actionList), &w.Actions); err != nil {
		return dashboard.Workflow{}, fmt.Errorf("store: decode actions of %s: %w", w.ID, err)
	}
	return w, nil
}

func encodeList(list []string) (string, error) {
	if list == nil {
		list = []string{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		return "", fmt.Errorf("store: encode list: %w", err)
	}
	return string(data), nil
}

func nullString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func requireAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: workflow %s", ErrNotFound, id)
	}
	return nil
}
