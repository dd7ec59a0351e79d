package store

import (
	"context"
	"database/sql"
	"fmt"

	dashboard "github.com/goliatone/go-flowdash/components/dashboard"
)

const executionColumns = `id, workflow_id, workflow_name, n8n_execution_id, status, start_time,
	end_time, duration, triggered_by, data_processed, error_message`

// Executions lists executions newest first. A limit <= 0 uses the default of 50.
func (s *Store) Executions(ctx context.Context, query dashboard.ExecutionQuery) ([]dashboard.Execution, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = dashboard.DefaultExecutionLimit
	}
	stmt := "SELECT " + executionColumns + " FROM executions"
	args := []any{}
	if query.WorkflowID != "" {
		stmt += " WHERE workflow_id = ?"
		args = append(args, query.WorkflowID)
	}
	stmt += " ORDER BY start_time DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list executions: %w", err)
	}
	defer rows.Close()

	out := []dashboard.Execution{}
	for rows.Next() {
		e, err := scanExecution(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// RecordExecution stores e and bumps the owning workflow's counters.
func (s *Store) RecordExecution(ctx context.Context, e dashboard.Execution) error {
	if e.WorkflowID == "" {
		return dashboard.ErrWorkflowIDRequired
	}
	if e.StartTime.IsZero() {
		e.StartTime = s.now()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback()

	if err := insertExecution(ctx, tx, e); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `
		UPDATE workflows SET
			total_executions = total_executions + 1,
			last_execution = ?,
			updated_at = ?
		WHERE id = ?`,
		formatTime(e.StartTime), formatTime(s.now()), e.WorkflowID)
	if err != nil {
		return fmt.Errorf("store: bump workflow %s: %w", e.WorkflowID, err)
	}
	if err := requireAffected(res, e.WorkflowID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit execution %s: %w", e.ID, err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertExecution(ctx context.Context, db execer, e dashboard.Execution) error {
	var errMsg any
	if e.ErrorMessage != nil {
		errMsg = *e.ErrorMessage
	}
	var duration any
	if e.Duration != nil {
		duration = *e.Duration
	}
	triggeredBy := e.TriggeredBy
	if triggeredBy == "" {
		triggeredBy = "manual"
	}
	_, err := db.ExecContext(ctx, `INSERT INTO executions (`+executionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.WorkflowID, e.WorkflowName, nullString(e.N8NExecutionID), string(e.Status),
		formatTime(e.StartTime), nullTime(e.EndTime), duration, triggeredBy, e.DataProcessed, errMsg)
	if err != nil {
		return fmt.Errorf("store: insert execution %s: %w", e.ID, err)
	}
	return nil
}

func scanExecution(row rowScanner) (dashboard.Execution, error) {
	var (
		e                 dashboard.Execution
		n8nID, end, errMs sql.NullString
		status, start     string
		duration          sql.NullFloat64
	)
	if err := row.Scan(&e.ID, &e.WorkflowID, &e.WorkflowName, &n8nID, &status, &start,
		&end, &duration, &e.TriggeredBy, &e.DataProcessed, &errMs); err != nil {
		return dashboard.Execution{}, fmt.Errorf("store: scan execution: %w", err)
	}
	var err error
	e.N8NExecutionID = n8nID.String
	e.Status = dashboard.ExecutionStatus(status)
	if e.StartTime, err = parseTime(start); err != nil {
		return dashboard.Execution{}, err
	}
	if e.EndTime, err = parseNullTime(end); err != nil {
		return dashboard.Execution{}, err
	}
	if duration.Valid {
		d := duration.Float64
		e.Duration = &d
	}
	if errMs.Valid {
		msg := errMs.String
		e.ErrorMessage = &msg
	}
	return e, nil
}
