package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ettle/strcase"
	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-flowdash/components/dashboard"
)

type column[T any] struct {
	name  string
	value func(T) any
}

func header(name string) string {
	return strings.ReplaceAll(strcase.ToSnake(name), "_", " ")
}

// renderList writes items as a table, or encodes them as-is for json/yaml.
func renderList[T any](w io.Writer, format string, items []T, cols []column[T]) error {
	if format != "table" {
		return encode(w, format, items)
	}
	if len(items) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	head := make(table.Row, len(cols))
	for i, col := range cols {
		head[i] = header(col.name)
	}
	t.AppendHeader(head)
	for _, item := range items {
		row := make(table.Row, len(cols))
		for i, col := range cols {
			row[i] = col.value(item)
		}
		t.AppendRow(row)
	}
	t.Render()
	return nil
}

// renderRecord writes a single value as a two-column field table.
func renderRecord(w io.Writer, format string, value any, fields [][2]any) error {
	if format != "table" {
		return encode(w, format, value)
	}
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	for _, f := range fields {
		t.AppendRow(table.Row{header(fmt.Sprint(f[0])), f[1]})
	}
	t.Render()
	return nil
}

func encode(w io.Writer, format string, value any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(value)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(value); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("flowdash: unknown output format %q", format)
	}
}

var workflowColumns = []column[dashboard.Workflow]{
	{"ID", func(w dashboard.Workflow) any { return w.ID }},
	{"Name", func(w dashboard.Workflow) any { return w.Name }},
	{"Category", func(w dashboard.Workflow) any { return w.Category }},
	{"Status", func(w dashboard.Workflow) any { return w.Status }},
	{"TotalExecutions", func(w dashboard.Workflow) any { return w.TotalExecutions }},
	{"SuccessRate", func(w dashboard.Workflow) any { return fmt.Sprintf("%.1f%%", w.SuccessRate) }},
	{"AvgDuration", func(w dashboard.Workflow) any { return dashboard.FormatDuration(w.AvgExecutionTime) }},
	{"TimeSaved", func(w dashboard.Workflow) any { return fmt.Sprintf("%.1fh", w.TimeSavedHours) }},
}

var executionColumns = []column[dashboard.Execution]{
	{"ID", func(e dashboard.Execution) any { return e.ID }},
	{"Workflow", func(e dashboard.Execution) any { return e.WorkflowName }},
	{"Status", func(e dashboard.Execution) any { return e.Status }},
	{"Started", func(e dashboard.Execution) any { return e.StartTime.Format("2006-01-02 15:04:05") }},
	{"Duration", func(e dashboard.Execution) any {
		if e.Duration == nil {
			return "-"
		}
		return dashboard.FormatDuration(*e.Duration)
	}},
	{"TriggeredBy", func(e dashboard.Execution) any { return e.TriggeredBy }},
	{"Error", func(e dashboard.Execution) any { return e.FailureMessage() }},
}

func statsFields(s dashboard.DashboardStats) [][2]any {
	return [][2]any{
		{"TotalWorkflows", s.TotalWorkflows},
		{"ActiveWorkflows", s.ActiveWorkflows},
		{"TotalExecutions", s.TotalExecutions},
		{"SuccessRate", fmt.Sprintf("%.1f%%", s.SuccessRate)},
		{"TotalTimeSaved", fmt.Sprintf("%.1fh", s.TotalTimeSaved)},
		{"TotalROI", fmt.Sprintf("$%.0f", s.TotalROI)},
		{"ExecutionsToday", s.ExecutionsToday},
		{"ErrorsToday", s.ErrorsToday},
	}
}

func resultFields(r dashboard.ActionResult) [][2]any {
	fields := [][2]any{
		{"Success", r.Success},
		{"Message", r.Message},
	}
	if r.ExecutionID != "" {
		fields = append(fields, [2]any{"ExecutionID", r.ExecutionID})
	}
	return fields
}
