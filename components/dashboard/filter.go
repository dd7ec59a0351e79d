package dashboard

import (
	"math"
	"sort"
	"strings"
	"time"
)

// SortKey selects the ordering of the workflow list view.
type SortKey string

const (
	SortByName          SortKey = "name"
	SortByExecutions    SortKey = "executions"
	SortBySuccess       SortKey = "success"
	SortByLastExecution SortKey = "lastExecution"
)

// ParseSortKey maps user input to a SortKey, defaulting to SortByExecutions.
func ParseSortKey(value string) SortKey {
	switch SortKey(strings.TrimSpace(value)) {
	case SortByName:
		return SortByName
	case SortBySuccess:
		return SortBySuccess
	case SortByLastExecution:
		return SortByLastExecution
	default:
		return SortByExecutions
	}
}

// WorkflowFilter captures the list view controls. Empty or "all" values leave
// that dimension unconstrained.
type WorkflowFilter struct {
	Search   string
	Status   string
	Category string
}

// Matches reports whether a workflow passes every active constraint.
func (f WorkflowFilter) Matches(w Workflow) bool {
	if term := strings.ToLower(strings.TrimSpace(f.Search)); term != "" {
		if !strings.Contains(strings.ToLower(w.Name), term) &&
			!strings.Contains(strings.ToLower(w.Description), term) &&
			!strings.Contains(strings.ToLower(w.Category), term) {
			return false
		}
	}
	if active(f.Status) && string(w.Status) != f.Status {
		return false
	}
	if active(f.Category) && w.Category != f.Category {
		return false
	}
	return true
}

func active(value string) bool {
	return value != "" && value != FilterAll
}

// FilterWorkflows returns the workflows matching filter. The input is not modified.
func FilterWorkflows(workflows []Workflow, filter WorkflowFilter) []Workflow {
	out := make([]Workflow, 0, len(workflows))
	for _, w := range workflows {
		if filter.Matches(w) {
			out = append(out, w)
		}
	}
	return out
}

// SortWorkflows orders workflows in place using a stable comparator.
func SortWorkflows(workflows []Workflow, key SortKey) {
	sort.SliceStable(workflows, func(i, j int) bool {
		a, b := workflows[i], workflows[j]
		switch key {
		case SortByName:
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		case SortBySuccess:
			return a.SuccessRate > b.SuccessRate
		case SortByLastExecution:
			return lastExecution(a).After(lastExecution(b))
		default:
			return a.TotalExecutions > b.TotalExecutions
		}
	})
}

func lastExecution(w Workflow) time.Time {
	if w.LastExecution == nil {
		return time.Time{}
	}
	return *w.LastExecution
}

// ApplyView filters then sorts, returning a fresh slice.
func ApplyView(workflows []Workflow, filter WorkflowFilter, key SortKey) []Workflow {
	out := FilterWorkflows(workflows, filter)
	SortWorkflows(out, key)
	return out
}

// WorkflowSummary aggregates the visible workflows for the stat cards.
type WorkflowSummary struct {
	Count           int     `json:"count"`
	Active          int     `json:"active"`
	TotalExecutions int     `json:"total_executions"`
	AvgSuccessRate  float64 `json:"avg_success_rate"`
	TotalTimeSaved  float64 `json:"total_time_saved"`
	TotalROI        float64 `json:"total_roi"`
}

// Summarize computes counts and averages over workflows in a single pass.
func Summarize(workflows []Workflow, hourlyRate float64) WorkflowSummary {
	var summary WorkflowSummary
	var successSum float64
	for _, w := range workflows {
		summary.Count++
		if w.Status == WorkflowActive {
			summary.Active++
		}
		summary.TotalExecutions += w.TotalExecutions
		successSum += w.SuccessRate
		summary.TotalTimeSaved += w.TimeSavedHours
		summary.TotalROI += CalculateROI(w.TimeSavedHours, hourlyRate)
	}
	if summary.Count > 0 {
		summary.AvgSuccessRate = successSum / float64(summary.Count)
	}
	return summary
}

// Categories returns the distinct categories in first-seen order.
func Categories(workflows []Workflow) []string {
	seen := make(map[string]struct{}, len(workflows))
	out := []string{}
	for _, w := range workflows {
		if _, ok := seen[w.Category]; ok {
			continue
		}
		seen[w.Category] = struct{}{}
		out = append(out, w.Category)
	}
	return out
}

var categoryPalette = []string{"#3b82f6", "#10b981", "#8b5cf6", "#f59e0b", "#ef4444", "#06b6d4"}

// CategoryBreakdown counts workflows per category, colored from a fixed palette.
func CategoryBreakdown(workflows []Workflow) []WorkflowCategory {
	counts := map[string]int{}
	for _, w := range workflows {
		counts[w.Category]++
	}
	names := Categories(workflows)
	out := make([]WorkflowCategory, len(names))
	for i, name := range names {
		out[i] = WorkflowCategory{
			Name:  name,
			Count: counts[name],
			Color: categoryPalette[i%len(categoryPalette)],
		}
	}
	return out
}

// ExecutionsFor returns the executions belonging to a workflow, preserving order.
func ExecutionsFor(executions []Execution, workflowID string) []Execution {
	out := []Execution{}
	for _, e := range executions {
		if e.WorkflowID == workflowID {
			out = append(out, e)
		}
	}
	return out
}

// FilterExecutions keeps executions with the given status; "all" keeps everything.
func FilterExecutions(executions []Execution, status string) []Execution {
	out := make([]Execution, 0, len(executions))
	for _, e := range executions {
		if !active(status) || string(e.Status) == status {
			out = append(out, e)
		}
	}
	return out
}

// DailyChart buckets executions into the last `days` calendar days ending at now
// (oldest first). Time saved is attributed per successful run using the owning
// workflow's average saving per execution.
func DailyChart(executions []Execution, workflows []Workflow, days int, now time.Time) []ChartData {
	if days <= 0 {
		days = 7
	}
	savedPerRun := make(map[string]float64, len(workflows))
	for _, w := range workflows {
		if w.TotalExecutions > 0 {
			savedPerRun[w.ID] = w.TimeSavedHours / float64(w.TotalExecutions)
		}
	}
	start := truncateDay(now).AddDate(0, 0, -(days - 1))
	buckets := make([]ChartData, days)
	for i := range buckets {
		buckets[i].Date = start.AddDate(0, 0, i).Format(time.DateOnly)
	}
	for _, e := range executions {
		day := truncateDay(e.StartTime.In(now.Location()))
		idx := int(math.Round(day.Sub(start).Hours() / 24))
		if idx < 0 || idx >= days {
			continue
		}
		buckets[idx].Executions++
		switch e.Status {
		case ExecutionSuccess:
			buckets[idx].Successes++
			buckets[idx].TimeSaved += savedPerRun[e.WorkflowID]
		case ExecutionError:
			buckets[idx].Errors++
		}
	}
	for i := range buckets {
		buckets[i].TimeSaved = round1(buckets[i].TimeSaved)
	}
	return buckets
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
