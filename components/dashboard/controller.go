package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Template names rendered by the controller.
const (
	DashboardTemplate = "dashboard.html"
	WorkflowsTemplate = "workflows.html"
	ErrorTemplate     = "error.html"
)

// DashboardReader is the subset of Service the controller depends on.
type DashboardReader interface {
	Dashboard(ctx context.Context) (Overview, error)
	Workflows(ctx context.Context, filter WorkflowFilter, sort SortKey) ([]Workflow, error)
	HourlyRate() float64
}

// ControllerOptions wires dependencies into the controller.
type ControllerOptions struct {
	Service  DashboardReader
	Renderer Renderer
	Charts   *ChartRenderer
	Locale   string
	Title    string
	// BasePath prefixes every link and form action the templates emit.
	BasePath string
}

// Controller builds page view models and renders them through templates.
type Controller struct {
	opts ControllerOptions
}

// NewController constructs a controller.
func NewController(opts ControllerOptions) *Controller {
	opts.Locale = NormalizeLocale(opts.Locale)
	if opts.Locale == "" {
		opts.Locale = DefaultLocale
	}
	if opts.Title == "" {
		opts.Title = "Automation Dashboard"
	}
	opts.BasePath = normalizeBasePath(opts.BasePath)
	return &Controller{opts: opts}
}

// WithLocale returns a controller sharing dependencies but formatting dates for locale.
func (c *Controller) WithLocale(locale string) *Controller {
	locale = NormalizeLocale(locale)
	if locale == "" || locale == c.opts.Locale {
		return c
	}
	opts := c.opts
	opts.Locale = locale
	return &Controller{opts: opts}
}

// Locale returns the locale used for date formatting.
func (c *Controller) Locale() string {
	return c.opts.Locale
}

// BasePath returns the mount prefix, empty when mounted at the root.
func (c *Controller) BasePath() string {
	return c.opts.BasePath
}

// WorkflowCard is a formatted workflow for templates.
type WorkflowCard struct {
	Workflow
	Active        bool
	Slug          string
	Icon          string
	StatusClass   string
	LastRun       string
	AvgDuration   string
	ROI           float64
	ROILabel      string
	TimeSavedText string
}

// ExecutionRow is a formatted execution for templates.
type ExecutionRow struct {
	Execution
	StatusClass  string
	Started      string
	DurationText string
	ErrorText    string
}

// WorkflowPageParams carries the list page query parameters.
type WorkflowPageParams struct {
	Search   string
	Status   string
	Category string
	Sort     string
}

// Filter converts page params into a WorkflowFilter.
func (p WorkflowPageParams) Filter() WorkflowFilter {
	return WorkflowFilter{
		Search:   strings.TrimSpace(p.Search),
		Status:   p.Status,
		Category: p.Category,
	}
}

// DashboardView builds the template data for the overview page.
func (c *Controller) DashboardView(ctx context.Context) (map[string]any, error) {
	if c.opts.Service == nil {
		return nil, ErrSourceNotConfigured
	}
	overview, err := c.opts.Service.Dashboard(ctx)
	if err != nil {
		return nil, err
	}
	rate := c.opts.Service.HourlyRate()
	top := make([]WorkflowCard, len(overview.TopWorkflows))
	for i, w := range overview.TopWorkflows {
		top[i] = c.card(w, rate)
	}
	recent := make([]ExecutionRow, len(overview.Recent))
	for i, e := range overview.Recent {
		recent[i] = c.row(e)
	}
	data := map[string]any{
		"title":        c.opts.Title,
		"locale":       c.opts.Locale,
		"base_path":    c.opts.BasePath,
		"overview":     overview,
		"stats":        overview.Stats,
		"top":          top,
		"recent":       recent,
		"categories":   overview.Categories,
		"status":       overview.Status,
		"roi_today":    formatMoney(overview.ROIToday),
		"total_roi":    formatMoney(overview.Stats.TotalROI),
		"generated_at": FormatDate(overview.GeneratedAt, c.opts.Locale),
	}
	if c.opts.Charts != nil {
		c.attachChart(data, "trend_chart", func() (string, error) {
			return c.opts.Charts.ExecutionTrend(overview.Chart)
		})
	}
	return data, nil
}

// WorkflowsView builds the template data for the workflow list page.
func (c *Controller) WorkflowsView(ctx context.Context, params WorkflowPageParams) (map[string]any, error) {
	if c.opts.Service == nil {
		return nil, ErrSourceNotConfigured
	}
	all, err := c.opts.Service.Workflows(ctx, WorkflowFilter{}, SortByExecutions)
	if err != nil {
		return nil, err
	}
	sortKey := ParseSortKey(params.Sort)
	visible := ApplyView(all, params.Filter(), sortKey)
	rate := c.opts.Service.HourlyRate()
	cards := make([]WorkflowCard, len(visible))
	for i, w := range visible {
		cards[i] = c.card(w, rate)
	}
	summary := Summarize(visible, rate)
	data := map[string]any{
		"title":       c.opts.Title,
		"locale":      c.opts.Locale,
		"base_path":   c.opts.BasePath,
		"workflows":   cards,
		"summary":     summary,
		"total_roi":   formatMoney(summary.TotalROI),
		"avg_success": fmt.Sprintf("%.1f", summary.AvgSuccessRate),
		"categories":  Categories(all),
		"statuses":    []string{string(WorkflowActive), string(WorkflowInactive), string(WorkflowError)},
		"sort_keys":   []string{string(SortByExecutions), string(SortByName), string(SortBySuccess), string(SortByLastExecution)},
		"params": map[string]string{
			"search":   params.Search,
			"status":   orAll(params.Status),
			"category": orAll(params.Category),
			"sort":     string(sortKey),
		},
		"empty": len(cards) == 0,
	}
	if c.opts.Charts != nil {
		c.attachChart(data, "status_chart", func() (string, error) {
			return c.opts.Charts.StatusBreakdown(visible)
		})
		c.attachChart(data, "category_chart", func() (string, error) {
			return c.opts.Charts.CategoryExecutions(visible)
		})
	}
	return data, nil
}

// ErrorView builds the full-screen retry prompt data.
func (c *Controller) ErrorView(err error, retry Resource) map[string]any {
	message := "unknown error"
	if err != nil {
		message = err.Error()
	}
	if retry == "" {
		retry = ResourceStats
	}
	return map[string]any{
		"title":     c.opts.Title,
		"locale":    c.opts.Locale,
		"base_path": c.opts.BasePath,
		"error":     message,
		"retry_url": c.opts.BasePath + "/revalidate/" + string(retry),
	}
}

// RenderDashboard writes the overview page, or the error page when the
// required data is unavailable.
func (c *Controller) RenderDashboard(ctx context.Context, out io.Writer) error {
	data, err := c.DashboardView(ctx)
	if err != nil {
		return c.renderError(err, ResourceStats, out)
	}
	return c.render(DashboardTemplate, data, out)
}

// RenderWorkflows writes the workflow list page.
func (c *Controller) RenderWorkflows(ctx context.Context, params WorkflowPageParams, out io.Writer) error {
	data, err := c.WorkflowsView(ctx, params)
	if err != nil {
		return c.renderError(err, ResourceWorkflows, out)
	}
	return c.render(WorkflowsTemplate, data, out)
}

func (c *Controller) renderError(cause error, retry Resource, out io.Writer) error {
	if errors.Is(cause, ErrSourceNotConfigured) {
		return cause
	}
	return c.render(ErrorTemplate, c.ErrorView(cause, retry), out)
}

func (c *Controller) render(name string, data map[string]any, out io.Writer) error {
	if c.opts.Renderer == nil {
		return errors.New("dashboard: renderer not configured")
	}
	if _, err := c.opts.Renderer.Render(name, data, out); err != nil {
		return fmt.Errorf("dashboard: render %s: %w", name, err)
	}
	return nil
}

// attachChart stores rendered chart HTML; a chart failure leaves the slot empty.
func (c *Controller) attachChart(data map[string]any, key string, render func() (string, error)) {
	html, err := render()
	if err != nil {
		data[key+"_error"] = err.Error()
		return
	}
	data[key] = html
}

func (c *Controller) card(w Workflow, rate float64) WorkflowCard {
	roi := CalculateROI(w.TimeSavedHours, rate)
	last := "-"
	if w.LastExecution != nil {
		last = FormatDate(*w.LastExecution, c.opts.Locale)
	}
	return WorkflowCard{
		Workflow:      w,
		Active:        w.Status == WorkflowActive,
		Slug:          CategorySlug(w.Category),
		Icon:          CategoryIcon(w.Category),
		StatusClass:   StatusColor(string(w.Status)),
		LastRun:       last,
		AvgDuration:   FormatDuration(w.AvgExecutionTime),
		ROI:           roi,
		ROILabel:      formatMoney(roi),
		TimeSavedText: fmt.Sprintf("%.1fh", w.TimeSavedHours),
	}
}

func (c *Controller) row(e Execution) ExecutionRow {
	duration := "-"
	if e.Duration != nil {
		duration = FormatDuration(*e.Duration)
	}
	return ExecutionRow{
		Execution:    e,
		StatusClass:  StatusColor(string(e.Status)),
		Started:      FormatDate(e.StartTime, c.opts.Locale),
		DurationText: duration,
		ErrorText:    e.FailureMessage(),
	}
}

func formatMoney(v float64) string {
	whole := fmt.Sprintf("%.0f", v)
	negative := strings.HasPrefix(whole, "-")
	whole = strings.TrimPrefix(whole, "-")
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if negative {
		return "-$" + b.String()
	}
	return "$" + b.String()
}

// normalizeBasePath returns "/admin" style prefixes and "" for the root.
func normalizeBasePath(base string) string {
	base = strings.Trim(strings.TrimSpace(base), "/")
	if base == "" {
		return ""
	}
	return "/" + base
}

func orAll(value string) string {
	if value == "" {
		return FilterAll
	}
	return value
}
