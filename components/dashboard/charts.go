package dashboard

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const defaultChartHeight = "320px"

// ChartRendererOption customizes chart rendering.
type ChartRendererOption func(*ChartRenderer)

// WithRenderCache injects a render cache.
func WithRenderCache(cache RenderCache) ChartRendererOption {
	return func(r *ChartRenderer) {
		r.cache = cache
	}
}

// WithChartTheme sets the echarts theme (defaults to Westeros).
func WithChartTheme(theme string) ChartRendererOption {
	return func(r *ChartRenderer) {
		if theme != "" {
			r.theme = theme
		}
	}
}

// WithChartAssetsHost rewrites the assets host so the ECharts runtime loads
// from a CDN or a self-hosted path.
func WithChartAssetsHost(host string) ChartRendererOption {
	return func(r *ChartRenderer) {
		r.assetsHost = host
	}
}

// ChartRenderer renders the dashboard charts to embeddable HTML.
type ChartRenderer struct {
	cache      RenderCache
	theme      string
	assetsHost string
}

// NewChartRenderer builds a renderer with a five minute render cache.
func NewChartRenderer(options ...ChartRendererOption) *ChartRenderer {
	r := &ChartRenderer{
		cache: NewRenderCache(5 * time.Minute),
		theme: types.ThemeWesteros,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// ExecutionTrend renders the daily executions/successes/errors line chart.
func (r *ChartRenderer) ExecutionTrend(data []ChartData) (string, error) {
	return r.cached("trend", data, func() (string, error) {
		dates := make([]string, len(data))
		executions := make([]opts.LineData, len(data))
		successes := make([]opts.LineData, len(data))
		failures := make([]opts.LineData, len(data))
		for i, day := range data {
			dates[i] = day.Date
			executions[i] = opts.LineData{Name: day.Date, Value: day.Executions}
			successes[i] = opts.LineData{Name: day.Date, Value: day.Successes}
			failures[i] = opts.LineData{Name: day.Date, Value: day.Errors}
		}
		line := charts.NewLine()
		line.SetGlobalOptions(r.globalOptions("Executions", "Last days")...)
		line.SetXAxis(dates).
			AddSeries("Executions", executions).
			AddSeries("Successes", successes).
			AddSeries("Errors", failures)
		line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
		return renderChart(line)
	})
}

// StatusBreakdown renders a pie of workflows per status.
func (r *ChartRenderer) StatusBreakdown(workflows []Workflow) (string, error) {
	counts := map[WorkflowStatus]int{}
	for _, w := range workflows {
		counts[w.Status]++
	}
	statuses := []WorkflowStatus{WorkflowActive, WorkflowInactive, WorkflowError}
	points := make([]opts.PieData, 0, len(statuses))
	for _, status := range statuses {
		if counts[status] == 0 {
			continue
		}
		points = append(points, opts.PieData{Name: string(status), Value: counts[status]})
	}
	return r.cached("status", counts, func() (string, error) {
		pie := charts.NewPie()
		pie.SetGlobalOptions(r.globalOptions("Workflow status", "")...)
		pie.AddSeries("Workflows", points)
		return renderChart(pie)
	})
}

// CategoryExecutions renders a bar of total executions per category, in the
// order categories first appear in workflows.
func (r *ChartRenderer) CategoryExecutions(workflows []Workflow) (string, error) {
	names := Categories(workflows)
	totals := map[string]int{}
	for _, w := range workflows {
		totals[w.Category] += w.TotalExecutions
	}
	bars := make([]opts.BarData, len(names))
	for i, name := range names {
		bars[i] = opts.BarData{Name: name, Value: totals[name]}
	}
	return r.cached("categories", bars, func() (string, error) {
		bar := charts.NewBar()
		bar.SetGlobalOptions(r.globalOptions("Executions by category", "")...)
		bar.SetXAxis(names).AddSeries("Executions", bars)
		return renderChart(bar)
	})
}

func (r *ChartRenderer) cached(kind string, data any, render func() (string, error)) (string, error) {
	if r.cache == nil {
		return render()
	}
	key := fmt.Sprintf("%s:%s:%s", kind, r.theme, contentHash(data))
	return r.cache.GetOrRender(key, render)
}

func (r *ChartRenderer) globalOptions(title, subtitle string) []charts.GlobalOpts {
	initOpts := opts.Initialization{
		Theme:  r.theme,
		Width:  "100%",
		Height: defaultChartHeight,
	}
	if r.assetsHost != "" {
		initOpts.AssetsHost = r.assetsHost
	}
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithInitializationOpts(initOpts),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	}
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
