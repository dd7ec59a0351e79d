// Package dashboard wires the flowdash dashboard stack from configuration.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	core "github.com/goliatone/go-flowdash/components/dashboard"
	"github.com/goliatone/go-flowdash/components/dashboard/httpapi"
	"github.com/goliatone/go-flowdash/pkg/automation"
	"github.com/goliatone/go-flowdash/pkg/config"
	"github.com/goliatone/go-flowdash/pkg/logging"
)

// Service exposes the underlying components/dashboard.Service type.
type Service = core.Service

// Options re-export for convenience.
type Options = core.Options

// NewService proxies to the internal constructor.
func NewService(opts Options) *Service {
	return core.NewService(opts)
}

// App bundles every collaborator the dashboard server needs.
type App struct {
	Source     core.Source
	Poller     *core.Poller
	Service    *core.Service
	Controller *core.Controller
	Executor   *httpapi.CommandExecutor
	Broadcast  *core.BroadcastHook
	Telemetry  core.Telemetry
}

// NewSource returns the automation client described by cfg: the fixture mock
// when offline, otherwise the HTTP client behind the mock fallback.
func NewSource(cfg *config.Config, logger *slog.Logger) (automation.Client, error) {
	mock, err := automation.NewDefaultMockClient()
	if err != nil {
		return nil, err
	}
	if cfg.Dashboard.Offline {
		return mock, nil
	}
	httpClient, err := automation.NewHTTPClient(automation.HTTPConfig{
		BaseURL:    cfg.API.BaseURL,
		APIKey:     cfg.API.APIKey,
		HTTPClient: &http.Client{Timeout: cfg.API.Timeout},
	})
	if err != nil {
		return nil, err
	}
	return automation.NewFallbackClient(httpClient, mock, logger), nil
}

// New builds the poller, service, controller and API executor. Templates are
// the embedded set; charts use the configured theme and assets host.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("dashboard: config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	source, err := NewSource(cfg, logger)
	if err != nil {
		return nil, err
	}
	renderer, err := core.NewTemplateRenderer()
	if err != nil {
		return nil, fmt.Errorf("dashboard: templates: %w", err)
	}

	telemetry := logging.NewSlogTelemetry(logger)
	broadcast := core.NewBroadcastHook()
	poller := core.NewPoller(core.PollerOptions{
		Source: source,
		Intervals: core.PollIntervals{
			Workflows:  cfg.Poll.Workflows,
			Stats:      cfg.Poll.Stats,
			Executions: cfg.Poll.Executions,
			Recent:     cfg.Poll.Recent,
		},
		ExecutionLimit: cfg.Poll.ExecutionLimit,
		RecentLimit:    cfg.Poll.RecentLimit,
		RefreshHook:    broadcast,
		Telemetry:      telemetry,
	})
	service := core.NewService(core.Options{
		Source:      source,
		Poller:      poller,
		RefreshHook: broadcast,
		Telemetry:   telemetry,
		HourlyRate:  cfg.Dashboard.HourlyRate,
		ChartDays:   cfg.Dashboard.ChartDays,
	})
	charts := core.NewChartRenderer(
		core.WithChartTheme(cfg.Dashboard.ChartTheme),
		core.WithChartAssetsHost(cfg.Dashboard.AssetsHost),
	)
	controller := core.NewController(core.ControllerOptions{
		Service:  service,
		Renderer: renderer,
		Charts:   charts,
		Locale:   cfg.Dashboard.Locale,
		Title:    cfg.Dashboard.Title,
		BasePath: cfg.Dashboard.BasePath,
	})
	return &App{
		Source:     source,
		Poller:     poller,
		Service:    service,
		Controller: controller,
		Executor:   httpapi.NewCommandExecutor(service, telemetry),
		Broadcast:  broadcast,
		Telemetry:  telemetry,
	}, nil
}

// Run polls every resource until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	return a.Poller.Start(ctx)
}
