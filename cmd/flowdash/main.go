package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/goliatone/go-flowdash/pkg/config"
	"github.com/goliatone/go-flowdash/pkg/logging"
)

type cli struct {
	Config   string `short:"c" type:"path" help:"Path to a flowdash YAML config file (defaults to ./flowdash.yaml when present)."`
	LogLevel string `name:"log-level" help:"Override the configured log level (debug, info, warn, error)."`
	Offline  bool   `help:"Serve fixture data instead of calling the automation API."`
	Output   string `short:"o" default:"table" enum:"table,json,yaml" help:"Output format for client commands (table, json, yaml)."`

	Serve      serveCmd      `cmd:"" help:"Run the dashboard web server and poller."`
	API        apiCmd        `cmd:"" name:"api" help:"Run the automation REST backend (SQLite + n8n bridge)."`
	Workflows  workflowsCmd  `cmd:"" help:"List workflows with filters and sorting."`
	Stats      statsCmd      `cmd:"" help:"Show dashboard statistics."`
	Executions executionsCmd `cmd:"" help:"List executions, newest first."`
	Recent     recentCmd     `cmd:"" help:"List the most recent executions."`
	Execute    executeCmd    `cmd:"" help:"Trigger a workflow run."`
	Activate   activateCmd   `cmd:"" help:"Activate a workflow."`
	Deactivate deactivateCmd `cmd:"" help:"Deactivate a workflow."`
	Sync       syncCmd       `cmd:"" help:"Ask the backend to sync workflows from n8n."`
}

// runtime carries the resolved configuration into every command.
type runtime struct {
	cfg    *config.Config
	logger *slog.Logger
	out    io.Writer
	format string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var app cli
	kctx := kong.Parse(&app,
		kong.Name("flowdash"),
		kong.Description("Workflow automation dashboard, backend and client."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
	rt, err := app.runtime()
	kctx.FatalIfErrorf(err)
	err = kctx.Run(rt)
	kctx.FatalIfErrorf(err)
}

func (c *cli) runtime() (*runtime, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}
	if c.LogLevel != "" {
		cfg.Log.Level = c.LogLevel
	}
	if c.Offline {
		cfg.Dashboard.Offline = true
	}
	return &runtime{
		cfg:    cfg,
		logger: logging.Setup(cfg.Log.Level, cfg.Log.NoColor),
		out:    os.Stdout,
		format: c.Output,
	}, nil
}
