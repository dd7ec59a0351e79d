package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-flowdash/components/dashboard/gorouter"
	"github.com/goliatone/go-flowdash/pkg/backend"
	dashboardpkg "github.com/goliatone/go-flowdash/pkg/dashboard"
	"github.com/goliatone/go-flowdash/pkg/n8n"
	"github.com/goliatone/go-flowdash/pkg/store"
)

const shutdownTimeout = 5 * time.Second

type serveCmd struct {
	Addr string `help:"Listen address (overrides dashboard.addr)."`
}

func (c *serveCmd) Run(ctx context.Context, rt *runtime) error {
	addr := rt.cfg.Dashboard.Addr
	if c.Addr != "" {
		addr = c.Addr
	}
	app, err := dashboardpkg.New(rt.cfg, rt.logger)
	if err != nil {
		return err
	}
	server := router.NewFiberAdapter()
	if err := gorouter.Register(gorouter.Config[*fiber.App]{
		Router:     server.Router(),
		Controller: app.Controller,
		API:        app.Executor,
		Broadcast:  app.Broadcast,
		BasePath:   rt.cfg.Dashboard.BasePath,
	}); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.Run(gctx)
	})
	g.Go(func() error {
		rt.logger.Info("dashboard listening",
			slog.String("addr", addr),
			slog.Bool("offline", rt.cfg.Dashboard.Offline),
			slog.String("api", rt.cfg.API.BaseURL),
		)
		return server.Serve(addr)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

type apiCmd struct {
	Addr     string `help:"Listen address (overrides backend.addr)."`
	Database string `type:"path" help:"SQLite database path (overrides backend.database)."`
	NoSeed   bool   `name:"no-seed" help:"Skip sample data on an empty database."`
}

func (c *apiCmd) Run(ctx context.Context, rt *runtime) error {
	cfg := rt.cfg.Backend
	if c.Addr != "" {
		cfg.Addr = c.Addr
	}
	if c.Database != "" {
		cfg.Database = c.Database
	}
	st, err := store.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	if cfg.Seed && !c.NoSeed {
		seeded, err := st.Seed(ctx, nil)
		if err != nil {
			return err
		}
		if seeded {
			rt.logger.Info("seeded sample workflows", slog.String("database", cfg.Database))
		}
	}

	engine := n8n.New(n8n.Config{
		BaseURL:    rt.cfg.N8N.BaseURL,
		APIKey:     rt.cfg.N8N.APIKey,
		HTTPClient: &http.Client{Timeout: rt.cfg.N8N.Timeout},
		Logger:     rt.logger.With(slog.String("component", "n8n")),
	})
	srv, err := backend.New(backend.Config{
		Store:           st,
		Engine:          engine,
		Logger:          rt.logger.With(slog.String("component", "backend")),
		FrontendOrigins: cfg.FrontendOrigins,
		SyncSchedule:    cfg.SyncSchedule,
	})
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.StartScheduler(gctx)
	})
	g.Go(func() error {
		return srv.ListenAndServe(gctx, cfg.Addr)
	})
	return g.Wait()
}
