// Package backend serves the workflow automation REST API consumed by the dashboard.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/robfig/cron/v3"
	"github.com/rs/cors"

	dashboard "github.com/goliatone/go-flowdash/components/dashboard"
	"github.com/goliatone/go-flowdash/pkg/n8n"
	"github.com/goliatone/go-flowdash/pkg/store"
)

// Version is reported by the service info endpoint.
const Version = "1.0.0"

// Engine is the subset of the n8n client the backend drives.
type Engine interface {
	Workflows(ctx context.Context) ([]n8n.Workflow, error)
	Execute(ctx context.Context, id string) (json.RawMessage, error)
	Activate(ctx context.Context, id string) (json.RawMessage, error)
	Deactivate(ctx context.Context, id string) (json.RawMessage, error)
}

// Config wires the backend dependencies.
type Config struct {
	Store           *store.Store
	Engine          Engine
	Events          *dashboard.BroadcastHook
	Logger          *slog.Logger
	FrontendOrigins []string
	// SyncSchedule is a cron spec ("@every 15m", "0 * * * *"); empty disables scheduled syncs.
	SyncSchedule string
	Now          func() time.Time
	NewID        func() string
}

// Server exposes workflows and executions over HTTP.
type Server struct {
	cfg     Config
	handler http.Handler
}

// New validates cfg and builds the router.
func New(cfg Config) (*Server, error) {
	if cfg.Store == nil {
		return nil, errors.New("backend: store is required")
	}
	if cfg.Engine == nil {
		return nil, errors.New("backend: engine is required")
	}
	if cfg.Events == nil {
		cfg.Events = dashboard.NewBroadcastHook()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = newExecutionID
	}
	s := &Server{cfg: cfg}
	s.handler = s.routes()
	return s, nil
}

// Handler returns the CORS-wrapped router.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Events returns the hook that fans out execution and sync events.
func (s *Server) Events() *dashboard.BroadcastHook {
	return s.cfg.Events
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleInfo)
	r.Get("/health", s.handleHealth)

	r.Route("/api/workflows", func(r chi.Router) {
		r.Get("/", s.handleWorkflows)
		r.Get("/stats", s.handleStats)
		r.Get("/sync", s.handleSync)
		r.Post("/{id}/execute", s.handleExecute)
		r.Patch("/{id}/activate", s.handleActivate)
		r.Patch("/{id}/deactivate", s.handleDeactivate)
	})
	r.Route("/api/executions", func(r chi.Router) {
		r.Get("/", s.handleExecutions)
		r.Get("/recent", s.handleRecent)
	})
	r.Get("/api/events", s.cfg.Events.ServeSSE)
	r.Get("/api/ws", s.cfg.Events.ServeWebSocket)

	c := cors.New(cors.Options{
		AllowedOrigins:   s.cfg.FrontendOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	return c.Handler(r)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.cfg.Logger.Debug("backend request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("elapsed", time.Since(start)),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// StartScheduler runs scheduled syncs until ctx is done. It returns
// immediately when no schedule is configured.
func (s *Server) StartScheduler(ctx context.Context) error {
	if s.cfg.SyncSchedule == "" {
		return nil
	}
	scheduler := cron.New()
	_, err := scheduler.AddFunc(s.cfg.SyncSchedule, func() {
		n, err := s.Sync(ctx)
		if err != nil {
			s.cfg.Logger.Error("scheduled sync failed", slog.Any("error", err))
			return
		}
		s.cfg.Logger.Info("scheduled sync", slog.Int("workflows", n))
	})
	if err != nil {
		return err
	}
	scheduler.Start()
	<-ctx.Done()
	<-scheduler.Stop().Done()
	return nil
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.cfg.Logger.Info("backend listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
