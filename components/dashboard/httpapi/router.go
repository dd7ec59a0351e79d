package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Mount registers the JSON endpoints and actions on a chi router, using the
// same paths the go-router integration serves.
func (h *Handlers) Mount(r chi.Router) {
	r.Get("/api/dashboard", h.HandleOverview)
	r.Get("/api/workflows", h.HandleWorkflows)
	r.Get("/api/stats", h.HandleStats)
	r.Get("/api/status", h.HandleStatus)
	r.Get("/api/executions", h.HandleExecutions)
	r.Get("/api/executions/recent", h.HandleRecent)
	r.Post("/workflows/{id}/{action}", func(w http.ResponseWriter, r *http.Request) {
		h.HandleWorkflowAction(w, r, chi.URLParam(r, "action"), chi.URLParam(r, "id"))
	})
	r.Post("/sync", h.HandleSync)
	r.Post("/revalidate/{resource}", func(w http.ResponseWriter, r *http.Request) {
		h.HandleRevalidate(w, r, chi.URLParam(r, "resource"))
	})
}

// NewRouter returns a chi router serving the handlers under basePath.
func NewRouter(h *Handlers, basePath string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	if basePath == "" || basePath == "/" {
		h.Mount(r)
		return r
	}
	r.Route(basePath, h.Mount)
	return r
}
