package gorouter

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strings"

	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-flowdash/components/dashboard"
	"github.com/goliatone/go-flowdash/components/dashboard/httpapi"
)

// Config wires go-router with the flowdash controller, API and broadcast hook.
type Config[T any] struct {
	Router     router.Router[T]
	Controller *dashboard.Controller
	API        httpapi.Executor
	Broadcast  *dashboard.BroadcastHook
	BasePath   string
	Routes     RouteConfig
}

// RouteConfig customizes the relative paths used for dashboard endpoints.
type RouteConfig struct {
	Dashboard      string
	Workflows      string
	APIDashboard   string
	APIWorkflows   string
	APIStats       string
	APIExecutions  string
	APIRecent      string
	APIStatus      string
	WorkflowAction string
	Sync           string
	Revalidate     string
	WebSocket      string
}

// Register mounts pages, JSON endpoints, actions and the websocket on a go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Controller == nil {
		return errors.New("gorouter: controller is required")
	}
	routes := defaultRouteConfig(cfg.Routes)
	if cfg.BasePath == "" {
		cfg.BasePath = cfg.Controller.BasePath()
	}
	group := cfg.Router
	if base := basePath(cfg.BasePath); base != "/" {
		group = cfg.Router.Group(base)
	}

	group.Get(routes.Dashboard, router.WrapHandler(func(ctx router.Context) error {
		var buf bytes.Buffer
		if err := controllerFor(cfg.Controller, ctx).RenderDashboard(ctx.Context(), &buf); err != nil {
			return respondError(ctx, http.StatusServiceUnavailable, err)
		}
		return sendHTML(ctx, buf.Bytes())
	}))

	group.Get(routes.Workflows, router.WrapHandler(func(ctx router.Context) error {
		params := dashboard.WorkflowPageParams{
			Search:   ctx.Query("search"),
			Status:   ctx.Query("status"),
			Category: ctx.Query("category"),
			Sort:     ctx.Query("sort"),
		}
		var buf bytes.Buffer
		if err := controllerFor(cfg.Controller, ctx).RenderWorkflows(ctx.Context(), params, &buf); err != nil {
			return respondError(ctx, http.StatusServiceUnavailable, err)
		}
		return sendHTML(ctx, buf.Bytes())
	}))

	if cfg.API != nil {
		registerAPI(group, cfg.API, routes)
	}
	if cfg.Broadcast != nil {
		registerWebSocket(group, cfg.Broadcast, routes.WebSocket)
	}
	return nil
}

func registerAPI[T any](r router.Router[T], api httpapi.Executor, routes RouteConfig) {
	r.Get(routes.APIDashboard, router.WrapHandler(func(ctx router.Context) error {
		overview, err := api.Overview(ctx.Context())
		return respond(ctx, overview, err)
	}))

	r.Get(routes.APIWorkflows, router.WrapHandler(func(ctx router.Context) error {
		input := httpapi.ParseWorkflowListInput(map[string][]string{
			"search":   {ctx.Query("search")},
			"status":   {ctx.Query("status")},
			"category": {ctx.Query("category")},
			"sort":     {ctx.Query("sort")},
		})
		list, err := api.Workflows(ctx.Context(), input)
		return respond(ctx, list, err)
	}))

	r.Get(routes.APIStats, router.WrapHandler(func(ctx router.Context) error {
		stats, err := api.Stats(ctx.Context())
		return respond(ctx, stats, err)
	}))

	r.Get(routes.APIExecutions, router.WrapHandler(func(ctx router.Context) error {
		query := dashboard.ExecutionQuery{
			WorkflowID: ctx.Query("workflow_id"),
			Limit:      httpapi.ParseLimit(ctx.Query("limit"), dashboard.DefaultExecutionLimit),
		}
		list, err := api.Executions(ctx.Context(), query)
		return respond(ctx, list, err)
	}))

	r.Get(routes.APIRecent, router.WrapHandler(func(ctx router.Context) error {
		list, err := api.Recent(ctx.Context(), httpapi.ParseLimit(ctx.Query("limit"), dashboard.DefaultRecentLimit))
		return respond(ctx, list, err)
	}))

	r.Get(routes.APIStatus, router.WrapHandler(func(ctx router.Context) error {
		overview, err := api.Overview(ctx.Context())
		return respond(ctx, overview.Status, err)
	}))

	for _, action := range []string{"execute", "activate", "deactivate"} {
		path := strings.ReplaceAll(routes.WorkflowAction, ":action", action)
		r.Post(path, router.WrapHandler(func(ctx router.Context) error {
			id := ctx.Param("id")
			var (
				result dashboard.ActionResult
				err    error
			)
			switch action {
			case "execute":
				result, err = api.Execute(ctx.Context(), id)
			case "activate":
				result, err = api.Activate(ctx.Context(), id)
			default:
				result, err = api.Deactivate(ctx.Context(), id)
			}
			return respondAction(ctx, result, err)
		}))
	}

	r.Post(routes.Sync, router.WrapHandler(func(ctx router.Context) error {
		result, err := api.Sync(ctx.Context())
		return respondAction(ctx, result, err)
	}))

	r.Post(routes.Revalidate, router.WrapHandler(func(ctx router.Context) error {
		err := api.Revalidate(ctx.Context(), ctx.Param("resource"))
		if err == nil && wantsHTML(ctx.Header("Accept")) {
			return redirectBack(ctx)
		}
		return respond(ctx, map[string]string{"status": "revalidated"}, err)
	}))
}

func registerWebSocket[T any](r router.Router[T], hook *dashboard.BroadcastHook, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		events, cancel := hook.Subscribe()
		defer cancel()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

func controllerFor(c *dashboard.Controller, ctx router.Context) *dashboard.Controller {
	return c.WithLocale(inferLocale(ctx))
}

func inferLocale(ctx router.Context) string {
	if locale, ok := ctx.Locals("locale").(string); ok && locale != "" {
		return locale
	}
	if locale := strings.TrimSpace(ctx.Query("locale")); locale != "" {
		return strings.ToLower(locale)
	}
	if header := ctx.Header("Accept-Language"); header != "" {
		if lang := parseAcceptLanguage(header); lang != "" {
			return lang
		}
	}
	return ""
}

func parseAcceptLanguage(header string) string {
	for _, token := range strings.Split(header, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if idx := strings.Index(token, ";"); idx >= 0 {
			token = token[:idx]
		}
		if token != "" && token != "*" {
			return strings.ToLower(token)
		}
	}
	return ""
}

// wantsHTML reports whether the request came from a browser form rather than fetch/curl.
func wantsHTML(accept string) bool {
	return strings.Contains(accept, "text/html")
}

// backTarget picks a same-origin path from the Referer, falling back to "/".
func backTarget(referer string) string {
	if referer == "" {
		return "/"
	}
	u, err := url.Parse(referer)
	if err != nil || u.Path == "" {
		return "/"
	}
	if u.RawQuery != "" {
		return u.Path + "?" + u.RawQuery
	}
	return u.Path
}

func redirectBack(ctx router.Context) error {
	target := html.EscapeString(backTarget(ctx.Header("Referer")))
	page := fmt.Sprintf(`<!doctype html><meta http-equiv="refresh" content="0;url=%s"><a href="%s">continue</a>`, target, target)
	return sendHTML(ctx, []byte(page))
}

func respondAction(ctx router.Context, result dashboard.ActionResult, err error) error {
	if err == nil && wantsHTML(ctx.Header("Accept")) {
		return redirectBack(ctx)
	}
	return respond(ctx, result, err)
}

func respond(ctx router.Context, payload any, err error) error {
	if err != nil {
		return respondError(ctx, httpapi.StatusFor(err), err)
	}
	return ctx.JSON(http.StatusOK, payload)
}

func respondError(ctx router.Context, status int, err error) error {
	return ctx.JSON(status, map[string]string{"error": err.Error()})
}

func sendHTML(ctx router.Context, body []byte) error {
	ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
	return ctx.Send(body)
}

func basePath(base string) string {
	if base == "" {
		return "/"
	}
	return base
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.Dashboard == "" {
		routes.Dashboard = "/"
	}
	if routes.Workflows == "" {
		routes.Workflows = "/workflows"
	}
	if routes.APIDashboard == "" {
		routes.APIDashboard = "/api/dashboard"
	}
	if routes.APIWorkflows == "" {
		routes.APIWorkflows = "/api/workflows"
	}
	if routes.APIStats == "" {
		routes.APIStats = "/api/stats"
	}
	if routes.APIExecutions == "" {
		routes.APIExecutions = "/api/executions"
	}
	if routes.APIRecent == "" {
		routes.APIRecent = "/api/executions/recent"
	}
	if routes.APIStatus == "" {
		routes.APIStatus = "/api/status"
	}
	if routes.WorkflowAction == "" {
		routes.WorkflowAction = "/workflows/:id/:action"
	}
	if routes.Sync == "" {
		routes.Sync = "/sync"
	}
	if routes.Revalidate == "" {
		routes.Revalidate = "/revalidate/:resource"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/ws"
	}
	return routes
}
