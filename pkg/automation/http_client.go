package automation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	dashboard "github.com/goliatone/go-flowdash/components/dashboard"
)

// DefaultBaseURL is where the automation API listens in local setups.
const DefaultBaseURL = "http://localhost:8000"

// HTTPConfig configures the HTTP automation client.
type HTTPConfig struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// HTTPClient talks to the workflow automation REST API.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPClient builds a client for the automation API.
func NewHTTPClient(cfg HTTPConfig) (*HTTPClient, error) {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("automation: invalid base url %q: %w", cfg.BaseURL, err)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPClient{
		baseURL: base,
		apiKey:  cfg.APIKey,
		client:  httpClient,
	}, nil
}

// Workflows lists workflows, passing category and status filters through.
func (c *HTTPClient) Workflows(ctx context.Context, query dashboard.WorkflowQuery) ([]dashboard.Workflow, error) {
	params := url.Values{}
	setFilter(params, "category", query.Category)
	setFilter(params, "status", query.Status)
	var out []dashboard.Workflow
	if err := c.do(ctx, http.MethodGet, withQuery("/api/workflows/", params), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Stats fetches aggregate dashboard figures.
func (c *HTTPClient) Stats(ctx context.Context) (dashboard.DashboardStats, error) {
	var out dashboard.DashboardStats
	if err := c.do(ctx, http.MethodGet, "/api/workflows/stats", &out); err != nil {
		return dashboard.DashboardStats{}, err
	}
	return out, nil
}

// Executions lists runs, newest first.
func (c *HTTPClient) Executions(ctx context.Context, query dashboard.ExecutionQuery) ([]dashboard.Execution, error) {
	params := url.Values{}
	if query.WorkflowID != "" {
		params.Set("workflow_id", query.WorkflowID)
	}
	limit := query.Limit
	if limit <= 0 {
		limit = dashboard.DefaultExecutionLimit
	}
	params.Set("limit", strconv.Itoa(limit))
	var out []dashboard.Execution
	if err := c.do(ctx, http.MethodGet, withQuery("/api/executions/", params), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RecentExecutions lists the latest runs across all workflows.
func (c *HTTPClient) RecentExecutions(ctx context.Context, limit int) ([]dashboard.Execution, error) {
	if limit <= 0 {
		limit = dashboard.DefaultRecentLimit
	}
	var out []dashboard.Execution
	if err := c.do(ctx, http.MethodGet, "/api/executions/recent?limit="+strconv.Itoa(limit), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) Execute(ctx context.Context, workflowID string) (dashboard.ActionResult, error) {
	return c.action(ctx, http.MethodPost, workflowID, "execute")
}

func (c *HTTPClient) Activate(ctx context.Context, workflowID string) (dashboard.ActionResult, error) {
	return c.action(ctx, http.MethodPatch, workflowID, "activate")
}

func (c *HTTPClient) Deactivate(ctx context.Context, workflowID string) (dashboard.ActionResult, error) {
	return c.action(ctx, http.MethodPatch, workflowID, "deactivate")
}

// Sync asks the backend to pull workflows from n8n.
func (c *HTTPClient) Sync(ctx context.Context) (dashboard.ActionResult, error) {
	var out dashboard.ActionResult
	if err := c.do(ctx, http.MethodGet, "/api/workflows/sync", &out); err != nil {
		return dashboard.ActionResult{}, err
	}
	return out, nil
}

func (c *HTTPClient) action(ctx context.Context, method, workflowID, verb string) (dashboard.ActionResult, error) {
	if workflowID == "" {
		return dashboard.ActionResult{}, dashboard.ErrWorkflowIDRequired
	}
	var out dashboard.ActionResult
	path := "/api/workflows/" + url.PathEscape(workflowID) + "/" + verb
	if err := c.do(ctx, method, path, &out); err != nil {
		return dashboard.ActionResult{}, err
	}
	return out, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, target any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("automation: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return &NetworkError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(body))}
	}
	if target == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("automation: decode %s: %w", path, err)
	}
	return nil
}

func setFilter(params url.Values, key, value string) {
	if value == "" || value == dashboard.FilterAll {
		return
	}
	params.Set(key, value)
}

func withQuery(path string, params url.Values) string {
	if len(params) == 0 {
		return path
	}
	return path + "?" + params.Encode()
}
