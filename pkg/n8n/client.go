// Package n8n is a small client for the n8n public REST API.
package n8n

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the n8n API root of a local install.
const DefaultBaseURL = "http://localhost:5678/api/v1"

// Workflow is an n8n workflow definition.
type Workflow struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Active      bool             `json:"active"`
	CreatedAt   string           `json:"createdAt"`
	UpdatedAt   string           `json:"updatedAt"`
	Nodes       []map[string]any `json:"nodes"`
	Connections map[string]any   `json:"connections"`
	Settings    map[string]any   `json:"settings"`
}

// Execution is an n8n execution record.
type Execution struct {
	ID         string `json:"id"`
	WorkflowID string `json:"workflowId"`
	Status     string `json:"status"`
	StartedAt  string `json:"startedAt"`
	StoppedAt  string `json:"stoppedAt"`
	Mode       string `json:"mode"`
}

// Config configures a Client.
type Config struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Logger     *slog.Logger
	// Strict disables the mock fallback so request failures are returned.
	Strict bool
}

// Client calls n8n. Unless Strict is set, failed requests are logged and
// answered with mock data so the backend keeps working without n8n.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *slog.Logger
	strict  bool
}

// New builds a Client.
func New(cfg Config) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{baseURL: base, apiKey: cfg.APIKey, client: httpClient, logger: logger, strict: cfg.Strict}
}

type envelope[T any] struct {
	Data T `json:"data"`
}

// Workflows lists every workflow. Entries that fail to decode are skipped.
func (c *Client) Workflows(ctx context.Context) ([]Workflow, error) {
	raw, err := c.request(ctx, http.MethodGet, "/workflows", nil)
	if err != nil {
		return nil, err
	}
	var env envelope[[]json.RawMessage]
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("n8n: decode workflows: %w", err)
	}
	out := make([]Workflow, 0, len(env.Data))
	for _, item := range env.Data {
		var w Workflow
		if err := json.Unmarshal(item, &w); err != nil || w.ID == "" {
			c.logger.Warn("n8n: skipping malformed workflow", slog.Any("error", err))
			continue
		}
		out = append(out, w)
	}
	return out, nil
}

// Workflow fetches one workflow; a missing workflow returns (nil, nil).
func (c *Client) Workflow(ctx context.Context, id string) (*Workflow, error) {
	raw, err := c.request(ctx, http.MethodGet, "/workflows/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	var env envelope[*Workflow]
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, nil
	}
	return env.Data, nil
}

// Execute runs a workflow and returns the raw n8n reply.
func (c *Client) Execute(ctx context.Context, id string) (json.RawMessage, error) {
	return c.request(ctx, http.MethodPost, "/workflows/"+url.PathEscape(id)+"/execute", nil)
}

// Executions lists executions, optionally for one workflow.
func (c *Client) Executions(ctx context.Context, workflowID string) ([]Execution, error) {
	path := "/executions"
	if workflowID != "" {
		path += "?workflowId=" + url.QueryEscape(workflowID)
	}
	raw, err := c.request(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	var env envelope[[]Execution]
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("n8n: decode executions: %w", err)
	}
	return env.Data, nil
}

// Activate sets the workflow active flag.
func (c *Client) Activate(ctx context.Context, id string) (json.RawMessage, error) {
	return c.setActive(ctx, id, true)
}

// Deactivate clears the workflow active flag.
func (c *Client) Deactivate(ctx context.Context, id string) (json.RawMessage, error) {
	return c.setActive(ctx, id, false)
}

func (c *Client) setActive(ctx context.Context, id string, active bool) (json.RawMessage, error) {
	return c.request(ctx, http.MethodPatch, "/workflows/"+url.PathEscape(id), map[string]bool{"active": active})
}

// ExecutionIDFrom extracts data.id from an execute reply.
func ExecutionIDFrom(raw json.RawMessage) string {
	var env envelope[struct {
		ID any `json:"id"`
	}]
	if err := json.Unmarshal(raw, &env); err != nil || env.Data.ID == nil {
		return ""
	}
	return fmt.Sprint(env.Data.ID)
}

func (c *Client) request(ctx context.Context, method, path string, payload any) (json.RawMessage, error) {
	raw, err := c.do(ctx, method, path, payload)
	if err == nil {
		return raw, nil
	}
	if c.strict || ctx.Err() != nil {
		return nil, err
	}
	c.logger.Warn("n8n unavailable, using mock data",
		slog.String("method", method), slog.String("path", path), slog.Any("error", err))
	return mockResponse(path), nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any) (json.RawMessage, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("n8n: encode payload: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("n8n: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-N8N-API-KEY", c.apiKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("n8n: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("n8n: read %s: %w", path, err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("n8n: %s %s: remote error %d: %s", method, path, resp.StatusCode, bytes.TrimSpace(data))
	}
	if len(bytes.TrimSpace(data)) == 0 {
		data = []byte("{}")
	}
	return data, nil
}
