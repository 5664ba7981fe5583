package workflowai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"flight-extractor/pkg/logger"
)

const (
	// APIKeyEnv is the environment variable holding the API key
	APIKeyEnv = "WORKFLOWAI_API_KEY"

	DefaultAPIURL  = "https://run.workflowai.com"
	DefaultWebURL  = "https://workflowai.com"
	DefaultTimeout = 60 * time.Second

	maxResponseBytes = 10 << 20
)

// Client talks to the WorkflowAI agent service
type Client struct {
	apiKey     string
	apiURL     string
	webURL     string
	httpClient *http.Client
	logger     logger.Logger
}

// Option configures a Client
type Option func(c *Client)

// WithAPIURL overrides the run endpoint base URL
func WithAPIURL(u string) Option {
	return func(c *Client) {
		c.apiURL = strings.TrimRight(u, "/")
	}
}

// WithWebURL overrides the base URL used to build run links
func WithWebURL(u string) Option {
	return func(c *Client) {
		c.webURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the timeout of a single request
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithLogger sets the client logger
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a new client. An empty apiKey is accepted here and
// reported as a ConfigError when a call is attempted.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		apiURL:     DefaultAPIURL,
		webURL:     DefaultWebURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RegisterAgent declares the agent schemas and returns the assigned schema id
func (c *Client) RegisterAgent(ctx context.Context, req *RegisterRequest) (*RegisterResponse, error) {
	var resp RegisterResponse
	if err := c.post(ctx, "register", "/v1/_/agents", req, &resp); err != nil {
		return nil, err
	}
	if resp.SchemaID == 0 {
		return nil, &TransportError{Op: "register", Message: "response has no schema_id"}
	}

	c.logger.Debug("Agent registered",
		"agentId", req.ID,
		"schemaId", resp.SchemaID)

	return &resp, nil
}

// RunAgent runs the agent once on the given input
func (c *Client) RunAgent(ctx context.Context, agentID string, schemaID int, req *RunRequest) (*RunResponse, error) {
	path := fmt.Sprintf("/v1/_/agents/%s/schemas/%d/run", url.PathEscape(agentID), schemaID)

	var resp RunResponse
	if err := c.post(ctx, "run", path, req, &resp); err != nil {
		return nil, err
	}

	c.logger.Info("Agent run completed",
		"agentId", agentID,
		"runId", resp.ID,
		"costUsd", resp.CostUSD,
		"durationSeconds", resp.DurationSeconds)

	return &resp, nil
}

// RunURL returns the web link of a run
func (c *Client) RunURL(agentID, runID string) string {
	return fmt.Sprintf("%s/_/agents/%s/runs/%s", c.webURL, url.PathEscape(agentID), url.PathEscape(runID))
}

func (c *Client) post(ctx context.Context, op, path string, body, out any) error {
	if c.apiKey == "" {
		return &ConfigError{Key: APIKeyEnv, Reason: "API key is not set"}
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal %s request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+path, bytes.NewReader(jsonData))
	if err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("failed to send request: %w", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &TransportError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(op, resp.StatusCode, respBody)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return &TransportError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

func statusError(op string, statusCode int, body []byte) *TransportError {
	e := &TransportError{Op: op, StatusCode: statusCode}

	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil {
		e.Code = envelope.Error.Code
		e.Message = envelope.Error.Message
	}
	if e.Message == "" {
		e.Message = strings.TrimSpace(string(body))
	}
	if e.Message == "" {
		e.Message = http.StatusText(statusCode)
	}
	return e
}
