// Package statusapi is the HTTP client for the workflow API: submitting a run and fetching
// its aggregated per-class status.
package statusapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/joe/fairwatch/internal/tracker"
)

// Exported constants.
const (
	// DefaultBaseURL is the workflow API's own listener. Behind the web UI's proxy the same
	// endpoints live under "/api".
	DefaultBaseURL = "http://localhost:7080"

	FairnessStatusPath = "/run-status-fairness"
	PriorityStatusPath = "/run-status"
	StartPath          = "/start-workflows"

	// RequestIDHeader carries a per-request id for correlating client and server logs.
	RequestIDHeader = "X-Request-ID"
)

// Exported variables.
var (
	ErrMalformedResponse = errors.New("malformed response")
	ErrMissingPrefix     = errors.New("run prefix is required")
)

// APIError is a non-2xx response.
type APIError struct {
	Status   int
	Message  string
	Endpoint string
}

// Error implements error.
func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: HTTP %d", e.Endpoint, e.Status)
	}

	return fmt.Sprintf("%s: HTTP %d: %s", e.Endpoint, e.Status, e.Message)
}

// StatusCode returns the HTTP status.
func (e *APIError) StatusCode() int {
	return e.Status
}

// UserMessage returns the server-provided message.
func (e *APIError) UserMessage() string {
	return e.Message
}

// Client is an HTTP client for the workflow API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// NewClient creates a workflow API client. An empty baseURL uses DefaultBaseURL.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{},
		Logger:     logger,
	}
}

// Endpoint returns the absolute URL of an API path.
func (c *Client) Endpoint(path string) string {
	return strings.TrimRight(c.BaseURL, "/") + path
}

// Fetch retrieves the status of a run and converts it into a tracker snapshot.
func (c *Client) Fetch(ctx context.Context, mode tracker.Mode, prefix string) (tracker.Snapshot, error) {
	if mode == tracker.ModeFairness {
		status, err := c.FetchFairness(ctx, prefix)
		if err != nil {
			return tracker.Snapshot{}, err
		}

		return status.Snapshot(), nil
	}

	status, err := c.FetchPriority(ctx, prefix)
	if err != nil {
		return tracker.Snapshot{}, err
	}

	return status.Snapshot(), nil
}

// FetchFairness retrieves per-band status of a fairness run.
func (c *Client) FetchFairness(ctx context.Context, prefix string) (*FairnessStatus, error) {
	var status FairnessStatus
	if err := c.getStatus(ctx, FairnessStatusPath, prefix, &status); err != nil {
		return nil, err
	}

	return &status, nil
}

// FetchPriority retrieves per-priority status of a priority run.
func (c *Client) FetchPriority(ctx context.Context, prefix string) (*PriorityStatus, error) {
	var status PriorityStatus
	if err := c.getStatus(ctx, PriorityStatusPath, prefix, &status); err != nil {
		return nil, err
	}

	return &status, nil
}

// Submit starts a run. Bands are only sent for fairness runs.
func (c *Client) Submit(ctx context.Context, cfg TestConfig) error {
	if strings.TrimSpace(cfg.WorkflowIDPrefix) == "" {
		return ErrMissingPrefix
	}

	if cfg.Mode != tracker.ModeFairness {
		cfg.Bands = nil
		cfg.DisableFairness = false
	}

	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	c.Logger.Debug("HTTP request body", "body", string(data))

	_, err = c.do(ctx, http.MethodPost, c.Endpoint(StartPath), bytes.NewReader(data))

	return err
}

// do performs a request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, method, endpoint string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	req.Header.Set("Accept", "application/json")

	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)

	c.Logger.Debug("HTTP request", "method", method, "url", endpoint, "request_id", requestID)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	c.Logger.Debug("HTTP response",
		"status", resp.StatusCode,
		"request_id", requestID,
		"bytes", len(respBody))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{
			Status:   resp.StatusCode,
			Message:  errorMessage(resp.StatusCode, respBody),
			Endpoint: endpoint,
		}
	}

	return respBody, nil
}

func (c *Client) getStatus(ctx context.Context, path, prefix string, out any) error {
	if strings.TrimSpace(prefix) == "" {
		return ErrMissingPrefix
	}

	endpoint := c.Endpoint(path) + "?" + url.Values{"runPrefix": {prefix}}.Encode()

	body, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w from %s: %w", ErrMalformedResponse, path, err)
	}

	return nil
}

// errorMessage extracts a message from an error body: a JSON "message" or "error" field,
// else the trimmed text, else the status text.
func errorMessage(status int, body []byte) string {
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}

	if err := json.Unmarshal(body, &envelope); err == nil {
		if msg := strings.TrimSpace(envelope.Message); msg != "" {
			return msg
		}

		if msg := strings.TrimSpace(envelope.Error); msg != "" {
			return msg
		}
	}

	trimmed := strings.TrimSpace(string(body))
	if trimmed != "" && !strings.HasPrefix(trimmed, "{") && len(trimmed) <= maxPlainMessage {
		return trimmed
	}

	return http.StatusText(status)
}

const maxPlainMessage = 200
