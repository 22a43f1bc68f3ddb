package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient talks to the analysis service at baseURL. The default HTTP client
// has no timeout: excavations of large repositories take minutes.
func NewClient(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultServerURL
	}
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Analyze runs one excavation. Every failure, whether reported by the service
// or raised by the transport, is a *FailedError.
func (c *Client) Analyze(ctx context.Context, target Target) (*Result, error) {
	field := "repo_url"
	if target.IsLocal {
		field = "repo_path"
	}
	payload, err := json.Marshal(map[string]string{field: target.Path})
	if err != nil {
		return nil, &FailedError{Message: err.Error()}
	}

	runID := uuid.NewString()
	start := time.Now()
	c.logger.Info("analysis_start", "run_id", runID, "field", field, "target", target.Path)

	var result Result
	if err := c.do(ctx, http.MethodPost, "/api/analyze", payload, &result); err != nil {
		c.logger.Warn("analysis_failed", "run_id", runID, "duration", time.Since(start).String(), "error", err.Error())
		return nil, err
	}
	if result.Artifacts == nil && result.Stories == nil {
		err := &FailedError{Message: "malformed analysis response: missing artifacts and stories", StatusCode: http.StatusOK}
		c.logger.Warn("analysis_failed", "run_id", runID, "error", err.Error())
		return nil, err
	}

	c.logger.Info("analysis_done", "run_id", runID, "duration", time.Since(start).String(), "exhibits", len(result.Artifacts))
	return &result, nil
}

func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var hs HealthStatus
	if err := c.do(ctx, http.MethodGet, "/api/health", nil, &hs); err != nil {
		return nil, err
	}
	return &hs, nil
}

// Cleanup asks the service to delete its temporary clones.
func (c *Client) Cleanup(ctx context.Context) (string, error) {
	var mb messageBody
	if err := c.do(ctx, http.MethodPost, "/api/cleanup", nil, &mb); err != nil {
		return "", err
	}
	return mb.Message, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &FailedError{Message: err.Error()}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &FailedError{Message: err.Error()}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &FailedError{Message: fmt.Sprintf("read response: %v", err), StatusCode: resp.StatusCode}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &FailedError{Message: serviceMessage(data), StatusCode: resp.StatusCode}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return &FailedError{Message: fmt.Sprintf("decode response: %v", err), StatusCode: resp.StatusCode}
	}
	return nil
}

func serviceMessage(data []byte) string {
	var eb errorBody
	if err := json.Unmarshal(data, &eb); err != nil {
		return fallbackMessage
	}
	if msg := strings.TrimSpace(eb.Error); msg != "" {
		return eb.Error
	}
	return fallbackMessage
}
