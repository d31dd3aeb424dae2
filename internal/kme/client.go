package kme

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultTimeout = 10 * time.Second

// Client is the HTTP client for a Key Management Entity endpoint.
type Client struct {
	baseURL    string
	saeID      string
	httpClient *http.Client
	retry      *RetryConfig
}

// Option configures the KME client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithRetryConfig replaces the retry policy.
func WithRetryConfig(cfg *RetryConfig) Option {
	return func(c *Client) {
		c.retry = cfg
	}
}

// WithSAEID tags every key request with the requesting Secure Application
// Entity identifier.
func WithSAEID(saeID string) Option {
	return func(c *Client) {
		c.saeID = saeID
	}
}

// New creates a new KME client for the given endpoint.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("KME endpoint is required")
	}

	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		retry: DefaultRetryConfig(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// SetHTTPClient sets a custom HTTP client.
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// Do performs an HTTP request with the configured retry budget. Server
// errors and transport failures are retried with backoff; client errors
// surface immediately.
func (c *Client) Do(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		payload = data
	}

	var lastErr error
	for attempt := 0; ; attempt++ {
		err := c.doOnce(ctx, method, path, payload, result)
		if err == nil {
			return nil
		}
		lastErr = err

		statusCode := 0
		if apiErr, ok := err.(*APIError); ok {
			statusCode = apiErr.StatusCode
			if !c.retry.RetryableOn(statusCode) {
				return err
			}
		}
		if !c.retry.ShouldRetry(attempt, statusCode) {
			break
		}
		if err := c.retry.Wait(ctx, attempt); err != nil {
			return err
		}
	}

	return &NetworkError{Err: lastErr, URL: c.baseURL + path, Attempt: c.retry.MaxRetries}
}

func (c *Client) doOnce(ctx context.Context, method, path string, payload []byte, result interface{}) error {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.saeID != "" {
		req.Header.Set("X-SAE-ID", c.saeID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return parseErrorResponse(resp)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

func parseErrorResponse(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var errResp struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}

	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    errResp.Error,
		}
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    string(body),
	}
}
