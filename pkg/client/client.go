// Package client is the HTTP fetch boundary: a thin JSON client for the
// search, suggestion and statistics endpoints, with bounded retries and a
// circuit breaker around the transport.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/campusworks/searchkit/pkg/model"
)

const (
	defaultTimeout = 30 * time.Second
	apiV1BasePath  = "/api/v1"
)

// Client talks to the search backend.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	retry      retryPolicy
	logger     zerolog.Logger

	// Services
	Search  *SearchService
	Suggest *SuggestService
	Stats   *StatsService
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithLogger attaches a logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger.With().Str("component", "search-client").Logger()
	}
}

// WithRetry sets the retry policy for retryable transport failures.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(c *Client) {
		c.retry = retryPolicy{maxAttempts: maxAttempts, baseDelay: baseDelay}
	}
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	client := &Client{
		baseURL: parsedURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		retry:  retryPolicy{maxAttempts: 2, baseDelay: 200 * time.Millisecond},
		logger: zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(client)
	}

	client.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "search-backend",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	client.Search = &SearchService{client: client}
	client.Suggest = &SuggestService{client: client}
	client.Stats = &StatsService{client: client}

	return client, nil
}

// Fetcher adapts the client to the controller's fetch boundary. It
// satisfies query.Fetcher without this package importing pkg/query.
type Fetcher struct {
	client *Client
}

// Fetcher returns the controller-facing adapter.
func (c *Client) Fetcher() Fetcher {
	return Fetcher{client: c}
}

func (f Fetcher) Search(ctx context.Context, q model.SearchQuery) (*model.SearchResult, error) {
	return f.client.Search.Search(ctx, q)
}

func (f Fetcher) Suggest(ctx context.Context, text string, limit int) ([]model.Suggestion, error) {
	return f.client.Suggest.Suggest(ctx, text, limit)
}

func (f Fetcher) Stats(ctx context.Context) (map[string]int, error) {
	return f.client.Stats.Counts(ctx)
}

// HealthCheck reports whether the backend answers its health endpoint.
func (c *Client) HealthCheck(ctx context.Context) error {
	resp, err := c.doRequest(ctx, http.MethodGet, "/health", nil, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed with status: %d", resp.StatusCode)
	}
	return nil
}

// doRequest performs one HTTP round trip.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Response, error) {
	u := c.baseURL.JoinPath(path)
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// doJSONRequest performs a JSON request through the breaker and retry
// policy and decodes the response body into respBody.
func (c *Client) doJSONRequest(ctx context.Context, method, path string, query url.Values, reqBody, respBody any) error {
	return c.retry.do(ctx, func() error {
		_, err := c.breaker.Execute(func() (any, error) {
			return nil, c.doJSONOnce(ctx, method, path, query, reqBody, respBody)
		})
		return err
	})
}

func (c *Client) doJSONOnce(ctx context.Context, method, path string, query url.Values, reqBody, respBody any) error {
	resp, err := c.doRequest(ctx, method, path, query, reqBody)
	if err != nil {
		return &APIError{Type: ErrorTypeUnavailable, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.handleErrorResponse(resp)
	}

	if respBody != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
			return &APIError{Type: ErrorTypeUnknown, Message: fmt.Sprintf("failed to decode response: %v", err)}
		}
	}
	return nil
}

// handleErrorResponse turns a non-2xx response into a typed APIError,
// preferring the envelope's error body when it decodes.
func (c *Client) handleErrorResponse(resp *http.Response) error {
	var envelope struct {
		Error *model.ErrorBody `json:"error"`
	}
	apiErr := &APIError{
		Type: errorTypeForStatus(resp.StatusCode),
		Code: resp.StatusCode,
	}

	body, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil {
		apiErr.Message = envelope.Error.Message
		apiErr.ServerCode = envelope.Error.Code
	} else {
		apiErr.Message = string(body)
	}
	return apiErr
}
