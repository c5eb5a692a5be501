// Package remote implements backend.Backend against a search service that
// speaks JSON over HTTP.
//
// Every endpoint takes a POST with the request as its body and answers with
// the envelope {"data": ..., "error": "..."}. Status codes of 400 and above
// are returned as *APIError.
package remote

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
	"time"

	"github.com/google/uuid"
	"github.com/poiesic/seekr/ai"
	"github.com/poiesic/seekr/backend"
	"github.com/poiesic/seekr/core"
)

// Endpoint paths relative to the base URL.
const (
	PathSearch          = "/search"
	PathSuggest         = "/search/suggest"
	PathNaturalLanguage = "/search/natural-language"
	PathSemantic        = "/search/semantic"
	PathFaceted         = "/search/faceted"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 30 * time.Second

// HeaderRequestID carries a per-request UUID for log correlation.
const HeaderRequestID = "X-Request-ID"

var (
	// ErrBaseURLRequired is returned when the client has no usable base URL.
	ErrBaseURLRequired = errors.New("base URL is required")

	// ErrEmptyResponse is returned when a successful response carries no data.
	ErrEmptyResponse = errors.New("empty response from search service")
)

// APIResponse represents the standard API response format.
type APIResponse struct {
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
}

// APIError represents an error from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

// Client is an HTTP search backend.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	embedder   ai.Embedder
	logger     *slog.Logger
}

var _ backend.Backend = (*Client)(nil)

// Option configures a Client.
type Option func(*Client) error

// WithAPIKey sends key as a bearer token.
func WithAPIKey(key string) Option {
	return func(c *Client) error {
		c.apiKey = key
		return nil
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc != nil {
			c.httpClient = hc
		}
		return nil
	}
}

// WithTimeout sets the per-request timeout.
// Default is 30 seconds.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) error {
		c.httpClient.Timeout = d
		return nil
	}
}

// WithEmbedder embeds semantic queries client-side so the service receives
// a vector instead of raw text.
func WithEmbedder(embedder ai.Embedder) Option {
	return func(c *Client) error {
		c.embedder = embedder
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, ErrBaseURLRequired
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrBaseURLRequired, baseURL)
	}

	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	c.logger = c.logger.With("component", "remote-backend")
	return c, nil
}

// Search calls the primary search endpoint.
func (c *Client) Search(ctx context.Context, req core.SearchRequest) (*core.SearchResponse, error) {
	return c.search(ctx, PathSearch, req)
}

// Suggest calls the suggestion endpoint.
func (c *Client) Suggest(ctx context.Context, req core.SuggestRequest) ([]core.Suggestion, error) {
	var out []core.Suggestion
	if err := c.post(ctx, PathSuggest, req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// NaturalLanguageSearch calls the natural-language endpoint.
func (c *Client) NaturalLanguageSearch(ctx context.Context, req core.NaturalLanguageRequest) (*core.SearchResponse, error) {
	return c.search(ctx, PathNaturalLanguage, req)
}

// SemanticSearch calls the semantic endpoint, attaching a query vector when
// an embedder is configured and the request has none.
func (c *Client) SemanticSearch(ctx context.Context, req core.SemanticRequest) (*core.SearchResponse, error) {
	if c.embedder != nil && len(req.Vector) == 0 && req.Query != "" {
		vector, err := c.embedder.EmbedText(ctx, req.Query)
		if err != nil {
			c.logger.Error("error generating embedding for query", "query", req.Query, "err", err)
			return nil, err
		}
		req.Vector = vector
	}
	return c.search(ctx, PathSemantic, req)
}

// FacetedSearch calls the faceted endpoint.
func (c *Client) FacetedSearch(ctx context.Context, req core.FacetedRequest) (*core.SearchResponse, error) {
	return c.search(ctx, PathFaceted, req)
}

func (c *Client) search(ctx context.Context, path string, body any) (*core.SearchResponse, error) {
	var out core.SearchResponse
	if err := c.post(ctx, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// post sends body as JSON and decodes the envelope's data into out.
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderRequestID, requestID)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	c.logger.Debug("request complete",
		"path", path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(start))

	var apiResp APIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		if resp.StatusCode >= 400 {
			return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
		}
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.StatusCode >= 400 {
		msg := apiResp.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if len(apiResp.Data) == 0 || string(apiResp.Data) == "null" {
		return ErrEmptyResponse
	}
	if err := json.Unmarshal(apiResp.Data, out); err != nil {
		return fmt.Errorf("failed to parse response data: %w", err)
	}
	return nil
}
