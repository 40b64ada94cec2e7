// ABOUTME: HTTP client for the external RAG API (ingest, ask, embeddings, health).
// ABOUTME: Thin JSON wrappers; no retries, every failure is returned to the caller.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/2389-research/asksee/internal/models"
)

// DefaultAPIURL is the address of a locally running RAG server.
const DefaultAPIURL = "http://127.0.0.1:8000"

// DefaultTopK is the retrieval count sent with every question.
const DefaultTopK = 4

// Client talks to the RAG API.
type Client struct {
	apiURL string
	client *http.Client
	logger *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.client.Timeout = d
		}
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a client for the API rooted at apiURL.
func NewClient(apiURL string, opts ...Option) *Client {
	apiURL = strings.TrimRight(strings.TrimSpace(apiURL), "/")
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	c := &Client{
		apiURL: apiURL,
		client: &http.Client{Timeout: 30 * time.Second},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the normalized API base URL.
func (c *Client) URL() string {
	return c.apiURL
}

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("API returned %d", e.StatusCode)
	}
	return fmt.Sprintf("API returned %d: %s", e.StatusCode, e.Body)
}

// StatusCode returns the HTTP status carried by an APIError in err's chain,
// or 0 when err did not come from a non-2xx response.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// Ingest submits text items to POST /ingest.
func (c *Client) Ingest(ctx context.Context, items []models.KnowledgeItem) (*models.IngestResult, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("at least one item is required")
	}
	body, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ingest items: %w", err)
	}

	var result models.IngestResult
	if err := c.doJSON(ctx, http.MethodPost, "/ingest", bytes.NewReader(body), "application/json", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// askPayload is the JSON body sent to POST /ask.
type askPayload struct {
	Question string `json:"question"`
	K        int    `json:"k"`
}

// askResponse tolerates a sources field that is not an array.
type askResponse struct {
	Answer  string          `json:"answer"`
	Sources json.RawMessage `json:"sources"`
}

// Ask submits a question to POST /ask.
func (c *Client) Ask(ctx context.Context, question string, k int) (*models.AnswerResult, error) {
	if k <= 0 {
		k = DefaultTopK
	}
	body, err := json.Marshal(askPayload{Question: question, K: k})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal question: %w", err)
	}

	var resp askResponse
	if err := c.doJSON(ctx, http.MethodPost, "/ask", bytes.NewReader(body), "application/json", &resp); err != nil {
		return nil, err
	}

	result := &models.AnswerResult{Answer: resp.Answer}
	if len(resp.Sources) > 0 {
		var sources []models.SourceCitation
		if err := json.Unmarshal(resp.Sources, &sources); err == nil {
			result.Sources = sources
		}
	}
	return result, nil
}

// Embeddings fetches a page of stored items with their vectors from GET /embeddings.
func (c *Client) Embeddings(ctx context.Context, limit, offset int) (*models.EmbeddingPage, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset < 0 {
		offset = 0
	}
	q.Set("offset", strconv.Itoa(offset))
	path := "/embeddings?" + q.Encode()

	var page models.EmbeddingPage
	if err := c.doJSON(ctx, http.MethodGet, path, nil, "", &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Health checks GET /health.
func (c *Client) Health(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodGet, "/health", nil, "", nil)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body io.Reader, contentType string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	log := c.logger.With(
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.String("request_id", requestID),
	)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		log.Debug("API request failed", zap.Error(err))
		return fmt.Errorf("API request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	log.Debug("API request finished",
		zap.Int("status", resp.StatusCode),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
