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
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/expensekeeper/internal/client/models"
	"github.com/dmitrijs2005/expensekeeper/internal/logging"
)

const (
	requestIDHeader = "X-Request-ID"
	maxResponseSize = 4 << 20
)

// HTTPClient talks JSON to the backend rooted at baseURL.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	log     logging.Logger
}

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTPClient) { h.http = c }
}

// WithTimeout bounds every request, including reading the body.
func WithTimeout(d time.Duration) Option {
	return func(h *HTTPClient) { h.http.Timeout = d }
}

func WithLogger(l logging.Logger) Option {
	return func(h *HTTPClient) { h.log = l }
}

// NewHTTPClient returns a client for baseURL (for example
// "https://host/api"). tokens is consulted on every authenticated call.
func NewHTTPClient(baseURL string, tokens TokenSource, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base url %q: scheme must be http or https", baseURL)
	}

	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		tokens:  tokens,
		log:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *HTTPClient) Register(ctx context.Context, req RegisterRequest) (string, error) {
	var resp messageResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", false, req, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *HTTPClient) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	var resp LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", false, req, &resp); err != nil {
		return LoginResponse{}, err
	}
	if resp.Token == "" {
		return LoginResponse{}, ErrEmptyToken
	}
	return resp, nil
}

func (c *HTTPClient) ListExpenses(ctx context.Context) ([]models.Expense, error) {
	var resp listResponse
	if err := c.do(ctx, http.MethodGet, "/expense", true, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Expenses == nil {
		return []models.Expense{}, nil
	}
	return resp.Expenses, nil
}

// CreateExpense validates e locally and, if complete, posts it. The returned
// record carries the server-assigned id.
func (c *HTTPClient) CreateExpense(ctx context.Context, e models.NewExpense) (models.Expense, error) {
	if err := e.Validate(); err != nil {
		return models.Expense{}, err
	}
	var resp createResponse
	if err := c.do(ctx, http.MethodPost, "/expense", true, e, &resp); err != nil {
		return models.Expense{}, err
	}
	if resp.Expense.ID == "" {
		return models.Expense{}, fmt.Errorf("%w: created expense has no id", ErrRequestFailed)
	}
	return resp.Expense, nil
}

func (c *HTTPClient) UpdateExpense(ctx context.Context, id string, p models.Patch) error {
	if p.IsEmpty() {
		return ErrEmptyPatch
	}
	return c.do(ctx, http.MethodPatch, "/expense/"+url.PathEscape(id), true, p, nil)
}

func (c *HTTPClient) DeleteExpense(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/expense/"+url.PathEscape(id), true, nil, nil)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, auth bool, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if auth && c.tokens != nil {
		token, ok, err := c.tokens.Get(ctx)
		if err != nil {
			return fmt.Errorf("read session token: %w", err)
		}
		if ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	log := c.log.With("method", method, "path", path, "request_id", requestID)
	started := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		log.Warn(ctx, "request failed", "error", err)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}

	log.Debug(ctx, "request done", "status", resp.StatusCode, "elapsed", time.Since(started))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var msg messageResponse
		_ = json.Unmarshal(data, &msg)
		return &APIError{StatusCode: resp.StatusCode, Message: msg.Message, Err: errorForStatus(resp.StatusCode)}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
