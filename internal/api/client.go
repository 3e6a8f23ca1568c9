// Package api is the REST client for the reference data backend.
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
	"go.uber.org/zap"

	"refdesk/internal/auth"
	"refdesk/internal/domain"
	"refdesk/internal/loading"
)

const apiPrefix = "/api/v1"

// envelope is the wrapper every backend response uses
type envelope struct {
	Success *bool            `json:"success"`
	Code    string           `json:"code"`
	Message string           `json:"message"`
	Data    json.RawMessage  `json:"data"`
	Meta    *domain.PageMeta `json:"meta"`
}

// Client talks to the backend
type Client struct {
	base    *url.URL
	http    *http.Client
	tokens  auth.TokenSource
	tracker *loading.Tracker
	log     *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithTokenSource adds a bearer token to every request
func WithTokenSource(ts auth.TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithTracker counts requests in the loading tracker
func WithTracker(t *loading.Tracker) Option {
	return func(c *Client) { c.tracker = t }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New creates a client for baseURL
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base url %q: scheme must be http or https", baseURL)
	}
	c := &Client{
		base: u,
		http: &http.Client{Timeout: 30 * time.Second},
		log:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the backend root
func (c *Client) BaseURL() string { return c.base.String() }

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(c.base.Path, "/") + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do sends one request and decodes the envelope. out receives data when non-nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) (*domain.PageMeta, error) {
	if c.tracker != nil {
		c.tracker.Start()
		defer c.tracker.Stop()
	}

	target := c.endpoint(path, query)
	fail := func(status int, err error) *Error {
		return &Error{Status: status, URL: target, Message: err.Error(), Err: err}
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fail(0, fmt.Errorf("failed to encode request: %w", err))
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fail(0, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	reqID := uuid.NewString()
	req.Header.Set("X-Request-Id", reqID)
	if c.tokens != nil {
		tok, err := c.tokens.Token()
		switch {
		case err == nil:
			req.Header.Set("Authorization", "Bearer "+tok)
		case errors.Is(err, auth.ErrNoToken):
			c.log.Debug("sending request without token", zap.String("url", target))
		default:
			return nil, fail(0, err)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("request failed", zap.String("method", method), zap.String("url", target),
			zap.String("request_id", reqID), zap.Error(err))
		return nil, fail(0, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fail(resp.StatusCode, fmt.Errorf("failed to read response: %w", err))
	}
	c.log.Debug("request done", zap.String("method", method), zap.String("url", target),
		zap.Int("status", resp.StatusCode), zap.Duration("took", time.Since(start)),
		zap.String("request_id", reqID))

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)
	wrapped := decodeErr == nil && env.Success != nil

	if resp.StatusCode >= 400 || (wrapped && !*env.Success) {
		apiErr := &Error{Status: resp.StatusCode, URL: target, Data: json.RawMessage(raw)}
		if wrapped {
			apiErr.Code, apiErr.Message, apiErr.Data = env.Code, env.Message, env.Data
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return nil, apiErr
	}

	data := json.RawMessage(raw)
	if wrapped {
		data = env.Data
	}
	if out != nil && len(data) > 0 && string(data) != "null" {
		if err := json.Unmarshal(data, out); err != nil {
			return nil, fail(resp.StatusCode, fmt.Errorf("failed to decode response: %w", err))
		}
	}
	return env.Meta, nil
}
