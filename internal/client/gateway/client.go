// Package gateway provides typed HTTP access to the todo and task
// endpoints of the remote API.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

const (
	apiPrefix = "/api"

	// RoleHeader is attached to every outbound request.
	RoleHeader = "x-user-role"
	// DefaultRole is the role sent when none is configured.
	DefaultRole = "admin"
)

// Client performs HTTP calls against the remote API. It has no retry
// and no timeout policy of its own; the request context bounds each call.
type Client struct {
	baseURL string
	http    *http.Client
	role    string
	log     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithRole overrides the value of the role header.
func WithRole(role string) Option {
	return func(c *Client) { c.role = role }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// New creates a Client for baseURL. A nil httpClient means a plain
// http.Client without a timeout.
func New(baseURL string, httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		role:    DefaultRole,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the server base URL without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// send issues the request and returns the response on 2xx. The caller
// must close the body.
func (c *Client) send(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(b)
	}

	u := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set(RoleHeader, c.role)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return nil, &NetworkError{Method: method, URL: u, Err: err}
	}
	c.log.Debug("request done",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, readServerError(resp)
	}
	return resp, nil
}

// do sends a JSON request and decodes the JSON response into out when
// out is non-nil. A 2xx response without a body leaves out untouched.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("invalid response: %w", err)
	}
	return nil
}

func readServerError(resp *http.Response) error {
	se := &ServerError{StatusCode: resp.StatusCode}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(data) == 0 {
		return se
	}
	var payload struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &payload) == nil {
		se.Message = payload.Message
	}
	return se
}

func pathEscape(s string) string {
	return url.PathEscape(s)
}
