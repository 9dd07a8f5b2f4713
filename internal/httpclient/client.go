// Package httpclient is the JSON-over-HTTP adapter every suite talks
// through. It builds absolute URLs from a base, encodes bodies, and
// separates transport failures from error statuses.
package httpclient

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
)

// Request describes one call. Body may be nil, []byte, string, or any value
// that encodes to JSON.
type Request struct {
	Method  string
	Path    string
	Body    any
	Headers map[string]string

	// AllowErrorStatus returns non-2xx responses without a StatusError, for
	// negative-path checks that expect a rejection.
	AllowErrorStatus bool
}

// Client sends requests to one base URL.
type Client struct {
	baseURL string
	http    *http.Client
	headers map[string]string
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithHeader adds a default header. Per-request headers win.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.headers[key] = value }
}

// WithLogger sets the logger used for request tracing at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a Client for baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		headers: map[string]string{},
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = NewHTTPClient(DefaultConfig())
	}
	return c
}

// BaseURL returns the normalised base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// URL joins path onto the base URL.
func (c *Client) URL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

func encodeBody(body any) (io.Reader, bool, error) {
	switch b := body.(type) {
	case nil:
		return nil, false, nil
	case []byte:
		return bytes.NewReader(b), false, nil
	case string:
		return strings.NewReader(b), false, nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, false, fmt.Errorf("encoding request body: %w", err)
		}
		return bytes.NewReader(data), true, nil
	}
}

// Send performs req. A transport failure returns a *TransportError and no
// response. A non-2xx status returns the response together with a
// *StatusError unless req.AllowErrorStatus is set.
func (c *Client) Send(ctx context.Context, req Request) (*Response, error) {
	url := c.URL(req.Path)

	body, isJSON, err := encodeBody(req.Body)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, url, body)
	if err != nil {
		return nil, fmt.Errorf("building %s %s: %w", req.Method, url, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if isJSON {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		httpReq.Header.Set(k, v)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	start := time.Now()
	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Debug("request failed", "method", req.Method, "url", url, "err", err)
		return nil, &TransportError{Method: req.Method, URL: url, Err: err}
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &TransportError{Method: req.Method, URL: url, Err: fmt.Errorf("reading body: %w", err)}
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       data,
	}
	c.logger.Debug("request",
		"method", req.Method,
		"url", url,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if !req.AllowErrorStatus && !resp.IsSuccess() {
		return resp, &StatusError{Method: req.Method, URL: url, StatusCode: resp.StatusCode, Body: data}
	}
	return resp, nil
}

// Get sends a GET.
func (c *Client) Get(ctx context.Context, path string, headers map[string]string) (*Response, error) {
	return c.Send(ctx, Request{Method: http.MethodGet, Path: path, Headers: headers})
}

// Post sends a POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any, headers map[string]string) (*Response, error) {
	return c.Send(ctx, Request{Method: http.MethodPost, Path: path, Body: body, Headers: headers})
}

// Put sends a PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body any, headers map[string]string) (*Response, error) {
	return c.Send(ctx, Request{Method: http.MethodPut, Path: path, Body: body, Headers: headers})
}

// Delete sends a DELETE.
func (c *Client) Delete(ctx context.Context, path string, headers map[string]string) (*Response, error) {
	return c.Send(ctx, Request{Method: http.MethodDelete, Path: path, Headers: headers})
}
