// Package testutil drives the ServeRest and JSONPlaceholder twins from
// handler tests: a client that can log in to ServeRest, key-set assertions
// for both user shapes, and the /admin/* calls.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"strings"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/leicam1995/teste-api-ebac/internal/twin/twincore"
)

// Key sets of the user entities each service returns.
var (
	ServeRestUserKeys   = []string{"_id", "nome", "email", "password", "administrador"}
	PlaceholderUserKeys = []string{"id", "name", "username", "email", "address", "phone", "website", "company"}
)

// AssertKeys fails the test unless obj has exactly keys.
func AssertKeys(t *testing.T, obj map[string]any, keys ...string) {
	t.Helper()
	for _, k := range keys {
		if _, ok := obj[k]; !ok {
			t.Errorf("missing key %q in %v", k, obj)
		}
	}
	for k := range obj {
		if !slices.Contains(keys, k) {
			t.Errorf("unexpected key %q in %v", k, obj)
		}
	}
}

// TwinClient is an HTTP client bound to a test server.
type TwinClient struct {
	BaseURL    string
	HTTPClient *http.Client
	Headers    map[string]string
	t          *testing.T
}

// NewTwinClient creates a client pointed at server.
func NewTwinClient(t *testing.T, server *httptest.Server) *TwinClient {
	return &TwinClient{
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
		Headers:    map[string]string{},
		t:          t,
	}
}

// Response wraps an HTTP response with assertion helpers.
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
	t          *testing.T
}

// JSON unmarshals the body into v or fails the test.
func (r *Response) JSON(v any) {
	r.t.Helper()
	if err := json.Unmarshal(r.Body, v); err != nil {
		r.t.Fatalf("failed to unmarshal response: %v\nbody: %s", err, string(r.Body))
	}
}

// JSONMap returns the body as an object.
func (r *Response) JSONMap() map[string]any {
	r.t.Helper()
	var m map[string]any
	r.JSON(&m)
	return m
}

// JSONArray returns the body as an array.
func (r *Response) JSONArray() []any {
	r.t.Helper()
	var a []any
	r.JSON(&a)
	return a
}

// AssertStatus asserts the status code.
func (r *Response) AssertStatus(expected int) *Response {
	r.t.Helper()
	if r.StatusCode != expected {
		r.t.Errorf("expected status %d, got %d\nbody: %s", expected, r.StatusCode, string(r.Body))
	}
	return r
}

// AssertBodyContains asserts the body contains substr.
func (r *Response) AssertBodyContains(substr string) *Response {
	r.t.Helper()
	if !strings.Contains(string(r.Body), substr) {
		r.t.Errorf("expected body to contain %q, got: %s", substr, string(r.Body))
	}
	return r
}

// Field returns the value at a gjson path, such as "usuarios.0._id".
func (r *Response) Field(path string) gjson.Result {
	return gjson.GetBytes(r.Body, path)
}

// AssertKeys asserts the body is an object with exactly keys.
func (r *Response) AssertKeys(keys ...string) *Response {
	r.t.Helper()
	AssertKeys(r.t, r.JSONMap(), keys...)
	return r
}

// AssertMessage asserts the body is {"message": expected, ...}.
func (r *Response) AssertMessage(expected string) *Response {
	r.t.Helper()
	var m map[string]any
	if err := json.Unmarshal(r.Body, &m); err != nil {
		r.t.Errorf("expected JSON object with message %q, got: %s", expected, string(r.Body))
		return r
	}
	if m["message"] != expected {
		r.t.Errorf("expected message %q, got %v", expected, m["message"])
	}
	return r
}

// Login posts credentials to the ServeRest /login route, requires a 200
// with a Bearer token, and sends that token on every later request.
func (c *TwinClient) Login(email, password string) string {
	c.t.Helper()
	resp := c.Post("/login", map[string]string{"email": email, "password": password})
	if resp.StatusCode != http.StatusOK {
		c.t.Fatalf("login as %s: status %d: %s", email, resp.StatusCode, string(resp.Body))
	}
	token := resp.Field("authorization").String()
	if !strings.HasPrefix(token, "Bearer ") {
		c.t.Fatalf("login as %s: expected Bearer token, got %q", email, token)
	}
	c.Headers["Authorization"] = token
	return token
}

// Get performs a GET request.
func (c *TwinClient) Get(path string) *Response {
	c.t.Helper()
	return c.Do(http.MethodGet, path, nil, nil)
}

// Post performs a POST request with a JSON body.
func (c *TwinClient) Post(path string, body any) *Response {
	c.t.Helper()
	return c.Do(http.MethodPost, path, body, nil)
}

// Put performs a PUT request with a JSON body.
func (c *TwinClient) Put(path string, body any) *Response {
	c.t.Helper()
	return c.Do(http.MethodPut, path, body, nil)
}

// Delete performs a DELETE request.
func (c *TwinClient) Delete(path string) *Response {
	c.t.Helper()
	return c.Do(http.MethodDelete, path, nil, nil)
}

// Do performs a request. Client-level Headers are applied first, then headers.
func (c *TwinClient) Do(method, path string, body any, headers map[string]string) *Response {
	c.t.Helper()

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			c.t.Fatalf("failed to marshal body: %v", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, bodyReader)
	if err != nil {
		c.t.Fatalf("failed to create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.Headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.t.Fatalf("failed to read response: %v", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       respBody,
		Headers:    resp.Header,
		t:          c.t,
	}
}

// AdminClient wraps the /admin/* control plane.
type AdminClient struct {
	*TwinClient
}

// NewAdminClient creates an admin client sharing tc's server.
func NewAdminClient(tc *TwinClient) *AdminClient {
	return &AdminClient{tc}
}

// Reset calls POST /admin/reset.
func (ac *AdminClient) Reset() *Response {
	ac.t.Helper()
	return ac.Post("/admin/reset", nil)
}

// GetState calls GET /admin/state.
func (ac *AdminClient) GetState() *Response {
	ac.t.Helper()
	return ac.Get("/admin/state")
}

// LoadState calls POST /admin/state.
func (ac *AdminClient) LoadState(state any) *Response {
	ac.t.Helper()
	return ac.Post("/admin/state", state)
}

// Requests calls GET /admin/requests filtered by method and path prefix.
func (ac *AdminClient) Requests(method, pathPrefix string) []twincore.RequestLogEntry {
	ac.t.Helper()
	q := url.Values{}
	if method != "" {
		q.Set("method", method)
	}
	if pathPrefix != "" {
		q.Set("path", pathPrefix)
	}
	path := "/admin/requests"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var entries []twincore.RequestLogEntry
	ac.Get(path).AssertStatus(http.StatusOK).JSON(&entries)
	return entries
}

// InjectFault calls POST /admin/fault/{endpoint}.
func (ac *AdminClient) InjectFault(endpoint string, fault any) *Response {
	ac.t.Helper()
	return ac.Post("/admin/fault/"+strings.TrimPrefix(endpoint, "/"), fault)
}
