// Package adminclient talks to the /admin endpoints of a running twin.
package adminclient

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/leicam1995/teste-api-ebac/internal/httpclient"
	"github.com/leicam1995/teste-api-ebac/internal/twin/twincore"
)

// Client is an admin client for one twin.
type Client struct {
	http *httpclient.Client
}

// New creates a Client for the twin at baseURL with a 5-second timeout.
func New(baseURL string, opts ...httpclient.Option) *Client {
	hc := httpclient.NewHTTPClient(httpclient.ClientConfig{Timeout: 5 * time.Second})
	opts = append([]httpclient.Option{httpclient.WithHTTPClient(hc)}, opts...)
	return &Client{http: httpclient.New(baseURL, opts...)}
}

// Health checks GET /admin/health.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.http.Get(ctx, "/admin/health", nil)
	return err
}

// WaitHealthy polls Health until it succeeds or ctx is done.
func (c *Client) WaitHealthy(ctx context.Context, interval time.Duration) error {
	for {
		err := c.Health(ctx)
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("twin at %s not healthy: %w", c.http.BaseURL(), err)
		case <-time.After(interval):
		}
	}
}

// Reset restores the twin's seed and clears faults and the request log.
func (c *Client) Reset(ctx context.Context) error {
	_, err := c.http.Post(ctx, "/admin/reset", nil, nil)
	return err
}

// State returns the twin's full state as JSON.
func (c *Client) State(ctx context.Context) ([]byte, error) {
	resp, err := c.http.Get(ctx, "/admin/state", nil)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// Seed replaces the twin's state with data, which becomes the state
// Reset returns to.
func (c *Client) Seed(ctx context.Context, data []byte) error {
	_, err := c.http.Post(ctx, "/admin/state", data, map[string]string{"Content-Type": "application/json"})
	return err
}

// SeedFile is Seed with the contents of a JSON file.
func (c *Client) SeedFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading seed file: %w", err)
	}
	return c.Seed(ctx, data)
}

// InjectFault registers fault for the exact request path.
func (c *Client) InjectFault(ctx context.Context, path string, fault twincore.FaultConfig) error {
	_, err := c.http.Post(ctx, "/admin/fault/"+strings.TrimPrefix(path, "/"), fault, nil)
	return err
}

// RemoveFault clears the fault for path.
func (c *Client) RemoveFault(ctx context.Context, path string) error {
	_, err := c.http.Send(ctx, httpclient.Request{
		Method: http.MethodDelete,
		Path:   "/admin/fault/" + strings.TrimPrefix(path, "/"),
	})
	return err
}
