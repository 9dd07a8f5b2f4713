// Package auth obtains bearer-token sessions from a login endpoint.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/leicam1995/teste-api-ebac/internal/httpclient"
)

var (
	// ErrLoginFailed is wrapped by every *LoginError.
	ErrLoginFailed = errors.New("login failed")
	// ErrMissingToken means the login succeeded but carried no token.
	ErrMissingToken = errors.New("login response has no token")
)

// LoginError reports a login answered with a status other than 200.
type LoginError struct {
	StatusCode int
	Message    string
}

func (e *LoginError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("login failed: status %d", e.StatusCode)
	}
	return fmt.Sprintf("login failed: status %d: %s", e.StatusCode, e.Message)
}

func (e *LoginError) Unwrap() error { return ErrLoginFailed }

// Credentials are the e-mail and password sent to the login endpoint.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Provider logs in against one service.
type Provider struct {
	client     *httpclient.Client
	path       string
	tokenField string
	now        func() time.Time
}

// Option configures a Provider.
type Option func(*Provider)

// WithPath overrides the login path (default /login).
func WithPath(path string) Option {
	return func(p *Provider) { p.path = path }
}

// WithTokenField overrides the response field holding the token (default
// "authorization"). Dotted paths reach nested fields.
func WithTokenField(field string) Option {
	return func(p *Provider) { p.tokenField = field }
}

// NewProvider creates a Provider that logs in through client.
func NewProvider(client *httpclient.Client, opts ...Option) *Provider {
	p := &Provider{
		client:     client,
		path:       "/login",
		tokenField: "authorization",
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Login sends exactly one POST with creds and returns the session. The
// token is stored without any leading "Bearer " so it is never doubled when
// the session renders its header.
func (p *Provider) Login(ctx context.Context, creds Credentials) (*Session, error) {
	resp, err := p.client.Send(ctx, httpclient.Request{
		Method:           http.MethodPost,
		Path:             p.path,
		Body:             creds,
		AllowErrorStatus: true,
	})
	if err != nil {
		return nil, fmt.Errorf("login request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &LoginError{
			StatusCode: resp.StatusCode,
			Message:    resp.Get("message").String(),
		}
	}

	token := strings.TrimSpace(resp.Get(p.tokenField).String())
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return nil, ErrMissingToken
	}
	return &Session{Token: token, IssuedAt: p.now()}, nil
}
