package auth

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leicam1995/teste-api-ebac/internal/httpclient"
	"github.com/leicam1995/teste-api-ebac/internal/twin/serverest"
	"github.com/leicam1995/teste-api-ebac/internal/twin/twincore"
)

func serveRestTwin(t *testing.T) *httptest.Server {
	t.Helper()
	tw, _, err := serverest.New(&twincore.Config{Name: "serverest"}, nil, serverest.WithRequireAuth())
	require.NoError(t, err)
	srv := httptest.NewServer(tw)
	t.Cleanup(srv.Close)
	return srv
}

func TestLoginAgainstTwin(t *testing.T) {
	srv := serveRestTwin(t)
	client := httpclient.New(srv.URL)

	s, err := NewProvider(client).Login(context.Background(), Credentials{Email: "fulano@qa.com", Password: "teste"})
	require.NoError(t, err)
	assert.True(t, s.Authorized())
	assert.NotContains(t, s.Token, "Bearer")
	assert.False(t, s.IssuedAt.IsZero())

	// The token must open the strict-auth write path.
	resp, err := client.Post(context.Background(), "/usuarios", map[string]any{
		"nome": "A", "email": "auth-test@qa.com", "password": "x", "administrador": "false",
	}, s.Headers())
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestLoginBadCredentials(t *testing.T) {
	srv := serveRestTwin(t)

	_, err := NewProvider(httpclient.New(srv.URL)).Login(context.Background(), Credentials{Email: "fulano@qa.com", Password: "wrong"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLoginFailed)

	var le *LoginError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, http.StatusUnauthorized, le.StatusCode)
	assert.Equal(t, "Email e/ou senha inválidos", le.Message)
}

func TestLoginMissingToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"message":"Login realizado com sucesso"}`)
	}))
	t.Cleanup(srv.Close)

	_, err := NewProvider(httpclient.New(srv.URL)).Login(context.Background(), Credentials{})
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestLoginCustomPathAndField(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/auth/token", r.URL.Path)
		io.WriteString(w, `{"data":{"token":"raw-token"}}`)
	}))
	t.Cleanup(srv.Close)

	p := NewProvider(httpclient.New(srv.URL), WithPath("/auth/token"), WithTokenField("data.token"))
	s, err := p.Login(context.Background(), Credentials{Email: "a", Password: "b"})
	require.NoError(t, err)
	assert.Equal(t, "raw-token", s.Token)
	assert.Equal(t, 1, calls)
}

func TestLoginTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewProvider(httpclient.New(url)).Login(context.Background(), Credentials{})
	var te *httpclient.TransportError
	assert.True(t, errors.As(err, &te))
	assert.NotErrorIs(t, err, ErrLoginFailed)
}

func TestSessionHeaders(t *testing.T) {
	assert.Equal(t, map[string]string{"Authorization": "Bearer abc"}, (&Session{Token: "abc"}).Headers())
	assert.Empty(t, Anonymous().Headers())
	assert.False(t, Anonymous().Authorized())

	var nilSession *Session
	assert.Empty(t, nilSession.Headers())
	assert.False(t, nilSession.Authorized())
}
