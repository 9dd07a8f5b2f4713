// Package api implements the ServeRest-compatible HTTP handlers for the twin.
package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/leicam1995/teste-api-ebac/internal/twin/serverest/store"
	"github.com/leicam1995/teste-api-ebac/internal/twin/twincore"
)

// Handler holds all API handler state.
type Handler struct {
	store *store.MemoryStore
	mw    *twincore.Middleware

	// RequireAuth makes write operations on /usuarios demand a token issued
	// by /login. The public service does not enforce this; the strict mode
	// lets tests prove that a session is actually attached.
	RequireAuth bool
}

// NewHandler creates a new API handler. Injected failures on the twin then
// answer in ServeRest's {"message": ...} format.
func NewHandler(s *store.MemoryStore, mw *twincore.Middleware) *Handler {
	mw.ErrorBody = errorBody
	return &Handler{store: s, mw: mw}
}

// errorBody gives an injected 401 the message ServeRest sends for a bad
// token; other statuses carry their status text.
func errorBody(status int) any {
	if status == http.StatusUnauthorized {
		return map[string]string{"message": store.MsgTokenRejected}
	}
	return twincore.StatusTextBody(status)
}

// Routes mounts the ServeRest routes.
func (h *Handler) Routes(r chi.Router) {
	r.With(h.mw.FaultInjection).Post("/login", h.Login)

	r.Route("/usuarios", func(r chi.Router) {
		r.Use(h.mw.FaultInjection)

		r.Get("/", h.ListUsers)
		r.Get("/{id}", h.GetUser)
		r.Group(func(r chi.Router) {
			r.Use(h.bearerAuth)
			r.Post("/", h.CreateUser)
			r.Put("/{id}", h.UpdateUser)
			r.Delete("/{id}", h.DeleteUser)
		})
	})
}

// bearerAuth enforces RequireAuth.
func (h *Handler) bearerAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.RequireAuth {
			next.ServeHTTP(w, r)
			return
		}
		header := r.Header.Get("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if token == header || token == "" || !h.store.TokenValid(token) {
			twincore.Message(w, http.StatusUnauthorized, store.MsgTokenRejected)
			return
		}
		next.ServeHTTP(w, r)
	})
}
