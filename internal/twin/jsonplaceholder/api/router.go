// Package api implements the JSONPlaceholder-compatible /users handlers.
package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/leicam1995/teste-api-ebac/internal/twin/jsonplaceholder/store"
	"github.com/leicam1995/teste-api-ebac/internal/twin/twincore"
)

// Handler holds all API handler state.
type Handler struct {
	store *store.MemoryStore
	mw    *twincore.Middleware
}

// NewHandler creates a new API handler. JSONPlaceholder answers every
// failure with an empty object, and so do injected faults on the twin.
func NewHandler(s *store.MemoryStore, mw *twincore.Middleware) *Handler {
	mw.ErrorBody = func(int) any { return empty }
	return &Handler{store: s, mw: mw}
}

// Routes mounts the /users routes.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Use(h.mw.FaultInjection)

		r.Get("/", h.ListUsers)
		r.Post("/", h.CreateUser)
		r.Get("/{id}", h.GetUser)
		r.Put("/{id}", h.ReplaceUser)
		r.Patch("/{id}", h.PatchUser)
		r.Delete("/{id}", h.DeleteUser)
	})
}
