// Package admin provides the /admin/* control plane shared by the ServeRest
// and JSONPlaceholder twins. A contract run uses it to reseed users between
// suites, inject failures on /login, /usuarios or /users, and check which
// requests a suite actually sent.
package admin

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/leicam1995/teste-api-ebac/internal/twin/twincore"
)

// StateStore is implemented by every twin's memory store.
type StateStore interface {
	// Snapshot returns the full state as a JSON-serializable value.
	Snapshot() any
	// LoadState replaces the full state from a JSON document.
	LoadState(data []byte) error
	// Reset restores the initial (seeded) state.
	Reset()
}

// Handler serves the admin endpoints.
type Handler struct {
	state StateStore
	mw    *twincore.Middleware
}

// NewHandler creates an admin handler.
func NewHandler(state StateStore, mw *twincore.Middleware) *Handler {
	return &Handler{state: state, mw: mw}
}

// Routes mounts the admin endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Post("/reset", h.handleReset)
		r.Get("/state", h.handleGetState)
		r.Post("/state", h.handleLoadState)
		r.Post("/fault/*", h.handleInjectFault)
		r.Delete("/fault/*", h.handleRemoveFault)
		r.Get("/faults", h.handleListFaults)
		r.Get("/requests", h.handleGetRequests)
		r.Get("/health", h.handleHealth)
	})
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	h.state.Reset()
	h.mw.ReqLog.Clear()
	h.mw.Faults.Reset()
	twincore.JSON(w, http.StatusOK, map[string]string{"status": "reset", "twin": h.mw.Name()})
}

func (h *Handler) handleGetState(w http.ResponseWriter, r *http.Request) {
	twincore.JSON(w, http.StatusOK, h.state.Snapshot())
}

func (h *Handler) handleLoadState(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		twincore.Message(w, http.StatusBadRequest, "failed to read body: "+err.Error())
		return
	}
	if err := h.state.LoadState(body); err != nil {
		twincore.Message(w, http.StatusBadRequest, "failed to load state: "+err.Error())
		return
	}
	twincore.JSON(w, http.StatusOK, map[string]string{"status": "loaded"})
}

// faultPath maps /admin/fault/usuarios/0uxuPY0cbmQhpEz1 to
// /usuarios/0uxuPY0cbmQhpEz1.
func faultPath(r *http.Request) string {
	return "/" + chi.URLParam(r, "*")
}

func (h *Handler) handleInjectFault(w http.ResponseWriter, r *http.Request) {
	endpoint := faultPath(r)

	var fault twincore.FaultConfig
	if err := json.NewDecoder(r.Body).Decode(&fault); err != nil {
		twincore.Message(w, http.StatusBadRequest, "invalid fault config: "+err.Error())
		return
	}
	if fault.StatusCode == 0 && !fault.Drop && fault.Delay == 0 {
		twincore.Message(w, http.StatusBadRequest, "fault for "+endpoint+" needs status_code, drop or delay")
		return
	}
	h.mw.Faults.Set(endpoint, fault)
	twincore.JSON(w, http.StatusOK, map[string]any{
		"status":   "injected",
		"endpoint": endpoint,
		"fault":    fault,
	})
}

func (h *Handler) handleRemoveFault(w http.ResponseWriter, r *http.Request) {
	endpoint := faultPath(r)
	if !h.mw.Faults.Remove(endpoint) {
		twincore.Message(w, http.StatusNotFound, "no fault registered for "+endpoint)
		return
	}
	twincore.JSON(w, http.StatusOK, map[string]any{"status": "removed", "endpoint": endpoint})
}

func (h *Handler) handleListFaults(w http.ResponseWriter, r *http.Request) {
	twincore.JSON(w, http.StatusOK, h.mw.Faults.All())
}

// handleGetRequests lists logged requests. ?method=DELETE&path=/usuarios/
// narrows the list to one verb and path prefix.
func (h *Handler) handleGetRequests(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	twincore.JSON(w, http.StatusOK, h.mw.ReqLog.Filter(q.Get("method"), q.Get("path")))
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	twincore.JSON(w, http.StatusOK, map[string]string{"status": "ok", "twin": h.mw.Name()})
}
