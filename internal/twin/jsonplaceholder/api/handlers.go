package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/tidwall/gjson"

	"github.com/leicam1995/teste-api-ebac/internal/twin/jsonplaceholder/store"
	"github.com/leicam1995/teste-api-ebac/internal/twin/twincore"
)

// empty is the body JSONPlaceholder answers with for misses and deletes.
var empty = map[string]any{}

func decodeBody(r *http.Request) map[string]any {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body == nil {
		return map[string]any{}
	}
	return body
}

// toObject round-trips v through JSON so it can be merged key by key. The
// result is never nil.
func toObject(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if m == nil {
		m = map[string]any{}
	}
	return m, nil
}

func (h *Handler) lookup(r *http.Request) (store.User, int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		return store.User{}, 0, false
	}
	u, ok := h.store.Get(id)
	return u, id, ok
}

// ListUsers handles GET /users
// Every query parameter is an exact filter; dotted keys reach nested
// fields (?address.city=Gwenborough).
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	users := h.store.Users.Filter(func(_ string, u store.User) bool {
		if len(q) == 0 {
			return true
		}
		doc, err := json.Marshal(u)
		if err != nil {
			return false
		}
		for k := range q {
			if gjson.GetBytes(doc, k).String() != q.Get(k) {
				return false
			}
		}
		return true
	})
	if users == nil {
		users = []store.User{}
	}
	twincore.JSON(w, http.StatusOK, users)
}

// GetUser handles GET /users/{id}
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	u, _, ok := h.lookup(r)
	if !ok {
		twincore.JSON(w, http.StatusNotFound, empty)
		return
	}
	twincore.JSON(w, http.StatusOK, u)
}

// CreateUser handles POST /users
// The payload is echoed with the next id and is not persisted. No field is
// validated, so a malformed email is accepted.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	body := decodeBody(r)
	body["id"] = h.store.Users.Count() + 1
	twincore.JSON(w, http.StatusCreated, body)
}

// ReplaceUser handles PUT /users/{id}
// Known ids echo the payload with the id; unknown ids fail with 500 like the
// real service. Nothing is persisted.
func (h *Handler) ReplaceUser(w http.ResponseWriter, r *http.Request) {
	_, id, ok := h.lookup(r)
	if !ok {
		twincore.JSON(w, http.StatusInternalServerError, empty)
		return
	}
	body := decodeBody(r)
	body["id"] = id
	twincore.JSON(w, http.StatusOK, body)
}

// PatchUser handles PATCH /users/{id}
// The payload is shallow-merged over the stored user and echoed.
func (h *Handler) PatchUser(w http.ResponseWriter, r *http.Request) {
	u, id, ok := h.lookup(r)
	if !ok {
		twincore.JSON(w, http.StatusNotFound, empty)
		return
	}
	merged, err := toObject(u)
	if err != nil {
		twincore.JSON(w, http.StatusInternalServerError, empty)
		return
	}
	for k, v := range decodeBody(r) {
		merged[k] = v
	}
	merged["id"] = id
	twincore.JSON(w, http.StatusOK, merged)
}

// DeleteUser handles DELETE /users/{id}
// Always 200 with an empty object, whether or not the id exists.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	twincore.JSON(w, http.StatusOK, empty)
}
