package api

import (
	"encoding/json"
	"net/http"
	"net/mail"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/leicam1995/teste-api-ebac/internal/twin/serverest/store"
	"github.com/leicam1995/teste-api-ebac/internal/twin/twincore"
)

var (
	userFields  = []string{"nome", "email", "password", "administrador"}
	loginFields = []string{"email", "password"}
)

// validate checks body the way ServeRest's schema layer does: every field
// in fields is a required non-blank string, nothing else is allowed, and
// the email must be well formed. Errors are keyed by field name.
func validate(body map[string]any, fields []string) map[string]string {
	errs := map[string]string{}
	allowed := make(map[string]bool, len(fields))
	for _, f := range fields {
		allowed[f] = true
		v, ok := body[f]
		if !ok {
			errs[f] = f + " é obrigatório"
			continue
		}
		s, ok := v.(string)
		switch {
		case !ok:
			errs[f] = f + " deve ser uma string"
		case strings.TrimSpace(s) == "":
			errs[f] = f + " não pode ficar em branco"
		}
	}
	for k := range body {
		if !allowed[k] {
			errs[k] = k + " não é permitido"
		}
	}
	if _, bad := errs["email"]; !bad && allowed["email"] {
		if !validEmail(body["email"].(string)) {
			errs["email"] = store.MsgInvalidEmail
		}
	}
	if _, bad := errs["administrador"]; !bad && allowed["administrador"] {
		if a := body["administrador"].(string); a != "true" && a != "false" {
			errs["administrador"] = store.MsgInvalidAdminFlag
		}
	}
	return errs
}

// validEmail accepts a bare address with a dotted domain.
func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	at := strings.LastIndex(s, "@")
	return strings.Contains(s[at+1:], ".")
}

// decodeBody reads a JSON object body. It writes the 400 itself on failure.
func decodeBody(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		twincore.Message(w, http.StatusBadRequest, "Adicione um body válido na requisição: "+err.Error())
		return nil, false
	}
	if body == nil {
		body = map[string]any{}
	}
	return body, true
}

func userFromBody(id string, body map[string]any) store.User {
	return store.User{
		ID:            id,
		Nome:          body["nome"].(string),
		Email:         body["email"].(string),
		Password:      body["password"].(string),
		Administrador: body["administrador"].(string),
	}
}

// Login handles POST /login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeBody(w, r)
	if !ok {
		return
	}
	if errs := validate(body, loginFields); len(errs) > 0 {
		twincore.JSON(w, http.StatusBadRequest, errs)
		return
	}

	user, found := h.store.FindByEmail(body["email"].(string))
	if !found || user.Password != body["password"].(string) {
		twincore.Message(w, http.StatusUnauthorized, store.MsgLoginInvalid)
		return
	}

	token, err := h.store.IssueToken(user)
	if err != nil {
		twincore.Message(w, http.StatusInternalServerError, err.Error())
		return
	}
	twincore.JSON(w, http.StatusOK, map[string]any{
		"message":       store.MsgLoginOK,
		"authorization": "Bearer " + token,
	})
}

// ListUsers handles GET /usuarios
// Supports ?_id, ?nome, ?email, ?password and ?administrador exact filters.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	for k := range q {
		if k != "_id" && !slices.Contains(userFields, k) {
			twincore.JSON(w, http.StatusBadRequest, map[string]string{k: k + " não é permitido"})
			return
		}
	}

	users := h.store.Usuarios.Filter(func(id string, u store.User) bool {
		fields := map[string]string{
			"_id":           id,
			"nome":          u.Nome,
			"email":         u.Email,
			"password":      u.Password,
			"administrador": u.Administrador,
		}
		for k := range q {
			if fields[k] != q.Get(k) {
				return false
			}
		}
		return true
	})
	if users == nil {
		users = []store.User{}
	}

	twincore.JSON(w, http.StatusOK, map[string]any{
		"quantidade": len(users),
		"usuarios":   users,
	})
}

// CreateUser handles POST /usuarios
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeBody(w, r)
	if !ok {
		return
	}
	if errs := validate(body, userFields); len(errs) > 0 {
		twincore.JSON(w, http.StatusBadRequest, errs)
		return
	}
	if _, taken := h.store.FindByEmail(body["email"].(string)); taken {
		twincore.Message(w, http.StatusBadRequest, store.MsgEmailInUse)
		return
	}

	id := h.store.Usuarios.NextID()
	h.store.Usuarios.Set(id, userFromBody(id, body))
	twincore.JSON(w, http.StatusCreated, map[string]any{
		"message": store.MsgCreated,
		"_id":     id,
	})
}

// GetUser handles GET /usuarios/{id}
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if len(id) != 16 {
		twincore.JSON(w, http.StatusBadRequest, map[string]string{"id": "id deve ter exatamente 16 caracteres alfanuméricos"})
		return
	}
	user, ok := h.store.Usuarios.Get(id)
	if !ok {
		twincore.Message(w, http.StatusBadRequest, store.MsgUserNotFound)
		return
	}
	twincore.JSON(w, http.StatusOK, user)
}

// UpdateUser handles PUT /usuarios/{id}
// An unknown id creates the user, as the real service does.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	body, ok := decodeBody(w, r)
	if !ok {
		return
	}
	if errs := validate(body, userFields); len(errs) > 0 {
		twincore.JSON(w, http.StatusBadRequest, errs)
		return
	}
	if other, taken := h.store.FindByEmail(body["email"].(string)); taken && other.ID != id {
		twincore.Message(w, http.StatusBadRequest, store.MsgEmailInUse)
		return
	}

	if _, exists := h.store.Usuarios.Get(id); exists {
		h.store.Usuarios.Set(id, userFromBody(id, body))
		twincore.Message(w, http.StatusOK, store.MsgUpdated)
		return
	}

	newID := h.store.Usuarios.NextID()
	h.store.Usuarios.Set(newID, userFromBody(newID, body))
	twincore.JSON(w, http.StatusCreated, map[string]any{
		"message": store.MsgCreated,
		"_id":     newID,
	})
}

// DeleteUser handles DELETE /usuarios/{id}
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if cart, ok := h.store.CartOf(id); ok {
		twincore.JSON(w, http.StatusBadRequest, map[string]any{
			"message":    store.MsgDeleteWithCart,
			"idCarrinho": cart.ID,
		})
		return
	}
	if !h.store.Usuarios.Delete(id) {
		twincore.Message(w, http.StatusOK, store.MsgNothingDeleted)
		return
	}
	twincore.Message(w, http.StatusOK, store.MsgDeleted)
}
