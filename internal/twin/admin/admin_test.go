package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/leicam1995/teste-api-ebac/internal/twin/twincore"
)

type mockState struct {
	data        map[string]string
	resetCalled bool
}

func newMockState() *mockState {
	return &mockState{data: map[string]string{"key": "value"}}
}

func (m *mockState) Snapshot() any { return m.data }

func (m *mockState) LoadState(data []byte) error {
	var d map[string]string
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	m.data = d
	return nil
}

func (m *mockState) Reset() {
	m.resetCalled = true
	m.data = map[string]string{"key": "value"}
}

func setup(t *testing.T) (*mockState, *twincore.Middleware, http.Handler) {
	t.Helper()
	state := newMockState()
	mw := twincore.NewMiddleware(&twincore.Config{Name: "serverest"}, nil)
	r := chi.NewRouter()
	NewHandler(state, mw).Routes(r)
	return state, mw, r
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestReset(t *testing.T) {
	state, mw, h := setup(t)
	mw.Faults.Set("/usuarios", twincore.FaultConfig{StatusCode: 500})
	mw.ReqLog.Add(twincore.RequestLogEntry{Path: "/usuarios"})

	rec := do(h, http.MethodPost, "/admin/reset", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"twin":"serverest"`) {
		t.Errorf("reset should name the twin: %s", rec.Body.String())
	}
	if !state.resetCalled {
		t.Error("expected state reset")
	}
	if len(mw.Faults.All()) != 0 || len(mw.ReqLog.Entries()) != 0 {
		t.Error("expected faults and request log to be cleared")
	}
}

func TestGetAndLoadState(t *testing.T) {
	state, _, h := setup(t)

	rec := do(h, http.MethodPost, "/admin/state", `{"seeded":"yes"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if state.data["seeded"] != "yes" {
		t.Errorf("state not loaded: %+v", state.data)
	}

	rec = do(h, http.MethodGet, "/admin/state", "")
	if !strings.Contains(rec.Body.String(), `"seeded":"yes"`) {
		t.Errorf("unexpected snapshot: %s", rec.Body.String())
	}
}

func TestLoadStateInvalidJSON(t *testing.T) {
	_, _, h := setup(t)
	rec := do(h, http.MethodPost, "/admin/state", `not json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestInjectAndRemoveNestedFault(t *testing.T) {
	_, mw, h := setup(t)

	rec := do(h, http.MethodPost, "/admin/fault/usuarios/abc", `{"status_code":503}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if mw.Faults.Check("/usuarios/abc") == nil {
		t.Fatal("expected fault registered for /usuarios/abc")
	}

	rec = do(h, http.MethodGet, "/admin/faults", "")
	if !strings.Contains(rec.Body.String(), "/usuarios/abc") {
		t.Errorf("fault missing from list: %s", rec.Body.String())
	}

	if rec := do(h, http.MethodDelete, "/admin/fault/usuarios/abc", ""); rec.Code != http.StatusOK {
		t.Errorf("expected 200 on remove, got %d", rec.Code)
	}
	if rec := do(h, http.MethodDelete, "/admin/fault/usuarios/abc", ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 on second remove, got %d", rec.Code)
	}
}

func TestHealthAndRequests(t *testing.T) {
	_, mw, h := setup(t)
	mw.ReqLog.Add(twincore.RequestLogEntry{Method: "POST", Path: "/login"})
	mw.ReqLog.Add(twincore.RequestLogEntry{Method: "GET", Path: "/usuarios", Bearer: true})
	mw.ReqLog.Add(twincore.RequestLogEntry{Method: "DELETE", Path: "/usuarios/0uxuPY0cbmQhpEz1", Bearer: true})

	rec := do(h, http.MethodGet, "/admin/health", "")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"twin":"serverest"`) {
		t.Errorf("health should name the twin: %s", rec.Body.String())
	}

	requests := func(query string) []twincore.RequestLogEntry {
		t.Helper()
		rec := do(h, http.MethodGet, "/admin/requests"+query, "")
		var entries []twincore.RequestLogEntry
		if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		return entries
	}
	if n := len(requests("")); n != 3 {
		t.Errorf("expected 3 entries, got %d", n)
	}
	if got := requests("?path=/usuarios"); len(got) != 2 {
		t.Errorf("expected 2 /usuarios entries, got %+v", got)
	}
	got := requests("?method=DELETE&path=/usuarios/")
	if len(got) != 1 || got[0].Path != "/usuarios/0uxuPY0cbmQhpEz1" || !got[0].Bearer {
		t.Errorf("unexpected delete entries: %+v", got)
	}
}

func TestInjectFaultNeedsAnEffect(t *testing.T) {
	_, mw, h := setup(t)

	rec := do(h, http.MethodPost, "/admin/fault/login", `{"message":"Email e/ou senha inválidos"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if mw.Faults.Check("/login") != nil {
		t.Error("fault without status, drop or delay must not be registered")
	}

	rec = do(h, http.MethodPost, "/admin/fault/login", `{"status_code":401,"message":"Email e/ou senha inválidos"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if f := mw.Faults.Check("/login"); f == nil || f.Message != "Email e/ou senha inválidos" {
		t.Errorf("unexpected fault: %+v", f)
	}
}
