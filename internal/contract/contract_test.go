package contract

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leicam1995/teste-api-ebac/internal/fixture"
	"github.com/leicam1995/teste-api-ebac/internal/httpclient"
)

func serveRestUser() map[string]any {
	return map[string]any{
		"_id":           "0uxuPY0cbmQhpEz1",
		"nome":          "Fulano da Silva",
		"email":         "fulano@qa.com",
		"password":      "teste",
		"administrador": "true",
	}
}

func TestExactKeys(t *testing.T) {
	assert.NoError(t, ExactKeys(serveRestUser(), ServeRestUser))

	u := serveRestUser()
	delete(u, "password")
	u["token"] = "x"
	u["age"] = 3

	err := ExactKeys(u, ServeRestUser)
	var v *KeySetViolation
	require.ErrorAs(t, err, &v)
	assert.Equal(t, []string{"password"}, v.Missing)
	assert.Equal(t, []string{"age", "token"}, v.Extra)
	assert.Equal(t, -1, v.Index)
	assert.Equal(t, "serverest.usuario: missing password; unexpected age, token", err.Error())
}

func TestExactKeysAll(t *testing.T) {
	good := serveRestUser()
	bad := serveRestUser()
	delete(bad, "email")

	assert.NoError(t, ExactKeysAll([]any{good, good}, ServeRestUser))
	assert.NoError(t, ExactKeysAll(nil, ServeRestUser))

	var v *KeySetViolation
	require.ErrorAs(t, ExactKeysAll([]any{good, bad, bad}, ServeRestUser), &v)
	assert.Equal(t, 1, v.Index)
	assert.Equal(t, []string{"email"}, v.Missing)

	err := ExactKeysAll([]any{"string"}, ServeRestUser)
	require.ErrorAs(t, err, &v)
	assert.Contains(t, err.Error(), "[0]: not an object")
}

func TestIncludes(t *testing.T) {
	submitted := map[string]any{
		"name": "Fulano",
		"address": map[string]any{
			"city": "Recife",
			"geo":  map[string]any{"lat": "1.5"},
		},
		"age": 3,
	}
	returned := map[string]any{
		"id":   float64(11),
		"name": "Fulano",
		"address": map[string]any{
			"city": "Recife",
			"geo":  map[string]any{"lat": "1.5", "id": float64(1)},
		},
		"age": float64(3),
	}
	assert.NoError(t, Includes(submitted, returned))
}

type address map[string]any

func TestIncludesNamedMapTypes(t *testing.T) {
	submitted := fixture.Payload{
		"name": "Fulano",
		"address": fixture.Payload{
			"city": "Recife",
			"geo":  address{"lat": "1.5"},
		},
	}
	returned := map[string]any{
		"name": "Fulano",
		"address": map[string]any{
			"city": "Recife",
			"geo":  map[string]any{"lat": "1.5", "lng": "2"},
		},
	}
	assert.NoError(t, Includes(submitted, returned))

	returned["address"].(map[string]any)["geo"] = map[string]any{"lat": "9"}
	var fm *FieldMismatch
	require.ErrorAs(t, Includes(submitted, returned), &fm)
	assert.Equal(t, "address.geo.lat", fm.Path)
}

func TestIncludesMismatch(t *testing.T) {
	tests := []struct {
		name     string
		actual   map[string]any
		wantPath string
		missing  bool
	}{
		{"missing top-level", map[string]any{"address": map[string]any{"geo": map[string]any{"lat": "1"}}}, "name", true},
		{"different nested", map[string]any{"name": "a", "address": map[string]any{"geo": map[string]any{"lat": "2"}}}, "address.geo.lat", false},
		{"nested not an object", map[string]any{"name": "a", "address": "Rua"}, "address", false},
		{"number vs string", map[string]any{"name": "a", "address": map[string]any{"geo": map[string]any{"lat": 1}}}, "address.geo.lat", false},
	}
	expected := map[string]any{
		"name":    "a",
		"address": map[string]any{"geo": map[string]any{"lat": "1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var fm *FieldMismatch
			require.ErrorAs(t, Includes(expected, tt.actual), &fm)
			assert.Equal(t, tt.wantPath, fm.Path)
			assert.Equal(t, tt.missing, fm.Missing)
		})
	}
}

func TestMessageChecks(t *testing.T) {
	body := []byte(`{"message":"Cadastro realizado com sucesso","_id":"abc"}`)

	assert.NoError(t, MessageEquals(body, "message", "Cadastro realizado com sucesso"))
	assert.NoError(t, MessageContains(body, "message", "realizado"))

	var me *MessageError
	require.ErrorAs(t, MessageEquals(body, "message", "x"), &me)
	assert.True(t, me.Found)
	require.ErrorAs(t, MessageEquals(body, "error", "x"), &me)
	assert.False(t, me.Found)

	fieldErr := []byte(`{"email":"email deve ser um email válido"}`)
	assert.NoError(t, AnyMessageContains(fieldErr, "email deve ser um email válido", "message", "email"))
	assert.Error(t, AnyMessageContains(fieldErr, "outra coisa", "message", "email"))
}

func resp(status int, body string) *httpclient.Response {
	return &httpclient.Response{StatusCode: status, Body: []byte(body)}
}

func TestClassifyNegative(t *testing.T) {
	r := resp(400, `{"email":"email deve ser um email válido"}`)
	o, err := ClassifyNegative(r, nil)
	require.NoError(t, err)
	assert.Equal(t, Rejected, o)

	o, err = ClassifyNegative(r, &httpclient.StatusError{StatusCode: 400})
	require.NoError(t, err)
	assert.Equal(t, Rejected, o)

	o, err = ClassifyNegative(resp(201, `{"id":11}`), nil)
	require.NoError(t, err)
	assert.Equal(t, AcceptedNonCompliant, o)

	te := &httpclient.TransportError{Method: "POST", URL: "http://x", Err: errors.New("connection reset")}
	o, err = ClassifyNegative(nil, fmt.Errorf("create: %w", te))
	assert.Equal(t, TransportError, o)
	assert.Error(t, err)

	_, err = ClassifyNegative(resp(500, `{}`), nil)
	assert.ErrorContains(t, err, "unexpected status 500")

	_, err = ClassifyNegative(nil, errors.New("encoding request body"))
	assert.Error(t, err)
}

func TestClassifyDelete(t *testing.T) {
	tests := []struct {
		name    string
		resp    *httpclient.Response
		want    DeleteOutcome
		wantErr bool
	}{
		{"deleted", resp(200, `{"message":"Registro excluído com sucesso"}`), Deleted, false},
		{"nothing deleted", resp(200, `{"message":"Nenhum registro excluído"}`), NotFound, false},
		{"cart conflict", resp(400, `{"message":"Não é permitido excluir usuário com carrinho cadastrado","idCarrinho":"qbMq"}`), Conflict, false},
		{"not found", resp(404, `{}`), NotFound, false},
		{"other 400", resp(400, `{"message":"outra coisa"}`), 0, true},
		{"200 wrong message", resp(200, `{"message":"ok"}`), 0, true},
		{"200 empty body", resp(200, `{}`), 0, true},
		{"400 idCarrinho only", resp(400, `{"message":"erro","idCarrinho":"qbMq"}`), 0, true},
		{"400 message only", resp(400, `{"message":"Não é permitido excluir usuário com carrinho cadastrado"}`), 0, true},
		{"409 conflict", resp(409, `{"message":"Não é permitido excluir usuário com carrinho cadastrado","idCarrinho":"qbMq"}`), 0, true},
		{"204 no content", resp(204, ``), 0, true},
		{"server error", resp(500, `{}`), 0, true},
		{"nil", nil, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ClassifyDelete(tt.resp)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyDeleteStatus(t *testing.T) {
	tests := []struct {
		name    string
		resp    *httpclient.Response
		want    DeleteOutcome
		wantErr bool
	}{
		{"empty body", resp(200, `{}`), Deleted, false},
		{"not found", resp(404, `{}`), NotFound, false},
		{"bad request", resp(400, `{}`), 0, true},
		{"nil", nil, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ClassifyDeleteStatus(tt.resp)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOutcomeStrings(t *testing.T) {
	assert.Equal(t, "accepted-noncompliant", AcceptedNonCompliant.String())
	assert.Equal(t, "conflict", Conflict.String())
	assert.Equal(t, "NegativeOutcome(9)", NegativeOutcome(9).String())
}
