package fixture

import (
	"net/mail"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeRestUser(t *testing.T) {
	g := NewGenerator(42)

	p, err := g.ServeRestUser()
	require.NoError(t, err)

	assert.Len(t, p, 4)
	for _, k := range []string{"nome", "email", "password", "administrador"} {
		v, ok := p[k].(string)
		require.True(t, ok, "field %s should be a string", k)
		assert.NotEmpty(t, v, k)
	}
	assert.Equal(t, "true", p["administrador"])

	_, err = mail.ParseAddress(p["email"].(string))
	assert.NoError(t, err)
}

func TestEmailsAreUnique(t *testing.T) {
	a, b := NewGenerator(7), NewGenerator(7)
	seen := map[string]bool{}
	for range 50 {
		for _, g := range []*Generator{a, b} {
			e := g.Email()
			assert.False(t, seen[e], "duplicate email %s", e)
			seen[e] = true
		}
	}
}

func TestSeedIsDeterministic(t *testing.T) {
	a, err := NewGenerator(99).ServeRestUser()
	require.NoError(t, err)
	b, err := NewGenerator(99).ServeRestUser()
	require.NoError(t, err)

	assert.Equal(t, a["nome"], b["nome"])
	assert.Equal(t, a["password"], b["password"])
	assert.NotEqual(t, a["email"], b["email"])
}

func TestPlaceholderUser(t *testing.T) {
	p, err := NewGenerator(1).PlaceholderUser()
	require.NoError(t, err)

	assert.ElementsMatch(t,
		[]string{"name", "username", "email", "address", "phone", "website", "company"},
		keys(p))

	lat, ok := p.Lookup("address.geo.lat")
	require.True(t, ok)
	assert.IsType(t, "", lat)

	_, ok = p.Lookup("company.catchPhrase")
	assert.True(t, ok)
}

func TestWithInvalidEmailTouchesOnlyEmail(t *testing.T) {
	g := NewGenerator(5)
	p, err := g.ServeRestUser(WithInvalidEmail())
	require.NoError(t, err)

	assert.Equal(t, InvalidEmail, p["email"])
	assert.Len(t, p, 4)
}

func TestWithNestedPath(t *testing.T) {
	p, err := NewGenerator(3).PlaceholderUser(With("address.geo.lat", "10.0"))
	require.NoError(t, err)

	v, _ := p.Lookup("address.geo.lat")
	assert.Equal(t, "10.0", v)
}

func TestWithNonObjectParent(t *testing.T) {
	_, err := NewGenerator(3).ServeRestUser(With("nome.first", "x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"nome" is string`)
}

func TestPayloadSetCreatesIntermediates(t *testing.T) {
	p := Payload{}
	require.NoError(t, p.Set("a.b.c", 1))
	v, ok := p.Lookup("a.b.c")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	assert.Error(t, p.Set("", 1))
	_, ok = p.Lookup("a.x")
	assert.False(t, ok)
	_, ok = p.Lookup("a.b.c.d")
	assert.False(t, ok)
}

func TestCloneIsDeep(t *testing.T) {
	orig, err := NewGenerator(8).PlaceholderUser()
	require.NoError(t, err)
	before, _ := orig.Lookup("address.geo.lat")

	clone := orig.Clone()
	require.NoError(t, clone.Set("address.geo.lat", "changed"))
	clone["name"] = "changed"

	after, _ := orig.Lookup("address.geo.lat")
	assert.Equal(t, before, after)
	assert.NotEqual(t, "changed", orig["name"])
}

func keys(p Payload) []string {
	out := make([]string, 0, len(p))
	for k := range p {
		out = append(out, k)
	}
	return out
}
