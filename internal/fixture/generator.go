// Package fixture generates randomized request payloads for the suites.
package fixture

import (
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
)

// InvalidEmail is the malformed address used by negative-path cases.
const InvalidEmail = "invalid-email"

// Option overrides exactly one field of a generated payload.
type Option func(Payload) error

// With sets the field at a dotted path.
func With(path string, value any) Option {
	return func(p Payload) error { return p.Set(path, value) }
}

// WithInvalidEmail replaces the email with InvalidEmail.
func WithInvalidEmail() Option {
	return With("email", InvalidEmail)
}

// Generator builds payloads from a gofakeit source. E-mails additionally
// carry a random uuid fragment so they stay unique across runs against a
// shared remote store.
type Generator struct {
	faker  *gofakeit.Faker
	unique func() string
}

// NewGenerator returns a Generator. A zero seed picks a random one.
func NewGenerator(seed uint64) *Generator {
	return &Generator{
		faker:  gofakeit.New(seed),
		unique: func() string { return uuid.NewString()[:8] },
	}
}

// Email returns a well-formed address unique to this call.
func (g *Generator) Email() string {
	local, domain, _ := strings.Cut(strings.ToLower(g.faker.Email()), "@")
	return fmt.Sprintf("%s.%s@%s", local, g.unique(), domain)
}

func apply(p Payload, opts []Option) (Payload, error) {
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// ServeRestUser builds a /usuarios body: nome, email, password and
// administrador ("true").
func (g *Generator) ServeRestUser(opts ...Option) (Payload, error) {
	return apply(Payload{
		"nome":          g.faker.Name(),
		"email":         g.Email(),
		"password":      g.faker.Password(true, true, true, false, false, 12),
		"administrador": "true",
	}, opts)
}

// PlaceholderUser builds a JSONPlaceholder /users body with nested address,
// geo and company objects. Coordinates are strings as the service returns
// them.
func (g *Generator) PlaceholderUser(opts ...Option) (Payload, error) {
	f := g.faker
	return apply(Payload{
		"name":     f.Name(),
		"username": f.Username(),
		"email":    g.Email(),
		"address": map[string]any{
			"street":  f.Street(),
			"suite":   fmt.Sprintf("Apt. %d", f.Number(100, 999)),
			"city":    f.City(),
			"zipcode": f.Zip(),
			"geo": map[string]any{
				"lat": fmt.Sprintf("%.4f", f.Latitude()),
				"lng": fmt.Sprintf("%.4f", f.Longitude()),
			},
		},
		"phone":   f.Phone(),
		"website": f.DomainName(),
		"company": map[string]any{
			"name":        f.Company(),
			"catchPhrase": f.Slogan(),
			"bs":          f.BS(),
		},
	}, opts)
}
