package store

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	pkgstore "github.com/leicam1995/teste-api-ebac/internal/twin/store"
)

//go:embed seed.json
var defaultSeed []byte

// MemoryStore holds all ServeRest twin state in memory.
type MemoryStore struct {
	Usuarios  *pkgstore.Store[User]
	Carrinhos *pkgstore.Store[Cart]

	mu     sync.RWMutex
	tokens map[string]string // token -> user id
	secret []byte
	seed   stateSnapshot
}

// NewID returns a 16-character alphanumeric ID in the ServeRest format.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}

// New creates a MemoryStore loaded with the built-in seed (which includes
// the fulano@qa.com / teste administrator).
func New() *MemoryStore {
	s := &MemoryStore{
		Usuarios:  pkgstore.New[User]("", pkgstore.WithIDFunc(func(uint64) string { return NewID() })),
		Carrinhos: pkgstore.New[Cart]("", pkgstore.WithIDFunc(func(uint64) string { return NewID() })),
		tokens:    make(map[string]string),
		secret:    []byte(uuid.NewString()),
	}
	if err := json.Unmarshal(defaultSeed, &s.seed); err != nil {
		panic(fmt.Sprintf("serverest: invalid embedded seed: %v", err))
	}
	s.apply(cloneSnapshot(s.seed))
	return s
}

// stateSnapshot is the serializable state used by the admin endpoints and
// seed files.
type stateSnapshot struct {
	Usuarios  map[string]User `json:"usuarios" yaml:"usuarios"`
	Carrinhos map[string]Cart `json:"carrinhos" yaml:"carrinhos"`
}

func (s *MemoryStore) apply(snap stateSnapshot) {
	for id, u := range snap.Usuarios {
		u.ID = id
		snap.Usuarios[id] = u
	}
	for id, c := range snap.Carrinhos {
		c.ID = id
		snap.Carrinhos[id] = c
	}
	s.Usuarios.LoadSnapshot(snap.Usuarios)
	s.Carrinhos.LoadSnapshot(snap.Carrinhos)
}

// Snapshot returns the full state.
func (s *MemoryStore) Snapshot() any {
	return stateSnapshot{
		Usuarios:  s.Usuarios.Snapshot(),
		Carrinhos: s.Carrinhos.Snapshot(),
	}
}

// LoadState replaces the full state from a JSON document and makes it the
// state Reset returns to.
func (s *MemoryStore) LoadState(data []byte) error {
	var snap stateSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return err
	}
	s.load(snap)
	return nil
}

// LoadSeedYAML is LoadState for YAML seed files.
func (s *MemoryStore) LoadSeedYAML(data []byte) error {
	var snap stateSnapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return err
	}
	s.load(snap)
	return nil
}

func (s *MemoryStore) load(snap stateSnapshot) {
	if snap.Usuarios == nil {
		snap.Usuarios = map[string]User{}
	}
	if snap.Carrinhos == nil {
		snap.Carrinhos = map[string]Cart{}
	}
	s.mu.Lock()
	s.seed = snap
	s.tokens = make(map[string]string)
	s.mu.Unlock()
	s.apply(cloneSnapshot(snap))
}

// Reset restores the seeded state and revokes issued tokens.
func (s *MemoryStore) Reset() {
	s.mu.Lock()
	s.tokens = make(map[string]string)
	seed := cloneSnapshot(s.seed)
	s.mu.Unlock()
	s.Usuarios.Reset()
	s.Carrinhos.Reset()
	s.apply(seed)
}

func cloneSnapshot(snap stateSnapshot) stateSnapshot {
	out := stateSnapshot{
		Usuarios:  make(map[string]User, len(snap.Usuarios)),
		Carrinhos: make(map[string]Cart, len(snap.Carrinhos)),
	}
	for k, v := range snap.Usuarios {
		out.Usuarios[k] = v
	}
	for k, v := range snap.Carrinhos {
		out.Carrinhos[k] = v
	}
	return out
}

// TokenTTL is how long a login token stays valid, as on the real service.
const TokenTTL = 600 * time.Second

// IssueToken signs an HS256 token for the user and records it so Reset
// can revoke it.
func (s *MemoryStore) IssueToken(user User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(TokenTTL).Unix(),
		"jti":   uuid.NewString(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[signed] = user.ID
	return signed, nil
}

// TokenValid reports whether token verifies, has not expired, was issued
// since the last reset and its user still exists.
func (s *MemoryStore) TokenValid(token string) bool {
	s.mu.RLock()
	userID, ok := s.tokens[token]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	parsed, err := jwt.Parse(token, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return false
	}
	if sub, err := parsed.Claims.GetSubject(); err != nil || sub != userID {
		return false
	}
	_, exists := s.Usuarios.Get(userID)
	return exists
}

// FindByEmail returns the user registered with email.
func (s *MemoryStore) FindByEmail(email string) (User, bool) {
	matches := s.Usuarios.Filter(func(_ string, u User) bool { return u.Email == email })
	if len(matches) == 0 {
		return User{}, false
	}
	return matches[0], true
}

// CartOf returns the cart owned by userID.
func (s *MemoryStore) CartOf(userID string) (Cart, bool) {
	matches := s.Carrinhos.Filter(func(_ string, c Cart) bool { return c.IDUsuario == userID })
	if len(matches) == 0 {
		return Cart{}, false
	}
	return matches[0], true
}
