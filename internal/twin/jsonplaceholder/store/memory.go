package store

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"gopkg.in/yaml.v3"

	pkgstore "github.com/leicam1995/teste-api-ebac/internal/twin/store"
)

//go:embed seed.json
var defaultSeed []byte

// MemoryStore holds the JSONPlaceholder twin state. Writes through the API
// never reach it; only the admin endpoints and seed files change it.
type MemoryStore struct {
	Users *pkgstore.Store[User]

	mu   sync.RWMutex
	seed stateSnapshot
}

type stateSnapshot struct {
	Users map[string]User `json:"users" yaml:"users"`
}

// numericLess orders decimal IDs by value.
func numericLess(a, b string) bool {
	ai, errA := strconv.Atoi(a)
	bi, errB := strconv.Atoi(b)
	if errA != nil || errB != nil {
		return a < b
	}
	return ai < bi
}

// New creates a MemoryStore seeded with the ten public users.
func New() *MemoryStore {
	s := &MemoryStore{
		Users: pkgstore.New[User]("",
			pkgstore.WithIDFunc(func(n uint64) string { return strconv.FormatUint(n, 10) }),
			pkgstore.WithOrder(numericLess),
		),
	}
	if err := json.Unmarshal(defaultSeed, &s.seed); err != nil {
		panic(fmt.Sprintf("jsonplaceholder: invalid embedded seed: %v", err))
	}
	s.apply(s.seed)
	return s
}

func (s *MemoryStore) apply(snap stateSnapshot) {
	users := make(map[string]User, len(snap.Users))
	for id, u := range snap.Users {
		if n, err := strconv.Atoi(id); err == nil {
			u.ID = n
		}
		users[id] = u
	}
	s.Users.LoadSnapshot(users)
}

// Get returns the user with numeric id.
func (s *MemoryStore) Get(id int) (User, bool) {
	return s.Users.Get(strconv.Itoa(id))
}

// Snapshot returns the full state.
func (s *MemoryStore) Snapshot() any {
	return stateSnapshot{Users: s.Users.Snapshot()}
}

// LoadState replaces the state from JSON and makes it the reset point.
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
	s.mu.Lock()
	s.seed = snap
	s.mu.Unlock()
	s.apply(snap)
}

// Reset restores the seeded users.
func (s *MemoryStore) Reset() {
	s.mu.RLock()
	seed := s.seed
	s.mu.RUnlock()
	s.Users.Reset()
	s.apply(seed)
}
