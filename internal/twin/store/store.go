// Package store provides a generic, thread-safe, in-memory collection used by
// the twins. Items keep their insertion order so that list endpoints return
// a stable sequence, which the "first element" target strategy relies on.
package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
)

// IDFunc turns the n-th allocation (starting at 1) into an item ID.
type IDFunc func(n uint64) string

// Option configures a Store.
type Option func(*options)

type options struct {
	idFunc IDFunc
	less   func(a, b string) bool
}

// WithIDFunc overrides the default "{prefix}_{counter}" ID scheme.
func WithIDFunc(fn IDFunc) Option {
	return func(o *options) { o.idFunc = fn }
}

// WithOrder sets the ordering applied to IDs when a snapshot is loaded.
// The default is lexical order.
func WithOrder(less func(a, b string) bool) Option {
	return func(o *options) { o.less = less }
}

// Store is a thread-safe, insertion-ordered collection of T keyed by ID.
type Store[T any] struct {
	mu      sync.RWMutex
	items   map[string]T
	order   []string
	counter atomic.Uint64
	opts    options
}

// New creates a Store whose IDs look like "{prefix}_000001" unless an IDFunc
// is supplied.
func New[T any](prefix string, opts ...Option) *Store[T] {
	o := options{
		idFunc: func(n uint64) string { return fmt.Sprintf("%s_%06d", prefix, n) },
		less:   func(a, b string) bool { return a < b },
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store[T]{
		items: make(map[string]T),
		order: make([]string, 0),
		opts:  o,
	}
}

// NextID allocates the next ID.
func (s *Store[T]) NextID() string {
	return s.opts.idFunc(s.counter.Add(1))
}

// Set stores an item. Overwriting keeps the original position.
func (s *Store[T]) Set(id string, item T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[id]; !exists {
		s.order = append(s.order, id)
	}
	s.items[id] = item
}

// Get retrieves an item by ID.
func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	return item, ok
}

// Delete removes an item by ID. Returns true if the item existed.
func (s *Store[T]) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[id]; !exists {
		return false
	}
	delete(s.items, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// List returns all items in insertion order.
func (s *Store[T]) List() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]T, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, s.items[id])
	}
	return result
}

// Count returns the number of items.
func (s *Store[T]) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Filter returns the items matching predicate, in insertion order.
func (s *Store[T]) Filter(predicate func(id string, item T) bool) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []T
	for _, id := range s.order {
		if predicate(id, s.items[id]) {
			result = append(result, s.items[id])
		}
	}
	return result
}

// Reset clears all items and the ID counter.
func (s *Store[T]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]T)
	s.order = make([]string, 0)
	s.counter.Store(0)
}

// Snapshot returns a copy of all items keyed by ID.
func (s *Store[T]) Snapshot() map[string]T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := make(map[string]T, len(s.items))
	for k, v := range s.items {
		snapshot[k] = v
	}
	return snapshot
}

// LoadSnapshot replaces all items. IDs are ordered with the store's ordering
// and the counter is advanced past the loaded item count so freshly
// allocated IDs do not collide with sequential seed IDs.
func (s *Store[T]) LoadSnapshot(snapshot map[string]T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]T, len(snapshot))
	s.order = make([]string, 0, len(snapshot))
	for k, v := range snapshot {
		s.items[k] = v
		s.order = append(s.order, k)
	}
	sort.Slice(s.order, func(i, j int) bool { return s.opts.less(s.order[i], s.order[j]) })
	if n := uint64(len(snapshot)); s.counter.Load() < n {
		s.counter.Store(n)
	}
}

// MarshalJSON serializes the store as its ID → item map.
func (s *Store[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Snapshot())
}

// UnmarshalJSON replaces the store contents from an ID → item map.
func (s *Store[T]) UnmarshalJSON(data []byte) error {
	var snapshot map[string]T
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return err
	}
	s.LoadSnapshot(snapshot)
	return nil
}
