// Package memory implements in-memory collaborators for development and
// testing.
package memory

import (
	"context"
	"sync"

	"nutrigo/internal/domain"
)

// Ensure interfaces are met.
var _ domain.Cache = (*Cache)(nil)
var _ domain.ProfileStore = (*ProfileStore)(nil)
var _ domain.AuthSource = (*AuthSource)(nil)

// Cache is an in-memory domain.Cache.
type Cache struct {
	mu   sync.Mutex
	data map[string]string
}

// NewCache creates an empty in-memory cache.
func NewCache() *Cache {
	return &Cache{data: make(map[string]string)}
}

// Get returns the value stored under key.
func (c *Cache) Get(ctx context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

// Set stores value under key.
func (c *Cache) Set(ctx context.Context, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

// Remove deletes the value stored under key.
func (c *Cache) Remove(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

// ProfileStore is an in-memory domain.ProfileStore.
type ProfileStore struct {
	mu   sync.Mutex
	docs map[string]map[string]map[string]any
}

// NewProfileStore creates an empty in-memory document store.
func NewProfileStore() *ProfileStore {
	return &ProfileStore{docs: make(map[string]map[string]map[string]any)}
}

// GetDocument returns a copy of the document's fields, or nil if absent.
func (s *ProfileStore) GetDocument(ctx context.Context, collection, id string) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[collection][id]
	if !ok {
		return nil, nil
	}
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out, nil
}

// SetDocument writes fields under collection/id, merging when asked.
func (s *ProfileStore) SetDocument(ctx context.Context, collection, id string, fields map[string]any, merge bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.docs[collection] == nil {
		s.docs[collection] = make(map[string]map[string]any)
	}
	doc := s.docs[collection][id]
	if doc == nil || !merge {
		doc = make(map[string]any, len(fields))
	}
	for k, v := range fields {
		doc[k] = v
	}
	s.docs[collection][id] = doc
	return nil
}

// AuthSource is a scripted domain.AuthSource. Emit drives events to the
// subscriber, the way the real remote source would.
type AuthSource struct {
	mu       sync.Mutex
	onChange func(*domain.Identity)
	identity *domain.Identity
}

// NewAuthSource creates an auth source with no session.
func NewAuthSource() *AuthSource {
	return &AuthSource{}
}

// Subscribe registers the single listener and replays the current state.
func (a *AuthSource) Subscribe(onChange func(*domain.Identity)) func() {
	a.mu.Lock()
	a.onChange = onChange
	current := a.identity
	a.mu.Unlock()

	onChange(current)

	return func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		a.onChange = nil
	}
}

// SignOut drops the current identity and notifies the subscriber.
func (a *AuthSource) SignOut(ctx context.Context) error {
	a.Emit(nil)
	return nil
}

// Emit replaces the current identity and delivers it synchronously.
func (a *AuthSource) Emit(id *domain.Identity) {
	a.mu.Lock()
	a.identity = id
	fn := a.onChange
	a.mu.Unlock()
	if fn != nil {
		fn(id)
	}
}
