package app_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"nutrigo/internal/domain"
)

// mockCache is an in-memory domain.Cache with optional error injection.
type mockCache struct {
	mu     sync.Mutex
	data   map[string]string
	getErr error
	setErr error
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string]string)}
}

func (c *mockCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return "", false, c.getErr
	}
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *mockCache) Set(_ context.Context, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.setErr != nil {
		return c.setErr
	}
	c.data[key] = value
	return nil
}

func (c *mockCache) Remove(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *mockCache) get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok
}

func (c *mockCache) put(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
}

// mockProfileStore implements domain.ProfileStore with function fields.
type mockProfileStore struct {
	getFn func(ctx context.Context, collection, id string) (map[string]any, error)
	setFn func(ctx context.Context, collection, id string, fields map[string]any, merge bool) error
}

func (m *mockProfileStore) GetDocument(ctx context.Context, collection, id string) (map[string]any, error) {
	if m.getFn != nil {
		return m.getFn(ctx, collection, id)
	}
	return nil, nil
}

func (m *mockProfileStore) SetDocument(ctx context.Context, collection, id string, fields map[string]any, merge bool) error {
	if m.setFn != nil {
		return m.setFn(ctx, collection, id, fields, merge)
	}
	return nil
}

// fakeAuthSource delivers scripted events to its single subscriber.
type fakeAuthSource struct {
	mu         sync.Mutex
	onChange   func(*domain.Identity)
	signOutErr error
	signOuts   int
}

func (f *fakeAuthSource) Subscribe(onChange func(*domain.Identity)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onChange = onChange
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.onChange = nil
	}
}

func (f *fakeAuthSource) SignOut(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signOuts++
	return f.signOutErr
}

// Emit delivers one event synchronously, as the real source would on the
// event loop.
func (f *fakeAuthSource) Emit(id *domain.Identity) {
	f.mu.Lock()
	fn := f.onChange
	f.mu.Unlock()
	if fn != nil {
		fn(id)
	}
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}
