package domain

import "context"

// AuthSource is the port for the remote authentication service. It pushes
// session-changed events: a non-nil identity for sign-in, nil for "no
// session". Events for one subscriber are delivered sequentially.
type AuthSource interface {
	// Subscribe registers the single change listener and returns a handle
	// that stops delivery. Events delivered after the handle is called must
	// be ignored by the source.
	Subscribe(onChange func(*Identity)) (unsubscribe func())
	// SignOut ends the remote session. The source emits a nil identity to
	// its subscriber as a consequence.
	SignOut(ctx context.Context) error
}

// ProfileStore is the port for the remote keyed document store.
type ProfileStore interface {
	// GetDocument returns the document's fields, or nil if it does not exist.
	GetDocument(ctx context.Context, collection, id string) (map[string]any, error)
	// SetDocument writes fields under the given key. With merge set, existing
	// fields not named in fields are preserved.
	SetDocument(ctx context.Context, collection, id string, fields map[string]any, merge bool) error
}

// Cache is the port for durable local key-value persistence. Get returns
// ok=false when the key is absent.
type Cache interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
