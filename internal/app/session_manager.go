// Package app holds the application services and business logic.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"nutrigo/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	// ErrNoUser indicates that an operation requiring an active user ran
	// without one.
	ErrNoUser = errors.New("no active user")
)

const (
	profileCollection = "users"
	installIDKey      = "install_id"
	userKeyPrefix     = "user:"
)

// SessionManager owns the canonical current-user snapshot. It reconciles
// auth-source events with the durable cache: the cache unblocks the UI on
// cold start, the auth source is the only source of truth once it has
// spoken. A confirmed "no session" always wins over a cached snapshot.
type SessionManager struct {
	auth     domain.AuthSource
	profiles domain.ProfileStore
	cache    domain.Cache
	log      zerolog.Logger

	mu          sync.Mutex
	user        *domain.User
	loading     bool
	incomplete  bool
	seq         uint64
	started     bool
	stopped     bool
	cacheKey    string
	unsubscribe func()

	ctx context.Context
}

// NewSessionManager creates a SessionManager. No state changes until Start.
func NewSessionManager(auth domain.AuthSource, profiles domain.ProfileStore, cache domain.Cache, log zerolog.Logger) *SessionManager {
	return &SessionManager{
		auth:     auth,
		profiles: profiles,
		cache:    cache,
		log:      log,
		loading:  true,
	}
}

// Start restores a provisional snapshot from the cache and subscribes to the
// auth source. The provisional value unblocks callers before the network
// responds; it is never treated as confirmed.
func (m *SessionManager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return errors.New("session manager already started")
	}
	m.started = true
	m.ctx = ctx

	key, err := m.resolveCacheKey(ctx)
	if err != nil {
		m.started = false
		m.mu.Unlock()
		return err
	}
	m.cacheKey = key

	if raw, ok, err := m.cache.Get(ctx, m.cacheKey); err != nil {
		m.log.Warn().Err(err).Msg("session cache read failed, starting cold")
	} else if ok {
		var u domain.User
		if err := json.Unmarshal([]byte(raw), &u); err != nil {
			m.log.Warn().Err(err).Msg("session cache entry unreadable, ignoring")
		} else {
			m.user = &u
			m.log.Info().Str("email", u.Email).Msg("restored provisional session from cache")
		}
	}
	m.mu.Unlock()

	// Subscribe without the lock held: auth sources replay the current
	// state synchronously, which re-enters handleAuthEvent.
	unsub := m.auth.Subscribe(m.handleAuthEvent)

	m.mu.Lock()
	m.unsubscribe = unsub
	stopped := m.stopped
	m.mu.Unlock()
	if stopped {
		unsub()
	}
	return nil
}

// Stop unsubscribes from the auth source. No event delivered afterwards, and
// no in-flight profile fetch, may mutate the snapshot.
func (m *SessionManager) Stop() {
	m.mu.Lock()
	unsub := m.unsubscribe
	m.stopped = true
	m.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

// resolveCacheKey scopes the session cache entry to this install. Must be
// called with the lock held.
func (m *SessionManager) resolveCacheKey(ctx context.Context) (string, error) {
	id, ok, err := m.cache.Get(ctx, installIDKey)
	if err != nil {
		return "", err
	}
	if !ok {
		id = uuid.NewString()
		if err := m.cache.Set(ctx, installIDKey, id); err != nil {
			return "", err
		}
	}
	return userKeyPrefix + id, nil
}

// CurrentUser returns a copy of the snapshot, whether a user is present, and
// whether the first auth-source event is still outstanding.
func (m *SessionManager) CurrentUser() (domain.User, bool, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return domain.User{}, false, m.loading
	}
	return *m.user, true, m.loading
}

// ProfileIncomplete reports whether the last confirmed identity had no
// profile document.
func (m *SessionManager) ProfileIncomplete() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.incomplete
}

// SetUser force-sets the snapshot, writing through to the cache (or clearing
// it when u is nil). Used by the login flow and after profile edits.
func (m *SessionManager) SetUser(ctx context.Context, u *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u == nil {
		m.user = nil
		m.incomplete = false
		m.removeCacheLocked(ctx)
		return
	}
	copied := *u
	m.user = &copied
	m.persistCacheLocked(ctx)
}

// UpdateField merges a single profile field into the snapshot and writes it
// through to the profile store. The local value is applied first and kept
// even if the remote write fails; the failure is logged only.
func (m *SessionManager) UpdateField(ctx context.Context, field string, value any) error {
	m.mu.Lock()
	if m.user == nil {
		m.mu.Unlock()
		return ErrNoUser
	}
	updated, err := mergeUserFields(*m.user, map[string]any{field: value})
	if err != nil {
		m.mu.Unlock()
		return err
	}
	m.user = &updated
	m.persistCacheLocked(ctx)
	userID := updated.ID
	m.mu.Unlock()

	if err := m.profiles.SetDocument(ctx, profileCollection, userID, map[string]any{field: value}, true); err != nil {
		m.log.Warn().Err(err).Str("field", field).Msg("profile write failed, keeping local value")
	}
	return nil
}

// Logout signs out remotely, clears the cache and empties the snapshot.
// Logout is always locally effective; a remote sign-out failure is logged
// and otherwise ignored.
func (m *SessionManager) Logout(ctx context.Context) {
	if err := m.auth.SignOut(ctx); err != nil {
		m.log.Warn().Err(err).Msg("remote sign-out failed")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = nil
	m.incomplete = false
	m.loading = false
	m.removeCacheLocked(ctx)
	m.log.Info().Msg("user logged out")
}

// handleAuthEvent processes one auth-source event. Events arrive in delivery
// order; the profile fetch they trigger resolves asynchronously and is
// tagged with the event's sequence number so a slow fetch from an earlier
// event can never overwrite the outcome of a later one.
func (m *SessionManager) handleAuthEvent(id *domain.Identity) {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	m.seq++
	seq := m.seq

	if id == nil {
		// Confirmed absence wins, including over a provisional cache
		// restore that has not been re-validated yet.
		m.user = nil
		m.incomplete = false
		m.loading = false
		m.removeCacheLocked(m.ctx)
		m.mu.Unlock()
		m.log.Info().Msg("auth source reports no session")
		return
	}

	ident := *id
	m.mu.Unlock()

	go m.resolveIdentity(seq, ident)
}

// resolveIdentity fetches the profile document for a signed-in identity and,
// if the triggering event is still the newest, installs the merged snapshot.
func (m *SessionManager) resolveIdentity(seq uint64, ident domain.Identity) {
	fields, err := m.profiles.GetDocument(m.ctx, profileCollection, ident.ID)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped || seq != m.seq {
		m.log.Debug().Uint64("seq", seq).Uint64("latest", m.seq).Msg("discarding superseded profile fetch")
		return
	}
	m.loading = false

	if err != nil {
		// Transient failure: snapshot stays at its last known value.
		m.log.Warn().Err(err).Str("uid", ident.ID).Msg("profile fetch failed")
		return
	}

	if fields == nil {
		// Confirmed identity without a document. Surface the condition and
		// leave the provisional snapshot (and its cache entry) in place
		// until the next event.
		m.incomplete = true
		m.log.Error().Str("uid", ident.ID).Msg("no profile document for signed-in user")
		return
	}

	u, err := mergeUserFields(domain.User{ID: ident.ID, Email: ident.Email}, fields)
	if err != nil {
		m.log.Warn().Err(err).Str("uid", ident.ID).Msg("profile document unreadable")
		return
	}
	// The document never stores the identifier.
	u.ID = ident.ID
	if u.Email == "" {
		u.Email = ident.Email
	}

	m.user = &u
	m.incomplete = false
	m.persistCacheLocked(m.ctx)
	m.log.Info().Str("email", u.Email).Msg("session confirmed")
}

// persistCacheLocked writes the snapshot to the cache. Lock must be held;
// the lock is what serializes cache writers.
func (m *SessionManager) persistCacheLocked(ctx context.Context) {
	if m.user == nil || m.cacheKey == "" {
		return
	}
	raw, err := json.Marshal(m.user)
	if err != nil {
		m.log.Warn().Err(err).Msg("session cache encode failed")
		return
	}
	if err := m.cache.Set(ctx, m.cacheKey, string(raw)); err != nil {
		m.log.Warn().Err(err).Msg("session cache write failed")
	}
}

func (m *SessionManager) removeCacheLocked(ctx context.Context) {
	if m.cacheKey == "" {
		return
	}
	if err := m.cache.Remove(ctx, m.cacheKey); err != nil {
		m.log.Warn().Err(err).Msg("session cache clear failed")
	}
}

// mergeUserFields overlays a field map onto a user value via a JSON
// round-trip, so the store's loosely-typed documents and the typed snapshot
// stay in sync without per-field switch statements.
func mergeUserFields(base domain.User, fields map[string]any) (domain.User, error) {
	merged := map[string]any{}
	baseRaw, err := json.Marshal(base)
	if err != nil {
		return domain.User{}, err
	}
	if err := json.Unmarshal(baseRaw, &merged); err != nil {
		return domain.User{}, err
	}
	for k, v := range fields {
		merged[k] = v
	}
	mergedRaw, err := json.Marshal(merged)
	if err != nil {
		return domain.User{}, err
	}
	var u domain.User
	if err := json.Unmarshal(mergedRaw, &u); err != nil {
		return domain.User{}, err
	}
	return u, nil
}
