// Package localauth implements the auth source for fully offline installs:
// credentials live in the durable cache, no network round trip at all. The
// active session is persisted so a restart replays it, the way the hosted
// auth service restores its own state.
package localauth

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"nutrigo/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials indicates that the provided email or password
	// was incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUserExists indicates that the email is already registered.
	ErrUserExists = errors.New("user already exists")
)

const (
	userKeyPrefix = "localauth:user:"
	sessionKey    = "localauth:session"
)

var _ domain.AuthSource = (*Source)(nil)

type userRecord struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
}

// Source is a domain.AuthSource backed by the local cache.
type Source struct {
	cache domain.Cache
	log   zerolog.Logger

	mu       sync.Mutex
	current  *domain.Identity
	onChange func(*domain.Identity)
}

// New creates a Source over the given cache.
func New(cache domain.Cache, log zerolog.Logger) *Source {
	return &Source{cache: cache, log: log}
}

// Register creates a new local user. It does not sign the user in.
func (s *Source) Register(ctx context.Context, email, password string) (domain.Identity, error) {
	if email == "" || len(password) < 6 {
		return domain.Identity{}, errors.New("email and a password of at least 6 characters are required")
	}

	if _, ok, err := s.cache.Get(ctx, userKeyPrefix+email); err != nil {
		return domain.Identity{}, err
	} else if ok {
		return domain.Identity{}, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.Identity{}, err
	}

	rec := userRecord{ID: uuid.NewString(), Email: email, PasswordHash: string(hash)}
	raw, err := json.Marshal(rec)
	if err != nil {
		return domain.Identity{}, err
	}
	if err := s.cache.Set(ctx, userKeyPrefix+email, string(raw)); err != nil {
		return domain.Identity{}, err
	}

	return domain.Identity{ID: rec.ID, Email: rec.Email}, nil
}

// Login verifies the credentials, persists the session and notifies the
// subscriber.
func (s *Source) Login(ctx context.Context, email, password string) error {
	raw, ok, err := s.cache.Get(ctx, userKeyPrefix+email)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidCredentials
	}

	var rec userRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}

	ident := domain.Identity{ID: rec.ID, Email: rec.Email}
	identRaw, err := json.Marshal(ident)
	if err != nil {
		return err
	}
	if err := s.cache.Set(ctx, sessionKey, string(identRaw)); err != nil {
		return err
	}

	s.emit(&ident)
	return nil
}

// Subscribe registers the single listener and replays the persisted session,
// or "no session" when there is none.
func (s *Source) Subscribe(onChange func(*domain.Identity)) func() {
	s.mu.Lock()
	s.onChange = onChange
	s.mu.Unlock()

	onChange(s.restore())

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.onChange = nil
	}
}

// SignOut forgets the persisted session and notifies the subscriber.
func (s *Source) SignOut(ctx context.Context) error {
	err := s.cache.Remove(ctx, sessionKey)
	s.emit(nil)
	return err
}

// restore loads the persisted session, if any.
func (s *Source) restore() *domain.Identity {
	raw, ok, err := s.cache.Get(context.Background(), sessionKey)
	if err != nil {
		s.log.Warn().Err(err).Msg("local session unreadable")
		return nil
	}
	if !ok {
		return nil
	}
	var ident domain.Identity
	if err := json.Unmarshal([]byte(raw), &ident); err != nil || ident.ID == "" {
		return nil
	}
	return &ident
}

func (s *Source) emit(ident *domain.Identity) {
	s.mu.Lock()
	s.current = ident
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn(ident)
	}
}
