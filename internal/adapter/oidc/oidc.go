// Package oidc implements the remote auth source against an OpenID Connect
// provider. Identity changes (login, token refresh failure, sign-out) are
// pushed to the single subscriber; the subscriber sees nil until the first
// token arrives, which is the transient "no session" of a cold start.
package oidc

import (
	"context"
	"errors"
	"sync"
	"time"

	"nutrigo/internal/domain"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

var _ domain.AuthSource = (*AuthSource)(nil)

// Config carries the provider settings.
type Config struct {
	IssuerURL    string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	// RefreshInterval is how often the watch loop re-validates the session.
	RefreshInterval time.Duration
}

// AuthSource is a domain.AuthSource backed by an OIDC provider.
type AuthSource struct {
	oauth    oauth2.Config
	verifier *oidc.IDTokenVerifier
	interval time.Duration
	log      zerolog.Logger

	mu       sync.Mutex
	token    *oauth2.Token
	current  *domain.Identity
	onChange func(*domain.Identity)
	stop     chan struct{}
}

// New discovers the provider and prepares the verifier.
func New(ctx context.Context, cfg Config, log zerolog.Logger) (*AuthSource, error) {
	provider, err := oidc.NewProvider(ctx, cfg.IssuerURL)
	if err != nil {
		return nil, err
	}

	interval := cfg.RefreshInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	return &AuthSource{
		oauth: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
		},
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		interval: interval,
		log:      log,
	}, nil
}

// AuthCodeURL returns the provider's login URL for the given state.
func (a *AuthSource) AuthCodeURL(state string) string {
	return a.oauth.AuthCodeURL(state)
}

// Exchange trades an authorization code for tokens and installs the session.
func (a *AuthSource) Exchange(ctx context.Context, code string) error {
	token, err := a.oauth.Exchange(ctx, code)
	if err != nil {
		return err
	}
	return a.SetToken(ctx, token)
}

// SetToken verifies the token's identity and makes it the current session.
func (a *AuthSource) SetToken(ctx context.Context, token *oauth2.Token) error {
	ident, err := a.identityFromToken(ctx, token)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.token = token
	a.mu.Unlock()
	a.emit(ident)
	return nil
}

// Subscribe registers the single listener, replays the current state, and
// starts the watch loop.
func (a *AuthSource) Subscribe(onChange func(*domain.Identity)) func() {
	a.mu.Lock()
	a.onChange = onChange
	current := a.current
	stop := make(chan struct{})
	a.stop = stop
	a.mu.Unlock()

	onChange(current)
	go a.watch(stop)

	return func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		if a.stop == stop {
			close(stop)
			a.stop = nil
		}
		a.onChange = nil
	}
}

// SignOut drops the token and reports the session gone.
func (a *AuthSource) SignOut(ctx context.Context) error {
	a.mu.Lock()
	a.token = nil
	a.mu.Unlock()
	a.emit(nil)
	return nil
}

// watch re-validates the session on an interval, refreshing the token when
// the provider allows it. A session that can no longer refresh is reported
// as gone.
func (a *AuthSource) watch(stop chan struct{}) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			a.refresh()
		}
	}
}

func (a *AuthSource) refresh() {
	a.mu.Lock()
	token := a.token
	a.mu.Unlock()
	if token == nil {
		return
	}
	if token.Valid() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fresh, err := a.oauth.TokenSource(ctx, token).Token()
	if err != nil {
		a.log.Warn().Err(err).Msg("token refresh failed, session ended")
		a.mu.Lock()
		a.token = nil
		a.mu.Unlock()
		a.emit(nil)
		return
	}

	// Refresh responses often omit the id_token; the identity is unchanged
	// then, so only a token that carries one can alter it.
	if _, ok := fresh.Extra("id_token").(string); !ok {
		a.mu.Lock()
		a.token = fresh
		a.mu.Unlock()
		return
	}

	ident, err := a.identityFromToken(ctx, fresh)
	if err != nil {
		a.log.Warn().Err(err).Msg("refreshed token unverifiable, session ended")
		a.mu.Lock()
		a.token = nil
		a.mu.Unlock()
		a.emit(nil)
		return
	}

	a.mu.Lock()
	a.token = fresh
	a.mu.Unlock()
	a.emit(ident)
}

func (a *AuthSource) identityFromToken(ctx context.Context, token *oauth2.Token) (*domain.Identity, error) {
	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return nil, errors.New("token response carries no id_token")
	}

	idToken, err := a.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, err
	}

	var claims struct {
		Email string `json:"email"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, err
	}

	return &domain.Identity{ID: idToken.Subject, Email: claims.Email}, nil
}

// emit updates the current state and delivers it. Delivery order follows
// call order; the subscriber handles its own sequencing beyond that.
func (a *AuthSource) emit(ident *domain.Identity) {
	a.mu.Lock()
	a.current = ident
	fn := a.onChange
	a.mu.Unlock()
	if fn != nil {
		fn(ident)
	}
}
