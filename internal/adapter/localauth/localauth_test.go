package localauth_test

import (
	"context"
	"errors"
	"testing"

	"nutrigo/internal/adapter/localauth"
	"nutrigo/internal/adapter/memory"
	"nutrigo/internal/domain"

	"github.com/rs/zerolog"
)

func TestRegisterAndLogin(t *testing.T) {
	cache := memory.NewCache()
	src := localauth.New(cache, zerolog.Nop())
	ctx := context.Background()

	ident, err := src.Register(ctx, "ana@example.com", "secret123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if ident.ID == "" || ident.Email != "ana@example.com" {
		t.Fatalf("unexpected identity %+v", ident)
	}

	var got *domain.Identity
	defer src.Subscribe(func(id *domain.Identity) { got = id })()

	if err := src.Login(ctx, "ana@example.com", "secret123"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if got == nil || got.ID != ident.ID {
		t.Fatalf("expected login event for %q, got %v", ident.ID, got)
	}
}

func TestRegister_Validation(t *testing.T) {
	src := localauth.New(memory.NewCache(), zerolog.Nop())
	ctx := context.Background()

	if _, err := src.Register(ctx, "", "secret123"); err == nil {
		t.Fatal("expected error for empty email")
	}
	if _, err := src.Register(ctx, "ana@example.com", "short"); err == nil {
		t.Fatal("expected error for short password")
	}

	if _, err := src.Register(ctx, "ana@example.com", "secret123"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := src.Register(ctx, "ana@example.com", "other-pass"); !errors.Is(err, localauth.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	src := localauth.New(memory.NewCache(), zerolog.Nop())
	ctx := context.Background()

	if _, err := src.Register(ctx, "ana@example.com", "secret123"); err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := src.Login(ctx, "ana@example.com", "wrong"); !errors.Is(err, localauth.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for bad password, got %v", err)
	}
	if err := src.Login(ctx, "bob@example.com", "secret123"); !errors.Is(err, localauth.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestSession_SurvivesResubscribe(t *testing.T) {
	cache := memory.NewCache()
	src := localauth.New(cache, zerolog.Nop())
	ctx := context.Background()

	if _, err := src.Register(ctx, "ana@example.com", "secret123"); err != nil {
		t.Fatalf("register: %v", err)
	}
	unsubscribe := src.Subscribe(func(*domain.Identity) {})
	if err := src.Login(ctx, "ana@example.com", "secret123"); err != nil {
		t.Fatalf("login: %v", err)
	}
	unsubscribe()

	// A fresh source over the same cache models a process restart.
	restarted := localauth.New(cache, zerolog.Nop())
	var got *domain.Identity
	defer restarted.Subscribe(func(id *domain.Identity) { got = id })()

	if got == nil || got.Email != "ana@example.com" {
		t.Fatalf("expected persisted session replayed after restart, got %v", got)
	}
}

func TestSignOut_ForgetsSession(t *testing.T) {
	cache := memory.NewCache()
	src := localauth.New(cache, zerolog.Nop())
	ctx := context.Background()

	if _, err := src.Register(ctx, "ana@example.com", "secret123"); err != nil {
		t.Fatalf("register: %v", err)
	}

	var got *domain.Identity
	defer src.Subscribe(func(id *domain.Identity) { got = id })()

	if err := src.Login(ctx, "ana@example.com", "secret123"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := src.SignOut(ctx); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if got != nil {
		t.Fatalf("expected absent identity after sign-out, got %v", got)
	}

	restarted := localauth.New(cache, zerolog.Nop())
	var replayed *domain.Identity
	replayed = &domain.Identity{ID: "sentinel"}
	defer restarted.Subscribe(func(id *domain.Identity) { replayed = id })()
	if replayed != nil {
		t.Fatalf("signed-out session must not replay after restart, got %v", replayed)
	}
}
