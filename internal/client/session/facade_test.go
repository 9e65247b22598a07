package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/marketplace/storefront/internal/core/domain"
	"github.com/marketplace/storefront/internal/core/ports"
	"github.com/marketplace/storefront/internal/infrastructure/storage"
)

func TestFacade_LoginFromResponse(t *testing.T) {
	ctx := context.Background()
	f, err := New(ctx, storage.NewMemory(), zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if f.IsAuthenticated() || f.State() != StateAnonymous {
		t.Fatalf("new facade over empty storage must be anonymous")
	}

	token := signToken(t, jwt.MapClaims{
		"exp":      time.Now().Add(time.Hour).Unix(),
		"username": "ana",
		"idUser":   7,
		"rol":      "CUSTOMER",
	})
	bundle, err := BundleFromToken(NewCodec(), token)
	if err != nil {
		t.Fatalf("BundleFromToken: %v", err)
	}
	if err := f.Login(ctx, bundle); err != nil {
		t.Fatalf("Login: %v", err)
	}

	if !f.IsAuthenticated() || f.State() != StateAuthenticated {
		t.Fatalf("expected authenticated session")
	}
	user := f.CurrentUser()
	if user.Username != "ana" || user.UserID != 7 || user.Role != domain.RoleCustomer {
		t.Fatalf("unexpected current user: %+v", user)
	}
}

func TestFacade_LoginValidation(t *testing.T) {
	ctx := context.Background()
	f, _ := New(ctx, storage.NewMemory(), zerolog.Nop())

	if err := f.Login(ctx, domain.CredentialBundle{Username: "ana"}); !errors.Is(err, domain.ErrEmptyToken) {
		t.Fatalf("expected ErrEmptyToken, got %v", err)
	}
	if f.IsAuthenticated() {
		t.Fatalf("rejected logins must not change the session")
	}
	if err := f.Login(ctx, domain.CredentialBundle{Token: "t"}); err != nil {
		t.Fatalf("role is optional: %v", err)
	}
}

func TestFacade_LoginKeepsUnknownRole(t *testing.T) {
	ctx := context.Background()
	f, _ := New(ctx, storage.NewMemory(), zerolog.Nop())

	if err := f.Login(ctx, domain.CredentialBundle{Token: "t", Username: "ana", Role: "MODERATOR"}); err != nil {
		t.Fatalf("unknown role must not fail login: %v", err)
	}
	if !f.IsAuthenticated() || f.CurrentUser().Role != "MODERATOR" {
		t.Fatalf("role must be stored as issued, got %+v", f.CurrentUser())
	}
}

func TestFacade_LoginReplacesWholeBundle(t *testing.T) {
	ctx := context.Background()
	f, _ := New(ctx, storage.NewMemory(), zerolog.Nop())

	_ = f.Login(ctx, domain.CredentialBundle{Token: "a", Username: "ana", UserID: 7, Role: domain.RoleAdmin})
	_ = f.Login(ctx, domain.CredentialBundle{Token: "b", Username: "bea"})

	want := domain.CredentialBundle{Token: "b", Username: "bea"}
	if f.Bundle() != want {
		t.Fatalf("stale fields survived a new login: %+v", f.Bundle())
	}
}

func TestFacade_SubscribersSeeEveryTransition(t *testing.T) {
	ctx := context.Background()
	f, _ := New(ctx, storage.NewMemory(), zerolog.Nop())

	var reasons []ports.ChangeReason
	if err := f.Subscribe(func(_ context.Context, c Change) { reasons = append(reasons, c.Reason) }); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	_ = f.Login(ctx, sampleBundle())
	f.Invalidate(ctx, ports.ReasonExpired)
	_ = f.Login(ctx, sampleBundle())
	f.Logout(ctx)

	want := []ports.ChangeReason{ports.ReasonLogin, ports.ReasonExpired, ports.ReasonLogin, ports.ReasonLogout}
	if len(reasons) != len(want) {
		t.Fatalf("got reasons %v, want %v", reasons, want)
	}
	for i := range want {
		if reasons[i] != want[i] {
			t.Fatalf("got reasons %v, want %v", reasons, want)
		}
	}
}
