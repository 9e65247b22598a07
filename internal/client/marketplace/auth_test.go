package marketplace

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/marketplace/storefront/internal/client/navigation"
	"github.com/marketplace/storefront/internal/client/session"
	"github.com/marketplace/storefront/internal/core/domain"
	"github.com/marketplace/storefront/internal/infrastructure/storage"
)

type stubAuthAPI struct {
	resp *domain.AuthResponse
	err  error
	got  domain.AuthRequest
}

func (s *stubAuthAPI) Login(_ context.Context, req domain.AuthRequest) (*domain.AuthResponse, error) {
	s.got = req
	return s.resp, s.err
}

func (s *stubAuthAPI) Register(_ context.Context, req domain.AuthRequest) (*domain.AuthResponse, error) {
	s.got = req
	return s.resp, s.err
}

func issue(t *testing.T) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      "ana@example.com",
		"exp":      time.Now().Add(time.Hour).Unix(),
		"username": "ana",
		"idUser":   7,
		"rol":      "ADMIN",
	}).SignedString([]byte("server-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return token
}

func newAccounts(t *testing.T, api *stubAuthAPI) (*Accounts, *session.Facade, *navigation.Tracker) {
	t.Helper()
	s, err := session.New(context.Background(), storage.NewMemory(), zerolog.Nop())
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}
	nav := navigation.NewTracker(navigation.PathAuth, zerolog.Nop())
	return NewAccounts(api, session.NewCodec(), s, nav, navigation.PathHome, zerolog.Nop()), s, nav
}

func TestAccounts_SignInStoresDecodedBundle(t *testing.T) {
	token := issue(t)
	api := &stubAuthAPI{resp: &domain.AuthResponse{Token: token}}
	accounts, s, nav := newAccounts(t, api)

	b, err := accounts.SignIn(context.Background(), domain.AuthRequest{Email: "ana@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	want := domain.CredentialBundle{Token: token, Username: "ana", UserID: 7, Role: domain.RoleAdmin}
	if b != want || s.Bundle() != want {
		t.Fatalf("bundle = %+v, session = %+v, want %+v", b, s.Bundle(), want)
	}
	if nav.Location() != navigation.PathHome {
		t.Fatalf("expected home, at %s", nav.Location())
	}
}

func TestAccounts_SignInFailureKeepsAnonymous(t *testing.T) {
	boom := errors.New("bad credentials")
	accounts, s, nav := newAccounts(t, &stubAuthAPI{err: boom})

	if _, err := accounts.SignIn(context.Background(), domain.AuthRequest{}); !errors.Is(err, boom) {
		t.Fatalf("expected API error, got %v", err)
	}
	if s.IsAuthenticated() || nav.Location() != navigation.PathAuth {
		t.Fatalf("failed login must not change session or location")
	}
}

func TestAccounts_SignInRejectsEmptyToken(t *testing.T) {
	accounts, s, _ := newAccounts(t, &stubAuthAPI{resp: &domain.AuthResponse{}})

	if _, err := accounts.SignIn(context.Background(), domain.AuthRequest{}); !errors.Is(err, domain.ErrEmptyToken) {
		t.Fatalf("expected ErrEmptyToken, got %v", err)
	}
	if s.IsAuthenticated() {
		t.Fatalf("session must stay anonymous")
	}
}

func TestAccounts_SignUp(t *testing.T) {
	t.Run("with token signs in", func(t *testing.T) {
		accounts, s, _ := newAccounts(t, &stubAuthAPI{resp: &domain.AuthResponse{Token: issue(t)}})
		_, signedIn, err := accounts.SignUp(context.Background(), domain.AuthRequest{Email: "ana@example.com"})
		if err != nil || !signedIn || !s.IsAuthenticated() {
			t.Fatalf("signedIn=%v err=%v authenticated=%v", signedIn, err, s.IsAuthenticated())
		}
	})

	t.Run("without token stays on login", func(t *testing.T) {
		accounts, s, nav := newAccounts(t, &stubAuthAPI{resp: &domain.AuthResponse{}})
		_, signedIn, err := accounts.SignUp(context.Background(), domain.AuthRequest{Email: "ana@example.com"})
		if err != nil || signedIn || s.IsAuthenticated() {
			t.Fatalf("signedIn=%v err=%v authenticated=%v", signedIn, err, s.IsAuthenticated())
		}
		if nav.Location() != navigation.PathAuth {
			t.Fatalf("expected to stay on %s, at %s", navigation.PathAuth, nav.Location())
		}
	})

	t.Run("undecodable token", func(t *testing.T) {
		accounts, s, _ := newAccounts(t, &stubAuthAPI{resp: &domain.AuthResponse{Token: "garbage"}})
		_, _, err := accounts.SignUp(context.Background(), domain.AuthRequest{})
		if !errors.Is(err, domain.ErrMalformedToken) || s.IsAuthenticated() {
			t.Fatalf("expected ErrMalformedToken, got %v", err)
		}
	})
}
