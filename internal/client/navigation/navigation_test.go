package navigation

import (
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/marketplace/storefront/internal/core/domain"
)

type stubSession struct {
	bundle domain.CredentialBundle
}

func (s *stubSession) Bundle() domain.CredentialBundle { return s.bundle }
func (s *stubSession) IsAuthenticated() bool           { return s.bundle.Authenticated() }

func TestTracker_Navigate(t *testing.T) {
	tr := NewTracker("", zerolog.Nop())
	if tr.Location() != PathHome {
		t.Fatalf("empty start must normalize to home, got %q", tr.Location())
	}

	tr.Navigate("sell")
	tr.Navigate(PathSell)
	tr.Navigate(EditPublicationPath("p-1"))

	if tr.Location() != "/edit-publication/p-1" {
		t.Fatalf("unexpected location %q", tr.Location())
	}
	want := []string{"/", "/sell", "/edit-publication/p-1"}
	if got := tr.History(); !reflect.DeepEqual(got, want) {
		t.Fatalf("history %v, want %v", got, want)
	}
}

func TestGuard_PrivateRedirectsAnonymous(t *testing.T) {
	tr := NewTracker(PathHome, zerolog.Nop())
	g := NewGuard(&stubSession{}, tr, "")

	if g.Private(PathMyPublications) {
		t.Fatalf("anonymous user must not enter a private route")
	}
	if tr.Location() != PathAuth {
		t.Fatalf("expected redirect to %s, got %s", PathAuth, tr.Location())
	}
}

func TestGuard_PrivateAllowsAuthenticated(t *testing.T) {
	tr := NewTracker(PathHome, zerolog.Nop())
	g := NewGuard(&stubSession{bundle: domain.CredentialBundle{Token: "t"}}, tr, PathAuth)

	if !g.Private(PathSell) {
		t.Fatalf("authenticated user must enter a private route")
	}
	if tr.Location() != PathSell {
		t.Fatalf("unexpected location %s", tr.Location())
	}
}

func TestGuard_AuthOnly(t *testing.T) {
	tr := NewTracker(PathSell, zerolog.Nop())
	session := &stubSession{bundle: domain.CredentialBundle{Token: "t"}}
	g := NewGuard(session, tr, PathAuth)

	if g.AuthOnly() {
		t.Fatalf("authenticated user must be sent home from the login surface")
	}
	if tr.Location() != PathHome {
		t.Fatalf("expected home, got %s", tr.Location())
	}

	session.bundle = domain.CredentialBundle{}
	if !g.AuthOnly() || tr.Location() != PathAuth {
		t.Fatalf("anonymous user must reach the login surface, at %s", tr.Location())
	}
}
