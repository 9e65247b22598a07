package cli

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/marketplace/storefront/internal/api"
	"github.com/marketplace/storefront/internal/client/navigation"
	"github.com/marketplace/storefront/internal/core/domain"
	"github.com/marketplace/storefront/internal/core/ports"
	"github.com/marketplace/storefront/internal/core/service"
	"github.com/marketplace/storefront/internal/infrastructure/db/memory"
	"github.com/marketplace/storefront/internal/infrastructure/storage"
	"github.com/marketplace/storefront/internal/pkg/config"
	"github.com/marketplace/storefront/internal/validation"
)

const testSecret = "cli-secret"

// harness runs CLI invocations against one backend. Invocations share the
// session storage the way separate processes share the session file.
type harness struct {
	t     *testing.T
	cfg   *config.Config
	store ports.KeyValueStore
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	e := api.NewRouter(api.Deps{
		Accounts:     service.NewAuthService(memory.NewAccountRepository(), testSecret, time.Hour, zerolog.Nop()),
		Publications: service.NewPublicationService(memory.NewPublicationRepository(), zerolog.Nop()),
		JWTSecret:    testSecret,
		Logger:       zerolog.Nop(),
	})
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	return &harness{
		t: t,
		cfg: &config.Config{Client: config.ClientConfig{
			APIURL:      srv.URL + "/",
			HTTPTimeout: 5 * time.Second,
			LoginPath:   navigation.PathAuth,
			PageSize:    2,
		}},
		store: storage.NewMemory(),
	}
}

func (h *harness) app() (*App, *bytes.Buffer) {
	h.t.Helper()
	var out bytes.Buffer
	a, err := New(context.Background(), h.cfg, zerolog.Nop(), &out, Options{Store: h.store})
	if err != nil {
		h.t.Fatalf("New: %v", err)
	}
	return a, &out
}

// run executes one invocation and returns its output and the final location.
func (h *harness) run(args ...string) (string, string, error) {
	h.t.Helper()
	a, out := h.app()
	err := a.Run(context.Background(), args)
	return out.String(), a.Location(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, _, err := h.run(args...)
	if err != nil {
		h.t.Fatalf("%s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func (h *harness) register(email string) {
	h.t.Helper()
	h.mustRun("register", "--email", email, "--password", "secret123", "--confirm", "secret123")
}

func (h *harness) create(title string) {
	h.t.Helper()
	h.mustRun("create", "--title", title, "--description", "usada", "--price", "1200.50",
		"--city", "Rosario", "--type", "Guitarra", "--condition", "Bueno")
}

func TestRun_RegisterPersistsSession(t *testing.T) {
	h := newHarness(t)
	_, loc, err := h.run("register", "--email", "ana@example.com", "--password", "secret123", "--confirm", "secret123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if loc != navigation.PathHome {
		t.Fatalf("register must land on home, at %s", loc)
	}

	if out := h.mustRun("whoami"); !strings.HasPrefix(out, "ana (id ") || !strings.Contains(out, "CUSTOMER") {
		t.Fatalf("whoami = %q", out)
	}

	h.mustRun("logout")
	if out := h.mustRun("whoami"); strings.TrimSpace(out) != "anonymous" {
		t.Fatalf("whoami after logout = %q", out)
	}

	out := h.mustRun("login", "--email", "ana@example.com", "--password", "secret123")
	if !strings.Contains(out, "Logged in as ana") {
		t.Fatalf("login output %q", out)
	}
	if out := h.mustRun("login", "--email", "ana@example.com", "--password", "secret123"); !strings.Contains(out, "Already logged in") {
		t.Fatalf("second login output %q", out)
	}
}

func TestRun_FormValidationHappensBeforeTheNetwork(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.run("login", "--email", "not-an-email", "--password", "short")
	var ve *validation.Error
	if !errors.As(err, &ve) || len(ve.Fields) != 2 {
		t.Fatalf("expected two field errors, got %v", err)
	}

	_, _, err = h.run("register", "--email", "ana@example.com", "--password", "secret123", "--confirm", "secret124")
	if !errors.As(err, &ve) || !strings.Contains(err.Error(), "must match password") {
		t.Fatalf("expected confirm mismatch, got %v", err)
	}
}

func TestRun_ProtectedCommandsNeedASession(t *testing.T) {
	h := newHarness(t)
	for _, args := range [][]string{
		{"mine"},
		{"pause", "--id", "p1"},
		{"edit", "--id", "p1", "--title", "x"},
	} {
		_, loc, err := h.run(args...)
		if !errors.Is(err, ErrLoginRequired) {
			t.Fatalf("%v: expected ErrLoginRequired, got %v", args, err)
		}
		if loc != navigation.PathAuth {
			t.Fatalf("%v: expected redirect to %s, at %s", args, navigation.PathAuth, loc)
		}
	}
}

func TestRun_PublishAndBrowse(t *testing.T) {
	h := newHarness(t)
	h.register("ana@example.com")
	h.create("Guitarra criolla")
	h.create("Bajo eléctrico")
	h.create("Ukelele")

	out := h.mustRun("feed")
	if !strings.Contains(out, "Showing 2 of 3") {
		t.Fatalf("first feed page should announce more:\n%s", out)
	}
	out = h.mustRun("feed", "--pages", "2")
	for _, title := range []string{"Guitarra criolla", "Bajo eléctrico", "Ukelele"} {
		if !strings.Contains(out, title) {
			t.Fatalf("feed missing %q:\n%s", title, out)
		}
	}
	if strings.Contains(out, "Showing") {
		t.Fatalf("fully loaded feed must not offer more:\n%s", out)
	}

	out = h.mustRun("list", "--page", "2", "--size", "2")
	if strings.Count(out, "1200.50") != 1 || !strings.Contains(out, "3 publications in total") {
		t.Fatalf("list page 2:\n%s", out)
	}

	out, loc, err := h.run("mine")
	if err != nil || loc != navigation.PathMyPublications {
		t.Fatalf("mine = %v at %s", err, loc)
	}
	if !strings.Contains(out, "1200.50") || !strings.Contains(out, "Rosario") {
		t.Fatalf("mine output:\n%s", out)
	}
}

func TestRun_EditPauseAndDelete(t *testing.T) {
	h := newHarness(t)
	h.register("ana@example.com")
	h.create("Guitarra criolla")

	a, _ := h.app()
	mine := a.pubs.ByUser(a.session.CurrentUser().UserID)
	if _, err := mine.FetchNext(context.Background()); err != nil {
		t.Fatalf("ByUser: %v", err)
	}
	id := mine.Pages()[0].Publications[0].ID

	_, loc, err := h.run("edit", "--id", id, "--price", "999")
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if loc != navigation.PathMyPublications {
		t.Fatalf("edit must return to my publications, at %s", loc)
	}
	out := h.mustRun("show", "--id", id)
	if !strings.Contains(out, `"title": "Guitarra criolla"`) || !strings.Contains(out, `"price": 999`) {
		t.Fatalf("edit must keep untouched fields:\n%s", out)
	}

	h.mustRun("pause", "--id", id)
	if out := h.mustRun("feed"); !strings.Contains(out, "No publications.") {
		t.Fatalf("paused publication still in feed:\n%s", out)
	}
	h.mustRun("activate", "--id", id)
	h.mustRun("delete", "--id", id)
	if out := h.mustRun("mine"); !strings.Contains(out, "no publications yet") {
		t.Fatalf("mine after delete:\n%s", out)
	}
}

func TestRun_RejectedTokenEndsTheSession(t *testing.T) {
	h := newHarness(t)
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp":      time.Now().Add(time.Hour).Unix(),
		"username": "mallory",
		"idUser":   42,
		"rol":      "ADMIN",
	}).SignedString([]byte("not-the-server-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	a, _ := h.app()
	if err := a.session.Login(context.Background(), domain.CredentialBundle{Token: forged, Username: "mallory", UserID: 42, Role: domain.RoleAdmin}); err != nil {
		t.Fatalf("Login: %v", err)
	}

	out, loc, err := h.run("create", "--title", "x", "--description", "y", "--price", "1",
		"--city", "z", "--type", "t")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if loc != navigation.PathAuth {
		t.Fatalf("expected redirect to %s, at %s", navigation.PathAuth, loc)
	}
	if !strings.Contains(out, "session has ended") {
		t.Fatalf("missing notice:\n%s", out)
	}
	if out := h.mustRun("whoami"); strings.TrimSpace(out) != "anonymous" {
		t.Fatalf("cleared session must stay cleared, whoami = %q", out)
	}
}

func TestRun_Usage(t *testing.T) {
	h := newHarness(t)
	if _, _, err := h.run(); !errors.Is(err, ErrUsage) {
		t.Fatalf("no command: %v", err)
	}
	out, _, err := h.run("frobnicate")
	if !errors.Is(err, ErrUsage) || !strings.Contains(out, "Commands:") {
		t.Fatalf("unknown command: %v\n%s", err, out)
	}
	if _, _, err := h.run("feed", "--pages", "0"); !errors.Is(err, ErrUsage) {
		t.Fatalf("--pages 0: %v", err)
	}
	if _, _, err := h.run("create", "--price", "cheap"); !errors.Is(err, ErrUsage) {
		t.Fatalf("bad price: %v", err)
	}
}

func TestRun_MetricsFlag(t *testing.T) {
	h := newHarness(t)
	out := h.mustRun("--metrics", "register", "--email", "ana@example.com", "--password", "secret123", "--confirm", "secret123")
	if !strings.Contains(out, "marketplace_session_transitions_total") {
		t.Fatalf("metrics missing session transitions:\n%s", out)
	}
	if !strings.Contains(out, "marketplace_http_requests_total") {
		t.Fatalf("metrics missing http requests:\n%s", out)
	}
}

func TestSplitID(t *testing.T) {
	cases := []struct {
		args []string
		id   string
		rest []string
	}{
		{[]string{"--id", "p1", "--title", "x"}, "p1", []string{"--title", "x"}},
		{[]string{"--title", "x", "--id=p2"}, "p2", []string{"--title", "x"}},
		{[]string{"--title", "x"}, "", []string{"--title", "x"}},
	}
	for _, c := range cases {
		id, rest := splitID(c.args)
		if id != c.id || strings.Join(rest, " ") != strings.Join(c.rest, " ") {
			t.Fatalf("splitID(%v) = %q, %v", c.args, id, rest)
		}
	}
}
