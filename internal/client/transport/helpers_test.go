package transport

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/marketplace/storefront/internal/client/session"
	"github.com/marketplace/storefront/internal/core/domain"
	"github.com/marketplace/storefront/internal/infrastructure/storage"
)

func signToken(t *testing.T, exp time.Time) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      "ana@example.com",
		"exp":      exp.Unix(),
		"iat":      time.Now().Unix(),
		"username": "ana",
		"idUser":   7,
		"rol":      "CUSTOMER",
	}).SignedString([]byte("server-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func newSession(t *testing.T, token string) *session.Facade {
	t.Helper()
	ctx := context.Background()
	f, err := session.New(ctx, storage.NewMemory(), zerolog.Nop())
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}
	if token != "" {
		if err := f.Login(ctx, domain.CredentialBundle{Token: token, Username: "ana", UserID: 7, Role: domain.RoleCustomer}); err != nil {
			t.Fatalf("Login: %v", err)
		}
	}
	return f
}

// recorder is a terminal Handler that remembers the requests it saw.
type recorder struct {
	status int
	err    error
	seen   []*http.Request
}

func (r *recorder) handle(req *http.Request) (*http.Response, error) {
	r.seen = append(r.seen, req)
	if r.err != nil {
		return nil, r.err
	}
	status := r.status
	if status == 0 {
		status = http.StatusOK
	}
	return &http.Response{
		StatusCode: status,
		Header:     make(http.Header),
		Body:       io.NopCloser(strings.NewReader(`{}`)),
		Request:    req,
	}, nil
}

func (r *recorder) last(t *testing.T) *http.Request {
	t.Helper()
	if len(r.seen) == 0 {
		t.Fatalf("no request reached the network")
	}
	return r.seen[len(r.seen)-1]
}

func newRequest(t *testing.T) *http.Request {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, "http://api.test/api/Publications/1", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	return req
}
