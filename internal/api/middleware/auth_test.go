package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/marketplace/storefront/internal/core/domain"
)

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func run(t *testing.T, header string) (*httptest.ResponseRecorder, echo.Context, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Auth("secret")(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, c, called
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	token := sign(t, jwt.MapClaims{
		"sub":      "alice@example.com",
		"exp":      time.Now().Add(time.Hour).Unix(),
		"username": "alice",
		"idUser":   42,
		"rol":      "ADMIN",
	})

	rec, c, called := run(t, "Bearer "+token)
	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from next, got %d", rec.Code)
	}
	if c.Get(ContextUserID) != int64(42) {
		t.Fatalf("user id not set: %v", c.Get(ContextUserID))
	}
	if c.Get(ContextUsername) != "alice" {
		t.Fatalf("username not set")
	}
	if c.Get(ContextRole) != domain.RoleAdmin {
		t.Fatalf("role not set")
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	expired := sign(t, jwt.MapClaims{"exp": time.Now().Add(-time.Minute).Unix(), "idUser": 1})
	noExp := sign(t, jwt.MapClaims{"idUser": 1})
	noUser := sign(t, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})
	foreign, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(), "idUser": 1,
	}).SignedString([]byte("other-secret"))

	cases := map[string]string{
		"missing header":   "",
		"wrong scheme":     "Token abc",
		"garbage token":    "Bearer not-a-token",
		"expired":          "Bearer " + expired,
		"no expiry":        "Bearer " + noExp,
		"no user identity": "Bearer " + noUser,
		"wrong signature":  "Bearer " + foreign,
	}
	for name, header := range cases {
		rec, _, called := run(t, header)
		if called {
			t.Fatalf("%s: should not reach next", name)
		}
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", name, rec.Code)
		}
	}
}
