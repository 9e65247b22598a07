package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/marketplace/storefront/internal/core/domain"
	"github.com/marketplace/storefront/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AccountService
}

func NewAuthHandler(authService ports.AccountService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates a CUSTOMER account and answers with its bearer token.
//
// POST api/User/register {"email", "password"} → 201 {"token"}
func (h *AuthHandler) Register(c echo.Context) error {
	var req domain.AuthRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	token, _, err := h.authService.Register(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, domain.AuthResponse{Token: token})
}

// Login authenticates an account and answers with a bearer token.
//
// POST api/User/login {"email", "password"} → 200 {"token"}
func (h *AuthHandler) Login(c echo.Context) error {
	var req domain.AuthRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	token, _, err := h.authService.Login(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, domain.AuthResponse{Token: token})
}
