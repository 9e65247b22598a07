package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/marketplace/storefront/internal/api/middleware"
	"github.com/marketplace/storefront/internal/core/domain"
	"github.com/marketplace/storefront/internal/core/ports"
)

// ctxActor extracts the caller identity injected by the Auth middleware.
// A missing user id means the route was mounted without Auth.
func ctxActor(c echo.Context) (ports.Actor, error) {
	id, _ := c.Get(middleware.ContextUserID).(int64)
	if id <= 0 {
		return ports.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	role, _ := c.Get(middleware.ContextRole).(domain.Role)
	return ports.Actor{UserID: id, Role: role}, nil
}
