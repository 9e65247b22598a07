package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/marketplace/storefront/internal/core/domain"
	"github.com/marketplace/storefront/internal/core/ports"
)

const defaultPageSize = 12

// PublicationHandler serves api/Publications.
type PublicationHandler struct {
	service ports.PublicationService
}

func NewPublicationHandler(service ports.PublicationService) *PublicationHandler {
	return &PublicationHandler{service: service}
}

func queryInt(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be an integer")
	}
	return n, nil
}

// Paged returns one page of the public feed.
//
// GET api/Publications/paged?page=1&pageSize=12
func (h *PublicationHandler) Paged(c echo.Context) error {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		return err
	}
	size, err := queryInt(c, "pageSize", defaultPageSize)
	if err != nil {
		return err
	}

	resp, err := h.service.List(c.Request().Context(), page, size)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// ByUser returns every publication of a user as a plain array.
//
// GET api/Publications/user/:userId
func (h *PublicationHandler) ByUser(c echo.Context) error {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "userId must be an integer")
	}

	items, err := h.service.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// Get returns one publication.
//
// GET api/Publications/:id
func (h *PublicationHandler) Get(c echo.Context) error {
	p, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Create lists a new publication owned by the caller.
//
// POST api/Publications
func (h *PublicationHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req domain.CreatePublicationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	p, err := h.service.Create(c.Request().Context(), actor, req.PublicationFields)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

// Edit replaces the editable fields of a publication. The id in the path wins
// over the one in the body.
//
// PUT api/Publications/:id
func (h *PublicationHandler) Edit(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req domain.EditPublicationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	req.ID = c.Param("id")
	if err := c.Validate(req); err != nil {
		return err
	}

	p, err := h.service.Edit(c.Request().Context(), actor, req.ID, req.PublicationFields)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Pause hides a publication from the public feed.
//
// POST api/Publications/:id/pause
func (h *PublicationHandler) Pause(c echo.Context) error {
	return h.setPaused(c, true)
}

// Activate shows a paused publication again.
//
// POST api/Publications/:id/activate
func (h *PublicationHandler) Activate(c echo.Context) error {
	return h.setPaused(c, false)
}

func (h *PublicationHandler) setPaused(c echo.Context, paused bool) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	p, err := h.service.SetPaused(c.Request().Context(), actor, c.Param("id"), paused)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Delete removes a publication.
//
// DELETE api/Publications/:id
func (h *PublicationHandler) Delete(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
