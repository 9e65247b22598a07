package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/marketplace/storefront/internal/api/middleware"
	"github.com/marketplace/storefront/internal/core/domain"
	"github.com/marketplace/storefront/internal/core/ports"
)

type stubPublicationService struct {
	listPage, listSize int
	editID             string
	editFields         domain.PublicationFields
	actor              ports.Actor
	paused             *bool
}

func (s *stubPublicationService) List(_ context.Context, page, size int) (*domain.ListPublicationsResponse, error) {
	s.listPage, s.listSize = page, size
	return &domain.ListPublicationsResponse{Total: 1, Publications: []domain.Publication{{ID: "p-1"}}}, nil
}

func (s *stubPublicationService) ListByUser(_ context.Context, userID int64) ([]domain.Publication, error) {
	return []domain.Publication{{ID: "p-1", UserID: userID}}, nil
}

func (s *stubPublicationService) Get(_ context.Context, id string) (*domain.Publication, error) {
	return nil, domain.ErrPublicationNotFound
}

func (s *stubPublicationService) Create(_ context.Context, actor ports.Actor, fields domain.PublicationFields) (*domain.Publication, error) {
	s.actor = actor
	p := &domain.Publication{ID: "new", UserID: actor.UserID}
	fields.Apply(p)
	return p, nil
}

func (s *stubPublicationService) Edit(_ context.Context, actor ports.Actor, id string, fields domain.PublicationFields) (*domain.Publication, error) {
	s.actor, s.editID, s.editFields = actor, id, fields
	return &domain.Publication{ID: id}, nil
}

func (s *stubPublicationService) SetPaused(_ context.Context, actor ports.Actor, id string, paused bool) (*domain.Publication, error) {
	s.actor, s.paused = actor, &paused
	return &domain.Publication{ID: id, IsPaused: paused}, nil
}

func (s *stubPublicationService) Delete(_ context.Context, actor ports.Actor, _ string) error {
	s.actor = actor
	return nil
}

func authenticated(c echo.Context, id int64, role domain.Role) {
	c.Set(middleware.ContextUserID, id)
	c.Set(middleware.ContextRole, role)
}

const validBody = `{"title":"Bici","description":"rodado 29","price":1500.5,"city":"Rosario","type":"Bicicleta","condition":"Bueno"}`

func TestPublicationHandler_Paged(t *testing.T) {
	e := newEcho()
	svc := &stubPublicationService{}
	h := NewPublicationHandler(svc)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/Publications/paged?page=3&pageSize=5", nil), rec)
	if err := h.Paged(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if svc.listPage != 3 || svc.listSize != 5 {
		t.Fatalf("page=%d size=%d", svc.listPage, svc.listSize)
	}

	var resp domain.ListPublicationsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp.Total != 1 {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}

	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/api/Publications/paged?page=x", nil), httptest.NewRecorder())
	var he *echo.HTTPError
	if err := h.Paged(c); !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestPublicationHandler_CreateUsesCaller(t *testing.T) {
	e := newEcho()
	svc := &stubPublicationService{}
	h := NewPublicationHandler(svc)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/Publications", validBody), rec)
	authenticated(c, 7, domain.RoleCustomer)

	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if svc.actor.UserID != 7 {
		t.Fatalf("actor = %+v", svc.actor)
	}

	var p domain.Publication
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if !p.Price.Equal(decimal.RequireFromString("1500.5")) || p.UserID != 7 {
		t.Fatalf("unexpected publication %+v", p)
	}
}

func TestPublicationHandler_CreateRequiresIdentity(t *testing.T) {
	e := newEcho()
	h := NewPublicationHandler(&stubPublicationService{})

	c := e.NewContext(jsonRequest(http.MethodPost, "/api/Publications", validBody), httptest.NewRecorder())
	var he *echo.HTTPError
	if err := h.Create(c); !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestPublicationHandler_EditTakesIDFromPath(t *testing.T) {
	e := newEcho()
	svc := &stubPublicationService{}
	h := NewPublicationHandler(svc)

	body := `{"id":"other",` + validBody[1:]
	c := e.NewContext(jsonRequest(http.MethodPut, "/api/Publications/p-9", body), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("p-9")
	authenticated(c, 7, domain.RoleCustomer)

	if err := h.Edit(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if svc.editID != "p-9" || svc.editFields.City != "Rosario" {
		t.Fatalf("edit id=%s fields=%+v", svc.editID, svc.editFields)
	}
}

func TestPublicationHandler_PauseActivate(t *testing.T) {
	e := newEcho()
	svc := &stubPublicationService{}
	h := NewPublicationHandler(svc)

	for _, tc := range []struct {
		fn   echo.HandlerFunc
		want bool
	}{{h.Pause, true}, {h.Activate, false}} {
		c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), httptest.NewRecorder())
		c.SetParamNames("id")
		c.SetParamValues("p-1")
		authenticated(c, 7, domain.RoleCustomer)
		if err := tc.fn(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if svc.paused == nil || *svc.paused != tc.want {
			t.Fatalf("paused = %v, want %v", svc.paused, tc.want)
		}
	}
}

func TestPublicationHandler_GetNotFound(t *testing.T) {
	e := newEcho()
	h := NewPublicationHandler(&stubPublicationService{})
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if err := h.Get(c); !errors.Is(err, domain.ErrPublicationNotFound) {
		t.Fatalf("expected ErrPublicationNotFound, got %v", err)
	}
}
