package ports

import (
	"context"

	"github.com/marketplace/storefront/internal/core/domain"
)

// AccountRepository persists marketplace accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
}

// PublicationRepository persists publications.
type PublicationRepository interface {
	Create(ctx context.Context, p *domain.Publication) error
	FindByID(ctx context.Context, id string) (*domain.Publication, error)
	Update(ctx context.Context, p *domain.Publication) error
	Delete(ctx context.Context, id string) error
	// List returns one 1-based page of publications that are not paused, newest first, and the total count.
	List(ctx context.Context, page, size int) ([]domain.Publication, int64, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Publication, error)
}

// Actor is the authenticated caller of a backend use case.
type Actor struct {
	UserID int64
	Role   domain.Role
}

// AccountService implements registration and login on the backend.
type AccountService interface {
	Register(ctx context.Context, req domain.AuthRequest) (string, *domain.Account, error)
	Login(ctx context.Context, req domain.AuthRequest) (string, *domain.Account, error)
}

// PublicationService implements the publication use cases on the backend.
type PublicationService interface {
	List(ctx context.Context, page, size int) (*domain.ListPublicationsResponse, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Publication, error)
	Get(ctx context.Context, id string) (*domain.Publication, error)
	Create(ctx context.Context, actor Actor, fields domain.PublicationFields) (*domain.Publication, error)
	Edit(ctx context.Context, actor Actor, id string, fields domain.PublicationFields) (*domain.Publication, error)
	SetPaused(ctx context.Context, actor Actor, id string, paused bool) (*domain.Publication, error)
	Delete(ctx context.Context, actor Actor, id string) error
}
