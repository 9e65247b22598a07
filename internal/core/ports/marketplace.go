package ports

import (
	"context"

	"github.com/marketplace/storefront/internal/core/domain"
)

// AuthAPI is the client side of the account endpoints.
type AuthAPI interface {
	Login(ctx context.Context, req domain.AuthRequest) (*domain.AuthResponse, error)
	Register(ctx context.Context, req domain.AuthRequest) (*domain.AuthResponse, error)
}

// PublicationsAPI is the client side of the publication endpoints.
type PublicationsAPI interface {
	List(ctx context.Context, req domain.ListPublicationsRequest) (*domain.ListPublicationsResponse, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Publication, error)
	Get(ctx context.Context, id string) (*domain.Publication, error)
	Create(ctx context.Context, req domain.CreatePublicationRequest) error
	Pause(ctx context.Context, id string) error
	Activate(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Edit(ctx context.Context, req domain.EditPublicationRequest) error
}
