package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/marketplace/storefront/internal/core/domain"
	"github.com/marketplace/storefront/internal/core/ports"
)

const maxPageSize = 100

type PublicationService struct {
	repo   ports.PublicationRepository
	logger zerolog.Logger
	now    func() time.Time
}

var _ ports.PublicationService = (*PublicationService)(nil)

func NewPublicationService(repo ports.PublicationRepository, logger zerolog.Logger) *PublicationService {
	return &PublicationService{repo: repo, logger: logger, now: time.Now}
}

// List returns one page of the public feed. Paused publications are hidden.
func (s *PublicationService) List(ctx context.Context, page, size int) (*domain.ListPublicationsResponse, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > maxPageSize {
		return nil, fmt.Errorf("%w: pageSize must be between 1 and %d", domain.ErrValidation, maxPageSize)
	}

	items, total, err := s.repo.List(ctx, page, size)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Publication{}
	}
	return &domain.ListPublicationsResponse{Total: total, Publications: items}, nil
}

// ListByUser returns every publication of userID, paused ones included.
func (s *PublicationService) ListByUser(ctx context.Context, userID int64) ([]domain.Publication, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Publication{}
	}
	return items, nil
}

func (s *PublicationService) Get(ctx context.Context, id string) (*domain.Publication, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *PublicationService) Create(ctx context.Context, actor ports.Actor, fields domain.PublicationFields) (*domain.Publication, error) {
	now := s.now().UTC()
	p := &domain.Publication{
		ID:        uuid.NewString(),
		UserID:    actor.UserID,
		Images:    []domain.Image{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	fields.Apply(p)

	if err := s.repo.Create(ctx, p); err != nil {
		s.logger.Error().Err(err).Msg("failed to create publication")
		return nil, err
	}
	s.logger.Info().Str("publication_id", p.ID).Int64("user_id", actor.UserID).Msg("publication created")
	return p, nil
}

func (s *PublicationService) Edit(ctx context.Context, actor ports.Actor, id string, fields domain.PublicationFields) (*domain.Publication, error) {
	p, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	fields.Apply(p)
	p.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// SetPaused pauses or reactivates a publication. Setting the current state
// again is not an error.
func (s *PublicationService) SetPaused(ctx context.Context, actor ports.Actor, id string, paused bool) (*domain.Publication, error) {
	p, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if p.IsPaused == paused {
		return p, nil
	}
	p.IsPaused = paused
	p.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info().Str("publication_id", id).Bool("paused", paused).Msg("publication visibility changed")
	return p, nil
}

func (s *PublicationService) Delete(ctx context.Context, actor ports.Actor, id string) error {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("publication_id", id).Int64("user_id", actor.UserID).Msg("publication deleted")
	return nil
}

// owned loads id and checks that actor may change it: the owner or an ADMIN.
func (s *PublicationService) owned(ctx context.Context, actor ports.Actor, id string) (*domain.Publication, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleAdmin && p.UserID != actor.UserID {
		return nil, domain.ErrForbidden
	}
	return p, nil
}
