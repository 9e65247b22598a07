package query

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/marketplace/storefront/internal/core/domain"
	"github.com/marketplace/storefront/internal/core/ports"
)

// DefaultPageSize is the feed page size.
const DefaultPageSize = 12

const scopePublications = "publications"

// Publications exposes cached publication reads and the mutations that
// invalidate them.
type Publications struct {
	api      ports.PublicationsAPI
	cache    *Cache
	pageSize int
	log      zerolog.Logger
}

func NewPublications(api ports.PublicationsAPI, cache *Cache, pageSize int, log zerolog.Logger) *Publications {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Publications{api: api, cache: cache, pageSize: pageSize, log: log}
}

// Page reads one page of the public feed.
func (p *Publications) Page(ctx context.Context, page, size int) (*domain.ListPublicationsResponse, error) {
	if size <= 0 {
		size = p.pageSize
	}
	key := Key(scopePublications, "list", page, size)
	return Fetch(ctx, p.cache, key, func(ctx context.Context) (*domain.ListPublicationsResponse, error) {
		return p.api.List(ctx, domain.ListPublicationsRequest{Page: page, Size: size})
	})
}

// Feed returns an infinite query over the public feed. Another page is
// available while fewer items than the reported total have been loaded.
func (p *Publications) Feed() *Infinite[*domain.ListPublicationsResponse] {
	return NewInfinite(
		func(ctx context.Context, page int) (*domain.ListPublicationsResponse, error) {
			return p.Page(ctx, page, p.pageSize)
		},
		feedNextPage,
	)
}

func feedNextPage(last *domain.ListPublicationsResponse, all []*domain.ListPublicationsResponse) (int, bool) {
	loaded := 0
	for _, page := range all {
		loaded += len(page.Publications)
	}
	if int64(loaded) < last.Total && len(last.Publications) > 0 {
		return len(all) + 1, true
	}
	return 0, false
}

// FeedItems flattens the pages of a feed.
func FeedItems(pages []*domain.ListPublicationsResponse) []domain.Publication {
	var out []domain.Publication
	for _, page := range pages {
		out = append(out, page.Publications...)
	}
	return out
}

// ByUser returns an infinite query over the publications of userID. The
// endpoint is not paginated, so the query holds a single page whose total is
// its length. A zero userID yields an empty page without calling the API.
func (p *Publications) ByUser(userID int64) *Infinite[*domain.ListPublicationsResponse] {
	return NewInfinite(
		func(ctx context.Context, _ int) (*domain.ListPublicationsResponse, error) {
			if userID == 0 {
				return &domain.ListPublicationsResponse{Publications: []domain.Publication{}}, nil
			}
			key := Key(scopePublications, "user", userID)
			items, err := Fetch(ctx, p.cache, key, func(ctx context.Context) ([]domain.Publication, error) {
				return p.api.ListByUser(ctx, userID)
			})
			if err != nil {
				return nil, err
			}
			return &domain.ListPublicationsResponse{Total: int64(len(items)), Publications: items}, nil
		},
		func(*domain.ListPublicationsResponse, []*domain.ListPublicationsResponse) (int, bool) {
			return 0, false
		},
	)
}

// Get reads one publication.
func (p *Publications) Get(ctx context.Context, id string) (*domain.Publication, error) {
	if id == "" {
		return nil, fmt.Errorf("get publication: %w: id is required", domain.ErrValidation)
	}
	return Fetch(ctx, p.cache, Key(scopePublications, "get", id), func(ctx context.Context) (*domain.Publication, error) {
		return p.api.Get(ctx, id)
	})
}

func (p *Publications) Create(ctx context.Context, req domain.CreatePublicationRequest) error {
	return p.mutate("create", "", func() error { return p.api.Create(ctx, req) })
}

func (p *Publications) Edit(ctx context.Context, req domain.EditPublicationRequest) error {
	return p.mutate("edit", req.ID, func() error { return p.api.Edit(ctx, req) })
}

func (p *Publications) Pause(ctx context.Context, id string) error {
	return p.mutate("pause", id, func() error { return p.api.Pause(ctx, id) })
}

func (p *Publications) Activate(ctx context.Context, id string) error {
	return p.mutate("activate", id, func() error { return p.api.Activate(ctx, id) })
}

func (p *Publications) Delete(ctx context.Context, id string) error {
	return p.mutate("delete", id, func() error { return p.api.Delete(ctx, id) })
}

// mutate runs fn and, on success, drops every cached publication read.
func (p *Publications) mutate(op, id string, fn func() error) error {
	if err := fn(); err != nil {
		return err
	}
	p.cache.Invalidate(scopePublications + "/")
	p.log.Debug().Str("op", op).Str("id", id).Msg("publication cache invalidated")
	return nil
}
