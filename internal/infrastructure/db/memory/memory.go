// Package memory holds in-process repositories for the dev backend. State is
// lost on restart.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/marketplace/storefront/internal/core/domain"
	"github.com/marketplace/storefront/internal/core/ports"
)

type AccountRepository struct {
	mu      sync.RWMutex
	byEmail map[string]domain.Account
	nextID  int64
}

var _ ports.AccountRepository = (*AccountRepository)(nil)

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{byEmail: make(map[string]domain.Account)}
}

func (r *AccountRepository) Create(_ context.Context, account *domain.Account) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byEmail[account.Email]; exists {
		return nil, domain.ErrUserExists
	}
	r.nextID++
	stored := *account
	stored.ID = r.nextID
	r.byEmail[stored.Email] = stored
	out := stored
	return &out, nil
}

func (r *AccountRepository) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &a, nil
}

type PublicationRepository struct {
	mu    sync.RWMutex
	items map[string]domain.Publication
}

var _ ports.PublicationRepository = (*PublicationRepository)(nil)

func NewPublicationRepository() *PublicationRepository {
	return &PublicationRepository{items: make(map[string]domain.Publication)}
}

func clonePublication(p domain.Publication) domain.Publication {
	p.Images = slices.Clone(p.Images)
	return p
}

func (r *PublicationRepository) Create(_ context.Context, p *domain.Publication) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[p.ID] = clonePublication(*p)
	return nil
}

func (r *PublicationRepository) FindByID(_ context.Context, id string) (*domain.Publication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[id]
	if !ok {
		return nil, domain.ErrPublicationNotFound
	}
	out := clonePublication(p)
	return &out, nil
}

func (r *PublicationRepository) Update(_ context.Context, p *domain.Publication) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[p.ID]; !ok {
		return domain.ErrPublicationNotFound
	}
	r.items[p.ID] = clonePublication(*p)
	return nil
}

func (r *PublicationRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domain.ErrPublicationNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *PublicationRepository) List(_ context.Context, page, size int) ([]domain.Publication, int64, error) {
	visible := r.filter(func(p domain.Publication) bool { return !p.IsPaused })
	total := int64(len(visible))

	start := (page - 1) * size
	if start >= len(visible) || start < 0 {
		return []domain.Publication{}, total, nil
	}
	end := min(start+size, len(visible))
	return visible[start:end], total, nil
}

func (r *PublicationRepository) ListByUser(_ context.Context, userID int64) ([]domain.Publication, error) {
	return r.filter(func(p domain.Publication) bool { return p.UserID == userID }), nil
}

// filter returns the matching publications, newest first.
func (r *PublicationRepository) filter(keep func(domain.Publication) bool) []domain.Publication {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Publication, 0, len(r.items))
	for _, p := range r.items {
		if keep(p) {
			out = append(out, clonePublication(p))
		}
	}
	slices.SortFunc(out, func(a, b domain.Publication) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	return out
}
