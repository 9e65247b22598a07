package marketplace

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/marketplace/storefront/internal/core/domain"
	"github.com/marketplace/storefront/internal/core/ports"
)

const pathPublications = "api/Publications"

// PublicationsClient calls the publication endpoints.
type PublicationsClient struct {
	http Requester
}

var _ ports.PublicationsAPI = (*PublicationsClient)(nil)

func NewPublicationsClient(r Requester) *PublicationsClient {
	return &PublicationsClient{http: r}
}

func publicationPath(id string) string {
	return pathPublications + "/" + url.PathEscape(id)
}

// List fetches one page of the public feed.
func (c *PublicationsClient) List(ctx context.Context, req domain.ListPublicationsRequest) (*domain.ListPublicationsResponse, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(req.Page))
	q.Set("pageSize", strconv.Itoa(req.Size))

	var out domain.ListPublicationsResponse
	if err := c.http.Get(ctx, pathPublications+"/paged?"+q.Encode(), &out); err != nil {
		return nil, fmt.Errorf("list publications: %w", err)
	}
	if out.Publications == nil {
		out.Publications = []domain.Publication{}
	}
	return &out, nil
}

// ListByUser fetches every publication owned by userID. The endpoint is not
// paginated.
func (c *PublicationsClient) ListByUser(ctx context.Context, userID int64) ([]domain.Publication, error) {
	var out []domain.Publication
	path := pathPublications + "/user/" + strconv.FormatInt(userID, 10)
	if err := c.http.Get(ctx, path, &out); err != nil {
		return nil, fmt.Errorf("list publications of user %d: %w", userID, err)
	}
	if out == nil {
		out = []domain.Publication{}
	}
	return out, nil
}

func (c *PublicationsClient) Get(ctx context.Context, id string) (*domain.Publication, error) {
	var out domain.Publication
	if err := c.http.Get(ctx, publicationPath(id), &out); err != nil {
		return nil, fmt.Errorf("get publication %s: %w", id, err)
	}
	return &out, nil
}

func (c *PublicationsClient) Create(ctx context.Context, req domain.CreatePublicationRequest) error {
	if err := c.http.Post(ctx, pathPublications, req, nil); err != nil {
		return fmt.Errorf("create publication: %w", err)
	}
	return nil
}

func (c *PublicationsClient) Pause(ctx context.Context, id string) error {
	if err := c.http.Post(ctx, publicationPath(id)+"/pause", nil, nil); err != nil {
		return fmt.Errorf("pause publication %s: %w", id, err)
	}
	return nil
}

func (c *PublicationsClient) Activate(ctx context.Context, id string) error {
	if err := c.http.Post(ctx, publicationPath(id)+"/activate", nil, nil); err != nil {
		return fmt.Errorf("activate publication %s: %w", id, err)
	}
	return nil
}

func (c *PublicationsClient) Delete(ctx context.Context, id string) error {
	if err := c.http.Delete(ctx, publicationPath(id), nil); err != nil {
		return fmt.Errorf("delete publication %s: %w", id, err)
	}
	return nil
}

func (c *PublicationsClient) Edit(ctx context.Context, req domain.EditPublicationRequest) error {
	if err := c.http.Put(ctx, publicationPath(req.ID), req, nil); err != nil {
		return fmt.Errorf("edit publication %s: %w", req.ID, err)
	}
	return nil
}
