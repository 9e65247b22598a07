// Package marketplace wraps the marketplace REST endpoints used by the client.
package marketplace

import "context"

// Requester sends JSON requests relative to the API base URL.
// *transport.Client satisfies it.
type Requester interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, out any) error
}
