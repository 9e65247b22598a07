package query

import (
	"context"
	"errors"
	"sync"
)

// ErrNoMorePages is returned by FetchNext once the last page was loaded.
var ErrNoMorePages = errors.New("query: no more pages")

// FirstPage is the page number of the first page.
const FirstPage = 1

// PageFetcher loads page number page.
type PageFetcher[P any] func(ctx context.Context, page int) (P, error)

// NextPageParam returns the page after last given every page loaded so far,
// or false when there is none.
type NextPageParam[P any] func(last P, all []P) (int, bool)

// Infinite accumulates the pages of a paginated query.
type Infinite[P any] struct {
	fetch PageFetcher[P]
	next  NextPageParam[P]

	mu       sync.Mutex
	pages    []P
	nextPage int
	hasNext  bool
}

func NewInfinite[P any](fetch PageFetcher[P], next NextPageParam[P]) *Infinite[P] {
	return &Infinite[P]{fetch: fetch, next: next, nextPage: FirstPage, hasNext: true}
}

// HasNext reports whether FetchNext would load another page. It is true
// before the first page is loaded.
func (q *Infinite[P]) HasNext() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.hasNext
}

// FetchNext loads the next page and appends it. A failed fetch leaves the
// query unchanged so it can be retried.
func (q *Infinite[P]) FetchNext(ctx context.Context) (P, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero P
	if !q.hasNext {
		return zero, ErrNoMorePages
	}
	page, err := q.fetch(ctx, q.nextPage)
	if err != nil {
		return zero, err
	}
	q.pages = append(q.pages, page)
	q.nextPage, q.hasNext = q.next(page, q.pages)
	return page, nil
}

// Pages returns the pages loaded so far, oldest first.
func (q *Infinite[P]) Pages() []P {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]P, len(q.pages))
	copy(out, q.pages)
	return out
}

// Reset forgets every loaded page.
func (q *Infinite[P]) Reset() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pages = nil
	q.nextPage = FirstPage
	q.hasNext = true
}
