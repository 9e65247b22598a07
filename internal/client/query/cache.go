// Package query caches API reads and drives paginated feeds.
//
// Reads go through a Cache: results are kept for a stale time, identical
// concurrent reads share one request, and mutations invalidate by key prefix.
package query

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/marketplace/storefront/internal/metrics"
)

// DefaultStaleTime is how long a cached result is served without refetching.
const DefaultStaleTime = 30 * time.Second

type entry struct {
	value     any
	fetchedAt time.Time
}

// Cache holds query results by key.
type Cache struct {
	mu        sync.Mutex
	entries   map[string]entry
	epoch     uint64
	group     singleflight.Group
	staleTime time.Duration
	now       func() time.Time
}

// NewCache returns a cache that serves results for staleTime. A zero or
// negative staleTime uses DefaultStaleTime.
func NewCache(staleTime time.Duration) *Cache {
	if staleTime <= 0 {
		staleTime = DefaultStaleTime
	}
	return &Cache{
		entries:   make(map[string]entry),
		staleTime: staleTime,
		now:       time.Now,
	}
}

// Key joins parts into a cache key: Key("publications", "get", "p-1") is
// "publications/get/p-1".
func Key(parts ...any) string {
	s := make([]string, len(parts))
	for i, p := range parts {
		s[i] = fmt.Sprint(p)
	}
	return strings.Join(s, "/")
}

func (c *Cache) lookup(key string) (any, uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if ok && c.now().Sub(e.fetchedAt) < c.staleTime {
		return e.value, c.epoch, true
	}
	if ok {
		delete(c.entries, key)
	}
	return nil, c.epoch, false
}

func (c *Cache) store(key string, epoch uint64, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	// An invalidation ran while the fetch was in flight.
	if epoch != c.epoch {
		return
	}
	c.entries[key] = entry{value: v, fetchedAt: c.now()}
}

// Invalidate drops every entry whose key starts with prefix. Fetches already
// in flight complete but their results are not cached.
func (c *Cache) Invalidate(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
}

// Len reports the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Fetch returns the cached value of key or runs fn to produce it. Concurrent
// callers for the same key share a single call to fn. Errors are not cached.
func Fetch[T any](ctx context.Context, c *Cache, key string, fn func(context.Context) (T, error)) (T, error) {
	cached, epoch, ok := c.lookup(key)
	if ok {
		metrics.QueryCacheTotal.WithLabelValues("hit").Inc()
		return cached.(T), nil
	}

	flight := fmt.Sprintf("%d|%s", epoch, key)
	v, err, shared := c.group.Do(flight, func() (any, error) {
		out, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		c.store(key, epoch, out)
		return out, nil
	})
	if shared {
		metrics.QueryCacheTotal.WithLabelValues("shared").Inc()
	} else {
		metrics.QueryCacheTotal.WithLabelValues("miss").Inc()
	}
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
