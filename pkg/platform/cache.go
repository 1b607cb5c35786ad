package platform

import (
	"context"
	"sync"
)

// listCache is a memoized, lazily-populated, invalidatable collection scoped
// to one repository session. Population is guarded by a single-flight: all
// concurrent first-accesses share one in-flight fetch and observe the same
// resulting collection. A failed fetch leaves the cache unpopulated and
// reports the error to every waiter.
type listCache[T any] struct {
	mu        sync.Mutex
	populated bool
	items     []T
	inflight  *fetch[T]
}

// fetch is one in-flight population shared by every waiter.
type fetch[T any] struct {
	done  chan struct{}
	items []T
	err   error
}

func newListCache[T any]() *listCache[T] {
	return &listCache[T]{}
}

// get returns the cached collection, populating it with load on first use.
// No lock is held across the load call.
func (c *listCache[T]) get(ctx context.Context, load func(context.Context) ([]T, error)) ([]T, error) {
	c.mu.Lock()
	if c.populated {
		items := c.items
		c.mu.Unlock()
		return items, nil
	}
	if f := c.inflight; f != nil {
		c.mu.Unlock()
		select {
		case <-f.done:
			return f.items, f.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f := &fetch[T]{done: make(chan struct{})}
	c.inflight = f
	c.mu.Unlock()

	f.items, f.err = load(ctx)

	c.mu.Lock()
	c.inflight = nil
	if f.err == nil {
		c.items = f.items
		c.populated = true
	}
	c.mu.Unlock()
	close(f.done)

	return f.items, f.err
}

// add appends a locally created item so a populated cache reflects the
// mutation without a redundant refetch. It is a no-op while unpopulated.
func (c *listCache[T]) add(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.populated {
		c.items = append(c.items, item)
	}
}

// invalidate resets the cache to unpopulated, forcing a full refetch on the
// next access.
func (c *listCache[T]) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.populated = false
	c.items = nil
}

// isPopulated reports whether the cache currently holds a collection.
func (c *listCache[T]) isPopulated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.populated
}
