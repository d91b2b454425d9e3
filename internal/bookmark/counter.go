package bookmark

import (
	"fmt"
	"sync"
)

// CounterStore persists the next bookmark ordinal.
type CounterStore interface {
	BookmarkCount() int
	SetBookmarkCount(n int) error
}

// Counter hands out bookmark ordinals. Ordinals only grow.
type Counter struct {
	mu    sync.Mutex
	store CounterStore
	next  int
}

// NewCounter seeds a counter from store. A nil store keeps the count in
// memory starting at 1.
func NewCounter(store CounterStore) *Counter {
	next := 1
	if store != nil {
		if n := store.BookmarkCount(); n > 0 {
			next = n
		}
	}
	return &Counter{store: store, next: next}
}

// Peek returns the ordinal the next call to Next will hand out.
func (c *Counter) Peek() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.next
}

// Next returns the current ordinal and advances the counter. The counter
// advances even when persisting fails, so an ordinal is never handed out
// twice in one process.
func (c *Counter) Next() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := c.next
	c.next++
	if c.store == nil {
		return n, nil
	}
	if err := c.store.SetBookmarkCount(c.next); err != nil {
		return n, fmt.Errorf("saving bookmark count: %w", err)
	}
	return n, nil
}
