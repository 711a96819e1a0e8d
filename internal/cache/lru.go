package cache

import (
	"sync"
	"time"
)

// LRU evicts the least recently used entry once it holds more than limit
// entries. Entries expire ttl after they were last set; a ttl of zero or
// less disables expiry. It is safe for concurrent use.
type LRU[T any] struct {
	mu      sync.Mutex
	limit   int
	ttl     time.Duration
	now     func() time.Time
	entries map[string]*entry[T]
	// root.next is the most recently used entry, root.prev the least.
	root entry[T]
}

type entry[T any] struct {
	key        string
	value      T
	deadline   time.Time
	prev, next *entry[T]
}

// NewLRU returns an empty cache. A limit below 1 is raised to 1.
func NewLRU[T any](limit int, ttl time.Duration) *LRU[T] {
	if limit < 1 {
		limit = 1
	}
	c := &LRU[T]{
		limit:   limit,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]*entry[T], limit),
	}
	c.root.prev, c.root.next = &c.root, &c.root
	return c
}

func (c *LRU[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero T
		return zero, false
	}
	if c.ttl > 0 && c.now().After(e.deadline) {
		c.remove(e)
		var zero T
		return zero, false
	}
	c.unlink(e)
	c.pushFront(e)
	return e.value, true
}

func (c *LRU[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var deadline time.Time
	if c.ttl > 0 {
		deadline = c.now().Add(c.ttl)
	}

	if e, ok := c.entries[key]; ok {
		e.value, e.deadline = value, deadline
		c.unlink(e)
		c.pushFront(e)
		return
	}

	e := &entry[T]{key: key, value: value, deadline: deadline}
	c.entries[key] = e
	c.pushFront(e)
	if len(c.entries) > c.limit {
		c.remove(c.root.prev)
	}
}

func (c *LRU[T]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.entries)
	c.root.prev, c.root.next = &c.root, &c.root
}

func (c *LRU[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *LRU[T]) pushFront(e *entry[T]) {
	e.prev, e.next = &c.root, c.root.next
	c.root.next.prev = e
	c.root.next = e
}

func (c *LRU[T]) unlink(e *entry[T]) {
	e.prev.next = e.next
	e.next.prev = e.prev
	e.prev, e.next = nil, nil
}

func (c *LRU[T]) remove(e *entry[T]) {
	c.unlink(e)
	delete(c.entries, e.key)
}
