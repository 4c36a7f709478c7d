// Package dedupe defines the interface for idempotent run submission.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Registry maps client request IDs to run IDs so resubmitting the same
// request returns the original run instead of scheduling a second sweep.
type Registry interface {
	// Claim atomically binds key to runID if the key is unclaimed.
	// Returns the bound run ID and true if the key was already claimed,
	// or runID and false if it was newly recorded.
	Claim(ctx context.Context, key, runID string) (string, bool)

	// Forget releases a claimed key, allowing resubmission. Used when a
	// claimed run could not be enqueued (e.g. queue backpressure).
	Forget(ctx context.Context, key string)

	Size() int64
}

// node is a single entry in the eviction list.
type node struct {
	key   string
	runID string
	next  *node
}

func (n *node) reset() {
	n.key = ""
	n.runID = ""
	n.next = nil
}

// inMemoryRegistry implements Registry with a map plus a linked list for
// bounded eviction. With maxSize <= 0 the registry is unbounded and keeps
// every claim until Forget.
type inMemoryRegistry struct {
	mu      sync.RWMutex
	claims  map[string]*node
	head    *node // most recently claimed
	maxSize int
	size    atomic.Int64
	pool    sync.Pool
}

// NewInMemoryRegistry creates a new in-memory registry with configuration options.
func NewInMemoryRegistry(opts ...Option) Registry {
	r := &inMemoryRegistry{
		maxSize: 50000, // default max size
	}

	for _, opt := range opts {
		opt(r)
	}

	r.claims = make(map[string]*node)

	if r.maxSize > 0 {
		r.pool = sync.Pool{
			New: func() interface{} {
				return &node{}
			},
		}
	}

	return r
}

// Claim atomically binds key to runID if the key is unclaimed.
func (r *inMemoryRegistry) Claim(ctx context.Context, key, runID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.claims[key]; ok {
		return existing.runID, true
	}

	if r.maxSize > 0 && len(r.claims) >= r.maxSize {
		r.evictOldest()
	}

	n := r.newNode()
	n.key = key
	n.runID = runID
	n.next = r.head

	r.head = n
	r.claims[key] = n
	r.size.Add(1)
	return runID, false
}

// Forget releases a claimed key, allowing resubmission.
func (r *inMemoryRegistry) Forget(ctx context.Context, key string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.claims[key]
	if !ok {
		return
	}
	delete(r.claims, key)

	if r.head == n {
		r.head = n.next
	} else {
		current := r.head
		for current != nil && current.next != n {
			current = current.next
		}
		if current != nil {
			current.next = n.next
		}
	}

	r.freeNode(n)
	r.size.Add(-1)
}

// evictOldest removes the oldest claim (tail of the list).
// Must be called with r.mu held.
func (r *inMemoryRegistry) evictOldest() {
	if len(r.claims) == 0 || r.head == nil {
		return
	}

	var prev *node
	current := r.head

	if current.next == nil {
		delete(r.claims, current.key)
		r.freeNode(current)
		r.head = nil
		r.size.Add(-1)
		return
	}

	for current.next != nil {
		prev = current
		current = current.next
	}

	if prev != nil {
		prev.next = nil
		delete(r.claims, current.key)
		r.freeNode(current)
		r.size.Add(-1)
	}
}

func (r *inMemoryRegistry) newNode() *node {
	if r.maxSize > 0 {
		return r.pool.Get().(*node)
	}
	return &node{}
}

func (r *inMemoryRegistry) freeNode(n *node) {
	n.reset()
	if r.maxSize > 0 {
		r.pool.Put(n)
	}
}

// Size returns the current number of claimed keys.
func (r *inMemoryRegistry) Size() int64 {
	return r.size.Load()
}
