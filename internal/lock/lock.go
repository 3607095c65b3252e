// Package lock provides named mutual-exclusion tokens for serializing
// operations across requests, such as commit attempts on the same review.
package lock

import (
	"context"
	"fmt"
	"sync"
)

// Provider hands out named locks. Acquire blocks until the lock is held or
// the context is done; Release must be called exactly once per successful
// Acquire, on all paths.
type Provider interface {
	Acquire(ctx context.Context, name string) error
	Release(name string)
}

// ChangeLockName returns the lock name guarding commit attempts for a review.
func ChangeLockName(reviewID string) string {
	return fmt.Sprintf("change-%s", reviewID)
}

type memoryEntry struct {
	sem  chan struct{}
	refs int
}

// MemoryProvider is an in-process Provider backed by per-name semaphores.
// Suitable for single-instance deployments and tests.
type MemoryProvider struct {
	mu    sync.Mutex
	locks map[string]*memoryEntry
}

// NewMemoryProvider creates an in-process lock provider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{locks: make(map[string]*memoryEntry)}
}

// Acquire blocks until the named lock is held or ctx is done.
func (p *MemoryProvider) Acquire(ctx context.Context, name string) error {
	p.mu.Lock()
	entry, ok := p.locks[name]
	if !ok {
		entry = &memoryEntry{sem: make(chan struct{}, 1)}
		p.locks[name] = entry
	}
	entry.refs++
	p.mu.Unlock()

	select {
	case entry.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		p.unref(name, entry)
		return fmt.Errorf("acquiring lock %q: %w", name, ctx.Err())
	}
}

// Release releases the named lock. Releasing a lock that is not held is a
// programming error and panics.
func (p *MemoryProvider) Release(name string) {
	p.mu.Lock()
	entry, ok := p.locks[name]
	p.mu.Unlock()
	if !ok {
		panic(fmt.Sprintf("lock: release of unknown lock %q", name))
	}

	select {
	case <-entry.sem:
	default:
		panic(fmt.Sprintf("lock: release of unheld lock %q", name))
	}
	p.unref(name, entry)
}

func (p *MemoryProvider) unref(name string, entry *memoryEntry) {
	p.mu.Lock()
	entry.refs--
	if entry.refs <= 0 {
		delete(p.locks, name)
	}
	p.mu.Unlock()
}
