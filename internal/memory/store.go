package memory

import (
	"context"
	"sync"

	"github.com/gifco-ai/restaurant-concierge/pkg/metrics"
)

// Store persists thread contexts. The in-memory implementation is the
// default; Redis is available when conversations should survive restarts.
type Store interface {
	// Load returns the context for a thread, creating an empty one if the
	// thread has never been seen.
	Load(ctx context.Context, threadID string) (*ThreadContext, error)

	// Save persists a thread context.
	Save(ctx context.Context, tc *ThreadContext) error

	// Delete removes a thread context.
	Delete(ctx context.Context, threadID string) error
}

// InMemoryStore keeps thread contexts in a mutex-guarded map for the
// process lifetime. No eviction; durability is an explicit non-goal.
type InMemoryStore struct {
	mu      sync.RWMutex
	threads map[string]*ThreadContext
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		threads: make(map[string]*ThreadContext),
	}
}

// Load returns the stored context or a fresh one for unknown threads.
func (s *InMemoryStore) Load(_ context.Context, threadID string) (*ThreadContext, error) {
	s.mu.RLock()
	tc, ok := s.threads[threadID]
	s.mu.RUnlock()

	if !ok {
		return NewThreadContext(threadID), nil
	}
	return tc, nil
}

// Save stores the context.
func (s *InMemoryStore) Save(_ context.Context, tc *ThreadContext) error {
	s.mu.Lock()
	s.threads[tc.ThreadID] = tc
	size := len(s.threads)
	s.mu.Unlock()

	metrics.ActiveThreads.Set(float64(size))
	return nil
}

// Delete removes a thread.
func (s *InMemoryStore) Delete(_ context.Context, threadID string) error {
	s.mu.Lock()
	delete(s.threads, threadID)
	size := len(s.threads)
	s.mu.Unlock()

	metrics.ActiveThreads.Set(float64(size))
	return nil
}
