package oauth

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrStateNotFound is returned by a StateStore for unknown, used or expired states.
var ErrStateNotFound = errors.New("oauth state not found")

// StateStore keeps pending authorization states. Take must be one-shot: a
// state can be consumed once.
type StateStore interface {
	Save(ctx context.Context, state, provider string, ttl time.Duration) error
	Take(ctx context.Context, state string) (string, error)
}

type memoryEntry struct {
	provider  string
	expiresAt time.Time
}

// MemoryStateStore is a process-local StateStore for single-instance
// deployments and tests.
type MemoryStateStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStateStore) Save(_ context.Context, state, provider string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, k)
		}
	}
	s.entries[state] = memoryEntry{provider: provider, expiresAt: now.Add(ttl)}
	return nil
}

func (s *MemoryStateStore) Take(_ context.Context, state string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[state]
	if !ok {
		return "", ErrStateNotFound
	}
	delete(s.entries, state)
	if !s.now().Before(e.expiresAt) {
		return "", ErrStateNotFound
	}
	return e.provider, nil
}
