package subscription

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// SnapshotStore caches the last-known subscription record per user, so app
// shells restart with a usable entitlement state before the first refetch
// completes. It is a cache of the backend's record, never an authority.
type SnapshotStore interface {
	// Get retrieves the cached snapshot for a user.
	// Returns ErrSnapshotNotFound if none is cached.
	Get(ctx context.Context, userID uuid.UUID) (*Subscription, error)

	// Save creates or replaces the cached snapshot.
	Save(ctx context.Context, sub *Subscription) error
}

// MemoryStore is a process-local SnapshotStore.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[uuid.UUID]*Subscription
}

// NewMemoryStore creates an empty in-memory snapshot store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshots: make(map[uuid.UUID]*Subscription)}
}

func (s *MemoryStore) Get(ctx context.Context, userID uuid.UUID) (*Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.snapshots[userID]
	if !ok {
		return nil, ErrSnapshotNotFound
	}
	return sub.Clone(), nil
}

func (s *MemoryStore) Save(ctx context.Context, sub *Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshots[sub.UserID] = sub.Clone()
	return nil
}
