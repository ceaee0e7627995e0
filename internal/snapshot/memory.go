package snapshot

import (
	"context"
	"sync"
	"time"

	"tokyolore/internal/clock"
)

// MemoryStore is an in-process Store for development and tests. Expiry is
// checked on read against the injected clock, so tests can pin time.
type MemoryStore struct {
	mu    sync.Mutex
	snaps map[string]memoryEntry
	ttl   time.Duration
	clock clock.Clock
}

type memoryEntry struct {
	snap      Snapshot
	expiresAt time.Time
}

func NewMemoryStore(ttl time.Duration, clk clock.Clock) *MemoryStore {
	return &MemoryStore{
		snaps: make(map[string]memoryEntry),
		ttl:   ttl,
		clock: clk,
	}
}

func (s *MemoryStore) Create(ctx context.Context, ownerID uint, items []Item, metadata map[string]string) (string, error) {
	now := s.clock.Now()
	key, err := newKey(ownerID, now)
	if err != nil {
		return "", err
	}
	copied := make([]Item, len(items))
	copy(copied, items)
	s.mu.Lock()
	s.snaps[key] = memoryEntry{
		snap: Snapshot{
			Key:       key,
			OwnerID:   ownerID,
			Items:     copied,
			Metadata:  metadata,
			CreatedAt: now,
		},
		expiresAt: now.Add(s.ttl),
	}
	s.mu.Unlock()
	return key, nil
}

func (s *MemoryStore) Get(ctx context.Context, key string, ownerID uint) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.snaps[key]
	if !ok {
		return nil, ErrSnapshotNotFound
	}
	if !s.clock.Now().Before(entry.expiresAt) {
		delete(s.snaps, key)
		return nil, ErrSnapshotNotFound
	}
	if entry.snap.OwnerID != ownerID {
		return nil, ErrSnapshotNotFound
	}
	snap := entry.snap
	return &snap, nil
}
