package journal

import (
	"context"
	"sync"
	"time"
)

// InMemoryStore keeps journal entries in process memory. Used in development
// and tests; production deployments configure the Postgres store.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
	clock   func() time.Time
}

// NewInMemoryStore creates an empty in-memory journal.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{clock: time.Now}
}

func (s *InMemoryStore) Append(_ context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = s.clock()
	}
	s.entries = append(s.entries, entry)
	return nil
}

func (s *InMemoryStore) ListByReference(_ context.Context, reference string) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Entry
	for _, e := range s.entries {
		if e.Reference == reference {
			out = append(out, e)
		}
	}
	return out, nil
}
