package webhook

import (
	"context"
	"sync"
)

// DefaultCapacity is the number of events kept by a [MemoryStore].
const DefaultCapacity = 256

// Store persists received events.
type Store interface {
	Save(ctx context.Context, e Event) error
	// Recent returns at most limit events, newest first.
	Recent(ctx context.Context, limit int) ([]Event, error)
	Close(ctx context.Context) error
}

// MemoryStore keeps the most recent events in a ring buffer.
type MemoryStore struct {
	mu     sync.Mutex
	events []Event
	next   int
	full   bool
}

// NewMemoryStore returns a store holding up to capacity events.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemoryStore{events: make([]Event, capacity)}
}

func (s *MemoryStore) Save(_ context.Context, e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[s.next] = e
	s.next = (s.next + 1) % len(s.events)
	if s.next == 0 {
		s.full = true
	}
	return nil
}

func (s *MemoryStore) Recent(_ context.Context, limit int) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.next
	if s.full {
		n = len(s.events)
	}
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]Event, 0, limit)
	for i := 1; i <= limit; i++ {
		out = append(out, s.events[(s.next-i+len(s.events))%len(s.events)])
	}
	return out, nil
}

func (s *MemoryStore) Close(context.Context) error { return nil }
