package memorycache

import (
	"context"
	"sync"
	"time"

	"github.com/kcmi-rcc/eventboard/internal/cache"
	"github.com/kcmi-rcc/eventboard/internal/event"
)

type entry struct {
	events    []event.Event
	writtenAt time.Time
}

type Storage struct {
	mu   sync.RWMutex
	data map[string]entry
	ttl  time.Duration
	now  func() time.Time
}

func New(ttl time.Duration) *Storage {
	return NewWithClock(ttl, time.Now)
}

// NewWithClock lets tests drive expiry with a virtual clock.
func NewWithClock(ttl time.Duration, now func() time.Time) *Storage {
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	return &Storage{data: make(map[string]entry), ttl: ttl, now: now}
}

func (s *Storage) Connect(_ context.Context) error {
	return nil
}

func (s *Storage) Close(_ context.Context) error {
	return nil
}

func (s *Storage) Write(_ context.Context, key string, events []event.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make([]event.Event, len(events))
	copy(copied, events)
	s.data[key] = entry{events: copied, writtenAt: s.now()}
	return nil
}

func (s *Storage) Read(_ context.Context, key string, allowStale bool) ([]event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.data[key]
	if !ok {
		return nil, cache.ErrNoEntry
	}
	if !allowStale && s.now().Sub(e.writtenAt) >= s.ttl {
		return nil, cache.ErrNoEntry
	}
	events := make([]event.Event, len(e.events))
	copy(events, e.events)
	return events, nil
}
