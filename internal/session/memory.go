package session

import (
	"context"
	"sync"
	"time"

	"github.com/teghlab/otp-lab/internal/domain"
)

// MemoryStore is an in-process domain.SessionStore. It is safe for
// concurrent use. Sessions idle longer than the idle window are removed by a
// background goroutine until Close is called.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*memoryEntry
	idle     time.Duration
	stop     chan struct{}
	once     sync.Once
}

type memoryEntry struct {
	data domain.SessionData
	last time.Time
}

// NewMemoryStore creates a MemoryStore. An idle window of zero disables eviction.
func NewMemoryStore(idle time.Duration) *MemoryStore {
	s := &MemoryStore{
		sessions: make(map[string]*memoryEntry),
		idle:     idle,
		stop:     make(chan struct{}),
	}
	if idle > 0 {
		go s.cleanup()
	}
	return s
}

func (s *MemoryStore) Get(_ context.Context, id string) (*domain.SessionData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	e.last = time.Now()
	data := cloneData(e.data)
	return &data, nil
}

func (s *MemoryStore) Set(_ context.Context, id string, data *domain.SessionData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[id] = &memoryEntry{data: cloneData(*data), last: time.Now()}
	return nil
}

func (s *MemoryStore) Destroy(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

// Len reports the number of stored sessions.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Close stops the cleanup goroutine.
func (s *MemoryStore) Close() error {
	s.once.Do(func() { close(s.stop) })
	return nil
}

// evictIdle removes sessions not touched since before cutoff.
func (s *MemoryStore) evictIdle(cutoff time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.sessions {
		if e.last.Before(cutoff) {
			delete(s.sessions, id)
		}
	}
}

func (s *MemoryStore) cleanup() {
	interval := s.idle / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.evictIdle(time.Now().Add(-s.idle))
		}
	}
}

func cloneData(d domain.SessionData) domain.SessionData {
	if d.User != nil {
		u := *d.User
		d.User = &u
	}
	return d
}
