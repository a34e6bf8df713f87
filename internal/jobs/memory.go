package jobs

import (
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore is the in-memory Store backing. Finished jobs expire after
// the configured TTL so long-lived processes don't accumulate reports.
type MemoryStore struct {
	c  *gocache.Cache
	mu sync.Mutex
}

// NewMemoryStore creates a memory store. Records expire ttl after their
// last update.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	return &MemoryStore{
		c: gocache.New(ttl, 10*time.Minute),
	}
}

// Create registers a new job in StatePending.
func (s *MemoryStore) Create(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, found := s.c.Get(id); found {
		return fmt.Errorf("job %s already exists", id)
	}
	s.c.Set(id, Status{
		JobID:     id,
		State:     StatePending,
		Message:   "Queued",
		UpdatedAt: time.Now().UTC(),
	}, gocache.DefaultExpiration)
	return nil
}

// Get returns a copy of the job's status.
func (s *MemoryStore) Get(id string) (Status, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, found := s.c.Get(id)
	if !found {
		return Status{}, false
	}
	return v.(Status), true
}

// Update applies a partial mutation atomically.
func (s *MemoryStore) Update(id string, apply func(*Status)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, found := s.c.Get(id)
	if !found {
		return fmt.Errorf("job %s not found", id)
	}
	status := v.(Status)
	apply(&status)
	status.UpdatedAt = time.Now().UTC()
	s.c.Set(id, status, gocache.DefaultExpiration)
	return nil
}
