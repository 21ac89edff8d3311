package cache

import (
	"context"
	"sync"
	"time"
)

type memoryItem struct {
	entry     Entry
	expiresAt time.Time
}

// MemoryStore implements ResponseStore with an in-process map.
// Entries are not shared between instances, so it suits single-node
// deployments and tests.
type MemoryStore struct {
	mu        sync.Mutex
	items     map[string]memoryItem
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
	closed    bool
}

// NewMemoryStore creates a store and starts its expiry sweeper
func NewMemoryStore(sweepInterval time.Duration) *MemoryStore {
	if sweepInterval <= 0 {
		sweepInterval = 5 * time.Minute
	}
	s := &MemoryStore{
		items:    make(map[string]memoryItem),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
	s.wg.Add(1)
	go s.sweepLoop(sweepInterval)
	return s
}

func (s *MemoryStore) Reserve(_ context.Context, key, fingerprint string, ttl time.Duration) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrStoreClosed
	}

	now := s.now()
	if item, ok := s.items[key]; ok && now.Before(item.expiresAt) {
		existing := item.entry
		return &existing, nil
	}
	s.items[key] = memoryItem{
		entry:     Entry{Fingerprint: fingerprint, Pending: true},
		expiresAt: now.Add(ttl),
	}
	return nil, nil
}

func (s *MemoryStore) Complete(_ context.Context, key string, entry Entry, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	entry.Pending = false
	s.items[key] = memoryItem{entry: entry, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	delete(s.items, key)
	return nil
}

// Close stops the sweeper. Safe to call more than once.
func (s *MemoryStore) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

// Len returns the number of entries, expired ones included until swept
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *MemoryStore) sweepLoop(interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *MemoryStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, item := range s.items {
		if !now.Before(item.expiresAt) {
			delete(s.items, key)
		}
	}
}

var _ ResponseStore = (*MemoryStore)(nil)
