package mxcache

import (
	"context"
	"net"
	"sync"
	"time"
)

type memoryEntry struct {
	records []*net.MX
	expires time.Time
}

// MemoryStore is a process-local Store with per-entry expiry.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Name() string { return "memory" }

// Get returns the unexpired answer for domain.
func (s *MemoryStore) Get(_ context.Context, domain string) ([]*net.MX, bool, error) {
	s.mu.RLock()
	entry, ok := s.entries[domain]
	s.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	if !s.now().Before(entry.expires) {
		s.mu.Lock()
		delete(s.entries, domain)
		s.mu.Unlock()
		return nil, false, nil
	}
	return entry.records, true, nil
}

// Set stores records for domain until ttl elapses.
func (s *MemoryStore) Set(_ context.Context, domain string, records []*net.MX, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[domain] = memoryEntry{records: records, expires: s.now().Add(ttl)}
	return nil
}
