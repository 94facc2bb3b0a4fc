package storage

import (
	"sort"
	"sync"
	"time"

	"github.com/trungleviet-agilityio/playwright-training/pkg/types"
)

// MemoryStore keeps sessions in a map. Safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
	now     func() time.Time
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: map[string]*Record{}, now: time.Now}
}

func (s *MemoryStore) Store(record *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *record
	s.records[record.SessionID] = &clone
	return nil
}

func (s *MemoryStore) Get(sessionID string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[sessionID]
	if !ok {
		return nil, nil
	}
	record.LastUsed = s.now()
	clone := *record
	return &clone, nil
}

func (s *MemoryStore) ListActive(provider types.Provider) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	now := s.now()

	var active []*Record
	for _, record := range s.records {
		if !record.Active(now) {
			continue
		}
		if provider != "" && record.Provider != provider {
			continue
		}
		clone := *record
		active = append(active, &clone)
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].CreatedAt.After(active[j].CreatedAt)
	})
	return active, nil
}

func (s *MemoryStore) Delete(sessionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.records[sessionID]
	delete(s.records, sessionID)
	return ok, nil
}
