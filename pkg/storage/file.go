package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/trungleviet-agilityio/playwright-training/pkg/types"
)

// FileStore persists sessions to a single YAML file. Every mutation
// rewrites the file through a temp-file rename, so a crash mid-write never
// leaves a truncated store behind.
type FileStore struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// NewFileStore opens (or creates the directory for) a YAML-backed store.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileStore{path: path, now: time.Now}, nil
}

func (s *FileStore) Store(record *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return err
	}
	records[record.SessionID] = record
	return s.save(records)
}

func (s *FileStore) Get(sessionID string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return nil, err
	}
	record, ok := records[sessionID]
	if !ok {
		return nil, nil
	}
	record.LastUsed = s.now()
	if err := s.save(records); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *FileStore) ListActive(provider types.Provider) ([]*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return nil, err
	}
	now := s.now()

	var active []*Record
	for _, record := range records {
		if !record.Active(now) {
			continue
		}
		if provider != "" && record.Provider != provider {
			continue
		}
		active = append(active, record)
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].CreatedAt.After(active[j].CreatedAt)
	})
	return active, nil
}

func (s *FileStore) Delete(sessionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return false, err
	}
	if _, ok := records[sessionID]; !ok {
		return false, nil
	}
	delete(records, sessionID)
	return true, s.save(records)
}

func (s *FileStore) load() (map[string]*Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]*Record{}, nil
		}
		return nil, fmt.Errorf("failed to read session store: %w", err)
	}
	records := map[string]*Record{}
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse session store: %w", err)
	}
	return records, nil
}

func (s *FileStore) save(records map[string]*Record) error {
	data, err := yaml.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode session store: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session store: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace session store: %w", err)
	}
	return nil
}

// New builds a store from the configured type. Unknown types fall back to
// memory with an error so callers can decide.
func New(storageType, path string) (Store, error) {
	switch storageType {
	case "", "memory":
		return NewMemoryStore(), nil
	case "file":
		return NewFileStore(path)
	default:
		return nil, fmt.Errorf("unknown storage type %q", storageType)
	}
}
