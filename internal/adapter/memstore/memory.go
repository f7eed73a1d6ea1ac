package memstore

import (
	"fmt"
	"sync"

	"eadrag/internal/domain"
)

// MemoryStore is an in-process CorpusStore.
type MemoryStore struct {
	mu     sync.RWMutex
	chunks []domain.Chunk
	saved  bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save replaces the held corpus with a copy of chunks.
func (s *MemoryStore) Save(chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = append([]domain.Chunk{}, chunks...)
	s.saved = true
	return nil
}

// Load returns a copy of the held corpus. It fails like a missing file
// until the first Save.
func (s *MemoryStore) Load() ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.saved {
		return nil, fmt.Errorf("%w: nothing saved in memory", domain.ErrCorpusNotFound)
	}
	return append([]domain.Chunk{}, s.chunks...), nil
}
