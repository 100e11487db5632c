package cache

import (
	"context"
	"fmt"
	"sync"

	"polycubes/internal/polycube"
)

// MemoryStore keeps encoded levels in memory. It is used by tests and by
// one-off runs that should leave nothing on disk.
type MemoryStore struct {
	mu     sync.RWMutex
	levels map[int][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{levels: make(map[int][]byte)}
}

func (s *MemoryStore) Load(_ context.Context, order int) (*polycube.Hashy, error) {
	s.mu.RLock()
	data, ok := s.levels[order]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: order %d not in memory", ErrCacheMiss, order)
	}
	return decodeLevel(data, order, "memory")
}

func (s *MemoryStore) Save(_ context.Context, order int, h *polycube.Hashy) error {
	data, err := encode(h)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.levels[order] = data
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]LevelInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	levels := make([]LevelInfo, 0, len(s.levels))
	for order, data := range s.levels {
		levels = append(levels, LevelInfo{Order: order, Bytes: int64(len(data))})
	}
	return sortLevels(levels), nil
}

func (s *MemoryStore) Close() error { return nil }
