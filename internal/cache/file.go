package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"polycubes/internal/polycube"
)

// FileStore keeps one cubes_N.bin file per level in a directory.
type FileStore struct {
	dir    string
	logger *zap.Logger
}

func NewFileStore(dir string, logger *zap.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir, logger: logger}, nil
}

func (s *FileStore) path(order int) string {
	return filepath.Join(s.dir, FileName(order))
}

func (s *FileStore) Load(_ context.Context, order int) (*polycube.Hashy, error) {
	path := s.path(order)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCacheMiss, err)
	}
	return decodeLevel(data, order, path)
}

// Save writes through a temporary file so that an interrupted run never
// leaves a truncated level behind.
func (s *FileStore) Save(_ context.Context, order int, h *polycube.Hashy) error {
	path := s.path(order)
	tmp, err := os.CreateTemp(s.dir, FileName(order)+".*")
	if err != nil {
		return fmt.Errorf("failed to create cache file for order %d: %w", order, err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, h); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write cache file %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close cache file %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move cache file into place %s: %w", path, err)
	}

	s.logger.Debug("level written", zap.String("path", path), zap.Int("order", order))
	return nil
}

func (s *FileStore) List(_ context.Context) ([]LevelInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache directory %s: %w", s.dir, err)
	}

	var levels []LevelInfo
	for _, entry := range entries {
		var order int
		if entry.IsDir() {
			continue
		}
		if _, err := fmt.Sscanf(entry.Name(), "cubes_%d.bin", &order); err != nil || entry.Name() != FileName(order) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to stat %s: %w", entry.Name(), err)
		}
		levels = append(levels, LevelInfo{Order: order, Bytes: info.Size()})
	}
	return sortLevels(levels), nil
}

func (s *FileStore) Close() error { return nil }
