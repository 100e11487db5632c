// Package cache persists generated levels so that later orders can be
// computed incrementally. Every driver stores the same binary encoding,
// keyed by order.
package cache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"polycubes/internal/config"
	"polycubes/internal/polycube"
)

// ErrCacheMiss is returned by Load when a level is absent, unreadable or
// corrupt. All three are treated the same way: the level is recomputed.
var ErrCacheMiss = errors.New("cache miss")

// Store loads and saves levels by order.
type Store interface {
	// Load returns the level of the given order or an error wrapping
	// ErrCacheMiss.
	Load(ctx context.Context, order int) (*polycube.Hashy, error)
	// Save persists h as the level of the given order, replacing any
	// previous copy.
	Save(ctx context.Context, order int, h *polycube.Hashy) error
	// List describes the stored levels in ascending order.
	List(ctx context.Context) ([]LevelInfo, error)
	Close() error
}

// LevelInfo describes one stored level.
type LevelInfo struct {
	Order int   `json:"order"`
	Bytes int64 `json:"bytes"`
}

// FileName is the artifact name of a level, shared by the file and object
// storage drivers.
func FileName(order int) string {
	return fmt.Sprintf("cubes_%d.bin", order)
}

// Open builds the store selected by cfg.Driver. runID tags the levels
// written by this process where the driver can record it.
func Open(ctx context.Context, cfg config.CacheConfig, runID string, logger *zap.Logger) (Store, error) {
	logger = logger.With(zap.String("driver", cfg.Driver))
	switch cfg.Driver {
	case config.DriverFile:
		return NewFileStore(cfg.Dir, logger)
	case config.DriverSQLite:
		return OpenSQLite(ctx, cfg.SQLite, runID, logger)
	case config.DriverMinIO:
		return OpenMinIO(ctx, cfg.MinIO, runID, logger)
	case config.DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Driver)
	}
}

func encode(h *polycube.Hashy) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, h); err != nil {
		return nil, fmt.Errorf("failed to encode level %d: %w", h.Order(), err)
	}
	return buf.Bytes(), nil
}

// decodeLevel decodes data as the level of the given order, reporting any
// problem as a cache miss.
func decodeLevel(data []byte, order int, source string) (*polycube.Hashy, error) {
	h, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCacheMiss, source, err)
	}
	if h.Order() != order {
		return nil, fmt.Errorf("%w: %s holds order %d", ErrCacheMiss, source, h.Order())
	}
	return h, nil
}

func sortLevels(levels []LevelInfo) []LevelInfo {
	sort.Slice(levels, func(i, j int) bool { return levels[i].Order < levels[j].Order })
	return levels
}
