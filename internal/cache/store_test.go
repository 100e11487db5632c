package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"polycubes/internal/config"
)

// exerciseStore runs the behaviour every driver must share.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Load(ctx, 5)
	assert.ErrorIs(t, err, ErrCacheMiss)

	level5 := buildLevel(t, 5)
	require.NoError(t, s.Save(ctx, 5, level5))
	got, err := s.Load(ctx, 5)
	require.NoError(t, err)
	assertSameLevel(t, level5, got)

	level4 := buildLevel(t, 4)
	require.NoError(t, s.Save(ctx, 4, level4))

	// Saving again replaces the previous copy.
	require.NoError(t, s.Save(ctx, 5, level5))

	levels, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, levels, 2)
	assert.Equal(t, 4, levels[0].Order)
	assert.Equal(t, 5, levels[1].Order)
	assert.Positive(t, levels[1].Bytes)

	// A level saved under the wrong order is treated as a miss.
	require.NoError(t, s.Save(ctx, 6, level4))
	_, err = s.Load(ctx, 6)
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, s.Close())
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	exerciseStore(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "levels")
	s, err := NewFileStore(dir, zap.NewNop())
	require.NoError(t, err)
	exerciseStore(t, s)

	_, err = os.Stat(filepath.Join(dir, "cubes_5.bin"))
	assert.NoError(t, err)
}

func TestFileStoreCorruptFileIsMiss(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := NewFileStore(dir, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName(4)), []byte("garbage"), 0644))
	_, err = s.Load(context.Background(), 4)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestFileStoreListIgnoresOtherFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := NewFileStore(dir, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, s.Save(context.Background(), 3, buildLevel(t, 3)))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cubes_9.bin.tmp"), nil, 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "cubes_8.bin"), 0755))

	levels, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, levels, 1)
	assert.Equal(t, 3, levels[0].Order)
}

func TestSQLiteStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "levels.db")
	s, err := OpenSQLite(ctx, path, "run-1", zap.NewNop())
	require.NoError(t, err)
	exerciseStore(t, s)

	reopened, err := OpenSQLite(ctx, path, "run-2", zap.NewNop())
	require.NoError(t, err)
	defer reopened.Close()

	runID, err := reopened.RunID(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "run-1", runID)

	require.NoError(t, reopened.Save(ctx, 5, buildLevel(t, 5)))
	runID, err = reopened.RunID(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "run-2", runID)

	runID, err = reopened.RunID(ctx, 12)
	require.NoError(t, err)
	assert.Empty(t, runID)
}

func TestResetSchema(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "levels.db"), "run", zap.NewNop())
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Save(ctx, 3, buildLevel(t, 3)))
	require.NoError(t, ResetSchema(ctx, s.db))

	levels, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, levels)
}

func TestOpen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		name    string
		cfg     config.CacheConfig
		want    any
		wantErr bool
	}{
		{name: "file", cfg: config.CacheConfig{Driver: config.DriverFile, Dir: dir}, want: &FileStore{}},
		{name: "sqlite", cfg: config.CacheConfig{Driver: config.DriverSQLite, SQLite: filepath.Join(dir, "c.db")}, want: &SQLiteStore{}},
		{name: "memory", cfg: config.CacheConfig{Driver: config.DriverMemory}, want: &MemoryStore{}},
		{name: "unknown", cfg: config.CacheConfig{Driver: "tape"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(ctx, tt.cfg, "run", zap.NewNop())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer s.Close()
			assert.IsType(t, tt.want, s)
		})
	}
}

func TestFileName(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "cubes_12.bin", FileName(12))
}
