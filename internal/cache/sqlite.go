package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"polycubes/internal/polycube"
)

const (
	dropLevels = `DROP TABLE IF EXISTS levels;`

	createLevels = `
		CREATE TABLE IF NOT EXISTS levels (
			cube_order INTEGER PRIMARY KEY,
			cube_count INTEGER NOT NULL,
			run_id TEXT NOT NULL,
			payload BLOB NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`

	upsertLevel = `
		INSERT INTO levels (cube_order, cube_count, run_id, payload) VALUES (?, ?, ?, ?)
		ON CONFLICT(cube_order) DO UPDATE SET
			cube_count = excluded.cube_count,
			run_id = excluded.run_id,
			payload = excluded.payload,
			created_at = CURRENT_TIMESTAMP
	`
)

// SQLiteStore keeps levels as rows of a single table, one blob per order.
type SQLiteStore struct {
	db     *sql.DB
	runID  string
	logger *zap.Logger
}

// InitDB opens the SQLite database at path and checks the connection.
func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// ResetSchema drops every stored level and recreates the table.
func ResetSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, dropLevels); err != nil {
		return fmt.Errorf("failed to drop levels table: %w", err)
	}
	if _, err := db.ExecContext(ctx, createLevels); err != nil {
		return fmt.Errorf("failed to create levels table: %w", err)
	}
	return nil
}

// OpenSQLite opens the database at path, creating the levels table if needed.
func OpenSQLite(ctx context.Context, path, runID string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := InitDB(path)
	if err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(ctx, createLevels); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create levels table: %w", err)
	}
	return &SQLiteStore{db: db, runID: runID, logger: logger}, nil
}

func (s *SQLiteStore) Load(ctx context.Context, order int) (*polycube.Hashy, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM levels WHERE cube_order = ?`, order).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: order %d not in database", ErrCacheMiss, order)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query level %d: %v", ErrCacheMiss, order, err)
	}
	return decodeLevel(payload, order, fmt.Sprintf("levels row %d", order))
}

func (s *SQLiteStore) Save(ctx context.Context, order int, h *polycube.Hashy) error {
	payload, err := encode(h)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, upsertLevel, order, h.Size(), s.runID, payload); err != nil {
		return fmt.Errorf("failed to store level %d: %w", order, err)
	}
	s.logger.Debug("level written", zap.Int("order", order), zap.Int("bytes", len(payload)))
	return nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]LevelInfo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT cube_order, length(payload) FROM levels ORDER BY cube_order`)
	if err != nil {
		return nil, fmt.Errorf("failed to query levels: %w", err)
	}
	defer rows.Close()

	var levels []LevelInfo
	for rows.Next() {
		var l LevelInfo
		if err := rows.Scan(&l.Order, &l.Bytes); err != nil {
			return nil, fmt.Errorf("failed to scan level: %w", err)
		}
		levels = append(levels, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating levels: %w", err)
	}
	return levels, nil
}

// RunID returns the id of the run that last wrote the level, if any.
func (s *SQLiteStore) RunID(ctx context.Context, order int) (string, error) {
	var runID string
	err := s.db.QueryRowContext(ctx, `SELECT run_id FROM levels WHERE cube_order = ?`, order).Scan(&runID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query run id of level %d: %w", order, err)
	}
	return runID, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
