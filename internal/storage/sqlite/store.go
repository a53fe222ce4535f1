// Package sqlite provides a SQLite-backed save gateway.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/everforgeworks/zen-fisher/internal/platform/sqlitemigrate"
	"github.com/everforgeworks/zen-fisher/internal/storage"
	"github.com/everforgeworks/zen-fisher/internal/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store persists one save record per player.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

var _ storage.Gateway = (*Store)(nil)

// Open opens the database at path and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(context.Background(), sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Load returns the raw save for a player, or storage.ErrNotFound.
func (s *Store) Load(ctx context.Context, playerID string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	var payload []byte
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT payload FROM saves WHERE player_id = ?`,
		playerID,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load save %s: %w", playerID, err)
	}
	return payload, nil
}

// Save inserts or replaces the save for a player.
func (s *Store) Save(ctx context.Context, playerID string, record []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(playerID) == "" {
		return fmt.Errorf("player id is required")
	}

	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO saves (player_id, payload, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(player_id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		playerID, record, s.now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save %s: %w", playerID, err)
	}
	return nil
}
