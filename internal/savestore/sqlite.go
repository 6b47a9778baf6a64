package savestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS saves (
	key TEXT PRIMARY KEY,
	payload BLOB NOT NULL,
	updated_at_ms INTEGER NOT NULL
);`

// SQLite is a sqlite-backed blob store for deployments that already
// carry a sqlite file next to the game.
type SQLite struct {
	sqlDB *sql.DB
}

// OpenSQLite opens the save database at path and ensures its schema.
func OpenSQLite(path string) (*SQLite, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("save path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(sqliteSchema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ensure saves schema: %w", err)
	}
	return &SQLite{sqlDB: sqlDB}, nil
}

func (s *SQLite) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("save storage is not configured")
	}
	if strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("save key is required")
	}
	var payload []byte
	row := s.sqlDB.QueryRowContext(ctx, `SELECT payload FROM saves WHERE key = ?`, key)
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read save: %w", err)
	}
	return payload, nil
}

func (s *SQLite) Put(ctx context.Context, key string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("save storage is not configured")
	}
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("save key is required")
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO saves (key, payload, updated_at_ms) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, updated_at_ms = excluded.updated_at_ms`,
		key, payload, time.Now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("write save: %w", err)
	}
	return nil
}

func (s *SQLite) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("save storage is not configured")
	}
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM saves WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete save: %w", err)
	}
	return nil
}

func (s *SQLite) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

var _ Store = (*SQLite)(nil)
