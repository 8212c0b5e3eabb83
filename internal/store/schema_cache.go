// ABOUTME: SQLite-backed schema cache.
// ABOUTME: Stores encoded schema documents with an expiry, satisfying the backend cache contract.

package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Get returns the cached value for key if present and unexpired.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var (
		value     []byte
		expiresAt int64
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT value, expires_at FROM schema_cache WHERE key = ?", key,
	).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if expiresAt > 0 && time.Now().Unix() >= expiresAt {
		return nil, false, nil
	}
	return value, true, nil
}

// Set stores value under key. A zero ttl never expires.
func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var expiresAt int64
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl).Unix()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO schema_cache (key, value, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at
	`, key, value, expiresAt)
	return err
}

// PurgeSchemaCache removes every cached schema and returns how many were dropped.
func (s *Store) PurgeSchemaCache(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM schema_cache")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
