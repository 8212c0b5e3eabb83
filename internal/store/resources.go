// ABOUTME: Generic JSON document storage for the development backend.
// ABOUTME: Rows are addressed by application, resource name and id.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a resource row does not exist.
var ErrNotFound = errors.New("store: not found")

// Record is one stored resource instance.
type Record struct {
	App       string
	Resource  string
	ID        string
	Data      map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

func decodeData(raw string) (map[string]any, error) {
	data := map[string]any{}
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, fmt.Errorf("failed to decode resource data: %w", err)
	}
	return data, nil
}

// ListResources returns every instance of a resource in creation order.
func (s *Store) ListResources(ctx context.Context, app, resource string) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, data, created_at, updated_at
		FROM resources
		WHERE app = ? AND resource = ?
		ORDER BY created_at, rowid
	`, app, resource)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		rec := &Record{App: app, Resource: resource}
		var raw string
		if err := rows.Scan(&rec.ID, &raw, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		if rec.Data, err = decodeData(raw); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// GetResource returns one instance or ErrNotFound.
func (s *Store) GetResource(ctx context.Context, app, resource, id string) (*Record, error) {
	rec := &Record{App: app, Resource: resource, ID: id}
	var raw string
	err := s.db.QueryRowContext(ctx, `
		SELECT data, created_at, updated_at
		FROM resources
		WHERE app = ? AND resource = ? AND id = ?
	`, app, resource, id).Scan(&raw, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if rec.Data, err = decodeData(raw); err != nil {
		return nil, err
	}
	return rec, nil
}

// PutResource inserts or replaces an instance.
func (s *Store) PutResource(ctx context.Context, app, resource, id string, data map[string]any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode resource data: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO resources (app, resource, id, data) VALUES (?, ?, ?, ?)
		ON CONFLICT(app, resource, id) DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP
	`, app, resource, id, string(raw))
	return err
}

// DeleteResource removes an instance, returning ErrNotFound when absent.
func (s *Store) DeleteResource(ctx context.Context, app, resource, id string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM resources WHERE app = ? AND resource = ? AND id = ?", app, resource, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountResources returns the number of instances of a resource.
func (s *Store) CountResources(ctx context.Context, app, resource string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM resources WHERE app = ? AND resource = ?", app, resource).Scan(&n)
	return n, err
}

// ResetResources deletes every stored instance and returns how many were removed.
func (s *Store) ResetResources(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM resources")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
