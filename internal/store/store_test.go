// ABOUTME: Tests for SQLite store initialization, migrations, schema cache and resource rows.
// ABOUTME: Runs against in-memory and on-disk databases.

package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestNewStore_CreatesTables(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "console.db")

	s, err := New(dbPath, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer s.Close()

	for _, table := range []string{"schema_migrations", "request_logs", "schema_cache", "resources"} {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}

	version, err := s.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion() error = %v", err)
	}
	if version != CurrentSchemaVersion {
		t.Errorf("SchemaVersion() = %d, want %d", version, CurrentSchemaVersion)
	}
}

func TestNewStore_ReopenIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "console.db")

	s, err := New(dbPath, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := s.PutResource(context.Background(), "cms", "page", "1", map[string]any{"title": "home"}); err != nil {
		t.Fatalf("PutResource() error = %v", err)
	}
	s.Close()

	s, err = New(dbPath, nil)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer s.Close()

	var applied int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&applied); err != nil {
		t.Fatal(err)
	}
	if applied != len(migrations) {
		t.Errorf("applied migrations = %d, want %d", applied, len(migrations))
	}
	if _, err := s.GetResource(context.Background(), "cms", "page", "1"); err != nil {
		t.Errorf("resource lost across reopen: %v", err)
	}
}

func TestSchemaCache(t *testing.T) {
	s := setupTestDB(t)
	defer s.Close()
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, "schema:cms:page"); err != nil || ok {
		t.Fatalf("Get() on empty cache = ok %v, err %v", ok, err)
	}

	if err := s.Set(ctx, "schema:cms:page", []byte(`{"schema":{}}`), time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, ok, err := s.Get(ctx, "schema:cms:page")
	if err != nil || !ok {
		t.Fatalf("Get() = ok %v, err %v", ok, err)
	}
	if string(got) != `{"schema":{}}` {
		t.Errorf("Get() = %s", got)
	}

	if err := s.Set(ctx, "schema:cms:page", []byte(`{"v":2}`), 0); err != nil {
		t.Fatalf("Set() overwrite error = %v", err)
	}
	got, _, _ = s.Get(ctx, "schema:cms:page")
	if string(got) != `{"v":2}` {
		t.Errorf("overwrite not applied: %s", got)
	}

	// an expiry in the past reads as a miss
	if _, err := s.db.Exec("UPDATE schema_cache SET expires_at = ? WHERE key = ?", time.Now().Add(-time.Minute).Unix(), "schema:cms:page"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.Get(ctx, "schema:cms:page"); ok {
		t.Error("expired entry returned")
	}

	n, err := s.PurgeSchemaCache(ctx)
	if err != nil || n != 1 {
		t.Errorf("PurgeSchemaCache() = %d, %v", n, err)
	}
}

func TestResources_CRUD(t *testing.T) {
	s := setupTestDB(t)
	defer s.Close()
	ctx := context.Background()

	if err := s.PutResource(ctx, "sponsor", "tier", "a", map[string]any{"name": "Diamond", "order": float64(1)}); err != nil {
		t.Fatalf("PutResource() error = %v", err)
	}
	if err := s.PutResource(ctx, "sponsor", "tier", "b", map[string]any{"name": "Gold"}); err != nil {
		t.Fatalf("PutResource() error = %v", err)
	}
	if err := s.PutResource(ctx, "sponsor", "sponsor", "c", map[string]any{"name": "PSF"}); err != nil {
		t.Fatalf("PutResource() error = %v", err)
	}

	list, err := s.ListResources(ctx, "sponsor", "tier")
	if err != nil {
		t.Fatalf("ListResources() error = %v", err)
	}
	if len(list) != 2 || list[0].ID != "a" || list[1].ID != "b" {
		t.Fatalf("ListResources() returned unexpected rows: %+v", list)
	}
	if list[0].Data["order"] != float64(1) {
		t.Errorf("data not decoded: %+v", list[0].Data)
	}

	if err := s.PutResource(ctx, "sponsor", "tier", "a", map[string]any{"name": "Platinum"}); err != nil {
		t.Fatalf("PutResource() update error = %v", err)
	}
	rec, err := s.GetResource(ctx, "sponsor", "tier", "a")
	if err != nil {
		t.Fatalf("GetResource() error = %v", err)
	}
	if rec.Data["name"] != "Platinum" {
		t.Errorf("update not applied: %+v", rec.Data)
	}

	n, err := s.CountResources(ctx, "sponsor", "tier")
	if err != nil || n != 2 {
		t.Errorf("CountResources() = %d, %v", n, err)
	}

	if err := s.DeleteResource(ctx, "sponsor", "tier", "a"); err != nil {
		t.Fatalf("DeleteResource() error = %v", err)
	}
	if _, err := s.GetResource(ctx, "sponsor", "tier", "a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetResource() after delete error = %v, want ErrNotFound", err)
	}
	if err := s.DeleteResource(ctx, "sponsor", "tier", "a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteResource() error = %v, want ErrNotFound", err)
	}

	removed, err := s.ResetResources(ctx)
	if err != nil || removed != 2 {
		t.Errorf("ResetResources() = %d, %v", removed, err)
	}
}
