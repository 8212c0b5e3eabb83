// ABOUTME: Tests for app registry operations, resource lookup and store helpers.
// ABOUTME: Validates registration, ordering, duplicate detection, and concurrent access.

package core

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/pyconkr/console/internal/store"
)

// mockPlugin implements the Plugin interface for testing
type mockPlugin struct {
	name      string
	resources []Resource
}

func (m *mockPlugin) Name() string {
	return m.name
}

func (m *mockPlugin) Health() HealthStatus {
	return HealthStatus{Status: "healthy", Message: "OK"}
}

func (m *mockPlugin) Resources() []Resource {
	return m.resources
}

func (m *mockPlugin) Seed(ctx context.Context, env SeedEnv) (SeedData, error) {
	return SeedData{}, nil
}

// resetRegistry clears the registry for testing
func resetRegistry() {
	mu.Lock()
	defer mu.Unlock()
	registry = make(map[string]Plugin)
}

func TestRegister(t *testing.T) {
	resetRegistry()

	Register(&mockPlugin{name: "cms"})

	if len(registry) != 1 {
		t.Errorf("expected 1 plugin in registry, got %d", len(registry))
	}
	if _, ok := Get("cms"); !ok {
		t.Error("plugin 'cms' not found in registry")
	}
	if _, ok := Get("non-existent"); ok {
		t.Error("expected Get to return false for non-existent plugin")
	}
}

func TestRegisterDuplicatePanic(t *testing.T) {
	resetRegistry()

	Register(&mockPlugin{name: "duplicate"})

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic on duplicate registration, but didn't panic")
		}
	}()

	Register(&mockPlugin{name: "duplicate"})
}

func TestAllAndNamesAreSorted(t *testing.T) {
	resetRegistry()

	for _, name := range []string{"sponsor", "cms", "event"} {
		Register(&mockPlugin{name: name})
	}

	names := Names()
	want := []string{"cms", "event", "sponsor"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("Names() = %v, want %v", names, want)
		}
	}
	for i, p := range All() {
		if p.Name() != want[i] {
			t.Errorf("All()[%d] = %q, want %q", i, p.Name(), want[i])
		}
	}
}

func TestLookup(t *testing.T) {
	resetRegistry()

	Register(&mockPlugin{name: "sponsor", resources: []Resource{
		{Slug: "tier", Name: "Tiers"},
		{Slug: "sponsor", Name: "Sponsors"},
	}})

	tests := []struct {
		app, slug string
		found     bool
	}{
		{"sponsor", "tier", true},
		{"sponsor", "sponsor", true},
		{"sponsor", "logo", false},
		{"cms", "page", false},
	}
	for _, tt := range tests {
		t.Run(tt.app+"/"+tt.slug, func(t *testing.T) {
			r, ok := Lookup(tt.app, tt.slug)
			if ok != tt.found {
				t.Fatalf("Lookup() found = %v, want %v", ok, tt.found)
			}
			if ok && r.Slug != tt.slug {
				t.Errorf("Lookup() returned %q", r.Slug)
			}
		})
	}
}

func TestThreadSafeConcurrentAccess(t *testing.T) {
	resetRegistry()

	var wg sync.WaitGroup
	pluginCount := 100

	for i := 0; i < pluginCount; i++ {
		wg.Add(2)
		go func(index int) {
			defer wg.Done()
			Register(&mockPlugin{name: fmt.Sprintf("app%d", index)})
		}(i)
		go func() {
			defer wg.Done()
			_ = All()
			_, _ = Lookup("app0", "page")
		}()
	}

	wg.Wait()

	if len(registry) != pluginCount {
		t.Errorf("expected %d plugins after concurrent registration, got %d", pluginCount, len(registry))
	}
}

func TestResourceDocument(t *testing.T) {
	r := Resource{
		Slug:   "tier",
		Schema: json.RawMessage(`{"type":"object","properties":{"name":{"type":"string"},` + Timestamps + `}}`),
	}

	doc, err := r.Document()
	if err != nil {
		t.Fatalf("Document() error = %v", err)
	}
	var decoded struct {
		Schema   map[string]any `json:"schema"`
		UISchema map[string]any `json:"ui_schema"`
	}
	if err := json.Unmarshal(doc, &decoded); err != nil {
		t.Fatalf("document is not JSON: %v", err)
	}
	if decoded.UISchema == nil || len(decoded.UISchema) != 0 {
		t.Errorf("ui_schema = %v, want empty object", decoded.UISchema)
	}

	s, _, err := r.Decode()
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(s.Properties) != 3 || s.Properties[0].Name != "name" || !s.Properties[2].ReadOnly {
		t.Errorf("unexpected properties: %+v", s.Properties)
	}

	bad := Resource{Slug: "broken", Schema: json.RawMessage(`{"properties": []}`)}
	if _, _, err := bad.Decode(); err == nil {
		t.Error("Decode() accepted a malformed schema")
	}
}

func TestInsertAndSave(t *testing.T) {
	s, err := store.New(":memory:", nil)
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	fixed := time.Date(2025, 8, 15, 9, 0, 0, 0, time.UTC)
	now = func() time.Time { return fixed }
	defer func() { now = func() time.Time { return time.Now().UTC() } }()

	input := map[string]any{"name": "Gold"}
	doc, err := Insert(ctx, s, "sponsor", "tier", input)
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if _, ok := input["id"]; ok {
		t.Error("Insert() mutated its input")
	}
	id, _ := doc["id"].(string)
	if id == "" || doc["created_at"] != "2025-08-15T09:00:00Z" {
		t.Fatalf("unexpected document: %v", doc)
	}

	fixed = fixed.Add(time.Hour)
	doc["name"] = "Platinum"
	if _, err := Save(ctx, s, "sponsor", "tier", id, doc); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	docs, err := Documents(ctx, s, "sponsor", "tier")
	if err != nil {
		t.Fatalf("Documents() error = %v", err)
	}
	if len(docs) != 1 || docs[0]["name"] != "Platinum" || docs[0]["updated_at"] != "2025-08-15T10:00:00Z" {
		t.Errorf("Documents() = %v", docs)
	}
}
