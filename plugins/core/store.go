// ABOUTME: Resource persistence contract shared by the generic admin API and app routes.
// ABOUTME: Helpers stamp server-managed id and timestamp fields on stored instances.

package core

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pyconkr/console/internal/store"
)

// ResourceStore persists resource instances. *store.Store implements it.
type ResourceStore interface {
	ListResources(ctx context.Context, app, resource string) ([]*store.Record, error)
	GetResource(ctx context.Context, app, resource, id string) (*store.Record, error)
	PutResource(ctx context.Context, app, resource, id string, data map[string]any) error
	DeleteResource(ctx context.Context, app, resource, id string) error
}

var now = func() time.Time { return time.Now().UTC() }

// Insert stores data as a new instance with a fresh id and timestamps, and
// returns the stored document.
func Insert(ctx context.Context, s ResourceStore, app, resource string, data map[string]any) (map[string]any, error) {
	doc := make(map[string]any, len(data)+3)
	for k, v := range data {
		doc[k] = v
	}
	id := uuid.NewString()
	stamp := now().Format(time.RFC3339)
	doc["id"] = id
	doc["created_at"] = stamp
	doc["updated_at"] = stamp
	if err := s.PutResource(ctx, app, resource, id, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Save overwrites an existing instance, refreshing updated_at.
func Save(ctx context.Context, s ResourceStore, app, resource, id string, doc map[string]any) (map[string]any, error) {
	doc["id"] = id
	doc["updated_at"] = now().Format(time.RFC3339)
	if err := s.PutResource(ctx, app, resource, id, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Documents returns the stored documents of a resource in insertion order.
func Documents(ctx context.Context, s ResourceStore, app, resource string) ([]map[string]any, error) {
	records, err := s.ListResources(ctx, app, resource)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.Data)
	}
	return out, nil
}
