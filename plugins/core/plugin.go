// ABOUTME: Core app interface for the development backend.
// ABOUTME: Apps declare their resources and seed data; some also serve extra routes.

package core

import (
	"context"

	"github.com/go-chi/chi/v5"

	"github.com/pyconkr/console/internal/seed"
)

// Plugin is one backend application namespace ("cms", "event", "sponsor").
type Plugin interface {
	// Name is the app segment in /v1/admin-api/{app}/...
	Name() string
	Health() HealthStatus

	// Resources served by the generic admin API, in menu order.
	Resources() []Resource

	Seed(ctx context.Context, env SeedEnv) (SeedData, error)
}

// RouteProvider is implemented by apps that serve routes beyond the
// generic admin API.
type RouteProvider interface {
	Plugin
	RegisterRoutes(r chi.Router, store ResourceStore)
}

// UpdateHook is implemented by apps that react to admin API updates.
// before and after are the stored documents around the write.
type UpdateHook interface {
	Plugin
	AfterUpdate(ctx context.Context, store ResourceStore, resource string, before, after map[string]any) error
}

// HealthStatus represents app health
type HealthStatus struct {
	Status  string `json:"status"` // "healthy", "degraded", "unavailable"
	Message string `json:"message"`
}

// SeedEnv is what an app needs to populate itself.
type SeedEnv struct {
	Store ResourceStore
	Data  *seed.GeneratedData
}

// SeedData represents data generation results
type SeedData struct {
	Summary string         // Human-readable summary
	Records map[string]int // Resource counts: {"presentation": 6}
}
