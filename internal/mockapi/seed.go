// ABOUTME: Seeding and reset for the development backend's resource store.
// ABOUTME: Sizes pick how many sessions and sponsors the generator produces.

package mockapi

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pyconkr/console/internal/seed"
	"github.com/pyconkr/console/internal/store"
	"github.com/pyconkr/console/plugins/core"
)

// Sizes maps a seed size to (sessions, sponsors).
var Sizes = map[string][2]int{
	"small":  {6, 5},
	"medium": {12, 10},
	"large":  {30, 20},
}

// Seed generates data once and lets every registered app store its part.
func Seed(ctx context.Context, s *store.Store, gen *seed.Generator, size string, logger *zap.Logger) (map[string]core.SeedData, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	counts, ok := Sizes[size]
	if !ok {
		return nil, fmt.Errorf("unknown seed size %q (want small, medium or large)", size)
	}

	data, err := gen.Generate(ctx, counts[0], counts[1])
	if err != nil {
		return nil, fmt.Errorf("failed to generate seed data: %w", err)
	}

	results := map[string]core.SeedData{}
	for _, p := range core.All() {
		res, err := p.Seed(ctx, core.SeedEnv{Store: s, Data: data})
		if err != nil {
			return results, fmt.Errorf("failed to seed %s: %w", p.Name(), err)
		}
		logger.Info("Seeded app", zap.String("app", p.Name()), zap.String("summary", res.Summary))
		results[p.Name()] = res
	}
	return results, nil
}
