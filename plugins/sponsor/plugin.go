// ABOUTME: Sponsor app for the development backend.
// ABOUTME: Serves sponsor tiers and the sponsors placed in them.

package sponsor

import (
	"context"
	"fmt"

	"github.com/pyconkr/console/plugins/core"
)

func init() {
	core.Register(&SponsorPlugin{})
}

// SponsorPlugin is the "sponsor" app.
type SponsorPlugin struct{}

func (p *SponsorPlugin) Name() string {
	return "sponsor"
}

func (p *SponsorPlugin) Health() core.HealthStatus {
	return core.HealthStatus{
		Status:  "healthy",
		Message: "Sponsor app operational",
	}
}

func (p *SponsorPlugin) Resources() []core.Resource {
	return resources
}

// tierOrder is the display order of tiers, highest first.
var tierOrder = []string{"Keystone", "Diamond", "Platinum", "Gold", "Startup"}

func (p *SponsorPlugin) Seed(ctx context.Context, env core.SeedEnv) (core.SeedData, error) {
	tierIDs := map[string]any{}
	for i, name := range tierOrder {
		tier, err := core.Insert(ctx, env.Store, "sponsor", "tier", map[string]any{
			"name":  name,
			"order": i,
		})
		if err != nil {
			return core.SeedData{}, fmt.Errorf("failed to seed tier %s: %w", name, err)
		}
		tierIDs[name] = tier["id"]
	}

	var sponsors int
	if env.Data != nil {
		for _, s := range env.Data.Sponsors {
			tier, ok := tierIDs[s.Tier]
			if !ok {
				tier = tierIDs["Startup"]
			}
			if _, err := core.Insert(ctx, env.Store, "sponsor", "sponsor", map[string]any{
				"name":        s.Name,
				"tier":        tier,
				"description": s.Description,
				"url":         s.URL,
				"logo":        nil,
				"tags":        []any{s.Tier},
			}); err != nil {
				return core.SeedData{}, fmt.Errorf("failed to seed sponsor %s: %w", s.Name, err)
			}
			sponsors++
		}
	}

	return core.SeedData{
		Summary: fmt.Sprintf("%d tiers, %d sponsors", len(tierOrder), sponsors),
		Records: map[string]int{"tier": len(tierOrder), "sponsor": sponsors},
	}, nil
}
