// ABOUTME: Event app for the development backend.
// ABOUTME: Serves presentations, speakers and categories plus the portal and public session routes.

package event

import (
	"context"
	"fmt"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pyconkr/console/internal/backend"
	"github.com/pyconkr/console/plugins/core"
)

const app = "event"

// DefaultEvent is the event slug seeded presentations belong to.
const DefaultEvent = "pycon-kr-2025"

func init() {
	core.Register(&EventPlugin{})
}

// EventPlugin is the "event" app.
type EventPlugin struct{}

func (p *EventPlugin) Name() string {
	return app
}

func (p *EventPlugin) Health() core.HealthStatus {
	return core.HealthStatus{
		Status:  "healthy",
		Message: "Event app operational",
	}
}

func (p *EventPlugin) Resources() []core.Resource {
	return resources
}

func (p *EventPlugin) RegisterRoutes(r chi.Router, store core.ResourceStore) {
	h := &handlers{store: store}

	r.Get("/v1/event/presentation/", h.listSessions)

	r.Route("/v1/participant-portal", func(r chi.Router) {
		r.Use(requireUser)
		r.Get("/user/me/", h.me)
		r.Get("/presentation/", h.listPresentations)
		r.Get("/presentation/{id}/", h.getPresentation)
		r.Patch("/presentation/{id}/", h.patchPresentation)
		r.Get("/presentation/{id}/preview/", h.previewPresentation)
		r.Get("/modification-audit/", h.listAudits)
		r.Get("/modification-audit/{id}/preview/", h.previewAudit)
		r.Patch("/modification-audit/{id}/cancel/", h.cancelAudit)
		r.Get("/public-file/", h.listPublicFiles)
	})
}

// AfterUpdate applies a modification request once an admin approves it.
func (p *EventPlugin) AfterUpdate(ctx context.Context, store core.ResourceStore, resource string, before, after map[string]any) error {
	if resource != "modification_audit" {
		return nil
	}
	if str(before, "status") != backend.AuditRequested || str(after, "status") != backend.AuditApproved {
		return nil
	}

	u, err := updateOf(after)
	if err != nil {
		return err
	}
	d, err := load(ctx, store)
	if err != nil {
		return err
	}
	id := str(after, "instance_id")
	pres := d.presentation(id)
	if pres == nil {
		return fmt.Errorf("presentation %s no longer exists", id)
	}

	updated, speakers := apply(pres, d.speakersOf(id), u)
	if _, err := core.Save(ctx, store, app, "presentation", id, updated); err != nil {
		return err
	}
	for _, s := range speakers {
		if _, err := core.Save(ctx, store, app, "speaker", str(s, "id"), s); err != nil {
			return err
		}
	}
	return nil
}

var rooms = []string{"101", "102", "103"}

func (p *EventPlugin) Seed(ctx context.Context, env core.SeedEnv) (core.SeedData, error) {
	counts := map[string]int{}
	if env.Data == nil {
		return core.SeedData{Summary: "no event data", Records: counts}, nil
	}

	categoryIDs := map[string]any{}
	for _, s := range env.Data.Sessions {
		for _, name := range s.Categories {
			if _, ok := categoryIDs[name]; ok {
				continue
			}
			c, err := core.Insert(ctx, env.Store, app, "category", map[string]any{"name_ko": name, "name_en": name})
			if err != nil {
				return core.SeedData{}, fmt.Errorf("failed to seed category %s: %w", name, err)
			}
			categoryIDs[name] = c["id"]
			counts["category"]++
		}
	}

	start := time.Date(2025, 8, 16, 10, 0, 0, 0, time.FixedZone("KST", 9*60*60))
	for i, s := range env.Data.Sessions {
		categories := make([]any, 0, len(s.Categories))
		for _, name := range s.Categories {
			categories = append(categories, categoryIDs[name])
		}
		slot := start.Add(time.Duration(i/len(rooms)) * time.Hour)

		pres, err := core.Insert(ctx, env.Store, app, "presentation", map[string]any{
			"event":          DefaultEvent,
			"type":           presentationTypes[1],
			"title_ko":       s.TitleKo,
			"title_en":       s.TitleEn,
			"summary_ko":     s.SummaryKo,
			"summary_en":     s.SummaryEn,
			"description_ko": s.DescriptionKo,
			"description_en": s.DescriptionEn,
			"slideshow_url":  nil,
			"image":          nil,
			"categories":     categories,
			"room_name":      rooms[i%len(rooms)],
			"start_at":       slot.Format(time.RFC3339),
			"end_at":         slot.Add(40 * time.Minute).Format(time.RFC3339),
		})
		if err != nil {
			return core.SeedData{}, fmt.Errorf("failed to seed presentation %q: %w", s.TitleEn, err)
		}
		counts["presentation"]++

		user := "speaker"
		if i > 0 {
			user = fmt.Sprintf("speaker%d", i+1)
		}
		if _, err := core.Insert(ctx, env.Store, app, "speaker", map[string]any{
			"presentation": pres["id"],
			"user":         user,
			"email":        user + "@example.com",
			"order":        0,
			"nickname_ko":  s.Speaker.NicknameKo,
			"nickname_en":  s.Speaker.NicknameEn,
			"biography_ko": s.Speaker.BiographyKo,
			"biography_en": s.Speaker.BiographyEn,
			"image":        nil,
		}); err != nil {
			return core.SeedData{}, fmt.Errorf("failed to seed speaker: %w", err)
		}
		counts["speaker"]++
	}

	return core.SeedData{
		Summary: fmt.Sprintf("%d presentations, %d speakers, %d categories", counts["presentation"], counts["speaker"], counts["category"]),
		Records: counts,
	}, nil
}
