// ABOUTME: CMS app for the development backend.
// ABOUTME: Serves pages, their sections and the site map tree.

package cms

import (
	"context"
	"fmt"

	"github.com/pyconkr/console/plugins/core"
)

func init() {
	core.Register(&CMSPlugin{})
}

// CMSPlugin is the "cms" app.
type CMSPlugin struct{}

func (p *CMSPlugin) Name() string {
	return "cms"
}

func (p *CMSPlugin) Health() core.HealthStatus {
	return core.HealthStatus{
		Status:  "healthy",
		Message: "CMS app operational",
	}
}

func (p *CMSPlugin) Resources() []core.Resource {
	return resources
}

type staticPage struct {
	title, subtitle, routeCode string
	sections                   []string
}

var staticPages = []staticPage{
	{"PyCon Korea 2025", "파이콘 한국 2025에 오신 것을 환영합니다", "", []string{
		"## 파이콘 한국\n\n파이콘 한국은 커뮤니티가 주관하는 비영리 개발자 행사입니다.",
		"### 일정\n\n| 날짜 | 내용 |\n|---|---|\n| 8월 15일 | 튜토리얼 |\n| 8월 16-17일 | 컨퍼런스 |",
	}},
	{"행동 강령", "Code of Conduct", "coc", []string{
		"모든 참가자는 서로를 존중해야 합니다.",
	}},
	{"후원하기", "Become a Sponsor", "sponsoring", []string{
		"후원 문의는 sponsor@pycon.kr 로 보내주세요.",
	}},
}

func (p *CMSPlugin) Seed(ctx context.Context, env core.SeedEnv) (core.SeedData, error) {
	counts := map[string]int{}
	for i, sp := range staticPages {
		page, err := core.Insert(ctx, env.Store, "cms", "page", map[string]any{
			"title":                      sp.title,
			"subtitle":                   sp.subtitle,
			"css":                        "",
			"show_top_title_banner":      sp.routeCode != "",
			"show_bottom_sponsor_banner": true,
		})
		if err != nil {
			return core.SeedData{}, fmt.Errorf("failed to seed page %q: %w", sp.title, err)
		}
		counts["page"]++

		for order, body := range sp.sections {
			if _, err := core.Insert(ctx, env.Store, "cms", "section", map[string]any{
				"page":  page["id"],
				"order": order,
				"css":   "",
				"body":  body,
			}); err != nil {
				return core.SeedData{}, fmt.Errorf("failed to seed section: %w", err)
			}
			counts["section"]++
		}

		if _, err := core.Insert(ctx, env.Store, "cms", "sitemap", map[string]any{
			"name":           sp.title,
			"route_code":     sp.routeCode,
			"order":          i,
			"hide":           false,
			"page":           page["id"],
			"parent_sitemap": nil,
			"external_link":  nil,
		}); err != nil {
			return core.SeedData{}, fmt.Errorf("failed to seed sitemap: %w", err)
		}
		counts["sitemap"]++
	}

	return core.SeedData{
		Summary: fmt.Sprintf("%d pages, %d sections, %d sitemap entries", counts["page"], counts["section"], counts["sitemap"]),
		Records: counts,
	}, nil
}
