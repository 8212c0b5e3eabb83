// ABOUTME: JSON Schema and UI hint documents for CMS resources.
// ABOUTME: Pages hold sections; site map entries point at a page or an external link.

package cms

import (
	"encoding/json"

	"github.com/pyconkr/console/plugins/core"
)

var resources = []core.Resource{
	{
		Slug: "page",
		Name: "Pages",
		Schema: json.RawMessage(`{
	"type": "object",
	"title": "Page",
	"required": ["title"],
	"properties": {
		"id": {"type": "string", "title": "ID", "readOnly": true},
		"title": {"type": "string", "title": "제목", "minLength": 1, "maxLength": 256},
		"subtitle": {"type": "string", "title": "부제목", "maxLength": 512},
		"css": {"type": "string", "title": "CSS"},
		"show_top_title_banner": {"type": "boolean", "title": "상단 제목 배너 표시", "default": false},
		"show_bottom_sponsor_banner": {"type": "boolean", "title": "하단 후원사 배너 표시", "default": false},
		` + core.Timestamps + `
	}
}`),
		UISchema: json.RawMessage(`{
	"css": {"ui:widget": "textarea"},
	"ui:list_columns": ["title", "subtitle"]
}`),
	},
	{
		Slug: "section",
		Name: "Sections",
		Schema: json.RawMessage(`{
	"type": "object",
	"title": "Section",
	"required": ["page", "body"],
	"properties": {
		"id": {"type": "string", "title": "ID", "readOnly": true},
		"page": {"type": "string", "title": "페이지 ID"},
		"order": {"type": "integer", "title": "순서", "minimum": 0, "default": 0},
		"css": {"type": "string", "title": "CSS"},
		"body": {"type": "string", "title": "본문"},
		` + core.Timestamps + `
	}
}`),
		UISchema: json.RawMessage(`{
	"css": {"ui:widget": "textarea"},
	"body": {"ui:widget": "markdown", "ui:help": "Markdown으로 작성합니다."},
	"ui:list_columns": ["page", "order"]
}`),
	},
	{
		Slug: "sitemap",
		Name: "Site map",
		Schema: json.RawMessage(`{
	"type": "object",
	"title": "Sitemap",
	"required": ["name"],
	"properties": {
		"id": {"type": "string", "title": "ID", "readOnly": true},
		"name": {"type": "string", "title": "메뉴 이름", "minLength": 1},
		"route_code": {"type": "string", "title": "경로 코드"},
		"order": {"type": "integer", "title": "순서", "minimum": 0, "default": 0},
		"hide": {"type": "boolean", "title": "숨김", "default": false},
		"parent_sitemap": {"type": ["string", "null"], "title": "상위 메뉴 ID"},
		"page": {"type": ["string", "null"], "title": "페이지 ID"},
		"external_link": {"type": ["string", "null"], "title": "외부 링크"},
		` + core.Timestamps + `
	}
}`),
		UISchema: json.RawMessage(`{
	"ui:list_columns": ["name", "route_code", "order"]
}`),
	},
}
